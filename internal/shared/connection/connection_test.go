package connection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN("db", "hr", "pw", "ace_hrm", "5432", "disable")

	assert.Equal(t, "host=db user=hr password=pw dbname=ace_hrm port=5432 sslmode=disable", dsn)
}

func TestConnectRedisWithRetry_Unreachable(t *testing.T) {
	prev := retryDelay
	retryDelay = time.Millisecond
	defer func() { retryDelay = prev }()

	rdb, err := ConnectRedisWithRetry("127.0.0.1:1", 2)

	assert.Nil(t, rdb)
	assert.ErrorContains(t, err, "after 2 retries")
}
