package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newRequestIDRouter(logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), ContextLogger(logger))
	r.GET("/ping", func(c *gin.Context) {
		ctx := c.Request.Context()
		contextutil.GetLogger(ctx, nil).Info("handled")
		c.String(http.StatusOK, contextutil.GetRequestID(ctx))
	})
	return r
}

func TestRequestID_PropagatesHeader(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	router := newRequestIDRouter(zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "req-123", w.Body.String())

	entries := logs.FilterMessage("handled").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "/ping", entries[0].ContextMap()["path"])
}

func TestRequestID_GeneratesWhenMissingOrOversized(t *testing.T) {
	router := newRequestIDRouter(zap.NewNop())

	for _, incoming := range []string{"", strings.Repeat("x", 65)} {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		if incoming != "" {
			req.Header.Set(HeaderRequestID, incoming)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		rid := w.Header().Get(HeaderRequestID)
		_, err := uuid.Parse(rid)
		assert.NoError(t, err)
		assert.Equal(t, rid, w.Body.String())
	}
}
