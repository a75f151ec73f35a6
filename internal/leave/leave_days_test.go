package leave

import (
	"testing"
	"time"

	leaveerrors "github.com/suhasnidgundi/ace-hrm-backend-v2/internal/leave/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDayCount(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"same day", date(2026, 3, 10), date(2026, 3, 10), 1},
		{"three days", date(2026, 3, 10), date(2026, 3, 12), 3},
		{"across month", date(2026, 1, 30), date(2026, 2, 2), 4},
		{"leap day", date(2028, 2, 28), date(2028, 3, 1), 3},
		{"time of day ignored", time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC), time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DayCount(tt.start, tt.end))
		})
	}
}

func TestParseDateRange(t *testing.T) {
	start, end, err := parseDateRange("2026-03-10", "2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, start, end)

	_, _, err = parseDateRange("", "2026-03-10")
	assert.ErrorIs(t, err, leaveerrors.ErrStartDateRequired)

	_, _, err = parseDateRange("2026-03-10", "2026-13-01")
	assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateFormat)

	_, _, err = parseDateRange("2026-03-11", "2026-03-10")
	assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
}

func TestMonthBounds(t *testing.T) {
	first, last := monthBounds(time.Date(2026, 2, 14, 18, 30, 0, 0, time.UTC))
	assert.Equal(t, date(2026, 2, 1), first)
	assert.Equal(t, date(2026, 2, 28), last)

	first, last = monthBounds(time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, date(2026, 12, 1), first)
	assert.Equal(t, date(2026, 12, 31), last)
}
