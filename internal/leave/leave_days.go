package leave

import (
	"math"
	"time"

	leaveerrors "github.com/suhasnidgundi/ace-hrm-backend-v2/internal/leave/errors"
)

const dateLayout = "2006-01-02"

// DayCount counts both boundary dates: start == end is one day.
// Time of day is ignored.
func DayCount(start, end time.Time) int {
	d := truncateDay(end).Sub(truncateDay(start))
	if d < 0 {
		d = -d
	}
	return int(math.Ceil(d.Hours()/24)) + 1
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func parseDateRange(start, end string) (time.Time, time.Time, error) {
	if start == "" {
		return time.Time{}, time.Time{}, leaveerrors.ErrStartDateRequired
	}
	if end == "" {
		return time.Time{}, time.Time{}, leaveerrors.ErrEndDateRequired
	}
	startDate, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return startDate, endDate, nil
}

// monthBounds returns the first and last calendar day of now's month.
func monthBounds(now time.Time) (time.Time, time.Time) {
	y, m, _ := now.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}
