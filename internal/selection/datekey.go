package selection

import (
	"fmt"
	"time"
)

// DateKey identifies a calendar day as "YYYY-MM-DD". Keys have no time
// component; lexicographic order equals chronological order.
type DateKey string

const dateKeyLayout = "2006-01-02"

func NewDateKey(t time.Time) DateKey {
	return DateKey(t.Format(dateKeyLayout))
}

func ParseDateKey(s string) (DateKey, error) {
	if _, err := time.ParseInLocation(dateKeyLayout, s, time.Local); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateKey(s), nil
}

// Time returns local midnight of the day.
func (k DateKey) Time() time.Time {
	t, _ := time.ParseInLocation(dateKeyLayout, string(k), time.Local)
	return t
}

func (k DateKey) Weekday() time.Weekday {
	return k.Time().Weekday()
}

func (k DateKey) IsWeekend() bool {
	wd := k.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (k DateKey) Before(other DateKey) bool {
	return k < other
}

func (k DateKey) String() string {
	return string(k)
}

// midnight truncates t to local midnight, the granularity every date
// comparison in the selection model uses.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
