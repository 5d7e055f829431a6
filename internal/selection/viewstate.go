package selection

import (
	"time"

	apperrors "github.com/matej-podzemny/hotdesk-helper/pkg/errors"
)

// CalendarCount is how many independent month calendars a session shows.
const CalendarCount = 2

// ViewState tracks the displayed month of each calendar. The first calendar
// starts on the current month, the second on the next. Never persisted.
type ViewState struct {
	months [CalendarCount]time.Time
}

func NewViewState(now time.Time) *ViewState {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	return &ViewState{
		months: [CalendarCount]time.Time{
			first,
			first.AddDate(0, 1, 0),
		},
	}
}

// Month returns the first day of the month calendar cal (1-based) displays.
func (v *ViewState) Month(cal int) (time.Time, error) {
	if cal < 1 || cal > CalendarCount {
		return time.Time{}, apperrors.InvalidInput("calendar number out of range")
	}
	return v.months[cal-1], nil
}

// Navigate moves calendar cal by direction months (+1 or -1).
func (v *ViewState) Navigate(cal, direction int) error {
	if cal < 1 || cal > CalendarCount {
		return apperrors.InvalidInput("calendar number out of range")
	}
	if direction != 1 && direction != -1 {
		return apperrors.InvalidInput("direction must be 1 or -1")
	}
	v.months[cal-1] = v.months[cal-1].AddDate(0, direction, 0)
	return nil
}
