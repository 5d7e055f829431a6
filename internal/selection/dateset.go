package selection

import (
	"sort"
	"time"

	apperrors "github.com/matej-podzemny/hotdesk-helper/pkg/errors"
)

// Clock supplies the current time so "today" is injectable in tests.
type Clock func() time.Time

// DateSet holds the selected booking dates for one session together with the
// per-weekday toggle flags driving range selection. It is not safe for
// concurrent use; the owning session serializes access.
//
// Invariants: no weekend date and no date before today is ever inserted by
// any mutator. The weekday flags track toggle state only - manual single-day
// edits may drift actual membership away from what a flag suggests, and that
// drift is intentional.
type DateSet struct {
	clock Clock
	dates map[DateKey]struct{}

	// checked state per weekday, Monday..Friday meaningful
	weekdayChecked [7]bool
}

func NewDateSet(clock Clock) *DateSet {
	if clock == nil {
		clock = time.Now
	}
	return &DateSet{
		clock: clock,
		dates: make(map[DateKey]struct{}),
	}
}

func (s *DateSet) today() time.Time {
	return midnight(s.clock())
}

// Toggle flips membership of a single day. Weekend days and days before
// today are silently ignored, mirroring a click on a disabled calendar cell.
func (s *DateSet) Toggle(key DateKey) {
	if key.IsWeekend() {
		return
	}
	if key.Time().Before(s.today()) {
		return
	}

	if _, ok := s.dates[key]; ok {
		delete(s.dates, key)
	} else {
		s.dates[key] = struct{}{}
	}
}

func (s *DateSet) Contains(key DateKey) bool {
	_, ok := s.dates[key]
	return ok
}

// Remove drops a single date, used when the user dismisses a date tag from
// the summary display.
func (s *DateSet) Remove(key DateKey) {
	delete(s.dates, key)
}

// Clear empties the set and resets every weekday toggle flag.
func (s *DateSet) Clear() {
	s.dates = make(map[DateKey]struct{})
	s.weekdayChecked = [7]bool{}
}

func (s *DateSet) Count() int {
	return len(s.dates)
}

// Sorted returns the selected dates in ascending order.
func (s *DateSet) Sorted() []DateKey {
	keys := make([]DateKey, 0, len(s.dates))
	for k := range s.dates {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// WeekdayChecked reports the toggle flag for one weekday.
func (s *DateSet) WeekdayChecked(weekday time.Weekday) bool {
	return s.weekdayChecked[weekday]
}

// WholeWeekChecked is true iff all five Monday..Friday flags are set.
func (s *DateSet) WholeWeekChecked() bool {
	for wd := time.Monday; wd <= time.Friday; wd++ {
		if !s.weekdayChecked[wd] {
			return false
		}
	}
	return true
}

// ToggleWeekdayInRange flips the toggle flag for weekday and applies it to
// every matching day in [start, end] that is not before today: inserting when
// the flag was unchecked, removing when it was checked. The flag flips even
// when the range contains no matching day.
func (s *DateSet) ToggleWeekdayInRange(weekday time.Weekday, start, end DateKey) error {
	if start == "" || end == "" {
		return apperrors.InvalidInput("Please select date range first")
	}

	selecting := !s.weekdayChecked[weekday]
	today := s.today()

	for current := start.Time(); !current.After(end.Time()); current = current.AddDate(0, 0, 1) {
		if current.Weekday() != weekday || current.Before(today) {
			continue
		}
		key := NewDateKey(current)
		if selecting {
			s.dates[key] = struct{}{}
		} else {
			delete(s.dates, key)
		}
	}

	s.weekdayChecked[weekday] = selecting
	return nil
}

// SelectWholeWeek toggles Monday..Friday as one batch. When every weekday
// flag is already set the batch unchecks them all; otherwise it checks the
// remaining unchecked ones.
func (s *DateSet) SelectWholeWeek(start, end DateKey) error {
	if start == "" || end == "" {
		return apperrors.InvalidInput("Please select date range first")
	}

	if s.WholeWeekChecked() {
		for wd := time.Monday; wd <= time.Friday; wd++ {
			if s.weekdayChecked[wd] {
				if err := s.ToggleWeekdayInRange(wd, start, end); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for wd := time.Monday; wd <= time.Friday; wd++ {
		if !s.weekdayChecked[wd] {
			if err := s.ToggleWeekdayInRange(wd, start, end); err != nil {
				return err
			}
		}
	}
	return nil
}
