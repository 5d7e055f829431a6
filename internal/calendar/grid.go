// Package calendar renders a month into the 6x7 day grid the booking UI
// displays. Rendering is a pure function of the target month, today's date
// and the current selection; it performs no mutation and no I/O.
package calendar

import (
	"time"

	"github.com/matej-podzemny/hotdesk-helper/internal/selection"
)

// totalCells is the full 6-row grid. A trailing seventh row consisting only
// of next-month days is never emitted.
const totalCells = 42

var dayHeaders = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

type Cell struct {
	Date       selection.DateKey `json:"date"`
	Day        int               `json:"day"`
	OtherMonth bool              `json:"other_month,omitempty"`
	Past       bool              `json:"past,omitempty"`
	Today      bool              `json:"today,omitempty"`
	Weekend    bool              `json:"weekend,omitempty"`
	Selected   bool              `json:"selected,omitempty"`
}

type Grid struct {
	Title      string    `json:"title"` // e.g. "January 2025"
	Year       int       `json:"year"`
	Month      int       `json:"month"`
	DayHeaders [7]string `json:"day_headers"`
	Cells      []Cell    `json:"cells"`
}

// BuildGrid lays out the month containing `month` as a Sunday-first grid.
// Leading and trailing cells belong to the adjacent months; they carry their
// real dates and past classification but none of the in-month styling.
func BuildGrid(month time.Time, today time.Time, selected *selection.DateSet) Grid {
	firstOfMonth := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.Local)
	daysInMonth := firstOfMonth.AddDate(0, 1, -1).Day()
	startWeekday := int(firstOfMonth.Weekday())

	todayMidnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)

	grid := Grid{
		Title:      firstOfMonth.Format("January 2006"),
		Year:       firstOfMonth.Year(),
		Month:      int(firstOfMonth.Month()),
		DayHeaders: dayHeaders,
		Cells:      make([]Cell, 0, totalCells),
	}

	// Leading days from the previous month.
	for i := 0; i < startWeekday; i++ {
		date := firstOfMonth.AddDate(0, 0, i-startWeekday)
		grid.Cells = append(grid.Cells, Cell{
			Date:       selection.NewDateKey(date),
			Day:        date.Day(),
			OtherMonth: true,
			Past:       date.Before(todayMidnight),
		})
	}

	for day := 1; day <= daysInMonth; day++ {
		date := firstOfMonth.AddDate(0, 0, day-1)
		key := selection.NewDateKey(date)
		weekday := date.Weekday()

		grid.Cells = append(grid.Cells, Cell{
			Date:     key,
			Day:      day,
			Past:     date.Before(todayMidnight),
			Today:    date.Equal(todayMidnight),
			Weekend:  weekday == time.Saturday || weekday == time.Sunday,
			Selected: selected != nil && selected.Contains(key),
		})
	}

	// Trailing days from the next month, only while they do not amount to a
	// fully empty extra row.
	remaining := totalCells - (startWeekday + daysInMonth)
	if remaining < 7 {
		for day := 1; day <= remaining; day++ {
			date := firstOfMonth.AddDate(0, 1, day-1)
			grid.Cells = append(grid.Cells, Cell{
				Date:       selection.NewDateKey(date),
				Day:        day,
				OtherMonth: true,
				Past:       date.Before(todayMidnight),
			})
		}
	}

	return grid
}
