package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Booking is a record returned by the remote booking service. Field names
// mirror the upstream wire format.
type Booking struct {
	BookingID        int64  `json:"BOOKING_ID"`
	BookingReference string `json:"BOOKING_REFERENCE"`
	FromDate         string `json:"FROM_DATE"` // "DD/MM/YY"
	FromTime         string `json:"FROM_TIME"`
	ToTime           string `json:"TO_TIME"`
	SeatName         string `json:"SEAT_NAME"`
	Zone             string `json:"ZONE"`
	Floor            string `json:"FLOOR"`
	SublocationName  string `json:"SUBLOC_NAME"`
	EmailID          string `json:"EMAIL_ID,omitempty"`
}

// Date parses the upstream "DD/MM/YY" from-date at calendar-day granularity.
func (b Booking) Date() (time.Time, error) {
	parts := strings.Split(b.FromDate, "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("malformed booking date %q", b.FromDate)
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed booking day %q", b.FromDate)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed booking month %q", b.FromDate)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed booking year %q", b.FromDate)
	}

	return time.Date(2000+year, time.Month(month), day, 0, 0, 0, 0, time.Local), nil
}

// Actionable reports whether the record carries enough identity to be
// cancelled. Records lacking both the id and the reference cannot be acted
// upon safely and are dropped at load time.
func (b Booking) Actionable() bool {
	return b.BookingID != 0 || b.BookingReference != ""
}

// DeleteBookingItem is one entry of a batched delete request.
type DeleteBookingItem struct {
	BookingReference string `json:"bookingReference"`
	BookingID        int64  `json:"bookingId"`
	SeatName         string `json:"seatName"`
	IsCurrentDay     bool   `json:"isCurrentDay"`
}

// DeleteBookingRequest is the batched delete payload.
type DeleteBookingRequest struct {
	Data []DeleteBookingItem `json:"data"`
}
