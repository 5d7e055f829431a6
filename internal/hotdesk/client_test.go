package hotdesk

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matej-podzemny/hotdesk-helper/internal/selection"
	"github.com/matej-podzemny/hotdesk-helper/pkg/client"
	apperrors "github.com/matej-podzemny/hotdesk-helper/pkg/errors"
	"github.com/matej-podzemny/hotdesk-helper/pkg/logger"
	"github.com/matej-podzemny/hotdesk-helper/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(client.NewHttpClient(srv.URL, 5*time.Second), testLogger())
}

func TestCheckAvailability(t *testing.T) {
	var gotQuery map[string]string
	var gotBody map[string]string
	var gotBearer string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotBearer = r.Header.Get("Bearer")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Write([]byte(`[{"a@b.com":"01/06/2025"}]`))
	})

	markers, err := c.CheckAvailability(context.Background(), "tok", 8357,
		[]selection.DateKey{"2025-01-06", "2025-01-07"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(markers) != 1 {
		t.Fatalf("markers = %v", markers)
	}

	if gotBearer != "tok" {
		t.Errorf("Bearer header = %q", gotBearer)
	}
	if gotQuery["seatIDs"] != "8357" || gotQuery["zoneId"] != "Open Space" {
		t.Errorf("query = %v", gotQuery)
	}
	if gotQuery["starttime"] != "08:00AM" || gotQuery["endtime"] != "06:00PM" {
		t.Errorf("time window query = %v", gotQuery)
	}
	if len(gotBody) != 2 {
		t.Errorf("body = %v, want two self-mapped dates", gotBody)
	}
}

func TestCheckAvailabilityTransportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.CheckAvailability(context.Background(), "tok", 8357,
		[]selection.DateKey{"2025-01-06"})
	if !apperrors.HasCode(err, apperrors.CodeUpstream) {
		t.Fatalf("expected UPSTREAM_ERROR, got %v", err)
	}
}

func TestCheckAvailabilityAmbiguousBodyFailsOpen(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`definitely not json`))
	})

	markers, err := c.CheckAvailability(context.Background(), "tok", 8357,
		[]selection.DateKey{"2025-01-06"})
	if err != nil {
		t.Fatalf("ambiguous parse must not error: %v", err)
	}
	if len(markers) != 0 {
		t.Errorf("markers = %v, want none", markers)
	}
}

func TestCreateBooking(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{name: "http success", status: http.StatusOK, body: `{"whatever":1}`},
		{name: "sentinel body on error status", status: http.StatusBadRequest, body: `"\"\""`},
		{name: "failure body", status: http.StatusBadRequest, body: `"seat already taken"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("emailId") != "a@b.com" {
					t.Errorf("emailId = %q", r.URL.Query().Get("emailId"))
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			err := c.CreateBooking(context.Background(), "tok", "a@b.com", 8357,
				[]selection.DateKey{"2025-01-06", "2025-01-07"})
			if tt.wantErr {
				if !apperrors.HasCode(err, apperrors.CodeUpstream) {
					t.Fatalf("expected UPSTREAM_ERROR, got %v", err)
				}
				appErr := apperrors.AsAppError(err)
				if appErr.Details["body"] != tt.body {
					t.Errorf("raw body not attached: %v", appErr.Details)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFetchBookings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case pathMyBookings:
			w.Write([]byte(`[{"BOOKING_ID":1,"BOOKING_REFERENCE":"R1","FROM_DATE":"06/01/25"}]`))
		case pathHistory:
			if r.URL.Query().Get("ShowMore") != "true" {
				t.Errorf("history query = %v", r.URL.Query())
			}
			w.Write([]byte(`"[]"`)) // string-wrapped empty array
		default:
			w.Write([]byte(`[]`))
		}
	})

	mine, err := c.FetchMyBookings(context.Background(), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 1 || mine[0].BookingReference != "R1" {
		t.Errorf("mine = %+v", mine)
	}

	history, err := c.FetchHistory(context.Background(), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history = %+v", history)
	}
}

func TestFetchBookingsDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>login page</html>`))
	})

	_, err := c.FetchMyBookings(context.Background(), "tok")
	if !apperrors.HasCode(err, apperrors.CodeDecode) {
		t.Fatalf("expected DECODE_ERROR, got %v", err)
	}
}

func TestDeleteBookings(t *testing.T) {
	var gotReq model.DeleteBookingRequest
	var gotReferer string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("Referer")
		if r.URL.Query().Get("currentTZDateTime") == "" {
			t.Error("currentTZDateTime missing")
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotReq)
		w.WriteHeader(http.StatusOK)
	})

	items := []model.DeleteBookingItem{
		{BookingReference: "R1", BookingID: 1, SeatName: "12", IsCurrentDay: true},
		{BookingReference: "R2", BookingID: 2, SeatName: "12"},
	}
	if err := c.DeleteBookings(context.Background(), "tok", items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gotReq.Data) != 2 || gotReq.Data[0].BookingReference != "R1" {
		t.Errorf("delete payload = %+v", gotReq)
	}
	if gotReferer == "" || gotReferer[len(gotReferer)-len(refererBookings):] != refererBookings {
		t.Errorf("Referer = %q, want suffix %q", gotReferer, refererBookings)
	}
}

func TestDeleteBookingsFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := c.DeleteBookings(context.Background(), "tok", []model.DeleteBookingItem{{BookingID: 1}})
	if !apperrors.HasCode(err, apperrors.CodeUpstream) {
		t.Fatalf("expected UPSTREAM_ERROR, got %v", err)
	}
}
