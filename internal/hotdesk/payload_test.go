package hotdesk

import (
	"testing"

	"github.com/matej-podzemny/hotdesk-helper/internal/selection"
)

func TestAvailabilityPayload(t *testing.T) {
	payload := availabilityPayload([]selection.DateKey{"2025-01-06", "2025-01-07"})

	if len(payload) != 2 {
		t.Fatalf("payload size = %d, want 2", len(payload))
	}
	want := "01/06/2025 12:00:00 AM"
	if payload[want] != want {
		t.Errorf("payload missing self-mapped key %q: %v", want, payload)
	}
}

func TestBookingPayload(t *testing.T) {
	payload := bookingPayload([]selection.DateKey{"2025-12-31"})
	if payload["12/31/2025"] != "12/31/2025" {
		t.Errorf("payload = %v", payload)
	}
}

func TestDecodeConflictMarkers(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "plain empty array",
			body: `[]`,
			want: 0,
		},
		{
			name: "genuine conflict",
			body: `[{"a@b.com":"01/06/2025"}]`,
			want: 1,
		},
		{
			name: "double-encoded array",
			body: `"[{\"a@b.com\":\"01/06/2025\"}]"`,
			want: 1,
		},
		{
			name: "padding entries filtered",
			body: `[{"a@b.com":""},{"x@y.com":"  "},{"c@d.com":"01/07/2025"}]`,
			want: 1,
		},
		{
			name: "not json at all",
			body: `<html>oops</html>`,
			want: 0,
		},
		{
			name: "object instead of array",
			body: `{"unexpected":"shape"}`,
			want: 0,
		},
		{
			name: "double-encoded garbage",
			body: `"not json inside"`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeConflictMarkers([]byte(tt.body))
			if len(got) != tt.want {
				t.Errorf("marker count = %d, want %d (%v)", len(got), tt.want, got)
			}
		})
	}
}

func TestDecodeBookings(t *testing.T) {
	const record = `{"BOOKING_ID":7,"BOOKING_REFERENCE":"REF-7","FROM_DATE":"06/01/25",` +
		`"FROM_TIME":"8:00 AM","TO_TIME":"6:00 PM","SEAT_NAME":"12","ZONE":"Open Space",` +
		`"FLOOR":"4","SUBLOC_NAME":"North Wing"}`

	t.Run("plain array", func(t *testing.T) {
		got, err := decodeBookings([]byte(`[` + record + `]`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].BookingID != 7 || got[0].SeatName != "12" {
			t.Errorf("decoded %+v", got)
		}
	})

	t.Run("string-wrapped array", func(t *testing.T) {
		wrapped := `"[{\"BOOKING_ID\":7,\"BOOKING_REFERENCE\":\"REF-7\",\"FROM_DATE\":\"06/01/25\"}]"`
		got, err := decodeBookings([]byte(wrapped))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].BookingReference != "REF-7" {
			t.Errorf("decoded %+v", got)
		}
	})

	t.Run("non-array json yields empty", func(t *testing.T) {
		got, err := decodeBookings([]byte(`{"message":"no content"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("decoded %+v, want empty", got)
		}
	})

	t.Run("unparseable body errors", func(t *testing.T) {
		if _, err := decodeBookings([]byte(`<html>`)); err == nil {
			t.Error("expected decode error")
		}
	})
}

func TestIsSentinelSuccess(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "double-encoded empty string", body: `"\"\""`, want: true},
		{name: "encoded empty string", body: `""`, want: true},
		{name: "empty body", body: ``, want: false},
		{name: "real content", body: `"booking failed"`, want: false},
		{name: "json object", body: `{"ok":true}`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSentinelSuccess([]byte(tt.body)); got != tt.want {
				t.Errorf("isSentinelSuccess(%q) = %v, want %v", tt.body, got, tt.want)
			}
		})
	}
}
