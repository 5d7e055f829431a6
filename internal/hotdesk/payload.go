package hotdesk

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/matej-podzemny/hotdesk-helper/internal/selection"
	"github.com/matej-podzemny/hotdesk-helper/pkg/model"
)

// The remote service spells dates three different ways depending on the
// endpoint. All of them are US-ordered month/day. The availability endpoint
// additionally wants a fixed midnight suffix; it is appended as a literal
// because "12" inside a Go layout string would be read as a month token.
const (
	bookingDateLayout  = "01/02/2006"
	availabilitySuffix = " 12:00:00 AM"
	timestampLayout    = "1/2/2006 3:04:05 PM"
)

// availabilityPayload builds the body of the availability check: an object
// mapping each requested date to itself.
func availabilityPayload(dates []selection.DateKey) map[string]string {
	payload := make(map[string]string, len(dates))
	for _, d := range dates {
		key := d.Time().Format(bookingDateLayout) + availabilitySuffix
		payload[key] = key
	}
	return payload
}

// bookingPayload builds the body of the create-booking call, the same
// self-mapping shape without the time suffix.
func bookingPayload(dates []selection.DateKey) map[string]string {
	payload := make(map[string]string, len(dates))
	for _, d := range dates {
		key := d.Time().Format(bookingDateLayout)
		payload[key] = key
	}
	return payload
}

// unwrapOnce peels one extra JSON encoding layer off a response body. The
// upstream service sometimes returns a JSON string that itself contains
// JSON; when the body is such a string the inner bytes are returned,
// otherwise the body passes through untouched.
func unwrapOnce(body []byte) []byte {
	var inner string
	if err := json.Unmarshal(body, &inner); err != nil {
		return body
	}
	return []byte(inner)
}

// decodeConflictMarkers interprets an availability response. Ambiguity is
// resolved in the user's favor: anything that does not decode to an array of
// markers counts as "no conflicts". Padding entries with only blank values
// are dropped.
func decodeConflictMarkers(body []byte) []model.ConflictMarker {
	var markers []model.ConflictMarker
	if err := json.Unmarshal(unwrapOnce(body), &markers); err != nil {
		return nil
	}

	genuine := make([]model.ConflictMarker, 0, len(markers))
	for _, m := range markers {
		if m == nil || m.Empty() {
			continue
		}
		genuine = append(genuine, m)
	}
	return genuine
}

// decodeBookings interprets a bookings list response, unwrapping the
// string-in-string encoding when present. A body that decodes to something
// other than an array yields an empty list.
func decodeBookings(body []byte) ([]model.Booking, error) {
	raw := unwrapOnce(body)

	var bookings []model.Booking
	if err := json.Unmarshal(raw, &bookings); err == nil {
		return bookings, nil
	}

	// Not an array. Tolerate JSON scalars/objects as "no bookings" but
	// reject bodies that are not JSON at all.
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	return nil, nil
}

// isSentinelSuccess recognizes the quirky success body the booking endpoint
// returns in place of a conventional payload: the empty string, possibly
// wrapped in an extra encoding layer.
func isSentinelSuccess(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return false
	}

	var outer string
	if err := json.Unmarshal([]byte(trimmed), &outer); err != nil {
		return false
	}
	if outer == "" {
		return true
	}

	var inner string
	if err := json.Unmarshal([]byte(outer), &inner); err != nil {
		return false
	}
	return inner == ""
}

// encodeQuery renders query parameters with %20 for spaces, the form the
// remote service was observed to accept.
func encodeQuery(values url.Values) string {
	return strings.ReplaceAll(values.Encode(), "+", "%20")
}
