// Package hotdesk implements the boundary to the remote hot-desk booking
// service. Every operation is a single attempt; retries and backoff are
// deliberately absent.
package hotdesk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matej-podzemny/hotdesk-helper/internal/selection"
	"github.com/matej-podzemny/hotdesk-helper/pkg/client"
	apperrors "github.com/matej-podzemny/hotdesk-helper/pkg/errors"
	"github.com/matej-podzemny/hotdesk-helper/pkg/logger"
	"github.com/matej-podzemny/hotdesk-helper/pkg/model"
)

// Fixed location parameters of the office the seat table belongs to. The
// remote API wants them on every call.
const (
	locationID    = "11"
	sublocationID = "26"
	floorID       = "4"
	zoneID        = "Open Space"

	windowStart = "08:00AM"
	windowEnd   = "06:00PM"
)

const (
	pathCheckAvailability = "/CreateBooking/CheckSeatAvailabilityBeforeBookingMultiDate/"
	pathCreateBooking     = "/CreateBooking/PostSeatBookingMultiDateNew/"
	pathMyBookings        = "/MyBookings/GetMyActiveBookings"
	pathForSomeone        = "/MyBookings/GetBookedForSomeoneActiveBookings"
	pathHistory           = "/MyBookings/GetMyBookingsHistory/"
	pathDeleteBooking     = "/MyBookings/DeleteBooking/"

	refererCreate   = "/create-booking"
	refererBookings = "/my-bookings"
)

type Client struct {
	http   *client.HttpClient
	origin string
	clock  func() time.Time
	log    *logger.Logger
}

func NewClient(httpClient *client.HttpClient, log *logger.Logger) *Client {
	return &Client{
		http:   httpClient,
		origin: originOf(httpClient.BaseURL),
		clock:  time.Now,
		log:    log,
	}
}

// originOf strips the API path from the base URL; the service checks Origin
// and Referer headers against its web origin.
func originOf(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.TrimSuffix(baseURL, "/api")
	}
	return u.Scheme + "://" + u.Host
}

func (c *Client) headers(token, refererPage string) map[string]string {
	return map[string]string{
		"Accept":       "application/json",
		"Bearer":       token,
		"Content-Type": "application/json",
		"Origin":       c.origin,
		"Referer":      c.origin + refererPage,
	}
}

// CheckAvailability queries existing reservations overlapping the requested
// seat and dates in one batched call. Transport failures surface as upstream
// errors; an ambiguous body is treated as "no conflicts".
func (c *Client) CheckAvailability(ctx context.Context, token string, seatID int64, dates []selection.DateKey) ([]model.ConflictMarker, error) {
	query := url.Values{
		"locationId":    {locationID},
		"sublocationId": {sublocationID},
		"floorId":       {floorID},
		"zoneId":        {zoneID},
		"seatIDs":       {strconv.FormatInt(seatID, 10)},
		"starttime":     {windowStart},
		"endtime":       {windowEnd},
	}
	path := pathCheckAvailability + "?" + encodeQuery(query)

	resp, err := c.http.POST(ctx, path, availabilityPayload(dates), c.headers(token, refererCreate))
	if err != nil {
		return nil, apperrors.Upstream("Failed to check existing reservations", err)
	}
	if !resp.Success() {
		return nil, upstreamStatus("Availability check", resp)
	}

	markers := decodeConflictMarkers(resp.Body)
	c.log.Debug("Availability check completed",
		"dates", len(dates),
		"seat_id", seatID,
		"conflicts", len(markers),
	)
	return markers, nil
}

// CreateBooking books the seat for every date in one batched call. Success
// is an HTTP 2xx status or the sentinel empty-string body the endpoint is
// known to return; anything else fails with the raw body attached.
func (c *Client) CreateBooking(ctx context.Context, token, email string, seatID int64, dates []selection.DateKey) error {
	query := url.Values{
		"locationId":    {locationID},
		"sublocationId": {sublocationID},
		"floorId":       {floorID},
		"zoneId":        {zoneID},
		"seatIDs":       {strconv.FormatInt(seatID, 10)},
		"emailId":       {email},
		"reason":        {"null"},
		"starttime":     {windowStart},
		"endtime":       {windowEnd},
	}
	path := pathCreateBooking + "?" + encodeQuery(query)

	resp, err := c.http.POST(ctx, path, bookingPayload(dates), c.headers(token, refererCreate))
	if err != nil {
		return apperrors.Upstream("Failed to submit booking", err)
	}

	if resp.Success() || isSentinelSuccess(resp.Body) {
		c.log.Info("Booking created", "seat_id", seatID, "dates", len(dates))
		return nil
	}

	return apperrors.Upstream("Booking failed", nil).WithDetails(map[string]any{
		"status": resp.StatusCode,
		"body":   string(resp.Body),
	})
}

// FetchMyBookings returns the caller's own active bookings.
func (c *Client) FetchMyBookings(ctx context.Context, token string) ([]model.Booking, error) {
	return c.fetchBookings(ctx, token, pathMyBookings, "user bookings")
}

// FetchForSomeoneBookings returns active bookings the caller made for
// someone else.
func (c *Client) FetchForSomeoneBookings(ctx context.Context, token string) ([]model.Booking, error) {
	return c.fetchBookings(ctx, token, pathForSomeone, "booked for someone bookings")
}

// FetchHistory returns past bookings. The query string is carried verbatim:
// the OffsetCalculation value mixes encoded and bare characters and must not
// be re-encoded.
func (c *Client) FetchHistory(ctx context.Context, token string) ([]model.Booking, error) {
	const historyQuery = "TimezoneOffset=60&OffsetCalculation=PLUS%20+%20&ShowMore=true"
	return c.fetchBookings(ctx, token, pathHistory+"?"+historyQuery, "booking history")
}

func (c *Client) fetchBookings(ctx context.Context, token, path, label string) ([]model.Booking, error) {
	resp, err := c.http.GET(ctx, path, c.headers(token, refererCreate))
	if err != nil {
		return nil, apperrors.Upstream(fmt.Sprintf("Failed to fetch %s", label), err)
	}
	if !resp.Success() {
		return nil, upstreamStatus("Fetching "+label, resp)
	}

	bookings, err := decodeBookings(resp.Body)
	if err != nil {
		return nil, apperrors.Decode(fmt.Sprintf("Unreadable %s response", label), err)
	}
	return bookings, nil
}

// DeleteBookings cancels the given bookings in one batched call.
func (c *Client) DeleteBookings(ctx context.Context, token string, items []model.DeleteBookingItem) error {
	now := c.clock()
	query := url.Values{
		"locationId":        {locationID},
		"currentTZDateTime": {now.Format(timestampLayout)},
	}
	path := pathDeleteBooking + "?" + encodeQuery(query)

	resp, err := c.http.POST(ctx, path, model.DeleteBookingRequest{Data: items}, c.headers(token, refererBookings))
	if err != nil {
		return apperrors.Upstream("Failed to delete bookings", err)
	}
	if !resp.Success() {
		return upstreamStatus("Deleting bookings", resp)
	}

	c.log.Info("Bookings deleted", "count", len(items))
	return nil
}

func upstreamStatus(operation string, resp *client.Response) *apperrors.AppError {
	return apperrors.Upstream(
		fmt.Sprintf("%s failed: HTTP %d %s", operation, resp.StatusCode, http.StatusText(resp.StatusCode)),
		nil,
	).WithDetails(map[string]any{
		"status": resp.StatusCode,
		"body":   string(resp.Body),
	})
}
