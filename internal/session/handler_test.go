package session

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/matej-podzemny/hotdesk-helper/internal/booking"
	"github.com/matej-podzemny/hotdesk-helper/internal/bookinglist"
	"github.com/matej-podzemny/hotdesk-helper/internal/credentials"
	"github.com/matej-podzemny/hotdesk-helper/internal/selection"
	"github.com/matej-podzemny/hotdesk-helper/pkg/middleware"
	"github.com/matej-podzemny/hotdesk-helper/pkg/model"
)

// mockRemote stands in for the remote booking service client.
type mockRemote struct {
	checkAvailabilityFunc func(ctx context.Context, token string, seatID int64, dates []selection.DateKey) ([]model.ConflictMarker, error)
	createBookingFunc     func(ctx context.Context, token, email string, seatID int64, dates []selection.DateKey) error
	fetchMineFunc         func(ctx context.Context, token string) ([]model.Booking, error)
	deleteFunc            func(ctx context.Context, token string, items []model.DeleteBookingItem) error

	createCalls int
	deleteCalls int
}

func (m *mockRemote) CheckAvailability(ctx context.Context, token string, seatID int64, dates []selection.DateKey) ([]model.ConflictMarker, error) {
	if m.checkAvailabilityFunc != nil {
		return m.checkAvailabilityFunc(ctx, token, seatID, dates)
	}
	return nil, nil
}

func (m *mockRemote) CreateBooking(ctx context.Context, token, email string, seatID int64, dates []selection.DateKey) error {
	m.createCalls++
	if m.createBookingFunc != nil {
		return m.createBookingFunc(ctx, token, email, seatID, dates)
	}
	return nil
}

func (m *mockRemote) FetchMyBookings(ctx context.Context, token string) ([]model.Booking, error) {
	if m.fetchMineFunc != nil {
		return m.fetchMineFunc(ctx, token)
	}
	return nil, nil
}

func (m *mockRemote) FetchForSomeoneBookings(ctx context.Context, token string) ([]model.Booking, error) {
	return nil, nil
}

func (m *mockRemote) FetchHistory(ctx context.Context, token string) ([]model.Booking, error) {
	return nil, nil
}

func (m *mockRemote) DeleteBookings(ctx context.Context, token string, items []model.DeleteBookingItem) error {
	m.deleteCalls++
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, token, items)
	}
	return nil
}

type testEnv struct {
	router *httprouter.Router
	remote *mockRemote
	clock  *testClock
	guard  *middleware.InFlightGuard
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := testLogger()
	clock := newTestClock()
	remote := &mockRemote{}

	credStore, err := credentials.NewStore(filepath.Join(t.TempDir(), "test.db"), log)
	if err != nil {
		t.Fatalf("failed to open credentials store: %v", err)
	}
	t.Cleanup(func() { credStore.Close() })

	sessions := NewStore(time.Hour, clock.Now, log)
	t.Cleanup(sessions.Stop)

	validator := credentials.NewValidator(log)
	guard := middleware.NewInFlightGuard()

	router := httprouter.New()
	NewHandler(sessions, validator, credStore, clock.Now, log).RegisterRoutes(router)
	NewBookingsHandler(
		sessions,
		booking.NewService(remote, validator, log),
		bookinglist.NewService(remote, clock.Now, log),
		credStore,
		guard,
		log,
	).RegisterRoutes(router)

	return &testEnv{router: router, remote: remote, clock: clock, guard: guard}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("unparseable response body %q: %v", rec.Body.String(), err)
		}
	}
	return rec, decoded
}

func (e *testEnv) createSession(t *testing.T) string {
	t.Helper()
	rec, resp := e.do(t, http.MethodPost, "/api/v1/sessions", nil, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session status = %d", rec.Code)
	}
	data := resp["data"].(map[string]any)
	return data["session_id"].(string)
}

func validForm() map[string]string {
	return map[string]string{
		"email":        "a@b.com",
		"bearer_token": "tok",
		"seat_number":  "3",
	}
}

func TestToggleDateLifecycle(t *testing.T) {
	env := newTestEnv(t)
	sid := env.createSession(t)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/sessions/"+sid+"/dates/toggle",
		map[string]string{"date": "2025-06-03"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d, body %s", rec.Code, rec.Body.String())
	}
	data := resp["data"].(map[string]any)
	if data["count"].(float64) != 1 {
		t.Errorf("count after toggle = %v", data["count"])
	}

	// Saturday is silently ignored.
	_, resp = env.do(t, http.MethodPost, "/api/v1/sessions/"+sid+"/dates/toggle",
		map[string]string{"date": "2025-06-07"}, nil)
	data = resp["data"].(map[string]any)
	if data["count"].(float64) != 1 {
		t.Errorf("weekend toggle changed count to %v", data["count"])
	}

	rec, _ = env.do(t, http.MethodDelete, "/api/v1/sessions/"+sid+"/dates/2025-06-03", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove status = %d", rec.Code)
	}
	_, resp = env.do(t, http.MethodGet, "/api/v1/sessions/"+sid+"/dates", nil, nil)
	data = resp["data"].(map[string]any)
	if data["count"].(float64) != 0 {
		t.Errorf("count after remove = %v", data["count"])
	}
}

func TestGetCalendars(t *testing.T) {
	env := newTestEnv(t)
	sid := env.createSession(t)

	rec, resp := env.do(t, http.MethodGet, "/api/v1/sessions/"+sid+"/calendars", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("calendars status = %d", rec.Code)
	}

	data := resp["data"].(map[string]any)
	calendars := data["calendars"].([]any)
	if len(calendars) != 2 {
		t.Fatalf("calendar count = %d", len(calendars))
	}
	first := calendars[0].(map[string]any)
	second := calendars[1].(map[string]any)
	if first["title"] != "June 2025" || second["title"] != "July 2025" {
		t.Errorf("titles = %v, %v", first["title"], second["title"])
	}
}

func TestNavigateValidation(t *testing.T) {
	env := newTestEnv(t)
	sid := env.createSession(t)

	rec, _ := env.do(t, http.MethodPost, "/api/v1/sessions/"+sid+"/calendars/3/navigate",
		map[string]int{"direction": 1}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid calendar status = %d", rec.Code)
	}

	rec, resp := env.do(t, http.MethodPost, "/api/v1/sessions/"+sid+"/calendars/1/navigate",
		map[string]int{"direction": 1}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("navigate status = %d, body %s", rec.Code, rec.Body.String())
	}
	data := resp["data"].(map[string]any)
	if data["title"] != "July 2025" {
		t.Errorf("title after navigate = %v", data["title"])
	}
}

func TestSessionNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodGet, "/api/v1/sessions/unknown/dates", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestValidateCredentialsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	sid := env.createSession(t)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/sessions/"+sid+"/credentials/validate",
		map[string]any{"require_dates": true}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("validate status = %d", rec.Code)
	}
	data := resp["data"].(map[string]any)
	if data["valid"].(bool) {
		t.Error("empty form validated as ok")
	}
	errs := data["errors"].([]any)
	if len(errs) != 4 {
		t.Errorf("error count = %d (%v), want 4 including missing dates", len(errs), errs)
	}
}

func TestStoredCredentialsRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodPut, "/api/v1/credentials",
		map[string]string{"email": "a@b.com", "seat_number": "5", "bearer_token": "tok"}, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("save status = %d", rec.Code)
	}

	rec, resp := env.do(t, http.MethodGet, "/api/v1/credentials", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("load status = %d", rec.Code)
	}
	data := resp["data"].(map[string]any)
	if data["email"] != "a@b.com" || data["seat_number"] != "5" {
		t.Errorf("stored credentials = %v", data)
	}
}

func TestSubmitClearsSelection(t *testing.T) {
	env := newTestEnv(t)
	sid := env.createSession(t)

	env.do(t, http.MethodPost, "/api/v1/sessions/"+sid+"/dates/toggle",
		map[string]string{"date": "2025-06-03"}, nil)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/sessions/"+sid+"/bookings/submit", validForm(), nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d, body %s", rec.Code, rec.Body.String())
	}
	data := resp["data"].(map[string]any)
	if data["booked"] != true {
		t.Errorf("submit result = %v", data)
	}
	if env.remote.createCalls != 1 {
		t.Errorf("create calls = %d, want 1", env.remote.createCalls)
	}

	_, resp = env.do(t, http.MethodGet, "/api/v1/sessions/"+sid+"/dates", nil, nil)
	dates := resp["data"].(map[string]any)
	if dates["count"].(float64) != 0 {
		t.Errorf("selection not cleared after booking: %v", dates["count"])
	}
}

func TestSubmitConflictReturns409(t *testing.T) {
	env := newTestEnv(t)
	env.remote.checkAvailabilityFunc = func(ctx context.Context, token string, seatID int64, dates []selection.DateKey) ([]model.ConflictMarker, error) {
		return []model.ConflictMarker{{"x@y.com": "06/03/2025"}}, nil
	}
	sid := env.createSession(t)

	env.do(t, http.MethodPost, "/api/v1/sessions/"+sid+"/dates/toggle",
		map[string]string{"date": "2025-06-03"}, nil)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/sessions/"+sid+"/bookings/submit", validForm(), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("submit status = %d, want 409", rec.Code)
	}
	if resp["code"] != "CONFLICT" {
		t.Errorf("error code = %v", resp["code"])
	}
	if env.remote.createCalls != 0 {
		t.Errorf("create called despite conflict")
	}
}

func TestSubmitRejectedWhileInFlight(t *testing.T) {
	env := newTestEnv(t)
	sid := env.createSession(t)

	env.do(t, http.MethodPost, "/api/v1/sessions/"+sid+"/dates/toggle",
		map[string]string{"date": "2025-06-03"}, nil)

	if !env.guard.Acquire("submit:" + sid) {
		t.Fatal("guard key unexpectedly held")
	}
	defer env.guard.Release("submit:" + sid)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/sessions/"+sid+"/bookings/submit", validForm(), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if resp["code"] != "REQUEST_IN_FLIGHT" {
		t.Errorf("error code = %v", resp["code"])
	}
	if env.remote.createCalls != 0 {
		t.Error("duplicate submission reached the remote service")
	}
}

func TestBookingsLoadToggleAndDeleteChecked(t *testing.T) {
	env := newTestEnv(t)
	env.remote.fetchMineFunc = func(ctx context.Context, token string) ([]model.Booking, error) {
		return []model.Booking{
			{BookingID: 1, BookingReference: "R1", FromDate: "03/06/25", SeatName: "12"},
			{BookingID: 2, BookingReference: "R2", FromDate: "04/06/25", SeatName: "12"},
		}, nil
	}
	sid := env.createSession(t)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/sessions/"+sid+"/bookings/load",
		map[string]string{"bearer_token": "tok"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("load status = %d, body %s", rec.Code, rec.Body.String())
	}
	data := resp["data"].(map[string]any)
	upcoming := data["upcoming"].(map[string]any)
	if upcoming["empty"].(bool) {
		t.Fatal("upcoming section empty after load")
	}

	rec, resp = env.do(t, http.MethodPost, "/api/v1/sessions/"+sid+"/bookings/sections/upcoming/toggle",
		map[string]string{"key": "R1"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d, body %s", rec.Code, rec.Body.String())
	}
	section := resp["data"].(map[string]any)
	if section["check_state"] != "some" {
		t.Errorf("check state = %v, want some", section["check_state"])
	}

	rec, resp = env.do(t, http.MethodPost, "/api/v1/sessions/"+sid+"/bookings/sections/upcoming/delete-checked",
		nil, map[string]string{"Bearer": "tok"})
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", rec.Code, rec.Body.String())
	}
	data = resp["data"].(map[string]any)
	if data["deleted"].(float64) != 1 {
		t.Errorf("deleted = %v, want 1", data["deleted"])
	}
	if env.remote.deleteCalls != 1 {
		t.Errorf("remote delete calls = %d", env.remote.deleteCalls)
	}
}

func TestDeleteCheckedEmptySelectionRejected(t *testing.T) {
	env := newTestEnv(t)
	env.remote.fetchMineFunc = func(ctx context.Context, token string) ([]model.Booking, error) {
		return []model.Booking{{BookingID: 1, BookingReference: "R1", FromDate: "03/06/25"}}, nil
	}
	sid := env.createSession(t)

	env.do(t, http.MethodPost, "/api/v1/sessions/"+sid+"/bookings/load",
		map[string]string{"bearer_token": "tok"}, nil)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/sessions/"+sid+"/bookings/sections/upcoming/delete-checked",
		nil, map[string]string{"Bearer": "tok"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp["code"] != "INVALID_INPUT" {
		t.Errorf("error code = %v", resp["code"])
	}
}

func TestUnknownSectionRejected(t *testing.T) {
	env := newTestEnv(t)
	sid := env.createSession(t)

	rec, _ := env.do(t, http.MethodPost, "/api/v1/sessions/"+sid+"/bookings/sections/nonsense/toggle",
		map[string]string{"key": "R1"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
