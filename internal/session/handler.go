package session

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/matej-podzemny/hotdesk-helper/internal/calendar"
	"github.com/matej-podzemny/hotdesk-helper/internal/credentials"
	"github.com/matej-podzemny/hotdesk-helper/internal/selection"
	apperrors "github.com/matej-podzemny/hotdesk-helper/pkg/errors"
	httputil "github.com/matej-podzemny/hotdesk-helper/pkg/http"
	"github.com/matej-podzemny/hotdesk-helper/pkg/logger"
)

// Handler serves session lifecycle, calendar rendering, date selection and
// credential endpoints.
type Handler struct {
	sessions  *Store
	validator *credentials.Validator
	creds     *credentials.Store
	clock     selection.Clock
	log       *logger.Logger
}

func NewHandler(sessions *Store, validator *credentials.Validator, creds *credentials.Store, clock selection.Clock, log *logger.Logger) *Handler {
	if clock == nil {
		clock = time.Now
	}
	return &Handler{
		sessions:  sessions,
		validator: validator,
		creds:     creds,
		clock:     clock,
		log:       log,
	}
}

type navigateRequest struct {
	Direction int `json:"direction"`
}

type toggleDateRequest struct {
	Date string `json:"date"`
}

type weekdayRequest struct {
	Weekday int    `json:"weekday"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

type rangeRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type validateRequest struct {
	credentials.Input
	RequireDates bool `json:"require_dates"`
}

// datesState is the selection summary returned alongside most mutations so
// the UI can redraw without a second round trip.
type datesState struct {
	Dates            []selection.DateKey `json:"dates"`
	Count            int                 `json:"count"`
	WeekdayChecked   map[string]bool     `json:"weekday_checked"`
	WholeWeekChecked bool                `json:"whole_week_checked"`
}

type calendarsResponse struct {
	Calendars []calendar.Grid `json:"calendars"`
	Dates     datesState      `json:"dates"`
}

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
}

func datesStateOf(dates *selection.DateSet) datesState {
	checked := make(map[string]bool, len(weekdayNames))
	for wd, name := range weekdayNames {
		checked[name] = dates.WeekdayChecked(wd)
	}
	return datesState{
		Dates:            dates.Sorted(),
		Count:            dates.Count(),
		WeekdayChecked:   checked,
		WholeWeekChecked: dates.WholeWeekChecked(),
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess := h.sessions.Create()

	if err := httputil.WriteCreated(w, map[string]string{"session_id": sess.ID}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *Handler) GetCalendars(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, err := h.sessions.Get(ps.ByName("sid"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetCalendars", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var resp calendarsResponse
	_ = sess.WithLock(func() error {
		today := h.clock()
		resp.Calendars = make([]calendar.Grid, 0, selection.CalendarCount)
		for cal := 1; cal <= selection.CalendarCount; cal++ {
			month, _ := sess.Views.Month(cal)
			resp.Calendars = append(resp.Calendars, calendar.BuildGrid(month, today, sess.Dates))
		}
		resp.Dates = datesStateOf(sess.Dates)
		return nil
	})

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "GetCalendars", "operation", "WriteSuccess", "error", err)
	}
}

func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, err := h.sessions.Get(ps.ByName("sid"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Navigate", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	cal, err := parseCalendarNumber(ps.ByName("cal"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Navigate", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Navigate", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	var grid calendar.Grid
	opErr := sess.WithLock(func() error {
		if err := sess.Views.Navigate(cal, req.Direction); err != nil {
			return err
		}
		month, _ := sess.Views.Month(cal)
		grid = calendar.BuildGrid(month, h.clock(), sess.Dates)
		return nil
	})
	if opErr != nil {
		if writeErr := httputil.WriteError(w, opErr); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Navigate", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, grid); err != nil {
		h.log.Error("failed to write success response", "handler", "Navigate", "operation", "WriteSuccess", "error", err)
	}
}

func (h *Handler) GetDates(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, err := h.sessions.Get(ps.ByName("sid"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetDates", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var state datesState
	_ = sess.WithLock(func() error {
		state = datesStateOf(sess.Dates)
		return nil
	})

	if err := httputil.WriteSuccess(w, state); err != nil {
		h.log.Error("failed to write success response", "handler", "GetDates", "operation", "WriteSuccess", "error", err)
	}
}

func (h *Handler) ToggleDate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, err := h.sessions.Get(ps.ByName("sid"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ToggleDate", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var req toggleDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "ToggleDate", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	key, err := selection.ParseDateKey(req.Date)
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid date, must be YYYY-MM-DD")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ToggleDate", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var state datesState
	_ = sess.WithLock(func() error {
		sess.Dates.Toggle(key)
		state = datesStateOf(sess.Dates)
		return nil
	})

	if err := httputil.WriteSuccess(w, state); err != nil {
		h.log.Error("failed to write success response", "handler", "ToggleDate", "operation", "WriteSuccess", "error", err)
	}
}

func (h *Handler) RemoveDate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, err := h.sessions.Get(ps.ByName("sid"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "RemoveDate", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	key, err := selection.ParseDateKey(ps.ByName("date"))
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid date, must be YYYY-MM-DD")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "RemoveDate", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var state datesState
	_ = sess.WithLock(func() error {
		sess.Dates.Remove(key)
		state = datesStateOf(sess.Dates)
		return nil
	})

	if err := httputil.WriteSuccess(w, state); err != nil {
		h.log.Error("failed to write success response", "handler", "RemoveDate", "operation", "WriteSuccess", "error", err)
	}
}

func (h *Handler) ClearDates(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, err := h.sessions.Get(ps.ByName("sid"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ClearDates", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var state datesState
	_ = sess.WithLock(func() error {
		sess.Dates.Clear()
		state = datesStateOf(sess.Dates)
		return nil
	})

	if err := httputil.WriteSuccess(w, state); err != nil {
		h.log.Error("failed to write success response", "handler", "ClearDates", "operation", "WriteSuccess", "error", err)
	}
}

func (h *Handler) ToggleWeekday(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, err := h.sessions.Get(ps.ByName("sid"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ToggleWeekday", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var req weekdayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "ToggleWeekday", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	weekday := time.Weekday(req.Weekday)
	if weekday < time.Monday || weekday > time.Friday {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("weekday must be Monday through Friday")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ToggleWeekday", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	start, end, err := parseRange(req.Start, req.End)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ToggleWeekday", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var state datesState
	opErr := sess.WithLock(func() error {
		if err := sess.Dates.ToggleWeekdayInRange(weekday, start, end); err != nil {
			return err
		}
		state = datesStateOf(sess.Dates)
		return nil
	})
	if opErr != nil {
		if writeErr := httputil.WriteError(w, opErr); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ToggleWeekday", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, state); err != nil {
		h.log.Error("failed to write success response", "handler", "ToggleWeekday", "operation", "WriteSuccess", "error", err)
	}
}

func (h *Handler) SelectWholeWeek(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, err := h.sessions.Get(ps.ByName("sid"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SelectWholeWeek", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var req rangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "SelectWholeWeek", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	start, end, err := parseRange(req.Start, req.End)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SelectWholeWeek", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var state datesState
	opErr := sess.WithLock(func() error {
		if err := sess.Dates.SelectWholeWeek(start, end); err != nil {
			return err
		}
		state = datesStateOf(sess.Dates)
		return nil
	})
	if opErr != nil {
		if writeErr := httputil.WriteError(w, opErr); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SelectWholeWeek", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, state); err != nil {
		h.log.Error("failed to write success response", "handler", "SelectWholeWeek", "operation", "WriteSuccess", "error", err)
	}
}

func (h *Handler) ValidateCredentials(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, err := h.sessions.Get(ps.ByName("sid"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ValidateCredentials", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "ValidateCredentials", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	var result credentials.Result
	_ = sess.WithLock(func() error {
		result = h.validator.Validate(req.Input, sess.Dates.Count(), req.RequireDates)
		return nil
	})

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "ValidateCredentials", "operation", "WriteSuccess", "error", err)
	}
}

func (h *Handler) GetStoredCredentials(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stored, err := h.creds.Load(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetStoredCredentials", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, stored); err != nil {
		h.log.Error("failed to write success response", "handler", "GetStoredCredentials", "operation", "WriteSuccess", "error", err)
	}
}

func (h *Handler) SaveStoredCredentials(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var stored credentials.Stored
	if err := json.NewDecoder(r.Body).Decode(&stored); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "SaveStoredCredentials", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.creds.Save(r.Context(), stored); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SaveStoredCredentials", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func parseCalendarNumber(raw string) (int, error) {
	switch raw {
	case "1":
		return 1, nil
	case "2":
		return 2, nil
	}
	return 0, apperrors.InvalidInput("calendar number out of range")
}

func parseRange(startRaw, endRaw string) (selection.DateKey, selection.DateKey, error) {
	if startRaw == "" && endRaw == "" {
		return "", "", nil
	}
	start, err := selection.ParseDateKey(startRaw)
	if err != nil {
		return "", "", apperrors.InvalidInput("invalid start date, must be YYYY-MM-DD")
	}
	end, err := selection.ParseDateKey(endRaw)
	if err != nil {
		return "", "", apperrors.InvalidInput("invalid end date, must be YYYY-MM-DD")
	}
	return start, end, nil
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/sessions", h.Create)
	router.GET("/api/v1/sessions/:sid/calendars", h.GetCalendars)
	router.POST("/api/v1/sessions/:sid/calendars/:cal/navigate", h.Navigate)
	router.GET("/api/v1/sessions/:sid/dates", h.GetDates)
	router.POST("/api/v1/sessions/:sid/dates/toggle", h.ToggleDate)
	router.POST("/api/v1/sessions/:sid/dates/weekday", h.ToggleWeekday)
	router.POST("/api/v1/sessions/:sid/dates/whole-week", h.SelectWholeWeek)
	router.POST("/api/v1/sessions/:sid/dates/clear", h.ClearDates)
	router.DELETE("/api/v1/sessions/:sid/dates/:date", h.RemoveDate)
	router.POST("/api/v1/sessions/:sid/credentials/validate", h.ValidateCredentials)
	router.GET("/api/v1/credentials", h.GetStoredCredentials)
	router.PUT("/api/v1/credentials", h.SaveStoredCredentials)
}
