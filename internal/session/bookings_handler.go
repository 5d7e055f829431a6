package session

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/matej-podzemny/hotdesk-helper/internal/booking"
	"github.com/matej-podzemny/hotdesk-helper/internal/bookinglist"
	"github.com/matej-podzemny/hotdesk-helper/internal/credentials"
	apperrors "github.com/matej-podzemny/hotdesk-helper/pkg/errors"
	httputil "github.com/matej-podzemny/hotdesk-helper/pkg/http"
	"github.com/matej-podzemny/hotdesk-helper/pkg/logger"
	"github.com/matej-podzemny/hotdesk-helper/pkg/middleware"
	"github.com/matej-podzemny/hotdesk-helper/pkg/model"
	"github.com/matej-podzemny/hotdesk-helper/pkg/sanitizer"
)

// BookingsHandler serves the booking submission workflow and the bookings
// view: loading, bulk selection and deletion.
type BookingsHandler struct {
	sessions *Store
	booking  *booking.Service
	lists    *bookinglist.Service
	creds    *credentials.Store
	guard    *middleware.InFlightGuard
	log      *logger.Logger
}

func NewBookingsHandler(sessions *Store, bookingSvc *booking.Service, lists *bookinglist.Service, creds *credentials.Store, guard *middleware.InFlightGuard, log *logger.Logger) *BookingsHandler {
	return &BookingsHandler{
		sessions: sessions,
		booking:  bookingSvc,
		lists:    lists,
		creds:    creds,
		guard:    guard,
		log:      log,
	}
}

type loadRequest struct {
	BearerToken string `json:"bearer_token"`
}

type sectionKeyRequest struct {
	Key string `json:"key"`
}

type selectAllRequest struct {
	Checked bool `json:"checked"`
}

// sectionState is one section's derived display state.
type sectionState struct {
	Bookings     []model.Booking        `json:"bookings"`
	Empty        bool                   `json:"empty"`
	CheckedKeys  []string               `json:"checked_keys,omitempty"`
	CheckedCount int                    `json:"checked_count"`
	CheckState   bookinglist.CheckState `json:"check_state"`
}

type bookingsResponse struct {
	Today      sectionState `json:"today"`
	Upcoming   sectionState `json:"upcoming"`
	ForSomeone sectionState `json:"for_someone"`
	History    sectionState `json:"history"`
}

func sectionStateOf(snap *bookinglist.Snapshot, sel *bookinglist.BulkSelection, section bookinglist.Section) sectionState {
	bookings := snap.Section(section)
	if bookings == nil {
		bookings = []model.Booking{}
	}
	keys := bookinglist.SectionKeys(snap, section)
	return sectionState{
		Bookings:     bookings,
		Empty:        len(bookings) == 0,
		CheckedKeys:  sel.Checked(section),
		CheckedCount: sel.Count(section),
		CheckState:   sel.State(section, keys),
	}
}

func bookingsResponseOf(snap *bookinglist.Snapshot, sel *bookinglist.BulkSelection) bookingsResponse {
	return bookingsResponse{
		Today:      sectionStateOf(snap, sel, bookinglist.SectionToday),
		Upcoming:   sectionStateOf(snap, sel, bookinglist.SectionUpcoming),
		ForSomeone: sectionStateOf(snap, sel, bookinglist.SectionForSomeone),
		History:    sectionStateOf(snap, sel, bookinglist.SectionHistory),
	}
}

// resolveToken prefers the request token and falls back to the stored one.
func (h *BookingsHandler) resolveToken(r *http.Request, raw string) (string, error) {
	token := sanitizer.NormalizeToken(raw)
	if token != "" {
		return token, nil
	}

	stored, err := h.creds.Load(r.Context())
	if err != nil {
		return "", err
	}
	if stored.BearerToken == "" {
		return "", apperrors.Validation("Bearer token is required", nil)
	}
	return stored.BearerToken, nil
}

func (h *BookingsHandler) Load(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, err := h.sessions.Get(ps.ByName("sid"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Load", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var req loadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Load", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	token, err := h.resolveToken(r, req.BearerToken)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Load", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var resp bookingsResponse
	opErr := sess.WithLock(func() error {
		snap, err := h.lists.Load(r.Context(), token)
		if err != nil {
			return err
		}
		sess.Snap = snap
		sess.Checked.PruneAll(snap)
		resp = bookingsResponseOf(sess.Snap, sess.Checked)
		return nil
	})
	if opErr != nil {
		if writeErr := httputil.WriteError(w, opErr); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Load", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Load", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingsHandler) CheckConflicts(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, err := h.sessions.Get(ps.ByName("sid"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CheckConflicts", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var input credentials.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CheckConflicts", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	var conflicts []model.Conflict
	opErr := sess.WithLock(func() error {
		var err error
		conflicts, err = h.booking.CheckConflicts(r.Context(), input, sess.Dates.Sorted())
		return err
	})
	if opErr != nil {
		if writeErr := httputil.WriteError(w, opErr); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CheckConflicts", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if conflicts == nil {
		conflicts = []model.Conflict{}
	}
	if err := httputil.WriteSuccess(w, map[string]any{"conflicts": conflicts}); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckConflicts", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingsHandler) Submit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sid := ps.ByName("sid")
	sess, err := h.sessions.Get(sid)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Submit", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var input credentials.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Submit", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	guardKey := "submit:" + sid
	if !h.guard.Acquire(guardKey) {
		if writeErr := httputil.WriteError(w, apperrors.InFlight("Booking submission")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Submit", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	defer h.guard.Release(guardKey)

	var result booking.SubmitResult
	opErr := sess.WithLock(func() error {
		var err error
		result, err = h.booking.Submit(r.Context(), input, sess.Dates.Sorted())
		if err != nil {
			return err
		}
		// A successful booking consumes the selection.
		sess.Dates.Clear()
		return nil
	})
	if opErr != nil {
		appErr := apperrors.AsAppError(opErr)
		if appErr.Code == apperrors.CodeConflict && len(result.Conflicts) > 0 {
			if writeErr := httputil.WriteJSON(w, appErr.HTTPStatus, httputil.ErrorResponse{
				Error:   appErr.Message,
				Code:    appErr.Code,
				Details: appErr.Details,
			}); writeErr != nil {
				h.log.Error("failed to write JSON response", "handler", "Submit", "operation", "WriteJSON", "error", writeErr)
			}
			return
		}
		if writeErr := httputil.WriteError(w, opErr); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Submit", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "Submit", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingsHandler) ToggleChecked(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, section, ok := h.sessionAndSection(w, "ToggleChecked", ps)
	if !ok {
		return
	}

	var req sectionKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "ToggleChecked", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	var state sectionState
	opErr := sess.WithLock(func() error {
		if sess.Snap == nil {
			return apperrors.InvalidInput("Bookings are not loaded")
		}
		if _, ok := sess.Snap.Find(section, req.Key); !ok {
			return apperrors.NotFound("Booking")
		}
		sess.Checked.Toggle(section, req.Key)
		state = sectionStateOf(sess.Snap, sess.Checked, section)
		return nil
	})
	if opErr != nil {
		if writeErr := httputil.WriteError(w, opErr); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ToggleChecked", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, state); err != nil {
		h.log.Error("failed to write success response", "handler", "ToggleChecked", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingsHandler) SelectAll(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, section, ok := h.sessionAndSection(w, "SelectAll", ps)
	if !ok {
		return
	}

	var req selectAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "SelectAll", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	var state sectionState
	opErr := sess.WithLock(func() error {
		if sess.Snap == nil {
			return apperrors.InvalidInput("Bookings are not loaded")
		}
		sess.Checked.SetAll(section, bookinglist.SectionKeys(sess.Snap, section), req.Checked)
		state = sectionStateOf(sess.Snap, sess.Checked, section)
		return nil
	})
	if opErr != nil {
		if writeErr := httputil.WriteError(w, opErr); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SelectAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, state); err != nil {
		h.log.Error("failed to write success response", "handler", "SelectAll", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingsHandler) DeleteOne(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sid := ps.ByName("sid")
	sess, section, ok := h.sessionAndSection(w, "DeleteOne", ps)
	if !ok {
		return
	}

	var req sectionKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "DeleteOne", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	token, err := h.resolveToken(r, r.Header.Get("Bearer"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DeleteOne", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	guardKey := "delete:" + sid
	if !h.guard.Acquire(guardKey) {
		if writeErr := httputil.WriteError(w, apperrors.InFlight("Booking deletion")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DeleteOne", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	defer h.guard.Release(guardKey)

	var state sectionState
	opErr := sess.WithLock(func() error {
		if sess.Snap == nil {
			return apperrors.InvalidInput("Bookings are not loaded")
		}
		if err := h.lists.DeleteOne(r.Context(), token, sess.Snap, section, req.Key); err != nil {
			return err
		}
		sess.Checked.PruneAll(sess.Snap)
		state = sectionStateOf(sess.Snap, sess.Checked, section)
		return nil
	})
	if opErr != nil {
		if writeErr := httputil.WriteError(w, opErr); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DeleteOne", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, state); err != nil {
		h.log.Error("failed to write success response", "handler", "DeleteOne", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingsHandler) DeleteChecked(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sid := ps.ByName("sid")
	sess, section, ok := h.sessionAndSection(w, "DeleteChecked", ps)
	if !ok {
		return
	}

	token, err := h.resolveToken(r, r.Header.Get("Bearer"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DeleteChecked", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	guardKey := "delete:" + sid
	if !h.guard.Acquire(guardKey) {
		if writeErr := httputil.WriteError(w, apperrors.InFlight("Booking deletion")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DeleteChecked", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	defer h.guard.Release(guardKey)

	var state sectionState
	var deleted int
	opErr := sess.WithLock(func() error {
		if sess.Snap == nil {
			return apperrors.InvalidInput("Bookings are not loaded")
		}
		var err error
		deleted, err = h.lists.DeleteChecked(r.Context(), token, sess.Snap, sess.Checked, section)
		if err != nil {
			return err
		}
		state = sectionStateOf(sess.Snap, sess.Checked, section)
		return nil
	})
	if opErr != nil {
		if writeErr := httputil.WriteError(w, opErr); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DeleteChecked", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"deleted": deleted, "section": state}); err != nil {
		h.log.Error("failed to write success response", "handler", "DeleteChecked", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingsHandler) sessionAndSection(w http.ResponseWriter, handler string, ps httprouter.Params) (*Session, bookinglist.Section, bool) {
	sess, err := h.sessions.Get(ps.ByName("sid"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
		}
		return nil, "", false
	}

	section := bookinglist.Section(ps.ByName("section"))
	switch section {
	case bookinglist.SectionToday, bookinglist.SectionUpcoming, bookinglist.SectionForSomeone, bookinglist.SectionHistory:
	default:
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("unknown bookings section")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
		}
		return nil, "", false
	}

	return sess, section, true
}

func (h *BookingsHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/sessions/:sid/bookings/load", h.Load)
	router.POST("/api/v1/sessions/:sid/bookings/check-conflicts", h.CheckConflicts)
	router.POST("/api/v1/sessions/:sid/bookings/submit", h.Submit)
	router.POST("/api/v1/sessions/:sid/bookings/sections/:section/toggle", h.ToggleChecked)
	router.POST("/api/v1/sessions/:sid/bookings/sections/:section/select-all", h.SelectAll)
	router.POST("/api/v1/sessions/:sid/bookings/sections/:section/delete", h.DeleteOne)
	router.POST("/api/v1/sessions/:sid/bookings/sections/:section/delete-checked", h.DeleteChecked)
}
