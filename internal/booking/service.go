// Package booking drives the booking submission workflow: validate the
// form, check the requested seat for conflicts, and only then create the
// booking upstream.
package booking

import (
	"context"

	"github.com/matej-podzemny/hotdesk-helper/internal/credentials"
	"github.com/matej-podzemny/hotdesk-helper/internal/selection"
	apperrors "github.com/matej-podzemny/hotdesk-helper/pkg/errors"
	"github.com/matej-podzemny/hotdesk-helper/pkg/logger"
	"github.com/matej-podzemny/hotdesk-helper/pkg/model"
)

// remoteAPI is the slice of the upstream client the workflow needs.
type remoteAPI interface {
	CheckAvailability(ctx context.Context, token string, seatID int64, dates []selection.DateKey) ([]model.ConflictMarker, error)
	CreateBooking(ctx context.Context, token, email string, seatID int64, dates []selection.DateKey) error
}

type Service struct {
	api       remoteAPI
	validator *credentials.Validator
	log       *logger.Logger
}

func NewService(api remoteAPI, validator *credentials.Validator, log *logger.Logger) *Service {
	return &Service{
		api:       api,
		validator: validator,
		log:       log,
	}
}

// SubmitResult reports the outcome of a submission attempt. Conflicts is
// populated only when the availability check blocked the booking.
type SubmitResult struct {
	Booked    bool             `json:"booked"`
	SeatID    int64            `json:"seat_id"`
	Dates     []string         `json:"dates"`
	Conflicts []model.Conflict `json:"conflicts,omitempty"`
}

// CheckConflicts validates the form and queries existing reservations for
// the requested seat and dates. It never creates anything.
func (s *Service) CheckConflicts(ctx context.Context, in credentials.Input, dates []selection.DateKey) ([]model.Conflict, error) {
	result := s.validator.Validate(in, len(dates), true)
	if err := result.Err(); err != nil {
		return nil, err
	}

	markers, err := s.api.CheckAvailability(ctx, result.Data.BearerToken, result.Data.SeatID, dates)
	if err != nil {
		return nil, err
	}
	return flatten(markers), nil
}

// Submit runs the full two-phase workflow. The availability check always
// precedes the create call; any conflict aborts the submission before
// anything is booked.
func (s *Service) Submit(ctx context.Context, in credentials.Input, dates []selection.DateKey) (SubmitResult, error) {
	result := s.validator.Validate(in, len(dates), true)
	if err := result.Err(); err != nil {
		return SubmitResult{}, err
	}

	markers, err := s.api.CheckAvailability(ctx, result.Data.BearerToken, result.Data.SeatID, dates)
	if err != nil {
		return SubmitResult{}, err
	}

	if conflicts := flatten(markers); len(conflicts) > 0 {
		s.log.Warn("Booking blocked by existing reservations",
			"seat_id", result.Data.SeatID,
			"conflicts", len(conflicts),
		)
		return SubmitResult{
				SeatID:    result.Data.SeatID,
				Dates:     dateStrings(dates),
				Conflicts: conflicts,
			}, apperrors.Conflict("Seat is already booked for the selected dates").
				WithDetails(map[string]any{"conflicts": conflicts})
	}

	if err := s.api.CreateBooking(ctx, result.Data.BearerToken, result.Data.Email, result.Data.SeatID, dates); err != nil {
		return SubmitResult{}, err
	}

	s.log.Info("Booking submitted",
		"seat_id", result.Data.SeatID,
		"dates", len(dates),
	)
	return SubmitResult{
		Booked: true,
		SeatID: result.Data.SeatID,
		Dates:  dateStrings(dates),
	}, nil
}

func flatten(markers []model.ConflictMarker) []model.Conflict {
	var conflicts []model.Conflict
	for _, m := range markers {
		conflicts = append(conflicts, m.Flatten()...)
	}
	return conflicts
}

func dateStrings(dates []selection.DateKey) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = string(d)
	}
	return out
}
