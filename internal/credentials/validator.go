package credentials

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matej-podzemny/hotdesk-helper/internal/seatmap"
	apperrors "github.com/matej-podzemny/hotdesk-helper/pkg/errors"
	"github.com/matej-podzemny/hotdesk-helper/pkg/logger"
	"github.com/matej-podzemny/hotdesk-helper/pkg/sanitizer"
)

// Input is the raw user-supplied booking form state.
type Input struct {
	Email       string `json:"email"`
	BearerToken string `json:"bearer_token"`
	SeatNumber  string `json:"seat_number"`
}

// Normalized is the cleaned-up form data. It is returned even when
// validation fails so callers can inspect partial state.
type Normalized struct {
	Email       string `json:"email"`
	BearerToken string `json:"bearer_token"`
	SeatNumber  string `json:"seat_number"`
	SeatID      int64  `json:"seat_id"`
}

// Result carries the outcome of one validation pass. Errors holds every
// applicable message in form order; validation never short-circuits.
type Result struct {
	Valid  bool       `json:"valid"`
	Errors []string   `json:"errors"`
	Data   Normalized `json:"data"`
}

// Err converts an invalid result into a validation error carrying the full
// message list. A valid result yields nil.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return apperrors.Validation(strings.Join(r.Errors, ", "), map[string]any{
		"errors": r.Errors,
	})
}

type Validator struct {
	validate *validator.Validate
	log      *logger.Logger
}

func NewValidator(log *logger.Logger) *Validator {
	return &Validator{
		validate: validator.New(),
		log:      log,
	}
}

// Validate checks the form fields in order, collecting all applicable
// errors. When requireDates is set the caller's current selection size is
// checked as well. No side effects.
func (v *Validator) Validate(in Input, selectedDates int, requireDates bool) Result {
	email := sanitizer.NormalizeEmail(in.Email)
	token := sanitizer.NormalizeToken(in.BearerToken)
	seat := sanitizer.Trim(in.SeatNumber)

	var errs []string

	if email == "" {
		errs = append(errs, "Email is required")
	} else if err := v.validate.Var(email, "email"); err != nil {
		errs = append(errs, "Please enter a valid email address")
	}

	if token == "" {
		errs = append(errs, "Bearer token is required")
	}

	seatID, seatKnown := seatmap.ResolveString(seat)
	if seat == "" {
		errs = append(errs, "Seat number is required")
	} else if !seatKnown {
		errs = append(errs, "Invalid seat number selected")
	}

	if requireDates && selectedDates == 0 {
		errs = append(errs, "Please select at least one date")
	}

	return Result{
		Valid:  len(errs) == 0,
		Errors: errs,
		Data: Normalized{
			Email:       email,
			BearerToken: token,
			SeatNumber:  seat,
			SeatID:      seatID,
		},
	}
}
