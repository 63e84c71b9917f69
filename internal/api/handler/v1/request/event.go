package request

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/campushub/events-api/internal/domain"
)

var (
	errEndBeforeStart     = errors.New("end date must be after start date")
	errDeadlineAfterStart = errors.New("registration deadline must not be after the start date")
	errInvalidAudience    = errors.New("audience contains an unknown role")
)

type CreateEventRequest struct {
	Name                 string     `json:"name"`
	Description          string     `json:"description"`
	EventType            string     `json:"event_type"`
	Location             string     `json:"location"`
	StartDate            time.Time  `json:"start_date"`
	EndDate              time.Time  `json:"end_date"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	Capacity             int        `json:"capacity"`
	Price                int64      `json:"price"`
	Audience             []string   `json:"audience"`
}

func (req *CreateEventRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required),
		validation.Field(&req.EventType, validation.Required),
		validation.Field(&req.StartDate, validation.Required),
		validation.Field(&req.EndDate, validation.Required),
		validation.Field(&req.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&req.Price, validation.Min(0)),
	)
	if err != nil {
		return err
	}

	if !domain.EventType(req.EventType).IsValid() {
		return errInvalidEventType
	}

	if !req.EndDate.After(req.StartDate) {
		return errEndBeforeStart
	}

	if req.RegistrationDeadline != nil && req.RegistrationDeadline.After(req.StartDate) {
		return errDeadlineAfterStart
	}

	for _, role := range req.Audience {
		if !domain.Role(role).IsValid() {
			return errInvalidAudience
		}
	}

	return nil
}
