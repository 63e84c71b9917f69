package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/campushub/events-api/internal/domain"
)

var (
	errInvalidPaymentMethod = errors.New("invalid payment method")
	errInvalidEventType     = errors.New("invalid event type")
	errMissingPaymentRef    = errors.New("external payment reference is required for card payments")
	errEmptyBatch           = errors.New("batch must contain at least one item")
)

type RegisterRequest struct {
	EventID            uint   `json:"event_id"`
	EventType          string `json:"event_type"`
	PaymentMethod      string `json:"payment_method"`
	ExternalPaymentRef string `json:"external_payment_ref"`
}

func (req *RegisterRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.EventID, validation.Required),
		validation.Field(&req.EventType, validation.Required),
		validation.Field(&req.PaymentMethod, validation.Required),
	)
	if err != nil {
		return err
	}

	if !domain.EventType(req.EventType).IsValid() {
		return errInvalidEventType
	}

	if !domain.PaymentMethod(req.PaymentMethod).IsValid() {
		return errInvalidPaymentMethod
	}

	if domain.PaymentMethod(req.PaymentMethod) == domain.PaymentStripe && req.ExternalPaymentRef == "" {
		return errMissingPaymentRef
	}

	return nil
}

type BatchRegisterItem struct {
	EventID            uint   `json:"event_id"`
	EventType          string `json:"event_type"`
	ExternalPaymentRef string `json:"external_payment_ref"`
}

type BatchRegisterRequest struct {
	PaymentMethod string              `json:"payment_method"`
	Items         []BatchRegisterItem `json:"items"`
}

func (req *BatchRegisterRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.PaymentMethod, validation.Required),
	)
	if err != nil {
		return err
	}

	if !domain.PaymentMethod(req.PaymentMethod).IsValid() {
		return errInvalidPaymentMethod
	}

	if len(req.Items) == 0 {
		return errEmptyBatch
	}

	for _, item := range req.Items {
		if item.EventID == 0 {
			return validation.NewError("validation_required", "event_id is required for every item")
		}
		if !domain.EventType(item.EventType).IsValid() {
			return errInvalidEventType
		}
		if domain.PaymentMethod(req.PaymentMethod) == domain.PaymentStripe && item.ExternalPaymentRef == "" {
			return errMissingPaymentRef
		}
	}

	return nil
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (req *UpdateStatusRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required),
	)
	if err != nil {
		return err
	}

	if !domain.RegistrationStatus(req.Status).IsValid() {
		return validation.NewError("validation_invalid_status", "invalid registration status")
	}

	return nil
}
