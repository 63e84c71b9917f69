package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/campushub/events-api/internal/clock"
	"github.com/campushub/events-api/internal/domain"
)

var (
	ErrDeadlinePassed      = errors.New("registration deadline has passed")
	ErrEventAlreadyStarted = errors.New("event has already started")
	ErrForbiddenRole       = errors.New("role is not allowed for this event")
)

// EligibilityLedger is the slice of the ledger the validator reads.
type EligibilityLedger interface {
	FindActive(ctx context.Context, userID, eventID uint, userType domain.Role) (*domain.Registration, error)
	CountRegistered(ctx context.Context, eventID uint) (int64, error)
}

// EligibilityService decides whether an enrollment may proceed. Checks
// run in a fixed order and the first failure wins. Validation is
// read-only, so it can run outside the settlement transaction and be
// safely re-called.
type EligibilityService struct {
	clock clock.Clock
}

func NewEligibilityService(clk clock.Clock) *EligibilityService {
	return &EligibilityService{
		clock: clk,
	}
}

func (s *EligibilityService) Validate(ctx context.Context, ledger EligibilityLedger, event domain.Event, userID uint, userType domain.Role) error {
	now := s.clock.Now()

	if event.RegistrationDeadline != nil && now.After(*event.RegistrationDeadline) {
		return ErrDeadlinePassed
	}

	if !now.Before(event.StartDate) {
		return ErrEventAlreadyStarted
	}

	if !event.AllowsRole(userType) {
		return ErrForbiddenRole
	}

	active, err := ledger.FindActive(ctx, userID, event.ID, userType)
	if err != nil {
		return fmt.Errorf("ledger.FindActive -> %w", err)
	}
	if active != nil {
		return ErrDuplicateRegistration
	}

	registered, err := ledger.CountRegistered(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("ledger.CountRegistered -> %w", err)
	}
	if registered >= int64(event.Capacity) {
		return ErrCapacityExceeded
	}

	return nil
}
