package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campushub/events-api/internal/clock"
	"github.com/campushub/events-api/internal/domain"
)

func TestEligibilityService_Validate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(10 * 24 * time.Hour)

	newEvent := func(mutate func(*domain.Event)) domain.Event {
		event := domain.Event{
			ID:        10,
			EventType: domain.EventConference,
			StartDate: start,
			EndDate:   start.Add(2 * time.Hour),
			Capacity:  2,
		}
		if mutate != nil {
			mutate(&event)
		}
		return event
	}

	t.Run("deadline check runs before everything else", func(t *testing.T) {
		deadline := now.Add(-time.Hour)
		// The event is also full and the caller already registered, but
		// the expired deadline must win.
		event := newEvent(func(e *domain.Event) {
			e.RegistrationDeadline = &deadline
			e.Capacity = 0
		})
		ledger := newFakeLedger(nil, []domain.Event{event}, []domain.Registration{{
			ID: 1, UserID: 1, UserType: domain.RoleStudent, EventID: 10,
			Status: domain.StatusRegistered,
		}})

		svc := NewEligibilityService(clock.NewFixed(now))
		err := svc.Validate(context.Background(), ledger, event, 1, domain.RoleStudent)
		require.ErrorIs(t, err, ErrDeadlinePassed)
	})

	t.Run("start at the exact current instant counts as started", func(t *testing.T) {
		event := newEvent(func(e *domain.Event) {
			e.StartDate = now
		})
		ledger := newFakeLedger(nil, []domain.Event{event}, nil)

		svc := NewEligibilityService(clock.NewFixed(now))
		err := svc.Validate(context.Background(), ledger, event, 1, domain.RoleStudent)
		require.ErrorIs(t, err, ErrEventAlreadyStarted)
	})

	t.Run("empty audience admits every role", func(t *testing.T) {
		event := newEvent(nil)
		ledger := newFakeLedger(nil, []domain.Event{event}, nil)

		svc := NewEligibilityService(clock.NewFixed(now))
		for _, role := range []domain.Role{domain.RoleStudent, domain.RoleStaff, domain.RoleProfessor, domain.RoleAdmin} {
			require.NoError(t, svc.Validate(context.Background(), ledger, event, 1, role))
		}
	})

	t.Run("audience check is case insensitive", func(t *testing.T) {
		event := newEvent(func(e *domain.Event) {
			e.Audience = []string{"Staff"}
		})
		ledger := newFakeLedger(nil, []domain.Event{event}, nil)

		svc := NewEligibilityService(clock.NewFixed(now))
		require.NoError(t, svc.Validate(context.Background(), ledger, event, 1, domain.RoleStaff))
		require.ErrorIs(t, svc.Validate(context.Background(), ledger, event, 1, domain.RoleStudent), ErrForbiddenRole)
	})

	t.Run("same user under a different role registers independently", func(t *testing.T) {
		event := newEvent(nil)
		ledger := newFakeLedger(nil, []domain.Event{event}, []domain.Registration{{
			ID: 1, UserID: 1, UserType: domain.RoleStudent, EventID: 10,
			Status: domain.StatusRegistered,
		}})

		svc := NewEligibilityService(clock.NewFixed(now))
		require.NoError(t, svc.Validate(context.Background(), ledger, event, 1, domain.RoleStaff))
	})

	t.Run("capacity counts only registered rows", func(t *testing.T) {
		event := newEvent(func(e *domain.Event) {
			e.Capacity = 1
		})
		ledger := newFakeLedger(nil, []domain.Event{event}, []domain.Registration{
			{ID: 1, UserID: 2, UserType: domain.RoleStudent, EventID: 10, Status: domain.StatusCancelled},
			{ID: 2, UserID: 3, UserType: domain.RoleStudent, EventID: 10, Status: domain.StatusAttended},
		})

		svc := NewEligibilityService(clock.NewFixed(now))
		require.NoError(t, svc.Validate(context.Background(), ledger, event, 1, domain.RoleStudent))
	})
}
