package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/events-api/internal/clock"
	"github.com/campushub/events-api/internal/domain"
	"github.com/campushub/events-api/internal/repository"
)

type fakeLedger struct {
	users  map[uint]domain.User
	events map[uint]domain.Event
	regs   map[uint]domain.Registration
	nextID uint
}

func newFakeLedger(users []domain.User, events []domain.Event, regs []domain.Registration) *fakeLedger {
	l := &fakeLedger{
		users:  make(map[uint]domain.User),
		events: make(map[uint]domain.Event),
		regs:   make(map[uint]domain.Registration),
		nextID: 1,
	}
	for _, u := range users {
		l.users[u.ID] = u
	}
	for _, e := range events {
		l.events[e.ID] = e
	}
	for _, r := range regs {
		l.regs[r.ID] = r
		if r.ID >= l.nextID {
			l.nextID = r.ID + 1
		}
	}

	return l
}

// WithTx snapshots the mutable state and restores it when fn fails,
// mirroring a database rollback.
func (l *fakeLedger) WithTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	users := make(map[uint]domain.User, len(l.users))
	for k, v := range l.users {
		users[k] = v
	}
	regs := make(map[uint]domain.Registration, len(l.regs))
	for k, v := range l.regs {
		regs[k] = v
	}
	nextID := l.nextID

	if err := fn(ctx); err != nil {
		l.users = users
		l.regs = regs
		l.nextID = nextID
		return err
	}

	return nil
}

func (l *fakeLedger) CreateRegistered(_ context.Context, reg domain.Registration) (domain.Registration, error) {
	event, ok := l.events[reg.EventID]
	if !ok {
		return domain.Registration{}, repository.ErrEventNotFound
	}

	count := int64(0)
	for _, existing := range l.regs {
		if existing.EventID == reg.EventID && existing.Status == domain.StatusRegistered {
			if existing.UserID == reg.UserID && existing.UserType == reg.UserType {
				return domain.Registration{}, repository.ErrDuplicateRegistration
			}
			count++
		}
	}
	if count >= int64(event.Capacity) {
		return domain.Registration{}, repository.ErrCapacityExceeded
	}

	reg.ID = l.nextID
	l.nextID++
	l.regs[reg.ID] = reg

	return reg, nil
}

func (l *fakeLedger) GetByID(_ context.Context, id uint) (domain.Registration, error) {
	reg, ok := l.regs[id]
	if !ok {
		return domain.Registration{}, repository.ErrRegistrationNotFound
	}

	return reg, nil
}

func (l *fakeLedger) FindActive(_ context.Context, userID, eventID uint, userType domain.Role) (*domain.Registration, error) {
	for _, reg := range l.regs {
		if reg.UserID == userID && reg.EventID == eventID && reg.UserType == userType && reg.Status == domain.StatusRegistered {
			found := reg
			return &found, nil
		}
	}

	return nil, nil
}

func (l *fakeLedger) DeleteCancelled(_ context.Context, userID, eventID uint, userType domain.Role) error {
	for id, reg := range l.regs {
		if reg.UserID == userID && reg.EventID == eventID && reg.UserType == userType && reg.Status == domain.StatusCancelled {
			delete(l.regs, id)
		}
	}

	return nil
}

func (l *fakeLedger) CountRegistered(_ context.Context, eventID uint) (int64, error) {
	count := int64(0)
	for _, reg := range l.regs {
		if reg.EventID == eventID && reg.Status == domain.StatusRegistered {
			count++
		}
	}

	return count, nil
}

func (l *fakeLedger) GetByUserID(_ context.Context, userID uint) ([]domain.Registration, error) {
	var regs []domain.Registration
	for _, reg := range l.regs {
		if reg.UserID == userID {
			regs = append(regs, reg)
		}
	}

	return regs, nil
}

func (l *fakeLedger) UpdateStatusIf(_ context.Context, id uint, from, to domain.RegistrationStatus) error {
	reg, ok := l.regs[id]
	if !ok {
		return repository.ErrRegistrationNotFound
	}
	if reg.Status != from {
		return repository.ErrRegistrationConflict
	}

	reg.Status = to
	l.regs[id] = reg

	return nil
}

func (l *fakeLedger) MarkRefunded(_ context.Context, id uint) (bool, error) {
	reg, ok := l.regs[id]
	if !ok {
		return false, repository.ErrRegistrationNotFound
	}
	if reg.RefundedToWallet {
		return false, nil
	}

	reg.RefundedToWallet = true
	l.regs[id] = reg

	return true, nil
}

func (l *fakeLedger) SetCertificateSent(_ context.Context, id uint) error {
	reg, ok := l.regs[id]
	if !ok {
		return repository.ErrRegistrationNotFound
	}

	reg.CertificateSent = true
	l.regs[id] = reg

	return nil
}

func (l *fakeLedger) GetEvent(_ context.Context, eventID uint) (domain.Event, error) {
	event, ok := l.events[eventID]
	if !ok {
		return domain.Event{}, repository.ErrEventNotFound
	}

	return event, nil
}

func (l *fakeLedger) GetUser(_ context.Context, userID uint) (domain.User, error) {
	user, ok := l.users[userID]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return user, nil
}

func (l *fakeLedger) DebitWallet(_ context.Context, userID uint, amount int64) error {
	user, ok := l.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	if user.WalletBalance < amount {
		return repository.ErrInsufficientBalance
	}

	user.WalletBalance -= amount
	l.users[userID] = user

	return nil
}

func (l *fakeLedger) CreditWallet(_ context.Context, userID uint, amount int64) error {
	user, ok := l.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}

	user.WalletBalance += amount
	l.users[userID] = user

	return nil
}

func (l *fakeLedger) GetWalletBalance(_ context.Context, userID uint) (int64, error) {
	user, ok := l.users[userID]
	if !ok {
		return 0, repository.ErrUserNotFound
	}

	return user.WalletBalance, nil
}

type fakeGateway struct {
	intents map[string]domain.PaymentIntent
}

func (g *fakeGateway) Retrieve(_ context.Context, paymentRef string) (domain.PaymentIntent, error) {
	intent, ok := g.intents[paymentRef]
	if !ok {
		return domain.PaymentIntent{}, ErrPaymentNotCompleted
	}

	return intent, nil
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(ledger *fakeLedger, gw *fakeGateway) *RegistrationService {
	if gw == nil {
		gw = &fakeGateway{}
	}
	clk := clock.NewFixed(testNow)

	return NewRegistrationService(
		ledger,
		NewEligibilityService(clk),
		NewPaymentService(gw),
		nil,
		nil,
		clk,
	)
}

func testEvent(id uint, price int64, capacity int, start time.Time) domain.Event {
	return domain.Event{
		ID:        id,
		Name:      "Event",
		EventType: domain.EventWorkshop,
		StartDate: start,
		EndDate:   start.Add(2 * time.Hour),
		Capacity:  capacity,
		Price:     price,
	}
}

func TestRegistrationService_Register(t *testing.T) {
	start := testNow.Add(30 * 24 * time.Hour)

	t.Run("wallet payment debits balance and commits row", func(t *testing.T) {
		ledger := newFakeLedger(
			[]domain.User{{ID: 1, WalletBalance: 5000}},
			[]domain.Event{testEvent(10, 2000, 50, start)},
			nil,
		)
		svc := newTestService(ledger, nil)

		result, err := svc.Register(context.Background(), RegisterInput{
			UserID:        1,
			UserType:      domain.RoleStudent,
			EventID:       10,
			PaymentMethod: domain.PaymentWallet,
		})
		require.NoError(t, err)

		assert.Equal(t, domain.StatusRegistered, result.Registration.Status)
		assert.Equal(t, int64(2000), result.Registration.AmountPaid)
		require.NotNil(t, result.WalletBalance)
		assert.Equal(t, int64(3000), *result.WalletBalance)
	})

	t.Run("insufficient balance rolls everything back", func(t *testing.T) {
		ledger := newFakeLedger(
			[]domain.User{{ID: 1, WalletBalance: 500}},
			[]domain.Event{testEvent(10, 2000, 50, start)},
			nil,
		)
		svc := newTestService(ledger, nil)

		_, err := svc.Register(context.Background(), RegisterInput{
			UserID:        1,
			UserType:      domain.RoleStudent,
			EventID:       10,
			PaymentMethod: domain.PaymentWallet,
		})
		require.ErrorIs(t, err, ErrInsufficientBalance)

		assert.Empty(t, ledger.regs, "no registration row may survive a failed debit")
		balance, _ := ledger.GetWalletBalance(context.Background(), 1)
		assert.Equal(t, int64(500), balance)
	})

	t.Run("free event with no payment method", func(t *testing.T) {
		ledger := newFakeLedger(
			[]domain.User{{ID: 1}},
			[]domain.Event{testEvent(10, 0, 50, start)},
			nil,
		)
		svc := newTestService(ledger, nil)

		result, err := svc.Register(context.Background(), RegisterInput{
			UserID:        1,
			UserType:      domain.RoleStudent,
			EventID:       10,
			PaymentMethod: domain.PaymentNone,
		})
		require.NoError(t, err)
		assert.Zero(t, result.Registration.AmountPaid)
		assert.Nil(t, result.WalletBalance)
	})

	t.Run("no payment method on a priced event is rejected", func(t *testing.T) {
		ledger := newFakeLedger(
			[]domain.User{{ID: 1}},
			[]domain.Event{testEvent(10, 1500, 50, start)},
			nil,
		)
		svc := newTestService(ledger, nil)

		_, err := svc.Register(context.Background(), RegisterInput{
			UserID:        1,
			UserType:      domain.RoleStudent,
			EventID:       10,
			PaymentMethod: domain.PaymentNone,
		})
		require.ErrorIs(t, err, ErrInvalidPaymentMethod)
		assert.Empty(t, ledger.regs)
	})

	t.Run("card payment records the gateway amount", func(t *testing.T) {
		ledger := newFakeLedger(
			[]domain.User{{ID: 1}},
			[]domain.Event{testEvent(10, 2000, 50, start)},
			nil,
		)
		gw := &fakeGateway{intents: map[string]domain.PaymentIntent{
			"pi_123": {ID: "pi_123", Status: domain.PaymentIntentSucceeded, Amount: 1800},
		}}
		svc := newTestService(ledger, gw)

		result, err := svc.Register(context.Background(), RegisterInput{
			UserID:             1,
			UserType:           domain.RoleStudent,
			EventID:            10,
			PaymentMethod:      domain.PaymentStripe,
			ExternalPaymentRef: "pi_123",
		})
		require.NoError(t, err)

		// The gateway-reported amount wins over the event price.
		assert.Equal(t, int64(1800), result.Registration.AmountPaid)
		assert.Equal(t, "pi_123", result.Registration.ExternalPaymentRef)
	})

	t.Run("incomplete card payment blocks the registration", func(t *testing.T) {
		ledger := newFakeLedger(
			[]domain.User{{ID: 1}},
			[]domain.Event{testEvent(10, 2000, 50, start)},
			nil,
		)
		gw := &fakeGateway{intents: map[string]domain.PaymentIntent{
			"pi_abc": {ID: "pi_abc", Status: "requires_payment_method", Amount: 2000},
		}}
		svc := newTestService(ledger, gw)

		_, err := svc.Register(context.Background(), RegisterInput{
			UserID:             1,
			UserType:           domain.RoleStudent,
			EventID:            10,
			PaymentMethod:      domain.PaymentStripe,
			ExternalPaymentRef: "pi_abc",
		})
		require.ErrorIs(t, err, ErrPaymentNotCompleted)
		assert.Empty(t, ledger.regs)
	})

	t.Run("duplicate active registration is rejected", func(t *testing.T) {
		ledger := newFakeLedger(
			[]domain.User{{ID: 1}},
			[]domain.Event{testEvent(10, 0, 50, start)},
			[]domain.Registration{{
				ID: 7, UserID: 1, UserType: domain.RoleStudent, EventID: 10,
				Status: domain.StatusRegistered,
			}},
		)
		svc := newTestService(ledger, nil)

		_, err := svc.Register(context.Background(), RegisterInput{
			UserID:        1,
			UserType:      domain.RoleStudent,
			EventID:       10,
			PaymentMethod: domain.PaymentNone,
		})
		require.ErrorIs(t, err, ErrDuplicateRegistration)
	})

	t.Run("re-registration after cancellation purges the old row", func(t *testing.T) {
		ledger := newFakeLedger(
			[]domain.User{{ID: 1}},
			[]domain.Event{testEvent(10, 0, 50, start)},
			[]domain.Registration{{
				ID: 7, UserID: 1, UserType: domain.RoleStudent, EventID: 10,
				Status: domain.StatusCancelled,
			}},
		)
		svc := newTestService(ledger, nil)

		result, err := svc.Register(context.Background(), RegisterInput{
			UserID:        1,
			UserType:      domain.RoleStudent,
			EventID:       10,
			PaymentMethod: domain.PaymentNone,
		})
		require.NoError(t, err)

		require.Len(t, ledger.regs, 1)
		assert.Equal(t, domain.StatusRegistered, ledger.regs[result.Registration.ID].Status)
	})

	t.Run("full event is rejected", func(t *testing.T) {
		ledger := newFakeLedger(
			[]domain.User{{ID: 1}, {ID: 2}},
			[]domain.Event{testEvent(10, 0, 1, start)},
			[]domain.Registration{{
				ID: 7, UserID: 2, UserType: domain.RoleStudent, EventID: 10,
				Status: domain.StatusRegistered,
			}},
		)
		svc := newTestService(ledger, nil)

		_, err := svc.Register(context.Background(), RegisterInput{
			UserID:        1,
			UserType:      domain.RoleStudent,
			EventID:       10,
			PaymentMethod: domain.PaymentNone,
		})
		require.ErrorIs(t, err, ErrCapacityExceeded)
	})

	t.Run("unknown event", func(t *testing.T) {
		ledger := newFakeLedger([]domain.User{{ID: 1}}, nil, nil)
		svc := newTestService(ledger, nil)

		_, err := svc.Register(context.Background(), RegisterInput{
			UserID:        1,
			UserType:      domain.RoleStudent,
			EventID:       99,
			PaymentMethod: domain.PaymentNone,
		})
		require.ErrorIs(t, err, ErrEventNotFound)
	})

	t.Run("audience restriction", func(t *testing.T) {
		event := testEvent(10, 0, 50, start)
		event.Audience = []string{"staff", "professor"}
		ledger := newFakeLedger([]domain.User{{ID: 1}}, []domain.Event{event}, nil)
		svc := newTestService(ledger, nil)

		_, err := svc.Register(context.Background(), RegisterInput{
			UserID:        1,
			UserType:      domain.RoleStudent,
			EventID:       10,
			PaymentMethod: domain.PaymentNone,
		})
		require.ErrorIs(t, err, ErrForbiddenRole)
	})
}

func TestRegistrationService_RegisterBatch(t *testing.T) {
	start := testNow.Add(30 * 24 * time.Hour)

	t.Run("wallet batch settles with one aggregate debit", func(t *testing.T) {
		ledger := newFakeLedger(
			[]domain.User{{ID: 1, WalletBalance: 10000}},
			[]domain.Event{
				testEvent(10, 2000, 50, start),
				testEvent(11, 3000, 50, start),
			},
			nil,
		)
		svc := newTestService(ledger, nil)

		result, err := svc.RegisterBatch(context.Background(), 1, domain.RoleStudent, domain.PaymentWallet, []BatchItem{
			{EventID: 10},
			{EventID: 11},
		})
		require.NoError(t, err)

		assert.Equal(t, int64(5000), result.TotalPaid)
		for _, item := range result.Items {
			assert.NoError(t, item.Err)
			assert.NotZero(t, item.RegistrationID)
		}

		balance, _ := ledger.GetWalletBalance(context.Background(), 1)
		assert.Equal(t, int64(5000), balance)
	})

	t.Run("one bad item does not sink the rest", func(t *testing.T) {
		ledger := newFakeLedger(
			[]domain.User{{ID: 1, WalletBalance: 10000}},
			[]domain.Event{testEvent(10, 2000, 50, start)},
			nil,
		)
		svc := newTestService(ledger, nil)

		result, err := svc.RegisterBatch(context.Background(), 1, domain.RoleStudent, domain.PaymentWallet, []BatchItem{
			{EventID: 10},
			{EventID: 99},
		})
		require.NoError(t, err)

		assert.NoError(t, result.Items[0].Err)
		assert.NotZero(t, result.Items[0].RegistrationID)
		assert.ErrorIs(t, result.Items[1].Err, ErrEventNotFound)

		// Only the good item was charged.
		assert.Equal(t, int64(2000), result.TotalPaid)
		balance, _ := ledger.GetWalletBalance(context.Background(), 1)
		assert.Equal(t, int64(8000), balance)
	})

	t.Run("insufficient balance rolls back the whole wallet batch", func(t *testing.T) {
		ledger := newFakeLedger(
			[]domain.User{{ID: 1, WalletBalance: 4000}},
			[]domain.Event{
				testEvent(10, 2000, 50, start),
				testEvent(11, 3000, 50, start),
			},
			nil,
		)
		svc := newTestService(ledger, nil)

		result, err := svc.RegisterBatch(context.Background(), 1, domain.RoleStudent, domain.PaymentWallet, []BatchItem{
			{EventID: 10},
			{EventID: 11},
		})
		require.ErrorIs(t, err, ErrInsufficientBalance)

		for _, item := range result.Items {
			assert.ErrorIs(t, item.Err, ErrInsufficientBalance)
			assert.Zero(t, item.RegistrationID)
		}

		assert.Empty(t, ledger.regs, "every row of the batch must roll back")
		balance, _ := ledger.GetWalletBalance(context.Background(), 1)
		assert.Equal(t, int64(4000), balance)
	})

	t.Run("failed settlement keeps the prior cancelled row", func(t *testing.T) {
		ledger := newFakeLedger(
			[]domain.User{{ID: 1, WalletBalance: 1000}},
			[]domain.Event{testEvent(10, 2000, 50, start)},
			[]domain.Registration{{
				ID: 7, UserID: 1, UserType: domain.RoleStudent, EventID: 10,
				Status: domain.StatusCancelled, AmountPaid: 2000,
			}},
		)
		svc := newTestService(ledger, nil)

		_, err := svc.RegisterBatch(context.Background(), 1, domain.RoleStudent, domain.PaymentWallet, []BatchItem{
			{EventID: 10},
		})
		require.ErrorIs(t, err, ErrInsufficientBalance)

		// The purge rolls back with the batch: the history row survives.
		require.Len(t, ledger.regs, 1)
		assert.Equal(t, domain.StatusCancelled, ledger.regs[7].Status)
	})

	t.Run("free items commit independently", func(t *testing.T) {
		ledger := newFakeLedger(
			[]domain.User{{ID: 1}},
			[]domain.Event{
				testEvent(10, 0, 50, start),
				testEvent(11, 0, 1, start),
			},
			[]domain.Registration{{
				ID: 7, UserID: 2, UserType: domain.RoleStudent, EventID: 11,
				Status: domain.StatusRegistered,
			}},
		)
		svc := newTestService(ledger, nil)

		result, err := svc.RegisterBatch(context.Background(), 1, domain.RoleStudent, domain.PaymentNone, []BatchItem{
			{EventID: 10},
			{EventID: 11},
		})
		require.NoError(t, err)

		assert.NoError(t, result.Items[0].Err)
		assert.ErrorIs(t, result.Items[1].Err, ErrCapacityExceeded)
		assert.Zero(t, result.TotalPaid)
	})
}

func TestRegistrationService_Cancel(t *testing.T) {
	t.Run("cancelling a paid registration refunds the wallet once", func(t *testing.T) {
		start := testNow.Add(30 * 24 * time.Hour)
		ledger := newFakeLedger(
			[]domain.User{{ID: 1, WalletBalance: 100}},
			[]domain.Event{testEvent(10, 2000, 50, start)},
			[]domain.Registration{{
				ID: 7, UserID: 1, UserType: domain.RoleStudent, EventID: 10,
				EventType: domain.EventWorkshop, Status: domain.StatusRegistered,
				PaymentMethod: domain.PaymentWallet, AmountPaid: 2000,
			}},
		)
		svc := newTestService(ledger, nil)

		result, err := svc.Cancel(context.Background(), 7)
		require.NoError(t, err)

		assert.Equal(t, domain.StatusCancelled, result.Registration.Status)
		assert.Equal(t, int64(2000), result.RefundedAmount)
		require.NotNil(t, result.WalletBalance)
		assert.Equal(t, int64(2100), *result.WalletBalance)
		assert.True(t, result.Registration.RefundedToWallet)

		_, err = svc.Cancel(context.Background(), 7)
		require.ErrorIs(t, err, ErrAlreadyCancelled)

		balance, _ := ledger.GetWalletBalance(context.Background(), 1)
		assert.Equal(t, int64(2100), balance, "a repeated cancel must not credit again")
	})

	t.Run("refund flag blocks a second credit even from registered state", func(t *testing.T) {
		start := testNow.Add(30 * 24 * time.Hour)
		ledger := newFakeLedger(
			[]domain.User{{ID: 1, WalletBalance: 0}},
			[]domain.Event{testEvent(10, 2000, 50, start)},
			[]domain.Registration{{
				ID: 7, UserID: 1, UserType: domain.RoleStudent, EventID: 10,
				Status: domain.StatusRegistered, AmountPaid: 2000, RefundedToWallet: true,
			}},
		)
		svc := newTestService(ledger, nil)

		result, err := svc.Cancel(context.Background(), 7)
		require.NoError(t, err)
		assert.Zero(t, result.RefundedAmount)

		balance, _ := ledger.GetWalletBalance(context.Background(), 1)
		assert.Zero(t, balance)
	})

	t.Run("window boundary", func(t *testing.T) {
		cases := []struct {
			name    string
			start   time.Time
			wantErr error
		}{
			{name: "exactly 14 days ahead is allowed", start: testNow.Add(14 * 24 * time.Hour)},
			{name: "just inside 14 days is refused", start: testNow.Add(14*24*time.Hour - time.Minute), wantErr: ErrCancellationWindowClosed},
			{name: "event long past is refused", start: testNow.Add(-24 * time.Hour), wantErr: ErrCancellationWindowClosed},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				ledger := newFakeLedger(
					[]domain.User{{ID: 1}},
					[]domain.Event{testEvent(10, 0, 50, tc.start)},
					[]domain.Registration{{
						ID: 7, UserID: 1, UserType: domain.RoleStudent, EventID: 10,
						Status: domain.StatusRegistered,
					}},
				)
				svc := newTestService(ledger, nil)

				_, err := svc.Cancel(context.Background(), 7)
				if tc.wantErr != nil {
					require.ErrorIs(t, err, tc.wantErr)
				} else {
					require.NoError(t, err)
				}
			})
		}
	})

	t.Run("attended registrations cannot be cancelled", func(t *testing.T) {
		start := testNow.Add(30 * 24 * time.Hour)
		ledger := newFakeLedger(
			[]domain.User{{ID: 1}},
			[]domain.Event{testEvent(10, 0, 50, start)},
			[]domain.Registration{{
				ID: 7, UserID: 1, UserType: domain.RoleStudent, EventID: 10,
				Status: domain.StatusAttended,
			}},
		)
		svc := newTestService(ledger, nil)

		_, err := svc.Cancel(context.Background(), 7)
		require.ErrorIs(t, err, ErrInvalidStatusTransition)
	})

	t.Run("unknown registration", func(t *testing.T) {
		ledger := newFakeLedger(nil, nil, nil)
		svc := newTestService(ledger, nil)

		_, err := svc.Cancel(context.Background(), 1)
		require.ErrorIs(t, err, ErrRegistrationNotFound)
	})
}

func TestRegistrationService_MarkAttended(t *testing.T) {
	start := testNow.Add(-time.Hour)

	t.Run("paid workshop attendance flags a certificate", func(t *testing.T) {
		ledger := newFakeLedger(
			[]domain.User{{ID: 1}},
			[]domain.Event{testEvent(10, 2000, 50, start)},
			[]domain.Registration{{
				ID: 7, UserID: 1, UserType: domain.RoleStudent, EventID: 10,
				EventType: domain.EventWorkshop, Status: domain.StatusRegistered,
				PaymentMethod: domain.PaymentWallet, AmountPaid: 2000,
			}},
		)
		svc := newTestService(ledger, nil)

		reg, err := svc.MarkAttended(context.Background(), 7)
		require.NoError(t, err)

		assert.Equal(t, domain.StatusAttended, reg.Status)
		assert.True(t, reg.CertificateSent)
	})

	t.Run("free workshop attendance sends no certificate", func(t *testing.T) {
		ledger := newFakeLedger(
			[]domain.User{{ID: 1}},
			[]domain.Event{testEvent(10, 0, 50, start)},
			[]domain.Registration{{
				ID: 7, UserID: 1, UserType: domain.RoleStudent, EventID: 10,
				EventType: domain.EventWorkshop, Status: domain.StatusRegistered,
			}},
		)
		svc := newTestService(ledger, nil)

		reg, err := svc.MarkAttended(context.Background(), 7)
		require.NoError(t, err)
		assert.False(t, reg.CertificateSent)
	})

	t.Run("paid trip attendance sends no certificate", func(t *testing.T) {
		event := testEvent(10, 2000, 50, start)
		event.EventType = domain.EventTrip
		ledger := newFakeLedger(
			[]domain.User{{ID: 1}},
			[]domain.Event{event},
			[]domain.Registration{{
				ID: 7, UserID: 1, UserType: domain.RoleStudent, EventID: 10,
				EventType: domain.EventTrip, Status: domain.StatusRegistered, AmountPaid: 2000,
			}},
		)
		svc := newTestService(ledger, nil)

		reg, err := svc.MarkAttended(context.Background(), 7)
		require.NoError(t, err)
		assert.False(t, reg.CertificateSent)
	})

	t.Run("double attendance is a conflict", func(t *testing.T) {
		ledger := newFakeLedger(
			[]domain.User{{ID: 1}},
			[]domain.Event{testEvent(10, 0, 50, start)},
			[]domain.Registration{{
				ID: 7, UserID: 1, UserType: domain.RoleStudent, EventID: 10,
				Status: domain.StatusAttended,
			}},
		)
		svc := newTestService(ledger, nil)

		_, err := svc.MarkAttended(context.Background(), 7)
		require.ErrorIs(t, err, ErrInvalidStatusTransition)
	})
}
