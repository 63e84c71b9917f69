package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campushub/events-api/internal/clock"
	"github.com/campushub/events-api/internal/domain"
	"github.com/campushub/events-api/internal/repository"
	"github.com/campushub/events-api/internal/sideeffect"
)

var (
	ErrEventNotFound         = repository.ErrEventNotFound
	ErrRegistrationNotFound  = repository.ErrRegistrationNotFound
	ErrDuplicateRegistration = repository.ErrDuplicateRegistration
	ErrCapacityExceeded      = repository.ErrCapacityExceeded
	ErrRegistrationConflict  = repository.ErrRegistrationConflict
	ErrInsufficientBalance   = repository.ErrInsufficientBalance

	ErrCancellationWindowClosed = errors.New("cancellation window has closed")
	ErrAlreadyCancelled         = errors.New("registration is already cancelled")
	ErrInvalidStatusTransition  = errors.New("invalid registration status transition")
)

// CancellationWindow is the minimum lead time before an event start
// during which cancellation and refund are still permitted.
const CancellationWindow = 14 * 24 * time.Hour

const sideEffectTimeout = 15 * time.Second

// RegistrationLedger is the authoritative store of registration rows
// together with the wallet and event reads the settlement flows need.
// WithTx scopes every call made with txCtx to one transaction.
type RegistrationLedger interface {
	EligibilityLedger

	WithTx(ctx context.Context, fn func(txCtx context.Context) error) error
	CreateRegistered(ctx context.Context, reg domain.Registration) (domain.Registration, error)
	DeleteCancelled(ctx context.Context, userID, eventID uint, userType domain.Role) error
	GetByID(ctx context.Context, id uint) (domain.Registration, error)
	GetByUserID(ctx context.Context, userID uint) ([]domain.Registration, error)
	UpdateStatusIf(ctx context.Context, id uint, from, to domain.RegistrationStatus) error
	MarkRefunded(ctx context.Context, id uint) (bool, error)
	SetCertificateSent(ctx context.Context, id uint) error

	GetEvent(ctx context.Context, eventID uint) (domain.Event, error)
	GetUser(ctx context.Context, userID uint) (domain.User, error)

	DebitWallet(ctx context.Context, userID uint, amount int64) error
	CreditWallet(ctx context.Context, userID uint, amount int64) error
	GetWalletBalance(ctx context.Context, userID uint) (int64, error)
}

type RegistrationService struct {
	ledger      RegistrationLedger
	eligibility *EligibilityService
	payments    *PaymentService
	calendar    sideeffect.CalendarSync
	notifier    sideeffect.NotificationSink
	clock       clock.Clock
}

func NewRegistrationService(
	ledger RegistrationLedger,
	eligibility *EligibilityService,
	payments *PaymentService,
	calendar sideeffect.CalendarSync,
	notifier sideeffect.NotificationSink,
	clk clock.Clock,
) *RegistrationService {
	return &RegistrationService{
		ledger:      ledger,
		eligibility: eligibility,
		payments:    payments,
		calendar:    calendar,
		notifier:    notifier,
		clock:       clk,
	}
}

type RegisterInput struct {
	UserID             uint
	UserType           domain.Role
	EventID            uint
	EventType          domain.EventType
	PaymentMethod      domain.PaymentMethod
	ExternalPaymentRef string
}

type RegisterResult struct {
	Registration  domain.Registration
	WalletBalance *int64
	CalendarSync  string
}

// Register enrolls one user into one event: eligibility, then the
// selected payment rail, then the single ledger commit. The row insert
// and the wallet debit share a transaction so neither can stand alone.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	event, err := s.ledger.GetEvent(ctx, in.EventID)
	if err != nil {
		return RegisterResult{}, err
	}

	if err = s.eligibility.Validate(ctx, s.ledger, event, in.UserID, in.UserType); err != nil {
		return RegisterResult{}, err
	}

	amount, err := s.settlementAmount(ctx, event, in.PaymentMethod, in.ExternalPaymentRef)
	if err != nil {
		return RegisterResult{}, err
	}

	reg := domain.Registration{
		UserID:             in.UserID,
		UserType:           in.UserType,
		EventID:            event.ID,
		EventType:          event.EventType,
		Status:             domain.StatusRegistered,
		PaymentMethod:      in.PaymentMethod,
		AmountPaid:         amount,
		ExternalPaymentRef: in.ExternalPaymentRef,
		RegistrationDate:   s.clock.Now(),
	}

	var created domain.Registration
	err = s.ledger.WithTx(ctx, func(txCtx context.Context) error {
		// Purge a stale cancelled row for the triple inside the same
		// transaction, so a failed settlement leaves it in place.
		if err = s.ledger.DeleteCancelled(txCtx, in.UserID, event.ID, in.UserType); err != nil {
			return err
		}

		created, err = s.ledger.CreateRegistered(txCtx, reg)
		if err != nil {
			return err
		}

		if in.PaymentMethod == domain.PaymentWallet {
			if err = s.payments.ChargeWallet(txCtx, s.ledger, in.UserID, amount); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return RegisterResult{}, err
	}

	result := RegisterResult{
		Registration: created,
		CalendarSync: s.scheduleCalendarSync(event, in.UserID),
	}

	if in.PaymentMethod == domain.PaymentWallet {
		if balance, balErr := s.ledger.GetWalletBalance(ctx, in.UserID); balErr == nil {
			result.WalletBalance = &balance
		}
	}

	return result, nil
}

// settlementAmount resolves the committed amount for the chosen rail
// before anything is written. For the external rail the gateway-reported
// amount wins over any client-declared price.
func (s *RegistrationService) settlementAmount(ctx context.Context, event domain.Event, method domain.PaymentMethod, paymentRef string) (int64, error) {
	switch method {
	case domain.PaymentNone:
		if event.Price > 0 {
			return 0, ErrInvalidPaymentMethod
		}
		return 0, nil
	case domain.PaymentWallet:
		return event.Price, nil
	case domain.PaymentStripe:
		amount, err := s.payments.VerifyExternal(ctx, paymentRef)
		if err != nil {
			return 0, err
		}
		return amount, nil
	default:
		return 0, ErrInvalidPaymentMethod
	}
}

type BatchItem struct {
	EventID            uint
	EventType          domain.EventType
	ExternalPaymentRef string
}

type BatchItemResult struct {
	EventID        uint
	RegistrationID uint
	Err            error
}

type BatchResult struct {
	Items     []BatchItemResult
	TotalPaid int64
}

// RegisterBatch processes independent registration items sharing one
// payment method. Item failures never abort siblings. Wallet items are
// committed together with exactly one aggregate debit inside a single
// transaction: if the aggregate check fails, every row of the batch
// rolls back and the settlement error is reported for the batch as a
// whole, distinct from per-item outcomes.
func (s *RegistrationService) RegisterBatch(ctx context.Context, userID uint, userType domain.Role, method domain.PaymentMethod, items []BatchItem) (BatchResult, error) {
	result := BatchResult{Items: make([]BatchItemResult, len(items))}

	type pendingItem struct {
		idx    int
		event  domain.Event
		amount int64
		ref    string
	}

	var pending []pendingItem
	for i, item := range items {
		result.Items[i].EventID = item.EventID

		event, err := s.ledger.GetEvent(ctx, item.EventID)
		if err != nil {
			result.Items[i].Err = err
			continue
		}

		if err = s.eligibility.Validate(ctx, s.ledger, event, userID, userType); err != nil {
			result.Items[i].Err = err
			continue
		}

		amount, err := s.settlementAmount(ctx, event, method, item.ExternalPaymentRef)
		if err != nil {
			result.Items[i].Err = err
			continue
		}

		pending = append(pending, pendingItem{idx: i, event: event, amount: amount, ref: item.ExternalPaymentRef})
	}

	if method != domain.PaymentWallet {
		// External and free items settle per item; each commit stands alone.
		for _, p := range pending {
			created, err := s.createInTx(ctx, userID, userType, p.event, method, p.amount, p.ref)
			if err != nil {
				result.Items[p.idx].Err = err
				continue
			}

			result.Items[p.idx].RegistrationID = created.ID
			result.TotalPaid += created.AmountPaid
			s.scheduleCalendarSync(p.event, userID)
		}

		return result, nil
	}

	var (
		committed []pendingItem
		aggregate int64
	)
	err := s.ledger.WithTx(ctx, func(txCtx context.Context) error {
		committed = committed[:0]
		aggregate = 0

		for _, p := range pending {
			if err := s.ledger.DeleteCancelled(txCtx, userID, p.event.ID, userType); err != nil {
				result.Items[p.idx].Err = err
				continue
			}

			created, err := s.ledger.CreateRegistered(txCtx, domain.Registration{
				UserID:           userID,
				UserType:         userType,
				EventID:          p.event.ID,
				EventType:        p.event.EventType,
				Status:           domain.StatusRegistered,
				PaymentMethod:    method,
				AmountPaid:       p.amount,
				RegistrationDate: s.clock.Now(),
			})
			if err != nil {
				// Lost a capacity or duplicate race inside the batch:
				// this item fails alone, the rest keep going.
				result.Items[p.idx].Err = err
				continue
			}

			result.Items[p.idx].RegistrationID = created.ID
			committed = append(committed, p)
			aggregate += p.amount
		}

		return s.payments.ChargeWallet(txCtx, s.ledger, userID, aggregate)
	})
	if err != nil {
		// The aggregate settlement failed: the transaction rolled every
		// row back, so no item of the wallet batch stands.
		for _, p := range committed {
			result.Items[p.idx].RegistrationID = 0
			result.Items[p.idx].Err = err
		}

		return result, err
	}

	result.TotalPaid = aggregate
	for _, p := range committed {
		s.scheduleCalendarSync(p.event, userID)
	}

	return result, nil
}

func (s *RegistrationService) createInTx(ctx context.Context, userID uint, userType domain.Role, event domain.Event, method domain.PaymentMethod, amount int64, ref string) (domain.Registration, error) {
	var created domain.Registration

	err := s.ledger.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.ledger.DeleteCancelled(txCtx, userID, event.ID, userType); err != nil {
			return err
		}

		var err error
		created, err = s.ledger.CreateRegistered(txCtx, domain.Registration{
			UserID:             userID,
			UserType:           userType,
			EventID:            event.ID,
			EventType:          event.EventType,
			Status:             domain.StatusRegistered,
			PaymentMethod:      method,
			AmountPaid:         amount,
			ExternalPaymentRef: ref,
			RegistrationDate:   s.clock.Now(),
		})

		return err
	})
	if err != nil {
		return domain.Registration{}, err
	}

	return created, nil
}

type CancelResult struct {
	Registration   domain.Registration
	RefundedAmount int64
	WalletBalance  *int64
}

// Cancel enforces the cancellation window and performs the at-most-once
// refund to the wallet. The refunded_to_wallet flag makes retries
// idempotent: a second cancel can never credit the wallet twice.
func (s *RegistrationService) Cancel(ctx context.Context, registrationID uint) (CancelResult, error) {
	reg, err := s.ledger.GetByID(ctx, registrationID)
	if err != nil {
		return CancelResult{}, err
	}

	switch reg.Status {
	case domain.StatusRegistered:
	case domain.StatusCancelled:
		return CancelResult{}, ErrAlreadyCancelled
	default:
		return CancelResult{}, ErrInvalidStatusTransition
	}

	event, err := s.ledger.GetEvent(ctx, reg.EventID)
	if err != nil {
		return CancelResult{}, err
	}

	// Cancelling exactly at the window boundary still succeeds.
	if s.clock.Now().After(event.StartDate.Add(-CancellationWindow)) {
		return CancelResult{}, ErrCancellationWindowClosed
	}

	var refunded int64
	err = s.ledger.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.ledger.UpdateStatusIf(txCtx, reg.ID, domain.StatusRegistered, domain.StatusCancelled); err != nil {
			if errors.Is(err, ErrRegistrationConflict) {
				return ErrAlreadyCancelled
			}
			return err
		}

		if reg.AmountPaid > 0 && !reg.RefundedToWallet {
			flipped, err := s.ledger.MarkRefunded(txCtx, reg.ID)
			if err != nil {
				return err
			}
			if flipped {
				if err = s.ledger.CreditWallet(txCtx, reg.UserID, reg.AmountPaid); err != nil {
					return err
				}
				refunded = reg.AmountPaid
			}
		}

		return nil
	})
	if err != nil {
		return CancelResult{}, err
	}

	cancelled, err := s.ledger.GetByID(ctx, registrationID)
	if err != nil {
		return CancelResult{}, err
	}

	result := CancelResult{
		Registration:   cancelled,
		RefundedAmount: refunded,
	}
	if balance, balErr := s.ledger.GetWalletBalance(ctx, reg.UserID); balErr == nil {
		result.WalletBalance = &balance
	}

	if refunded > 0 {
		s.dispatchNotification(reg.UserID,
			"Registration cancelled",
			fmt.Sprintf("Your registration for %q was cancelled and %d was refunded to your wallet.", event.Name, refunded))
	}

	return result, nil
}

// MarkAttended is the operator-only transition. The certificate dispatch
// for paid workshop registrations is delegated to the notification sink;
// its failure never rolls the status change back.
func (s *RegistrationService) MarkAttended(ctx context.Context, registrationID uint) (domain.Registration, error) {
	if err := s.ledger.UpdateStatusIf(ctx, registrationID, domain.StatusRegistered, domain.StatusAttended); err != nil {
		if errors.Is(err, ErrRegistrationConflict) {
			return domain.Registration{}, ErrInvalidStatusTransition
		}
		return domain.Registration{}, err
	}

	reg, err := s.ledger.GetByID(ctx, registrationID)
	if err != nil {
		return domain.Registration{}, err
	}

	if reg.AmountPaid > 0 && reg.EventType == domain.EventWorkshop {
		if err = s.ledger.SetCertificateSent(ctx, reg.ID); err != nil {
			zap.L().Warn("failed to flag certificate dispatch",
				zap.Uint("registration_id", reg.ID), zap.Error(err))
		} else {
			reg.CertificateSent = true
		}

		s.dispatchNotification(reg.UserID,
			"Workshop certificate",
			fmt.Sprintf("Your attendance certificate for registration %d is on its way.", reg.ID))
	}

	return reg, nil
}

func (s *RegistrationService) GetUserRegistrations(ctx context.Context, userID uint) ([]domain.Registration, error) {
	regs, err := s.ledger.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.ledger.GetByUserID -> %w", err)
	}

	return regs, nil
}

// scheduleCalendarSync mirrors the committed registration into the
// user's calendar off the request path. The returned value is a
// diagnostic for the response, never a failure cause.
func (s *RegistrationService) scheduleCalendarSync(event domain.Event, userID uint) string {
	if s.calendar == nil {
		return ""
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		user, err := s.ledger.GetUser(ctx, userID)
		if err != nil {
			zap.L().Warn("calendar sync skipped: user lookup failed",
				zap.Uint("user_id", userID), zap.Error(err))
			return
		}

		entry := sideeffect.CalendarEntry{
			Title:       event.Name,
			Description: event.Description,
			Location:    event.Location,
			StartDate:   event.StartDate,
			EndDate:     event.EndDate,
		}
		if err = s.calendar.Add(ctx, user.Email, entry); err != nil {
			zap.L().Warn("calendar sync failed",
				zap.Uint("user_id", userID),
				zap.Uint("event_id", event.ID),
				zap.Error(err))
		}
	}()

	return "scheduled"
}

func (s *RegistrationService) dispatchNotification(userID uint, subject, body string) {
	if s.notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		if err := s.notifier.Notify(ctx, userID, subject, body); err != nil {
			zap.L().Warn("notification dispatch failed",
				zap.Uint("user_id", userID),
				zap.String("subject", subject),
				zap.Error(err))
		}
	}()
}
