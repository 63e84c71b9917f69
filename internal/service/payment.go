package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/campushub/events-api/internal/domain"
)

var (
	ErrPaymentNotCompleted  = errors.New("external payment is not completed")
	ErrInvalidPaymentMethod = errors.New("invalid payment method for this event")
)

// GatewayClient retrieves payment intents from the external gateway.
type GatewayClient interface {
	Retrieve(ctx context.Context, paymentRef string) (domain.PaymentIntent, error)
}

// WalletCharger is the single point that debits a user's balance. The
// implementation performs an atomic conditional decrement.
type WalletCharger interface {
	DebitWallet(ctx context.Context, userID uint, amount int64) error
}

// PaymentService implements the two settlement rails. Free events bypass
// it entirely with amountPaid = 0.
type PaymentService struct {
	gateway GatewayClient
}

func NewPaymentService(gateway GatewayClient) *PaymentService {
	return &PaymentService{
		gateway: gateway,
	}
}

// VerifyExternal re-reads the payment intent from the gateway and
// returns its reported amount. The client-declared price is never
// trusted once an external reference is involved; the gateway's status
// and amount are the sole source of truth.
func (s *PaymentService) VerifyExternal(ctx context.Context, paymentRef string) (int64, error) {
	intent, err := s.gateway.Retrieve(ctx, paymentRef)
	if err != nil {
		// Includes gateway timeouts: fail closed, nothing commits.
		return 0, fmt.Errorf("s.gateway.Retrieve -> %w", err)
	}

	if intent.Status != domain.PaymentIntentSucceeded {
		return 0, ErrPaymentNotCompleted
	}

	return intent.Amount, nil
}

// ChargeWallet debits the wallet through the given charger. A charge
// that would drive the balance negative is rejected before any ledger
// write becomes visible.
func (s *PaymentService) ChargeWallet(ctx context.Context, wallet WalletCharger, userID uint, amount int64) error {
	if amount <= 0 {
		return nil
	}

	if err := wallet.DebitWallet(ctx, userID, amount); err != nil {
		return err
	}

	return nil
}
