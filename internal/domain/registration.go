package domain

import (
	"strings"
	"time"
)

// PaymentMethod is the closed set of settlement rails.
type PaymentMethod string

const (
	PaymentWallet PaymentMethod = "wallet"
	PaymentStripe PaymentMethod = "stripe"
	PaymentNone   PaymentMethod = "none"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentWallet, PaymentStripe, PaymentNone:
		return true
	}
	return false
}

// RegistrationStatus is the registration lifecycle state.
type RegistrationStatus string

const (
	StatusRegistered RegistrationStatus = "registered"
	StatusCancelled  RegistrationStatus = "cancelled"
	StatusAttended   RegistrationStatus = "attended"
)

func (s RegistrationStatus) IsValid() bool {
	switch s {
	case StatusRegistered, StatusCancelled, StatusAttended:
		return true
	}
	return false
}

// Registration is the authoritative ledger row for an enrollment.
// At most one row per (UserID, EventID, UserType) may hold
// StatusRegistered at any time.
type Registration struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	UserType  Role      `json:"user_type"`
	EventID   uint      `json:"event_id"`
	EventType EventType `json:"event_type"`

	Status RegistrationStatus `json:"status"`

	PaymentMethod      PaymentMethod `json:"payment_method"`
	AmountPaid         int64         `json:"amount_paid"`
	ExternalPaymentRef string        `json:"external_payment_ref,omitempty"`
	RefundedToWallet   bool          `json:"refunded_to_wallet"`

	RegistrationDate time.Time `json:"registration_date"`
	CertificateSent  bool      `json:"certificate_sent"`
}

// PaymentIntent mirrors the fields this core reads from the external
// gateway. Its status and amount are authoritative over anything the
// client declared.
type PaymentIntent struct {
	ID     string
	Status string
	Amount int64
}

const PaymentIntentSucceeded = "succeeded"

func normalizeRole(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeRole maps free-form role input onto the closed Role set.
func NormalizeRole(s string) Role {
	return Role(normalizeRole(s))
}
