package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrRegistrationNotFound  = errors.New("registration not found")
	ErrDuplicateRegistration = errors.New("user already registered for this event")
	ErrCapacityExceeded      = errors.New("event capacity exceeded")
	ErrRegistrationConflict  = errors.New("registration state changed concurrently")
)

type Registration struct {
	ID uint `gorm:"primaryKey"`

	UserID    uint   `gorm:"not null;index"`
	UserType  string `gorm:"not null"`
	EventID   uint   `gorm:"not null;index"`
	EventType string `gorm:"not null"`

	Status string `gorm:"not null"` // "registered", "cancelled", or "attended"

	PaymentMethod      string `gorm:"not null"` // "wallet", "stripe", or "none"
	AmountPaid         int64  `gorm:"not null;default:0"`
	ExternalPaymentRef string
	RefundedToWallet   bool `gorm:"not null;default:false"`

	RegistrationDate time.Time `gorm:"not null"`
	CertificateSent  bool      `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Registration) TableName() string {
	return "registrations"
}

type RegistrationDAO struct {
	db *gorm.DB
}

func NewRegistrationDAO(db *gorm.DB) *RegistrationDAO {
	return &RegistrationDAO{
		db: db,
	}
}

// InsertRegistered is the sole insertion point for "registered" rows.
// It must run inside a transaction: the event row is locked FOR UPDATE
// so the capacity check and the insert form one atomic step, and the
// partial unique index on active rows rejects duplicate triples that
// slip past the application-level check.
func (d *RegistrationDAO) InsertRegistered(ctx context.Context, reg Registration) (Registration, error) {
	var event Event
	result := d.db.WithContext(ctx).
		Clauses(forUpdate()).
		First(&event, reg.EventID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrEventNotFound
		}
		return Registration{}, result.Error
	}

	registered, err := d.CountRegistered(ctx, reg.EventID)
	if err != nil {
		return Registration{}, err
	}
	if registered >= int64(event.Capacity) {
		return Registration{}, ErrCapacityExceeded
	}

	reg.Status = "registered"

	const insert = `
INSERT INTO registrations
  (user_id, user_type, event_id, event_type, status, payment_method, amount_paid,
   external_payment_ref, refunded_to_wallet, registration_date, certificate_sent,
   created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, now(), now())
ON CONFLICT (user_id, event_id, user_type) WHERE status = 'registered' DO NOTHING
RETURNING id`

	var id uint
	result = d.db.WithContext(ctx).
		Raw(insert,
			reg.UserID, reg.UserType, reg.EventID, reg.EventType, reg.Status,
			reg.PaymentMethod, reg.AmountPaid, reg.ExternalPaymentRef,
			reg.RefundedToWallet, reg.RegistrationDate, reg.CertificateSent).
		Scan(&id)
	if result.Error != nil {
		return Registration{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Registration{}, ErrDuplicateRegistration
	}

	reg.ID = id

	return reg, nil
}

func (d *RegistrationDAO) FindByID(ctx context.Context, id uint) (Registration, error) {
	var reg Registration

	result := d.db.WithContext(ctx).First(&reg, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return reg, nil
}

// FindActive returns the single "registered" row for the triple, or nil.
func (d *RegistrationDAO) FindActive(ctx context.Context, userID, eventID uint, userType string) (*Registration, error) {
	var reg Registration

	result := d.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ? AND user_type = ? AND status = ?",
			userID, eventID, userType, "registered").
		First(&reg)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, result.Error
	}

	return &reg, nil
}

// DeleteCancelled purges a stale cancelled row for the triple so a fresh
// registration does not collide with it.
func (d *RegistrationDAO) DeleteCancelled(ctx context.Context, userID, eventID uint, userType string) error {
	result := d.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ? AND user_type = ? AND status = ?",
			userID, eventID, userType, "cancelled").
		Delete(&Registration{})

	return result.Error
}

func (d *RegistrationDAO) CountRegistered(ctx context.Context, eventID uint) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&Registration{}).
		Where("event_id = ? AND status = ?", eventID, "registered").
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (d *RegistrationDAO) FindByUserID(ctx context.Context, userID uint) ([]Registration, error) {
	var regs []Registration

	result := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("registration_date DESC").
		Find(&regs)
	if result.Error != nil {
		return nil, result.Error
	}

	return regs, nil
}

// UpdateStatusIf performs the from→to transition only when the row is
// still in the expected state, so concurrent transitions cannot double
// apply. Returns ErrRegistrationConflict when the guard fails.
func (d *RegistrationDAO) UpdateStatusIf(ctx context.Context, id uint, from, to string) error {
	result := d.db.WithContext(ctx).
		Model(&Registration{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		if _, err := d.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrRegistrationConflict
	}

	return nil
}

// MarkRefunded flips refunded_to_wallet exactly once. The guard makes the
// refund idempotent under retries; callers credit the wallet only when a
// row was actually updated.
func (d *RegistrationDAO) MarkRefunded(ctx context.Context, id uint) (bool, error) {
	result := d.db.WithContext(ctx).
		Model(&Registration{}).
		Where("id = ? AND refunded_to_wallet = false", id).
		Update("refunded_to_wallet", true)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (d *RegistrationDAO) SetCertificateSent(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).
		Model(&Registration{}).
		Where("id = ?", id).
		Update("certificate_sent", true)

	return result.Error
}
