package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/campushub/events-api/internal/domain"
	"github.com/campushub/events-api/internal/repository/dao"
)

var (
	ErrRegistrationNotFound  = dao.ErrRegistrationNotFound
	ErrDuplicateRegistration = dao.ErrDuplicateRegistration
	ErrCapacityExceeded      = dao.ErrCapacityExceeded
	ErrRegistrationConflict  = dao.ErrRegistrationConflict
)

type txKey struct{}

// RegistrationRepository is the ledger plus the two stores the settlement
// flows must mutate together: per-user wallet balances and per-event
// capacity. WithTx runs fn inside one database transaction; every method
// called with the context WithTx hands out joins that transaction, so a
// batch commit and its aggregate debit succeed or fail as a unit.
type RegistrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) *RegistrationRepository {
	return &RegistrationRepository{
		db: db,
	}
}

func (r *RegistrationRepository) WithTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (r *RegistrationRepository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}

	return r.db
}

func (r *RegistrationRepository) CreateRegistered(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	created, err := dao.NewRegistrationDAO(r.conn(ctx)).InsertRegistered(ctx, registrationDomainToDao(reg))
	if err != nil {
		return domain.Registration{}, err
	}

	return registrationDaoToDomain(created), nil
}

func (r *RegistrationRepository) GetByID(ctx context.Context, id uint) (domain.Registration, error) {
	found, err := dao.NewRegistrationDAO(r.conn(ctx)).FindByID(ctx, id)
	if err != nil {
		return domain.Registration{}, err
	}

	return registrationDaoToDomain(found), nil
}

func (r *RegistrationRepository) FindActive(ctx context.Context, userID, eventID uint, userType domain.Role) (*domain.Registration, error) {
	found, err := dao.NewRegistrationDAO(r.conn(ctx)).FindActive(ctx, userID, eventID, string(userType))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindActive -> %w", err)
	}
	if found == nil {
		return nil, nil
	}

	reg := registrationDaoToDomain(*found)

	return &reg, nil
}

func (r *RegistrationRepository) DeleteCancelled(ctx context.Context, userID, eventID uint, userType domain.Role) error {
	if err := dao.NewRegistrationDAO(r.conn(ctx)).DeleteCancelled(ctx, userID, eventID, string(userType)); err != nil {
		return fmt.Errorf("r.dao.DeleteCancelled -> %w", err)
	}

	return nil
}

func (r *RegistrationRepository) CountRegistered(ctx context.Context, eventID uint) (int64, error) {
	count, err := dao.NewRegistrationDAO(r.conn(ctx)).CountRegistered(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountRegistered -> %w", err)
	}

	return count, nil
}

func (r *RegistrationRepository) GetByUserID(ctx context.Context, userID uint) ([]domain.Registration, error) {
	found, err := dao.NewRegistrationDAO(r.conn(ctx)).FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	regs := make([]domain.Registration, len(found))
	for i, reg := range found {
		regs[i] = registrationDaoToDomain(reg)
	}

	return regs, nil
}

func (r *RegistrationRepository) UpdateStatusIf(ctx context.Context, id uint, from, to domain.RegistrationStatus) error {
	return dao.NewRegistrationDAO(r.conn(ctx)).UpdateStatusIf(ctx, id, string(from), string(to))
}

func (r *RegistrationRepository) MarkRefunded(ctx context.Context, id uint) (bool, error) {
	return dao.NewRegistrationDAO(r.conn(ctx)).MarkRefunded(ctx, id)
}

func (r *RegistrationRepository) SetCertificateSent(ctx context.Context, id uint) error {
	return dao.NewRegistrationDAO(r.conn(ctx)).SetCertificateSent(ctx, id)
}

func (r *RegistrationRepository) GetEvent(ctx context.Context, eventID uint) (domain.Event, error) {
	found, err := dao.NewEventDAO(r.conn(ctx)).FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, err
	}

	return eventDaoToDomain(found), nil
}

func (r *RegistrationRepository) GetUser(ctx context.Context, userID uint) (domain.User, error) {
	found, err := dao.NewUserDAO(r.conn(ctx)).FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	return domain.User{
		ID:            found.ID,
		Email:         found.Email,
		Name:          found.Name,
		Role:          domain.Role(found.Role),
		WalletBalance: found.WalletBalance,
		CreatedAt:     found.CreatedAt,
		UpdatedAt:     found.UpdatedAt,
	}, nil
}

func (r *RegistrationRepository) DebitWallet(ctx context.Context, userID uint, amount int64) error {
	return dao.NewUserDAO(r.conn(ctx)).DebitWallet(ctx, userID, amount)
}

func (r *RegistrationRepository) CreditWallet(ctx context.Context, userID uint, amount int64) error {
	return dao.NewUserDAO(r.conn(ctx)).CreditWallet(ctx, userID, amount)
}

func (r *RegistrationRepository) GetWalletBalance(ctx context.Context, userID uint) (int64, error) {
	return dao.NewUserDAO(r.conn(ctx)).GetWalletBalance(ctx, userID)
}

func registrationDomainToDao(reg domain.Registration) dao.Registration {
	return dao.Registration{
		ID:                 reg.ID,
		UserID:             reg.UserID,
		UserType:           string(reg.UserType),
		EventID:            reg.EventID,
		EventType:          string(reg.EventType),
		Status:             string(reg.Status),
		PaymentMethod:      string(reg.PaymentMethod),
		AmountPaid:         reg.AmountPaid,
		ExternalPaymentRef: reg.ExternalPaymentRef,
		RefundedToWallet:   reg.RefundedToWallet,
		RegistrationDate:   reg.RegistrationDate,
		CertificateSent:    reg.CertificateSent,
	}
}

func registrationDaoToDomain(reg dao.Registration) domain.Registration {
	return domain.Registration{
		ID:                 reg.ID,
		UserID:             reg.UserID,
		UserType:           domain.Role(reg.UserType),
		EventID:            reg.EventID,
		EventType:          domain.EventType(reg.EventType),
		Status:             domain.RegistrationStatus(reg.Status),
		PaymentMethod:      domain.PaymentMethod(reg.PaymentMethod),
		AmountPaid:         reg.AmountPaid,
		ExternalPaymentRef: reg.ExternalPaymentRef,
		RefundedToWallet:   reg.RefundedToWallet,
		RegistrationDate:   reg.RegistrationDate,
		CertificateSent:    reg.CertificateSent,
	}
}
