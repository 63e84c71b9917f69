package repository

import (
	"context"
	"fmt"

	"github.com/campushub/events-api/internal/domain"
	"github.com/campushub/events-api/internal/repository/dao"
)

var (
	ErrUserEmailExists     = dao.ErrUserEmailExists
	ErrUserNotFound        = dao.ErrUserNotFound
	ErrInsufficientBalance = dao.ErrInsufficientBalance
)

type UserDAO interface {
	Insert(ctx context.Context, user dao.User) (dao.User, error)
	FindByID(ctx context.Context, id uint) (dao.User, error)
	FindByEmail(ctx context.Context, email string) (dao.User, error)
	DebitWallet(ctx context.Context, userID uint, amount int64) error
	CreditWallet(ctx context.Context, userID uint, amount int64) error
	GetWalletBalance(ctx context.Context, userID uint) (int64, error)
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	created, err := r.dao.Insert(ctx, dao.User{
		Email:         user.Email,
		Password:      user.Password,
		Name:          user.Name,
		Role:          string(user.Role),
		WalletBalance: user.WalletBalance,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) GetWalletBalance(ctx context.Context, userID uint) (int64, error) {
	balance, err := r.dao.GetWalletBalance(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.GetWalletBalance -> %w", err)
	}

	return balance, nil
}

func (r *UserRepository) daoToDomain(u dao.User) domain.User {
	return domain.User{
		ID:            u.ID,
		Email:         u.Email,
		Password:      u.Password,
		Name:          u.Name,
		Role:          domain.Role(u.Role),
		WalletBalance: u.WalletBalance,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
