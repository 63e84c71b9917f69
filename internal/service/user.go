package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/campushub/events-api/internal/domain"
	"github.com/campushub/events-api/internal/repository"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	GetWalletBalance(ctx context.Context, id uint) (int64, error)
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrUserNotFound
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

func (s *UserService) GetWalletBalance(ctx context.Context, id uint) (int64, error) {
	balance, err := s.repo.GetWalletBalance(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return 0, ErrUserNotFound
		}

		return 0, fmt.Errorf("s.repo.GetWalletBalance -> %w", err)
	}

	return balance, nil
}
