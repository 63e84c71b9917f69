package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/campushub/events-api/internal/domain"
	"github.com/campushub/events-api/internal/repository"
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	GetByID(ctx context.Context, id uint) (domain.Event, error)
	GetAll(ctx context.Context) ([]domain.Event, error)
	GetByType(ctx context.Context, eventType domain.EventType) ([]domain.Event, error)
}

type EventService struct {
	repo EventRepository
}

func NewEventService(repo EventRepository) *EventService {
	return &EventService{
		repo: repo,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (domain.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Event{}, ErrEventNotFound
		}

		return domain.Event{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context, eventType domain.EventType) ([]domain.Event, error) {
	if eventType != "" {
		events, err := s.repo.GetByType(ctx, eventType)
		if err != nil {
			return nil, fmt.Errorf("s.repo.GetByType -> %w", err)
		}

		return events, nil
	}

	events, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.GetAll -> %w", err)
	}

	return events, nil
}
