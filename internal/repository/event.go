package repository

import (
	"context"
	"fmt"

	"github.com/campushub/events-api/internal/domain"
	"github.com/campushub/events-api/internal/repository/dao"
)

var ErrEventNotFound = dao.ErrEventNotFound

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	FindAll(ctx context.Context) ([]dao.Event, error)
	FindByType(ctx context.Context, eventType string) ([]dao.Event, error)
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, eventDomainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return eventDaoToDomain(created), nil
}

func (r *EventRepository) GetByID(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return eventDaoToDomain(found), nil
}

func (r *EventRepository) GetAll(ctx context.Context) ([]domain.Event, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	events := make([]domain.Event, len(found))
	for i, e := range found {
		events[i] = eventDaoToDomain(e)
	}

	return events, nil
}

func (r *EventRepository) GetByType(ctx context.Context, eventType domain.EventType) ([]domain.Event, error) {
	found, err := r.dao.FindByType(ctx, string(eventType))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByType -> %w", err)
	}

	events := make([]domain.Event, len(found))
	for i, e := range found {
		events[i] = eventDaoToDomain(e)
	}

	return events, nil
}

func eventDomainToDao(e domain.Event) dao.Event {
	return dao.Event{
		ID:                   e.ID,
		Name:                 e.Name,
		EventType:            string(e.EventType),
		Description:          e.Description,
		Location:             e.Location,
		StartDate:            e.StartDate,
		EndDate:              e.EndDate,
		RegistrationDeadline: e.RegistrationDeadline,
		Capacity:             e.Capacity,
		Price:                e.Price,
		Audience:             e.Audience,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

func eventDaoToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:                   e.ID,
		Name:                 e.Name,
		EventType:            domain.EventType(e.EventType),
		Description:          e.Description,
		Location:             e.Location,
		StartDate:            e.StartDate,
		EndDate:              e.EndDate,
		RegistrationDeadline: e.RegistrationDeadline,
		Capacity:             e.Capacity,
		Price:                e.Price,
		Audience:             e.Audience,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}
