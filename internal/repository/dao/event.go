package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrEventNotFound = errors.New("event not found")

type Event struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	EventType   string `gorm:"not null;index"` // "workshop", "trip", "bazaar", "conference", or "gym"
	Description string
	Location    string `gorm:"not null"`

	StartDate            time.Time `gorm:"not null"`
	EndDate              time.Time `gorm:"not null"`
	RegistrationDeadline *time.Time

	Capacity int   `gorm:"not null"`
	Price    int64 `gorm:"not null;default:0"` // cents

	Audience []string `gorm:"serializer:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Create(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindAll(ctx context.Context) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).Order("start_date").Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *EventDAO) FindByType(ctx context.Context, eventType string) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).Where("event_type = ?", eventType).Order("start_date").Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}
