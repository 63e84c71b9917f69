package domain

import "time"

// EventType tags which kind of event a registration refers to.
type EventType string

const (
	EventWorkshop   EventType = "workshop"
	EventTrip       EventType = "trip"
	EventBazaar     EventType = "bazaar"
	EventConference EventType = "conference"
	EventGym        EventType = "gym"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventWorkshop, EventTrip, EventBazaar, EventConference, EventGym:
		return true
	}
	return false
}

type Event struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	EventType   EventType `json:"event_type"`
	Description string    `json:"description"`
	Location    string    `json:"location"`

	StartDate            time.Time  `json:"start_date"`
	EndDate              time.Time  `json:"end_date"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`

	Capacity int `json:"capacity"`

	// Price in cents. Zero means the event is free and bypasses payment.
	Price int64 `json:"price"`

	// Audience restricts which roles may register. Empty means unrestricted.
	Audience []string `json:"audience,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AllowsRole reports whether the audience list admits the given role.
func (e *Event) AllowsRole(role Role) bool {
	if len(e.Audience) == 0 {
		return true
	}
	for _, allowed := range e.Audience {
		if Role(normalizeRole(allowed)) == role {
			return true
		}
	}
	return false
}
