package domain

import (
	"context"
	"time"
)

// Mode is how attendees take part in an event.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
	ModeHybrid  Mode = "hybrid"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeOnline, ModeOffline, ModeHybrid:
		return true
	}
	return false
}

// Event is a published developer event.
// Slug, Date and Time hold their canonical form once the event has been saved.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required,maxlength=100"`
	Slug        string    `json:"slug"`
	Description string    `json:"description" validate:"required,maxlength=1000"`
	Overview    string    `json:"overview" validate:"required,maxlength=500"`
	Image       string    `json:"image" validate:"required"`
	Venue       string    `json:"venue" validate:"required"`
	Location    string    `json:"location" validate:"required"`
	Date        string    `json:"date" validate:"required"`
	Time        string    `json:"time" validate:"required"`
	Mode        Mode      `json:"mode" validate:"required,oneof=online offline hybrid"`
	Audience    string    `json:"audience" validate:"required"`
	Agenda      []string  `json:"agenda" validate:"required,min=1"`
	Organizer   string    `json:"organizer" validate:"required"`
	Tags        []string  `json:"tags" validate:"required,min=1"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID, Slug and timestamps are set on save.
func NewEvent(title, description, overview, image, venue, location, date, clock string, mode Mode, audience string, agenda []string, organizer string, tags []string) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Overview:    overview,
		Image:       image,
		Venue:       venue,
		Location:    location,
		Date:        date,
		Time:        clock,
		Mode:        mode,
		Audience:    audience,
		Agenda:      agenda,
		Organizer:   organizer,
		Tags:        tags,
	}
}

// EventPatch carries a partial update. Nil fields are left unchanged.
type EventPatch struct {
	Title       *string
	Description *string
	Overview    *string
	Image       *string
	Venue       *string
	Location    *string
	Date        *string
	Time        *string
	Mode        *Mode
	Audience    *string
	Agenda      []string
	Organizer   *string
	Tags        []string
}

// EventRepository defines the interface for event storage.
// Implementations run the before-save step (constraints and normalization) on every write.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	// Update persists the fields in changed. Slug is rewritten when the title changed.
	Update(ctx context.Context, event *Event, changed FieldSet) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	// List returns one page of events ordered by date then time, plus the total match count.
	List(ctx context.Context, filter ListFilter, params PaginationParams) ([]*Event, int, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines the business logic for managing events.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEventByID(ctx context.Context, id string) (*Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*Event, error)
	ListEvents(ctx context.Context, filter ListFilter, params PaginationParams) ([]*Event, int, error)
	UpdateEvent(ctx context.Context, id string, patch EventPatch) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
}
