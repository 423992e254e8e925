package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"devevents/internal/domain"
	"devevents/internal/normalize"
)

type eventService struct {
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event == nil {
		return fmt.Errorf("event is required")
	}
	event.ID = ""
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *eventService) GetEventByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEventBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, domain.ErrNotFound
	}
	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event by slug: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.ListFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if filter.Date != "" {
		d, err := normalize.Date(filter.Date)
		if err != nil {
			return nil, 0, err
		}
		filter.Date = d
	}
	if filter.Mode != "" && !filter.Mode.Valid() {
		return nil, 0, domain.NewConstraintViolation("mode", "oneof", "must be one of: online, offline, hybrid")
	}

	events, total, err := s.eventRepo.List(ctx, filter, params.Normalized())
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	changed := applyPatch(event, patch)
	if changed.Empty() {
		return event, nil
	}
	if err := s.eventRepo.Update(ctx, event, changed); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// applyPatch copies the set fields of p onto e and returns the fields whose
// value actually changed.
func applyPatch(e *domain.Event, p domain.EventPatch) domain.FieldSet {
	var changed domain.FieldSet
	setString := func(dst *string, src *string, f domain.Field) {
		if src != nil && *src != *dst {
			*dst = *src
			changed = changed.With(f)
		}
	}
	setList := func(dst *[]string, src []string, f domain.Field) {
		if src != nil && !slices.Equal(src, *dst) {
			*dst = src
			changed = changed.With(f)
		}
	}

	setString(&e.Title, p.Title, domain.FieldTitle)
	setString(&e.Description, p.Description, domain.FieldDescription)
	setString(&e.Overview, p.Overview, domain.FieldOverview)
	setString(&e.Image, p.Image, domain.FieldImage)
	setString(&e.Venue, p.Venue, domain.FieldVenue)
	setString(&e.Location, p.Location, domain.FieldLocation)
	setString(&e.Date, p.Date, domain.FieldDate)
	setString(&e.Time, p.Time, domain.FieldTime)
	setString(&e.Audience, p.Audience, domain.FieldAudience)
	setString(&e.Organizer, p.Organizer, domain.FieldOrganizer)
	if p.Mode != nil && *p.Mode != e.Mode {
		e.Mode = *p.Mode
		changed = changed.With(domain.FieldMode)
	}
	setList(&e.Agenda, p.Agenda, domain.FieldAgenda)
	setList(&e.Tags, p.Tags, domain.FieldTags)
	return changed
}
