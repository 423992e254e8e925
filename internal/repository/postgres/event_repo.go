package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"devevents/internal/domain"
	"devevents/internal/repository/schema"

	"github.com/lib/pq"
)

const eventColumns = `id, title, slug, description, overview, image, venue, location, date, time, mode, audience, agenda, organizer, tags, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository returns a domain.EventRepository implemented with Postgres.
func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var mode string
	err := row.Scan(
		&e.ID, &e.Title, &e.Slug, &e.Description, &e.Overview, &e.Image, &e.Venue, &e.Location,
		&e.Date, &e.Time, &mode, &e.Audience, pq.Array(&e.Agenda), &e.Organizer, pq.Array(&e.Tags),
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Mode = domain.Mode(mode)
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	if err := schema.BeforeSave(e, domain.AllFields); err != nil {
		return err
	}
	query := `
		INSERT INTO events (title, slug, description, overview, image, venue, location, date, time, mode, audience, agenda, organizer, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Title, e.Slug, e.Description, e.Overview, e.Image, e.Venue, e.Location,
		e.Date, e.Time, string(e.Mode), e.Audience, pq.Array(e.Agenda), e.Organizer, pq.Array(e.Tags),
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	return mapWriteError(err)
}

// columnValue returns the column and bound value for a changed field.
func columnValue(e *domain.Event, f domain.Field) (string, any) {
	switch f {
	case domain.FieldTitle:
		return "title", e.Title
	case domain.FieldDescription:
		return "description", e.Description
	case domain.FieldOverview:
		return "overview", e.Overview
	case domain.FieldImage:
		return "image", e.Image
	case domain.FieldVenue:
		return "venue", e.Venue
	case domain.FieldLocation:
		return "location", e.Location
	case domain.FieldDate:
		return "date", e.Date
	case domain.FieldTime:
		return "time", e.Time
	case domain.FieldMode:
		return "mode", string(e.Mode)
	case domain.FieldAudience:
		return "audience", e.Audience
	case domain.FieldAgenda:
		return "agenda", pq.Array(e.Agenda)
	case domain.FieldOrganizer:
		return "organizer", e.Organizer
	case domain.FieldTags:
		return "tags", pq.Array(e.Tags)
	}
	return "", nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event, changed domain.FieldSet) error {
	if changed.Empty() {
		return nil
	}
	if err := schema.BeforeSave(e, changed); err != nil {
		return err
	}
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	for _, f := range changed.Fields() {
		col, val := columnValue(e, f)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, n))
		args = append(args, val)
		n++
		if f == domain.FieldTitle {
			setClauses = append(setClauses, fmt.Sprintf("slug = $%d", n))
			args = append(args, e.Slug)
			n++
		}
	}
	args = append(args, e.ID)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING updated_at
	`, strings.Join(setClauses, ", "), n)
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return domain.ErrNotFound
		}
		return mapWriteError(err)
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE slug = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, filter domain.ListFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	params = params.Normalized()
	var where []string
	args := []interface{}{}
	if filter.Date != "" {
		args = append(args, filter.Date)
		where = append(where, fmt.Sprintf("date = $%d", len(args)))
	}
	if filter.Mode != "" {
		args = append(args, string(filter.Mode))
		where = append(where, fmt.Sprintf("mode = $%d", len(args)))
	}
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM events%s ORDER BY date ASC, time ASC, created_at ASC LIMIT $%d OFFSET $%d`,
		eventColumns, whereSQL, len(args)+1, len(args)+2)
	rows, err := r.DB.QueryContext(ctx, query, append(args, params.PageSize, params.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		if isInvalidID(err) {
			return domain.ErrNotFound
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// isInvalidID reports whether Postgres rejected an id that is not a UUID.
func isInvalidID(err error) bool {
	var perr *pq.Error
	return errors.As(err, &perr) && perr.Code == "22P02"
}

// mapWriteError turns Postgres integrity errors into domain.ConstraintViolation.
func mapWriteError(err error) error {
	var perr *pq.Error
	if !errors.As(err, &perr) {
		return err
	}
	switch perr.Code {
	case "23505":
		field := perr.Constraint
		if strings.Contains(field, "slug") {
			field = "slug"
		}
		return domain.NewConstraintViolation(field, "unique", "must be unique")
	case "23502":
		return domain.NewConstraintViolation(perr.Column, "required", "is required")
	case "23514":
		return domain.NewConstraintViolation(perr.Constraint, "check", perr.Message)
	}
	return err
}
