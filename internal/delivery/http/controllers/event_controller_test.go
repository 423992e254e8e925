package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"devevents/internal/delivery/http/helpers"
	"devevents/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	createEventErr  error
	getEventErr     error
	listEventsErr   error
	updateEventErr  error
	deleteEventErr  error
	event           *domain.Event
	events          []*domain.Event
	total           int
	lastCreateEvent *domain.Event
	lastGetID       string
	lastGetSlug     string
	lastFilter      domain.ListFilter
	lastParams      domain.PaginationParams
	lastUpdateID    string
	lastPatch       domain.EventPatch
	lastDeleteID    string
}

func (f *fakeEventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	f.lastCreateEvent = event
	if f.createEventErr != nil {
		return f.createEventErr
	}
	event.ID = "ev-created"
	event.Slug = "derived-slug"
	return nil
}

func (f *fakeEventService) GetEventByID(ctx context.Context, id string) (*domain.Event, error) {
	f.lastGetID = id
	if f.getEventErr != nil {
		return nil, f.getEventErr
	}
	return f.event, nil
}

func (f *fakeEventService) GetEventBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	f.lastGetSlug = slug
	if f.getEventErr != nil {
		return nil, f.getEventErr
	}
	return f.event, nil
}

func (f *fakeEventService) ListEvents(ctx context.Context, filter domain.ListFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastFilter = filter
	f.lastParams = params
	if f.listEventsErr != nil {
		return nil, 0, f.listEventsErr
	}
	return f.events, f.total, nil
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	f.lastUpdateID = id
	f.lastPatch = patch
	if f.updateEventErr != nil {
		return nil, f.updateEventErr
	}
	return f.event, nil
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, id string) error {
	f.lastDeleteID = id
	return f.deleteEventErr
}

const validCreateBody = `{
	"title": "Tech Talk: AI & You!",
	"description": "A talk.",
	"overview": "Overview",
	"image": "https://cdn.example.com/a.png",
	"venue": "Hall A",
	"location": "Berlin",
	"date": "March 5, 2024",
	"time": "2:30 PM",
	"mode": "online",
	"audience": "Developers",
	"agenda": ["Intro", "Talk"],
	"organizer": "DevRel",
	"tags": ["ai"]
}`

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	return envelope
}

func TestEventController_CreateEvent(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantCode       string
		wantBodySubstr string
		checkCall      func(t *testing.T, fake *fakeEventService)
	}{
		{
			name:       "success",
			body:       validCreateBody,
			wantStatus: http.StatusCreated,
			checkCall: func(t *testing.T, fake *fakeEventService) {
				require.NotNil(t, fake.lastCreateEvent)
				assert.Equal(t, "Tech Talk: AI & You!", fake.lastCreateEvent.Title)
				assert.Equal(t, domain.ModeOnline, fake.lastCreateEvent.Mode)
				assert.Equal(t, []string{"Intro", "Talk"}, fake.lastCreateEvent.Agenda)
			},
		},
		{
			name:           "bad request invalid json",
			body:           `{invalid`,
			wantStatus:     http.StatusBadRequest,
			wantCode:       helpers.ErrCodeBadRequest,
			wantBodySubstr: "invalid",
		},
		{
			name:           "unknown field rejected",
			body:           `{"title":"Conf","slug":"custom"}`,
			wantStatus:     http.StatusBadRequest,
			wantCode:       helpers.ErrCodeBadRequest,
			wantBodySubstr: "unknown field",
		},
		{
			name:           "invalid date",
			body:           validCreateBody,
			fakeErr:        fmt.Errorf("create event: %w", domain.ErrInvalidDateFormat),
			wantStatus:     http.StatusBadRequest,
			wantCode:       helpers.ErrCodeInvalidDateFormat,
			wantBodySubstr: "Invalid date format",
		},
		{
			name:           "invalid time format",
			body:           validCreateBody,
			fakeErr:        fmt.Errorf("create event: %w", domain.ErrInvalidTimeFormat),
			wantStatus:     http.StatusBadRequest,
			wantCode:       helpers.ErrCodeInvalidTimeFormat,
			wantBodySubstr: "Invalid time format",
		},
		{
			name:           "invalid time value",
			body:           validCreateBody,
			fakeErr:        domain.ErrInvalidTimeValue,
			wantStatus:     http.StatusBadRequest,
			wantCode:       helpers.ErrCodeInvalidTimeValue,
			wantBodySubstr: "Invalid time values",
		},
		{
			name:           "constraint violation",
			body:           validCreateBody,
			fakeErr:        fmt.Errorf("create event: %w", domain.NewConstraintViolation("tags", "min", "must contain at least 1 entry")),
			wantStatus:     http.StatusBadRequest,
			wantCode:       helpers.ErrCodeConstraintViolation,
			wantBodySubstr: "tags: must contain at least 1 entry",
		},
		{
			name:           "service error",
			body:           validCreateBody,
			fakeErr:        errors.New("db error"),
			wantStatus:     http.StatusInternalServerError,
			wantCode:       helpers.ErrCodeInternalError,
			wantBodySubstr: "db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEventService{createEventErr: tt.fakeErr}
			ctrl := NewEventController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			ctrl.CreateEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			envelope := decodeEnvelope(t, rr)
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error, "success response must have error nil")
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var event domain.Event
				require.NoError(t, json.Unmarshal(dataBytes, &event))
				assert.Equal(t, "ev-created", event.ID)
				assert.Equal(t, "derived-slug", event.Slug)
			} else {
				require.NotNil(t, envelope.Error, "error response must have error set")
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr, "error message")
			}
			if tt.checkCall != nil {
				tt.checkCall(t, fake)
			}
		})
	}
}

func TestEventController_ConstraintViolationDetails(t *testing.T) {
	fake := &fakeEventService{createEventErr: &domain.ConstraintViolation{Violations: []domain.FieldViolation{
		{Field: "agenda", Rule: "min", Msg: "must contain at least 1 entry"},
		{Field: "mode", Rule: "oneof", Msg: "must be one of: online, offline, hybrid"},
	}}}
	ctrl := NewEventController(testLogger, fake)
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(validCreateBody))
	rr := httptest.NewRecorder()

	ctrl.CreateEvent(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	envelope := decodeEnvelope(t, rr)
	require.NotNil(t, envelope.Error)
	details, ok := envelope.Error.Details.([]any)
	require.True(t, ok, "details must be a list")
	require.Len(t, details, 2)
	first := details[0].(map[string]any)
	assert.Equal(t, "agenda", first["field"])
}

func TestEventController_ListEvents(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		fake       *fakeEventService
		wantStatus int
		wantCode   string
		check      func(t *testing.T, fake *fakeEventService, envelope helpers.APIResponse)
	}{
		{
			name:  "filters and pagination",
			query: "?date=2024-03-05&mode=online&page=2&page_size=5",
			fake: &fakeEventService{
				events: []*domain.Event{{ID: "ev-1", Slug: "one"}},
				total:  6,
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, fake *fakeEventService, envelope helpers.APIResponse) {
				assert.Equal(t, domain.ListFilter{Date: "2024-03-05", Mode: domain.ModeOnline}, fake.lastFilter)
				assert.Equal(t, domain.PaginationParams{Page: 2, PageSize: 5}, fake.lastParams)
				data := envelope.Data.(map[string]any)
				items := data["items"].([]any)
				assert.Len(t, items, 1)
				pagination := data["pagination"].(map[string]any)
				assert.Equal(t, float64(6), pagination["total"])
				assert.Equal(t, float64(2), pagination["total_pages"])
			},
		},
		{
			name:       "empty list is an array",
			fake:       &fakeEventService{},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, fake *fakeEventService, envelope helpers.APIResponse) {
				data := envelope.Data.(map[string]any)
				assert.Equal(t, []any{}, data["items"])
			},
		},
		{
			name:       "bad date filter",
			query:      "?date=whenever",
			fake:       &fakeEventService{listEventsErr: domain.ErrInvalidDateFormat},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeInvalidDateFormat,
		},
		{
			name:       "service error",
			fake:       &fakeEventService{listEventsErr: errors.New("db down")},
			wantStatus: http.StatusInternalServerError,
			wantCode:   helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewEventController(testLogger, tt.fake)
			req := httptest.NewRequest(http.MethodGet, "/events"+tt.query, nil)
			rr := httptest.NewRecorder()

			ctrl.ListEvents(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr)
			if tt.wantCode != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
				return
			}
			require.Nil(t, envelope.Error)
			tt.check(t, tt.fake, envelope)
		})
	}
}

func TestEventController_GetEventByID(t *testing.T) {
	tests := []struct {
		name       string
		eventID    string
		fakeErr    error
		wantStatus int
		wantCode   string
	}{
		{"success", "ev-1", nil, http.StatusOK, ""},
		{"missing eventID", "", nil, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"not found", "ev-404", domain.ErrNotFound, http.StatusNotFound, helpers.ErrCodeNotFound},
		{"service error", "ev-1", errors.New("boom"), http.StatusInternalServerError, helpers.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEventService{getEventErr: tt.fakeErr, event: &domain.Event{ID: "ev-1", Slug: "go-night"}}
			ctrl := NewEventController(testLogger, fake)
			req := httptest.NewRequest(http.MethodGet, "/events/"+tt.eventID, nil)
			req.SetPathValue("eventID", tt.eventID)
			rr := httptest.NewRecorder()

			ctrl.GetEventByID(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr)
			if tt.wantCode != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
				return
			}
			assert.Equal(t, tt.eventID, fake.lastGetID)
			assert.Equal(t, "go-night", envelope.Data.(map[string]any)["slug"])
		})
	}
}

func TestEventController_GetEventBySlug(t *testing.T) {
	fake := &fakeEventService{event: &domain.Event{ID: "ev-1", Slug: "go-night"}}
	ctrl := NewEventController(testLogger, fake)
	req := httptest.NewRequest(http.MethodGet, "/events/slug/go-night", nil)
	req.SetPathValue("slug", "go-night")
	rr := httptest.NewRecorder()

	ctrl.GetEventBySlug(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "go-night", fake.lastGetSlug)

	fake.getEventErr = domain.ErrNotFound
	rr = httptest.NewRecorder()
	ctrl.GetEventBySlug(rr, req)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEventController_UpdateEvent(t *testing.T) {
	tests := []struct {
		name       string
		eventID    string
		body       string
		fakeErr    error
		wantStatus int
		wantCode   string
		checkCall  func(t *testing.T, fake *fakeEventService)
	}{
		{
			name:       "venue only",
			eventID:    "ev-1",
			body:       `{"venue":"Hall C"}`,
			wantStatus: http.StatusOK,
			checkCall: func(t *testing.T, fake *fakeEventService) {
				assert.Equal(t, "ev-1", fake.lastUpdateID)
				require.NotNil(t, fake.lastPatch.Venue)
				assert.Equal(t, "Hall C", *fake.lastPatch.Venue)
				assert.Nil(t, fake.lastPatch.Title)
				assert.Nil(t, fake.lastPatch.Date)
				assert.Nil(t, fake.lastPatch.Time)
				assert.Nil(t, fake.lastPatch.Tags)
			},
		},
		{
			name:       "mode and empty tags are passed through",
			eventID:    "ev-1",
			body:       `{"mode":"hybrid","tags":[]}`,
			wantStatus: http.StatusOK,
			checkCall: func(t *testing.T, fake *fakeEventService) {
				require.NotNil(t, fake.lastPatch.Mode)
				assert.Equal(t, domain.ModeHybrid, *fake.lastPatch.Mode)
				assert.NotNil(t, fake.lastPatch.Tags)
				assert.Empty(t, fake.lastPatch.Tags)
			},
		},
		{
			name:       "empty body",
			eventID:    "ev-1",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "missing eventID",
			eventID:    "",
			body:       `{"venue":"x"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "not found",
			eventID:    "ev-404",
			body:       `{"venue":"x"}`,
			fakeErr:    domain.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   helpers.ErrCodeNotFound,
		},
		{
			name:       "time out of range",
			eventID:    "ev-1",
			body:       `{"time":"25:00"}`,
			fakeErr:    fmt.Errorf("update event: %w", domain.ErrInvalidTimeValue),
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeInvalidTimeValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEventService{updateEventErr: tt.fakeErr, event: &domain.Event{ID: "ev-1"}}
			ctrl := NewEventController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPatch, "/events/"+tt.eventID, bytes.NewBufferString(tt.body))
			req.SetPathValue("eventID", tt.eventID)
			rr := httptest.NewRecorder()

			ctrl.UpdateEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr)
			if tt.wantCode != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
				return
			}
			require.Nil(t, envelope.Error)
			if tt.checkCall != nil {
				tt.checkCall(t, fake)
			}
		})
	}
}

func TestEventController_DeleteEvent(t *testing.T) {
	tests := []struct {
		name       string
		eventID    string
		fakeErr    error
		wantStatus int
	}{
		{"success", "ev-1", nil, http.StatusOK},
		{"missing eventID", "", nil, http.StatusBadRequest},
		{"not found", "ev-404", domain.ErrNotFound, http.StatusNotFound},
		{"service error", "ev-1", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEventService{deleteEventErr: tt.fakeErr}
			ctrl := NewEventController(testLogger, fake)
			req := httptest.NewRequest(http.MethodDelete, "/events/"+tt.eventID, nil)
			req.SetPathValue("eventID", tt.eventID)
			rr := httptest.NewRecorder()

			ctrl.DeleteEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.eventID, fake.lastDeleteID)
				envelope := decodeEnvelope(t, rr)
				assert.Equal(t, "deleted", envelope.Data.(map[string]any)["status"])
			}
		})
	}
}
