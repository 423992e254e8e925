// Package mongodb stores events as documents in a MongoDB collection.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"devevents/internal/domain"
	"devevents/internal/repository/schema"
)

// CollectionName is the collection events are stored in.
const CollectionName = "events"

type eventDocument struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Slug        string    `bson:"slug"`
	Description string    `bson:"description"`
	Overview    string    `bson:"overview"`
	Image       string    `bson:"image"`
	Venue       string    `bson:"venue"`
	Location    string    `bson:"location"`
	Date        string    `bson:"date"`
	Time        string    `bson:"time"`
	Mode        string    `bson:"mode"`
	Audience    string    `bson:"audience"`
	Agenda      []string  `bson:"agenda"`
	Organizer   string    `bson:"organizer"`
	Tags        []string  `bson:"tags"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func toDocument(e *domain.Event) eventDocument {
	return eventDocument{
		ID: e.ID, Title: e.Title, Slug: e.Slug, Description: e.Description, Overview: e.Overview,
		Image: e.Image, Venue: e.Venue, Location: e.Location, Date: e.Date, Time: e.Time,
		Mode: string(e.Mode), Audience: e.Audience, Agenda: e.Agenda, Organizer: e.Organizer,
		Tags: e.Tags, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt,
	}
}

func (d eventDocument) toDomain() *domain.Event {
	return &domain.Event{
		ID: d.ID, Title: d.Title, Slug: d.Slug, Description: d.Description, Overview: d.Overview,
		Image: d.Image, Venue: d.Venue, Location: d.Location, Date: d.Date, Time: d.Time,
		Mode: domain.Mode(d.Mode), Audience: d.Audience, Agenda: d.Agenda, Organizer: d.Organizer,
		Tags: d.Tags, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

type eventRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewEventRepository returns a domain.EventRepository backed by the events collection of db.
func NewEventRepository(db *mongo.Database) domain.EventRepository {
	return &eventRepository{coll: db.Collection(CollectionName), now: time.Now}
}

// EnsureIndexes creates the unique slug index and the (date, mode) lookup index.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionName).Indexes().CreateMany(ctx, indexModels())
	if err != nil {
		return fmt.Errorf("create event indexes: %w", err)
	}
	return nil
}

func indexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("slug_unique"),
		},
		{
			Keys:    bson.D{{Key: "date", Value: 1}, {Key: "mode", Value: 1}},
			Options: options.Index().SetName("date_mode"),
		},
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	if err := schema.BeforeSave(e, domain.AllFields); err != nil {
		return err
	}
	now := r.now().UTC()
	doc := toDocument(e)
	doc.ID = uuid.NewString()
	doc.CreatedAt, doc.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return mapWriteError(err)
	}
	e.ID, e.CreatedAt, e.UpdatedAt = doc.ID, now, now
	return nil
}

// setDocument builds the $set payload for the changed fields.
func setDocument(e *domain.Event, changed domain.FieldSet, now time.Time) bson.D {
	doc := toDocument(e)
	set := bson.D{}
	for _, f := range changed.Fields() {
		switch f {
		case domain.FieldTitle:
			set = append(set, bson.E{Key: "title", Value: doc.Title}, bson.E{Key: "slug", Value: doc.Slug})
		case domain.FieldDescription:
			set = append(set, bson.E{Key: "description", Value: doc.Description})
		case domain.FieldOverview:
			set = append(set, bson.E{Key: "overview", Value: doc.Overview})
		case domain.FieldImage:
			set = append(set, bson.E{Key: "image", Value: doc.Image})
		case domain.FieldVenue:
			set = append(set, bson.E{Key: "venue", Value: doc.Venue})
		case domain.FieldLocation:
			set = append(set, bson.E{Key: "location", Value: doc.Location})
		case domain.FieldDate:
			set = append(set, bson.E{Key: "date", Value: doc.Date})
		case domain.FieldTime:
			set = append(set, bson.E{Key: "time", Value: doc.Time})
		case domain.FieldMode:
			set = append(set, bson.E{Key: "mode", Value: doc.Mode})
		case domain.FieldAudience:
			set = append(set, bson.E{Key: "audience", Value: doc.Audience})
		case domain.FieldAgenda:
			set = append(set, bson.E{Key: "agenda", Value: doc.Agenda})
		case domain.FieldOrganizer:
			set = append(set, bson.E{Key: "organizer", Value: doc.Organizer})
		case domain.FieldTags:
			set = append(set, bson.E{Key: "tags", Value: doc.Tags})
		}
	}
	return append(set, bson.E{Key: "updatedAt", Value: now})
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event, changed domain.FieldSet) error {
	if changed.Empty() {
		return nil
	}
	if err := schema.BeforeSave(e, changed); err != nil {
		return err
	}
	now := r.now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: e.ID}}, bson.D{{Key: "$set", Value: setDocument(e, changed, now)}})
	if err != nil {
		return mapWriteError(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	e.UpdatedAt = now
	return nil
}

func (r *eventRepository) findOne(ctx context.Context, filter bson.D) (*domain.Event, error) {
	var doc eventDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	return r.findOne(ctx, bson.D{{Key: "slug", Value: slug}})
}

func listFilter(filter domain.ListFilter) bson.D {
	f := bson.D{}
	if filter.Date != "" {
		f = append(f, bson.E{Key: "date", Value: filter.Date})
	}
	if filter.Mode != "" {
		f = append(f, bson.E{Key: "mode", Value: string(filter.Mode)})
	}
	return f
}

// pageWindow converts params to Find skip and limit. A zero limit means
// "no limit" to the server, so params are normalized first.
func pageWindow(params domain.PaginationParams) (skip, limit int64) {
	params = params.Normalized()
	return int64(params.Offset()), int64(params.PageSize)
}

func (r *eventRepository) List(ctx context.Context, filter domain.ListFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f := listFilter(filter)
	total, err := r.coll.CountDocuments(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	skip, limit := pageWindow(params)
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}, {Key: "createdAt", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := r.coll.Find(ctx, f, opts)
	if err != nil {
		return nil, 0, err
	}
	var docs []eventDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	events := make([]*domain.Event, 0, len(docs))
	for _, d := range docs {
		events = append(events, d.toDomain())
	}
	return events, int(total), nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// mapWriteError turns duplicate key errors into domain.ConstraintViolation.
// The only unique index besides _id is on slug.
func mapWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return domain.NewConstraintViolation("slug", "unique", "must be unique")
	}
	return err
}
