// Package pbstore implements store.Store on PocketBase collections.
package pbstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"evnt/internal/slug"
	"evnt/internal/store"
	"evnt/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/filesystem"
)

var eventExpands = []string{"category", "tags", "owner"}

type Store struct {
	app core.App
}

var _ store.Store = (*Store)(nil)

func New(app core.App) *Store {
	return &Store{app: app}
}

func (s *Store) ListCategories(_ context.Context) ([]models.Category, error) {
	records, err := s.app.FindAllRecords(store.CollectionCategories)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	out := make([]models.Category, 0, len(records))
	for _, r := range records {
		out = append(out, toCategory(r))
	}
	slices.SortFunc(out, func(a, b models.Category) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) FindCategoryByID(_ context.Context, id string) (*models.Category, error) {
	record, err := s.app.FindRecordById(store.CollectionCategories, id)
	if err != nil {
		return nil, notFound(err)
	}
	c := toCategory(record)
	return &c, nil
}

func (s *Store) FindCategoryBySlug(_ context.Context, slug string) (*models.Category, error) {
	record, err := s.app.FindFirstRecordByData(store.CollectionCategories, "slug", slug)
	if err != nil {
		return nil, notFound(err)
	}
	c := toCategory(record)
	return &c, nil
}

func (s *Store) UpsertCategory(ctx context.Context, c models.Category) (*models.Category, error) {
	if c.Slug == "" {
		c.Slug = slug.Make(c.Name)
	}

	record, err := s.app.FindFirstRecordByData(store.CollectionCategories, "slug", c.Slug)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		collection, err := s.app.FindCollectionByNameOrId(store.CollectionCategories)
		if err != nil {
			return nil, err
		}
		record = core.NewRecord(collection)
	}

	record.Set("name", c.Name)
	record.Set("slug", c.Slug)
	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return nil, fmt.Errorf("save category %q: %w", c.Slug, err)
	}

	saved := toCategory(record)
	return &saved, nil
}

func (s *Store) FindEventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	record := &core.Record{}
	err := s.app.RecordQuery(store.CollectionEvents).
		WithContext(ctx).
		AndWhere(dbx.HashExp{"slug": slug}).
		Limit(1).
		One(record)
	if err != nil {
		return nil, notFound(err)
	}

	s.expand(record)
	ev := toEvent(record)
	return &ev, nil
}

func (s *Store) FindEvents(_ context.Context, q store.EventQuery) ([]models.Event, error) {
	filter, params := BuildFilter(q)

	limit := -1
	if q.Limit > 0 {
		limit = q.Limit
	}

	records, err := s.app.FindRecordsByFilter(store.CollectionEvents, filter, "date,id", limit, 0, params)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}

	if errs := s.app.ExpandRecords(records, eventExpands, nil); len(errs) > 0 {
		slog.Warn("event expand failed", "errors", errs)
	}

	out := make([]models.Event, 0, len(records))
	for _, r := range records {
		out = append(out, toEvent(r))
	}
	return out, nil
}

// BuildFilter translates an EventQuery into a PocketBase filter expression.
func BuildFilter(q store.EventQuery) (string, dbx.Params) {
	clauses := []string{}
	params := dbx.Params{}

	if q.Private != nil {
		if *q.Private {
			clauses = append(clauses, "private = true")
		} else {
			clauses = append(clauses, "private = false")
		}
	}
	if q.OwnerID != "" {
		clauses = append(clauses, "owner = {:owner}")
		params["owner"] = q.OwnerID
	}
	if q.CategoryID != "" {
		clauses = append(clauses, "category = {:category}")
		params["category"] = q.CategoryID
	}
	if q.ExcludeID != "" {
		clauses = append(clauses, "id != {:exclude}")
		params["exclude"] = q.ExcludeID
	}
	if q.AttendeeID != "" {
		clauses = append(clauses, "attendees.id ?= {:attendee}")
		params["attendee"] = q.AttendeeID
	}
	if q.NameContains != "" {
		clauses = append(clauses, "name ~ {:name}")
		params["name"] = likeLiteral(q.NameContains)
	}
	if q.TagSlugContains != "" {
		clauses = append(clauses, "tags.slug ?~ {:tagSlug}")
		params["tagSlug"] = likeLiteral(q.TagSlugContains)
	}
	if len(q.TagIDs) > 0 {
		anyOf := make([]string, 0, len(q.TagIDs))
		for i, id := range q.TagIDs {
			key := fmt.Sprintf("tag%d", i)
			anyOf = append(anyOf, "tags.id ?= {:"+key+"}")
			params[key] = id
		}
		clauses = append(clauses, "("+strings.Join(anyOf, " || ")+")")
	}

	if len(clauses) == 0 {
		return "id != ''", params
	}
	return strings.Join(clauses, " && "), params
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeLiteral escapes LIKE wildcards so ~ stays a plain substring match.
// PocketBase keeps already escaped characters as they are.
func likeLiteral(v string) string {
	return likeEscaper.Replace(v)
}

func (s *Store) SaveEvent(ctx context.Context, ev *models.Event, image *filesystem.File) (*models.Event, error) {
	var record *core.Record
	if ev.ID == "" {
		collection, err := s.app.FindCollectionByNameOrId(store.CollectionEvents)
		if err != nil {
			return nil, err
		}
		record = core.NewRecord(collection)
	} else {
		existing, err := s.app.FindRecordById(store.CollectionEvents, ev.ID)
		if err != nil {
			return nil, notFound(err)
		}
		record = existing
	}

	record.Set("name", ev.Name)
	record.Set("slug", ev.Slug)
	record.Set("category", ev.CategoryID)
	record.Set("host", ev.Host)
	record.Set("venue", ev.Venue)
	record.Set("date", ev.Date)
	record.Set("ticket_price", ev.TicketPrice.String())
	record.Set("description", ev.Description)
	record.Set("owner", ev.OwnerID)
	record.Set("private", ev.Private)
	record.Set("tags", ev.TagIDs())
	if image != nil {
		record.Set("image", image)
	}

	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return nil, fmt.Errorf("save event %q: %w", ev.Slug, err)
	}

	s.expand(record)
	saved := toEvent(record)
	return &saved, nil
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	record, err := s.app.FindRecordById(store.CollectionEvents, id)
	if err != nil {
		return notFound(err)
	}
	return s.app.DeleteWithContext(ctx, record)
}

func (s *Store) AddAttendee(ctx context.Context, eventID, userID string) error {
	return s.updateAttendees(ctx, eventID, "attendees+", userID)
}

func (s *Store) RemoveAttendee(ctx context.Context, eventID, userID string) error {
	return s.updateAttendees(ctx, eventID, "attendees-", userID)
}

// updateAttendees applies a relation modifier inside a single transaction so
// concurrent toggles on the same event do not overwrite each other.
func (s *Store) updateAttendees(ctx context.Context, eventID, modifier, userID string) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		record, err := txApp.FindRecordById(store.CollectionEvents, eventID)
		if err != nil {
			return notFound(err)
		}
		record.Set(modifier, userID)
		return txApp.SaveWithContext(ctx, record)
	})
}

func (s *Store) FindTagBySlug(_ context.Context, slug string) (*models.Tag, error) {
	record, err := s.app.FindFirstRecordByData(store.CollectionTags, "slug", slug)
	if err != nil {
		return nil, notFound(err)
	}
	tag := toTag(record)
	return &tag, nil
}

func (s *Store) EnsureTags(ctx context.Context, names []string) ([]models.Tag, error) {
	if len(names) == 0 {
		return nil, nil
	}

	collection, err := s.app.FindCollectionByNameOrId(store.CollectionTags)
	if err != nil {
		return nil, err
	}

	out := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tagSlug := slug.Make(name)
		record, err := s.app.FindFirstRecordByData(collection, "slug", tagSlug)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return nil, err
			}
			record = core.NewRecord(collection)
			record.Set("name", name)
			record.Set("slug", tagSlug)
			if err := s.app.SaveWithContext(ctx, record); err != nil {
				return nil, fmt.Errorf("create tag %q: %w", tagSlug, err)
			}
		}
		out = append(out, toTag(record))
	}
	return out, nil
}

func (s *Store) ListComments(_ context.Context, eventID string) ([]models.Comment, error) {
	records, err := s.app.FindRecordsByFilter(
		store.CollectionComments,
		"event = {:event}",
		"created",
		-1,
		0,
		dbx.Params{"event": eventID},
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	out := make([]models.Comment, 0, len(records))
	for _, r := range records {
		out = append(out, toComment(r))
	}
	return out, nil
}

func (s *Store) CreateComment(ctx context.Context, c models.Comment) (*models.Comment, error) {
	collection, err := s.app.FindCollectionByNameOrId(store.CollectionComments)
	if err != nil {
		return nil, err
	}

	record := core.NewRecord(collection)
	record.Set("event", c.EventID)
	record.Set("username", c.Username)
	record.Set("comment", c.Body)
	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return nil, fmt.Errorf("save comment: %w", err)
	}

	saved := toComment(record)
	return &saved, nil
}

func (s *Store) expand(record *core.Record) {
	if errs := s.app.ExpandRecord(record, eventExpands, nil); len(errs) > 0 {
		slog.Warn("event expand failed", "eventID", record.Id, "errors", errs)
	}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
