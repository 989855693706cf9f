// Package memstore is an in-memory store.Store that evaluates the same
// predicates as the PocketBase store.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"evnt/internal/slug"
	"evnt/internal/store"
	"evnt/models"

	"github.com/pocketbase/pocketbase/tools/filesystem"
)

type Store struct {
	mu         sync.RWMutex
	seq        int
	categories []models.Category
	tags       []models.Tag
	events     map[string]*models.Event
	comments   []models.Comment

	// Queries counts FindEvents calls.
	Queries int
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{events: make(map[string]*models.Event)}
}

func (s *Store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

func (s *Store) ListCategories(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.categories)
	slices.SortFunc(out, func(a, b models.Category) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) FindCategoryByID(_ context.Context, id string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) FindCategoryBySlug(_ context.Context, slug string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.Slug == slug {
			c := c
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpsertCategory(_ context.Context, c models.Category) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.Slug == "" {
		c.Slug = slug.Make(c.Name)
	}
	for i, existing := range s.categories {
		if existing.Slug == c.Slug {
			c.ID = existing.ID
			s.categories[i] = c
			return &c, nil
		}
	}
	if c.ID == "" {
		c.ID = s.nextID("cat")
	}
	s.categories = append(s.categories, c)
	return &c, nil
}

func (s *Store) FindEventBySlug(_ context.Context, slug string) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ev := range s.events {
		if ev.Slug == slug {
			return s.hydrate(ev), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) FindEvents(_ context.Context, q store.EventQuery) ([]models.Event, error) {
	s.mu.Lock()
	s.Queries++
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Event
	for _, ev := range s.events {
		if s.matches(ev, q) {
			out = append(out, *s.hydrate(ev))
		}
	}
	models.SortByDate(out)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) matches(ev *models.Event, q store.EventQuery) bool {
	if q.Private != nil && ev.Private != *q.Private {
		return false
	}
	if q.OwnerID != "" && ev.OwnerID != q.OwnerID {
		return false
	}
	if q.CategoryID != "" && ev.CategoryID != q.CategoryID {
		return false
	}
	if q.ExcludeID != "" && ev.ID == q.ExcludeID {
		return false
	}
	if q.AttendeeID != "" && !ev.AttendedBy(q.AttendeeID) {
		return false
	}
	if q.NameContains != "" && !strings.Contains(strings.ToLower(ev.Name), strings.ToLower(q.NameContains)) {
		return false
	}
	if len(q.TagIDs) > 0 && !slices.ContainsFunc(q.TagIDs, ev.HasTag) {
		return false
	}
	if q.TagSlugContains != "" {
		found := false
		for _, tag := range s.tagsByID(ev.TagIDs()) {
			if strings.Contains(tag.Slug, q.TagSlugContains) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// hydrate returns a detached copy with the current tag and category names.
func (s *Store) hydrate(ev *models.Event) *models.Event {
	out := *ev
	out.Tags = s.tagsByID(ev.TagIDs())
	out.AttendeeIDs = slices.Clone(ev.AttendeeIDs)
	for _, c := range s.categories {
		if c.ID == ev.CategoryID {
			out.CategoryName = c.Name
		}
	}
	return &out
}

func (s *Store) tagsByID(ids []string) []models.Tag {
	var out []models.Tag
	for _, tag := range s.tags {
		if slices.Contains(ids, tag.ID) {
			out = append(out, tag)
		}
	}
	return out
}

func (s *Store) SaveEvent(_ context.Context, ev *models.Event, image *filesystem.File) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.events {
		if other.Slug == ev.Slug && other.ID != ev.ID {
			return nil, fmt.Errorf("memstore: slug %q already taken", ev.Slug)
		}
	}

	saved := *ev
	saved.Tags = slices.Clone(ev.Tags)
	if saved.ID == "" {
		saved.ID = s.nextID("ev")
		saved.AttendeeIDs = nil
	} else {
		existing, ok := s.events[saved.ID]
		if !ok {
			return nil, store.ErrNotFound
		}
		saved.AttendeeIDs = existing.AttendeeIDs
		if image == nil {
			saved.Image = existing.Image
		}
	}
	if image != nil {
		saved.Image = image.Name
		saved.ImageURL = "/files/events/" + saved.ID + "/" + image.Name
	}

	s.events[saved.ID] = &saved
	return s.hydrate(&saved), nil
}

func (s *Store) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.events, id)

	s.comments = slices.DeleteFunc(s.comments, func(c models.Comment) bool { return c.EventID == id })
	return nil
}

func (s *Store) AddAttendee(_ context.Context, eventID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[eventID]
	if !ok {
		return store.ErrNotFound
	}
	if !slices.Contains(ev.AttendeeIDs, userID) {
		ev.AttendeeIDs = append(ev.AttendeeIDs, userID)
	}
	return nil
}

func (s *Store) RemoveAttendee(_ context.Context, eventID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[eventID]
	if !ok {
		return store.ErrNotFound
	}
	ev.AttendeeIDs = slices.DeleteFunc(ev.AttendeeIDs, func(id string) bool { return id == userID })
	return nil
}

func (s *Store) FindTagBySlug(_ context.Context, slug string) (*models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tag := range s.tags {
		if tag.Slug == slug {
			tag := tag
			return &tag, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) EnsureTags(_ context.Context, names []string) ([]models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tagSlug := slug.Make(name)
		idx := slices.IndexFunc(s.tags, func(t models.Tag) bool { return t.Slug == tagSlug })
		if idx >= 0 {
			out = append(out, s.tags[idx])
			continue
		}
		tag := models.Tag{ID: s.nextID("tag"), Name: name, Slug: tagSlug}
		s.tags = append(s.tags, tag)
		out = append(out, tag)
	}
	return out, nil
}

func (s *Store) ListComments(_ context.Context, eventID string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Comment
	for _, c := range s.comments {
		if c.EventID == eventID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) CreateComment(_ context.Context, c models.Comment) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[c.EventID]; !ok {
		return nil, store.ErrNotFound
	}
	c.ID = s.nextID("cm")
	if c.Created.IsZero() {
		c.Created = time.Now().UTC()
	}
	s.comments = append(s.comments, c)
	return &c, nil
}
