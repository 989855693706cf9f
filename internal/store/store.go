// Package store describes the record store the site is built on. Events are
// queried by field predicates; the PocketBase implementation lives in pbstore.
package store

import (
	"context"
	"errors"

	"evnt/models"

	"github.com/pocketbase/pocketbase/tools/filesystem"
)

const (
	CollectionCategories = "categories"
	CollectionTags       = "tags"
	CollectionEvents     = "events"
	CollectionComments   = "comments"
	CollectionUsers      = "users"
)

var ErrNotFound = errors.New("store: record not found")

// EventQuery is a conjunction of predicates. Zero-valued fields are ignored.
type EventQuery struct {
	Private         *bool
	OwnerID         string
	CategoryID      string
	TagIDs          []string // any of
	TagSlugContains string
	NameContains    string // case-insensitive
	AttendeeID      string
	ExcludeID       string
	Limit           int
}

func PublicOnly() *bool {
	v := false
	return &v
}

func PrivateOnly() *bool {
	v := true
	return &v
}

type Store interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	FindCategoryByID(ctx context.Context, id string) (*models.Category, error)
	FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	UpsertCategory(ctx context.Context, c models.Category) (*models.Category, error)

	FindEventBySlug(ctx context.Context, slug string) (*models.Event, error)
	FindEvents(ctx context.Context, q EventQuery) ([]models.Event, error)
	// SaveEvent creates the event when ev.ID is empty and updates it otherwise.
	// The attendee set is never written here.
	SaveEvent(ctx context.Context, ev *models.Event, image *filesystem.File) (*models.Event, error)
	DeleteEvent(ctx context.Context, id string) error

	// AddAttendee and RemoveAttendee are idempotent.
	AddAttendee(ctx context.Context, eventID, userID string) error
	RemoveAttendee(ctx context.Context, eventID, userID string) error

	FindTagBySlug(ctx context.Context, slug string) (*models.Tag, error)
	// EnsureTags finds or creates a tag for every name.
	EnsureTags(ctx context.Context, names []string) ([]models.Tag, error)

	ListComments(ctx context.Context, eventID string) ([]models.Comment, error)
	CreateComment(ctx context.Context, c models.Comment) (*models.Comment, error)
}
