package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"evnt/internal/access"
	"evnt/internal/forms"
	"evnt/internal/slug"
	"evnt/internal/status"
	"evnt/internal/store"
	"evnt/models"

	"github.com/pocketbase/pocketbase/tools/filesystem"
)

const (
	AttendAdd    = "Add to attend-list"
	AttendRemove = "Remove from attend-list"

	DefaultRelatedLimit = 4
	homeLimit           = 6
)

type EventService struct {
	store        store.Store
	relatedLimit int
	now          func() time.Time
}

func NewEventService(s store.Store, relatedLimit int) *EventService {
	if relatedLimit <= 0 {
		relatedLimit = DefaultRelatedLimit
	}
	return &EventService{
		store:        s,
		relatedLimit: relatedLimit,
		now:          time.Now,
	}
}

type HomePage struct {
	Categories []models.Category
	Upcoming   []models.Event
}

type EventDetail struct {
	Event     models.Event
	Related   []models.Event
	Comments  []models.Comment
	Attending bool
}

// Home lists the next public events and the category index.
func (s *EventService) Home(ctx context.Context) (*HomePage, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	events, err := s.store.FindEvents(ctx, store.EventQuery{Private: store.PublicOnly()})
	if err != nil {
		return nil, err
	}

	now := s.now()
	upcoming := make([]models.Event, 0, homeLimit)
	for _, ev := range events {
		if ev.Date.Before(now) {
			continue
		}
		upcoming = append(upcoming, ev)
		if len(upcoming) == homeLimit {
			break
		}
	}

	return &HomePage{Categories: categories, Upcoming: upcoming}, nil
}

func (s *EventService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

// CategoryList pairs every category with its public events.
func (s *EventService) CategoryList(ctx context.Context) ([]models.CategoryEvents, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.CategoryEvents, 0, len(categories))
	for _, c := range categories {
		events, err := s.store.FindEvents(ctx, store.EventQuery{
			Private:    store.PublicOnly(),
			CategoryID: c.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("category %q events: %w", c.Slug, err)
		}
		out = append(out, models.CategoryEvents{Category: c, Events: events})
	}
	return out, nil
}

// CategoryDetail lists the public events of a category and, for a signed in
// viewer, their own private events in it.
func (s *EventService) CategoryDetail(ctx context.Context, v models.Viewer, categorySlug string) (*models.CategoryEvents, error) {
	category, err := s.store.FindCategoryBySlug(ctx, categorySlug)
	if err != nil {
		return nil, notFound(err, "category "+categorySlug)
	}

	public, err := s.store.FindEvents(ctx, store.EventQuery{
		Private:    store.PublicOnly(),
		CategoryID: category.ID,
	})
	if err != nil {
		return nil, err
	}

	var own []models.Event
	if v.Authenticated() {
		own, err = s.store.FindEvents(ctx, store.EventQuery{
			Private:    store.PrivateOnly(),
			OwnerID:    v.ID,
			CategoryID: category.ID,
		})
		if err != nil {
			return nil, err
		}
	}

	events := visibleTo(v, models.UniqueEvents(public, own))
	models.SortByDate(events)

	return &models.CategoryEvents{Category: *category, Events: events}, nil
}

func (s *EventService) PublicEvents(ctx context.Context) ([]models.Event, error) {
	return s.store.FindEvents(ctx, store.EventQuery{Private: store.PublicOnly()})
}

// Resolve loads an event by slug and applies the access policy for mode.
func (s *EventService) Resolve(ctx context.Context, v models.Viewer, eventSlug string, mode access.Mode) (*models.Event, error) {
	ev, err := s.store.FindEventBySlug(ctx, eventSlug)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if decision := access.CanAccess(v, ev, mode); decision != access.Allow {
		return nil, fmt.Errorf("event %q (%s): %w", eventSlug, mode, decision.Err())
	}
	return ev, nil
}

func (s *EventService) EventDetail(ctx context.Context, v models.Viewer, eventSlug string) (*EventDetail, error) {
	ev, err := s.Resolve(ctx, v, eventSlug, access.Public)
	if err != nil {
		return nil, err
	}

	related, err := s.Related(ctx, ev, "")
	if err != nil {
		return nil, err
	}

	comments, err := s.store.ListComments(ctx, ev.ID)
	if err != nil {
		return nil, err
	}

	return &EventDetail{
		Event:     *ev,
		Related:   related,
		Comments:  comments,
		Attending: ev.AttendedBy(v.ID),
	}, nil
}

// Related returns public events sharing a tag with ev. A non-empty ownerID
// further restricts the set to that user's events.
func (s *EventService) Related(ctx context.Context, ev *models.Event, ownerID string) ([]models.Event, error) {
	if len(ev.Tags) == 0 {
		return nil, nil
	}

	candidates, err := s.store.FindEvents(ctx, store.EventQuery{
		Private:   store.PublicOnly(),
		OwnerID:   ownerID,
		TagIDs:    ev.TagIDs(),
		ExcludeID: ev.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("related events for %q: %w", ev.Slug, err)
	}

	related := make([]models.Event, 0, s.relatedLimit)
	for _, candidate := range models.UniqueEvents(candidates) {
		if candidate.ID == ev.ID || candidate.Private {
			continue
		}
		related = append(related, candidate)
		if len(related) == s.relatedLimit {
			break
		}
	}
	return related, nil
}

func IsAttendanceAction(action string) bool {
	return action == AttendAdd || action == AttendRemove
}

// ToggleAttendance adds or removes the viewer from a public event's
// attendee set. Both directions are idempotent.
func (s *EventService) ToggleAttendance(ctx context.Context, v models.Viewer, eventSlug, action string) (*models.Event, error) {
	if !v.Authenticated() {
		return nil, status.ErrUnauthenticated
	}

	ev, err := s.Resolve(ctx, v, eventSlug, access.Public)
	if err != nil {
		return nil, err
	}

	switch action {
	case AttendAdd:
		err = s.store.AddAttendee(ctx, ev.ID, v.ID)
	case AttendRemove:
		err = s.store.RemoveAttendee(ctx, ev.ID, v.ID)
	default:
		return nil, fmt.Errorf("%q: %w", action, status.ErrUnknownAction)
	}
	if err != nil {
		return nil, notFound(err, "event "+eventSlug)
	}

	slog.Info("attendance changed", "eventID", ev.ID, "userID", v.ID, "action", action)
	return ev, nil
}

// AddComment binds the comment to the event named by eventSlug, whatever the
// form body says.
func (s *EventService) AddComment(ctx context.Context, v models.Viewer, eventSlug string, form *forms.CommentForm) (*models.Comment, error) {
	if !v.Authenticated() {
		return nil, status.ErrUnauthenticated
	}

	ev, err := s.Resolve(ctx, v, eventSlug, access.Public)
	if err != nil {
		return nil, err
	}

	comment, err := form.Clean(ev.ID)
	if err != nil {
		return nil, err
	}

	return s.store.CreateComment(ctx, comment)
}

// TagEvents resolves the tag by its exact slug and lists the public events
// carrying any tag whose slug contains tagSlug.
func (s *EventService) TagEvents(ctx context.Context, tagSlug string) (*models.Tag, []models.Event, error) {
	tag, err := s.store.FindTagBySlug(ctx, tagSlug)
	if err != nil {
		return nil, nil, notFound(err, "tag "+tagSlug)
	}

	events, err := s.store.FindEvents(ctx, store.EventQuery{
		Private:         store.PublicOnly(),
		TagSlugContains: tagSlug,
	})
	if err != nil {
		return nil, nil, err
	}
	return tag, models.UniqueEvents(events), nil
}

func (s *EventService) PrivateEvents(ctx context.Context, v models.Viewer) ([]models.Event, error) {
	if !v.Authenticated() {
		return nil, status.ErrUnauthenticated
	}
	return s.store.FindEvents(ctx, store.EventQuery{
		Private: store.PrivateOnly(),
		OwnerID: v.ID,
	})
}

func (s *EventService) PrivateEventDetail(ctx context.Context, v models.Viewer, eventSlug string) (*EventDetail, error) {
	if !v.Authenticated() {
		return nil, status.ErrUnauthenticated
	}

	ev, err := s.Resolve(ctx, v, eventSlug, access.OwnerPrivate)
	if err != nil {
		return nil, err
	}

	related, err := s.Related(ctx, ev, v.ID)
	if err != nil {
		return nil, err
	}

	return &EventDetail{
		Event:     *ev,
		Related:   related,
		Attending: ev.AttendedBy(v.ID),
	}, nil
}

func (s *EventService) AttendList(ctx context.Context, v models.Viewer) ([]models.Event, error) {
	if !v.Authenticated() {
		return nil, status.ErrUnauthenticated
	}
	return s.store.FindEvents(ctx, store.EventQuery{
		Private:    store.PublicOnly(),
		AttendeeID: v.ID,
	})
}

// Search matches public event names case-insensitively. A signed in viewer
// also gets their own private events whose name contains query exactly.
func (s *EventService) Search(ctx context.Context, v models.Viewer, query string) ([]models.Event, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, status.ErrInvalidQuery
	}

	public, err := s.store.FindEvents(ctx, store.EventQuery{
		Private:      store.PublicOnly(),
		NameContains: query,
	})
	if err != nil {
		return nil, err
	}

	var own []models.Event
	if v.Authenticated() {
		private, err := s.store.FindEvents(ctx, store.EventQuery{
			Private: store.PrivateOnly(),
			OwnerID: v.ID,
		})
		if err != nil {
			return nil, err
		}
		for _, ev := range private {
			if strings.Contains(ev.Name, query) {
				own = append(own, ev)
			}
		}
	}

	results := visibleTo(v, models.UniqueEvents(own, public))
	models.SortByDate(results)
	return results, nil
}

func (s *EventService) Create(ctx context.Context, v models.Viewer, form *forms.EventForm, image *filesystem.File) (*models.Event, error) {
	if !v.Authenticated() {
		return nil, status.ErrUnauthenticated
	}

	in, err := form.Clean()
	if err != nil {
		return nil, err
	}

	ev := &models.Event{OwnerID: v.ID}
	if err := s.apply(ctx, ev, in); err != nil {
		form.SetError(err)
		return nil, err
	}

	saved, err := s.store.SaveEvent(ctx, ev, image)
	if err != nil {
		return nil, err
	}

	slog.Info("event created", "eventID", saved.ID, "slug", saved.Slug, "owner", v.ID)
	return saved, nil
}

func (s *EventService) Edit(ctx context.Context, v models.Viewer, eventSlug string, form *forms.EventForm, image *filesystem.File) (*models.Event, error) {
	ev, err := s.Resolve(ctx, v, eventSlug, access.Edit)
	if err != nil {
		return nil, err
	}

	in, err := form.Clean()
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, ev, in); err != nil {
		form.SetError(err)
		return nil, err
	}

	return s.store.SaveEvent(ctx, ev, image)
}

func (s *EventService) Delete(ctx context.Context, v models.Viewer, eventSlug string) error {
	ev, err := s.Resolve(ctx, v, eventSlug, access.Delete)
	if err != nil {
		return err
	}

	if err := s.store.DeleteEvent(ctx, ev.ID); err != nil {
		return notFound(err, "event "+eventSlug)
	}

	slog.Info("event deleted", "eventID", ev.ID, "slug", ev.Slug, "by", v.ID, "superuser", v.Superuser)
	return nil
}

// apply copies validated input onto ev, deriving the slug from the name.
func (s *EventService) apply(ctx context.Context, ev *models.Event, in models.EventInput) error {
	newSlug := slug.Make(in.Name)

	existing, err := s.store.FindEventBySlug(ctx, newSlug)
	switch {
	case err == nil && existing.ID != ev.ID:
		return forms.FieldError("name", "An evnt with this name already exists.")
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return err
	}

	if in.CategoryID != "" {
		_, err := s.store.FindCategoryByID(ctx, in.CategoryID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return forms.FieldError("category", "Select a valid category.")
		case err != nil:
			return err
		}
	}

	tags, err := s.store.EnsureTags(ctx, in.TagNames)
	if err != nil {
		return err
	}

	ev.Name = in.Name
	ev.Slug = newSlug
	ev.CategoryID = in.CategoryID
	ev.Host = in.Host
	ev.Venue = in.Venue
	ev.Date = in.Date
	ev.TicketPrice = in.TicketPrice
	ev.Description = in.Description
	ev.Private = in.Private
	ev.Tags = tags
	return nil
}

func visibleTo(v models.Viewer, events []models.Event) []models.Event {
	out := events[:0]
	for i := range events {
		if access.Visible(v, &events[i]) {
			out = append(out, events[i])
		}
	}
	return out
}

func notFound(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, status.ErrNotFound)
	}
	return err
}
