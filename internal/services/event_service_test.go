package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"evnt/internal/access"
	"evnt/internal/forms"
	"evnt/internal/status"
	"evnt/internal/store"
	"evnt/internal/store/memstore"
	"evnt/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	alice = models.Viewer{ID: "alice", Name: "Alice"}
	bob   = models.Viewer{ID: "bob", Name: "Bob"}
	admin = models.Viewer{ID: "root", Name: "Root", Superuser: true}
	anon  = models.Viewer{}

	baseDate = time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc    *EventService
	store  *memstore.Store
	music  models.Category
	sports models.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memstore.New()

	music, err := s.UpsertCategory(ctx, models.Category{Name: "Music"})
	require.NoError(t, err)
	sports, err := s.UpsertCategory(ctx, models.Category{Name: "Sports"})
	require.NoError(t, err)

	tags := func(names ...string) []models.Tag {
		out, err := s.EnsureTags(ctx, names)
		require.NoError(t, err)
		return out
	}

	events := []models.Event{
		{Name: "Spring Fest", Slug: "spring-fest", OwnerID: "alice", CategoryID: music.ID, Tags: tags("music", "outdoor")},
		{Name: "Jazz Night", Slug: "jazz-night", OwnerID: "bob", CategoryID: music.ID, Tags: tags("music")},
		{Name: "Secret Gig", Slug: "secret-gig", OwnerID: "alice", CategoryID: music.ID, Private: true, Tags: tags("music")},
		{Name: "Bob Secret", Slug: "bob-secret", OwnerID: "bob", CategoryID: music.ID, Private: true, Tags: tags("music")},
		{Name: "Rock Show", Slug: "rock-show", OwnerID: "bob", CategoryID: music.ID, Tags: tags("music", "rock")},
		{Name: "Blues Brunch", Slug: "blues-brunch", OwnerID: "alice", CategoryID: music.ID, Tags: tags("music", "rock-n-roll")},
		{Name: "Folk Fair", Slug: "folk-fair", OwnerID: "bob", CategoryID: music.ID, Tags: tags("music", "outdoor")},
		{Name: "Park Run", Slug: "park-run", OwnerID: "bob", CategoryID: sports.ID, Tags: tags("outdoor")},
		{Name: "Chess Club", Slug: "chess-club", OwnerID: "alice", CategoryID: sports.ID},
	}
	for i := range events {
		events[i].Date = baseDate.Add(time.Duration(i) * 24 * time.Hour)
		_, err := s.SaveEvent(ctx, &events[i], nil)
		require.NoError(t, err)
	}

	svc := NewEventService(s, 0)
	svc.now = func() time.Time { return baseDate.Add(36 * time.Hour) }

	return &fixture{svc: svc, store: s, music: *music, sports: *sports}
}

func slugs(events []models.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Slug)
	}
	return out
}

func (f *fixture) event(t *testing.T, slug string) *models.Event {
	t.Helper()
	ev, err := f.store.FindEventBySlug(context.Background(), slug)
	require.NoError(t, err)
	return ev
}

func TestPrivateEventDetail_OnlyOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	detail, err := f.svc.PrivateEventDetail(ctx, alice, "secret-gig")
	require.NoError(t, err)
	assert.Equal(t, "Secret Gig", detail.Event.Name)

	tests := []struct {
		name   string
		viewer models.Viewer
		slug   string
		want   error
	}{
		{"other user", bob, "secret-gig", status.ErrForbidden},
		{"superuser", admin, "secret-gig", status.ErrForbidden},
		{"anonymous", anon, "secret-gig", status.ErrUnauthenticated},
		{"public event", alice, "spring-fest", status.ErrNotFound},
		{"unknown slug", alice, "nope", status.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.PrivateEventDetail(ctx, tt.viewer, tt.slug)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPrivateEventDetail_RelatedAreOwnedPublicEvents(t *testing.T) {
	f := newFixture(t)

	detail, err := f.svc.PrivateEventDetail(context.Background(), alice, "secret-gig")
	require.NoError(t, err)

	assert.Equal(t, []string{"spring-fest", "blues-brunch"}, slugs(detail.Related))
}

func TestEventDetail_PublicVisibleToEveryone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, v := range []models.Viewer{anon, alice, bob, admin} {
		detail, err := f.svc.EventDetail(ctx, v, "jazz-night")
		require.NoError(t, err)
		assert.Equal(t, "jazz-night", detail.Event.Slug)
	}

	_, err := f.svc.EventDetail(ctx, alice, "secret-gig")
	assert.ErrorIs(t, err, status.ErrNotFound)

	_, err = f.svc.EventDetail(ctx, anon, "missing")
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestRelated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	target := f.event(t, "spring-fest")

	related, err := f.svc.Related(ctx, target, "")
	require.NoError(t, err)

	assert.Len(t, related, 4)
	assert.Equal(t, []string{"jazz-night", "rock-show", "blues-brunch", "folk-fair"}, slugs(related))
	for _, ev := range related {
		assert.NotEqual(t, target.ID, ev.ID)
		assert.False(t, ev.Private)
	}

	again, err := f.svc.Related(ctx, target, "")
	require.NoError(t, err)
	assert.Equal(t, slugs(related), slugs(again))

	untagged, err := f.svc.Related(ctx, f.event(t, "chess-club"), "")
	require.NoError(t, err)
	assert.Empty(t, untagged)
}

func TestRelated_DedupesStoreResults(t *testing.T) {
	m := new(MockStore)
	svc := NewEventService(m, 4)
	target := &models.Event{ID: "e1", Slug: "target", Tags: []models.Tag{{ID: "t1"}, {ID: "t2"}}}

	m.On("FindEvents", mock.Anything, mock.AnythingOfType("store.EventQuery")).Return([]models.Event{
		{ID: "e2"}, {ID: "e2"}, {ID: "e1"}, {ID: "e3", Private: true}, {ID: "e4"},
	}, nil)

	related, err := svc.Related(context.Background(), target, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"e2", "e4"}, []string{related[0].ID, related[1].ID})
	m.AssertExpectations(t)
}

func TestSearch_EmptyQueryNeverQueries(t *testing.T) {
	m := new(MockStore)
	svc := NewEventService(m, 4)

	for _, q := range []string{"", "   "} {
		_, err := svc.Search(context.Background(), alice, q)
		assert.ErrorIs(t, err, status.ErrInvalidQuery)
	}

	m.AssertNotCalled(t, "FindEvents", mock.Anything, mock.Anything)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		viewer models.Viewer
		query  string
		want   []string
	}{
		{"public match is case-insensitive", anon, "FEST", []string{"spring-fest"}},
		{"anonymous never sees private", anon, "Secret", []string{}},
		{"owner sees own private exact case", alice, "Secret", []string{"secret-gig"}},
		{"owner private match is case-sensitive", alice, "secret", []string{}},
		{"other user private excluded", alice, "Bob", []string{}},
		{"union of public and own private", bob, "o", []string{"bob-secret", "rock-show", "folk-fair"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := f.svc.Search(ctx, tt.viewer, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, slugs(results))
		})
	}
}

func TestToggleAttendance_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := f.event(t, "jazz-night").AttendeeIDs

	_, err := f.svc.ToggleAttendance(ctx, alice, "jazz-night", AttendAdd)
	require.NoError(t, err)
	_, err = f.svc.ToggleAttendance(ctx, alice, "jazz-night", AttendAdd)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, f.event(t, "jazz-night").AttendeeIDs)

	attending, err := f.svc.AttendList(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"jazz-night"}, slugs(attending))

	_, err = f.svc.ToggleAttendance(ctx, alice, "jazz-night", AttendRemove)
	require.NoError(t, err)
	_, err = f.svc.ToggleAttendance(ctx, alice, "jazz-night", AttendRemove)
	require.NoError(t, err)

	assert.ElementsMatch(t, before, f.event(t, "jazz-night").AttendeeIDs)
}

func TestToggleAttendance_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ToggleAttendance(ctx, anon, "jazz-night", AttendAdd)
	assert.ErrorIs(t, err, status.ErrUnauthenticated)

	_, err = f.svc.ToggleAttendance(ctx, alice, "jazz-night", "Buy tickets")
	assert.ErrorIs(t, err, status.ErrUnknownAction)

	_, err = f.svc.ToggleAttendance(ctx, alice, "secret-gig", AttendAdd)
	assert.ErrorIs(t, err, status.ErrNotFound)

	assert.True(t, IsAttendanceAction(AttendAdd))
	assert.False(t, IsAttendanceAction(""))
}

func TestAddComment_BindsToURLEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	jazz := f.event(t, "jazz-night")
	spring := f.event(t, "spring-fest")

	form := &forms.CommentForm{Username: "ann", Comment: "Count me in"}
	comment, err := f.svc.AddComment(ctx, bob, "spring-fest", form)
	require.NoError(t, err)
	assert.Equal(t, spring.ID, comment.EventID)

	onSpring, err := f.store.ListComments(ctx, spring.ID)
	require.NoError(t, err)
	assert.Len(t, onSpring, 1)

	onJazz, err := f.store.ListComments(ctx, jazz.ID)
	require.NoError(t, err)
	assert.Empty(t, onJazz)
}

func TestAddComment_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddComment(ctx, anon, "spring-fest", &forms.CommentForm{Username: "x", Comment: "y"})
	assert.ErrorIs(t, err, status.ErrUnauthenticated)

	invalid := &forms.CommentForm{Username: "ann"}
	_, err = f.svc.AddComment(ctx, bob, "spring-fest", invalid)
	require.Error(t, err)
	assert.Contains(t, forms.FieldErrors(err), "comment")
	assert.Contains(t, invalid.Errors, "comment")

	comments, err := f.store.ListComments(ctx, f.event(t, "spring-fest").ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCreateAndEdit_RegeneratesSlug(t *testing.T) {
	s := memstore.New()
	svc := NewEventService(s, 4)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice, &forms.EventForm{
		Name:  "Spring Fest",
		Host:  "Council",
		Venue: "Square",
		Date:  "2030-04-20T12:00",
		Tags:  "music, outdoor",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "spring-fest", created.Slug)
	assert.Equal(t, "alice", created.OwnerID)
	assert.Len(t, created.Tags, 2)

	edited, err := svc.Edit(ctx, alice, "spring-fest", &forms.EventForm{
		Name:  "Spring Fest 2",
		Host:  "Council",
		Venue: "Square",
		Date:  "2030-04-21T12:00",
		Tags:  "music",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "spring-fest-2", edited.Slug)
	assert.Equal(t, created.ID, edited.ID)
	assert.Len(t, edited.Tags, 1)

	_, err = s.FindEventBySlug(ctx, "spring-fest")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreate_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	valid := func() *forms.EventForm {
		return &forms.EventForm{Name: "New Thing", Host: "h", Venue: "v", Date: "2030-01-01T10:00"}
	}

	_, err := f.svc.Create(ctx, anon, valid(), nil)
	assert.ErrorIs(t, err, status.ErrUnauthenticated)

	dup := valid()
	dup.Name = "Spring   Fest"
	_, err = f.svc.Create(ctx, bob, dup, nil)
	require.Error(t, err)
	assert.Contains(t, dup.Errors, "name")

	badCategory := valid()
	badCategory.Category = "no-such-category"
	_, err = f.svc.Create(ctx, bob, badCategory, nil)
	require.Error(t, err)
	assert.Contains(t, badCategory.Errors, "category")

	incomplete := &forms.EventForm{Name: "Only a name"}
	_, err = f.svc.Create(ctx, bob, incomplete, nil)
	require.Error(t, err)
	assert.Contains(t, incomplete.Errors, "venue")

	withCategory := valid()
	withCategory.Category = f.sports.ID
	created, err := f.svc.Create(ctx, bob, withCategory, nil)
	require.NoError(t, err)
	assert.Equal(t, "Sports", created.CategoryName)
}

func TestEdit_KeepsSlugWhenNameUnchanged(t *testing.T) {
	f := newFixture(t)

	edited, err := f.svc.Edit(context.Background(), bob, "jazz-night", &forms.EventForm{
		Name: "Jazz Night", Host: "Bob", Venue: "Cellar", Date: "2030-06-01T21:00",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "jazz-night", edited.Slug)
	assert.Equal(t, "Cellar", edited.Venue)
}

func TestEdit_RequiresOwner(t *testing.T) {
	f := newFixture(t)
	form := &forms.EventForm{Name: "Hijacked", Host: "h", Venue: "v", Date: "2030-01-01T10:00"}

	for _, v := range []models.Viewer{alice, admin, anon} {
		_, err := f.svc.Edit(context.Background(), v, "jazz-night", form, nil)
		assert.ErrorIs(t, err, status.ErrForbidden)
	}
	assert.Equal(t, "Jazz Night", f.event(t, "jazz-night").Name)

	_, err := f.svc.Edit(context.Background(), bob, "missing", form, nil)
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.Delete(ctx, alice, "jazz-night")
	assert.ErrorIs(t, err, status.ErrForbidden)
	f.event(t, "jazz-night")

	require.NoError(t, f.svc.Delete(ctx, bob, "jazz-night"))
	_, err = f.store.FindEventBySlug(ctx, "jazz-night")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, f.svc.Delete(ctx, admin, "secret-gig"))

	assert.ErrorIs(t, f.svc.Delete(ctx, admin, "secret-gig"), status.ErrNotFound)
}

func TestResolve_ConfirmDelete(t *testing.T) {
	f := newFixture(t)

	ev, err := f.svc.Resolve(context.Background(), admin, "bob-secret", access.Delete)
	require.NoError(t, err)
	assert.Equal(t, "bob-secret", ev.Slug)
}

func TestResolve_StoreFailureIsNotNotFound(t *testing.T) {
	m := new(MockStore)
	svc := NewEventService(m, 4)
	m.On("FindEventBySlug", mock.Anything, "spring-fest").Return(nil, errors.New("database is locked"))

	_, err := svc.Resolve(context.Background(), anon, "spring-fest", access.Public)

	require.Error(t, err)
	assert.NotErrorIs(t, err, status.ErrNotFound)
	m.AssertExpectations(t)
}

func TestCreate_LooksUpCategoryByID(t *testing.T) {
	m := new(MockStore)
	svc := NewEventService(m, 4)
	m.On("FindEventBySlug", mock.Anything, "new-thing").Return(nil, store.ErrNotFound)
	m.On("FindCategoryByID", mock.Anything, "cat9").Return(nil, store.ErrNotFound)

	form := &forms.EventForm{Name: "New Thing", Category: "cat9", Host: "h", Venue: "v", Date: "2030-01-01T10:00"}
	_, err := svc.Create(context.Background(), bob, form, nil)

	require.Error(t, err)
	assert.Contains(t, form.Errors, "category")
	m.AssertExpectations(t)
	m.AssertNotCalled(t, "ListCategories", mock.Anything)
}

func TestCategoryDetail_Union(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	public, err := f.svc.CategoryDetail(ctx, anon, "music")
	require.NoError(t, err)
	assert.Equal(t, []string{"spring-fest", "jazz-night", "rock-show", "blues-brunch", "folk-fair"}, slugs(public.Events))

	mine, err := f.svc.CategoryDetail(ctx, alice, "music")
	require.NoError(t, err)
	assert.Equal(t, []string{"spring-fest", "jazz-night", "secret-gig", "rock-show", "blues-brunch", "folk-fair"}, slugs(mine.Events))

	_, err = f.svc.CategoryDetail(ctx, alice, "cooking")
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestCategoryList(t *testing.T) {
	f := newFixture(t)

	list, err := f.svc.CategoryList(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "Music", list[0].Category.Name)
	assert.Len(t, list[0].Events, 5)
	assert.Equal(t, []string{"park-run", "chess-club"}, slugs(list[1].Events))
}

func TestTagEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tag, events, err := f.svc.TagEvents(ctx, "rock")
	require.NoError(t, err)
	assert.Equal(t, "rock", tag.Slug)
	assert.Equal(t, []string{"rock-show", "blues-brunch"}, slugs(events))

	_, _, err = f.svc.TagEvents(ctx, "roc")
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestPrivateEvents(t *testing.T) {
	f := newFixture(t)

	mine, err := f.svc.PrivateEvents(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"secret-gig"}, slugs(mine))

	_, err = f.svc.PrivateEvents(context.Background(), anon)
	assert.ErrorIs(t, err, status.ErrUnauthenticated)
}

func TestHome_UpcomingPublicOnly(t *testing.T) {
	f := newFixture(t)

	home, err := f.svc.Home(context.Background())
	require.NoError(t, err)

	assert.Len(t, home.Categories, 2)
	assert.Equal(t, []string{"rock-show", "blues-brunch", "folk-fair", "park-run", "chess-club"}, slugs(home.Upcoming))
}

func TestPublicEvents(t *testing.T) {
	f := newFixture(t)

	events, err := f.svc.PublicEvents(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 7)
	for _, ev := range events {
		assert.False(t, ev.Private)
	}
}
