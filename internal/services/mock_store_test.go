package services

import (
	"context"

	"evnt/internal/store"
	"evnt/models"

	"github.com/pocketbase/pocketbase/tools/filesystem"
	"github.com/stretchr/testify/mock"
)

// MockStore is a testify mock of store.Store.
type MockStore struct {
	mock.Mock
}

var _ store.Store = (*MockStore)(nil)

func (m *MockStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockStore) FindCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Category)
	return c, args.Error(1)
}

func (m *MockStore) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	args := m.Called(ctx, slug)
	c, _ := args.Get(0).(*models.Category)
	return c, args.Error(1)
}

func (m *MockStore) UpsertCategory(ctx context.Context, c models.Category) (*models.Category, error) {
	args := m.Called(ctx, c)
	saved, _ := args.Get(0).(*models.Category)
	return saved, args.Error(1)
}

func (m *MockStore) FindEventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	args := m.Called(ctx, slug)
	ev, _ := args.Get(0).(*models.Event)
	return ev, args.Error(1)
}

func (m *MockStore) FindEvents(ctx context.Context, q store.EventQuery) ([]models.Event, error) {
	args := m.Called(ctx, q)
	events, _ := args.Get(0).([]models.Event)
	return events, args.Error(1)
}

func (m *MockStore) SaveEvent(ctx context.Context, ev *models.Event, image *filesystem.File) (*models.Event, error) {
	args := m.Called(ctx, ev, image)
	saved, _ := args.Get(0).(*models.Event)
	return saved, args.Error(1)
}

func (m *MockStore) DeleteEvent(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStore) AddAttendee(ctx context.Context, eventID, userID string) error {
	return m.Called(ctx, eventID, userID).Error(0)
}

func (m *MockStore) RemoveAttendee(ctx context.Context, eventID, userID string) error {
	return m.Called(ctx, eventID, userID).Error(0)
}

func (m *MockStore) FindTagBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	args := m.Called(ctx, slug)
	tag, _ := args.Get(0).(*models.Tag)
	return tag, args.Error(1)
}

func (m *MockStore) EnsureTags(ctx context.Context, names []string) ([]models.Tag, error) {
	args := m.Called(ctx, names)
	tags, _ := args.Get(0).([]models.Tag)
	return tags, args.Error(1)
}

func (m *MockStore) ListComments(ctx context.Context, eventID string) ([]models.Comment, error) {
	args := m.Called(ctx, eventID)
	comments, _ := args.Get(0).([]models.Comment)
	return comments, args.Error(1)
}

func (m *MockStore) CreateComment(ctx context.Context, c models.Comment) (*models.Comment, error) {
	args := m.Called(ctx, c)
	saved, _ := args.Get(0).(*models.Comment)
	return saved, args.Error(1)
}
