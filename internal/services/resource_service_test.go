package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/visualenglishpl/backend/internal/models"
)

type mockResourceStore struct {
	resources []models.TeacherResource
	err       error

	replacedBook string
	replacedUnit string
	replaced     []models.TeacherResource
}

func (m *mockResourceStore) GetByUnit(ctx context.Context, bookID, unitID string) ([]models.TeacherResource, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.resources, nil
}

func (m *mockResourceStore) ReplaceForUnit(ctx context.Context, bookID, unitID string, resources []models.TeacherResource) error {
	if m.err != nil {
		return m.err
	}
	m.replacedBook = bookID
	m.replacedUnit = unitID
	m.replaced = resources
	return nil
}

func TestResourceService_List(t *testing.T) {
	t.Run("returns stored resources", func(t *testing.T) {
		store := &mockResourceStore{resources: []models.TeacherResource{
			{Title: "Colours song", ResourceType: models.ResourceTypeVideo},
		}}
		svc := NewResourceService(store, zap.NewNop())

		resources, err := svc.List(context.Background(), "1", "3")
		require.NoError(t, err)
		require.Len(t, resources, 1)
		assert.Equal(t, "Colours song", resources[0].Title)
	})

	t.Run("unknown book", func(t *testing.T) {
		svc := NewResourceService(&mockResourceStore{}, zap.NewNop())

		_, err := svc.List(context.Background(), "99", "1")
		assert.ErrorIs(t, err, ErrBookNotFound)
	})

	t.Run("unit outside the book's range", func(t *testing.T) {
		svc := NewResourceService(&mockResourceStore{}, zap.NewNop())

		_, err := svc.List(context.Background(), "1", "19")
		assert.ErrorIs(t, err, ErrUnitNotFound)
	})

	t.Run("non-numeric unit", func(t *testing.T) {
		svc := NewResourceService(&mockResourceStore{}, zap.NewNop())

		_, err := svc.List(context.Background(), "1", "three")
		assert.ErrorIs(t, err, ErrUnitNotFound)
	})

	t.Run("store error passes through", func(t *testing.T) {
		store := &mockResourceStore{err: errors.New("connection lost")}
		svc := NewResourceService(store, zap.NewNop())

		_, err := svc.List(context.Background(), "1", "3")
		assert.Error(t, err)
	})
}

func TestResourceService_Replace(t *testing.T) {
	t.Run("reassigns display order from slice position", func(t *testing.T) {
		store := &mockResourceStore{}
		svc := NewResourceService(store, zap.NewNop())

		err := svc.Replace(context.Background(), "0a", "5", []models.TeacherResource{
			{Title: "Song", ResourceType: models.ResourceTypeVideo, Order: 7},
			{Title: "Game", ResourceType: models.ResourceTypeGame, Order: 0},
		})
		require.NoError(t, err)

		assert.Equal(t, "0a", store.replacedBook)
		assert.Equal(t, "5", store.replacedUnit)
		require.Len(t, store.replaced, 2)
		assert.Equal(t, 0, store.replaced[0].Order)
		assert.Equal(t, 1, store.replaced[1].Order)
	})

	t.Run("empty title rejected", func(t *testing.T) {
		svc := NewResourceService(&mockResourceStore{}, zap.NewNop())

		err := svc.Replace(context.Background(), "1", "3", []models.TeacherResource{
			{Title: "", ResourceType: models.ResourceTypeVideo},
		})
		assert.ErrorIs(t, err, ErrInvalidResource)
	})

	t.Run("unknown resource type rejected", func(t *testing.T) {
		svc := NewResourceService(&mockResourceStore{}, zap.NewNop())

		err := svc.Replace(context.Background(), "1", "3", []models.TeacherResource{
			{Title: "Song", ResourceType: "podcast"},
		})
		assert.ErrorIs(t, err, ErrInvalidResource)
	})

	t.Run("unknown book", func(t *testing.T) {
		svc := NewResourceService(&mockResourceStore{}, zap.NewNop())

		err := svc.Replace(context.Background(), "99", "1", nil)
		assert.ErrorIs(t, err, ErrBookNotFound)
	})
}
