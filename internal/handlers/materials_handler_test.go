package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	authmw "github.com/visualenglishpl/backend/libs/auth/middleware"
	"github.com/visualenglishpl/backend/libs/auth/service"

	"github.com/visualenglishpl/backend/internal/models"
	"github.com/visualenglishpl/backend/internal/services"
	"github.com/visualenglishpl/backend/internal/storage"
)

type mockResolver struct {
	assets  []models.AssetRecord
	err     error
	gotOpts services.ResolveOptions
}

func (m *mockResolver) Resolve(ctx context.Context, bookID, unitID string, opts services.ResolveOptions) ([]models.AssetRecord, error) {
	m.gotOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.assets, nil
}

type mockOverlayWriter struct {
	err error

	setPositions    []int
	cleared         bool
	markedPositions []int
	unmarked        int
}

func (m *mockOverlayWriter) SetOrder(ctx context.Context, userID int, bookID, unitID string, positions []int) error {
	if m.err != nil {
		return m.err
	}
	m.setPositions = positions
	return nil
}

func (m *mockOverlayWriter) ClearOrder(ctx context.Context, userID int, bookID, unitID string) error {
	if m.err != nil {
		return m.err
	}
	m.cleared = true
	return nil
}

func (m *mockOverlayWriter) MarkDeleted(ctx context.Context, userID int, bookID, unitID string, positions []int) error {
	if m.err != nil {
		return m.err
	}
	m.markedPositions = positions
	return nil
}

func (m *mockOverlayWriter) Unmark(ctx context.Context, userID int, bookID, unitID string, position int) error {
	if m.err != nil {
		return m.err
	}
	m.unmarked = position
	return nil
}

// setupMaterialsRouter mounts the materials routes behind the real auth
// middleware and returns a token generator for signing test requests
func setupMaterialsRouter(t *testing.T, resolver *mockResolver, overlays *mockOverlayWriter) (chi.Router, *service.TokenGenerator) {
	t.Helper()

	tokenGenerator := service.NewTokenGenerator("test-secret", time.Hour)
	h := NewMaterialsHandler(resolver, overlays, zap.NewNop())

	r := chi.NewRouter()
	h.RegisterRoutes(r, authmw.AuthMiddleware(tokenGenerator))

	return r, tokenGenerator
}

func authedRequest(t *testing.T, tokenGenerator *service.TokenGenerator, method, target string, body []byte) *http.Request {
	t.Helper()

	token, err := tokenGenerator.GenerateAccessToken(42, 1)
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestMaterialsHandler_GetMaterials(t *testing.T) {
	t.Run("returns resolved slides", func(t *testing.T) {
		resolver := &mockResolver{assets: []models.AssetRecord{
			{Filename: "01 I A pencil.jpg", DisplayIndex: 0, ContentKind: models.ContentKindImage},
			{Filename: "02 R B ruler.jpg", DisplayIndex: 1, ContentKind: models.ContentKindImage},
		}}
		router, tg := setupMaterialsRouter(t, resolver, &mockOverlayWriter{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, tg, http.MethodGet, "/books/1/units/3/materials", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var assets []models.AssetRecord
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&assets))
		require.Len(t, assets, 2)
		assert.Equal(t, "01 I A pencil.jpg", assets[0].Filename)

		assert.Equal(t, 42, resolver.gotOpts.UserID)
		assert.False(t, resolver.gotOpts.IncludeDocuments)
	})

	t.Run("documents query flag", func(t *testing.T) {
		resolver := &mockResolver{}
		router, tg := setupMaterialsRouter(t, resolver, &mockOverlayWriter{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, tg, http.MethodGet, "/books/1/units/3/materials?documents=1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, resolver.gotOpts.IncludeDocuments)
	})

	t.Run("missing token", func(t *testing.T) {
		router, _ := setupMaterialsRouter(t, &mockResolver{}, &mockOverlayWriter{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books/1/units/3/materials", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown book", func(t *testing.T) {
		router, tg := setupMaterialsRouter(t, &mockResolver{}, &mockOverlayWriter{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, tg, http.MethodGet, "/books/99/units/3/materials", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unit outside the book's range", func(t *testing.T) {
		router, tg := setupMaterialsRouter(t, &mockResolver{}, &mockOverlayWriter{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, tg, http.MethodGet, "/books/1/units/19/materials", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("storage unavailable", func(t *testing.T) {
		resolver := &mockResolver{err: fmt.Errorf("resolve book 1 unit 3: %w", storage.ErrSourceUnavailable)}
		router, tg := setupMaterialsRouter(t, resolver, &mockOverlayWriter{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, tg, http.MethodGet, "/books/1/units/3/materials", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestMaterialsHandler_SetOrder(t *testing.T) {
	t.Run("saves the submitted order", func(t *testing.T) {
		overlays := &mockOverlayWriter{}
		router, tg := setupMaterialsRouter(t, &mockResolver{}, overlays)

		body := []byte(`{"positions":[2,0,1]}`)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, tg, http.MethodPut, "/books/1/units/3/order", body))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []int{2, 0, 1}, overlays.setPositions)
	})

	t.Run("empty positions rejected", func(t *testing.T) {
		router, tg := setupMaterialsRouter(t, &mockResolver{}, &mockOverlayWriter{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, tg, http.MethodPut, "/books/1/units/3/order", []byte(`{"positions":[]}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("negative position rejected", func(t *testing.T) {
		router, tg := setupMaterialsRouter(t, &mockResolver{}, &mockOverlayWriter{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, tg, http.MethodPut, "/books/1/units/3/order", []byte(`{"positions":[0,-1]}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid body rejected", func(t *testing.T) {
		router, tg := setupMaterialsRouter(t, &mockResolver{}, &mockOverlayWriter{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, tg, http.MethodPut, "/books/1/units/3/order", []byte(`not json`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMaterialsHandler_ClearOrder(t *testing.T) {
	overlays := &mockOverlayWriter{}
	router, tg := setupMaterialsRouter(t, &mockResolver{}, overlays)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, tg, http.MethodDelete, "/books/1/units/3/order", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, overlays.cleared)
}

func TestMaterialsHandler_MarkDeleted(t *testing.T) {
	t.Run("marks the submitted positions", func(t *testing.T) {
		overlays := &mockOverlayWriter{}
		router, tg := setupMaterialsRouter(t, &mockResolver{}, overlays)

		body := []byte(`{"positions":[4,7]}`)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, tg, http.MethodPost, "/books/1/units/3/deletions", body))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []int{4, 7}, overlays.markedPositions)
	})

	t.Run("empty positions rejected", func(t *testing.T) {
		router, tg := setupMaterialsRouter(t, &mockResolver{}, &mockOverlayWriter{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, tg, http.MethodPost, "/books/1/units/3/deletions", []byte(`{"positions":[]}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMaterialsHandler_RestoreDeleted(t *testing.T) {
	t.Run("restores one position", func(t *testing.T) {
		overlays := &mockOverlayWriter{}
		router, tg := setupMaterialsRouter(t, &mockResolver{}, overlays)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, tg, http.MethodDelete, "/books/1/units/3/deletions/4", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, 4, overlays.unmarked)
	})

	t.Run("non-numeric position rejected", func(t *testing.T) {
		router, tg := setupMaterialsRouter(t, &mockResolver{}, &mockOverlayWriter{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(t, tg, http.MethodDelete, "/books/1/units/3/deletions/four", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
