package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/visualenglishpl/backend/internal/storage"
)

func TestQAStore_Mapping(t *testing.T) {
	t.Run("lazy compile on first use", func(t *testing.T) {
		workbook := buildWorkbook(t, [][]any{
			{"code", "question", "answer"},
			{"01 I A", "What is this?", "It is a pencil."},
		})
		store := &mockBlobStore{
			downloads: map[string][]byte{
				"book1/VISUAL 1 QUESTIONS.xlsx": workbook,
			},
		}
		qs := NewQAStore(store, zap.NewNop())

		m := qs.Mapping(context.Background(), "1")
		require.NotNil(t, m)
		_, ok := m.Get("01 I A")
		assert.True(t, ok)
	})

	t.Run("fallback spreadsheet key is used", func(t *testing.T) {
		workbook := buildWorkbook(t, [][]any{
			{"code", "question", "answer"},
			{"02 R B", "What colour is the pen?", "It is blue."},
		})
		store := &mockBlobStore{
			downloads: map[string][]byte{
				"book3/QA.xlsx": workbook,
			},
		}
		qs := NewQAStore(store, zap.NewNop())

		m := qs.Mapping(context.Background(), "3")
		_, ok := m.Get("02 R B")
		assert.True(t, ok)
	})

	t.Run("missing spreadsheet degrades to empty mapping", func(t *testing.T) {
		store := &mockBlobStore{}
		qs := NewQAStore(store, zap.NewNop())

		m := qs.Mapping(context.Background(), "6")
		require.NotNil(t, m)
		assert.Equal(t, 0, m.Len())
	})

	t.Run("snapshot is reused across calls", func(t *testing.T) {
		workbook := buildWorkbook(t, [][]any{
			{"code", "question", "answer"},
			{"01 I A", "What is this?", "It is a pencil."},
		})
		store := &mockBlobStore{
			downloads: map[string][]byte{
				"book1/VISUAL 1 QUESTIONS.xlsx": workbook,
			},
		}
		qs := NewQAStore(store, zap.NewNop())

		first := qs.Mapping(context.Background(), "1")
		second := qs.Mapping(context.Background(), "1")
		assert.Same(t, first, second)
	})
}

func TestQAStore_Rebuild(t *testing.T) {
	t.Run("swaps in the fresh mapping", func(t *testing.T) {
		v1 := buildWorkbook(t, [][]any{
			{"code", "question", "answer"},
			{"01 I A", "What is this?", "It is a pencil."},
		})
		store := &mockBlobStore{
			downloads: map[string][]byte{
				"book1/VISUAL 1 QUESTIONS.xlsx": v1,
			},
		}
		qs := NewQAStore(store, zap.NewNop())
		qs.Mapping(context.Background(), "1")

		v2 := buildWorkbook(t, [][]any{
			{"code", "question", "answer"},
			{"01 I A", "What is this?", "It is a pencil."},
			{"02 R B", "What colour is the pen?", "It is blue."},
		})
		store.downloads["book1/VISUAL 1 QUESTIONS.xlsx"] = v2

		keys, err := qs.Rebuild(context.Background(), "1")
		require.NoError(t, err)
		assert.Equal(t, 4, keys)

		m := qs.Mapping(context.Background(), "1")
		_, ok := m.Get("02 R B")
		assert.True(t, ok)
	})

	t.Run("failed rebuild keeps the prior snapshot", func(t *testing.T) {
		v1 := buildWorkbook(t, [][]any{
			{"code", "question", "answer"},
			{"01 I A", "What is this?", "It is a pencil."},
		})
		store := &mockBlobStore{
			downloads: map[string][]byte{
				"book1/VISUAL 1 QUESTIONS.xlsx": v1,
			},
		}
		qs := NewQAStore(store, zap.NewNop())
		qs.Mapping(context.Background(), "1")

		store.downloads["book1/VISUAL 1 QUESTIONS.xlsx"] = []byte("corrupt")

		_, err := qs.Rebuild(context.Background(), "1")
		assert.ErrorIs(t, err, ErrSourceUnreadable)

		m := qs.Mapping(context.Background(), "1")
		_, ok := m.Get("01 I A")
		assert.True(t, ok)
	})

	t.Run("no spreadsheet reports ErrSourceUnreadable", func(t *testing.T) {
		store := &mockBlobStore{}
		qs := NewQAStore(store, zap.NewNop())

		_, err := qs.Rebuild(context.Background(), "9")
		assert.ErrorIs(t, err, ErrSourceUnreadable)
	})

	t.Run("transient download failure is not unreadable", func(t *testing.T) {
		store := &mockBlobStore{
			downloads: map[string][]byte{},
		}
		qs := NewQAStore(&failingDownloadStore{inner: store}, zap.NewNop())

		_, err := qs.Rebuild(context.Background(), "1")
		assert.ErrorIs(t, err, storage.ErrSourceUnavailable)
	})
}

// failingDownloadStore wraps a mockBlobStore and fails every download
// with a transient error
type failingDownloadStore struct {
	inner *mockBlobStore
}

func (f *failingDownloadStore) List(ctx context.Context, prefix string) ([]string, error) {
	return f.inner.List(ctx, prefix)
}

func (f *failingDownloadStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "", nil
}

func (f *failingDownloadStore) Download(ctx context.Context, key string) ([]byte, error) {
	return nil, fmt.Errorf("download %q: %w", key, storage.ErrSourceUnavailable)
}
