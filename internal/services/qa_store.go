package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/visualenglishpl/backend/internal/models"
	"github.com/visualenglishpl/backend/internal/storage"
)

// spreadsheetKeyCandidates returns the ordered object keys a book's
// question spreadsheet may live under. The upload naming drifted over
// the years (one or two spaces, hyphens, generic names), so the list is
// tried in order and the first downloadable key wins. New conventions
// are added by appending, never by branching on book identity.
func spreadsheetKeyCandidates(bookID string) []string {
	return []string{
		fmt.Sprintf("book%s/VISUAL %s QUESTIONS.xlsx", bookID, bookID),
		fmt.Sprintf("book%s/VISUAL %s  QUESTIONS.xlsx", bookID, bookID),
		fmt.Sprintf("book%s/questions.xlsx", bookID),
		fmt.Sprintf("book%s/VISUAL-%s-QUESTIONS.xlsx", bookID, bookID),
		fmt.Sprintf("book%s/QA.xlsx", bookID),
	}
}

// QAStore holds one compiled Q&A mapping snapshot per book. A snapshot
// is immutable once published, rebuilds compile a fresh mapping and
// atomically swap the pointer so concurrent matchers never observe a
// partially built mapping.
type QAStore struct {
	store  BlobStore
	logger *zap.Logger

	mu        sync.Mutex
	snapshots map[string]*atomic.Pointer[models.QAMapping]
}

// NewQAStore creates an empty snapshot store backed by the blob store
func NewQAStore(store BlobStore, logger *zap.Logger) *QAStore {
	return &QAStore{
		store:     store,
		logger:    logger,
		snapshots: make(map[string]*atomic.Pointer[models.QAMapping]),
	}
}

// Mapping returns the current snapshot for a book, compiling it on first
// use. A compile failure degrades to an empty mapping: an unreadable
// spreadsheet publishes the empty mapping (rebuild required to recover),
// a transient storage failure does not, so the next request retries.
func (s *QAStore) Mapping(ctx context.Context, bookID string) *models.QAMapping {
	ref := s.snapshotRef(bookID)
	if m := ref.Load(); m != nil {
		return m
	}

	mapping, err := s.compile(ctx, bookID)
	if err != nil {
		s.logger.Warn("Q&A compile failed, serving empty mapping",
			zap.String("book_id", bookID),
			zap.Error(err),
		)
		empty := models.NewQAMapping()
		if errors.Is(err, ErrSourceUnreadable) {
			ref.CompareAndSwap(nil, empty)
		}
		return empty
	}

	// Another request may have compiled concurrently, the duplicate
	// work is acceptable and either snapshot is valid
	ref.CompareAndSwap(nil, mapping)
	return ref.Load()
}

// Rebuild compiles a fresh mapping for a book and swaps it in. On
// failure the prior snapshot remains in force. Returns the number of
// keys in the new mapping.
func (s *QAStore) Rebuild(ctx context.Context, bookID string) (int, error) {
	mapping, err := s.compile(ctx, bookID)
	if err != nil {
		return 0, err
	}
	s.snapshotRef(bookID).Store(mapping)
	s.logger.Info("Q&A mapping rebuilt",
		zap.String("book_id", bookID),
		zap.Int("keys", mapping.Len()),
	)
	return mapping.Len(), nil
}

// compile downloads the book's spreadsheet from the first candidate key
// that exists and parses it. No candidate present means the source is
// unreadable for this book.
func (s *QAStore) compile(ctx context.Context, bookID string) (*models.QAMapping, error) {
	for _, key := range spreadsheetKeyCandidates(bookID) {
		data, err := s.store.Download(ctx, key)
		if err != nil {
			if errors.Is(err, storage.ErrKeyNotFound) {
				continue
			}
			return nil, err
		}
		mapping, err := CompileQA(data)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", key, err)
		}
		return mapping, nil
	}
	return nil, fmt.Errorf("no question spreadsheet for book %s: %w", bookID, ErrSourceUnreadable)
}

func (s *QAStore) snapshotRef(bookID string) *atomic.Pointer[models.QAMapping] {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, ok := s.snapshots[bookID]
	if !ok {
		ref = &atomic.Pointer[models.QAMapping]{}
		s.snapshots[bookID] = ref
	}
	return ref
}
