package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/visualenglishpl/backend/internal/models"
	"github.com/visualenglishpl/backend/internal/storage"
)

// ErrBookNotFound means the book ID is not part of the catalog
var ErrBookNotFound = errors.New("book not found")

// thumbnailKeyCandidates returns the object keys a unit thumbnail may
// live under, most common convention first
func thumbnailKeyCandidates(bookID string, unitNumber int) []string {
	return []string{
		fmt.Sprintf("book%s/icons/thumbnailsuni%s-%d.png", bookID, bookID, unitNumber),
		fmt.Sprintf("book%s/thumbnails/unit%d.png", bookID, unitNumber),
		fmt.Sprintf("book%s/icons/unit%d.png", bookID, unitNumber),
		fmt.Sprintf("book%s/unit%d/thumbnail.png", bookID, unitNumber),
		fmt.Sprintf("thumbnails/book%s-unit%d.png", bookID, unitNumber),
	}
}

// CatalogService serves the static book catalog and per-book unit lists
// with resolved thumbnails
type CatalogService struct {
	store  BlobStore
	urlTTL time.Duration
	logger *zap.Logger
}

// NewCatalogService creates a catalog service
func NewCatalogService(store BlobStore, urlTTL time.Duration, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		urlTTL: urlTTL,
		logger: logger,
	}
}

// Books returns the full catalog
func (s *CatalogService) Books() []models.Book {
	return models.Books
}

// Units returns the units of a book with thumbnail URLs where a
// thumbnail object exists. A unit without one carries the book's
// fallback color instead, a missing thumbnail is not an error.
func (s *CatalogService) Units(ctx context.Context, bookID string) ([]models.Unit, error) {
	book, ok := models.BookByID(bookID)
	if !ok {
		return nil, fmt.Errorf("units for %q: %w", bookID, ErrBookNotFound)
	}

	units := make([]models.Unit, 0, book.UnitCount)
	for n := 1; n <= book.UnitCount; n++ {
		unit := models.Unit{
			BookID:     book.ID,
			UnitNumber: n,
			Title:      fmt.Sprintf("Unit %d", n),
		}
		if url, ok := s.thumbnailURL(ctx, book.ID, n); ok {
			unit.ThumbnailURL = url
		} else {
			unit.FallbackColor = book.FallbackColor
		}
		units = append(units, unit)
	}

	return units, nil
}

// thumbnailURL tries the thumbnail key candidates in order, stopping at
// the first that signs. Transient storage failures stop the probing for
// this unit, the colored fallback serves instead.
func (s *CatalogService) thumbnailURL(ctx context.Context, bookID string, unitNumber int) (string, bool) {
	for _, key := range thumbnailKeyCandidates(bookID, unitNumber) {
		url, err := s.store.SignedURL(ctx, key, s.urlTTL)
		if err == nil {
			return url, true
		}
		if errors.Is(err, storage.ErrKeyNotFound) {
			continue
		}
		s.logger.Warn("thumbnail lookup abandoned",
			zap.String("book_id", bookID),
			zap.Int("unit", unitNumber),
			zap.Error(err),
		)
		return "", false
	}
	return "", false
}
