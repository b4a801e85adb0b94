package services

import (
	"context"
	"fmt"
	"math"
	"path"
	"regexp"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/visualenglishpl/backend/internal/models"
)

// BlobStore is the object store contract the services consume,
// implemented by storage.SupabaseGateway
type BlobStore interface {
	// List returns all object keys under a folder prefix
	List(ctx context.Context, prefix string) ([]string, error)
	// SignedURL returns a time-limited retrieval URL for an exact key
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	// Download fetches an object body
	Download(ctx context.Context, key string) ([]byte, error)
}

// OverlayStore provides the per-user slide overlays,
// implemented by repositories.OverlayRepository
type OverlayStore interface {
	// GetOrder returns the stored custom order, nil when absent
	GetOrder(ctx context.Context, userID int, bookID, unitID string) ([]int, error)
	// GetDeletedSet returns the positions marked deleted
	GetDeletedSet(ctx context.Context, userID int, bookID, unitID string) (map[int]bool, error)
}

// ResolveOptions carries the per-request knobs of a resolution
type ResolveOptions struct {
	// UserID scopes the overlays, zero means no overlays apply
	UserID int
	// IncludeDocuments keeps document and flash-legacy kinds in the list
	IncludeDocuments bool
}

// unitPrefixCandidates returns the storage prefixes a unit's assets may
// live under, primary convention first. Legacy alternatives exist
// because the upload layout drifted over the years, they are attempted
// only when the primary yields nothing. Extend by appending, never by
// branching on book identity.
func unitPrefixCandidates(bookID, unitID string) []string {
	return []string{
		fmt.Sprintf("book%s/unit%s", bookID, unitID),
		fmt.Sprintf("book%s/units/unit%s", bookID, unitID),
		fmt.Sprintf("%s/unit%s", bookID, unitID),
		fmt.Sprintf("book%s/Unit %s", bookID, unitID),
	}
}

// ResolverService turns a (book, unit) pair into the ordered slide list
// with Q&A pairs and retrieval URLs attached
type ResolverService struct {
	store    BlobStore
	overlays OverlayStore
	qa       *QAStore
	urlTTL   time.Duration
	logger   *zap.Logger
}

// NewResolverService creates a resolver
func NewResolverService(store BlobStore, overlays OverlayStore, qa *QAStore, urlTTL time.Duration, logger *zap.Logger) *ResolverService {
	return &ResolverService{
		store:    store,
		overlays: overlays,
		qa:       qa,
		urlTTL:   urlTTL,
		logger:   logger,
	}
}

// Resolve lists, filters, orders and decorates the assets of one unit.
// A listing failure returns an error wrapping storage.ErrSourceUnavailable,
// everything downstream of the listing degrades per asset instead of
// failing the whole list.
func (s *ResolverService) Resolve(ctx context.Context, bookID, unitID string, opts ResolveOptions) ([]models.AssetRecord, error) {
	keys, err := s.listWithFallback(ctx, bookID, unitID)
	if err != nil {
		return nil, err
	}

	assets := make([]models.AssetRecord, 0, len(keys))
	for _, key := range keys {
		kind := ClassifyContentKind(key)
		if !opts.IncludeDocuments && !isDisplayable(key, kind) {
			continue
		}
		assets = append(assets, models.AssetRecord{
			Path:        key,
			Filename:    path.Base(key),
			ContentKind: kind,
		})
	}

	sortByLeadingNumber(assets)

	if opts.UserID != 0 {
		assets = s.applyOverlays(ctx, assets, opts.UserID, bookID, unitID)
	}

	mapping := s.qa.Mapping(ctx, bookID)
	for i := range assets {
		assets[i].DisplayIndex = i
		if qa, ok := MatchQA(assets[i].Filename, mapping); ok {
			assets[i].Question = qa.Question
			assets[i].Answer = qa.Answer
		}
		url, err := s.store.SignedURL(ctx, assets[i].Path, s.urlTTL)
		if err != nil {
			// One failed URL must not fail the page
			s.logger.Warn("signed URL skipped",
				zap.String("key", assets[i].Path),
				zap.Error(err),
			)
			continue
		}
		assets[i].URL = url
	}

	return assets, nil
}

// listWithFallback tries the prefix candidates in priority order and
// stops at the first that yields any keys
func (s *ResolverService) listWithFallback(ctx context.Context, bookID, unitID string) ([]string, error) {
	for _, prefix := range unitPrefixCandidates(bookID, unitID) {
		keys, err := s.store.List(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("resolve book %s unit %s: %w", bookID, unitID, err)
		}
		if len(keys) > 0 {
			return keys, nil
		}
	}
	return nil, nil
}

// applyOverlays removes deleted slides and reorders per the stored
// custom order. Overlay identities are positions in the default resolved
// order, raw assets have no persisted identifier. An overlay read
// failure logs and serves the default list.
func (s *ResolverService) applyOverlays(ctx context.Context, assets []models.AssetRecord, userID int, bookID, unitID string) []models.AssetRecord {
	deleted, err := s.overlays.GetDeletedSet(ctx, userID, bookID, unitID)
	if err != nil {
		s.logger.Warn("deletion overlay unavailable",
			zap.Int("user_id", userID),
			zap.String("book_id", bookID),
			zap.String("unit_id", unitID),
			zap.Error(err),
		)
		deleted = nil
	}

	order, err := s.overlays.GetOrder(ctx, userID, bookID, unitID)
	if err != nil {
		s.logger.Warn("order overlay unavailable",
			zap.Int("user_id", userID),
			zap.String("book_id", bookID),
			zap.String("unit_id", unitID),
			zap.Error(err),
		)
		order = nil
	}

	taken := make([]bool, len(assets))
	out := make([]models.AssetRecord, 0, len(assets))

	for _, pos := range order {
		if pos < 0 || pos >= len(assets) || taken[pos] || deleted[pos] {
			continue
		}
		taken[pos] = true
		out = append(out, assets[pos])
	}
	for i, a := range assets {
		if taken[i] || deleted[i] {
			continue
		}
		out = append(out, a)
	}

	return out
}

var leadingNumberRe = regexp.MustCompile(`^(\d+)`)

// sortByLeadingNumber orders assets by a leading numeric token in the
// filename. Assets without one (icons, supplementary files) go after
// the numbered ones, keeping their listing order. The sort is stable so
// numeric ties also keep listing order.
func sortByLeadingNumber(assets []models.AssetRecord) {
	sortKey := func(a models.AssetRecord) int {
		if m := leadingNumberRe.FindStringSubmatch(a.Filename); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n
			}
		}
		return math.MaxInt
	}
	sort.SliceStable(assets, func(i, j int) bool {
		return sortKey(assets[i]) < sortKey(assets[j])
	})
}
