package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	storage_go "github.com/supabase-community/storage-go"
	"go.uber.org/zap"

	"github.com/visualenglishpl/backend/internal/cache"
	"github.com/visualenglishpl/backend/libs/config"
)

var (
	// ErrKeyNotFound means the requested object key does not exist.
	// Expected for stale or mistyped keys, callers skip the asset.
	ErrKeyNotFound = errors.New("object key not found")

	// ErrSourceUnavailable means the object store could not be reached.
	// Callers may retry with backoff, the gateway does not retry itself.
	ErrSourceUnavailable = errors.New("object store unavailable")
)

// listPageSize is the supabase list page limit, listing paginates until
// a short page
const listPageSize = 1000

// objectAPI is the subset of the supabase storage client the gateway uses
type objectAPI interface {
	ListFiles(bucketID string, queryPath string, options storage_go.FileSearchOptions) ([]storage_go.FileObject, error)
	CreateSignedUrl(bucketID string, filePath string, expiresIn int) (storage_go.SignedUrlResponse, error)
	DownloadFile(bucketID string, filePath string, urlOptions ...storage_go.UrlOptions) ([]byte, error)
}

// SupabaseGateway wraps supabase storage as a key-value blob store
// reachable by path prefix, with signed time-limited retrieval URLs
type SupabaseGateway struct {
	client   objectAPI
	bucket   string
	timeout  time.Duration
	urlCache *cache.Cache
	logger   *zap.Logger
}

// NewSupabaseGateway creates a gateway for the configured bucket.
// Signed URLs are cached in urlCache keyed by object key.
func NewSupabaseGateway(cfg config.StorageConfig, urlCache *cache.Cache, logger *zap.Logger) *SupabaseGateway {
	client := storage_go.NewClient(strings.TrimRight(cfg.URL, "/")+"/storage/v1", cfg.Key, nil)
	return &SupabaseGateway{
		client:   client,
		bucket:   cfg.Bucket,
		timeout:  cfg.RequestTimeout,
		urlCache: urlCache,
		logger:   logger,
	}
}

// List returns all object keys under prefix, paginating internally.
// The supabase client lists one folder level, keys are returned as
// "prefix/name". A transient failure or timeout wraps ErrSourceUnavailable.
func (g *SupabaseGateway) List(ctx context.Context, prefix string) ([]string, error) {
	prefix = strings.Trim(prefix, "/")

	var keys []string
	offset := 0
	for {
		var page []storage_go.FileObject
		err := g.call(ctx, func() error {
			var listErr error
			page, listErr = g.client.ListFiles(g.bucket, prefix, storage_go.FileSearchOptions{
				Limit:  listPageSize,
				Offset: offset,
				SortByOptions: storage_go.SortBy{
					Column: "name",
					Order:  "asc",
				},
			})
			return listErr
		})
		if err != nil {
			if errors.Is(err, ErrSourceUnavailable) {
				return nil, err
			}
			return nil, fmt.Errorf("list %q: %v: %w", prefix, err, ErrSourceUnavailable)
		}

		for _, obj := range page {
			if obj.Name == "" {
				continue
			}
			keys = append(keys, prefix+"/"+obj.Name)
		}
		if len(page) < listPageSize {
			break
		}
		offset += len(page)
	}

	return keys, nil
}

// SignedURL returns a time-limited retrieval URL for the exact key.
// URLs are served from the cache while fresh, the cache entry expires
// one minute before the URL itself so callers never receive a dead URL.
func (g *SupabaseGateway) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	key = strings.Trim(key, "/")

	if url, ok := g.urlCache.Get(key); ok {
		return url, nil
	}

	var resp storage_go.SignedUrlResponse
	err := g.call(ctx, func() error {
		var signErr error
		resp, signErr = g.client.CreateSignedUrl(g.bucket, key, int(ttl.Seconds()))
		return signErr
	})
	if err != nil {
		if errors.Is(err, ErrSourceUnavailable) {
			return "", err
		}
		if isNotFound(err) {
			return "", fmt.Errorf("sign %q: %w", key, ErrKeyNotFound)
		}
		return "", fmt.Errorf("sign %q: %v: %w", key, err, ErrSourceUnavailable)
	}

	cacheTTL := ttl - time.Minute
	if cacheTTL > 0 {
		g.urlCache.Put(key, resp.SignedURL, cacheTTL)
	}
	return resp.SignedURL, nil
}

// Download fetches the object body for the exact key
func (g *SupabaseGateway) Download(ctx context.Context, key string) ([]byte, error) {
	key = strings.Trim(key, "/")

	var data []byte
	err := g.call(ctx, func() error {
		var dlErr error
		data, dlErr = g.client.DownloadFile(g.bucket, key)
		return dlErr
	})
	if err != nil {
		if errors.Is(err, ErrSourceUnavailable) {
			return nil, err
		}
		if isNotFound(err) {
			return nil, fmt.Errorf("download %q: %w", key, ErrKeyNotFound)
		}
		return nil, fmt.Errorf("download %q: %v: %w", key, err, ErrSourceUnavailable)
	}
	return data, nil
}

// call runs fn bounded by the configured per-call timeout. The supabase
// client has no context support, so the call runs in a goroutine and a
// timeout abandons it. A timeout is reported as ErrSourceUnavailable.
func (g *SupabaseGateway) call(ctx context.Context, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		g.logger.Warn("storage call abandoned", zap.Error(ctx.Err()))
		return fmt.Errorf("storage call: %v: %w", ctx.Err(), ErrSourceUnavailable)
	}
}

// isNotFound reports whether a supabase error body denotes a missing object
func isNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not_found") ||
		strings.Contains(msg, "not found") ||
		strings.Contains(msg, "404")
}
