package linkgenie

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/riccilnl/linkgenie/internal/core/bookmark"
	"github.com/riccilnl/linkgenie/internal/core/kv"
	"github.com/riccilnl/linkgenie/internal/integration/api"
)

const (
	// CacheNamespace prefixes cached single bookmarks in the KV store.
	CacheNamespace = "bookmark"
	pageNamespace  = "bookmarks"

	idPageSize = 100
)

// BookmarkService reads bookmarks network first. Successful responses are
// cached with a TTL; when the backend cannot be reached the cached copy is
// served instead. HTTP status errors are returned as is.
type BookmarkService struct {
	remote  bookmark.Store
	byID    *kv.TypedKV[bookmark.Bookmark]
	pages   *kv.TypedKV[bookmark.Page]
	enabled bool
	log     zerolog.Logger
}

var _ bookmark.Store = (*BookmarkService)(nil)

// NewBookmarkService creates a BookmarkService. A nil store disables caching.
func NewBookmarkService(remote bookmark.Store, store kv.KV, ttl time.Duration, log zerolog.Logger) *BookmarkService {
	s := &BookmarkService{
		remote:  remote,
		enabled: store != nil,
		log:     log,
	}
	if store != nil {
		s.byID = kv.Scoped[bookmark.Bookmark](store, CacheNamespace, ttl)
		s.pages = kv.Scoped[bookmark.Page](store, pageNamespace, ttl)
	}
	return s
}

// Bookmark fetches a bookmark, falling back to the cache when offline.
func (s *BookmarkService) Bookmark(ctx context.Context, id int) (bookmark.Bookmark, error) {
	b, _, err := s.Lookup(ctx, id)
	return b, err
}

// Lookup is Bookmark that also reports whether the result came from the cache.
func (s *BookmarkService) Lookup(ctx context.Context, id int) (bookmark.Bookmark, bool, error) {
	b, err := s.remote.Bookmark(ctx, id)
	if err == nil {
		s.Remember(ctx, b)
		return b, false, nil
	}

	key := strconv.Itoa(id)
	cached, ok := fallback(ctx, s, s.byID, key, err)
	if !ok {
		return bookmark.Bookmark{}, false, err
	}
	return cached, true, nil
}

// Bookmarks lists bookmarks, falling back to a cached page when offline.
func (s *BookmarkService) Bookmarks(ctx context.Context, q bookmark.Query) (bookmark.Page, error) {
	page, _, err := s.List(ctx, q)
	return page, err
}

// List is Bookmarks that also reports whether the page came from the cache.
func (s *BookmarkService) List(ctx context.Context, q bookmark.Query) (bookmark.Page, bool, error) {
	key := pageKey(q)

	page, err := s.remote.Bookmarks(ctx, q)
	if err == nil {
		if s.enabled {
			if err := s.pages.Put(ctx, key, page); err != nil {
				s.log.Debug().Err(err).Msg("cache bookmark page")
			}
			for _, b := range page.Results {
				s.Remember(ctx, b)
			}
		}
		return page, false, nil
	}

	cached, ok := fallback(ctx, s, s.pages, key, err)
	if !ok {
		return bookmark.Page{}, false, err
	}
	return cached, true, nil
}

// Create saves a bookmark and caches the result.
func (s *BookmarkService) Create(ctx context.Context, in bookmark.Create) (bookmark.Bookmark, error) {
	b, err := s.remote.Create(ctx, in)
	if err != nil {
		return bookmark.Bookmark{}, err
	}
	s.Remember(ctx, b)
	return b, nil
}

// Enhance requests AI enhancement. It is never served from the cache.
func (s *BookmarkService) Enhance(ctx context.Context, id int) error {
	return s.remote.Enhance(ctx, id)
}

// Delete removes a bookmark on the backend and evicts it from the cache.
// Cached pages are dropped since they may still list it.
func (s *BookmarkService) Delete(ctx context.Context, id int) error {
	if err := s.remote.Delete(ctx, id); err != nil {
		return err
	}
	if !s.enabled {
		return nil
	}

	if err := s.byID.Delete(ctx, strconv.Itoa(id)); err != nil {
		s.log.Debug().Err(err).Int("bookmark_id", id).Msg("evict bookmark")
	}
	if _, err := s.pages.Clear(ctx); err != nil {
		s.log.Debug().Err(err).Msg("evict bookmark pages")
	}
	return nil
}

// Export downloads all bookmarks as bookmark HTML. It is never served from
// the cache.
func (s *BookmarkService) Export(ctx context.Context) ([]byte, error) {
	return s.remote.Export(ctx)
}

// AllIDs pages through the whole listing and returns every bookmark id.
func (s *BookmarkService) AllIDs(ctx context.Context) ([]int, error) {
	var ids []int
	q := bookmark.Query{Limit: idPageSize}
	for {
		page, err := s.Bookmarks(ctx, q)
		if err != nil {
			return nil, err
		}
		for _, b := range page.Results {
			ids = append(ids, b.ID)
		}
		if page.Next == nil || len(page.Results) == 0 {
			return ids, nil
		}
		q.Offset += len(page.Results)
	}
}

// Remember stores a snapshot in the cache, replacing any older copy.
func (s *BookmarkService) Remember(ctx context.Context, b bookmark.Bookmark) {
	if !s.enabled || b.ID == 0 {
		return
	}
	if err := s.byID.Put(ctx, b.Key(), b); err != nil {
		s.log.Debug().Err(err).Int("bookmark_id", b.ID).Msg("cache bookmark")
	}
}

// CachedBookmark is a cached bookmark snapshot with its cache timestamps.
type CachedBookmark struct {
	bookmark.Bookmark
	CachedAt  time.Time  `json:"cached_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Cached returns every live cached bookmark ordered by key.
func (s *BookmarkService) Cached(ctx context.Context) ([]CachedBookmark, error) {
	if !s.enabled {
		return nil, nil
	}

	items, err := s.byID.Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cached bookmarks: %w", err)
	}

	out := make([]CachedBookmark, len(items))
	for i, it := range items {
		out[i] = CachedBookmark{
			Bookmark:  it.Value,
			CachedAt:  it.Entry.UpdatedAt,
			ExpiresAt: it.Entry.ExpiresAt,
		}
	}
	return out, nil
}

// ClearCache removes all cached bookmarks and pages.
func (s *BookmarkService) ClearCache(ctx context.Context) (int64, error) {
	if !s.enabled {
		return 0, nil
	}

	n, err := s.byID.Clear(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear bookmark cache: %w", err)
	}
	m, err := s.pages.Clear(ctx)
	if err != nil {
		return n, fmt.Errorf("clear page cache: %w", err)
	}
	return n + m, nil
}

// fallback serves key from cache when cause means the backend is unreachable.
func fallback[T any](ctx context.Context, s *BookmarkService, cache *kv.TypedKV[T], key string, cause error) (T, bool) {
	var zero T
	if !s.enabled || !api.IsOffline(cause) {
		return zero, false
	}

	v, err := cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.log.Debug().Err(err).Str("key", key).Msg("offline cache miss")
		}
		return zero, false
	}

	s.log.Warn().Err(cause).Str("key", key).Msg("backend unreachable, serving cached copy")
	return v, true
}

func pageKey(q bookmark.Query) string {
	v := url.Values{}
	v.Set("q", q.Search)
	v.Set("limit", strconv.Itoa(q.Limit))
	v.Set("offset", strconv.Itoa(q.Offset))
	if q.Unread {
		v.Set("unread", "yes")
	}
	if q.Shared {
		v.Set("shared", "yes")
	}
	return v.Encode()
}
