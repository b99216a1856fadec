package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/riccilnl/linkgenie/internal/core/bookmark"
)

var _ bookmark.Store = (*Client)(nil)

func bookmarkPath(id int) string {
	return "/api/bookmarks/" + strconv.Itoa(id) + "/"
}

// Bookmark fetches one bookmark. A 404 wraps bookmark.ErrNotFound.
func (c *Client) Bookmark(ctx context.Context, id int) (bookmark.Bookmark, error) {
	return get[bookmark.Bookmark](ctx, c, request{
		method:   http.MethodGet,
		path:     bookmarkPath(id),
		notFound: bookmark.ErrNotFound,
	})
}

// Bookmarks lists bookmarks matching q.
func (c *Client) Bookmarks(ctx context.Context, q bookmark.Query) (bookmark.Page, error) {
	query := url.Values{}
	if q.Search != "" {
		query.Set("q", q.Search)
	}
	if q.Unread {
		query.Set("unread", "yes")
	}
	if q.Shared {
		query.Set("shared", "yes")
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		query.Set("offset", strconv.Itoa(q.Offset))
	}

	return get[bookmark.Page](ctx, c, request{
		method: http.MethodGet,
		path:   "/api/bookmarks/",
		query:  query,
	})
}

// Create saves a new bookmark.
func (c *Client) Create(ctx context.Context, b bookmark.Create) (bookmark.Bookmark, error) {
	if b.TagNames == nil {
		b.TagNames = []string{}
	}

	var out bookmark.Bookmark
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/bookmarks/",
		body:   b,
	}, &out)
	if err != nil {
		return bookmark.Bookmark{}, fmt.Errorf("create bookmark: %w", err)
	}
	return out, nil
}

// Enhance asks the backend to start AI enhancement. The backend accepts the
// job and returns before it completes.
func (c *Client) Enhance(ctx context.Context, id int) error {
	return c.do(ctx, request{
		method:   http.MethodPost,
		path:     bookmarkPath(id) + "enhance/",
		notFound: bookmark.ErrNotFound,
	}, nil)
}

// Delete removes a bookmark. A 404 wraps bookmark.ErrNotFound.
func (c *Client) Delete(ctx context.Context, id int) error {
	err := c.do(ctx, request{
		method:   http.MethodDelete,
		path:     bookmarkPath(id),
		notFound: bookmark.ErrNotFound,
	}, nil)
	if err != nil {
		return fmt.Errorf("delete bookmark %d: %w", id, err)
	}
	return nil
}

// Export downloads all bookmarks as a Netscape bookmark HTML document.
func (c *Client) Export(ctx context.Context) ([]byte, error) {
	data, err := c.send(ctx, request{
		method: http.MethodGet,
		path:   "/api/bookmarks/export/",
		accept: "text/html",
	})
	if err != nil {
		return nil, fmt.Errorf("export bookmarks: %w", err)
	}
	return data, nil
}

// CheckResult reports whether a URL is already saved.
type CheckResult struct {
	AlreadyBookmarked bool              `json:"already_bookmarked"`
	BookmarkID        *int              `json:"bookmark_id"`
	Metadata          map[string]string `json:"metadata"`
}

// Check looks up a URL before saving it.
func (c *Client) Check(ctx context.Context, rawURL string) (CheckResult, error) {
	var out CheckResult
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/bookmarks/check/",
		query:  url.Values{"url": {rawURL}},
	}, &out)
	if err != nil {
		return CheckResult{}, err
	}
	return out, nil
}
