// Package bookmark defines bookmark domain types and the remote store contract.
package bookmark

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// ErrNotFound is returned when a bookmark does not exist on the server.
var ErrNotFound = errors.New("bookmark not found")

// Bookmark is a single bookmark record as served by the backend.
//
// The backend is the only writer. Clients treat every fetched value as an
// immutable snapshot and replace it wholesale on the next fetch.
type Bookmark struct {
	ID           int       `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Notes        string    `json:"notes"`
	IsFavorite   bool      `json:"is_favorite"`
	Unread       bool      `json:"unread"`
	Shared       bool      `json:"shared"`
	TagNames     []string  `json:"tag_names"`
	DateAdded    time.Time `json:"date_added"`
	DateModified time.Time `json:"date_modified"`

	// linkding compatible fields
	WebArchiveSnapshotURL string  `json:"web_archive_snapshot_url,omitempty"`
	FaviconURL            *string `json:"favicon_url,omitempty"`
	PreviewImageURL       *string `json:"preview_image_url,omitempty"`
	WebsiteTitle          *string `json:"website_title,omitempty"`
	WebsiteDescription    *string `json:"website_description,omitempty"`
}

// Key returns the string form of the bookmark ID, used for cache keys.
func (b Bookmark) Key() string {
	return strconv.Itoa(b.ID)
}

// HasContent reports whether both title and description are filled in.
func (b Bookmark) HasContent() bool {
	return b.Title != "" && b.Description != ""
}

// SameContent reports whether title and description match other.
func (b Bookmark) SameContent(other Bookmark) bool {
	return b.Title == other.Title && b.Description == other.Description
}

// DisplayTitle returns the title, falling back to the URL when empty.
func (b Bookmark) DisplayTitle() string {
	if b.Title != "" {
		return b.Title
	}
	return b.URL
}

// Create is the request body for creating a bookmark.
type Create struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Notes       string   `json:"notes"`
	IsFavorite  bool     `json:"is_favorite"`
	Unread      bool     `json:"unread"`
	Shared      bool     `json:"shared"`
	TagNames    []string `json:"tag_names"`
	IsArchived  bool     `json:"is_archived"`
}

// Query filters a bookmark listing.
type Query struct {
	Search string
	Unread bool
	Shared bool
	Limit  int
	Offset int
}

// Page is one page of a bookmark listing (linkding response shape).
type Page struct {
	Count    int        `json:"count"`
	Next     *string    `json:"next"`
	Previous *string    `json:"previous"`
	Results  []Bookmark `json:"results"`
}

// Reader reads bookmarks from the backend.
type Reader interface {
	Bookmark(ctx context.Context, id int) (Bookmark, error)
	Bookmarks(ctx context.Context, q Query) (Page, error)
}

// Store is the full bookmark surface of the backend used by this client.
type Store interface {
	Reader
	Create(ctx context.Context, b Create) (Bookmark, error)
	Enhance(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
	// Export returns every bookmark as a Netscape bookmark HTML document.
	Export(ctx context.Context) ([]byte, error)
}
