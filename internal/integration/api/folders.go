package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/riccilnl/linkgenie/internal/core/bookmark"
	"github.com/riccilnl/linkgenie/internal/core/folder"
)

var _ folder.Store = (*Client)(nil)

// Folders lists all folders with their bookmark counts.
func (c *Client) Folders(ctx context.Context) ([]folder.Folder, error) {
	return get[[]folder.Folder](ctx, c, request{
		method: http.MethodGet,
		path:   "/api/folders/",
	})
}

// FolderBookmarks lists the bookmarks filed in a folder.
func (c *Client) FolderBookmarks(ctx context.Context, id int) (bookmark.Page, error) {
	return get[bookmark.Page](ctx, c, request{
		method: http.MethodGet,
		path:   "/api/folders/" + strconv.Itoa(id) + "/bookmarks",
	})
}
