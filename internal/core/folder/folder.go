// Package folder defines the folders bookmarks are filed into.
package folder

import (
	"context"
	"time"

	"github.com/riccilnl/linkgenie/internal/core/bookmark"
)

// Folder groups bookmarks on the backend. Count is the number of bookmarks
// filed in it.
type Folder struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	SortOrder int       `json:"sort_order"`
	DateAdded time.Time `json:"date_added"`
	Count     int       `json:"count"`
}

// Label is the folder name prefixed with its icon when it has one.
func (f Folder) Label() string {
	if f.Icon == "" {
		return f.Name
	}
	return f.Icon + " " + f.Name
}

// Store is the folder surface of the backend.
type Store interface {
	Folders(ctx context.Context) ([]Folder, error)
	FolderBookmarks(ctx context.Context, id int) (bookmark.Page, error)
}
