package linkgenie

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/riccilnl/linkgenie/internal/core/bookmark"
	"github.com/riccilnl/linkgenie/internal/core/folder"
)

// FolderService lists folders and their bookmarks. Bookmarks read through a
// folder are cached like any other listing.
type FolderService struct {
	store     folder.Store
	bookmarks *BookmarkService
	log       zerolog.Logger
}

// NewFolderService creates a FolderService.
func NewFolderService(store folder.Store, bookmarks *BookmarkService, log zerolog.Logger) *FolderService {
	return &FolderService{store: store, bookmarks: bookmarks, log: log}
}

// List returns folders by sort order, then name.
func (s *FolderService) List(ctx context.Context) ([]folder.Folder, error) {
	list, err := s.store.Folders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	slices.SortStableFunc(list, func(a, b folder.Folder) int {
		return cmp.Or(cmp.Compare(a.SortOrder, b.SortOrder), strings.Compare(a.Name, b.Name))
	})
	return list, nil
}

// Bookmarks returns the bookmarks filed in folder id.
func (s *FolderService) Bookmarks(ctx context.Context, id int) (bookmark.Page, error) {
	page, err := s.store.FolderBookmarks(ctx, id)
	if err != nil {
		return bookmark.Page{}, fmt.Errorf("list folder %d: %w", id, err)
	}
	if s.bookmarks != nil {
		for _, b := range page.Results {
			s.bookmarks.Remember(ctx, b)
		}
	}
	s.log.Debug().Int("folder_id", id).Int("count", len(page.Results)).Msg("folder listed")
	return page, nil
}
