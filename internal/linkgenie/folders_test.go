package linkgenie

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riccilnl/linkgenie/internal/core/bookmark"
	"github.com/riccilnl/linkgenie/internal/core/folder"
)

type fakeFolders struct {
	list  []folder.Folder
	pages map[int]bookmark.Page
}

func (f *fakeFolders) Folders(context.Context) ([]folder.Folder, error) {
	return append([]folder.Folder(nil), f.list...), nil
}

func (f *fakeFolders) FolderBookmarks(_ context.Context, id int) (bookmark.Page, error) {
	page, ok := f.pages[id]
	if !ok {
		return bookmark.Page{}, bookmark.ErrNotFound
	}
	return page, nil
}

func TestFolderService_List(t *testing.T) {
	store := &fakeFolders{list: []folder.Folder{
		{ID: 1, Name: "b", SortOrder: 1},
		{ID: 2, Name: "z", SortOrder: 0},
		{ID: 3, Name: "a", SortOrder: 1},
	}}
	svc := NewFolderService(store, nil, zerolog.Nop())

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 1}, []int{list[0].ID, list[1].ID, list[2].ID})
}

func TestFolderService_BookmarksAreCached(t *testing.T) {
	ctx := context.Background()
	store := &fakeFolders{pages: map[int]bookmark.Page{
		5: {Count: 1, Results: []bookmark.Bookmark{{ID: 11, Title: "filed"}}},
	}}
	bookmarks := NewBookmarkService(newFakeBackend(), openKV(t), time.Hour, zerolog.Nop())
	svc := NewFolderService(store, bookmarks, zerolog.Nop())

	page, err := svc.Bookmarks(ctx, 5)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)

	cached, err := bookmarks.Cached(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "filed", cached[0].Title)

	_, err = svc.Bookmarks(ctx, 6)
	require.ErrorIs(t, err, bookmark.ErrNotFound)
}
