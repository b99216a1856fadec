package linkgenie

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riccilnl/linkgenie/internal/core/bookmark"
	"github.com/riccilnl/linkgenie/internal/core/workflow"
	"github.com/riccilnl/linkgenie/internal/data/db"
	"github.com/riccilnl/linkgenie/internal/data/stores"
	"github.com/riccilnl/linkgenie/internal/integration/api"
)

func openKV(t *testing.T) *stores.KVStore {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return stores.NewKVStore(database)
}

// fakeBackend is an in-memory bookmark.Store that can be taken offline.
type fakeBackend struct {
	mu        sync.Mutex
	items     map[int]bookmark.Bookmark
	offline   bool
	fetches   map[int]int
	enhanceFn func(id int)
}

func newFakeBackend(items ...bookmark.Bookmark) *fakeBackend {
	f := &fakeBackend{items: map[int]bookmark.Bookmark{}, fetches: map[int]int{}}
	for _, b := range items {
		f.items[b.ID] = b
	}
	return f
}

func (f *fakeBackend) setOffline(v bool) {
	f.mu.Lock()
	f.offline = v
	f.mu.Unlock()
}

func (f *fakeBackend) set(b bookmark.Bookmark) {
	f.mu.Lock()
	f.items[b.ID] = b
	f.mu.Unlock()
}

func (f *fakeBackend) errOffline() error {
	return fmt.Errorf("GET: %w: connection refused", api.ErrOffline)
}

func (f *fakeBackend) Bookmark(_ context.Context, id int) (bookmark.Bookmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches[id]++
	if f.offline {
		return bookmark.Bookmark{}, f.errOffline()
	}
	b, ok := f.items[id]
	if !ok {
		return bookmark.Bookmark{}, fmt.Errorf("bookmark %d: %w", id, bookmark.ErrNotFound)
	}
	return b, nil
}

func (f *fakeBackend) Bookmarks(_ context.Context, q bookmark.Query) (bookmark.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return bookmark.Page{}, f.errOffline()
	}
	page := bookmark.Page{}
	for id := 1; len(page.Results) < len(f.items); id++ {
		if b, ok := f.items[id]; ok {
			page.Results = append(page.Results, b)
		}
	}
	page.Count = len(page.Results)
	return page, nil
}

func (f *fakeBackend) Create(_ context.Context, in bookmark.Create) (bookmark.Bookmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return bookmark.Bookmark{}, f.errOffline()
	}
	b := bookmark.Bookmark{ID: len(f.items) + 1, URL: in.URL, Title: in.Title}
	f.items[b.ID] = b
	return b, nil
}

func (f *fakeBackend) Enhance(_ context.Context, id int) error {
	f.mu.Lock()
	fn := f.enhanceFn
	offline := f.offline
	f.mu.Unlock()
	if offline {
		return f.errOffline()
	}
	if fn != nil {
		fn(id)
	}
	return nil
}

func (f *fakeBackend) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return f.errOffline()
	}
	if _, ok := f.items[id]; !ok {
		return fmt.Errorf("bookmark %d: %w", id, bookmark.ErrNotFound)
	}
	delete(f.items, id)
	return nil
}

func (f *fakeBackend) Export(context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, f.errOffline()
	}
	return []byte(fmt.Sprintf("<DL>%d</DL>", len(f.items))), nil
}

// fakeWorkflows is an in-memory workflow.Store.
type fakeWorkflows struct {
	mu      sync.Mutex
	list    []workflow.Workflow
	failID  int
	updated []int
	applied [][2][]int
}

func (f *fakeWorkflows) ApplyWorkflows(_ context.Context, workflowIDs, bookmarkIDs []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if slices.Contains(workflowIDs, f.failID) {
		return fmt.Errorf("POST /api/workflows/apply: 500")
	}
	f.applied = append(f.applied, [2][]int{workflowIDs, bookmarkIDs})
	return nil
}

func (f *fakeWorkflows) Workflows(context.Context) ([]workflow.Workflow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]workflow.Workflow(nil), f.list...), nil
}

func (f *fakeWorkflows) UpdateWorkflow(_ context.Context, id int, u workflow.Update) (workflow.Workflow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == f.failID {
		return workflow.Workflow{}, fmt.Errorf("PUT /api/workflows/%d: 500", id)
	}
	f.updated = append(f.updated, id)
	for i := range f.list {
		if f.list[i].ID == id {
			f.list[i].Priority = u.Priority
			return f.list[i], nil
		}
	}
	return workflow.Workflow{}, api.ErrNotFound
}

func (f *fakeWorkflows) ToggleWorkflow(_ context.Context, id int) (workflow.Workflow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.list {
		if f.list[i].ID == id {
			f.list[i].Enabled = !f.list[i].Enabled
			return f.list[i], nil
		}
	}
	return workflow.Workflow{}, api.ErrNotFound
}
