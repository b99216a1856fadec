package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/riccilnl/linkgenie/internal/core/bookmark"
	"github.com/riccilnl/linkgenie/internal/core/config"
	"github.com/riccilnl/linkgenie/internal/core/eventbus"
	"github.com/riccilnl/linkgenie/internal/core/folder"
	"github.com/riccilnl/linkgenie/internal/core/notify"
	"github.com/riccilnl/linkgenie/internal/core/workflow"
	"github.com/riccilnl/linkgenie/internal/data/db"
	"github.com/riccilnl/linkgenie/internal/data/stores"
	"github.com/riccilnl/linkgenie/internal/integration/api"
	"github.com/riccilnl/linkgenie/internal/linkgenie"
	"github.com/riccilnl/linkgenie/internal/printer"
)

// backend is an in-memory bookmark server speaking the linkding API.
type backend struct {
	mu         sync.Mutex
	bookmarks  map[int]bookmark.Bookmark
	workflows  []workflow.Workflow
	duplicates map[string]int
	created    []bookmark.Create
	updates    map[int]workflow.Update
	onEnhance  func(b *bookmark.Bookmark)
	nextID     int

	folders   []folder.Folder
	filed     map[int][]int
	applied   [][2][]int
	aiEnabled bool
	tagStats  api.TagStats
}

func newBackend(items ...bookmark.Bookmark) *backend {
	b := &backend{
		bookmarks:  map[int]bookmark.Bookmark{},
		duplicates: map[string]int{},
		updates:    map[int]workflow.Update{},
		nextID:     100,
		filed:      map[int][]int{},
		aiEnabled:  true,
	}
	for _, it := range items {
		b.bookmarks[it.ID] = it
	}
	return b
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/bookmarks/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		page := bookmark.Page{Results: []bookmark.Bookmark{}}
		for id := 1; id < b.nextID+10; id++ {
			if it, ok := b.bookmarks[id]; ok {
				page.Results = append(page.Results, it)
			}
		}
		page.Count = len(page.Results)
		writeJSON(w, page)
	})

	mux.HandleFunc("GET /api/bookmarks/check/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		res := api.CheckResult{}
		if id, ok := b.duplicates[r.URL.Query().Get("url")]; ok {
			res.AlreadyBookmarked = true
			res.BookmarkID = &id
		}
		writeJSON(w, res)
	})

	mux.HandleFunc("GET /api/bookmarks/{id}/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		id, _ := strconv.Atoi(r.PathValue("id"))
		it, ok := b.bookmarks[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, it)
	})

	mux.HandleFunc("POST /api/bookmarks/", func(w http.ResponseWriter, r *http.Request) {
		var in bookmark.Create
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		b.created = append(b.created, in)
		b.nextID++
		it := bookmark.Bookmark{
			ID:          b.nextID,
			URL:         in.URL,
			Title:       in.Title,
			Description: in.Description,
			TagNames:    in.TagNames,
			DateAdded:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}
		b.bookmarks[it.ID] = it
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, it)
	})

	mux.HandleFunc("DELETE /api/bookmarks/{id}/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		id, _ := strconv.Atoi(r.PathValue("id"))
		if _, ok := b.bookmarks[id]; !ok {
			http.NotFound(w, r)
			return
		}
		delete(b.bookmarks, id)
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/bookmarks/export/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		var sb strings.Builder
		sb.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n<DL><p>\n")
		for id := 1; id < b.nextID+10; id++ {
			if it, ok := b.bookmarks[id]; ok {
				fmt.Fprintf(&sb, "<DT><A HREF=%q>%s</A>\n", it.URL, it.Title)
			}
		}
		sb.WriteString("</DL><p>\n")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(sb.String()))
	})

	mux.HandleFunc("GET /api/folders/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, b.folders)
	})

	mux.HandleFunc("GET /api/folders/{id}/bookmarks", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		id, _ := strconv.Atoi(r.PathValue("id"))
		page := bookmark.Page{Results: []bookmark.Bookmark{}}
		for _, bid := range b.filed[id] {
			if it, ok := b.bookmarks[bid]; ok {
				page.Results = append(page.Results, it)
			}
		}
		page.Count = len(page.Results)
		writeJSON(w, page)
	})

	mux.HandleFunc("GET /api/tags/stats", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, b.tagStats)
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "healthy"})
	})

	mux.HandleFunc("GET /api/system/status", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, map[string]any{
			"status":          "ok",
			"database":        "connected",
			"bookmarks_count": len(b.bookmarks),
			"ai_enabled":      b.aiEnabled,
			"initialized":     len(b.bookmarks) > 0,
		})
	})

	mux.HandleFunc("POST /api/bookmarks/{id}/enhance/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		id, _ := strconv.Atoi(r.PathValue("id"))
		it, ok := b.bookmarks[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if b.onEnhance != nil {
			b.onEnhance(&it)
			b.bookmarks[id] = it
		}
		w.WriteHeader(http.StatusAccepted)
	})

	mux.HandleFunc("GET /api/workflows/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, b.workflows)
	})

	mux.HandleFunc("PUT /api/workflows/{id}", func(w http.ResponseWriter, r *http.Request) {
		var u workflow.Update
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		id, _ := strconv.Atoi(r.PathValue("id"))
		b.updates[id] = u
		for i := range b.workflows {
			if b.workflows[i].ID == id {
				b.workflows[i].Priority = u.Priority
				writeJSON(w, b.workflows[i])
				return
			}
		}
		http.NotFound(w, r)
	})

	mux.HandleFunc("POST /api/workflows/apply", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			WorkflowIDs []int `json:"workflow_ids"`
			BookmarkIDs []int `json:"bookmark_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		b.applied = append(b.applied, [2][]int{in.WorkflowIDs, in.BookmarkIDs})
		writeJSON(w, map[string]string{"status": "success"})
	})

	mux.HandleFunc("POST /api/workflows/{id}/toggle", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		id, _ := strconv.Atoi(r.PathValue("id"))
		for i := range b.workflows {
			if b.workflows[i].ID == id {
				b.workflows[i].Enabled = !b.workflows[i].Enabled
				writeJSON(w, b.workflows[i])
				return
			}
		}
		http.NotFound(w, r)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type harness struct {
	app    *linkgenie.App
	flags  *Flags
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T, be *backend) *harness {
	t.Helper()

	srv := httptest.NewServer(be.handler())
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.API.BaseURL = srv.URL
	cfg.Enhance.PollInterval = 10 * time.Millisecond
	cfg.Enhance.GraceDelay = 5 * time.Millisecond
	cfg.Enhance.MaxAttempts = 20

	client, err := api.New(api.Options{BaseURL: srv.URL, Timeout: 5 * time.Second}, zerolog.Nop())
	require.NoError(t, err)

	database, err := db.Open(cfg.DataDir, db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	kvStore := stores.NewKVStore(database)
	notifications := notify.NewBus(stores.NewNotifyStore(database, cfg.Notifications.Retention), zerolog.Nop())

	h := &harness{flags: &Flags{Config: &cfg}}
	h.app = linkgenie.NewApp(&cfg, client, database, kvStore, notifications, eventbus.New(64))
	return h
}

// run executes args against a root command holding the given registrations.
func (h *harness) run(t *testing.T, register func(*cli.Command) *cli.Command, args ...string) error {
	t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()

	root := register(&cli.Command{
		Name:      "linkgenie",
		Writer:    &h.stdout,
		ErrWriter: &h.stderr,
		// keep cli.Exit from terminating the test binary
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	})
	ctx := printer.NewContext(context.Background(), printer.NewPlain(&h.stderr))
	return root.Run(ctx, append([]string{"linkgenie"}, args...))
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}
