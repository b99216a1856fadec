package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/riccilnl/linkgenie/internal/core/bookmark"
	"github.com/riccilnl/linkgenie/internal/core/doctor"
	"github.com/riccilnl/linkgenie/internal/core/folder"
	"github.com/riccilnl/linkgenie/internal/core/workflow"
	"github.com/riccilnl/linkgenie/internal/integration/api"
	"github.com/riccilnl/linkgenie/internal/linkgenie"
)

func TestParseIDs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []int
		wantErr bool
	}{
		{name: "single", args: []string{"7"}, want: []int{7}},
		{name: "spaces and commas", args: []string{"1,2", "3"}, want: []int{1, 2, 3}},
		{name: "hash prefix", args: []string{"#12"}, want: []int{12}},
		{name: "empty", args: nil, wantErr: true},
		{name: "not a number", args: []string{"abc"}, wantErr: true},
		{name: "zero", args: []string{"0"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int
			var err error
			cmd := &cli.Command{
				Name: "x",
				Action: func(_ context.Context, c *cli.Command) error {
					got, err = parseIDs(c.Args())
					return nil
				},
			}
			require.NoError(t, cmd.Run(context.Background(), append([]string{"x"}, tt.args...)))

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLsCmd_FormatAndURLGlob(t *testing.T) {
	be := newBackend(
		bookmark.Bookmark{ID: 1, URL: "https://github.com/rs/zerolog", Title: "zerolog"},
		bookmark.Bookmark{ID: 2, URL: "https://example.com/post", Title: "post"},
		bookmark.Bookmark{ID: 3, URL: "https://github.com/urfave/cli", Title: ""},
	)
	h := newHarness(t, be)

	err := h.run(t, NewLsCmd(h.flags, h.app).Register,
		"ls", "--url", "*://github.com/**", "--format", `{{ .ID }} {{ .Title | default .URL }}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"1 zerolog", "3 https://github.com/urfave/cli"}, lines(h.stdout.String()))
}

func TestLsCmd_InvalidFormat(t *testing.T) {
	h := newHarness(t, newBackend())

	err := h.run(t, NewLsCmd(h.flags, h.app).Register, "ls", "--format", "{{ .ID ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse list format")
}

func TestGetCmd_JSON(t *testing.T) {
	be := newBackend(bookmark.Bookmark{ID: 5, URL: "https://go.dev", Title: "Go", TagNames: []string{"lang"}})
	h := newHarness(t, be)

	require.NoError(t, h.run(t, NewGetCmd(h.flags, h.app).Register, "get", "--json", "5"))

	var got bookmark.Bookmark
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &got))
	assert.Equal(t, "Go", got.Title)
	assert.Equal(t, []string{"lang"}, got.TagNames)
}

func TestGetCmd_NotFound(t *testing.T) {
	h := newHarness(t, newBackend())

	err := h.run(t, NewGetCmd(h.flags, h.app).Register, "get", "9")
	require.Error(t, err)
	assert.ErrorIs(t, err, bookmark.ErrNotFound)
}

func TestAddCmd_RejectsDuplicate(t *testing.T) {
	be := newBackend()
	be.duplicates["https://go.dev"] = 7
	h := newHarness(t, be)

	err := h.run(t, NewAddCmd(h.flags, h.app).Register, "add", "https://go.dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already bookmarked as 7")
	assert.Empty(t, be.created)
}

func TestAddCmd_Creates(t *testing.T) {
	be := newBackend()
	h := newHarness(t, be)

	err := h.run(t, NewAddCmd(h.flags, h.app).Register,
		"add", "--json", "--title", "Go", "--tag", "lang", "--tag", "google", "https://go.dev")
	require.NoError(t, err)

	require.Len(t, be.created, 1)
	assert.Equal(t, "Go", be.created[0].Title)
	assert.Equal(t, []string{"lang", "google"}, be.created[0].TagNames)

	var got bookmark.Bookmark
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &got))
	assert.Equal(t, 101, got.ID)
}

func TestAddCmd_InvalidURL(t *testing.T) {
	h := newHarness(t, newBackend())

	err := h.run(t, NewAddCmd(h.flags, h.app).Register, "add", "not a url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid bookmark")
}

func TestEnhanceCmd_Completes(t *testing.T) {
	be := newBackend(bookmark.Bookmark{ID: 1, URL: "https://go.dev"})
	be.onEnhance = func(b *bookmark.Bookmark) {
		b.Title = "The Go Programming Language"
		b.Description = "Build simple, secure, scalable systems with Go"
	}
	h := newHarness(t, be)

	err := h.run(t, NewEnhanceCmd(h.flags, h.app).Register, "enhance", "--json", "--timeout", "10s", "1")
	require.NoError(t, err)

	var res enhanceResult
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &res))
	assert.Equal(t, 1, res.BookmarkID)
	assert.Equal(t, "completed", res.Outcome)
	assert.Nil(t, res.Error)

	cached, err := h.app.Bookmarks.Cached(context.Background())
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "The Go Programming Language", cached[0].Title)
}

func TestEnhanceCmd_TriggerFailure(t *testing.T) {
	h := newHarness(t, newBackend())

	err := h.run(t, NewEnhanceCmd(h.flags, h.app).Register, "enhance", "--json", "--timeout", "10s", "42")
	require.Error(t, err)

	var res enhanceResult
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &res))
	assert.Equal(t, "trigger_failed", res.Outcome)
	require.NotNil(t, res.Error)
}

func TestWorkflowCmd_Move(t *testing.T) {
	be := newBackend()
	be.workflows = []workflow.Workflow{
		{ID: 10, Name: "tag github", Priority: 0, Enabled: true},
		{ID: 11, Name: "archive old", Priority: 1},
		{ID: 12, Name: "summarize", Priority: 2, Enabled: true},
	}
	h := newHarness(t, be)

	require.NoError(t, h.run(t, NewWorkflowCmd(h.flags, h.app).Register, "workflow", "move", "3", "1"))

	assert.Equal(t, 0, be.updates[12].Priority)
	assert.Equal(t, 1, be.updates[10].Priority)
	assert.Equal(t, 2, be.updates[11].Priority)
	assert.Contains(t, h.stderr.String(), "moved workflow from position 3 to 1")
}

func TestWorkflowCmd_MoveInvalidPosition(t *testing.T) {
	h := newHarness(t, newBackend())

	err := h.run(t, NewWorkflowCmd(h.flags, h.app).Register, "workflow", "move", "0", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positions start at 1")
}

func TestWorkflowCmd_Toggle(t *testing.T) {
	be := newBackend()
	be.workflows = []workflow.Workflow{{ID: 10, Name: "tag github"}}
	h := newHarness(t, be)

	require.NoError(t, h.run(t, NewWorkflowCmd(h.flags, h.app).Register, "workflow", "toggle", "10"))
	assert.Contains(t, h.stderr.String(), `workflow "tag github" enabled`)
}

func TestCacheCmd_ListAndClear(t *testing.T) {
	be := newBackend(bookmark.Bookmark{ID: 3, URL: "https://go.dev", Title: "Go"})
	h := newHarness(t, be)

	// populate the cache through a normal fetch
	_, err := h.app.Bookmarks.Bookmark(context.Background(), 3)
	require.NoError(t, err)

	require.NoError(t, h.run(t, NewCacheCmd(h.flags, h.app).Register, "cache", "ls"))
	out := lines(h.stdout.String())
	require.Len(t, out, 2)
	assert.Contains(t, out[0], "EXPIRES")
	assert.Contains(t, out[1], "https://go.dev")
	assert.Contains(t, out[1], "in ")

	require.NoError(t, h.run(t, NewCacheCmd(h.flags, h.app).Register, "cache", "clear"))
	cached, err := h.app.Bookmarks.Cached(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cached)
}

func TestExpiresIn(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	soon := now.Add(90 * time.Minute)
	past := now.Add(-time.Second)

	assert.Equal(t, "never", expiresIn(nil, now))
	assert.Equal(t, "expired", expiresIn(&past, now))
	assert.Equal(t, "in 1h30m0s", expiresIn(&soon, now))
}

func TestNotificationsCmd(t *testing.T) {
	h := newHarness(t, newBackend())
	ctx := context.Background()

	h.app.Notifications.Infof(ctx, "bookmark %d enhanced", 1)
	h.app.Notifications.Errorf(ctx, "bookmark %d failed", 2)

	require.NoError(t, h.run(t, NewNotificationsCmd(h.flags, h.app).Register, "notifications", "--json"))
	assert.Len(t, lines(h.stdout.String()), 2)

	require.NoError(t, h.run(t, NewNotificationsCmd(h.flags, h.app).Register, "notifications", "--clear"))
	history, err := h.app.Notifications.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestBookmarkMarkdown(t *testing.T) {
	b := bookmark.Bookmark{
		ID:          4,
		URL:         "https://go.dev",
		Title:       "Go",
		Description: "A language",
		Notes:       "read later",
		TagNames:    []string{"lang"},
		DateAdded:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		IsFavorite:  true,
	}

	md := bookmarkMarkdown(b)

	assert.Contains(t, md, "# Go\n")
	assert.Contains(t, md, "<https://go.dev>")
	assert.Contains(t, md, "`#lang`")
	assert.Contains(t, md, "## Notes\n\nread later")
	assert.Contains(t, md, "*id 4 · added 2026-03-01 · favorite*")
}

func TestConfigShow_MasksToken(t *testing.T) {
	h := newHarness(t, newBackend())
	h.flags.Config.API.Token = "s3cret-token"

	require.NoError(t, h.run(t, NewConfigCmd(h.flags).Register, "config", "show"))

	out := h.stdout.String()
	assert.Contains(t, out, "base_url: "+h.flags.Config.API.BaseURL)
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "s3cret-token")
	assert.Equal(t, "s3cret-token", h.flags.Config.API.Token, "the loaded config is left untouched")
}

func TestConfigValidate(t *testing.T) {
	h := newHarness(t, newBackend())

	require.NoError(t, h.run(t, NewConfigCmd(h.flags).Register, "config", "validate", "--format", "json"))

	var res struct {
		Valid bool `json:"valid"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &res))
	assert.True(t, res.Valid)

	h.flags.Config.UI.Theme = "neon"
	err := h.run(t, NewConfigCmd(h.flags).Register, "config", "validate")
	require.Error(t, err)
	assert.Contains(t, h.stderr.String(), "ui.theme")
	assert.Contains(t, h.stderr.String(), "1 error(s) found")
}

func TestDefaultPaths_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")

	assert.Equal(t, "/tmp/cfg/linkgenie/config.yaml", DefaultConfigPath())
	assert.Equal(t, "/tmp/data/linkgenie", DefaultDataDir())

	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "/home/u")
	assert.Equal(t, "/home/u/.local/share/linkgenie", DefaultDataDir())
}

func TestSuggestIDs(t *testing.T) {
	cached := []linkgenie.CachedBookmark{
		{Bookmark: bookmark.Bookmark{ID: 1, Title: "Go: the language"}},
		{Bookmark: bookmark.Bookmark{ID: 2, URL: "https://pkg.go.dev"}},
		{Bookmark: bookmark.Bookmark{ID: 3, Title: "typed"}},
	}

	var buf strings.Builder
	suggestIDs(&buf, cached, map[int]bool{3: true})

	assert.Equal(t, "1:Go  the language\n2:https //pkg.go.dev\n", buf.String())
}

func TestDeleteCmd(t *testing.T) {
	be := newBackend(
		bookmark.Bookmark{ID: 1, URL: "https://go.dev"},
		bookmark.Bookmark{ID: 2, URL: "https://pkg.go.dev"},
	)
	h := newHarness(t, be)

	require.NoError(t, h.run(t, NewDeleteCmd(h.flags, h.app).Register, "delete", "--yes", "1"))
	assert.Contains(t, h.stderr.String(), "deleted bookmark 1")

	be.mu.Lock()
	_, stillThere := be.bookmarks[1]
	_, kept := be.bookmarks[2]
	be.mu.Unlock()
	assert.False(t, stillThere)
	assert.True(t, kept)

	err := h.run(t, NewDeleteCmd(h.flags, h.app).Register, "rm", "-y", "2,9")
	require.Error(t, err)
	assert.Contains(t, h.stderr.String(), "deleted bookmark 2")
	assert.Contains(t, h.stderr.String(), "delete 9")
}

func TestFoldersCmd(t *testing.T) {
	be := newBackend(
		bookmark.Bookmark{ID: 1, URL: "https://go.dev", Title: "Go"},
		bookmark.Bookmark{ID: 2, URL: "https://example.com", Title: "Example"},
	)
	be.folders = []folder.Folder{
		{ID: 4, Name: "Later", SortOrder: 1, Count: 0},
		{ID: 3, Name: "Reading", Icon: "📚", SortOrder: 0, Count: 1},
	}
	be.filed[3] = []int{1}
	h := newHarness(t, be)
	register := NewFoldersCmd(h.flags, h.app).Register

	require.NoError(t, h.run(t, register, "folders", "ls"))
	out := lines(h.stdout.String())
	require.Len(t, out, 3)
	assert.Contains(t, out[1], "📚 Reading")
	assert.Contains(t, out[2], "Later")

	require.NoError(t, h.run(t, register, "folders", "show", "--json", "3"))
	out = lines(h.stdout.String())
	require.Len(t, out, 1)
	var b bookmark.Bookmark
	require.NoError(t, json.Unmarshal([]byte(out[0]), &b))
	assert.Equal(t, "Go", b.Title)

	require.NoError(t, h.run(t, register, "folders", "show", "4"))
	assert.Contains(t, h.stderr.String(), "Folder 4 is empty")

	require.Error(t, h.run(t, register, "folders", "show", "x"))
}

func TestExportCmd(t *testing.T) {
	be := newBackend(bookmark.Bookmark{ID: 1, URL: "https://go.dev", Title: "Go"})
	h := newHarness(t, be)
	register := NewExportCmd(h.flags, h.app).Register

	path := filepath.Join(t.TempDir(), "out.html")
	require.NoError(t, h.run(t, register, "export", "--output", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<DT><A HREF="https://go.dev">Go</A>`)
	assert.Contains(t, h.stderr.String(), "exported bookmarks to "+path)

	require.NoError(t, h.run(t, register, "export", "-o", "-"))
	assert.Equal(t, string(data), h.stdout.String())
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "bookmarks_2026-10-18.html", exportFileName(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)))
}

func TestWorkflowCmd_Apply(t *testing.T) {
	be := newBackend(bookmark.Bookmark{ID: 1}, bookmark.Bookmark{ID: 2}, bookmark.Bookmark{ID: 3})
	h := newHarness(t, be)
	register := NewWorkflowCmd(h.flags, h.app).Register

	require.NoError(t, h.run(t, register, "workflow", "apply", "5"))
	assert.Contains(t, h.stderr.String(), "applied workflow 5 to 3 bookmark(s)")

	require.NoError(t, h.run(t, register, "workflow", "apply", "--bookmark", "2,3", "5"))

	be.mu.Lock()
	applied := append([][2][]int(nil), be.applied...)
	be.mu.Unlock()
	require.Len(t, applied, 2)
	assert.Equal(t, [2][]int{{5}, {1, 2, 3}}, applied[0])
	assert.Equal(t, [2][]int{{5}, {2, 3}}, applied[1])

	require.Error(t, h.run(t, register, "workflow", "apply", "--bookmark", "x", "5"))
}

func TestTagsCmd_Stats(t *testing.T) {
	be := newBackend()
	be.tagStats = api.TagStats{Total: 3, Core: 1, Dynamic: 2, TopTags: []api.TagCount{{Name: "go", Count: 4, Category: "core"}}}
	h := newHarness(t, be)

	require.NoError(t, h.run(t, NewTagsCmd(h.flags, h.app).Register, "tags", "stats", "--json"))
	var got api.TagStats
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &got))
	assert.Equal(t, be.tagStats, got)
}

func TestDoctorCmd_AIStatus(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		want    doctor.Status
	}{
		{name: "enabled", enabled: true, want: doctor.StatusPass},
		{name: "disabled", enabled: false, want: doctor.StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be := newBackend(bookmark.Bookmark{ID: 1})
			be.aiEnabled = tt.enabled
			h := newHarness(t, be)

			err := h.run(t, NewDoctorCmd(h.flags, h.app).Register, "doctor", "--format", "json")

			var report struct {
				Healthy bool            `json:"healthy"`
				Checks  []doctor.Result `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &report))

			var ai *doctor.CheckItem
			for _, r := range report.Checks {
				for i := range r.Items {
					if r.Name == "API" && r.Items[i].Label == "ai" {
						ai = &r.Items[i]
					}
				}
			}
			require.NotNil(t, ai, "API check reports the ai item")
			assert.Equal(t, tt.want, ai.Status)

			if !tt.enabled {
				require.Error(t, err)
				assert.False(t, report.Healthy)
			}
		})
	}
}
