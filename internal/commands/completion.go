package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/riccilnl/linkgenie/internal/linkgenie"
)

// BookmarkIDCompleter suggests cached bookmark IDs as "id:title" pairs.
// IDs already on the command line are skipped and the backend is never
// contacted. A trailing "-" argument falls back to flag completion.
func BookmarkIDCompleter(app *linkgenie.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		args := cmd.Args().Slice()
		if n := len(args); n > 0 && strings.HasPrefix(args[n-1], "-") {
			cli.DefaultCompleteWithFlags(ctx, cmd)
			return
		}

		if app == nil || app.Bookmarks == nil {
			return
		}

		cached, err := app.Bookmarks.Cached(ctx)
		if err != nil {
			return
		}

		typed := make(map[int]bool)
		if ids, err := parseIDs(cmd.Args()); err == nil {
			for _, id := range ids {
				typed[id] = true
			}
		}

		suggestIDs(cmd.Root().Writer, cached, typed)
	}
}

func suggestIDs(w io.Writer, cached []linkgenie.CachedBookmark, skip map[int]bool) {
	// zsh splits candidates on the first ':'
	clean := strings.NewReplacer(":", " ", "\n", " ")
	for _, b := range cached {
		if skip[b.ID] {
			continue
		}
		_, _ = fmt.Fprintf(w, "%d:%s\n", b.ID, clean.Replace(b.DisplayTitle()))
	}
}
