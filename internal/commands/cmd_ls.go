package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v3"

	"github.com/riccilnl/linkgenie/internal/core/bookmark"
	"github.com/riccilnl/linkgenie/internal/linkgenie"
	"github.com/riccilnl/linkgenie/internal/printer"
	"github.com/riccilnl/linkgenie/pkg/iojson"
	"github.com/riccilnl/linkgenie/pkg/tmpl"
)

type LsCmd struct {
	flags *Flags
	app   *linkgenie.App

	// flags
	jsonOutput bool
	search     string
	urlGlob    string
	format     string
	unread     bool
	shared     bool
	limit      int
	offset     int
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *linkgenie.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List bookmarks",
		UsageText: "linkgenie ls [options]",
		Description: `Lists bookmarks from the backend, one row per bookmark.

Rows are rendered with the ui.list_format template unless --format is given.
Templates receive the bookmark and may use the shq, join, truncate, default,
upper, lower and date functions. Use --url to keep only bookmarks whose URL
matches a glob such as '*://github.com/**'.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.StringFlag{
				Name:        "q",
				Usage:       "search query passed to the backend",
				Destination: &cmd.search,
			},
			&cli.StringFlag{
				Name:        "url",
				Usage:       "only show bookmarks whose URL matches this glob",
				Destination: &cmd.urlGlob,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "row template (defaults to ui.list_format)",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "unread",
				Usage:       "only unread bookmarks",
				Destination: &cmd.unread,
			},
			&cli.BoolFlag{
				Name:        "shared",
				Usage:       "only shared bookmarks",
				Destination: &cmd.shared,
			},
			&cli.IntFlag{
				Name:        "limit",
				Usage:       "maximum number of bookmarks to fetch",
				Value:       100,
				Destination: &cmd.limit,
			},
			&cli.IntFlag{
				Name:        "offset",
				Usage:       "number of bookmarks to skip",
				Destination: &cmd.offset,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.urlGlob != "" && !doublestar.ValidatePattern(cmd.urlGlob) {
		return fmt.Errorf("invalid --url pattern %q", cmd.urlGlob)
	}

	format := cmd.format
	if format == "" {
		format = cmd.app.Config.UI.ListFormat
	}
	row, err := tmpl.Parse(format)
	if err != nil {
		return fmt.Errorf("parse list format: %w", err)
	}

	page, cached, err := cmd.app.Bookmarks.List(ctx, bookmark.Query{
		Search: cmd.search,
		Unread: cmd.unread,
		Shared: cmd.shared,
		Limit:  cmd.limit,
		Offset: cmd.offset,
	})
	if err != nil {
		return err
	}
	if cached {
		p.Warnf("backend unreachable, showing cached results")
	}

	bookmarks := filterByURL(page.Results, cmd.urlGlob)
	if len(bookmarks) == 0 {
		if !cmd.jsonOutput {
			p.Infof("No bookmarks found")
		}
		return nil
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, b := range bookmarks {
			if err := iojson.WriteLine(out, b); err != nil {
				return fmt.Errorf("encode bookmark: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, b := range bookmarks {
		line, err := row.Execute(b)
		if err != nil {
			return fmt.Errorf("render bookmark %d: %w", b.ID, err)
		}
		_, _ = fmt.Fprintln(w, line)
	}
	_ = w.Flush()

	if shown := cmd.offset + len(page.Results); page.Count > shown {
		p.Infof("showing %d of %d, use --offset %d for more", len(page.Results), page.Count, shown)
	}
	return nil
}

// filterByURL keeps bookmarks whose URL matches pattern. An empty pattern
// keeps everything.
func filterByURL(in []bookmark.Bookmark, pattern string) []bookmark.Bookmark {
	if pattern == "" {
		return in
	}
	out := make([]bookmark.Bookmark, 0, len(in))
	for _, b := range in {
		if ok, _ := doublestar.Match(pattern, b.URL); ok {
			out = append(out, b)
		}
	}
	return out
}
