package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/riccilnl/linkgenie/internal/linkgenie"
	"github.com/riccilnl/linkgenie/internal/printer"
	"github.com/riccilnl/linkgenie/pkg/iojson"
)

type CacheCmd struct {
	flags *Flags
	app   *linkgenie.App

	// flags
	jsonOutput bool
}

// NewCacheCmd creates a new cache command
func NewCacheCmd(flags *Flags, app *linkgenie.App) *CacheCmd {
	return &CacheCmd{flags: flags, app: app}
}

// Register adds the cache command to the application
func (cmd *CacheCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "cache",
		Usage: "Inspect the offline bookmark cache",
		Description: `Bookmarks fetched from the backend are cached locally for cache.ttl and
served when the backend is unreachable.`,
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List cached bookmarks",
				UsageText: "linkgenie cache ls [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:      "clear",
				Usage:     "Remove every cached bookmark and listing",
				UsageText: "linkgenie cache clear",
				Action:    cmd.runClear,
			},
		},
	})

	return app
}

func (cmd *CacheCmd) runList(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if !cmd.app.Config.Cache.IsEnabled() {
		p.Warnf("the cache is disabled (cache.enabled: false)")
		return nil
	}

	cached, err := cmd.app.Bookmarks.Cached(ctx)
	if err != nil {
		return err
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, b := range cached {
			if err := iojson.WriteLine(out, b); err != nil {
				return fmt.Errorf("encode bookmark: %w", err)
			}
		}
		return nil
	}

	if len(cached) == 0 {
		p.Infof("The cache is empty")
		return nil
	}

	now := time.Now()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tURL\tEXPIRES")
	for _, b := range cached {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", b.ID, b.DisplayTitle(), b.URL, expiresIn(b.ExpiresAt, now))
	}
	return w.Flush()
}

func expiresIn(at *time.Time, now time.Time) string {
	switch {
	case at == nil:
		return "never"
	case !at.After(now):
		return "expired"
	default:
		return "in " + at.Sub(now).Round(time.Minute).String()
	}
}

func (cmd *CacheCmd) runClear(ctx context.Context, _ *cli.Command) error {
	n, err := cmd.app.Bookmarks.ClearCache(ctx)
	if err != nil {
		return err
	}
	printer.Ctx(ctx).Successf("removed %d cached entries", n)
	return nil
}
