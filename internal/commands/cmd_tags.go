package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/riccilnl/linkgenie/internal/core/styles"
	"github.com/riccilnl/linkgenie/internal/linkgenie"
	"github.com/riccilnl/linkgenie/internal/printer"
	"github.com/riccilnl/linkgenie/pkg/iojson"
)

type TagsCmd struct {
	flags *Flags
	app   *linkgenie.App

	// flags
	jsonOutput bool
}

// NewTagsCmd creates a new tags command
func NewTagsCmd(flags *Flags, app *linkgenie.App) *TagsCmd {
	return &TagsCmd{flags: flags, app: app}
}

// Register adds the tags command to the application
func (cmd *TagsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "tags",
		Usage: "Inspect the tag vocabulary",
		Commands: []*cli.Command{
			{
				Name:      "stats",
				Usage:     "Show tag counts by category and the most used tags",
				UsageText: "linkgenie tags stats [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runStats,
			},
		},
	})

	return app
}

func (cmd *TagsCmd) runStats(ctx context.Context, c *cli.Command) error {
	stats, err := cmd.app.Client.TagStats(ctx)
	if err != nil {
		return err
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		return iojson.WriteLine(out, stats)
	}

	_, _ = fmt.Fprintf(out, "total %d  core %d  fixed %d  dynamic %d  candidate %d\n",
		stats.Total, stats.Core, stats.Fixed, stats.Dynamic, stats.Candidate)

	if len(stats.TopTags) > 0 {
		op := printer.New(out)
		_, _ = fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, t := range stats.TopTags {
			tag := op.Render(styles.TagStyle.Foreground(styles.TagColor(t.Name)), "#"+t.Name)
			_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", tag, t.Count, t.Category)
		}
		_ = w.Flush()
	}

	if stats.OptimizationNeeded {
		printer.Ctx(ctx).Warnf("more than 50 dynamic tags; consider merging similar tags")
	}
	return nil
}
