package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/riccilnl/linkgenie/internal/core/styles"
	"github.com/riccilnl/linkgenie/internal/linkgenie"
	"github.com/riccilnl/linkgenie/internal/printer"
	"github.com/riccilnl/linkgenie/pkg/iojson"
)

type GetCmd struct {
	flags *Flags
	app   *linkgenie.App

	// flags
	jsonOutput bool
	render     bool
}

// NewGetCmd creates a new get command
func NewGetCmd(flags *Flags, app *linkgenie.App) *GetCmd {
	return &GetCmd{flags: flags, app: app}
}

// Register adds the get command to the application
func (cmd *GetCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "get",
		Usage:     "Show a bookmark",
		UsageText: "linkgenie get [--json | --render] <id>",
		Description: `Fetches a bookmark from the backend. When the backend is unreachable the
cached copy is shown instead and a warning is printed.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "render",
				Aliases:     []string{"r"},
				Usage:       "render as formatted markdown",
				Destination: &cmd.render,
			},
		},
		ShellComplete: BookmarkIDCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *GetCmd) run(ctx context.Context, c *cli.Command) error {
	ids, err := parseIDs(c.Args())
	if err != nil {
		return err
	}
	if len(ids) != 1 {
		return fmt.Errorf("expected exactly one bookmark id, got %d", len(ids))
	}

	p := printer.Ctx(ctx)

	b, cached, err := cmd.app.Bookmarks.Lookup(ctx, ids[0])
	if err != nil {
		return err
	}
	if cached {
		p.Warnf("backend unreachable, showing cached copy")
	}

	out := c.Root().Writer

	switch {
	case cmd.jsonOutput:
		return iojson.WriteLine(out, b)
	case cmd.render:
		rendered, err := renderMarkdown(bookmarkMarkdown(b), printer.Width(out, 80))
		if err != nil {
			return err
		}
		_, _ = fmt.Fprint(out, rendered)
		return nil
	}

	op := printer.New(out)
	_, _ = fmt.Fprintln(out, op.Render(styles.TitleStyle, b.DisplayTitle()))
	_, _ = fmt.Fprintln(out, op.Render(styles.URLStyle, b.URL))
	if b.Description != "" {
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, b.Description)
	}
	if len(b.TagNames) > 0 {
		tags := make([]string, len(b.TagNames))
		for i, t := range b.TagNames {
			tags[i] = op.Render(styles.TagStyle.Foreground(styles.TagColor(t)), "#"+t)
		}
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, strings.Join(tags, " "))
	}
	if b.Notes != "" {
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, op.Render(styles.MutedStyle, b.Notes))
	}
	return nil
}
