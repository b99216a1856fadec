package commands

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/riccilnl/linkgenie/internal/core/styles"
	"github.com/riccilnl/linkgenie/internal/linkgenie"
	"github.com/riccilnl/linkgenie/internal/printer"
	"github.com/riccilnl/linkgenie/pkg/iojson"
)

type FoldersCmd struct {
	flags *Flags
	app   *linkgenie.App

	// flags
	jsonOutput bool
}

// NewFoldersCmd creates a new folders command
func NewFoldersCmd(flags *Flags, app *linkgenie.App) *FoldersCmd {
	return &FoldersCmd{flags: flags, app: app}
}

// Register adds the folders command to the application
func (cmd *FoldersCmd) Register(app *cli.Command) *cli.Command {
	jsonFlag := func() cli.Flag {
		return &cli.BoolFlag{
			Name:        "json",
			Usage:       "output as JSON lines",
			Destination: &cmd.jsonOutput,
		}
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:    "folders",
		Aliases: []string{"folder"},
		Usage:   "Browse bookmark folders",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List folders with their bookmark counts",
				UsageText: "linkgenie folders ls [--json]",
				Flags:     []cli.Flag{jsonFlag()},
				Action:    cmd.runList,
			},
			{
				Name:      "show",
				Usage:     "List the bookmarks in a folder",
				UsageText: "linkgenie folders show [--json] <folder-id>",
				Flags:     []cli.Flag{jsonFlag()},
				Action:    cmd.runShow,
			},
		},
	})

	return app
}

func (cmd *FoldersCmd) runList(ctx context.Context, c *cli.Command) error {
	list, err := cmd.app.Folders.List(ctx)
	if err != nil {
		return err
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, f := range list {
			if err := iojson.WriteLine(out, f); err != nil {
				return fmt.Errorf("encode folder: %w", err)
			}
		}
		return nil
	}

	if len(list) == 0 {
		printer.Ctx(ctx).Infof("No folders found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tBOOKMARKS")
	for _, f := range list {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d\n", f.ID, f.Label(), f.Count)
	}
	_ = w.Flush()
	return nil
}

func (cmd *FoldersCmd) runShow(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected a folder id")
	}
	id, err := strconv.Atoi(c.Args().First())
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid folder id %q", c.Args().First())
	}

	page, err := cmd.app.Folders.Bookmarks(ctx, id)
	if err != nil {
		return err
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, b := range page.Results {
			if err := iojson.WriteLine(out, b); err != nil {
				return fmt.Errorf("encode bookmark: %w", err)
			}
		}
		return nil
	}

	if len(page.Results) == 0 {
		printer.Ctx(ctx).Infof("Folder %d is empty", id)
		return nil
	}

	op := printer.New(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, b := range page.Results {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", b.ID, b.DisplayTitle(), op.Render(styles.URLStyle, b.URL))
	}
	_ = w.Flush()
	return nil
}
