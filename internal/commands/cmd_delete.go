package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/riccilnl/linkgenie/internal/core/styles"
	"github.com/riccilnl/linkgenie/internal/linkgenie"
	"github.com/riccilnl/linkgenie/internal/printer"
)

type DeleteCmd struct {
	flags *Flags
	app   *linkgenie.App

	// flags
	yes bool
}

// NewDeleteCmd creates a new delete command
func NewDeleteCmd(flags *Flags, app *linkgenie.App) *DeleteCmd {
	return &DeleteCmd{flags: flags, app: app}
}

// Register adds the delete command to the application
func (cmd *DeleteCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete bookmarks",
		UsageText: "linkgenie delete [--yes] <id>...",
		Description: `Deletes bookmarks on the backend and drops them from the offline cache.
On a terminal the deletion is confirmed first; elsewhere --yes is required.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "delete without asking",
				Destination: &cmd.yes,
			},
		},
		ShellComplete: BookmarkIDCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *DeleteCmd) run(ctx context.Context, c *cli.Command) error {
	ids, err := parseIDs(c.Args())
	if err != nil {
		return err
	}

	if err := cmd.confirm(len(ids)); err != nil {
		return err
	}

	p := printer.Ctx(ctx)

	failed := 0
	for _, id := range ids {
		if err := cmd.app.Bookmarks.Delete(ctx, id); err != nil {
			p.Errorf("delete %d: %v", id, err)
			failed++
			continue
		}
		p.Successf("%s deleted bookmark %d", styles.IconBookmark, id)
	}

	if failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *DeleteCmd) confirm(n int) error {
	if cmd.yes {
		return nil
	}
	if !printer.IsTerminal(os.Stdin) {
		return fmt.Errorf("refusing to delete %d bookmark(s) without --yes", n)
	}

	var confirmed bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Delete %d bookmark(s)?", n)).
		Affirmative("Delete").
		Negative("Cancel").
		Value(&confirmed).
		Run()
	if err != nil {
		return fmt.Errorf("confirm delete: %w", err)
	}
	if !confirmed {
		return fmt.Errorf("delete cancelled")
	}
	return nil
}
