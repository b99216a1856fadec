package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/riccilnl/linkgenie/internal/core/bookmark"
	"github.com/riccilnl/linkgenie/internal/core/enhance"
	"github.com/riccilnl/linkgenie/internal/core/styles"
	"github.com/riccilnl/linkgenie/internal/core/validate"
	"github.com/riccilnl/linkgenie/internal/linkgenie"
	"github.com/riccilnl/linkgenie/internal/printer"
	"github.com/riccilnl/linkgenie/pkg/iojson"
)

type AddCmd struct {
	flags *Flags
	app   *linkgenie.App

	// flags
	title       string
	description string
	notes       string
	tags        []string
	unread      bool
	favorite    bool
	enhance     bool
	force       bool
	jsonOutput  bool
	input       iojson.FileReader[bookmark.Create]
}

// NewAddCmd creates a new add command
func NewAddCmd(flags *Flags, app *linkgenie.App) *AddCmd {
	return &AddCmd{flags: flags, app: app}
}

// Register adds the add command to the application
func (cmd *AddCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "add",
		Usage:     "Save a new bookmark",
		UsageText: "linkgenie add [options] <url>\n   linkgenie add --file bookmark.json",
		Description: `Creates a bookmark on the backend. Fields can be given as flags or as a JSON
document with --file (use '-' for stdin).

The URL is checked first and the command refuses to save a duplicate unless
--force is set. With --enhance the new bookmark is enhanced right away and the
command waits for the result.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Usage: "bookmark title", Destination: &cmd.title},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "bookmark description", Destination: &cmd.description},
			&cli.StringFlag{Name: "notes", Usage: "bookmark notes", Destination: &cmd.notes},
			&cli.StringSliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "tag name (repeatable)", Destination: &cmd.tags},
			&cli.BoolFlag{Name: "unread", Usage: "mark as unread", Destination: &cmd.unread},
			&cli.BoolFlag{Name: "favorite", Usage: "mark as favorite", Destination: &cmd.favorite},
			&cli.BoolFlag{Name: "enhance", Aliases: []string{"e"}, Usage: "enhance the bookmark after saving", Destination: &cmd.enhance},
			&cli.BoolFlag{Name: "force", Usage: "save even if the URL is already bookmarked", Destination: &cmd.force},
			&cli.BoolFlag{Name: "json", Usage: "output the saved bookmark as JSON", Destination: &cmd.jsonOutput},
			cmd.input.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	in, err := cmd.request(c)
	if err != nil {
		return err
	}

	if !cmd.force {
		if err := cmd.checkDuplicate(ctx, p, in.URL); err != nil {
			return err
		}
	}

	b, err := cmd.app.Bookmarks.Create(ctx, in)
	if err != nil {
		return err
	}

	if cmd.jsonOutput {
		if err := iojson.WriteLine(c.Root().Writer, b); err != nil {
			return fmt.Errorf("encode bookmark: %w", err)
		}
	} else {
		p.Successf("%s saved bookmark %d: %s", styles.IconBookmark, b.ID, b.DisplayTitle())
	}

	if !cmd.enhance {
		return nil
	}

	msgs, err := cmd.app.Enhance.Run(ctx, []int{b.ID}, newConsolePresenter(p))
	if err != nil {
		return err
	}
	for _, m := range msgs {
		if m.Outcome != enhance.OutcomeCompleted {
			return cli.Exit("", 1)
		}
	}
	return nil
}

// checkDuplicate refuses URLs that are already saved. On a terminal the user
// is asked whether to save anyway.
func (cmd *AddCmd) checkDuplicate(ctx context.Context, p *printer.Printer, rawURL string) error {
	check, err := cmd.app.Client.Check(ctx, rawURL)
	if err != nil {
		p.Warnf("could not check for duplicates: %v", err)
		return nil
	}
	if !check.AlreadyBookmarked {
		return nil
	}

	existing := rawURL + " is already bookmarked"
	if check.BookmarkID != nil {
		existing = fmt.Sprintf("%s as %d", existing, *check.BookmarkID)
	}

	if cmd.jsonOutput || cmd.input.Provided() || !printer.IsTerminal(os.Stdin) {
		return fmt.Errorf("%s (use --force to save anyway)", existing)
	}

	var confirmed bool
	err = huh.NewConfirm().
		Title(existing + ". Save it again?").
		Affirmative("Save").
		Negative("Cancel").
		Value(&confirmed).
		Run()
	if err != nil {
		return fmt.Errorf("confirm duplicate: %w", err)
	}
	if !confirmed {
		return fmt.Errorf("%s", existing)
	}
	return nil
}

func (cmd *AddCmd) request(c *cli.Command) (bookmark.Create, error) {
	var in bookmark.Create
	if cmd.input.Provided() {
		var err error
		if in, err = cmd.input.Read(); err != nil {
			return in, err
		}
	}

	if c.Args().Present() {
		in.URL = c.Args().First()
	}
	if cmd.title != "" {
		in.Title = cmd.title
	}
	if cmd.description != "" {
		in.Description = cmd.description
	}
	if cmd.notes != "" {
		in.Notes = cmd.notes
	}
	if len(cmd.tags) > 0 {
		in.TagNames = cmd.tags
	}
	in.Unread = in.Unread || cmd.unread
	in.IsFavorite = in.IsFavorite || cmd.favorite

	if err := validate.Create(in); err != nil {
		return in, fmt.Errorf("invalid bookmark: %w", err)
	}
	return in, nil
}
