package commands

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/riccilnl/linkgenie/internal/core/bookmark"
	"github.com/riccilnl/linkgenie/internal/core/enhance"
	"github.com/riccilnl/linkgenie/internal/core/styles"
	"github.com/riccilnl/linkgenie/internal/linkgenie"
	"github.com/riccilnl/linkgenie/internal/printer"
	"github.com/riccilnl/linkgenie/pkg/iojson"
)

type EnhanceCmd struct {
	flags *Flags
	app   *linkgenie.App

	// flags
	jsonOutput bool
	timeout    time.Duration
}

// NewEnhanceCmd creates a new enhance command
func NewEnhanceCmd(flags *Flags, app *linkgenie.App) *EnhanceCmd {
	return &EnhanceCmd{flags: flags, app: app}
}

// Register adds the enhance command to the application
func (cmd *EnhanceCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "enhance",
		Usage:     "Request AI enhancement for bookmarks and wait for the result",
		UsageText: "linkgenie enhance [--json] <id>...",
		Description: `Asks the backend to enhance each bookmark, then polls until the title and
description are filled in, the attempt budget runs out, or polling fails.

Progress is written to stderr. Use --json to write one result per bookmark to
stdout. Exits non-zero when any bookmark failed.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output results as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "give up waiting after this long (0 waits for every session)",
				Destination: &cmd.timeout,
			},
		},
		ShellComplete: BookmarkIDCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *EnhanceCmd) run(ctx context.Context, c *cli.Command) error {
	ids, err := parseIDs(c.Args())
	if err != nil {
		return err
	}

	if cmd.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.timeout)
		defer cancel()
	}

	p := printer.Ctx(ctx)
	for _, id := range ids {
		p.Pendingf("%s bookmark %d: enhancing", styles.IconSparkles, id)
	}

	msgs, startErr := cmd.app.Enhance.Run(ctx, ids, newConsolePresenter(p))

	if cmd.jsonOutput {
		out := c.Root().Writer
		for _, m := range msgs {
			if err := iojson.WriteLine(out, newEnhanceResult(m)); err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
		}
	}

	failed := 0
	for _, m := range msgs {
		if m.Outcome != enhance.OutcomeCompleted {
			failed++
		}
	}
	if startErr != nil {
		p.Errorf("%v", startErr)
	}
	if failed > 0 || startErr != nil {
		return cli.Exit("", 1)
	}
	return nil
}

type enhanceResult struct {
	BookmarkID int     `json:"bookmark_id"`
	Outcome    string  `json:"outcome"`
	Message    string  `json:"message"`
	Attempts   int     `json:"attempts"`
	Error      *string `json:"error,omitempty"`
}

func newEnhanceResult(m enhance.Message) enhanceResult {
	r := enhanceResult{
		BookmarkID: m.BookmarkID,
		Outcome:    string(m.Outcome),
		Message:    m.Text,
		Attempts:   m.Attempts,
	}
	if m.Err != nil {
		s := m.Err.Error()
		r.Error = &s
	}
	return r
}

// consolePresenter prints content changes and final statuses as they arrive.
type consolePresenter struct {
	p *printer.Printer

	mu   sync.Mutex
	seen map[int]bookmark.Bookmark
}

func newConsolePresenter(p *printer.Printer) *consolePresenter {
	return &consolePresenter{p: p, seen: make(map[int]bookmark.Bookmark)}
}

func (c *consolePresenter) ItemUpdated(b bookmark.Bookmark) {
	c.mu.Lock()
	prev, ok := c.seen[b.ID]
	c.seen[b.ID] = b
	c.mu.Unlock()

	if ok && prev.SameContent(b) {
		return
	}
	if b.Title != "" {
		c.p.Infof("bookmark %d: %s", b.ID, c.p.Render(styles.TitleStyle, b.Title))
	}
}

func (c *consolePresenter) StatusMessage(msg enhance.Message) {
	switch {
	case msg.Outcome == enhance.OutcomeCompleted:
		c.p.Successf("bookmark %d: %s", msg.BookmarkID, msg.Text)
	case msg.Outcome.IsFailure() && msg.Err != nil:
		c.p.Errorf("bookmark %d: %s: %v", msg.BookmarkID, msg.Text, msg.Err)
	case msg.Outcome.IsFailure():
		c.p.Errorf("bookmark %d: %s", msg.BookmarkID, msg.Text)
	default:
		c.p.Warnf("bookmark %d: %s", msg.BookmarkID, msg.Text)
	}
}
