package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/riccilnl/linkgenie/internal/core/notify"
	"github.com/riccilnl/linkgenie/internal/core/styles"
	"github.com/riccilnl/linkgenie/internal/linkgenie"
	"github.com/riccilnl/linkgenie/internal/printer"
	"github.com/riccilnl/linkgenie/pkg/iojson"
)

type NotificationsCmd struct {
	flags *Flags
	app   *linkgenie.App

	// flags
	jsonOutput bool
	clear      bool
}

// NewNotificationsCmd creates a new notifications command
func NewNotificationsCmd(flags *Flags, app *linkgenie.App) *NotificationsCmd {
	return &NotificationsCmd{flags: flags, app: app}
}

// Register adds the notifications command to the application
func (cmd *NotificationsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "notifications",
		Aliases:   []string{"notif"},
		Usage:     "Show recent notifications",
		UsageText: "linkgenie notifications [--json] [--clear]",
		Description: `Shows the notification history, newest first. Enhancement results and
workflow changes are recorded here. Only the most recent
notifications.retention entries are kept.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "clear",
				Usage:       "delete all notifications",
				Destination: &cmd.clear,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *NotificationsCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.clear {
		if err := cmd.app.Notifications.Clear(ctx); err != nil {
			return fmt.Errorf("clear notifications: %w", err)
		}
		p.Successf("notifications cleared")
		return nil
	}

	history, err := cmd.app.Notifications.History(ctx)
	if err != nil {
		return fmt.Errorf("load notifications: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, n := range history {
			if err := iojson.WriteLine(out, n); err != nil {
				return fmt.Errorf("encode notification: %w", err)
			}
		}
		return nil
	}

	if len(history) == 0 {
		p.Infof("%s No notifications", styles.IconBell)
		return nil
	}

	op := printer.New(out)
	for _, n := range history {
		ts := op.Render(styles.MutedStyle, n.CreatedAt.Local().Format("2006-01-02 15:04"))
		_, _ = fmt.Fprintf(out, "%s %s %s\n", ts, levelBadge(op, n.Level), n.Message)
	}
	return nil
}

func levelBadge(p *printer.Printer, level notify.Level) string {
	switch level {
	case notify.LevelError:
		return p.Render(styles.ErrorStyle, styles.IconCross)
	case notify.LevelWarning:
		return p.Render(styles.WarningStyle, styles.IconWarning)
	default:
		return p.Render(styles.SuccessStyle, styles.IconCheck)
	}
}
