package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/riccilnl/linkgenie/internal/linkgenie"
	"github.com/riccilnl/linkgenie/internal/printer"
)

type ExportCmd struct {
	flags *Flags
	app   *linkgenie.App

	// flags
	output string
}

// NewExportCmd creates a new export command
func NewExportCmd(flags *Flags, app *linkgenie.App) *ExportCmd {
	return &ExportCmd{flags: flags, app: app}
}

// Register adds the export command to the application
func (cmd *ExportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "export",
		Usage:     "Export all bookmarks as bookmark HTML",
		UsageText: "linkgenie export [--output <file> | --output -]",
		Description: `Downloads every bookmark in the Netscape bookmark format browsers import.
Without --output the file is written to bookmarks_<date>.html in the current
directory. Use --output - to write to stdout.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "destination file, - for stdout",
				Destination: &cmd.output,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ExportCmd) run(ctx context.Context, c *cli.Command) error {
	data, err := cmd.app.Bookmarks.Export(ctx)
	if err != nil {
		return err
	}

	if cmd.output == "-" {
		_, err := c.Root().Writer.Write(data)
		return err
	}

	path := cmd.output
	if path == "" {
		path = exportFileName(time.Now())
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	printer.Ctx(ctx).Successf("exported bookmarks to %s (%d bytes)", path, len(data))
	return nil
}

func exportFileName(now time.Time) string {
	return "bookmarks_" + now.Format(time.DateOnly) + ".html"
}
