package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/riccilnl/linkgenie/internal/core/doctor"
	"github.com/riccilnl/linkgenie/internal/core/styles"
	"github.com/riccilnl/linkgenie/internal/linkgenie"
	"github.com/riccilnl/linkgenie/internal/printer"
	"github.com/riccilnl/linkgenie/pkg/iojson"
)

type DoctorCmd struct {
	flags   *Flags
	app     *linkgenie.App
	format  string
	autofix bool
}

func NewDoctorCmd(flags *Flags, app *linkgenie.App) *DoctorCmd {
	return &DoctorCmd{flags: flags, app: app}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your linkgenie setup",
		UsageText:   "linkgenie doctor [options]",
		Description: "Runs diagnostic checks on configuration, local storage, the offline cache, and the backend connection.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "autofix",
				Usage:       "automatically fix issues (e.g., create the data directory, sweep expired cache entries)",
				Destination: &cmd.autofix,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	results := cmd.app.Doctor.RunChecks(ctx, cmd.flags.ConfigPath, cmd.autofix)

	if cmd.format == "json" {
		return cmd.outputJSON(c, results)
	}

	return cmd.outputText(ctx, results)
}

func (cmd *DoctorCmd) outputJSON(c *cli.Command, results []doctor.Result) error {
	tally := doctor.Summarize(results)

	out := struct {
		Healthy bool            `json:"healthy"`
		Summary doctor.Tally    `json:"summary"`
		Checks  []doctor.Result `json:"checks"`
	}{
		Healthy: tally.Healthy(),
		Summary: tally,
		Checks:  results,
	}

	if err := iojson.WriteWith(c.Root().Writer, os.Stderr, out); err != nil {
		return err
	}
	if !tally.Healthy() {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *DoctorCmd) outputText(ctx context.Context, results []doctor.Result) error {
	p := printer.Ctx(ctx)

	p.Printf("")
	p.Section("linkgenie doctor")
	p.Printf("")

	for _, result := range results {
		p.Printf("%s %s", p.Render(styles.TitleStyle, result.Name),
			p.Render(styles.MutedStyle, result.Elapsed.Round(time.Millisecond).String()))

		for _, item := range result.Items {
			switch item.Status {
			case doctor.StatusPass:
				p.CheckItem(item.Label, item.Detail)
			case doctor.StatusWarn:
				p.WarnItem(item.Label, item.Detail)
			case doctor.StatusFail:
				p.FailItem(item.Label, item.Detail)
			}
		}

		p.Printf("")
	}

	tally := doctor.Summarize(results)
	p.Printf("%s  %s  %s",
		p.Render(styles.SuccessStyle, fmt.Sprintf("%d passed", tally.Passed)),
		p.Render(styles.WarningStyle, fmt.Sprintf("%d warnings", tally.Warned)),
		p.Render(styles.ErrorStyle, fmt.Sprintf("%d failed", tally.Failed)),
	)

	if !cmd.autofix && tally.Fixable > 0 {
		p.Printf("")
		p.Printf("%s", p.Render(styles.MutedStyle, fmt.Sprintf("Run 'linkgenie doctor --autofix' to fix %d issue(s)", tally.Fixable)))
	}

	if !tally.Healthy() {
		return cli.Exit("", 1)
	}

	return nil
}
