package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/riccilnl/linkgenie/internal/core/config"
	"github.com/riccilnl/linkgenie/internal/core/styles"
	"github.com/riccilnl/linkgenie/internal/printer"
	"github.com/riccilnl/linkgenie/pkg/iojson"
)

type ConfigCmd struct {
	flags *Flags

	// flags
	format string
}

// NewConfigCmd creates the config command group.
func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

// Register adds the config command and its subcommands to the application.
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Inspect and validate configuration",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate the configuration file",
				UsageText:   "linkgenie config validate [--format json]",
				Description: "Checks the backend URL, limits, the list template, the theme, and file paths.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.runValidate,
			},
			{
				Name:        "show",
				Usage:       "Print the effective configuration as YAML",
				UsageText:   "linkgenie config show",
				Description: "Prints the configuration after defaults and LINKGENIE_* overrides are applied. The API token is masked.",
				Action:      cmd.runShow,
			},
		},
	})

	return app
}

func (cmd *ConfigCmd) runShow(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)
	p.Printf("%s", p.Render(styles.MutedStyle, "# "+cmd.flags.ConfigPath))

	enc := yaml.NewEncoder(c.Root().Writer)
	enc.SetIndent(2)
	if err := enc.Encode(cmd.flags.Config.Redacted()); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

func (cmd *ConfigCmd) runValidate(ctx context.Context, c *cli.Command) error {
	result := cmd.flags.Config.Check(cmd.flags.ConfigPath)

	if cmd.format == "json" {
		out := struct {
			Valid    bool                       `json:"valid"`
			Errors   []config.ValidationError   `json:"errors,omitempty"`
			Warnings []config.ValidationWarning `json:"warnings,omitempty"`
			Checks   []config.ValidationCheck   `json:"checks,omitempty"`
		}{
			Valid:    result.IsValid(),
			Errors:   result.Errors,
			Warnings: result.Warnings,
			Checks:   result.Checks,
		}
		if err := iojson.WriteWith(c.Root().Writer, os.Stderr, out); err != nil {
			return err
		}
	} else {
		printValidation(printer.Ctx(ctx), result)
	}

	if !result.IsValid() {
		return cli.Exit("", 1)
	}
	return nil
}

func printValidation(p *printer.Printer, result *config.ValidationResult) {
	for _, check := range result.Checks {
		p.CheckItem(check.Category, check.Message)
		for _, detail := range check.Details {
			p.Printf("      %s", p.Render(styles.MutedStyle, detail))
		}
	}

	for _, w := range result.Warnings {
		p.WarnItem(w.Category+": "+w.Message, w.Item)
	}

	for _, e := range result.Errors {
		p.FailItem(e.Category+": "+e.Message, e.Item)
		if e.Fix != "" {
			p.Printf("      fix: %s", e.Fix)
		}
	}

	p.Printf("")
	if result.IsValid() {
		p.Successf("configuration is valid")
		return
	}
	p.Errorf("%d error(s) found", result.ErrorCount())
}
