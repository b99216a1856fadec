package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/riccilnl/linkgenie/internal/core/styles"
	"github.com/riccilnl/linkgenie/internal/core/workflow"
	"github.com/riccilnl/linkgenie/internal/linkgenie"
	"github.com/riccilnl/linkgenie/internal/printer"
	"github.com/riccilnl/linkgenie/pkg/iojson"
)

type WorkflowCmd struct {
	flags *Flags
	app   *linkgenie.App

	// flags
	jsonOutput bool
	bookmarks  []string
}

// NewWorkflowCmd creates a new workflow command
func NewWorkflowCmd(flags *Flags, app *linkgenie.App) *WorkflowCmd {
	return &WorkflowCmd{flags: flags, app: app}
}

// Register adds the workflow command to the application
func (cmd *WorkflowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "workflow",
		Aliases: []string{"wf"},
		Usage:   "Manage bookmark workflows",
		Description: `Workflows run on the backend when bookmarks match their triggers. They are
evaluated in priority order; position 1 runs first.`,
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List workflows in priority order",
				UsageText: "linkgenie workflow ls [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:      "move",
				Usage:     "Move a workflow to a new position",
				UsageText: "linkgenie workflow move <from> <to>",
				Description: `Moves the workflow at position <from> to position <to> and saves the new
priority of every workflow. Positions start at 1 as shown by 'workflow ls'.`,
				Action: cmd.runMove,
			},
			{
				Name:      "toggle",
				Usage:     "Enable or disable a workflow",
				UsageText: "linkgenie workflow toggle <workflow-id>",
				Action:    cmd.runToggle,
			},
			{
				Name:      "apply",
				Usage:     "Run a workflow against existing bookmarks",
				UsageText: "linkgenie workflow apply [--bookmark <id>]... <workflow-id>",
				Description: `Runs the workflow's actions on bookmarks that match its triggers. Without
--bookmark every bookmark is submitted. The backend finishes the run before it
responds.`,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:        "bookmark",
						Aliases:     []string{"b"},
						Usage:       "bookmark id to apply to (repeatable, comma separated)",
						Destination: &cmd.bookmarks,
					},
				},
				Action: cmd.runApply,
			},
		},
	})

	return app
}

func (cmd *WorkflowCmd) runList(ctx context.Context, c *cli.Command) error {
	list, err := cmd.app.Workflows.List(ctx)
	if err != nil {
		return err
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, wf := range list {
			if err := iojson.WriteLine(out, wf); err != nil {
				return fmt.Errorf("encode workflow: %w", err)
			}
		}
		return nil
	}

	if len(list) == 0 {
		printer.Ctx(ctx).Infof("No workflows found")
		return nil
	}

	writeWorkflows(out, list)
	return nil
}

func (cmd *WorkflowCmd) runMove(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("expected <from> and <to> positions")
	}
	from, err := parsePosition(c.Args().Get(0))
	if err != nil {
		return err
	}
	to, err := parsePosition(c.Args().Get(1))
	if err != nil {
		return err
	}

	p := printer.Ctx(ctx)

	list, applied, err := cmd.app.Workflows.Move(ctx, from-1, to-1)
	if err != nil {
		if applied > 0 {
			p.Warnf("%d workflow(s) were updated before the failure; run 'workflow ls' to check the order", applied)
		}
		return err
	}

	p.Successf("%s moved workflow from position %d to %d", styles.IconWorkflow, from, to)
	writeWorkflows(c.Root().Writer, list)
	return nil
}

func (cmd *WorkflowCmd) runToggle(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected a workflow id")
	}
	id, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return fmt.Errorf("invalid workflow id %q", c.Args().First())
	}

	wf, err := cmd.app.Workflows.Toggle(ctx, id)
	if err != nil {
		return err
	}

	state := "disabled"
	if wf.Enabled {
		state = "enabled"
	}
	printer.Ctx(ctx).Successf("workflow %q %s", wf.Name, state)
	return nil
}

func (cmd *WorkflowCmd) runApply(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected a workflow id")
	}
	id, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return fmt.Errorf("invalid workflow id %q", c.Args().First())
	}

	var ids []int
	if len(cmd.bookmarks) > 0 {
		if ids, err = parseIDList(cmd.bookmarks); err != nil {
			return err
		}
	}

	p := printer.Ctx(ctx)

	n, err := cmd.app.Workflows.Apply(ctx, id, ids, cmd.app.Bookmarks.AllIDs)
	if err != nil {
		return err
	}
	if n == 0 {
		p.Infof("No bookmarks to apply workflow %d to", id)
		return nil
	}

	p.Successf("%s applied workflow %d to %d bookmark(s)", styles.IconWorkflow, id, n)
	return nil
}

func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position %q: positions start at 1", s)
	}
	return n, nil
}

func writeWorkflows(out io.Writer, list []workflow.Workflow) {
	op := printer.New(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "POS\tID\tNAME\tMATCHES\tSTATE")
	for i, wf := range list {
		state := op.Render(styles.MutedStyle, "disabled")
		if wf.Enabled {
			state = op.Render(styles.EnabledStyle, "enabled")
		}
		_, _ = fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%s\n", i+1, wf.ID, wf.Name, wf.MatchCount, state)
	}
	_ = w.Flush()
}
