package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// planCommand creates the plan command.
func (c *CLI) planCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "plan [manifest]",
		Short: "Print the build order without running any system",
		Long: `Print the order in which run would build the systems of a manifest.

No system runs. Dependency cycles are reported exactly as run would report
them. Systems that are depended on but never defined are flagged; a real run
fails when it reaches the first of them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlan(cmd.Context(), manifestPath(args), interactive)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse systems and their dependencies in a terminal UI")

	return cmd
}

func (c *CLI) runPlan(ctx context.Context, path string, interactive bool) error {
	_, b, err := loadBuilder(ctx, path)
	if err != nil {
		return err
	}

	g, err := b.Snapshot()
	if err != nil {
		return err
	}
	order, err := b.Plan()
	if err != nil {
		return err
	}
	missing := placeholders(b)

	if interactive {
		model := NewPlanModel(g, order)
		_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		if err != nil {
			return fmt.Errorf("plan browser: %w", err)
		}
		return nil
	}

	printInfo("Build order for %s", StyleHighlight.Render(path))
	printStats(len(order)-len(missing), g.EdgeCount(), len(missing))
	printNewline()
	printOrder(order, missing)

	if len(missing) > 0 {
		printNewline()
		for _, name := range order {
			if missing[name] {
				printWarning("Build will fail at %s: it is never defined", name)
				break
			}
		}
		return nil
	}
	printNewline()
	printNextStep("Run it", "sysbuild run "+path)
	return nil
}
