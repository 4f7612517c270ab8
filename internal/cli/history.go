package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sysbuild/pkg/history"
)

// historyCommand creates the history management command.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect records of past runs",
		Long: `Inspect records of past runs.

Records are kept as files under the data directory. When SYSBUILD_REDIS_URL
is set they are kept in Redis instead.`,
	}

	cmd.AddCommand(c.historyListCommand())
	cmd.AddCommand(c.historyShowCommand())
	cmd.AddCommand(c.historyClearCommand())
	cmd.AddCommand(c.historyPathCommand())

	return cmd
}

// historyListCommand creates the "history list" subcommand.
func (c *CLI) historyListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openStore(ctx, false)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				printInfo("No runs recorded")
				return nil
			}
			for _, r := range records {
				printRecordLine(r)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to list (0 for all)")

	return cmd
}

// historyShowCommand creates the "history show" subcommand.
func (c *CLI) historyShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := history.ParseID(args[0])
			if err != nil {
				return err
			}

			store, err := c.openStore(ctx, false)
			if err != nil {
				return err
			}
			defer store.Close()

			r, err := store.Load(ctx, id)
			if err != nil {
				return err
			}
			printRecord(r)
			return nil
		},
	}
}

// historyClearCommand creates the "history clear" subcommand.
func (c *CLI) historyClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openStore(ctx, false)
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := clearHistory(ctx, store)
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo("History is empty")
				return nil
			}
			printSuccess("Deleted %s", pluralize(count, "run"))
			return nil
		},
	}
}

// historyPathCommand creates the "history path" subcommand.
func (c *CLI) historyPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the history directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if os.Getenv(redisURLEnv) != "" {
				printWarning("%s is set; runs are recorded in Redis", redisURLEnv)
			}
			dir, err := historyDir()
			if err != nil {
				return fmt.Errorf("get history dir: %w", err)
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	}
}

// clearHistory deletes every record in store and returns how many it removed.
func clearHistory(ctx context.Context, store history.Store) (int, error) {
	records, err := store.List(ctx, 0)
	if err != nil {
		return 0, err
	}
	for i, r := range records {
		if err := store.Delete(ctx, r.ID); err != nil {
			return i, err
		}
	}
	return len(records), nil
}

// =============================================================================
// Record Output
// =============================================================================

// printRecordLine prints a one-line summary of r.
func printRecordLine(r *history.Record) {
	status := styleIconSuccess.Render(iconSuccess)
	if !r.Succeeded() {
		status = styleIconError.Render(iconError)
	}
	when := StyleDim.Render(r.StartedAt.Local().Format("2006-01-02 15:04"))
	summary := fmt.Sprintf("%d/%d", len(r.Executed), len(r.Planned))
	fmt.Fprintf(stdout, "%s %s  %s  %s  %s\n",
		status, StyleHighlight.Render(r.ID.String()), when, StyleNumber.Render(summary), StyleDim.Render(r.Manifest))
}

// printRecord prints every field of r.
func printRecord(r *history.Record) {
	printKeyValue("Run", r.ID.String())
	printKeyValue("Manifest", r.Manifest)
	if r.Digest != "" {
		printKeyValue("Digest", r.Digest[:min(12, len(r.Digest))])
	}
	printKeyValue("Started", r.StartedAt.Local().Format(time.RFC3339))
	if d := r.Duration(); d > 0 {
		printKeyValue("Duration", d.Round(time.Millisecond).String())
	}

	status := StyleSuccess.Render("succeeded")
	if !r.Succeeded() {
		status = StyleError.Render("failed")
		if r.Code != "" {
			status += StyleDim.Render(" (" + strings.ToLower(r.Code) + ")")
		}
	}
	printKeyValue("Status", status)
	if r.Error != "" {
		printKeyValue("Error", r.Error)
	}

	if len(r.Planned) > 0 {
		printNewline()
		printOutcome(r.Planned, r.Executed, r.Failed)
	}
}
