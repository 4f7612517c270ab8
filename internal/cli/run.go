package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/sysbuild/pkg/errors"
	"github.com/matzehuels/sysbuild/pkg/history"
	"github.com/matzehuels/sysbuild/pkg/manifest"
	"github.com/matzehuels/sysbuild/pkg/observability"
	"github.com/matzehuels/sysbuild/pkg/system"
)

// runOptions holds flags for the run command.
type runOptions struct {
	noHistory bool
	quiet     bool
}

// runCommand creates the run command.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [manifest]",
		Short: "Build every system of a manifest in dependency order",
		Long: `Build every system of a manifest in dependency order.

Each system runs exactly once, after all of the systems it depends on. The
pass stops at the first failing system. Every pass is recorded in the run
history unless --no-history is given.

The manifest defaults to systems.toml in the current directory.`,
		Example: `  # Build the systems in ./systems.toml
  sysbuild run

  # Build quietly, showing only progress
  sysbuild run engine.toml --quiet`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), manifestPath(args), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "do not record this run")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "discard system output and show a spinner instead")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, path string, opts runOptions) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	m, err := manifest.Load(path)
	if err != nil {
		return err
	}

	store, err := c.openStore(ctx, opts.noHistory)
	if err != nil {
		return err
	}
	defer store.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	record := history.NewRecord(abs, history.Hash(m.Source))

	var rec runRecorder
	factory := &manifest.CommandFactory{Ctx: ctx, Stdout: os.Stdout, Stderr: os.Stderr, BaseDir: m.Dir}
	if opts.quiet {
		factory.Stdout, factory.Stderr = io.Discard, io.Discard
	}

	b, err := newBuilder(ctx, m, rec.wrap(factory.Routine))
	if err == nil {
		record.Planned, err = b.Plan()
	}
	if err == nil {
		err = c.build(ctx, b, len(record.Planned), opts.quiet)
	}

	record.Executed, record.Failed = rec.result()
	if name, ok := system.MissingSystem(err); ok {
		record.Failed = name
	}
	record.Finish(err)
	c.saveRecord(ctx, store, record)

	if errors.Is(err, context.Canceled) {
		return err
	}
	if len(record.Planned) > 0 {
		printOutcome(record.Planned, record.Executed, record.Failed)
	}
	if err != nil {
		printError("Build failed after %s", pluralize(len(record.Executed), "system"))
		return err
	}

	prog.done("Built " + pluralize(len(record.Executed), "system"))
	printSuccess("Built %s", pluralize(len(record.Executed), "system"))
	if !opts.noHistory {
		printDetail("Run %s", record.ID)
	}
	return nil
}

// build runs b, with a spinner following the current system when quiet.
func (c *CLI) build(ctx context.Context, b *system.Builder, total int, quiet bool) error {
	if !quiet || total == 0 {
		return b.Build(ctx)
	}

	spinner := newSpinnerWithContext(ctx, "Building...")
	observability.SetBuildHooks(&spinnerHooks{spinner: spinner})
	defer observability.SetBuildHooks(logHooks{})

	spinner.Start()
	err := b.Build(ctx)
	spinner.Stop()
	return err
}

// saveRecord stores r. A failing store only warns; the build result stands.
func (c *CLI) saveRecord(ctx context.Context, store history.Store, r *history.Record) {
	if err := store.Save(context.WithoutCancel(ctx), r); err != nil {
		loggerFromContext(ctx).Warn("could not record run", "id", r.ID, "err", errs.UserMessage(err))
	}
}
