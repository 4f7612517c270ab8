package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/sysbuild/pkg/errors"
	"github.com/matzehuels/sysbuild/pkg/render"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// graphOptions holds flags for the graph command.
type graphOptions struct {
	output   string
	format   string
	detailed bool
	numbered bool
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOptions

	cmd := &cobra.Command{
		Use:   "graph [manifest]",
		Short: "Draw the dependency graph as DOT or SVG",
		Long: `Draw the dependency graph of a manifest.

Without -o the DOT source is written to stdout. With -o the format follows
the file extension (.dot or .svg) unless --format is given. Systems that are
depended on but never defined are drawn dashed.`,
		Example: `  # Print DOT to stdout
  sysbuild graph engine.toml

  # Render SVG, numbering systems by build position
  sysbuild graph engine.toml -o engine.svg --numbered`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), manifestPath(args), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg (default: from extension)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "list dependencies in node labels")
	cmd.Flags().BoolVar(&opts.numbered, "numbered", false, "prefix labels with the build position")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, path string, opts graphOptions) error {
	format, err := graphFormat(opts)
	if err != nil {
		return err
	}

	_, b, err := loadBuilder(ctx, path)
	if err != nil {
		return err
	}
	g, err := b.Snapshot()
	if err != nil {
		return err
	}

	ropts := render.Options{Detailed: opts.detailed}
	if opts.numbered {
		if ropts.Order, err = b.Plan(); err != nil {
			return err
		}
	}

	dot := render.ToDOT(g, ropts)
	data := []byte(dot)
	if format == formatSVG {
		prog := newProgress(loggerFromContext(ctx))
		if data, err = render.RenderSVG(ctx, dot); err != nil {
			return err
		}
		prog.done("Rendered SVG")
	}

	if opts.output == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Wrote %s graph", strings.ToUpper(format))
	printFile(opts.output)
	return nil
}

// graphFormat resolves the output format from the flag or file extension.
func graphFormat(opts graphOptions) (string, error) {
	format := opts.format
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.output)), ".")
	}
	if format == "" || format == "gv" {
		format = formatDOT
	}
	if err := errs.ValidateOutputFormat(format, formatDOT, formatSVG); err != nil {
		return "", err
	}
	if format == formatSVG && opts.output == "" {
		return "", errs.New(errs.ErrCodeInvalidInput, "svg output needs a file (-o)")
	}
	return format, nil
}
