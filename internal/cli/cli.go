// Package cli implements the sysbuild command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sysbuild/pkg/buildinfo"
	"github.com/matzehuels/sysbuild/pkg/history"
	"github.com/matzehuels/sysbuild/pkg/manifest"
	"github.com/matzehuels/sysbuild/pkg/observability"
	"github.com/matzehuels/sysbuild/pkg/system"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "sysbuild"

	// redisURLEnv selects the Redis history backend when set.
	redisURLEnv = "SYSBUILD_REDIS_URL"

	// defaultManifest is read when no manifest argument is given.
	defaultManifest = "systems.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// HistoryTTL is how long run records are kept. Zero means the store default.
	HistoryTTL time.Duration
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Sysbuild runs interdependent systems in dependency order",
		Long:         `Sysbuild reads a manifest of named systems and their dependencies, rejects dependency cycles as systems are registered, and runs every system exactly once after all of the systems it depends on.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			observability.SetBuildHooks(logHooks{})
			observability.SetStoreHooks(logHooks{})
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.runCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Manifest Loading
// =============================================================================

// manifestPath returns the manifest argument or the default file name.
func manifestPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultManifest
}

// newBuilder registers the systems of m on a fresh builder. newRoutine may
// be nil when the routines will never run.
func newBuilder(ctx context.Context, m *manifest.Manifest, newRoutine manifest.Factory) (*system.Builder, error) {
	logger := loggerFromContext(ctx)
	if newRoutine == nil {
		newRoutine = inertRoutine
	}

	b := system.New(system.WithLogger(logger))
	if err := m.Register(b, newRoutine); err != nil {
		return nil, err
	}
	logger.Debug("registered systems", "count", b.Len(), "placeholders", len(placeholders(b)))
	return b, nil
}

// loadBuilder reads the manifest at path and registers its systems with
// routines that do nothing, for commands that only inspect the graph.
func loadBuilder(ctx context.Context, path string) (*manifest.Manifest, *system.Builder, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, nil, err
	}
	b, err := newBuilder(ctx, m, nil)
	if err != nil {
		return nil, nil, err
	}
	return m, b, nil
}

// placeholders returns the names referenced as dependencies but never
// registered.
func placeholders(b *system.Builder) map[string]bool {
	g, err := b.Snapshot()
	if err != nil {
		return nil
	}
	missing := make(map[string]bool)
	for _, name := range g.Placeholders() {
		missing[name] = true
	}
	return missing
}

// inertRoutine backs builders that are only planned or drawn.
func inertRoutine(manifest.System) (system.Routine, error) {
	return system.RoutineFunc(func() error { return nil }), nil
}

// =============================================================================
// History Store
// =============================================================================

// openStore picks the history backend: none with noHistory, Redis when
// SYSBUILD_REDIS_URL is set, files under the data directory otherwise.
func (c *CLI) openStore(ctx context.Context, noHistory bool) (history.Store, error) {
	if noHistory {
		return history.NewNullStore(), nil
	}
	if url := os.Getenv(redisURLEnv); url != "" {
		loggerFromContext(ctx).Debug("using redis history", "env", redisURLEnv)
		return history.NewRedisStore(ctx, url, c.HistoryTTL)
	}
	dir, err := historyDir()
	if err != nil {
		return nil, err
	}
	return history.NewFileStore(dir, c.HistoryTTL)
}

// =============================================================================
// Paths
// =============================================================================

// dataDir returns the data directory using XDG standard (~/.local/share/sysbuild/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// historyDir returns where the file store keeps run records.
func historyDir() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "runs"), nil
}
