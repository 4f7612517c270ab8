package manifest

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	errs "github.com/matzehuels/sysbuild/pkg/errors"
	"github.com/matzehuels/sysbuild/pkg/system"
)

// CommandFactory builds routines that run each system's command as a child
// process.
type CommandFactory struct {
	// Ctx bounds every child process; cancelling it kills running commands.
	// Routines take no arguments, so the factory carries it for them.
	Ctx context.Context

	Stdout io.Writer
	Stderr io.Writer

	// BaseDir resolves relative System.Dir values. Usually Manifest.Dir.
	BaseDir string
	// Env is the inherited environment. Nil means os.Environ().
	Env []string
}

// Routine implements [Factory].
func (f *CommandFactory) Routine(s System) (system.Routine, error) {
	switch {
	case s.Fail != "":
		msg := s.Fail
		name := s.Name
		return system.RoutineFunc(func() error {
			return errs.NewFor(errs.ErrCodeRoutineFailed, name, "%s", msg)
		}), nil
	case len(s.Run) == 0:
		return system.RoutineFunc(func() error { return nil }), nil
	}

	if _, err := exec.LookPath(s.Run[0]); err != nil && !strings.ContainsRune(s.Run[0], filepath.Separator) {
		return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "command %q not found", s.Run[0])
	}

	argv := slices.Clone(s.Run)
	dir := f.dir(s.Dir)
	env := f.env(s.Env)
	name := s.Name
	return system.RoutineFunc(func() error {
		ctx := f.Ctx
		if ctx == nil {
			ctx = context.Background()
		}
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		cmd.Dir = dir
		cmd.Env = env
		cmd.Stdout = f.Stdout
		cmd.Stderr = f.Stderr
		if err := cmd.Run(); err != nil {
			return errs.Wrap(errs.ErrCodeRoutineFailed, err, "system %s: %s", name, strings.Join(argv, " "))
		}
		return nil
	}), nil
}

func (f *CommandFactory) dir(d string) string {
	if d == "" {
		d = "."
	}
	if filepath.IsAbs(d) || f.BaseDir == "" {
		return d
	}
	return filepath.Join(f.BaseDir, d)
}

func (f *CommandFactory) env(extra map[string]string) []string {
	base := f.Env
	if base == nil {
		base = os.Environ()
	}
	env := slices.Clone(base)
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}
