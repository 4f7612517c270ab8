package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/matzehuels/sysbuild/pkg/manifest"
	"github.com/matzehuels/sysbuild/pkg/observability"
	"github.com/matzehuels/sysbuild/pkg/system"
)

// runRecorder notes which systems ran and which one failed, for the history
// record of a build pass.
type runRecorder struct {
	mu       sync.Mutex
	executed []string
	failed   string
}

// wrap returns a factory whose routines report to r before returning.
func (r *runRecorder) wrap(next manifest.Factory) manifest.Factory {
	return func(s manifest.System) (system.Routine, error) {
		inner, err := next(s)
		if err != nil {
			return nil, err
		}
		name := s.Name
		return system.RoutineFunc(func() error {
			if err := inner.Run(); err != nil {
				r.fail(name)
				return err
			}
			r.ran(name)
			return nil
		}), nil
	}
}

func (r *runRecorder) ran(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executed = append(r.executed, name)
}

func (r *runRecorder) fail(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = name
}

// result returns the executed systems in run order and the failed one, if any.
func (r *runRecorder) result() ([]string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.executed...), r.failed
}

// spinnerHooks shows the running system on a spinner.
type spinnerHooks struct {
	observability.NoopBuildHooks
	spinner *Spinner
	total   int
	started int
}

func (h *spinnerHooks) OnBuildStart(_ context.Context, systems int) {
	h.total = systems
}

func (h *spinnerHooks) OnSystemStart(_ context.Context, name string) {
	h.started++
	h.spinner.SetMessage(fmt.Sprintf("Building %s (%d/%d)", name, h.started, h.total))
}

// logHooks logs each finished system at debug level.
type logHooks struct {
	observability.NoopBuildHooks
}

func (logHooks) OnSystemComplete(ctx context.Context, name string, d time.Duration, err error) {
	logger := loggerFromContext(ctx)
	if err != nil {
		logger.Debug("system failed", "system", name, "duration", d.Round(time.Millisecond), "err", err)
		return
	}
	logger.Debug("system done", "system", name, "duration", d.Round(time.Millisecond))
}

func (logHooks) OnRecordSaved(ctx context.Context, backend string, size int) {
	loggerFromContext(ctx).Debug("saved run record", "backend", backend, "bytes", size)
}

func (logHooks) OnRecordLoaded(ctx context.Context, backend string) {
	loggerFromContext(ctx).Debug("loaded run record", "backend", backend)
}

func (logHooks) OnRecordMissing(ctx context.Context, backend string) {
	loggerFromContext(ctx).Debug("run record not found", "backend", backend)
}
