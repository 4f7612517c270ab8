package system

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sysbuild/pkg/observability"
)

// assertBefore fails if a does not appear before b in order.
func assertBefore(t *testing.T, order []string, a, b string) {
	t.Helper()
	ia, ib := slices.Index(order, a), slices.Index(order, b)
	if ia < 0 || ib < 0 {
		t.Errorf("order %v is missing %q or %q", order, a, b)
		return
	}
	if ia >= ib {
		t.Errorf("order %v: %q should run before %q", order, a, b)
	}
}

func TestBuildEndToEnd(t *testing.T) {
	var rec recorder
	b := New()

	mustAdd(t, b, "test", rec.routine("test"))
	mustAdd(t, b, "testing", rec.routine("testing"))
	mustAdd(t, b, "test1", rec.routine("test1"), "testing")
	mustAdd(t, b, "test4", rec.routine("test4"), "test")
	mustAdd(t, b, "test3", rec.routine("test3"), "test2")
	mustAdd(t, b, "test5", rec.routine("test5"), "test2")
	mustAdd(t, b, "test2", rec.routine("test2"), "test4")

	plan, err := b.Plan()
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	if err := b.Build(t.Context()); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if !slices.Equal(rec.calls, plan) {
		t.Errorf("Build ran %v, Plan promised %v", rec.calls, plan)
	}
	if len(rec.calls) != 7 {
		t.Fatalf("ran %d systems, want 7: %v", len(rec.calls), rec.calls)
	}
	assertBefore(t, rec.calls, "testing", "test1")
	assertBefore(t, rec.calls, "test", "test4")
	assertBefore(t, rec.calls, "test4", "test2")
	assertBefore(t, rec.calls, "test2", "test3")
	assertBefore(t, rec.calls, "test2", "test5")

	want := []string{"test", "testing", "test1", "test4", "test2", "test3", "test5"}
	if !slices.Equal(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
}

func TestBuildDiamondWaitsForAllDependencies(t *testing.T) {
	var rec recorder
	b := New()

	// "present" is registered before its slow branch exists, which a plain
	// depth-first walk from the root would get wrong.
	mustAdd(t, b, "present", rec.routine("present"), "fast", "slow")
	mustAdd(t, b, "fast", rec.routine("fast"), "window")
	mustAdd(t, b, "window", rec.routine("window"))
	mustAdd(t, b, "shaders", rec.routine("shaders"), "window")
	mustAdd(t, b, "slow", rec.routine("slow"), "shaders")

	if err := b.Build(t.Context()); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	assertBefore(t, rec.calls, "window", "fast")
	assertBefore(t, rec.calls, "window", "shaders")
	assertBefore(t, rec.calls, "shaders", "slow")
	assertBefore(t, rec.calls, "fast", "present")
	assertBefore(t, rec.calls, "slow", "present")
	if rec.calls[len(rec.calls)-1] != "present" {
		t.Errorf("calls = %v, present should run last", rec.calls)
	}
}

func TestBuildRunsEachSystemOnce(t *testing.T) {
	var rec recorder
	b := New()
	mustAdd(t, b, "core", rec.routine("core"))
	mustAdd(t, b, "a", rec.routine("a"), "core")
	mustAdd(t, b, "b", rec.routine("b"), "core", "a")
	mustAdd(t, b, "c", rec.routine("c"), "a", "b", "core")

	if err := b.Build(t.Context()); err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if !slices.Equal(rec.calls, []string{"core", "a", "b", "c"}) {
		t.Errorf("calls = %v, want [core a b c]", rec.calls)
	}
}

func TestBuildStopsAtFirstError(t *testing.T) {
	var rec recorder
	boom := errors.New("boom")
	b := New()
	mustAdd(t, b, "a", rec.routine("a"))
	mustAdd(t, b, "b", rec.failing("b", boom))
	mustAdd(t, b, "c", rec.routine("c"))
	mustAdd(t, b, "d", rec.routine("d"), "b")

	err := b.Build(t.Context())
	if !errors.Is(err, boom) {
		t.Fatalf("Build() error = %v, want %v", err, boom)
	}
	if err != boom {
		t.Errorf("Build() should return the routine error unchanged, got %v", err)
	}
	if !slices.Equal(rec.calls, []string{"a", "b"}) {
		t.Errorf("calls = %v, want [a b]", rec.calls)
	}
}

func TestBuildEmpty(t *testing.T) {
	if err := New().Build(t.Context()); err != nil {
		t.Errorf("Build() on empty builder error: %v", err)
	}
}

func TestBuildCanceledContext(t *testing.T) {
	var rec recorder
	b := New()
	mustAdd(t, b, "a", rec.routine("a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.Build(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Build() error = %v, want context.Canceled", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("calls = %v, want none", rec.calls)
	}
}

func TestBuildCancelBetweenSystems(t *testing.T) {
	var rec recorder
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := New()
	mustAdd(t, b, "a", RoutineFunc(func() error {
		rec.calls = append(rec.calls, "a")
		cancel()
		return nil
	}))
	mustAdd(t, b, "b", rec.routine("b"))

	if err := b.Build(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Build() error = %v, want context.Canceled", err)
	}
	if !slices.Equal(rec.calls, []string{"a"}) {
		t.Errorf("calls = %v, want [a]", rec.calls)
	}
}

type hookRecorder struct {
	observability.NoopBuildHooks
	events []string
}

func (h *hookRecorder) OnBuildStart(_ context.Context, n int) {
	h.events = append(h.events, "start")
}

func (h *hookRecorder) OnSystemStart(_ context.Context, name string) {
	h.events = append(h.events, "+"+name)
}

func (h *hookRecorder) OnSystemComplete(_ context.Context, name string, _ time.Duration, err error) {
	if err != nil {
		h.events = append(h.events, "!"+name)
		return
	}
	h.events = append(h.events, "-"+name)
}

func (h *hookRecorder) OnBuildComplete(_ context.Context, executed int, _ time.Duration, err error) {
	h.events = append(h.events, "done")
}

func TestBuildEmitsHooks(t *testing.T) {
	hooks := &hookRecorder{}
	observability.SetBuildHooks(hooks)
	defer observability.Reset()

	var rec recorder
	b := New()
	mustAdd(t, b, "a", rec.routine("a"))
	mustAdd(t, b, "b", rec.failing("b", errors.New("nope")), "a")

	_ = b.Build(t.Context())

	want := []string{"start", "+a", "-a", "+b", "!b", "done"}
	if !slices.Equal(hooks.events, want) {
		t.Errorf("events = %v, want %v", hooks.events, want)
	}
}

func TestBuildLogsAtDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	var rec recorder
	b := New(WithLogger(logger))
	mustAdd(t, b, "physics", rec.routine("physics"), "input")
	mustAdd(t, b, "input", rec.routine("input"))
	if err := b.Build(t.Context()); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"created placeholder", "resolved placeholder", "running system", "build complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestBuildSilentByDefault(t *testing.T) {
	b := New(WithLogger(nil))
	if b.logger == nil {
		t.Fatal("WithLogger(nil) should keep the default logger")
	}
	if err := b.Build(t.Context()); err != nil {
		t.Errorf("Build() error: %v", err)
	}
}
