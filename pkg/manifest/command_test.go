package manifest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	errs "github.com/matzehuels/sysbuild/pkg/errors"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("command routines are exercised with sh")
	}
}

func TestCommandFactoryRunsCommand(t *testing.T) {
	skipWithoutShell(t)

	var stdout bytes.Buffer
	f := &CommandFactory{Ctx: t.Context(), Stdout: &stdout, Env: []string{"PATH=" + os.Getenv("PATH")}}

	r, err := f.Routine(System{
		Name: "greet",
		Run:  []string{"sh", "-c", "echo $GREETING"},
		Env:  map[string]string{"GREETING": "hello"},
	})
	if err != nil {
		t.Fatalf("Routine() error: %v", err)
	}
	if err := r.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != "hello" {
		t.Errorf("stdout = %q, want hello", got)
	}
}

func TestCommandFactoryResolvesDir(t *testing.T) {
	skipWithoutShell(t)

	base := t.TempDir()
	if err := os.Mkdir(filepath.Join(base, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	f := &CommandFactory{Ctx: t.Context(), Stdout: &stdout, BaseDir: base}
	r, err := f.Routine(System{Name: "where", Run: []string{"sh", "-c", "pwd -P"}, Dir: "sub"})
	if err != nil {
		t.Fatalf("Routine() error: %v", err)
	}
	if err := r.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want, _ := filepath.EvalSymlinks(filepath.Join(base, "sub"))
	if got := strings.TrimSpace(stdout.String()); got != want {
		t.Errorf("pwd = %q, want %q", got, want)
	}
}

func TestCommandFactoryCommandFailure(t *testing.T) {
	skipWithoutShell(t)

	f := &CommandFactory{Ctx: t.Context()}
	r, err := f.Routine(System{Name: "broken", Run: []string{"sh", "-c", "exit 3"}})
	if err != nil {
		t.Fatalf("Routine() error: %v", err)
	}

	err = r.Run()
	if !errs.Is(err, errs.ErrCodeRoutineFailed) {
		t.Fatalf("Run() error = %v, want ROUTINE_FAILED", err)
	}
	if !strings.Contains(err.Error(), "system broken") {
		t.Errorf("error %q should name the system", err)
	}
}

func TestCommandFactoryCanceled(t *testing.T) {
	skipWithoutShell(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &CommandFactory{Ctx: ctx}
	r, err := f.Routine(System{Name: "sleepy", Run: []string{"sh", "-c", "sleep 5"}})
	if err != nil {
		t.Fatalf("Routine() error: %v", err)
	}
	if err := r.Run(); err == nil {
		t.Error("Run() with canceled context should fail")
	}
}

func TestCommandFactoryUnknownCommand(t *testing.T) {
	f := &CommandFactory{}
	_, err := f.Routine(System{Name: "ghost", Run: []string{"definitely-not-a-real-binary-4711"}})
	if !errs.Is(err, errs.ErrCodeInvalidManifest) {
		t.Errorf("Routine() error = %v, want INVALID_MANIFEST", err)
	}
}

func TestCommandFactoryFailAndMarker(t *testing.T) {
	f := &CommandFactory{}

	fail, err := f.Routine(System{Name: "window", Fail: "no display"})
	if err != nil {
		t.Fatalf("Routine(fail) error: %v", err)
	}
	err = fail.Run()
	if !errs.Is(err, errs.ErrCodeRoutineFailed) || errs.SubjectOf(err) != "window" {
		t.Errorf("fail routine error = %v, want ROUTINE_FAILED for window", err)
	}
	if errs.UserMessage(err) != "no display" {
		t.Errorf("UserMessage() = %q, want %q", errs.UserMessage(err), "no display")
	}

	marker, err := f.Routine(System{Name: "group"})
	if err != nil {
		t.Fatalf("Routine(marker) error: %v", err)
	}
	if err := marker.Run(); err != nil {
		t.Errorf("marker routine error = %v, want nil", err)
	}
}

func TestCommandFactoryEnvOrder(t *testing.T) {
	f := &CommandFactory{Env: []string{"A=1"}}
	got := f.env(map[string]string{"C": "3", "B": "2"})
	want := []string{"A=1", "B=2", "C=3"}
	if !slices.Equal(got, want) {
		t.Errorf("env() = %v, want %v", got, want)
	}
	if len(f.Env) != 1 {
		t.Error("env() must not modify the base environment")
	}
}
