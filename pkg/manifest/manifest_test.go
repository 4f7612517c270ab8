package manifest

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	errs "github.com/matzehuels/sysbuild/pkg/errors"
	"github.com/matzehuels/sysbuild/pkg/system"
)

const engineManifest = `
name = "engine"

[[system]]
name = "renderer"
deps = ["window", "assets"]

[[system]]
name = "window"

[[system]]
name = "assets"
deps = ["window"]
env  = { LEVEL = "debug" }
`

func TestParse(t *testing.T) {
	m, err := Parse(strings.NewReader(engineManifest))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if m.Name != "engine" {
		t.Errorf("Name = %q, want engine", m.Name)
	}
	if got := m.Names(); !slices.Equal(got, []string{"renderer", "window", "assets"}) {
		t.Errorf("Names() = %v, want [renderer window assets]", got)
	}

	assets, ok := m.Lookup("assets")
	if !ok {
		t.Fatal("Lookup(assets) not found")
	}
	if assets.Env["LEVEL"] != "debug" {
		t.Errorf("assets.Env = %v, want LEVEL=debug", assets.Env)
	}
	if _, ok := m.Lookup("missing"); ok {
		t.Error("Lookup(missing) should report false")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad toml", `[[system]`},
		{"unknown key", "[[system]]\nname = \"a\"\ndep = [\"b\"]\n"},
		{"empty name", "[[system]]\nname = \"\"\n"},
		{"duplicate name", "[[system]]\nname = \"a\"\n[[system]]\nname = \"a\"\n"},
		{"run and fail", "[[system]]\nname = \"a\"\nrun = [\"true\"]\nfail = \"x\"\n"},
		{"empty command", "[[system]]\nname = \"a\"\nrun = [\"\"]\n"},
		{"dir without run", "[[system]]\nname = \"a\"\ndir = \"sub\"\n"},
		{"bad dependency name", "[[system]]\nname = \"a\"\ndeps = [\" b\"]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if !errs.Is(err, errs.ErrCodeInvalidManifest) {
				t.Errorf("Parse() code = %v, want %v (%v)", errs.GetCode(err), errs.ErrCodeInvalidManifest, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "systems.toml")
	if err := os.WriteFile(path, []byte(engineManifest), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if m.Dir != dir {
		t.Errorf("Dir = %q, want %q", m.Dir, dir)
	}
	if string(m.Source) != engineManifest {
		t.Error("Source should hold the raw file contents")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("Load() error = %v, want NOT_FOUND", err)
	}
}

// tracing returns a factory whose routines append their name to calls.
func tracing(calls *[]string) Factory {
	return func(s System) (system.Routine, error) {
		name := s.Name
		return system.RoutineFunc(func() error {
			*calls = append(*calls, name)
			return nil
		}), nil
	}
}

func TestRegisterResolvesForwardReferences(t *testing.T) {
	m, err := Parse(strings.NewReader(engineManifest))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	var calls []string
	b := system.New()
	if err := m.Register(b, tracing(&calls)); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if err := b.Build(t.Context()); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	want := []string{"window", "assets", "renderer"}
	if !slices.Equal(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestRegisterReportsCycle(t *testing.T) {
	m, err := Parse(strings.NewReader(`
[[system]]
name = "a"
deps = ["b"]

[[system]]
name = "b"
deps = ["a"]
`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	var calls []string
	err = m.Register(system.New(), tracing(&calls))
	if !system.IsWouldCycle(err) {
		t.Fatalf("Register() error = %v, want WOULD_CYCLE", err)
	}
	if !strings.Contains(err.Error(), "register b") {
		t.Errorf("error %q should name the failing system", err)
	}
}

func TestRegisterLeavesUnknownDependencyForBuild(t *testing.T) {
	m, err := Parse(strings.NewReader("[[system]]\nname = \"a\"\ndeps = [\"ghost\"]\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	var calls []string
	b := system.New()
	if err := m.Register(b, tracing(&calls)); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	err = b.Build(t.Context())
	if name, ok := system.MissingSystem(err); !ok || name != "ghost" {
		t.Errorf("Build() error = %v, want missing ghost", err)
	}
	if len(calls) != 0 {
		t.Errorf("calls = %v, want none", calls)
	}
}
