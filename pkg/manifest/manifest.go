// Package manifest loads system definitions from TOML files and registers
// them on a [system.Builder].
//
// A manifest lists systems as an array of tables:
//
//	name = "engine"
//
//	[[system]]
//	name = "renderer"
//	deps = ["window", "assets"]
//	run  = ["./bin/renderer", "--warmup"]
//	env  = { LEVEL = "debug" }
//
//	[[system]]
//	name = "window"
//	run  = ["./bin/window"]
//
// Dependencies may refer to systems defined later in the file. A system with
// neither run nor fail is a marker that succeeds without doing anything.
package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/sysbuild/pkg/errors"
	"github.com/matzehuels/sysbuild/pkg/system"
)

// Manifest is a parsed systems file.
type Manifest struct {
	Name    string   `toml:"name"`
	Systems []System `toml:"system"`

	// Dir is the directory relative run directories resolve against.
	// Load sets it to the manifest's directory.
	Dir string `toml:"-"`
	// Source holds the raw file contents.
	Source []byte `toml:"-"`
}

// System is one [[system]] entry.
type System struct {
	Name string            `toml:"name"`
	Deps []string          `toml:"deps"`
	Run  []string          `toml:"run"`  // argv; empty for marker systems
	Dir  string            `toml:"dir"`  // working directory for run
	Env  map[string]string `toml:"env"`  // added to the inherited environment
	Fail string            `toml:"fail"` // routine fails with this message
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.NewFor(errs.ErrCodeNotFound, path, "manifest %s does not exist", path)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	m, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Dir = filepath.Dir(path)
	m.Source = data
	return m, nil
}

// Parse decodes and validates a manifest. Unknown keys are rejected so typos
// such as "dep" for "deps" do not silently drop dependencies.
func Parse(r io.Reader) (*Manifest, error) {
	var m Manifest
	md, err := toml.NewDecoder(r).Decode(&m)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "decode TOML")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errs.New(errs.ErrCodeInvalidManifest, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks names and per-system settings. Dependency structure, such
// as cycles and unknown names, is left to the builder.
func (m *Manifest) Validate() error {
	seen := make(map[string]struct{}, len(m.Systems))
	for i, s := range m.Systems {
		if err := errs.ValidateSystemName(s.Name); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidManifest, err, "system #%d", i+1)
		}
		if _, dup := seen[s.Name]; dup {
			return errs.NewFor(errs.ErrCodeInvalidManifest, s.Name, "system %q is defined more than once", s.Name)
		}
		seen[s.Name] = struct{}{}

		for _, dep := range s.Deps {
			if err := errs.ValidateSystemName(dep); err != nil {
				return errs.Wrap(errs.ErrCodeInvalidManifest, err, "system %q dependency", s.Name)
			}
		}
		if len(s.Run) > 0 && s.Fail != "" {
			return errs.NewFor(errs.ErrCodeInvalidManifest, s.Name, "system %q sets both run and fail", s.Name)
		}
		if len(s.Run) > 0 && s.Run[0] == "" {
			return errs.NewFor(errs.ErrCodeInvalidManifest, s.Name, "system %q has an empty command", s.Name)
		}
		if s.Dir != "" && len(s.Run) == 0 {
			return errs.NewFor(errs.ErrCodeInvalidManifest, s.Name, "system %q sets dir without run", s.Name)
		}
	}
	return nil
}

// Names returns the system names in file order.
func (m *Manifest) Names() []string {
	names := make([]string, len(m.Systems))
	for i, s := range m.Systems {
		names[i] = s.Name
	}
	return names
}

// Lookup returns the entry named name.
func (m *Manifest) Lookup(name string) (System, bool) {
	i := slices.IndexFunc(m.Systems, func(s System) bool { return s.Name == name })
	if i < 0 {
		return System{}, false
	}
	return m.Systems[i], true
}

// Factory turns a manifest entry into the routine the builder runs.
type Factory func(s System) (system.Routine, error)

// Register adds every system of m to b in file order. Entries without
// dependencies use [system.Builder.AddSystem]; the others use
// [system.Builder.AddSystemWithDeps]. Registration stops at the first error.
func (m *Manifest) Register(b *system.Builder, newRoutine Factory) error {
	for _, s := range m.Systems {
		r, err := newRoutine(s)
		if err != nil {
			return fmt.Errorf("system %s: %w", s.Name, err)
		}
		if len(s.Deps) == 0 {
			_, err = b.AddSystem(s.Name, r)
		} else {
			_, err = b.AddSystemWithDeps(s.Name, r, s.Deps)
		}
		if err != nil {
			return fmt.Errorf("register %s: %w", s.Name, err)
		}
	}
	return nil
}
