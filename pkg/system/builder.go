package system

import (
	"io"
	"reflect"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/sysbuild/pkg/errors"
)

// Builder collects systems and their dependencies, then runs them once.
//
// The zero value is not usable - use [New]. A Builder is not safe for
// concurrent use.
type Builder struct {
	table  nodeTable
	graph  *graph
	oracle cycleOracle
	logger *log.Logger
	built  bool
}

// Option configures a [Builder].
type Option func(*Builder)

// WithLogger sets the logger used for debug output about registrations and
// the build pass. Errors are returned, never logged. A nil logger is ignored.
func WithLogger(l *log.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates an empty Builder holding only the root node.
func New(opts ...Option) *Builder {
	b := &Builder{
		table:  make(nodeTable),
		graph:  newGraph(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddSystem registers r under name with no dependencies. If name is already
// known, its routine is replaced and all existing edges are kept.
func (b *Builder) AddSystem(name string, r Routine) (NodeID, error) {
	if err := b.checkRegistration(name, r); err != nil {
		return 0, err
	}
	id, err := b.registerOrUpdate(name, r)
	if err != nil {
		return 0, err
	}
	b.graph.addEdge(rootID, id)
	return id, nil
}

// AddSystemWithDeps registers r under name and declares that every system in
// deps must run before it. Unknown dependency names get a placeholder that
// fails the build unless a system is registered under that name later.
//
// If a dependency would close a cycle the call stops with a WOULD_CYCLE
// error. Registration of name and edges added for earlier entries of deps
// are not undone; the graph stays acyclic. A new system that lists itself is
// rejected before anything is registered.
//
// An empty deps behaves like [Builder.AddSystem].
func (b *Builder) AddSystemWithDeps(name string, r Routine, deps []string) (NodeID, error) {
	if err := b.checkRegistration(name, r); err != nil {
		return 0, err
	}
	for _, dep := range deps {
		if dep == "" {
			return 0, errs.NewFor(errs.ErrCodeInvalidInput, name, "system %q has an empty dependency name", name)
		}
		if _, known := b.table[name]; !known && dep == name {
			return 0, wouldCycleError(name, dep)
		}
	}

	id, err := b.registerOrUpdate(name, r)
	if err != nil {
		return 0, err
	}
	if len(deps) == 0 {
		b.graph.addEdge(rootID, id)
		return id, nil
	}

	for _, dep := range deps {
		depID, created := b.placeholder(dep)
		if !created && b.oracle.reaches(b.graph, id, depID) {
			return id, wouldCycleError(name, dep)
		}
		if b.graph.addEdge(depID, id) {
			b.logger.Debug("added dependency", "system", name, "dependency", dep)
		}
	}
	return id, nil
}

// AddDep is reserved for declaring a dependency between two already
// registered systems. It currently does nothing and always returns nil.
func (b *Builder) AddDep(name, dep string) error {
	return nil
}

// Has reports whether a system or placeholder exists under name.
func (b *Builder) Has(name string) bool {
	if b.built {
		return false
	}
	_, ok := b.table[name]
	return ok
}

// Len returns the number of named nodes, placeholders included.
func (b *Builder) Len() int {
	if b.built {
		return 0
	}
	return len(b.table)
}

// Systems returns the registered names in registration order, placeholders
// included.
func (b *Builder) Systems() []string {
	if b.built {
		return nil
	}
	names := make([]string, 0, len(b.table))
	for _, n := range b.graph.nodes[1:] {
		names = append(names, n.name)
	}
	return names
}

// Dependencies returns the direct dependencies of name in the order they were
// declared. The boolean is false if name is unknown.
func (b *Builder) Dependencies(name string) ([]string, bool) {
	if b.built {
		return nil, false
	}
	id, ok := b.table[name]
	if !ok {
		return nil, false
	}
	var deps []string
	for _, p := range b.graph.in[id] {
		if p != rootID {
			deps = append(deps, b.graph.nodes[p].name)
		}
	}
	return deps, true
}

func (b *Builder) checkRegistration(name string, r Routine) error {
	if b.built {
		return alreadyBuiltError()
	}
	if name == "" {
		return errs.New(errs.ErrCodeInvalidInput, "system name cannot be empty")
	}
	if isNilRoutine(r) {
		return errs.NewFor(errs.ErrCodeInvalidInput, name, "system %q has no routine", name)
	}
	return nil
}

// isNilRoutine catches nil interfaces as well as typed nils such as a nil
// *T or a nil RoutineFunc stored in a Routine.
func isNilRoutine(r Routine) bool {
	if r == nil {
		return true
	}
	switch v := reflect.ValueOf(r); v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
