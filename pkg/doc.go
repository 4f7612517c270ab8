// Package pkg provides the libraries behind sysbuild.
//
// # Overview
//
// Sysbuild runs a set of named systems in dependency order. Systems are
// registered one at a time; each registration either succeeds or is rejected
// because it would close a dependency cycle. A single build pass then runs
// every system exactly once, after all of its dependencies.
//
// # Architecture
//
//	systems.toml
//	     ↓
//	[manifest] (parse, validate, create routines)
//	     ↓
//	[system] Builder (register, reject cycles, plan, build)
//	     ↓                       ↓
//	[history] (run records)    [render] (DOT / SVG)
//
// # Main Packages
//
// [system] - The dependency builder: an arena graph indexed by NodeID, a
// name table, placeholders for systems referenced before they are defined,
// incremental cycle rejection and a deterministic topological build pass.
//
// [manifest] - TOML manifests listing systems, their dependencies and the
// commands their routines run.
//
// [history] - Records of build passes with file, Redis and no-op stores.
//
// [render] - Node-link diagrams of a builder's graph via Graphviz.
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Build and store hooks for logging and metrics.
//
// [buildinfo] - Version information set at link time.
//
// # Quick Start
//
//	b := system.New()
//	b.AddSystem("window", system.RoutineFunc(openWindow))
//	b.AddSystemWithDeps("renderer", system.RoutineFunc(startRenderer), []string{"window"})
//	if err := b.Build(ctx); err != nil {
//	    if name, ok := system.MissingSystem(err); ok {
//	        log.Fatalf("%s was never registered", name)
//	    }
//	    log.Fatal(err)
//	}
//
// # Testing
//
//	go test ./pkg/...                       # All tests
//	go test -run Example ./pkg/system/      # Examples only
//	go test -tags integration ./pkg/...     # Include the Redis store tests
//
// [system]: https://pkg.go.dev/github.com/matzehuels/sysbuild/pkg/system
// [manifest]: https://pkg.go.dev/github.com/matzehuels/sysbuild/pkg/manifest
// [history]: https://pkg.go.dev/github.com/matzehuels/sysbuild/pkg/history
// [render]: https://pkg.go.dev/github.com/matzehuels/sysbuild/pkg/render
// [errors]: https://pkg.go.dev/github.com/matzehuels/sysbuild/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/sysbuild/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/sysbuild/pkg/buildinfo
package pkg
