// Package system provides a dependency-ordered construction scheduler.
//
// # Overview
//
// Callers register named units of work ("systems") on a [Builder], declare
// which systems must run before which, and then call [Builder.Build] once to
// run every system exactly once in dependency order. Registrations that would
// introduce a dependency cycle are rejected up front, so a build pass never
// has to deal with one.
//
// # Basic Usage
//
//	b := system.New()
//	_, _ = b.AddSystem("window", system.RoutineFunc(openWindow))
//	_, _ = b.AddSystemWithDeps("renderer", system.RoutineFunc(startRenderer), []string{"window", "assets"})
//	_, _ = b.AddSystem("assets", system.RoutineFunc(loadAssets))
//	if err := b.Build(ctx); err != nil {
//	    return err
//	}
//
// Dependencies may name systems that are not registered yet. The builder
// creates a placeholder for each such name; a later registration under the
// same name replaces the placeholder's routine while keeping its edges. A
// placeholder that is never replaced fails the build with a
// MISSING_DEPENDENT_SYSTEM error before any system depending on it runs.
//
// Registering a name twice replaces the routine of the existing system. Only
// the last routine registered under a name ever runs.
//
// # Graph Model
//
// Systems live in an arena addressed by [NodeID]. Node zero is a synthetic
// root that carries no routine and is never executed. Systems registered
// without dependencies, and all placeholders, hang off the root, so a single
// traversal from the root reaches every system. An edge from A to B means
// "A runs before B".
//
// Before an edge dep→target is committed the builder asks whether target can
// already reach dep; if it can, the edge would close a cycle and the call
// fails with WOULD_CYCLE. Edges added earlier in the same call are kept. A
// new system that names itself as a dependency is not registered at all.
//
// # Execution
//
// [Builder.Build] runs systems in topological order computed with Kahn's
// algorithm over the part of the graph reachable from the root, together with
// anything that part depends on. Ties are
// broken by registration order, so the order is deterministic. Every system
// runs only after all of its direct and transitive dependencies completed
// successfully. The first routine error stops the pass and is returned as-is.
//
// A Builder is single-use: after Build, every registration method returns an
// ALREADY_BUILT error.
//
// # Concurrency
//
// Builder instances are not safe for concurrent use. Routines run in-line on
// the goroutine that calls Build; there is no parallelism between systems.
package system
