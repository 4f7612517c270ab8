package system

import (
	"context"
	"time"

	errs "github.com/matzehuels/sysbuild/pkg/errors"
	"github.com/matzehuels/sysbuild/pkg/observability"
)

// Plan returns the names of the systems in the order [Builder.Build] would
// run them, without running anything. The builder stays usable.
func (b *Builder) Plan() ([]string, error) {
	if b.built {
		return nil, alreadyBuiltError()
	}
	order, err := b.order()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(order))
	for i, id := range order {
		names[i] = b.graph.nodes[id].name
	}
	return names, nil
}

// Build consumes the builder and runs every system reachable from the root
// exactly once, each after all of its dependencies. It stops at the first
// routine error and returns it unchanged; systems after that point never run.
//
// ctx is checked before each system starts. Build does not interrupt a
// routine that is already running.
//
// Any later call on the builder returns an ALREADY_BUILT error.
func (b *Builder) Build(ctx context.Context) error {
	if b.built {
		return alreadyBuiltError()
	}
	b.built = true
	defer b.release()

	order, err := b.order()
	if err != nil {
		return err
	}

	hooks := observability.Build()
	hooks.OnBuildStart(ctx, len(order))
	b.logger.Debug("starting build", "systems", len(order), "edges", b.graph.edgeCount())

	start := time.Now()
	executed, err := b.execute(ctx, order)
	hooks.OnBuildComplete(ctx, executed, time.Since(start), err)
	if err != nil {
		return err
	}

	b.logger.Debug("build complete", "systems", executed, "duration", time.Since(start))
	return nil
}

func (b *Builder) execute(ctx context.Context, order []NodeID) (int, error) {
	hooks := observability.Build()
	executed := 0
	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return executed, err
		}
		n := &b.graph.nodes[id]
		b.logger.Debug("running system", "system", n.name)
		hooks.OnSystemStart(ctx, n.name)

		start := time.Now()
		err := n.routine.Run()
		hooks.OnSystemComplete(ctx, n.name, time.Since(start), err)
		if err != nil {
			return executed, err
		}
		executed++
	}
	return executed, nil
}

// order returns the build order without the root.
func (b *Builder) order() ([]NodeID, error) {
	order, ok := b.graph.topoOrder(rootID)
	if !ok {
		return nil, errs.New(errs.ErrCodeInternal, "dependency graph contains a cycle")
	}
	return order[1:], nil
}

// release drops the graph so routines and the closures they hold can be
// collected once the builder is consumed.
func (b *Builder) release() {
	b.graph = nil
	b.table = nil
}
