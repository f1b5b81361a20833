package engine

import (
	"context"

	"github.com/r-Techsupport/turingbot/pkg/parallel"
)

// InitializeAll runs the startup pass: for every enabled root, resolve all
// bound dependencies concurrently, then invoke the root's initializer exactly
// once. A dependency failure leaves the root uninitialized (initializer
// skipped, warning logged); an initializer failure permanently clears the
// root's enabled flag. Both are non-fatal and never affect other roots.
// It returns once every root has been processed or skipped.
func (d *Dispatcher) InitializeAll(ctx context.Context) {
	var roots []*Node
	for _, r := range d.tree.Roots() {
		if r.enabled {
			roots = append(roots, r)
		}
	}
	parallel.Each(ctx, roots, 0, func(ctx context.Context, root *Node) error {
		d.initializeRoot(ctx, root)
		return nil
	})
}

func (d *Dispatcher) initializeRoot(ctx context.Context, root *Node) {
	// Initializers run at most once per process, even when the gateway
	// re-emits readiness after a reconnect.
	if root.initialized {
		return
	}
	failures := parallel.Each(ctx, root.Dependencies(), 0, func(ctx context.Context, dep *Dependency) error {
		_, err := dep.Resolve(ctx)
		return err
	})
	if len(failures) > 0 {
		for _, f := range failures {
			d.log.Printf("[WARN] Module %s left uninitialized: %v", root.Name(), f.Err)
		}
		return
	}

	if root.initializer != nil {
		if err := root.initializer(ctx); err != nil {
			root.enabled = false
			ierr := &InitializationError{Root: root.Name(), Err: err}
			d.log.Printf("[ERR] Module disabled: %v", ierr)
			return
		}
	}
	root.initialized = true
}
