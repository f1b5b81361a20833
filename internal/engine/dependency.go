package engine

import (
	"context"
	"fmt"
	"sync"
)

// DependencyState is the resolution outcome of a Dependency.
type DependencyState int

const (
	// StateUnattempted means the resolution function has never run.
	StateUnattempted DependencyState = iota
	// StateResolved means the resolution function succeeded; the value is cached.
	StateResolved
	// StateFailed means the resolution function failed. Failure is terminal:
	// the function is never re-invoked for this instance.
	StateFailed
)

// ResolveFunc produces the external resource a Dependency gates on.
type ResolveFunc func(ctx context.Context) (any, error)

// Dependency is a lazily resolved external resource gate. The resolution
// function runs at most once per instance: success caches the value, failure
// caches the error. Concurrent first callers collapse onto a single attempt
// via the in-flight channel.
type Dependency struct {
	name string
	fn   ResolveFunc

	mu       sync.Mutex
	state    DependencyState
	value    any
	err      error
	inflight chan struct{}
}

// NewDependency creates an unattempted Dependency.
func NewDependency(name string, fn ResolveFunc) *Dependency {
	return &Dependency{name: name, fn: fn}
}

// Name returns the dependency's name, used in "dependency unavailable" responses.
func (d *Dependency) Name() string { return d.name }

// Resolve returns the cached outcome, or runs the resolution function if this
// is the first use. A failed outcome is permanent; Resolve never retries.
func (d *Dependency) Resolve(ctx context.Context) (any, error) {
	for {
		d.mu.Lock()
		switch d.state {
		case StateResolved:
			v := d.value
			d.mu.Unlock()
			return v, nil
		case StateFailed:
			err := d.err
			d.mu.Unlock()
			return nil, err
		}

		if d.inflight != nil {
			// Another goroutine is mid-resolution; wait for it and re-read.
			ch := d.inflight
			d.mu.Unlock()
			select {
			case <-ch:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		ch := make(chan struct{})
		d.inflight = ch
		d.mu.Unlock()

		value, err := d.fn(ctx)

		d.mu.Lock()
		if err != nil {
			d.state = StateFailed
			d.err = fmt.Errorf("dependency %s: %w", d.name, err)
			err = d.err
		} else {
			d.state = StateResolved
			d.value = value
		}
		d.inflight = nil
		close(ch)
		d.mu.Unlock()
		return value, err
	}
}

// Value returns the resolved value. It errors if resolution was never
// attempted or failed; use it only after Resolve (or a Failed check) has
// confirmed success upstream.
func (d *Dependency) Value() (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateResolved {
		return nil, fmt.Errorf("%w: %s", ErrDependencyUnresolved, d.name)
	}
	return d.value, nil
}

// Failed reports whether resolution was attempted and failed.
func (d *Dependency) Failed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == StateFailed
}

// Attempted reports whether resolution has completed, either way.
func (d *Dependency) Attempted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state != StateUnattempted
}

// State returns the current resolution state.
func (d *Dependency) State() DependencyState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}
