package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigurationMissing means a root command has no section in the
	// modules config. The root stays registered but permanently disabled.
	ErrConfigurationMissing = errors.New("configuration section missing")

	// ErrDuplicateCommand means a sibling with the same name already exists.
	ErrDuplicateCommand = errors.New("duplicate command name")

	// ErrDependencyUnresolved is returned by Dependency.Value when resolution
	// was never attempted or failed. Callers are expected to gate on
	// Resolve/Failed first.
	ErrDependencyUnresolved = errors.New("dependency not resolved")
)

// InitializationError wraps a root initializer failure. The dispatcher clears
// the root's enabled flag when it sees one.
type InitializationError struct {
	Root string
	Err  error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initializing %s: %v", e.Root, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }
