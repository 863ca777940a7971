package ctxmenu

import (
	"errors"
	"fmt"
)

// ErrNotFound marks soft lookup failures: updating an unknown configuration
// or command logs an error-flagged record and reports false instead of
// failing the caller.
var ErrNotFound = errors.New("ctxmenu: not found")

// ConfigurationError reports a programmer error at setup time: a missing
// menu id, an absent structure, or a command without its required label.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "ctxmenu: invalid configuration: " + e.Reason
}

// RoutingError reports a bound element referencing a menu id with no
// registered configuration. This is a binding/registration ordering bug and
// is surfaced loudly rather than silently dropped.
type RoutingError struct {
	MenuID string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("ctxmenu: no menu configuration registered for id %q", e.MenuID)
}

// ActionNotFoundError reports a named action reference with no registration
// at invocation time.
type ActionNotFoundError struct {
	Name string
}

func (e *ActionNotFoundError) Error() string {
	return fmt.Sprintf("ctxmenu: action %q is not registered", e.Name)
}

// ActionExecutionError wraps a failure raised by a user-supplied callback,
// annotated with the command label for context.
type ActionExecutionError struct {
	Label string
	Err   error
}

func (e *ActionExecutionError) Error() string {
	return fmt.Sprintf("ctxmenu: action for %q failed: %v", e.Label, e.Err)
}

func (e *ActionExecutionError) Unwrap() error { return e.Err }
