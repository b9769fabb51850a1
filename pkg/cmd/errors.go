package cmd

import (
	"errors"
	"fmt"
)

// Two error families. ConfigurationError is fatal while the tree is being
// built (duplicate names, re-parenting, bad converters) and surfaces
// synchronously to whoever is registering. Invocation errors happen while
// running a command and flow to the dispatcher's error channel instead of
// back into the event source.

// ConfigurationError reports a mistake in command or converter setup.
type ConfigurationError struct {
	Msg string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Msg, e.Err)
	}
	return "configuration error: " + e.Msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func configErrf(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// Sentinels for matching invocation error variants with errors.Is.
var (
	ErrCommandNotFound    = errors.New("command not found")
	ErrNotEnoughArguments = errors.New("not enough arguments")
	ErrConversionFailed   = errors.New("conversion failed")
	ErrCheckFailed        = errors.New("check failed")
)

// InvocationError wraps a failure of one command invocation with the command
// that failed. Emitted on the dispatcher's error channel.
type InvocationError struct {
	Command *Command
	Err     error
}

func (e *InvocationError) Error() string {
	name := "<unresolved>"
	if e.Command != nil {
		name = e.Command.FullName()
	}
	return fmt.Sprintf("command %s: %v", name, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// UncaughtError wraps a fault thrown by a command handler, either a returned
// error or a recovered panic.
type UncaughtError struct {
	Err error
}

func (e *UncaughtError) Error() string { return "uncaught handler error: " + e.Err.Error() }

func (e *UncaughtError) Unwrap() error { return e.Err }
