package rebridge

import (
	"errors"
	"fmt"
)

// ErrNil is the neutral form of a nil Redis reply. Drivers translate
// their own sentinel (redigo's redis.ErrNil, go-redis's redis.Nil) into
// this one so callers never depend on a native client type.
var ErrNil = errors.New("rebridge: nil reply")

// ErrClosed is returned by operations on a closed cursor or subscription.
var ErrClosed = errors.New("rebridge: closed")

// CrossSlotError reports a clustered multi-key operation whose keys do
// not all hash to the same slot. The command was not sent.
type CrossSlotError struct {
	Command string
}

func (e *CrossSlotError) Error() string {
	return fmt.Sprintf("rebridge: %s can only be executed when all keys map to the same slot", e.Command)
}

// ArgError reports invalid use of the neutral API, detected before any
// command is issued.
type ArgError struct {
	Reason string
}

// NewArgError returns an ArgError with the given reason.
func NewArgError(reason string) *ArgError {
	return &ArgError{Reason: reason}
}

func (e *ArgError) Error() string {
	return "rebridge: " + e.Reason
}

// CommandError is the generic data-access error every native client
// failure is rewrapped into, tagged with the driver and the command that
// produced it.
type CommandError struct {
	Driver  string
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("rebridge: %s %s: %v", e.Driver, e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
