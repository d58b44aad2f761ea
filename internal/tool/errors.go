package tool

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrSchemaViolation = errors.New("invalid arguments")
	ErrForbidden       = errors.New("operation not permitted")
)

// Error pairs an error kind with a message that is safe to show callers.
// Handlers build these with failf; anything else that escapes the dispatch
// chain is reported generically so store internals never leak.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func failf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
