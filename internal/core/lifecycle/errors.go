package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// Discovery errors

	ErrDuplicateHandler = errors.New("duplicate lifecycle handler")
	ErrInvalidHandler   = errors.New("invalid lifecycle handler")
	ErrInvalidMarker    = errors.New("lifecycle marker has no target type")
	ErrUnknownKind      = errors.New("unknown event kind")
	ErrNilModule        = errors.New("module is nil")
	ErrModuleNotFound   = errors.New("module not found")

	// Dispatch errors

	ErrLoadFailed   = errors.New("load pass failed")
	ErrArgumentType = errors.New("handler argument mismatch")
	ErrNilEntity    = errors.New("entity is nil")
)

// PanicError is a recovered handler panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic: %v", e.Value)
}

// Unwrap exposes the panic value when it was an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
