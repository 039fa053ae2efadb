package radio

import (
	"errors"
	"fmt"
)

// ErrorKind is the category of a radio failure
type ErrorKind int

const (
	// KindScanStart indicates the adapter could not begin observing
	KindScanStart ErrorKind = iota
	// KindScanStop indicates the adapter failed to stop observing
	KindScanStop
	// KindScanRead indicates visible peripherals could not be enumerated
	KindScanRead
	// KindProperty indicates one peripheral's properties could not be read
	KindProperty
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindScanStart:
		return "Scan Start Error"
	case KindScanStop:
		return "Scan Stop Error"
	case KindScanRead:
		return "Scan Read Error"
	case KindProperty:
		return "Property Error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is a failure reported by a radio adapter or peripheral
type Error struct {
	Kind    ErrorKind
	Adapter string // Adapter ID (always set)
	Address string // Peripheral address (KindProperty only)
	Message string
	Err     error // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	subject := e.Adapter
	if e.Address != "" {
		subject = e.Adapter + "/" + e.Address
	}
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %s (caused by: %v)", e.Kind, subject, e.Message, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Kind, subject, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the next scan cycle may succeed where this one
// failed. Only a failed start is terminal for an adapter.
func (e *Error) Retryable() bool {
	return e.Kind != KindScanStart
}

// NewScanStartError creates a KindScanStart error
func NewScanStartError(adapter string, err error) *Error {
	return &Error{Kind: KindScanStart, Adapter: adapter, Message: "cannot start scanning", Err: err}
}

// NewScanStopError creates a KindScanStop error
func NewScanStopError(adapter string, err error) *Error {
	return &Error{Kind: KindScanStop, Adapter: adapter, Message: "cannot stop scanning", Err: err}
}

// NewScanReadError creates a KindScanRead error
func NewScanReadError(adapter string, err error) *Error {
	return &Error{Kind: KindScanRead, Adapter: adapter, Message: "cannot enumerate peripherals", Err: err}
}

// NewPropertyError creates a KindProperty error
func NewPropertyError(adapter, address string, err error) *Error {
	return &Error{Kind: KindProperty, Adapter: adapter, Address: address, Message: "cannot read properties", Err: err}
}

func kindOf(err error) (ErrorKind, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return 0, false
}

// IsScanStart checks if an error is (or wraps) a scan start error
func IsScanStart(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindScanStart
}

// IsScanStop checks if an error is (or wraps) a scan stop error
func IsScanStop(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindScanStop
}

// IsScanRead checks if an error is (or wraps) a scan read error
func IsScanRead(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindScanRead
}

// IsProperty checks if an error is (or wraps) a property error
func IsProperty(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindProperty
}
