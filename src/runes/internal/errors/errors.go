package errors

import (
	"fmt"
	"time"
)

// ServerStartFailedError indicates that the language server process could not be started.
type ServerStartFailedError struct {
	Cmd string
	Err error
}

// Error is an implementation of the error interface.
func (e *ServerStartFailedError) Error() string {
	return fmt.Sprintf("failed to start language server %q: %v", e.Cmd, e.Err)
}

// Unwrap returns the underlying error.
func (e *ServerStartFailedError) Unwrap() error {
	return e.Err
}

// InitializationFailedError indicates that the LSP initialize handshake did not complete.
type InitializationFailedError struct {
	Err error
}

// Error is an implementation of the error interface.
func (e *InitializationFailedError) Error() string {
	return fmt.Sprintf("language server initialization failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *InitializationFailedError) Unwrap() error {
	return e.Err
}

// TimeoutError indicates that a request did not complete within its deadline.
type TimeoutError struct {
	Method   string
	Duration time.Duration
}

// Error is an implementation of the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request %q timed out after %s", e.Method, e.Duration)
}

// RequestFailedError indicates that the language server answered a request with an error.
type RequestFailedError struct {
	Method  string
	Code    int32
	Message string
}

// Error is an implementation of the error interface.
func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("request %q failed with code %d: %s", e.Method, e.Code, e.Message)
}

// DocumentNotFoundError indicates that a document is not currently tracked.
type DocumentNotFoundError struct {
	Path string
}

// Error is an implementation of the error interface.
func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document %q not found", e.Path)
}

// InvalidPositionError indicates a position outside the 1-indexed coordinate space.
type InvalidPositionError struct {
	Line   uint32
	Column uint32
}

// Error is an implementation of the error interface.
func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("invalid position %d:%d, line and column are 1-indexed", e.Line, e.Column)
}

// SymbolNotFoundError indicates that no symbol with the given name could be resolved.
type SymbolNotFoundError struct {
	Name string
}

// Error is an implementation of the error interface.
func (e *SymbolNotFoundError) Error() string {
	return fmt.Sprintf("symbol %q not found", e.Name)
}

// CapabilityNotSupportedError indicates that the language server does not advertise a capability required by a request.
type CapabilityNotSupportedError struct {
	Capability string
}

// Error is an implementation of the error interface.
func (e *CapabilityNotSupportedError) Error() string {
	return fmt.Sprintf("language server does not support %s", e.Capability)
}
