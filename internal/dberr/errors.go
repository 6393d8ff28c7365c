// Package dberr defines the domain error taxonomy for dispatch-level
// failures in the database state server. These are business-logic
// errors (missing object, malformed message, stale context) as opposed
// to infrastructure errors (a dropped TCP connection to the bus).
//
// Per the error handling design, none of these are fatal to the
// process: dispatch code logs and drops the offending message rather
// than propagating these up through a panic or process exit.
package dberr

import "fmt"

// Code is the category of a dispatch-level error.
type Code int

const (
	// ErrUnknownField indicates a field id not present in the DC schema
	// for the object's declared class.
	ErrUnknownField Code = iota

	// ErrUnknownClass indicates a class handle the DC schema has no
	// definition for.
	ErrUnknownClass

	// ErrSchemaInconsistent indicates a required field was absent from a
	// SUCCESS database response with no DC-supplied default available.
	ErrSchemaInconsistent

	// ErrStaleContext indicates a database response's context did not
	// match any pending fetch entry (already completed, or never sent).
	ErrStaleContext

	// ErrOutOfRange indicates a DOID outside the server's configured
	// subscription range.
	ErrOutOfRange

	// ErrMalformedMessage indicates a truncated or otherwise unparsable
	// datagram payload.
	ErrMalformedMessage

	// ErrObjectNotFound indicates the database reported FAILURE for a
	// DOID that was expected to exist.
	ErrObjectNotFound

	// ErrNotActive indicates an operation that requires an active object
	// record was attempted against a DOID with none loaded.
	ErrNotActive

	// ErrBusSendFailed indicates a best-effort bus write failed. It never
	// affects DBSS's in-memory state.
	ErrBusSendFailed
)

func (c Code) String() string {
	switch c {
	case ErrUnknownField:
		return "UnknownField"
	case ErrUnknownClass:
		return "UnknownClass"
	case ErrSchemaInconsistent:
		return "SchemaInconsistent"
	case ErrStaleContext:
		return "StaleContext"
	case ErrOutOfRange:
		return "OutOfRange"
	case ErrMalformedMessage:
		return "MalformedMessage"
	case ErrObjectNotFound:
		return "ObjectNotFound"
	case ErrNotActive:
		return "NotActive"
	case ErrBusSendFailed:
		return "BusSendFailed"
	default:
		return "Unknown"
	}
}

// DispatchError is a domain error raised while handling one inbound bus
// message, mirroring the teacher's pkg/metadata.StoreError shape.
type DispatchError struct {
	Code    Code
	Message string
	DOID    uint32 // 0 when not object-scoped
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	if e.DOID != 0 {
		return fmt.Sprintf("%s: %s (doid=%d)", e.Code, e.Message, e.DOID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewUnknownFieldError creates a DispatchError for an unrecognized field id.
func NewUnknownFieldError(doid uint32, fieldID uint16) *DispatchError {
	return &DispatchError{
		Code:    ErrUnknownField,
		Message: fmt.Sprintf("field %d not defined for object's class", fieldID),
		DOID:    doid,
	}
}

// NewUnknownClassError creates a DispatchError for an unrecognized class handle.
func NewUnknownClassError(class uint16) *DispatchError {
	return &DispatchError{
		Code:    ErrUnknownClass,
		Message: fmt.Sprintf("class %d not present in DC schema", class),
	}
}

// NewSchemaInconsistentError creates a DispatchError for a required field
// missing from a SUCCESS database response with no default available.
func NewSchemaInconsistentError(doid uint32, fieldID uint16) *DispatchError {
	return &DispatchError{
		Code:    ErrSchemaInconsistent,
		Message: fmt.Sprintf("required field %d absent from response with no default", fieldID),
		DOID:    doid,
	}
}

// NewStaleContextError creates a DispatchError for a database response
// whose context matches no pending fetch entry.
func NewStaleContextError(dbContext uint32) *DispatchError {
	return &DispatchError{
		Code:    ErrStaleContext,
		Message: fmt.Sprintf("no pending fetch for database context %d", dbContext),
	}
}

// NewMalformedMessageError creates a DispatchError for an unparsable datagram.
func NewMalformedMessageError(reason string) *DispatchError {
	return &DispatchError{
		Code:    ErrMalformedMessage,
		Message: reason,
	}
}

// NewObjectNotFoundError creates a DispatchError for a database FAILURE response.
func NewObjectNotFoundError(doid uint32) *DispatchError {
	return &DispatchError{
		Code:    ErrObjectNotFound,
		Message: "database reports object does not exist",
		DOID:    doid,
	}
}

// NewBusSendFailedError creates a DispatchError for a failed bus write.
func NewBusSendFailedError(doid uint32, cause error) *DispatchError {
	return &DispatchError{
		Code:    ErrBusSendFailed,
		Message: fmt.Sprintf("bus send failed: %v", cause),
		DOID:    doid,
	}
}
