package logger

import (
	"log/slog"
)

// Standard field keys for structured logging. Use these keys consistently
// across all log statements so aggregation/querying stays uniform.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Bus Message
	// ========================================================================
	KeyMessageType = "msg_type" // bus message type name (GET_ALL, SET_FIELD, ...)
	KeySender      = "sender"   // sender channel of the inbound message
	KeyRecipient   = "recipient"
	KeyChannel     = "channel" // destination channel of an outbound message

	// ========================================================================
	// Object Identity
	// ========================================================================
	KeyDOID   = "doid"  // distributed object id
	KeyClass  = "class" // DC class handle
	KeyParent = "parent"
	KeyZone   = "zone"

	// ========================================================================
	// Database Protocol
	// ========================================================================
	KeyDBContext = "db_context" // database request context
	KeyDBStatus  = "db_status"  // SUCCESS/FAILURE from the database

	// ========================================================================
	// Field Routing
	// ========================================================================
	KeyFieldID    = "field_id"
	KeyFieldCount = "field_count"
	KeyFlags      = "flags"

	// ========================================================================
	// Pending Fetch
	// ========================================================================
	KeyWaiterKind  = "waiter_kind" // ACTIVATE or GETALL
	KeyWaiterCount = "waiter_count"

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorCode  = "error_code"
	KeyReason     = "reason"
)

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// MessageType returns a slog.Attr for the bus message type name
func MessageType(t string) slog.Attr {
	return slog.String(KeyMessageType, t)
}

// Sender returns a slog.Attr for the sender channel
func Sender(ch uint64) slog.Attr {
	return slog.Uint64(KeySender, ch)
}

// Channel returns a slog.Attr for a destination channel
func Channel(ch uint64) slog.Attr {
	return slog.Uint64(KeyChannel, ch)
}

// DOID returns a slog.Attr for a distributed object id
func DOID(doid uint32) slog.Attr {
	return slog.Any(KeyDOID, doid)
}

// Class returns a slog.Attr for a DC class handle
func Class(class uint16) slog.Attr {
	return slog.Any(KeyClass, class)
}

// Parent returns a slog.Attr for a location's parent
func Parent(parent uint32) slog.Attr {
	return slog.Any(KeyParent, parent)
}

// Zone returns a slog.Attr for a location's zone
func Zone(zone uint32) slog.Attr {
	return slog.Any(KeyZone, zone)
}

// DBContext returns a slog.Attr for a database request context
func DBContext(ctx uint32) slog.Attr {
	return slog.Any(KeyDBContext, ctx)
}

// DBStatus returns a slog.Attr for a database response status
func DBStatus(status string) slog.Attr {
	return slog.String(KeyDBStatus, status)
}

// FieldID returns a slog.Attr for a DC field id
func FieldID(id uint16) slog.Attr {
	return slog.Any(KeyFieldID, id)
}

// FieldCount returns a slog.Attr for a number of fields
func FieldCount(n int) slog.Attr {
	return slog.Int(KeyFieldCount, n)
}

// Flags returns a slog.Attr for a formatted flag set
func Flags(f string) slog.Attr {
	return slog.String(KeyFlags, f)
}

// WaiterKind returns a slog.Attr for a pending-fetch waiter kind
func WaiterKind(kind string) slog.Attr {
	return slog.String(KeyWaiterKind, kind)
}

// WaiterCount returns a slog.Attr for the number of waiters on an entry
func WaiterCount(n int) slog.Attr {
	return slog.Int(KeyWaiterCount, n)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric error code
func ErrorCode(code int) slog.Attr {
	return slog.Int(KeyErrorCode, code)
}

// Reason returns a slog.Attr explaining why a message was dropped
func Reason(reason string) slog.Attr {
	return slog.String(KeyReason, reason)
}
