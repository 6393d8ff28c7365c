package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for dispatch-level spans. These follow OpenTelemetry
// semantic convention style (dot-namespaced) even though none of them
// are part of an official semconv package.
const (
	AttrMessageType = "dbss.msg_type"
	AttrSender      = "dbss.sender"
	AttrDOID        = "dbss.doid"
	AttrClass       = "dbss.class"
	AttrParent      = "dbss.parent"
	AttrZone        = "dbss.zone"

	AttrDBContext = "dbss.db_context"
	AttrDBStatus  = "dbss.db_status"

	AttrFieldID    = "dbss.field_id"
	AttrFieldCount = "dbss.field_count"

	AttrWaiterKind  = "dbss.waiter_kind"
	AttrWaiterCount = "dbss.waiter_count"
)

// MessageType returns an attribute for the bus message type name.
func MessageType(t string) attribute.KeyValue {
	return attribute.String(AttrMessageType, t)
}

// Sender returns an attribute for the sender channel.
func Sender(ch uint64) attribute.KeyValue {
	return attribute.Int64(AttrSender, int64(ch))
}

// DOID returns an attribute for the distributed object id.
func DOID(doid uint32) attribute.KeyValue {
	return attribute.Int64(AttrDOID, int64(doid))
}

// Class returns an attribute for the DC class handle.
func Class(class uint16) attribute.KeyValue {
	return attribute.Int(AttrClass, int(class))
}

// Location returns attributes for a parent/zone pair.
func Location(parent, zone uint32) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64(AttrParent, int64(parent)),
		attribute.Int64(AttrZone, int64(zone)),
	}
}

// DBContext returns an attribute for a database request context.
func DBContext(ctx uint32) attribute.KeyValue {
	return attribute.Int64(AttrDBContext, int64(ctx))
}

// DBStatus returns an attribute for a database response status.
func DBStatus(status string) attribute.KeyValue {
	return attribute.String(AttrDBStatus, status)
}

// FieldCount returns an attribute for a number of fields in a request/response.
func FieldCount(n int) attribute.KeyValue {
	return attribute.Int(AttrFieldCount, n)
}

// WaiterCount returns an attribute for the number of waiters on a pending fetch.
func WaiterCount(n int) attribute.KeyValue {
	return attribute.Int(AttrWaiterCount, n)
}

// StartDispatchSpan starts a span covering the full handling of one inbound
// bus message, from dispatch decision through any emitted replies.
func StartDispatchSpan(ctx context.Context, msgType string, doid uint32, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{MessageType(msgType), DOID(doid)}, attrs...)
	return StartSpan(ctx, "dbss.dispatch."+msgType, trace.WithAttributes(allAttrs...))
}

// StartDBRoundTripSpan starts a span covering one outbound database request
// and the eventual response that completes it.
func StartDBRoundTripSpan(ctx context.Context, op string, doid uint32, dbContext uint32) (context.Context, trace.Span) {
	return StartSpan(ctx, "dbss.db."+op, trace.WithAttributes(DOID(doid), DBContext(dbContext)))
}
