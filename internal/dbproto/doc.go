// Package dbproto encodes and decodes the payloads carried inside
// internal/bus datagrams: the database protocol (DB_GET_ALL, DB_GET_FIELD(S),
// DB_SET_FIELD(S), DB_DELETE) and the state-server-facing messages
// (ACTIVATE_WITH_DEFAULTS, GET_ALL, GET_FIELD(S), SET_FIELD(S), DELETE_RAM,
// DELETE_DISK, ENTER_LOCATION_WITH_REQUIRED). Nothing in this package
// interprets a field value's meaning; it is packed and unpacked as an
// opaque, length-prefixed blob, per §2's "serialize, never transform"
// contract. The DC schema in internal/dc owns what the bytes mean.
package dbproto
