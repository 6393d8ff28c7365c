package dbproto

import (
	"fmt"

	"github.com/marmos91/dbss/internal/bus"
)

// FieldValue is an opaque field value tagged with its field id. The wire
// format of a value's contents is owned entirely by the DC schema; this
// package never inspects Data beyond its length.
type FieldValue struct {
	ID   uint16
	Data []byte
}

// writeField appends a self-describing (field_id, length, data) triple to
// dg's payload. The explicit length lets a reader split a run of field
// values without knowing each one's DC-declared width.
func writeField(dg *bus.Datagram, f FieldValue) *bus.Datagram {
	return dg.AddUint16(f.ID).AddUint16(uint16(len(f.Data))).AddBlob(f.Data)
}

// writeFields appends a count-prefixed run of fields.
func writeFields(dg *bus.Datagram, fields []FieldValue) *bus.Datagram {
	dg.AddUint16(uint16(len(fields)))
	for _, f := range fields {
		writeField(dg, f)
	}
	return dg
}

// readField reads one (field_id, length, data) triple.
func readField(it *bus.DatagramIterator) (FieldValue, error) {
	id, err := it.ReadUint16()
	if err != nil {
		return FieldValue{}, fmt.Errorf("dbproto: reading field id: %w", err)
	}
	length, err := it.ReadUint16()
	if err != nil {
		return FieldValue{}, fmt.Errorf("dbproto: reading field %d length: %w", id, err)
	}
	data, err := it.ReadBlob(int(length))
	if err != nil {
		return FieldValue{}, fmt.Errorf("dbproto: reading field %d data: %w", id, err)
	}
	return FieldValue{ID: id, Data: data}, nil
}

// readFields reads a count-prefixed run of fields.
func readFields(it *bus.DatagramIterator) ([]FieldValue, error) {
	count, err := it.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("dbproto: reading field count: %w", err)
	}
	fields := make([]FieldValue, count)
	for i := range fields {
		f, err := readField(it)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return fields, nil
}
