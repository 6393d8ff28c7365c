// Package dbfake implements a SQL-backed stand-in for the real Database
// Server component (spec.md's external collaborator, not part of the
// DBSS build itself): enough of DB_GET_ALL/DB_GET_FIELD(S)/DB_SET_FIELD(S)/
// DB_DELETE to drive DBSS integration tests against a real SQLite or
// Postgres row, instead of mocking the bus protocol by hand.
package dbfake

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// ObjectRow is one persisted object: its class and every db/ram/required
// field value, keyed by field id. Values are stored as a JSON map because
// the field set is schema-driven and varies per class — there is no fixed
// column layout to migrate per DC class the way the teacher's models
// package has one struct per control-plane entity.
type ObjectRow struct {
	DOID      uint32 `gorm:"primaryKey"`
	Class     uint16 `gorm:"not null"`
	FieldsRaw string `gorm:"column:fields;type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName pins the table name independent of GORM's pluralization rules.
func (ObjectRow) TableName() string {
	return "dbss_objects"
}

// Fields decodes the stored field map, keyed by field id, base64-encoded
// since DC field values are opaque byte blobs rather than JSON-safe text.
func (o *ObjectRow) Fields() (map[uint16][]byte, error) {
	if o.FieldsRaw == "" {
		return map[uint16][]byte{}, nil
	}
	var encoded map[uint16]string
	if err := json.Unmarshal([]byte(o.FieldsRaw), &encoded); err != nil {
		return nil, err
	}
	fields := make(map[uint16][]byte, len(encoded))
	for id, b64 := range encoded {
		data, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, err
		}
		fields[id] = data
	}
	return fields, nil
}

// SetFields encodes fields back into the row's storage representation.
func (o *ObjectRow) SetFields(fields map[uint16][]byte) error {
	encoded := make(map[uint16]string, len(fields))
	for id, data := range fields {
		encoded[id] = base64.StdEncoding.EncodeToString(data)
	}
	raw, err := json.Marshal(encoded)
	if err != nil {
		return err
	}
	o.FieldsRaw = string(raw)
	return nil
}

// AllModels returns every GORM model this package persists, for AutoMigrate.
func AllModels() []any {
	return []any{&ObjectRow{}}
}
