// Package dc models the subset of the Distributed Class schema the
// database state server needs: per-class, per-field storage flags and
// declaration order. Parsing an actual .dc grammar is outside this
// package's scope (the real DC compiler is an external collaborator per
// the component spec); this package loads an equivalent YAML-encoded
// schema produced ahead of time from that compiler's output.
package dc

// FieldFlags is a bitmask of storage/delivery flags attached to a field
// in its class's DC declaration.
type FieldFlags uint8

const (
	FlagRequired FieldFlags = 1 << iota
	FlagRAM
	FlagDB
	FlagBroadcast
	FlagOwnRecv
	FlagClRecv
	FlagAIRecv
)

// Has reports whether flags contains every bit in want.
func (f FieldFlags) Has(want FieldFlags) bool {
	return f&want == want
}

// String renders the set flags for logging, e.g. "required|db".
func (f FieldFlags) String() string {
	if f == 0 {
		return "none"
	}
	names := []struct {
		flag FieldFlags
		name string
	}{
		{FlagRequired, "required"},
		{FlagRAM, "ram"},
		{FlagDB, "db"},
		{FlagBroadcast, "broadcast"},
		{FlagOwnRecv, "ownrecv"},
		{FlagClRecv, "clrecv"},
		{FlagAIRecv, "airecv"},
	}
	s := ""
	for _, n := range names {
		if f.Has(n.flag) {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	return s
}

// FieldDef is one field's declaration within a class: its wire id,
// name (for logging only), flags, and default value bytes (used when a
// required field is absent from a database response).
type FieldDef struct {
	ID      uint16
	Name    string
	Flags   FieldFlags
	Default []byte
}

// ClassDef is a DC class: a handle and an ordered list of field
// declarations. Declaration order is significant — required-field
// broadcasts serialize fields in this order.
type ClassDef struct {
	Handle uint16
	Name   string
	Fields []FieldDef
}

// FieldByID returns the field declaration with the given id, if any.
func (c *ClassDef) FieldByID(id uint16) (FieldDef, bool) {
	for _, f := range c.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return FieldDef{}, false
}

// Schema is the full set of class declarations loaded at startup.
type Schema struct {
	Classes map[uint16]*ClassDef
}

// NewSchema builds a Schema from a set of class definitions.
func NewSchema(classes []*ClassDef) *Schema {
	s := &Schema{Classes: make(map[uint16]*ClassDef, len(classes))}
	for _, c := range classes {
		s.Classes[c.Handle] = c
	}
	return s
}

// Class looks up a class by handle.
func (s *Schema) Class(handle uint16) (*ClassDef, bool) {
	c, ok := s.Classes[handle]
	return c, ok
}
