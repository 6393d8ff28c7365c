package dc

import "github.com/marmos91/dbss/internal/dberr"

// Classifier answers storage-routing questions against an immutable
// Schema. It holds no mutable state and needs no locking: every lookup
// is a read against the packed table built at load time.
type Classifier struct {
	schema *Schema
}

// NewClassifier wraps a loaded Schema for classification queries.
func NewClassifier(schema *Schema) *Classifier {
	return &Classifier{schema: schema}
}

// Flags returns the storage flags for (class, field). An unknown class or
// field is a protocol violation per §4.4: the caller is expected to drop
// the message and log, using the returned error.
func (c *Classifier) Flags(class uint16, fieldID uint16) (FieldFlags, error) {
	def, err := c.fieldDef(class, fieldID)
	if err != nil {
		return 0, err
	}
	return def.Flags, nil
}

// RequiredFields returns a class's required fields in declaration order.
func (c *Classifier) RequiredFields(class uint16) ([]FieldDef, error) {
	cls, ok := c.schema.Class(class)
	if !ok {
		return nil, dberr.NewUnknownClassError(class)
	}
	var required []FieldDef
	for _, f := range cls.Fields {
		if f.Flags.Has(FlagRequired) {
			required = append(required, f)
		}
	}
	return required, nil
}

// RAMFields returns a class's ram-or-required fields in declaration order
// — exactly the set that belongs in an Active Object Record's field map.
func (c *Classifier) RAMFields(class uint16) ([]FieldDef, error) {
	cls, ok := c.schema.Class(class)
	if !ok {
		return nil, dberr.NewUnknownClassError(class)
	}
	var ram []FieldDef
	for _, f := range cls.Fields {
		if f.Flags.Has(FlagRAM) || f.Flags.Has(FlagRequired) {
			ram = append(ram, f)
		}
	}
	return ram, nil
}

// Class returns the class declaration for handle.
func (c *Classifier) Class(class uint16) (*ClassDef, error) {
	cls, ok := c.schema.Class(class)
	if !ok {
		return nil, dberr.NewUnknownClassError(class)
	}
	return cls, nil
}

func (c *Classifier) fieldDef(class uint16, fieldID uint16) (FieldDef, error) {
	cls, ok := c.schema.Class(class)
	if !ok {
		return FieldDef{}, dberr.NewUnknownClassError(class)
	}
	def, ok := cls.FieldByID(fieldID)
	if !ok {
		return FieldDef{}, dberr.NewUnknownFieldError(0, fieldID)
	}
	return def, nil
}
