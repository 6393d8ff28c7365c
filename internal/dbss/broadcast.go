package dbss

import (
	"github.com/marmos91/dbss/internal/dbproto"
	"github.com/marmos91/dbss/internal/dc"
)

// requiredFieldValues returns rec's required fields in DC declaration
// order, per §4.5's "(required_field_value)*" broadcast shape.
func (d *Dispatcher) requiredFieldValues(rec *ActiveObjectRecord) ([]dbproto.FieldValue, error) {
	defs, err := d.classifier.RequiredFields(rec.Class)
	if err != nil {
		return nil, err
	}
	values := make([]dbproto.FieldValue, len(defs))
	for i, def := range defs {
		values[i] = dbproto.FieldValue{ID: def.ID, Data: rec.Fields[def.ID]}
	}
	return values, nil
}

// optionalFieldValues returns rec's ram-but-not-required fields whose
// value is actually set, per the _OTHER broadcast variant's contract.
func (d *Dispatcher) optionalFieldValues(rec *ActiveObjectRecord) ([]dbproto.FieldValue, error) {
	ramDefs, err := d.classifier.RAMFields(rec.Class)
	if err != nil {
		return nil, err
	}
	var values []dbproto.FieldValue
	for _, def := range ramDefs {
		if def.Flags.Has(dc.FlagRequired) {
			continue
		}
		v, ok := rec.Fields[def.ID]
		if !ok {
			continue
		}
		values = append(values, dbproto.FieldValue{ID: def.ID, Data: v})
	}
	return values, nil
}
