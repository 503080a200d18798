package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString distinguishes an absent JSON field from an explicit null,
// which a plain *string cannot:
//   - Present=false: field absent (keep the current value)
//   - Present=true, Value=nil: JSON null (clear)
//   - Present=true, Value=&s: set to s
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON implements json.Unmarshaler.
// It is only called when the field is present in the document.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Patch converts the field into update arguments: the new value and whether
// the field must be cleared. An absent field yields (nil, false).
func (o OptionalString) Patch() (value *string, unset bool) {
	if !o.Present {
		return nil, false
	}
	if o.Value == nil {
		return nil, true
	}
	return o.Value, false
}
