package core

import (
	"bytes"
	"encoding/json"
)

// Type is an opaque value-type tag taken verbatim from a schema, such as
// "number", "string" or `"AT"|"DE"`. Types are only ever compared for
// equality.
type Type string

const (
	// Unresolvable marks a placeholder or field whose table or column is
	// not in the schema. Schemas reject the empty tag, so a declared type
	// can never collide with it.
	Unresolvable Type = ""

	// StatusType is the fixed result of INSERT, UPDATE and DELETE.
	StatusType Type = "exec_status"
)

// Resolved reports whether the type was bound to a schema column.
func (t Type) Resolved() bool {
	return t != Unresolvable
}

// String returns the type tag, or "unresolvable" for the marker.
func (t Type) String() string {
	if !t.Resolved() {
		return "unresolvable"
	}
	return string(t)
}

// MarshalJSON encodes Unresolvable as null.
func (t Type) MarshalJSON() ([]byte, error) {
	if !t.Resolved() {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

// UnmarshalJSON decodes null as Unresolvable.
func (t *Type) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = Unresolvable
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = Type(s)
	return nil
}
