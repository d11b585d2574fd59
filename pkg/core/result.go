package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Param is the binding of one positional placeholder.
type Param struct {
	Ref  ColumnRef `json:"ref"`
	Type Type      `json:"type"`
}

// Field is one named, typed column of a result row.
type Field struct {
	Name string    `json:"name"`
	Type Type      `json:"type"`
	Ref  ColumnRef `json:"ref"`
}

// RowShape is the ordered set of fields a SELECT returns.
//
// Names are unique. Setting a name that already exists replaces its type
// and reference but keeps the position where the name first appeared.
type RowShape struct {
	fields []Field
	index  map[string]int
}

// NewRowShape returns an empty shape.
func NewRowShape() *RowShape {
	return &RowShape{index: make(map[string]int)}
}

// Set adds or replaces a field.
func (s *RowShape) Set(name string, t Type, ref ColumnRef) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	f := Field{Name: name, Type: t, Ref: ref}
	if i, ok := s.index[name]; ok {
		s.fields[i] = f
		return
	}
	s.index[name] = len(s.fields)
	s.fields = append(s.fields, f)
}

// Get returns the field with the given name.
func (s *RowShape) Get(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Fields returns the fields in order.
func (s *RowShape) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Names returns the field names in order.
func (s *RowShape) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Len returns the number of fields.
func (s *RowShape) Len() int {
	return len(s.fields)
}

// Clone returns an independent copy.
func (s *RowShape) Clone() *RowShape {
	c := NewRowShape()
	for _, f := range s.fields {
		c.Set(f.Name, f.Type, f.Ref)
	}
	return c
}

// MarshalJSON encodes the shape as an ordered array of fields.
func (s *RowShape) MarshalJSON() ([]byte, error) {
	if s.fields == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.fields)
}

// UnmarshalJSON decodes an ordered array of fields.
func (s *RowShape) UnmarshalJSON(data []byte) error {
	var fields []Field
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*s = RowShape{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		s.Set(f.Name, f.Type, f.Ref)
	}
	return nil
}

// Result is the outcome of analyzing one statement.
//
// Shape is set for SELECT only; every other kind reports StatusType in
// Status. Statement is the parsed AST and is not serialized.
type Result struct {
	Query     string        `json:"query"`
	Kind      StatementKind `json:"kind"`
	Statement Statement     `json:"-"`
	Params    []Param       `json:"params"`
	Shape     *RowShape     `json:"shape,omitempty"`
	Status    Type          `json:"status,omitempty"`
}

// ParamTypes returns the placeholder types in order.
func (r *Result) ParamTypes() []Type {
	types := make([]Type, len(r.Params))
	for i, p := range r.Params {
		types[i] = p.Type
	}
	return types
}

// Unresolved lists every placeholder and field that failed to bind.
func (r *Result) Unresolved() []string {
	var out []string
	for i, p := range r.Params {
		if !p.Type.Resolved() {
			out = append(out, fmt.Sprintf("param %d (%s)", i+1, p.Ref))
		}
	}
	if r.Shape != nil {
		for _, f := range r.Shape.fields {
			if !f.Type.Resolved() {
				out = append(out, fmt.Sprintf("field %s (%s)", f.Name, f.Ref))
			}
		}
	}
	return out
}

// Validate returns an *UnresolvedError when anything failed to bind.
func (r *Result) Validate() error {
	if refs := r.Unresolved(); len(refs) > 0 {
		return &UnresolvedError{Refs: refs}
	}
	return nil
}

// Clone returns a copy that shares only the read-only Statement.
func (r *Result) Clone() *Result {
	c := *r
	c.Params = append([]Param(nil), r.Params...)
	if r.Shape != nil {
		c.Shape = r.Shape.Clone()
	}
	return &c
}

// UnresolvedError reports references that did not bind to the schema.
type UnresolvedError struct {
	Refs []string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unresolved references: %s", strings.Join(e.Refs, ", "))
}
