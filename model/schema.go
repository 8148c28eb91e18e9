package model

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/reoring/restdoc"
)

type field struct {
	name    string
	typ     Type
	lenient bool
}

// Schema is an immutable set of typed fields.
type Schema struct {
	fields []field
	index  map[string]int
	opts   restdoc.Options
}

// Fields returns the names of the accepted fields in declaration order.
func (s *Schema) Fields() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.name
	}
	return out
}

func (s *Schema) field(name string) (field, error) {
	if i, ok := s.index[name]; ok {
		return s.fields[i], nil
	}
	return field{}, fieldError(name, "unknown field")
}

// New builds a Record over a fresh document holding the accepted fields of
// input. input may be a map, restdoc.Fields, an *ObjectNode or a *Record.
func (s *Schema) New(input any) (*Record, error) {
	fs, err := s.filtered(input)
	if err != nil {
		return nil, err
	}
	obj, err := restdoc.NewObject(fs, s.opts)
	if err != nil {
		return nil, err
	}
	return &Record{schema: s, data: obj}, nil
}

// Wrap binds the schema to an existing document without filtering it.
// Writes through the record mutate obj.
func (s *Schema) Wrap(obj *restdoc.ObjectNode) *Record {
	return &Record{schema: s, data: obj}
}

// filtered drops undeclared keys and coerces the rest.
func (s *Schema) filtered(input any) (restdoc.Fields, error) {
	in, err := fieldsOf(input)
	if err != nil {
		return nil, err
	}
	out := make(restdoc.Fields, 0, len(in))
	for _, kv := range in {
		f, err := s.field(kv.Key)
		if err != nil {
			continue
		}
		v, err := f.typ.coerce(kv.Value, f.lenient)
		if err != nil && err != errSkip {
			return nil, fieldError(f.name, "%v", err)
		}
		out = append(out, restdoc.Field{Key: f.name, Value: v})
	}
	return out, nil
}

func fieldsOf(input any) (restdoc.Fields, error) {
	switch x := input.(type) {
	case nil, *restdoc.Absent:
		return nil, nil
	case restdoc.Fields:
		return x, nil
	case *Record:
		return fieldsOf(x.data)
	case *restdoc.ObjectNode:
		// work on a copy so nested nodes stay with the input
		cp, err := restdoc.NewObject(x)
		if err != nil {
			return nil, err
		}
		out := make(restdoc.Fields, 0, cp.Len())
		for k, v := range cp.All() {
			out = append(out, restdoc.Field{Key: k, Value: v})
		}
		return out, nil
	case map[string]any:
		out := make(restdoc.Fields, 0, len(x))
		for _, k := range slices.Sorted(maps.Keys(x)) {
			out = append(out, restdoc.Field{Key: k, Value: x[k]})
		}
		return out, nil
	}
	obj, err := restdoc.NewObject(input)
	if err != nil {
		return nil, err
	}
	return fieldsOf(obj)
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func fieldError(name, format string, args ...any) error {
	return &restdoc.Error{
		Code:    restdoc.CodeInvalidArgument,
		Path:    "/" + pointerEscaper.Replace(name),
		Message: fmt.Sprintf(format, args...),
		Offset:  -1,
	}
}
