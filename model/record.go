package model

import (
	"time"

	"github.com/reoring/restdoc"
	"github.com/reoring/restdoc/codec"
)

// Record is a document bound to a Schema.
type Record struct {
	schema *Schema
	data   *restdoc.ObjectNode
}

// Data returns the underlying document.
func (r *Record) Data() *restdoc.ObjectNode { return r.data }

func (r *Record) Schema() *Schema { return r.schema }

// Get reads a field converted to its Go type: int64, float64, string, bool,
// time.Time, codec.Date, *Record for refs and *Collection for collections.
// Missing and null fields read as nil.
func (r *Record) Get(name string) (any, error) {
	f, err := r.schema.field(name)
	if err != nil {
		return nil, err
	}
	raw, _ := r.data.Get(name)
	if unwrap(raw) == nil {
		return nil, nil
	}
	switch f.typ.kind {
	case kindRef:
		return r.Ref(name)
	case kindCollection:
		return r.Collection(name)
	}
	v, err := f.typ.read(raw)
	if err != nil {
		return nil, fieldError(name, "%v", err)
	}
	return v, nil
}

// Set coerces v to the field type and stores it. Lenient fields store null
// when coercion fails.
func (r *Record) Set(name string, v any) error {
	f, err := r.schema.field(name)
	if err != nil {
		return err
	}
	cv, err := f.typ.coerce(v, f.lenient)
	switch {
	case err == errSkip:
		cv = nil
	case err != nil:
		return fieldError(name, "%v", err)
	}
	return r.data.Set(name, cv)
}

func (r *Record) raw(name string) (any, error) {
	if _, err := r.schema.field(name); err != nil {
		return nil, err
	}
	v, _ := r.data.Get(name)
	return unwrap(v), nil
}

// Int reads name as an integer. Null reads as 0.
func (r *Record) Int(name string) (int64, error) {
	v, err := r.raw(name)
	if err != nil || v == nil {
		return 0, err
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fieldError(name, "%v", err)
	}
	return n, nil
}

func (r *Record) Float(name string) (float64, error) {
	v, err := r.raw(name)
	if err != nil || v == nil {
		return 0, err
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, fieldError(name, "%v", err)
	}
	return f, nil
}

func (r *Record) String(name string) (string, error) {
	v, err := r.raw(name)
	if err != nil || v == nil {
		return "", err
	}
	s, err := Type{kind: kindString}.convert(v, false)
	if err != nil {
		return "", fieldError(name, "%v", err)
	}
	return s.(string), nil
}

func (r *Record) Bool(name string) (bool, error) {
	v, err := r.raw(name)
	if err != nil || v == nil {
		return false, err
	}
	b, err := Type{kind: kindBool}.convert(v, false)
	if err != nil {
		return false, fieldError(name, "%v", err)
	}
	return b.(bool), nil
}

// Time reads name as a datetime, parsing RFC 3339 text.
func (r *Record) Time(name string) (time.Time, error) {
	v, err := r.raw(name)
	if err != nil || v == nil {
		return time.Time{}, err
	}
	t, err := toTime(v)
	if err != nil {
		return time.Time{}, fieldError(name, "%v", err)
	}
	return t, nil
}

func (r *Record) Date(name string) (codec.Date, error) {
	v, err := r.raw(name)
	if err != nil || v == nil {
		return codec.Date{}, err
	}
	d, err := toDate(v)
	if err != nil {
		return codec.Date{}, fieldError(name, "%v", err)
	}
	return d, nil
}

// Ref returns the nested record of a Ref field, storing an empty object
// first when the field is missing or null.
func (r *Record) Ref(name string) (*Record, error) {
	f, err := r.schema.field(name)
	if err != nil {
		return nil, err
	}
	if f.typ.kind != kindRef {
		return nil, fieldError(name, "field is %s, not ref", f.typ)
	}
	obj, err := r.child(name, restdoc.Fields{})
	if err != nil {
		return nil, err
	}
	o, ok := obj.(*restdoc.ObjectNode)
	if !ok {
		return nil, fieldError(name, "expected object, got %T", obj)
	}
	return f.typ.ref.Wrap(o), nil
}

// Collection returns the list of a collection field, storing an empty list
// first when the field is missing or null.
func (r *Record) Collection(name string) (*Collection, error) {
	f, err := r.schema.field(name)
	if err != nil {
		return nil, err
	}
	if f.typ.kind != kindCollection {
		return nil, fieldError(name, "field is %s, not collection", f.typ)
	}
	v, err := r.child(name, []any{})
	if err != nil {
		return nil, err
	}
	arr, ok := v.(*restdoc.ArrayNode)
	if !ok {
		return nil, fieldError(name, "expected list, got %T", v)
	}
	return &Collection{elem: *f.typ.elem, lenient: f.lenient, arr: arr}, nil
}

func (r *Record) child(name string, empty any) (any, error) {
	if v, ok := r.data.Get(name); ok && v != nil {
		return v, nil
	}
	if err := r.data.Set(name, empty); err != nil {
		return nil, err
	}
	v, _ := r.data.Get(name)
	return v, nil
}

// AsJSON returns the JSON-native form of the record. Values the schema's
// codec options cannot encode yield restdoc.ErrEncodingUnsupported.
func (r *Record) AsJSON() (map[string]any, error) {
	v, err := r.data.Plain()
	if err != nil {
		return nil, err
	}
	return v.(map[string]any), nil
}

func (r *Record) MarshalJSON() ([]byte, error) { return r.data.MarshalJSON() }

// Equal compares the data of two records, or a record with a document.
func (r *Record) Equal(other any) bool {
	if o, ok := other.(*Record); ok {
		if o == nil {
			return false
		}
		other = o.data
	}
	return r.data.Equal(other)
}
