package model

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v2"

	"github.com/reoring/restdoc"
	"github.com/reoring/restdoc/codec"
)

type kind int

const (
	kindAny kind = iota
	kindInt
	kindFloat
	kindString
	kindBool
	kindDatetime
	kindDate
	kindRef
	kindCollection
)

var kindNames = [...]string{
	kindAny:        "any",
	kindInt:        "int",
	kindFloat:      "float",
	kindString:     "string",
	kindBool:       "bool",
	kindDatetime:   "datetime",
	kindDate:       "date",
	kindRef:        "ref",
	kindCollection: "collection",
}

// Type describes the values a field accepts.
type Type struct {
	kind kind
	ref  *Schema
	elem *Type
}

func Int() Type      { return Type{kind: kindInt} }
func Float() Type    { return Type{kind: kindFloat} }
func String() Type   { return Type{kind: kindString} }
func Bool() Type     { return Type{kind: kindBool} }
func Datetime() Type { return Type{kind: kindDatetime} }
func Date() Type     { return Type{kind: kindDate} }

// Any accepts every value the document accepts (binary blobs, callables).
func Any() Type { return Type{kind: kindAny} }

// Ref nests another schema.
func Ref(s *Schema) Type { return Type{kind: kindRef, ref: s} }

// CollectionOf is a list whose elements have type elem.
func CollectionOf(elem Type) Type { return Type{kind: kindCollection, elem: &elem} }

func (t Type) String() string {
	switch t.kind {
	case kindCollection:
		return "collection<" + t.elem.String() + ">"
	}
	return kindNames[t.kind]
}

func (t Type) validate() error {
	switch t.kind {
	case kindRef:
		if t.ref == nil {
			return fmt.Errorf("ref type without schema")
		}
	case kindCollection:
		if t.elem == nil {
			return fmt.Errorf("collection type without element type")
		}
		return t.elem.validate()
	}
	return nil
}

// coerce converts v for storage. A lenient failure yields (nil, errSkip).
func (t Type) coerce(v any, lenient bool) (any, error) {
	v = unwrap(v)
	if v == nil {
		return nil, nil
	}
	out, err := t.convert(v, lenient)
	if err != nil {
		if lenient {
			return nil, errSkip
		}
		return nil, err
	}
	return out, nil
}

var errSkip = fmt.Errorf("skipped")

func unwrap(v any) any {
	switch x := v.(type) {
	case *restdoc.Absent:
		return nil
	case restdoc.Scalar:
		return x.Interface()
	}
	return v
}

func (t Type) convert(v any, lenient bool) (any, error) {
	switch t.kind {
	case kindAny:
		return v, nil
	case kindInt:
		return toInt(v)
	case kindFloat:
		return toFloat(v)
	case kindString:
		switch x := v.(type) {
		case string:
			return x, nil
		case []byte:
			if codec.IsTextual(x) {
				return string(x), nil
			}
		}
		if lenient {
			return fmt.Sprint(v), nil
		}
		return nil, fmt.Errorf("expected string, got %T", v)
	case kindBool:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			return strconv.ParseBool(strings.TrimSpace(x))
		}
		return nil, fmt.Errorf("expected bool, got %T", v)
	case kindDatetime:
		return toTime(v)
	case kindDate:
		return toDate(v)
	case kindRef:
		return t.ref.filtered(v)
	case kindCollection:
		items, err := sequence(v)
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, len(items))
		for i, item := range items {
			cv, err := t.elem.coerce(item, lenient)
			if err == errSkip {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, cv)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown field type %d", t.kind)
}

// read converts a stored value back to the field's Go type.
func (t Type) read(v any) (any, error) {
	v = unwrap(v)
	if v == nil {
		return nil, nil
	}
	switch t.kind {
	case kindAny, kindRef, kindCollection:
		return v, nil
	}
	return t.convert(v, false)
}

func toInt(v any) (int64, error) {
	switch x := v.(type) {
	case string:
		return strconv.ParseInt(strings.TrimSpace(x), 10, 64)
	case *apd.Decimal:
		f, err := codec.DecimalToFloat(x)
		if err != nil {
			return 0, err
		}
		return toInt(f)
	case bool:
		return 0, fmt.Errorf("expected int, got bool")
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
			return 0, fmt.Errorf("%v is not representable as int", f)
		}
		return int64(f), nil
	}
	return 0, fmt.Errorf("expected int, got %T", v)
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case string:
		return strconv.ParseFloat(strings.TrimSpace(x), 64)
	case *apd.Decimal:
		return codec.DecimalToFloat(x)
	case bool:
		return 0, fmt.Errorf("expected float, got bool")
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}
	return 0, fmt.Errorf("expected float, got %T", v)
}

func toTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case codec.Date:
		return x.In(time.UTC), nil
	case string:
		return codec.ParseRFC3339(strings.TrimSpace(x))
	}
	return time.Time{}, fmt.Errorf("expected datetime, got %T", v)
}

func toDate(v any) (codec.Date, error) {
	switch x := v.(type) {
	case codec.Date:
		return x, nil
	case time.Time:
		return codec.DateOf(x), nil
	case string:
		s := strings.TrimSpace(x)
		if d, err := codec.ParseDate(s); err == nil {
			return d, nil
		}
		t, err := codec.ParseRFC3339(s)
		if err != nil {
			return codec.Date{}, fmt.Errorf("invalid date %q", x)
		}
		return codec.DateOf(t), nil
	}
	return codec.Date{}, fmt.Errorf("expected date, got %T", v)
}

func sequence(v any) ([]any, error) {
	switch x := v.(type) {
	case []any:
		return x, nil
	case *restdoc.ArrayNode:
		return x.Values(), nil
	case *Collection:
		return x.arr.Values(), nil
	case string, []byte:
		return nil, fmt.Errorf("expected list, got %T", v)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected list, got %T", v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}
