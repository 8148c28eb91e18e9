package restdoc

import (
	"fmt"
	"iter"
	"reflect"
	"time"

	"github.com/cockroachdb/apd/v2"

	"github.com/reoring/restdoc/codec"
)

// Kind classifies a Value.
type Kind int

const (
	KindAbsent Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindBytes
	KindTime
	KindDate
	KindCallable
	KindObject
	KindArray
)

var kindNames = [...]string{
	KindAbsent:   "absent",
	KindNull:     "null",
	KindBool:     "bool",
	KindNumber:   "number",
	KindString:   "string",
	KindBytes:    "bytes",
	KindTime:     "time",
	KindDate:     "date",
	KindCallable: "callable",
	KindObject:   "object",
	KindArray:    "array",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is one of *ObjectNode, *ArrayNode, Scalar or *Absent.
//
// Attr never fails: a missing name yields an *Absent that remembers where it
// came from, so a later Set through it can build the missing structure.
type Value interface {
	Attr(name string) Value
	Set(name string, v any) error
	Truthy() bool
	Interface() any
	Kind() Kind
}

// Node is a container value: *ObjectNode or *ArrayNode.
type Node interface {
	Value
	Parent() Node
	Root() Node
	Len() int
	Serialize() (string, error)
	PrettyPrint(indent int) (string, error)
	Plain() (any, error)
	MarshalJSON() ([]byte, error)
	Observe(fn func(Node)) (cancel func())
	Equal(other any) bool
	ApplyPatch(patch []byte) error
	MergePatch(patch []byte) error

	base() *nodeBase
}

// Scalar wraps a stored leaf value returned by navigation.
type Scalar struct {
	v any
}

// NewScalar wraps v without coercion. Use Parse to normalize arbitrary input.
func NewScalar(v any) Scalar { return Scalar{v: v} }

// Attr on a scalar returns a detached placeholder.
func (s Scalar) Attr(name string) Value { return &Absent{name: name} }

func (s Scalar) Set(name string, _ any) error {
	return invalidArgument("cannot set %q on a %s scalar", name, s.Kind())
}

func (s Scalar) Interface() any { return s.v }

func (s Scalar) Kind() Kind { return scalarKind(s.v) }

// Truthy follows the usual emptiness rules: null, false, zero numbers, empty
// strings and empty byte slices are false.
func (s Scalar) Truthy() bool {
	switch x := s.v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int64:
		return x != 0
	case uint64:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	case []byte:
		return len(x) != 0
	case *apd.Decimal:
		return x != nil && !x.IsZero()
	case time.Time:
		return true
	}
	return true
}

// Equal compares the wrapped value structurally with other (a Scalar or a
// native value).
func (s Scalar) Equal(other any) bool {
	cv, err := newCoercer(&Options{}, nil).value(other, 0)
	return err == nil && equalValues(s.v, cv)
}

func (s Scalar) String() string { return fmt.Sprint(s.v) }

func scalarKind(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case int64, uint64, float64, *apd.Decimal:
		return KindNumber
	case string:
		return KindString
	case []byte:
		return KindBytes
	case time.Time:
		return KindTime
	case codec.Date:
		return KindDate
	}
	if reflect.ValueOf(v).Kind() == reflect.Func {
		return KindCallable
	}
	return KindNull
}

// wrap turns a stored value into a Value.
func wrap(v any) Value {
	switch x := v.(type) {
	case *ObjectNode:
		return x
	case *ArrayNode:
		return x
	}
	return Scalar{v: v}
}

// Fields is an ordered list of object members. Use it where key order matters
// on input; map[string]any input is inserted in sorted key order.
type Fields []Field

// Field is a single object member.
type Field struct {
	Key   string
	Value any
}

// All yields members in order.
func (f Fields) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, m := range f {
			if !yield(m.Key, m.Value) {
				return
			}
		}
	}
}
