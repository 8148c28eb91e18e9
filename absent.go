package restdoc

import (
	"iter"
	"strings"
)

// Absent stands for "no value at this path yet". It is returned by Attr for
// missing keys (and for null-valued keys) and is never stored in a tree.
//
// Reads through an Absent always succeed and yield further placeholders.
// Set materializes the missing path under the object the chain started from.
type Absent struct {
	prev  *Absent
	owner *ObjectNode // set on the first link only; nil when detached
	name  string
}

func (a *Absent) Attr(name string) Value { return &Absent{prev: a, name: name} }

// Set writes v at the placeholder's path plus name, creating intermediate
// objects as needed. It fails with InvalidArgument when the chain does not
// start at an object (placeholders obtained from scalars or arrays).
func (a *Absent) Set(name string, v any) error {
	first := a
	for first.prev != nil {
		first = first.prev
	}
	if first.owner == nil {
		return invalidArgument("cannot materialize %q: placeholder is not attached to an object", a.pathString(name))
	}
	return first.owner.setPath(a.Path(), name, v)
}

// Path returns the names from the owning object down to this placeholder.
func (a *Absent) Path() []string {
	var names []string
	for p := a; p != nil; p = p.prev {
		names = append(names, p.name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names
}

func (a *Absent) pathString(leaf string) string {
	return strings.Join(append(a.Path(), leaf), ".")
}

func (a *Absent) Truthy() bool   { return false }
func (a *Absent) Interface() any { return nil }
func (a *Absent) Kind() Kind     { return KindAbsent }
func (a *Absent) Len() int       { return 0 }
func (a *Absent) String() string { return "null" }

// Equal reports whether other is nil (or another empty placeholder or a null
// scalar).
func (a *Absent) Equal(other any) bool {
	switch x := other.(type) {
	case nil, *Absent:
		return true
	case Scalar:
		return x.v == nil
	}
	return false
}

// Less orders a placeholder before every non-nil value.
func (a *Absent) Less(other any) bool { return !a.Equal(other) }

func (a *Absent) Contains(any) bool { return false }

// Delete is a no-op.
func (a *Absent) Delete(string) {}

// All yields nothing.
func (a *Absent) All() iter.Seq2[string, any] {
	return func(func(string, any) bool) {}
}

func (a *Absent) MarshalJSON() ([]byte, error) { return []byte("null"), nil }
