package restdoc

import (
	"iter"
	"reflect"
	"slices"
	"strconv"

	eng "github.com/reoring/restdoc/internal/engine"
)

// ArrayNode is a mutable JSON array. Elements that are objects or arrays are
// always *ObjectNode and *ArrayNode.
type ArrayNode struct {
	nodeBase
	items []any
}

// NewArray builds an array from a sequence ([]any, any non-byte slice or
// array, or an existing *ArrayNode which is deep-copied). nil yields an empty array.
func NewArray(data any, opts ...Options) (*ArrayNode, error) {
	cfg := newConfig(opts)
	if data == nil {
		a := &ArrayNode{nodeBase: nodeBase{cfg: cfg}, items: []any{}}
		registerRoot(a)
		return a, nil
	}
	if !isSequence(data) {
		return nil, invalidArgument("cannot build an array from %T", data)
	}
	c := newCoercer(cfg, nil)
	_, c.clone = data.(*ArrayNode)
	v, err := c.value(data, 0)
	if err != nil {
		return nil, err
	}
	c.commit()
	a := v.(*ArrayNode)
	registerRoot(a)
	return a, nil
}

func isSequence(v any) bool {
	switch v.(type) {
	case []any, *ArrayNode:
		return true
	case []byte, string:
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Type().Elem().Kind() != reflect.Uint8
	}
	return false
}

func (a *ArrayNode) base() *nodeBase { return &a.nodeBase }

// Attr resolves a numeric in-range name to the element at that index and
// returns a detached placeholder otherwise.
func (a *ArrayNode) Attr(name string) Value {
	i, err := strconv.Atoi(name)
	if err == nil {
		if j, ok := a.norm(i); ok {
			if v := a.items[j]; v != nil {
				return wrap(v)
			}
		}
	}
	return &Absent{name: name}
}

// Set assigns the element at the numeric index name.
func (a *ArrayNode) Set(name string, v any) error {
	i, err := strconv.Atoi(name)
	if err != nil {
		return invalidArgument("array index %q is not an integer", name)
	}
	return a.SetIndex(i, v)
}

func (a *ArrayNode) norm(i int) (int, bool) {
	if i < 0 {
		i += len(a.items)
	}
	return i, i >= 0 && i < len(a.items)
}

func (a *ArrayNode) outOfRange(i int) error {
	return newError(CodeIndexOutOfRange, eng.JoinPointer("", strconv.Itoa(i)),
		"index out of range [0,"+strconv.Itoa(len(a.items))+")", nil)
}

func (a *ArrayNode) coerce(vs ...any) ([]any, error) {
	c := newCoercer(a.cfg, a)
	d := depthOf(a) + 1
	out := make([]any, len(vs))
	for i, v := range vs {
		cv, err := c.value(v, d)
		if err != nil {
			return nil, err
		}
		out[i] = cv
	}
	c.commit()
	return out, nil
}

// Append adds v at the end.
func (a *ArrayNode) Append(v any) error { return a.Extend(v) }

// Extend appends vs. Every value is validated before any is stored.
func (a *ArrayNode) Extend(vs ...any) error {
	cvs, err := a.coerce(vs...)
	if err != nil {
		return err
	}
	ref := arrayRef(a)
	for _, v := range cvs {
		attach(v, ref)
	}
	a.items = append(a.items, cvs...)
	notify(a)
	return nil
}

// Insert places v before index i. Negative indexes count from the end and
// out-of-range indexes are clamped.
func (a *ArrayNode) Insert(i int, v any) error {
	cvs, err := a.coerce(v)
	if err != nil {
		return err
	}
	if i < 0 {
		i = max(i+len(a.items), 0)
	}
	i = min(i, len(a.items))
	attach(cvs[0], arrayRef(a))
	a.items = slices.Insert(a.items, i, cvs[0])
	notify(a)
	return nil
}

// Pop removes and returns the element at i (default: the last one).
func (a *ArrayNode) Pop(i ...int) (any, error) {
	idx := -1
	if len(i) > 0 {
		idx = i[0]
	}
	j, ok := a.norm(idx)
	if !ok {
		return nil, a.outOfRange(idx)
	}
	v := a.items[j]
	a.items = slices.Delete(a.items, j, j+1)
	detach(v, a)
	notify(a)
	return v, nil
}

// Remove deletes the first element structurally equal to v.
func (a *ArrayNode) Remove(v any) error {
	j := a.IndexOf(v)
	if j < 0 {
		return newError(CodeValueNotFound, "", "value not in array", nil)
	}
	removed := a.items[j]
	a.items = slices.Delete(a.items, j, j+1)
	detach(removed, a)
	notify(a)
	return nil
}

// Index returns the element at i; negative indexes count from the end.
func (a *ArrayNode) Index(i int) (any, error) {
	j, ok := a.norm(i)
	if !ok {
		return nil, a.outOfRange(i)
	}
	return a.items[j], nil
}

// SetIndex replaces the element at i. The array is never extended.
func (a *ArrayNode) SetIndex(i int, v any) error {
	j, ok := a.norm(i)
	if !ok {
		return a.outOfRange(i)
	}
	cvs, err := a.coerce(v)
	if err != nil {
		return withPath(err, strconv.Itoa(j))
	}
	replaceChild(a.items[j], cvs[0], a)
	a.items[j] = cvs[0]
	attach(cvs[0], arrayRef(a))
	notify(a)
	return nil
}

// IndexOf returns the position of the first element structurally equal to v,
// or -1.
func (a *ArrayNode) IndexOf(v any) int {
	want, ok := a.candidate(v)
	if !ok {
		return -1
	}
	return slices.IndexFunc(a.items, func(x any) bool { return equalValues(x, want) })
}

// Contains compares encoded forms, so a binary or callable value matches its
// stored representation.
func (a *ArrayNode) Contains(v any) bool {
	want, ok := a.candidate(v)
	if !ok {
		return false
	}
	ep, err := encodeLeaf(want, a.cfg)
	if err != nil {
		ep = want
	}
	return slices.ContainsFunc(a.items, func(x any) bool {
		ex, err := encodeLeaf(x, a.cfg)
		if err != nil {
			ex = x
		}
		return equalValues(ex, ep)
	})
}

// candidate coerces v for comparison without linking anything.
func (a *ArrayNode) candidate(v any) (any, bool) {
	switch v.(type) {
	case *ObjectNode, *ArrayNode:
		return v, true
	}
	cv, err := newCoercer(a.cfg, nil).value(v, 0)
	return cv, err == nil
}

// Clear removes every element.
func (a *ArrayNode) Clear() {
	for _, v := range a.items {
		detach(v, a)
	}
	a.items = []any{}
	notify(a)
}

func (a *ArrayNode) Len() int { return len(a.items) }

// Values returns a copy of the stored elements.
func (a *ArrayNode) Values() []any { return slices.Clone(a.items) }

// All yields index/element pairs.
func (a *ArrayNode) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		for i, v := range slices.Clone(a.items) {
			if !yield(i, v) {
				return
			}
		}
	}
}

func (a *ArrayNode) Truthy() bool { return len(a.items) > 0 }
func (a *ArrayNode) Kind() Kind   { return KindArray }

// Interface returns a []any of the live values with nested nodes converted.
func (a *ArrayNode) Interface() any {
	out := make([]any, len(a.items))
	for i, v := range a.items {
		out[i] = native(v)
	}
	return out
}

func (a *ArrayNode) Parent() Node { return a.parent.node() }
func (a *ArrayNode) Root() Node   { return rootOf(a) }

func (a *ArrayNode) Observe(fn func(Node)) (cancel func()) { return a.observe(fn) }

// Equal reports element-wise deep equality with another *ArrayNode.
func (a *ArrayNode) Equal(other any) bool {
	x, ok := other.(*ArrayNode)
	return ok && equalValues(a, x)
}
