package restdoc

import (
	"iter"
	"reflect"
	"slices"

	eng "github.com/reoring/restdoc/internal/engine"
)

// ObjectNode is a mutable JSON object that keeps insertion order. Nested
// objects and arrays are always *ObjectNode and *ArrayNode.
//
// ObjectNode is not safe for concurrent mutation.
type ObjectNode struct {
	nodeBase
	keys []string
	vals map[string]any
}

// NewObject builds an object from a mapping: map[string]any (inserted in
// sorted key order), Fields, a string-keyed map of any type, or an existing
// *ObjectNode (deep-copied). nil yields an empty object.
func NewObject(data any, opts ...Options) (*ObjectNode, error) {
	cfg := newConfig(opts)
	if data == nil {
		o := emptyObject(cfg)
		registerRoot(o)
		return o, nil
	}
	if !isMapping(data) {
		return nil, invalidArgument("cannot build an object from %T", data)
	}
	c := newCoercer(cfg, nil)
	_, c.clone = data.(*ObjectNode)
	v, err := c.value(data, 0)
	if err != nil {
		return nil, err
	}
	c.commit()
	o := v.(*ObjectNode)
	registerRoot(o)
	return o, nil
}

func emptyObject(cfg *Options) *ObjectNode {
	return &ObjectNode{nodeBase: nodeBase{cfg: cfg}, vals: map[string]any{}}
}

func isMapping(v any) bool {
	switch v.(type) {
	case map[string]any, Fields, *ObjectNode, *eng.Object:
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
}

func (o *ObjectNode) base() *nodeBase { return &o.nodeBase }

// Attr returns the value at key, or a placeholder bound to (o, key) when the
// key is missing or null.
func (o *ObjectNode) Attr(key string) Value {
	v, ok := o.vals[key]
	if !ok || v == nil {
		return &Absent{owner: o, name: key}
	}
	return wrap(v)
}

// Get returns the stored value at key and whether the key is present.
func (o *ObjectNode) Get(key string) (any, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// GetOr returns the stored value at key or def.
func (o *ObjectNode) GetOr(key string, def any) any {
	if v, ok := o.vals[key]; ok {
		return v
	}
	return def
}

// Item is the strict lookup: a missing key fails with KeyNotFound.
func (o *ObjectNode) Item(key string) (any, error) {
	v, ok := o.vals[key]
	if !ok {
		return nil, newError(CodeKeyNotFound, eng.JoinPointer("", key), "no such key", nil)
	}
	return v, nil
}

// Set coerces v and stores it at key.
func (o *ObjectNode) Set(key string, v any) error {
	c := newCoercer(o.cfg, o)
	cv, err := c.value(v, depthOf(o)+1)
	if err != nil {
		return withPath(err, key)
	}
	c.commit()
	o.store(key, cv)
	notify(o)
	return nil
}

// setPath descends through existing objects along path and sets leaf on the
// deepest one, replacing the first missing or non-object link with freshly
// built nested objects. It mutates exactly once.
func (o *ObjectNode) setPath(path []string, leaf string, v any) error {
	cur := o
	for i, name := range path {
		if child, ok := cur.vals[name].(*ObjectNode); ok {
			cur = child
			continue
		}
		nested := any(Fields{{Key: leaf, Value: v}})
		for j := len(path) - 1; j > i; j-- {
			nested = Fields{{Key: path[j], Value: nested}}
		}
		o.cfg.logger().Debug("restdoc: materialize", "path", path[i:], "leaf", leaf)
		return cur.Set(name, nested)
	}
	return cur.Set(leaf, v)
}

func (o *ObjectNode) store(key string, v any) {
	if old, ok := o.vals[key]; ok {
		replaceChild(old, v, o)
	} else {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
	attach(v, objectRef(o))
}

func (o *ObjectNode) remove(key string) (any, bool) {
	v, ok := o.vals[key]
	if !ok {
		return nil, false
	}
	delete(o.vals, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
	detach(v, o)
	return v, true
}

// Delete removes key and reports whether it was present.
func (o *ObjectNode) Delete(key string) bool {
	if _, ok := o.remove(key); !ok {
		return false
	}
	notify(o)
	return true
}

// Update merge-assigns partial (map[string]any, Fields, *ObjectNode or a
// string-keyed map). Values are all coerced before anything is stored.
func (o *ObjectNode) Update(partial any) error {
	if partial == nil {
		return nil
	}
	if !isMapping(partial) {
		return invalidArgument("cannot update an object from %T", partial)
	}
	c := newCoercer(o.cfg, o)
	var src *ObjectNode
	if n, ok := partial.(*ObjectNode); ok {
		if n == o {
			return nil
		}
		tmp, err := c.object(n.keys, func(i int) any { return n.vals[n.keys[i]] }, depthOf(o))
		if err != nil {
			return err
		}
		src = tmp
	} else {
		v, err := c.value(partial, depthOf(o))
		if err != nil {
			return err
		}
		src = v.(*ObjectNode)
	}
	c.commit()
	for _, k := range src.keys {
		o.store(k, src.vals[k])
	}
	notify(o)
	return nil
}

// Clear removes every key.
func (o *ObjectNode) Clear() {
	for _, k := range o.keys {
		detach(o.vals[k], o)
	}
	o.keys = nil
	o.vals = map[string]any{}
	notify(o)
}

// Pop removes key and returns its value. When key is missing it returns def[0]
// (or nil) and does not notify.
func (o *ObjectNode) Pop(key string, def ...any) any {
	v, ok := o.remove(key)
	if !ok {
		if len(def) > 0 {
			return def[0]
		}
		return nil
	}
	notify(o)
	return v
}

// PopItem removes the most recently inserted key.
func (o *ObjectNode) PopItem() (string, any, bool) {
	if len(o.keys) == 0 {
		return "", nil, false
	}
	k := o.keys[len(o.keys)-1]
	v, _ := o.remove(k)
	notify(o)
	return k, v, true
}

func (o *ObjectNode) Has(key string) bool {
	_, ok := o.vals[key]
	return ok
}

func (o *ObjectNode) Len() int { return len(o.keys) }

// Keys returns the keys in insertion order.
func (o *ObjectNode) Keys() []string { return slices.Clone(o.keys) }

// Values returns the stored values in key order.
func (o *ObjectNode) Values() []any {
	out := make([]any, len(o.keys))
	for i, k := range o.keys {
		out[i] = o.vals[k]
	}
	return out
}

// All yields key/value pairs in insertion order.
func (o *ObjectNode) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range slices.Clone(o.keys) {
			v, ok := o.vals[k]
			if !ok {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

// KeySeq yields keys in insertion order.
func (o *ObjectNode) KeySeq() iter.Seq[string] {
	return func(yield func(string) bool) {
		for k := range o.All() {
			if !yield(k) {
				return
			}
		}
	}
}

func (o *ObjectNode) Truthy() bool { return len(o.keys) > 0 }
func (o *ObjectNode) Kind() Kind   { return KindObject }

// Interface returns a map[string]any of the live values with nested nodes
// converted recursively. Leaves are not encoded.
func (o *ObjectNode) Interface() any {
	out := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		out[k] = native(o.vals[k])
	}
	return out
}

// Parent returns the containing node, nil for a root.
func (o *ObjectNode) Parent() Node { return o.parent.node() }

func (o *ObjectNode) Root() Node { return rootOf(o) }

// Observe registers fn to run after every mutation below this node while it
// is a root. The returned func unregisters it.
func (o *ObjectNode) Observe(fn func(Node)) (cancel func()) { return o.observe(fn) }

// Equal reports deep equality with another *ObjectNode, ignoring key order.
func (o *ObjectNode) Equal(other any) bool {
	x, ok := other.(*ObjectNode)
	return ok && equalValues(o, x)
}

func native(v any) any {
	if n, ok := v.(Node); ok {
		return n.Interface()
	}
	return v
}
