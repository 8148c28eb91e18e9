package model

import (
	"iter"
	"strconv"

	"github.com/reoring/restdoc"
)

// Collection is a list whose elements are coerced to one Type.
type Collection struct {
	elem    Type
	lenient bool
	arr     *restdoc.ArrayNode
}

// NewCollection builds a standalone collection over a fresh document.
func NewCollection(elem Type, items any, opts ...restdoc.Options) (*Collection, error) {
	if err := elem.validate(); err != nil {
		return nil, err
	}
	c := &Collection{elem: elem}
	vs := []any{}
	if items != nil {
		out, err := CollectionOf(elem).coerce(items, false)
		if err != nil {
			return nil, &restdoc.Error{Code: restdoc.CodeInvalidArgument, Message: err.Error(), Offset: -1}
		}
		vs, _ = out.([]any)
	}
	arr, err := restdoc.NewArray(vs, opts...)
	if err != nil {
		return nil, err
	}
	c.arr = arr
	return c, nil
}

// Data returns the underlying list.
func (c *Collection) Data() *restdoc.ArrayNode { return c.arr }

func (c *Collection) Len() int { return c.arr.Len() }

// Append coerces v and adds it at the end. Lenient collections drop values
// that do not coerce.
func (c *Collection) Append(v any) error { return c.Extend(v) }

// Extend coerces every value before storing any of them.
func (c *Collection) Extend(vs ...any) error {
	out := make([]any, 0, len(vs))
	for i, v := range vs {
		cv, err := c.elem.coerce(v, c.lenient)
		if err == errSkip {
			continue
		}
		if err != nil {
			return fieldError(strconv.Itoa(c.arr.Len()+i), "%v", err)
		}
		out = append(out, cv)
	}
	if len(out) == 0 {
		return nil
	}
	return c.arr.Extend(out...)
}

// Index reads element i converted like Record.Get. Negative indexes count
// from the end.
func (c *Collection) Index(i int) (any, error) {
	raw, err := c.arr.Index(i)
	if err != nil {
		return nil, err
	}
	return c.read(raw, i)
}

func (c *Collection) read(raw any, i int) (any, error) {
	if unwrap(raw) == nil {
		return nil, nil
	}
	switch c.elem.kind {
	case kindRef:
		o, ok := raw.(*restdoc.ObjectNode)
		if !ok {
			return nil, fieldError(strconv.Itoa(i), "expected object, got %T", raw)
		}
		return c.elem.ref.Wrap(o), nil
	case kindCollection:
		a, ok := raw.(*restdoc.ArrayNode)
		if !ok {
			return nil, fieldError(strconv.Itoa(i), "expected list, got %T", raw)
		}
		return &Collection{elem: *c.elem.elem, lenient: c.lenient, arr: a}, nil
	}
	v, err := c.elem.read(raw)
	if err != nil {
		return nil, fieldError(strconv.Itoa(i), "%v", err)
	}
	return v, nil
}

// All yields converted elements. Elements that fail conversion are yielded raw.
func (c *Collection) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		for i, raw := range c.arr.All() {
			v, err := c.read(raw, i)
			if err != nil {
				v = raw
			}
			if !yield(i, v) {
				return
			}
		}
	}
}

// Records returns the elements of a ref collection.
func (c *Collection) Records() ([]*Record, error) {
	if c.elem.kind != kindRef {
		return nil, &restdoc.Error{Code: restdoc.CodeInvalidArgument, Message: "collection of " + c.elem.String() + " holds no records", Offset: -1}
	}
	out := make([]*Record, 0, c.arr.Len())
	for i, raw := range c.arr.All() {
		v, err := c.read(raw, i)
		if err != nil {
			return nil, err
		}
		rec, _ := v.(*Record)
		out = append(out, rec)
	}
	return out, nil
}

// AsJSON returns the JSON-native form of the list.
func (c *Collection) AsJSON() ([]any, error) {
	v, err := c.arr.Plain()
	if err != nil {
		return nil, err
	}
	return v.([]any), nil
}

func (c *Collection) MarshalJSON() ([]byte, error) { return c.arr.MarshalJSON() }
