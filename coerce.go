package restdoc

import (
	"math"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v2"

	"github.com/reoring/restdoc/codec"
	eng "github.com/reoring/restdoc/internal/engine"
)

// coercer converts written Go values into stored form. It never touches the
// destination tree: nodes handed in as values are only re-linked on commit,
// so a failed conversion leaves everything unchanged.
type coercer struct {
	cfg     *Options
	dest    Node // container receiving the value, nil for fresh trees
	clone   bool // copy nodes instead of adopting them
	pending []Node
	adopted []adoption
}

type adoption struct {
	n   Node
	ref parentRef
}

func newCoercer(cfg *Options, dest Node) *coercer {
	return &coercer{cfg: cfg, dest: dest}
}

// commit links adopted nodes. The caller attaches the top-level value itself.
func (c *coercer) commit() {
	for _, a := range c.adopted {
		a.n.base().parent = a.ref
	}
}

func (c *coercer) link(child any, ref parentRef) {
	n, ok := child.(Node)
	if !ok {
		return
	}
	if slices.Contains(c.pending, n) {
		c.adopted = append(c.adopted, adoption{n: n, ref: ref})
		return
	}
	n.base().parent = ref
}

type numberLike interface {
	String() string
	Int64() (int64, error)
	Float64() (float64, error)
}

func (c *coercer) value(v any, depth int) (any, error) {
	if limit := c.cfg.maxDepth(); limit > 0 && depth > limit {
		return nil, invalidArgument("value nests deeper than %d levels", limit)
	}
	switch x := v.(type) {
	case nil, *Absent:
		return nil, nil
	case Scalar:
		return c.value(x.v, depth)
	case *ObjectNode:
		if c.clone {
			return c.object(x.keys, func(i int) any { return x.vals[x.keys[i]] }, depth)
		}
		return c.node(x)
	case *ArrayNode:
		if c.clone {
			return c.array(len(x.items), func(i int) any { return x.items[i] }, depth)
		}
		return c.node(x)
	case *eng.Object:
		return c.object(x.Keys, func(i int) any { return x.Values[i] }, depth)
	case Fields:
		keys := make([]string, len(x))
		for i, f := range x {
			keys[i] = f.Key
		}
		return c.object(keys, func(i int) any { return x[i].Value }, depth)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return c.object(keys, func(i int) any { return x[keys[i]] }, depth)
	case []any:
		return c.array(len(x), func(i int) any { return x[i] }, depth)
	case string:
		return c.str(x)
	case bool, int64, float64, time.Time, codec.Date:
		return x, nil
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x), nil
		}
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint:
		return c.value(uint64(x), depth)
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case float32:
		return float64(x), nil
	case []byte:
		return append([]byte{}, x...), nil
	case *apd.Decimal:
		if x == nil {
			return nil, nil
		}
		return new(apd.Decimal).Set(x), nil
	case apd.Decimal:
		return new(apd.Decimal).Set(&x), nil
	case numberLike:
		n, err := eng.ParseNumber(x.String(), NumberNative)
		if err != nil {
			return nil, invalidArgument("invalid number %q", x.String())
		}
		return n, nil
	}
	return c.reflectValue(reflect.ValueOf(v), depth)
}

func (c *coercer) reflectValue(rv reflect.Value, depth int) (any, error) {
	switch rv.Kind() {
	case reflect.Func:
		if rv.IsNil() {
			return nil, nil
		}
		return rv.Interface(), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		keys := make([]string, 0, rv.Len())
		vals := make(map[string]any, rv.Len())
		for it := rv.MapRange(); it.Next(); {
			k := it.Key().String()
			keys = append(keys, k)
			vals[k] = it.Value().Interface()
		}
		sort.Strings(keys)
		return c.object(keys, func(i int) any { return vals[keys[i]] }, depth)
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return b, nil
		}
		return c.array(rv.Len(), func(i int) any { return rv.Index(i).Interface() }, depth)
	case reflect.String:
		return c.str(rv.String())
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return c.value(rv.Uint(), depth)
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Invalid:
		return nil, nil
	}
	return nil, invalidArgument("unsupported value of type %s", rv.Type())
}

// str decodes marker strings eagerly. Callable markers stay as text when no
// callable codec is configured.
func (c *coercer) str(s string) (any, error) {
	if !codec.HasMarker(s) {
		return s, nil
	}
	if strings.HasPrefix(s, codec.CallableMarker) && c.cfg.Codec.Callables == nil {
		return s, nil
	}
	v, err := codec.DecodeScalar(s, c.cfg.Codec)
	if err != nil {
		return nil, encodingError("", err)
	}
	return v, nil
}

// node stores n as-is. It moves under its new container on commit; a node
// may not be stored inside itself or one of its descendants.
func (c *coercer) node(n Node) (any, error) {
	for p := c.dest; p != nil; p = p.Parent() {
		if p == n {
			return nil, invalidArgument("cannot store a node inside itself")
		}
	}
	if !slices.Contains(c.pending, n) {
		c.pending = append(c.pending, n)
	}
	return n, nil
}

func (c *coercer) object(keys []string, at func(int) any, depth int) (*ObjectNode, error) {
	o := &ObjectNode{nodeBase: nodeBase{cfg: c.cfg}, vals: make(map[string]any, len(keys))}
	ref := objectRef(o)
	for i, k := range keys {
		v, err := c.value(at(i), depth+1)
		if err != nil {
			return nil, withPath(err, k)
		}
		if _, dup := o.vals[k]; !dup {
			o.keys = append(o.keys, k)
		}
		o.vals[k] = v
		c.link(v, ref)
	}
	return o, nil
}

func (c *coercer) array(n int, at func(int) any, depth int) (*ArrayNode, error) {
	a := &ArrayNode{nodeBase: nodeBase{cfg: c.cfg}, items: make([]any, 0, n)}
	ref := arrayRef(a)
	for i := 0; i < n; i++ {
		v, err := c.value(at(i), depth+1)
		if err != nil {
			return nil, withPath(err, strconv.Itoa(i))
		}
		a.items = append(a.items, v)
		c.link(v, ref)
	}
	return a, nil
}
