package restdoc

import (
	"slices"
	"weak"
)

// parentRef is a weak back-link to the containing node. A child never keeps
// its parent alive.
type parentRef struct {
	obj weak.Pointer[ObjectNode]
	arr weak.Pointer[ArrayNode]
}

func objectRef(o *ObjectNode) parentRef { return parentRef{obj: weak.Make(o)} }
func arrayRef(a *ArrayNode) parentRef   { return parentRef{arr: weak.Make(a)} }

func (p parentRef) node() Node {
	if o := p.obj.Value(); o != nil {
		return o
	}
	if a := p.arr.Value(); a != nil {
		return a
	}
	return nil
}

type hook struct {
	id int
	fn func(Node)
}

// nodeBase holds what ObjectNode and ArrayNode share: the parent link, the
// options of the tree and change observers.
type nodeBase struct {
	parent parentRef
	cfg    *Options
	hooks  []hook
	nextID int
}

func (b *nodeBase) observe(fn func(Node)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	b.nextID++
	id := b.nextID
	b.hooks = append(b.hooks, hook{id: id, fn: fn})
	return func() {
		b.hooks = slices.DeleteFunc(b.hooks, func(h hook) bool { return h.id == id })
	}
}

func newConfig(opts []Options) *Options {
	o := pickOptions(opts)
	return &o
}

// rootOf follows parent links upward.
func rootOf(n Node) Node {
	for {
		p := n.Parent()
		if p == nil {
			return n
		}
		n = p
	}
}

func depthOf(n Node) int {
	d := 0
	for p := n.Parent(); p != nil; p = p.Parent() {
		d++
	}
	return d
}

// notify runs the observers of the root above n. Every mutating operation
// calls it exactly once.
func notify(n Node) {
	root := rootOf(n)
	b := root.base()
	if len(b.hooks) == 0 {
		return
	}
	b.cfg.logger().Debug("restdoc: change", "observers", len(b.hooks))
	for _, h := range slices.Clone(b.hooks) {
		h.fn(root)
	}
}

// attach links a freshly stored child to its container.
func attach(v any, ref parentRef) {
	if n, ok := v.(Node); ok {
		n.base().parent = ref
	}
}

// detach clears the parent link of a child removed from container unless it
// has moved elsewhere since.
func detach(v any, container Node) {
	if n, ok := v.(Node); ok && n.Parent() == container {
		n.base().parent = parentRef{}
	}
}

// registerRoot wires Options.OnChange on a newly constructed root.
func registerRoot(n Node) {
	if fn := n.base().cfg.OnChange; fn != nil {
		n.base().observe(fn)
	}
}

// replaceChild detaches old unless it is the node being stored again.
func replaceChild(old, v any, container Node) {
	on, ok := old.(Node)
	if !ok {
		return
	}
	if vn, _ := v.(Node); vn != on {
		detach(old, container)
	}
}
