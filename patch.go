package restdoc

import (
	jsonpatch "github.com/evanphx/json-patch"

	"github.com/reoring/restdoc/source/gojson"
)

// ApplyPatch applies an RFC 6902 JSON Patch. The content is replaced in one
// step, so observers run once; on error nothing changes.
func (o *ObjectNode) ApplyPatch(patch []byte) error { return applyPatch(o, jsonPatch(patch)) }

// MergePatch applies an RFC 7386 JSON Merge Patch.
func (o *ObjectNode) MergePatch(patch []byte) error { return applyPatch(o, mergePatch(patch)) }

func (a *ArrayNode) ApplyPatch(patch []byte) error { return applyPatch(a, jsonPatch(patch)) }
func (a *ArrayNode) MergePatch(patch []byte) error { return applyPatch(a, mergePatch(patch)) }

// Diff returns the RFC 7386 merge patch that turns a into b.
func Diff(a, b Node) ([]byte, error) {
	da, err := a.MarshalJSON()
	if err != nil {
		return nil, err
	}
	db, err := b.MarshalJSON()
	if err != nil {
		return nil, err
	}
	p, err := jsonpatch.CreateMergePatch(da, db)
	if err != nil {
		return nil, newError(CodeInvalidArgument, "", "cannot diff documents", err)
	}
	return p, nil
}

func jsonPatch(patch []byte) func([]byte) ([]byte, error) {
	return func(doc []byte) ([]byte, error) {
		p, err := jsonpatch.DecodePatch(patch)
		if err != nil {
			return nil, err
		}
		return p.Apply(doc)
	}
}

func mergePatch(patch []byte) func([]byte) ([]byte, error) {
	return func(doc []byte) ([]byte, error) { return jsonpatch.MergePatch(doc, patch) }
}

func applyPatch(n Node, apply func([]byte) ([]byte, error)) error {
	cfg := n.base().cfg
	doc, err := marshal(n, cfg)
	if err != nil {
		return err
	}
	out, err := apply(doc)
	if err != nil {
		return newError(CodeInvalidArgument, "", "patch failed", err)
	}
	tree, err := decodeTokens(gojson.NewBytes(out), cfg)
	if err != nil {
		return err
	}
	c := newCoercer(cfg, nil)
	fresh, err := c.value(tree, depthOf(n))
	if err != nil {
		return err
	}
	switch x := n.(type) {
	case *ObjectNode:
		f, ok := fresh.(*ObjectNode)
		if !ok {
			return invalidArgument("patch turned an object into %T", fresh)
		}
		keepOrder(x, f)
		x.replaceContent(f)
	case *ArrayNode:
		f, ok := fresh.(*ArrayNode)
		if !ok {
			return invalidArgument("patch turned an array into %T", fresh)
		}
		keepArrayOrder(x, f)
		x.replaceContent(f)
	}
	notify(n)
	return nil
}

func (o *ObjectNode) replaceContent(f *ObjectNode) {
	for _, k := range o.keys {
		detach(o.vals[k], o)
	}
	o.keys, o.vals = f.keys, f.vals
	ref := objectRef(o)
	for _, k := range o.keys {
		attach(o.vals[k], ref)
	}
}

func (a *ArrayNode) replaceContent(f *ArrayNode) {
	for _, v := range a.items {
		detach(v, a)
	}
	a.items = f.items
	ref := arrayRef(a)
	for _, v := range a.items {
		attach(v, ref)
	}
}

// keepOrder reorders fresh so keys that survived keep their old positions
// and new keys follow. Patch output comes back with sorted keys.
func keepOrder(old, fresh *ObjectNode) {
	ordered := make([]string, 0, len(fresh.keys))
	for _, k := range old.keys {
		if _, ok := fresh.vals[k]; ok {
			ordered = append(ordered, k)
		}
	}
	for _, k := range fresh.keys {
		if _, ok := old.vals[k]; !ok {
			ordered = append(ordered, k)
		}
	}
	fresh.keys = ordered
	for _, k := range ordered {
		reorderChild(old.vals[k], fresh.vals[k])
	}
}

func keepArrayOrder(old, fresh *ArrayNode) {
	for i := range min(len(old.items), len(fresh.items)) {
		reorderChild(old.items[i], fresh.items[i])
	}
}

func reorderChild(old, fresh any) {
	switch f := fresh.(type) {
	case *ObjectNode:
		if o, ok := old.(*ObjectNode); ok {
			keepOrder(o, f)
		}
	case *ArrayNode:
		if o, ok := old.(*ArrayNode); ok {
			keepArrayOrder(o, f)
		}
	}
}
