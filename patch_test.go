package restdoc_test

import (
	"errors"
	"testing"

	"github.com/reoring/restdoc"
)

func TestApplyPatch_KeepsOrderAndNotifiesOnce(t *testing.T) {
	doc := mustLoad(t, `{"b": 1, "a": {"y": 1, "x": 2}}`)
	calls := 0
	doc.Observe(func(restdoc.Node) { calls++ })

	err := doc.ApplyPatch([]byte(`[{"op": "add", "path": "/c", "value": 3}, {"op": "replace", "path": "/a/x", "value": 5}]`))
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if calls != 1 {
		t.Fatalf("want 1 notification, got %d", calls)
	}
	if got := serialized(t, doc); got != `{"b": 1, "a": {"y": 1, "x": 5}, "c": 3}` {
		t.Fatalf("serialize: %s", got)
	}
	if doc.Attr("a").(*restdoc.ObjectNode).Parent() != restdoc.Node(doc) {
		t.Fatalf("patched child is not linked to the document")
	}
}

func TestApplyPatch_FailureLeavesDocument(t *testing.T) {
	doc := mustLoad(t, `{"a": 1}`)
	calls := 0
	doc.Observe(func(restdoc.Node) { calls++ })
	err := doc.ApplyPatch([]byte(`[{"op": "remove", "path": "/missing"}]`))
	if !errors.Is(err, restdoc.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
	if calls != 0 || serialized(t, doc) != `{"a": 1}` {
		t.Fatalf("failed patch changed the document")
	}
}

func TestMergePatchAndDiff(t *testing.T) {
	doc := mustLoad(t, `{"a": 1, "b": {"c": 2}}`)
	if err := doc.MergePatch([]byte(`{"a": null, "b": {"d": 3}}`)); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got := serialized(t, doc); got != `{"b": {"c": 2, "d": 3}}` {
		t.Fatalf("serialize: %s", got)
	}

	from := mustLoad(t, `{"a": 1, "b": 2}`)
	to := mustLoad(t, `{"a": 1, "b": 3, "c": true}`)
	p, err := restdoc.Diff(from, to)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if err := from.MergePatch(p); err != nil {
		t.Fatalf("apply diff: %v", err)
	}
	if !from.Equal(to) {
		t.Fatalf("diff did not reproduce target: %s", serialized(t, from))
	}
}
