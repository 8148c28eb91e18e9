// Package restdoc is a mutable, navigable view over JSON-compatible data.
//
// Documents are trees of *ObjectNode and *ArrayNode holding native Go
// scalars. Navigation with Attr never fails: a missing key yields an *Absent
// placeholder, and writing through a placeholder creates the missing objects.
//
//	doc, _ := restdoc.LoadsObject(`{"a": {"b": [1, 2, 3]}}`)
//	doc.Attr("a").Attr("b").(*restdoc.ArrayNode).Append(4)
//	doc.Attr("x").Attr("y").Set("z", "v") // {"x": {"y": {"z": "v"}}}
//
// Values JSON cannot carry (binary blobs, callables, times, dates and
// decimals) stay native in the tree and are encoded on Serialize or Plain.
// Binary and callable values use the "__binary__: " and "__callable__: "
// marker strings, which are decoded again when written or loaded.
//
// Every mutation runs the observers registered on the root of the tree
// (Observe, Options.OnChange) exactly once. Children point to their parent
// through weak pointers.
package restdoc
