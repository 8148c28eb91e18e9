// Package model is a thin declarative layer over restdoc documents.
//
// A Schema lists typed fields. Records built from a schema keep their data in
// a restdoc.ObjectNode: undeclared keys are dropped on construction, writes
// are coerced to the field type, and typed getters convert stored values back
// (RFC 3339 strings to time.Time, ISO dates to codec.Date).
//
//	ref := model.Object().
//	    Field("id", model.Int()).
//	    Field("string", model.String()).
//	    MustBuild()
//	user := model.Object().
//	    Field("id", model.Int()).
//	    Field("nick", model.String()).Lenient().
//	    Field("ref", model.Ref(ref)).
//	    Field("tags", model.CollectionOf(model.String())).
//	    MustBuild()
//
//	rec, err := user.New(map[string]any{"id": "5", "extra": true})
//	// rec.Data() is {"id": 5}
//
// Coercion follows the usual conversions: "5" is accepted for an Int field,
// while 5 is rejected for a String field. Lenient fields store null (or skip
// collection elements) instead of failing.
package model
