package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/reoring/restdoc"
	"github.com/reoring/restdoc/codec"
	"github.com/reoring/restdoc/model"
)

var refSchema = model.Object().
	Field("id", model.Int()).
	Field("string", model.String()).
	MustBuild()

func userSchema(allow ...string) *model.Schema {
	return model.Object().
		Field("_foo", model.String()).
		Field("id", model.Int()).
		Field("id_lenient", model.Int()).Lenient().
		Field("string", model.String()).
		Field("string_lenient", model.String()).Lenient().
		Field("floating_point", model.Float()).
		Field("flag", model.Bool()).
		Field("date_time", model.Datetime()).
		Field("date", model.Date()).
		Field("blob", model.Any()).
		Field("ref", model.Ref(refSchema)).
		Field("ints", model.CollectionOf(model.Int())).
		Field("ints_lenient", model.CollectionOf(model.Int())).Lenient().
		Field("refs", model.CollectionOf(model.Ref(refSchema))).
		Allow(allow...).
		MustBuild()
}

func mustNew(t *testing.T, s *model.Schema, input any) *model.Record {
	t.Helper()
	r, err := s.New(input)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return r
}

func TestNew_FiltersUndeclaredAndPrivateKeys(t *testing.T) {
	input := map[string]any{"_foo": "kept?", "_bar": 1, "foo": 2, "id": 3}

	plain := mustNew(t, userSchema(), input)
	if got := plain.Data().Keys(); !cmp.Equal(got, []string{"id"}) {
		t.Fatalf("keys: %v", got)
	}

	allowed := mustNew(t, userSchema("_foo"), input)
	if got := allowed.Data().Keys(); !cmp.Equal(got, []string{"_foo", "id"}) {
		t.Fatalf("keys with allow: %v", got)
	}
	if _, err := plain.Get("_foo"); !errors.Is(err, restdoc.ErrInvalidArgument) {
		t.Fatalf("private field without allow: %v", err)
	}
}

func TestNew_FiltersNestedRefs(t *testing.T) {
	r := mustNew(t, userSchema(), map[string]any{
		"ref":  map[string]any{"id": "7", "foo": true},
		"refs": []any{map[string]any{"string": "s", "bar": 1}},
	})
	ref, err := r.Ref("ref")
	if err != nil {
		t.Fatalf("ref: %v", err)
	}
	if ref.Data().Has("foo") {
		t.Fatalf("nested undeclared key kept: %s", ref.Data())
	}
	if id, _ := ref.Int("id"); id != 7 {
		t.Fatalf("nested id: %d", id)
	}
	refs, err := r.Collection("refs")
	if err != nil {
		t.Fatalf("collection: %v", err)
	}
	recs, err := refs.Records()
	if err != nil || len(recs) != 1 {
		t.Fatalf("records: %v %v", recs, err)
	}
	if recs[0].Data().Has("bar") {
		t.Fatalf("collection element kept undeclared key: %s", recs[0].Data())
	}
}

func TestSet_CoercionMatrix(t *testing.T) {
	dec, _, _ := apd.NewFromString("5.3")
	cases := []struct {
		name    string
		field   string
		in      any
		want    any
		wantErr bool
	}{
		{"int from string", "id", "5", int64(5), false},
		{"int from int", "id", 5, int64(5), false},
		{"int from text", "id", "test", nil, true},
		{"lenient int from text", "id_lenient", "test", nil, false},
		{"string from int", "string", 5, nil, true},
		{"lenient string from int", "string_lenient", 5, "5", false},
		{"float from decimal", "floating_point", dec, 5.3, false},
		{"float from text", "floating_point", "test", nil, true},
		{"bool from string", "flag", "true", true, false},
		{"clear with nil", "id", nil, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := mustNew(t, userSchema(), nil)
			err := r.Set(tc.field, tc.in)
			if tc.wantErr {
				if !errors.Is(err, restdoc.ErrInvalidArgument) {
					t.Fatalf("want ErrInvalidArgument, got %v", err)
				}
				if r.Data().Has(tc.field) {
					t.Fatalf("failed set stored a value")
				}
				return
			}
			if err != nil {
				t.Fatalf("set: %v", err)
			}
			got, err := r.Get(tc.field)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestSet_UnknownField(t *testing.T) {
	r := mustNew(t, userSchema(), nil)
	err := r.Set("nope", 1)
	e, ok := restdoc.AsError(err)
	if !ok || e.Code != restdoc.CodeInvalidArgument || e.Path != "/nope" {
		t.Fatalf("unknown field: %v", err)
	}
}

func TestDatesRoundTripThroughJSON(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	on := codec.Date{Year: 2024, Month: time.January, Day: 2}

	r := mustNew(t, userSchema(), map[string]any{"date_time": at, "date": on})
	out, err := r.AsJSON()
	if err != nil {
		t.Fatalf("as json: %v", err)
	}
	want := map[string]any{"date": "2024-01-02", "date_time": "2024-01-02T03:04:05Z"}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("as json (-want +got):\n%s", diff)
	}

	back := mustNew(t, userSchema(), out)
	gotAt, err := back.Time("date_time")
	if err != nil || !gotAt.Equal(at) {
		t.Fatalf("time: %v %v", gotAt, err)
	}
	gotOn, err := back.Date("date")
	if err != nil || gotOn != on {
		t.Fatalf("date: %v %v", gotOn, err)
	}
}

func TestAsJSON_EncodingDisabled(t *testing.T) {
	s := model.Object().
		Field("blob", model.Any()).
		Codec(codec.Options{DisableBinaryEncode: true, DisableCallableEncode: true}).
		MustBuild()

	bin := mustNew(t, s, map[string]any{"blob": []byte{0xff, 0xfe, 0x00, 0x01}})
	if _, err := bin.AsJSON(); !errors.Is(err, restdoc.ErrEncodingUnsupported) {
		t.Fatalf("binary: want ErrEncodingUnsupported, got %v", err)
	}

	fn := mustNew(t, s, nil)
	if err := fn.Set("blob", func() {}); err != nil {
		t.Fatalf("set callable: %v", err)
	}
	if _, err := fn.AsJSON(); !errors.Is(err, restdoc.ErrEncodingUnsupported) {
		t.Fatalf("callable: want ErrEncodingUnsupported, got %v", err)
	}
}

func TestRef_MaterializesAndCompares(t *testing.T) {
	r := mustNew(t, userSchema(), nil)
	ref, err := r.Ref("ref")
	if err != nil {
		t.Fatalf("ref: %v", err)
	}
	if !r.Data().Has("ref") {
		t.Fatalf("ref not materialized: %s", r.Data())
	}
	if err := ref.Set("id", "9"); err != nil {
		t.Fatalf("set through ref: %v", err)
	}
	if got := r.Data().String(); got != `{"ref": {"id": 9}}` {
		t.Fatalf("document: %s", got)
	}

	other := mustNew(t, refSchema, map[string]any{"id": 9})
	if !ref.Equal(other) {
		t.Fatalf("ref %s != %s", ref.Data(), other.Data())
	}

	// assigning a record copies its data
	r2 := mustNew(t, userSchema(), nil)
	if err := r2.Set("ref", other); err != nil {
		t.Fatalf("assign ref: %v", err)
	}
	if !r2.Equal(r) {
		t.Fatalf("%s != %s", r2.Data(), r.Data())
	}
	got, err := r2.Get("ref")
	if err != nil {
		t.Fatalf("get ref: %v", err)
	}
	if rec, ok := got.(*model.Record); !ok || !rec.Equal(other) {
		t.Fatalf("get ref: %#v", got)
	}
}

func TestWrap_WritesThrough(t *testing.T) {
	doc, err := restdoc.LoadsObject(`{"id": "12", "extra": 1}`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	r := refSchema.Wrap(doc)
	if id, err := r.Int("id"); err != nil || id != 12 {
		t.Fatalf("int: %d %v", id, err)
	}
	if err := r.Set("string", "x"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := doc.String(); got != `{"id": "12", "extra": 1, "string": "x"}` {
		t.Fatalf("document: %s", got)
	}
}

func TestBuild_Errors(t *testing.T) {
	if _, err := model.Object().Field("r", model.Ref(nil)).Build(); err == nil {
		t.Fatalf("ref without schema built")
	}
	if _, err := model.Object().Field("", model.Int()).Build(); err == nil {
		t.Fatalf("empty field name built")
	}
	s := model.Object().Field("a", model.Int()).Field("b", model.Int()).Exclude("b").MustBuild()
	if got := s.Fields(); !cmp.Equal(got, []string{"a"}) {
		t.Fatalf("fields: %v", got)
	}
}

func TestJSONSchema(t *testing.T) {
	s := model.Object().
		Field("id", model.Int()).
		Field("when", model.Datetime()).Lenient().
		Field("tags", model.CollectionOf(model.String())).
		MustBuild()
	got := s.JSONSchema()
	if got.Type != "object" || got.AdditionalProperties != false {
		t.Fatalf("root: %+v", got)
	}
	if got.Properties["id"].Type != "integer" {
		t.Fatalf("id: %+v", got.Properties["id"])
	}
	when := got.Properties["when"]
	if len(when.OneOf) != 2 || when.OneOf[0].Format != "date-time" || when.OneOf[1].Type != "null" {
		t.Fatalf("when: %+v", when)
	}
	tags := got.Properties["tags"]
	if tags.Type != "array" || tags.Items.Type != "string" {
		t.Fatalf("tags: %+v", tags)
	}
}
