package restdoc_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/reoring/restdoc"
	"github.com/reoring/restdoc/codec"
	"github.com/reoring/restdoc/source/jsonc"
	"github.com/reoring/restdoc/source/yaml"
)

var nonUTF8 = []byte{0xff, 0xfe, 0x00, 0x81, 0x9c, 0x10, 0x02, 0xc3, 0x28, 0xa0}

func TestLoads_RoundTrip(t *testing.T) {
	in := `{"i": 1, "f": 1.0, "s": "x\"y", "n": null, "b": true, "a": [1.5, "y", {}, []], "o": {"neg": -2, "big": 18446744073709551615}}`
	doc := mustLoad(t, in)
	out := serialized(t, doc)
	if out != in {
		t.Fatalf("round trip changed text:\n got %s\nwant %s", out, in)
	}
	again := mustLoad(t, out)
	if !again.Equal(doc) {
		t.Fatalf("reloaded document differs")
	}
}

func TestLoads_TopLevelForms(t *testing.T) {
	v, err := restdoc.Loads(`null`)
	if err != nil {
		t.Fatalf("null: %v", err)
	}
	if o, ok := v.(*restdoc.ObjectNode); !ok || o.Len() != 0 {
		t.Fatalf("null: got %T", v)
	}
	v, err = restdoc.Loads(`[1, 2]`)
	if err != nil {
		t.Fatalf("array: %v", err)
	}
	if a, ok := v.(*restdoc.ArrayNode); !ok || a.Len() != 2 {
		t.Fatalf("array: got %T", v)
	}
	v, err = restdoc.Loads(`"hi"`)
	if err != nil || v.Interface() != "hi" || v.Kind() != restdoc.KindString {
		t.Fatalf("scalar: %v %v", v, err)
	}
	if _, err := restdoc.LoadsObject(`[1]`); !errors.Is(err, restdoc.ErrInvalidArgument) {
		t.Fatalf("LoadsObject of array: %v", err)
	}
}

func TestLoads_Errors(t *testing.T) {
	malformed := []string{
		``, `{"a":`, `{"a": 1} {}`,
		`[1 2]`, `{"a":1,}`, `{,}`, `[,1]`, `{"a" 1}`, `[1,,2]`, `{"a":1 "b":2}`, `{"a"::1}`, `[1,]`,
	}
	for _, in := range malformed {
		_, err := restdoc.Loads(in)
		if !errors.Is(err, restdoc.ErrParse) {
			t.Fatalf("%q: want ErrParse, got %v", in, err)
		}
		if e, ok := restdoc.AsError(err); !ok || e.Code != restdoc.CodeParseError {
			t.Fatalf("%q: unexpected error %#v", in, err)
		}
		if _, err := restdoc.Load(strings.NewReader(in)); !errors.Is(err, restdoc.ErrParse) {
			t.Fatalf("%q from a reader: want ErrParse, got %v", in, err)
		}
	}
}

func TestLoads_Limits(t *testing.T) {
	_, err := restdoc.Loads(`{"a": {"b": {"c": 1}}}`, restdoc.Options{MaxDepth: 2})
	e, ok := restdoc.AsError(err)
	if !ok || e.Code != restdoc.CodeParseError || e.Path != "/a/b" {
		t.Fatalf("depth: %v", err)
	}
	if _, err := restdoc.Loads(`{"a": {"b": {"c": 1}}}`, restdoc.Options{MaxDepth: -1}); err != nil {
		t.Fatalf("unlimited depth: %v", err)
	}

	_, err = restdoc.Load(strings.NewReader(`{"a": "0123456789"}`), restdoc.Options{MaxBytes: 8})
	if !errors.Is(err, restdoc.ErrParse) {
		t.Fatalf("max bytes: %v", err)
	}

	dup := `{"a": 1, "a": 2}`
	doc := mustLoad(t, dup)
	if got := doc.Attr("a").Interface(); got != int64(2) {
		t.Fatalf("duplicate ignore: last value should win, got %v", got)
	}
	if _, err := restdoc.Loads(dup, restdoc.Options{OnDuplicateKey: restdoc.DuplicateError}); !errors.Is(err, restdoc.ErrParse) {
		t.Fatalf("duplicate error: %v", err)
	}
}

func TestLoads_NumberModes(t *testing.T) {
	doc := mustLoad(t, `{"p": 0.10, "n": 3}`, restdoc.Options{Numbers: restdoc.NumberDecimal})
	p, _ := doc.Get("p")
	d, ok := p.(*apd.Decimal)
	if !ok || d.String() != "0.10" {
		t.Fatalf("decimal: %#v", p)
	}
	if n, _ := doc.Get("n"); n != int64(3) {
		t.Fatalf("integer in decimal mode: %#v", n)
	}
	if got := serialized(t, doc); got != `{"p": 0.1, "n": 3}` {
		t.Fatalf("serialize: %s", got)
	}

	doc = mustLoad(t, `{"n": 3}`, restdoc.Options{Numbers: restdoc.NumberFloat64})
	if n, _ := doc.Get("n"); n != 3.0 {
		t.Fatalf("float mode: %#v", n)
	}
}

func TestBinary_EncodedOnlyOnSerialize(t *testing.T) {
	doc := mustObject(t, map[string]any{"bin": nonUTF8})
	stored := doc.Attr("bin").Interface()
	if !bytes.Equal(stored.([]byte), nonUTF8) {
		t.Fatalf("stored value is %T", stored)
	}
	enc, err := codec.EncodeScalar(stored, codec.Options{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec, err := codec.DecodeScalar(enc, codec.Options{})
	if err != nil || !bytes.Equal(dec.([]byte), nonUTF8) {
		t.Fatalf("decode(encode(bin)) = %v, %v", dec, err)
	}
	out := serialized(t, doc)
	if !strings.Contains(out, `"__binary__: `) {
		t.Fatalf("serialize lacks marker: %s", out)
	}

	back := mustLoad(t, out)
	if !back.Equal(doc) {
		t.Fatalf("marker was not decoded on load")
	}
	plain, err := doc.Plain()
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	if s := plain.(map[string]any)["bin"].(string); !strings.HasPrefix(s, codec.BinaryMarker) {
		t.Fatalf("plain: %q", s)
	}
}

func TestBinary_DisabledEncoding(t *testing.T) {
	doc := mustObject(t, map[string]any{"bin": nonUTF8}, restdoc.Options{Codec: codec.Options{DisableBinaryEncode: true}})
	_, err := doc.Serialize()
	if !errors.Is(err, restdoc.ErrEncodingUnsupported) {
		t.Fatalf("want ErrEncodingUnsupported, got %v", err)
	}
	if e, ok := restdoc.AsError(err); !ok || e.Path != "/bin" {
		t.Fatalf("error path: %v", err)
	}
}

func double(x int) int { return 2 * x }

func TestCallable_RoundTripThroughRegistry(t *testing.T) {
	reg := codec.NewRegistry().MustRegister("double", double)
	opts := restdoc.Options{Codec: codec.Options{Callables: reg}}

	doc := mustObject(t, nil, opts)
	if err := doc.Set("fn", double); err != nil {
		t.Fatalf("set: %v", err)
	}
	out := serialized(t, doc)
	if !strings.Contains(out, codec.CallableMarker) {
		t.Fatalf("serialize: %s", out)
	}

	back := mustLoad(t, out, opts)
	fn, ok := back.Attr("fn").Interface().(func(int) int)
	if !ok {
		t.Fatalf("decoded %T", back.Attr("fn").Interface())
	}
	if fn(21) != double(21) {
		t.Fatalf("decoded callable returned %d", fn(21))
	}
}

func TestCallable_WithoutCodec(t *testing.T) {
	doc := mustObject(t, nil)
	if err := doc.Set("fn", double); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := doc.Serialize(); !errors.Is(err, restdoc.ErrEncodingUnsupported) {
		t.Fatalf("want ErrEncodingUnsupported, got %v", err)
	}
	// marker text without a codec stays text
	kept := mustLoad(t, `{"fn": "__callable__: ZG91Ymxl"}`)
	if kept.Attr("fn").Kind() != restdoc.KindString {
		t.Fatalf("kind %v", kept.Attr("fn").Kind())
	}
}

func TestSerialize_TimesAndDates(t *testing.T) {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 500_000_000, time.UTC)
	doc := mustObject(t, restdoc.Fields{
		{Key: "at", Value: ts},
		{Key: "on", Value: codec.Date{Year: 2024, Month: time.May, Day: 6}},
	})
	if got := serialized(t, doc); got != `{"at": "2024-05-06T07:08:09.5Z", "on": "2024-05-06"}` {
		t.Fatalf("serialize: %s", got)
	}
}

func TestPrettyPrint(t *testing.T) {
	doc := mustLoad(t, `{"a": [1, 2], "b": {}}`)
	got, err := doc.PrettyPrint(2)
	if err != nil {
		t.Fatalf("pretty: %v", err)
	}
	want := "{\n  \"a\": [\n    1,\n    2\n  ],\n  \"b\": {}\n}"
	if got != want {
		t.Fatalf("pretty:\n%s\nwant:\n%s", got, want)
	}
}

func TestPlain_MatchesSerializeThenLoad(t *testing.T) {
	doc := mustLoad(t, `{"x": [1, 2.5, {"y": null}], "z": "s"}`)
	p, err := doc.Plain()
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	want := map[string]any{"x": []any{int64(1), 2.5, map[string]any{"y": nil}}, "z": "s"}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Fatalf("plain (-want +got):\n%s", diff)
	}
	b, err := doc.MarshalJSON()
	if err != nil || string(b) != doc.String() {
		t.Fatalf("MarshalJSON: %s %v", b, err)
	}
}

func TestDrivers_ProduceTheSameTree(t *testing.T) {
	want := mustLoad(t, `{"name": "x", "tags": ["a", "b"], "n": 2, "r": 1.5, "ok": true}`)

	y, err := restdoc.LoadsObject("name: x\ntags: [a, b]\nn: 2\nr: 1.5\nok: true\n", restdoc.Options{Driver: yaml.Driver()})
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !y.Equal(want) || serialized(t, y) != serialized(t, want) {
		t.Fatalf("yaml tree differs: %s", serialized(t, y))
	}

	c, err := restdoc.LoadsObject(`{
  // comment
  "name": "x", "tags": ["a", "b",], "n": 2, "r": 1.5, "ok": true,
}`, restdoc.Options{Driver: jsonc.Driver()})
	if err != nil {
		t.Fatalf("jsonc: %v", err)
	}
	if !c.Equal(want) {
		t.Fatalf("jsonc tree differs: %s", serialized(t, c))
	}
}

func TestParse_Scalars(t *testing.T) {
	v, err := restdoc.Parse(codec.EncodeBinary(nonUTF8))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v.Kind() != restdoc.KindBytes || !bytes.Equal(v.Interface().([]byte), nonUTF8) {
		t.Fatalf("marker string was not decoded: %v", v)
	}
	s := v.(restdoc.Scalar)
	if !s.Truthy() || s.Attr("x").Truthy() {
		t.Fatalf("scalar truthiness")
	}
	if err := s.Set("x", 1); !errors.Is(err, restdoc.ErrInvalidArgument) {
		t.Fatalf("set on scalar: %v", err)
	}
	if _, err := restdoc.Parse(codec.BinaryMarker + "!!"); err == nil {
		t.Fatalf("malformed marker accepted")
	}
	n, _ := restdoc.Parse(int16(0))
	if n.Truthy() || !n.(restdoc.Scalar).Equal(0.0) {
		t.Fatalf("zero scalar")
	}
}
