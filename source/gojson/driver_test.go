package gojson_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/restdoc/source"
	"github.com/reoring/restdoc/source/gojson"
)

type tok struct {
	Kind source.Kind
	Text string
}

func collect(t *testing.T, ts source.TokenSource) ([]tok, error) {
	t.Helper()
	var out []tok
	for {
		tk, err := ts.NextToken()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		text := tk.String
		switch tk.Kind {
		case source.KindNumber:
			text = tk.Number
		case source.KindBool:
			if tk.Bool {
				text = "true"
			} else {
				text = "false"
			}
		}
		out = append(out, tok{tk.Kind, text})
	}
}

func TestTokens_KeepMemberOrder(t *testing.T) {
	got, err := collect(t, gojson.NewBytes([]byte(`{"z":1,"a":[true,null,"s"],"m":{"k":1.5}}`)))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	want := []tok{
		{source.KindBeginObject, ""},
		{source.KindKey, "z"}, {source.KindNumber, "1"},
		{source.KindKey, "a"}, {source.KindBeginArray, ""},
		{source.KindBool, "true"}, {source.KindNull, ""}, {source.KindString, "s"},
		{source.KindEndArray, ""},
		{source.KindKey, "m"}, {source.KindBeginObject, ""},
		{source.KindKey, "k"}, {source.KindNumber, "1.5"},
		{source.KindEndObject, ""},
		{source.KindEndObject, ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestTokens_SyntaxError(t *testing.T) {
	for _, in := range []string{`{"a":}`, `[1 2]`, `{"a":1,}`, `[,1]`, `{"a" 1}`, `{} x`} {
		_, err := collect(t, gojson.NewBytes([]byte(in)))
		var se *source.SyntaxError
		if !errors.As(err, &se) {
			t.Fatalf("%q: expected syntax error, got %v", in, err)
		}
		if _, err := collect(t, gojson.NewReader(strings.NewReader(in))); !errors.As(err, &se) {
			t.Fatalf("%q from a reader: expected syntax error, got %v", in, err)
		}
	}
}

func TestTokens_Empty(t *testing.T) {
	got, err := collect(t, gojson.NewBytes([]byte("  \n")))
	if err != nil || len(got) != 0 {
		t.Fatalf("empty input: tokens=%v err=%v", got, err)
	}
}

func TestDriver_Name(t *testing.T) {
	if gojson.Driver().Name() != "go-json" {
		t.Fatalf("unexpected name %q", gojson.Driver().Name())
	}
}
