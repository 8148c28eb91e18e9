package codec_test

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v2"

	"github.com/reoring/restdoc/codec"
)

var binaryPayload = []byte{0x89, 0x50, 0x4e, 0x47, 0x00, 0xff, 0x10, 0x80, 0xfe, 0x01}

func TestEncodeScalar_Binary(t *testing.T) {
	enc, err := codec.EncodeScalar(binaryPayload, codec.Options{})
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	s, ok := enc.(string)
	if !ok || !strings.HasPrefix(s, codec.BinaryMarker) {
		t.Fatalf("want binary marker, got %#v", enc)
	}
	dec, err := codec.DecodeScalar(enc, codec.Options{})
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if !bytes.Equal(dec.([]byte), binaryPayload) {
		t.Fatalf("roundtrip mismatch: %v", dec)
	}
}

func TestEncodeScalar_TextualBytesBecomeString(t *testing.T) {
	enc, err := codec.EncodeScalar([]byte("byte string"), codec.Options{})
	if err != nil || enc != "byte string" {
		t.Fatalf("want plain string, got %#v err=%v", enc, err)
	}
}

func TestEncodeScalar_BinaryDisabled(t *testing.T) {
	_, err := codec.EncodeScalar(binaryPayload, codec.Options{DisableBinaryEncode: true})
	if !errors.Is(err, codec.ErrEncodingUnsupported) {
		t.Fatalf("want ErrEncodingUnsupported, got %v", err)
	}
}

func TestEncodeScalar_Decimal(t *testing.T) {
	d, _, err := apd.NewFromString("3.1459")
	if err != nil {
		t.Fatal(err)
	}
	enc, err := codec.EncodeScalar(d, codec.Options{})
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if enc != 3.1459 {
		t.Fatalf("want 3.1459, got %#v", enc)
	}
}

func TestEncodeScalar_Times(t *testing.T) {
	ts := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	enc, err := codec.EncodeScalar(ts, codec.Options{})
	if err != nil || enc != "2024-03-04T05:06:07Z" {
		t.Fatalf("datetime: got %#v err=%v", enc, err)
	}
	enc, err = codec.EncodeScalar(codec.DateOf(ts), codec.Options{})
	if err != nil || enc != "2024-03-04" {
		t.Fatalf("date: got %#v err=%v", enc, err)
	}
	opts := codec.Options{
		EncodeDatetime: func(t time.Time) string { return t.Format("2006/01/02 15:04") },
		EncodeDate:     func(d codec.Date) string { return "D" + d.String() },
	}
	enc, _ = codec.EncodeScalar(ts, opts)
	if enc != "2024/03/04 05:06" {
		t.Fatalf("custom datetime: got %#v", enc)
	}
	enc, _ = codec.EncodeScalar(codec.DateOf(ts), opts)
	if enc != "D2024-03-04" {
		t.Fatalf("custom date: got %#v", enc)
	}
}

func TestEncodeScalar_NonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := codec.EncodeScalar(f, codec.Options{}); !errors.Is(err, codec.ErrEncodingUnsupported) {
			t.Fatalf("%v: want ErrEncodingUnsupported, got %v", f, err)
		}
	}
}

func TestEncodeScalar_PassThrough(t *testing.T) {
	for _, v := range []any{nil, true, "x", int64(3), 2.5} {
		got, err := codec.EncodeScalar(v, codec.Options{})
		if err != nil || got != v {
			t.Fatalf("pass-through %#v: got %#v err=%v", v, got, err)
		}
	}
}

func inc(x int) int { return x + 1 }

func TestCallable_RoundtripThroughRegistry(t *testing.T) {
	reg := codec.NewRegistry().MustRegister("inc", inc)
	opts := codec.Options{Callables: reg}

	enc, err := codec.EncodeScalar(inc, opts)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if !strings.HasPrefix(enc.(string), codec.CallableMarker) {
		t.Fatalf("want callable marker, got %v", enc)
	}
	dec, err := codec.DecodeScalar(enc, opts)
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	fn, ok := dec.(func(int) int)
	if !ok {
		t.Fatalf("decoded value is %T", dec)
	}
	if fn(1) != inc(1) {
		t.Fatalf("decoded callable returned %d", fn(1))
	}
}

func TestCallable_Unsupported(t *testing.T) {
	if _, err := codec.EncodeScalar(inc, codec.Options{}); !errors.Is(err, codec.ErrEncodingUnsupported) {
		t.Fatalf("no codec: want ErrEncodingUnsupported, got %v", err)
	}
	reg := codec.NewRegistry()
	if _, err := codec.EncodeScalar(inc, codec.Options{Callables: reg}); !errors.Is(err, codec.ErrUnknownCallable) {
		t.Fatalf("unregistered: want ErrUnknownCallable, got %v", err)
	}
	reg.MustRegister("inc", inc)
	if _, err := codec.EncodeScalar(inc, codec.Options{Callables: reg, DisableCallableEncode: true}); !errors.Is(err, codec.ErrEncodingUnsupported) {
		t.Fatalf("disabled: want ErrEncodingUnsupported, got %v", err)
	}
}

func TestRegistry_Conflicts(t *testing.T) {
	reg := codec.NewRegistry()
	if err := reg.Register("inc", inc); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("inc", inc); err != nil {
		t.Fatalf("re-register same pair should be a no-op: %v", err)
	}
	if err := reg.Register("other", inc); err == nil {
		t.Fatalf("expected error registering same func under another name")
	}
	if err := reg.Register("bad", 42); err == nil {
		t.Fatalf("expected error for non-func")
	}
	if reg.Len() != 1 {
		t.Fatalf("want 1 entry, got %d", reg.Len())
	}
}

func TestDecodeScalar_Flags(t *testing.T) {
	enc := codec.EncodeBinary(binaryPayload)
	got, err := codec.DecodeScalar(enc, codec.Options{DisableBinaryDecode: true})
	if err != nil || got != enc {
		t.Fatalf("disabled decode should keep the marker string, got %#v err=%v", got, err)
	}
	got, err = codec.DecodeScalar([]byte(enc), codec.Options{})
	if err != nil || !bytes.Equal(got.([]byte), binaryPayload) {
		t.Fatalf("marker in bytes: got %#v err=%v", got, err)
	}
	got, _ = codec.DecodeScalar([]byte("plain"), codec.Options{})
	if got != "plain" {
		t.Fatalf("utf-8 bytes should decode to string, got %#v", got)
	}
	raw := []byte{0xff, 0xfe}
	got, _ = codec.DecodeScalar(raw, codec.Options{})
	if !bytes.Equal(got.([]byte), raw) {
		t.Fatalf("invalid utf-8 should stay bytes, got %#v", got)
	}
}

func TestDecodeScalar_Malformed(t *testing.T) {
	_, err := codec.DecodeScalar(codec.BinaryMarker+"!!not base64!!", codec.Options{})
	if !errors.Is(err, codec.ErrMalformedMarker) {
		t.Fatalf("want ErrMalformedMarker, got %v", err)
	}
	_, err = codec.DecodeScalar(codec.CallableMarker+"aW5j", codec.Options{})
	if !errors.Is(err, codec.ErrEncodingUnsupported) {
		t.Fatalf("callable without codec: want ErrEncodingUnsupported, got %v", err)
	}
}
