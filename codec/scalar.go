package codec

import (
	"encoding/base64"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v2"
)

// EncodeScalar converts a native leaf value into a JSON primitive. Values that
// are already JSON-native pass through unchanged.
func EncodeScalar(v any, opts Options) (any, error) {
	switch x := v.(type) {
	case nil, bool, string, int64, uint64:
		return v, nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w: non-finite float %v", ErrEncodingUnsupported, x)
		}
		return x, nil
	case float32:
		return EncodeScalar(float64(x), opts)
	case *apd.Decimal:
		return DecimalToFloat(x)
	case apd.Decimal:
		return DecimalToFloat(&x)
	case time.Time:
		if opts.EncodeDatetime != nil {
			return opts.EncodeDatetime(x), nil
		}
		return FormatRFC3339(x), nil
	case Date:
		if opts.EncodeDate != nil {
			return opts.EncodeDate(x), nil
		}
		return x.String(), nil
	case []byte:
		if IsTextualThreshold(x, opts.threshold()) {
			return string(x), nil
		}
		if opts.DisableBinaryEncode {
			return nil, fmt.Errorf("%w: binary value with binary encoding disabled", ErrEncodingUnsupported)
		}
		return EncodeBinary(x), nil
	}
	if IsCallable(v) {
		if opts.DisableCallableEncode {
			return nil, fmt.Errorf("%w: callable %T with callable encoding disabled", ErrEncodingUnsupported, v)
		}
		return EncodeCallable(v, opts.Callables)
	}
	return v, nil
}

// DecodeScalar reverses the marker encodings. Byte slices without a marker are
// converted to strings when they are valid UTF-8 and returned unchanged
// otherwise.
func DecodeScalar(v any, opts Options) (any, error) {
	switch x := v.(type) {
	case string:
		return decodeMarked(x, v, opts)
	case []byte:
		if HasMarker(string(x)) {
			return decodeMarked(string(x), v, opts)
		}
		if utf8.Valid(x) {
			return string(x), nil
		}
		return x, nil
	}
	return v, nil
}

func decodeMarked(s string, orig any, opts Options) (any, error) {
	switch {
	case !opts.DisableCallableDecode && strings.HasPrefix(s, CallableMarker):
		return DecodeCallable(s, opts.Callables)
	case !opts.DisableBinaryDecode && strings.HasPrefix(s, BinaryMarker):
		return DecodeBinary(s)
	}
	if b, ok := orig.([]byte); ok && utf8.Valid(b) {
		return s, nil
	}
	return orig, nil
}

// HasMarker reports whether s starts with one of the marker prefixes.
func HasMarker(s string) bool {
	return strings.HasPrefix(s, BinaryMarker) || strings.HasPrefix(s, CallableMarker)
}

// EncodeBinary returns the binary marker form of b.
func EncodeBinary(b []byte) string {
	return BinaryMarker + base64.StdEncoding.EncodeToString(b)
}

// DecodeBinary decodes a binary marker string.
func DecodeBinary(s string) ([]byte, error) {
	payload, ok := strings.CutPrefix(s, BinaryMarker)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrMalformedMarker, BinaryMarker)
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMarker, err)
	}
	return b, nil
}

// EncodeCallable returns the callable marker form of fn using c.
func EncodeCallable(fn any, c CallableCodec) (string, error) {
	if c == nil {
		return "", fmt.Errorf("%w: no callable codec configured for %T", ErrEncodingUnsupported, fn)
	}
	payload, err := c.EncodeCallable(fn)
	if err != nil {
		return "", err
	}
	return CallableMarker + base64.StdEncoding.EncodeToString(payload), nil
}

// DecodeCallable decodes a callable marker string using c.
func DecodeCallable(s string, c CallableCodec) (any, error) {
	payload, ok := strings.CutPrefix(s, CallableMarker)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrMalformedMarker, CallableMarker)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: no callable codec configured", ErrEncodingUnsupported)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMarker, err)
	}
	return c.DecodeCallable(raw)
}
