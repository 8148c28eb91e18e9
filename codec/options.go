package codec

import (
	"errors"
	"time"
)

// Marker prefixes for out-of-band encoded scalars.
const (
	BinaryMarker   = "__binary__: "
	CallableMarker = "__callable__: "
)

// DefaultTextThreshold is the share of non-text runes tolerated by IsTextual.
const DefaultTextThreshold = 0.30

var (
	// ErrEncodingUnsupported reports a leaf value that cannot be written as JSON
	// under the current Options.
	ErrEncodingUnsupported = errors.New("encoding unsupported")
	// ErrMalformedMarker reports a marker string whose payload cannot be decoded.
	ErrMalformedMarker = errors.New("malformed marker payload")
)

// Options gates the marker encodings and customizes time formatting.
// The zero value encodes and decodes everything and has no callable codec.
type Options struct {
	DisableBinaryEncode   bool
	DisableBinaryDecode   bool
	DisableCallableEncode bool
	DisableCallableDecode bool

	// Callables serializes func values. Nil means callables cannot be encoded
	// or decoded.
	Callables CallableCodec

	// EncodeDatetime overrides the RFC 3339 rendering of time.Time values.
	EncodeDatetime func(time.Time) string
	// EncodeDate overrides the ISO 8601 rendering of Date values.
	EncodeDate func(Date) string

	// TextThreshold overrides DefaultTextThreshold when positive.
	TextThreshold float64
}

func (o Options) threshold() float64 {
	if o.TextThreshold > 0 {
		return o.TextThreshold
	}
	return DefaultTextThreshold
}
