// Package jsonc reads JSON with comments and trailing commas (JWCC). Input is
// standardized with tailscale/hujson and then tokenized by the go-json driver.
package jsonc

import (
	"bytes"
	"io"

	"github.com/tailscale/hujson"

	"github.com/reoring/restdoc/source"
	"github.com/reoring/restdoc/source/gojson"
)

// Driver returns a source.Driver for JSONC input.
func Driver() source.Driver { return driverJSONC{} }

type driverJSONC struct{}

func (driverJSONC) NewReader(r io.Reader) source.TokenSource {
	data, err := io.ReadAll(r)
	if err != nil {
		return source.NewTokens(nil, err)
	}
	return NewBytes(data)
}

func (driverJSONC) NewBytes(b []byte) source.TokenSource { return NewBytes(b) }
func (driverJSONC) Name() string                         { return "hujson" }

// NewBytes strips comments and trailing commas from b and tokenizes the result.
func NewBytes(b []byte) source.TokenSource {
	if len(bytes.TrimSpace(b)) == 0 {
		return source.NewTokens(nil, nil)
	}
	v, err := hujson.Parse(b)
	if err != nil {
		return source.NewTokens(nil, &source.SyntaxError{Offset: -1, Err: err})
	}
	v.Standardize()
	return gojson.NewBytes(v.Pack())
}
