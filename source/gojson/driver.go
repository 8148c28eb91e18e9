// Package gojson provides the default JSON driver backed by goccy/go-json.
package gojson

import (
	"bytes"
	"errors"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	"github.com/reoring/restdoc/source"
)

// Driver returns a source.Driver backed by goccy/go-json.
func Driver() source.Driver { return driverGoJSON{} }

type driverGoJSON struct{}

func (driverGoJSON) NewReader(r io.Reader) source.TokenSource { return NewReader(r) }
func (driverGoJSON) NewBytes(b []byte) source.TokenSource     { return NewBytes(b) }
func (driverGoJSON) Name() string                             { return "go-json" }

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
}

type tokenSource struct {
	dec   *j.Decoder
	stack []frame
	err   error
}

// NewReader wraps an io.Reader into a source.TokenSource for JSON. The input
// is read in full and validated before the first token is returned.
func NewReader(r io.Reader) source.TokenSource {
	b, err := io.ReadAll(r)
	if err != nil {
		return &tokenSource{err: err}
	}
	return NewBytes(b)
}

// NewBytes wraps a byte slice into a source.TokenSource for JSON.
func NewBytes(b []byte) source.TokenSource {
	dec := j.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return &tokenSource{dec: dec, err: validate(b)}
}

// validate rejects what Decoder.Token lets through: missing or misplaced
// separators and trailing data after the top-level value.
func validate(b []byte) error {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil // io.EOF from the first token
	}
	dec := j.NewDecoder(bytes.NewReader(b))
	var v any
	if err := dec.Decode(&v); err != nil {
		return syntaxError(err)
	}
	off := dec.InputOffset()
	if off < int64(len(b)) && len(bytes.TrimSpace(b[off:])) > 0 {
		return &source.SyntaxError{Offset: off, Err: errTrailingData}
	}
	return nil
}

var errTrailingData = errors.New("invalid character after top-level value")

func syntaxError(err error) error {
	var se *j.SyntaxError
	if errors.As(err, &se) {
		return &source.SyntaxError{Offset: se.Offset, Err: err}
	}
	return &source.SyntaxError{Offset: -1, Err: err}
}

func (s *tokenSource) NextToken() (source.Token, error) {
	if s.err != nil {
		return source.Token{}, s.err
	}
	tok, err := s.dec.Token()
	if err != nil {
		if err == io.EOF {
			return source.Token{}, io.EOF
		}
		return source.Token{}, syntaxError(err)
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{kind: kindObject, expectingKey: true})
			return source.Token{Kind: source.KindBeginObject, Offset: -1}, nil
		case '}':
			s.pop()
			return source.Token{Kind: source.KindEndObject, Offset: -1}, nil
		case '[':
			s.stack = append(s.stack, frame{kind: kindArray})
			return source.Token{Kind: source.KindBeginArray, Offset: -1}, nil
		case ']':
			s.pop()
			return source.Token{Kind: source.KindEndArray, Offset: -1}, nil
		}
	case string:
		if n := len(s.stack); n > 0 {
			top := &s.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				top.expectingKey = false
				return source.Token{Kind: source.KindKey, String: v, Offset: -1}, nil
			}
		}
		s.valueDone()
		return source.Token{Kind: source.KindString, String: v, Offset: -1}, nil
	case bool:
		s.valueDone()
		return source.Token{Kind: source.KindBool, Bool: v, Offset: -1}, nil
	case j.Number:
		s.valueDone()
		return source.Token{Kind: source.KindNumber, Number: string(v), Offset: -1}, nil
	case float64:
		s.valueDone()
		return source.Token{Kind: source.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: -1}, nil
	}
	s.valueDone()
	return source.Token{Kind: source.KindNull, Offset: -1}, nil
}

// pop closes the current container; the container itself completes a member
// value of its parent.
func (s *tokenSource) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.valueDone()
}

func (s *tokenSource) valueDone() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}

func (s *tokenSource) Location() int64 { return -1 }
