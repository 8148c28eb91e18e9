// Package source defines the token stream shared by the document loaders.
//
// A Driver turns raw input (JSON, YAML, JSON with comments, ...) into a
// TokenSource. Loaders consume tokens and build document nodes in input key
// order, so drivers must emit object members in the order they appear.
package source

import "io"

// Kind represents token kinds.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

var kindNames = [...]string{
	KindBeginObject: "begin_object",
	KindEndObject:   "end_object",
	KindBeginArray:  "begin_array",
	KindEndArray:    "end_array",
	KindKey:         "key",
	KindString:      "string",
	KindNumber:      "number",
	KindBool:        "bool",
	KindNull:        "null",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Token describes a token in the input stream. Offset records the byte position
// when known (-1 otherwise).
type Token struct {
	Kind   Kind
	String string // Stored for key/string tokens.
	Number string // Number literal text; the loader decides how to interpret it.
	Bool   bool
	Offset int64
}

// TokenSource yields tokens until io.EOF.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64 // byte offset; -1 if unknown
}

// Driver converts raw input into a TokenSource.
type Driver interface {
	NewReader(r io.Reader) TokenSource
	NewBytes(b []byte) TokenSource
	Name() string
}

// Tokens is a TokenSource over a pre-built token slice. Drivers that decode a
// whole tree up front (YAML) replay it through Tokens.
type Tokens struct {
	toks []Token
	pos  int
	err  error
}

// NewTokens returns a TokenSource replaying toks. A non-nil err is returned
// once the tokens are exhausted instead of io.EOF.
func NewTokens(toks []Token, err error) *Tokens {
	return &Tokens{toks: toks, err: err}
}

func (t *Tokens) NextToken() (Token, error) {
	if t.pos >= len(t.toks) {
		if t.err != nil {
			return Token{}, t.err
		}
		return Token{}, io.EOF
	}
	tok := t.toks[t.pos]
	t.pos++
	return tok, nil
}

func (t *Tokens) Location() int64 {
	if t.pos > 0 && t.pos <= len(t.toks) {
		return t.toks[t.pos-1].Offset
	}
	return -1
}

// SyntaxError reports malformed input. Offset is -1 when the driver cannot
// tell where the problem is.
type SyntaxError struct {
	Offset int64
	Err    error
}

func (e *SyntaxError) Error() string { return e.Err.Error() }
func (e *SyntaxError) Unwrap() error { return e.Err }
