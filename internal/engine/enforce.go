package engine

import (
	"strconv"
	"strings"

	"github.com/reoring/restdoc/source"
)

// Enforcement wrapper for TokenSource applying duplicate key handling,
// max depth checks and max bytes truncation while tokens stream by.

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// Violation codes.
const (
	CodeDepth     = "max_depth"
	CodeDuplicate = "duplicate_key"
	CodeTruncated = "truncated"
)

// Violation is a lightweight issue raised by the enforcing source.
type Violation struct {
	Code    string
	Path    string // JSON Pointer
	Message string
	Offset  int64
}

func (v *Violation) Error() string { return v.Message }

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	// MaxDepth <= 0 disables the depth check.
	MaxDepth int
	// MaxBytes <= 0 disables the size check.
	MaxBytes int64
	// Warn receives non-fatal violations (DupWarn). May be nil.
	Warn func(Violation)
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	path         string
	nextIndex    int
	pendingKey   string
}

// Enforce returns a TokenSource that applies opt to inner.
func Enforce(inner source.TokenSource, opt EnforceOptions) source.TokenSource {
	return &enforcingSource{inner: inner, opt: opt}
}

type enforcingSource struct {
	inner source.TokenSource
	opt   EnforceOptions
	stack []frame
}

func (e *enforcingSource) NextToken() (source.Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return source.Token{}, err
	}

	path := e.pathFor(tok)

	switch tok.Kind {
	case source.KindBeginObject, source.KindBeginArray:
		f := frame{kind: kindArray, path: path}
		if tok.Kind == source.KindBeginObject {
			f = frame{kind: kindObject, keys: make(map[string]struct{}), expectingKey: true, path: path}
		}
		e.stack = append(e.stack, f)
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return source.Token{}, e.violation(CodeDepth, path, "max depth "+strconv.Itoa(e.opt.MaxDepth)+" exceeded", tok)
		}
	case source.KindEndObject, source.KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		e.valueDone()
	case source.KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				if _, dup := top.keys[tok.String]; dup && e.opt.OnDuplicate != DupIgnore {
					v := e.violation(CodeDuplicate, path, "key '"+tok.String+"' duplicated", tok)
					if e.opt.OnDuplicate == DupError {
						return source.Token{}, v
					}
					if e.opt.Warn != nil {
						e.opt.Warn(*v)
					}
				}
				top.keys[tok.String] = struct{}{}
				top.expectingKey = false
			}
		}
	case source.KindString, source.KindNumber, source.KindBool, source.KindNull:
		e.valueDone()
	}

	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off >= 0 && off > e.opt.MaxBytes {
			return source.Token{}, e.violation(CodeTruncated, path, "max bytes "+strconv.FormatInt(e.opt.MaxBytes, 10)+" exceeded", tok)
		}
	}
	return tok, nil
}

func (e *enforcingSource) Location() int64 { return e.inner.Location() }

func (e *enforcingSource) violation(code, path, msg string, tok source.Token) *Violation {
	if path == "" {
		path = "/"
	}
	off := tok.Offset
	if off < 0 {
		off = e.inner.Location()
	}
	return &Violation{Code: code, Path: path, Message: msg, Offset: off}
}

func (e *enforcingSource) valueDone() {
	if n := len(e.stack); n > 0 {
		top := &e.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
			top.pendingKey = ""
		}
	}
}

// pathFor returns the JSON Pointer of the value tok starts (or the key it names).
func (e *enforcingSource) pathFor(tok source.Token) string {
	if len(e.stack) == 0 {
		return ""
	}
	top := &e.stack[len(e.stack)-1]
	switch tok.Kind {
	case source.KindKey:
		top.pendingKey = tok.String
		return JoinPointer(top.path, tok.String)
	case source.KindEndObject, source.KindEndArray:
		return top.path
	}
	if top.kind == kindArray {
		p := JoinPointer(top.path, strconv.Itoa(top.nextIndex))
		top.nextIndex++
		return p
	}
	return JoinPointer(top.path, top.pendingKey)
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// JoinPointer appends an escaped reference token to a JSON Pointer.
func JoinPointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}
