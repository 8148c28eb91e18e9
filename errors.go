package restdoc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/restdoc/codec"
	eng "github.com/reoring/restdoc/internal/engine"
)

// Error codes (stable, safe to match on).
const (
	CodeInvalidArgument     = "invalid_argument"
	CodeParseError          = "parse_error"
	CodeKeyNotFound         = "key_not_found"
	CodeIndexOutOfRange     = "index_out_of_range"
	CodeValueNotFound       = "value_not_found"
	CodeEncodingUnsupported = "encoding_unsupported"
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its Code.
var (
	ErrInvalidArgument = errors.New(CodeInvalidArgument)
	ErrParse           = errors.New(CodeParseError)
	ErrKeyNotFound     = errors.New(CodeKeyNotFound)
	ErrIndexOutOfRange = errors.New(CodeIndexOutOfRange)
	ErrValueNotFound   = errors.New(CodeValueNotFound)
	// ErrEncodingUnsupported is shared with the codec package.
	ErrEncodingUnsupported = codec.ErrEncodingUnsupported
)

var sentinels = map[string]error{
	CodeInvalidArgument:     ErrInvalidArgument,
	CodeParseError:          ErrParse,
	CodeKeyNotFound:         ErrKeyNotFound,
	CodeIndexOutOfRange:     ErrIndexOutOfRange,
	CodeValueNotFound:       ErrValueNotFound,
	CodeEncodingUnsupported: ErrEncodingUnsupported,
}

// Error is the single error type returned by document operations.
type Error struct {
	Code    string
	Path    string // JSON Pointer of the offending location, "" when unknown.
	Message string
	Cause   error
	Offset  int64 // Byte offset in the input (-1 when unknown).
}

func (e *Error) Error() string {
	b := &strings.Builder{}
	b.WriteString(e.Code)
	if e.Path != "" {
		fmt.Fprintf(b, " at %s", e.Path)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(b, " (offset %d)", e.Offset)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil && e.Message != e.Cause.Error() {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap exposes both the sentinel of Code and the underlying cause.
func (e *Error) Unwrap() []error {
	var out []error
	if s, ok := sentinels[e.Code]; ok {
		out = append(out, s)
	}
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	return out
}

// AsError extracts *Error from err using errors.As.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func newError(code, path, msg string, cause error) *Error {
	return &Error{Code: code, Path: path, Message: msg, Cause: cause, Offset: -1}
}

func invalidArgument(format string, args ...any) *Error {
	return newError(CodeInvalidArgument, "", fmt.Sprintf(format, args...), nil)
}

// encodingError wraps codec failures, keeping the codec sentinel reachable.
func encodingError(path string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsError(err); ok {
		return err
	}
	code := CodeEncodingUnsupported
	if errors.Is(err, codec.ErrMalformedMarker) {
		code = CodeInvalidArgument
	}
	return newError(code, path, "", err)
}

// withPath prefixes the JSON Pointer of err with token.
func withPath(err error, token string) error {
	if e, ok := err.(*Error); ok {
		e.Path = eng.JoinPointer("", token) + e.Path
	}
	return err
}
