package restdoc

import (
	"errors"
	"io"
	"strings"

	eng "github.com/reoring/restdoc/internal/engine"
	"github.com/reoring/restdoc/source"
)

// Parse wraps arbitrary Go data. Mappings become *ObjectNode, sequences
// *ArrayNode, nil an empty *ObjectNode; nodes are returned as they are and
// anything else becomes a Scalar (marker strings are decoded).
func Parse(data any, opts ...Options) (Value, error) {
	cfg := newConfig(opts)
	switch x := data.(type) {
	case nil, *Absent:
		o := emptyObject(cfg)
		registerRoot(o)
		return o, nil
	case Node:
		return x, nil
	}
	return build(data, cfg)
}

func build(data any, cfg *Options) (Value, error) {
	c := newCoercer(cfg, nil)
	v, err := c.value(data, 0)
	if err != nil {
		return nil, err
	}
	c.commit()
	switch x := v.(type) {
	case nil:
		o := emptyObject(cfg)
		registerRoot(o)
		return o, nil
	case Node:
		registerRoot(x)
		return x, nil
	}
	return Scalar{v: v}, nil
}

// Loads parses text with the configured driver (JSON by default). A null
// document yields an empty *ObjectNode. Malformed input fails with a
// ParseError carrying the byte offset when the driver knows it.
func Loads(text string, opts ...Options) (Value, error) {
	return LoadBytes([]byte(text), opts...)
}

// LoadBytes is Loads for a byte slice.
func LoadBytes(data []byte, opts ...Options) (Value, error) {
	cfg := newConfig(opts)
	if cfg.MaxBytes > 0 && int64(len(data)) > cfg.MaxBytes {
		return nil, tooLarge(cfg.MaxBytes)
	}
	return load(cfg.driver().NewBytes(data), cfg)
}

// Load reads a document from r.
func Load(r io.Reader, opts ...Options) (Value, error) {
	cfg := newConfig(opts)
	if cfg.MaxBytes > 0 {
		data, err := io.ReadAll(io.LimitReader(r, cfg.MaxBytes+1))
		if err != nil {
			return nil, parseError(err)
		}
		if int64(len(data)) > cfg.MaxBytes {
			return nil, tooLarge(cfg.MaxBytes)
		}
		return load(cfg.driver().NewBytes(data), cfg)
	}
	return load(cfg.driver().NewReader(r), cfg)
}

// LoadsObject is Loads for callers that require an object document.
func LoadsObject(text string, opts ...Options) (*ObjectNode, error) {
	v, err := Loads(text, opts...)
	if err != nil {
		return nil, err
	}
	o, ok := v.(*ObjectNode)
	if !ok {
		return nil, invalidArgument("document is a %s, not an object", v.Kind())
	}
	return o, nil
}

func load(ts source.TokenSource, cfg *Options) (Value, error) {
	log := cfg.logger()
	tree, err := decodeTokens(ts, cfg)
	if err != nil {
		log.Debug("restdoc: load failed", "driver", cfg.driver().Name(), "err", err)
		return nil, err
	}
	v, err := build(tree, cfg)
	if err != nil {
		return nil, err
	}
	log.Debug("restdoc: loaded", "driver", cfg.driver().Name(), "kind", v.Kind().String())
	return v, nil
}

func decodeTokens(ts source.TokenSource, cfg *Options) (any, error) {
	log := cfg.logger()
	enforced := eng.Enforce(ts, eng.EnforceOptions{
		OnDuplicate: cfg.duplicates(),
		MaxDepth:    cfg.maxDepth(),
		MaxBytes:    cfg.MaxBytes,
		Warn: func(v eng.Violation) {
			log.Warn("restdoc: duplicate key", "path", v.Path)
		},
	})
	tree, err := eng.Decode(enforced, cfg.Numbers)
	if err != nil {
		return nil, parseError(err)
	}
	return tree, nil
}

func tooLarge(limit int64) error {
	e := newError(CodeParseError, "", "input exceeds max bytes", nil)
	e.Offset = limit
	return e
}

func parseError(err error) error {
	if errors.Is(err, io.EOF) {
		return newError(CodeParseError, "", "empty input", nil)
	}
	var v *eng.Violation
	if errors.As(err, &v) {
		e := newError(CodeParseError, v.Path, v.Message, v)
		e.Offset = v.Offset
		return e
	}
	var se *source.SyntaxError
	if errors.As(err, &se) {
		e := newError(CodeParseError, "", strings.TrimPrefix(se.Error(), "json: "), se)
		e.Offset = se.Offset
		return e
	}
	return newError(CodeParseError, "", "", err)
}
