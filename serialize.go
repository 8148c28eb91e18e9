package restdoc

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"

	"github.com/reoring/restdoc/codec"
	eng "github.com/reoring/restdoc/internal/engine"
)

// Serialize renders o as compact JSON with ", " and ": " separators, keys in
// insertion order. Leaves pass through codec.EncodeScalar.
func (o *ObjectNode) Serialize() (string, error) { return serialize(o, o.cfg, -1) }

// PrettyPrint renders o with one member per line indented by indent spaces.
func (o *ObjectNode) PrettyPrint(indent int) (string, error) { return serialize(o, o.cfg, indent) }

// Plain returns the JSON-native snapshot of o: what Serialize produces, decoded.
func (o *ObjectNode) Plain() (any, error) { return plain(o, o.cfg, "") }

func (o *ObjectNode) MarshalJSON() ([]byte, error) { return marshal(o, o.cfg) }

func (o *ObjectNode) String() string { return stringOf(o, o.cfg) }

func (a *ArrayNode) Serialize() (string, error)             { return serialize(a, a.cfg, -1) }
func (a *ArrayNode) PrettyPrint(indent int) (string, error) { return serialize(a, a.cfg, indent) }
func (a *ArrayNode) Plain() (any, error)                    { return plain(a, a.cfg, "") }
func (a *ArrayNode) MarshalJSON() ([]byte, error)           { return marshal(a, a.cfg) }
func (a *ArrayNode) String() string                         { return stringOf(a, a.cfg) }

func serialize(n Node, cfg *Options, indent int) (string, error) {
	w := &writer{cfg: cfg, itemSep: ", ", keySep: ": "}
	if indent >= 0 {
		w.pretty = true
		w.indent = strings.Repeat(" ", indent)
		w.itemSep = ","
	}
	if err := w.value(n, "", 0); err != nil {
		return "", err
	}
	return w.buf.String(), nil
}

func marshal(n Node, cfg *Options) ([]byte, error) {
	s, err := serialize(n, cfg, -1)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func stringOf(n Node, cfg *Options) string {
	s, err := serialize(n, cfg, -1)
	if err != nil {
		return "<unserializable: " + err.Error() + ">"
	}
	return s
}

type writer struct {
	buf     bytes.Buffer
	cfg     *Options
	pretty  bool
	indent  string
	itemSep string
	keySep  string
}

func (w *writer) newline(level int) {
	if !w.pretty {
		return
	}
	w.buf.WriteByte('\n')
	for range level {
		w.buf.WriteString(w.indent)
	}
}

func (w *writer) value(v any, path string, level int) error {
	switch x := v.(type) {
	case *ObjectNode:
		if len(x.keys) == 0 {
			w.buf.WriteString("{}")
			return nil
		}
		w.buf.WriteByte('{')
		for i, k := range x.keys {
			if i > 0 {
				w.buf.WriteString(w.itemSep)
			}
			w.newline(level + 1)
			if err := w.str(k); err != nil {
				return err
			}
			w.buf.WriteString(w.keySep)
			if err := w.value(x.vals[k], eng.JoinPointer(path, k), level+1); err != nil {
				return err
			}
		}
		w.newline(level)
		w.buf.WriteByte('}')
		return nil
	case *ArrayNode:
		if len(x.items) == 0 {
			w.buf.WriteString("[]")
			return nil
		}
		w.buf.WriteByte('[')
		for i, item := range x.items {
			if i > 0 {
				w.buf.WriteString(w.itemSep)
			}
			w.newline(level + 1)
			if err := w.value(item, eng.JoinPointer(path, strconv.Itoa(i)), level+1); err != nil {
				return err
			}
		}
		w.newline(level)
		w.buf.WriteByte(']')
		return nil
	}
	e, err := codec.EncodeScalar(v, w.cfg.Codec)
	if err != nil {
		return encodingError(path, err)
	}
	switch x := e.(type) {
	case nil:
		w.buf.WriteString("null")
	case bool:
		w.buf.WriteString(strconv.FormatBool(x))
	case int64:
		w.buf.WriteString(strconv.FormatInt(x, 10))
	case uint64:
		w.buf.WriteString(strconv.FormatUint(x, 10))
	case float64:
		w.buf.WriteString(formatFloat(x))
	case string:
		return w.str(x)
	default:
		return newError(CodeEncodingUnsupported, path, fmt.Sprintf("cannot encode value of type %T", e), codec.ErrEncodingUnsupported)
	}
	return nil
}

func (w *writer) str(s string) error {
	b, err := j.MarshalNoEscape(s)
	if err != nil {
		return err
	}
	w.buf.Write(b)
	return nil
}

// formatFloat writes f the way encoding/json does, but keeps a ".0" on
// integral values so they load back as floats.
func formatFloat(f float64) string {
	abs := math.Abs(f)
	fmtByte := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		fmtByte = 'e'
	}
	s := strconv.FormatFloat(f, fmtByte, -1, 64)
	if fmtByte == 'e' {
		// e-09 to e-9
		if n := len(s); n >= 4 && s[n-4] == 'e' && s[n-3] == '-' && s[n-2] == '0' {
			s = s[:n-2] + s[n-1:]
		}
		return s
	}
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// plain builds the JSON-native snapshot of v.
func plain(v any, cfg *Options, path string) (any, error) {
	switch x := v.(type) {
	case *ObjectNode:
		out := make(map[string]any, len(x.keys))
		for _, k := range x.keys {
			pv, err := plain(x.vals[k], cfg, eng.JoinPointer(path, k))
			if err != nil {
				return nil, err
			}
			out[k] = pv
		}
		return out, nil
	case *ArrayNode:
		out := make([]any, len(x.items))
		for i, item := range x.items {
			pv, err := plain(item, cfg, eng.JoinPointer(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			out[i] = pv
		}
		return out, nil
	}
	e, err := codec.EncodeScalar(v, cfg.Codec)
	if err != nil {
		return nil, encodingError(path, err)
	}
	return e, nil
}

// encodeLeaf encodes a stored scalar; nodes are returned unchanged.
func encodeLeaf(v any, cfg *Options) (any, error) {
	if _, ok := v.(Node); ok {
		return v, nil
	}
	return codec.EncodeScalar(v, cfg.Codec)
}
