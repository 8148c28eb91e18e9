// Package yaml provides a YAML driver. The document is decoded into a
// yaml.v3 node tree (which keeps mapping order) and replayed as tokens.
package yaml

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	yamlv3 "gopkg.in/yaml.v3"

	"github.com/reoring/restdoc/codec"
	"github.com/reoring/restdoc/source"
)

// maxAliasExpansions bounds alias replay so "billion laughs" inputs fail fast.
const maxAliasExpansions = 10000

// Driver returns a source.Driver for YAML input.
func Driver() source.Driver { return driverYAML{} }

type driverYAML struct{}

func (driverYAML) NewReader(r io.Reader) source.TokenSource {
	data, err := io.ReadAll(r)
	if err != nil {
		return source.NewTokens(nil, err)
	}
	return NewBytes(data)
}

func (driverYAML) NewBytes(b []byte) source.TokenSource { return NewBytes(b) }
func (driverYAML) Name() string                         { return "yaml.v3" }

// NewBytes decodes the first YAML document in b and returns its tokens.
func NewBytes(b []byte) source.TokenSource {
	var doc yamlv3.Node
	if err := yamlv3.Unmarshal(b, &doc); err != nil {
		return source.NewTokens(nil, &source.SyntaxError{Offset: -1, Err: err})
	}
	w := &walker{}
	if doc.Kind == 0 {
		// empty input is a null document
		return source.NewTokens([]source.Token{{Kind: source.KindNull, Offset: -1}}, nil)
	}
	if err := w.node(&doc); err != nil {
		return source.NewTokens(w.toks, &source.SyntaxError{Offset: -1, Err: err})
	}
	return source.NewTokens(w.toks, nil)
}

type walker struct {
	toks    []source.Token
	aliases int
}

func (w *walker) emit(t source.Token) {
	t.Offset = -1
	w.toks = append(w.toks, t)
}

func (w *walker) node(n *yamlv3.Node) error {
	switch n.Kind {
	case yamlv3.DocumentNode:
		if len(n.Content) == 0 {
			w.emit(source.Token{Kind: source.KindNull})
			return nil
		}
		return w.node(n.Content[0])
	case yamlv3.AliasNode:
		w.aliases++
		if w.aliases > maxAliasExpansions {
			return fmt.Errorf("line %d: too many alias expansions", n.Line)
		}
		return w.node(n.Alias)
	case yamlv3.SequenceNode:
		w.emit(source.Token{Kind: source.KindBeginArray})
		for _, c := range n.Content {
			if err := w.node(c); err != nil {
				return err
			}
		}
		w.emit(source.Token{Kind: source.KindEndArray})
		return nil
	case yamlv3.MappingNode:
		w.emit(source.Token{Kind: source.KindBeginObject})
		if err := w.members(n); err != nil {
			return err
		}
		w.emit(source.Token{Kind: source.KindEndObject})
		return nil
	case yamlv3.ScalarNode:
		return w.scalar(n)
	}
	return fmt.Errorf("line %d: unsupported yaml node kind %d", n.Line, n.Kind)
}

func (w *walker) members(n *yamlv3.Node) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind == yamlv3.ScalarNode && k.ShortTag() == "!!merge" {
			if err := w.merge(v); err != nil {
				return err
			}
			continue
		}
		if k.Kind != yamlv3.ScalarNode {
			return fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
		}
		w.emit(source.Token{Kind: source.KindKey, String: k.Value})
		if err := w.node(v); err != nil {
			return err
		}
	}
	return nil
}

// merge inlines the members of a "<<" value (a mapping, an alias to one, or a
// sequence of those).
func (w *walker) merge(v *yamlv3.Node) error {
	switch v.Kind {
	case yamlv3.AliasNode:
		w.aliases++
		if w.aliases > maxAliasExpansions {
			return fmt.Errorf("line %d: too many alias expansions", v.Line)
		}
		return w.merge(v.Alias)
	case yamlv3.MappingNode:
		return w.members(v)
	case yamlv3.SequenceNode:
		for _, c := range v.Content {
			if err := w.merge(c); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("line %d: merge value must be a mapping", v.Line)
}

func (w *walker) scalar(n *yamlv3.Node) error {
	switch n.ShortTag() {
	case "!!null":
		w.emit(source.Token{Kind: source.KindNull})
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return err
		}
		w.emit(source.Token{Kind: source.KindBool, Bool: b})
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			w.emit(source.Token{Kind: source.KindNumber, Number: strconv.FormatInt(i, 10)})
			return nil
		}
		var u uint64
		if err := n.Decode(&u); err != nil {
			return err
		}
		w.emit(source.Token{Kind: source.KindNumber, Number: strconv.FormatUint(u, 10)})
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return err
		}
		lit := strconv.FormatFloat(f, 'g', -1, 64)
		if strings.ContainsAny(lit, "nN") {
			// .nan and .inf have no JSON form; keep the YAML text
			w.emit(source.Token{Kind: source.KindString, String: n.Value})
			return nil
		}
		if !strings.ContainsAny(lit, ".eE") {
			lit += ".0"
		}
		w.emit(source.Token{Kind: source.KindNumber, Number: lit})
	case "!!binary":
		payload := strings.Join(strings.Fields(n.Value), "")
		w.emit(source.Token{Kind: source.KindString, String: codec.BinaryMarker + payload})
	default:
		w.emit(source.Token{Kind: source.KindString, String: n.Value})
	}
	return nil
}
