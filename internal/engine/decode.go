// Package engine builds ordered value trees from token streams.
package engine

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/reoring/restdoc/codec"
	"github.com/reoring/restdoc/source"
)

// NumberMode selects how number literals are materialized.
type NumberMode int

const (
	// NumberNative decodes integer literals as int64 (uint64 above MaxInt64)
	// and everything else as float64.
	NumberNative NumberMode = iota
	// NumberFloat64 decodes every number as float64.
	NumberFloat64
	// NumberDecimal keeps integers native and decodes the rest as *apd.Decimal.
	NumberDecimal
)

// ErrTrailingData is returned when input continues after the first value.
var ErrTrailingData = errors.New("unexpected data after top-level value")

// Object is an ordered JSON object. Duplicate keys keep their first position
// and the last value.
type Object struct {
	Keys   []string
	Values []any
	index  map[string]int
}

func (o *Object) put(k string, v any) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[k]; ok {
		o.Values[i] = v
		return
	}
	o.index[k] = len(o.Keys)
	o.Keys = append(o.Keys, k)
	o.Values = append(o.Values, v)
}

// Len reports the number of members.
func (o *Object) Len() int { return len(o.Keys) }

// Decode reads a single document from src. Objects become *Object, arrays
// []any, and scalars nil, bool, string, int64, uint64, float64 or
// *apd.Decimal. Empty input returns io.EOF.
func Decode(src source.TokenSource, mode NumberMode) (any, error) {
	tok, err := src.NextToken()
	if err != nil {
		return nil, err
	}
	v, err := decodeValue(src, tok, mode)
	if err != nil {
		return nil, err
	}
	if tok, err := src.NextToken(); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, &source.SyntaxError{Offset: tok.Offset, Err: ErrTrailingData}
	}
	return v, nil
}

func decodeValue(src source.TokenSource, tok source.Token, mode NumberMode) (any, error) {
	switch tok.Kind {
	case source.KindBeginObject:
		return decodeObject(src, mode)
	case source.KindBeginArray:
		return decodeArray(src, mode)
	case source.KindString:
		return tok.String, nil
	case source.KindNumber:
		v, err := ParseNumber(tok.Number, mode)
		if err != nil {
			return nil, &source.SyntaxError{Offset: tok.Offset, Err: err}
		}
		return v, nil
	case source.KindBool:
		return tok.Bool, nil
	case source.KindNull:
		return nil, nil
	}
	return nil, &source.SyntaxError{Offset: tok.Offset, Err: fmt.Errorf("unexpected %s token", tok.Kind)}
}

func next(src source.TokenSource) (source.Token, error) {
	tok, err := src.NextToken()
	if err == io.EOF {
		return tok, &source.SyntaxError{Offset: src.Location(), Err: io.ErrUnexpectedEOF}
	}
	return tok, err
}

func decodeObject(src source.TokenSource, mode NumberMode) (any, error) {
	obj := &Object{}
	for {
		tok, err := next(src)
		if err != nil {
			return nil, err
		}
		if tok.Kind == source.KindEndObject {
			return obj, nil
		}
		if tok.Kind != source.KindKey {
			return nil, &source.SyntaxError{Offset: tok.Offset, Err: fmt.Errorf("expected key, got %s", tok.Kind)}
		}
		vt, err := next(src)
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(src, vt, mode)
		if err != nil {
			return nil, err
		}
		obj.put(tok.String, v)
	}
}

func decodeArray(src source.TokenSource, mode NumberMode) (any, error) {
	arr := []any{}
	for {
		tok, err := next(src)
		if err != nil {
			return nil, err
		}
		if tok.Kind == source.KindEndArray {
			return arr, nil
		}
		v, err := decodeValue(src, tok, mode)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

// ParseNumber converts a number literal according to mode.
func ParseNumber(lit string, mode NumberMode) (any, error) {
	integral := !strings.ContainsAny(lit, ".eE")
	switch {
	case mode == NumberFloat64:
		return strconv.ParseFloat(lit, 64)
	case mode == NumberDecimal && !integral:
		return codec.ParseDecimal(lit)
	}
	if integral {
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return i, nil
		}
		if u, err := strconv.ParseUint(lit, 10, 64); err == nil {
			return u, nil
		}
		if mode == NumberDecimal {
			return codec.ParseDecimal(lit)
		}
	}
	return strconv.ParseFloat(lit, 64)
}
