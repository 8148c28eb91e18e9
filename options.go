package restdoc

import (
	"log/slog"

	"github.com/reoring/restdoc/codec"
	eng "github.com/reoring/restdoc/internal/engine"
	"github.com/reoring/restdoc/source"
	"github.com/reoring/restdoc/source/gojson"
)

// DefaultMaxDepth bounds nesting when Options.MaxDepth is zero.
const DefaultMaxDepth = 1000

// NumberMode selects how loaded number literals are materialized.
type NumberMode = eng.NumberMode

const (
	NumberNative  = eng.NumberNative
	NumberFloat64 = eng.NumberFloat64
	NumberDecimal = eng.NumberDecimal
)

// DuplicateKeyPolicy controls repeated object keys in loaded input.
type DuplicateKeyPolicy int

const (
	// DuplicateIgnore keeps the first position and the last value.
	DuplicateIgnore DuplicateKeyPolicy = iota
	// DuplicateWarn behaves like DuplicateIgnore and logs each duplicate.
	DuplicateWarn
	// DuplicateError fails the load with a ParseError.
	DuplicateError
)

// Options configures documents. Functions taking ...Options use the last one.
type Options struct {
	// Codec controls scalar encoding and decoding.
	Codec codec.Options
	// Driver tokenizes Load input. Defaults to the go-json driver.
	Driver source.Driver
	// Numbers selects number materialization for Load.
	Numbers NumberMode
	// MaxDepth bounds nesting on load and coercion. 0 means DefaultMaxDepth,
	// negative means unlimited.
	MaxDepth int
	// MaxBytes bounds Load input size when > 0.
	MaxBytes int64
	// OnDuplicateKey selects duplicate key handling for Load.
	OnDuplicateKey DuplicateKeyPolicy
	// OnChange is registered as an observer on every root built with these options.
	OnChange func(Node)
	// Logger receives debug records. nil discards.
	Logger *slog.Logger
}

func pickOptions(opts []Options) Options {
	if len(opts) == 0 {
		return Options{}
	}
	return opts[len(opts)-1]
}

func (o *Options) driver() source.Driver {
	if o.Driver != nil {
		return o.Driver
	}
	return gojson.Driver()
}

func (o *Options) maxDepth() int {
	switch {
	case o.MaxDepth == 0:
		return DefaultMaxDepth
	case o.MaxDepth < 0:
		return 0
	}
	return o.MaxDepth
}

func (o *Options) duplicates() eng.DuplicateStrictness {
	switch o.OnDuplicateKey {
	case DuplicateWarn:
		return eng.DupWarn
	case DuplicateError:
		return eng.DupError
	}
	return eng.DupIgnore
}

var discard = slog.New(slog.DiscardHandler)

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return discard
}
