package model

import (
	"fmt"
	"strings"

	"github.com/reoring/restdoc"
	"github.com/reoring/restdoc/codec"
)

type objectBuilder struct {
	fields  []field
	index   map[string]int
	allow   map[string]struct{}
	exclude map[string]struct{}
	opts    restdoc.Options
	err     error
}

type fieldStep struct {
	b    *objectBuilder
	name string
}

// Object creates a new schema builder.
func Object() *objectBuilder {
	return &objectBuilder{
		index:   map[string]int{},
		allow:   map[string]struct{}{},
		exclude: map[string]struct{}{},
	}
}

// Field declares a field. Declaring the same name twice replaces its type.
func (b *objectBuilder) Field(name string, t Type) *fieldStep {
	if name == "" && b.err == nil {
		b.err = fmt.Errorf("model: empty field name")
	}
	if i, ok := b.index[name]; ok {
		b.fields[i] = field{name: name, typ: t}
	} else {
		b.index[name] = len(b.fields)
		b.fields = append(b.fields, field{name: name, typ: t})
	}
	return &fieldStep{b: b, name: name}
}

// Lenient makes coercion failures on the current field store null (or skip
// the element for collections) instead of returning an error.
func (f *fieldStep) Lenient() *objectBuilder {
	f.b.fields[f.b.index[f.name]].lenient = true
	return f.b
}

func (f *fieldStep) Field(name string, t Type) *fieldStep     { return f.b.Field(name, t) }
func (f *fieldStep) Allow(names ...string) *objectBuilder     { return f.b.Allow(names...) }
func (f *fieldStep) Exclude(names ...string) *objectBuilder   { return f.b.Exclude(names...) }
func (f *fieldStep) Codec(c codec.Options) *objectBuilder     { return f.b.Codec(c) }
func (f *fieldStep) Options(o restdoc.Options) *objectBuilder { return f.b.Options(o) }
func (f *fieldStep) Build() (*Schema, error)                  { return f.b.Build() }
func (f *fieldStep) MustBuild() *Schema                       { return f.b.MustBuild() }

// Allow keeps declared fields whose names begin with "_". Those are dropped
// from input otherwise.
func (b *objectBuilder) Allow(names ...string) *objectBuilder {
	for _, n := range names {
		b.allow[n] = struct{}{}
	}
	return b
}

// Exclude drops declared fields from input.
func (b *objectBuilder) Exclude(names ...string) *objectBuilder {
	for _, n := range names {
		b.exclude[n] = struct{}{}
	}
	return b
}

// Codec sets the scalar codec options of records built from the schema.
func (b *objectBuilder) Codec(c codec.Options) *objectBuilder {
	b.opts.Codec = c
	return b
}

// Options sets the document options of records built from the schema.
func (b *objectBuilder) Options(o restdoc.Options) *objectBuilder {
	b.opts = o
	return b
}

func (b *objectBuilder) Build() (*Schema, error) {
	if b.err != nil {
		return nil, b.err
	}
	s := &Schema{
		fields: make([]field, 0, len(b.fields)),
		index:  make(map[string]int, len(b.fields)),
		opts:   b.opts,
	}
	for _, f := range b.fields {
		if err := f.typ.validate(); err != nil {
			return nil, fmt.Errorf("model: field %q: %w", f.name, err)
		}
		if _, ok := b.exclude[f.name]; ok {
			continue
		}
		if _, ok := b.allow[f.name]; strings.HasPrefix(f.name, "_") && !ok {
			continue
		}
		s.index[f.name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

func (b *objectBuilder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
