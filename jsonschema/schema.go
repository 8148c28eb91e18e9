// Package jsonschema holds the JSON Schema subset exported by model schemas.
package jsonschema

import j "github.com/goccy/go-json"

// Draft is the dialect URI written by Document.
const Draft = "https://json-schema.org/draft/2020-12/schema"

type Schema struct {
	Dialect string `json:"$schema,omitempty"`
	Title   string `json:"title,omitempty"`

	Type   string `json:"type,omitempty"`
	Format string `json:"format,omitempty"`

	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	Items *Schema `json:"items,omitempty"`

	OneOf []*Schema `json:"oneOf,omitempty"`
}

// Nullable wraps s so that null is accepted as well.
func Nullable(s *Schema) *Schema {
	return &Schema{OneOf: []*Schema{s, {Type: "null"}}}
}

// Document renders s as an indented top-level schema document.
func Document(s *Schema, title string) ([]byte, error) {
	doc := *s
	doc.Dialect = Draft
	doc.Title = title
	return j.MarshalIndent(&doc, "", "  ")
}
