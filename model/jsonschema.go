package model

import js "github.com/reoring/restdoc/jsonschema"

// JSONSchema exports the accepted fields. Undeclared properties are rejected
// and lenient fields also accept null.
func (s *Schema) JSONSchema() *js.Schema {
	out := &js.Schema{
		Type:                 "object",
		Properties:           make(map[string]*js.Schema, len(s.fields)),
		AdditionalProperties: false,
	}
	for _, f := range s.fields {
		p := f.typ.jsonSchema()
		if f.lenient {
			p = js.Nullable(p)
		}
		out.Properties[f.name] = p
	}
	return out
}

func (t Type) jsonSchema() *js.Schema {
	switch t.kind {
	case kindInt:
		return &js.Schema{Type: "integer"}
	case kindFloat:
		return &js.Schema{Type: "number"}
	case kindString:
		return &js.Schema{Type: "string"}
	case kindBool:
		return &js.Schema{Type: "boolean"}
	case kindDatetime:
		return &js.Schema{Type: "string", Format: "date-time"}
	case kindDate:
		return &js.Schema{Type: "string", Format: "date"}
	case kindRef:
		return t.ref.JSONSchema()
	case kindCollection:
		return &js.Schema{Type: "array", Items: t.elem.jsonSchema()}
	}
	return &js.Schema{}
}
