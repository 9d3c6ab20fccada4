package internal

import "github.com/invopop/jsonschema"

// Schema is a named JSON schema, as some providers require response schemas
// to carry a name and description alongside the schema proper.
type Schema struct {
	Name        string
	Description string
	Schema      jsonschema.Schema
}

// GenerateSchema reflects a JSON schema from S.
//
// Additional properties are disallowed and definitions are inlined, since that
// is the shape hosted providers accept for structured outputs.
func GenerateSchema[S any]() jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	jsonSchema := reflector.Reflect(new(S))

	return *jsonSchema
}
