package provider

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/pallasite/prompt-forge/promptgen"
)

// StructuredChatter is implemented by clients that can constrain a chat
// reply to a JSON schema. Callers fall back to text parsing when a client
// does not support it.
type StructuredChatter interface {
	ChatStructured(ctx context.Context, system, user string, format json.RawMessage, opts promptgen.GenOptions) (string, error)
}

// GenerateSchema reflects T into a strict JSON schema suitable for Ollama's
// format field and OpenAI json_schema response formats: no references, no
// additional properties, every property required.
func GenerateSchema[T any]() json.RawMessage {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	obj, err := schemaToMap(schema)
	if err != nil {
		panic(err)
	}
	ensureStrictSchema(obj)
	out, err := json.Marshal(obj)
	if err != nil {
		panic(err)
	}
	return out
}

func schemaToMap(schema *jsonschema.Schema) (map[string]any, error) {
	b, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

const (
	propertiesKey           = "properties"
	additionalPropertiesKey = "additionalProperties"
	typeKey                 = "type"
	requiredKey             = "required"
	itemsKey                = "items"
)

// ensureStrictSchema recursively closes every object (no additional
// properties, all properties required), which strict structured-output
// implementations demand.
func ensureStrictSchema(schema map[string]any) {
	if schemaType, ok := schema[typeKey].(string); ok && schemaType == "object" {
		schema[additionalPropertiesKey] = false

		if properties, ok := schema[propertiesKey].(map[string]any); ok {
			var requiredFields []string
			for propName := range properties {
				requiredFields = append(requiredFields, propName)
			}
			if len(requiredFields) > 0 {
				schema[requiredKey] = requiredFields
			}
		}
	}

	if properties, ok := schema[propertiesKey].(map[string]any); ok {
		for _, prop := range properties {
			if propMap, ok := prop.(map[string]any); ok {
				ensureStrictSchema(propMap)
			}
		}
	}

	if items, ok := schema[itemsKey].(map[string]any); ok {
		ensureStrictSchema(items)
	}

	if additionalProps, ok := schema[additionalPropertiesKey].(map[string]any); ok {
		ensureStrictSchema(additionalProps)
	}
}
