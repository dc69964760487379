package spec

import (
	"github.com/apex/log"
)

// nestedSchemaKeys hold a single sub-schema.
var nestedSchemaKeys = []string{"items", "additionalProperties", "not"}

// schemaListKeys hold a list of sub-schemas.
var schemaListKeys = []string{"allOf", "anyOf", "oneOf"}

// sanitizeSchema rewrites a Swagger 2.0 schema so it fits the OpenAPI 3
// model. A string discriminator becomes {"propertyName": ...}; any other key
// that still fails to decode is dropped, one key at a time, so a single bad
// field never costs the whole schema. Sub-schemas are cleaned first.
func sanitizeSchema(m map[string]any) map[string]any {
	if d, ok := m["discriminator"].(string); ok {
		m["discriminator"] = map[string]any{"propertyName": d}
	}
	if props, ok := m["properties"].(map[string]any); ok {
		for name, p := range props {
			if pm, ok := p.(map[string]any); ok {
				props[name] = sanitizeSchema(pm)
			}
		}
	}
	for _, key := range nestedSchemaKeys {
		if sub, ok := m[key].(map[string]any); ok {
			m[key] = sanitizeSchema(sub)
		}
	}
	for _, key := range schemaListKeys {
		list, ok := m[key].([]any)
		if !ok {
			continue
		}
		for i, item := range list {
			if sub, ok := item.(map[string]any); ok {
				list[i] = sanitizeSchema(sub)
			}
		}
	}

	for key, v := range m {
		if _, err := unmarshalSchema(map[string]any{key: v}); err != nil {
			log.WithField("key", key).WithError(err).Debug("spec: dropping undecodable schema field")
			delete(m, key)
		}
	}
	return m
}
