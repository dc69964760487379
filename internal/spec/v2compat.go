package spec

import (
	"fmt"
	"sort"
	"strings"
)

// preprocessV2ForCompatibility rewrites non-compliant Swagger v2 operations so
// kin-openapi can convert them to v3 for diagnostics. Specifically:
//   - multiple body parameters are merged into a single body parameter whose
//     schema is an object with one property per original parameter;
//   - when body and formData parameters are mixed, body parameters become
//     formData parameters and the operation consumes multipart/form-data.
//
// The document is rewritten in place. One note is returned per rewritten
// operation, in path/method order.
func preprocessV2ForCompatibility(doc map[string]any) []string {
	paths, ok := doc["paths"].(map[string]any)
	if !ok || len(paths) == 0 {
		return nil
	}

	pathKeys := make([]string, 0, len(paths))
	for p := range paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	var notes []string
	for _, path := range pathKeys {
		pi, ok := paths[path].(map[string]any)
		if !ok {
			continue
		}
		for _, method := range []string{"get", "put", "post", "delete", "options", "head", "patch"} {
			op, ok := pi[method].(map[string]any)
			if !ok {
				continue
			}
			params, ok := op["parameters"].([]any)
			if !ok || len(params) == 0 {
				continue
			}

			bodyCount := 0
			hasFormData := false
			for _, p := range params {
				pm, _ := p.(map[string]any)
				switch {
				case pm == nil:
				case strings.EqualFold(asString(pm["in"]), InBody):
					bodyCount++
				case strings.EqualFold(asString(pm["in"]), InFormData):
					hasFormData = true
				}
			}
			if bodyCount == 0 {
				continue
			}

			if hasFormData {
				op["parameters"] = bodyParamsToFormData(params)
				var consumes []any
				if c, ok := op["consumes"].([]any); ok {
					consumes = c
				}
				if !containsString(consumes, "multipart/form-data") {
					op["consumes"] = append(consumes, "multipart/form-data")
				}
				notes = append(notes, fmt.Sprintf("%s %s: converted %d body parameter(s) to formData", method, path, bodyCount))
				continue
			}

			if bodyCount > 1 {
				op["parameters"] = mergeBodyParams(params)
				notes = append(notes, fmt.Sprintf("%s %s: merged %d body parameters into one", method, path, bodyCount))
			}
		}
	}

	return notes
}

func bodyParamsToFormData(params []any) []any {
	out := make([]any, 0, len(params))
	for _, p := range params {
		pm, _ := p.(map[string]any)
		if pm == nil {
			continue
		}
		if strings.EqualFold(asString(pm["in"]), InBody) {
			out = append(out, formDataFromBodyParam(pm))
			continue
		}
		out = append(out, pm)
	}
	return out
}

func mergeBodyParams(params []any) []any {
	props := map[string]any{}
	required := make([]any, 0)
	rest := make([]any, 0, len(params))
	for _, p := range params {
		pm, _ := p.(map[string]any)
		if pm == nil {
			continue
		}
		if !strings.EqualFold(asString(pm["in"]), InBody) {
			rest = append(rest, p)
			continue
		}
		name := asString(pm["name"])
		if name == "" {
			name = "field"
		}
		schema := extractSchemaFromParam(pm)
		if schema == nil {
			schema = map[string]any{"type": "string"}
		}
		props[name] = schema
		if rb, _ := pm["required"].(bool); rb {
			required = append(required, name)
		}
	}
	bodySchema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		bodySchema["required"] = required
	}
	merged := map[string]any{"in": InBody, "name": "body", "schema": bodySchema}
	return append([]any{merged}, rest...)
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func containsString(list []any, want string) bool {
	for _, v := range list {
		if s, ok := v.(string); ok && s == want {
			return true
		}
	}
	return false
}

func extractSchemaFromParam(pm map[string]any) map[string]any {
	if sch, ok := pm["schema"].(map[string]any); ok {
		return sch
	}
	// Synthesize schema from param type/items/format when present
	t, _ := pm["type"].(string)
	if t == "" {
		return nil
	}
	m := map[string]any{"type": t}
	if it, ok := pm["items"].(map[string]any); ok {
		m["items"] = it
	}
	if f, ok := pm["format"].(string); ok && f != "" {
		m["format"] = f
	}
	return m
}

func formDataFromBodyParam(pm map[string]any) map[string]any {
	name := asString(pm["name"])
	if name == "" {
		name = "field"
	}
	out := map[string]any{"in": InFormData, "name": name}
	if desc, ok := pm["description"].(string); ok && desc != "" {
		out["description"] = desc
	}
	if req, ok := pm["required"].(bool); ok {
		out["required"] = req
	}
	// Derive a formData-compatible type; fallback to string.
	var typ, format string
	var items any
	if sch, ok := pm["schema"].(map[string]any); ok {
		typ = asString(sch["type"])
		format = asString(sch["format"])
		if it, ok := sch["items"].(map[string]any); ok {
			items = it
		}
		if typ == "" && sch["$ref"] != nil {
			// A referenced object cannot be represented in formData.
			typ = "string"
		}
	}
	if typ == "" {
		typ = asString(pm["type"])
		format = asString(pm["format"])
		if it, ok := pm["items"].(map[string]any); ok {
			items = it
		}
	}
	if typ == "" {
		typ = "string"
	}
	out["type"] = typ
	if items != nil {
		out["items"] = items
	}
	if format != "" {
		out["format"] = format
	}
	return out
}
