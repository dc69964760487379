// Package form holds the editable parameter values for one endpoint.
package form

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/mark3labs/swagger-explorer/internal/example"
	"github.com/mark3labs/swagger-explorer/internal/spec"
)

// Values maps parameter name to its current value. A missing key means the
// parameter is not sent.
type Values map[string]any

func (v Values) Set(name string, value any) { v[name] = value }

// Clone returns a shallow copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Defaulter produces the initial value for a typed parameter.
type Defaulter interface {
	DefaultValue(typ, format string) any
}

type defaultFunc func(typ, format string) any

func (f defaultFunc) DefaultValue(typ, format string) any { return f(typ, format) }

// SeedFormValues returns the initial values for every parameter of ep. Body
// parameters with a schema start as an empty object rather than a
// synthesized example.
func SeedFormValues(ep spec.Endpoint) Values {
	return Seed(ep, defaultFunc(example.DefaultValueForType))
}

// Seed is SeedFormValues with an explicit source of type defaults.
func Seed(ep spec.Endpoint, d Defaulter) Values {
	values := make(Values, len(ep.Parameters))
	for _, p := range ep.Parameters {
		switch {
		case p.In == spec.InBody && p.Schema != nil:
			values[p.Name] = map[string]any{}
		case p.Type != "":
			values[p.Name] = d.DefaultValue(p.Type, p.Format)
		default:
			values[p.Name] = nil
		}
	}
	return values
}

// ParseInput converts text typed for a parameter into a value.
//
// Body text is read as JSON; comments and trailing commas are tolerated. Text
// that still does not parse is kept as the raw string so the edit is never
// rejected. Arrays take one element per line. Numbers and booleans that do
// not parse are also kept as text.
func ParseInput(p spec.Parameter, text string) any {
	if p.In == spec.InBody {
		return parseJSON(text)
	}
	switch p.Type {
	case "array":
		return parseLines(p, text)
	case "boolean":
		if b, ok := parseBool(text); ok {
			return b
		}
	case "integer":
		s := strings.TrimSpace(text)
		if s == "" {
			return nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case "number":
		s := strings.TrimSpace(text)
		if s == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case "object":
		return parseJSON(text)
	}
	return text
}

func parseJSON(text string) any {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	std, err := hujson.Standardize([]byte(text))
	if err != nil {
		return text
	}
	var v any
	if err := json.Unmarshal(std, &v); err != nil {
		return text
	}
	return v
}

func parseLines(p spec.Parameter, text string) any {
	elem := spec.Parameter{Name: p.Name, In: p.In}
	if p.Items != nil && p.Items.Value != nil {
		elem.Type = p.Items.Value.Type
	}
	out := []any{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if elem.Type == "" || elem.Type == "array" {
			out = append(out, line)
			continue
		}
		out = append(out, ParseInput(elem, line))
	}
	return out
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on":
		return true, true
	case "false", "0", "no", "n", "off":
		return false, true
	}
	return false, false
}

// SetText parses text for the named parameter of ep and stores it.
func (v Values) SetText(ep spec.Endpoint, name, text string) error {
	for _, p := range ep.Parameters {
		if p.Name == name {
			v[name] = ParseInput(p, text)
			return nil
		}
	}
	return fmt.Errorf("form: %s has no parameter %q", ep.ID, name)
}

// Format renders a value back into the text ParseInput accepts.
func Format(p spec.Parameter, value any) string {
	switch val := value.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any:
		if p.In != spec.InBody {
			lines := make([]string, 0, len(val))
			for _, item := range val {
				lines = append(lines, Format(spec.Parameter{}, item))
			}
			return strings.Join(lines, "\n")
		}
	case bool, int, int64, float64:
		return fmt.Sprint(val)
	}
	b, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(b)
}
