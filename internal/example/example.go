// Package example synthesizes sample JSON values from Swagger definitions and
// default form values from parameter types.
package example

import (
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/getkin/kin-openapi/openapi3"
)

const (
	definitionsPrefix = "#/definitions/"
	DefaultMaxDepth   = 20
)

// Synthesizer builds examples against a fixed set of definitions.
type Synthesizer struct {
	defs     map[string]*openapi3.SchemaRef
	maxDepth int
	now      func() time.Time
	logger   log.Interface
}

type Option func(*Synthesizer)

// WithMaxDepth bounds $ref expansion. Values past the bound become nil.
func WithMaxDepth(n int) Option { return func(s *Synthesizer) { s.maxDepth = n } }

// WithClock replaces time.Now for date and date-time defaults.
func WithClock(now func() time.Time) Option { return func(s *Synthesizer) { s.now = now } }

func WithLogger(l log.Interface) Option { return func(s *Synthesizer) { s.logger = l } }

func NewSynthesizer(defs map[string]*openapi3.SchemaRef, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		defs:     defs,
		maxDepth: DefaultMaxDepth,
		now:      time.Now,
		logger:   log.Log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveExample expands a "#/definitions/<name>" reference. Any other form
// of reference, or a missing definition, yields nil.
func (s *Synthesizer) ResolveExample(ref string) any {
	return s.resolve(ref, 0)
}

// BuildExample synthesizes a value for a schema node:
//   - a literal example is returned verbatim;
//   - an object with properties becomes a map with one entry per property;
//   - an array whose items are a $ref becomes a one-element slice;
//   - string, integer, number and boolean get placeholder values.
//
// Anything else is nil.
func (s *Synthesizer) BuildExample(node *openapi3.Schema) any {
	return s.build(node, 0)
}

// Example synthesizes a value for a schema reference, following $ref when set.
func (s *Synthesizer) Example(ref *openapi3.SchemaRef) any {
	if ref == nil {
		return nil
	}
	if ref.Ref != "" {
		return s.resolve(ref.Ref, 0)
	}
	return s.build(ref.Value, 0)
}

func (s *Synthesizer) resolve(ref string, depth int) any {
	if depth > s.maxDepth {
		s.logger.WithField("ref", ref).Debug("example: depth limit reached")
		return nil
	}
	if !strings.HasPrefix(ref, definitionsPrefix) {
		return nil
	}
	def, ok := s.defs[strings.TrimPrefix(ref, definitionsPrefix)]
	if !ok || def == nil {
		return nil
	}
	if def.Ref != "" && def.Value == nil {
		return s.resolve(def.Ref, depth+1)
	}
	return s.build(def.Value, depth+1)
}

func (s *Synthesizer) build(node *openapi3.Schema, depth int) any {
	if node == nil {
		return nil
	}
	if node.Example != nil {
		return node.Example
	}
	switch {
	case node.Type == openapi3.TypeObject && node.Properties != nil:
		out := make(map[string]any, len(node.Properties))
		for name, prop := range node.Properties {
			out[name] = s.property(prop, depth)
		}
		return out
	case node.Type == openapi3.TypeArray && node.Items != nil && node.Items.Ref != "":
		return []any{s.resolve(node.Items.Ref, depth)}
	}
	return placeholder(node.Type)
}

func (s *Synthesizer) property(prop *openapi3.SchemaRef, depth int) any {
	if prop == nil {
		return nil
	}
	if prop.Ref != "" {
		return s.resolve(prop.Ref, depth)
	}
	v := prop.Value
	if v == nil {
		return nil
	}
	switch v.Type {
	case openapi3.TypeArray:
		if v.Items != nil && v.Items.Ref != "" {
			return []any{s.resolve(v.Items.Ref, depth)}
		}
		return []any{}
	case openapi3.TypeString, openapi3.TypeInteger, openapi3.TypeNumber, openapi3.TypeBoolean:
		if v.Example != nil {
			return v.Example
		}
		return placeholder(v.Type)
	}
	return nil
}

func placeholder(typ string) any {
	switch typ {
	case openapi3.TypeString:
		return "string"
	case openapi3.TypeInteger, openapi3.TypeNumber:
		return 0
	case openapi3.TypeBoolean:
		return false
	}
	return nil
}

const (
	DateTimeLayout = "2006-01-02T15:04:05.000Z"
	DateLayout     = "2006-01-02"
)

// DefaultValue returns the empty value a form field of the given type starts
// with. Dates are evaluated against the clock on every call.
func (s *Synthesizer) DefaultValue(typ, format string) any {
	switch typ {
	case "string":
		switch format {
		case "date-time":
			return s.now().UTC().Format(DateTimeLayout)
		case "date":
			return s.now().UTC().Format(DateLayout)
		}
		return ""
	case "integer", "number":
		return 0
	case "boolean":
		return false
	case "array":
		return []any{}
	case "object":
		return map[string]any{}
	}
	return nil
}

var std = NewSynthesizer(nil)

// DefaultValueForType is DefaultValue against the wall clock.
func DefaultValueForType(typ, format string) any {
	return std.DefaultValue(typ, format)
}
