package example

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"

	"github.com/mark3labs/swagger-explorer/internal/spec"
)

func schema(t *testing.T, src string) *openapi3.SchemaRef {
	t.Helper()
	var ref openapi3.SchemaRef
	if err := json.Unmarshal([]byte(src), &ref); err != nil {
		t.Fatalf("unmarshal schema: %v", err)
	}
	return &ref
}

func petDefinitions(t *testing.T) map[string]*openapi3.SchemaRef {
	return map[string]*openapi3.SchemaRef{
		"Pet": schema(t, `{"type":"object","properties":{
			"id":{"type":"integer"},
			"name":{"type":"string","example":"doggie"},
			"category":{"$ref":"#/definitions/Category"},
			"tags":{"type":"array","items":{"$ref":"#/definitions/Tag"}},
			"photoUrls":{"type":"array","items":{"type":"string"}},
			"available":{"type":"boolean"},
			"meta":{"type":"object","properties":{"a":{"type":"string"}}},
			"owner":{"$ref":"#/definitions/Missing"}
		}}`),
		"Category": schema(t, `{"type":"object","properties":{"name":{"type":"string"}}}`),
		"Tag":      schema(t, `{"type":"object","example":{"name":"fluffy"}}`),
		"Pets":     schema(t, `{"type":"array","items":{"$ref":"#/definitions/Pet"}}`),
		"Alias":    schema(t, `{"$ref":"#/definitions/Category"}`),
		"Node":     schema(t, `{"type":"object","properties":{"next":{"$ref":"#/definitions/Node"}}}`),
	}
}

func TestBuildExample_BaseCases(t *testing.T) {
	t.Parallel()
	s := NewSynthesizer(nil)
	cases := []struct {
		src  string
		want any
	}{
		{`{"type":"string"}`, "string"},
		{`{"type":"integer"}`, 0},
		{`{"type":"number"}`, 0},
		{`{"type":"boolean"}`, false},
		{`{"type":"object","properties":{"n":{"type":"string"}}}`, map[string]any{"n": "string"}},
		{`{"type":"object"}`, nil},
		{`{"type":"array","items":{"type":"string"}}`, nil},
		{`{"example":{"x":1}}`, map[string]any{"x": float64(1)}},
		{`{"type":"integer","example":0}`, float64(0)},
	}
	for _, tc := range cases {
		got := s.BuildExample(schema(t, tc.src).Value)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("BuildExample(%s) (-want +got):\n%s", tc.src, diff)
		}
	}
	if got := s.BuildExample(nil); got != nil {
		t.Fatalf("expected nil for nil schema, got %v", got)
	}
}

func TestResolveExample(t *testing.T) {
	t.Parallel()
	s := NewSynthesizer(petDefinitions(t))
	want := map[string]any{
		"id":        0,
		"name":      "doggie",
		"category":  map[string]any{"name": "string"},
		"tags":      []any{map[string]any{"name": "fluffy"}},
		"photoUrls": []any{},
		"available": false,
		"meta":      nil,
		"owner":     nil,
	}
	if diff := cmp.Diff(want, s.ResolveExample("#/definitions/Pet")); diff != "" {
		t.Fatalf("Pet example (-want +got):\n%s", diff)
	}

	pets, ok := s.ResolveExample("#/definitions/Pets").([]any)
	if !ok || len(pets) != 1 {
		t.Fatalf("expected singleton array, got %#v", pets)
	}
	if diff := cmp.Diff(map[string]any{"name": "string"}, s.ResolveExample("#/definitions/Alias")); diff != "" {
		t.Fatalf("alias (-want +got):\n%s", diff)
	}
	for _, ref := range []string{"#/definitions/Nope", "#/parameters/Pet", "Pet", ""} {
		if got := s.ResolveExample(ref); got != nil {
			t.Errorf("ResolveExample(%q) = %v, want nil", ref, got)
		}
	}
}

func TestResolveExample_CycleIsBounded(t *testing.T) {
	t.Parallel()
	s := NewSynthesizer(petDefinitions(t), WithMaxDepth(3))
	got := s.ResolveExample("#/definitions/Node")
	depth := 0
	for {
		m, ok := got.(map[string]any)
		if !ok {
			break
		}
		depth++
		got = m["next"]
	}
	if got != nil {
		t.Fatalf("expected nil at the depth limit, got %#v", got)
	}
	if depth != 4 {
		t.Fatalf("expected 4 nested levels, got %d", depth)
	}
}

func TestExample_FollowsRef(t *testing.T) {
	t.Parallel()
	s := NewSynthesizer(petDefinitions(t))
	got := s.Example(&openapi3.SchemaRef{Ref: "#/definitions/Category"})
	if diff := cmp.Diff(map[string]any{"name": "string"}, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if s.Example(nil) != nil {
		t.Fatalf("expected nil")
	}
}

func TestDefaultValue(t *testing.T) {
	t.Parallel()
	fixed := time.Date(2024, 2, 29, 23, 59, 58, 123_000_000, time.FixedZone("X", 3600))
	s := NewSynthesizer(nil, WithClock(func() time.Time { return fixed }))
	cases := []struct {
		typ, format string
		want        any
	}{
		{"string", "", ""},
		{"string", "date-time", "2024-02-29T22:59:58.123Z"},
		{"string", "date", "2024-02-29"},
		{"integer", "int64", 0},
		{"number", "", 0},
		{"boolean", "", false},
		{"array", "", []any{}},
		{"object", "", map[string]any{}},
		{"file", "", nil},
		{"", "", nil},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, s.DefaultValue(tc.typ, tc.format)); diff != "" {
			t.Errorf("DefaultValue(%q, %q) (-want +got):\n%s", tc.typ, tc.format, diff)
		}
	}
}

func TestDefaultValueForType_DateTimeIsNow(t *testing.T) {
	t.Parallel()
	before := time.Now().Add(-time.Second)
	v, ok := DefaultValueForType("string", "date-time").(string)
	if !ok {
		t.Fatalf("expected string")
	}
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		t.Fatalf("parse %q: %v", v, err)
	}
	if ts.Before(before) || ts.After(time.Now().Add(time.Second)) {
		t.Fatalf("timestamp %s not within tolerance", v)
	}
}

func TestResolveExample_DecodedDiscriminatorDefinition(t *testing.T) {
	t.Parallel()
	doc, err := spec.Decode([]byte(`swagger: "2.0"
paths: {}
definitions:
  Pet:
    type: object
    discriminator: petType
    properties:
      petType: {type: string, example: dog}
      name: {type: string, required: true}
`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	s := NewSynthesizer(doc.Definitions)
	want := map[string]any{"petType": "dog", "name": "string"}
	if diff := cmp.Diff(want, s.ResolveExample("#/definitions/Pet")); diff != "" {
		t.Fatalf("Pet example (-want +got):\n%s", diff)
	}
}
