package spec

import (
	"testing"
)

func TestFlatten_Completeness(t *testing.T) {
	t.Parallel()
	doc, err := Decode([]byte(petstoreJSON))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	eps := Flatten(doc)

	want := 0
	for _, item := range doc.Paths {
		want += len(item.Operations)
	}
	if len(eps) != want {
		t.Fatalf("expected %d endpoints, got %d", want, len(eps))
	}
	seen := map[string]bool{}
	for _, ep := range eps {
		if seen[ep.ID] {
			t.Fatalf("duplicate endpoint %s", ep.ID)
		}
		seen[ep.ID] = true
		if ep.ID != string(ep.Method)+" "+ep.Path {
			t.Fatalf("unexpected id %q", ep.ID)
		}
	}
	if eps[0].OperationID != "addPet" || eps[3].OperationID != "deletePet" {
		t.Fatalf("unexpected order: %s ... %s", eps[0].ID, eps[3].ID)
	}
}

func TestFlatten_Defaults(t *testing.T) {
	t.Parallel()
	doc := &Document{Paths: []PathItem{
		{Path: "/a", Operations: []MethodOperation{{Method: GET, Operation: &Operation{}}, {Method: POST}}},
		{Path: "/empty"},
	}}
	eps := Flatten(doc)
	if len(eps) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(eps))
	}
	for _, ep := range eps {
		if ep.Tags == nil || len(ep.Tags) != 0 {
			t.Fatalf("expected empty tags, got %#v", ep.Tags)
		}
		if ep.Parameters == nil || ep.Responses == nil {
			t.Fatalf("expected non-nil parameters/responses: %+v", ep)
		}
		if ep.Summary != "" || ep.OperationID != "" {
			t.Fatalf("expected empty strings: %+v", ep)
		}
	}
}

func TestFlatten_NilDocument(t *testing.T) {
	t.Parallel()
	if eps := Flatten(nil); eps == nil || len(eps) != 0 {
		t.Fatalf("expected empty slice, got %#v", eps)
	}
}
