package present

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mark3labs/swagger-explorer/internal/spec"
)

func TestListItems(t *testing.T) {
	t.Parallel()
	row := map[string]any{"id": float64(1)}
	cases := []struct {
		name string
		in   any
		want []any
	}{
		{"array", []any{row}, []any{row}},
		{"results", map[string]any{"results": []any{row}, "count": float64(1)}, []any{row}},
		{"items", map[string]any{"items": []any{row}, "next": nil}, []any{row}},
		{"data", map[string]any{"data": []any{row}, "meta": "x"}, []any{row}},
		{"single array key", map[string]any{"pets": []any{row}}, []any{row}},
		{"empty results falls through", map[string]any{"results": []any{}, "ok": true}, []any{map[string]any{"results": []any{}, "ok": true}}},
		{"single object", row, []any{row}},
		{"json string", `[{"id":1}]`, []any{row}},
		{"bad string", "<html>", []any{}},
		{"scalar", float64(3), []any{float64(3)}},
		{"nil", nil, []any{nil}},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, ListItems(tc.in)); diff != "" {
			t.Errorf("%s (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestColumns(t *testing.T) {
	t.Parallel()
	items := []any{map[string]any{"h": 1, "g": 1, "f": 1, "e": 1, "d": 1, "c": 1, "b": 1, "a": 1}}
	if diff := cmp.Diff([]string{"a", "b", "c", "d", "e", "f"}, Columns(items, MaxColumns)); diff != "" {
		t.Fatalf("columns (-want +got):\n%s", diff)
	}
	if got := Columns([]any{"x"}, MaxColumns); got != nil {
		t.Fatalf("expected no columns for scalar rows, got %v", got)
	}
	if got := Columns(nil, MaxColumns); got != nil {
		t.Fatalf("expected no columns, got %v", got)
	}
}

func TestCellValue(t *testing.T) {
	t.Parallel()
	long := map[string]any{"k": strings.Repeat("x", 60)}
	wide := map[string]any{"k": strings.Repeat("é", 60)}
	cases := []struct {
		in   any
		want string
	}{
		{nil, "—"},
		{true, "Yes"},
		{false, "No"},
		{"s", "s"},
		{float64(2.5), "2.5"},
		{[]any{float64(1), "a"}, `[1,"a"]`},
		{long, `{"k":"` + strings.Repeat("x", 44) + "..."},
		{wide, `{"k":"` + strings.Repeat("é", 44) + "..."},
	}
	for _, tc := range cases {
		if got := CellValue(tc.in); got != tc.want {
			t.Errorf("CellValue(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWriteTable(t *testing.T) {
	t.Parallel()
	items := []any{
		map[string]any{"id": float64(1), "name": "rex"},
		map[string]any{"id": float64(22), "name": nil},
	}
	var buf bytes.Buffer
	if err := WriteTable(&buf, items, Columns(items, MaxColumns)); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "ID  NAME\n1   rex\n22  —\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("table (-want +got):\n%s", diff)
	}
}

func TestMethodAndStatus(t *testing.T) {
	SetColor(false)
	if got := Method(spec.DELETE); got != "DELETE " {
		t.Fatalf("Method = %q", got)
	}
	if MethodColor("trace") != faint {
		t.Fatalf("expected faint color for unknown method")
	}
	if got := Status(0); got != "ERR" {
		t.Fatalf("Status(0) = %q", got)
	}
	if got := Status(404); got != "404" {
		t.Fatalf("Status(404) = %q", got)
	}
}

func TestWrapAndTitle(t *testing.T) {
	t.Parallel()
	got := Wrap("the quick brown fox jumps over the lazy dog", 24, 2)
	for _, line := range strings.Split(got, "\n") {
		if !strings.HasPrefix(line, "  ") {
			t.Fatalf("line not indented: %q", line)
		}
		if len(line) > 24 {
			t.Fatalf("line too long: %q", line)
		}
	}
	if got := Title("user-accounts"); got != "User Accounts" {
		t.Fatalf("Title = %q", got)
	}
	if got := Title("pet_store"); got != "Pet Store" {
		t.Fatalf("Title = %q", got)
	}
	if got := Width(nil); got != 80 {
		t.Fatalf("Width(nil) = %d", got)
	}
}
