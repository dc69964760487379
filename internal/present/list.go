// Package present renders explorer data for a terminal. Everything here is
// best effort: response bodies have no declared shape, so list detection is
// a heuristic.
package present

import (
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf8"
)

// MaxColumns caps the columns shown for list data.
const MaxColumns = 6

var listKeys = []string{"results", "items", "data"}

// ListItems extracts the rows of a response body. A string is parsed as JSON
// first (and yields no rows if that fails). An object is unwrapped through a
// truthy results, items or data field, or through its only field when that
// field is an array. Anything that is still not an array becomes a single
// row.
func ListItems(data any) []any {
	if s, ok := data.(string); ok {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return []any{}
		}
		data = v
	}
	if obj, ok := data.(map[string]any); ok {
		data = unwrapList(obj)
	}
	if items, ok := data.([]any); ok {
		return items
	}
	return []any{data}
}

func unwrapList(obj map[string]any) any {
	for _, key := range listKeys {
		if v, ok := obj[key]; ok && truthy(v) {
			return v
		}
	}
	if len(obj) == 1 {
		for _, v := range obj {
			if items, ok := v.([]any); ok {
				return items
			}
		}
	}
	return obj
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	}
	return true
}

// Columns returns the keys of the first row, at most max of them. Keys come
// out sorted since decoded JSON objects carry no order.
func Columns(items []any, max int) []string {
	if len(items) == 0 {
		return nil
	}
	first, ok := items[0].(map[string]any)
	if !ok {
		return nil
	}
	cols := make([]string, 0, len(first))
	for k := range first {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	if max > 0 && len(cols) > max {
		cols = cols[:max]
	}
	return cols
}

const cellLimit = 50

// truncate cuts s to at most limit runes.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}

// CellValue renders one table cell.
func CellValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "—"
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case string:
		return val
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return truncate(string(b), cellLimit)
	}
	return fmt.Sprint(v)
}
