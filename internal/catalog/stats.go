package catalog

import (
	"strings"

	"github.com/mark3labs/swagger-explorer/internal/spec"
)

// MethodCounts tallies endpoints per HTTP method.
func MethodCounts(endpoints []spec.Endpoint) map[spec.HttpMethod]int {
	counts := make(map[spec.HttpMethod]int)
	for _, ep := range endpoints {
		counts[ep.Method]++
	}
	return counts
}

// EntityCount is the number of distinct normalized paths.
func EntityCount(endpoints []spec.Endpoint) int {
	seen := make(map[string]struct{})
	for _, ep := range endpoints {
		seen[Normalize(ep.Path)] = struct{}{}
	}
	return len(seen)
}

// Search returns endpoints whose path, summary, description, operationId or
// any tag contains query, ignoring case. An empty query matches everything.
func Search(endpoints []spec.Endpoint, query string) []spec.Endpoint {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return endpoints
	}
	var out []spec.Endpoint
	for _, ep := range endpoints {
		if matchesEndpoint(ep, q) {
			out = append(out, ep)
		}
	}
	return out
}

func matchesEndpoint(ep spec.Endpoint, q string) bool {
	for _, field := range []string{ep.Path, ep.Summary, ep.Description, ep.OperationID} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	for _, tag := range ep.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// FilterByMethod keeps endpoints with the given method, ignoring case.
func FilterByMethod(endpoints []spec.Endpoint, method string) []spec.Endpoint {
	m := spec.HttpMethod(strings.ToLower(method))
	var out []spec.Endpoint
	for _, ep := range endpoints {
		if ep.Method == m {
			out = append(out, ep)
		}
	}
	return out
}
