// Package catalog groups flattened endpoints for navigation: by declared tag,
// by coarse tag category, and by inferred CRUD resource.
package catalog

import (
	"strings"

	"github.com/mark3labs/swagger-explorer/internal/spec"
)

// UntaggedName is the tag used for endpoints that declare none, and the
// category that receives tags no keyword matches.
const UntaggedName = "Other"

// TagGroups maps tag name to endpoints, remembering first-seen tag order.
type TagGroups struct {
	names  []string
	groups map[string][]spec.Endpoint
}

// GroupByTag files every endpoint under each of its tags. Endpoints without
// tags are filed under "Other". An endpoint with several tags appears in
// several groups.
func GroupByTag(endpoints []spec.Endpoint) *TagGroups {
	tg := &TagGroups{groups: make(map[string][]spec.Endpoint)}
	for _, ep := range endpoints {
		if len(ep.Tags) == 0 {
			tg.add(UntaggedName, ep)
			continue
		}
		for _, tag := range ep.Tags {
			tg.add(tag, ep)
		}
	}
	return tg
}

func (tg *TagGroups) add(tag string, ep spec.Endpoint) {
	if _, ok := tg.groups[tag]; !ok {
		tg.names = append(tg.names, tag)
	}
	tg.groups[tag] = append(tg.groups[tag], ep)
}

// Names returns tag names in first-seen order.
func (tg *TagGroups) Names() []string {
	return append([]string(nil), tg.names...)
}

func (tg *TagGroups) Get(tag string) []spec.Endpoint { return tg.groups[tag] }

func (tg *TagGroups) Len() int { return len(tg.names) }

type Category struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

var categoryKeywords = []Category{
	{Name: "Database", Tags: []string{
		"postgres", "mysql", "redis", "mongodb",
		"mssql", "sybase", "oracleitc", "oracle dbaas", "oracle container",
		"database", "sql", "nosql",
	}},
	{Name: "Server", Tags: []string{"server", "nginx", "apache", "webserver"}},
	{Name: "Kubernetes", Tags: []string{"kubernetes", "k8s", "container", "pod", "deployment"}},
	{Name: "Storage", Tags: []string{"storage", "s3", "blob", "filesystems", "volumes"}},
	{Name: "Authentication", Tags: []string{"auth", "oauth", "users", "identity", "security"}},
	{Name: "Monitoring", Tags: []string{"monitoring", "logging", "metrics", "tracing", "alerts"}},
	{Name: "API", Tags: []string{"rest", "graphql", "soap", "endpoints"}},
}

// Categorize buckets tag names into fixed categories by keyword. A tag
// belongs to a category when, ignoring case, it contains one of the
// category's keywords or a keyword contains it. A tag may land in several
// categories; unmatched tags go to a trailing "Other" category. Empty
// categories are omitted.
func Categorize(tagNames []string) []Category {
	out := make([]Category, 0, len(categoryKeywords)+1)
	matched := make(map[string]bool, len(tagNames))
	for _, c := range categoryKeywords {
		var members []string
		for _, tag := range tagNames {
			if matchesAny(strings.ToLower(tag), c.Tags) {
				members = append(members, tag)
				matched[tag] = true
			}
		}
		if len(members) > 0 {
			out = append(out, Category{Name: c.Name, Tags: members})
		}
	}
	var other []string
	for _, tag := range tagNames {
		if !matched[tag] {
			other = append(other, tag)
		}
	}
	if len(other) > 0 {
		out = append(out, Category{Name: UntaggedName, Tags: other})
	}
	return out
}

func matchesAny(tag string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(tag, kw) || strings.Contains(kw, tag) {
			return true
		}
	}
	return false
}
