package catalog

import (
	"regexp"
	"sort"
	"strings"

	"github.com/mark3labs/swagger-explorer/internal/spec"
)

const defaultEntityName = "default"

var trailingParam = regexp.MustCompile(`/\{[^/{}]+\}$`)

// Normalize strips a single trailing "/{param}" segment from a path template.
// Parameters earlier in the path are kept, so /orgs/{orgId}/repos/{id}
// becomes /orgs/{orgId}/repos.
func Normalize(path string) string {
	return trailingParam.ReplaceAllString(path, "")
}

// HasTrailingParam reports whether the path ends in a "/{param}" segment.
func HasTrailingParam(path string) bool {
	return trailingParam.MatchString(path)
}

// EntityGroup clusters the endpoints that share a normalized path and
// records which of them plays each CRUD role.
type EntityGroup struct {
	Name      string          `json:"name"`
	Path      string          `json:"path"`
	Endpoints []spec.Endpoint `json:"endpoints"`

	List   *spec.Endpoint `json:"listEndpoint,omitempty"`
	View   *spec.Endpoint `json:"viewEndpoint,omitempty"`
	Create *spec.Endpoint `json:"createEndpoint,omitempty"`
	Update *spec.Endpoint `json:"updateEndpoint,omitempty"`
	Delete *spec.Endpoint `json:"deleteEndpoint,omitempty"`
}

// Slots returns the populated CRUD roles in list, view, create, update,
// delete order.
func (g *EntityGroup) Slots() []Slot {
	var out []Slot
	for _, s := range []Slot{
		{Role: RoleList, Endpoint: g.List},
		{Role: RoleView, Endpoint: g.View},
		{Role: RoleCreate, Endpoint: g.Create},
		{Role: RoleUpdate, Endpoint: g.Update},
		{Role: RoleDelete, Endpoint: g.Delete},
	} {
		if s.Endpoint != nil {
			out = append(out, s)
		}
	}
	return out
}

type Role string

const (
	RoleList   Role = "list"
	RoleView   Role = "view"
	RoleCreate Role = "create"
	RoleUpdate Role = "update"
	RoleDelete Role = "delete"
)

type Slot struct {
	Role     Role
	Endpoint *spec.Endpoint
}

// RoleOf maps an endpoint to its CRUD role from its method and whether its
// path ends in a parameter. ok is false for methods with no role.
func RoleOf(ep spec.Endpoint) (Role, bool) {
	switch spec.HttpMethod(strings.ToLower(string(ep.Method))) {
	case spec.GET:
		if HasTrailingParam(ep.Path) {
			return RoleView, true
		}
		return RoleList, true
	case spec.POST:
		return RoleCreate, true
	case spec.PUT, spec.PATCH:
		return RoleUpdate, true
	case spec.DELETE:
		return RoleDelete, true
	}
	return "", false
}

// GroupEntities buckets endpoints by normalized path and assigns CRUD slots.
// When several endpoints qualify for one slot the last one wins. Groups are
// sorted by name; groups sharing a name keep first-seen order.
func GroupEntities(endpoints []spec.Endpoint) []EntityGroup {
	index := make(map[string]int)
	var groups []EntityGroup
	for _, ep := range endpoints {
		norm := Normalize(ep.Path)
		i, ok := index[norm]
		if !ok {
			i = len(groups)
			index[norm] = i
			groups = append(groups, EntityGroup{Name: entityName(norm), Path: norm})
		}
		groups[i].Endpoints = append(groups[i].Endpoints, ep)
	}

	for i := range groups {
		g := &groups[i]
		for j := range g.Endpoints {
			ep := &g.Endpoints[j]
			role, ok := RoleOf(*ep)
			if !ok {
				continue
			}
			switch role {
			case RoleList:
				g.List = ep
			case RoleView:
				g.View = ep
			case RoleCreate:
				g.Create = ep
			case RoleUpdate:
				g.Update = ep
			case RoleDelete:
				g.Delete = ep
			}
		}
	}

	sort.SliceStable(groups, func(a, b int) bool { return groups[a].Name < groups[b].Name })
	return groups
}

// FilterByTag returns the endpoints carrying tag. The "Other" tag selects
// untagged endpoints.
func FilterByTag(endpoints []spec.Endpoint, tag string) []spec.Endpoint {
	return GroupByTag(endpoints).Get(tag)
}

func entityName(normalized string) string {
	parts := strings.Split(normalized, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return defaultEntityName
}
