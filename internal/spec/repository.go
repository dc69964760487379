package spec

import (
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	defaultScheme = "https"
	fallbackHost  = "api.example.com"
)

// Repository owns a loaded Document for the lifetime of the process and
// hands read-only views of it to consumers. Construct one at startup and pass
// it explicitly; tests build their own from in-memory documents.
type Repository struct {
	doc *Document

	once      sync.Once
	endpoints []Endpoint
	byOpID    map[string]int
	byKey     map[string]int
}

func NewRepository(doc *Document) *Repository {
	if doc == nil {
		doc = &Document{}
	}
	return &Repository{doc: doc}
}

func (r *Repository) Document() *Document { return r.doc }

// Endpoints returns the flattened endpoint list. It is computed once; callers
// must not modify the returned slice.
func (r *Repository) Endpoints() []Endpoint {
	r.once.Do(func() {
		r.endpoints = Flatten(r.doc)
		r.byOpID = make(map[string]int, len(r.endpoints))
		r.byKey = make(map[string]int, len(r.endpoints))
		for i, ep := range r.endpoints {
			if ep.OperationID != "" {
				if _, dup := r.byOpID[ep.OperationID]; !dup {
					r.byOpID[ep.OperationID] = i
				}
			}
			r.byKey[ep.ID] = i
		}
	})
	return r.endpoints
}

// BaseURL is scheme://host+basePath. The scheme is the first declared one or
// https; a missing host falls back to api.example.com.
func (r *Repository) BaseURL() string {
	scheme := defaultScheme
	if len(r.doc.Schemes) > 0 && r.doc.Schemes[0] != "" {
		scheme = r.doc.Schemes[0]
	}
	host := r.doc.Host
	if host == "" {
		host = fallbackHost
	}
	return scheme + "://" + host + r.doc.BasePath
}

// TagInfo returns the document-level declaration for a tag, if any.
func (r *Repository) TagInfo(name string) (Tag, bool) {
	for _, t := range r.doc.Tags {
		if t.Name == name {
			return t, true
		}
	}
	return Tag{}, false
}

func (r *Repository) Definition(name string) (*openapi3.SchemaRef, bool) {
	ref, ok := r.doc.Definitions[name]
	return ref, ok && ref != nil
}

func (r *Repository) EndpointByOperationID(id string) (Endpoint, bool) {
	r.Endpoints()
	i, ok := r.byOpID[id]
	if !ok {
		return Endpoint{}, false
	}
	return r.endpoints[i], true
}

// FindEndpoint looks an endpoint up by method (any case) and exact path
// template.
func (r *Repository) FindEndpoint(method, path string) (Endpoint, bool) {
	r.Endpoints()
	i, ok := r.byKey[strings.ToLower(method)+" "+path]
	if !ok {
		return Endpoint{}, false
	}
	return r.endpoints[i], true
}

// Lookup resolves either an operationId or a "METHOD /path" pair.
func (r *Repository) Lookup(key string) (Endpoint, bool) {
	key = strings.TrimSpace(key)
	if ep, ok := r.EndpointByOperationID(key); ok {
		return ep, true
	}
	if method, path, ok := strings.Cut(key, " "); ok {
		return r.FindEndpoint(method, strings.TrimSpace(path))
	}
	return Endpoint{}, false
}
