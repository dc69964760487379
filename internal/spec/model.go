package spec

import "github.com/getkin/kin-openapi/openapi3"

// Document model for Swagger 2.0 documents. Values are built once by Decode
// and treated as read-only afterwards.

type HttpMethod string

const (
	GET     HttpMethod = "get"
	POST    HttpMethod = "post"
	PUT     HttpMethod = "put"
	DELETE  HttpMethod = "delete"
	PATCH   HttpMethod = "patch"
	HEAD    HttpMethod = "head"
	OPTIONS HttpMethod = "options"
)

// Parameter locations.
const (
	InPath     = "path"
	InQuery    = "query"
	InHeader   = "header"
	InBody     = "body"
	InFormData = "formData"
)

type Document struct {
	Swagger     string
	Info        Info
	Host        string
	BasePath    string
	Schemes     []string // nil when the document declares none
	Consumes    []string
	Produces    []string
	Tags        []Tag
	Paths       []PathItem // document order
	Definitions map[string]*openapi3.SchemaRef
}

type Info struct {
	Title          string
	Description    string
	Version        string
	TermsOfService string
	Contact        *Contact
	License        *License
}

type Contact struct {
	Name  string
	URL   string
	Email string
}

type License struct {
	Name string
	URL  string
}

type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type PathItem struct {
	Path       string
	Operations []MethodOperation // document order
}

type MethodOperation struct {
	Method    HttpMethod
	Operation *Operation
}

type Operation struct {
	Tags        []string
	Summary     string
	Description string
	OperationID string
	Consumes    []string
	Produces    []string
	Parameters  []Parameter
	Responses   map[string]Response
	Deprecated  bool
}

type Parameter struct {
	Name             string              `json:"name"`
	In               string              `json:"in"`
	Description      string              `json:"description,omitempty"`
	Required         bool                `json:"required"`
	Type             string              `json:"type,omitempty"`
	Format           string              `json:"format,omitempty"`
	CollectionFormat string              `json:"collectionFormat,omitempty"`
	Schema           *openapi3.SchemaRef `json:"schema,omitempty"`
	Items            *openapi3.SchemaRef `json:"items,omitempty"`
	Enum             []string            `json:"enum,omitempty"`
	Default          any                 `json:"default,omitempty"`
}

type Response struct {
	Description string              `json:"description"`
	Schema      *openapi3.SchemaRef `json:"schema,omitempty"`
}

// Endpoint is the flattened projection of one (path, method) pair.
type Endpoint struct {
	ID          string              `json:"id"` // method+path
	Path        string              `json:"path"`
	Method      HttpMethod          `json:"method"`
	Tags        []string            `json:"tags"`
	Summary     string              `json:"summary"`
	Description string              `json:"description"`
	OperationID string              `json:"operationId"`
	Consumes    []string            `json:"consumes,omitempty"`
	Produces    []string            `json:"produces,omitempty"`
	Parameters  []Parameter         `json:"parameters"`
	Responses   map[string]Response `json:"responses"`
	Deprecated  bool                `json:"deprecated,omitempty"`
}

// ParametersIn returns the endpoint's parameters declared in the given location.
func (e Endpoint) ParametersIn(in string) []Parameter {
	var out []Parameter
	for _, p := range e.Parameters {
		if p.In == in {
			out = append(out, p)
		}
	}
	return out
}
