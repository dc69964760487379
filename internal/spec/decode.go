package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// operationKeys lists the path item keys that hold operations. Anything else
// under a path (parameters, $ref, vendor extensions) is not an endpoint.
var operationKeys = map[string]HttpMethod{
	"get":     GET,
	"put":     PUT,
	"post":    POST,
	"delete":  DELETE,
	"options": OPTIONS,
	"head":    HEAD,
	"patch":   PATCH,
}

// Decode parses a Swagger 2.0 document from JSON or YAML bytes.
//
// Mapping order is preserved for paths and methods so that flattening is
// deterministic. Missing or wrong-typed fields fall back to zero values; only
// an unparseable document, a non-mapping root, or an explicit non-2.x version
// is rejected.
func Decode(data []byte) (*Document, error) {
	root, err := parseNode(data)
	if err != nil {
		return nil, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, &SpecError{Code: ParseError, Message: "spec: document is empty"}
	}
	m := deref(root.Content[0])
	if m.Kind != yaml.MappingNode {
		return nil, &SpecError{Code: ParseError, Message: "spec: document root must be a mapping"}
	}

	if v := nodeString(lookup(m, "openapi")); v != "" {
		return nil, &SpecError{
			Code:        ParseError,
			Message:     fmt.Sprintf("spec: OpenAPI %s documents are not supported (expected 'swagger: 2.0')", v),
			JSONPointer: "#/openapi",
		}
	}
	version := nodeString(lookup(m, "swagger"))
	if version != "" && !strings.HasPrefix(strings.TrimSpace(version), "2.") {
		return nil, &SpecError{
			Code:        ParseError,
			Message:     fmt.Sprintf("spec: unsupported swagger version %q", version),
			JSONPointer: "#/swagger",
		}
	}

	d := &decoder{
		sharedParams:    lookup(m, "parameters"),
		sharedResponses: lookup(m, "responses"),
	}
	doc := &Document{
		Swagger:     version,
		Info:        decodeInfo(lookup(m, "info")),
		Host:        nodeString(lookup(m, "host")),
		BasePath:    nodeString(lookup(m, "basePath")),
		Schemes:     nodeStrings(lookup(m, "schemes")),
		Consumes:    nodeStrings(lookup(m, "consumes")),
		Produces:    nodeStrings(lookup(m, "produces")),
		Tags:        decodeTags(lookup(m, "tags")),
		Definitions: map[string]*openapi3.SchemaRef{},
	}

	forEachPair(lookup(m, "definitions"), func(name string, n *yaml.Node) {
		if ref := decodeSchema(n); ref != nil {
			doc.Definitions[name] = ref
		} else {
			log.WithField("definition", name).Debug("spec: skipping undecodable definition")
		}
	})

	forEachPair(lookup(m, "paths"), func(path string, n *yaml.Node) {
		doc.Paths = append(doc.Paths, d.decodePathItem(path, n))
	})

	return doc, nil
}

type decoder struct {
	sharedParams    *yaml.Node
	sharedResponses *yaml.Node
}

func (d *decoder) decodePathItem(path string, n *yaml.Node) PathItem {
	item := PathItem{Path: path}
	var pathParams []Parameter
	if pn := lookup(n, "parameters"); pn != nil {
		pathParams = d.decodeParameters(pn)
	}
	forEachPair(n, func(key string, on *yaml.Node) {
		method, ok := operationKeys[strings.ToLower(key)]
		if !ok {
			if key != "parameters" {
				log.WithFields(log.Fields{"path": path, "key": key}).Debug("spec: ignoring non-operation key")
			}
			return
		}
		op := d.decodeOperation(on)
		op.Parameters = mergeParameters(pathParams, op.Parameters)
		item.Operations = append(item.Operations, MethodOperation{Method: method, Operation: op})
	})
	return item
}

func (d *decoder) decodeOperation(n *yaml.Node) *Operation {
	op := &Operation{
		Tags:        nodeStrings(lookup(n, "tags")),
		Summary:     nodeString(lookup(n, "summary")),
		Description: nodeString(lookup(n, "description")),
		OperationID: nodeString(lookup(n, "operationId")),
		Consumes:    nodeStrings(lookup(n, "consumes")),
		Produces:    nodeStrings(lookup(n, "produces")),
		Deprecated:  nodeBool(lookup(n, "deprecated")),
	}
	if pn := lookup(n, "parameters"); pn != nil {
		op.Parameters = d.decodeParameters(pn)
	}
	if rn := lookup(n, "responses"); rn != nil {
		op.Responses = make(map[string]Response)
		forEachPair(rn, func(code string, r *yaml.Node) {
			r = d.resolveLocal(r, "#/responses/", d.sharedResponses)
			op.Responses[code] = Response{
				Description: nodeString(lookup(r, "description")),
				Schema:      decodeSchema(lookup(r, "schema")),
			}
		})
	}
	return op
}

func (d *decoder) decodeParameters(n *yaml.Node) []Parameter {
	n = deref(n)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	params := make([]Parameter, 0, len(n.Content))
	for _, pn := range n.Content {
		pn = d.resolveLocal(pn, "#/parameters/", d.sharedParams)
		if pn == nil || pn.Kind != yaml.MappingNode {
			continue
		}
		p := Parameter{
			Name:             nodeString(lookup(pn, "name")),
			In:               nodeString(lookup(pn, "in")),
			Description:      nodeString(lookup(pn, "description")),
			Required:         nodeBool(lookup(pn, "required")),
			Type:             nodeString(lookup(pn, "type")),
			Format:           nodeString(lookup(pn, "format")),
			CollectionFormat: nodeString(lookup(pn, "collectionFormat")),
			Schema:           decodeSchema(lookup(pn, "schema")),
			Items:            decodeSchema(lookup(pn, "items")),
			Enum:             nodeStrings(lookup(pn, "enum")),
		}
		if dn := lookup(pn, "default"); dn != nil {
			p.Default = nodeValue(dn)
		}
		params = append(params, p)
	}
	return params
}

// resolveLocal follows a single "$ref" into one of the document's shared
// parameter/response maps. Unresolvable references yield the node itself.
func (d *decoder) resolveLocal(n *yaml.Node, prefix string, shared *yaml.Node) *yaml.Node {
	n = deref(n)
	ref := nodeString(lookup(n, "$ref"))
	if ref == "" || !strings.HasPrefix(ref, prefix) {
		return n
	}
	if target := lookup(shared, strings.TrimPrefix(ref, prefix)); target != nil {
		return deref(target)
	}
	log.WithField("ref", ref).Debug("spec: unresolved local reference")
	return n
}

// mergeParameters overlays operation-level parameters onto path-level ones.
// An operation parameter with the same (in, name) replaces the path-level one
// in place; new ones are appended in declaration order.
func mergeParameters(base, own []Parameter) []Parameter {
	if len(base) == 0 {
		return own
	}
	out := append([]Parameter(nil), base...)
	index := make(map[string]int, len(out))
	for i, p := range out {
		index[paramKey(p.In, p.Name)] = i
	}
	for _, p := range own {
		if i, ok := index[paramKey(p.In, p.Name)]; ok {
			out[i] = p
			continue
		}
		index[paramKey(p.In, p.Name)] = len(out)
		out = append(out, p)
	}
	return out
}

func paramKey(in, name string) string { return in + ":" + name }

func decodeInfo(n *yaml.Node) Info {
	info := Info{
		Title:          nodeString(lookup(n, "title")),
		Description:    nodeString(lookup(n, "description")),
		Version:        nodeString(lookup(n, "version")),
		TermsOfService: nodeString(lookup(n, "termsOfService")),
	}
	if c := lookup(n, "contact"); c != nil {
		info.Contact = &Contact{
			Name:  nodeString(lookup(c, "name")),
			URL:   nodeString(lookup(c, "url")),
			Email: nodeString(lookup(c, "email")),
		}
	}
	if l := lookup(n, "license"); l != nil {
		info.License = &License{
			Name: nodeString(lookup(l, "name")),
			URL:  nodeString(lookup(l, "url")),
		}
	}
	return info
}

func decodeTags(n *yaml.Node) []Tag {
	n = deref(n)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	tags := make([]Tag, 0, len(n.Content))
	for _, tn := range n.Content {
		name := nodeString(lookup(tn, "name"))
		if name == "" {
			continue
		}
		tags = append(tags, Tag{Name: name, Description: nodeString(lookup(tn, "description"))})
	}
	return tags
}

// decodeSchema converts a YAML schema node into a kin-openapi SchemaRef by
// round-tripping it through JSON. A bare "$ref" node keeps Ref and a nil Value.
// Swagger 2.0 constructs the v3 model cannot hold are rewritten or dropped, so
// a mapping node always yields a schema.
func decodeSchema(n *yaml.Node) *openapi3.SchemaRef {
	n = deref(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	m, ok := nodeValue(n).(map[string]any)
	if !ok {
		return &openapi3.SchemaRef{Value: &openapi3.Schema{}}
	}
	if ref, err := unmarshalSchema(m); err == nil {
		return ref
	}
	ref, err := unmarshalSchema(sanitizeSchema(m))
	if err != nil {
		log.WithError(err).Debug("spec: schema decode failed")
		return &openapi3.SchemaRef{Value: &openapi3.Schema{}}
	}
	return ref
}

func unmarshalSchema(m map[string]any) (*openapi3.SchemaRef, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var ref openapi3.SchemaRef
	if err := json.Unmarshal(raw, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// parseNode builds the document tree. JSON input is tokenized with
// encoding/json so escapes YAML lacks (\/, surrogate pairs) decode correctly;
// everything else goes through the YAML parser.
func parseNode(data []byte) (*yaml.Node, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid(trimmed) {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		n, err := jsonNode(dec)
		if err != nil {
			return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse spec: %v", err), Cause: err}
		}
		return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{n}}, nil
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse spec: %v", err), Cause: err}
	}
	return &root, nil
}

func jsonNode(dec *json.Decoder) (*yaml.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		var n *yaml.Node
		switch t {
		case '{':
			n = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := kt.(string)
				v, err := jsonNode(dec)
				if err != nil {
					return nil, err
				}
				n.Content = append(n.Content, scalar("!!str", key), v)
			}
		case '[':
			n = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			for dec.More() {
				v, err := jsonNode(dec)
				if err != nil {
					return nil, err
				}
				n.Content = append(n.Content, v)
			}
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return n, nil
	case string:
		return scalar("!!str", t), nil
	case json.Number:
		if _, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			return scalar("!!int", t.String()), nil
		}
		return scalar("!!float", t.String()), nil
	case bool:
		return scalar("!!bool", strconv.FormatBool(t)), nil
	case nil:
		return scalar("!!null", "null"), nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func scalar(tag, value string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	if tag == "!!str" {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	m = deref(m)
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return deref(m.Content[i+1])
		}
	}
	return nil
}

func forEachPair(m *yaml.Node, fn func(key string, value *yaml.Node)) {
	m = deref(m)
	if m == nil || m.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		fn(m.Content[i].Value, deref(m.Content[i+1]))
	}
}

func nodeString(n *yaml.Node) string {
	n = deref(n)
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		return ""
	}
	return n.Value
}

func nodeBool(n *yaml.Node) bool {
	n = deref(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		return false
	}
	var b bool
	if err := n.Decode(&b); err != nil {
		return false
	}
	return b
}

func nodeStrings(n *yaml.Node) []string {
	n = deref(n)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		if item = deref(item); item.Kind == yaml.ScalarNode {
			out = append(out, item.Value)
		}
	}
	return out
}

// nodeValue decodes an arbitrary node into plain Go values with string map
// keys, suitable for encoding/json.
func nodeValue(n *yaml.Node) any {
	var v any
	if err := n.Decode(&v); err != nil {
		return nil
	}
	return normalizeValue(v)
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeValue(item)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeValue(item)
		}
		return out
	case []any:
		for i, item := range val {
			val[i] = normalizeValue(item)
		}
		return val
	default:
		return v
	}
}
