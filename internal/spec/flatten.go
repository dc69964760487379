package spec

// Flatten walks the document's path/method matrix into one Endpoint per
// (path, method) pair, in path order and then method order. Absent optional
// fields become empty values; nothing is validated.
func Flatten(doc *Document) []Endpoint {
	if doc == nil {
		return []Endpoint{}
	}
	n := 0
	for _, item := range doc.Paths {
		n += len(item.Operations)
	}
	endpoints := make([]Endpoint, 0, n)
	for _, item := range doc.Paths {
		for _, mo := range item.Operations {
			endpoints = append(endpoints, newEndpoint(item.Path, mo.Method, mo.Operation))
		}
	}
	return endpoints
}

func newEndpoint(path string, method HttpMethod, op *Operation) Endpoint {
	if op == nil {
		op = &Operation{}
	}
	ep := Endpoint{
		ID:          string(method) + " " + path,
		Path:        path,
		Method:      method,
		Tags:        op.Tags,
		Summary:     op.Summary,
		Description: op.Description,
		OperationID: op.OperationID,
		Consumes:    op.Consumes,
		Produces:    op.Produces,
		Parameters:  op.Parameters,
		Responses:   op.Responses,
		Deprecated:  op.Deprecated,
	}
	if ep.Tags == nil {
		ep.Tags = []string{}
	}
	if ep.Parameters == nil {
		ep.Parameters = []Parameter{}
	}
	if ep.Responses == nil {
		ep.Responses = map[string]Response{}
	}
	return ep
}
