// Package request turns an endpoint and its form values into an HTTP call and
// normalizes the outcome.
package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/mark3labs/swagger-explorer/internal/form"
	"github.com/mark3labs/swagger-explorer/internal/spec"
)

const contentTypeJSON = "application/json"

// Request is a fully resolved outgoing call.
type Request struct {
	Method string      `json:"method"`
	URL    string      `json:"url"`
	Header http.Header `json:"headers,omitempty"`
	Body   []byte      `json:"-"`
}

type partitioned struct {
	path     map[string]any
	query    []field
	header   []field
	body     any
	hasBody  bool
	formData []field
}

type field struct {
	name  string
	value any
}

// Build resolves ep against baseURL using values.
//
// Parameters without a value are left out. Path placeholders are replaced with
// escaped values; array query values repeat the key. A JSON body sets
// Content-Type to application/json, overriding any header parameter, and
// suppresses formData; otherwise formData values become a multipart body.
func Build(baseURL string, ep spec.Endpoint, values form.Values) (*Request, error) {
	parts := partition(ep, values)

	path := ep.Path
	for name, v := range parts.path {
		path = strings.ReplaceAll(path, "{"+name+"}", escapeComponent(stringify(v)))
	}
	u := strings.TrimRight(baseURL, "/") + path
	if qs := encodeQuery(parts.query); qs != "" {
		u += "?" + qs
	}

	req := &Request{
		Method: strings.ToUpper(string(ep.Method)),
		URL:    u,
		Header: http.Header{},
	}
	for _, h := range parts.header {
		req.Header.Set(h.name, joinValue(h.value, ","))
	}

	switch {
	case parts.hasBody:
		body, err := json.Marshal(parts.body)
		if err != nil {
			return nil, fmt.Errorf("encode body for %s: %w", ep.ID, err)
		}
		req.Body = body
		req.Header.Set("Content-Type", contentTypeJSON)
	case len(parts.formData) > 0:
		body, contentType, err := encodeMultipart(parts.formData)
		if err != nil {
			return nil, fmt.Errorf("encode form data for %s: %w", ep.ID, err)
		}
		req.Body = body
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func partition(ep spec.Endpoint, values form.Values) partitioned {
	parts := partitioned{path: map[string]any{}}
	for _, p := range ep.Parameters {
		v, ok := values[p.Name]
		if !ok || v == nil {
			continue
		}
		switch p.In {
		case spec.InPath:
			parts.path[p.Name] = v
		case spec.InQuery:
			parts.query = append(parts.query, field{p.Name, v})
		case spec.InHeader:
			parts.header = append(parts.header, field{p.Name, v})
		case spec.InBody:
			if s, isString := v.(string); isString && s == "" {
				continue
			}
			parts.body, parts.hasBody = v, true
		case spec.InFormData:
			parts.formData = append(parts.formData, field{p.Name, v})
		}
	}
	return parts
}

// escapeComponent percent-encodes every byte outside the URI component
// unreserved set: A-Z a-z 0-9 and - _ . ! ~ * ' ( ).
func escapeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isComponentSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isComponentSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

// encodeQuery keeps parameter order, which url.Values.Encode does not.
func encodeQuery(fields []field) string {
	var b strings.Builder
	add := func(k, v string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escapeComponent(k))
		b.WriteByte('=')
		b.WriteString(escapeComponent(v))
	}
	for _, f := range fields {
		if items, ok := f.value.([]any); ok {
			for _, item := range items {
				add(f.name, stringify(item))
			}
			continue
		}
		if items, ok := f.value.([]string); ok {
			for _, item := range items {
				add(f.name, item)
			}
			continue
		}
		add(f.name, stringify(f.value))
	}
	return b.String()
}

func encodeMultipart(fields []field) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		items, ok := f.value.([]any)
		if !ok {
			items = []any{f.value}
		}
		for _, item := range items {
			if err := w.WriteField(f.name, stringify(item)); err != nil {
				return nil, "", err
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool, int, int32, int64, uint, uint64, float32, float64:
		return fmt.Sprint(val)
	case json.Number:
		return val.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func joinValue(v any, sep string) string {
	if items, ok := v.([]any); ok {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, sep)
	}
	return stringify(v)
}

// HTTPRequest materializes r for net/http.
func (r *Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

// Curl renders r as a shell-quoted curl command line.
func (r *Request) Curl() string {
	args := []string{"curl", "-X", r.Method}
	keys := make([]string, 0, len(r.Header))
	for k := range r.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range r.Header[k] {
			args = append(args, "-H", k+": "+v)
		}
	}
	if len(r.Body) > 0 {
		args = append(args, "--data-binary", string(r.Body))
	}
	args = append(args, r.URL)
	return shellquote.Join(args...)
}
