package spec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
)

// Severity ranks a diagnostic Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is one finding reported by Diagnose.
type Issue struct {
	Severity    Severity  `json:"severity"`
	Code        ErrorCode `json:"code"`
	Message     string    `json:"message"`
	JSONPointer string    `json:"pointer,omitempty"`
}

// Diagnose checks a raw Swagger 2.0 document strictly: it converts the
// document to OpenAPI v3 with kin-openapi and validates the result. The
// explorer itself never depends on this; it is a linting aid.
//
// Compatibility rewrites are reported as info issues. A document that cannot
// be converted at all returns a *SpecError.
func Diagnose(ctx context.Context, raw []byte) ([]Issue, error) {
	root, err := parseNode(raw)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if len(root.Content) > 0 {
		doc, _ = nodeValue(root.Content[0]).(map[string]any)
	}
	if doc == nil {
		return nil, &SpecError{Code: ParseError, Message: "spec: document root must be a mapping"}
	}

	var issues []Issue
	for _, note := range preprocessV2ForCompatibility(doc) {
		issues = append(issues, Issue{Severity: SeverityInfo, Code: ConversionError, Message: note})
	}

	v3doc, err := convertV2ToV3(doc)
	if err != nil {
		return issues, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Cause: err}
	}
	if err := v3doc.Validate(ctx); err != nil {
		for _, e := range splitErrors(err) {
			issue := mapValidateOrParseErr(e)
			if canProceedDespiteValidation(e) {
				issue.Severity = SeverityWarning
			}
			issues = append(issues, issue)
		}
	}
	return issues, nil
}

func convertV2ToV3(doc map[string]any) (*openapi3.T, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var v2 openapi2.T
	if err := json.Unmarshal(raw, &v2); err != nil {
		return nil, err
	}
	return openapi2conv.ToV3(&v2)
}

func splitErrors(err error) []error {
	var me openapi3.MultiError
	if errors.As(err, &me) && len(me) > 0 {
		return me
	}
	return []error{err}
}

func mapValidateOrParseErr(err error) Issue {
	code := ValidationError
	// Heuristics: some loader errors are parse errors.
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "parse") || strings.Contains(lower, "invalid character") {
		code = ParseError
	}
	return Issue{Severity: SeverityError, Code: code, Message: err.Error(), JSONPointer: extractJSONPointer(err)}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'\"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
		if se.SchemaField != "" {
			return se.SchemaField
		}
	}
	// Fallback: parse from error message if a pointer literal appears.
	if m := jsonPtrRe.FindString(err.Error()); m != "" {
		return m
	}
	return ""
}

// canProceedDespiteValidation reports validation errors that do not prevent
// exploring the document (e.g. unresolved $ref entries).
func canProceedDespiteValidation(err error) bool {
	if err == nil {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unresolved ref") || strings.Contains(s, "found unresolved ref")
}
