package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const petstoreSpec = `{
	"swagger": "2.0",
	"info": {"title": "Pet Store", "version": "1.0.0", "description": "A sample API."},
	"host": "api.test",
	"basePath": "/v1",
	"schemes": ["https"],
	"tags": [{"name": "pets", "description": "Pet operations"}],
	"paths": {
		"/pets": {
			"get": {
				"tags": ["pets"],
				"operationId": "listPets",
				"summary": "List pets",
				"parameters": [
					{"name": "limit", "in": "query", "type": "integer"},
					{"name": "tags", "in": "query", "type": "array", "items": {"type": "string"}}
				],
				"responses": {"200": {"description": "ok"}}
			},
			"post": {
				"tags": ["pets"],
				"operationId": "createPet",
				"summary": "Create a pet",
				"parameters": [
					{"name": "pet", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Pet"}}
				],
				"responses": {"201": {"description": "created"}}
			}
		},
		"/pets/{petId}": {
			"get": {
				"tags": ["pets"],
				"operationId": "getPet",
				"summary": "Get a pet",
				"parameters": [{"name": "petId", "in": "path", "required": true, "type": "integer"}],
				"responses": {"200": {"description": "ok"}}
			},
			"delete": {
				"tags": ["pets"],
				"operationId": "deletePet",
				"deprecated": true,
				"parameters": [{"name": "petId", "in": "path", "required": true, "type": "integer"}],
				"responses": {"204": {"description": "gone"}}
			}
		},
		"/health": {
			"get": {
				"operationId": "health",
				"summary": "Health check",
				"responses": {"200": {"description": "ok"}}
			}
		}
	},
	"definitions": {
		"Pet": {
			"type": "object",
			"required": ["name"],
			"properties": {
				"id": {"type": "integer", "format": "int64"},
				"name": {"type": "string", "example": "Rex"},
				"tag": {"type": "string"}
			}
		}
	}
}`

// writeSpec stores content as a document file and returns its path.
func writeSpec(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "spec.json")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	return p
}

// petstoreAt rewrites the fixture to target baseURL's scheme and host.
func petstoreAt(scheme, host string) string {
	s := strings.Replace(petstoreSpec, `"host": "api.test"`, `"host": "`+host+`"`, 1)
	return strings.Replace(s, `"schemes": ["https"]`, `"schemes": ["`+scheme+`"]`, 1)
}

// runCLI executes the root command and returns what it wrote to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}
