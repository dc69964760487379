package e2e

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	cli "github.com/mark3labs/swagger-explorer/internal/cli"
)

// specTemplate is a small YAML document; HOST is replaced with the test
// server's address.
const specTemplate = "" +
	"swagger: '2.0'\n" +
	"info:\n" +
	"  title: E2E Sample\n" +
	"  version: '1.0.0'\n" +
	"host: HOST\n" +
	"basePath: /api\n" +
	"schemes: [http]\n" +
	"paths:\n" +
	"  /orders:\n" +
	"    get:\n" +
	"      tags: [orders]\n" +
	"      operationId: listOrders\n" +
	"      parameters:\n" +
	"        - {name: status, in: query, type: string}\n" +
	"      responses:\n" +
	"        '200': {description: ok}\n" +
	"    post:\n" +
	"      tags: [orders]\n" +
	"      operationId: createOrder\n" +
	"      parameters:\n" +
	"        - {name: X-Request-Source, in: header, type: string}\n" +
	"        - name: order\n" +
	"          in: body\n" +
	"          schema: {$ref: '#/definitions/Order'}\n" +
	"      responses:\n" +
	"        '201': {description: created}\n" +
	"  /orders/{orderId}:\n" +
	"    parameters:\n" +
	"      - {name: orderId, in: path, required: true, type: string}\n" +
	"    get:\n" +
	"      tags: [orders]\n" +
	"      operationId: getOrder\n" +
	"      responses:\n" +
	"        '200': {description: ok}\n" +
	"definitions:\n" +
	"  Order:\n" +
	"    type: object\n" +
	"    properties:\n" +
	"      id: {type: string, example: o-1}\n" +
	"      items:\n" +
	"        type: array\n" +
	"        items: {$ref: '#/definitions/Item'}\n" +
	"  Item:\n" +
	"    type: object\n" +
	"    properties:\n" +
	"      sku: {type: string}\n" +
	"      qty: {type: integer}\n"

type recorded struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

// apiServer serves both the document (at /swagger.yaml) and the API it
// describes.
func apiServer(t *testing.T) (*httptest.Server, func() []recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/swagger.yaml" {
			_, _ = io.WriteString(w, strings.Replace(specTemplate, "HOST", r.Host, 1))
			return
		}
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recorded{r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Clone(), string(body)})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write(body)
		case r.URL.Path == "/api/orders":
			_, _ = io.WriteString(w, `{"results": [{"id": "o-1", "total": 3}, {"id": "o-2", "total": 5}], "count": 2}`)
		default:
			_, _ = io.WriteString(w, `{"id": "`+strings.TrimPrefix(r.URL.Path, "/api/orders/")+`"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), reqs...)
	}
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := cli.NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("cli execute %v: %v", args, err)
	}
	return out.String()
}

func digest(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

func TestE2E_RemoteDocument_BrowseIsDeterministic(t *testing.T) {
	t.Parallel()
	srv, _ := apiServer(t)
	specURL := srv.URL + "/swagger.yaml"

	for _, cmd := range [][]string{
		{"endpoints"},
		{"entities"},
		{"tags", "--categories"},
		{"form", "createOrder", "--example"},
		{"example", "Order"},
	} {
		args := append([]string{"--spec", specURL, "-o", "json"}, cmd...)
		first := runCLI(t, args...)
		second := runCLI(t, args...)
		if digest(first) != digest(second) {
			t.Fatalf("%v output differs between runs:\n%s\n---\n%s", cmd, first, second)
		}
		if !json.Valid([]byte(first)) {
			t.Fatalf("%v output is not JSON: %s", cmd, first)
		}
	}

	var example map[string]any
	if err := json.Unmarshal([]byte(runCLI(t, "--spec", specURL, "example", "Order")), &example); err != nil {
		t.Fatalf("decode example: %v", err)
	}
	items, ok := example["items"].([]any)
	if example["id"] != "o-1" || !ok || len(items) != 1 {
		t.Fatalf("unexpected example: %v", example)
	}
}

func TestE2E_CallFlow(t *testing.T) {
	t.Parallel()
	srv, requests := apiServer(t)
	specURL := srv.URL + "/swagger.yaml"

	out := runCLI(t, "--spec", specURL, "call", "getOrder", "--param", "orderId=a b/c")
	if !strings.Contains(out, "200") {
		t.Fatalf("unexpected call output: %s", out)
	}

	out = runCLI(t, "--spec", specURL, "call", "listOrders", "--param", "status=open", "--table")
	for _, want := range []string{"ID", "TOTAL", "o-1", "o-2"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in table output:\n%s", want, out)
		}
	}

	out = runCLI(t, "--spec", specURL, "-o", "json", "call", "POST /orders",
		"--param", "X-Request-Source=e2e", "--body", `{"id": "o-9", "items": []}`)
	var res struct {
		OK     bool           `json:"ok"`
		Status int            `json:"status"`
		Data   map[string]any `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode call result: %v\n%s", err, out)
	}
	if !res.OK || res.Status != http.StatusCreated || res.Data["id"] != "o-9" {
		t.Fatalf("unexpected call result: %+v", res)
	}

	got := requests()
	if len(got) != 3 {
		t.Fatalf("expected 3 API requests, got %d", len(got))
	}
	if got[0].Path != "/api/orders/a b/c" || got[0].Method != http.MethodGet {
		t.Errorf("path parameter not escaped as expected: %+v", got[0])
	}
	if got[1].Query != "status=open" {
		t.Errorf("query = %q, want status=open", got[1].Query)
	}
	if got[2].Header.Get("X-Request-Source") != "e2e" || got[2].Header.Get("Content-Type") != "application/json" {
		t.Errorf("unexpected headers: %v", got[2].Header)
	}
	if got[2].Body != `{"id":"o-9","items":[]}` {
		t.Errorf("body = %s", got[2].Body)
	}
}

// TestE2E_Binary builds the command and runs it against a served document
// when SWAGGER_EXPLORER_E2E_ONLINE=1 and a Go toolchain is available.
func TestE2E_Binary(t *testing.T) {
	if os.Getenv("SWAGGER_EXPLORER_E2E_ONLINE") != "1" || !haveCmd("go") {
		t.Skip("set SWAGGER_EXPLORER_E2E_ONLINE=1 to build and run the binary")
	}
	srv, _ := apiServer(t)
	bin := filepath.Join(t.TempDir(), "swagger-explorer")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	build := exec.CommandContext(ctx, "go", "build", "-o", bin, "github.com/mark3labs/swagger-explorer/cmd/swagger-explorer")
	if out, err := build.CombinedOutput(); err != nil {
		t.Skipf("go build skipped (likely offline or missing deps): %v\n%s", err, string(out))
	}

	run := exec.CommandContext(ctx, bin, "--spec", srv.URL+"/swagger.yaml", "--no-color", "info")
	out, err := run.CombinedOutput()
	if err != nil {
		t.Fatalf("run binary: %v\n%s", err, out)
	}
	if !strings.Contains(string(out), "E2E Sample") {
		t.Fatalf("unexpected info output: %s", out)
	}

	usage := exec.CommandContext(ctx, bin, "info")
	if err := usage.Run(); err == nil {
		t.Fatalf("expected a usage failure without --spec")
	} else if ee, ok := err.(*exec.ExitError); !ok || ee.ExitCode() != 2 {
		t.Fatalf("expected exit code 2, got %v", err)
	}
}

func haveCmd(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
