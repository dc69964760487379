package request

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/mark3labs/swagger-explorer/internal/form"
	"github.com/mark3labs/swagger-explorer/internal/spec"
)

// Result is the uniform outcome of an executed request. Status 0 means the
// exchange failed before a response arrived; Error is set only then.
type Result struct {
	OK       bool          `json:"ok"`
	Status   int           `json:"status"`
	Data     any           `json:"data"`
	Error    string        `json:"error,omitempty"`
	Header   http.Header   `json:"-"`
	Duration time.Duration `json:"-"`
}

// TransportFailed reports whether no HTTP response was obtained.
func (r Result) TransportFailed() bool { return r.Status == 0 }

// Executor issues requests built by Build. It never retries and applies no
// timeout of its own; use WithHTTPClient to bound requests.
type Executor struct {
	client *http.Client
	logger log.Interface
}

type Option func(*Executor)

func WithHTTPClient(c *http.Client) Option { return func(e *Executor) { e.client = c } }
func WithLogger(l log.Interface) Option    { return func(e *Executor) { e.logger = l } }

func NewExecutor(opts ...Option) *Executor {
	e := &Executor{client: &http.Client{}, logger: log.Log}
	for _, opt := range opts {
		opt(e)
	}
	if e.client == nil {
		e.client = &http.Client{}
	}
	if e.logger == nil {
		e.logger = log.Log
	}
	return e
}

// Execute builds and sends the request for ep. HTTP error statuses are
// returned as data with OK=false; only transport failures set Error.
func (e *Executor) Execute(ctx context.Context, baseURL string, ep spec.Endpoint, values form.Values) Result {
	req, err := Build(baseURL, ep, values)
	if err != nil {
		return failure(err)
	}
	return e.Do(ctx, req)
}

// Do sends an already built request.
func (e *Executor) Do(ctx context.Context, r *Request) Result {
	logger := e.logger.WithFields(log.Fields{"method": r.Method, "url": r.URL})
	if id, ok := requestIDFrom(ctx); ok {
		logger = logger.WithField("request_id", id)
	}

	hreq, err := r.HTTPRequest(ctx)
	if err != nil {
		logger.WithError(err).Warn("request invalid")
		return failure(err)
	}

	start := time.Now()
	resp, err := e.client.Do(hreq)
	if err != nil {
		logger.WithError(err).Warn("request failed")
		res := failure(err)
		res.Duration = time.Since(start)
		return res
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		logger.WithError(err).Warn("reading response failed")
		res := failure(err)
		res.Duration = elapsed
		return res
	}

	res := Result{
		OK:       resp.StatusCode >= 200 && resp.StatusCode < 400,
		Status:   resp.StatusCode,
		Data:     decodeBody(resp.Header.Get("Content-Type"), raw),
		Header:   resp.Header,
		Duration: elapsed,
	}
	logger.WithFields(log.Fields{"status": res.Status, "duration": elapsed, "bytes": len(raw)}).Debug("request done")
	return res
}

func failure(err error) Result {
	return Result{OK: false, Status: 0, Data: nil, Error: err.Error()}
}

// decodeBody parses application/json bodies and returns anything else, or
// JSON that fails to parse, as text. An empty body is nil.
func decodeBody(contentType string, raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), contentTypeJSON) {
		var v any
		if err := json.Unmarshal(raw, &v); err == nil {
			return v
		}
	}
	return string(raw)
}
