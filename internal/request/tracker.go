package request

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mark3labs/swagger-explorer/internal/form"
	"github.com/mark3labs/swagger-explorer/internal/spec"
)

// Ticket identifies one submission.
type Ticket struct {
	Seq    uint64
	ID     string
	Issued time.Time
}

// Tracker hands out tickets and remembers the latest one, so a slow response
// to an earlier submission can be recognized and dropped.
type Tracker struct {
	mu      sync.Mutex
	seq     uint64
	current Ticket
}

func (t *Tracker) Begin() Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.current = Ticket{Seq: t.seq, ID: uuid.Must(uuid.NewRandom()).String(), Issued: time.Now()}
	return t.current
}

// IsCurrent reports whether tk is the most recently issued ticket.
func (t *Tracker) IsCurrent(tk Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tk.Seq != 0 && tk.Seq == t.current.Seq
}

// Session executes requests for one view against one base URL.
type Session struct {
	BaseURL  string
	executor *Executor
	tracker  Tracker
}

func NewSession(baseURL string, e *Executor) *Session {
	if e == nil {
		e = NewExecutor()
	}
	return &Session{BaseURL: baseURL, executor: e}
}

// Submit executes ep and reports whether the result still applies: it is
// false when another submission started while this one was in flight.
func (s *Session) Submit(ctx context.Context, ep spec.Endpoint, values form.Values) (Result, bool) {
	tk := s.tracker.Begin()
	res := s.executor.Execute(withRequestID(ctx, tk.ID), s.BaseURL, ep, values)
	return res, s.tracker.IsCurrent(tk)
}

type requestIDKey struct{}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}
