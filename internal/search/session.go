package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lepinkainen/bookfinder/internal/book"
	"github.com/lepinkainen/bookfinder/internal/debounce"
)

// DefaultDebounce is the quiet period before typed input triggers a search.
const DefaultDebounce = 500 * time.Millisecond

// Snapshot is a copy of the session state for rendering.
type Snapshot struct {
	Input     string
	Debounced string
	Results   []book.Record
	Loading   bool
	Message   string
	State     State
	// Version increases with every change; consumers drop older snapshots.
	Version uint64
}

// Session is the state behind one search screen, from mount to teardown.
// Typed input is debounced; Submit skips the wait. After Close nothing is
// scheduled and late fetch results are discarded.
type Session struct {
	orch      *Orchestrator
	debouncer *debounce.Debouncer[string]
	ctx       context.Context
	onChange  func(Snapshot)

	mu       sync.Mutex
	state    Snapshot
	inFlight int
	closed   bool

	// cycles counts running search cycles. Add happens under cyclesMu and
	// only before stopped is set, so Wait after Close sees a settled count.
	cyclesMu sync.Mutex
	stopped  bool
	cycles   sync.WaitGroup
}

// SessionOption configures a Session.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	debounce time.Duration
	ctx      context.Context
	onChange func(Snapshot)
}

// WithDebounce sets the debounce quiet period.
func WithDebounce(d time.Duration) SessionOption {
	return func(c *sessionConfig) { c.debounce = d }
}

// WithContext sets the context used for debounced fetches.
func WithContext(ctx context.Context) SessionOption {
	return func(c *sessionConfig) { c.ctx = ctx }
}

// WithOnChange registers a callback receiving every new snapshot. It is
// called without the session lock held and may run on any goroutine.
func WithOnChange(fn func(Snapshot)) SessionOption {
	return func(c *sessionConfig) { c.onChange = fn }
}

// NewSession creates a session driven by orch.
func NewSession(orch *Orchestrator, opts ...SessionOption) *Session {
	cfg := sessionConfig{
		debounce: DefaultDebounce,
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Session{
		orch:     orch,
		ctx:      cfg.ctx,
		onChange: cfg.onChange,
	}
	s.debouncer = debounce.New(cfg.debounce, s.settled)
	return s
}

// SetInput records the raw input text. Non-blank input (re)starts the
// debounce timer; blank input cancels any pending search.
func (s *Session) SetInput(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state.Input = text
	if strings.TrimSpace(text) == "" {
		s.debouncer.Cancel()
		if s.inFlight == 0 {
			s.state.State = Idle
		}
	} else {
		s.debouncer.Push(text)
		s.state.State = Debouncing
	}
	snap := s.bump()
	s.mu.Unlock()

	s.notify(snap)
}

// settled is the debouncer's emit callback. It runs under the debouncer
// lock, so it only hands the query to a new goroutine.
func (s *Session) settled(query string) {
	if !s.startCycle() {
		return
	}
	go func() {
		defer s.cycles.Done()
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.state.Debounced = query
		s.mu.Unlock()

		s.run(s.ctx, query)
	}()
}

// startCycle registers a search cycle unless the session was closed.
func (s *Session) startCycle() bool {
	s.cyclesMu.Lock()
	defer s.cyclesMu.Unlock()
	if s.stopped {
		return false
	}
	s.cycles.Add(1)
	return true
}

// Submit searches the current raw input right away, without waiting for
// the debounce timer. It is ignored for blank input or while a fetch is
// loading.
func (s *Session) Submit(ctx context.Context) Outcome {
	s.mu.Lock()
	query := s.state.Input
	if s.closed || strings.TrimSpace(query) == "" {
		s.mu.Unlock()
		return Outcome{State: Idle, Query: query}
	}
	if s.inFlight > 0 {
		s.mu.Unlock()
		slog.Debug("Submit ignored while loading", "query", query)
		return Outcome{State: Fetching, Query: query}
	}
	// The pending debounced value is this same input; searching it again
	// after the delay would only hit the cache or the limiter.
	s.debouncer.Cancel()
	s.state.Debounced = query
	s.mu.Unlock()

	if !s.startCycle() {
		return Outcome{State: Idle, Query: query}
	}
	defer s.cycles.Done()
	return s.run(ctx, query)
}

func (s *Session) run(ctx context.Context, query string) Outcome {
	out := s.orch.Resolve(query)

	if out.State == Fetching {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return out
		}
		s.inFlight++
		s.state.Loading = true
		s.state.Message = ""
		s.state.State = Fetching
		snap := s.bump()
		s.mu.Unlock()
		s.notify(snap)

		out = s.orch.Fetch(ctx, query)

		s.mu.Lock()
		s.inFlight--
		s.state.Loading = s.inFlight > 0
		s.mu.Unlock()
	}

	s.apply(out)
	return out
}

func (s *Session) apply(out Outcome) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		slog.Debug("Discarding search result after teardown", "query", out.Query, "state", out.State)
		return
	}

	switch out.State {
	case CacheHit:
		s.state.Results = out.Records
	case Success:
		s.state.Results = out.Records
		s.state.Message = out.Message
	case RateLimited, Failed:
		s.state.Message = out.Message
	case Idle:
		s.mu.Unlock()
		return
	}
	s.state.State = out.State
	snap := s.bump()
	s.mu.Unlock()

	s.notify(snap)
}

// SetMessage replaces the displayed message.
func (s *Session) SetMessage(msg string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state.Message = msg
	snap := s.bump()
	s.mu.Unlock()

	s.notify(snap)
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyState()
}

// Wait blocks until every search cycle started so far has finished. Call it
// after Close; no cycle starts once Close has returned.
func (s *Session) Wait() {
	s.cycles.Wait()
}

// Close tears the session down. The pending debounce is cancelled and
// results of fetches still in flight are dropped when they arrive.
func (s *Session) Close() {
	s.debouncer.Close()

	s.cyclesMu.Lock()
	s.stopped = true
	s.cyclesMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// bump must be called with s.mu held.
func (s *Session) bump() Snapshot {
	s.state.Version++
	return s.copyState()
}

func (s *Session) copyState() Snapshot {
	snap := s.state
	snap.Results = book.Clone(s.state.Results)
	return snap
}

func (s *Session) notify(snap Snapshot) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}
