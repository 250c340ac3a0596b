// Package fetch tracks the data, loading flag and error of a repeatable
// fetch. Consumers read consistent snapshots while fetches run.
package fetch

import (
	"context"
	"log/slog"
	"sync"
)

// Func loads data for params.
type Func[T, P any] func(ctx context.Context, params P) (T, error)

// State is a snapshot of a Hook. Data keeps the last successful result;
// HasData is false until the first success.
type State[T any] struct {
	Data    T
	HasData bool
	Loading bool
	Error   string
}

type options struct {
	skip   bool
	logger *slog.Logger
}

// Option configures a Hook.
type Option func(*options)

// WithSkip suppresses the initial fetch in Start.
func WithSkip() Option {
	return func(o *options) { o.skip = true }
}

// WithLogger sets the logger used for fetch errors.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Hook wraps a Func with observable state. It is safe for concurrent use.
// When fetches overlap, only the most recently started one updates state.
type Hook[T, P any] struct {
	fn   Func[T, P]
	skip bool
	log  *slog.Logger

	mu     sync.Mutex
	params P
	state  State[T]
	gen    uint64
}

// New creates a Hook. Loading starts true unless WithSkip is given, since a
// fetch is expected right away.
func New[T, P any](fn Func[T, P], params P, opts ...Option) *Hook[T, P] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Hook[T, P]{
		fn:     fn,
		skip:   o.skip,
		log:    o.logger,
		params: params,
		state:  State[T]{Loading: !o.skip},
	}
}

// Start performs the initial fetch with the construction params unless the
// hook was created with WithSkip.
func (h *Hook[T, P]) Start(ctx context.Context) error {
	if h.skip {
		return nil
	}
	h.mu.Lock()
	params := h.params
	h.mu.Unlock()
	return h.fetch(ctx, params)
}

// Refetch fetches again. With no argument the last params are reused;
// otherwise the first argument replaces them.
func (h *Hook[T, P]) Refetch(ctx context.Context, params ...P) error {
	h.mu.Lock()
	if len(params) > 0 {
		h.params = params[0]
	}
	p := h.params
	h.mu.Unlock()
	return h.fetch(ctx, p)
}

// State returns a snapshot of the current state.
func (h *Hook[T, P]) State() State[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Hook[T, P]) fetch(ctx context.Context, params P) error {
	h.mu.Lock()
	h.gen++
	gen := h.gen
	h.state.Loading = true
	h.state.Error = ""
	h.mu.Unlock()

	data, err := h.fn(ctx, params)

	h.mu.Lock()
	defer h.mu.Unlock()
	if gen != h.gen {
		return err
	}
	h.state.Loading = false
	if err != nil {
		h.state.Error = err.Error()
		h.log.Warn("fetch failed", "error", err)
		return err
	}
	h.state.Data = data
	h.state.HasData = true
	return nil
}
