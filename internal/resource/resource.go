// Package resource runs an asynchronous producer on behalf of a screen and
// exposes its outcome as a data/loading/error triple.
package resource

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Producer yields the value a Resource exposes.
type Producer[T any] func(ctx context.Context) (T, error)

// State is a snapshot of a Resource. Data is nil until a producer succeeds.
type State[T any] struct {
	Data    *T
	Loading bool
	Err     error
}

// PanicError carries a non-error value recovered from a panicking producer.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprint(e.Value)
}

// Normalize turns anything a producer can fail with into an error. Errors are
// returned unchanged so errors.Is and errors.As keep working.
func Normalize(v any) error {
	if v == nil {
		return nil
	}
	if err, ok := v.(error); ok {
		return err
	}
	return &PanicError{Value: v}
}

type options struct {
	name       string
	autoInvoke bool
	latestOnly bool
	ctx        context.Context
	logger     *slog.Logger
	onChange   func()
}

// Option configures a Resource.
type Option func(*options)

// WithAutoInvoke controls whether New starts one invocation. Default true.
func WithAutoInvoke(auto bool) Option {
	return func(o *options) { o.autoInvoke = auto }
}

// WithContext sets the context handed to the auto-invocation.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// WithName labels log lines emitted by the resource.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger used for dropped results.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithOnChange registers a callback run after every state change.
func WithOnChange(fn func()) Option {
	return func(o *options) { o.onChange = fn }
}

// WithLatestOnly lets only the most recently started invocation commit.
// Reset also invalidates invocations still in flight.
func WithLatestOnly() Option {
	return func(o *options) { o.latestOnly = true }
}

// Resource is safe for concurrent use. Overlapping invocations are not
// serialised: unless WithLatestOnly is set, whichever finishes last wins.
type Resource[T any] struct {
	producer Producer[T]
	opts     options

	mu     sync.Mutex
	state  State[T]
	gen    uint64
	closed bool

	pending sync.WaitGroup
}

// New builds a Resource in the zero state. With auto-invoke enabled (the
// default) one invocation is started before New returns; it runs on its own
// goroutine and Loading is already true when New returns.
func New[T any](producer Producer[T], opts ...Option) *Resource[T] {
	o := options{
		autoInvoke: true,
		ctx:        context.Background(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Resource[T]{producer: producer, opts: o}
	if o.autoInvoke {
		gen := r.begin()
		go func() { _ = r.run(o.ctx, gen) }()
	}
	return r
}

// Invoke calls the producer and blocks until it returns. On success Data is
// replaced; on failure Err is set and Data keeps its previous value. The
// normalised error is also returned.
func (r *Resource[T]) Invoke(ctx context.Context) error {
	gen := r.begin()
	return r.run(ctx, gen)
}

// Reset puts the resource back into the zero state. In-flight invocations are
// not cancelled.
func (r *Resource[T]) Reset() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.state = State[T]{}
	if r.opts.latestOnly {
		r.gen++
	}
	r.mu.Unlock()
	r.notify()
}

// Close marks the owner as gone. Results arriving afterwards are dropped.
func (r *Resource[T]) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

// Wait blocks until every started invocation has returned.
func (r *Resource[T]) Wait() {
	r.pending.Wait()
}

// State returns a snapshot of the current state.
func (r *Resource[T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Data is the last successful result, nil before the first success.
func (r *Resource[T]) Data() *T {
	return r.State().Data
}

// Loading reports whether an invocation is in flight.
func (r *Resource[T]) Loading() bool {
	return r.State().Loading
}

// Err is the error of the latest failed invocation. Starting a new one clears it.
func (r *Resource[T]) Err() error {
	return r.State().Err
}

func (r *Resource[T]) begin() uint64 {
	r.pending.Add(1)

	r.mu.Lock()
	r.gen++
	gen := r.gen
	closed := r.closed
	if !closed {
		r.state.Loading = true
		r.state.Err = nil
	}
	r.mu.Unlock()

	if !closed {
		r.notify()
	}
	return gen
}

func (r *Resource[T]) run(ctx context.Context, gen uint64) error {
	defer r.pending.Done()

	val, err := r.call(ctx)
	r.commit(gen, val, err)
	return err
}

func (r *Resource[T]) call(ctx context.Context) (val T, err error) {
	defer func() {
		if v := recover(); v != nil {
			var zero T
			val, err = zero, Normalize(v)
		}
	}()
	return r.producer(ctx)
}

func (r *Resource[T]) commit(gen uint64, val T, err error) {
	r.mu.Lock()
	switch {
	case r.closed:
		r.mu.Unlock()
		r.opts.logger.Debug("resource result dropped", "resource", r.opts.name, "reason", "closed")
		return
	case r.opts.latestOnly && gen != r.gen:
		r.mu.Unlock()
		r.opts.logger.Debug("resource result dropped", "resource", r.opts.name, "reason", "superseded")
		return
	}

	if err != nil {
		r.state.Err = err
	} else {
		r.state.Data = &val
		r.state.Err = nil
	}
	r.state.Loading = false
	r.mu.Unlock()

	r.notify()
}

func (r *Resource[T]) notify() {
	if r.opts.onChange != nil {
		r.opts.onChange()
	}
}
