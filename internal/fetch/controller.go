package fetch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrClosed is returned by Wait once the controller has been closed.
var ErrClosed = errors.New("fetch: controller closed")

// Fetcher retrieves the raw body of a resource.
type Fetcher interface {
	Fetch(ctx context.Context, resource string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, resource string) ([]byte, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, resource string) ([]byte, error) {
	return f(ctx, resource)
}

// Decoder turns a raw body into T.
type Decoder[T any] func(body []byte) (T, error)

// LoadFunc is a one-shot load issued through FetchNow.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// SettleFunc observes a non-stale resolution.
type SettleFunc[T any] func(tok Token, state State[T])

// Options configures a Controller.
type Options struct {
	// Timeout bounds each load. Zero means no per-load timeout.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Controller owns the State of one asynchronous resource. Loads run on
// their own goroutines; a result is applied only if its Token is still
// the latest one issued, so out-of-order completions never regress the
// state.
type Controller[T any] struct {
	ctx     context.Context
	cancel  context.CancelFunc
	fetcher Fetcher
	decode  Decoder[T]
	timeout time.Duration
	logger  *slog.Logger

	seq  Sequence
	feed *Feed

	mu       sync.Mutex
	resource string
	state    State[T]
	settle   []SettleFunc[T]
	closed   bool
}

// NewController creates an idle controller. Nothing is loaded until
// SetResource or FetchNow is called. fetcher and decode may be nil for
// controllers that are only driven through FetchNow.
func NewController[T any](ctx context.Context, fetcher Fetcher, decode Decoder[T], opts Options) *Controller[T] {
	ctx, cancel := context.WithCancel(ctx)
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller[T]{
		ctx:     ctx,
		cancel:  cancel,
		fetcher: fetcher,
		decode:  decode,
		timeout: opts.Timeout,
		logger:  logger,
		feed:    NewFeed(),
		state:   IdleState[T](),
	}
}

// NewResource creates a controller and immediately issues the load for resource.
func NewResource[T any](ctx context.Context, fetcher Fetcher, resource string, decode Decoder[T], opts Options) *Controller[T] {
	c := NewController(ctx, fetcher, decode, opts)
	c.SetResource(resource)
	return c
}

// SetResource switches the controller to resource and issues exactly one
// load for it. Setting the resource that is already loaded or loading is
// a no-op and returns NoToken.
func (c *Controller[T]) SetResource(resource string) Token {
	c.mu.Lock()
	if c.closed || (c.state.Phase != Idle && resource == c.resource) {
		c.mu.Unlock()
		return NoToken
	}
	c.resource = resource
	tok := c.beginLocked(c.resourceLoad(resource))
	c.mu.Unlock()

	c.feed.Broadcast()
	return tok
}

// Reload re-issues the load for the current resource. It is how callers
// retry after a failure; the controller never retries on its own.
func (c *Controller[T]) Reload() Token {
	c.mu.Lock()
	if c.closed || c.fetcher == nil {
		c.mu.Unlock()
		return NoToken
	}
	tok := c.beginLocked(c.resourceLoad(c.resource))
	c.mu.Unlock()

	c.feed.Broadcast()
	return tok
}

// FetchNow issues a one-shot load that is not tied to the resource
// identifier. It supersedes any load in flight.
func (c *Controller[T]) FetchNow(load LoadFunc[T]) Token {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return NoToken
	}
	tok := c.beginLocked(load)
	c.mu.Unlock()

	c.feed.Broadcast()
	return tok
}

// OnSettle registers fn to run after each non-stale resolution. fn runs
// on the load's goroutine without the controller lock held.
func (c *Controller[T]) OnSettle(fn SettleFunc[T]) {
	c.mu.Lock()
	c.settle = append(c.settle, fn)
	c.mu.Unlock()
}

// State returns the current state.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Resource returns the current resource identifier.
func (c *Controller[T]) Resource() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resource
}

// Latest returns the most recently issued token.
func (c *Controller[T]) Latest() Token {
	return c.seq.Latest()
}

// Subscribe returns a channel pinged on every state change.
func (c *Controller[T]) Subscribe() chan struct{} {
	return c.feed.Subscribe()
}

// Unsubscribe releases a channel returned by Subscribe.
func (c *Controller[T]) Unsubscribe(ch chan struct{}) {
	c.feed.Unsubscribe(ch)
}

// Wait blocks until the current state is settled, ctx is done, or the
// controller is closed.
func (c *Controller[T]) Wait(ctx context.Context) (State[T], error) {
	ch := c.feed.Subscribe()
	defer c.feed.Unsubscribe(ch)

	for {
		st := c.State()
		if st.Settled() {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case _, ok := <-ch:
			if !ok {
				return c.State(), ErrClosed
			}
		}
	}
}

// Close cancels loads in flight and stops applying results.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.feed.Close()
}

func (c *Controller[T]) beginLocked(load LoadFunc[T]) Token {
	tok := c.seq.Next()
	c.state = LoadingState[T]()
	go c.run(tok, load)
	return tok
}

func (c *Controller[T]) run(tok Token, load LoadFunc[T]) {
	ctx := c.ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	data, err := load(ctx)
	c.resolve(tok, data, err)
}

func (c *Controller[T]) resolve(tok Token, data T, err error) {
	c.mu.Lock()
	if c.closed || !c.seq.Current(tok) {
		c.mu.Unlock()
		c.logger.Debug("discarding stale load", "token", tok, "latest", c.seq.Latest())
		return
	}

	var st State[T]
	if err != nil {
		st = FailedState[T](err)
		c.logger.Debug("load failed", "token", tok, "resource", c.resource, "error", err)
	} else {
		st = SuccessState(data)
	}
	c.state = st
	hooks := append([]SettleFunc[T](nil), c.settle...)
	c.mu.Unlock()

	for _, fn := range hooks {
		fn(tok, st)
	}
	c.feed.Broadcast()
}

func (c *Controller[T]) resourceLoad(resource string) LoadFunc[T] {
	return func(ctx context.Context) (T, error) {
		var zero T
		if c.fetcher == nil {
			return zero, errors.New("fetch: controller has no fetcher")
		}
		body, err := c.fetcher.Fetch(ctx, resource)
		if err != nil {
			return zero, err
		}
		if c.decode == nil {
			return zero, DecodeError(errors.New("fetch: controller has no decoder"))
		}
		v, err := c.decode(body)
		if err != nil {
			var fe *Error
			if errors.As(err, &fe) {
				return zero, err
			}
			return zero, DecodeError(err)
		}
		return v, nil
	}
}
