package preview

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/leapstack-labs/relayui/internal/fetch"
	"github.com/leapstack-labs/relayui/internal/relay"
)

// DefaultDebounce is the quiescence window between the last edit and the render it triggers.
const DefaultDebounce = 250 * time.Millisecond

// Phase is the pipeline's position in its state machine.
type Phase int

const (
	// Quiescent means no timer is armed and the outcome matches the input.
	Quiescent Phase = iota
	// PendingDebounce means an edit armed the debounce timer.
	PendingDebounce
	// Rendering means a render request is in flight.
	Rendering
)

func (p Phase) String() string {
	switch p {
	case Quiescent:
		return "quiescent"
	case PendingDebounce:
		return "pending"
	case Rendering:
		return "rendering"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Renderer renders template text against a sample payload.
type Renderer interface {
	Render(ctx context.Context, in relay.RenderRequest) (string, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, in relay.RenderRequest) (string, error)

// Render implements Renderer.
func (f RendererFunc) Render(ctx context.Context, in relay.RenderRequest) (string, error) {
	return f(ctx, in)
}

// Config holds configuration for a Pipeline.
type Config struct {
	Renderer Renderer
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	// Scheduler defaults to SystemScheduler.
	Scheduler Scheduler
	// Timeout bounds each render request. Zero means no timeout.
	Timeout time.Duration
	Initial InputState
	Logger  *slog.Logger
}

// Snapshot is a consistent read of the pipeline.
type Snapshot struct {
	Input   InputState
	Outcome RenderOutcome
	Phase   Phase
}

// Pipeline coalesces edits into render requests and applies only the
// response of the most recently dispatched one.
//
// Edits, timer expiry and resolutions are serialized on one mutex, and
// tokens are minted under it at dispatch time, so a response can never
// replace the outcome of a request dispatched after it.
type Pipeline struct {
	renderer Renderer
	window   time.Duration
	sched    Scheduler
	logger   *slog.Logger
	renders  *fetch.Controller[string]
	feed     *fetch.Feed

	mu         sync.Mutex
	input      InputState
	outcome    RenderOutcome
	phase      Phase
	timer      Timer
	inflight   InputState
	edits      uint64
	dispatched int
	closed     bool
}

// NewPipeline creates a quiescent pipeline with an empty outcome. Loads
// are bound to ctx.
func NewPipeline(ctx context.Context, cfg Config) *Pipeline {
	window := cfg.Debounce
	if window <= 0 {
		window = DefaultDebounce
	}
	sched := cfg.Scheduler
	if sched == nil {
		sched = SystemScheduler{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	p := &Pipeline{
		renderer: cfg.Renderer,
		window:   window,
		sched:    sched,
		logger:   logger,
		feed:     fetch.NewFeed(),
		input:    cfg.Initial,
		phase:    Quiescent,
	}
	p.renders = fetch.NewController[string](ctx, nil, nil, fetch.Options{
		Timeout: cfg.Timeout,
		Logger:  logger,
	})
	p.renders.OnSettle(p.settle)
	return p
}

// Start arms the debounce for the current input so the initial state
// gets rendered without an edit.
func (p *Pipeline) Start() {
	p.update(func(*InputState) {})
}

// Edit replaces the whole input.
func (p *Pipeline) Edit(in InputState) {
	p.update(func(cur *InputState) { *cur = in })
}

// SetTemplateText replaces the template text and leaves the payload alone.
func (p *Pipeline) SetTemplateText(text string) {
	p.update(func(cur *InputState) { cur.TemplateText = text })
}

// SetSamplePayload replaces the sample payload and leaves the template alone.
func (p *Pipeline) SetSamplePayload(payload string) {
	p.update(func(cur *InputState) { cur.SamplePayload = payload })
}

// Input returns a copy of the current input.
func (p *Pipeline) Input() InputState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.input
}

// Outcome returns the latest applied outcome.
func (p *Pipeline) Outcome() RenderOutcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outcome
}

// Phase returns the current state machine phase.
func (p *Pipeline) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// Snapshot returns input, outcome and phase read together.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{Input: p.input, Outcome: p.outcome, Phase: p.phase}
}

// Dispatched returns how many render requests have been sent.
func (p *Pipeline) Dispatched() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dispatched
}

// Subscribe returns a channel pinged on every input, phase or outcome change.
func (p *Pipeline) Subscribe() chan struct{} {
	return p.feed.Subscribe()
}

// Unsubscribe releases a channel returned by Subscribe.
func (p *Pipeline) Unsubscribe(ch chan struct{}) {
	p.feed.Unsubscribe(ch)
}

// Close stops the timer and drops any render still in flight.
func (p *Pipeline) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.mu.Unlock()

	p.renders.Close()
	p.feed.Close()
}

func (p *Pipeline) update(mutate func(*InputState)) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	mutate(&p.input)
	p.armLocked()
	p.mu.Unlock()

	p.feed.Broadcast()
}

// armLocked replaces any armed timer with a fresh one for the new edit generation.
func (p *Pipeline) armLocked() {
	p.edits++
	gen := p.edits
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = p.sched.AfterFunc(p.window, func() { p.fire(gen) })
	p.phase = PendingDebounce
}

// fire dispatches a render for generation gen unless a later edit re-armed the timer.
func (p *Pipeline) fire(gen uint64) {
	p.mu.Lock()
	if p.closed || gen != p.edits {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	p.phase = Rendering
	p.dispatched++
	snapshot := p.input
	p.inflight = snapshot
	renderer := p.renderer
	tok := p.renders.FetchNow(func(ctx context.Context) (string, error) {
		if renderer == nil {
			return "", fetch.ApplicationError("", "no renderer configured")
		}
		return renderer.Render(ctx, snapshot.request())
	})
	p.mu.Unlock()

	p.logger.Debug("render dispatched", "token", tok, "template_bytes", len(snapshot.TemplateText))
	p.feed.Broadcast()
}

// settle applies a resolution if its token is still the latest issued.
func (p *Pipeline) settle(tok fetch.Token, st fetch.State[string]) {
	p.mu.Lock()
	if p.closed || tok != p.renders.Latest() {
		p.mu.Unlock()
		return
	}

	// tok is the latest token, so inflight is the snapshot it was minted for.
	next := RenderOutcome{Token: tok, Input: p.inflight}
	switch st.Phase {
	case fetch.Succeeded:
		next.Succeeded = true
		next.RenderedMarkdown = st.Data
	case fetch.Failed:
		next.RenderedMarkdown = p.outcome.RenderedMarkdown
		next.ErrorMessage = st.ErrorMessage()
	default:
		p.mu.Unlock()
		return
	}
	p.outcome = next
	if p.phase == Rendering {
		p.phase = Quiescent
	}
	p.mu.Unlock()

	if next.Failed() {
		p.logger.Debug("render failed", "token", tok, "error", next.ErrorMessage)
	}
	p.feed.Broadcast()
}
