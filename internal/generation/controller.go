// Package generation owns the QR generation state: it validates and
// templates the current request, calls the encoder, keeps the loading state
// visible for a minimum duration and makes sure only the latest request's
// result is applied.
package generation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Conceptual-Machines/qrious/internal/encoder"
	"github.com/Conceptual-Machines/qrious/internal/logger"
	"github.com/Conceptual-Machines/qrious/internal/notify"
	"github.com/Conceptual-Machines/qrious/internal/payload"
)

const (
	// DefaultMinDisplay is how long the loading state is shown at least
	DefaultMinDisplay = 2 * time.Second

	// DefaultExportPrefix names downloaded files
	DefaultExportPrefix = "qrious-code"

	failedReason = "generation failed"
)

// Recorder receives generation and export metrics
type Recorder interface {
	RecordGeneration(ctx context.Context, kind string, duration time.Duration, success bool)
	RecordExport(ctx context.Context, format string, success bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordGeneration(context.Context, string, time.Duration, bool) {}
func (nopRecorder) RecordExport(context.Context, string, bool)                    {}

// Controller drives Idle -> Pending -> Ready|Failed. It is safe for
// concurrent use; all state changes happen under mu.
type Controller struct {
	enc        encoder.Encoder
	opts       encoder.Options
	minDisplay time.Duration
	prefix     string
	clock      Clock
	notifier   notify.Notifier
	recorder   Recorder

	mu      sync.Mutex
	request payload.Request
	state   Snapshot
	token   uint64
	cancel  context.CancelFunc
	stats   Stats
	subs    map[chan struct{}]struct{}
	running int
	idle    chan struct{} // closed when running drops to zero
}

type Option func(*Controller)

// WithOptions sets the encoder options used for generation
func WithOptions(opts encoder.Options) Option {
	return func(c *Controller) { c.opts = opts }
}

// WithMinDisplay sets the minimum duration of the Pending state
func WithMinDisplay(d time.Duration) Option {
	return func(c *Controller) { c.minDisplay = d }
}

func WithExportPrefix(prefix string) Option {
	return func(c *Controller) { c.prefix = prefix }
}

func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// New creates a controller in the Idle state holding payload.Default()
func New(enc encoder.Encoder, opts ...Option) *Controller {
	c := &Controller{
		enc:        enc,
		opts:       encoder.DefaultOptions(),
		minDisplay: DefaultMinDisplay,
		prefix:     DefaultExportPrefix,
		clock:      systemClock{},
		notifier:   notify.Discard,
		recorder:   nopRecorder{},
		request:    payload.Default(),
		subs:       make(map[chan struct{}]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state = Snapshot{Phase: PhaseIdle, Request: c.request}
	return c
}

// Current returns the request being edited
func (c *Controller) Current() payload.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.request
}

// SetRequest replaces the request being edited without generating
func (c *Controller) SetRequest(req payload.Request) {
	if req == nil {
		return
	}
	c.mu.Lock()
	c.request = req
	c.mu.Unlock()
	c.broadcast()
}

// SwitchKind replaces the request with an empty one of kind. Switching to
// the kind already selected keeps the fields.
func (c *Controller) SwitchKind(kind payload.Kind) (payload.Request, error) {
	fresh, err := payload.New(kind)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.request != nil && c.request.Kind() == kind {
		req := c.request
		c.mu.Unlock()
		return req, nil
	}
	c.request = fresh
	c.mu.Unlock()
	c.broadcast()
	return fresh, nil
}

// Snapshot returns a copy of the generation state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stats returns outcome counters
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// MinDisplay returns the configured minimum Pending duration
func (c *Controller) MinDisplay() time.Duration {
	return c.minDisplay
}

// RequestGeneration validates req and, if valid, starts generating it in
// the background. A validation failure leaves the state untouched and
// returns a *payload.ValidationError. A newer call supersedes any call
// still in flight.
func (c *Controller) RequestGeneration(ctx context.Context, req payload.Request) error {
	if err := payload.Validate(req); err != nil {
		c.mu.Lock()
		c.stats.Rejected++
		if req != nil {
			c.request = req
		}
		c.mu.Unlock()

		logger.Warn("Generation rejected", logger.Fields{"error": err.Error()})
		c.notifier.Notify(notify.Error("Missing content", UserMessage(err)))
		return err
	}

	// the run outlives the caller (an HTTP request, typically)
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.token++
	token := c.token
	started := c.clock.Now()
	c.request = req
	c.cancel = cancel
	c.state = Snapshot{Phase: PhasePending, Token: token, Started: started, Request: req}
	c.stats.Requested++
	if c.running == 0 {
		c.idle = make(chan struct{})
	}
	c.running++
	c.mu.Unlock()

	logger.Debug("Generation started", logger.Fields{"kind": string(req.Kind()), "token": token})
	c.broadcast()

	go c.run(runCtx, cancel, token, started, req)
	return nil
}

func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, token uint64, started time.Time, req payload.Request) {
	defer c.done()
	defer cancel()

	result, err := c.enc.Encode(ctx, payload.Template(req), c.opts)

	// wait out whatever is left of the minimum display time; a newer
	// request cancels ctx so this timer never fires late
	if wait := remaining(c.minDisplay, c.clock.Now().Sub(started)); wait > 0 {
		select {
		case <-c.clock.After(wait):
		case <-ctx.Done():
			c.supersede(token)
			return
		}
	}

	settled := c.clock.Now()

	c.mu.Lock()
	if token != c.token {
		c.stats.Superseded++
		c.mu.Unlock()
		logger.Debug("Discarding superseded generation", logger.Fields{"token": token})
		return
	}
	if err != nil {
		c.state = Snapshot{Phase: PhaseFailed, Token: token, Started: started, Settled: settled, Reason: failedReason, Request: req}
		c.stats.Failed++
	} else {
		c.state = Snapshot{Phase: PhaseReady, Token: token, Started: started, Settled: settled, Result: result, Request: req}
		c.stats.Succeeded++
	}
	c.mu.Unlock()

	duration := settled.Sub(started)
	kind := string(req.Kind())
	fields := logger.Fields{"kind": kind, "token": token}

	if err != nil {
		logger.Error("QR generation failed", err, fields)
		c.notifier.Notify(notify.Error("Generation failed", encoderMessage(err)))
	} else {
		fields["bytes"] = result.Len()
		c.notifier.Notify(notify.Success("QR code ready", payload.Describe(req)))
	}
	logger.LogGeneration(ctx, kind, duration, err == nil, fields)
	c.recorder.RecordGeneration(ctx, kind, duration, err == nil)
	c.broadcast()
}

func (c *Controller) supersede(token uint64) {
	c.mu.Lock()
	c.stats.Superseded++
	c.mu.Unlock()
	logger.Debug("Generation superseded before display", logger.Fields{"token": token})
}

// encoderMessage keeps encoder detail out of user-facing text
func encoderMessage(err error) string {
	var encErr *encoder.EncodingError
	if errors.As(err, &encErr) {
		return encErr.UserMessage()
	}
	return "Could not generate QR code."
}

func (c *Controller) done() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running--
	if c.running == 0 {
		close(c.idle)
	}
}

// Wait blocks until no generation is in flight or ctx is done
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	if c.running == 0 {
		c.mu.Unlock()
		return nil
	}
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe returns a channel that receives a value after every state or
// request change. Call the returned func to unsubscribe.
func (c *Controller) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		delete(c.subs, ch)
		c.mu.Unlock()
	}
}

func (c *Controller) broadcast() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
