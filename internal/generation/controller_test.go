package generation

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/Conceptual-Machines/qrious/internal/encoder"
	"github.com/Conceptual-Machines/qrious/internal/notify"
	"github.com/Conceptual-Machines/qrious/internal/payload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	eventually = 2 * time.Second
	tick       = 5 * time.Millisecond
)

// fakeClock only moves when Advance is called
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*waiter
}

type waiter struct {
	at    time.Time
	ch    chan time.Time
	fired bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := &waiter{at: f.now.Add(d), ch: make(chan time.Time, 1)}
	f.waiters = append(f.waiters, w)
	return w.ch
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	for _, w := range f.waiters {
		if !w.fired && !w.at.After(f.now) {
			w.fired = true
			w.ch <- f.now
		}
	}
}

func (f *fakeClock) waiterDeadlines() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Time, 0, len(f.waiters))
	for _, w := range f.waiters {
		out = append(out, w.at)
	}
	return out
}

func (f *fakeClock) blockUntilWaiters(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(f.waiterDeadlines()) >= n
	}, eventually, tick)
}

// fakeEncoder echoes the payload and can block, fail or take time per payload
type fakeEncoder struct {
	mu    sync.Mutex
	calls []encodeCall
	gates map[string]chan struct{}
	fail  map[string]error
	took  map[string]time.Duration
	clock *fakeClock
}

type encodeCall struct {
	payload string
	opts    encoder.Options
}

func newFakeEncoder() *fakeEncoder {
	return &fakeEncoder{
		gates: map[string]chan struct{}{},
		fail:  map[string]error{},
		took:  map[string]time.Duration{},
	}
}

func (f *fakeEncoder) Encode(_ context.Context, p string, opts encoder.Options) (encoder.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, encodeCall{payload: p, opts: opts})
	gate := f.gates[p]
	err := f.fail[p]
	took := f.took[p]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if took > 0 && f.clock != nil {
		f.clock.Advance(took)
	}
	if err != nil {
		return encoder.Result{}, err
	}
	return encoder.NewResult(opts.Format, []byte(string(opts.Format)+":"+p)), nil
}

func (f *fakeEncoder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func phaseIs(c *Controller, p Phase) func() bool {
	return func() bool { return c.Snapshot().Phase == p }
}

func waitIdle(t *testing.T, c *Controller) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), eventually)
	defer cancel()
	require.NoError(t, c.Wait(ctx))
}

func TestNewControllerDefaults(t *testing.T) {
	c := New(newFakeEncoder())
	snap := c.Snapshot()
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Equal(t, payload.Default(), c.Current())
	assert.Equal(t, "https://example.com", snap.Payload())
	assert.Equal(t, DefaultMinDisplay, c.MinDisplay())
}

func TestBlankContentIsRejected(t *testing.T) {
	enc := newFakeEncoder()
	feed := notify.NewFeed(0)
	c := New(enc, WithNotifier(feed), WithMinDisplay(0))

	err := c.RequestGeneration(context.Background(), payload.Text{Value: "  "})
	require.Error(t, err)

	var verr *payload.ValidationError
	assert.True(t, errors.As(err, &verr))

	assert.Equal(t, PhaseIdle, c.Snapshot().Phase)
	assert.Zero(t, enc.callCount())

	toasts := feed.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.LevelError, toasts[0].Level)
	assert.Equal(t, uint64(1), c.Stats().Rejected)
}

func TestEmptyWiFiAndLocationAreAccepted(t *testing.T) {
	for _, req := range []payload.Request{payload.WiFi{}, payload.Location{}} {
		enc := newFakeEncoder()
		c := New(enc, WithMinDisplay(0))

		require.NoError(t, c.RequestGeneration(context.Background(), req))
		waitIdle(t, c)

		snap := c.Snapshot()
		assert.Equal(t, PhaseReady, snap.Phase)
		assert.Equal(t, "raster:"+payload.Template(req), string(snap.Result.Bytes()))
	}
}

func TestGenerationUsesFixedOptions(t *testing.T) {
	enc := newFakeEncoder()
	c := New(enc, WithMinDisplay(0))

	require.NoError(t, c.RequestGeneration(context.Background(), payload.Email{Address: "a@b.com", Subject: "Hi there", Body: "msg"}))
	waitIdle(t, c)

	require.Equal(t, 1, enc.callCount())
	call := enc.calls[0]
	assert.Equal(t, "mailto:a@b.com?subject=Hi%20there&body=msg", call.payload)
	assert.Equal(t, 256, call.opts.Width)
	assert.Equal(t, 2, call.opts.Margin)
	assert.Equal(t, encoder.LevelM, call.opts.Level)
	assert.Equal(t, encoder.FormatRaster, call.opts.Format)
}

func TestReadyWaitsForMinimumDisplay(t *testing.T) {
	clock := newFakeClock()
	enc := newFakeEncoder()
	c := New(enc, WithClock(clock), WithMinDisplay(2*time.Second))

	require.NoError(t, c.RequestGeneration(context.Background(), payload.Text{Value: "fast"}))
	started := c.Snapshot().Started
	assert.Equal(t, PhasePending, c.Snapshot().Phase)

	clock.blockUntilWaiters(t, 1)
	assert.Equal(t, started.Add(2*time.Second), clock.waiterDeadlines()[0])

	clock.Advance(1999 * time.Millisecond)
	assert.Never(t, phaseIs(c, PhaseReady), 50*time.Millisecond, tick)

	clock.Advance(time.Millisecond)
	require.Eventually(t, phaseIs(c, PhaseReady), eventually, tick)
	assert.Equal(t, 2*time.Second, c.Snapshot().Settled.Sub(started))
}

func TestFloorCountsEncodeTime(t *testing.T) {
	clock := newFakeClock()
	enc := newFakeEncoder()
	enc.clock = clock
	enc.took["medium"] = 500 * time.Millisecond
	c := New(enc, WithClock(clock), WithMinDisplay(2*time.Second))

	require.NoError(t, c.RequestGeneration(context.Background(), payload.Text{Value: "medium"}))
	started := c.Snapshot().Started

	// remaining 1.5s, not a flat 2s on top of the encode
	clock.blockUntilWaiters(t, 1)
	assert.Equal(t, started.Add(2*time.Second), clock.waiterDeadlines()[0])

	clock.Advance(1500 * time.Millisecond)
	require.Eventually(t, phaseIs(c, PhaseReady), eventually, tick)
}

func TestSlowEncodeIsNotDelayedFurther(t *testing.T) {
	clock := newFakeClock()
	enc := newFakeEncoder()
	enc.clock = clock
	enc.took["slow"] = 3 * time.Second
	c := New(enc, WithClock(clock), WithMinDisplay(2*time.Second))

	require.NoError(t, c.RequestGeneration(context.Background(), payload.Text{Value: "slow"}))
	waitIdle(t, c)

	assert.Equal(t, PhaseReady, c.Snapshot().Phase)
	assert.Empty(t, clock.waiterDeadlines())
}

func TestReadyNotBeforeFloorWithSystemClock(t *testing.T) {
	const (
		floor     = 150 * time.Millisecond
		tolerance = 10 * time.Millisecond
	)
	c := New(newFakeEncoder(), WithMinDisplay(floor))

	begin := time.Now()
	require.NoError(t, c.RequestGeneration(context.Background(), payload.URL{Value: "https://go.dev"}))
	waitIdle(t, c)

	assert.Equal(t, PhaseReady, c.Snapshot().Phase)
	assert.GreaterOrEqual(t, time.Since(begin), floor-tolerance)
}

func TestLatestRequestWins(t *testing.T) {
	enc := newFakeEncoder()
	gate := make(chan struct{})
	enc.gates["https://first.example"] = gate
	c := New(enc, WithMinDisplay(0))

	require.NoError(t, c.RequestGeneration(context.Background(), payload.URL{Value: "https://first.example"}))
	require.NoError(t, c.RequestGeneration(context.Background(), payload.URL{Value: "https://second.example"}))

	require.Eventually(t, phaseIs(c, PhaseReady), eventually, tick)

	// first encode resolves last
	close(gate)
	waitIdle(t, c)

	snap := c.Snapshot()
	assert.Equal(t, PhaseReady, snap.Phase)
	assert.Equal(t, uint64(2), snap.Token)
	assert.Equal(t, "raster:https://second.example", string(snap.Result.Bytes()))
	assert.Equal(t, payload.URL{Value: "https://second.example"}, c.Current())
	assert.Equal(t, uint64(1), c.Stats().Superseded)
}

func TestSupersededFloorTimerDoesNotFire(t *testing.T) {
	clock := newFakeClock()
	enc := newFakeEncoder()
	c := New(enc, WithClock(clock), WithMinDisplay(2*time.Second))

	require.NoError(t, c.RequestGeneration(context.Background(), payload.Text{Value: "one"}))
	clock.blockUntilWaiters(t, 1)

	clock.Advance(time.Second)
	require.NoError(t, c.RequestGeneration(context.Background(), payload.Text{Value: "two"}))
	clock.blockUntilWaiters(t, 2)

	// the first floor would expire here; the second is still pending
	clock.Advance(time.Second)
	assert.Never(t, phaseIs(c, PhaseReady), 50*time.Millisecond, tick)
	assert.Equal(t, uint64(2), c.Snapshot().Token)

	clock.Advance(time.Second)
	waitIdle(t, c)

	snap := c.Snapshot()
	assert.Equal(t, PhaseReady, snap.Phase)
	assert.Equal(t, "raster:two", string(snap.Result.Bytes()))
	assert.Equal(t, uint64(1), c.Stats().Superseded)
}

func TestEncoderFailure(t *testing.T) {
	enc := newFakeEncoder()
	enc.fail["boom"] = &encoder.EncodingError{Backend: "fake", Err: errors.New("data too long")}
	feed := notify.NewFeed(0)
	c := New(enc, WithMinDisplay(0), WithNotifier(feed))

	require.NoError(t, c.RequestGeneration(context.Background(), payload.Text{Value: "boom"}))
	waitIdle(t, c)

	snap := c.Snapshot()
	assert.Equal(t, PhaseFailed, snap.Phase)
	assert.Equal(t, "generation failed", snap.Reason)
	assert.True(t, snap.Result.IsZero())

	toasts := feed.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.LevelError, toasts[0].Level)
	assert.NotContains(t, toasts[0].Message, "data too long")
	assert.Equal(t, uint64(1), c.Stats().Failed)
}

func TestFailedWaitsForMinimumDisplay(t *testing.T) {
	clock := newFakeClock()
	enc := newFakeEncoder()
	enc.fail["boom"] = &encoder.EncodingError{Backend: "fake", Err: errors.New("data too long")}
	feed := notify.NewFeed(0)
	c := New(enc, WithClock(clock), WithMinDisplay(2*time.Second), WithNotifier(feed))

	require.NoError(t, c.RequestGeneration(context.Background(), payload.Text{Value: "boom"}))
	started := c.Snapshot().Started

	// the encoder has already failed; the floor still holds the pending state
	clock.blockUntilWaiters(t, 1)
	clock.Advance(1999 * time.Millisecond)
	assert.Never(t, phaseIs(c, PhaseFailed), 50*time.Millisecond, tick)
	assert.Equal(t, PhasePending, c.Snapshot().Phase)
	assert.Zero(t, feed.Len())

	clock.Advance(time.Millisecond)
	require.Eventually(t, phaseIs(c, PhaseFailed), eventually, tick)
	waitIdle(t, c)
	assert.Equal(t, 2*time.Second, c.Snapshot().Settled.Sub(started))

	toasts := feed.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.LevelError, toasts[0].Level)
	assert.Equal(t, "Generation failed", toasts[0].Title)
}

func TestNewRequestDiscardsPreviousResult(t *testing.T) {
	enc := newFakeEncoder()
	gate := make(chan struct{})
	enc.gates["second"] = gate
	c := New(enc, WithMinDisplay(0))

	require.NoError(t, c.RequestGeneration(context.Background(), payload.Text{Value: "first"}))
	require.Eventually(t, phaseIs(c, PhaseReady), eventually, tick)

	require.NoError(t, c.RequestGeneration(context.Background(), payload.Text{Value: "second"}))
	snap := c.Snapshot()
	assert.Equal(t, PhasePending, snap.Phase)
	assert.True(t, snap.Result.IsZero())

	close(gate)
	waitIdle(t, c)
}

func TestRasterExportRequiresReady(t *testing.T) {
	feed := notify.NewFeed(0)
	c := New(newFakeEncoder(), WithNotifier(feed))

	_, err := c.ExportCurrent(context.Background(), encoder.FormatRaster)
	assert.ErrorIs(t, err, ErrNothingToExport)
	assert.Zero(t, feed.Len())
}

func TestRasterExportIsFramed(t *testing.T) {
	c := New(encoder.New(encoder.GoQRCode{}), WithMinDisplay(0), WithExportPrefix("my-code"))

	require.NoError(t, c.RequestGeneration(context.Background(), payload.Phone{Number: "+15551234"}))
	waitIdle(t, c)
	require.Equal(t, PhaseReady, c.Snapshot().Phase)

	exp, err := c.ExportCurrent(context.Background(), encoder.FormatRaster)
	require.NoError(t, err)
	assert.Equal(t, "my-code.png", exp.Filename)
	assert.Equal(t, "image/png", exp.MIME)

	img, err := png.Decode(bytes.NewReader(exp.Data))
	require.NoError(t, err)
	inset := 2 * (framePadding + frameBorder)
	assert.Equal(t, 256+inset, img.Bounds().Dx())
	assert.Equal(t, 256+inset+frameFooter, img.Bounds().Dy())
	assert.Equal(t, uint64(1), c.Stats().Exports)
}

func TestVectorExportIgnoresState(t *testing.T) {
	enc := newFakeEncoder()
	feed := notify.NewFeed(0)
	c := New(enc, WithNotifier(feed))
	c.SetRequest(payload.WiFi{SSID: "Home", Password: "secret1"})

	exp, err := c.ExportCurrent(context.Background(), encoder.FormatVector)
	require.NoError(t, err)

	assert.Equal(t, PhaseIdle, c.Snapshot().Phase)
	assert.Equal(t, "qrious-code.svg", exp.Filename)
	assert.Equal(t, "image/svg+xml", exp.MIME)
	assert.Equal(t, "vector:WIFI:T:WPA;S:Home;P:secret1;H:false;;", string(exp.Data))

	toasts := feed.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.LevelInfo, toasts[0].Level)
	assert.Equal(t, "Download ready", toasts[0].Title)
	assert.Equal(t, "qrious-code.svg", toasts[0].Message)
}

func TestVectorExportFailure(t *testing.T) {
	enc := newFakeEncoder()
	enc.fail["https://example.com"] = errors.New("too long")
	feed := notify.NewFeed(0)
	c := New(enc, WithNotifier(feed))

	_, err := c.ExportCurrent(context.Background(), encoder.FormatVector)
	var exportErr *ExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, encoder.FormatVector, exportErr.Format)
	assert.Equal(t, 1, feed.Len())
}

func TestCopyCurrent(t *testing.T) {
	feed := notify.NewFeed(0)
	c := New(newFakeEncoder(), WithNotifier(feed))
	c.SetRequest(payload.Location{})

	var copied string
	text, err := c.CopyCurrent(context.Background(), ClipboardFunc(func(_ context.Context, s string) error {
		copied = s
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, "geo:0,0", text)
	assert.Equal(t, "geo:0,0", copied)
	assert.Equal(t, notify.LevelSuccess, feed.Drain()[0].Level)

	_, err = c.CopyCurrent(context.Background(), ClipboardFunc(func(context.Context, string) error {
		return errors.New("permission denied")
	}))
	var clipErr *ClipboardError
	require.True(t, errors.As(err, &clipErr))
	assert.Equal(t, "Could not copy to clipboard.", UserMessage(err))
	assert.Equal(t, notify.LevelError, feed.Drain()[0].Level)
}

func TestSwitchKindResetsFields(t *testing.T) {
	c := New(newFakeEncoder())
	c.SetRequest(payload.Email{Address: "a@b.com", Subject: "s"})

	req, err := c.SwitchKind(payload.KindWiFi)
	require.NoError(t, err)
	assert.Equal(t, payload.WiFi{}, req)

	c.SetRequest(payload.WiFi{SSID: "Home"})
	req, err = c.SwitchKind(payload.KindWiFi)
	require.NoError(t, err)
	assert.Equal(t, payload.WiFi{SSID: "Home"}, req)

	_, err = c.SwitchKind(payload.Kind("vcard"))
	assert.ErrorIs(t, err, payload.ErrUnknownKind)
}

func TestSwitchKindSignalsOnlyOnChange(t *testing.T) {
	c := New(newFakeEncoder())
	ch, unsubscribe := c.Subscribe()
	defer unsubscribe()

	_, err := c.SwitchKind(payload.KindSMS)
	require.NoError(t, err)
	select {
	case <-ch:
	default:
		t.Fatal("no change signal")
	}

	_, err = c.SwitchKind(payload.KindSMS)
	require.NoError(t, err)
	select {
	case <-ch:
		t.Fatal("same-kind switch signalled a change")
	default:
	}
}

func TestSwitchKindKeepsConcurrentEdits(t *testing.T) {
	for range 50 {
		c := New(newFakeEncoder())
		edited := payload.WiFi{SSID: "Home"}

		var wg sync.WaitGroup
		for i := range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if i%2 == 0 {
					req, err := c.SwitchKind(payload.KindWiFi)
					assert.NoError(t, err)
					assert.Equal(t, payload.KindWiFi, req.Kind())
					return
				}
				c.SetRequest(edited)
			}()
		}
		wg.Wait()

		// once an edit landed, a switch to the same kind never resets it
		require.Equal(t, edited, c.Current())
	}
}

func TestSubscribeSignalsChanges(t *testing.T) {
	c := New(newFakeEncoder(), WithMinDisplay(0))
	ch, unsubscribe := c.Subscribe()
	defer unsubscribe()

	require.NoError(t, c.RequestGeneration(context.Background(), payload.Text{Value: "x"}))
	select {
	case <-ch:
	case <-time.After(eventually):
		t.Fatal("no change signal")
	}
	waitIdle(t, c)
}

func TestWaitRespectsContext(t *testing.T) {
	enc := newFakeEncoder()
	gate := make(chan struct{})
	enc.gates["blocked"] = gate
	c := New(enc, WithMinDisplay(0))

	require.NoError(t, c.RequestGeneration(context.Background(), payload.Text{Value: "blocked"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Wait(ctx), context.DeadlineExceeded)

	close(gate)
	waitIdle(t, c)
}
