package logger

import (
	"bytes"
	"errors"
	"log"
	"os"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	fn()
	return buf.String()
}

// captureSentry binds a client to the current hub that records events
// instead of sending them
func captureSentry(t *testing.T) func() []*sentry.Event {
	t.Helper()
	var (
		mu     sync.Mutex
		events []*sentry.Event
	)
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn: "https://public@sentry.example.com/1",
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			events = append(events, event)
			mu.Unlock()
			return nil
		},
	})
	require.NoError(t, err)

	hub := sentry.CurrentHub()
	prev := hub.Client()
	hub.BindClient(client)
	t.Cleanup(func() { hub.BindClient(prev) })

	return func() []*sentry.Event {
		mu.Lock()
		defer mu.Unlock()
		return append([]*sentry.Event(nil), events...)
	}
}

func TestFormatFieldsSorted(t *testing.T) {
	out := formatFields(Fields{"b": 2, "a": "x", "c": 1.5})
	assert.Equal(t, "{a=x, b=2, c=1.50}", out)
	assert.Equal(t, "", formatFields(nil))
}

func TestLevels(t *testing.T) {
	out := captureLog(t, func() {
		Info("hello", Fields{"kind": "url"})
		Warn("careful", nil)
		Debug("details", Fields{"token": uint64(3)})
		Error("broken", errors.New("boom"), Fields{"format": "png"})
	})

	assert.Contains(t, out, "[INFO] hello {kind=url}")
	assert.Contains(t, out, "[WARN] careful")
	assert.Contains(t, out, "[DEBUG] details {token=3}")
	assert.Contains(t, out, "[ERROR] broken: boom {format=png}")
}

func TestLogToSentry(t *testing.T) {
	events := captureSentry(t)

	LogToSentry(sentry.LevelWarning, "Clipboard write failed", Fields{"kind": "url", "error": "denied"})

	got := events()
	require.Len(t, got, 1)
	assert.Equal(t, sentry.LevelWarning, got[0].Level)
	assert.Equal(t, "Clipboard write failed", got[0].Message)
	assert.Equal(t, "url", got[0].Tags["kind"])
}

func TestErrorWithoutCause(t *testing.T) {
	events := captureSentry(t)

	captureLog(t, func() {
		Error("Render failed", nil, Fields{"format": "png"})
	})

	got := events()
	require.Len(t, got, 1)
	assert.Equal(t, sentry.LevelError, got[0].Level)
	assert.Equal(t, "Render failed", got[0].Message)
	assert.Equal(t, "png", got[0].Tags["format"])
}

func TestLogToSentryWithoutClient(t *testing.T) {
	hub := sentry.CurrentHub()
	prev := hub.Client()
	hub.BindClient(nil)
	t.Cleanup(func() { hub.BindClient(prev) })

	assert.NotPanics(t, func() {
		LogToSentry(sentry.LevelInfo, "dropped", nil)
	})
}
