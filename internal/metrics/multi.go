package metrics

import (
	"context"
	"time"
)

// Recorder is implemented by SentryMetrics and Client
type Recorder interface {
	RecordGeneration(ctx context.Context, kind string, duration time.Duration, success bool)
	RecordExport(ctx context.Context, format string, success bool)
}

// Multi fans every record out to all recorders
type Multi []Recorder

func (m Multi) RecordGeneration(ctx context.Context, kind string, duration time.Duration, success bool) {
	for _, r := range m {
		r.RecordGeneration(ctx, kind, duration, success)
	}
}

func (m Multi) RecordExport(ctx context.Context, format string, success bool) {
	for _, r := range m {
		r.RecordExport(ctx, format, success)
	}
}
