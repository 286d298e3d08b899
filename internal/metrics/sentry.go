package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics records spans for requests, generations and exports
type SentryMetrics struct{}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	// spans are dropped by the SDK when Sentry is not configured
	return &SentryMetrics{}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))

	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("endpoint", endpoint)
	span.SetData("status_code", statusCode)

	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordGeneration records how long a generation stayed pending and whether it succeeded
func (m *SentryMetrics) RecordGeneration(ctx context.Context, kind string, duration time.Duration, success bool) {
	span := sentry.StartSpan(ctx, "qr.generation")
	defer span.Finish()

	span.SetTag("kind", kind)
	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("kind", kind)

	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
	span.Description = fmt.Sprintf("QR Generation: %s", kind)
}

// RecordExport records a download attempt
func (m *SentryMetrics) RecordExport(ctx context.Context, format string, success bool) {
	span := sentry.StartSpan(ctx, "qr.export")
	defer span.Finish()

	span.SetTag("format", format)
	span.SetTag("success", fmt.Sprintf("%t", success))

	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
	span.Description = fmt.Sprintf("QR Export: %s", format)
}
