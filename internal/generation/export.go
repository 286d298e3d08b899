package generation

import (
	"context"
	"errors"
	"strings"

	"github.com/Conceptual-Machines/qrious/internal/encoder"
	"github.com/Conceptual-Machines/qrious/internal/logger"
	"github.com/Conceptual-Machines/qrious/internal/notify"
	"github.com/Conceptual-Machines/qrious/internal/payload"
	"github.com/getsentry/sentry-go"
)

// Export is a file offered for download
type Export struct {
	Filename string
	MIME     string
	Data     []byte
}

// Clipboard writes text to the user's clipboard
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// ClipboardFunc adapts a function to Clipboard
type ClipboardFunc func(ctx context.Context, text string) error

func (f ClipboardFunc) WriteText(ctx context.Context, text string) error { return f(ctx, text) }

// ExportCurrent produces a downloadable file. Raster exports the framed
// presentation of the ready code and returns ErrNothingToExport when no
// code is ready. Vector re-encodes the current request whatever the state.
func (c *Controller) ExportCurrent(ctx context.Context, format encoder.Format) (Export, error) {
	var (
		data []byte
		err  error
	)

	switch format {
	case encoder.FormatRaster:
		snap := c.Snapshot()
		if snap.Phase != PhaseReady {
			return Export{}, ErrNothingToExport
		}
		data, err = composeFrame(snap.Result, c.opts)
	case encoder.FormatVector:
		var res encoder.Result
		res, err = c.enc.Encode(ctx, payload.Template(c.Current()), c.opts.WithFormat(encoder.FormatVector))
		data = res.Bytes()
	default:
		err = errors.New("unsupported format")
	}

	fields := logger.Fields{"format": string(format)}
	if err != nil {
		exportErr := &ExportError{Format: format, Err: err}
		logger.Error("Export failed", exportErr, fields)
		c.notifier.Notify(notify.Error("Download failed", exportErr.UserMessage()))
		c.recorder.RecordExport(ctx, string(format), false)
		return Export{}, exportErr
	}

	c.mu.Lock()
	c.stats.Exports++
	c.mu.Unlock()

	filename := c.filename(format)
	fields["bytes"] = len(data)
	logger.Info("Export ready", fields)
	c.recorder.RecordExport(ctx, string(format), true)
	c.notifier.Notify(notify.Info("Download ready", filename))

	return Export{
		Filename: filename,
		MIME:     format.MIME(),
		Data:     data,
	}, nil
}

func (c *Controller) filename(format encoder.Format) string {
	prefix := strings.TrimSpace(c.prefix)
	if prefix == "" {
		prefix = DefaultExportPrefix
	}
	return prefix + "." + format.Extension()
}

// CopyCurrent writes the templated payload of the current request (not the
// image) to cb. It does not depend on any generation having happened.
func (c *Controller) CopyCurrent(ctx context.Context, cb Clipboard) (string, error) {
	text := payload.Template(c.Current())

	if err := cb.WriteText(ctx, text); err != nil {
		clipErr := &ClipboardError{Err: err}
		fields := logger.Fields{"error": err.Error(), "kind": string(c.Current().Kind())}
		logger.Warn("Clipboard write failed", fields)
		// denials are not errors of ours but are worth counting
		logger.LogToSentry(sentry.LevelWarning, "Clipboard write failed", fields)
		c.notifier.Notify(notify.Error("Copy failed", clipErr.UserMessage()))
		return "", clipErr
	}

	c.mu.Lock()
	c.stats.Copies++
	c.mu.Unlock()

	c.notifier.Notify(notify.Success("Copied", "Content copied to clipboard."))
	return text, nil
}
