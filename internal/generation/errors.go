package generation

import (
	"errors"
	"fmt"

	"github.com/Conceptual-Machines/qrious/internal/encoder"
)

// ErrNothingToExport is returned by a raster export before any code is ready
var ErrNothingToExport = errors.New("no generated QR code to export")

// ExportError wraps a failed rasterization or vector re-encode
type ExportError struct {
	Format encoder.Format
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

func (e *ExportError) UserMessage() string {
	return "Could not download the QR code."
}

// ClipboardError wraps a rejected clipboard write
type ClipboardError struct {
	Err error
}

func (e *ClipboardError) Error() string {
	return fmt.Sprintf("clipboard: %v", e.Err)
}

func (e *ClipboardError) Unwrap() error {
	return e.Err
}

func (e *ClipboardError) UserMessage() string {
	return "Could not copy to clipboard."
}

// UserMessage returns the short text to show for err, or a generic one
func UserMessage(err error) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return "Something went wrong."
}
