// Package encoder wraps the external QR libraries behind a single Encoder
// that renders PNG or SVG images from a payload string.
package encoder

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Encoder turns a payload into an image. Implementations must be safe for
// concurrent use.
type Encoder interface {
	Encode(ctx context.Context, payload string, opts Options) (Result, error)
}

// EncodingError is returned when the QR library rejects the payload,
// e.g. because it is too long for the selected error-correction level.
type EncodingError struct {
	Backend string
	Err     error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s: encode QR: %v", e.Backend, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// UserMessage is the generic text shown for any encoding failure
func (e *EncodingError) UserMessage() string {
	return "Could not generate QR code."
}

// Matrix is a square grid of modules, true for dark
type Matrix [][]bool

func (m Matrix) Size() int {
	return len(m)
}

// MatrixSource builds the module matrix (without quiet zone) for a payload
type MatrixSource interface {
	Name() string
	Matrix(payload string, level Level) (Matrix, error)
}

// Backend names accepted by NewBackend
const (
	BackendGoQRCode = "goqrcode"
	BackendRSC      = "rsc"
)

// NewBackend returns the matrix source registered under name
func NewBackend(name string) (MatrixSource, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendGoQRCode:
		return GoQRCode{}, nil
	case BackendRSC:
		return RSCQR{}, nil
	}
	return nil, fmt.Errorf("unknown QR backend %q", name)
}

// QREncoder renders matrices from a MatrixSource into images
type QREncoder struct {
	source MatrixSource
}

// New creates an encoder over source
func New(source MatrixSource) *QREncoder {
	return &QREncoder{source: source}
}

// Backend returns the name of the underlying matrix source
func (e *QREncoder) Backend() string {
	return e.source.Name()
}

var errEmptyMatrix = errors.New("empty QR matrix")

func (e *QREncoder) Encode(ctx context.Context, payload string, opts Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	m, err := e.source.Matrix(payload, opts.Level)
	if err != nil {
		return Result{}, &EncodingError{Backend: e.source.Name(), Err: err}
	}
	if m.Size() == 0 {
		return Result{}, &EncodingError{Backend: e.source.Name(), Err: errEmptyMatrix}
	}

	switch opts.Format {
	case FormatVector:
		return NewResult(FormatVector, renderSVG(m, opts)), nil
	default:
		data, err := renderPNG(m, opts)
		if err != nil {
			return Result{}, &EncodingError{Backend: e.source.Name(), Err: err}
		}
		return NewResult(FormatRaster, data), nil
	}
}
