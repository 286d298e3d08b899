package encoder

import (
	"encoding/base64"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Format selects raster (PNG) or vector (SVG) output
type Format string

const (
	FormatRaster Format = "raster"
	FormatVector Format = "vector"
)

// ParseFormat accepts the format names and the file extensions
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "raster", "png":
		return FormatRaster, nil
	case "vector", "svg":
		return FormatVector, nil
	}
	return "", fmt.Errorf("unsupported output format %q", s)
}

// Extension returns the file extension used for downloads
func (f Format) Extension() string {
	if f == FormatVector {
		return "svg"
	}
	return "png"
}

// MIME returns the content type of encoded data in this format
func (f Format) MIME() string {
	if f == FormatVector {
		return "image/svg+xml"
	}
	return "image/png"
}

// Level is the QR error-correction level
type Level string

const (
	LevelL Level = "L"
	LevelM Level = "M"
	LevelQ Level = "Q"
	LevelH Level = "H"
)

func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelL:
		return LevelL, nil
	case LevelM:
		return LevelM, nil
	case LevelQ:
		return LevelQ, nil
	case LevelH:
		return LevelH, nil
	}
	return "", fmt.Errorf("unsupported error-correction level %q", s)
}

const (
	DefaultWidth  = 256
	DefaultMargin = 2
)

// Options configures a single encode call
type Options struct {
	Width      int // output width and height in pixels
	Margin     int // quiet zone in modules
	Foreground color.RGBA
	Background color.RGBA
	Level      Level
	Format     Format
}

// DefaultOptions returns 256px, 2-module margin, black on white, level M, PNG
func DefaultOptions() Options {
	return Options{
		Width:      DefaultWidth,
		Margin:     DefaultMargin,
		Foreground: color.RGBA{A: 0xff},
		Background: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Level:      LevelM,
		Format:     FormatRaster,
	}
}

// WithFormat returns a copy of o producing f
func (o Options) WithFormat(f Format) Options {
	o.Format = f
	return o
}

// Result is an immutable encoded QR image
type Result struct {
	Format Format
	data   []byte
}

// NewResult copies data so later changes to the caller's slice are not observed
func NewResult(format Format, data []byte) Result {
	return Result{Format: format, data: append([]byte(nil), data...)}
}

// Bytes returns a copy of the encoded image
func (r Result) Bytes() []byte {
	return append([]byte(nil), r.data...)
}

// Len is the encoded size in bytes
func (r Result) Len() int {
	return len(r.data)
}

func (r Result) IsZero() bool {
	return len(r.data) == 0
}

// MIME returns the content type of the encoded image
func (r Result) MIME() string {
	return r.Format.MIME()
}

// DataURI returns the image as a data URI suitable for an <img> src
func (r Result) DataURI() string {
	if r.IsZero() {
		return ""
	}
	return "data:" + r.MIME() + ";base64," + base64.StdEncoding.EncodeToString(r.data)
}

// Markup returns the SVG document for vector results, empty otherwise
func (r Result) Markup() string {
	if r.Format != FormatVector {
		return ""
	}
	return string(r.data)
}

// HexColor formats c as #rrggbb
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHexColor parses #rgb or #rrggbb
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q: expected 3 or 6 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
