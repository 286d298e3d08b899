package generation

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/Conceptual-Machines/qrious/internal/encoder"
)

// Card geometry matching the result panel on the page
const (
	framePadding = 24
	frameBorder  = 2
	frameFooter  = 8
)

var (
	frameBorderColor = color.RGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}
	frameAccentColor = color.RGBA{R: 0x25, G: 0x63, B: 0xeb, A: 0xff}
)

// composeFrame draws the raster result on a padded card with a border and
// an accent footer, the way the code is displayed.
func composeFrame(res encoder.Result, opts encoder.Options) ([]byte, error) {
	if res.Format != encoder.FormatRaster || res.IsZero() {
		return nil, fmt.Errorf("result is not a raster image")
	}

	qr, err := png.Decode(bytes.NewReader(res.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}

	b := qr.Bounds()
	inset := frameBorder + framePadding
	w := b.Dx() + 2*inset
	h := b.Dy() + 2*inset + frameFooter

	card := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(card, card.Bounds(), &image.Uniform{C: frameBorderColor}, image.Point{}, draw.Src)

	inner := image.Rect(frameBorder, frameBorder, w-frameBorder, h-frameBorder)
	draw.Draw(card, inner, &image.Uniform{C: opts.Background}, image.Point{}, draw.Src)

	footer := image.Rect(frameBorder, h-frameBorder-frameFooter, w-frameBorder, h-frameBorder)
	draw.Draw(card, footer, &image.Uniform{C: frameAccentColor}, image.Point{}, draw.Src)

	dst := image.Rect(inset, inset, inset+b.Dx(), inset+b.Dy())
	draw.Draw(card, dst, qr, b.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, card); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
