package encoder

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
)

// canvasSize returns the module count including quiet zone and the output
// width in pixels. Width never drops below one pixel per module.
func canvasSize(m Matrix, opts Options) (modules, width int) {
	margin := opts.Margin
	if margin < 0 {
		margin = 0
	}
	modules = m.Size() + 2*margin
	width = opts.Width
	if width < modules {
		width = modules
	}
	return modules, width
}

// dark reports whether module (mx, my), in quiet-zone coordinates, is dark
func dark(m Matrix, margin, mx, my int) bool {
	x, y := mx-margin, my-margin
	if x < 0 || y < 0 || x >= m.Size() || y >= m.Size() {
		return false
	}
	return m[y][x]
}

func renderPNG(m Matrix, opts Options) ([]byte, error) {
	modules, width := canvasSize(m, opts)
	margin := (modules - m.Size()) / 2

	palette := color.Palette{opts.Background, opts.Foreground}
	img := image.NewPaletted(image.Rect(0, 0, width, width), palette)

	for py := 0; py < width; py++ {
		my := py * modules / width
		for px := 0; px < width; px++ {
			mx := px * modules / width
			if dark(m, margin, mx, my) {
				img.SetColorIndex(px, py, 1)
			}
		}
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// renderSVG draws the matrix as a single path in module units scaled to
// opts.Width by the viewBox
func renderSVG(m Matrix, opts Options) []byte {
	modules, width := canvasSize(m, opts)
	margin := (modules - m.Size()) / 2

	var sb strings.Builder
	fmt.Fprintf(&sb,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`,
		width, width, modules, modules,
	)
	fmt.Fprintf(&sb, `<path fill="%s" d="M0 0h%dv%dH0z"/>`, HexColor(opts.Background), modules, modules)

	sb.WriteString(`<path stroke="`)
	sb.WriteString(HexColor(opts.Foreground))
	sb.WriteString(`" d="`)
	for y := 0; y < m.Size(); y++ {
		// horizontal runs of dark modules, stroked through the row centre
		for x := 0; x < m.Size(); {
			if !m[y][x] {
				x++
				continue
			}
			start := x
			for x < m.Size() && m[y][x] {
				x++
			}
			fmt.Fprintf(&sb, "M%d %d.5h%d", start+margin, y+margin, x-start)
		}
	}
	sb.WriteString(`"/></svg>`)
	sb.WriteString("\n")
	return []byte(sb.String())
}
