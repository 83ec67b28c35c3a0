// Package depth holds per-pixel depth fields and the brush editor that
// authors them. A field stores one byte per pixel; 0 is the nearest depth
// (full relief) and 255 the farthest (flat).
package depth

import "image"

// Field is a W×H grid of depth samples. Authored marks fields produced by
// hand editing rather than luminance extraction.
type Field struct {
	W, H     int
	Pix      []uint8
	Authored bool
}

// NewField returns a field of the given size filled with far depth (255).
func NewField(w, h int) *Field {
	pix := make([]uint8, w*h)
	for i := range pix {
		pix[i] = 255
	}
	return &Field{W: w, H: h, Pix: pix}
}

// At returns the depth at (x, y) normalized to [0, 1].
// Coordinates are clamped to the field bounds.
func (f *Field) At(x, y int) float64 {
	return float64(f.Pix[f.offset(x, y)]) / 255
}

// Set writes a raw depth byte at (x, y), clamping coordinates.
func (f *Field) Set(x, y int, v uint8) {
	f.Pix[f.offset(x, y)] = v
}

// Sample reads the depth for pixel (x, y) of a w×h buffer. When the field
// was authored at a different resolution the coordinates are rescaled
// proportionally and the nearest sample is returned.
func (f *Field) Sample(x, y, w, h int) float64 {
	if w != f.W {
		x = x * f.W / w
	}
	if h != f.H {
		y = y * f.H / h
	}
	return f.At(x, y)
}

// Clone returns an independent copy of the field.
func (f *Field) Clone() *Field {
	pix := make([]uint8, len(f.Pix))
	copy(pix, f.Pix)
	return &Field{W: f.W, H: f.H, Pix: pix, Authored: f.Authored}
}

func (f *Field) offset(x, y int) int {
	if x < 0 {
		x = 0
	} else if x >= f.W {
		x = f.W - 1
	}
	if y < 0 {
		y = 0
	} else if y >= f.H {
		y = f.H - 1
	}
	return y*f.W + x
}

// FromLuminance extracts a depth field from an image using the Rec.601
// luma weights. Dark pixels map to near depth, so they gain relief.
func FromLuminance(img *image.NRGBA) *Field {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	f := &Field{W: w, H: h, Pix: make([]uint8, w*h)}
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			r := float64(row[x*4])
			g := float64(row[x*4+1])
			b := float64(row[x*4+2])
			f.Pix[y*w+x] = uint8(0.299*r + 0.587*g + 0.114*b + 0.5)
		}
	}
	return f
}
