package depth

import (
	"image"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HeatMap renders the field as a false-color image for inspection.
// Near depth maps to red, far depth to blue.
func (f *Field) HeatMap() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.W, f.H))
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			d := float64(f.Pix[y*f.W+x]) / 255
			r, g, b := colorful.Hsv(240*d, 1, 1).RGB255()
			i := y*img.Stride + x*4
			img.Pix[i] = r
			img.Pix[i+1] = g
			img.Pix[i+2] = b
			img.Pix[i+3] = 255
		}
	}
	return img
}
