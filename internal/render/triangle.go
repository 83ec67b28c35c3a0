package render

import (
	"image"
	"math"
)

// Triangle rasterizes one textured, Gouraud-shaded triangle. xs/ys are
// screen coordinates, zs view-space depths (larger is closer), us/vs
// texture coordinates and shades the per-vertex light intensities.
//
// This is the hot path: no allocation in the pixel loop. Fully transparent
// texels are skipped so cut-out textures leave the background visible.
func (fb *FrameBuffer) Triangle(
	xs, ys, zs [3]float64,
	us, vs [3]float64,
	shades [3]float64,
	tex *image.NRGBA,
) {
	x0, y0, z0 := xs[0], ys[0], zs[0]
	x1, y1, z1 := xs[1], ys[1], zs[1]
	x2, y2, z2 := xs[2], ys[2], zs[2]

	minX := int(math.Min(math.Min(x0, x1), x2))
	maxX := int(math.Max(math.Max(x0, x1), x2)) + 1
	minY := int(math.Min(math.Min(y0, y1), y2))
	maxY := int(math.Max(math.Max(y0, y1), y2)) + 1

	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			var cr, cg, cb, ca uint8 = 200, 200, 205, 255
			if tex != nil {
				u := w0*us[0] + w1*us[1] + w2*us[2]
				v := w0*vs[0] + w1*vs[1] + w2*vs[2]
				cr, cg, cb, ca = sampleBilinear(tex, u, v)
			}
			if ca < 8 {
				continue
			}
			fb.ZBuf[zIdx] = z

			shade := w0*shades[0] + w1*shades[1] + w2*shades[2]

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = clamp255(float64(cr) * shade)
			fb.Color[pxIdx+1] = clamp255(float64(cg) * shade)
			fb.Color[pxIdx+2] = clamp255(float64(cb) * shade)
			fb.Color[pxIdx+3] = 255
		}
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
