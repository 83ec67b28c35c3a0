package relief

import (
	"image"

	"photorelief/internal/depth"
)

// Options controls mesh construction.
type Options struct {
	BaseSegments int     // quads along a unit plane axis; default 100
	HeightScale  float64 // displacement of a fully near depth sample; default 0.5
	MirrorBack   bool    // attach a mirrored texture for the back face
}

// Build constructs the relief mesh for img using the given depth field.
// The longer image side maps to unit plane length; near (dark) depth
// samples protrude toward +Z. Building is deterministic: the same inputs
// always produce the same vertices and normals.
func Build(img *image.NRGBA, field *depth.Field, opts Options) *Mesh {
	if opts.BaseSegments <= 0 {
		opts.BaseSegments = 100
	}
	if opts.HeightScale <= 0 {
		opts.HeightScale = 0.5
	}

	imgW, imgH := img.Rect.Dx(), img.Rect.Dy()
	aspect := float64(imgW) / float64(imgH)

	planeW, planeH := 1.0, 1.0
	if aspect >= 1 {
		planeW = aspect
	} else {
		planeH = 1 / aspect
	}

	grid := NewGrid(
		segments(opts.BaseSegments, planeW),
		segments(opts.BaseSegments, planeH),
		planeW, planeH,
	)

	for i := range grid.Vertices {
		vert := &grid.Vertices[i]
		px := int(vert.UV[0] * float64(imgW-1))
		py := int((1 - vert.UV[1]) * float64(imgH-1))
		d := field.Sample(px, py, imgW, imgH)
		vert.Position[2] = (1 - d) * opts.HeightScale
	}
	grid.RecomputeNormals()

	m := &Mesh{
		Grid:    grid,
		PlaneW:  planeW,
		PlaneH:  planeH,
		Texture: img,
	}
	if opts.MirrorBack {
		m.BackTexture = MirrorX(img)
	}
	return m
}

// segments scales the subdivision count with plane length on the elongated
// axis, floored, never below 10.
func segments(base int, planeDim float64) int {
	n := base
	if planeDim > 1 {
		n = int(float64(base) * planeDim)
	}
	if n < 10 {
		n = 10
	}
	return n
}
