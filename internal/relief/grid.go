package relief

import "github.com/go-gl/mathgl/mgl64"

// NewGrid builds a flat planeW×planeH plane in the XY plane centred on the
// origin, subdivided into widthSegs×heightSegs quads. V runs from 1 at the
// top row to 0 at the bottom so UVs follow image row order.
func NewGrid(widthSegs, heightSegs int, planeW, planeH float64) Grid {
	cols := widthSegs + 1
	rows := heightSegs + 1

	verts := make([]Vertex, 0, cols*rows)
	for j := 0; j < rows; j++ {
		v := 1 - float64(j)/float64(heightSegs)
		y := planeH * (v - 0.5)
		for i := 0; i < cols; i++ {
			u := float64(i) / float64(widthSegs)
			x := planeW * (u - 0.5)
			verts = append(verts, Vertex{
				Position: mgl64.Vec3{x, y, 0},
				UV:       mgl64.Vec2{u, v},
				Normal:   mgl64.Vec3{0, 0, 1},
			})
		}
	}

	idx := make([]uint32, 0, widthSegs*heightSegs*6)
	for j := 0; j < heightSegs; j++ {
		for i := 0; i < widthSegs; i++ {
			i0 := uint32(j*cols + i)
			i1 := i0 + 1
			i2 := uint32((j+1)*cols + i)
			i3 := i2 + 1
			idx = append(idx, i0, i2, i1, i1, i2, i3)
		}
	}

	return Grid{
		WidthSegs:  widthSegs,
		HeightSegs: heightSegs,
		Vertices:   verts,
		Indices:    idx,
	}
}

// RecomputeNormals rebuilds every vertex normal by accumulating the face
// normals of adjacent triangles and normalizing the sum. Degenerate
// vertices fall back to +Z.
func (g *Grid) RecomputeNormals() {
	acc := make([]mgl64.Vec3, len(g.Vertices))
	for t := 0; t+2 < len(g.Indices); t += 3 {
		ia, ib, ic := g.Indices[t], g.Indices[t+1], g.Indices[t+2]
		a := g.Vertices[ia].Position
		fn := g.Vertices[ib].Position.Sub(a).Cross(g.Vertices[ic].Position.Sub(a))
		acc[ia] = acc[ia].Add(fn)
		acc[ib] = acc[ib].Add(fn)
		acc[ic] = acc[ic].Add(fn)
	}
	for i := range g.Vertices {
		if n := acc[i]; n.Len() > 1e-12 {
			g.Vertices[i].Normal = n.Normalize()
		} else {
			g.Vertices[i].Normal = mgl64.Vec3{0, 0, 1}
		}
	}
}
