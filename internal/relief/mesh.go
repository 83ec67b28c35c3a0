// Package relief turns an image plus a depth field into a displaced,
// textured triangle mesh.
package relief

import (
	"image"

	"github.com/go-gl/mathgl/mgl64"
)

// Vertex is one mesh vertex. Position and Normal are model space; UV is the
// texture coordinate with (0,0) at the bottom-left of the image.
type Vertex struct {
	Position mgl64.Vec3
	UV       mgl64.Vec2
	Normal   mgl64.Vec3
}

// Grid is an indexed triangle grid. Vertices run row-major from the top-left
// corner; each quad contributes two counter-clockwise triangles facing +Z.
type Grid struct {
	WidthSegs  int
	HeightSegs int
	Vertices   []Vertex
	Indices    []uint32
}

// Mesh is a displaced grid plus the textures that skin it. BackTexture is
// optional; when set, back-facing triangles are drawn with it so the image
// does not read mirrored from behind.
type Mesh struct {
	Grid
	PlaneW      float64
	PlaneH      float64
	Texture     *image.NRGBA
	BackTexture *image.NRGBA
}

// MirrorX returns a horizontally flipped copy of img.
func MirrorX(img *image.NRGBA) *image.NRGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetNRGBA(x, y, img.NRGBAAt(w-1-x, y))
		}
	}
	return out
}
