package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"golang.org/x/image/webp"

	"photorelief/internal/depth"
	"photorelief/internal/relief"
	"photorelief/internal/render"
)

func testMesh(t *testing.T) *relief.Mesh {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 30), uint8(y * 30), 128, 255})
		}
	}
	return relief.Build(img, depth.FromLuminance(img), relief.Options{BaseSegments: 10})
}

func TestGLBRejectsEmptyMesh(t *testing.T) {
	if _, err := GLB(nil); err != ErrNoMesh {
		t.Errorf("GLB(nil) = %v; want ErrNoMesh", err)
	}
	if _, err := GLB(&relief.Mesh{}); err != ErrNoMesh {
		t.Errorf("GLB(empty) = %v; want ErrNoMesh", err)
	}
}

func TestGLBRoundTrip(t *testing.T) {
	mesh := testMesh(t)
	blob, err := GLB(mesh)
	if err != nil {
		t.Fatalf("GLB: %v", err)
	}
	if len(blob) < 12 || string(blob[:4]) != "glTF" {
		t.Fatal("output does not start with the GLB magic")
	}

	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(blob)).Decode(doc); err != nil {
		t.Fatalf("decode GLB: %v", err)
	}

	if len(doc.Meshes) != 1 || len(doc.Meshes[0].Primitives) != 1 {
		t.Fatalf("document has %d meshes; want 1 with 1 primitive", len(doc.Meshes))
	}
	prim := doc.Meshes[0].Primitives[0]

	posAcc := doc.Accessors[prim.Attributes[gltf.POSITION]]
	if posAcc.Count != len(mesh.Vertices) {
		t.Errorf("position count = %d; want %d", posAcc.Count, len(mesh.Vertices))
	}
	nrmAcc := doc.Accessors[prim.Attributes[gltf.NORMAL]]
	if nrmAcc.Count != len(mesh.Vertices) {
		t.Errorf("normal count = %d; want %d", nrmAcc.Count, len(mesh.Vertices))
	}
	uvAcc := doc.Accessors[prim.Attributes[gltf.TEXCOORD_0]]
	if uvAcc.Count != len(mesh.Vertices) {
		t.Errorf("uv count = %d; want %d", uvAcc.Count, len(mesh.Vertices))
	}
	if prim.Indices == nil {
		t.Fatal("primitive has no index accessor")
	}
	idxAcc := doc.Accessors[*prim.Indices]
	if idxAcc.Count != len(mesh.Indices) {
		t.Errorf("index count = %d; want %d", idxAcc.Count, len(mesh.Indices))
	}

	// The first vertex is the top-left corner: internal UV (0,1) must come
	// back V-flipped for glTF.
	uvs, err := modeler.ReadTextureCoord(doc, uvAcc, nil)
	if err != nil {
		t.Fatalf("read uvs: %v", err)
	}
	if uvs[0][0] != 0 || uvs[0][1] != 0 {
		t.Errorf("first UV = %v; want (0,0) after V flip", uvs[0])
	}

	if prim.Material == nil {
		t.Fatal("primitive has no material")
	}
	mat := doc.Materials[*prim.Material]
	if !mat.DoubleSided {
		t.Error("material is not double-sided")
	}
	if mat.PBRMetallicRoughness == nil || mat.PBRMetallicRoughness.BaseColorTexture == nil {
		t.Fatal("material has no base color texture")
	}
	tex := doc.Textures[mat.PBRMetallicRoughness.BaseColorTexture.Index]
	if tex.Source == nil {
		t.Fatal("texture has no image source")
	}
	img := doc.Images[*tex.Source]
	if img.BufferView == nil {
		t.Error("texture image is not embedded in the binary chunk")
	}
}

func testRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	r, err := render.New(testMesh(t), render.Config{Width: 64, Height: 40})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestSnapshotPNG(t *testing.T) {
	r := testRenderer(t)
	defer r.Close()

	if _, err := Snapshot(r); err != ErrNoFrame {
		t.Fatalf("Snapshot before render = %v; want ErrNoFrame", err)
	}

	if err := r.RenderFrame(); err != nil {
		t.Fatal(err)
	}
	blob, err := Snapshot(r)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(blob))
	if err != nil {
		t.Fatalf("snapshot is not valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 40 {
		t.Errorf("snapshot size = %v; want 64x40", img.Bounds())
	}
}

func TestSnapshotWebP(t *testing.T) {
	r := testRenderer(t)
	defer r.Close()
	if err := r.RenderFrame(); err != nil {
		t.Fatal(err)
	}

	blob, err := SnapshotWebP(r)
	if err != nil {
		t.Fatalf("SnapshotWebP: %v", err)
	}
	img, err := webp.Decode(bytes.NewReader(blob))
	if err != nil {
		t.Fatalf("snapshot is not valid WebP: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 40 {
		t.Errorf("snapshot size = %v; want 64x40", img.Bounds())
	}
}

func TestSnapshotAfterClose(t *testing.T) {
	r := testRenderer(t)
	if err := r.RenderFrame(); err != nil {
		t.Fatal(err)
	}
	r.Close()
	if _, err := Snapshot(r); err != ErrNoFrame {
		t.Errorf("Snapshot after Close = %v; want ErrNoFrame", err)
	}
}
