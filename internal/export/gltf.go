// Package export serializes relief meshes and rendered frames into
// portable artifacts: binary glTF scenes and image snapshots.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"photorelief/internal/relief"
)

var (
	ErrNoMesh  = errors.New("export: no mesh to export")
	ErrNoFrame = errors.New("export: renderer has no frame")
)

// GLBFilename is the suggested download name for interchange bytes.
const GLBFilename = "model.glb"

// GLB encodes the mesh as a self-contained binary glTF scene: geometry,
// a double-sided material and the embedded PNG texture. The V coordinate
// is flipped because glTF puts the texture origin at the top-left.
func GLB(m *relief.Mesh) ([]byte, error) {
	if m == nil || len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return nil, ErrNoMesh
	}

	positions := make([][3]float32, len(m.Vertices))
	normals := make([][3]float32, len(m.Vertices))
	uvs := make([][2]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		positions[i] = [3]float32{float32(v.Position[0]), float32(v.Position[1]), float32(v.Position[2])}
		normals[i] = [3]float32{float32(v.Normal[0]), float32(v.Normal[1]), float32(v.Normal[2])}
		uvs[i] = [2]float32{float32(v.UV[0]), float32(1 - v.UV[1])}
	}

	doc := gltf.NewDocument()
	posIdx := modeler.WritePosition(doc, positions)
	nrmIdx := modeler.WriteNormal(doc, normals)
	uvIdx := modeler.WriteTextureCoord(doc, uvs)
	indIdx := modeler.WriteIndices(doc, m.Indices)

	prim := &gltf.Primitive{
		Attributes: map[string]int{
			gltf.POSITION:   posIdx,
			gltf.NORMAL:     nrmIdx,
			gltf.TEXCOORD_0: uvIdx,
		},
		Indices: gltf.Index(indIdx),
	}

	if m.Texture != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, m.Texture); err != nil {
			return nil, fmt.Errorf("export: encode texture: %w", err)
		}
		imgIdx, err := modeler.WriteImage(doc, "photo", "image/png", &buf)
		if err != nil {
			return nil, fmt.Errorf("export: embed texture: %w", err)
		}
		doc.Textures = append(doc.Textures, &gltf.Texture{Source: gltf.Index(imgIdx)})
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name:        "photo",
			DoubleSided: true,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorTexture: &gltf.TextureInfo{Index: len(doc.Textures) - 1},
				MetallicFactor:   gltf.Float(0),
			},
		})
		prim.Material = gltf.Index(len(doc.Materials) - 1)
	}

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name:       "relief",
		Primitives: []*gltf.Primitive{prim},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name: "relief",
		Mesh: gltf.Index(len(doc.Meshes) - 1),
	})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)

	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("export: encode glb: %w", err)
	}
	return out.Bytes(), nil
}
