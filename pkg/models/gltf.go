package models

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/prism/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into a single Mesh.
type GLTFLoader struct {
	// CalculateNormals fills in smooth normals when the file has none.
	CalculateNormals bool
	// ComputeTangents derives tangents when the file has none.
	ComputeTangents bool
	// LoadTextures decodes the first primitive's base color and normal
	// images into the mesh material.
	LoadTextures bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		ComputeTangents:  true,
		LoadTextures:     true,
	}
}

// LoadGLTF loads a .gltf or .glb file with default options.
func LoadGLTF(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// primitive is the decoded geometry of one glTF primitive.
type primitive struct {
	vertices []Vertex
	indices  []uint32
	topology Topology
	material *int
}

// Load loads a GLTF or GLB file and returns a Mesh. The file's
// right-handed coordinates are mirrored on Z into the left-handed space
// the renderer uses, and triangle winding is reversed to match.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	var prims []primitive
	for _, m := range doc.Meshes {
		for i, p := range m.Primitives {
			prim, ok, err := readPrimitive(doc, p)
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", m.Name, i, err)
			}
			if ok {
				prims = append(prims, prim)
			}
		}
	}

	mesh := NewMesh(filepath.Base(path), nil, nil, TriangleList)
	mergePrimitives(mesh, prims)

	hasNormals, hasTangents := false, false
	for _, v := range mesh.Vertices {
		hasNormals = hasNormals || v.Normal.LenSq() > 1e-6
		hasTangents = hasTangents || v.Tangent.LenSq() > 1e-6
	}
	if l.CalculateNormals && !hasNormals {
		mesh.CalculateSmoothNormals()
	}
	if l.ComputeTangents && !hasTangents {
		mesh.ComputeTangents()
	}

	if l.LoadTextures && len(prims) > 0 && prims[0].material != nil {
		mesh.Material = readMaterial(doc, *prims[0].material, filepath.Dir(path))
	}

	mesh.CalculateBounds()
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

// mergePrimitives appends every primitive into mesh. A lone strip stays a
// strip; anything else is flattened into one triangle list.
func mergePrimitives(mesh *Mesh, prims []primitive) {
	if len(prims) == 1 {
		mesh.Vertices = prims[0].vertices
		mesh.Indices = prims[0].indices
		mesh.Topology = prims[0].topology
		return
	}
	for _, p := range prims {
		base := uint32(len(mesh.Vertices))
		mesh.Vertices = append(mesh.Vertices, p.vertices...)
		indices := p.indices
		if p.topology == TriangleStrip {
			indices = ExpandStrip(indices)
		}
		for _, idx := range indices {
			mesh.Indices = append(mesh.Indices, base+idx)
		}
	}
	mesh.Topology = TriangleList
}

// readPrimitive decodes a triangle primitive. Points and lines report
// ok == false.
func readPrimitive(doc *gltf.Document, p *gltf.Primitive) (prim primitive, ok bool, err error) {
	switch p.Mode {
	case gltf.PrimitiveTriangles:
		prim.topology = TriangleList
	case gltf.PrimitiveTriangleStrip:
		prim.topology = TriangleStrip
	default:
		return prim, false, nil
	}

	posIdx, found := p.Attributes[gltf.POSITION]
	if !found {
		return prim, false, nil
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return prim, false, fmt.Errorf("read positions: %w", err)
	}

	var normals [][3]float32
	if idx, found := p.Attributes[gltf.NORMAL]; found {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return prim, false, fmt.Errorf("read normals: %w", err)
		}
	}
	var tangents [][4]float32
	if idx, found := p.Attributes[gltf.TANGENT]; found {
		if tangents, err = modeler.ReadTangent(doc, doc.Accessors[idx], nil); err != nil {
			return prim, false, fmt.Errorf("read tangents: %w", err)
		}
	}
	var uvs [][2]float32
	if idx, found := p.Attributes[gltf.TEXCOORD_0]; found {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return prim, false, fmt.Errorf("read uvs: %w", err)
		}
	}
	var colors [][4]uint8
	if idx, found := p.Attributes[gltf.COLOR_0]; found {
		if colors, err = modeler.ReadColor(doc, doc.Accessors[idx], nil); err != nil {
			return prim, false, fmt.Errorf("read colors: %w", err)
		}
	}

	prim.vertices = make([]Vertex, len(positions))
	for i, pos := range positions {
		v := Vertex{
			Position: mirrorZ(pos[0], pos[1], pos[2]),
			Color:    math3d.Gray(1),
		}
		if i < len(normals) {
			v.Normal = mirrorZ(normals[i][0], normals[i][1], normals[i][2])
		}
		if i < len(tangents) {
			v.Tangent = mirrorZ(tangents[i][0], tangents[i][1], tangents[i][2])
		}
		if i < len(uvs) {
			// glTF and this renderer both put V=0 on the top image row.
			v.UV = math3d.V2(float64(uvs[i][0]), float64(uvs[i][1]))
		}
		if i < len(colors) {
			v.Color = math3d.ColorFromBytes(colors[i][0], colors[i][1], colors[i][2])
		}
		prim.vertices[i] = v
	}

	if p.Indices != nil {
		if prim.indices, err = modeler.ReadIndices(doc, doc.Accessors[*p.Indices], nil); err != nil {
			return prim, false, fmt.Errorf("read indices: %w", err)
		}
	} else {
		prim.indices = make([]uint32, len(positions))
		for i := range prim.indices {
			prim.indices[i] = uint32(i)
		}
	}

	prim.indices = flipWinding(prim.indices, prim.topology)
	prim.material = p.Material
	return prim, true, nil
}

// mirrorZ converts a right-handed glTF vector into the left-handed space.
func mirrorZ(x, y, z float32) math3d.Vec3 {
	return math3d.V3(float64(x), float64(y), -float64(z))
}

// flipWinding turns glTF's counter-clockwise front faces into the
// clockwise order the rasterizer draws. Mirroring Z alone keeps the
// on-screen orientation. A strip gets its first index repeated, which adds
// one degenerate triangle and shifts the parity of every triangle after it.
func flipWinding(indices []uint32, topology Topology) []uint32 {
	if topology == TriangleStrip {
		if len(indices) == 0 {
			return indices
		}
		return append([]uint32{indices[0]}, indices...)
	}
	for i := 0; i+2 < len(indices); i += 3 {
		indices[i+1], indices[i+2] = indices[i+2], indices[i+1]
	}
	return indices
}

// readMaterial decodes the base color and normal images of material idx.
// Images that cannot be found or decoded are left nil.
func readMaterial(doc *gltf.Document, idx int, dir string) Material {
	if idx < 0 || idx >= len(doc.Materials) {
		return Material{}
	}
	src := doc.Materials[idx]
	mat := Material{Name: src.Name, BaseColor: [4]float64{1, 1, 1, 1}}

	if pbr := src.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			for i, c := range pbr.BaseColorFactor {
				mat.BaseColor[i] = float64(c)
			}
		}
		if pbr.BaseColorTexture != nil {
			mat.DiffuseMap = readTextureImage(doc, pbr.BaseColorTexture.Index, dir)
		}
	}
	if nt := src.NormalTexture; nt != nil && nt.Index != nil {
		mat.NormalMap = readTextureImage(doc, *nt.Index, dir)
	}
	return mat
}

func readTextureImage(doc *gltf.Document, texIdx int, dir string) image.Image {
	if texIdx < 0 || texIdx >= len(doc.Textures) || doc.Textures[texIdx].Source == nil {
		return nil
	}
	imgIdx := *doc.Textures[texIdx].Source
	if imgIdx < 0 || imgIdx >= len(doc.Images) {
		return nil
	}

	data := imageBytes(doc, doc.Images[imgIdx], dir)
	if len(data) == 0 {
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return img
}

func imageBytes(doc *gltf.Document, img *gltf.Image, dir string) []byte {
	switch {
	case img.BufferView != nil:
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if buf.Data == nil {
			return nil
		}
		return buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	case img.IsEmbeddedResource():
		data, err := img.MarshalData()
		if err != nil {
			return nil
		}
		return data
	case img.URI != "":
		data, err := os.ReadFile(filepath.Join(dir, img.URI))
		if err != nil {
			return nil
		}
		return data
	}
	return nil
}
