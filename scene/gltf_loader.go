package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"landscape-engine/core"
	"landscape-engine/math"
)

// ErrNoGeometry is returned when a model file parses but holds no drawable mesh.
var ErrNoGeometry = errors.New("model has no geometry")

// LoadGLTF opens a .glb or .gltf file and returns its scene graph under a
// single group node named after the file. Every glTF node becomes a group;
// each triangle primitive becomes a mesh child of it. Base colour factors and
// textures become tintable materials.
func LoadGLTF(path string) (*Node, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	root, err := newGLTFBuilder(doc, filepath.Dir(path)).build()
	if err != nil {
		return nil, fmt.Errorf("gltf %q: %w", path, err)
	}
	root.Name = filepath.Base(path)
	return root, nil
}

// ParseGLTF decodes a glTF JSON or GLB stream. Buffers and images must be
// embedded; no files are opened.
func ParseGLTF(r io.Reader, name string) (*Node, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("gltf decode %q: %w", name, err)
	}
	root, err := newGLTFBuilder(doc, "").build()
	if err != nil {
		return nil, fmt.Errorf("gltf %q: %w", name, err)
	}
	root.Name = name
	return root, nil
}

// gltfBuilder converts one document, resolving shared textures, materials
// and meshes once each.
type gltfBuilder struct {
	doc *gltf.Document
	dir string // for external image URIs; empty disables them

	textures  []*Texture
	materials []*Material
	meshes    [][]*Mesh // per glTF mesh, one entry per triangle primitive
}

func newGLTFBuilder(doc *gltf.Document, dir string) *gltfBuilder {
	return &gltfBuilder{doc: doc, dir: dir}
}

func (b *gltfBuilder) build() (*Node, error) {
	b.loadTextures()
	b.loadMaterials()
	if err := b.loadMeshes(); err != nil {
		return nil, err
	}
	return b.assemble(), nil
}

// loadTextures decodes every referenced image. Images that fail to decode
// leave their slot nil and the material falls back to its colour factor.
func (b *gltfBuilder) loadTextures() {
	b.textures = make([]*Texture, len(b.doc.Textures))
	for i, gt := range b.doc.Textures {
		if gt.Source == nil || *gt.Source >= len(b.doc.Images) {
			continue
		}
		img := b.doc.Images[*gt.Source]
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("gltf_img_%d", *gt.Source)
		}

		switch {
		case img.BufferView != nil:
			raw, err := modeler.ReadBufferView(b.doc, b.doc.BufferViews[*img.BufferView])
			if err != nil {
				continue
			}
			b.textures[i], _ = DecodeTexture(name, bytes.NewReader(raw))
		case img.IsEmbeddedResource():
			raw, err := img.MarshalData()
			if err != nil {
				continue
			}
			b.textures[i], _ = DecodeTexture(name, bytes.NewReader(raw))
		case img.URI != "" && b.dir != "":
			b.textures[i], _ = LoadTexture(filepath.Join(b.dir, img.URI))
		}
	}
}

func (b *gltfBuilder) loadMaterials() {
	b.materials = make([]*Material, len(b.doc.Materials))
	for i, gm := range b.doc.Materials {
		mat := NewMaterial(gm.Name, core.ColorWhite)
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			mat.Albedo = core.Color{
				R: float32(cf[0]), G: float32(cf[1]),
				B: float32(cf[2]), A: float32(cf[3]),
			}
			if ti := pbr.BaseColorTexture; ti != nil && ti.Index < len(b.textures) {
				mat.AlbedoTexture = b.textures[ti.Index]
			}
		}
		if _, ok := gm.Extensions["KHR_materials_unlit"]; ok {
			mat.Unlit = true
		}
		b.materials[i] = mat
	}
}

// loadMeshes converts triangle primitives; other modes are skipped.
func (b *gltfBuilder) loadMeshes() error {
	b.meshes = make([][]*Mesh, len(b.doc.Meshes))
	count := 0
	for mi, gm := range b.doc.Meshes {
		for pi, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			m, err := b.primitive(gm.Name, pi, prim)
			if err != nil {
				return fmt.Errorf("mesh %d prim %d: %w", mi, pi, err)
			}
			if prim.Material != nil && *prim.Material < len(b.materials) {
				m.Material = b.materials[*prim.Material]
			} else {
				m.Material = DefaultMaterial()
			}
			b.meshes[mi] = append(b.meshes[mi], m)
			count++
		}
	}
	if count == 0 {
		return ErrNoGeometry
	}
	return nil
}

func (b *gltfBuilder) primitive(meshName string, index int, prim *gltf.Primitive) (*Mesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, index)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", index)
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(b.doc, b.doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(b.doc, b.doc.Accessors[idx], nil)
	}
	var uvs [][2]float32
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(b.doc, b.doc.Accessors[idx], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		verts[i] = core.Vertex{
			Position: math.Vec3{X: p[0], Y: p[1], Z: p[2]},
			Normal:   math.Vec3Up,
			Color:    core.ColorWhite,
		}
		if i < len(normals) {
			verts[i].Normal = math.Vec3{X: normals[i][0], Y: normals[i][1], Z: normals[i][2]}
		}
		if i < len(uvs) {
			verts[i].UV = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(b.doc, b.doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}
	return CreateMeshFromData(name, verts, indices), nil
}

// assemble builds the node hierarchy under a group root: the default
// scene's roots, or every parentless node when no default scene is set.
func (b *gltfBuilder) assemble() *Node {
	nodes := make([]*Node, len(b.doc.Nodes))
	for i, gn := range b.doc.Nodes {
		name := gn.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		n := NewNode(name)

		t := gn.TranslationOrDefault()
		s := gn.ScaleOrDefault()
		r := gn.RotationOrDefault() // x, y, z, w
		n.Transform = core.Transform{
			Position: math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])},
			Rotation: math.Quaternion{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
			Scale:    math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])},
		}
		n.MarkWorldMatrixDirty()

		if gn.Mesh != nil && *gn.Mesh < len(b.meshes) {
			for pi, m := range b.meshes[*gn.Mesh] {
				n.AddChild(NewMeshNode(fmt.Sprintf("%s_prim%d", name, pi), m))
			}
		}
		nodes[i] = n
	}

	for i, gn := range b.doc.Nodes {
		for _, c := range gn.Children {
			if c < len(nodes) && c != i && nodes[c].Parent == nil {
				nodes[i].AddChild(nodes[c])
			}
		}
	}

	root := NewNode("gltf")
	if b.doc.Scene != nil && *b.doc.Scene < len(b.doc.Scenes) {
		for _, idx := range b.doc.Scenes[*b.doc.Scene].Nodes {
			if idx < len(nodes) && nodes[idx].Parent == nil {
				root.AddChild(nodes[idx])
			}
		}
		return root
	}
	for _, n := range nodes {
		if n.Parent == nil {
			root.AddChild(n)
		}
	}
	return root
}
