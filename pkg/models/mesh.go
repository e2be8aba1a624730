// Package models provides triangle mesh geometry for voxel shading, loaded
// from glTF files or generated procedurally.
package models

import (
	"github.com/taigrr/voxtrace/pkg/math3d"
)

// Mesh represents a 3D mesh with vertices, faces, and materials.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// Face represents a triangle face with vertex indices and material reference.
type Face struct {
	V        [3]int // Indices into Mesh.Vertices
	Material int    // Index into Mesh.Materials (-1 for no material)
}

// Material is the base colour of a glTF material.
type Material struct {
	Name      string
	BaseColor [4]float64 // RGBA in 0-1 range
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:      name,
		Vertices:  make([]MeshVertex, 0),
		Faces:     make([]Face, 0),
		BoundsMin: math3d.V3(0, 0, 0),
		BoundsMax: math3d.V3(0, 0, 0),
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Bounds returns the bounding box as a Box3.
func (m *Mesh) Bounds() math3d.Box3 {
	return math3d.NewBox3(m.BoundsMin, m.BoundsMax)
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// CalculateNormals computes face normals and assigns them to vertices.
// This is a simple flat-shading approach; for smooth shading, normals
// should be averaged per-vertex.
func (m *Mesh) CalculateNormals() {
	for i := range m.Faces {
		f := &m.Faces[i]
		normal := m.Triangle(i).Normal()

		// Assign to vertices (flat shading - each face has its own normal)
		m.Vertices[f.V[0]].Normal = normal
		m.Vertices[f.V[1]].Normal = normal
		m.Vertices[f.V[2]].Normal = normal
	}
}

// CalculateSmoothNormals computes averaged normals for smooth shading.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	// Area-weighted: the cross product is left unnormalized
	for _, f := range m.Faces {
		v0 := m.Vertices[f.V[0]].Position
		v1 := m.Vertices[f.V[1]].Position
		v2 := m.Vertices[f.V[2]].Position
		normal := v1.Sub(v0).Cross(v2.Sub(v0))

		for _, vi := range f.V {
			m.Vertices[vi].Normal = m.Vertices[vi].Normal.Add(normal)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// Transform applies a transformation matrix to all vertices.
func (m *Mesh) Transform(mat math3d.Mat4) {
	normalMat := mat.NormalMatrix()
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulVec3(m.Vertices[i].Position)
		m.Vertices[i].Normal = normalMat.MulVec3Dir(m.Vertices[i].Normal).Normalize()
	}
	m.CalculateBounds()
}

// FitTo scales and moves the mesh uniformly so its bounds sit centred inside
// target.
func (m *Mesh) FitTo(target math3d.Box3) {
	size := m.Size()
	extent := size.MaxComponent()
	if extent == 0 {
		return
	}
	want := target.Size()
	s := min(want.X, want.Y, want.Z) / extent
	mat := math3d.Translate(target.Center()).
		Mul(math3d.Scale(math3d.V3(s, s, s))).
		Mul(math3d.Translate(m.Center().Negate()))
	m.Transform(mat)
}

// Triangle returns the positions of face i.
func (m *Mesh) Triangle(i int) math3d.Triangle {
	f := m.Faces[i].V
	return math3d.Triangle{
		A: m.Vertices[f[0]].Position,
		B: m.Vertices[f[1]].Position,
		C: m.Vertices[f[2]].Position,
	}
}

// Triangles returns the positions of every face.
func (m *Mesh) Triangles() []math3d.Triangle {
	out := make([]math3d.Triangle, len(m.Faces))
	for i := range m.Faces {
		out[i] = m.Triangle(i)
	}
	return out
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]MeshVertex, len(m.Vertices)),
		Faces:     make([]Face, len(m.Faces)),
		Materials: make([]Material, len(m.Materials)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Faces, m.Faces)
	copy(clone.Materials, m.Materials)
	return clone
}

// GetFaceMaterial returns the material index for face i.
// Returns -1 if no material assigned.
func (m *Mesh) GetFaceMaterial(i int) int {
	return m.Faces[i].Material
}

// GetMaterial returns the material at index i.
// Returns nil if index is out of bounds or -1.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

// DominantColor returns the base colour of the material covering the most
// faces. It reports false when no face has a material.
func (m *Mesh) DominantColor() ([4]float64, bool) {
	counts := make(map[int]int)
	best, bestCount := -1, 0
	for i := range m.Faces {
		idx := m.GetFaceMaterial(i)
		if m.GetMaterial(idx) == nil {
			continue
		}
		counts[idx]++
		if n := counts[idx]; n > bestCount || (n == bestCount && idx < best) {
			best, bestCount = idx, n
		}
	}
	if best < 0 {
		return [4]float64{}, false
	}
	return m.GetMaterial(best).BaseColor, true
}

// MaterialCount returns the number of materials.
func (m *Mesh) MaterialCount() int {
	return len(m.Materials)
}

// BaseColor returns the colour of the first material, or opaque white.
func (m *Mesh) BaseColor() [4]float64 {
	if len(m.Materials) == 0 {
		return [4]float64{1, 1, 1, 1}
	}
	return m.Materials[0].BaseColor
}
