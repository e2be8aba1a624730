package tracer

import (
	"github.com/google/uuid"

	"github.com/taigrr/voxtrace/pkg/math3d"
	"github.com/taigrr/voxtrace/pkg/models"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

// GeometryFromMesh copies a mesh's vertex data into a new geometry with a
// fresh ID.
func GeometryFromMesh(m *models.Mesh) *Geometry {
	g := &Geometry{
		ID:        uuid.New(),
		Positions: make([]math3d.Vec3, len(m.Vertices)),
		Normals:   make([]math3d.Vec3, len(m.Vertices)),
		UVs:       make([]math3d.Vec2, len(m.Vertices)),
		Indices:   make([]int, 0, len(m.Faces)*3),
	}
	for i, v := range m.Vertices {
		g.Positions[i] = v.Position
		g.Normals[i] = v.Normal
		g.UVs[i] = v.UV
	}
	for _, f := range m.Faces {
		g.Indices = append(g.Indices, f.V[0], f.V[1], f.V[2])
	}
	return g
}

// Mesh is a triangle mesh placed in the grid by position, Euler rotation and
// scale. Its geometry never changes after construction.
type Mesh struct {
	object
	geometry *Geometry
	material Material

	position math3d.Vec3
	rotation math3d.Vec3
	scale    math3d.Vec3
	// local is applied to the geometry before position, rotation and scale.
	local  math3d.Mat4
	matrix math3d.Mat4
}

func NewMesh(geometry *Geometry, material Material) *Mesh {
	m := &Mesh{
		object:   newObject(TypeMesh),
		geometry: geometry,
		material: material,
		scale:    math3d.V3(1, 1, 1),
		local:    math3d.Identity(),
	}
	m.updateMatrix()
	return m
}

func (m *Mesh) Geometry() *Geometry     { return m.geometry }
func (m *Mesh) Material() Material      { return m.material }
func (m *Mesh) Position() math3d.Vec3   { return m.position }
func (m *Mesh) Rotation() math3d.Vec3   { return m.rotation }
func (m *Mesh) Scale() math3d.Vec3      { return m.scale }
func (m *Mesh) Matrix() math3d.Mat4     { return m.matrix }
func (m *Mesh) SetMaterial(mat Material) { m.material = mat; m.MakeDirty() }

func (m *Mesh) SetPosition(p math3d.Vec3) {
	m.position = p
	m.MakeDirty()
}

func (m *Mesh) SetRotation(r math3d.Vec3) {
	m.rotation = r
	m.MakeDirty()
}

func (m *Mesh) SetScale(s math3d.Vec3) {
	m.scale = s
	m.MakeDirty()
}

// SetLocalMatrix sets a transform applied to the geometry ahead of the
// position, rotation and scale.
func (m *Mesh) SetLocalMatrix(local math3d.Mat4) {
	m.local = local
	m.updateMatrix()
	m.MakeDirty()
}

// Clean refreshes the world matrix from position, rotation and scale.
func (m *Mesh) Clean() {
	m.updateMatrix()
	m.object.Clean()
}

func (m *Mesh) updateMatrix() {
	m.matrix = math3d.Compose(m.position, m.rotation, m.scale).Mul(m.local)
}

// WorldTriangles returns the faces transformed by the current matrix.
func (m *Mesh) WorldTriangles() []math3d.Triangle {
	tris := m.geometry.Triangles()
	for i := range tris {
		tris[i] = tris[i].Transform(m.matrix)
	}
	return tris
}

func (m *Mesh) Voxels(g voxel.Grid) []voxel.Point {
	return voxel.TriangleVoxels(g, m.WorldTriangles())
}

// Descriptor shares nothing with the mesh: the geometry is copied.
func (m *Mesh) Descriptor() Descriptor {
	return &MeshDescriptor{
		Header:   m.header(),
		Geometry: m.geometry.Clone(),
		Matrix:   m.matrix,
		Material: m.material.Descriptor(),
	}
}
