package shade

import (
	"github.com/google/uuid"

	"github.com/taigrr/voxtrace/pkg/bvh"
	"github.com/taigrr/voxtrace/pkg/math3d"
	"github.com/taigrr/voxtrace/pkg/tracer"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

var meshSigma = voxel.DiagonalErrUnits / 10

// Mesh shades the voxels a triangle mesh passes through. The BVH is built in
// geometry space and survives re-application as long as the geometry ID does
// not change.
type Mesh struct {
	header
	geometry   *tracer.Geometry
	geometryID uuid.UUID
	tree       *bvh.BVH
	faces      []int // BVH index to geometry face

	matrix   math3d.Mat4
	inverse  math3d.Mat4
	normal   math3d.Mat4
	material tracer.Material
	samples  memo
}

func (m *Mesh) Kind() tracer.Type  { return tracer.TypeMesh }
func (m *Mesh) CastsShadows() bool { return true }

func (m *Mesh) Apply(d tracer.Descriptor) error {
	md, ok := d.(*tracer.MeshDescriptor)
	if !ok {
		return kindMismatch(m, d)
	}
	mat, err := tracer.BuildMaterial(md.Material)
	if err != nil {
		return err
	}
	m.header.set(md.Header)
	m.material = mat
	m.matrix = md.Matrix
	m.inverse = md.Matrix.Inverse()
	m.normal = md.Matrix.NormalMatrix()
	if md.Geometry == nil {
		m.geometry, m.tree, m.faces, m.geometryID = nil, nil, nil, uuid.Nil
	} else if m.tree == nil || md.Geometry.ID != m.geometryID || md.Geometry.ID == uuid.Nil {
		m.setGeometry(md.Geometry)
	}
	m.samples.reset()
	return nil
}

func (m *Mesh) setGeometry(g *tracer.Geometry) {
	m.geometry = g
	m.geometryID = g.ID
	m.faces = m.faces[:0]
	tris := make([]math3d.Triangle, 0, g.TriangleCount())
	for i := range g.TriangleCount() {
		tri, ok := m.face(i)
		if !ok {
			continue
		}
		tris = append(tris, tri)
		m.faces = append(m.faces, i)
	}
	m.tree = bvh.Build(tris)
}

func (m *Mesh) face(i int) (math3d.Triangle, bool) {
	g := m.geometry
	for _, idx := range g.Indices[3*i : 3*i+3] {
		if idx < 0 || idx >= len(g.Positions) {
			return math3d.Triangle{}, false
		}
	}
	return g.Triangle(i), true
}

func (m *Mesh) Reset() {
	m.samples.reset()
	*m = Mesh{samples: m.samples, faces: m.faces[:0]}
}

func (m *Mesh) Shade(p voxel.Point, l *Lighting) (voxel.Colour, float64, bool) {
	if m.material == nil || !m.material.IsVisible() || m.tree == nil {
		return voxel.Black, 0, false
	}
	samples := m.sample(l.Grid().FlatIndex(p), p)
	if len(samples) == 0 {
		return voxel.Black, 0, false
	}
	return l.LightingSamples(p, samples, m.material, true, 0), m.material.Alpha(), true
}

func (m *Mesh) sample(idx int, p voxel.Point) []Sample {
	if samples, ok := m.samples[idx]; ok {
		return samples
	}

	cell := p.Box()
	centre := p.Centre()
	var samples []Sample
	m.tree.Shapecast(cell.Transform(m.inverse), func(i int, local math3d.Triangle) bool {
		world := local.Transform(m.matrix)
		closest := world.ClosestPoint(centre)
		if !cell.ContainsPoint(closest) {
			return false
		}
		samples = append(samples, m.surface(m.faces[i], world, closest, centre))
		return false
	})
	m.samples[idx] = samples
	return samples
}

func (m *Mesh) surface(face int, world math3d.Triangle, closest, centre math3d.Vec3) Sample {
	g := m.geometry
	bary := world.Barycentric(closest)
	i0, i1, i2 := g.Indices[3*face], g.Indices[3*face+1], g.Indices[3*face+2]

	var normal math3d.Vec3
	if len(g.Normals) == len(g.Positions) {
		normal = g.Normals[i0].Scale(bary.X).
			Add(g.Normals[i1].Scale(bary.Y)).
			Add(g.Normals[i2].Scale(bary.Z))
		normal = m.normal.MulVec3Dir(normal).Normalize()
	}
	if normal.IsZero() {
		normal = world.Normal()
	}

	var uv math3d.Vec2
	if len(g.UVs) == len(g.Positions) {
		uv = g.UVs[i0].Scale(bary.X).Add(g.UVs[i1].Scale(bary.Y)).Add(g.UVs[i2].Scale(bary.Z))
	}

	s := Sample{Point: closest, Normal: normal, UV: uv, Falloff: 1}
	if closest.Sub(centre).Normalize().Dot(normal) < voxel.Epsilon {
		s.Falloff = gaussian(closest.Distance(centre), meshSigma)
	}
	return s
}

// Shadow casts the ray into geometry space. The direction is left unnormalized
// there so that near and far keep their world-space meaning.
func (m *Mesh) Shadow(r math3d.Ray, near, far float64) (bool, float64) {
	if m.tree == nil || m.material == nil {
		return false, 0
	}
	local := math3d.Ray{Origin: m.inverse.MulVec3(r.Origin), Dir: m.inverse.MulVec3Dir(r.Dir)}
	return m.tree.AnyHit(local, near, far), m.material.Alpha()
}
