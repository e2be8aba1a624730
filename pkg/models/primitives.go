package models

import (
	"math"

	"github.com/taigrr/voxtrace/pkg/math3d"
)

// NewBoxMesh builds an axis-aligned box centred on the origin with outward
// facing, counter-clockwise faces.
func NewBoxMesh(size math3d.Vec3) *Mesh {
	m := NewMesh("box")
	h := size.Scale(0.5)
	faces := []struct {
		n, u, v math3d.Vec3
	}{
		{math3d.V3(1, 0, 0), math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},
		{math3d.V3(-1, 0, 0), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
		{math3d.V3(0, -1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)},
		{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 0, -1), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)},
	}
	for _, f := range faces {
		base := len(m.Vertices)
		for _, c := range [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := f.n.Add(f.u.Scale(c[0])).Add(f.v.Scale(c[1])).Mul(h)
			m.Vertices = append(m.Vertices, MeshVertex{
				Position: p,
				Normal:   f.n,
				UV:       math3d.V2((c[0]+1)/2, (c[1]+1)/2),
			})
		}
		m.Faces = append(m.Faces,
			Face{V: [3]int{base, base + 1, base + 2}, Material: -1},
			Face{V: [3]int{base, base + 2, base + 3}, Material: -1},
		)
	}
	m.CalculateBounds()
	return m
}

// NewSphereMesh builds a UV sphere centred on the origin.
func NewSphereMesh(radius float64, segments, rings int) *Mesh {
	segments = max(segments, 3)
	rings = max(rings, 2)
	m := NewMesh("sphere")

	for r := 0; r <= rings; r++ {
		v := float64(r) / float64(rings)
		phi := v * math.Pi
		for s := 0; s <= segments; s++ {
			u := float64(s) / float64(segments)
			theta := u * 2 * math.Pi
			n := math3d.V3(math.Sin(phi)*math.Cos(theta), math.Cos(phi), math.Sin(phi)*math.Sin(theta))
			m.Vertices = append(m.Vertices, MeshVertex{
				Position: n.Scale(radius),
				Normal:   n,
				UV:       math3d.V2(u, 1-v),
			})
		}
	}

	stride := segments + 1
	for r := range rings {
		for s := range segments {
			a := r*stride + s
			b := a + stride
			if r != 0 {
				m.Faces = append(m.Faces, Face{V: [3]int{a, a + 1, b}, Material: -1})
			}
			if r != rings-1 {
				m.Faces = append(m.Faces, Face{V: [3]int{a + 1, b + 1, b}, Material: -1})
			}
		}
	}
	m.CalculateBounds()
	return m
}
