package math3d

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func TestBoxPlanesFaceOutward(t *testing.T) {
	box := NewBox3(V3(0, 0, 0), V3(2, 2, 2))
	center := box.Center()

	planes := box.Planes()
	require.Len(t, planes, 6)
	for i, p := range planes {
		assert.Less(t, p.SignedDistance(center), 0.0, "plane %d should have the center behind it", i)
		assert.InDelta(t, 1.0, p.SignedDistance(center.Add(p.Normal.Scale(2))), tol, "plane %d", i)
	}

	assert.Empty(t, NewBox3(V3(1, 1, 1), V3(0, 0, 0)).Planes())
}

func TestBoxTransformBoundsCorners(t *testing.T) {
	box := NewBox3(V3(-1, -1, -1), V3(1, 1, 1))
	moved := box.Transform(Translate(V3(5, 0, 0)).Mul(Scale(V3(2, 1, 1))))

	assert.InDelta(t, 3.0, moved.Min.X, tol)
	assert.InDelta(t, 7.0, moved.Max.X, tol)
	assert.InDelta(t, -1.0, moved.Min.Y, tol)
}

func TestRayHitsBoxRespectsSegment(t *testing.T) {
	box := NewBox3(V3(4, 0, 0), V3(5, 1, 1))
	r := Ray{Origin: V3(0, 0.5, 0.5), Dir: V3(1, 0, 0)}

	assert.True(t, r.HitsBox(box, 0, 10))
	assert.False(t, r.HitsBox(box, 0, 3.5), "box lies beyond the far distance")

	behind := Ray{Origin: V3(6, 0.5, 0.5), Dir: V3(1, 0, 0)}
	assert.False(t, behind.HitsBox(box, 0, 10), "box lies behind the origin")
}

func TestRayIntersectSphere(t *testing.T) {
	r := Ray{Origin: V3(0, 0, 0), Dir: V3(0, 0, 1)}

	hit, ok := r.IntersectSphere(V3(0, 0, 5), 1)
	require.True(t, ok)
	assert.InDelta(t, 4.0, hit, tol)

	exit, ok := r.IntersectSphere(V3(0, 0, 0), 2)
	require.True(t, ok)
	assert.InDelta(t, 2.0, exit, tol)

	_, ok = r.IntersectSphere(V3(5, 0, 5), 1)
	assert.False(t, ok)
}

func TestRayIntersectTriangleBothSides(t *testing.T) {
	tri := Triangle{A: V3(-1, -1, 3), B: V3(1, -1, 3), C: V3(0, 1, 3)}

	hit, ok := Ray{Origin: V3(0, 0, 0), Dir: V3(0, 0, 1)}.IntersectTriangle(tri)
	require.True(t, ok)
	assert.InDelta(t, 3.0, hit, tol)

	hit, ok = Ray{Origin: V3(0, 0, 6), Dir: V3(0, 0, -1)}.IntersectTriangle(tri)
	require.True(t, ok)
	assert.InDelta(t, 3.0, hit, tol)
}

func TestTriangleClosestPointRegions(t *testing.T) {
	tri := Triangle{A: V3(0, 0, 0), B: V3(1, 0, 0), C: V3(0, 1, 0)}

	tests := []struct {
		name string
		p    Vec3
		want Vec3
	}{
		{"face", V3(0.25, 0.25, 3), V3(0.25, 0.25, 0)},
		{"vertex A", V3(-1, -1, 0), V3(0, 0, 0)},
		{"vertex B", V3(2, -0.5, 0), V3(1, 0, 0)},
		{"edge AB", V3(0.5, -1, 0), V3(0.5, 0, 0)},
		{"edge BC", V3(1, 1, 0), V3(0.5, 0.5, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tri.ClosestPoint(tt.p)
			assert.InDelta(t, 0, got.Distance(tt.want), 1e-9)
		})
	}
}

func TestTriangleBarycentricReconstructsPoint(t *testing.T) {
	tri := Triangle{A: V3(0, 0, 0), B: V3(2, 0, 0), C: V3(0, 2, 0)}
	p := V3(0.5, 0.7, 0)

	w := tri.Barycentric(p)
	assert.InDelta(t, 1.0, w.X+w.Y+w.Z, tol)

	back := tri.A.Scale(w.X).Add(tri.B.Scale(w.Y)).Add(tri.C.Scale(w.Z))
	assert.InDelta(t, 0, back.Distance(p), tol)
}

func TestComposeAndInverse(t *testing.T) {
	m := Compose(V3(1, 2, 3), V3(0.3, -0.2, 1.1), V3(2, 2, 2))
	p := V3(0.5, -4, 2)

	back := m.Inverse().MulVec3(m.MulVec3(p))
	assert.InDelta(t, 0, back.Distance(p), 1e-9)

	n := m.NormalMatrix().MulVec3Dir(V3(0, 1, 0)).Normalize()
	assert.InDelta(t, 1.0, n.Len(), tol)
	assert.False(t, math.IsNaN(n.X))
}
