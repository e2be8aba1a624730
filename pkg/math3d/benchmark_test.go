package math3d

import (
	"testing"
)

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4Inverse(b *testing.B) {
	m := Compose(V3(1, 2, 3), V3(0, 0.5, 0), V3(2, 2, 2))

	for b.Loop() {
		_ = m.Inverse()
	}
}

func BenchmarkRayIntersectBox(b *testing.B) {
	r := Ray{Origin: V3(-5, 0.5, 0.5), Dir: V3(1, 0, 0)}
	box := NewBox3(V3(0, 0, 0), V3(1, 1, 1))

	for b.Loop() {
		_, _, _ = r.IntersectBox(box)
	}
}

func BenchmarkTriangleClosestPoint(b *testing.B) {
	tri := Triangle{A: V3(0, 0, 0), B: V3(1, 0, 0), C: V3(0, 1, 0)}
	p := V3(0.3, 0.3, 2)

	for b.Loop() {
		_ = tri.ClosestPoint(p)
	}
}
