package math3d

import "math"

// Box3 is an axis-aligned bounding box. A box whose Min exceeds its Max on any
// axis is empty.
type Box3 struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// NewBox3 creates a box from its min and max corners.
func NewBox3(min, max Vec3) Box3 {
	return Box3{Min: min, Max: max}
}

// EmptyBox3 returns a box that contains nothing and grows with ExpandByPoint.
func EmptyBox3() Box3 {
	inf := math.Inf(1)
	return Box3{Min: V3(inf, inf, inf), Max: V3(-inf, -inf, -inf)}
}

// IsEmpty reports whether the box encloses no volume.
func (b Box3) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// Center returns the center of the box.
func (b Box3) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the dimensions of the box.
func (b Box3) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// ExpandByPoint grows the box to include p.
func (b Box3) ExpandByPoint(p Vec3) Box3 {
	return Box3{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both boxes.
func (b Box3) Union(o Box3) Box3 {
	return Box3{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// ContainsPoint reports whether p lies inside or on the box.
func (b Box3) ContainsPoint(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// IntersectsBox reports whether the two boxes overlap or touch.
func (b Box3) IntersectsBox(o Box3) bool {
	return o.Max.X >= b.Min.X && o.Min.X <= b.Max.X &&
		o.Max.Y >= b.Min.Y && o.Min.Y <= b.Max.Y &&
		o.Max.Z >= b.Min.Z && o.Min.Z <= b.Max.Z
}

// Transform returns the box bounding all eight corners of b carried through m.
func (b Box3) Transform(m Mat4) Box3 {
	out := EmptyBox3()
	for i := range 8 {
		corner := b.Min
		if i&1 != 0 {
			corner.X = b.Max.X
		}
		if i&2 != 0 {
			corner.Y = b.Max.Y
		}
		if i&4 != 0 {
			corner.Z = b.Max.Z
		}
		out = out.ExpandByPoint(m.MulVec3(corner))
	}
	return out
}

// Planes returns the six outward-facing planes of the box, ordered
// -Z, +Z, -Y, +Y, -X, +X. An empty box has no planes.
func (b Box3) Planes() []Plane {
	if b.IsEmpty() {
		return nil
	}
	return []Plane{
		PlaneFromNormalPoint(V3(0, 0, -1), b.Min),
		PlaneFromNormalPoint(V3(0, 0, 1), b.Max),
		PlaneFromNormalPoint(V3(0, -1, 0), b.Min),
		PlaneFromNormalPoint(V3(0, 1, 0), b.Max),
		PlaneFromNormalPoint(V3(-1, 0, 0), b.Min),
		PlaneFromNormalPoint(V3(1, 0, 0), b.Max),
	}
}
