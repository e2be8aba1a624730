package math3d

// Vec4 is a homogeneous point, produced when projecting through a camera.
type Vec4 struct {
	X, Y, Z, W float64
}

// V4FromV3 lifts v into homogeneous space with the given w.
func V4FromV3(v Vec3, w float64) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

// PerspectiveDivide returns the point in normalized device coordinates.
func (v Vec4) PerspectiveDivide() Vec3 {
	if v.W == 0 {
		return Vec3{v.X, v.Y, v.Z}
	}
	return Vec3{v.X / v.W, v.Y / v.W, v.Z / v.W}
}
