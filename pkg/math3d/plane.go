package math3d

// Plane is the set of points p where Normal·p + D = 0.
type Plane struct {
	Normal Vec3
	D      float64
}

// PlaneFromNormalPoint builds the plane with the given normal through p.
func PlaneFromNormalPoint(normal, p Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, D: -n.Dot(p)}
}

// PlaneFromCoplanarPoints builds the plane through a, b and c, with the normal
// following counter-clockwise winding.
func PlaneFromCoplanarPoints(a, b, c Vec3) Plane {
	n := c.Sub(b).Cross(a.Sub(b)).Normalize()
	return Plane{Normal: n, D: -n.Dot(a)}
}

// SignedDistance is positive on the side the normal points to.
func (p Plane) SignedDistance(point Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Project returns the closest point on the plane to point.
func (p Plane) Project(point Vec3) Vec3 {
	return point.Sub(p.Normal.Scale(p.SignedDistance(point)))
}
