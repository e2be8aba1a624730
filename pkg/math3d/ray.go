package math3d

import "math"

// Ray is a half line from Origin along the unit vector Dir.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// At returns the point at parameter t.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// IntersectBox returns the parameter interval the ray spends inside b.
// tmin may be negative when the origin is inside the box.
func (r Ray) IntersectBox(b Box3) (tmin, tmax float64, ok bool) {
	tmin, tmax = math.Inf(-1), math.Inf(1)
	for axis := range 3 {
		o := r.Origin.Component(axis)
		d := r.Dir.Component(axis)
		lo, hi := b.Min.Component(axis), b.Max.Component(axis)
		if math.Abs(d) < 1e-12 {
			if o < lo || o > hi {
				return 0, 0, false
			}
			continue
		}
		inv := 1 / d
		t0, t1 := (lo-o)*inv, (hi-o)*inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tmin = math.Max(tmin, t0)
		tmax = math.Min(tmax, t1)
		if tmin > tmax {
			return 0, 0, false
		}
	}
	return tmin, tmax, true
}

// HitsBox reports whether the segment [near, far] of the ray touches b.
func (r Ray) HitsBox(b Box3, near, far float64) bool {
	tmin, tmax, ok := r.IntersectBox(b)
	return ok && tmax >= near && tmin <= far
}

// IntersectSphere returns the first non-negative parameter where the ray meets
// the sphere surface. From inside the sphere that is the exit point.
func (r Ray) IntersectSphere(center Vec3, radius float64) (float64, bool) {
	toCenter := center.Sub(r.Origin)
	tca := toCenter.Dot(r.Dir)
	d2 := toCenter.LenSq() - tca*tca
	r2 := radius * radius
	if d2 > r2 {
		return 0, false
	}
	thc := math.Sqrt(r2 - d2)
	t0, t1 := tca-thc, tca+thc
	if t1 < 0 {
		return 0, false
	}
	if t0 < 0 {
		return t1, true
	}
	return t0, true
}

// IntersectTriangle returns the parameter where the ray crosses the triangle,
// from either side.
func (r Ray) IntersectTriangle(t Triangle) (float64, bool) {
	const eps = 1e-12
	e1 := t.B.Sub(t.A)
	e2 := t.C.Sub(t.A)
	p := r.Dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < eps {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(t.A)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	return e2.Dot(q) * inv, true
}
