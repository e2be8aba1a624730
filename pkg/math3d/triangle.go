package math3d

// Triangle is three corners in counter-clockwise order.
type Triangle struct {
	A, B, C Vec3
}

// Bounds returns the triangle's bounding box.
func (t Triangle) Bounds() Box3 {
	return Box3{Min: t.A.Min(t.B).Min(t.C), Max: t.A.Max(t.B).Max(t.C)}
}

// Normal returns the unit face normal.
func (t Triangle) Normal() Vec3 {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A)).Normalize()
}

// Transform carries every corner through m.
func (t Triangle) Transform(m Mat4) Triangle {
	return Triangle{A: m.MulVec3(t.A), B: m.MulVec3(t.B), C: m.MulVec3(t.C)}
}

// ClosestPoint returns the point on the triangle nearest to p
// (Ericson, Real-Time Collision Detection 5.1.5).
func (t Triangle) ClosestPoint(p Vec3) Vec3 {
	ab := t.B.Sub(t.A)
	ac := t.C.Sub(t.A)
	ap := p.Sub(t.A)
	d1, d2 := ab.Dot(ap), ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return t.A
	}

	bp := p.Sub(t.B)
	d3, d4 := ab.Dot(bp), ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return t.B
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return t.A.Add(ab.Scale(d1 / (d1 - d3)))
	}

	cp := p.Sub(t.C)
	d5, d6 := ab.Dot(cp), ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return t.C
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return t.A.Add(ac.Scale(d2 / (d2 - d6)))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		return t.B.Add(t.C.Sub(t.B).Scale((d4 - d3) / ((d4 - d3) + (d5 - d6))))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return t.A.Add(ab.Scale(v)).Add(ac.Scale(w))
}

// Barycentric returns the weights of A, B and C for a point in the triangle's
// plane. A degenerate triangle yields (1, 0, 0).
func (t Triangle) Barycentric(p Vec3) Vec3 {
	v0 := t.C.Sub(t.A)
	v1 := t.B.Sub(t.A)
	v2 := p.Sub(t.A)
	dot00 := v0.Dot(v0)
	dot01 := v0.Dot(v1)
	dot02 := v0.Dot(v2)
	dot11 := v1.Dot(v1)
	dot12 := v1.Dot(v2)

	denom := dot00*dot11 - dot01*dot01
	if denom == 0 {
		return V3(1, 0, 0)
	}
	inv := 1 / denom
	u := (dot11*dot02 - dot01*dot12) * inv
	v := (dot00*dot12 - dot01*dot02) * inv
	return V3(1-u-v, v, u)
}
