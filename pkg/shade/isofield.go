package shade

import (
	"math"

	"github.com/taigrr/voxtrace/pkg/math3d"
	"github.com/taigrr/voxtrace/pkg/tracer"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

// gradientThreshold is the smallest gradient component that still counts as
// a surface.
const gradientThreshold = 0.001

// Isofield shades the surface of a metaball field that covers the cells
// [0,size)³. The field and its colour palette are rebuilt on every Apply.
type Isofield struct {
	header
	size     int
	field    []float64
	palette  []voxel.Colour
	material tracer.Material
	base     voxel.Colour
	options  tracer.ShadowOptions
}

func (f *Isofield) Kind() tracer.Type  { return tracer.TypeIsofield }
func (f *Isofield) CastsShadows() bool { return f.options.CastsShadows }

func (f *Isofield) Apply(d tracer.Descriptor) error {
	fd, ok := d.(*tracer.IsofieldDescriptor)
	if !ok {
		return kindMismatch(f, d)
	}
	m, err := tracer.BuildMaterial(fd.Material)
	if err != nil {
		return err
	}
	f.header.set(fd.Header)
	f.material = m
	f.base = m.Albedo(math3d.Vec2{})
	f.options = fd.Options
	f.size = max(fd.Size, 0)

	n := f.size * f.size * f.size
	f.field = resize(f.field, n)
	f.palette = resize(f.palette, n)

	if fd.Walls.X != nil {
		f.addWall(0, *fd.Walls.X)
	}
	if fd.Walls.Y != nil {
		f.addWall(1, *fd.Walls.Y)
	}
	if fd.Walls.Z != nil {
		f.addWall(2, *fd.Walls.Z)
	}
	for _, ball := range fd.Metaballs {
		f.addMetaball(ball)
	}
	return nil
}

// resize returns a zeroed slice of length n, reusing s when it is big enough.
func resize[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	s = s[:n]
	clear(s)
	return s
}

func (f *Isofield) Reset() {
	*f = Isofield{field: f.field[:0], palette: f.palette[:0]}
}

func (f *Isofield) index(x, y, z int) int {
	return f.size*f.size*z + f.size*y + x
}

func (f *Isofield) addMetaball(b tracer.Metaball) {
	if b.Subtract == 0 || b.Strength == 0 {
		return
	}
	size := float64(f.size)
	sign := math.Copysign(1, b.Strength)
	strength := math.Abs(b.Strength)
	colour := b.Colour
	if colour.IsZero() {
		colour = voxel.RGB(b.X, b.Y, b.Z)
	}

	radius := size * math.Sqrt(strength/b.Subtract)
	lo := func(c float64) int { return max(int(math.Floor(c*size-radius)), 0) }
	hi := func(c float64) int { return min(int(math.Floor(c*size+radius)), f.size) }

	for z := lo(b.Z); z < hi(b.Z); z++ {
		fz := float64(z)/size - b.Z
		for y := lo(b.Y); y < hi(b.Y); y++ {
			fy := float64(y)/size - b.Y
			for x := lo(b.X); x < hi(b.X); x++ {
				fx := float64(x)/size - b.X
				val := strength/(0.000001+fx*fx+fy*fy+fz*fz) - b.Subtract
				if val <= 0 {
					continue
				}
				i := f.index(x, y, z)
				f.field[i] = max(-1, min(1, f.field[i]+val*sign))
				f.palette[i] = f.palette[i].Add(colour)
			}
		}
	}
}

func (f *Isofield) addWall(axis int, w tracer.Wall) {
	if w.Subtract == 0 {
		return
	}
	size := float64(f.size)
	dist := min(2*math.Sqrt(math.Abs(w.Strength/w.Subtract)), size)
	for t := 0; float64(t) < dist; t++ {
		td := float64(t) / size
		val := w.Strength/(0.0001+td*td) - w.Subtract
		if val <= 0 {
			continue
		}
		for a := range f.size {
			for b := range f.size {
				var i int
				switch axis {
				case 0:
					i = f.index(t, a, b)
				case 1:
					i = f.index(a, t, b)
				default:
					i = f.index(a, b, t)
				}
				f.field[i] = max(-1, min(1, f.field[i]+val))
			}
		}
	}
}

func (f *Isofield) inside(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < f.size && y < f.size && z < f.size
}

func (f *Isofield) Shade(p voxel.Point, l *Lighting) (voxel.Colour, float64, bool) {
	if f.material == nil || !f.material.IsVisible() || !f.inside(p.X, p.Y, p.Z) {
		return voxel.Black, 0, false
	}
	i := f.index(p.X, p.Y, p.Z)
	value := f.field[i]
	if value <= 0 {
		return voxel.Black, 0, false
	}

	at := func(x, y, z int) float64 {
		if !f.inside(x, y, z) {
			return value
		}
		return f.field[f.index(x, y, z)]
	}
	normal := math3d.V3(
		(at(p.X-1, p.Y, p.Z)-at(p.X+1, p.Y, p.Z))*0.5,
		(at(p.X, p.Y-1, p.Z)-at(p.X, p.Y+1, p.Z))*0.5,
		(at(p.X, p.Y, p.Z-1)-at(p.X, p.Y, p.Z+1))*0.5,
	)
	if math.Abs(normal.X) <= gradientThreshold && math.Abs(normal.Y) <= gradientThreshold && math.Abs(normal.Z) <= gradientThreshold {
		return voxel.Black, 0, false
	}

	m := f.material
	if c := f.palette[i]; !c.IsZero() {
		m = tinted(m, c)
	}
	sample := Sample{Point: p.Vec(), Normal: normal.Normalize(), Falloff: value}
	return l.LightingSamples(p, []Sample{sample}, m, f.options.ReceivesShadows, 0), f.material.Alpha(), true
}

// tinted copies m with its base colour replaced by c.
func tinted(m tracer.Material, c voxel.Colour) tracer.Material {
	switch m := m.(type) {
	case *tracer.Lambert:
		t := *m
		t.Colour = c
		return &t
	case *tracer.Emission:
		t := *m
		t.Colour = c
		return &t
	}
	return m
}

// Shadow marches the ray through the field cell by cell, accumulating field
// values until they reach 1 or the ray leaves the field.
func (f *Isofield) Shadow(r math3d.Ray, near, far float64) (bool, float64) {
	if f.size == 0 {
		return false, 0
	}
	step := func(d float64) float64 {
		if d >= 0 {
			return 1
		}
		return 0
	}
	towards := math3d.V3(step(r.Dir.X), step(r.Dir.Y), step(r.Dir.Z))
	limit := float64(f.size) + voxel.Epsilon

	acc := 0.0
	for t := near; t <= far; {
		pos := r.At(t)
		frac := pos.Sub(pos.Floor())
		next := towards.Sub(frac)
		next = math3d.V3(next.X/r.Dir.X, next.Y/r.Dir.Y, next.Z/r.Dir.Z)
		t += max(next.MinComponent(), 0.25)

		pos = r.At(t)
		if pos.X < voxel.Epsilon || pos.Y < voxel.Epsilon || pos.Z < voxel.Epsilon ||
			pos.X > limit || pos.Y > limit || pos.Z > limit {
			break
		}
		cell := pos.Floor()
		x, y, z := int(cell.X), int(cell.Y), int(cell.Z)
		if !f.inside(x, y, z) {
			break
		}
		acc += f.field[f.index(x, y, z)]
		if acc >= 1 {
			break
		}
	}
	acc = min(acc, 1)
	return f.options.CastsShadows && acc > 0, acc
}
