package shade

import (
	"math"

	"github.com/taigrr/voxtrace/pkg/math3d"
	"github.com/taigrr/voxtrace/pkg/tracer"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

// Box shades the faces of an axis-aligned box, or its whole volume when
// filled.
type Box struct {
	header
	box      math3d.Box3
	planes   []math3d.Plane
	material tracer.Material
	options  tracer.ShapeOptions
}

func (b *Box) Kind() tracer.Type   { return tracer.TypeBox }
func (b *Box) CastsShadows() bool  { return b.options.CastsShadows }
func (b *Box) Bounds() math3d.Box3 { return b.box }

func (b *Box) Apply(d tracer.Descriptor) error {
	bd, ok := d.(*tracer.BoxDescriptor)
	if !ok {
		return kindMismatch(b, d)
	}
	m, err := tracer.BuildMaterial(bd.Material)
	if err != nil {
		return err
	}
	b.header.set(bd.Header)
	b.box = math3d.NewBox3(bd.Min, bd.Max)
	b.planes = b.planes[:0]
	if !b.box.IsEmpty() {
		b.planes = append(b.planes, b.box.Planes()...)
	}
	b.material = m
	b.options = bd.Options
	return nil
}

func (b *Box) Reset() {
	*b = Box{planes: b.planes[:0]}
}

func (b *Box) Shade(p voxel.Point, l *Lighting) (voxel.Colour, float64, bool) {
	centre := p.Centre()
	if b.material == nil || !b.material.IsVisible() || len(b.planes) == 0 || !b.box.ContainsPoint(centre) {
		return voxel.Black, 0, false
	}

	samples := make([]Sample, 0, len(b.planes))
	for _, plane := range b.planes {
		dist := math.Abs(plane.SignedDistance(centre))
		if !b.options.Fill && dist >= voxel.DiagonalErrUnits {
			continue
		}
		samples = append(samples, Sample{
			Point:   centre.Add(plane.Normal.Scale(dist + voxel.Epsilon)),
			Normal:  plane.Normal,
			Falloff: 1,
		})
	}
	if len(samples) == 0 {
		return voxel.Black, 0, false
	}
	c := l.LightingSamples(p, samples, b.material, b.options.ReceivesShadows, 1)
	return c, b.material.Alpha(), true
}

// Shadow blocks all light crossing the box.
func (b *Box) Shadow(r math3d.Ray, near, far float64) (bool, float64) {
	if !b.options.CastsShadows || b.box.IsEmpty() {
		return false, 0
	}
	return r.HitsBox(b.box, near, far), 1
}
