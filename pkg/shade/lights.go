package shade

import (
	"math"

	"github.com/taigrr/voxtrace/pkg/math3d"
	"github.com/taigrr/voxtrace/pkg/tracer"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

// positional is shared by the lights that sit in a cell. They show their own
// colour in that cell.
type positional struct {
	header
	position    math3d.Vec3
	cell        voxel.Point
	colour      voxel.Colour
	attenuation tracer.Attenuation
}

func (l *positional) set(h tracer.Header, pos math3d.Vec3, colour voxel.Colour, att tracer.Attenuation) {
	l.header.set(h)
	l.position = pos
	l.cell = voxel.PointFromVec(pos)
	l.colour = colour
	l.attenuation = att
}

func (l *positional) Position() (math3d.Vec3, bool) { return l.position, true }

func (l *positional) Towards(point math3d.Vec3, _ float64) (math3d.Vec3, float64) {
	v := l.position.Sub(point)
	dist := max(voxel.Epsilon, v.Len())
	return v.Div(dist), dist
}

func (l *positional) Shade(p voxel.Point, _ *Lighting) (voxel.Colour, float64, bool) {
	if p != l.cell || l.colour.IsZero() {
		return voxel.Black, 0, false
	}
	return l.colour.Clamp(), 1, true
}

type PointLight struct {
	positional
}

func (l *PointLight) Kind() tracer.Type { return tracer.TypePointLight }

func (l *PointLight) Apply(d tracer.Descriptor) error {
	pd, ok := d.(*tracer.PointLightDescriptor)
	if !ok {
		return kindMismatch(l, d)
	}
	l.set(pd.Header, pd.Position, pd.Colour, pd.Attenuation)
	return nil
}

func (l *PointLight) Reset() { *l = PointLight{} }

func (l *PointLight) Emission(_ math3d.Vec3, dist float64) voxel.Colour {
	a := l.attenuation
	return l.colour.Scale(1 / (a.Quadratic*dist*dist + a.Linear*dist + 1))
}

type SpotLight struct {
	positional
	direction math3d.Vec3
	cosInner  float64
	cosOuter  float64
}

func (l *SpotLight) Kind() tracer.Type { return tracer.TypeSpotLight }

func (l *SpotLight) Apply(d tracer.Descriptor) error {
	sd, ok := d.(*tracer.SpotLightDescriptor)
	if !ok {
		return kindMismatch(l, d)
	}
	l.set(sd.Header, sd.Position, sd.Colour, sd.Attenuation)
	l.direction = sd.Direction.Normalize()
	outer := max(sd.InnerAngle, sd.OuterAngle)
	l.cosInner = math.Cos(sd.InnerAngle / 2)
	l.cosOuter = math.Cos(outer / 2)
	return nil
}

func (l *SpotLight) Reset() { *l = SpotLight{} }

func (l *SpotLight) Emission(point math3d.Vec3, dist float64) voxel.Colour {
	a := l.attenuation
	rng := clamp01(1 / (1 + a.Quadratic*dist*dist + a.Linear*dist))

	toPoint := point.Sub(l.position).Normalize()
	cone := clamp01((toPoint.Dot(l.direction) - l.cosOuter) / max(l.cosInner-l.cosOuter, voxel.Epsilon))
	return l.colour.Scale(rng * cone * cone)
}

// DirectionalLight lights everything from one direction. It has no cell.
type DirectionalLight struct {
	header
	direction math3d.Vec3
	colour    voxel.Colour
}

func (l *DirectionalLight) Kind() tracer.Type { return tracer.TypeDirectionalLight }

func (l *DirectionalLight) Apply(d tracer.Descriptor) error {
	dd, ok := d.(*tracer.DirectionalLightDescriptor)
	if !ok {
		return kindMismatch(l, d)
	}
	l.header.set(dd.Header)
	l.direction = dd.Direction.Normalize()
	l.colour = dd.Colour
	return nil
}

func (l *DirectionalLight) Reset() { *l = DirectionalLight{} }

func (l *DirectionalLight) Position() (math3d.Vec3, bool) { return math3d.Vec3{}, false }

func (l *DirectionalLight) Towards(_ math3d.Vec3, far float64) (math3d.Vec3, float64) {
	return l.direction.Negate(), far
}

func (l *DirectionalLight) Emission(math3d.Vec3, float64) voxel.Colour { return l.colour }

type AmbientLight struct {
	header
	colour voxel.Colour
}

func (l *AmbientLight) Kind() tracer.Type    { return tracer.TypeAmbientLight }
func (l *AmbientLight) Colour() voxel.Colour { return l.colour }

func (l *AmbientLight) Apply(d tracer.Descriptor) error {
	ad, ok := d.(*tracer.AmbientLightDescriptor)
	if !ok {
		return kindMismatch(l, d)
	}
	l.header.set(ad.Header)
	l.colour = ad.Colour
	return nil
}

func (l *AmbientLight) Reset() { *l = AmbientLight{} }

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
