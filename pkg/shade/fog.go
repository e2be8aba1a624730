package shade

import (
	"github.com/taigrr/voxtrace/pkg/math3d"
	"github.com/taigrr/voxtrace/pkg/tracer"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

// fog is the shared body of the fog volumes: it scatters whatever light
// reaches a voxel inside the volume. Fog never casts shadows.
type fog struct {
	header
	options tracer.FogOptions
}

func (f *fog) shade(centre math3d.Vec3, inside bool, l *Lighting) (voxel.Colour, float64, bool) {
	if !inside {
		return voxel.Black, 0, false
	}
	c := l.FogLighting(centre).Mul(f.options.Colour).Scale(f.options.Scattering).Clamp()
	return c, 1, true
}

type FogBox struct {
	fog
	box math3d.Box3
}

func (f *FogBox) Kind() tracer.Type { return tracer.TypeFogBox }

func (f *FogBox) Apply(d tracer.Descriptor) error {
	fd, ok := d.(*tracer.FogBoxDescriptor)
	if !ok {
		return kindMismatch(f, d)
	}
	f.header.set(fd.Header)
	f.box = math3d.NewBox3(fd.Min, fd.Max)
	f.options = fd.Options
	return nil
}

func (f *FogBox) Reset() { *f = FogBox{} }

func (f *FogBox) Shade(p voxel.Point, l *Lighting) (voxel.Colour, float64, bool) {
	centre := p.Centre()
	return f.shade(centre, f.box.ContainsPoint(centre), l)
}

type FogSphere struct {
	fog
	center math3d.Vec3
	radius float64
}

func (f *FogSphere) Kind() tracer.Type { return tracer.TypeFogSphere }

func (f *FogSphere) Apply(d tracer.Descriptor) error {
	fd, ok := d.(*tracer.FogSphereDescriptor)
	if !ok {
		return kindMismatch(f, d)
	}
	f.header.set(fd.Header)
	f.center = fd.Center
	f.radius = fd.Radius
	f.options = fd.Options
	return nil
}

func (f *FogSphere) Reset() { *f = FogSphere{} }

func (f *FogSphere) Shade(p voxel.Point, l *Lighting) (voxel.Colour, float64, bool) {
	centre := p.Centre()
	return f.shade(centre, centre.DistanceSq(f.center) <= f.radius*f.radius, l)
}
