package shade

import (
	"math"

	"github.com/taigrr/voxtrace/pkg/math3d"
	"github.com/taigrr/voxtrace/pkg/tracer"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

var sphereSigma = 2 * voxel.DiagonalErrUnits / 10

// Sphere shades the surface of a sphere, or its volume when filled.
type Sphere struct {
	header
	center   math3d.Vec3
	radius   float64
	material tracer.Material
	options  tracer.ShapeOptions
	samples  memo
}

func (s *Sphere) Kind() tracer.Type  { return tracer.TypeSphere }
func (s *Sphere) CastsShadows() bool { return s.options.CastsShadows }

func (s *Sphere) Apply(d tracer.Descriptor) error {
	sd, ok := d.(*tracer.SphereDescriptor)
	if !ok {
		return kindMismatch(s, d)
	}
	m, err := tracer.BuildMaterial(sd.Material)
	if err != nil {
		return err
	}
	s.header.set(sd.Header)
	s.center = sd.Center
	s.radius = sd.Radius
	s.material = m
	s.options = sd.Options
	s.samples.reset()
	return nil
}

func (s *Sphere) Reset() {
	s.samples.reset()
	*s = Sphere{samples: s.samples}
}

func (s *Sphere) Shade(p voxel.Point, l *Lighting) (voxel.Colour, float64, bool) {
	if s.material == nil || !s.material.IsVisible() || s.radius <= voxel.Epsilon {
		return voxel.Black, 0, false
	}
	centre := p.Centre()
	if centre.DistanceSq(s.center) <= voxel.ErrUnits {
		// The voxel holds the sphere's centre: only a sphere no bigger than
		// a cell shows up here, as a single lit voxel.
		if s.radius > voxel.DiagonalErrUnits {
			return voxel.Black, 0, false
		}
		return l.VoxelLighting(p, centre, s.material, true), s.material.Alpha(), true
	}

	samples := s.sample(l.Grid().FlatIndex(p), centre)
	if len(samples) == 0 {
		return voxel.Black, 0, false
	}
	c := l.LightingSamples(p, samples, s.material, s.options.ReceivesShadows, 0)
	return c, s.material.Alpha(), true
}

func (s *Sphere) sample(idx int, centre math3d.Vec3) []Sample {
	if samples, ok := s.samples[idx]; ok {
		return samples
	}

	var samples []Sample
	offset := centre.Sub(s.center)
	d := offset.Len()
	n := offset.Div(d)
	surface := Sample{Point: s.center.Add(n.Scale(s.radius)), Normal: n, UV: sphereUV(n)}

	switch {
	case d >= s.radius-1.5*voxel.DiagonalErrUnits && d <= s.radius+voxel.DiagonalErrUnits:
		surface.Falloff = 1
		if d > s.radius {
			surface.Falloff = gaussian(d-s.radius, sphereSigma)
		}
		samples = append(samples, surface)
	case s.options.Fill && d < s.radius:
		surface.Falloff = 1
		samples = append(samples, surface)
	}
	s.samples[idx] = samples
	return samples
}

// Shadow tests a sphere shrunk by Epsilon so surface samples do not shadow
// themselves.
func (s *Sphere) Shadow(r math3d.Ray, near, far float64) (bool, float64) {
	if !s.options.CastsShadows || s.material == nil {
		return false, 0
	}
	t, ok := r.IntersectSphere(s.center, s.radius-voxel.Epsilon)
	return ok && t >= near && t <= far, s.material.Alpha()
}

// sphereUV maps a unit direction to equirectangular texture coordinates.
func sphereUV(n math3d.Vec3) math3d.Vec2 {
	u := 0.5 + math.Atan2(n.Z, n.X)/(2*math.Pi)
	v := 0.5 + math.Asin(max(-1, min(1, n.Y)))/math.Pi
	return math3d.V2(u, v)
}

// gaussian is the normalized bell curve exp(-x²/(4σ²)), 1 at x = 0.
func gaussian(x, sigma float64) float64 {
	return math.Exp(-0.5 * (x * x) / (2 * sigma * sigma))
}
