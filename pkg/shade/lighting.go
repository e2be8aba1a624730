package shade

import (
	"github.com/takeyourhatoff/bitset"

	"github.com/taigrr/voxtrace/pkg/math3d"
	"github.com/taigrr/voxtrace/pkg/tracer"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

// directionalDistance scales the grid size into the distance used for lights
// without a position.
const directionalDistance = 100

// Lighting evaluates samples against the lights, the ambient light and the
// shadow casters of one worker's scene.
type Lighting struct {
	grid    voxel.Grid
	lights  []Light
	casters []Caster
	ambient *AmbientLight

	// ambientDone holds the flat indices that already received ambient light
	// during the current pass.
	ambientDone bitset.Set
}

func NewLighting(g voxel.Grid) *Lighting {
	return &Lighting{grid: g}
}

func (l *Lighting) Grid() voxel.Grid { return l.grid }

// SetScene replaces the lights and casters. Callers pass them in a stable
// order so that repeated passes produce identical results.
func (l *Lighting) SetScene(lights []Light, casters []Caster, ambient *AmbientLight) {
	l.lights = lights
	l.casters = casters
	l.ambient = ambient
}

// Begin starts a render pass. Every voxel may receive ambient light once per
// pass, no matter how many renderables shade it.
func (l *Lighting) Begin() {
	l.ambientDone = bitset.Set{}
}

func (l *Lighting) far() float64 {
	return directionalDistance * float64(l.grid.Size)
}

// takeAmbient reports whether p still needs ambient light this pass and marks
// it as served.
func (l *Lighting) takeAmbient(p voxel.Point) bool {
	if l.ambient == nil {
		return false
	}
	idx := l.grid.FlatIndex(p)
	if l.ambientDone.Test(idx) {
		return false
	}
	l.ambientDone.Add(idx)
	return true
}

// LightingSamples lights voxel p from samples taken on a surface. factor
// scales each sample's lit term; zero means 1/len(samples).
func (l *Lighting) LightingSamples(p voxel.Point, samples []Sample, m tracer.Material, receivesShadows bool, factor float64) voxel.Colour {
	if len(samples) == 0 {
		return voxel.Black
	}
	n := float64(len(samples))
	if factor == 0 {
		factor = 1 / n
	}

	var total voxel.Colour
	for _, s := range samples {
		if s.Falloff <= 0 {
			continue
		}
		contrib := m.Emission(s.UV).Scale(s.Falloff / n)
		var lit voxel.Colour
		for _, light := range l.lights {
			toLight, dist := light.Towards(s.Point, l.far())
			if toLight.Dot(s.Normal) <= 0 {
				continue
			}
			mult := 1.0
			if receivesShadows {
				mult = l.ShadowMultiplier(s.Point, toLight, dist)
			}
			if mult <= 0 {
				continue
			}
			emission := light.Emission(s.Point, dist).Scale(mult * s.Falloff)
			lit = lit.Add(m.BRDF(toLight, s.Normal, s.UV, emission))
		}
		total = total.Add(contrib).Add(lit.Scale(factor))
	}

	if l.takeAmbient(p) {
		var amb voxel.Colour
		for _, s := range samples {
			amb = amb.Add(m.BasicBRDFAmbient(s.UV, l.ambient.Colour()).Scale(s.Falloff))
		}
		total = total.Add(amb.Scale(1 / n))
	}
	return total.Clamp()
}

// VoxelLighting lights voxel p as an infinitesimal sphere at point that faces
// every light.
func (l *Lighting) VoxelLighting(p voxel.Point, point math3d.Vec3, m tracer.Material, receivesShadows bool) voxel.Colour {
	var uv math3d.Vec2
	total := m.Emission(uv)
	for _, light := range l.lights {
		toLight, dist := light.Towards(point, l.far())
		mult := 1.0
		if receivesShadows {
			mult = l.ShadowMultiplier(point, toLight, dist)
		}
		if mult <= 0 {
			continue
		}
		total = total.Add(m.BRDFAmbient(uv, light.Emission(point, dist).Scale(mult)))
	}
	if l.takeAmbient(p) {
		total = total.Add(m.BasicBRDFAmbient(uv, l.ambient.Colour()))
	}
	return total.Clamp()
}

// FogLighting is the light arriving at point from every positional light.
// Rays are traced from the light toward the point so fog never shadows
// itself.
func (l *Lighting) FogLighting(point math3d.Vec3) voxel.Colour {
	var total voxel.Colour
	for _, light := range l.lights {
		pos, ok := light.Position()
		if !ok {
			continue
		}
		dir := point.Sub(pos)
		dist := max(voxel.Epsilon, dir.Len())
		dir = dir.Div(dist)

		mult := l.ShadowMultiplier(pos, dir, dist)
		if mult <= 0 {
			continue
		}
		total = total.Add(light.Emission(point, dist).Scale(mult))
	}
	return total.Clamp()
}

// ShadowMultiplier is the fraction of light surviving the trip from point
// along dir for dist units. Casters subtract their reduction until nothing
// is left.
func (l *Lighting) ShadowMultiplier(point, dir math3d.Vec3, dist float64) float64 {
	ray := math3d.Ray{Origin: point, Dir: dir}
	mult := 1.0
	for _, c := range l.casters {
		if mult <= 0 {
			break
		}
		if in, reduction := c.Shadow(ray, voxel.Epsilon, dist); in {
			mult -= reduction
		}
	}
	return mult
}
