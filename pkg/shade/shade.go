// Package shade holds the worker-side copies of scene objects. Each shader is
// rebuilt from a tracer descriptor and turns "this voxel, this shape" into
// surface samples that the Lighting evaluator resolves into a colour.
package shade

import (
	"github.com/taigrr/voxtrace/pkg/math3d"
	"github.com/taigrr/voxtrace/pkg/tracer"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

// Sample is one candidate surface location for a voxel.
type Sample struct {
	Point  math3d.Vec3
	Normal math3d.Vec3
	UV     math3d.Vec2
	// Falloff in [0,1] weights the sample; 1 is on the surface.
	Falloff float64
}

// Shader is any worker-side object.
type Shader interface {
	ID() int
	Kind() tracer.Type
	DrawOrder() int
	// Apply overwrites every field from d, which must be of the shader's kind,
	// and drops all cached per-voxel state.
	Apply(d tracer.Descriptor) error
	// Reset returns the shader to its zero state before it is pooled.
	Reset()
}

// Renderable shaders colour the voxels they occupy.
type Renderable interface {
	Shader
	// Shade returns the colour of voxel p and its opacity. ok is false when the
	// shader contributes nothing to p.
	Shade(p voxel.Point, l *Lighting) (c voxel.Colour, alpha float64, ok bool)
}

// Caster shaders block light travelling along a ray segment.
type Caster interface {
	Shader
	CastsShadows() bool
	// Shadow tests the segment [near, far] of r. reduction is how much of the
	// light it removes when inShadow is set.
	Shadow(r math3d.Ray, near, far float64) (inShadow bool, reduction float64)
}

// Light shaders illuminate the scene.
type Light interface {
	Shader
	// Towards returns the unit direction from point to the light and the
	// distance along it. far is used by lights without a position.
	Towards(point math3d.Vec3, far float64) (math3d.Vec3, float64)
	// Emission is the light arriving at point from distance dist.
	Emission(point math3d.Vec3, dist float64) voxel.Colour
	// Position reports where the light is; ok is false for directional lights.
	Position() (math3d.Vec3, bool)
}

// header is embedded by every shader.
type header struct {
	id        int
	drawOrder int
}

func (h *header) ID() int        { return h.id }
func (h *header) DrawOrder() int { return h.drawOrder }

func (h *header) set(m tracer.Header) {
	h.id = m.ID
	h.drawOrder = m.DrawOrder
}

// memo caches per-voxel samples until the owning shader is re-applied.
type memo map[int][]Sample

func (m *memo) reset() {
	if *m == nil {
		*m = make(memo)
		return
	}
	clear(*m)
}
