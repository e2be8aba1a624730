package render

import (
	"math"

	"github.com/taigrr/voxtrace/pkg/math3d"
)

// Camera is a perspective camera orbiting a target point.
type Camera struct {
	Target   math3d.Vec3
	Distance float64

	// Orbit angles in radians. Yaw turns around the vertical axis, pitch
	// raises the camera above the target.
	Yaw   float64
	Pitch float64

	FOV         float64 // vertical, radians
	AspectRatio float64 // width / height
	Near        float64
	Far         float64

	viewProj math3d.Mat4
	dirty    bool
}

func NewCamera(target math3d.Vec3, distance float64) *Camera {
	return &Camera{
		Target:      target,
		Distance:    distance,
		Pitch:       math.Pi / 8,
		FOV:         math.Pi / 3,
		AspectRatio: 1,
		Near:        0.1,
		Far:         1000,
		dirty:       true,
	}
}

func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.dirty = true
}

// Orbit turns the camera around its target. Pitch stays short of straight up
// or down.
func (c *Camera) Orbit(deltaYaw, deltaPitch float64) {
	const maxPitch = math.Pi/2 - 0.01
	c.Yaw += deltaYaw
	c.Pitch = max(-maxPitch, min(maxPitch, c.Pitch+deltaPitch))
	c.dirty = true
}

// Zoom moves the camera toward (negative) or away from its target.
func (c *Camera) Zoom(delta float64) {
	c.Distance = max(c.Near*2, c.Distance+delta)
	c.dirty = true
}

// Position is where the camera sits in world space.
func (c *Camera) Position() math3d.Vec3 {
	return c.Target.Add(math3d.V3(
		c.Distance*math.Cos(c.Pitch)*math.Sin(c.Yaw),
		c.Distance*math.Sin(c.Pitch),
		c.Distance*math.Cos(c.Pitch)*math.Cos(c.Yaw),
	))
}

// ViewProjectionMatrix returns projection * view.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	if c.dirty {
		// The camera looks at its target, so the view rotation undoes the orbit.
		view := math3d.RotateX(c.Pitch).
			Mul(math3d.RotateY(-c.Yaw)).
			Mul(math3d.Translate(c.Position().Negate()))
		c.viewProj = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far).Mul(view)
		c.dirty = false
	}
	return c.viewProj
}

// WorldToScreen projects a world point to pixel coordinates. Depth grows
// with distance from the camera.
func (c *Camera) WorldToScreen(p math3d.Vec3, width, height int) (x, y, depth float64, visible bool) {
	clip := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(p, 1))
	if clip.W <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}
	x = (ndc.X + 1) * 0.5 * float64(width)
	y = (1 - ndc.Y) * 0.5 * float64(height)
	return x, y, clip.W, true
}
