package tracer

import (
	"github.com/taigrr/voxtrace/pkg/math3d"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

// PointLight radiates from a position and shows itself in the voxel it sits in.
type PointLight struct {
	object
	position    math3d.Vec3
	colour      voxel.Colour
	attenuation Attenuation
}

func NewPointLight(position math3d.Vec3, colour voxel.Colour, attenuation Attenuation) *PointLight {
	return &PointLight{object: newObject(TypePointLight), position: position, colour: colour, attenuation: attenuation}
}

func (l *PointLight) Position() math3d.Vec3 { return l.position }
func (l *PointLight) Colour() voxel.Colour  { return l.colour }
func (l *PointLight) SetPosition(p math3d.Vec3) {
	l.position = p
	l.MakeDirty()
}
func (l *PointLight) SetColour(c voxel.Colour) { l.colour = c; l.MakeDirty() }
func (l *PointLight) SetAttenuation(a Attenuation) {
	l.attenuation = a
	l.MakeDirty()
}

func (l *PointLight) Voxels(g voxel.Grid) []voxel.Point {
	return voxel.CellVoxels(g, l.position)
}

func (l *PointLight) Descriptor() Descriptor {
	return &PointLightDescriptor{Header: l.header(), Position: l.position, Colour: l.colour, Attenuation: l.attenuation}
}

// SpotLight is a point light restricted to a cone around Direction.
type SpotLight struct {
	object
	position    math3d.Vec3
	direction   math3d.Vec3
	colour      voxel.Colour
	inner       float64
	outer       float64
	attenuation Attenuation
}

// NewSpotLight takes full cone angles in radians. Light is full strength
// inside the inner cone and fades to nothing at the outer cone.
func NewSpotLight(position, direction math3d.Vec3, colour voxel.Colour, inner, outer float64, attenuation Attenuation) *SpotLight {
	return &SpotLight{
		object:      newObject(TypeSpotLight),
		position:    position,
		direction:   direction.Normalize(),
		colour:      colour,
		inner:       inner,
		outer:       outer,
		attenuation: attenuation,
	}
}

func (l *SpotLight) Position() math3d.Vec3  { return l.position }
func (l *SpotLight) Direction() math3d.Vec3 { return l.direction }
func (l *SpotLight) SetPosition(p math3d.Vec3) {
	l.position = p
	l.MakeDirty()
}
func (l *SpotLight) SetDirection(d math3d.Vec3) {
	l.direction = d.Normalize()
	l.MakeDirty()
}
func (l *SpotLight) SetColour(c voxel.Colour) { l.colour = c; l.MakeDirty() }
func (l *SpotLight) SetAngles(inner, outer float64) {
	l.inner, l.outer = inner, outer
	l.MakeDirty()
}

func (l *SpotLight) Voxels(g voxel.Grid) []voxel.Point {
	return voxel.CellVoxels(g, l.position)
}

func (l *SpotLight) Descriptor() Descriptor {
	return &SpotLightDescriptor{
		Header:      l.header(),
		Position:    l.position,
		Direction:   l.direction,
		Colour:      l.colour,
		InnerAngle:  l.inner,
		OuterAngle:  l.outer,
		Attenuation: l.attenuation,
	}
}

// DirectionalLight shines along Direction from infinitely far away.
type DirectionalLight struct {
	object
	direction math3d.Vec3
	colour    voxel.Colour
}

func NewDirectionalLight(direction math3d.Vec3, colour voxel.Colour) *DirectionalLight {
	return &DirectionalLight{object: newObject(TypeDirectionalLight), direction: direction.Normalize(), colour: colour}
}

func (l *DirectionalLight) SetDirection(d math3d.Vec3) {
	l.direction = d.Normalize()
	l.MakeDirty()
}
func (l *DirectionalLight) SetColour(c voxel.Colour) { l.colour = c; l.MakeDirty() }

func (l *DirectionalLight) Descriptor() Descriptor {
	return &DirectionalLightDescriptor{Header: l.header(), Direction: l.direction, Colour: l.colour}
}

type AmbientLight struct {
	object
	colour voxel.Colour
}

func NewAmbientLight(colour voxel.Colour) *AmbientLight {
	return &AmbientLight{object: newObject(TypeAmbientLight), colour: colour}
}

func (l *AmbientLight) Colour() voxel.Colour      { return l.colour }
func (l *AmbientLight) SetColour(c voxel.Colour) { l.colour = c; l.MakeDirty() }

func (l *AmbientLight) Descriptor() Descriptor {
	return &AmbientLightDescriptor{Header: l.header(), Colour: l.colour}
}
