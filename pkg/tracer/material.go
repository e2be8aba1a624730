package tracer

import (
	"fmt"
	"math"

	"github.com/taigrr/voxtrace/pkg/math3d"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

type MaterialType string

const (
	MaterialLambert  MaterialType = "l"
	MaterialEmission MaterialType = "e"
)

// Material decides how a surface answers light.
type Material interface {
	Kind() MaterialType
	IsVisible() bool
	Alpha() float64
	Albedo(uv math3d.Vec2) voxel.Colour
	Emission(uv math3d.Vec2) voxel.Colour
	BRDF(toLight, normal math3d.Vec3, uv math3d.Vec2, light voxel.Colour) voxel.Colour
	BRDFAmbient(uv math3d.Vec2, light voxel.Colour) voxel.Colour
	BasicBRDFAmbient(uv math3d.Vec2, light voxel.Colour) voxel.Colour
	Descriptor() MaterialDescriptor
}

// MaterialDescriptor is the serialized form of either material. Emissive is
// only read for Lambert materials.
type MaterialDescriptor struct {
	Type     MaterialType `json:"type"`
	Colour   voxel.Colour `json:"colour"`
	Emissive voxel.Colour `json:"emissive"`
	Alpha    float64      `json:"alpha"`
}

// BuildMaterial creates a fresh material from its descriptor.
func BuildMaterial(d MaterialDescriptor) (Material, error) {
	switch d.Type {
	case MaterialLambert:
		return &Lambert{Colour: d.Colour, Emissive: d.Emissive, Opacity: d.Alpha}, nil
	case MaterialEmission:
		return &Emission{Colour: d.Colour, Opacity: d.Alpha}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownMaterial, d.Type)
}

func visible(alpha float64) bool {
	return math.Round(alpha*255) >= 1
}

func facing(toLight, normal math3d.Vec3) float64 {
	return max(0, min(1, toLight.Dot(normal)))
}

// Lambert is a diffuse surface with an optional constant glow.
type Lambert struct {
	Colour   voxel.Colour
	Emissive voxel.Colour
	Opacity  float64
}

// NewLambert creates an opaque diffuse material.
func NewLambert(colour voxel.Colour) *Lambert {
	return &Lambert{Colour: colour, Opacity: 1}
}

func (m *Lambert) Kind() MaterialType { return MaterialLambert }
func (m *Lambert) IsVisible() bool    { return visible(m.Opacity) }
func (m *Lambert) Alpha() float64     { return m.Opacity }

func (m *Lambert) Albedo(math3d.Vec2) voxel.Colour   { return m.Colour }
func (m *Lambert) Emission(math3d.Vec2) voxel.Colour { return m.Emissive }

func (m *Lambert) BRDF(toLight, normal math3d.Vec3, uv math3d.Vec2, light voxel.Colour) voxel.Colour {
	return m.BRDFAmbient(uv, light).Scale(facing(toLight, normal))
}

func (m *Lambert) BRDFAmbient(uv math3d.Vec2, light voxel.Colour) voxel.Colour {
	return m.BasicBRDFAmbient(uv, light)
}

func (m *Lambert) BasicBRDFAmbient(uv math3d.Vec2, light voxel.Colour) voxel.Colour {
	return m.Albedo(uv).Mul(light)
}

func (m *Lambert) Descriptor() MaterialDescriptor {
	return MaterialDescriptor{Type: MaterialLambert, Colour: m.Colour, Emissive: m.Emissive, Alpha: m.Opacity}
}

// Emission is a self-lit surface. Ambient light never brightens it.
type Emission struct {
	Colour  voxel.Colour
	Opacity float64
}

// NewEmission creates an opaque emissive material.
func NewEmission(colour voxel.Colour) *Emission {
	return &Emission{Colour: colour, Opacity: 1}
}

func (m *Emission) Kind() MaterialType { return MaterialEmission }
func (m *Emission) IsVisible() bool    { return visible(m.Opacity) }
func (m *Emission) Alpha() float64     { return m.Opacity }

func (m *Emission) Albedo(math3d.Vec2) voxel.Colour     { return m.Colour }
func (m *Emission) Emission(uv math3d.Vec2) voxel.Colour { return m.Albedo(uv) }

func (m *Emission) BRDF(toLight, normal math3d.Vec3, uv math3d.Vec2, light voxel.Colour) voxel.Colour {
	return m.BRDFAmbient(uv, light).Scale(facing(toLight, normal))
}

func (m *Emission) BRDFAmbient(uv math3d.Vec2, light voxel.Colour) voxel.Colour {
	return m.Albedo(uv).Add(light)
}

func (m *Emission) BasicBRDFAmbient(math3d.Vec2, voxel.Colour) voxel.Colour {
	return voxel.Black
}

func (m *Emission) Descriptor() MaterialDescriptor {
	return MaterialDescriptor{Type: MaterialEmission, Colour: m.Colour, Alpha: m.Opacity}
}
