package tracer

import (
	"slices"

	"github.com/google/uuid"

	"github.com/taigrr/voxtrace/pkg/math3d"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

// Header carries the fields every descriptor shares.
type Header struct {
	ID        int `json:"id"`
	DrawOrder int `json:"drawOrder"`
}

func (h Header) Meta() Header { return h }

// Descriptor is the plain data snapshot of one scene object. Descriptors own
// all of their memory so that a worker can keep one without sharing anything
// with the controller.
type Descriptor interface {
	Kind() Type
	Meta() Header
	Clone() Descriptor
}

// ShadowOptions select whether a shape blocks light and whether it is darkened
// by other shapes.
type ShadowOptions struct {
	CastsShadows    bool `json:"castsShadows"`
	ReceivesShadows bool `json:"receivesShadows"`
}

// DefaultShadowOptions casts and receives.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{CastsShadows: true, ReceivesShadows: true}
}

// ShapeOptions extend ShadowOptions with solid filling for boxes and spheres.
type ShapeOptions struct {
	Fill bool `json:"fill"`
	ShadowOptions
}

func DefaultShapeOptions() ShapeOptions {
	return ShapeOptions{ShadowOptions: DefaultShadowOptions()}
}

// Attenuation is the distance falloff of point and spot lights:
// 1 / (Quadratic·d² + Linear·d + 1).
type Attenuation struct {
	Quadratic float64 `json:"quadratic"`
	Linear    float64 `json:"linear"`
}

func DefaultAttenuation() Attenuation {
	return Attenuation{Quadratic: 0, Linear: 1}
}

type BoxDescriptor struct {
	Header
	Min      math3d.Vec3        `json:"min"`
	Max      math3d.Vec3        `json:"max"`
	Material MaterialDescriptor `json:"material"`
	Options  ShapeOptions       `json:"options"`
}

func (d *BoxDescriptor) Kind() Type { return TypeBox }
func (d *BoxDescriptor) Clone() Descriptor {
	c := *d
	return &c
}

type SphereDescriptor struct {
	Header
	Center   math3d.Vec3        `json:"center"`
	Radius   float64            `json:"radius"`
	Material MaterialDescriptor `json:"material"`
	Options  ShapeOptions       `json:"options"`
}

func (d *SphereDescriptor) Kind() Type { return TypeSphere }
func (d *SphereDescriptor) Clone() Descriptor {
	c := *d
	return &c
}

// Geometry is an immutable indexed triangle list. A new ID is minted whenever
// the vertex data changes, so receivers can keep derived data such as a BVH
// for as long as the ID stays the same.
type Geometry struct {
	ID        uuid.UUID     `json:"id"`
	Positions []math3d.Vec3 `json:"positions"`
	Normals   []math3d.Vec3 `json:"normals"`
	UVs       []math3d.Vec2 `json:"uvs,omitempty"`
	Indices   []int         `json:"indices"`
}

// TriangleCount is the number of complete index triples.
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// Triangle returns face i in geometry space.
func (g *Geometry) Triangle(i int) math3d.Triangle {
	return math3d.Triangle{
		A: g.Positions[g.Indices[3*i]],
		B: g.Positions[g.Indices[3*i+1]],
		C: g.Positions[g.Indices[3*i+2]],
	}
}

// Triangles returns every face in geometry space, skipping faces that index
// past the vertex list.
func (g *Geometry) Triangles() []math3d.Triangle {
	out := make([]math3d.Triangle, 0, g.TriangleCount())
	for i := range g.TriangleCount() {
		if !g.validFace(i) {
			continue
		}
		out = append(out, g.Triangle(i))
	}
	return out
}

func (g *Geometry) validFace(i int) bool {
	for _, idx := range g.Indices[3*i : 3*i+3] {
		if idx < 0 || idx >= len(g.Positions) {
			return false
		}
	}
	return true
}

func (g *Geometry) Clone() *Geometry {
	if g == nil {
		return nil
	}
	return &Geometry{
		ID:        g.ID,
		Positions: slices.Clone(g.Positions),
		Normals:   slices.Clone(g.Normals),
		UVs:       slices.Clone(g.UVs),
		Indices:   slices.Clone(g.Indices),
	}
}

type MeshDescriptor struct {
	Header
	Geometry *Geometry         `json:"geometry"`
	Matrix   math3d.Mat4        `json:"matrix"`
	Material MaterialDescriptor `json:"material"`
}

func (d *MeshDescriptor) Kind() Type { return TypeMesh }
func (d *MeshDescriptor) Clone() Descriptor {
	c := *d
	c.Geometry = d.Geometry.Clone()
	return &c
}

type VoxelDescriptor struct {
	Header
	Position math3d.Vec3        `json:"position"`
	Material MaterialDescriptor `json:"material"`
	Options  ShadowOptions      `json:"options"`
}

func (d *VoxelDescriptor) Kind() Type { return TypeVoxel }
func (d *VoxelDescriptor) Clone() Descriptor {
	c := *d
	return &c
}

// FogOptions tint and scale the light a fog volume scatters.
type FogOptions struct {
	Colour     voxel.Colour `json:"colour"`
	Scattering float64      `json:"scattering"`
}

func DefaultFogOptions() FogOptions {
	return FogOptions{Colour: voxel.White, Scattering: 0.1}
}

type FogBoxDescriptor struct {
	Header
	Min     math3d.Vec3 `json:"min"`
	Max     math3d.Vec3 `json:"max"`
	Options FogOptions  `json:"options"`
}

func (d *FogBoxDescriptor) Kind() Type { return TypeFogBox }
func (d *FogBoxDescriptor) Clone() Descriptor {
	c := *d
	return &c
}

type FogSphereDescriptor struct {
	Header
	Center  math3d.Vec3 `json:"center"`
	Radius  float64     `json:"radius"`
	Options FogOptions  `json:"options"`
}

func (d *FogSphereDescriptor) Kind() Type { return TypeFogSphere }
func (d *FogSphereDescriptor) Clone() Descriptor {
	c := *d
	return &c
}

// Metaball is one blob of an isofield. Coordinates are normalized to the
// field, so 0.5 is the middle. A zero colour colours the ball by its position.
type Metaball struct {
	X        float64      `json:"x"`
	Y        float64      `json:"y"`
	Z        float64      `json:"z"`
	Strength float64      `json:"strength"`
	Subtract float64      `json:"subtract"`
	Colour   voxel.Colour `json:"colour"`
}

// Wall is a field contribution rising toward the zero plane of one axis.
type Wall struct {
	Strength float64 `json:"strength"`
	Subtract float64 `json:"subtract"`
}

type Walls struct {
	X *Wall `json:"x,omitempty"`
	Y *Wall `json:"y,omitempty"`
	Z *Wall `json:"z,omitempty"`
}

func (w Walls) clone() Walls {
	cp := func(p *Wall) *Wall {
		if p == nil {
			return nil
		}
		c := *p
		return &c
	}
	return Walls{X: cp(w.X), Y: cp(w.Y), Z: cp(w.Z)}
}

type IsofieldDescriptor struct {
	Header
	Size      int                `json:"size"`
	Metaballs []Metaball         `json:"metaballs"`
	Walls     Walls              `json:"walls"`
	Material  MaterialDescriptor `json:"material"`
	Options   ShadowOptions      `json:"options"`
}

func (d *IsofieldDescriptor) Kind() Type { return TypeIsofield }
func (d *IsofieldDescriptor) Clone() Descriptor {
	c := *d
	c.Metaballs = slices.Clone(d.Metaballs)
	c.Walls = d.Walls.clone()
	return &c
}

type PointLightDescriptor struct {
	Header
	Position    math3d.Vec3  `json:"position"`
	Colour      voxel.Colour `json:"colour"`
	Attenuation Attenuation  `json:"attenuation"`
}

func (d *PointLightDescriptor) Kind() Type { return TypePointLight }
func (d *PointLightDescriptor) Clone() Descriptor {
	c := *d
	return &c
}

// SpotLightDescriptor angles are full cone angles in radians.
type SpotLightDescriptor struct {
	Header
	Position    math3d.Vec3  `json:"position"`
	Direction   math3d.Vec3  `json:"direction"`
	Colour      voxel.Colour `json:"colour"`
	InnerAngle  float64      `json:"innerAngle"`
	OuterAngle  float64      `json:"outerAngle"`
	Attenuation Attenuation  `json:"attenuation"`
}

func (d *SpotLightDescriptor) Kind() Type { return TypeSpotLight }
func (d *SpotLightDescriptor) Clone() Descriptor {
	c := *d
	return &c
}

type DirectionalLightDescriptor struct {
	Header
	Direction math3d.Vec3  `json:"direction"`
	Colour    voxel.Colour `json:"colour"`
}

func (d *DirectionalLightDescriptor) Kind() Type { return TypeDirectionalLight }
func (d *DirectionalLightDescriptor) Clone() Descriptor {
	c := *d
	return &c
}

type AmbientLightDescriptor struct {
	Header
	Colour voxel.Colour `json:"colour"`
}

func (d *AmbientLightDescriptor) Kind() Type { return TypeAmbientLight }
func (d *AmbientLightDescriptor) Clone() Descriptor {
	c := *d
	return &c
}

// CloneAll deep-copies a descriptor list.
func CloneAll(ds []Descriptor) []Descriptor {
	if ds == nil {
		return nil
	}
	out := make([]Descriptor, len(ds))
	for i, d := range ds {
		out[i] = d.Clone()
	}
	return out
}
