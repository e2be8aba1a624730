package tracer

import (
	"github.com/taigrr/voxtrace/pkg/math3d"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

// Box is an axis-aligned box, hollow unless filled.
type Box struct {
	object
	min, max math3d.Vec3
	material Material
	options  ShapeOptions
}

func NewBox(min, max math3d.Vec3, material Material, options ShapeOptions) *Box {
	return &Box{object: newObject(TypeBox), min: min, max: max, material: material, options: options}
}

func (b *Box) Min() math3d.Vec3       { return b.min }
func (b *Box) Max() math3d.Vec3       { return b.max }
func (b *Box) Material() Material     { return b.material }
func (b *Box) Options() ShapeOptions  { return b.options }
func (b *Box) Bounds() math3d.Box3    { return math3d.NewBox3(b.min, b.max) }
func (b *Box) SetMaterial(m Material) { b.material = m; b.MakeDirty() }
func (b *Box) SetOptions(o ShapeOptions) {
	b.options = o
	b.MakeDirty()
}

func (b *Box) SetMinMax(min, max math3d.Vec3) {
	b.min, b.max = min, max
	b.MakeDirty()
}

// SetCenter moves the box without resizing it.
func (b *Box) SetCenter(c math3d.Vec3) {
	half := b.max.Sub(b.min).Scale(0.5)
	b.SetMinMax(c.Sub(half), c.Add(half))
}

func (b *Box) Voxels(g voxel.Grid) []voxel.Point {
	return voxel.BoxVoxels(g, b.Bounds(), b.options.Fill)
}

func (b *Box) Descriptor() Descriptor {
	return &BoxDescriptor{Header: b.header(), Min: b.min, Max: b.max, Material: b.material.Descriptor(), Options: b.options}
}

type Sphere struct {
	object
	center   math3d.Vec3
	radius   float64
	material Material
	options  ShapeOptions
}

func NewSphere(center math3d.Vec3, radius float64, material Material, options ShapeOptions) *Sphere {
	return &Sphere{object: newObject(TypeSphere), center: center, radius: radius, material: material, options: options}
}

func (s *Sphere) Center() math3d.Vec3    { return s.center }
func (s *Sphere) Radius() float64        { return s.radius }
func (s *Sphere) Material() Material     { return s.material }
func (s *Sphere) Options() ShapeOptions  { return s.options }
func (s *Sphere) SetCenter(c math3d.Vec3) { s.center = c; s.MakeDirty() }
func (s *Sphere) SetRadius(r float64)    { s.radius = r; s.MakeDirty() }
func (s *Sphere) SetMaterial(m Material) { s.material = m; s.MakeDirty() }
func (s *Sphere) SetOptions(o ShapeOptions) {
	s.options = o
	s.MakeDirty()
}

func (s *Sphere) Voxels(g voxel.Grid) []voxel.Point {
	return voxel.SphereVoxels(g, s.center, s.radius+voxel.Epsilon, s.options.Fill)
}

func (s *Sphere) Descriptor() Descriptor {
	return &SphereDescriptor{Header: s.header(), Center: s.center, Radius: s.radius, Material: s.material.Descriptor(), Options: s.options}
}

// Voxel lights a single cell as if it were an infinitesimal sphere.
type Voxel struct {
	object
	position math3d.Vec3
	material Material
	options  ShadowOptions
}

func NewVoxel(position math3d.Vec3, material Material, options ShadowOptions) *Voxel {
	return &Voxel{object: newObject(TypeVoxel), position: position, material: material, options: options}
}

func (v *Voxel) Position() math3d.Vec3 { return v.position }
func (v *Voxel) Material() Material    { return v.material }
func (v *Voxel) SetPosition(p math3d.Vec3) {
	v.position = p
	v.MakeDirty()
}
func (v *Voxel) SetMaterial(m Material) { v.material = m; v.MakeDirty() }
func (v *Voxel) SetOptions(o ShadowOptions) {
	v.options = o
	v.MakeDirty()
}

func (v *Voxel) Voxels(g voxel.Grid) []voxel.Point {
	return voxel.CellVoxels(g, v.position)
}

func (v *Voxel) Descriptor() Descriptor {
	return &VoxelDescriptor{Header: v.header(), Position: v.position, Material: v.material.Descriptor(), Options: v.options}
}

// FogBox scatters the light passing through a box.
type FogBox struct {
	object
	min, max math3d.Vec3
	options  FogOptions
}

func NewFogBox(min, max math3d.Vec3, options FogOptions) *FogBox {
	return &FogBox{object: newObject(TypeFogBox), min: min, max: max, options: options}
}

func (f *FogBox) Options() FogOptions { return f.options }
func (f *FogBox) SetMinMax(min, max math3d.Vec3) {
	f.min, f.max = min, max
	f.MakeDirty()
}
func (f *FogBox) SetOptions(o FogOptions) {
	f.options = o
	f.MakeDirty()
}

func (f *FogBox) Voxels(g voxel.Grid) []voxel.Point {
	return voxel.BoxVoxels(g, math3d.NewBox3(f.min, f.max), true)
}

func (f *FogBox) Descriptor() Descriptor {
	return &FogBoxDescriptor{Header: f.header(), Min: f.min, Max: f.max, Options: f.options}
}

// FogSphere scatters the light passing through a ball.
type FogSphere struct {
	object
	center  math3d.Vec3
	radius  float64
	options FogOptions
}

func NewFogSphere(center math3d.Vec3, radius float64, options FogOptions) *FogSphere {
	return &FogSphere{object: newObject(TypeFogSphere), center: center, radius: radius, options: options}
}

func (f *FogSphere) SetCenter(c math3d.Vec3) { f.center = c; f.MakeDirty() }
func (f *FogSphere) SetRadius(r float64)    { f.radius = r; f.MakeDirty() }
func (f *FogSphere) SetOptions(o FogOptions) {
	f.options = o
	f.MakeDirty()
}

func (f *FogSphere) Voxels(g voxel.Grid) []voxel.Point {
	return voxel.BallVoxels(g, f.center, f.radius)
}

func (f *FogSphere) Descriptor() Descriptor {
	return &FogSphereDescriptor{Header: f.header(), Center: f.center, Radius: f.radius, Options: f.options}
}
