package tracer

import "github.com/taigrr/voxtrace/pkg/voxel"

// Isofield is a metaball scalar field covering the cube [0,size)³ of the grid.
type Isofield struct {
	object
	size      int
	metaballs []Metaball
	walls     Walls
	material  Material
	options   ShadowOptions
}

func NewIsofield(size int, material Material, options ShadowOptions) *Isofield {
	return &Isofield{object: newObject(TypeIsofield), size: size, material: material, options: options}
}

func (f *Isofield) Size() int             { return f.size }
func (f *Isofield) Metaballs() []Metaball { return f.metaballs }
func (f *Isofield) Material() Material    { return f.material }

func (f *Isofield) SetMetaballs(balls []Metaball) {
	f.metaballs = append(f.metaballs[:0], balls...)
	f.MakeDirty()
}

func (f *Isofield) SetWalls(w Walls) {
	f.walls = w.clone()
	f.MakeDirty()
}

func (f *Isofield) SetMaterial(m Material) { f.material = m; f.MakeDirty() }

func (f *Isofield) SetOptions(o ShadowOptions) {
	f.options = o
	f.MakeDirty()
}

func (f *Isofield) Voxels(g voxel.Grid) []voxel.Point {
	return voxel.GridVoxels(g, f.size)
}

func (f *Isofield) Descriptor() Descriptor {
	d := &IsofieldDescriptor{
		Header:    f.header(),
		Size:      f.size,
		Metaballs: append([]Metaball(nil), f.metaballs...),
		Walls:     f.walls.clone(),
		Material:  f.material.Descriptor(),
		Options:   f.options,
	}
	return d
}
