package shade

import (
	"github.com/taigrr/voxtrace/pkg/math3d"
	"github.com/taigrr/voxtrace/pkg/tracer"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

// Voxel shades the single cell that holds its position.
type Voxel struct {
	header
	position math3d.Vec3
	cell     voxel.Point
	material tracer.Material
	options  tracer.ShadowOptions
}

func (v *Voxel) Kind() tracer.Type  { return tracer.TypeVoxel }
func (v *Voxel) CastsShadows() bool { return v.options.CastsShadows }

func (v *Voxel) Apply(d tracer.Descriptor) error {
	vd, ok := d.(*tracer.VoxelDescriptor)
	if !ok {
		return kindMismatch(v, d)
	}
	m, err := tracer.BuildMaterial(vd.Material)
	if err != nil {
		return err
	}
	v.header.set(vd.Header)
	v.position = vd.Position
	v.cell = voxel.PointFromVec(vd.Position)
	v.material = m
	v.options = vd.Options
	return nil
}

func (v *Voxel) Reset() { *v = Voxel{} }

func (v *Voxel) Shade(p voxel.Point, l *Lighting) (voxel.Colour, float64, bool) {
	if v.material == nil || !v.material.IsVisible() || p != v.cell {
		return voxel.Black, 0, false
	}
	return l.VoxelLighting(p, v.position, v.material, v.options.ReceivesShadows), v.material.Alpha(), true
}

// Shadow only counts rays that enter the cell from outside, so a voxel never
// shadows light leaving its own cell.
func (v *Voxel) Shadow(r math3d.Ray, near, far float64) (bool, float64) {
	if !v.options.CastsShadows || v.material == nil {
		return false, 0
	}
	tmin, _, ok := r.IntersectBox(v.cell.Box())
	return ok && tmin >= near && tmin <= far, v.material.Alpha()
}
