package voxel

import (
	"fmt"
	"math"

	"github.com/taigrr/voxtrace/pkg/math3d"
)

// Point is an integer cell coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Pt creates a point.
func Pt(x, y, z int) Point {
	return Point{x, y, z}
}

// PointFromVec returns the cell containing v.
func PointFromVec(v math3d.Vec3) Point {
	return Point{int(math.Floor(v.X)), int(math.Floor(v.Y)), int(math.Floor(v.Z))}
}

// Vec returns the cell's minimum corner.
func (p Point) Vec() math3d.Vec3 {
	return math3d.V3(float64(p.X), float64(p.Y), float64(p.Z))
}

// Centre returns the middle of the cell.
func (p Point) Centre() math3d.Vec3 {
	return p.Vec().AddScalar(UnitSize / 2)
}

// Box returns the cell volume.
func (p Point) Box() math3d.Box3 {
	min := p.Vec()
	return math3d.NewBox3(min, min.AddScalar(UnitSize))
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}
