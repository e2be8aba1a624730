package voxel

import "github.com/taigrr/voxtrace/pkg/math3d"

// Grid is a cube of Size³ voxels.
type Grid struct {
	Size int
}

// NewGrid creates a grid, falling back to DefaultGridSize for non-positive sizes.
func NewGrid(size int) Grid {
	if size <= 0 {
		size = DefaultGridSize
	}
	return Grid{Size: size}
}

// Total is the number of voxels in the grid.
func (g Grid) Total() int {
	return g.Size * g.Size * g.Size
}

// FlatIndex maps a point to x·g² + y·g + z. The result is only meaningful for
// points inside the grid.
func (g Grid) FlatIndex(p Point) int {
	return p.X*g.Size*g.Size + p.Y*g.Size + p.Z
}

// PointAt is the inverse of FlatIndex.
func (g Grid) PointAt(index int) Point {
	s2 := g.Size * g.Size
	return Point{index / s2, (index % s2) / g.Size, index % g.Size}
}

// Contains reports whether p lies inside the grid.
func (g Grid) Contains(p Point) bool {
	return p.X >= 0 && p.X < g.Size &&
		p.Y >= 0 && p.Y < g.Size &&
		p.Z >= 0 && p.Z < g.Size
}

// Bounds returns the world-space volume covered by the grid.
func (g Grid) Bounds() math3d.Box3 {
	s := float64(g.Size) * UnitSize
	return math3d.NewBox3(math3d.Zero3(), math3d.V3(s, s, s))
}

// Clamp returns the sub-range of cells overlapping b, or ok=false when b misses
// the grid.
func (g Grid) Clamp(b math3d.Box3) (lo, hi Point, ok bool) {
	if b.IsEmpty() || !b.IntersectsBox(g.Bounds()) {
		return Point{}, Point{}, false
	}
	// Intersect before converting so huge boxes cannot overflow int.
	bounds := g.Bounds()
	lo = PointFromVec(b.Min.Max(bounds.Min))
	hi = PointFromVec(b.Max.Min(bounds.Max))
	hi = Point{min(hi.X, g.Size-1), min(hi.Y, g.Size-1), min(hi.Z, g.Size-1)}
	return lo, hi, lo.X <= hi.X && lo.Y <= hi.Y && lo.Z <= hi.Z
}
