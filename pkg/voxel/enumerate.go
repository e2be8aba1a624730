package voxel

import (
	"maps"
	"math"
	"slices"

	"github.com/taigrr/voxtrace/pkg/math3d"
)

// The enumerators below return the cells a shape occupies, in ascending flat
// index order, clipped to the grid. A cell is tested through its centre.

// SphereVoxels returns the cells on the sphere's surface band, plus the interior
// when fill is set. A sphere smaller than a cell still occupies the cell holding
// its centre.
func SphereVoxels(g Grid, centre math3d.Vec3, radius float64, fill bool) []Point {
	reach := radius + DiagonalErrUnits
	bounds := math3d.NewBox3(centre.AddScalar(-reach), centre.AddScalar(reach))
	inner := radius - 1.5*DiagonalErrUnits
	pts := scan(g, bounds, func(p Point) bool {
		d := p.Centre().Distance(centre)
		if d > reach {
			return false
		}
		return fill || d >= inner
	})
	if len(pts) == 0 {
		if c := PointFromVec(centre); g.Contains(c) {
			pts = append(pts, c)
		}
	}
	return pts
}

// BallVoxels returns every cell whose centre lies inside the sphere.
func BallVoxels(g Grid, centre math3d.Vec3, radius float64) []Point {
	bounds := math3d.NewBox3(centre.AddScalar(-radius), centre.AddScalar(radius))
	return scan(g, bounds, func(p Point) bool {
		return p.Centre().Distance(centre) <= radius
	})
}

// BoxVoxels returns the cells whose centre lies inside b. Unless fill is set,
// only cells within half a cell diagonal of a face are kept.
func BoxVoxels(g Grid, b math3d.Box3, fill bool) []Point {
	planes := b.Planes()
	return scan(g, b, func(p Point) bool {
		c := p.Centre()
		if !b.ContainsPoint(c) {
			return false
		}
		if fill {
			return true
		}
		for _, pl := range planes {
			if math.Abs(pl.SignedDistance(c)) <= DiagonalErrUnits {
				return true
			}
		}
		return false
	})
}

// CellVoxels returns the single cell containing pos.
func CellVoxels(g Grid, pos math3d.Vec3) []Point {
	p := PointFromVec(pos)
	if !g.Contains(p) {
		return nil
	}
	return []Point{p}
}

// TriangleVoxels returns the cells that hold the closest point of at least one
// triangle to their centre.
func TriangleVoxels(g Grid, tris []math3d.Triangle) []Point {
	seen := make(map[int]struct{})
	for _, t := range tris {
		pts := scan(g, t.Bounds(), func(p Point) bool {
			if _, ok := seen[g.FlatIndex(p)]; ok {
				return false
			}
			return p.Box().ContainsPoint(t.ClosestPoint(p.Centre()))
		})
		for _, p := range pts {
			seen[g.FlatIndex(p)] = struct{}{}
		}
	}
	indices := slices.Sorted(maps.Keys(seen))
	out := make([]Point, len(indices))
	for i, idx := range indices {
		out[i] = g.PointAt(idx)
	}
	return out
}

// GridVoxels returns every cell of the cube [0,size)³ that fits in g.
func GridVoxels(g Grid, size int) []Point {
	s := float64(size) * UnitSize
	return scan(g, math3d.NewBox3(math3d.Zero3(), math3d.V3(s, s, s)), func(p Point) bool {
		return p.X < size && p.Y < size && p.Z < size
	})
}

func scan(g Grid, b math3d.Box3, keep func(Point) bool) []Point {
	lo, hi, ok := g.Clamp(b)
	if !ok {
		return nil
	}
	var out []Point
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for z := lo.Z; z <= hi.Z; z++ {
				if p := (Point{x, y, z}); keep(p) {
					out = append(out, p)
				}
			}
		}
	}
	return out
}
