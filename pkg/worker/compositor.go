package worker

import (
	"maps"
	"slices"

	"github.com/taigrr/voxtrace/pkg/tracer"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

// Compositor merges what every renderable contributes to a voxel during one
// pass. A contribution with a higher draw order replaces the voxel's colour,
// one with the same draw order is added to it and a lower one is dropped.
// Sums are clamped only when they are read, never per addend.
type Compositor struct {
	cells map[int]cell
}

type cell struct {
	order  int
	colour voxel.Colour
}

func NewCompositor() *Compositor {
	return &Compositor{cells: make(map[int]cell)}
}

// Reset forgets every voxel.
func (c *Compositor) Reset() {
	clear(c.cells)
}

// Add records colour for the voxel at flat index.
func (c *Compositor) Add(index, drawOrder int, colour voxel.Colour) {
	cur, ok := c.cells[index]
	switch {
	case !ok || drawOrder > cur.order:
		c.cells[index] = cell{order: drawOrder, colour: colour}
	case drawOrder == cur.order:
		cur.colour = cur.colour.Add(colour)
		c.cells[index] = cur
	}
}

// Len is the number of voxels holding a colour.
func (c *Compositor) Len() int {
	return len(c.cells)
}

// At returns the clamped colour of a voxel.
func (c *Compositor) At(index int) (voxel.Colour, bool) {
	cur, ok := c.cells[index]
	return cur.colour.Clamp(), ok
}

// Report lists every voxel that ended up lit with its clamped colour, in
// ascending flat index order. Black voxels are left out.
func (c *Compositor) Report(g voxel.Grid) []tracer.VoxelColour {
	out := make([]tracer.VoxelColour, 0, len(c.cells))
	for _, i := range slices.Sorted(maps.Keys(c.cells)) {
		colour := c.cells[i].colour.Clamp().Hex()
		if colour == 0 {
			continue
		}
		out = append(out, tracer.VoxelColour{Point: g.PointAt(i), Colour: colour})
	}
	return out
}
