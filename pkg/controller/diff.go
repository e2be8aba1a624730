package controller

import (
	"cmp"
	"maps"
	"slices"
	"sync"

	"github.com/taigrr/voxtrace/pkg/tracer"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

// FrameDiff is everything that changed in the scene since the last frame.
// Descriptors are snapshots: the objects they came from may keep changing.
type FrameDiff struct {
	// Reinit makes workers drop their mirror. Renderables, Lights and Voxels
	// then hold the whole scene.
	Reinit  bool
	Removed []int
	// Renderables and Lights are in ascending ID order. Point and spot lights
	// appear in both.
	Renderables []tracer.Descriptor
	Lights      []tracer.Descriptor
	Ambient     tracer.Descriptor
	// Voxels holds the voxels of every renderable listed in Renderables.
	Voxels map[int][]voxel.Point
}

// Empty reports whether applying d would change nothing.
func (d FrameDiff) Empty() bool {
	return !d.Reinit && len(d.Removed) == 0 && len(d.Renderables) == 0 &&
		len(d.Lights) == 0 && d.Ambient == nil
}

// Diff collects the pending changes and marks every object clean. The result
// must be passed to RenderDiff or the workers miss those changes.
func (c *Controller) Diff() (FrameDiff, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return FrameDiff{}, ErrClosed
	}
	return c.diff(), nil
}

func (c *Controller) diff() FrameDiff {
	d := FrameDiff{
		Reinit:  c.reinit,
		Removed: c.removed,
		Voxels:  make(map[int][]voxel.Point),
	}
	c.removed = nil
	c.reinit = false

	include := func(o tracer.Object) bool { return d.Reinit || o.Dirty() }

	var dirty []tracer.Renderable
	for _, id := range slices.Sorted(maps.Keys(c.objects)) {
		o := c.objects[id]
		if !include(o) {
			continue
		}
		_, mapped := c.mapping[id]
		if r, ok := c.renderables[id]; ok && (o.Dirty() || !mapped) {
			dirty = append(dirty, r)
		}
		// Clean refreshes cached transforms, so it comes before the snapshot.
		o.Clean()
		desc := o.Descriptor()
		if _, ok := c.renderables[id]; ok {
			d.Renderables = append(d.Renderables, desc)
		}
		switch {
		case o == c.ambient:
			d.Ambient = desc
		case o.Kind().IsLight():
			d.Lights = append(d.Lights, desc)
		}
	}

	for i, points := range c.voxelize(dirty) {
		c.mapping[dirty[i].ID()] = points
	}
	for _, desc := range d.Renderables {
		id := desc.Meta().ID
		d.Voxels[id] = c.mapping[id]
	}
	return d
}

// voxelize enumerates the voxels of each renderable on the worker pool.
func (c *Controller) voxelize(rs []tracer.Renderable) [][]voxel.Point {
	out := make([][]voxel.Point, len(rs))
	var wg sync.WaitGroup
	wg.Add(len(rs))
	for i, r := range rs {
		c.pool.Submit(func() {
			defer wg.Done()
			out[i] = r.Voxels(c.grid)
		})
	}
	wg.Wait()
	return out
}

// chunk splits voxel lists by the worker owning each voxel. Voxels outside
// the grid are dropped.
func (c *Controller) chunk(voxels map[int][]voxel.Point) []map[int][]voxel.Point {
	total := c.grid.Total()
	chunks := make([]map[int][]voxel.Point, len(c.workers))
	for i := range chunks {
		chunks[i] = make(map[int][]voxel.Point)
	}
	for _, id := range slices.Sorted(maps.Keys(voxels)) {
		for _, p := range voxels[id] {
			idx := -1
			if c.grid.Contains(p) {
				idx = c.grid.FlatIndex(p)
			}
			owner := voxel.Owner(idx, total, c.perWorker)
			if owner < 0 || owner >= len(chunks) {
				c.log.Debugf("dropping voxel %v of %d: outside the grid", p, id)
				continue
			}
			chunks[owner][id] = append(chunks[owner][id], p)
		}
	}
	return chunks
}

// refs flattens a mapping into (voxel, renderable) pairs sorted by ID and then
// by flat index.
func (c *Controller) refs(m map[int][]voxel.Point) []tracer.VoxelRef {
	var out []tracer.VoxelRef
	for id, points := range m {
		for _, p := range points {
			out = append(out, tracer.VoxelRef{Point: p, ID: id})
		}
	}
	slices.SortFunc(out, func(a, b tracer.VoxelRef) int {
		if n := cmp.Compare(a.ID, b.ID); n != 0 {
			return n
		}
		return cmp.Compare(c.grid.FlatIndex(a.Point), c.grid.FlatIndex(b.Point))
	})
	return out
}
