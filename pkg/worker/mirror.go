package worker

import (
	"maps"
	"slices"

	"github.com/taigrr/voxtrace/pkg/logging"
	"github.com/taigrr/voxtrace/pkg/shade"
	"github.com/taigrr/voxtrace/pkg/tracer"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

// Mirror is a worker's private copy of the scene. It holds shaders rebuilt
// from descriptors and the part of the renderable to voxel mapping that falls
// inside the worker's interval.
type Mirror struct {
	grid     voxel.Grid
	interval voxel.Interval
	log      logging.Logger

	pool    *shade.ShaderPool
	objects map[int]shade.Shader
	ambient *shade.AmbientLight
	mapping map[int][]voxel.Point

	lighting *shade.Lighting
	comp     *Compositor
	// stale is set when objects changed and the lighting lists need to be
	// rebuilt before the next pass.
	stale bool
}

// NewMirror returns an empty mirror for the voxels of g inside interval.
func NewMirror(g voxel.Grid, interval voxel.Interval, log logging.Logger) *Mirror {
	return &Mirror{
		grid:     g,
		interval: interval,
		log:      logging.OrNop(log),
		pool:     shade.NewShaderPool(),
		objects:  make(map[int]shade.Shader),
		mapping:  make(map[int][]voxel.Point),
		lighting: shade.NewLighting(g),
		comp:     NewCompositor(),
	}
}

func (m *Mirror) Interval() voxel.Interval { return m.interval }

// Len is the number of objects held, the ambient light included.
func (m *Mirror) Len() int {
	n := len(m.objects)
	if m.ambient != nil {
		n++
	}
	return n
}

// Object returns the shader holding id.
func (m *Mirror) Object(id int) (shade.Shader, bool) {
	if m.ambient != nil && m.ambient.ID() == id {
		return m.ambient, true
	}
	s, ok := m.objects[id]
	return s, ok
}

// Mapping returns the voxels of id that this worker shades.
func (m *Mirror) Mapping(id int) []voxel.Point {
	return m.mapping[id]
}

// ApplyScene removes, replaces and adds objects. Descriptors that cannot be
// built are logged and skipped.
func (m *Mirror) ApplyScene(u tracer.UpdateScene) {
	m.stale = true
	for _, err := range u.Skipped {
		m.log.Warnf("skipping descriptor: %v", err)
	}

	if u.Reinit {
		for id := range m.objects {
			m.release(id)
		}
		m.releaseAmbient()
	}
	for _, id := range u.RemovedIDs {
		m.release(id)
		delete(m.mapping, id)
		if m.ambient != nil && m.ambient.ID() == id {
			m.releaseAmbient()
		}
	}

	// Point and spot lights arrive both as renderables and as lights.
	applied := make(map[int]bool, len(u.Renderables)+len(u.Lights))
	for _, d := range slices.Concat(u.Renderables, u.Lights) {
		id := d.Meta().ID
		if applied[id] {
			continue
		}
		applied[id] = true
		m.apply(d)
	}
	if u.AmbientLight != nil {
		m.applyAmbient(u.AmbientLight)
	}
}

func (m *Mirror) apply(d tracer.Descriptor) {
	id := d.Meta().ID
	if d.Kind() == tracer.TypeAmbientLight {
		m.applyAmbient(d)
		return
	}
	prev := m.objects[id]
	s, err := shade.Build(d, prev, m.pool)
	if err != nil {
		m.log.Warnf("skipping %s %d: %v", d.Kind(), id, err)
		if prev != nil {
			m.release(id)
		}
		return
	}
	m.objects[id] = s
}

func (m *Mirror) applyAmbient(d tracer.Descriptor) {
	var prev shade.Shader
	if m.ambient != nil {
		prev = m.ambient
	}
	s, err := shade.Build(d, prev, m.pool)
	if err != nil {
		m.log.Warnf("skipping ambient light %d: %v", d.Meta().ID, err)
		return
	}
	a, ok := s.(*shade.AmbientLight)
	if !ok {
		m.log.Warnf("skipping %s %d: not an ambient light", d.Kind(), d.Meta().ID)
		m.pool.Put(s.Kind(), s)
		m.ambient = nil
		return
	}
	m.ambient = a
}

func (m *Mirror) release(id int) {
	s, ok := m.objects[id]
	if !ok {
		return
	}
	delete(m.objects, id)
	m.pool.Put(s.Kind(), s)
}

func (m *Mirror) releaseAmbient() {
	if m.ambient == nil {
		return
	}
	m.pool.Put(m.ambient.Kind(), m.ambient)
	m.ambient = nil
}

// ApplyVoxelInfo updates the mapping. Points outside the worker's interval are
// dropped.
func (m *Mirror) ApplyVoxelInfo(u tracer.UpdateVoxelInfo) {
	if u.Reinit {
		clear(m.mapping)
	}
	for _, id := range u.Touched {
		delete(m.mapping, id)
	}
	for id, points := range u.Mapping {
		if owned := m.owned(points); len(owned) > 0 {
			m.mapping[id] = owned
		} else {
			delete(m.mapping, id)
		}
	}

	// Pairs for renderables missing from Mapping replace what was held for
	// them.
	extra := make(map[int][]voxel.Point)
	for _, ref := range u.Updated {
		if _, ok := u.Mapping[ref.ID]; ok {
			continue
		}
		extra[ref.ID] = append(extra[ref.ID], ref.Point)
	}
	for id, points := range extra {
		if owned := m.owned(points); len(owned) > 0 {
			m.mapping[id] = owned
		} else {
			delete(m.mapping, id)
		}
	}
}

func (m *Mirror) owned(points []voxel.Point) []voxel.Point {
	out := make([]voxel.Point, 0, len(points))
	for _, p := range points {
		if m.grid.Contains(p) && m.interval.Contains(m.grid.FlatIndex(p)) {
			out = append(out, p)
		}
	}
	return out
}

// refresh rebuilds the lighting lists in ascending id order.
func (m *Mirror) refresh() {
	if !m.stale {
		return
	}
	var (
		lights  []shade.Light
		casters []shade.Caster
	)
	for _, id := range slices.Sorted(maps.Keys(m.objects)) {
		s := m.objects[id]
		if l, ok := s.(shade.Light); ok {
			lights = append(lights, l)
		}
		if c, ok := s.(shade.Caster); ok && c.CastsShadows() {
			casters = append(casters, c)
		}
	}
	m.lighting.SetScene(lights, casters, m.ambient)
	m.stale = false
}

// Render shades every mapped voxel and reports the composited colours sorted
// by flat index.
func (m *Mirror) Render() []tracer.VoxelColour {
	m.refresh()
	m.lighting.Begin()
	m.comp.Reset()

	for _, id := range slices.Sorted(maps.Keys(m.mapping)) {
		r, ok := m.objects[id].(shade.Renderable)
		if !ok {
			continue
		}
		order := r.DrawOrder()
		for _, p := range m.mapping[id] {
			c, alpha, ok := r.Shade(p, m.lighting)
			if !ok || alpha <= 0 {
				continue
			}
			c = c.Clamp().Scale(alpha)
			m.comp.Add(m.grid.FlatIndex(p), order, c)
		}
	}
	return m.comp.Report(m.grid)
}
