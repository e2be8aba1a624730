package controller

import (
	"fmt"

	"github.com/taigrr/voxtrace/pkg/tracer"
)

// AddObject puts o in the scene under a fresh ID. A new ambient light
// replaces the previous one. Directional lights only light the scene; every
// other object occupies voxels, and point and spot lights do both.
func (c *Controller) AddObject(o tracer.Object) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	kind := o.Kind()
	if !kind.Valid() {
		return fmt.Errorf("%w %q", tracer.ErrUnknownType, string(kind))
	}
	if cur, ok := c.objects[o.ID()]; ok && cur == o {
		return fmt.Errorf("%s %d is already in the scene", kind, o.ID())
	}

	var r tracer.Renderable
	if kind.IsRenderable() {
		var ok bool
		if r, ok = o.(tracer.Renderable); !ok {
			return fmt.Errorf("%s does not occupy voxels", kind)
		}
	}

	if kind == tracer.TypeAmbientLight && c.ambient != nil {
		c.remove(c.ambient)
	}

	id := c.nextID
	c.nextID++
	o.SetID(id)
	o.MakeDirty()
	c.objects[id] = o

	switch {
	case kind == tracer.TypeAmbientLight:
		c.ambient = o
	case kind.IsLight():
		c.lights[id] = o
	}
	if r != nil {
		c.renderables[id] = r
	}
	return nil
}

// AddLight is AddObject restricted to lights.
func (c *Controller) AddLight(o tracer.Object) error {
	if !o.Kind().IsLight() {
		return fmt.Errorf("%w: %s", ErrNotLight, o.Kind())
	}
	return c.AddObject(o)
}

// RemoveObject takes o out of the scene and invalidates its ID. The removal
// reaches the workers with the next frame. It reports whether o was in the
// scene.
func (c *Controller) RemoveObject(o tracer.Object) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, ErrClosed
	}
	if cur, ok := c.objects[o.ID()]; !ok || cur != o {
		return false, nil
	}
	c.remove(o)
	return true, nil
}

func (c *Controller) remove(o tracer.Object) {
	id := o.ID()
	delete(c.objects, id)
	delete(c.renderables, id)
	delete(c.lights, id)
	delete(c.mapping, id)
	if c.ambient == o {
		c.ambient = nil
	}
	c.removed = append(c.removed, id)
	o.SetID(tracer.InvalidID)
}

// Clear empties the scene and restarts IDs from zero. Workers drop their
// whole mirror with the next frame.
func (c *Controller) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	for _, o := range c.objects {
		o.SetID(tracer.InvalidID)
	}
	clear(c.objects)
	clear(c.renderables)
	clear(c.lights)
	clear(c.mapping)
	c.ambient = nil
	c.removed = nil
	c.nextID = 0
	c.reinit = true
	return nil
}

// Len is the number of objects in the scene.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.objects)
}
