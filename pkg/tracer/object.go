package tracer

import "github.com/taigrr/voxtrace/pkg/voxel"

// Object is a controller-owned scene object. Setters mark it dirty; the
// controller cleans it when it snapshots the object for the workers.
type Object interface {
	ID() int
	SetID(id int)
	Kind() Type
	DrawOrder() int
	Dirty() bool
	MakeDirty()
	// Clean clears the dirty flag and refreshes cached derived state such as
	// world transforms.
	Clean()
	Descriptor() Descriptor
}

// Renderable objects occupy voxels of the grid.
type Renderable interface {
	Object
	Voxels(g voxel.Grid) []voxel.Point
}

// object is embedded by every concrete object.
type object struct {
	id        int
	kind      Type
	drawOrder int
	dirty     bool
}

func newObject(kind Type) object {
	return object{id: InvalidID, kind: kind, drawOrder: DrawOrderDefault, dirty: true}
}

func (o *object) ID() int { return o.id }

func (o *object) SetID(id int) {
	o.id = id
	o.dirty = true
}

func (o *object) Kind() Type     { return o.kind }
func (o *object) DrawOrder() int { return o.drawOrder }
func (o *object) Dirty() bool    { return o.dirty }
func (o *object) MakeDirty()     { o.dirty = true }
func (o *object) Clean()         { o.dirty = false }

// SetDrawOrder changes the compositing tier of the object.
func (o *object) SetDrawOrder(order int) {
	o.drawOrder = order
	o.dirty = true
}

func (o *object) header() Header {
	return Header{ID: o.id, DrawOrder: o.drawOrder}
}

func (o *object) setHeader(h Header) {
	o.id = h.ID
	o.drawOrder = h.DrawOrder
}
