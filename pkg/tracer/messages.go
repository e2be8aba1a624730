package tracer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/taigrr/voxtrace/pkg/voxel"
)

// Message is anything the controller sends to a worker.
type Message interface {
	isMessage()
}

// Init is sent once when a worker starts.
type Init struct {
	WorkerIndex int            `json:"workerIndex"`
	Range       voxel.Interval `json:"voxelIndexRange"`
	GridSize    int            `json:"gridSize"`
}

// UpdateScene carries removals and object snapshots. With Reinit set the worker
// drops every object it holds before applying the snapshots.
type UpdateScene struct {
	Reinit       bool         `json:"reinit"`
	RemovedIDs   []int        `json:"removedIds"`
	Renderables  []Descriptor `json:"-"`
	Lights       []Descriptor `json:"-"`
	AmbientLight Descriptor   `json:"-"`

	// Skipped holds one error per descriptor that could not be decoded.
	Skipped []error `json:"-"`
}

type updateSceneWire struct {
	Reinit       bool            `json:"reinit"`
	RemovedIDs   []int           `json:"removedIds"`
	Renderables  json.RawMessage `json:"renderables"`
	Lights       json.RawMessage `json:"lights"`
	AmbientLight json.RawMessage `json:"ambientLight"`
}

func (u UpdateScene) MarshalJSON() ([]byte, error) {
	w := updateSceneWire{Reinit: u.Reinit, RemovedIDs: u.RemovedIDs, AmbientLight: json.RawMessage("null")}
	var err error
	if w.Renderables, err = json.Marshal(DescriptorList(u.Renderables)); err != nil {
		return nil, err
	}
	if w.Lights, err = json.Marshal(DescriptorList(u.Lights)); err != nil {
		return nil, err
	}
	if u.AmbientLight != nil {
		if w.AmbientLight, err = MarshalDescriptor(u.AmbientLight); err != nil {
			return nil, err
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON keeps every descriptor it can decode and records the rest in
// Skipped rather than failing the whole update.
func (u *UpdateScene) UnmarshalJSON(data []byte) error {
	var w updateSceneWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*u = UpdateScene{Reinit: w.Reinit, RemovedIDs: w.RemovedIDs}
	decode := func(raw json.RawMessage) []Descriptor {
		if isNull(raw) {
			return nil
		}
		ds, errs := DecodeDescriptors(raw)
		u.Skipped = append(u.Skipped, errs...)
		return ds
	}
	u.Renderables = decode(w.Renderables)
	u.Lights = decode(w.Lights)
	if !isNull(w.AmbientLight) {
		d, err := UnmarshalDescriptor(w.AmbientLight)
		if err != nil {
			u.Skipped = append(u.Skipped, fmt.Errorf("ambient light: %w", err))
		} else {
			u.AmbientLight = d
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// VoxelRef ties a voxel to the renderable occupying it.
type VoxelRef struct {
	Point voxel.Point `json:"voxelPoint"`
	ID    int         `json:"renderableId"`
}

// UpdateVoxelInfo carries a worker's share of the renderable to voxel mapping.
// With Reinit set Mapping replaces everything the worker held. Otherwise
// Touched lists the renderables whose voxels changed this frame, Mapping holds
// their new voxels inside the worker's interval and Updated lists the same
// pairs flat.
type UpdateVoxelInfo struct {
	Reinit  bool                  `json:"reinit"`
	Mapping map[int][]voxel.Point `json:"mapping"`
	Updated []VoxelRef            `json:"updatedRenderableVoxels,omitempty"`
	Touched []int                 `json:"touched,omitempty"`
}

// Render asks a worker to shade its voxels for a frame.
type Render struct {
	Frame uint64 `json:"frame"`
}

func (Init) isMessage()            {}
func (UpdateScene) isMessage()     {}
func (UpdateVoxelInfo) isMessage() {}
func (Render) isMessage()          {}

// VoxelColour is one shaded voxel, colour packed as 0xRRGGBB.
type VoxelColour struct {
	Point  voxel.Point `json:"point"`
	Colour int         `json:"colour"`
}

// Rendered is a worker's reply to Render.
type Rendered struct {
	Worker int           `json:"worker"`
	Frame  uint64        `json:"frame"`
	Data   []VoxelColour `json:"data"`
}
