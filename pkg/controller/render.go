package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/taigrr/voxtrace/pkg/tracer"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

// Render sends the pending changes to every live worker, asks them to shade
// the frame and adds their colours to sink. It returns once every live worker
// has replied or exited, or when ctx is done.
func (c *Controller) Render(ctx context.Context, sink voxel.Sink) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return c.render(ctx, c.diff(), sink)
}

// RenderDiff is Render with a diff taken earlier by Diff.
func (c *Controller) RenderDiff(ctx context.Context, d FrameDiff, sink voxel.Sink) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return c.render(ctx, d, sink)
}

func (c *Controller) render(ctx context.Context, d FrameDiff, sink voxel.Sink) error {
	c.reapExits()
	c.drainResults()
	if len(c.live()) == 0 {
		return ErrNoWorkers
	}
	c.frame++
	frame := c.frame

	chunks := c.chunk(d.Voxels)
	touched := make([]int, 0, len(d.Renderables))
	for _, desc := range d.Renderables {
		touched = append(touched, desc.Meta().ID)
	}

	pending := make(map[int]bool)
	for i, w := range c.workers {
		if w == nil {
			continue
		}
		msgs, err := c.messages(d, chunks[i], touched)
		if err != nil {
			return err
		}
		msgs = append(msgs, tracer.Render{Frame: frame})
		sent := true
		for _, m := range msgs {
			if !w.Send(m) {
				sent = false
				break
			}
		}
		if sent {
			pending[i] = true
		}
	}

	replies := make([][]tracer.VoxelColour, len(c.workers))
	for len(pending) > 0 {
		select {
		case r := <-c.results:
			if r.Frame != frame || !pending[r.Worker] {
				continue
			}
			replies[r.Worker] = r.Data
			delete(pending, r.Worker)
		case e := <-c.exits:
			c.markDead(e.worker, e.err)
			delete(pending, e.worker)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	n := 0
	for _, data := range replies {
		for _, vc := range data {
			sink.AddColourToVoxel(vc.Point, voxel.ColourFromHex(vc.Colour))
		}
		n += len(data)
	}
	c.log.Debugf("frame %d: %d removed, %d updated, %d voxels lit", frame, len(d.Removed), len(d.Renderables), n)
	return nil
}

// drainResults discards replies to frames that were abandoned.
func (c *Controller) drainResults() {
	for {
		select {
		case <-c.results:
		default:
			return
		}
	}
}

// messages builds one worker's share of d: removals, then the mapping, then
// the objects. Nothing in them is shared with another worker.
func (c *Controller) messages(d FrameDiff, chunk map[int][]voxel.Point, touched []int) ([]tracer.Message, error) {
	removed := tracer.UpdateScene{RemovedIDs: slices.Clone(d.Removed)}

	info := tracer.UpdateVoxelInfo{Reinit: d.Reinit, Mapping: chunk}
	if !d.Reinit {
		info.Updated = c.refs(chunk)
		info.Touched = slices.Clone(touched)
	}

	scene := tracer.UpdateScene{
		Reinit:       d.Reinit,
		Renderables:  tracer.CloneAll(d.Renderables),
		Lights:       tracer.CloneAll(d.Lights),
		AmbientLight: d.Ambient,
	}
	if d.Ambient != nil {
		scene.AmbientLight = d.Ambient.Clone()
	}

	if !c.wire {
		return []tracer.Message{removed, info, scene}, nil
	}
	var err error
	if removed, err = roundTrip(removed); err != nil {
		return nil, err
	}
	if info, err = roundTrip(info); err != nil {
		return nil, err
	}
	if scene, err = roundTrip(scene); err != nil {
		return nil, err
	}
	return []tracer.Message{removed, info, scene}, nil
}

// roundTrip passes v through its JSON encoding, as it would travel to a
// worker in another process.
func roundTrip[T any](v T) (T, error) {
	var out T
	data, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("encode %T: %w", v, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode %T: %w", v, err)
	}
	return out, nil
}

// Mapping returns a copy of the voxels each renderable occupied at the last
// diff.
func (c *Controller) Mapping() map[int][]voxel.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int][]voxel.Point, len(c.mapping))
	for _, id := range slices.Sorted(maps.Keys(c.mapping)) {
		out[id] = slices.Clone(c.mapping[id])
	}
	return out
}
