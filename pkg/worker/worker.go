// Package worker runs the shading side of the engine. Each worker owns one
// interval of the flattened voxel index space, keeps a Mirror of the scene
// objects touching it and answers render requests with its voxels' colours.
// Workers share nothing with the controller: everything arrives as messages.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/taigrr/voxtrace/pkg/logging"
	"github.com/taigrr/voxtrace/pkg/tracer"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

// ErrNotInitialized is returned when a worker receives a scene message before
// its Init.
var ErrNotInitialized = errors.New("worker not initialized")

// inboxSize fits the four messages of one frame.
const inboxSize = 4

// Worker shades one interval of the grid. It is driven by messages and
// replies to every Render on the results channel given to Run.
type Worker struct {
	index int
	log   logging.Logger

	in       chan tracer.Message
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mirror *Mirror
}

// New returns a worker that has not been started. A nil log discards output.
func New(index int, log logging.Logger) *Worker {
	return &Worker{
		index: index,
		log:   logging.OrNop(log),
		in:    make(chan tracer.Message, inboxSize),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

func (w *Worker) Index() int { return w.index }

// Done is closed once Run has returned.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Send queues m for the worker. It reports false when the worker has exited.
func (w *Worker) Send(m tracer.Message) bool {
	select {
	case <-w.done:
		return false
	default:
	}
	select {
	case w.in <- m:
		return true
	case <-w.done:
		return false
	}
}

// Stop asks Run to return after the message it is handling.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.quit) })
}

// Run handles messages until ctx is cancelled or Stop is called. Every
// Rendered reply goes to results. A panic while handling a message ends the
// worker and is returned as an error.
func (w *Worker) Run(ctx context.Context, results chan<- tracer.Rendered) (err error) {
	defer close(w.done)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker %d panicked: %v", w.index, r)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.quit:
			return nil
		case m := <-w.in:
			reply, ok, herr := w.handle(m)
			if herr != nil {
				w.log.Errorf("worker %d: %v", w.index, herr)
				continue
			}
			if !ok {
				continue
			}
			select {
			case results <- reply:
			case <-ctx.Done():
				return ctx.Err()
			case <-w.quit:
				return nil
			}
		}
	}
}

func (w *Worker) handle(m tracer.Message) (tracer.Rendered, bool, error) {
	if init, ok := m.(tracer.Init); ok {
		g := voxel.NewGrid(init.GridSize)
		w.mirror = NewMirror(g, init.Range, w.log)
		w.log.Debugf("worker %d: owns voxels [%d, %d] of %d", w.index, init.Range.Lo, init.Range.Hi, g.Total())
		return tracer.Rendered{}, false, nil
	}
	if w.mirror == nil {
		return tracer.Rendered{}, false, fmt.Errorf("%w: got %T", ErrNotInitialized, m)
	}

	switch m := m.(type) {
	case tracer.UpdateScene:
		w.mirror.ApplyScene(m)
	case tracer.UpdateVoxelInfo:
		w.mirror.ApplyVoxelInfo(m)
	case tracer.Render:
		return tracer.Rendered{Worker: w.index, Frame: m.Frame, Data: w.mirror.Render()}, true, nil
	default:
		return tracer.Rendered{}, false, fmt.Errorf("unknown message %T", m)
	}
	return tracer.Rendered{}, false, nil
}
