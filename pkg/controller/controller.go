// Package controller owns the authoritative scene. It assigns object IDs,
// splits the voxel grid between workers, sends each worker the changes since
// the previous frame and merges their replies into a display sink.
package controller

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/alitto/pond/v2"

	"github.com/taigrr/voxtrace/pkg/logging"
	"github.com/taigrr/voxtrace/pkg/tracer"
	"github.com/taigrr/voxtrace/pkg/voxel"
	"github.com/taigrr/voxtrace/pkg/worker"
)

var (
	ErrClosed    = errors.New("controller closed")
	ErrNoWorkers = errors.New("no live workers")
	ErrNotLight  = errors.New("object is not a light")
)

// Options configures a Controller.
type Options struct {
	Grid voxel.Grid
	// Workers is the number of workers to start. It must be positive.
	Workers int
	Logger  logging.Logger
	// Wire sends scene updates through their JSON encoding instead of as
	// cloned descriptors.
	Wire bool
}

type exit struct {
	worker int
	err    error
}

// Controller owns the scene, splits the grid between its workers and merges
// what they shade into a sink. It is safe for concurrent use.
type Controller struct {
	mu   sync.Mutex
	grid voxel.Grid
	log  logging.Logger
	wire bool

	nextID      int
	objects     map[int]tracer.Object
	renderables map[int]tracer.Renderable
	lights      map[int]tracer.Object
	ambient     tracer.Object
	removed     []int
	reinit      bool
	mapping     map[int][]voxel.Point

	workers   []*worker.Worker // nil once a worker has exited
	intervals []voxel.Interval
	perWorker int
	results   chan tracer.Rendered
	exits     chan exit
	frame     uint64

	pool   pond.Pool
	cancel context.CancelFunc
	closed bool
}

// New starts the workers and sends each its interval of the grid.
func New(opts Options) (*Controller, error) {
	if opts.Workers <= 0 {
		return nil, fmt.Errorf("%w: asked for %d", ErrNoWorkers, opts.Workers)
	}
	g := voxel.NewGrid(opts.Grid.Size)
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		grid:        g,
		log:         logging.OrNop(opts.Logger),
		wire:        opts.Wire,
		objects:     make(map[int]tracer.Object),
		renderables: make(map[int]tracer.Renderable),
		lights:      make(map[int]tracer.Object),
		reinit:      true,
		mapping:     make(map[int][]voxel.Point),
		intervals:   voxel.Partition(g.Total(), opts.Workers),
		perWorker:   voxel.PerWorker(g.Total(), opts.Workers),
		results:     make(chan tracer.Rendered, opts.Workers),
		exits:       make(chan exit, opts.Workers),
		pool:        pond.NewPool(opts.Workers),
		cancel:      cancel,
	}

	c.workers = make([]*worker.Worker, opts.Workers)
	for i, iv := range c.intervals {
		w := worker.New(i, c.log)
		c.workers[i] = w
		go func() {
			err := w.Run(ctx, c.results)
			c.exits <- exit{worker: i, err: err}
		}()
		w.Send(tracer.Init{WorkerIndex: i, Range: iv, GridSize: g.Size})
	}
	c.log.Debugf("started %d workers, %d voxels each", opts.Workers, c.perWorker)
	return c, nil
}

func (c *Controller) Grid() voxel.Grid { return c.grid }

// Intervals returns the voxel interval of every worker, live or not.
func (c *Controller) Intervals() []voxel.Interval {
	return slices.Clone(c.intervals)
}

// LiveWorkers lists the indices of the workers still running.
func (c *Controller) LiveWorkers() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reapExits()
	return c.live()
}

func (c *Controller) live() []int {
	var out []int
	for i, w := range c.workers {
		if w != nil {
			out = append(out, i)
		}
	}
	return out
}

// StopWorker ends one worker. Its interval is not handed to anyone else, so
// its voxels stay dark from now on.
func (c *Controller) StopWorker(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if i < 0 || i >= len(c.workers) || c.workers[i] == nil {
		return fmt.Errorf("worker %d is not running", i)
	}
	w := c.workers[i]
	w.Stop()
	<-w.Done()
	c.markDead(i, nil)
	return nil
}

// reapExits handles every exit reported so far without blocking.
func (c *Controller) reapExits() {
	for {
		select {
		case e := <-c.exits:
			c.markDead(e.worker, e.err)
		default:
			return
		}
	}
}

func (c *Controller) markDead(i int, err error) {
	if c.workers[i] == nil {
		return
	}
	c.workers[i] = nil
	iv := c.intervals[i]
	if err != nil {
		c.log.Warnf("worker %d exited: %v; voxels [%d, %d] will not be rendered", i, err, iv.Lo, iv.Hi)
		return
	}
	c.log.Warnf("worker %d exited; voxels [%d, %d] will not be rendered", i, iv.Lo, iv.Hi)
}

// Close stops every worker. The controller cannot be used afterwards.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	for _, w := range c.workers {
		if w != nil {
			w.Stop()
		}
	}
	c.cancel()
	for i, w := range c.workers {
		if w != nil {
			<-w.Done()
			c.workers[i] = nil
		}
	}
	c.pool.StopAndWait()
	return nil
}
