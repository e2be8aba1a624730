// Package scenes builds the demo scenes shown on the cube and loads scenes
// from JSON files.
package scenes

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/taigrr/voxtrace/pkg/config"
	"github.com/taigrr/voxtrace/pkg/tracer"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

var ErrUnknownScene = errors.New("unknown scene")

// Adder receives the objects of a scene. *controller.Controller is one.
type Adder interface {
	AddObject(o tracer.Object) error
	AddLight(o tracer.Object) error
}

// Scene is a set of objects and the animation that moves them.
type Scene interface {
	// Build adds every object of the scene. It is called once.
	Build(a Adder) error
	// Update advances the animation by dt seconds. Objects are changed
	// through their setters so the next frame picks them up.
	Update(dt float64)
}

type Options struct {
	Grid voxel.Grid
	// FPS is the frame rate the springs of animated scenes are tuned for.
	FPS int
	// Mesh is a glTF file for the mesh scene. A cube is used when empty.
	Mesh string
}

func (o Options) fps() int {
	if o.FPS <= 0 {
		return config.DefaultFPS
	}
	return o.FPS
}

func (o Options) size() float64 {
	if o.Grid.Size <= 0 {
		return voxel.DefaultGridSize
	}
	return float64(o.Grid.Size)
}

var builtins = map[string]func(Options) (Scene, error){
	"shadow":    newShadow,
	"metaballs": newMetaballs,
	"fog":       newFog,
	"bouncy":    newBouncy,
	"mesh":      newMesh,
	"simple":    newSimple,
	"beacons":   newBeacons,
}

// Names lists the built-in scenes.
func Names() []string {
	return slices.Sorted(maps.Keys(builtins))
}

// New returns the built-in scene called name, or loads name as a scene file
// when it is a path to one.
func New(name string, opts Options) (Scene, error) {
	if build, ok := builtins[name]; ok {
		return build(opts)
	}
	if strings.HasSuffix(name, ".json") {
		return Load(name)
	}
	if _, err := os.Stat(name); err == nil {
		return Load(name)
	}
	return nil, fmt.Errorf("%w %q (built-in: %s)", ErrUnknownScene, name, strings.Join(Names(), ", "))
}

// add puts objs in the scene, lights through AddLight.
func add(a Adder, objs ...tracer.Object) error {
	for _, o := range objs {
		var err error
		if o.Kind().IsLight() {
			err = a.AddLight(o)
		} else {
			err = a.AddObject(o)
		}
		if err != nil {
			return fmt.Errorf("add %s: %w", o.Kind(), err)
		}
	}
	return nil
}
