package scenes

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/voxtrace/pkg/controller"
	"github.com/taigrr/voxtrace/pkg/math3d"
	"github.com/taigrr/voxtrace/pkg/models"
	"github.com/taigrr/voxtrace/pkg/tracer"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

type collector struct {
	objs []tracer.Object
}

func (c *collector) AddObject(o tracer.Object) error {
	c.objs = append(c.objs, o)
	return nil
}

func (c *collector) AddLight(o tracer.Object) error {
	if !o.Kind().IsLight() {
		return errors.New("not a light")
	}
	return c.AddObject(o)
}

func (c *collector) count(kind tracer.Type) int {
	n := 0
	for _, o := range c.objs {
		if o.Kind() == kind {
			n++
		}
	}
	return n
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"beacons", "bouncy", "fog", "mesh", "metaballs", "shadow", "simple"}, Names())
}

func TestBuiltinsAnimate(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			s, err := New(name, Options{Grid: voxel.NewGrid(8), FPS: 30})
			require.NoError(t, err)

			var c collector
			require.NoError(t, s.Build(&c))
			require.NotEmpty(t, c.objs)
			assert.LessOrEqual(t, c.count(tracer.TypeAmbientLight), 1)

			for _, o := range c.objs {
				o.Clean()
			}
			s.Update(0.1)
			dirty := 0
			for _, o := range c.objs {
				if o.Dirty() {
					dirty++
				}
			}
			assert.Positive(t, dirty, "Update moves something")
		})
	}
}

func TestBuiltinsRender(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			g := voxel.NewGrid(8)
			c, err := controller.New(controller.Options{Grid: g, Workers: 2})
			require.NoError(t, err)
			defer c.Close()

			s, err := New(name, Options{Grid: g})
			require.NoError(t, err)
			require.NoError(t, s.Build(c))

			buf := voxel.NewBuffer(g)
			for range 2 {
				buf.Clear()
				require.NoError(t, c.Render(context.Background(), buf))
				s.Update(1.0 / 30)
			}
			lit := 0
			for i := range g.Total() {
				if !buf.At(g.PointAt(i)).IsZero() {
					lit++
				}
			}
			assert.Positive(t, lit)
		})
	}
}

func TestUnknownScene(t *testing.T) {
	_, err := New("teapot", Options{})
	assert.ErrorIs(t, err, ErrUnknownScene)
}

func TestMeshSceneMissingFile(t *testing.T) {
	s, err := New("mesh", Options{Grid: voxel.NewGrid(8), Mesh: filepath.Join(t.TempDir(), "missing.glb")})
	require.NoError(t, err)
	assert.Error(t, s.Build(&collector{}))
}

func TestBouncyCoversCube(t *testing.T) {
	s, err := New("bouncy", Options{Grid: voxel.NewGrid(16), FPS: 30})
	require.NoError(t, err)
	require.NoError(t, s.Build(&collector{}))
	b := s.(*bouncyScene)

	lo := make([]float64, len(b.balls))
	hi := make([]float64, len(b.balls))
	for i, ball := range b.balls {
		lo[i], hi[i] = ball.y, ball.y
	}
	for range 300 {
		s.Update(1.0 / 30)
		for i, ball := range b.balls {
			y := ball.sphere.Center().Y
			require.GreaterOrEqual(t, y, ball.low)
			require.LessOrEqual(t, y, ball.top)
			lo[i], hi[i] = min(lo[i], y), max(hi[i], y)
		}
	}
	for i, ball := range b.balls {
		assert.Greater(t, hi[i]-lo[i], (ball.top-ball.low)/2, "ball %d", i)
	}
}

func writeScene(t *testing.T, f File) string {
	t.Helper()
	data, err := json.Marshal(f)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadSceneFile(t *testing.T) {
	box := tracer.NewBox(math3d.V3(0, 0, 0), math3d.V3(8, 1, 8), tracer.NewLambert(voxel.White), tracer.DefaultShapeOptions())
	box.SetDrawOrder(3)
	lamp := tracer.NewPointLight(math3d.V3(4, 6, 4), voxel.White, tracer.DefaultAttenuation())
	path := writeScene(t, File{Objects: tracer.DescriptorList{
		box.Descriptor(),
		lamp.Descriptor(),
		tracer.NewAmbientLight(voxel.RGB(0.1, 0.1, 0.1)).Descriptor(),
	}})

	s, err := New(path, Options{})
	require.NoError(t, err)
	var c collector
	require.NoError(t, s.Build(&c))
	require.Len(t, c.objs, 3)
	assert.Equal(t, tracer.TypeBox, c.objs[0].Kind())
	assert.Equal(t, 3, c.objs[0].DrawOrder())
	assert.Equal(t, 1, c.count(tracer.TypePointLight))
	assert.Equal(t, 1, c.count(tracer.TypeAmbientLight))
}

func TestLoadRejectsBadScenes(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"empty":    `{"objects": []}`,
		"syntax":   `{"objects": [`,
		"type":     `{"objects": [{"type": "zz"}]}`,
		"material": `{"objects": [{"type": "b", "material": {"type": "q"}}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestSceneFileMeshSpins(t *testing.T) {
	model := filepath.Join(t.TempDir(), "box.glb")
	require.NoError(t, models.SaveGLB(models.NewBoxMesh(math3d.V3(2, 2, 2)), model))
	path := writeScene(t, File{Meshes: []MeshFile{{
		Path:     model,
		Position: math3d.V3(4, 4, 4),
		Size:     3,
		Material: tracer.NewLambert(voxel.White).Descriptor(),
		Spin:     math3d.V3(0, 1, 0),
	}}})

	s, err := Load(path)
	require.NoError(t, err)
	var c collector
	require.NoError(t, s.Build(&c))
	require.Len(t, c.objs, 1)
	m, ok := c.objs[0].(*tracer.Mesh)
	require.True(t, ok)
	assert.Equal(t, math3d.V3(4, 4, 4), m.Position())

	s.Update(0.5)
	assert.InDelta(t, 0.5, m.Rotation().Y, 1e-12)
	assert.True(t, m.Dirty())
}

func TestSimpleLightsStayInside(t *testing.T) {
	g := voxel.NewGrid(8)
	s, err := New("simple", Options{Grid: g})
	require.NoError(t, err)
	var c collector
	require.NoError(t, s.Build(&c))
	require.Equal(t, 3, c.count(tracer.TypePointLight))

	for range 60 {
		s.Update(0.05)
		for _, o := range c.objs {
			if l, ok := o.(*tracer.PointLight); ok {
				assert.True(t, g.Bounds().ContainsPoint(l.Position()), "light at %v", l.Position())
			}
		}
	}
}

func TestBeaconsTumble(t *testing.T) {
	s, err := New("beacons", Options{Grid: voxel.NewGrid(8)})
	require.NoError(t, err)
	var c collector
	require.NoError(t, s.Build(&c))
	require.Equal(t, 6, c.count(tracer.TypeSpotLight))
	require.Equal(t, 1, c.count(tracer.TypeFogBox))

	var spots []*tracer.SpotLight
	for _, o := range c.objs {
		if l, ok := o.(*tracer.SpotLight); ok {
			spots = append(spots, l)
		}
	}
	before := spots[0].Direction()
	s.Update(0.5)
	for i := 0; i < len(spots); i += 2 {
		up, down := spots[i].Direction(), spots[i+1].Direction()
		assert.InDelta(t, 1, up.Len(), 1e-9)
		assert.InDelta(t, -1, up.Dot(down), 1e-9, "pair points opposite ways")
	}
	assert.NotEqual(t, before, spots[0].Direction())
}
