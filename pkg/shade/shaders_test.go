package shade

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/voxtrace/pkg/math3d"
	"github.com/taigrr/voxtrace/pkg/models"
	"github.com/taigrr/voxtrace/pkg/tracer"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

func TestBoxShellAndFill(t *testing.T) {
	g := voxel.NewGrid(8)
	shell := &tracer.BoxDescriptor{
		Min: math3d.V3(1, 1, 1), Max: math3d.V3(6, 6, 6),
		Material: tracer.MaterialDescriptor{Type: tracer.MaterialEmission, Colour: voxel.RGB(0, 0.5, 0), Alpha: 1},
		Options:  tracer.DefaultShapeOptions(),
	}
	sc := newTestScene(t, g, shell)
	box := sc.renderables[0]

	c, _, ok := box.Shade(voxel.Pt(1, 3, 3), sc.lighting)
	require.True(t, ok)
	assert.Equal(t, voxel.RGB(0, 0.5, 0), c)

	_, _, ok = box.Shade(voxel.Pt(3, 3, 3), sc.lighting)
	assert.False(t, ok, "hollow box skips its interior")
	_, _, ok = box.Shade(voxel.Pt(0, 3, 3), sc.lighting)
	assert.False(t, ok, "outside the box")

	filled := shell.Clone().(*tracer.BoxDescriptor)
	filled.Options.Fill = true
	sc = newTestScene(t, g, filled)
	c, _, ok = sc.renderables[0].Shade(voxel.Pt(3, 3, 3), sc.lighting)
	require.True(t, ok)
	assert.InDelta(t, 0.5, c.G, 1e-12)
}

func TestBoxDegenerateOrInvisible(t *testing.T) {
	g := voxel.NewGrid(8)
	empty := &tracer.BoxDescriptor{Min: math3d.V3(4, 4, 4), Max: math3d.V3(2, 2, 2), Material: lambert(voxel.White)}
	sc := newTestScene(t, g, empty)
	_, _, ok := sc.renderables[0].Shade(voxel.Pt(3, 3, 3), sc.lighting)
	assert.False(t, ok)

	invisible := floorBox()
	invisible.Material.Alpha = 0
	sc = newTestScene(t, g, invisible)
	_, _, ok = sc.renderables[0].Shade(voxel.Pt(3, 0, 3), sc.lighting)
	assert.False(t, ok)
}

func TestSphereSurfaceBand(t *testing.T) {
	g := voxel.NewGrid(16)
	d := &tracer.SphereDescriptor{
		Center: math3d.V3(8, 8, 8), Radius: 4,
		Material: tracer.MaterialDescriptor{Type: tracer.MaterialEmission, Colour: voxel.White, Alpha: 1},
		Options:  tracer.DefaultShapeOptions(),
	}
	sc := newTestScene(t, g, d)
	sphere := sc.renderables[0]

	// Centre (11.5, 8.5, 8.5) is just inside the surface.
	c, _, ok := sphere.Shade(voxel.Pt(11, 8, 8), sc.lighting)
	require.True(t, ok)
	assert.Equal(t, voxel.White, c)

	// Just outside the surface the sample fades.
	c, _, ok = sphere.Shade(voxel.Pt(12, 8, 8), sc.lighting)
	require.True(t, ok)
	assert.Less(t, c.R, 1.0)

	_, _, ok = sphere.Shade(voxel.Pt(9, 8, 8), sc.lighting)
	assert.False(t, ok, "deep interior of a hollow sphere")
	_, _, ok = sphere.Shade(voxel.Pt(15, 8, 8), sc.lighting)
	assert.False(t, ok, "far outside")

	filled := d.Clone().(*tracer.SphereDescriptor)
	filled.Options.Fill = true
	sc = newTestScene(t, g, filled)
	_, _, ok = sc.renderables[0].Shade(voxel.Pt(9, 8, 8), sc.lighting)
	assert.True(t, ok)
}

func TestTinySphereLightsItsCell(t *testing.T) {
	g := voxel.NewGrid(8)
	d := &tracer.SphereDescriptor{
		Center: math3d.V3(3.5, 3.5, 3.5), Radius: 0.4,
		Material: tracer.MaterialDescriptor{Type: tracer.MaterialEmission, Colour: voxel.RGB(0.2, 0.4, 0.6), Alpha: 1},
		Options:  tracer.DefaultShapeOptions(),
	}
	sc := newTestScene(t, g, d)
	c, _, ok := sc.renderables[0].Shade(voxel.Pt(3, 3, 3), sc.lighting)
	require.True(t, ok)
	assert.Equal(t, voxel.RGB(0.2, 0.4, 0.6), c)

	d.Radius = 3
	sc = newTestScene(t, g, d)
	_, _, ok = sc.renderables[0].Shade(voxel.Pt(3, 3, 3), sc.lighting)
	assert.False(t, ok)
}

func TestSphereMemoResetOnApply(t *testing.T) {
	g := voxel.NewGrid(16)
	d := &tracer.SphereDescriptor{
		Header: tracer.Header{ID: 1, DrawOrder: 1},
		Center: math3d.V3(8, 8, 8), Radius: 4,
		Material: lambert(voxel.White),
		Options:  tracer.DefaultShapeOptions(),
	}
	s := &Sphere{}
	require.NoError(t, s.Apply(d))
	l := NewLighting(g)
	l.Begin()

	p := voxel.Pt(11, 8, 8)
	s.Shade(p, l)
	assert.Len(t, s.samples, 1)

	moved := d.Clone().(*tracer.SphereDescriptor)
	moved.Center = math3d.V3(2, 2, 2)
	require.NoError(t, s.Apply(moved))
	assert.Empty(t, s.samples)
	_, _, ok := s.Shade(p, l)
	assert.False(t, ok)
}

func TestSphereShadow(t *testing.T) {
	d := &tracer.SphereDescriptor{
		Header: tracer.Header{ID: 1, DrawOrder: 1},
		Center: math3d.V3(8, 8, 8), Radius: 2,
		Material: lambert(voxel.White),
		Options:  tracer.DefaultShapeOptions(),
	}
	s := &Sphere{}
	require.NoError(t, s.Apply(d))

	r := math3d.Ray{Origin: math3d.V3(8, 0, 8), Dir: math3d.V3(0, 1, 0)}
	in, reduction := s.Shadow(r, voxel.Epsilon, 16)
	assert.True(t, in)
	assert.Equal(t, 1.0, reduction)

	in, _ = s.Shadow(r, voxel.Epsilon, 5)
	assert.False(t, in, "light closer than the sphere")

	in, _ = s.Shadow(math3d.Ray{Origin: math3d.V3(8, 10, 8), Dir: math3d.V3(0, 1, 0)}, voxel.Epsilon, 16)
	assert.False(t, in, "surface point facing away")
}

func boxMesh(t *testing.T, at math3d.Vec3) *tracer.MeshDescriptor {
	t.Helper()
	m := tracer.NewMesh(tracer.GeometryFromMesh(models.NewBoxMesh(math3d.V3(4, 4, 4))), tracer.NewLambert(voxel.White))
	m.SetID(1)
	m.SetPosition(at)
	m.Clean()
	return m.Descriptor().(*tracer.MeshDescriptor)
}

func TestMeshShadesSurfaceCells(t *testing.T) {
	g := voxel.NewGrid(16)
	emissive := boxMesh(t, math3d.V3(8.2, 8, 8))
	emissive.Material = tracer.MaterialDescriptor{Type: tracer.MaterialEmission, Colour: voxel.RGB(1, 0, 0), Alpha: 1}
	sc := newTestScene(t, g, emissive)
	mesh := sc.renderables[0]

	// The +X face sits at x = 10.2, inside cell 10.
	c, _, ok := mesh.Shade(voxel.Pt(10, 8, 8), sc.lighting)
	require.True(t, ok)
	assert.Greater(t, c.R, 0.0)
	assert.Equal(t, 0.0, c.G)

	_, _, ok = mesh.Shade(voxel.Pt(9, 8, 8), sc.lighting)
	assert.False(t, ok, "the face is outside this cell")
	_, _, ok = mesh.Shade(voxel.Pt(8, 8, 8), sc.lighting)
	assert.False(t, ok, "interior cell holds no face")
	_, _, ok = mesh.Shade(voxel.Pt(13, 8, 8), sc.lighting)
	assert.False(t, ok)
}

func TestMeshKeepsBVHForSameGeometry(t *testing.T) {
	d := boxMesh(t, math3d.V3(8, 8, 8))
	m := &Mesh{}
	require.NoError(t, m.Apply(d))
	tree := m.tree
	require.NotNil(t, tree)

	moved := d.Clone().(*tracer.MeshDescriptor)
	moved.Matrix = math3d.Translate(math3d.V3(4, 4, 4))
	require.NoError(t, m.Apply(moved))
	assert.Same(t, tree, m.tree)
	assert.Empty(t, m.samples)

	other := boxMesh(t, math3d.V3(8, 8, 8))
	require.NoError(t, m.Apply(other))
	assert.NotSame(t, tree, m.tree)
}

func TestMeshShadow(t *testing.T) {
	m := &Mesh{}
	require.NoError(t, m.Apply(boxMesh(t, math3d.V3(8, 8, 8))))

	up := math3d.Ray{Origin: math3d.V3(8.5, 0.5, 8.5), Dir: math3d.V3(0, 1, 0)}
	in, reduction := m.Shadow(up, voxel.Epsilon, 15)
	assert.True(t, in)
	assert.Equal(t, 1.0, reduction)

	in, _ = m.Shadow(up, voxel.Epsilon, 5)
	assert.False(t, in, "segment ends before the mesh")

	aside := math3d.Ray{Origin: math3d.V3(1.5, 0.5, 1.5), Dir: math3d.V3(0, 1, 0)}
	in, _ = m.Shadow(aside, voxel.Epsilon, 15)
	assert.False(t, in)
}

func TestVoxelShadesOnlyItsCell(t *testing.T) {
	g := voxel.NewGrid(8)
	d := &tracer.VoxelDescriptor{
		Position: math3d.V3(2.2, 3.7, 4),
		Material: tracer.MaterialDescriptor{Type: tracer.MaterialEmission, Colour: voxel.RGB(0, 0, 1), Alpha: 0.5},
		Options:  tracer.DefaultShadowOptions(),
	}
	sc := newTestScene(t, g, d)
	c, alpha, ok := sc.renderables[0].Shade(voxel.Pt(2, 3, 4), sc.lighting)
	require.True(t, ok)
	assert.Equal(t, voxel.RGB(0, 0, 1), c)
	assert.Equal(t, 0.5, alpha)

	_, _, ok = sc.renderables[0].Shade(voxel.Pt(2, 4, 4), sc.lighting)
	assert.False(t, ok)
}

func TestFogScattersPositionalLight(t *testing.T) {
	g := voxel.NewGrid(16)
	light := &tracer.PointLightDescriptor{Position: math3d.V3(8.5, 8.5, 8.5), Colour: voxel.White,
		Attenuation: tracer.Attenuation{}}
	fog := &tracer.FogBoxDescriptor{Min: math3d.V3(0, 0, 0), Max: math3d.V3(16, 4, 16),
		Options: tracer.FogOptions{Colour: voxel.RGB(1, 0.5, 0), Scattering: 0.5}}
	sc := newTestScene(t, g, light, fog)
	fogShader := sc.renderables[1]

	c, alpha, ok := fogShader.Shade(voxel.Pt(8, 1, 8), sc.lighting)
	require.True(t, ok)
	assert.Equal(t, 1.0, alpha)
	assert.Equal(t, voxel.RGB(0.5, 0.25, 0), c)

	_, _, ok = fogShader.Shade(voxel.Pt(8, 6, 8), sc.lighting)
	assert.False(t, ok)

	wall := &tracer.BoxDescriptor{Min: math3d.V3(0, 5, 0), Max: math3d.V3(16, 6, 16),
		Material: lambert(voxel.White), Options: tracer.DefaultShapeOptions()}
	sc = newTestScene(t, g, light, fog, wall)
	c, _, ok = sc.renderables[1].Shade(voxel.Pt(8, 1, 8), sc.lighting)
	require.True(t, ok)
	assert.Equal(t, voxel.Black, c)
}

func TestFogSphere(t *testing.T) {
	g := voxel.NewGrid(16)
	light := &tracer.PointLightDescriptor{Position: math3d.V3(1, 1, 1), Colour: voxel.White}
	fog := &tracer.FogSphereDescriptor{Center: math3d.V3(8, 8, 8), Radius: 2, Options: tracer.DefaultFogOptions()}
	sc := newTestScene(t, g, light, fog)
	_, _, ok := sc.renderables[1].Shade(voxel.Pt(8, 8, 8), sc.lighting)
	assert.True(t, ok)
	_, _, ok = sc.renderables[1].Shade(voxel.Pt(11, 8, 8), sc.lighting)
	assert.False(t, ok)
}

func TestPointLightAttenuation(t *testing.T) {
	l := &PointLight{}
	require.NoError(t, l.Apply(&tracer.PointLightDescriptor{
		Colour: voxel.White, Attenuation: tracer.Attenuation{Quadratic: 1, Linear: 1},
	}))
	assert.InDelta(t, 1.0/7, l.Emission(math3d.Vec3{}, 2).R, 1e-12)

	p, ok := l.Position()
	assert.True(t, ok)
	assert.Equal(t, math3d.Vec3{}, p)
}

func TestSpotLightCone(t *testing.T) {
	l := &SpotLight{}
	require.NoError(t, l.Apply(&tracer.SpotLightDescriptor{
		Position:   math3d.V3(8, 15, 8),
		Direction:  math3d.V3(0, -1, 0),
		Colour:     voxel.White,
		InnerAngle: math.Pi / 4,
		OuterAngle: math.Pi / 2,
	}))
	below := l.Emission(math3d.V3(8, 5, 8), 10)
	assert.Equal(t, voxel.White, below, "inside the inner cone with no attenuation")

	beside := l.Emission(math3d.V3(18, 15, 8), 10)
	assert.Equal(t, voxel.Black, beside)

	edge := l.Emission(math3d.V3(8+10*math.Tan(3*math.Pi/16), 5, 8), 10)
	assert.Greater(t, edge.R, 0.0)
	assert.Less(t, edge.R, 1.0)
}

func TestLightsShowInTheirCell(t *testing.T) {
	g := voxel.NewGrid(8)
	sc := newTestScene(t, g, &tracer.PointLightDescriptor{Position: math3d.V3(2.5, 2.5, 2.5), Colour: voxel.RGB(2, 0.5, 0)})
	c, alpha, ok := sc.renderables[0].Shade(voxel.Pt(2, 2, 2), sc.lighting)
	require.True(t, ok)
	assert.Equal(t, 1.0, alpha)
	assert.Equal(t, voxel.RGB(1, 0.5, 0), c)
	_, _, ok = sc.renderables[0].Shade(voxel.Pt(3, 2, 2), sc.lighting)
	assert.False(t, ok)
}

func isofield() *tracer.IsofieldDescriptor {
	return &tracer.IsofieldDescriptor{
		Size: 16,
		Metaballs: []tracer.Metaball{
			{X: 0.5, Y: 0.5, Z: 0.5, Strength: 0.5, Subtract: 12, Colour: voxel.RGB(1, 0, 0)},
		},
		Material: lambert(voxel.White),
		Options:  tracer.DefaultShadowOptions(),
	}
}

func TestIsofieldField(t *testing.T) {
	f := &Isofield{}
	require.NoError(t, f.Apply(isofield()))
	require.Len(t, f.field, 16*16*16)

	centre := f.field[f.index(8, 8, 8)]
	assert.Equal(t, 1.0, centre, "clamped to 1")
	assert.Equal(t, voxel.RGB(1, 0, 0), f.palette[f.index(8, 8, 8)])
	assert.Equal(t, 0.0, f.field[f.index(0, 0, 0)])

	walled := isofield()
	walled.Metaballs = nil
	walled.Walls.Y = &tracer.Wall{Strength: 0.5, Subtract: 12}
	require.NoError(t, f.Apply(walled))
	assert.Equal(t, 1.0, f.field[f.index(3, 0, 7)], "wall clamped to 1")
	for i, v := range f.field {
		require.LessOrEqual(t, v, 1.0, "cell %d", i)
	}
	assert.Equal(t, 0.0, f.field[f.index(3, 8, 7)])
	assert.Equal(t, voxel.Black, f.palette[f.index(8, 8, 8)], "palette rebuilt on apply")
}

func TestIsofieldShadesSurface(t *testing.T) {
	g := voxel.NewGrid(16)
	sc := newTestScene(t, g,
		isofield(),
		&tracer.AmbientLightDescriptor{Colour: voxel.White},
	)
	f := sc.renderables[0].(*Isofield)

	// Walk outward along +X until the field stops being positive: the last
	// positive cell is on the surface.
	x := 8
	for x+1 < 16 && f.field[f.index(x+1, 8, 8)] > 0 {
		x++
	}
	require.Less(t, x, 15)
	c, _, ok := f.Shade(voxel.Pt(x, 8, 8), sc.lighting)
	require.True(t, ok)
	assert.Greater(t, c.R, 0.0)
	assert.Equal(t, 0.0, c.G, "palette colour replaces the white base")

	_, _, ok = f.Shade(voxel.Pt(8, 8, 8), sc.lighting)
	assert.False(t, ok, "flat interior has no gradient")
	_, _, ok = f.Shade(voxel.Pt(0, 0, 0), sc.lighting)
	assert.False(t, ok)
}

func TestIsofieldShadowAccumulates(t *testing.T) {
	f := &Isofield{}
	require.NoError(t, f.Apply(isofield()))

	through := math3d.Ray{Origin: math3d.V3(8.5, 0.5, 8.5), Dir: math3d.V3(0, 1, 0)}
	in, reduction := f.Shadow(through, voxel.Epsilon, 20)
	assert.True(t, in)
	assert.Equal(t, 1.0, reduction)

	past := math3d.Ray{Origin: math3d.V3(0.5, 0.5, 0.5), Dir: math3d.V3(0, 1, 0)}
	in, reduction = f.Shadow(past, voxel.Epsilon, 20)
	assert.False(t, in)
	assert.Equal(t, 0.0, reduction)

	d := isofield()
	d.Options.CastsShadows = false
	require.NoError(t, f.Apply(d))
	in, _ = f.Shadow(through, voxel.Epsilon, 20)
	assert.False(t, in)
}

func TestPoolResetsBeforeReuse(t *testing.T) {
	pool := NewShaderPool()
	d := &tracer.SphereDescriptor{
		Header: tracer.Header{ID: 4, DrawOrder: 2},
		Center: math3d.V3(8, 8, 8), Radius: 4,
		Material: lambert(voxel.White),
		Options:  tracer.DefaultShapeOptions(),
	}
	s, err := Build(d, nil, pool)
	require.NoError(t, err)
	l := NewLighting(voxel.NewGrid(16))
	l.Begin()
	s.(Renderable).Shade(voxel.Pt(11, 8, 8), l)

	pool.Put(s.Kind(), s)
	assert.Equal(t, 1, pool.Len(tracer.TypeSphere))

	again, err := pool.Get(tracer.TypeSphere)
	require.NoError(t, err)
	assert.Same(t, s, again)
	sphere := again.(*Sphere)
	assert.Equal(t, 0, sphere.ID())
	assert.Empty(t, sphere.samples)
	assert.Nil(t, sphere.material)
	assert.Equal(t, 0, pool.Len(tracer.TypeSphere))
}

func TestBuildReusesOrReplaces(t *testing.T) {
	pool := NewShaderPool()
	box := floorBox()
	box.ID = 3
	first, err := Build(box, nil, pool)
	require.NoError(t, err)

	moved := box.Clone().(*tracer.BoxDescriptor)
	moved.Max = math3d.V3(16, 2, 16)
	second, err := Build(moved, first, pool)
	require.NoError(t, err)
	assert.Same(t, first, second)

	sphere := &tracer.SphereDescriptor{Header: tracer.Header{ID: 3}, Radius: 1, Material: lambert(voxel.White)}
	third, err := Build(sphere, second, pool)
	require.NoError(t, err)
	assert.Equal(t, tracer.TypeSphere, third.Kind())
	assert.Equal(t, 1, pool.Len(tracer.TypeBox))

	bad := &tracer.BoxDescriptor{Material: tracer.MaterialDescriptor{Type: "nope"}}
	_, err = Build(bad, nil, pool)
	assert.ErrorIs(t, err, tracer.ErrUnknownMaterial)
	assert.Equal(t, 1, pool.Len(tracer.TypeBox))

	_, err = New("zz")
	assert.ErrorIs(t, err, tracer.ErrUnknownType)

	err = (&Box{}).Apply(sphere)
	assert.ErrorIs(t, err, ErrKindMismatch)
}

// TestRoundTripShading builds every shape from its descriptor directly and
// again after a trip through JSON, and checks that both shade identically.
func TestRoundTripShading(t *testing.T) {
	g := voxel.NewGrid(16)
	white := tracer.NewLambert(voxel.White)

	iso := tracer.NewIsofield(16, tracer.NewLambert(voxel.RGB(0.8, 0.8, 1)), tracer.DefaultShadowOptions())
	iso.SetMetaballs(isofield().Metaballs)

	mesh := tracer.NewMesh(tracer.GeometryFromMesh(models.NewSphereMesh(3, 12, 8)), white)
	mesh.SetPosition(math3d.V3(4, 11, 4))

	objects := []tracer.Object{
		tracer.NewBox(math3d.V3(0, 0, 0), math3d.V3(16, 1, 16), white, tracer.DefaultShapeOptions()),
		tracer.NewSphere(math3d.V3(8, 6, 8), 3, tracer.NewLambert(voxel.RGB(1, 0.3, 0.3)), tracer.DefaultShapeOptions()),
		mesh,
		tracer.NewVoxel(math3d.V3(12, 3, 12), tracer.NewEmission(voxel.RGB(0, 1, 1)), tracer.DefaultShadowOptions()),
		tracer.NewFogBox(math3d.V3(10, 1, 10), math3d.V3(15, 5, 15), tracer.DefaultFogOptions()),
		tracer.NewFogSphere(math3d.V3(3, 4, 12), 2, tracer.DefaultFogOptions()),
		iso,
		tracer.NewPointLight(math3d.V3(8, 14, 8), voxel.White, tracer.DefaultAttenuation()),
		tracer.NewSpotLight(math3d.V3(2, 14, 2), math3d.V3(1, -1, 1), voxel.RGB(1, 1, 0), 0.6, 1.2, tracer.DefaultAttenuation()),
		tracer.NewDirectionalLight(math3d.V3(-1, -1, 0), voxel.RGB(0.2, 0.2, 0.3)),
		tracer.NewAmbientLight(voxel.RGB(0.05, 0.05, 0.05)),
	}
	direct := make([]tracer.Descriptor, len(objects))
	viaJSON := make([]tracer.Descriptor, len(objects))
	for i, o := range objects {
		o.SetID(i + 1)
		o.Clean()
		direct[i] = o.Descriptor()

		data, err := tracer.MarshalDescriptor(direct[i])
		require.NoError(t, err)
		viaJSON[i], err = tracer.UnmarshalDescriptor(data)
		require.NoError(t, err)
	}

	a := newTestScene(t, g, direct...)
	b := newTestScene(t, g, viaJSON...)
	require.Len(t, b.renderables, len(a.renderables))

	shaded := 0
	for i, o := range objects {
		r, ok := o.(tracer.Renderable)
		if !ok {
			continue
		}
		var ra, rb Renderable
		for _, s := range a.renderables {
			if s.ID() == o.ID() {
				ra = s
			}
		}
		for _, s := range b.renderables {
			if s.ID() == o.ID() {
				rb = s
			}
		}
		require.NotNil(t, ra, "object %d", i)
		require.NotNil(t, rb, "object %d", i)
		for _, p := range r.Voxels(g) {
			ca, aa, oka := ra.Shade(p, a.lighting)
			cb, ab, okb := rb.Shade(p, b.lighting)
			require.Equal(t, oka, okb, "%v at %v", o.Kind(), p)
			assert.Equal(t, ca, cb, "%v at %v", o.Kind(), p)
			assert.Equal(t, aa, ab)
			if oka {
				shaded++
			}
		}
	}
	assert.Greater(t, shaded, 0)
}

func TestDescriptorJSONStable(t *testing.T) {
	d := isofield()
	d.ID = 9
	first, err := tracer.MarshalDescriptor(d)
	require.NoError(t, err)
	back, err := tracer.UnmarshalDescriptor(first)
	require.NoError(t, err)
	second, err := tracer.MarshalDescriptor(back)
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
	assert.True(t, json.Valid(first))
}
