package scenes

import (
	"fmt"
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/voxtrace/pkg/math3d"
	"github.com/taigrr/voxtrace/pkg/models"
	"github.com/taigrr/voxtrace/pkg/tracer"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

var (
	warm    = voxel.RGB(1, 0.85, 0.6)
	orange  = voxel.RGB(1, 0.45, 0.1)
	teal    = voxel.RGB(0.1, 0.8, 0.7)
	dimGrey = voxel.RGB(0.04, 0.04, 0.05)
)

// floor is a one voxel thick slab across the bottom of the cube.
func floor(s float64, c voxel.Colour) *tracer.Box {
	return tracer.NewBox(math3d.V3(0, 0, 0), math3d.V3(s, 1, s), tracer.NewLambert(c), tracer.DefaultShapeOptions())
}

// orbit returns a point on a horizontal circle around the cube's vertical axis.
func orbit(s, radius, y, angle float64) math3d.Vec3 {
	return math3d.V3(s/2+radius*math.Cos(angle), y, s/2+radius*math.Sin(angle))
}

// shadow: a ball on a pillar with a light circling above it.
type shadowScene struct {
	size  float64
	t     float64
	ball  *tracer.Sphere
	light *tracer.PointLight
}

func newShadow(opts Options) (Scene, error) {
	return &shadowScene{size: opts.size()}, nil
}

func (s *shadowScene) Build(a Adder) error {
	n := s.size
	pillar := tracer.NewBox(math3d.V3(n/2-1, 1, n/2-1), math3d.V3(n/2+1, n/3, n/2+1), tracer.NewLambert(teal), tracer.DefaultShapeOptions())
	s.ball = tracer.NewSphere(math3d.V3(n/2, n/3+n/6, n/2), n/6, tracer.NewLambert(orange), tracer.DefaultShapeOptions())
	s.light = tracer.NewPointLight(orbit(n, n/3, n-1.5, 0), warm, tracer.Attenuation{Linear: 0.08})
	return add(a, floor(n, voxel.White), pillar, s.ball, s.light, tracer.NewAmbientLight(dimGrey))
}

func (s *shadowScene) Update(dt float64) {
	s.t += dt
	n := s.size
	s.light.SetPosition(orbit(n, n/3, n-1.5, s.t*0.8))
	s.ball.SetCenter(math3d.V3(n/2, n/3+n/6+math.Sin(s.t*1.7)*n/16, n/2))
}

// metaballs: three blobs drifting through an isofield above a soft floor.
type metaballScene struct {
	size  float64
	t     float64
	field *tracer.Isofield
}

func newMetaballs(opts Options) (Scene, error) {
	return &metaballScene{size: opts.size()}, nil
}

func (s *metaballScene) Build(a Adder) error {
	s.field = tracer.NewIsofield(int(s.size), tracer.NewLambert(voxel.White), tracer.DefaultShadowOptions())
	s.field.SetWalls(tracer.Walls{Y: &tracer.Wall{Strength: 0.02, Subtract: 1}})
	s.field.SetMetaballs(s.balls())
	sun := tracer.NewDirectionalLight(math3d.V3(-0.3, -1, -0.2), voxel.RGB(0.8, 0.8, 0.8))
	lamp := tracer.NewPointLight(math3d.V3(s.size/2, s.size-1, s.size/2), warm, tracer.DefaultAttenuation())
	return add(a, s.field, sun, lamp, tracer.NewAmbientLight(dimGrey))
}

func (s *metaballScene) balls() []tracer.Metaball {
	colours := []voxel.Colour{orange, teal, voxel.RGB(0.7, 0.2, 0.9)}
	out := make([]tracer.Metaball, len(colours))
	for i, c := range colours {
		phase := float64(i) * 2 * math.Pi / float64(len(colours))
		out[i] = tracer.Metaball{
			X:        0.5 + 0.25*math.Cos(s.t*0.9+phase),
			Y:        0.5 + 0.2*math.Sin(s.t*1.3+phase),
			Z:        0.5 + 0.25*math.Sin(s.t*0.7+phase),
			Strength: 0.3,
			Subtract: 10,
			Colour:   c,
		}
	}
	return out
}

func (s *metaballScene) Update(dt float64) {
	s.t += dt
	s.field.SetMetaballs(s.balls())
}

// fog: a sweeping spot light through haze, casting the shadow of a floating
// block.
type fogScene struct {
	size float64
	t    float64
	spot *tracer.SpotLight
}

func newFog(opts Options) (Scene, error) {
	return &fogScene{size: opts.size()}, nil
}

func (s *fogScene) Build(a Adder) error {
	n := s.size
	haze := tracer.NewFogBox(math3d.V3(0, 1, 0), math3d.V3(n, n, n), tracer.FogOptions{Colour: voxel.White, Scattering: 0.15})
	block := tracer.NewBox(math3d.V3(n/2-1.5, n/2-1, n/2-1.5), math3d.V3(n/2+1.5, n/2+1, n/2+1.5), tracer.NewLambert(voxel.White), tracer.DefaultShapeOptions())
	top := math3d.V3(n/2, n-0.5, n/2)
	s.spot = tracer.NewSpotLight(top, s.direction(), warm, math.Pi/8, math.Pi/4, tracer.Attenuation{Linear: 0.05})
	return add(a, floor(n, voxel.RGB(0.6, 0.6, 0.6)), haze, block, s.spot)
}

func (s *fogScene) direction() math3d.Vec3 {
	return math3d.V3(0.4*math.Cos(s.t), -1, 0.4*math.Sin(s.t))
}

func (s *fogScene) Update(dt float64) {
	s.t += dt * 0.6
	s.spot.SetDirection(s.direction())
}

// bouncy: balls thrown between floor and ceiling by springs.
type bouncyScene struct {
	size   float64
	step   float64
	acc    float64
	spring harmonica.Spring
	balls  []*bouncer
	light  *tracer.PointLight
	t      float64
}

type bouncer struct {
	sphere   *tracer.Sphere
	x, z     float64
	y, vel   float64
	target   float64
	low, top float64
}

func newBouncy(opts Options) (Scene, error) {
	fps := opts.fps()
	return &bouncyScene{
		size:   opts.size(),
		step:   1 / float64(fps),
		spring: harmonica.NewSpring(harmonica.FPS(fps), 5.0, 0.35),
	}, nil
}

func (s *bouncyScene) Build(a Adder) error {
	n := s.size
	radius := max(n/10, 0.6)
	colours := []voxel.Colour{orange, teal, voxel.RGB(0.9, 0.9, 0.2), voxel.RGB(0.8, 0.2, 0.6)}
	objs := []tracer.Object{floor(n, voxel.White)}
	for i, c := range colours {
		b := &bouncer{
			x:   orbit(n, n/4, 0, float64(i)*math.Pi/2).X,
			z:   orbit(n, n/4, 0, float64(i)*math.Pi/2).Z,
			low: 1 + radius,
			top: n - radius,
		}
		// Stagger the starting heights so the balls fall out of step.
		b.y = b.low + (b.top-b.low)*float64(i+1)/float64(len(colours)+1)
		b.target = b.low
		b.sphere = tracer.NewSphere(math3d.V3(b.x, b.y, b.z), radius, tracer.NewLambert(c), tracer.DefaultShapeOptions())
		s.balls = append(s.balls, b)
		objs = append(objs, b.sphere)
	}
	s.light = tracer.NewPointLight(math3d.V3(n/2, n-1, n/2), voxel.White, tracer.Attenuation{Linear: 0.06})
	objs = append(objs, s.light, tracer.NewAmbientLight(dimGrey))
	return add(a, objs...)
}

func (s *bouncyScene) Update(dt float64) {
	s.t += dt
	s.acc += dt
	for s.acc >= s.step {
		s.acc -= s.step
		for _, b := range s.balls {
			b.advance(s.spring)
		}
	}
	for _, b := range s.balls {
		b.sphere.SetCenter(math3d.V3(b.x, b.y, b.z))
	}
	n := s.size
	s.light.SetPosition(orbit(n, n/5, n-1, s.t))
}

// advance moves the ball one spring step and turns it round near its target.
func (b *bouncer) advance(spring harmonica.Spring) {
	b.y, b.vel = spring.Update(b.y, b.vel, b.target)
	if b.y < b.low {
		b.y, b.vel = b.low, math.Abs(b.vel)
	}
	if b.y > b.top {
		b.y, b.vel = b.top, -math.Abs(b.vel)
	}
	if math.Abs(b.y-b.target) < 0.25 {
		if b.target == b.low {
			b.target = b.top
		} else {
			b.target = b.low
		}
	}
}

// mesh: a model spinning in the middle of the cube.
type meshScene struct {
	size  float64
	path  string
	t     float64
	model *tracer.Mesh
}

func newMesh(opts Options) (Scene, error) {
	return &meshScene{size: opts.size(), path: opts.Mesh}, nil
}

func (s *meshScene) Build(a Adder) error {
	n := s.size
	var m *models.Mesh
	if s.path == "" {
		m = models.NewBoxMesh(math3d.V3(1, 1, 1))
	} else {
		var err error
		if m, err = models.LoadGLB(s.path); err != nil {
			return fmt.Errorf("mesh scene: %w", err)
		}
	}
	half := n / 4
	m.FitTo(math3d.NewBox3(math3d.V3(-half, -half, -half), math3d.V3(half, half, half)))

	colour := voxel.RGB(0.9, 0.6, 0.3)
	if bc, ok := m.DominantColor(); ok {
		colour = voxel.RGB(bc[0], bc[1], bc[2])
	}
	s.model = tracer.NewMesh(tracer.GeometryFromMesh(m), tracer.NewLambert(colour))
	s.model.SetPosition(math3d.V3(n/2, n/2+0.5, n/2))

	key := tracer.NewPointLight(math3d.V3(n-1.5, n-1.5, 1.5), voxel.White, tracer.Attenuation{Linear: 0.05})
	fill := tracer.NewDirectionalLight(math3d.V3(1, -0.5, 1), voxel.RGB(0.25, 0.25, 0.3))
	return add(a, floor(n, voxel.RGB(0.5, 0.5, 0.5)), s.model, key, fill, tracer.NewAmbientLight(dimGrey))
}

func (s *meshScene) Update(dt float64) {
	s.t += dt
	s.model.SetRotation(math3d.V3(s.t*0.3, s.t*0.7, 0))
}

// simple: a ball in the corner of three walls, circled by red, green and blue
// lights on perpendicular orbits.
type simpleScene struct {
	size   float64
	radius float64
	t      float64
	lights [3]*tracer.PointLight
}

func newSimple(opts Options) (Scene, error) {
	n := opts.size()
	return &simpleScene{size: n, radius: max(n/8, 1)}, nil
}

func (s *simpleScene) Build(a Adder) error {
	n := s.size
	wall := func(far math3d.Vec3) *tracer.Box {
		return tracer.NewBox(math3d.V3(0, 0, 0), far, tracer.NewLambert(voxel.White), tracer.DefaultShapeOptions())
	}
	ball := tracer.NewSphere(math3d.V3(n/2, n/2, n/2), s.radius, tracer.NewLambert(voxel.White), tracer.DefaultShapeOptions())
	objs := []tracer.Object{wall(math3d.V3(0.9, n, n)), wall(math3d.V3(n, 0.9, n)), wall(math3d.V3(n, n, 0.9)), ball}

	colours := [3]voxel.Colour{voxel.RGB(1, 0, 0), voxel.RGB(0, 1, 0), voxel.RGB(0, 0, 1)}
	for i, c := range colours {
		s.lights[i] = tracer.NewPointLight(s.lightPosition(i), c, tracer.Attenuation{Quadratic: 0.01})
		objs = append(objs, s.lights[i])
	}
	objs = append(objs, tracer.NewAmbientLight(voxel.RGB(0.05, 0.05, 0.05)))
	return add(a, objs...)
}

// lightPosition puts light i on a circle around the ball, one circle per
// axis plane.
func (s *simpleScene) lightPosition(i int) math3d.Vec3 {
	h := s.size / 2
	r := s.radius + (s.size-2-2*s.radius)/2
	sin, cos := math.Sincos(s.t * math.Pi)
	switch i {
	case 0:
		return math3d.V3(h+r*cos, h, h+r*sin)
	case 1:
		return math3d.V3(h, h+r*cos, h+r*sin)
	default:
		return math3d.V3(h+r*sin, h+r*cos, h)
	}
}

func (s *simpleScene) Update(dt float64) {
	s.t += dt
	for i, l := range s.lights {
		l.SetPosition(s.lightPosition(i))
	}
}

// beacons: three pairs of back to back spot lights tumbling in fog.
type beaconScene struct {
	size    float64
	beacons [3]beacon
}

type beacon struct {
	up, down *tracer.SpotLight
	rx, rz   float64
	// rates in radians per second about x and z
	sx, sz float64
}

func newBeacons(opts Options) (Scene, error) {
	return &beaconScene{
		size: opts.size(),
		beacons: [3]beacon{
			{sx: math.Pi / 4, sz: math.Pi / 6},
			{rx: math.Pi, sx: -math.Pi / 6, sz: math.Pi / 3},
			{rz: math.Pi / 2, sx: math.Pi / 4, sz: -math.Pi / 6},
		},
	}, nil
}

func (s *beaconScene) Build(a Adder) error {
	n := s.size
	inner, outer := math.Pi/18, math.Pi/9
	atten := tracer.Attenuation{Quadratic: 0.005, Linear: 0.05}
	colours := [3][2]voxel.Colour{
		{voxel.RGB(1, 0, 0), voxel.RGB(0, 1, 0)},
		{voxel.RGB(0, 0, 1), voxel.RGB(1, 1, 0)},
		{voxel.RGB(0, 1, 1), voxel.RGB(1, 0, 1)},
	}
	objs := []tracer.Object{
		tracer.NewFogBox(math3d.V3(0, 0, 0), math3d.V3(n, n, n), tracer.FogOptions{Colour: voxel.White, Scattering: 0.1}),
	}
	for i := range s.beacons {
		b := &s.beacons[i]
		pos := math3d.V3(n/4*float64(i+1), n/2, n/2)
		up, down := b.directions()
		b.up = tracer.NewSpotLight(pos, up, colours[i][0], inner, outer, atten)
		b.down = tracer.NewSpotLight(pos, down, colours[i][1], inner, outer, atten)
		objs = append(objs, b.up, b.down)
	}
	objs = append(objs, tracer.NewAmbientLight(voxel.RGB(0.02, 0.02, 0.02)))
	return add(a, objs...)
}

// directions returns where the two spots point after rotating by rx then rz.
func (b *beacon) directions() (math3d.Vec3, math3d.Vec3) {
	rot := math3d.RotateX(b.rx).Mul(math3d.RotateZ(b.rz))
	return rot.MulVec3Dir(math3d.V3(0, -1, 0)), rot.MulVec3Dir(math3d.V3(0, 1, 0))
}

func (s *beaconScene) Update(dt float64) {
	for i := range s.beacons {
		b := &s.beacons[i]
		b.rx += b.sx * dt
		b.rz += b.sz * dt
		up, down := b.directions()
		b.up.SetDirection(up)
		b.down.SetDirection(down)
	}
}
