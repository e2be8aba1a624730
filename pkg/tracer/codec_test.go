package tracer

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/voxtrace/pkg/math3d"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

func lambert(c voxel.Colour) MaterialDescriptor {
	return MaterialDescriptor{Type: MaterialLambert, Colour: c, Emissive: voxel.RGB(0.1, 0, 0), Alpha: 1}
}

// sampleDescriptors returns one populated descriptor of every type.
func sampleDescriptors() []Descriptor {
	return []Descriptor{
		&MeshDescriptor{
			Header: Header{ID: 1, DrawOrder: 1},
			Geometry: &Geometry{
				ID:        uuid.MustParse("6f1c2e1a-4b1e-4c3a-9a55-2d8f0c6b7e11"),
				Positions: []math3d.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
				Normals:   []math3d.Vec3{{Z: 1}, {Z: 1}, {Z: 1}},
				UVs:       []math3d.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}},
				Indices:   []int{0, 1, 2},
			},
			Matrix:   math3d.Translate(math3d.V3(2, 3, 4)),
			Material: lambert(voxel.RGB(1, 0.5, 0.25)),
		},
		&SphereDescriptor{Header: Header{ID: 2, DrawOrder: 2}, Center: math3d.V3(8, 8, 8), Radius: 4.5,
			Material: lambert(voxel.White), Options: ShapeOptions{Fill: true, ShadowOptions: DefaultShadowOptions()}},
		&BoxDescriptor{Header: Header{ID: 3, DrawOrder: 1}, Min: math3d.V3(1, 1, 1), Max: math3d.V3(5, 6, 7),
			Material: MaterialDescriptor{Type: MaterialEmission, Colour: voxel.RGB(0, 1, 0), Alpha: 0.5},
			Options:  DefaultShapeOptions()},
		&VoxelDescriptor{Header: Header{ID: 4, DrawOrder: 1}, Position: math3d.V3(3, 3, 3),
			Material: lambert(voxel.RGB(0.2, 0.4, 0.6)), Options: ShadowOptions{CastsShadows: true}},
		&FogBoxDescriptor{Header: Header{ID: 5, DrawOrder: 0}, Min: math3d.V3(0, 0, 0), Max: math3d.V3(16, 4, 16),
			Options: FogOptions{Colour: voxel.RGB(0.5, 0.5, 1), Scattering: 0.3}},
		&FogSphereDescriptor{Header: Header{ID: 6, DrawOrder: 0}, Center: math3d.V3(8, 8, 8), Radius: 3,
			Options: DefaultFogOptions()},
		&IsofieldDescriptor{Header: Header{ID: 7, DrawOrder: 1}, Size: 16,
			Metaballs: []Metaball{{X: 0.5, Y: 0.5, Z: 0.5, Strength: 0.4, Subtract: 12, Colour: voxel.RGB(1, 0, 0)}},
			Walls:     Walls{Y: &Wall{Strength: 0.5, Subtract: 12}},
			Material:  lambert(voxel.White),
			Options:   DefaultShadowOptions()},
		&PointLightDescriptor{Header: Header{ID: 8, DrawOrder: 1}, Position: math3d.V3(8, 15, 8),
			Colour: voxel.RGB(1, 1, 0.8), Attenuation: Attenuation{Quadratic: 0.01, Linear: 0.1}},
		&SpotLightDescriptor{Header: Header{ID: 9, DrawOrder: 1}, Position: math3d.V3(0, 15, 0),
			Direction: math3d.V3(0, -1, 0), Colour: voxel.White, InnerAngle: 0.3, OuterAngle: 0.6,
			Attenuation: DefaultAttenuation()},
		&DirectionalLightDescriptor{Header: Header{ID: 10, DrawOrder: 1}, Direction: math3d.V3(0, -1, 0),
			Colour: voxel.RGB(0.3, 0.3, 0.3)},
		&AmbientLightDescriptor{Header: Header{ID: 11, DrawOrder: 1}, Colour: voxel.RGB(0.1, 0.1, 0.1)},
	}
}

func TestDescriptorRoundTrip(t *testing.T) {
	ds := sampleDescriptors()
	require.Len(t, ds, len(Types), "one sample per type")

	for _, d := range ds {
		t.Run(d.Kind().String(), func(t *testing.T) {
			data, err := MarshalDescriptor(d)
			require.NoError(t, err)

			var tag struct {
				Type string `json:"type"`
			}
			require.NoError(t, json.Unmarshal(data, &tag))
			assert.Equal(t, string(d.Kind()), tag.Type)

			back, err := UnmarshalDescriptor(data)
			require.NoError(t, err)
			assert.Equal(t, d, back)
		})
	}
}

func TestDescriptorListRoundTrip(t *testing.T) {
	in := DescriptorList(sampleDescriptors())
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out DescriptorList
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestUnmarshalUnknownType(t *testing.T) {
	_, err := UnmarshalDescriptor([]byte(`{"type":"zz","id":3}`))
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestDecodeDescriptorsSkipsBadEntries(t *testing.T) {
	data := []byte(`[
		{"type":"v","id":1,"drawOrder":1,"position":{"x":1,"y":2,"z":3}},
		{"type":"zz","id":2},
		{"type":"a","id":3,"colour":{"r":0.5,"g":0.5,"b":0.5}},
		{"type":"b","min":"oops"}
	]`)
	ds, errs := DecodeDescriptors(data)
	require.Len(t, ds, 2)
	require.Len(t, errs, 2)
	assert.Equal(t, 1, ds[0].Meta().ID)
	assert.Equal(t, TypeAmbientLight, ds[1].Kind())
	assert.ErrorIs(t, errs[0], ErrUnknownType)

	var list DescriptorList
	assert.Error(t, json.Unmarshal(data, &list))
}

func TestUpdateSceneJSONSkipsUnknown(t *testing.T) {
	u := UpdateScene{
		Reinit:       true,
		RemovedIDs:   []int{4, 5},
		Renderables:  sampleDescriptors()[:7],
		Lights:       sampleDescriptors()[7:10],
		AmbientLight: sampleDescriptors()[10],
	}
	data, err := json.Marshal(u)
	require.NoError(t, err)

	var back UpdateScene
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Empty(t, back.Skipped)
	assert.Equal(t, u.RemovedIDs, back.RemovedIDs)
	assert.Equal(t, u.Renderables, back.Renderables)
	assert.Equal(t, u.Lights, back.Lights)
	assert.Equal(t, u.AmbientLight, back.AmbientLight)

	raw := []byte(`{"reinit":false,"removedIds":null,"renderables":[{"type":"q"},{"type":"v","id":9}],"lights":null,"ambientLight":null}`)
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Len(t, back.Renderables, 1)
	assert.Len(t, back.Skipped, 1)
	assert.Nil(t, back.AmbientLight)
}

func TestCloneIsDeep(t *testing.T) {
	for _, d := range sampleDescriptors() {
		c := d.Clone()
		assert.Equal(t, d, c, d.Kind().String())
		assert.NotSame(t, d, c)
	}

	mesh := sampleDescriptors()[0].(*MeshDescriptor)
	c := mesh.Clone().(*MeshDescriptor)
	c.Geometry.Positions[0] = math3d.V3(9, 9, 9)
	c.Geometry.Indices[0] = 2
	assert.Equal(t, math3d.V3(0, 0, 0), mesh.Geometry.Positions[0])
	assert.Equal(t, 0, mesh.Geometry.Indices[0])

	iso := sampleDescriptors()[6].(*IsofieldDescriptor)
	ic := iso.Clone().(*IsofieldDescriptor)
	ic.Metaballs[0].Strength = 9
	ic.Walls.Y.Strength = 9
	assert.Equal(t, 0.4, iso.Metaballs[0].Strength)
	assert.Equal(t, 0.5, iso.Walls.Y.Strength)
}

func TestGeometryTrianglesSkipsInvalidFaces(t *testing.T) {
	g := &Geometry{
		Positions: []math3d.Vec3{{}, {X: 1}, {Y: 1}},
		Indices:   []int{0, 1, 2, 0, 1, 7, 2, 1},
	}
	assert.Equal(t, 2, g.TriangleCount())
	tris := g.Triangles()
	require.Len(t, tris, 1)
	assert.Equal(t, math3d.V3(1, 0, 0), tris[0].B)
}
