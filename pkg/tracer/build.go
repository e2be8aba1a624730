package tracer

import "fmt"

// ObjectFromDescriptor creates a controller object from a descriptor, as read
// from a scene file. The object carries the descriptor's draw order but no ID;
// the controller assigns one when the object is added.
func ObjectFromDescriptor(d Descriptor) (Object, error) {
	material := func(md MaterialDescriptor) (Material, error) {
		m, err := BuildMaterial(md)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Kind(), err)
		}
		return m, nil
	}

	var obj interface {
		Object
		SetDrawOrder(int)
	}
	switch d := d.(type) {
	case *BoxDescriptor:
		m, err := material(d.Material)
		if err != nil {
			return nil, err
		}
		obj = NewBox(d.Min, d.Max, m, d.Options)
	case *SphereDescriptor:
		m, err := material(d.Material)
		if err != nil {
			return nil, err
		}
		obj = NewSphere(d.Center, d.Radius, m, d.Options)
	case *MeshDescriptor:
		m, err := material(d.Material)
		if err != nil {
			return nil, err
		}
		if d.Geometry == nil {
			return nil, fmt.Errorf("mesh without geometry")
		}
		mesh := NewMesh(d.Geometry.Clone(), m)
		mesh.SetLocalMatrix(d.Matrix)
		obj = mesh
	case *VoxelDescriptor:
		m, err := material(d.Material)
		if err != nil {
			return nil, err
		}
		obj = NewVoxel(d.Position, m, d.Options)
	case *FogBoxDescriptor:
		obj = NewFogBox(d.Min, d.Max, d.Options)
	case *FogSphereDescriptor:
		obj = NewFogSphere(d.Center, d.Radius, d.Options)
	case *IsofieldDescriptor:
		m, err := material(d.Material)
		if err != nil {
			return nil, err
		}
		f := NewIsofield(d.Size, m, d.Options)
		f.SetMetaballs(d.Metaballs)
		f.SetWalls(d.Walls)
		obj = f
	case *PointLightDescriptor:
		obj = NewPointLight(d.Position, d.Colour, d.Attenuation)
	case *SpotLightDescriptor:
		obj = NewSpotLight(d.Position, d.Direction, d.Colour, d.InnerAngle, d.OuterAngle, d.Attenuation)
	case *DirectionalLightDescriptor:
		obj = NewDirectionalLight(d.Direction, d.Colour)
	case *AmbientLightDescriptor:
		obj = NewAmbientLight(d.Colour)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownType, string(d.Kind()))
	}
	obj.SetDrawOrder(d.Meta().DrawOrder)
	return obj, nil
}
