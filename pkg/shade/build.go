package shade

import (
	"errors"
	"fmt"

	"github.com/taigrr/voxtrace/pkg/tracer"
)

// ErrKindMismatch is returned when a descriptor is applied to a shader of
// another type.
var ErrKindMismatch = errors.New("descriptor does not match shader type")

func kindMismatch(s Shader, d tracer.Descriptor) error {
	return fmt.Errorf("%w: %s into %s", ErrKindMismatch, d.Kind(), s.Kind())
}

// New returns an empty shader for a type tag.
func New(t tracer.Type) (Shader, error) {
	switch t {
	case tracer.TypeBox:
		return &Box{}, nil
	case tracer.TypeSphere:
		return &Sphere{}, nil
	case tracer.TypeMesh:
		return &Mesh{}, nil
	case tracer.TypeVoxel:
		return &Voxel{}, nil
	case tracer.TypeFogBox:
		return &FogBox{}, nil
	case tracer.TypeFogSphere:
		return &FogSphere{}, nil
	case tracer.TypeIsofield:
		return &Isofield{}, nil
	case tracer.TypePointLight:
		return &PointLight{}, nil
	case tracer.TypeSpotLight:
		return &SpotLight{}, nil
	case tracer.TypeDirectionalLight:
		return &DirectionalLight{}, nil
	case tracer.TypeAmbientLight:
		return &AmbientLight{}, nil
	}
	return nil, fmt.Errorf("%w %q", tracer.ErrUnknownType, string(t))
}

// Build returns a shader holding d. prev, the shader previously holding the
// same ID, is updated in place when it has the same type and is released to
// pool otherwise. prev may be nil.
func Build(d tracer.Descriptor, prev Shader, pool *ShaderPool) (Shader, error) {
	if prev != nil && prev.Kind() == d.Kind() {
		if err := prev.Apply(d); err != nil {
			return nil, err
		}
		return prev, nil
	}

	s, err := pool.Get(d.Kind())
	if err != nil {
		return nil, err
	}
	if err := s.Apply(d); err != nil {
		pool.Put(d.Kind(), s)
		return nil, err
	}
	if prev != nil {
		pool.Put(prev.Kind(), prev)
	}
	return s, nil
}
