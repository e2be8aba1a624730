package tracer

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// newDescriptor returns an empty descriptor for a tag.
func newDescriptor(t Type) (Descriptor, error) {
	switch t {
	case TypeMesh:
		return &MeshDescriptor{}, nil
	case TypeSphere:
		return &SphereDescriptor{}, nil
	case TypeBox:
		return &BoxDescriptor{}, nil
	case TypeVoxel:
		return &VoxelDescriptor{}, nil
	case TypeFogBox:
		return &FogBoxDescriptor{}, nil
	case TypeFogSphere:
		return &FogSphereDescriptor{}, nil
	case TypeIsofield:
		return &IsofieldDescriptor{}, nil
	case TypePointLight:
		return &PointLightDescriptor{}, nil
	case TypeSpotLight:
		return &SpotLightDescriptor{}, nil
	case TypeDirectionalLight:
		return &DirectionalLightDescriptor{}, nil
	case TypeAmbientLight:
		return &AmbientLightDescriptor{}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownType, string(t))
}

// MarshalDescriptor encodes d as a JSON object with its tag in "type".
func MarshalDescriptor(d Descriptor) ([]byte, error) {
	body, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", d.Kind(), err)
	}
	out := make([]byte, 0, len(body)+16)
	out = append(out, `{"type":`...)
	out = strconv.AppendQuote(out, string(d.Kind()))
	if len(body) > 2 {
		out = append(out, ',')
	}
	return append(out, body[1:]...), nil
}

// UnmarshalDescriptor decodes a tagged JSON object. An unknown tag yields
// ErrUnknownType.
func UnmarshalDescriptor(data []byte) (Descriptor, error) {
	var tag struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("read descriptor type: %w", err)
	}
	d, err := newDescriptor(tag.Type)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("decode %s: %w", tag.Type, err)
	}
	return d, nil
}

// DescriptorList is a JSON array of tagged descriptors.
type DescriptorList []Descriptor

func (l DescriptorList) MarshalJSON() ([]byte, error) {
	raw := make([]json.RawMessage, len(l))
	for i, d := range l {
		b, err := MarshalDescriptor(d)
		if err != nil {
			return nil, err
		}
		raw[i] = b
	}
	return json.Marshal(raw)
}

// UnmarshalJSON stops at the first descriptor it cannot decode. Use
// DecodeDescriptors to skip bad entries instead.
func (l *DescriptorList) UnmarshalJSON(data []byte) error {
	ds, errs := DecodeDescriptors(data)
	if len(errs) > 0 {
		return errs[0]
	}
	*l = ds
	return nil
}

// DecodeDescriptors decodes a JSON array, returning every entry it could
// decode and one error per entry it skipped.
func DecodeDescriptors(data []byte) (DescriptorList, []error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, []error{fmt.Errorf("read descriptor list: %w", err)}
	}
	out := make(DescriptorList, 0, len(raw))
	var errs []error
	for i, r := range raw {
		d, err := UnmarshalDescriptor(r)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		out = append(out, d)
	}
	return out, errs
}
