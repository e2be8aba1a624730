// Package tracer holds the scene object model shared by the controller and its
// workers: type tags, materials, the controller-side objects, the plain
// descriptors they serialize to and the messages exchanged over worker channels.
package tracer

import "errors"

// Type tags a descriptor with its concrete object kind. The values are the
// compact tags used on the wire.
type Type string

const (
	TypeMesh             Type = "m"
	TypeSphere           Type = "sp"
	TypeBox              Type = "b"
	TypeVoxel            Type = "v"
	TypeFogBox           Type = "fb"
	TypeFogSphere        Type = "fs"
	TypeIsofield         Type = "i"
	TypePointLight       Type = "p"
	TypeSpotLight        Type = "s"
	TypeDirectionalLight Type = "d"
	TypeAmbientLight     Type = "a"
)

// Types lists every known tag.
var Types = []Type{
	TypeMesh, TypeSphere, TypeBox, TypeVoxel, TypeFogBox, TypeFogSphere, TypeIsofield,
	TypePointLight, TypeSpotLight, TypeDirectionalLight, TypeAmbientLight,
}

const (
	// InvalidID marks an object that is not part of a scene.
	InvalidID = -1

	DrawOrderLowest  = 0
	DrawOrderDefault = 1
)

var (
	ErrUnknownType     = errors.New("unknown object type")
	ErrUnknownMaterial = errors.New("unknown material type")
)

// IsLight reports whether the type contributes light to the scene.
func (t Type) IsLight() bool {
	switch t {
	case TypePointLight, TypeSpotLight, TypeDirectionalLight, TypeAmbientLight:
		return true
	}
	return false
}

// IsRenderable reports whether objects of this type occupy voxels.
// Directional and ambient lights light everything and occupy nothing.
func (t Type) IsRenderable() bool {
	switch t {
	case TypeDirectionalLight, TypeAmbientLight:
		return false
	}
	return t.Valid()
}

// Valid reports whether t is a known tag.
func (t Type) Valid() bool {
	switch t {
	case TypeMesh, TypeSphere, TypeBox, TypeVoxel, TypeFogBox, TypeFogSphere, TypeIsofield,
		TypePointLight, TypeSpotLight, TypeDirectionalLight, TypeAmbientLight:
		return true
	}
	return false
}

func (t Type) String() string {
	switch t {
	case TypeMesh:
		return "mesh"
	case TypeSphere:
		return "sphere"
	case TypeBox:
		return "box"
	case TypeVoxel:
		return "voxel"
	case TypeFogBox:
		return "fog box"
	case TypeFogSphere:
		return "fog sphere"
	case TypeIsofield:
		return "isofield"
	case TypePointLight:
		return "point light"
	case TypeSpotLight:
		return "spot light"
	case TypeDirectionalLight:
		return "directional light"
	case TypeAmbientLight:
		return "ambient light"
	}
	return "unknown(" + string(t) + ")"
}
