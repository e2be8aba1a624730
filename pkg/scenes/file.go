package scenes

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/taigrr/voxtrace/pkg/math3d"
	"github.com/taigrr/voxtrace/pkg/models"
	"github.com/taigrr/voxtrace/pkg/tracer"
)

// File is the JSON form of a static scene. Objects use the descriptor
// encoding workers receive; IDs in them are ignored.
type File struct {
	Objects tracer.DescriptorList `json:"objects"`
	Meshes  []MeshFile            `json:"meshes,omitempty"`
}

// MeshFile places a glTF model in a scene file.
type MeshFile struct {
	Path     string      `json:"path"`
	Position math3d.Vec3 `json:"position"`
	Rotation math3d.Vec3 `json:"rotation"`
	// Spin is added to Rotation every second.
	Spin math3d.Vec3 `json:"spin"`
	// Size fits the model into a cube of this edge. Zero keeps its own size.
	Size     float64                   `json:"size,omitempty"`
	Material tracer.MaterialDescriptor `json:"material"`
}

type fileScene struct {
	file  File
	spins []spinner
}

type spinner struct {
	mesh *tracer.Mesh
	spin math3d.Vec3
}

// Load reads a scene file. Every object is checked before any is added.
func Load(path string) (Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	if len(f.Objects) == 0 && len(f.Meshes) == 0 {
		return nil, fmt.Errorf("scene %s is empty", path)
	}
	for i, d := range f.Objects {
		if _, err := tracer.ObjectFromDescriptor(d); err != nil {
			return nil, fmt.Errorf("scene %s object %d: %w", path, i, err)
		}
	}
	return &fileScene{file: f}, nil
}

func (s *fileScene) Build(a Adder) error {
	var objs []tracer.Object
	for _, d := range s.file.Objects {
		o, err := tracer.ObjectFromDescriptor(d)
		if err != nil {
			return err
		}
		objs = append(objs, o)
	}
	var errs []error
	for _, mf := range s.file.Meshes {
		m, err := mf.build()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.spins = append(s.spins, spinner{mesh: m, spin: mf.Spin})
		objs = append(objs, m)
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	return add(a, objs...)
}

func (mf MeshFile) build() (*tracer.Mesh, error) {
	model, err := models.LoadGLB(mf.Path)
	if err != nil {
		return nil, fmt.Errorf("mesh %s: %w", mf.Path, err)
	}
	if mf.Size > 0 {
		h := mf.Size / 2
		model.FitTo(math3d.NewBox3(math3d.V3(-h, -h, -h), math3d.V3(h, h, h)))
	}
	material, err := tracer.BuildMaterial(mf.Material)
	if err != nil {
		return nil, fmt.Errorf("mesh %s: %w", mf.Path, err)
	}
	m := tracer.NewMesh(tracer.GeometryFromMesh(model), material)
	m.SetPosition(mf.Position)
	m.SetRotation(mf.Rotation)
	return m, nil
}

func (s *fileScene) Update(dt float64) {
	for _, sp := range s.spins {
		if sp.spin.IsZero() {
			continue
		}
		sp.mesh.SetRotation(sp.mesh.Rotation().Add(sp.spin.Scale(dt)))
	}
}
