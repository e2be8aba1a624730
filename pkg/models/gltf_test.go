package models

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/taigrr/voxtrace/pkg/math3d"
)

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if loader == nil {
		t.Error("NewGLTFLoader returned nil")
		return
	}
	if !loader.CalculateNormals {
		t.Error("CalculateNormals should default to true")
	}
	if !loader.SmoothNormals {
		t.Error("SmoothNormals should default to true")
	}
}

func TestSaveAndLoadGLB(t *testing.T) {
	box := NewBoxMesh(math3d.V3(2, 4, 6))
	path := filepath.Join(t.TempDir(), "box.glb")

	if err := SaveGLB(box, path); err != nil {
		t.Fatalf("SaveGLB: %v", err)
	}

	loaded, err := LoadGLB(path)
	if err != nil {
		t.Fatalf("LoadGLB: %v", err)
	}
	if loaded.TriangleCount() != box.TriangleCount() {
		t.Errorf("Expected %d triangles, got %d", box.TriangleCount(), loaded.TriangleCount())
	}
	if loaded.VertexCount() != box.VertexCount() {
		t.Errorf("Expected %d vertices, got %d", box.VertexCount(), loaded.VertexCount())
	}
	if d := loaded.BoundsMax.Distance(math3d.V3(1, 2, 3)); d > 1e-6 {
		t.Errorf("Unexpected bounds max %v", loaded.BoundsMax)
	}

	// Winding survives the round trip
	for i := range loaded.TriangleCount() {
		want := box.Triangle(i).Normal()
		got := loaded.Triangle(i).Normal()
		if math.Abs(want.Dot(got)-1) > 1e-6 {
			t.Errorf("Face %d normal flipped: want %v, got %v", i, want, got)
		}
	}
}
