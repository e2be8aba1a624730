// Package config holds the runtime settings of the voxel tracer and loads them
// from JSON files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/cpu"

	"github.com/taigrr/voxtrace/pkg/voxel"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

const (
	DefaultFPS   = 30
	DefaultScene = "shadow"
	maxGridSize  = 256
)

type Config struct {
	GridSize int    `json:"gridSize"`
	Workers  int    `json:"workers"` // 0 = one per logical CPU
	Debug    bool   `json:"debug"`
	FPS      int    `json:"fps"`
	Scene    string `json:"scene"`  // built-in name or JSON scene path
	Mesh     string `json:"mesh"`   // glTF/GLB file for the mesh scene
	Record   string `json:"record"` // output path, empty disables recording
	Preview  bool   `json:"preview"`
	Frames   int    `json:"frames"` // 0 = until interrupted
}

func Default() Config {
	return Config{
		GridSize: voxel.DefaultGridSize,
		FPS:      DefaultFPS,
		Scene:    DefaultScene,
		Preview:  true,
	}
}

// Load reads a JSON file over the defaults. Fields missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.GridSize <= 0 {
		cfg.GridSize = voxel.DefaultGridSize
	}
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultFPS
	}
	if cfg.Scene == "" {
		cfg.Scene = DefaultScene
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.GridSize <= 0 || c.GridSize > maxGridSize {
		return fmt.Errorf("%w: gridSize %d outside 1..%d", ErrInvalid, c.GridSize, maxGridSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d is negative", ErrInvalid, c.Workers)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive", ErrInvalid)
	}
	if c.Frames < 0 {
		return fmt.Errorf("%w: frames %d is negative", ErrInvalid, c.Frames)
	}
	return nil
}

// WorkerCount resolves the number of workers to start. Debug mode runs a single
// worker so stepping through a frame stays deterministic.
func (c Config) WorkerCount() int {
	if c.Debug {
		return 1
	}
	if c.Workers > 0 {
		return c.Workers
	}
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		return runtime.NumCPU()
	}
	return n
}
