// voxtrace - distributed voxel tracer for LED cubes
// Shades a scene into a voxel grid every frame, split across worker
// goroutines, and shows the cube in the terminal or records it to a file.
//
// Preview controls:
//
//	A/D or ←/→  - Orbit around the cube
//	W/S or ↑/↓  - Raise/lower the camera
//	+/-         - Zoom
//	Space       - Pause/resume the animation
//	?           - Toggle the status line
//	Esc/Q       - Quit
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/voxtrace/pkg/config"
	"github.com/taigrr/voxtrace/pkg/controller"
	"github.com/taigrr/voxtrace/pkg/logging"
	"github.com/taigrr/voxtrace/pkg/record"
	"github.com/taigrr/voxtrace/pkg/render"
	"github.com/taigrr/voxtrace/pkg/scenes"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

var (
	configPath = flag.String("config", "", "JSON config file")
	gridSize   = flag.Int("grid", voxel.DefaultGridSize, "Cube edge in voxels")
	workers    = flag.Int("workers", 0, "Worker count (0 = one per logical CPU)")
	debug      = flag.Bool("debug", false, "Debug logging, single worker")
	targetFPS  = flag.Int("fps", config.DefaultFPS, "Target FPS")
	sceneName  = flag.String("scene", config.DefaultScene, "Built-in scene or JSON scene file")
	meshPath   = flag.String("mesh", "", "glTF/GLB model for the mesh scene")
	recordPath = flag.String("record", "", "Record frames to this file")
	frames     = flag.Int("frames", 0, "Stop after this many frames (0 = run until interrupted)")
	preview    = flag.Bool("preview", true, "Show the cube in the terminal")
	pngPath    = flag.String("png", "", "Save the last preview frame as PNG")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "voxtrace - distributed voxel tracer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: voxtrace [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nScenes: %v (or a path to a JSON scene)\n", scenes.Names())
		fmt.Fprintf(os.Stderr, "\nPreview controls:\n")
		fmt.Fprintf(os.Stderr, "  A/D W/S     - Orbit the camera\n")
		fmt.Fprintf(os.Stderr, "  +/-         - Zoom\n")
		fmt.Fprintf(os.Stderr, "  Space       - Pause animation\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle status line\n")
		fmt.Fprintf(os.Stderr, "  Esc/Q       - Quit\n")
	}
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies the flags given on
// the command line over it.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return cfg, err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "grid":
			cfg.GridSize = *gridSize
		case "workers":
			cfg.Workers = *workers
		case "debug":
			cfg.Debug = *debug
		case "fps":
			cfg.FPS = *targetFPS
		case "scene":
			cfg.Scene = *sceneName
		case "mesh":
			cfg.Mesh = *meshPath
		case "record":
			cfg.Record = *recordPath
		case "frames":
			cfg.Frames = *frames
		case "preview":
			cfg.Preview = *preview
		}
	})
	return cfg, cfg.Validate()
}

// lockedBuffer collects log output while the preview owns the terminal.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) WriteTo(w io.Writer) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.WriteTo(w)
}

// engine is everything a frame needs, shared by the preview and headless loops.
type engine struct {
	cfg    config.Config
	log    logging.Logger
	ctrl   *controller.Controller
	scene  scenes.Scene
	buf    *voxel.Buffer
	rec    *record.Writer
	frames int
}

// step renders one frame, records it and advances the animation by dt.
func (e *engine) step(ctx context.Context, dt float64) error {
	e.buf.Clear()
	if err := e.ctrl.Render(ctx, e.buf); err != nil {
		return err
	}
	if e.rec != nil {
		if err := e.rec.WriteFrame(e.buf); err != nil {
			return err
		}
	}
	e.frames++
	if dt > 0 {
		e.scene.Update(dt)
	}
	return nil
}

func (e *engine) done() bool {
	return e.cfg.Frames > 0 && e.frames >= e.cfg.Frames
}

func run(cfg config.Config) error {
	var held *lockedBuffer
	var log *logging.DefaultLogger
	if cfg.Preview {
		// The preview owns stdout; warnings are shown once it exits.
		held = &lockedBuffer{}
		log = logging.NewWithWriters("voxtrace", cfg.Debug, io.Discard, held)
		defer held.WriteTo(os.Stderr)
	} else {
		log = logging.New("voxtrace", cfg.Debug)
	}

	g := voxel.NewGrid(cfg.GridSize)
	ctrl, err := controller.New(controller.Options{Grid: g, Workers: cfg.WorkerCount(), Logger: log})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	scene, err := scenes.New(cfg.Scene, scenes.Options{Grid: g, FPS: cfg.FPS, Mesh: cfg.Mesh})
	if err != nil {
		return err
	}
	if err := scene.Build(ctrl); err != nil {
		return fmt.Errorf("build scene %s: %w", cfg.Scene, err)
	}
	log.Infof("scene %s: %d objects on a %d³ grid, %d workers", cfg.Scene, ctrl.Len(), g.Size, len(ctrl.LiveWorkers()))

	e := &engine{cfg: cfg, log: log, ctrl: ctrl, scene: scene, buf: voxel.NewBuffer(g)}
	if cfg.Record != "" {
		f, err := os.Create(cfg.Record)
		if err != nil {
			return fmt.Errorf("create recording: %w", err)
		}
		defer f.Close()
		if e.rec, err = record.NewWriter(f, g); err != nil {
			return err
		}
		rlog := log.With("record")
		defer func() {
			if err := e.rec.Close(); err != nil {
				rlog.Errorf("close %s: %v", cfg.Record, err)
			}
			rlog.Infof("%d frames to %s", e.rec.Frames(), cfg.Record)
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Preview {
		err = runPreview(ctx, cancel, e)
	} else {
		err = runHeadless(ctx, e)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runHeadless renders at the target frame rate until interrupted or until
// the frame limit is reached.
func runHeadless(ctx context.Context, e *engine) error {
	frameTime := time.Second / time.Duration(e.cfg.FPS)
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	last := time.Now()
	reported, reportFrames := last, 0
	for !e.done() {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := min(now.Sub(last).Seconds(), 0.1)
			last = now
			if err := e.step(ctx, dt); err != nil {
				return err
			}
			if since := now.Sub(reported); since >= time.Second {
				e.log.Infof("frame %d: %.1f fps, checksum %016x", e.frames, float64(e.frames-reportFrames)/since.Seconds(), e.buf.Checksum())
				reported, reportFrames = now, e.frames
			}
		}
	}
	return nil
}

// orbitAxis carries camera momentum that springs back to rest.
type orbitAxis struct {
	Velocity float64
	spring   harmonica.Spring
	accel    float64
}

func newOrbitAxis(fps int) orbitAxis {
	// Critically damped: the camera coasts to a stop without swinging back.
	return orbitAxis{spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

// Update returns this frame's movement and decays the velocity.
func (a *orbitAxis) Update() float64 {
	v := a.Velocity
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, 0)
	return v
}

// hud tracks the frame rate shown on the status line.
type hud struct {
	show      bool
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func (h *hud) tick() {
	h.fpsFrames++
	if elapsed := time.Since(h.fpsTime); elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

func runPreview(ctx context.Context, cancel context.CancelFunc, e *engine) error {
	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	view := render.NewVoxelView(e.buf.Grid())
	fb := render.NewFramebuffer(render.FramebufferSize(width, height))
	yaw, pitch := newOrbitAxis(e.cfg.FPS), newOrbitAxis(e.cfg.FPS)
	status := &hud{show: true, fpsTime: time.Now()}

	var mu sync.Mutex
	paused := false

	go func() {
		for ev := range term.Events() {
			mu.Lock()
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				fb = render.NewFramebuffer(render.FramebufferSize(width, height))
			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "q", "ctrl+c"):
					cancel()
				case ev.MatchString("a", "left"):
					yaw.Velocity -= 0.04
				case ev.MatchString("d", "right"):
					yaw.Velocity += 0.04
				case ev.MatchString("w", "up"):
					pitch.Velocity += 0.03
				case ev.MatchString("s", "down"):
					pitch.Velocity -= 0.03
				case ev.MatchString("+", "="):
					view.Camera.Zoom(-1)
				case ev.MatchString("-", "_"):
					view.Camera.Zoom(1)
				case ev.MatchString("space"):
					paused = !paused
				case ev.MatchString("?", "shift+/"):
					status.show = !status.show
				}
			}
			mu.Unlock()
		}
	}()

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	targetDuration := time.Second / time.Duration(e.cfg.FPS)
	lastFrame := time.Now()
	for !e.done() {
		select {
		case <-ctx.Done():
			return savePNG(fb)
		default:
		}

		now := time.Now()
		dt := min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		mu.Lock()
		if paused {
			dt = 0
		}
		mu.Unlock()
		if err := e.step(ctx, dt); err != nil {
			return err
		}

		mu.Lock()
		view.Camera.Orbit(yaw.Update(), pitch.Update())
		view.Draw(e.buf, fb)
		fb.Draw(term, uv.Rect(0, 0, width, height))
		status.tick()
		if status.show {
			line := fmt.Sprintf(" %s  frame %d  %.0f fps  %d/%d workers ", e.cfg.Scene, e.frames, status.fps,
				len(e.ctrl.LiveWorkers()), len(e.ctrl.Intervals()))
			if paused {
				line += " paused "
			}
			render.DrawText(term, 0, height-1, line, render.RGB(230, 230, 230), render.RGB(0, 0, 0))
		}
		mu.Unlock()
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
	return savePNG(fb)
}

func savePNG(fb *render.Framebuffer) error {
	if *pngPath == "" {
		return nil
	}
	return fb.SavePNG(*pngPath)
}
