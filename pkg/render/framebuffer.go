// Package render draws a terminal preview of the voxel cube.
package render

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
)

// Framebuffer is a 2D array of pixels that can be rendered to the terminal.
// Half-block characters give it twice the vertical resolution of the
// terminal: Height is 2x the rows it is drawn on.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []color.RGBA // row-major
	// Depth holds the camera distance of the nearest splat per pixel.
	Depth []float64
}

func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
		Depth:  make([]float64, width*height),
	}
	fb.Clear(color.RGBA{})
	return fb
}

// Clear fills the framebuffer with c and resets depth.
func (fb *Framebuffer) Clear(c color.RGBA) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
		fb.Depth[i] = math.Inf(1)
	}
}

// SetPixel sets the pixel at (x, y) regardless of depth. Out of range
// coordinates are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// Plot sets the pixel at (x, y) when depth is nearer than what is there.
func (fb *Framebuffer) Plot(x, y int, depth float64, c color.RGBA) bool {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return false
	}
	i := y*fb.Width + x
	if depth >= fb.Depth[i] {
		return false
	}
	fb.Depth[i] = depth
	fb.Pixels[i] = c
	return true
}

// GetPixel returns transparent black out of range.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's algorithm,
// behind anything already plotted.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if x0 >= 0 && x0 < fb.Width && y0 >= 0 && y0 < fb.Height && math.IsInf(fb.Depth[y0*fb.Width+x0], 1) {
			fb.SetPixel(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// FillSquare plots a side x side square centred on (cx, cy) at depth.
func (fb *Framebuffer) FillSquare(cx, cy, side int, depth float64, c color.RGBA) {
	x0, y0 := cx-side/2, cy-side/2
	for y := y0; y < y0+side; y++ {
		for x := x0; x < x0+side; x++ {
			fb.Plot(x, y, depth, c)
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := range fb.Height {
		for x := range fb.Width {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}

// SavePNG writes the framebuffer to path.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, fb.ToImage()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
