package render

import (
	"image/color"
	"math"

	"github.com/taigrr/voxtrace/pkg/math3d"
	"github.com/taigrr/voxtrace/pkg/voxel"
)

// VoxelView projects the lit voxels of a buffer into a framebuffer, the way
// the cube looks from the camera.
type VoxelView struct {
	Camera     *Camera
	Background color.RGBA
	Outline    color.RGBA
	// Fill is the fraction of a voxel's pitch covered by its splat.
	Fill float64
}

// NewVoxelView looks at the centre of g from a little over twice its size away.
func NewVoxelView(g voxel.Grid) *VoxelView {
	s := float64(g.Size)
	return &VoxelView{
		Camera:     NewCamera(math3d.V3(s/2, s/2, s/2), 2.2*s),
		Background: RGB(12, 12, 16),
		Outline:    RGB(60, 60, 72),
		Fill:       0.7,
	}
}

// Draw clears fb and plots every voxel that is not black. It returns how many
// voxels landed on screen.
func (v *VoxelView) Draw(buf *voxel.Buffer, fb *Framebuffer) int {
	fb.Clear(v.Background)
	if fb.Width == 0 || fb.Height == 0 {
		return 0
	}
	v.Camera.SetAspectRatio(float64(fb.Width) / float64(fb.Height))
	focal := float64(fb.Height) / (2 * math.Tan(v.Camera.FOV/2))

	g := buf.Grid()
	rgb := buf.RGB8()
	drawn := 0
	for i := range g.Total() {
		r, gr, b := rgb[3*i], rgb[3*i+1], rgb[3*i+2]
		if r == 0 && gr == 0 && b == 0 {
			continue
		}
		x, y, depth, ok := v.Camera.WorldToScreen(g.PointAt(i).Centre(), fb.Width, fb.Height)
		if !ok {
			continue
		}
		side := max(1, int(math.Round(focal*v.Fill/depth)))
		fb.FillSquare(int(x), int(y), side, depth, RGB(r, gr, b))
		drawn++
	}
	v.drawOutline(g, fb)
	return drawn
}

// drawOutline draws the edges of the cube behind the voxels.
func (v *VoxelView) drawOutline(g voxel.Grid, fb *Framebuffer) {
	s := float64(g.Size)
	var corners [8]math3d.Vec3
	for i := range corners {
		corners[i] = math3d.V3(s*float64(i&1), s*float64(i>>1&1), s*float64(i>>2&1))
	}
	for a := range corners {
		for _, bit := range []int{1, 2, 4} {
			b := a | bit
			if b == a {
				continue
			}
			x0, y0, _, ok0 := v.Camera.WorldToScreen(corners[a], fb.Width, fb.Height)
			x1, y1, _, ok1 := v.Camera.WorldToScreen(corners[b], fb.Width, fb.Height)
			if ok0 && ok1 {
				fb.DrawLine(int(x0), int(y0), int(x1), int(y1), v.Outline)
			}
		}
	}
}
