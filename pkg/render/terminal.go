package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw puts the framebuffer on scr inside area, two pixel rows per terminal
// row: ▀ with the top pixel as foreground and the bottom one as background.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		top := (row - area.Min.Y) * 2
		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.GetPixel(x, top)),
					Bg: cellColor(fb.GetPixel(x, top+1)),
				},
			})
		}
	}
}

// FramebufferSize is the framebuffer that fills a width x height terminal.
func FramebufferSize(width, height int) (int, int) {
	return width, height * 2
}

// cellColor leaves transparent pixels to the terminal background.
func cellColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// DrawText writes a single line of text starting at (x, y), clipped to the
// screen width.
func DrawText(scr uv.Screen, x, y int, text string, fg, bg color.Color) {
	w := scr.Bounds().Dx()
	for _, r := range text {
		if x >= w {
			return
		}
		scr.SetCell(x, y, &uv.Cell{
			Content: string(r),
			Width:   1,
			Style:   uv.Style{Fg: fg, Bg: bg},
		})
		x++
	}
}
