package voxel

import "math"

// Colour is a linear RGB triple, nominally in [0,1] per channel.
type Colour struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// RGB creates a colour.
func RGB(r, g, b float64) Colour {
	return Colour{r, g, b}
}

// Black is the zero colour.
var Black = Colour{}

// White is full intensity on every channel.
var White = Colour{1, 1, 1}

func (c Colour) Add(o Colour) Colour {
	return Colour{c.R + o.R, c.G + o.G, c.B + o.B}
}

func (c Colour) Mul(o Colour) Colour {
	return Colour{c.R * o.R, c.G * o.G, c.B * o.B}
}

func (c Colour) Scale(s float64) Colour {
	return Colour{c.R * s, c.G * s, c.B * s}
}

// AddScalar adds s to every channel.
func (c Colour) AddScalar(s float64) Colour {
	return Colour{c.R + s, c.G + s, c.B + s}
}

// Clamp limits every channel to [0,1].
func (c Colour) Clamp() Colour {
	return Colour{clamp01(c.R), clamp01(c.G), clamp01(c.B)}
}

// IsZero reports whether every channel is zero.
func (c Colour) IsZero() bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

// Hex packs the clamped colour into 0xRRGGBB.
func (c Colour) Hex() int {
	r, g, b := c.RGB8()
	return int(r)<<16 | int(g)<<8 | int(b)
}

// RGB8 returns the clamped colour as 8-bit channels.
func (c Colour) RGB8() (r, g, b uint8) {
	return to8(c.R), to8(c.G), to8(c.B)
}

// ColourFromHex unpacks 0xRRGGBB.
func ColourFromHex(hex int) Colour {
	return Colour{
		R: float64((hex>>16)&0xff) / 255,
		G: float64((hex>>8)&0xff) / 255,
		B: float64(hex&0xff) / 255,
	}
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}
