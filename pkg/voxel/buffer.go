package voxel

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Sink receives merged worker output, one call per reported voxel.
type Sink interface {
	AddColourToVoxel(p Point, c Colour)
}

// Buffer is the display-side colour store for a grid. Colours are summed as
// they arrive and are not clamped until they are read out as bytes.
type Buffer struct {
	mu     sync.RWMutex
	grid   Grid
	colour []Colour
}

// NewBuffer allocates a black buffer for g.
func NewBuffer(g Grid) *Buffer {
	return &Buffer{grid: g, colour: make([]Colour, g.Total())}
}

// Grid returns the grid the buffer covers.
func (b *Buffer) Grid() Grid {
	return b.grid
}

// AddColourToVoxel adds c to the voxel at p. Points outside the grid are ignored.
func (b *Buffer) AddColourToVoxel(p Point, c Colour) {
	if !b.grid.Contains(p) {
		return
	}
	b.mu.Lock()
	i := b.grid.FlatIndex(p)
	b.colour[i] = b.colour[i].Add(c)
	b.mu.Unlock()
}

// Clear resets every voxel to black.
func (b *Buffer) Clear() {
	b.mu.Lock()
	clear(b.colour)
	b.mu.Unlock()
}

// At returns the accumulated colour at p.
func (b *Buffer) At(p Point) Colour {
	if !b.grid.Contains(p) {
		return Black
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.colour[b.grid.FlatIndex(p)]
}

// RGB8 returns the buffer as packed 8-bit RGB triples in flat index order.
func (b *Buffer) RGB8() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]byte, 0, len(b.colour)*3)
	for _, c := range b.colour {
		r, g, bl := c.RGB8()
		out = append(out, r, g, bl)
	}
	return out
}

// SetRGB8 replaces the buffer contents with packed 8-bit RGB triples, the
// layout RGB8 produces.
func (b *Buffer) SetRGB8(data []byte) error {
	if len(data) != len(b.colour)*3 {
		return fmt.Errorf("have %d bytes, want %d", len(data), len(b.colour)*3)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.colour {
		r, g, bl := data[3*i], data[3*i+1], data[3*i+2]
		b.colour[i] = ColourFromHex(int(r)<<16 | int(g)<<8 | int(bl))
	}
	return nil
}

// Checksum fingerprints the 8-bit contents of the buffer together with the
// grid size.
func (b *Buffer) Checksum() uint64 {
	h := xxhash.New()
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(b.grid.Size))
	_, _ = h.Write(size[:])
	_, _ = h.Write(b.RGB8())
	return h.Sum64()
}
