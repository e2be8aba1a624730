// Package record stores rendered frames so a run can be replayed without
// tracing it again.
//
// A recording is a header followed by frames:
//
//	header: "VOXTRACE" | version u8 | grid size u32
//	frame:  payload length u32 | xxhash64 of raw RGB8 u64 | zstd payload
//
// Integers are little-endian. The raw payload of a frame is Buffer.RGB8.
package record

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/taigrr/voxtrace/pkg/voxel"
)

const (
	magic   = "VOXTRACE"
	version = 1

	headerLen = len(magic) + 1 + 4
	frameLen  = 4 + 8

	// maxFrame bounds the compressed size accepted for one frame.
	maxFrame = 64 << 20
)

var (
	ErrBadHeader = errors.New("not a voxtrace recording")
	ErrChecksum  = errors.New("frame checksum mismatch")
	ErrGrid      = errors.New("frame does not match the recording grid")
)

type Writer struct {
	w      *bufio.Writer
	grid   voxel.Grid
	enc    *zstd.Encoder
	frames int
}

// NewWriter writes the recording header for g to w.
func NewWriter(w io.Writer, g voxel.Grid) (*Writer, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}

	// The header goes straight to w so a broken destination fails here.
	var hdr [headerLen]byte
	copy(hdr[:], magic)
	hdr[len(magic)] = version
	binary.LittleEndian.PutUint32(hdr[len(magic)+1:], uint32(g.Size))
	if _, err := w.Write(hdr[:]); err != nil {
		enc.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return &Writer{w: bufio.NewWriter(w), grid: g, enc: enc}, nil
}

// WriteFrame appends the current contents of b.
func (w *Writer) WriteFrame(b *voxel.Buffer) error {
	if b.Grid().Size != w.grid.Size {
		return fmt.Errorf("%w: size %d, recording %d", ErrGrid, b.Grid().Size, w.grid.Size)
	}
	raw := b.RGB8()
	payload := w.enc.EncodeAll(raw, nil)

	var hdr [frameLen]byte
	binary.LittleEndian.PutUint32(hdr[:4], uint32(len(payload)))
	binary.LittleEndian.PutUint64(hdr[4:], xxhash.Sum64(raw))
	if _, err := w.w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write frame %d: %w", w.frames, err)
	}
	if _, err := w.w.Write(payload); err != nil {
		return fmt.Errorf("write frame %d: %w", w.frames, err)
	}
	w.frames++
	return nil
}

// Frames is the number of frames written so far.
func (w *Writer) Frames() int { return w.frames }

// Flush pushes buffered frames to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Close flushes the writer. It does not close the underlying writer.
func (w *Writer) Close() error {
	err := w.w.Flush()
	w.enc.Close()
	return err
}

type Reader struct {
	r     *bufio.Reader
	grid  voxel.Grid
	dec   *zstd.Decoder
	frame int
}

// NewReader reads and checks the recording header.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	var hdr [headerLen]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if string(hdr[:len(magic)]) != magic {
		return nil, ErrBadHeader
	}
	if v := hdr[len(magic)]; v != version {
		return nil, fmt.Errorf("%w: version %d", ErrBadHeader, v)
	}
	size := int(binary.LittleEndian.Uint32(hdr[len(magic)+1:]))
	if size <= 0 {
		return nil, fmt.Errorf("%w: grid size %d", ErrBadHeader, size)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &Reader{r: br, grid: voxel.NewGrid(size), dec: dec}, nil
}

// Grid is the grid every frame of the recording covers.
func (r *Reader) Grid() voxel.Grid { return r.grid }

// Next decodes the next frame into b, which must cover Grid. It returns
// io.EOF after the last frame.
func (r *Reader) Next(b *voxel.Buffer) error {
	if b.Grid().Size != r.grid.Size {
		return fmt.Errorf("%w: size %d, recording %d", ErrGrid, b.Grid().Size, r.grid.Size)
	}
	var hdr [frameLen]byte
	if _, err := io.ReadFull(r.r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("read frame %d: %w", r.frame, err)
	}
	n := binary.LittleEndian.Uint32(hdr[:4])
	sum := binary.LittleEndian.Uint64(hdr[4:])
	if n > maxFrame {
		return fmt.Errorf("read frame %d: %d bytes is too large", r.frame, n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		return fmt.Errorf("read frame %d: %w", r.frame, io.ErrUnexpectedEOF)
	}
	raw, err := r.dec.DecodeAll(payload, nil)
	if err != nil {
		return fmt.Errorf("decode frame %d: %w", r.frame, err)
	}
	if xxhash.Sum64(raw) != sum {
		return fmt.Errorf("%w: frame %d", ErrChecksum, r.frame)
	}
	if err := b.SetRGB8(raw); err != nil {
		return fmt.Errorf("frame %d: %w: %v", r.frame, ErrGrid, err)
	}
	r.frame++
	return nil
}

// Close releases the decoder.
func (r *Reader) Close() {
	r.dec.Close()
}
