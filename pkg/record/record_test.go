package record

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/voxtrace/pkg/voxel"
)

func frames(g voxel.Grid) []*voxel.Buffer {
	var out []*voxel.Buffer
	for i := range 3 {
		b := voxel.NewBuffer(g)
		b.AddColourToVoxel(g.PointAt(i), voxel.RGB(1, 0.5, 0))
		b.AddColourToVoxel(g.PointAt(g.Total()-1-i), voxel.RGB(0, 0.25, 1))
		out = append(out, b)
	}
	return out
}

func record(t *testing.T, g voxel.Grid, bufs []*voxel.Buffer) []byte {
	t.Helper()
	var out bytes.Buffer
	w, err := NewWriter(&out, g)
	require.NoError(t, err)
	for _, b := range bufs {
		require.NoError(t, w.WriteFrame(b))
	}
	assert.Equal(t, len(bufs), w.Frames())
	require.NoError(t, w.Close())
	return out.Bytes()
}

func TestReplay(t *testing.T) {
	g := voxel.NewGrid(6)
	want := frames(g)
	data := record(t, g, want)

	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 6, r.Grid().Size)

	got := voxel.NewBuffer(r.Grid())
	for i, b := range want {
		require.NoError(t, r.Next(got), "frame %d", i)
		assert.Equal(t, b.Checksum(), got.Checksum(), "frame %d", i)
		assert.Equal(t, b.RGB8(), got.RGB8())
	}
	assert.ErrorIs(t, r.Next(got), io.EOF)
}

func TestEmptyRecording(t *testing.T) {
	g := voxel.NewGrid(2)
	r, err := NewReader(bytes.NewReader(record(t, g, nil)))
	require.NoError(t, err)
	assert.ErrorIs(t, r.Next(voxel.NewBuffer(g)), io.EOF)
}

func TestBadHeader(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":   nil,
		"short":   []byte("VOX"),
		"magic":   []byte("NOTVOXEL\x01\x04\x00\x00\x00"),
		"version": []byte("VOXTRACE\x09\x04\x00\x00\x00"),
		"size":    []byte("VOXTRACE\x01\x00\x00\x00\x00"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewReader(bytes.NewReader(data))
			assert.ErrorIs(t, err, ErrBadHeader)
		})
	}
}

func TestChecksumMismatch(t *testing.T) {
	g := voxel.NewGrid(4)
	data := record(t, g, frames(g)[:1])
	data[headerLen+4] ^= 0xff

	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.ErrorIs(t, r.Next(voxel.NewBuffer(g)), ErrChecksum)
}

func TestTruncatedFrame(t *testing.T) {
	g := voxel.NewGrid(4)
	data := record(t, g, frames(g)[:1])

	r, err := NewReader(bytes.NewReader(data[:len(data)-2]))
	require.NoError(t, err)
	err = r.Next(voxel.NewBuffer(g))
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestGridMismatch(t *testing.T) {
	g := voxel.NewGrid(4)
	var out bytes.Buffer
	w, err := NewWriter(&out, g)
	require.NoError(t, err)
	assert.ErrorIs(t, w.WriteFrame(voxel.NewBuffer(voxel.NewGrid(5))), ErrGrid)

	r, err := NewReader(bytes.NewReader(record(t, g, frames(g))))
	require.NoError(t, err)
	assert.ErrorIs(t, r.Next(voxel.NewBuffer(voxel.NewGrid(3))), ErrGrid)
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestNewWriterHeaderFailure(t *testing.T) {
	w, err := NewWriter(brokenWriter{}, voxel.NewGrid(4))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Nil(t, w)
}
