// Package voxel defines the display grid: integer cell coordinates, flat
// indices, colours, the shape-to-voxel enumeration used to decide which cells a
// renderable occupies, the display buffer sink and the worker partition.
package voxel

import "math"

const (
	// Epsilon offsets shadow rays and guards near-zero denominators.
	Epsilon = 1e-5

	// UnitSize is the edge length of one voxel cell.
	UnitSize = 1.0

	// DefaultGridSize is the cube edge used when no size is configured.
	DefaultGridSize = 16
)

var (
	// ErrUnits is the tolerance used when deciding whether a point falls in a cell.
	ErrUnits = UnitSize / (2 + Epsilon)

	// DiagonalErrUnits is half the diagonal of a cell.
	DiagonalErrUnits = math.Sqrt(3) / 2 * UnitSize
)
