package voxel

// Interval is an inclusive range of flat voxel indices owned by one worker.
type Interval struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// Contains reports whether index falls inside the interval.
func (iv Interval) Contains(index int) bool {
	return index >= iv.Lo && index <= iv.Hi
}

// Len is the number of indices in the interval.
func (iv Interval) Len() int {
	if iv.Hi < iv.Lo {
		return 0
	}
	return iv.Hi - iv.Lo + 1
}

// PerWorker is the interval length used when splitting total indices n ways.
func PerWorker(total, n int) int {
	if n <= 0 {
		return total
	}
	return (total + n - 1) / n
}

// Partition splits [0, total) into n contiguous intervals of PerWorker(total, n)
// indices. The last interval may be short, and when n exceeds total the trailing
// intervals are empty.
func Partition(total, n int) []Interval {
	if n <= 0 {
		return nil
	}
	size := PerWorker(total, n)
	out := make([]Interval, n)
	for i := range out {
		lo := i * size
		hi := min(lo+size, total) - 1
		if lo >= total {
			lo, hi = total, total-1
		}
		out[i] = Interval{Lo: lo, Hi: hi}
	}
	return out
}

// Owner returns the worker index owning a flat index, or -1 when the index is
// outside [0, total).
func Owner(index, total, perWorker int) int {
	if index < 0 || index >= total || perWorker <= 0 {
		return -1
	}
	return index / perWorker
}
