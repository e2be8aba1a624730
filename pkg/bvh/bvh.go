// Package bvh builds a static bounding volume hierarchy over triangles and
// answers box overlap and bounded ray queries against it.
package bvh

import (
	"slices"

	"github.com/taigrr/voxtrace/pkg/math3d"
)

const leafSize = 4

// Node is one entry of the flattened tree. Leaves hold Count triangles starting
// at First in the reordered triangle list; inner nodes point at their children.
type Node struct {
	Bounds math3d.Box3
	Left   int
	Right  int
	First  int
	Count  int
}

// Leaf reports whether the node stores triangles directly.
func (n Node) Leaf() bool {
	return n.Count > 0
}

// BVH is immutable once built and safe for concurrent queries.
type BVH struct {
	nodes []Node
	tris  []math3d.Triangle
	// index maps reordered position to the caller's triangle index.
	index []int
}

// Build creates a hierarchy over tris using median splits on the longest axis.
func Build(tris []math3d.Triangle) *BVH {
	b := &BVH{
		tris:  make([]math3d.Triangle, len(tris)),
		index: make([]int, len(tris)),
	}
	if len(tris) == 0 {
		return b
	}
	order := make([]int, len(tris))
	centres := make([]math3d.Vec3, len(tris))
	for i, t := range tris {
		order[i] = i
		centres[i] = t.Bounds().Center()
	}
	b.build(tris, order, centres, 0, len(tris))
	for i, src := range order {
		b.tris[i] = tris[src]
		b.index[i] = src
	}
	return b
}

func (b *BVH) build(tris []math3d.Triangle, order []int, centres []math3d.Vec3, lo, hi int) int {
	bounds := math3d.EmptyBox3()
	centroids := math3d.EmptyBox3()
	for _, i := range order[lo:hi] {
		bounds = bounds.Union(tris[i].Bounds())
		centroids = centroids.ExpandByPoint(centres[i])
	}

	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{Bounds: bounds})
	if hi-lo <= leafSize {
		b.nodes[id].First, b.nodes[id].Count = lo, hi-lo
		return id
	}

	axis := longestAxis(centroids.Size())
	span := order[lo:hi]
	slices.SortStableFunc(span, func(a, c int) int {
		ca, cc := centres[a].Component(axis), centres[c].Component(axis)
		switch {
		case ca < cc:
			return -1
		case ca > cc:
			return 1
		}
		return 0
	})
	mid := lo + (hi-lo)/2

	left := b.build(tris, order, centres, lo, mid)
	right := b.build(tris, order, centres, mid, hi)
	b.nodes[id].Left, b.nodes[id].Right = left, right
	return id
}

func longestAxis(size math3d.Vec3) int {
	if size.X >= size.Y && size.X >= size.Z {
		return 0
	}
	if size.Y >= size.Z {
		return 1
	}
	return 2
}

// Len is the number of triangles in the hierarchy.
func (b *BVH) Len() int {
	return len(b.tris)
}

// Bounds returns the box around every triangle.
func (b *BVH) Bounds() math3d.Box3 {
	if len(b.nodes) == 0 {
		return math3d.EmptyBox3()
	}
	return b.nodes[0].Bounds
}

// Triangles returns the triangles in the caller's original order.
func (b *BVH) Triangles() []math3d.Triangle {
	out := make([]math3d.Triangle, len(b.tris))
	for i, t := range b.tris {
		out[b.index[i]] = t
	}
	return out
}

// Shapecast calls fn with the original index of every triangle whose bounds
// overlap box. Returning true from fn stops the walk.
func (b *BVH) Shapecast(box math3d.Box3, fn func(index int, t math3d.Triangle) bool) {
	b.walk(func(n Node) bool { return n.Bounds.IntersectsBox(box) }, func(i int) bool {
		if !b.tris[i].Bounds().IntersectsBox(box) {
			return false
		}
		return fn(b.index[i], b.tris[i])
	})
}

// AnyHit reports whether the ray crosses any triangle with a parameter inside
// [near, far].
func (b *BVH) AnyHit(r math3d.Ray, near, far float64) bool {
	hit := false
	b.walk(func(n Node) bool { return r.HitsBox(n.Bounds, near, far) }, func(i int) bool {
		if t, ok := r.IntersectTriangle(b.tris[i]); ok && t >= near && t <= far {
			hit = true
		}
		return hit
	})
	return hit
}

// walk visits leaves depth first with an explicit stack.
func (b *BVH) walk(enter func(Node) bool, visit func(int) bool) {
	if len(b.nodes) == 0 {
		return
	}
	stack := make([]int, 0, 64)
	stack = append(stack, 0)
	for len(stack) > 0 {
		n := b.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]
		if !enter(n) {
			continue
		}
		if n.Leaf() {
			for i := n.First; i < n.First+n.Count; i++ {
				if visit(i) {
					return
				}
			}
			continue
		}
		stack = append(stack, n.Right, n.Left)
	}
}
