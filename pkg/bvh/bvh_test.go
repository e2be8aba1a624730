package bvh

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/voxtrace/pkg/math3d"
)

func grid(n int) []math3d.Triangle {
	var tris []math3d.Triangle
	for x := range n {
		for y := range n {
			o := math3d.V3(float64(x), float64(y), 0)
			tris = append(tris,
				math3d.Triangle{A: o, B: o.Add(math3d.V3(1, 0, 0)), C: o.Add(math3d.V3(0, 1, 0))},
				math3d.Triangle{A: o.Add(math3d.V3(1, 0, 0)), B: o.Add(math3d.V3(1, 1, 0)), C: o.Add(math3d.V3(0, 1, 0))},
			)
		}
	}
	return tris
}

func TestShapecastMatchesBruteForce(t *testing.T) {
	tris := grid(8)
	tree := Build(tris)
	require.Equal(t, len(tris), tree.Len())

	rng := rand.New(rand.NewPCG(1, 2))
	for range 50 {
		min := math3d.V3(rng.Float64()*8, rng.Float64()*8, -0.5)
		box := math3d.NewBox3(min, min.Add(math3d.V3(1.5, 1.5, 1)))

		want := map[int]bool{}
		for i, tri := range tris {
			if tri.Bounds().IntersectsBox(box) {
				want[i] = true
			}
		}
		got := map[int]bool{}
		tree.Shapecast(box, func(i int, tri math3d.Triangle) bool {
			assert.Equal(t, tris[i], tri)
			got[i] = true
			return false
		})
		assert.Equal(t, want, got)
	}
}

func TestShapecastStops(t *testing.T) {
	tree := Build(grid(4))
	calls := 0

	tree.Shapecast(tree.Bounds(), func(int, math3d.Triangle) bool {
		calls++
		return true
	})

	assert.Equal(t, 1, calls)
}

func TestAnyHitBounded(t *testing.T) {
	tree := Build(grid(4))
	down := math3d.Ray{Origin: math3d.V3(1.3, 2.2, 5), Dir: math3d.V3(0, 0, -1)}

	assert.True(t, tree.AnyHit(down, 0, 10))
	assert.False(t, tree.AnyHit(down, 0, 4), "plane is 5 units away")

	miss := math3d.Ray{Origin: math3d.V3(10, 10, 5), Dir: math3d.V3(0, 0, -1)}
	assert.False(t, tree.AnyHit(miss, 0, 10))
}

func TestTrianglesKeepOrder(t *testing.T) {
	tris := grid(3)

	assert.Equal(t, tris, Build(tris).Triangles())
}

func TestEmpty(t *testing.T) {
	tree := Build(nil)

	assert.True(t, tree.Bounds().IsEmpty())
	assert.False(t, tree.AnyHit(math3d.Ray{Dir: math3d.V3(1, 0, 0)}, 0, 1))
}

func BenchmarkShapecast(b *testing.B) {
	tree := Build(grid(32))
	box := math3d.NewBox3(math3d.V3(10, 10, -1), math3d.V3(11, 11, 1))

	for b.Loop() {
		tree.Shapecast(box, func(int, math3d.Triangle) bool { return false })
	}
}
