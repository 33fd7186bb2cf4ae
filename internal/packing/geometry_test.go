package packing

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func box(x, y, z, l, b, h float64) Box {
	return Box{Min: mgl64.Vec3{x, y, z}, Size: mgl64.Vec3{l, b, h}}
}

func TestOverlaps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Box
		want bool
	}{
		{name: "identical", a: box(0, 0, 0, 2, 2, 2), b: box(0, 0, 0, 2, 2, 2), want: true},
		{name: "partial", a: box(0, 0, 0, 2, 2, 2), b: box(1, 1, 1, 2, 2, 2), want: true},
		{name: "contained", a: box(0, 0, 0, 10, 10, 10), b: box(3, 3, 3, 1, 1, 1), want: true},
		{name: "touching face on x", a: box(0, 0, 0, 2, 2, 2), b: box(2, 0, 0, 2, 2, 2), want: false},
		{name: "touching face on z", a: box(0, 0, 0, 10, 5, 3), b: box(0, 0, 3, 10, 5, 3), want: false},
		{name: "touching edge", a: box(0, 0, 0, 2, 2, 2), b: box(2, 2, 0, 2, 2, 2), want: false},
		{name: "separated on one axis only", a: box(0, 0, 0, 2, 2, 2), b: box(0, 0, 5, 2, 2, 2), want: false},
		{name: "overlap on two axes", a: box(0, 0, 0, 4, 4, 1), b: box(1, 1, 1, 1, 1, 1), want: false},
		{name: "touching after rounding", a: box(0.1, 0, 0, 0.2, 1, 1), b: box(0.3, 0, 0, 1, 1, 1), want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.a, tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(tc.a), "overlap must be symmetric")
		})
	}
}

func TestBoxWithin(t *testing.T) {
	t.Parallel()

	bounds := mgl64.Vec3{12, 8, 6}
	assert.True(t, box(0, 0, 0, 12, 8, 6).Within(bounds))
	assert.True(t, box(2, 3, 3, 10, 5, 3).Within(bounds))
	assert.False(t, box(3, 0, 0, 10, 5, 3).Within(bounds))
	assert.False(t, box(-1, 0, 0, 1, 1, 1).Within(bounds))

	// 0.2 + 0.1 rounds above 0.3 in float64.
	assert.True(t, box(0.2, 0, 0, 0.1, 0.1, 0.1).Within(mgl64.Vec3{0.3, 0.1, 0.1}))
	assert.False(t, box(0.2, 0, 0, 0.11, 0.1, 0.1).Within(mgl64.Vec3{0.3, 0.1, 0.1}))
}

func TestOrientations(t *testing.T) {
	t.Parallel()

	got := Orientations(1, 2, 3)

	want := [][3]float64{
		{1, 2, 3},
		{1, 3, 2},
		{2, 1, 3},
		{2, 3, 1},
		{3, 2, 1},
		{3, 1, 2},
	}
	seen := make(map[[3]float64]bool)
	for i, o := range got {
		assert.Equal(t, i, o.Index)
		extents := [3]float64{o.Length, o.Breadth, o.Height}
		assert.Equal(t, want[i], extents, "orientation %d", i)
		seen[extents] = true
	}
	assert.Len(t, seen, OrientationCount, "all permutations must be distinct")

	assert.Equal(t, got, Orientations(1, 2, 3), "enumeration must be stable")
}

func TestOrientationFitsWithin(t *testing.T) {
	t.Parallel()

	o := Orientation{Length: 10, Breadth: 5, Height: 3}
	assert.True(t, o.FitsWithin(10, 5, 3))
	assert.True(t, o.FitsWithin(12, 8, 6))
	assert.False(t, o.FitsWithin(9, 8, 6))
}

func TestSpatialIndexMatchesLinearScan(t *testing.T) {
	t.Parallel()

	c := newContainer(1, ContainerType{Name: "cube", Length: 10, Breadth: 10, Height: 10, WeightCapacity: 100})
	placed := []Box{box(0, 0, 0, 4, 4, 4), box(4, 0, 0, 2, 5, 1), box(0, 6, 2, 3, 3, 3)}
	for _, b := range placed {
		c.spatial().insert(b)
	}

	for x := 0.0; x < 9; x++ {
		for y := 0.0; y < 9; y++ {
			for z := 0.0; z < 9; z++ {
				probeBox := box(x, y, z, 2, 2, 2)
				linear := false
				for _, b := range placed {
					if Overlaps(probeBox, b) {
						linear = true
						break
					}
				}
				assert.Equal(t, linear, c.collides(probeBox), "probe at (%v,%v,%v)", x, y, z)
			}
		}
	}
}
