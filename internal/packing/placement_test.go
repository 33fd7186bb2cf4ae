package packing

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var smallBox = ContainerType{Name: "SmallBox", Length: 12, Breadth: 8, Height: 6, WeightCapacity: 5}

func TestBestPlacementEmptyContainerUsesOrigin(t *testing.T) {
	t.Parallel()

	c := newContainer(1, smallBox)
	p, ok := BestPlacement(Item{Name: "Item1", Length: 10, Breadth: 5, Height: 3, Weight: 2}, c, DefaultGridStep)

	require.True(t, ok)
	assert.Equal(t, 0, p.Orientation.Index)
	assert.Equal(t, mgl64.Vec3{0, 0, 0}, p.Position)
}

func TestBestPlacementPrefersLowestScore(t *testing.T) {
	t.Parallel()

	item := Item{Name: "Item1", Length: 10, Breadth: 5, Height: 3, Weight: 2}
	c := newContainer(1, smallBox)
	first, ok := BestPlacement(item, c, DefaultGridStep)
	require.True(t, ok)
	c.place(item, first)

	// Orientation 0 stacks on top at z=3; orientation 1 only fits beside at y=5.
	second, ok := BestPlacement(item, c, DefaultGridStep)
	require.True(t, ok)
	assert.Equal(t, 0, second.Orientation.Index)
	assert.Equal(t, mgl64.Vec3{0, 0, 3}, second.Position)
	assert.InDelta(t, 3.0, second.Score(), 1e-9)
}

func TestBestPlacementSkipsOrientationsTooLarge(t *testing.T) {
	t.Parallel()

	c := newContainer(1, ContainerType{Name: "tall", Length: 3, Breadth: 5, Height: 10, WeightCapacity: 10})
	p, ok := BestPlacement(Item{Name: "rod", Length: 10, Breadth: 5, Height: 3, Weight: 1}, c, DefaultGridStep)

	require.True(t, ok)
	assert.Equal(t, 4, p.Orientation.Index, "only (h,b,l) fits a 3x5x10 container")
	assert.Equal(t, [3]float64{3, 5, 10}, [3]float64{p.Orientation.Length, p.Orientation.Breadth, p.Orientation.Height})
}

func TestBestPlacementNoRoom(t *testing.T) {
	t.Parallel()

	cube := ContainerType{Name: "cube", Length: 3, Breadth: 3, Height: 3, WeightCapacity: 100}
	item := Item{Name: "block", Length: 2, Breadth: 2, Height: 2, Weight: 1}
	c := newContainer(1, cube)
	p, ok := BestPlacement(item, c, DefaultGridStep)
	require.True(t, ok)
	c.place(item, p)

	_, ok = BestPlacement(item, c, DefaultGridStep)
	assert.False(t, ok)
	assert.False(t, c.CanAccept(item, DefaultGridStep))
}

func TestCanAcceptChecksWeightFirst(t *testing.T) {
	t.Parallel()

	item := Item{Name: "Item1", Length: 10, Breadth: 5, Height: 3, Weight: 3}
	c := newContainer(1, smallBox)
	p, ok := BestPlacement(item, c, DefaultGridStep)
	require.True(t, ok)
	c.place(item, p)

	_, geometric := BestPlacement(item, c, DefaultGridStep)
	assert.True(t, geometric, "there is room on top")
	assert.False(t, c.CanAccept(item, DefaultGridStep), "3 + 3 exceeds capacity 5")
	assert.InDelta(t, 2.0, c.RemainingCapacity(), 1e-9)
}

func TestProbeReturnsFirstGridPosition(t *testing.T) {
	t.Parallel()

	c := newContainer(1, ContainerType{Name: "cube", Length: 4, Breadth: 4, Height: 4, WeightCapacity: 10})
	c.spatial().insert(box(0, 0, 0, 2, 4, 4))

	pos, ok := probe(Orientation{Length: 2, Breadth: 2, Height: 2}, c, DefaultGridStep)
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{2, 0, 0}, pos)
}

func TestProbeHonoursGridStep(t *testing.T) {
	t.Parallel()

	c := newContainer(1, ContainerType{Name: "slab", Length: 3, Breadth: 1, Height: 1, WeightCapacity: 10})
	c.spatial().insert(box(0, 0, 0, 1.5, 1, 1))

	o := Orientation{Length: 1.5, Breadth: 1, Height: 1}
	_, ok := probe(o, c, DefaultGridStep)
	assert.False(t, ok, "x=1 overlaps and x=2 overflows on a unit grid")

	pos, ok := probe(o, c, 0.5)
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{1.5, 0, 0}, pos)
}

func TestPlaceCyclesPalette(t *testing.T) {
	t.Parallel()

	c := newContainer(7, ContainerType{Name: "crate", Length: 10, Breadth: 10, Height: 10, WeightCapacity: 100})
	unit := Item{Name: "unit", Length: 1, Breadth: 1, Height: 1, Weight: 1}
	for i := 0; i < len(Palette)+1; i++ {
		p, ok := BestPlacement(unit, c, DefaultGridStep)
		require.True(t, ok)
		c.place(unit, p)
	}

	require.Len(t, c.Items, len(Palette)+1)
	assert.Equal(t, Palette[0], c.Items[0].Color)
	assert.Equal(t, Palette[1], c.Items[1].Color)
	assert.Equal(t, Palette[0], c.Items[len(Palette)].Color)
	assert.InDelta(t, float64(len(Palette)+1), c.LoadedWeight(), 1e-9)
}

func TestContainerWithoutIndexRebuildsFromItems(t *testing.T) {
	t.Parallel()

	c := &Container{
		ID:             1,
		Type:           smallBox,
		WeightCapacity: smallBox.WeightCapacity,
		Items: []PlacedItem{
			{Item: Item{Name: "a", Length: 10, Breadth: 5, Height: 3, Weight: 1}, Length: 10, Breadth: 5, Height: 3},
		},
	}

	p, ok := BestPlacement(Item{Name: "b", Length: 10, Breadth: 5, Height: 3, Weight: 1}, c, DefaultGridStep)
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{0, 0, 3}, p.Position)
}
