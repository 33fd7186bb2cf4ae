package packing

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
)

// Palette is the colour cycle assigned to items by placement order within a container.
var Palette = []string{
	"#1FB8CD", "#FFC185", "#B4413C", "#ECEBD5", "#5D878F",
	"#DB4545", "#D2BA4C", "#964325", "#944454", "#13343B",
}

// Item is a rectangular solid to be packed.
type Item struct {
	Name    string  `json:"name" yaml:"name"`
	Length  float64 `json:"length" yaml:"length"`
	Breadth float64 `json:"breadth" yaml:"breadth"`
	Height  float64 `json:"height" yaml:"height"`
	Weight  float64 `json:"weight" yaml:"weight"`
}

// Volume returns length × breadth × height.
func (i Item) Volume() float64 {
	return i.Length * i.Breadth * i.Height
}

// ContainerType describes the inner dimensions and weight capacity of a container.
type ContainerType struct {
	Name           string  `json:"name" yaml:"name"`
	Length         float64 `json:"length" yaml:"length"`
	Breadth        float64 `json:"breadth" yaml:"breadth"`
	Height         float64 `json:"height" yaml:"height"`
	WeightCapacity float64 `json:"weightCapacity" yaml:"weight_capacity"`
}

// Volume returns the inner volume of the container type.
func (t ContainerType) Volume() float64 {
	return t.Length * t.Breadth * t.Height
}

func (t ContainerType) bounds() mgl64.Vec3 {
	return mgl64.Vec3{t.Length, t.Breadth, t.Height}
}

// PlacedItem is an item with its chosen orientation and minimum-corner position.
type PlacedItem struct {
	Item        Item    `json:"item"`
	Orientation int     `json:"orientation"`
	Length      float64 `json:"length"`
	Breadth     float64 `json:"breadth"`
	Height      float64 `json:"height"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Z           float64 `json:"z"`
	Color       string  `json:"color"`
}

// Box returns the region the placed item occupies.
func (p PlacedItem) Box() Box {
	return Box{
		Min:  mgl64.Vec3{p.X, p.Y, p.Z},
		Size: mgl64.Vec3{p.Length, p.Breadth, p.Height},
	}
}

// Volume returns the oriented volume, which equals the source item volume.
func (p PlacedItem) Volume() float64 {
	return p.Length * p.Breadth * p.Height
}

// Container is an opened instance of a ContainerType.
type Container struct {
	ID             int           `json:"id"`
	Type           ContainerType `json:"type"`
	WeightCapacity float64       `json:"weightCapacity"`
	Items          []PlacedItem  `json:"items"`

	index *spatialIndex
}

func newContainer(id int, t ContainerType) *Container {
	return &Container{
		ID:             id,
		Type:           t,
		WeightCapacity: t.WeightCapacity,
		Items:          []PlacedItem{},
		index:          newSpatialIndex(),
	}
}

// Volume returns the inner volume of the container's type.
func (c *Container) Volume() float64 {
	return c.Type.Volume()
}

// LoadedWeight returns the summed weight of the placed items.
func (c *Container) LoadedWeight() float64 {
	return lo.SumBy(c.Items, func(p PlacedItem) float64 { return p.Item.Weight })
}

// RemainingCapacity returns how much weight the container can still take.
func (c *Container) RemainingCapacity() float64 {
	return c.WeightCapacity - c.LoadedWeight()
}

// ItemVolume returns the summed volume of the placed items.
func (c *Container) ItemVolume() float64 {
	return lo.SumBy(c.Items, func(p PlacedItem) float64 { return p.Volume() })
}

// Efficiency returns this container's volumetric utilisation as a percentage.
func (c *Container) Efficiency() float64 {
	return Efficiency([]*Container{c})
}

func (c *Container) place(item Item, p Placement) PlacedItem {
	placed := PlacedItem{
		Item:        item,
		Orientation: p.Orientation.Index,
		Length:      p.Orientation.Length,
		Breadth:     p.Orientation.Breadth,
		Height:      p.Orientation.Height,
		X:           p.Position.X(),
		Y:           p.Position.Y(),
		Z:           p.Position.Z(),
		Color:       Palette[len(c.Items)%len(Palette)],
	}
	c.spatial().insert(placed.Box())
	c.Items = append(c.Items, placed)
	return placed
}

// RunResult is the outcome of one packing run.
type RunResult struct {
	Strategy       Strategy     `json:"strategy"`
	Label          string       `json:"label"`
	Containers     []*Container `json:"containers"`
	Unplaced       []Item       `json:"unplaced"`
	ContainerCount int          `json:"containerCount"`
	Efficiency     float64      `json:"efficiency"`
}

// PlacedCount returns the number of items placed across all containers.
func (r RunResult) PlacedCount() int {
	return lo.SumBy(r.Containers, func(c *Container) int { return len(c.Items) })
}

// ItemCount returns the number of input items accounted for by the result.
func (r RunResult) ItemCount() int {
	return r.PlacedCount() + len(r.Unplaced)
}
