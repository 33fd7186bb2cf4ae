package packing

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultGridStep is the spacing of candidate positions, in input units.
const DefaultGridStep = 1.0

// Placement is a candidate orientation and minimum-corner position for an item.
type Placement struct {
	Orientation Orientation
	Position    mgl64.Vec3
}

// Score is the placement's distance from the container origin (x + y + z).
func (p Placement) Score() float64 {
	return p.Position.X() + p.Position.Y() + p.Position.Z()
}

// Box returns the region the placement would occupy.
func (p Placement) Box() Box {
	return Box{
		Min:  p.Position,
		Size: mgl64.Vec3{p.Orientation.Length, p.Orientation.Breadth, p.Orientation.Height},
	}
}

// probe scans grid positions with x outermost and z innermost and returns the
// first one where the oriented item lies inside c and clear of its items.
func probe(o Orientation, c *Container, step float64) (mgl64.Vec3, bool) {
	if step <= 0 {
		step = DefaultGridStep
	}
	bounds := c.Type.bounds()
	size := mgl64.Vec3{o.Length, o.Breadth, o.Height}
	limit := bounds.Sub(size).Add(mgl64.Vec3{1, 1, 1}.Mul(stepTolerance(step)))

	for i := 0; float64(i)*step <= limit.X(); i++ {
		x := float64(i) * step
		for j := 0; float64(j)*step <= limit.Y(); j++ {
			y := float64(j) * step
			for k := 0; float64(k)*step <= limit.Z(); k++ {
				candidate := Box{Min: mgl64.Vec3{x, y, float64(k) * step}, Size: size}
				if candidate.Within(bounds) && !c.collides(candidate) {
					return candidate.Min, true
				}
			}
		}
	}
	return mgl64.Vec3{}, false
}

// stepTolerance is the slack allowed when comparing a grid position with the
// far wall, so the last multiple of step is not lost to rounding.
func stepTolerance(step float64) float64 {
	return step * 1e-6
}

// GridCells returns how many candidate positions a probe of an empty
// container of type t visits for a unit item at the given step. Probe cost
// grows with this number.
func GridCells(t ContainerType, step float64) float64 {
	if step <= 0 {
		step = DefaultGridStep
	}
	cells := 1.0
	for _, dim := range []float64{t.Length, t.Breadth, t.Height} {
		cells *= math.Floor((dim+stepTolerance(step))/step) + 1
	}
	return cells
}

// CanAccept reports whether item could be added to c: the remaining weight
// capacity must cover it and at least one orientation must have a free
// position. Weight is checked first since it does not depend on orientation.
func (c *Container) CanAccept(item Item, step float64) bool {
	if c.LoadedWeight()+item.Weight > c.WeightCapacity {
		return false
	}
	for _, o := range ItemOrientations(item) {
		if !o.FitsWithin(c.Type.Length, c.Type.Breadth, c.Type.Height) {
			continue
		}
		if _, ok := probe(o, c, step); ok {
			return true
		}
	}
	return false
}

// BestPlacement probes every orientation that fits c's inner dimensions and
// returns the position closest to the origin by x + y + z. Ties keep the
// lower orientation index. It does not check weight.
func BestPlacement(item Item, c *Container, step float64) (Placement, bool) {
	var (
		best  Placement
		found bool
	)
	for _, o := range ItemOrientations(item) {
		if !o.FitsWithin(c.Type.Length, c.Type.Breadth, c.Type.Height) {
			continue
		}
		pos, ok := probe(o, c, step)
		if !ok {
			continue
		}
		candidate := Placement{Orientation: o, Position: pos}
		if !found || candidate.Score() < best.Score() {
			best = candidate
			found = true
		}
	}
	return best, found
}
