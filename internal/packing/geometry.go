package packing

import "github.com/go-gl/mathgl/mgl64"

// geometryTolerance absorbs float rounding when positions are multiples of a
// fractional grid step, e.g. 2*0.1 + 0.1 > 0.3.
const geometryTolerance = 1e-9

// Box is an axis-aligned region given by its minimum corner and extents.
type Box struct {
	Min  mgl64.Vec3
	Size mgl64.Vec3
}

// Max returns the corner opposite Min.
func (b Box) Max() mgl64.Vec3 {
	return b.Min.Add(b.Size)
}

// Overlaps reports whether b and other share interior volume.
func (b Box) Overlaps(other Box) bool {
	return Overlaps(b, other)
}

// Within reports whether b lies inside the region [0, bounds] on every axis,
// up to geometryTolerance.
func (b Box) Within(bounds mgl64.Vec3) bool {
	max := b.Max()
	for axis := 0; axis < 3; axis++ {
		if b.Min[axis] < -geometryTolerance || max[axis] > bounds[axis]+geometryTolerance {
			return false
		}
	}
	return true
}

// Overlaps reports whether two boxes intersect on all three axes. Intervals
// are half-open, so boxes that only touch along a face or edge do not overlap.
// Contact closer than geometryTolerance counts as touching.
func Overlaps(a, b Box) bool {
	aMax, bMax := a.Max(), b.Max()
	for axis := 0; axis < 3; axis++ {
		if a.Min[axis] >= bMax[axis]-geometryTolerance || b.Min[axis] >= aMax[axis]-geometryTolerance {
			return false
		}
	}
	return true
}
