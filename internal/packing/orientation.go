package packing

// OrientationCount is the number of axis-aligned orientations of a box.
const OrientationCount = 6

// Orientation maps an item's extents onto the container's x, y and z axes.
type Orientation struct {
	Index   int
	Length  float64
	Breadth float64
	Height  float64
}

// Orientations returns the six permutations of (length, breadth, height).
// The index of each permutation is fixed:
//
//	0 (l,b,h)  1 (l,h,b)  2 (b,l,h)  3 (b,h,l)  4 (h,b,l)  5 (h,l,b)
func Orientations(length, breadth, height float64) [OrientationCount]Orientation {
	return [OrientationCount]Orientation{
		{Index: 0, Length: length, Breadth: breadth, Height: height},
		{Index: 1, Length: length, Breadth: height, Height: breadth},
		{Index: 2, Length: breadth, Breadth: length, Height: height},
		{Index: 3, Length: breadth, Breadth: height, Height: length},
		{Index: 4, Length: height, Breadth: breadth, Height: length},
		{Index: 5, Length: height, Breadth: length, Height: breadth},
	}
}

// ItemOrientations is Orientations applied to an item's extents.
func ItemOrientations(item Item) [OrientationCount]Orientation {
	return Orientations(item.Length, item.Breadth, item.Height)
}

// FitsWithin reports whether the oriented extents fit inside the given inner dimensions.
func (o Orientation) FitsWithin(length, breadth, height float64) bool {
	return o.Length <= length && o.Breadth <= breadth && o.Height <= height
}

func fitsType(item Item, t ContainerType) bool {
	for _, o := range ItemOrientations(item) {
		if o.FitsWithin(t.Length, t.Breadth, t.Height) {
			return true
		}
	}
	return false
}
