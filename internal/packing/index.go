package packing

import (
	"github.com/dhconnelly/rtreego"
)

const (
	indexMinChildren = 2
	indexMaxChildren = 8
)

// indexedBox adapts a Box to rtreego.Spatial.
type indexedBox struct {
	box  Box
	rect rtreego.Rect
}

func (b *indexedBox) Bounds() rtreego.Rect {
	return b.rect
}

// spatialIndex answers "does this box collide with anything placed so far".
// The R-tree narrows the candidates; Overlaps makes the final decision.
// Boxes the tree cannot represent (a zero extent) are kept in loose and
// scanned linearly.
type spatialIndex struct {
	tree  *rtreego.Rtree
	loose []Box
}

func newSpatialIndex() *spatialIndex {
	return &spatialIndex{
		tree: rtreego.NewTree(3, indexMinChildren, indexMaxChildren),
	}
}

func toRect(b Box) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{b.Min[0], b.Min[1], b.Min[2]},
		[]float64{b.Size[0], b.Size[1], b.Size[2]},
	)
}

func (s *spatialIndex) insert(b Box) {
	rect, err := toRect(b)
	if err != nil {
		s.loose = append(s.loose, b)
		return
	}
	s.tree.Insert(&indexedBox{box: b, rect: rect})
}

func (s *spatialIndex) collides(b Box) bool {
	for _, other := range s.loose {
		if Overlaps(b, other) {
			return true
		}
	}

	if s.tree.Size() == 0 {
		return false
	}

	query, err := toRect(b)
	if err != nil {
		return s.collidesLinear(b)
	}
	for _, candidate := range s.tree.SearchIntersect(query) {
		if Overlaps(b, candidate.(*indexedBox).box) {
			return true
		}
	}
	return false
}

func (s *spatialIndex) collidesLinear(b Box) bool {
	for _, candidate := range s.tree.SearchIntersect(s.extent()) {
		if Overlaps(b, candidate.(*indexedBox).box) {
			return true
		}
	}
	return false
}

// extent returns a query rectangle covering everything in the tree.
func (s *spatialIndex) extent() rtreego.Rect {
	// NewRect only fails for non-positive lengths.
	rect, _ := rtreego.NewRect(
		rtreego.Point{-indexHorizon, -indexHorizon, -indexHorizon},
		[]float64{2 * indexHorizon, 2 * indexHorizon, 2 * indexHorizon},
	)
	return rect
}

const indexHorizon = 1e15

// spatial returns the container's index, building it from Items when the
// container was assembled without one.
func (c *Container) spatial() *spatialIndex {
	if c.index == nil {
		c.index = newSpatialIndex()
		for _, p := range c.Items {
			c.index.insert(p.Box())
		}
	}
	return c.index
}

// collides reports whether b overlaps any item already in the container.
func (c *Container) collides(b Box) bool {
	return c.spatial().collides(b)
}
