// Package export renders packing runs into shareable documents: a PDF report,
// QR-coded container labels, an Excel workbook, PNG top-view previews and STL
// models of each loaded container.
package export

import (
	"errors"
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/maruel/natural"

	"github.com/eugenenazirov/box-packer/internal/packing"
)

// ErrEmptyContainer is returned when a per-container export has nothing to draw.
var ErrEmptyContainer = errors.New("container has no items")

// unplacedHeading introduces the list of items no container type could hold.
const unplacedHeading = "Could not fit in available boxes"

// sortedPlacements returns the container's placements ordered by item name
// using natural ordering, so "Item2" sorts before "Item10".
func sortedPlacements(c *packing.Container) []packing.PlacedItem {
	out := make([]packing.PlacedItem, len(c.Items))
	copy(out, c.Items)
	sort.SliceStable(out, func(i, j int) bool {
		return natural.Less(out[i].Item.Name, out[j].Item.Name)
	})
	return out
}

// parseHexColor converts "#RRGGBB" into an opaque colour. Malformed input yields grey.
func parseHexColor(hex string) color.NRGBA {
	grey := color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return grey
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return grey
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

func containerTitle(c *packing.Container) string {
	return fmt.Sprintf("Container %d: %s (%s)", c.ID, c.Type.Name, dims(c.Type.Length, c.Type.Breadth, c.Type.Height))
}

func dims(l, b, h float64) string {
	return fmt.Sprintf("%s x %s x %s", num(l), num(b), num(h))
}

// num formats a measurement without trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}
