package export

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"slices"

	"github.com/disintegration/imaging"

	"github.com/eugenenazirov/box-packer/internal/packing"
)

// maxPreviewSide bounds the pixel size of either preview edge.
const maxPreviewSide = 4096

// WritePreview encodes a PNG top view of the container. Each unit of length
// becomes scale pixels; items are painted from the lowest layer upwards so
// the topmost item is visible. The image origin is the container's (0, 0)
// corner at the bottom left.
func WritePreview(w io.Writer, c *packing.Container, scale int) error {
	img, err := renderPreview(c, scale)
	if err != nil {
		return err
	}
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return nil
}

func renderPreview(c *packing.Container, scale int) (*image.NRGBA, error) {
	if scale < 1 {
		scale = 1
	}
	s := float64(scale)
	if longest := math.Max(c.Type.Length, c.Type.Breadth) * s; longest > maxPreviewSide {
		s = maxPreviewSide / math.Max(c.Type.Length, c.Type.Breadth)
	}

	width := min(int(math.Ceil(c.Type.Length*s)), maxPreviewSide)
	height := min(int(math.Ceil(c.Type.Breadth*s)), maxPreviewSide)
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("container %d is too small to preview", c.ID)
	}

	canvas := imaging.New(width, height, color.NRGBA{R: 240, G: 236, B: 226, A: 255})

	layered := slices.Clone(c.Items)
	slices.SortStableFunc(layered, func(a, b packing.PlacedItem) int {
		switch {
		case a.Z < b.Z:
			return -1
		case a.Z > b.Z:
			return 1
		}
		return 0
	})

	outline := color.NRGBA{R: 30, G: 30, B: 30, A: 255}
	for _, p := range layered {
		x := int(math.Round(p.X * s))
		y := int(math.Round(p.Y * s))
		pw := int(math.Round(p.Length * s))
		ph := int(math.Round(p.Breadth * s))
		if pw < 1 || ph < 1 {
			continue
		}

		canvas = imaging.Overlay(canvas, imaging.New(pw, ph, outline), image.Pt(x, y), 1.0)
		if pw > 2 && ph > 2 {
			fill := imaging.New(pw-2, ph-2, parseHexColor(p.Color))
			canvas = imaging.Overlay(canvas, fill, image.Pt(x+1, y+1), 1.0)
		}
	}

	return imaging.FlipV(canvas), nil
}
