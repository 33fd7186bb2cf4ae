package export

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/go-pdf/fpdf"

	"github.com/eugenenazirov/box-packer/internal/packing"
	"github.com/eugenenazirov/box-packer/internal/storage"
)

// Page layout constants (A4 portrait in mm).
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 10.0
	contentWidth = pageWidth - marginLeft - marginRight
	diagramTop   = marginTop + headerHeight + 12.0
	diagramMaxH  = 100.0
	rowHeight    = 6.0
)

// WritePDF renders a packing report: one page per container with a top-view
// diagram and placement table, followed by a summary page.
func WritePDF(w io.Writer, run storage.Run) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetTitle("Packing report "+run.ID, true)

	for _, c := range run.Result.Containers {
		pdf.AddPage()
		renderContainerPage(pdf, c)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, run)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func renderContainerPage(pdf *fpdf.Fpdf, c *packing.Container) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(contentWidth, headerHeight, containerTitle(c), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Items: %d | Weight: %s / %s kg | Efficiency: %s",
		len(c.Items), num(c.LoadedWeight()), num(c.WeightCapacity), percent(c.Efficiency()))
	pdf.CellFormat(contentWidth, 5, stats, "", 0, "L", false, 0, "")

	bottom := drawTopView(pdf, c)
	drawPlacementTable(pdf, c, bottom+8)
}

// drawTopView draws the container footprint and its items, lowest layer
// first, and returns the y coordinate below the drawing.
func drawTopView(pdf *fpdf.Fpdf, c *packing.Container) float64 {
	scale := math.Min(contentWidth/c.Type.Length, diagramMaxH/c.Type.Breadth)
	canvasW := c.Type.Length * scale
	canvasH := c.Type.Breadth * scale
	offsetX := marginLeft + (contentWidth-canvasW)/2
	offsetY := diagramTop

	pdf.SetFillColor(240, 236, 226)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

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

	for _, p := range layered {
		col := parseHexColor(p.Color)
		px := offsetX + p.X*scale
		py := offsetY + p.Y*scale
		pw := p.Length * scale
		ph := p.Breadth * scale

		pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 12 && ph > 6 {
			pdf.SetFont("Helvetica", "", 7)
			label := p.Item.Name
			if labelW := pdf.GetStringWidth(label); labelW < pw-2 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-2)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
		}
	}

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)
	lengthLabel := "length " + num(c.Type.Length)
	lw := pdf.GetStringWidth(lengthLabel)
	pdf.SetXY(offsetX+(canvasW-lw)/2, offsetY+canvasH+1)
	pdf.CellFormat(lw, 4, lengthLabel, "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	return offsetY + canvasH + 5
}

func drawPlacementTable(pdf *fpdf.Fpdf, c *packing.Container, y float64) {
	colWidths := []float64{45, 40, 45, 25, 25}
	headers := []string{"Item", "Placed size", "Position (x, y, z)", "Orientation", "Weight"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], rowHeight, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += rowHeight

	pdf.SetFont("Helvetica", "", 9)
	for i, p := range sortedPlacements(c) {
		if y+rowHeight > pageHeight-marginBottom {
			pdf.AddPage()
			y = marginTop
		}
		rowData := []string{
			p.Item.Name,
			dims(p.Length, p.Breadth, p.Height),
			fmt.Sprintf("(%s, %s, %s)", num(p.X), num(p.Y), num(p.Z)),
			fmt.Sprintf("%d", p.Orientation),
			num(p.Item.Weight),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		xPos = marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], rowHeight, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += rowHeight
	}
}

type summaryRow struct {
	label string
	value string
}

func renderSummaryPage(pdf *fpdf.Fpdf, run storage.Run) {
	result := run.Result

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(contentWidth, 10, "Packing Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	summaryItems := []summaryRow{
		{"Algorithm", result.Label},
		{"Containers Used", fmt.Sprintf("%d", result.ContainerCount)},
		{"Overall Efficiency", percent(result.Efficiency)},
		{"Items Packed", fmt.Sprintf("%d", result.PlacedCount())},
		{"Items Unpacked", fmt.Sprintf("%d", len(result.Unplaced))},
	}
	if run.ID != "" {
		summaryItems = append(summaryItems, summaryRow{"Run", run.ID})
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(100, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Container Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{15, 40, 45, 20, 40, 20}
	headers := []string{"#", "Type", "Dimensions", "Items", "Weight used / cap", "Efficiency"}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], rowHeight, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += rowHeight

	pdf.SetFont("Helvetica", "", 9)
	for i, c := range result.Containers {
		if y+rowHeight > pageHeight-marginBottom {
			pdf.AddPage()
			y = marginTop
		}
		rowData := []string{
			fmt.Sprintf("%d", c.ID),
			c.Type.Name,
			dims(c.Type.Length, c.Type.Breadth, c.Type.Height),
			fmt.Sprintf("%d", len(c.Items)),
			fmt.Sprintf("%s / %s", num(c.LoadedWeight()), num(c.WeightCapacity)),
			percent(c.Efficiency()),
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		xPos = marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], rowHeight, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += rowHeight
	}

	if len(result.Unplaced) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(contentWidth, 7, unplacedHeading, "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, item := range result.Unplaced {
			if y+5 > pageHeight-marginBottom {
				pdf.AddPage()
				y = marginTop
			}
			pdf.SetXY(marginLeft+5, y)
			text := fmt.Sprintf("- %s: %s (weight %s)", item.Name, dims(item.Length, item.Breadth, item.Height), num(item.Weight))
			pdf.CellFormat(contentWidth-5, 5, text, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(contentWidth, 4, "Generated by box-packer", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}
