package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/go-pdf/fpdf"
	"github.com/maruel/natural"
	"github.com/samber/lo"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/eugenenazirov/box-packer/internal/packing"
	"github.com/eugenenazirov/box-packer/internal/storage"
)

// ErrNoContainers is returned when a run has no containers to label.
var ErrNoContainers = errors.New("run has no containers")

// LabelInfo is the manifest encoded into each container label's QR code.
type LabelInfo struct {
	RunID          string         `json:"run,omitempty"`
	Container      int            `json:"container"`
	Type           string         `json:"type"`
	Dimensions     string         `json:"dimensions"`
	LoadedWeight   float64        `json:"weight"`
	WeightCapacity float64        `json:"capacity"`
	Contents       map[string]int `json:"contents"`
}

// Label layout: 2 columns x 4 rows of shipping labels on A4.
const (
	labelMarginTop  = 13.5
	labelMarginLeft = 10.0
	labelWidth      = 95.0
	labelHeight     = 67.5
	labelCols       = 2
	labelRows       = 4
	labelsPerPage   = labelCols * labelRows
	qrSize          = 42.0
	labelPadding    = 3.0
)

// CollectLabelInfos builds one manifest per container of the run.
func CollectLabelInfos(run storage.Run) []LabelInfo {
	return lo.Map(run.Result.Containers, func(c *packing.Container, _ int) LabelInfo {
		names := lo.Map(c.Items, func(p packing.PlacedItem, _ int) string { return p.Item.Name })
		return LabelInfo{
			RunID:          run.ID,
			Container:      c.ID,
			Type:           c.Type.Name,
			Dimensions:     dims(c.Type.Length, c.Type.Breadth, c.Type.Height),
			LoadedWeight:   c.LoadedWeight(),
			WeightCapacity: c.WeightCapacity,
			Contents:       lo.CountValues(names),
		}
	})
}

// WriteLabels renders a PDF sheet with one QR-coded label per container.
func WriteLabels(w io.Writer, run storage.Run) error {
	labels := CollectLabelInfos(run)
	if len(labels) == 0 {
		return ErrNoContainers
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("render label for container %d: %w", label.Container, err)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write labels: %w", err)
	}
	return nil
}

// qrPayload encodes the manifest, falling back to a short reference when the
// manifest is too large for a QR code.
func qrPayload(info LabelInfo) ([]byte, error) {
	data, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("marshal label info: %w", err)
	}

	png, err := qrcode.Encode(string(data), qrcode.Medium, 256)
	if err == nil {
		return png, nil
	}

	ref := fmt.Sprintf("run:%s/container:%d", info.RunID, info.Container)
	png, err = qrcode.Encode(ref, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("generate QR code: %w", err)
	}
	return png, nil
}

func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrPNG, err := qrPayload(info)
	if err != nil {
		return err
	}

	imgName := fmt.Sprintf("qr_%s_%d", info.RunID, info.Container)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 7, fmt.Sprintf("Container %d", info.Container), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(textX, y+labelPadding+8)
	pdf.CellFormat(textW, 4.5, truncate(pdf, info.Type, textW), "", 1, "L", false, 0, "")
	pdf.SetXY(textX, y+labelPadding+13)
	pdf.CellFormat(textW, 4.5, info.Dimensions, "", 1, "L", false, 0, "")
	pdf.SetXY(textX, y+labelPadding+18)
	pdf.CellFormat(textW, 4.5, fmt.Sprintf("Weight %s / %s kg", num(info.LoadedWeight), num(info.WeightCapacity)), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(100, 100, 100)
	lineY := y + labelPadding + 25
	names := lo.Keys(info.Contents)
	sort.Slice(names, func(i, j int) bool { return natural.Less(names[i], names[j]) })
	for _, name := range names {
		if lineY > y+labelHeight-labelPadding-3 {
			pdf.SetXY(textX, lineY)
			pdf.CellFormat(textW, 3, "...", "", 1, "L", false, 0, "")
			break
		}
		pdf.SetXY(textX, lineY)
		line := fmt.Sprintf("%d x %s", info.Contents[name], name)
		pdf.CellFormat(textW, 3, truncate(pdf, line, textW), "", 1, "L", false, 0, "")
		lineY += 3.5
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}

func truncate(pdf *fpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	for len(text) > 0 && pdf.GetStringWidth(text+"...") > width {
		text = text[:len(text)-1]
	}
	return text + "..."
}
