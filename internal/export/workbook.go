package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/eugenenazirov/box-packer/internal/storage"
)

// Sheet names of the exported workbook, in order.
const (
	SheetSummary    = "Summary"
	SheetContainers = "Containers"
	SheetPlacements = "Placements"
	SheetUnplaced   = "Unplaced"
)

// WriteWorkbook writes the run as an XLSX workbook with Summary, Containers,
// Placements and Unplaced sheets.
func WriteWorkbook(w io.Writer, run storage.Run) error {
	f, err := buildWorkbook(run)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func buildWorkbook(run storage.Run) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetContainers, SheetPlacements, SheetUnplaced} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	sheets := map[string][][]any{
		SheetSummary:    summaryRows(run),
		SheetContainers: containerRows(run),
		SheetPlacements: placementRows(run),
		SheetUnplaced:   unplacedRows(run),
	}
	for _, name := range []string{SheetSummary, SheetContainers, SheetPlacements, SheetUnplaced} {
		if err := writeRows(f, name, sheets[name], header); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	last, err := excelize.ColumnNumberToName(len(rows[0]))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 18)
}

func summaryRows(run storage.Run) [][]any {
	result := run.Result
	return [][]any{
		{"Field", "Value"},
		{"Run", run.ID},
		{"Algorithm", result.Label},
		{"Containers Used", result.ContainerCount},
		{"Overall Efficiency (%)", result.Efficiency},
		{"Items Packed", result.PlacedCount()},
		{"Items Unpacked", len(result.Unplaced)},
	}
}

func containerRows(run storage.Run) [][]any {
	rows := [][]any{{"Container", "Type", "Length", "Breadth", "Height", "Items", "Loaded Weight", "Weight Capacity", "Efficiency (%)"}}
	for _, c := range run.Result.Containers {
		rows = append(rows, []any{
			c.ID, c.Type.Name, c.Type.Length, c.Type.Breadth, c.Type.Height,
			len(c.Items), c.LoadedWeight(), c.WeightCapacity, c.Efficiency(),
		})
	}
	return rows
}

func placementRows(run storage.Run) [][]any {
	rows := [][]any{{"Container", "Item", "Orientation", "Length", "Breadth", "Height", "X", "Y", "Z", "Weight", "Color"}}
	for _, c := range run.Result.Containers {
		for _, p := range sortedPlacements(c) {
			rows = append(rows, []any{
				c.ID, p.Item.Name, p.Orientation, p.Length, p.Breadth, p.Height,
				p.X, p.Y, p.Z, p.Item.Weight, p.Color,
			})
		}
	}
	return rows
}

func unplacedRows(run storage.Run) [][]any {
	rows := [][]any{{"Item", "Length", "Breadth", "Height", "Weight", "Reason"}}
	for _, item := range run.Result.Unplaced {
		rows = append(rows, []any{item.Name, item.Length, item.Breadth, item.Height, item.Weight, unplacedHeading})
	}
	return rows
}
