// Package importer reads item lists and container catalogs from CSV, Excel and
// YAML files. CSV delimiters are detected automatically and columns are mapped
// by case-insensitive header names, falling back to positional columns when a
// file has no header row. Problems are collected per row rather than aborting
// the whole import.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
	"go.uber.org/multierr"

	"github.com/eugenenazirov/box-packer/internal/packing"
)

// maxQuantity bounds how many items a single row may expand into.
const maxQuantity = 10000

// ErrUnsupportedFormat is returned for file extensions the importer cannot read.
var ErrUnsupportedFormat = errors.New("unsupported import format")

// Format identifies the encoding of an import source.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatYAML Format = "yaml"
)

// Target selects what a source is parsed into.
type Target int

const (
	TargetItems Target = iota
	TargetContainerTypes
)

func (t Target) String() string {
	if t == TargetContainerTypes {
		return "container types"
	}
	return "items"
}

// Result holds the outcome of an import.
type Result struct {
	Items          []packing.Item
	ContainerTypes []packing.ContainerType
	Errors         []string
	Warnings       []string
}

// Err combines the collected row errors into a single error, or nil.
func (r Result) Err() error {
	var err error
	for _, msg := range r.Errors {
		err = multierr.Append(err, errors.New(msg))
	}
	return err
}

// Len returns the number of imported records for the result's target.
func (r Result) Len() int {
	return len(r.Items) + len(r.ContainerTypes)
}

// FormatFor derives the import format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ImportItems reads the item list stored at path.
func ImportItems(path string) Result {
	return ImportFile(path, TargetItems)
}

// ImportContainerTypes reads the container catalog stored at path.
func ImportContainerTypes(path string) Result {
	return ImportFile(path, TargetContainerTypes)
}

// ImportFile reads path using the format implied by its extension.
func ImportFile(path string, target Target) Result {
	format, err := FormatFor(path)
	if err != nil {
		return Result{Errors: []string{err.Error()}}
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	defer f.Close()

	return Parse(f, format, target)
}

// Parse reads r in the given format.
func Parse(r io.Reader, format Format, target Target) Result {
	switch format {
	case FormatCSV:
		data, err := io.ReadAll(r)
		if err != nil {
			return Result{Errors: []string{fmt.Sprintf("Cannot read file: %v", err)}}
		}
		return ParseCSV(data, target)
	case FormatXLSX:
		return ParseExcel(r, target)
	case FormatYAML:
		data, err := io.ReadAll(r)
		if err != nil {
			return Result{Errors: []string{fmt.Sprintf("Cannot read file: %v", err)}}
		}
		return ParseYAML(data, target)
	default:
		return Result{Errors: []string{fmt.Sprintf("%v: %q", ErrUnsupportedFormat, format)}}
	}
}

// ParseCSV parses delimited text, detecting the delimiter first.
func ParseCSV(data []byte, target Target) Result {
	if len(bytes.TrimSpace(data)) == 0 {
		return Result{Errors: []string{"File is empty"}}
	}

	var warnings []string
	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}

	return importFromRows(records, "Line", target, warnings)
}

// ParseExcel reads the first sheet of an XLSX workbook.
func ParseExcel(r io.Reader, target Target) Result {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("Cannot open Excel file: %v", err)}}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Result{Errors: []string{"Excel file has no sheets"}}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("Cannot read Excel data: %v", err)}}
	}

	return importFromRows(rows, "Row", target, nil)
}

// DetectCSVDelimiter picks the candidate delimiter that splits the data into
// the most consistent multi-column rows.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// record is one parsed row before it becomes an item or container type.
type record struct {
	name     string
	length   float64
	breadth  float64
	height   float64
	weight   float64
	quantity int
}

func (r record) item() packing.Item {
	return packing.Item{Name: r.name, Length: r.length, Breadth: r.breadth, Height: r.height, Weight: r.weight}
}

func (r record) containerType() packing.ContainerType {
	return packing.ContainerType{Name: r.name, Length: r.length, Breadth: r.breadth, Height: r.height, WeightCapacity: r.weight}
}

// check validates a record and applies defaults. count is the number of
// records accepted so far and names unnamed rows.
func (r *record) check(rowLabel string, target Target, count int) string {
	if r.name == "" {
		if target == TargetContainerTypes {
			r.name = fmt.Sprintf("Box %d", count+1)
		} else {
			r.name = fmt.Sprintf("Item %d", count+1)
		}
	}
	if r.quantity == 0 {
		r.quantity = 1
	}

	if r.length <= 0 || r.breadth <= 0 || r.height <= 0 || r.weight <= 0 {
		return fmt.Sprintf("%s: Length, breadth, height and weight must be positive", rowLabel)
	}
	if r.quantity < 0 || r.quantity > maxQuantity {
		return fmt.Sprintf("%s: Quantity must be between 1 and %d", rowLabel, maxQuantity)
	}
	return ""
}

// appendRecord adds rec to result, expanding quantities for items.
func appendRecord(result *Result, rec record, target Target, rowLabel string) {
	if target == TargetContainerTypes {
		if rec.quantity > 1 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: Quantity ignored for container types", rowLabel))
		}
		result.ContainerTypes = append(result.ContainerTypes, rec.containerType())
		return
	}
	result.Items = append(result.Items, lo.Times(rec.quantity, func(int) packing.Item {
		return rec.item()
	})...)
}

// importFromRows is the shared tabular logic for CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, target Target, initialWarnings []string) Result {
	result := Result{Warnings: initialWarnings}

	if lo.EveryBy(rows, isEmptyRow) {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		if missing := mapping.missing(); len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 2 {
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		rec, errMsg := parseRow(row, mapping, rowLabel)
		if errMsg == "" {
			errMsg = rec.check(rowLabel, target, result.Len())
		}
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}

		appendRecord(&result, rec, target, rowLabel)
	}

	return result
}

// parseRow extracts a record from row using mapping.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (record, string) {
	rec := record{name: getCell(row, mapping.Name)}

	fields := []struct {
		name string
		idx  int
		dst  *float64
	}{
		{"length", mapping.Length, &rec.length},
		{"breadth", mapping.Breadth, &rec.breadth},
		{"height", mapping.Height, &rec.height},
		{"weight", mapping.Weight, &rec.weight},
	}
	for _, field := range fields {
		raw := getCell(row, field.idx)
		if raw == "" {
			return record{}, fmt.Sprintf("%s: Missing %s value", rowLabel, field.name)
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return record{}, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, field.name, raw)
		}
		*field.dst = value
	}

	if raw := getCell(row, mapping.Quantity); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return record{}, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, raw)
		}
		if qty <= 0 {
			return record{}, fmt.Sprintf("%s: Quantity must be between 1 and %d", rowLabel, maxQuantity)
		}
		rec.quantity = qty
	}

	return rec, ""
}

// getCell returns the trimmed cell at idx, or "" when idx is out of range.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
