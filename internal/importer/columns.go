package importer

import (
	"strings"

	"github.com/samber/lo"
)

// ColumnMapping maps column roles to their indices in a row. -1 means absent.
type ColumnMapping struct {
	Name     int
	Length   int
	Breadth  int
	Height   int
	Weight   int
	Quantity int
}

// positionalMapping is used when a source has no recognisable header:
// Name, Length, Breadth, Height, Weight, Quantity.
var positionalMapping = ColumnMapping{Name: 0, Length: 1, Breadth: 2, Height: 3, Weight: 4, Quantity: 5}

// headerAliases maps column roles to their accepted lowercase header names.
var headerAliases = []struct {
	role    string
	aliases []string
}{
	{"name", []string{"name", "item", "label", "description", "type"}},
	{"length", []string{"length", "l", "len"}},
	{"breadth", []string{"breadth", "b", "width", "w"}},
	{"height", []string{"height", "h"}},
	{"weight", []string{"weight", "kg", "capacity", "weight capacity", "weight_capacity", "weightcapacity", "max weight"}},
	{"quantity", []string{"quantity", "qty", "count", "pcs"}},
}

// DetectColumns examines a header row and returns the column mapping. The
// boolean reports whether the row was recognised as a header; when it is not,
// the positional mapping is returned.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Name: -1, Length: -1, Breadth: -1, Height: -1, Weight: -1, Quantity: -1}
	slots := map[string]*int{
		"name":     &mapping.Name,
		"length":   &mapping.Length,
		"breadth":  &mapping.Breadth,
		"height":   &mapping.Height,
		"weight":   &mapping.Weight,
		"quantity": &mapping.Quantity,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for _, entry := range headerAliases {
			if !lo.Contains(entry.aliases, normalized) {
				continue
			}
			isHeader = true
			if slot := slots[entry.role]; *slot == -1 {
				*slot = i
			}
			break
		}
	}

	if !isHeader {
		return positionalMapping, false
	}
	return mapping, true
}

// missing lists the required roles a header mapping lacks.
func (m ColumnMapping) missing() []string {
	var out []string
	if m.Length == -1 {
		out = append(out, "Length")
	}
	if m.Breadth == -1 {
		out = append(out, "Breadth")
	}
	if m.Height == -1 {
		out = append(out, "Height")
	}
	if m.Weight == -1 {
		out = append(out, "Weight")
	}
	return out
}
