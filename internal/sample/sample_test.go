package sample

import (
	"testing"

	"github.com/eugenenazirov/box-packer/internal/packing"
	"github.com/eugenenazirov/box-packer/internal/validation"
)

func TestSampleDataIsValid(t *testing.T) {
	data := Load()
	if err := validation.Request(data.Items, data.ContainerTypes); err != nil {
		t.Fatalf("sample data failed validation: %v", err)
	}
}

func TestSampleDataPacksCompletely(t *testing.T) {
	data := Load()
	result, err := packing.NewEngine().Run(data.Items, data.ContainerTypes, packing.StrategyAuto)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Unplaced) != 0 {
		t.Fatalf("expected every sample item to be packed, got %d unplaced", len(result.Unplaced))
	}
	if result.PlacedCount() != len(data.Items) {
		t.Fatalf("expected %d placed items, got %d", len(data.Items), result.PlacedCount())
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	items := Items()
	items[0].Name = "changed"
	if Items()[0].Name != "Item1" {
		t.Fatalf("expected a fresh copy on every call")
	}
}
