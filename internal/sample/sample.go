// Package sample provides a small demonstration data set of items and box types.
package sample

import "github.com/eugenenazirov/box-packer/internal/packing"

// Data bundles sample items with the container types to pack them into.
type Data struct {
	Items          []packing.Item          `json:"items" yaml:"items"`
	ContainerTypes []packing.ContainerType `json:"containerTypes" yaml:"container_types"`
}

// Items returns a fresh copy of the sample items.
func Items() []packing.Item {
	return []packing.Item{
		{Name: "Item1", Length: 10, Breadth: 5, Height: 3, Weight: 2},
		{Name: "Item2", Length: 8, Breadth: 4, Height: 2, Weight: 1},
		{Name: "Item3", Length: 6, Breadth: 6, Height: 4, Weight: 1.5},
		{Name: "Item4", Length: 4, Breadth: 4, Height: 4, Weight: 0.8},
		{Name: "Item5", Length: 12, Breadth: 3, Height: 2, Weight: 1.2},
		{Name: "Item6", Length: 7, Breadth: 3, Height: 5, Weight: 0.9},
	}
}

// ContainerTypes returns a fresh copy of the sample box catalog.
func ContainerTypes() []packing.ContainerType {
	return []packing.ContainerType{
		{Name: "SmallBox", Length: 12, Breadth: 8, Height: 6, WeightCapacity: 5},
		{Name: "MediumBox", Length: 15, Breadth: 10, Height: 8, WeightCapacity: 8},
		{Name: "LargeBox", Length: 20, Breadth: 15, Height: 12, WeightCapacity: 15},
	}
}

// Load returns the complete sample data set.
func Load() Data {
	return Data{Items: Items(), ContainerTypes: ContainerTypes()}
}
