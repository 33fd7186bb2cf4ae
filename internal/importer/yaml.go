package importer

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlEntry accepts both item and container type fields so one manifest
// layout serves either target.
type yamlEntry struct {
	Name           string  `yaml:"name"`
	Length         float64 `yaml:"length"`
	Breadth        float64 `yaml:"breadth"`
	Height         float64 `yaml:"height"`
	Weight         float64 `yaml:"weight"`
	WeightCapacity float64 `yaml:"weight_capacity"`
	Quantity       int     `yaml:"quantity"`
}

type yamlManifest struct {
	Items          []yamlEntry `yaml:"items"`
	ContainerTypes []yamlEntry `yaml:"container_types"`
}

// ParseYAML reads either a bare list of entries or a manifest document with
// items and container_types sections, taking the section matching target.
func ParseYAML(data []byte, target Target) Result {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Result{Errors: []string{fmt.Sprintf("Cannot parse YAML: %v", err)}}
	}
	if len(doc.Content) == 0 {
		return Result{Errors: []string{"File is empty"}}
	}

	var entries []yamlEntry
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&entries); err != nil {
			return Result{Errors: []string{fmt.Sprintf("Cannot parse YAML: %v", err)}}
		}
	case yaml.MappingNode:
		var manifest yamlManifest
		if err := root.Decode(&manifest); err != nil {
			return Result{Errors: []string{fmt.Sprintf("Cannot parse YAML: %v", err)}}
		}
		entries = manifest.Items
		if target == TargetContainerTypes {
			entries = manifest.ContainerTypes
		}
	default:
		return Result{Errors: []string{"YAML document must be a list or a manifest"}}
	}

	result := Result{}
	if len(entries) == 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("No %s found", target))
		return result
	}

	for i, entry := range entries {
		rowLabel := fmt.Sprintf("Entry %d", i+1)
		weight := entry.Weight
		if target == TargetContainerTypes && entry.WeightCapacity != 0 {
			weight = entry.WeightCapacity
		}
		rec := record{
			name:     entry.Name,
			length:   entry.Length,
			breadth:  entry.Breadth,
			height:   entry.Height,
			weight:   weight,
			quantity: entry.Quantity,
		}
		if errMsg := rec.check(rowLabel, target, result.Len()); errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		appendRecord(&result, rec, target, rowLabel)
	}

	return result
}
