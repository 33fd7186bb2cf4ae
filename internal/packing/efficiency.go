package packing

import "github.com/samber/lo"

// Efficiency returns the placed item volume as a percentage of the volume of
// the given containers, or 0 when there are none.
func Efficiency(containers []*Container) float64 {
	containerVolume := lo.SumBy(containers, func(c *Container) float64 { return c.Volume() })
	if containerVolume <= 0 {
		return 0
	}
	itemVolume := lo.SumBy(containers, func(c *Container) float64 { return c.ItemVolume() })
	return itemVolume / containerVolume * 100
}
