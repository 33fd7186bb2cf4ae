package packing

// Selector picks the container type to open for an item that fits in none
// of the open containers.
type Selector interface {
	Select(item Item, types []ContainerType) (ContainerType, bool)
}

// Qualifies reports whether an empty container of type t could hold item:
// the item's weight is within capacity and some orientation fits.
func Qualifies(item Item, t ContainerType) bool {
	return item.Weight <= t.WeightCapacity && fitsType(item, t)
}

// FirstFit selects the first qualifying type in catalog order.
type FirstFit struct{}

// Select implements Selector.
func (FirstFit) Select(item Item, types []ContainerType) (ContainerType, bool) {
	for _, t := range types {
		if Qualifies(item, t) {
			return t, true
		}
	}
	return ContainerType{}, false
}

// BestFit selects the qualifying type that leaves the least empty volume
// around the item. Ties keep catalog order.
type BestFit struct{}

// Select implements Selector.
func (BestFit) Select(item Item, types []ContainerType) (ContainerType, bool) {
	var (
		best      ContainerType
		bestWaste float64
		found     bool
	)
	itemVolume := item.Volume()
	for _, t := range types {
		if !Qualifies(item, t) {
			continue
		}
		waste := t.Volume() - itemVolume
		if !found || waste < bestWaste {
			best, bestWaste, found = t, waste, true
		}
	}
	return best, found
}

func selectorFor(s Strategy) Selector {
	if s == StrategyBestFit {
		return BestFit{}
	}
	return FirstFit{}
}
