package wheel

// TotalWeight sums the item weights.
func TotalWeight(items []Item) int {
	total := 0
	for _, it := range items {
		total += it.Weight
	}
	return total
}

// Select picks an index with probability weight[i]/total using one draw from src.
// The scan returns the first index whose running sum reaches r, so a draw that
// lands exactly on a boundary belongs to the lower segment. If rounding leaves no
// match the last index is returned; a zero total returns 0.
func Select(items []Item, src Source) int {
	total := TotalWeight(items)
	if total <= 0 || len(items) == 0 {
		return 0
	}
	r := src.Float64() * float64(total)
	var cum float64
	for i, it := range items {
		cum += float64(it.Weight)
		if cum >= r {
			return i
		}
	}
	return len(items) - 1
}

// SegmentAngles returns each item's arc in degrees; they sum to 360.
func SegmentAngles(items []Item) []float64 {
	out := make([]float64, len(items))
	total := TotalWeight(items)
	if total <= 0 {
		return out
	}
	for i, it := range items {
		out[i] = 360 * float64(it.Weight) / float64(total)
	}
	return out
}

// TargetAngle is the wheel-local angle of the midpoint of segment index,
// measured clockwise from the pointer.
func TargetAngle(items []Item, index int) float64 {
	angles := SegmentAngles(items)
	if index < 0 || index >= len(angles) {
		return 0
	}
	var a float64
	for i := 0; i < index; i++ {
		a += angles[i]
	}
	return a + angles[index]/2
}
