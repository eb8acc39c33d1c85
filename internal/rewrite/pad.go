package rewrite

// Pad thresholds, in percent of the pad's width or height.
const (
	padLow  = 33.3
	padHigh = 66.6
)

// Cell centers, in percent.
var padCenters = [...]float64{16.5, 50, 83.5}

// PadSelect maps a point on the tone/length pad to a selection. x runs left
// to right (Shorter to Longer) and y runs top to bottom (Professional to
// Casual). Both are percentages and are clamped to [0, 100].
func PadSelect(x, y float64) (Tone, Length) {
	x = clampPercent(x)
	y = clampPercent(y)

	var tone Tone
	switch {
	case y < padLow:
		tone = Professional
	case y < padHigh:
		tone = Neutral
	default:
		tone = Casual
	}

	var length Length
	switch {
	case x < padLow:
		length = Shorter
	case x < padHigh:
		length = Same
	default:
		length = Longer
	}

	return tone, length
}

// PadPosition returns the center of the pad cell for a selection.
func PadPosition(tone Tone, length Length) (x, y float64) {
	x = padCenters[length]
	// Professional sits at the top of the pad.
	y = padCenters[Professional-tone]
	return x, y
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
