package rewrite

import "testing"

func TestPadSelect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		x, y       float64
		wantTone   Tone
		wantLength Length
	}{
		{"top left", 0, 0, Professional, Shorter},
		{"center", 50, 50, Neutral, Same},
		{"bottom right", 100, 100, Casual, Longer},
		{"just below low threshold", 33.29, 33.29, Professional, Shorter},
		{"at low threshold", 33.3, 33.3, Neutral, Same},
		{"at high threshold", 66.6, 66.6, Casual, Longer},
		{"clamped negative", -20, -5, Professional, Shorter},
		{"clamped large", 250, 400, Casual, Longer},
		{"mixed", 90, 10, Professional, Longer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tone, length := PadSelect(tt.x, tt.y)
			if tone != tt.wantTone || length != tt.wantLength {
				t.Errorf("PadSelect(%v, %v) = (%v, %v), want (%v, %v)",
					tt.x, tt.y, tone, length, tt.wantTone, tt.wantLength)
			}
		})
	}
}

func TestPadPositionRoundTrip(t *testing.T) {
	t.Parallel()

	for _, tone := range Tones() {
		for _, length := range Lengths() {
			x, y := PadPosition(tone, length)
			gotTone, gotLength := PadSelect(x, y)
			if gotTone != tone || gotLength != length {
				t.Errorf("PadSelect(PadPosition(%v, %v)) = (%v, %v)", tone, length, gotTone, gotLength)
			}
		}
	}

	if x, y := PadPosition(Professional, Shorter); x != 16.5 || y != 16.5 {
		t.Errorf("PadPosition(Professional, Shorter) = (%v, %v), want (16.5, 16.5)", x, y)
	}
}
