package rewrite

import (
	"strings"
	"testing"
)

func TestSimulate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		tone   Tone
		length Length
		want   string
	}{
		{
			name:   "neutral same is unchanged",
			source: "One. Two. Three.",
			tone:   Neutral,
			length: Same,
			want:   "One. Two. Three.",
		},
		{
			name:   "shorter keeps first half of sentences",
			source: "One. Two. Three.",
			tone:   Neutral,
			length: Shorter,
			want:   "One. Two.",
		},
		{
			name:   "shorter without periods keeps text",
			source: "no sentences here",
			tone:   Neutral,
			length: Shorter,
			want:   "no sentences here",
		},
		{
			name:   "longer appends a paragraph",
			source: "Hello.",
			tone:   Neutral,
			length: Longer,
			want:   "Hello." + longerTail,
		},
		{
			name:   "casual swaps phrases",
			source: "Following up on this. Regards, Sam",
			tone:   Casual,
			length: Same,
			want:   "Yo! just checking in on this. Cheers, Sam",
		},
		{
			name:   "professional swaps phrases",
			source: "Hey team, cheers",
			tone:   Professional,
			length: Same,
			want:   "Esteemed Colleague,\n\nDear Sir/Madam team, Sincerely",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Simulate(tt.source, tt.tone, tt.length); got != tt.want {
				t.Errorf("Simulate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseInstructionRoundTrip(t *testing.T) {
	t.Parallel()

	for _, tone := range Tones() {
		for _, length := range Lengths() {
			gotTone, gotLength, ok := ParseInstruction(Instruction(tone, length))
			if !ok {
				t.Errorf("ParseInstruction(%v, %v) not recognised", tone, length)
				continue
			}
			if gotTone != tone || gotLength != length {
				t.Errorf("ParseInstruction = (%v, %v), want (%v, %v)", gotTone, gotLength, tone, length)
			}
		}
	}

	if _, _, ok := ParseInstruction("Summarize this."); ok {
		t.Error("unrelated instruction should not be recognised")
	}
	if !strings.Contains(Instruction(Casual, Longer), "casual") {
		t.Error("sanity check on Instruction failed")
	}
}
