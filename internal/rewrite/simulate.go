package rewrite

import (
	"regexp"
	"strings"
)

const longerTail = "\n\nAdditionally, we should consider the implications for future projects and ensure alignment across teams."

type replacement struct {
	re   *regexp.Regexp
	with string
}

var casualSwaps = []replacement{
	{regexp.MustCompile(`(?i)regards`), "Cheers"},
	{regexp.MustCompile(`(?i)sincerely`), "Best"},
	{regexp.MustCompile(`(?i)following up`), "just checking in"},
}

var professionalSwaps = []replacement{
	{regexp.MustCompile(`(?i)\bhey\b`), "Dear Sir/Madam"},
	{regexp.MustCompile(`(?i)cheers`), "Sincerely"},
	{regexp.MustCompile(`(?i)just checking in`), "following up"},
}

// Simulate produces a deterministic stand-in rewrite without calling a
// model. It keeps the first half of the sentences for Shorter, appends a
// closing paragraph for Longer, and swaps a few stock phrases for the tone.
func Simulate(source string, tone Tone, length Length) string {
	text := source

	switch length {
	case Shorter:
		parts := strings.Split(text, ".")
		keep := max(1, len(parts)/2)
		text = strings.Join(parts[:keep], ".")
		if strings.Contains(source, ".") {
			text += "."
		}
	case Longer:
		text += longerTail
	}

	switch tone {
	case Casual:
		text = "Yo! " + applySwaps(text, casualSwaps)
	case Professional:
		text = "Esteemed Colleague,\n\n" + applySwaps(text, professionalSwaps)
	}

	return text
}

func applySwaps(s string, swaps []replacement) string {
	for _, r := range swaps {
		s = r.re.ReplaceAllString(s, r.with)
	}
	return s
}

// ParseInstruction recovers the tone and length an instruction was built
// for. It reports false when the text was not produced by Instruction.
func ParseInstruction(instruction string) (Tone, Length, bool) {
	tone, length := Neutral, Same
	var foundTone, foundLength bool
	for t, clause := range toneClauses {
		if strings.Contains(instruction, clause) {
			tone, foundTone = t, true
			break
		}
	}
	for l, clause := range lengthClauses {
		if strings.Contains(instruction, clause) {
			length, foundLength = l, true
			break
		}
	}
	return tone, length, foundTone && foundLength
}
