package rewrite

import "strings"

const directive = "Rewrite the following text while preserving its core meaning."

const outputRule = "Return only the rewritten text without any additional commentary or formatting."

var toneClauses = map[Tone]string{
	Casual:       "Use a casual, relaxed and friendly tone, the way you would write to a close colleague.",
	Neutral:      "Use a neutral, balanced tone that is neither formal nor casual.",
	Professional: "Use a formal, professional tone suitable for business correspondence.",
}

var lengthClauses = map[Length]string{
	Shorter: "Make it shorter and more concise than the original, removing anything non-essential.",
	Same:    "Keep it approximately the same length as the original.",
	Longer:  "Make it longer than the original by expanding on the ideas with additional detail and elaboration.",
}

// Prompt is the provider-neutral form of a rewrite call: a system
// instruction and the user text to transform.
type Prompt struct {
	System string
	User   string
}

// Instruction returns the system instruction for a tone and length.
func Instruction(tone Tone, length Length) string {
	var b strings.Builder
	b.WriteString(directive)
	b.WriteString("\n")
	b.WriteString(toneClauses[tone])
	b.WriteString("\n")
	b.WriteString(lengthClauses[length])
	b.WriteString("\n")
	b.WriteString(outputRule)
	return b.String()
}

// BuildPrompt pairs the instruction for tone and length with the source text.
func BuildPrompt(source string, tone Tone, length Length) Prompt {
	return Prompt{
		System: Instruction(tone, length),
		User:   source,
	}
}

// NewPrompt builds the prompt for a request.
func NewPrompt(r Request) Prompt {
	return BuildPrompt(r.SourceText, r.Tone, r.Length)
}
