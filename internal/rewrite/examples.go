package rewrite

import (
	"fmt"
	"strconv"
	"strings"
)

// Example is a canned text the user can load instead of typing.
type Example struct {
	Label string
	Text  string
}

var examples = []Example{
	{
		Label: "Follow-up Email",
		Text:  "Subject: Following Up: Project Alpha\n\nHi Team,\n\nJust wanted to gently follow up on the action items from our meeting last Tuesday regarding Project Alpha. Could you please provide an update on your progress by end of day tomorrow?\n\nLet me know if you're facing any blockers.\n\nBest regards,\nSarah",
	},
	{
		Label: "Meeting Request",
		Text:  "Subject: Meeting Request: Q4 Planning\n\nHello David,\n\nCould we schedule a brief 30-minute meeting sometime next week to discuss the initial planning for Q4 initiatives? Please let me know what time works best for you.\n\nThanks,\nMichael",
	},
	{
		Label: "Short Announcement",
		Text:  "Quick update: The new coffee machine has arrived and is now operational in the break room. Enjoy!",
	},
	{
		Label: "Thank You Note",
		Text:  "Hi Jennifer,\n\nThank you so much for your help with the presentation yesterday. Your insights were invaluable, and it really made a difference!\n\nBest,\nChris",
	},
}

// Examples returns the canned example texts.
func Examples() []Example {
	out := make([]Example, len(examples))
	copy(out, examples)
	return out
}

// LookupExample finds an example by 1-based index or case-insensitive label.
func LookupExample(key string) (Example, error) {
	key = strings.TrimSpace(key)
	if n, err := strconv.Atoi(key); err == nil {
		if n < 1 || n > len(examples) {
			return Example{}, fmt.Errorf("invalid example number: %d (choose 1-%d)", n, len(examples))
		}
		return examples[n-1], nil
	}
	for _, ex := range examples {
		if strings.EqualFold(ex.Label, key) {
			return ex, nil
		}
	}
	return Example{}, fmt.Errorf("example %q not found", key)
}

// Description is the human-facing blurb for a tone or length.
type Description struct {
	Text  string
	Emoji string
}

var toneDescriptions = map[Tone]Description{
	Professional: {Text: "Formal and strictly business. Suited to corporate communication.", Emoji: "🧐"},
	Neutral:      {Text: "Balanced communication, neither too formal nor too casual.", Emoji: "😐"},
	Casual:       {Text: "Relaxed and friendly, like chatting with a friend.", Emoji: "😎"},
}

var lengthDescriptions = map[Length]Description{
	Shorter: {Text: "Concise. Cuts the text down to the essentials.", Emoji: "🔍"},
	Same:    {Text: "Keeps roughly the same length as the original.", Emoji: "⚖️"},
	Longer:  {Text: "Expanded with extra detail and elaboration.", Emoji: "📚"},
}

// ToneDescription describes a tone.
func ToneDescription(t Tone) Description {
	return toneDescriptions[t]
}

// LengthDescription describes a length.
func LengthDescription(l Length) Description {
	return lengthDescriptions[l]
}

// SelectionLabel renders a selection the way status messages show it,
// e.g. "😎 Casual + 📚 Longer".
func SelectionLabel(t Tone, l Length) string {
	return fmt.Sprintf("%s %s + %s %s",
		ToneDescription(t).Emoji, t, LengthDescription(l).Emoji, l)
}
