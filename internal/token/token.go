// Package token estimates token counts and sizes the output budget for a
// rewrite.
package token

import (
	"math"

	"github.com/zhubert/reword/internal/rewrite"
)

// Approximate tokens per character. BPE tokenizers average ~4 characters
// per token for English text; actual counts vary.
var charsPerToken = 4

// Count estimates the number of tokens in a string.
func Count(s string) int {
	if len(s) == 0 {
		return 0
	}
	return (len(s) + charsPerToken - 1) / charsPerToken
}

// Floor is the minimum output budget for any request.
const Floor = 256

// lengthFactor scales the estimated source size into an output budget.
var lengthFactor = map[rewrite.Length]float64{
	rewrite.Shorter: 1.0,
	rewrite.Same:    1.5,
	rewrite.Longer:  3.0,
}

// Budget returns max_tokens for rewriting source at the given length.
// A ceiling of zero or less means no cap.
func Budget(source string, length rewrite.Length, ceiling int) int {
	factor, ok := lengthFactor[length]
	if !ok {
		factor = lengthFactor[rewrite.Same]
	}
	n := Floor + int(math.Ceil(float64(Count(source))*factor))
	if ceiling > 0 && n > ceiling {
		return ceiling
	}
	return n
}
