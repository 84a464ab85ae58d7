package renderer

import "unicode/utf8"

// CharsPerToken is the approximation ratio used by EstimateTokens: roughly
// four characters per token of English text. The estimate is a cost signal,
// not a correctness input.
const CharsPerToken = 4

// EstimateTokens returns ceil(rune_count / CharsPerToken). Monotonic in
// input length and deterministic.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + CharsPerToken - 1) / CharsPerToken
}
