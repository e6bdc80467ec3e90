package prompt

import "unicode/utf8"

// charsPerToken approximates the provider tokenizers for English text.
const charsPerToken = 4.0

// EstimateTokens returns an approximate token count for text.
func EstimateTokens(text string) int {
	return int(float64(utf8.RuneCountInString(text))/charsPerToken + 0.5)
}
