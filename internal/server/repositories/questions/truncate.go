package questions

import "unicode/utf8"

const (
	// PreviewLength is the number of characters kept in activity previews.
	PreviewLength = 100
	previewSuffix = "..."
)

// Preview shortens text longer than PreviewLength characters to its first
// PreviewLength characters followed by "...".
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= PreviewLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:PreviewLength]) + previewSuffix
}
