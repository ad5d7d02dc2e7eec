package shifts

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const languageTag = "json"

// Sanitize strips the code-fence wrapping recognizers like to add around JSON.
// It does not check that the result parses.
func Sanitize(raw string) string {
	text := strings.ReplaceAll(raw, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	for hasLanguageTag(text) {
		text = strings.TrimSpace(text[len(languageTag):])
	}
	return text
}

// hasLanguageTag reports whether text opens with a bare "json" token, as left
// behind by fences like "``` json" or "```JSON".
func hasLanguageTag(text string) bool {
	if len(text) < len(languageTag) || !strings.EqualFold(text[:len(languageTag)], languageTag) {
		return false
	}
	rest := text[len(languageTag):]
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
}
