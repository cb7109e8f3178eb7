package advisor

import (
	"strings"
	"unicode"

	"metals-pulse/internal/domain"
)

// ExtractMetals returns the metals named in text by id or ticker, in order of
// first mention and without duplicates.
func ExtractMetals(text string) []domain.Metal {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	seen := make(map[domain.Metal]bool)
	var result []domain.Metal
	for _, w := range words {
		if m, ok := domain.ParseMetal(w); ok && !seen[m] {
			seen[m] = true
			result = append(result, m)
		}
	}
	return result
}
