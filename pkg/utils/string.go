package utils

// Truncate shortens s to at most maxLen runes, appending "..." when cut.
// Counting runes keeps Telugu, Malayalam and other non-Latin answers valid
// UTF-8 after truncation.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
