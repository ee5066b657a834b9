//internal/services/chat/context.go
package chat

import (
	"strings"
	"unicode/utf8"
)

const titleEllipsis = "…"

// TruncateText safely truncates a UTF-8 string to maxLen runes, preserving character integrity
func TruncateText(input string, maxLen int) string {
	if input == "" || maxLen <= 0 {
		return ""
	}

	if utf8.RuneCountInString(input) <= maxLen {
		return input
	}

	var b strings.Builder
	count := 0
	for _, r := range input {
		if count >= maxLen {
			break
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}

// DeriveTitle takes the first maxLen characters of the opening message and
// marks the cut with an ellipsis only when something was actually dropped.
func DeriveTitle(firstMessage string, maxLen int) string {
	title := TruncateText(firstMessage, maxLen)
	if utf8.RuneCountInString(firstMessage) > maxLen {
		title += titleEllipsis
	}
	return title
}
