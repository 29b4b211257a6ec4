package conversation

import (
	"strings"
	"unicode"

	"chatbox-backend/internal/models"
)

const (
	maxTitleWords = 6
	fallbackTitle = "New Chat"
)

// isPlaceholderTitle reports whether the stored title was never chosen by anyone.
func isPlaceholderTitle(title string) bool {
	switch strings.TrimSpace(title) {
	case "", "Chat", models.DefaultChatTitle:
		return true
	}
	return false
}

// AutoTitle names a chat after its first user message: punctuation is
// stripped, at most six words are kept and each word is capitalized.
func AutoTitle(msgs []models.Message) string {
	var text string
	for _, m := range msgs {
		if m.Type == models.RoleUser {
			text = m.Text
			break
		}
	}

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' {
			return r
		}
		return -1
	}, text)

	words := strings.Fields(cleaned)
	if len(words) == 0 {
		return fallbackTitle
	}
	if len(words) > maxTitleWords {
		words = words[:maxTitleWords]
	}
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
