package auth

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DisplayNameFromEmail turns "jane.doe@x" into "Jane doe".
func DisplayNameFromEmail(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	if local == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(local)
	rest := strings.NewReplacer(".", " ", "_", " ").Replace(local[size:])
	return string(unicode.ToUpper(first)) + rest
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
