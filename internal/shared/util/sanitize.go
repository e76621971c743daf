package util

import (
	"path"
	"strings"
	"unicode"
)

const maxFileNameRunes = 200

// SanitizeFileName reduces a client-supplied upload name to a printable base name
// safe for logs. Both slash styles are treated as separators.
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	if runes := []rune(name); len(runes) > maxFileNameRunes {
		name = string(runes[:maxFileNameRunes])
	}
	return name
}
