package promptgen

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"unicode"
)

// Slugify converts free text into a filesystem-friendly slug: alphanumerics
// lowercased, everything else collapsed to single dashes. When the slug
// exceeds maxLen runes and addHash is set, it is truncated and suffixed with
// the first 8 hex chars of the text's SHA-1 so distinct long inputs stay
// distinct. Truncation counts runes, never splitting a multi-byte letter.
// maxLen <= 0 disables truncation.
func Slugify(text string, maxLen int, addHash bool) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteByte('-')
		}
	}
	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "scenario"
	}
	if runes := []rune(slug); maxLen > 0 && len(runes) > maxLen {
		if addHash {
			sum := sha1.Sum([]byte(text))
			digest := hex.EncodeToString(sum[:])[:8]
			headLen := maxLen - 1 - len(digest)
			if headLen < 10 {
				headLen = 10
			}
			if headLen > len(runes) {
				headLen = len(runes)
			}
			slug = strings.TrimRight(string(runes[:headLen]), "-") + "-" + digest
		} else {
			slug = strings.TrimRight(string(runes[:maxLen]), "-")
		}
	}
	return slug
}
