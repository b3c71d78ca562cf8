package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxKeyLength  = 120
	keyHashLength = 8
)

// SanitizeKey maps an arbitrary video name to a cache key that is safe as a
// single path segment. Accents are folded to ASCII, and anything outside
// [A-Za-z0-9._-] becomes an underscore. When the key differs from the input,
// a short SHA-256 suffix of the input is appended so distinct names keep
// distinct keys. The mapping is pure and deterministic.
func SanitizeKey(name string) string {
	if name == "" {
		return "unnamed-" + shortHash(name)
	}
	folded, _, err := transform.String(accentFolder(), name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	key := strings.TrimLeft(b.String(), ".")
	if len(key) > maxKeyLength {
		key = key[:maxKeyLength]
	}
	if key == name {
		return key
	}
	if key == "" {
		key = "unnamed"
	}
	return key + "-" + shortHash(name)
}

// HumanizeToken renders a snake_case token as a title, for example
// "discussion_guide" becomes "Discussion Guide".
func HumanizeToken(token string) string {
	words := strings.Fields(strings.ReplaceAll(strings.TrimSpace(token), "_", " "))
	if len(words) == 0 {
		return ""
	}
	return cases.Title(language.English).String(strings.Join(words, " "))
}

func accentFolder() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

func shortHash(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])[:keyHashLength]
}
