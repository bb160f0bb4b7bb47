package tripdoc

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var symbolReplacer = strings.NewReplacer(
	"€", "EUR",
	"£", "GBP",
	"¥", "JPY",
	"₹", "INR",
	"–", "-",
	"—", "-",
	"‒", "-",
	"−", "-",
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
	"…", "...",
	"•", "*",
	"→", "->",
	"\u00a0", " ",
)

// outsideLatin1 matches runes the core PDF fonts cannot draw.
var outsideLatin1 = runes.Predicate(func(r rune) bool {
	_, ok := charmap.ISO8859_1.EncodeRune(r)
	return !ok
})

// Transliterate maps common symbols to ASCII stand-ins and drops anything
// left outside ISO-8859-1.
func Transliterate(s string) string {
	s = symbolReplacer.Replace(s)
	out, _, err := transform.String(runes.Remove(outsideLatin1), s)
	if err != nil {
		return s
	}
	return out
}

// decode replaces every valid %XX escape in s and leaves any other '%'
// untouched. Decoded bytes that are not UTF-8 become U+FFFD.
func decode(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return strings.ToValidUTF8(b.String(), "\uFFFD")
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	}
	return c - '0'
}

func clean(s string) string {
	return Transliterate(decode(s))
}
