// Package invite holds the pure rules for invite codes: normalization, generation and usability.
package invite

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// Alphabet excludes characters that are easy to confuse (0/O, 1/I/L).
	Alphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	CodeLength = 8
)

var codeFormat = regexp.MustCompile(`^[A-Z0-9]{8}$`)

// Normalize makes lookups accent and case insensitive. It also drops the display separator and
// whitespace so "abcd-éfgh" and "ABCDEFGH" match the same record.
func Normalize(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, raw)
	if err != nil {
		stripped = raw
	}
	stripped = strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, stripped)
	return strings.ToUpper(strings.TrimSpace(stripped))
}

// ValidFormat reports whether a normalized code has the accepted shape.
func ValidFormat(code string) bool {
	return codeFormat.MatchString(code)
}

// Generate returns a random code drawn from Alphabet.
func Generate() (string, error) {
	size := big.NewInt(int64(len(Alphabet)))
	buf := make([]byte, CodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		buf[i] = Alphabet[n.Int64()]
	}
	return string(buf), nil
}

// Format splits a code into groups of four for display, e.g. ABCD-EFGH.
func Format(code string) string {
	if len(code) <= 4 {
		return code
	}
	var b strings.Builder
	for i, r := range code {
		if i > 0 && i%4 == 0 {
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String()
}
