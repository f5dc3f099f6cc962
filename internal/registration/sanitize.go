package registration

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// SanitizeSerial cleans a user or file supplied serial number: invalid UTF-8
// and HTML tags are dropped, whitespace runs collapse to one space, the result
// is trimmed and NFC normalised. Case is preserved.
func SanitizeSerial(raw string) string {
	s := strings.ToValidUTF8(raw, "")
	s = tagPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return norm.NFC.String(s)
}
