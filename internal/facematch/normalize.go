package facematch

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CleanDisplayName canonicalizes a driver name before it is stored:
// NFC composition, trimmed, inner whitespace collapsed to single spaces.
func CleanDisplayName(name string) string {
	return strings.Join(strings.Fields(norm.NFC.String(name)), " ")
}
