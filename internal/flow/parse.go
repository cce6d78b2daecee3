package flow

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Ananth-NQI/orderbot/internal/catalog"
)

// Keywords, compared after Normalize.
const (
	KeywordConfirm = "si"
	KeywordModify  = "modificar"
	KeywordCancel  = "cancelar"
)

var resetKeywords = map[string]bool{"hola": true, "inicio": true}

// Normalize trims, lower-cases and strips diacritics so "Sí" matches "si".
func Normalize(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// IsResetKeyword reports whether text restarts the dialog.
func IsResetKeyword(text string) bool {
	return resetKeywords[Normalize(text)]
}

// ParseContact splits "Name, Phone". Extra comma-separated fields are ignored.
func ParseContact(text string) (Contact, bool) {
	parts := strings.Split(text, ",")
	if len(parts) < 2 {
		return Contact{}, false
	}
	c := Contact{
		Name:  strings.TrimSpace(parts[0]),
		Phone: strings.TrimSpace(parts[1]),
	}
	if c.Name == "" || c.Phone == "" {
		return Contact{}, false
	}
	return c, true
}

// ParseProductIDs returns the catalog ids in a comma-separated answer, in
// order and with repeats kept, spelled as in the catalog. Unknown ids are
// dropped.
func ParseProductIDs(text string, cat *catalog.Catalog) []string {
	var ids []string
	for _, part := range strings.Split(text, ",") {
		if p, ok := cat.Lookup(part); ok {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// ParsePositive parses a strictly positive integer.
func ParsePositive(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ParseOrdinal parses a 1-based position into a list of size n and
// returns the 0-based index.
func ParseOrdinal(text string, n int) (int, bool) {
	i, ok := ParsePositive(text)
	if !ok || i > n {
		return 0, false
	}
	return i - 1, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
