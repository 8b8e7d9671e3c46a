package registry

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// FILE TYPE CLASSIFIER
// =============================================================================
// A file belongs to a document type when its normalized base name starts
// with the type key, or when every word of the key appears among the words
// of the name. Keys are tried longest first so "DESEMBOLSOS_FINANSUEÑOS"
// wins over a shorter key that shares a word with it.
//
// Normalization: base name up to the first '.', uppercased, spaces turned
// into '_', accents removed. Example:
//   "Desembolsos Finansueños junio.xlsx" -> "DESEMBOLSOS_FINANSUENOS_JUNIO"

// Classify returns the document type for a file name, or false when no key
// matches. A miss is not an error: the caller logs it and skips the file.
func (r *Registry) Classify(filename string) (*DocumentType, bool) {
	name := NormalizeName(filename)
	if name == "" {
		return nil, false
	}
	nameWords := wordSet(name)

	for _, dt := range r.matchOrder {
		key := NormalizeKey(dt.Key)
		if strings.HasPrefix(name, key) {
			return dt, true
		}
		if containsAll(nameWords, strings.Split(key, "_")) {
			return dt, true
		}
	}
	return nil, false
}

// NormalizeName reduces a file path to the form compared against keys.
func NormalizeName(filename string) string {
	base := filepath.Base(filename)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return NormalizeKey(base)
}

// NormalizeKey uppercases, folds accents and replaces spaces with '_'.
func NormalizeKey(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	return FoldAccents(s)
}

// FoldAccents strips combining marks: "CRÉDITO" -> "CREDITO", "Ñ" -> "N".
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func wordSet(name string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Split(name, "_") {
		if w != "" {
			words[w] = true
		}
	}
	return words
}

func containsAll(set map[string]bool, words []string) bool {
	found := false
	for _, w := range words {
		if w == "" {
			continue
		}
		if !set[w] {
			return false
		}
		found = true
	}
	return found
}
