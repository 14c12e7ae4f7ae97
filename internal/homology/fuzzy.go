package homology

import "strings"

// FuzzyMatch reports whether two gene symbols name the same gene,
// tolerating the punctuation and casing differences between databases:
// "NF-YC6" and "NFYC6" match, as do "MTOR" and "Mtor". The comparison
// is symmetric.
func FuzzyMatch(a, b string) bool {
	return strings.EqualFold(stripHyphens(a), stripHyphens(b))
}

func stripHyphens(s string) string {
	return strings.ReplaceAll(s, "-", "")
}
