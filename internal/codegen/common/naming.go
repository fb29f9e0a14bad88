package common

import "strings"

// ToSnakeCase converts CamelCase identifiers to snake_case.
// Acronyms stay together: "XMLParser" -> "xml_parser".
func ToSnakeCase(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if i > 0 && isUpper(r) {
			prevIsLower := isLower(runes[i-1]) || isDigit(runes[i-1])
			nextIsLower := i+1 < len(runes) && isLower(runes[i+1])
			if prevIsLower || (nextIsLower && isUpper(runes[i-1])) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
