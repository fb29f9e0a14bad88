package common

var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
}

// IsGoKeyword reports whether ident is reserved in Go.
func IsGoKeyword(ident string) bool { return goKeywords[ident] }

// cKeywords holds C11 keywords plus the stdbool macros the header includes.
var cKeywords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extern": true, "float": true, "for": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true, "sizeof": true,
	"static": true, "struct": true, "switch": true, "typedef": true, "union": true,
	"unsigned": true, "void": true, "volatile": true, "while": true,
	"_Alignas": true, "_Alignof": true, "_Atomic": true, "_Bool": true, "_Complex": true,
	"_Generic": true, "_Imaginary": true, "_Noreturn": true, "_Static_assert": true,
	"_Thread_local": true,
	"bool": true, "true": true, "false": true,
}

// IsCKeyword reports whether ident cannot name a C struct member or parameter.
func IsCKeyword(ident string) bool { return cKeywords[ident] }

// CIdent returns ident as spelled in the C header: reserved words get a
// trailing "_".
func CIdent(ident string) string {
	if cKeywords[ident] {
		return ident + "_"
	}
	return ident
}
