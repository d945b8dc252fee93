package codegen

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hashicorp/go-set/v2"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// IsIdentifier reports whether s can be used as a bare TypeScript identifier
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// splitWords splits s on every character that cannot appear in an identifier
func splitWords(s string, keepUnderscore bool) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		if r == '_' || r == '$' {
			return !keepUnderscore
		}
		return !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func prefixDigit(s string) string {
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		return "_" + s
	}
	return s
}

// PascalCase joins the words of s with each word capitalized: "pet store" -> "PetStore"
func PascalCase(s string) string {
	words := splitWords(s, false)
	for i, w := range words {
		words[i] = upperFirst(w)
	}
	return prefixDigit(strings.Join(words, ""))
}

// CamelCase is PascalCase with the first letter lowered: "User_list" -> "userList"
func CamelCase(s string) string {
	words := splitWords(s, false)
	for i, w := range words {
		if i == 0 {
			words[i] = lowerFirst(w)
		} else {
			words[i] = upperFirst(w)
		}
	}
	return prefixDigit(strings.Join(words, ""))
}

// SanitizeTypeName turns a definition name into a type identifier.
// "Api.Models.User" -> "ApiModelsUser"; a name that is already an identifier is kept.
func SanitizeTypeName(name string) string {
	if IsIdentifier(name) {
		return name
	}
	words := splitWords(name, true)
	if len(words) == 1 {
		return prefixDigit(words[0])
	}
	for i, w := range words {
		words[i] = upperFirst(w)
	}
	joined := strings.Join(words, "")
	if joined == "" {
		return "_"
	}
	return prefixDigit(joined)
}

// Quote renders s as a single quoted TypeScript string literal
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return "'" + r.Replace(s) + "'"
}

// PropertyKey renders a property name for a type literal or class body
func PropertyKey(name string) string {
	if IsIdentifier(name) {
		return name
	}
	return Quote(name)
}

// uniqueName returns base, or base with the first free numeric suffix starting at 2
func uniqueName(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}
	for i := 2; ; i++ {
		candidate := base + strconv.Itoa(i)
		if !taken[candidate] {
			return candidate
		}
	}
}

func sortedUnique(items []string) []string {
	unique := set.From[string](items)
	unique.Remove("")
	out := unique.Slice()
	sort.Strings(out)
	return out
}
