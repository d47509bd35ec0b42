// Package inflect converte nomes de coleções entre singular e plural.
//
// As regras cobrem os casos comuns do inglês usados em nomes de recursos
// REST (books/book, categories/category, addresses/address, people/person).
package inflect

import "strings"

var irregular = map[string]string{
	"person": "people",
	"child":  "children",
	"man":    "men",
	"woman":  "women",
	"mouse":  "mice",
	"goose":  "geese",
	"foot":   "feet",
	"tooth":  "teeth",
	"datum":  "data",
}

var irregularPlural = func() map[string]string {
	m := make(map[string]string, len(irregular))
	for s, p := range irregular {
		m[p] = s
	}
	return m
}()

// invariáveis
var uncountable = map[string]struct{}{
	"series":    {},
	"species":   {},
	"news":      {},
	"info":      {},
	"equipment": {},
	"sheep":     {},
	"fish":      {},
}

func isVowel(b byte) bool {
	return strings.IndexByte("aeiou", b) >= 0
}

// Plural devolve a forma plural de word. Palavras já no plural são mantidas.
func Plural(word string) string {
	if word == "" {
		return word
	}
	lower := strings.ToLower(word)
	if _, ok := uncountable[lower]; ok {
		return word
	}
	if p, ok := irregular[lower]; ok {
		return word[:1] + p[1:]
	}
	if _, ok := irregularPlural[lower]; ok {
		return word
	}

	n := len(lower)
	switch {
	case strings.HasSuffix(lower, "ss"),
		strings.HasSuffix(lower, "sh"),
		strings.HasSuffix(lower, "ch"),
		strings.HasSuffix(lower, "x"),
		strings.HasSuffix(lower, "z"):
		return word + "es"
	case strings.HasSuffix(lower, "s"):
		return word
	case n > 1 && lower[n-1] == 'y' && !isVowel(lower[n-2]):
		return word[:n-1] + "ies"
	case strings.HasSuffix(lower, "fe"):
		return word[:n-2] + "ves"
	case n > 1 && lower[n-1] == 'f' && lower[n-2] != 'f':
		return word[:n-1] + "ves"
	}
	return word + "s"
}

// Singular devolve a forma singular de word.
func Singular(word string) string {
	if word == "" {
		return word
	}
	lower := strings.ToLower(word)
	if _, ok := uncountable[lower]; ok {
		return word
	}
	if s, ok := irregularPlural[lower]; ok {
		return word[:1] + s[1:]
	}
	if _, ok := irregular[lower]; ok {
		return word
	}

	n := len(lower)
	switch {
	case strings.HasSuffix(lower, "ies") && n > 3:
		return word[:n-3] + "y"
	case strings.HasSuffix(lower, "ves") && n > 3:
		return word[:n-3] + "f"
	case strings.HasSuffix(lower, "sses"),
		strings.HasSuffix(lower, "shes"),
		strings.HasSuffix(lower, "ches"),
		strings.HasSuffix(lower, "xes"),
		strings.HasSuffix(lower, "zes"):
		return word[:n-2]
	case strings.HasSuffix(lower, "ss"), strings.HasSuffix(lower, "us"):
		return word
	case strings.HasSuffix(lower, "s") && n > 1:
		return word[:n-1]
	}
	return word
}

// Matches indica se name é a forma singular ou plural de collection.
func Matches(name, collection string) bool {
	if name == collection {
		return true
	}
	return Singular(name) == Singular(collection) || Plural(name) == collection
}
