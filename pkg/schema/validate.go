package schema

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/raywall/fast-mock-server/pkg/apperrors"
)

// ValidateItem verifica um registro contra o schema e devolve um único
// ValidationError com todas as violações encontradas.
func ValidateItem(s *Schema, item map[string]any) error {
	var violations []string
	validate(s, item, "", &violations)
	if len(violations) > 0 {
		return apperrors.NewValidation("item does not match schema", violations)
	}
	return nil
}

// ValidateCollection verifica todos os registros, prefixando cada violação
// com a posição do registro na coleção.
func ValidateCollection(s *Schema, items []map[string]any) error {
	var violations []string
	for i, item := range items {
		validate(s, item, "/"+strconv.Itoa(i), &violations)
	}
	if len(violations) > 0 {
		return apperrors.NewValidation("collection does not match schema", violations)
	}
	return nil
}

func validate(s *Schema, v any, path string, out *[]string) {
	if s == nil {
		return
	}
	report := func(format string, args ...any) {
		*out = append(*out, fmt.Sprintf("#%s: %s", path, fmt.Sprintf(format, args...)))
	}

	if v == nil {
		if s.Type != "" && s.Type != TypeNull && !s.Nullable {
			report("expected %s, got null", s.Type)
		}
		return
	}

	got := typeOf(v)
	if s.Type != "" && !compatible(s.Type, got) {
		report("expected %s, got %s", s.Type, displayType(got))
		return
	}

	switch got {
	case TypeObject:
		obj := v.(map[string]any)
		for _, name := range s.Required {
			if pv, ok := obj[name]; !ok || (pv == nil && !nullableProperty(s, name)) {
				*out = append(*out, fmt.Sprintf("#%s/%s: is required", path, name))
			}
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child, ok := s.Property(k)
			if !ok {
				if !s.AllowsAdditional() {
					*out = append(*out, fmt.Sprintf("#%s/%s: additional property is not allowed", path, k))
				}
				continue
			}
			if _, required := indexOf(s.Required, k); required && obj[k] == nil && !child.Nullable {
				continue // já reportado como obrigatório
			}
			validate(child, obj[k], path+"/"+k, out)
		}
	case TypeArray:
		for i, e := range v.([]any) {
			validate(s.Items, e, path+"/"+strconv.Itoa(i), out)
		}
	case TypeString:
		if s.Format != "" && !validFormat(s.Format, v.(string)) {
			report("%q is not a valid %s", v, s.Format)
		}
	}
}

func compatible(want, got string) bool {
	if want == got {
		return true
	}
	return want == TypeNumber && got == TypeInteger
}

func displayType(t string) string {
	if t == "" {
		return "unknown"
	}
	return t
}

func nullableProperty(s *Schema, name string) bool {
	p, ok := s.Property(name)
	return ok && (p.Nullable || p.Type == TypeNull)
}

func indexOf(list []string, s string) (int, bool) {
	for i, e := range list {
		if e == s {
			return i, true
		}
	}
	return -1, false
}
