package query

import (
	"strings"

	"github.com/raywall/fast-mock-server/json/value"
	"github.com/raywall/fast-mock-server/pkg/apperrors"
	"github.com/raywall/fast-mock-server/pkg/rules"
)

// Search mantém os registros em que algum valor primitivo, em qualquer
// nível, contém text (sem diferenciar maiúsculas).
func Search(records []map[string]any, text string) []map[string]any {
	if text == "" {
		return records
	}
	needle := fold(text)
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		if containsText(r, needle) {
			out = append(out, r)
		}
	}
	return out
}

func containsText(v any, needle string) bool {
	switch t := v.(type) {
	case map[string]any:
		for _, e := range t {
			if containsText(e, needle) {
				return true
			}
		}
		return false
	case []any:
		for _, e := range t {
			if containsText(e, needle) {
				return true
			}
		}
		return false
	case nil:
		return false
	}
	return strings.Contains(fold(value.Text(v)), needle)
}

// Where mantém os registros para os quais a expressão CEL é verdadeira.
func Where(rm *rules.RuleManager, collection string, records []map[string]any, expr string) ([]map[string]any, error) {
	if expr == "" {
		return records, nil
	}
	p, err := rm.Compile(expr)
	if err != nil {
		return nil, apperrors.BadRequestf("invalid _where expression: %v", err)
	}
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		ok, err := p.Match(collection, r)
		if err != nil {
			return nil, apperrors.BadRequestf("cannot evaluate _where expression: %v", err)
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}
