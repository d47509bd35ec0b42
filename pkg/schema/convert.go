package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/raywall/fast-mock-server/json/value"
	"github.com/raywall/fast-mock-server/pkg/apperrors"
)

// ConvertTypes converte os textos de record para os tipos declarados em s.
//
// Formatos tabulares (XML, CSV) entregam todos os valores como string e
// arrays de um único elemento como valor simples; aqui os primitivos são
// convertidos e valores simples de propriedades array são envolvidos num
// array de um elemento. Textos que não convertem são mantidos para que a
// validação os reporte. O registro original não é alterado.
func ConvertTypes(s *Schema, record map[string]any) (map[string]any, error) {
	out, err := convert(s, record, "")
	if err != nil {
		return nil, err
	}
	obj, _ := out.(map[string]any)
	return obj, nil
}

func convert(s *Schema, v any, path string) (any, error) {
	if s == nil || v == nil {
		return v, nil
	}

	switch s.Type {
	case TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return v, nil
		}
		if s.Properties == nil {
			return nil, structural(path, "properties")
		}
		out := make(map[string]any, len(obj))
		for k, pv := range obj {
			child, ok := s.Property(k)
			if !ok {
				out[k] = value.Clone(pv)
				continue
			}
			cv, err := convert(child, pv, path+"/"+k)
			if err != nil {
				return nil, err
			}
			out[k] = cv
		}
		return out, nil

	case TypeArray:
		if s.Items == nil {
			return nil, structural(path, "items")
		}
		arr, ok := v.([]any)
		if !ok {
			arr = []any{v}
		}
		out := make([]any, len(arr))
		for i, e := range arr {
			ce, err := convert(s.Items, e, path+"/"+strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
			out[i] = ce
		}
		return out, nil
	}

	text, ok := v.(string)
	if !ok {
		return v, nil
	}
	if s.Nullable && text == "" && s.Type != TypeString {
		return nil, nil
	}
	return convertText(s.Type, text), nil
}

func convertText(t, text string) any {
	trimmed := strings.TrimSpace(text)
	switch t {
	case TypeInteger:
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return float64(n)
		}
	case TypeNumber:
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
	case TypeBoolean:
		if b, err := strconv.ParseBool(trimmed); err == nil {
			return b
		}
	case TypeNull:
		if trimmed == "" || trimmed == "null" {
			return nil
		}
	}
	return text
}

func structural(path, field string) error {
	if path == "" {
		path = "/"
	}
	return apperrors.NewValidation("schema cannot convert item",
		[]string{fmt.Sprintf("#%s: schema has no %s", path, field)})
}
