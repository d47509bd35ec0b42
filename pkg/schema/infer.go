package schema

import (
	"sort"
	"strings"

	"github.com/raywall/fast-mock-server/json/value"
	"github.com/raywall/fast-mock-server/pkg/apperrors"
)

// Infer constrói o schema de uma coleção a partir dos próprios registros.
//
// Uma propriedade é obrigatória somente se aparece, com valor não nulo, em
// todas as amostras. O identificador nunca é obrigatório, já que é atribuído
// pelo servidor. Inteiros e números misturados viram number; qualquer outro
// conflito de tipos é InvalidSchema.
func Infer(records []map[string]any, identifierKey string) (*Schema, error) {
	samples := make([]any, len(records))
	var ids []any
	for i, r := range records {
		if _, ok := r[identifierKey]; identifierKey == "" || !ok {
			samples[i] = r
			continue
		}
		// o identificador é tipado à parte: inteiros e strings com inteiros
		// convivem na mesma coleção
		rest := make(map[string]any, len(r))
		for k, v := range r {
			if k == identifierKey {
				ids = append(ids, v)
				continue
			}
			rest[k] = v
		}
		samples[i] = rest
	}

	s, err := inferObject("", samples)
	if err != nil {
		return nil, err
	}
	s.Version = DefaultVersion
	if identifierKey != "" {
		idSchema := &Schema{Type: TypeInteger}
		if len(ids) > 0 {
			if idSchema, err = inferValue("/"+identifierKey, ids); err != nil || idSchema.Type != TypeInteger {
				idSchema = &Schema{}
			}
		}
		s.Properties[identifierKey] = idSchema
	}
	return s, nil
}

func inferValue(path string, samples []any) (*Schema, error) {
	kinds := map[string]struct{}{}
	nonNull := make([]any, 0, len(samples))
	for _, v := range samples {
		t := typeOf(v)
		if t == TypeNull {
			continue
		}
		kinds[t] = struct{}{}
		nonNull = append(nonNull, v)
	}

	_, hasInt := kinds[TypeInteger]
	_, hasNum := kinds[TypeNumber]
	if hasInt && hasNum {
		delete(kinds, TypeInteger)
	}

	// só nulls (ou nenhuma amostra): qualquer valor é aceito
	if len(kinds) == 0 {
		return &Schema{Nullable: true}, nil
	}
	if len(kinds) > 1 {
		names := make([]string, 0, len(kinds))
		for k := range kinds {
			names = append(names, k)
		}
		sort.Strings(names)
		return nil, apperrors.InvalidSchemaf("#%s: conflicting types %s", path, strings.Join(names, ", "))
	}

	var t string
	for k := range kinds {
		t = k
	}
	nullable := len(nonNull) < len(samples)

	switch t {
	case TypeObject:
		s, err := inferObject(path, nonNull)
		if err != nil {
			return nil, err
		}
		s.Nullable = nullable
		return s, nil
	case TypeArray:
		var elems []any
		for _, v := range nonNull {
			elems = append(elems, v.([]any)...)
		}
		items := &Schema{}
		if len(elems) > 0 {
			var err error
			if items, err = inferValue(path+"/items", elems); err != nil {
				return nil, err
			}
		}
		return &Schema{Type: TypeArray, Items: items, Nullable: nullable}, nil
	case TypeString:
		texts := make([]string, len(nonNull))
		for i, v := range nonNull {
			texts[i] = v.(string)
		}
		return &Schema{Type: TypeString, Format: detectFormat(texts), Nullable: nullable}, nil
	}
	return &Schema{Type: t, Nullable: nullable}, nil
}

func inferObject(path string, samples []any) (*Schema, error) {
	values := map[string][]any{}
	present := map[string]int{}
	var order []string

	for _, sample := range samples {
		obj, ok := sample.(map[string]any)
		if !ok {
			continue
		}
		for k, v := range obj {
			if _, seen := values[k]; !seen {
				order = append(order, k)
			}
			values[k] = append(values[k], v)
			if v != nil {
				present[k]++
			}
		}
	}
	sort.Strings(order)

	s := &Schema{
		Type:                 TypeObject,
		Properties:           make(map[string]*Schema, len(order)),
		AdditionalProperties: boolPtr(false),
	}
	for _, k := range order {
		child, err := inferValue(path+"/"+k, values[k])
		if err != nil {
			return nil, err
		}
		s.Properties[k] = child
		if present[k] == len(samples) {
			s.Required = append(s.Required, k)
		}
	}
	return s, nil
}

// typeOf devolve o tipo JSON Schema de um valor, separando integer de number.
func typeOf(v any) string {
	switch value.KindOf(v) {
	case value.KindNull:
		return TypeNull
	case value.KindBool:
		return TypeBoolean
	case value.KindNumber:
		if value.IsInteger(v) {
			return TypeInteger
		}
		return TypeNumber
	case value.KindString:
		return TypeString
	case value.KindArray:
		return TypeArray
	case value.KindObject:
		return TypeObject
	}
	return ""
}
