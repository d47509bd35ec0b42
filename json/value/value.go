// Package value modela os valores JSON dinâmicos usados pelo servidor como um
// conjunto fechado de variantes (null, bool, number, string, array, object).
//
// Os registros circulam como map[string]any, exatamente como o decoder JSON
// os produz. Este pacote centraliza a classificação desses valores e oferece
// acessores que falham em vez de converter silenciosamente.
package value

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	json "github.com/goccy/go-json"
)

// Kind identifica a variante de um valor JSON.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// KindOf classifica v. Inteiros Go e json.Number contam como number.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindArray
	case map[string]any:
		return KindObject
	default:
		return KindUnknown
	}
}

// IsPrimitive informa se v é null, bool, number ou string.
func IsPrimitive(v any) bool {
	k := KindOf(v)
	return k != KindArray && k != KindObject && k != KindUnknown
}

// KindError é retornado quando um acessor recebe a variante errada.
type KindError struct {
	Want Kind
	Got  Kind
}

func (e *KindError) Error() string {
	return fmt.Sprintf("value: expected %s, got %s", e.Want, e.Got)
}

func AsObject(v any) (map[string]any, error) {
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	return nil, &KindError{Want: KindObject, Got: KindOf(v)}
}

func AsArray(v any) ([]any, error) {
	if a, ok := v.([]any); ok {
		return a, nil
	}
	return nil, &KindError{Want: KindArray, Got: KindOf(v)}
}

func AsString(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", &KindError{Want: KindString, Got: KindOf(v)}
}

func AsBool(v any) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return false, &KindError{Want: KindBool, Got: KindOf(v)}
}

// AsNumber devolve o valor numérico de v como float64.
func AsNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	}
	return 0, &KindError{Want: KindNumber, Got: KindOf(v)}
}

// IsInteger informa se v é um number sem parte fracionária.
func IsInteger(v any) bool {
	f, err := AsNumber(v)
	if err != nil {
		return false
	}
	return f == math.Trunc(f) && !math.IsInf(f, 0)
}

// Text devolve a representação textual de um primitivo, a mesma usada em
// comparações por conteúdo e nos formatos tabulares. Números inteiros não
// carregam ".0".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	}
	if f, err := AsNumber(v); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// Clone copia v em profundidade. Mapas e slices nunca são compartilhados.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneObject(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	default:
		return v
	}
}

func CloneObject(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, e := range m {
		out[k] = Clone(e)
	}
	return out
}

// Equal compara dois valores JSON estruturalmente, tratando todas as
// representações numéricas como float64.
func Equal(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case KindNumber:
		fa, _ := AsNumber(a)
		fb, _ := AsNumber(b)
		return fa == fb
	case KindArray:
		aa, bb := a.([]any), b.([]any)
		if len(aa) != len(bb) {
			return false
		}
		for i := range aa {
			if !Equal(aa[i], bb[i]) {
				return false
			}
		}
		return true
	case KindObject:
		ma, mb := a.(map[string]any), b.(map[string]any)
		if len(ma) != len(mb) {
			return false
		}
		for k, va := range ma {
			vb, ok := mb[k]
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}
