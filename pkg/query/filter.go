// Package query implementa o pipeline de leitura das coleções: filtros,
// busca textual, expressões CEL, ordenação, paginação e relacionamentos.
package query

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/raywall/fast-mock-server/json/path"
	"github.com/raywall/fast-mock-server/json/value"
	"github.com/raywall/fast-mock-server/pkg/apperrors"
	"github.com/raywall/fast-mock-server/pkg/schema"
)

// Operator é o conjunto fechado de operadores de filtro.
type Operator int

const (
	OpEq Operator = iota
	OpNe
	OpLt
	OpGt
	OpLte
	OpGte
	OpLike
)

var operatorNames = map[string]Operator{
	"eq":   OpEq,
	"ne":   OpNe,
	"lt":   OpLt,
	"gt":   OpGt,
	"lte":  OpLte,
	"gte":  OpGte,
	"like": OpLike,
}

func (o Operator) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpNe:
		return "ne"
	case OpLt:
		return "lt"
	case OpGt:
		return "gt"
	case OpLte:
		return "lte"
	case OpGte:
		return "gte"
	case OpLike:
		return "like"
	}
	return "unknown"
}

// ordering informa se o operador compara por ordem.
func (o Operator) ordering() bool {
	switch o {
	case OpLt, OpGt, OpLte, OpGte:
		return true
	}
	return false
}

// Predicate é um filtro vindo da query string (<caminho>[_op]=<valor>).
type Predicate struct {
	Path     string
	Operator Operator
	Values   []string
}

// ParsePredicate separa a chave no primeiro "_". Se o sufixo for um
// operador conhecido (sem diferenciar maiúsculas) ele é usado; caso
// contrário a chave inteira é o caminho e o operador é eq.
func ParsePredicate(key string, values []string) Predicate {
	if i := strings.Index(key, "_"); i > 0 {
		if op, ok := operatorNames[strings.ToLower(key[i+1:])]; ok {
			return Predicate{Path: key[:i], Operator: op, Values: values}
		}
	}
	return Predicate{Path: key, Operator: OpEq, Values: values}
}

// Matcher é um Predicate compilado contra o tipo declarado da propriedade.
type Matcher struct {
	pred   Predicate
	path   path.Path
	typ    string
	format string
	// spread é o caminho alternativo para coleções embutidas (arrays):
	// loans.bookId também casa como loans[*].bookId
	spread path.Path

	numbers []float64
	times   []candidateTime
	folded  []string
}

type candidateTime struct {
	t        time.Time
	dateOnly bool
}

// Compile valida o caminho e os valores candidatos. Valores que não podem
// ser comparados com o tipo da propriedade resultam em BadRequest.
func Compile(pred Predicate, typ, format string) (*Matcher, error) {
	p, err := path.Parse(pred.Path)
	if err != nil {
		return nil, apperrors.BadRequestf("invalid property path %s: %v", pred.Path, err)
	}
	m := &Matcher{pred: pred, path: p, typ: typ, format: format}

	switch {
	case pred.Operator == OpLike:
		for _, v := range pred.Values {
			m.folded = append(m.folded, fold(v))
		}
	case pred.Operator.ordering():
		if err := m.compileOrdering(); err != nil {
			return nil, err
		}
	case isNumeric(typ):
		// eq/ne numéricos: "7" e "7.0" são o mesmo valor
		for _, v := range pred.Values {
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				m.numbers = append(m.numbers, f)
			} else {
				m.numbers = append(m.numbers, math.NaN()) // nunca é igual a nenhum número
			}
		}
	}
	return m, nil
}

// spreadHead permite que o primeiro segmento seja um array de objetos.
func (m *Matcher) spreadHead() {
	if len(m.path) < 2 || m.path[1].Kind != path.SegmentField {
		return
	}
	spread := make(path.Path, 0, len(m.path)+1)
	spread = append(spread, m.path[0], path.Segment{Kind: path.SegmentWildcard})
	m.spread = append(spread, m.path[1:]...)
}

func (m *Matcher) compileOrdering() error {
	switch {
	case isNumeric(m.typ) || m.typ == "":
		for _, v := range m.pred.Values {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return apperrors.BadRequestf("value %s of %s_%s is not a number", v, m.pred.Path, m.pred.Operator)
			}
			m.numbers = append(m.numbers, f)
		}
	case m.typ == schema.TypeString && (m.format == schema.FormatDate || m.format == schema.FormatDateTime):
		for _, v := range m.pred.Values {
			if d, ok := schema.ParseDate(v); ok {
				m.times = append(m.times, candidateTime{t: d, dateOnly: true})
				continue
			}
			if m.format == schema.FormatDateTime {
				if dt, ok := schema.ParseDateTime(v); ok {
					m.times = append(m.times, candidateTime{t: dt})
					continue
				}
			}
			return apperrors.BadRequestf("value %s of %s_%s is not a valid %s", v, m.pred.Path, m.pred.Operator, m.format)
		}
	default:
		return apperrors.BadRequestf("operator %s is not supported for %s of type %s", m.pred.Operator, m.pred.Path, m.typ)
	}
	return nil
}

// Match avalia o filtro para record. Propriedade ausente não casa.
// Vários valores candidatos são combinados com OU.
func (m *Matcher) Match(record map[string]any) (bool, error) {
	v, ok := path.Lookup(record, m.path)
	if !ok && m.spread != nil {
		v, ok = path.Lookup(record, m.spread)
	}
	if !ok {
		return false, nil
	}

	if arr, isArr := v.([]any); isArr {
		if m.pred.Operator.ordering() {
			return false, apperrors.BadRequestf("operator %s is not supported on array property %s", m.pred.Operator, m.pred.Path)
		}
		elems := flatten(arr)
		for i := range m.pred.Values {
			if m.pred.Operator == OpNe {
				// ne em arrays: nenhum elemento pode ser igual
				all := true
				for _, e := range elems {
					if m.equals(e, i) {
						all = false
						break
					}
				}
				if all {
					return true, nil
				}
				continue
			}
			for _, e := range elems {
				if m.matchScalar(e, i) {
					return true, nil
				}
			}
		}
		return false, nil
	}

	for i := range m.pred.Values {
		if m.matchScalar(v, i) {
			return true, nil
		}
	}
	return false, nil
}

func (m *Matcher) matchScalar(v any, i int) bool {
	switch m.pred.Operator {
	case OpEq:
		return m.equals(v, i)
	case OpNe:
		return !m.equals(v, i)
	case OpLike:
		return strings.Contains(fold(value.Text(v)), m.folded[i])
	case OpLt, OpGt, OpLte, OpGte:
		c, ok := m.compare(v, i)
		if !ok {
			return false
		}
		switch m.pred.Operator {
		case OpLt:
			return c < 0
		case OpGt:
			return c > 0
		case OpLte:
			return c <= 0
		case OpGte:
			return c >= 0
		}
	}
	return false
}

func (m *Matcher) equals(v any, i int) bool {
	if m.numbers != nil && !m.pred.Operator.ordering() {
		if f, ok := numberOf(v); ok {
			return f == m.numbers[i]
		}
	}
	return value.Text(v) == m.pred.Values[i]
}

// compare devolve o sinal de v comparado ao candidato i.
func (m *Matcher) compare(v any, i int) (int, bool) {
	if m.times != nil {
		s, ok := v.(string)
		if !ok {
			return 0, false
		}
		cand := m.times[i]
		var t time.Time
		if m.format == schema.FormatDate {
			t, ok = schema.ParseDate(s)
		} else {
			t, ok = schema.ParseDateTime(s)
		}
		if !ok {
			return 0, false
		}
		if cand.dateOnly {
			t = schema.TruncateDate(t)
		}
		return t.Compare(cand.t), true
	}

	f, ok := numberOf(v)
	if !ok {
		return 0, false
	}
	switch c := m.numbers[i]; {
	case f < c:
		return -1, true
	case f > c:
		return 1, true
	}
	return 0, true
}

// Apply aplica os matchers em sequência (E lógico), reduzindo o resultado.
func Apply(records []map[string]any, matchers []*Matcher) ([]map[string]any, error) {
	out := records
	for _, m := range matchers {
		next := make([]map[string]any, 0, len(out))
		for _, r := range out {
			ok, err := m.Match(r)
			if err != nil {
				return nil, err
			}
			if ok {
				next = append(next, r)
			}
		}
		out = next
	}
	return out, nil
}

func isNumeric(typ string) bool {
	return typ == schema.TypeNumber || typ == schema.TypeInteger
}

// numberOf aceita números JSON e textos numéricos.
func numberOf(v any) (float64, bool) {
	if f, err := value.AsNumber(v); err == nil {
		return f, true
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return 0, false
}

func flatten(arr []any) []any {
	out := make([]any, 0, len(arr))
	for _, e := range arr {
		if inner, ok := e.([]any); ok {
			out = append(out, flatten(inner)...)
			continue
		}
		out = append(out, e)
	}
	return out
}

// fold normaliza para comparação sem diferenciar maiúsculas.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
