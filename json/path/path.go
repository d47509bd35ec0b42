package path

import (
	"fmt"
	"strconv"
	"strings"
)

// SegmentKind identifica o tipo de uma parte do caminho.
type SegmentKind int

const (
	SegmentField SegmentKind = iota
	SegmentIndex
	SegmentWildcard
)

// Segment é uma parte do caminho: um campo, um índice ou o curinga [*].
type Segment struct {
	Kind  SegmentKind
	Field string
	Index int
}

// Path é um caminho de propriedade já interpretado.
// Exemplos de caminhos válidos:
//   - "title" -> campo direto
//   - "published.year" -> navega em objetos aninhados
//   - "genre[0]" -> primeiro elemento do array
//   - "shiftTimetable[*][0]" -> primeiro elemento de cada item do array
type Path []Segment

// Parse converte uma string de caminho em segmentos estruturados.
func Parse(expr string) (Path, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("path: empty property path")
	}

	var (
		p     Path
		field strings.Builder
		// afterBracket indica que acabamos de fechar um "]" e o próximo
		// caractere precisa ser ".", "[" ou o fim da string
		afterBracket bool
	)

	flush := func() {
		if field.Len() > 0 {
			p = append(p, Segment{Kind: SegmentField, Field: field.String()})
			field.Reset()
		}
	}

	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch c {
		case '.':
			if field.Len() == 0 && !afterBracket {
				return nil, fmt.Errorf("path: empty segment in %q", expr)
			}
			flush()
			afterBracket = false
			if i == len(expr)-1 {
				return nil, fmt.Errorf("path: trailing dot in %q", expr)
			}
		case '[':
			if field.Len() == 0 && !afterBracket && len(p) == 0 {
				return nil, fmt.Errorf("path: %q must start with a property name", expr)
			}
			flush()
			end := strings.IndexByte(expr[i:], ']')
			if end == -1 {
				return nil, fmt.Errorf("path: unclosed bracket in %q", expr)
			}
			content := expr[i+1 : i+end]
			if content == "*" {
				p = append(p, Segment{Kind: SegmentWildcard})
			} else {
				idx, err := strconv.Atoi(content)
				if err != nil || idx < 0 {
					return nil, fmt.Errorf("path: invalid index %q in %q", content, expr)
				}
				p = append(p, Segment{Kind: SegmentIndex, Index: idx})
			}
			i += end
			afterBracket = true
		case ']':
			return nil, fmt.Errorf("path: unexpected ']' in %q", expr)
		default:
			if afterBracket {
				return nil, fmt.Errorf("path: expected '.' or '[' after ']' in %q", expr)
			}
			field.WriteByte(c)
		}
	}
	flush()
	return p, nil
}

// MustParse é similar ao Parse, mas panic em caso de erro.
func MustParse(expr string) Path {
	p, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String reconstrói a forma textual do caminho.
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		switch s.Kind {
		case SegmentField:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(s.Field)
		case SegmentIndex:
			b.WriteString("[" + strconv.Itoa(s.Index) + "]")
		case SegmentWildcard:
			b.WriteString("[*]")
		}
	}
	return b.String()
}

// Head devolve o primeiro campo do caminho.
func (p Path) Head() string {
	if len(p) == 0 || p[0].Kind != SegmentField {
		return ""
	}
	return p[0].Field
}

func (p Path) HasWildcard() bool {
	for _, s := range p {
		if s.Kind == SegmentWildcard {
			return true
		}
	}
	return false
}

// Lookup navega root seguindo o caminho. Quando há curinga, o resultado é um
// []any com os valores encontrados em cada elemento. ok é false se nada for
// encontrado.
func Lookup(root any, p Path) (any, bool) {
	if len(p) == 0 {
		return root, true
	}

	seg := p[0]
	rest := p[1:]
	switch seg.Kind {
	case SegmentField:
		m, ok := root.(map[string]any)
		if !ok {
			return nil, false
		}
		v, exists := m[seg.Field]
		if !exists {
			return nil, false
		}
		return Lookup(v, rest)

	case SegmentIndex:
		arr, ok := root.([]any)
		if !ok || seg.Index >= len(arr) {
			return nil, false
		}
		return Lookup(arr[seg.Index], rest)

	case SegmentWildcard:
		arr, ok := root.([]any)
		if !ok {
			return nil, false
		}
		nested := rest.HasWildcard()
		out := make([]any, 0, len(arr))
		for _, elem := range arr {
			v, found := Lookup(elem, rest)
			if !found {
				continue
			}
			// Curingas encadeados achatam o resultado em um único nível
			if inner, isArr := v.([]any); isArr && nested {
				out = append(out, inner...)
				continue
			}
			out = append(out, v)
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	}
	return nil, false
}

// Set grava v em root no caminho indicado, criando objetos e arrays
// intermediários. Curingas não são aceitos.
func Set(root map[string]any, p Path, v any) error {
	if len(p) == 0 || p[0].Kind != SegmentField {
		return fmt.Errorf("path: %q must start with a property name", p.String())
	}
	_, err := set(root, p, v, p)
	return err
}

func set(cur any, p Path, v any, full Path) (any, error) {
	if len(p) == 0 {
		return v, nil
	}

	seg := p[0]
	switch seg.Kind {
	case SegmentField:
		m, ok := cur.(map[string]any)
		if cur == nil {
			m, ok = make(map[string]any), true
		}
		if !ok {
			return nil, fmt.Errorf("path: conflicting types at %q", full.String())
		}
		child, err := set(m[seg.Field], p[1:], v, full)
		if err != nil {
			return nil, err
		}
		m[seg.Field] = child
		return m, nil

	case SegmentIndex:
		arr, ok := cur.([]any)
		if cur == nil {
			ok = true
		}
		if !ok {
			return nil, fmt.Errorf("path: conflicting types at %q", full.String())
		}
		for len(arr) <= seg.Index {
			arr = append(arr, nil)
		}
		child, err := set(arr[seg.Index], p[1:], v, full)
		if err != nil {
			return nil, err
		}
		arr[seg.Index] = child
		return arr, nil
	}
	return nil, fmt.Errorf("path: wildcard not allowed in %q", full.String())
}
