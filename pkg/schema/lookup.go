package schema

import (
	"sort"

	"github.com/raywall/fast-mock-server/json/path"
	"github.com/raywall/fast-mock-server/pkg/apperrors"
	"github.com/raywall/fast-mock-server/pkg/inflect"
)

// TypeAndFormat resolve o tipo e o formato declarados para propertyPath.
//
// O caminho aceita segmentos com ponto e índices entre colchetes, inclusive
// o curinga "*". Quando o primeiro segmento nomeia outra coleção conhecida
// (no singular ou no plural), o restante é resolvido no schema dessa
// coleção, o que permite filtrar por campos incorporados com
// _embed/_expand; se o restante não existe lá, vale a coleção principal.
// Caminhos que terminam em arrays resolvem para o tipo dos elementos.
func TypeAndFormat(schemas map[string]*Schema, propertyPath, mainCollection string) (string, string, error) {
	p, err := path.Parse(propertyPath)
	if err != nil {
		return "", "", apperrors.BadRequestf("invalid property path %s: %v", propertyPath, err)
	}

	if _, leaf, ok := resolveRelated(schemas, p, mainCollection); ok {
		return leaf.Type, leaf.Format, nil
	}
	if leaf, ok := resolve(schemas[mainCollection], p); ok {
		return leaf.Type, leaf.Format, nil
	}
	return "", "", apperrors.BadRequestf("property %s does not exist in collection %s", propertyPath, mainCollection)
}

// RelatedCollection informa qual coleção conhecida é nomeada pelo primeiro
// segmento do caminho, seguindo a mesma regra de TypeAndFormat.
func RelatedCollection(schemas map[string]*Schema, propertyPath, mainCollection string) (string, bool) {
	p, err := path.Parse(propertyPath)
	if err != nil {
		return "", false
	}
	name, _, ok := resolveRelated(schemas, p, mainCollection)
	return name, ok
}

func resolveRelated(schemas map[string]*Schema, p path.Path, main string) (string, *Schema, bool) {
	related, ok := relatedCollection(schemas, p.Head(), main)
	if !ok {
		return "", nil, false
	}
	rest := p[1:]
	for len(rest) > 0 && rest[0].Kind != path.SegmentField {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return "", nil, false
	}
	leaf, ok := resolve(schemas[related], rest)
	if !ok {
		return "", nil, false
	}
	return related, leaf, true
}

func relatedCollection(schemas map[string]*Schema, head, main string) (string, bool) {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if name != main && inflect.Matches(head, name) {
			return name, true
		}
	}
	return "", false
}

// resolve desce pelo schema seguindo p e devolve a folha correspondente.
func resolve(s *Schema, p path.Path) (*Schema, bool) {
	cur := s
	for _, seg := range p {
		if cur == nil {
			return nil, false
		}
		switch seg.Kind {
		case path.SegmentField:
			next, ok := cur.Property(seg.Field)
			if !ok {
				return nil, false
			}
			cur = next
		default:
			if cur.Type != TypeArray || cur.Items == nil {
				return nil, false
			}
			cur = cur.Items
		}
	}
	for cur != nil && cur.Type == TypeArray {
		cur = cur.Items
	}
	if cur == nil || cur.Type == TypeObject {
		return nil, false
	}
	return cur, true
}
