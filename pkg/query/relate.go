package query

import (
	"strings"

	"github.com/raywall/fast-mock-server/json/value"
	"github.com/raywall/fast-mock-server/pkg/apperrors"
	"github.com/raywall/fast-mock-server/pkg/collection"
	"github.com/raywall/fast-mock-server/pkg/inflect"
	"github.com/raywall/fast-mock-server/pkg/schema"
)

// Source dá acesso às coleções e aos seus schemas.
type Source interface {
	Collection(name string) (*collection.Collection, error)
	Schemas() map[string]*schema.Schema
}

// ForeignKey devolve o nome da chave estrangeira que aponta para collection
// (books -> bookId).
func ForeignKey(collectionName string) string {
	return inflect.Singular(collectionName) + "Id"
}

// Embed anexa a cada item os registros das coleções filhas cujo
// <singular(main)>Id é igual ao identificador do item. Os itens precisam
// ser cópias: eles são alterados.
func Embed(src Source, main *collection.Collection, items []map[string]any, children []string) error {
	fk := ForeignKey(main.Name())
	for _, name := range children {
		child, err := src.Collection(name)
		if err != nil {
			return apperrors.BadRequestf("cannot embed %s: collection not found", name)
		}

		byParent := map[string][]map[string]any{}
		for _, r := range child.Records() {
			if v, ok := r[fk]; ok && v != nil {
				k := value.Text(v)
				byParent[k] = append(byParent[k], r)
			}
		}

		for _, item := range items {
			matches := byParent[value.Text(item[main.IdentifierKey()])]
			list := make([]any, len(matches))
			for i, m := range matches {
				list[i] = value.CloneObject(m)
			}
			item[name] = list
		}
	}
	return nil
}

// Expand anexa a cada item o registro pai referenciado por <nome>Id, sob o
// nome no singular. Itens sem a chave, ou apontando para um pai inexistente,
// ficam como estão.
func Expand(src Source, items []map[string]any, parents []string) error {
	for _, name := range parents {
		singular := inflect.Singular(name)
		parent, err := src.Collection(inflect.Plural(singular))
		if err != nil {
			if parent, err = src.Collection(name); err != nil {
				return apperrors.BadRequestf("cannot expand %s: collection not found", name)
			}
		}

		byID := make(map[string]map[string]any, parent.Len())
		for _, r := range parent.Records() {
			byID[value.Text(r[parent.IdentifierKey()])] = r
		}

		key := singular + "Id"
		for _, item := range items {
			v, ok := item[key]
			if !ok || v == nil {
				continue
			}
			if p, found := byID[value.Text(v)]; found {
				item[singular] = value.CloneObject(p)
			}
		}
	}
	return nil
}

// names junta os valores repetidos e separados por vírgula de um parâmetro.
func names(values []string) []string {
	var out []string
	for _, v := range values {
		for _, n := range strings.Split(v, ",") {
			if n = strings.TrimSpace(n); n != "" {
				out = append(out, n)
			}
		}
	}
	return out
}
