package query

import (
	"sort"

	"github.com/raywall/fast-mock-server/json/path"
	"github.com/raywall/fast-mock-server/json/value"
	"github.com/raywall/fast-mock-server/pkg/apperrors"
)

// Sort ordena uma cópia de records pelo texto da propriedade key.
// A comparação é textual (não numérica) e estável. Sem key nada muda.
func Sort(records []map[string]any, key, order string) ([]map[string]any, error) {
	if key == "" {
		if order != "" {
			return nil, apperrors.BadRequestf("Sort parameter _order is without _sort")
		}
		return records, nil
	}

	desc := false
	switch order {
	case "", "asc":
	case "desc":
		desc = true
	default:
		return nil, apperrors.BadRequestf("Sort parameter _order must be asc or desc, got %s", order)
	}

	p, err := path.Parse(key)
	if err != nil {
		return nil, apperrors.BadRequestf("invalid sort property %s: %v", key, err)
	}

	keys := make([]string, len(records))
	for i, r := range records {
		v, ok := path.Lookup(r, p)
		if !ok {
			return nil, apperrors.BadRequestf("sort property %s is missing in some items", key)
		}
		keys[i] = value.Text(v)
	}

	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if desc {
			return keys[idx[a]] > keys[idx[b]]
		}
		return keys[idx[a]] < keys[idx[b]]
	})

	out := make([]map[string]any, len(records))
	for i, j := range idx {
		out[i] = records[j]
	}
	return out, nil
}
