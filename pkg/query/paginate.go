package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/raywall/fast-mock-server/pkg/apperrors"
)

// Page é o resultado da paginação.
type Page struct {
	Items      []map[string]any
	Page       int
	Limit      int
	TotalPages int
	// Links segue o formato do cabeçalho Link (RFC 8288).
	Links []string
}

// LinkHeader junta os links no formato do cabeçalho HTTP.
func (p Page) LinkHeader() string {
	return strings.Join(p.Links, ", ")
}

// Paginate recorta records segundo _page e _limit. Sem _page nada é
// recortado; _limit sem _page é BadRequest. Páginas fora do intervalo
// devolvem janela vazia.
func Paginate(records []map[string]any, page, limit string, defaultLimit int, baseURL string, params url.Values) (Page, error) {
	if page == "" {
		if limit != "" {
			return Page{}, apperrors.BadRequestf("Pagination parameter _limit is without _page")
		}
		return Page{Items: records}, nil
	}

	p, err := strconv.Atoi(page)
	if err != nil || p < 1 {
		return Page{}, apperrors.BadRequestf("Pagination parameter _page must be a positive integer, got %s", page)
	}
	l := defaultLimit
	if limit != "" {
		if l, err = strconv.Atoi(limit); err != nil || l < 1 {
			return Page{}, apperrors.BadRequestf("Pagination parameter _limit must be a positive integer, got %s", limit)
		}
	}
	if l < 1 {
		l = 10
	}

	total := len(records)
	totalPages := total / l
	if total%l != 0 {
		totalPages++
	}

	// p e l vêm do cliente e podem estourar int.
	start, end := total, total
	if p-1 <= total/l {
		start = min((p-1)*l, total)
		end = start + min(l, total-start)
	}

	out := Page{Items: records[start:end], Page: p, Limit: l, TotalPages: totalPages}

	link := func(n int, rel string) string {
		q := url.Values{}
		for k, vs := range params {
			if k == "_page" || k == "_limit" {
				continue
			}
			q[k] = vs
		}
		prefix := q.Encode()
		if prefix != "" {
			prefix += "&"
		}
		return fmt.Sprintf(`<%s?%s_page=%d&_limit=%d>; rel="%s"`, baseURL, prefix, n, l, rel)
	}
	if p > 1 {
		out.Links = append(out.Links, link(1, "first"), link(p-1, "prev"))
	}
	if p < totalPages {
		out.Links = append(out.Links, link(p+1, "next"), link(totalPages, "last"))
	}
	return out, nil
}
