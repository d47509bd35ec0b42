package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raywall/fast-mock-server/pkg/apperrors"
)

func list(t *testing.T, o *Orchestrator, name, query string) (Result, error) {
	t.Helper()
	params, err := url.ParseQuery(query)
	require.NoError(t, err)
	return o.List(name, params, "http://localhost:8080/"+name)
}

func TestOrchestrator_List(t *testing.T) {
	o, _ := newOrchestrator(t)

	cases := []struct {
		name  string
		query string
		want  []float64
	}{
		{"sem parâmetros", "", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"igualdade", "first_name=Jane", []float64{2, 5}},
		{"like em índice de array", "genre[0]_like=Science", []float64{1, 4, 7, 8}},
		{"filtros combinados", "genre=Science Fiction&price_lt=10", []float64{1, 4, 8}},
		{"valores alternativos", "id=2&id=9", []float64{2, 9}},
		{"data", "published.on_gte=1980-01-01", []float64{6, 7, 10}},
		{"array aninhado", "shiftTimetable[*][1]=13", []float64{2}},
		{"busca textual", "_q=jane", []float64{2, 5}},
		{"cel", "_where=item.price > 11.0", []float64{3, 10}},
		{"filtro e ordenação", "genre=Romance&_sort=title&_order=desc", []float64{5, 2}},
		{"filtro em coleção incorporada", "_embed=loans&loans.member=bia", []float64{1}},
		{"filtro em coleção expandida", "_expand=author&author.name_like=austen", []float64{2, 5}},
		{"nada encontrado", "title=Nope", []float64{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, err := list(t, o, "books", c.query)
			require.NoError(t, err)
			assert.Equal(t, c.want, ids(res.Items))
			assert.Equal(t, len(c.want), res.Total)
		})
	}
}

func TestOrchestrator_Pagination(t *testing.T) {
	o, _ := newOrchestrator(t)

	res, err := list(t, o, "books", "_page=2&_limit=4")
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 6, 7, 8}, ids(res.Items))
	assert.Equal(t, 10, res.Total)
	assert.Equal(t,
		`<http://localhost:8080/books?_page=1&_limit=4>; rel="first", `+
			`<http://localhost:8080/books?_page=1&_limit=4>; rel="prev", `+
			`<http://localhost:8080/books?_page=3&_limit=4>; rel="next", `+
			`<http://localhost:8080/books?_page=3&_limit=4>; rel="last"`,
		res.LinkHeader())

	_, err = list(t, o, "books", "_limit=4")
	require.Error(t, err)
	assert.Equal(t, apperrors.BadRequest, apperrors.KindOf(err))
	assert.Equal(t, "Pagination parameter _limit is without _page", err.Error())

	// as janelas de um mesmo filtro não se sobrepõem e cobrem o total
	var all []float64
	for _, p := range []string{"1", "2", "3"} {
		res, err := list(t, o, "books", "genre=Science Fiction&_page="+p+"&_limit=2")
		require.NoError(t, err)
		all = append(all, ids(res.Items)...)
		assert.Equal(t, 5, res.Total)
	}
	assert.Equal(t, []float64{1, 3, 4, 7, 8}, all)
}

func TestOrchestrator_FiltersAreIdempotent(t *testing.T) {
	o, _ := newOrchestrator(t)

	once, err := list(t, o, "books", "price_gte=9")
	require.NoError(t, err)
	twice, err := list(t, o, "books", "price_gte=9&price_gte=9")
	require.NoError(t, err)
	assert.Equal(t, ids(once.Items), ids(twice.Items))
}

func TestOrchestrator_Errors(t *testing.T) {
	o, _ := newOrchestrator(t)

	cases := []struct {
		name  string
		coll  string
		query string
		kind  apperrors.Kind
	}{
		{"coleção inexistente", "reviews", "", apperrors.NotFound},
		{"propriedade inexistente", "books", "isbn=1", apperrors.BadRequest},
		// o sufixo de first_name_like não é separado: a chave inteira é o caminho
		{"sublinhado no nome", "books", "first_name_like=an", apperrors.BadRequest},
		{"ordem em texto", "books", "title_gt=A", apperrors.BadRequest},
		{"número inválido", "books", "price_gt=cheap", apperrors.BadRequest},
		{"ordem em array", "books", "genre_gt=1", apperrors.BadRequest},
		{"order sem sort", "books", "_order=asc", apperrors.BadRequest},
		{"cel inválido", "books", "_where=item.price >", apperrors.BadRequest},
		{"embed inexistente", "books", "_embed=reviews", apperrors.BadRequest},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := list(t, o, c.coll, c.query)
			require.Error(t, err)
			assert.Equal(t, c.kind, apperrors.KindOf(err), err.Error())
		})
	}
}

func TestOrchestrator_Get(t *testing.T) {
	o, s := newOrchestrator(t)

	book, err := o.Get("books", "1", url.Values{"_embed": {"loans"}, "_expand": {"author"}})
	require.NoError(t, err)
	loans, ok := book["loans"].([]any)
	require.True(t, ok)
	assert.Len(t, loans, 2)
	assert.Equal(t, "Frank Herbert", book["author"].(map[string]any)["name"])

	stored, err := s.GetItem("books", "1")
	require.NoError(t, err)
	_, embedded := stored["loans"]
	assert.False(t, embedded, "Get não pode alterar o registro armazenado")

	_, err = o.Get("books", "99", nil)
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
	_, err = o.Get("books", "abc", nil)
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
}
