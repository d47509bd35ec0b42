package schema

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raywall/fast-mock-server/pkg/apperrors"
)

func decodeRecords(t *testing.T, raw string) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

const booksJSON = `[
	{"id": 1, "title": "Dune", "genre": ["Science Fiction", "Adventure"], "published": {"year": 1965, "on": "1965-08-01"}, "price": 10, "isbn": "111"},
	{"id": 2, "title": "Emma", "genre": ["Romance"], "published": {"year": 1815, "on": "1815-12-23"}, "price": 7.5},
	{"id": 3, "title": "Ubik", "genre": [], "published": {"year": 1969, "on": "1969-05-01"}, "price": 9, "isbn": null}
]`

func TestInfer_RequiredIsIntersection(t *testing.T) {
	records := decodeRecords(t, booksJSON)

	s, err := Infer(records, "id")
	require.NoError(t, err)

	assert.Equal(t, DefaultVersion, s.Version)
	assert.Equal(t, TypeObject, s.Type)
	assert.ElementsMatch(t, []string{"genre", "price", "published", "title"}, s.Required)
	assert.NotContains(t, s.Required, "id", "o identificador nunca é obrigatório")
	assert.NotContains(t, s.Required, "isbn")
	assert.False(t, s.AllowsAdditional())

	assert.Equal(t, TypeNumber, s.Properties["price"].Type, "integer + number deve alargar para number")
	assert.Equal(t, TypeInteger, s.Properties["id"].Type)
	assert.Equal(t, TypeArray, s.Properties["genre"].Type)
	assert.Equal(t, TypeString, s.Properties["genre"].Items.Type)
	assert.True(t, s.Properties["isbn"].Nullable)

	published := s.Properties["published"]
	assert.ElementsMatch(t, []string{"on", "year"}, published.Required)
	assert.Equal(t, FormatDate, published.Properties["on"].Format)
	assert.False(t, published.AllowsAdditional())
}

func TestInfer_RemovingSampleRestoresRequired(t *testing.T) {
	records := decodeRecords(t, `[
		{"id": 1, "title": "A", "subtitle": "x"},
		{"id": 2, "title": "B"}
	]`)

	s, err := Infer(records, "id")
	require.NoError(t, err)
	assert.NotContains(t, s.Required, "subtitle")

	s, err = Infer(records[:1], "id")
	require.NoError(t, err)
	assert.Contains(t, s.Required, "subtitle")
}

func TestInfer_NestedArrayOfObjects(t *testing.T) {
	records := decodeRecords(t, `[
		{"id": 1, "authors": [{"name": "A", "born": "1920-10-08T00:00:00Z"}, {"name": "B"}]}
	]`)

	s, err := Infer(records, "id")
	require.NoError(t, err)

	items := s.Properties["authors"].Items
	require.NotNil(t, items)
	assert.Equal(t, TypeObject, items.Type)
	assert.Equal(t, []string{"name"}, items.Required)
	assert.Equal(t, FormatDateTime, items.Properties["born"].Format)
}

func TestInfer_ConflictingTypes(t *testing.T) {
	records := decodeRecords(t, `[{"id": 1, "code": "A1"}, {"id": 2, "code": 7}]`)

	_, err := Infer(records, "id")
	require.Error(t, err)
	assert.Equal(t, apperrors.InvalidSchema, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "#/code")
}

func TestValidateItem_CollectsAllViolations(t *testing.T) {
	s, err := Infer(decodeRecords(t, booksJSON), "id")
	require.NoError(t, err)

	err = ValidateItem(s, map[string]any{
		"id":        float64(4),
		"genre":     []any{"ok", float64(3)},
		"published": map[string]any{"year": "1999", "on": "not-a-date"},
		"price":     float64(5),
		"extra":     true,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.Validation, apperrors.KindOf(err))

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.ElementsMatch(t, []string{
		"#/title: is required",
		"#/extra: additional property is not allowed",
		"#/genre/1: expected string, got integer",
		"#/published/year: expected integer, got string",
		`#/published/on: "not-a-date" is not a valid date`,
	}, appErr.Details)
}

func TestValidateCollection(t *testing.T) {
	records := decodeRecords(t, booksJSON)
	s, err := Infer(records, "id")
	require.NoError(t, err)

	assert.NoError(t, ValidateCollection(s, records))

	records[1]["title"] = float64(1)
	err = ValidateCollection(s, records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "#/1/title: expected string, got integer")
}

func TestTypeAndFormat(t *testing.T) {
	books, err := Infer(decodeRecords(t, booksJSON), "id")
	require.NoError(t, err)
	loans, err := Infer(decodeRecords(t, `[{"id": 1, "bookId": 1, "due": "2024-01-01T10:00:00Z"}]`), "id")
	require.NoError(t, err)
	schemas := map[string]*Schema{"books": books, "loans": loans}

	cases := []struct {
		path   string
		typ    string
		format string
	}{
		{"title", TypeString, ""},
		{"published.year", TypeInteger, ""},
		{"published.on", TypeString, FormatDate},
		{"genre", TypeString, ""},
		{"genre[0]", TypeString, ""},
		{"genre[*]", TypeString, ""},
		{"loans.bookId", TypeInteger, ""},
		{"loans[*].due", TypeString, FormatDateTime},
		{"loan.due", TypeString, FormatDateTime},
	}
	for _, c := range cases {
		typ, format, err := TypeAndFormat(schemas, c.path, "books")
		require.NoError(t, err, c.path)
		assert.Equal(t, c.typ, typ, c.path)
		assert.Equal(t, c.format, format, c.path)
	}

	for _, bad := range []string{"missing", "published", "published.year.x", "genre..x", "loans"} {
		_, _, err := TypeAndFormat(schemas, bad, "books")
		assert.Equal(t, apperrors.BadRequest, apperrors.KindOf(err), bad)
	}
}

func TestTypeAndFormat_NestedArrays(t *testing.T) {
	s, err := Infer(decodeRecords(t, `[{"id": 1, "shiftTimetable": [[8, 12], [13, 17]]}]`), "id")
	require.NoError(t, err)

	typ, _, err := TypeAndFormat(map[string]*Schema{"staff": s}, "shiftTimetable[*][0]", "staff")
	require.NoError(t, err)
	assert.Equal(t, TypeInteger, typ)
}

func TestTypeAndFormat_CollectionSharingPropertyName(t *testing.T) {
	books, err := Infer(decodeRecords(t, `[{"id": 1, "author": {"name": "Frank", "born": "1920", "nickname": "FH"}}]`), "id")
	require.NoError(t, err)
	authors, err := Infer(decodeRecords(t, `[{"id": 1, "name": "Frank", "born": 1920}]`), "id")
	require.NoError(t, err)
	schemas := map[string]*Schema{"books": books, "authors": authors}

	// a coleção nomeada pelo primeiro segmento tem precedência
	typ, _, err := TypeAndFormat(schemas, "author.born", "books")
	require.NoError(t, err)
	assert.Equal(t, TypeInteger, typ)
	name, ok := RelatedCollection(schemas, "author.born", "books")
	assert.True(t, ok)
	assert.Equal(t, "authors", name)

	// o que não existe na coleção relacionada cai na principal
	typ, _, err = TypeAndFormat(schemas, "author.nickname", "books")
	require.NoError(t, err)
	assert.Equal(t, TypeString, typ)
	_, ok = RelatedCollection(schemas, "author.nickname", "books")
	assert.False(t, ok)
}

func TestRelatedCollection(t *testing.T) {
	books, _ := Infer(decodeRecords(t, booksJSON), "id")
	loans, _ := Infer(decodeRecords(t, `[{"id": 1, "bookId": 1}]`), "id")
	schemas := map[string]*Schema{"books": books, "loans": loans}

	name, ok := RelatedCollection(schemas, "loans.bookId", "books")
	assert.True(t, ok)
	assert.Equal(t, "loans", name)

	_, ok = RelatedCollection(schemas, "title", "books")
	assert.False(t, ok)

	name, ok = RelatedCollection(schemas, "book.title", "loans")
	assert.True(t, ok)
	assert.Equal(t, "books", name)
}

func TestConvertTypes(t *testing.T) {
	s, err := Infer(decodeRecords(t, booksJSON), "id")
	require.NoError(t, err)

	in := map[string]any{
		"id":        "4",
		"title":     "Solaris",
		"genre":     "Science Fiction",
		"published": map[string]any{"year": "1961", "on": "1961-01-01"},
		"price":     "12.5",
		"isbn":      "",
	}
	out, err := ConvertTypes(s, in)
	require.NoError(t, err)

	assert.Equal(t, float64(4), out["id"])
	assert.Equal(t, []any{"Science Fiction"}, out["genre"])
	assert.Equal(t, float64(1961), out["published"].(map[string]any)["year"])
	assert.Equal(t, 12.5, out["price"])
	assert.Equal(t, "", out["isbn"], "string vazia não vira null")
	assert.Equal(t, "4", in["id"], "o registro de entrada não deve ser alterado")

	assert.NoError(t, ValidateItem(s, out))
}

func TestConvertTypes_KeepsUnconvertibleText(t *testing.T) {
	s, err := Infer(decodeRecords(t, booksJSON), "id")
	require.NoError(t, err)

	out, err := ConvertTypes(s, map[string]any{"price": "cheap"})
	require.NoError(t, err)
	assert.Equal(t, "cheap", out["price"])
}

func TestConvertTypes_StructurallyIncompleteSchema(t *testing.T) {
	s := &Schema{Type: TypeObject, Properties: map[string]*Schema{
		"tags": {Type: TypeArray},
		"meta": {Type: TypeObject},
	}}

	_, err := ConvertTypes(s, map[string]any{"tags": "a"})
	require.Error(t, err)
	assert.Equal(t, apperrors.Validation, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "#/tags: schema has no items")

	_, err = ConvertTypes(s, map[string]any{"meta": map[string]any{"a": "1"}})
	assert.Contains(t, err.Error(), "#/meta: schema has no properties")
}

func TestValidateVersion(t *testing.T) {
	assert.NoError(t, ValidateVersion(&Schema{Version: "http://json-schema.org/draft-07/schema#"}))
	assert.NoError(t, ValidateVersion(&Schema{Version: "https://json-schema.org/draft/2020-12/schema"}))

	err := ValidateVersion(&Schema{})
	assert.Equal(t, apperrors.InvalidSchema, apperrors.KindOf(err))

	err = ValidateVersion(&Schema{Version: "http://json-schema.org/draft-03/schema#"})
	assert.Equal(t, apperrors.InvalidSchema, apperrors.KindOf(err))
}

func TestDecodeDocument(t *testing.T) {
	doc := `{
		"authors": {
			"$schema": "http://json-schema.org/draft-07/schema#",
			"type": "object",
			"properties": {
				"id": {"type": "integer"},
				"nickname": {"type": ["string", "null"]}
			},
			"required": ["nickname"]
		}
	}`
	schemas, err := DecodeDocument([]byte(doc))
	require.NoError(t, err)

	nick := schemas["authors"].Properties["nickname"]
	assert.Equal(t, TypeString, nick.Type)
	assert.True(t, nick.Nullable)
	assert.NoError(t, ValidateItem(schemas["authors"], map[string]any{"id": float64(1), "nickname": nil}))

	out, err := json.Marshal(nick)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": ["string", "null"]}`, string(out))

	_, err = DecodeDocument([]byte(`{"x": {"type": "object"}}`))
	assert.Equal(t, apperrors.InvalidSchema, apperrors.KindOf(err))

	_, err = DecodeDocument([]byte(`{"x": {"$schema": "http://json-schema.org/draft-07/schema#", "type": "array"}}`))
	assert.Equal(t, apperrors.InvalidSchema, apperrors.KindOf(err))
}

func TestInfer_IdentifierToleratesIntegerStrings(t *testing.T) {
	records := decodeRecords(t, `[{"id": 1, "title": "A"}, {"id": "2", "title": "B"}]`)

	s, err := Infer(records, "id")
	require.NoError(t, err)
	assert.Empty(t, s.Properties["id"].Type)
	assert.NoError(t, ValidateItem(s, map[string]any{"id": float64(3), "title": "C"}))

	s, err = Infer(nil, "id")
	require.NoError(t, err)
	assert.Equal(t, TypeInteger, s.Properties["id"].Type)
	assert.Empty(t, s.Required)
}
