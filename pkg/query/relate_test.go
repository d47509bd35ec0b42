package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raywall/fast-mock-server/pkg/apperrors"
)

func TestForeignKey(t *testing.T) {
	assert.Equal(t, "bookId", ForeignKey("books"))
	assert.Equal(t, "personId", ForeignKey("people"))
	assert.Equal(t, "categoryId", ForeignKey("categories"))
}

func TestEmbed(t *testing.T) {
	s := libraryStore(t)
	books, err := s.Collection("books")
	require.NoError(t, err)

	items := cloneAll(books.Records()[:3])
	require.NoError(t, Embed(s, books, items, []string{"loans"}))

	loans := items[0]["loans"].([]any)
	require.Len(t, loans, 2)
	assert.Equal(t, "ana", loans[0].(map[string]any)["member"])
	assert.Len(t, items[1]["loans"], 1)
	assert.Equal(t, []any{}, items[2]["loans"], "sem filhos vira array vazio")

	_, stillClean := books.Records()[0]["loans"]
	assert.False(t, stillClean, "os registros armazenados não podem ser alterados")

	err = Embed(s, books, items, []string{"reviews"})
	assert.Equal(t, apperrors.BadRequest, apperrors.KindOf(err))
}

func TestExpand(t *testing.T) {
	s := libraryStore(t)
	loans, err := s.Collection("loans")
	require.NoError(t, err)

	items := cloneAll(loans.Records())
	require.NoError(t, Expand(s, items, []string{"book"}))
	assert.Equal(t, "Dune", items[0]["book"].(map[string]any)["title"])
	assert.Equal(t, "Emma", items[2]["book"].(map[string]any)["title"])

	books, _ := s.GetItems("books")
	items = cloneAll(books)
	require.NoError(t, Expand(s, items, []string{"author"}))
	assert.Equal(t, "Frank Herbert", items[0]["author"].(map[string]any)["name"])
	_, ok := items[2]["author"]
	assert.False(t, ok, "pai inexistente é ignorado")

	err = Expand(s, items, []string{"publisher"})
	assert.Equal(t, apperrors.BadRequest, apperrors.KindOf(err))
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"loans", "authors", "reviews"}, names([]string{"loans, authors", "", "reviews"}))
	assert.Nil(t, names(nil))
}
