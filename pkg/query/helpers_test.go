package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raywall/fast-mock-server/pkg/collection"
	"github.com/raywall/fast-mock-server/pkg/rules"
	"github.com/raywall/fast-mock-server/pkg/store"
)

const libraryDB = `{
	"books": [
		{"id": 1, "title": "Dune", "genre": ["Science Fiction", "Adventure"], "published": {"year": 1965, "on": "1965-08-01"}, "price": 9.5, "first_name": "Frank", "authorId": 1, "shiftTimetable": [[8, 12], [13, 17]]},
		{"id": 2, "title": "Emma", "genre": ["Romance"], "published": {"year": 1815, "on": "1815-12-23"}, "price": 7, "first_name": "Jane", "authorId": 2, "shiftTimetable": [[9, 13]]},
		{"id": 3, "title": "Foundation", "genre": ["Fiction", "Science Fiction"], "published": {"year": 1951, "on": "1951-06-01"}, "price": 12, "first_name": "Isaac", "authorId": 3, "shiftTimetable": []},
		{"id": 4, "title": "Ubik", "genre": ["Science Fiction"], "published": {"year": 1969, "on": "1969-05-01"}, "price": 8, "first_name": "Philip", "authorId": 4, "shiftTimetable": []},
		{"id": 5, "title": "Persuasion", "genre": ["Romance"], "published": {"year": 1817, "on": "1817-12-20"}, "price": 6.5, "first_name": "Jane", "authorId": 2, "shiftTimetable": []},
		{"id": 6, "title": "Neuromancer", "genre": ["Cyberpunk"], "published": {"year": 1984, "on": "1984-07-01"}, "price": 11, "first_name": "William", "authorId": 5, "shiftTimetable": []},
		{"id": 7, "title": "Hyperion", "genre": ["Science Fiction"], "published": {"year": 1989, "on": "1989-05-26"}, "price": 10, "first_name": "Dan", "authorId": 6, "shiftTimetable": []},
		{"id": 8, "title": "Solaris", "genre": ["Science Fiction"], "published": {"year": 1961, "on": "1961-01-01"}, "price": 9, "first_name": "Stanislaw", "authorId": 7, "shiftTimetable": []},
		{"id": 9, "title": "Kindred", "genre": ["Fantasy"], "published": {"year": 1979, "on": "1979-06-01"}, "price": 8.5, "first_name": "Octavia", "authorId": 8, "shiftTimetable": []},
		{"id": 10, "title": "Beloved", "genre": ["Historical"], "published": {"year": 1987, "on": "1987-09-01"}, "price": 13, "first_name": "Toni", "authorId": 9, "shiftTimetable": []}
	],
	"loans": [
		{"id": 1, "bookId": 1, "member": "ana", "due": "2024-03-01T10:00:00Z"},
		{"id": 2, "bookId": 1, "member": "bia", "due": "2024-03-05T18:30:00Z"},
		{"id": 3, "bookId": 2, "member": "caio", "due": "2024-03-01T23:00:00Z"}
	],
	"authors": [
		{"id": 1, "name": "Frank Herbert"},
		{"id": 2, "name": "Jane Austen"}
	]
}`

const libraryIDs = `{"books": "id", "loans": "id", "authors": "id"}`

func libraryStore(t *testing.T) *collection.Store {
	t.Helper()
	mem := store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, mem.Save(ctx, "db.json", []byte(libraryDB)))
	require.NoError(t, mem.Save(ctx, "identifiers.json", []byte(libraryIDs)))

	s := collection.NewStore(mem)
	require.NoError(t, s.Load(ctx))
	return s
}

func newOrchestrator(t *testing.T) (*Orchestrator, *collection.Store) {
	t.Helper()
	s := libraryStore(t)
	rm, err := rules.NewRuleManager()
	require.NoError(t, err)
	return NewOrchestrator(s, rm, 10), s
}

func ids(items []map[string]any) []float64 {
	out := make([]float64, len(items))
	for i, it := range items {
		out[i] = it["id"].(float64)
	}
	return out
}
