package graphql

import (
	"strconv"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// JSON transporta qualquer valor JSON sem tipagem no schema.
var JSON = graphql.NewScalar(graphql.ScalarConfig{
	Name:         "JSON",
	Description:  "Valor JSON arbitrário",
	Serialize:    func(value interface{}) interface{} { return value },
	ParseValue:   func(value interface{}) interface{} { return value },
	ParseLiteral: literal,
})

func literal(v ast.Value) interface{} {
	switch t := v.(type) {
	case *ast.StringValue:
		return t.Value
	case *ast.BooleanValue:
		return t.Value
	case *ast.IntValue:
		f, _ := strconv.ParseFloat(t.Value, 64)
		return f
	case *ast.FloatValue:
		f, _ := strconv.ParseFloat(t.Value, 64)
		return f
	case *ast.EnumValue:
		return t.Value
	case *ast.ListValue:
		out := make([]interface{}, len(t.Values))
		for i, e := range t.Values {
			out[i] = literal(e)
		}
		return out
	case *ast.ObjectValue:
		out := make(map[string]interface{}, len(t.Fields))
		for _, f := range t.Fields {
			out[f.Name.Value] = literal(f.Value)
		}
		return out
	}
	return nil
}

// buildSchema constrói a Query raiz: collections, collection e item.
func (ge *GraphQLEngine) buildSchema() (graphql.Schema, error) {
	relations := graphql.FieldConfigArgument{
		"embed":  &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
		"expand": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
	}

	collectionArgs := graphql.FieldConfigArgument{
		"name":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		"page":   &graphql.ArgumentConfig{Type: graphql.Int},
		"limit":  &graphql.ArgumentConfig{Type: graphql.Int},
		"sort":   &graphql.ArgumentConfig{Type: graphql.String},
		"order":  &graphql.ArgumentConfig{Type: graphql.String},
		"q":      &graphql.ArgumentConfig{Type: graphql.String},
		"where":  &graphql.ArgumentConfig{Type: graphql.String},
		"filter": &graphql.ArgumentConfig{Type: JSON, Description: "filtros no formato da query string: {\"genre_like\": \"fic\"}"},
	}
	itemArgs := graphql.FieldConfigArgument{
		"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		"id":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
	}
	for k, v := range relations {
		collectionArgs[k] = v
		itemArgs[k] = v
	}

	queryFields := graphql.Fields{
		"collections": &graphql.Field{
			Type:    graphql.NewList(graphql.String),
			Resolve: ge.resolveCollections,
		},
		"collection": &graphql.Field{
			Type:        JSON,
			Description: "Página de registros: {items, total, page, limit, totalPages}",
			Args:        collectionArgs,
			Resolve:     ge.resolveCollection,
		},
		"item": &graphql.Field{
			Type:    JSON,
			Args:    itemArgs,
			Resolve: ge.resolveItem,
		},
	}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: queryFields}),
	})
}
