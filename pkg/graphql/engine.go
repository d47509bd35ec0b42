package graphql

import (
	"context"
	"net/url"

	"github.com/graphql-go/graphql"

	"github.com/raywall/fast-mock-server/pkg/query"
)

// Catalog lista as coleções disponíveis.
type Catalog interface {
	Names() []string
}

// Querier executa as consultas de leitura.
type Querier interface {
	List(name string, params url.Values, baseURL string) (query.Result, error)
	Get(name, id string, params url.Values) (map[string]any, error)
}

// GraphQLEngine expõe as coleções como campos de uma única Query.
type GraphQLEngine struct {
	Schema  graphql.Schema
	catalog Catalog
	querier Querier
}

func NewGraphQLEngine(catalog Catalog, querier Querier) (*GraphQLEngine, error) {
	engine := &GraphQLEngine{
		catalog: catalog,
		querier: querier,
	}

	schema, err := engine.buildSchema()
	if err != nil {
		return nil, err
	}

	engine.Schema = schema
	return engine, nil
}

func (ge *GraphQLEngine) Execute(ctx context.Context, query string, variables map[string]interface{}) *graphql.Result {
	params := graphql.Params{
		Schema:         ge.Schema,
		RequestString:  query,
		VariableValues: variables,
		Context:        ctx,
	}
	return graphql.Do(params)
}
