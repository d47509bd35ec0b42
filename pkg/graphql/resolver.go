package graphql

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/graphql-go/graphql"

	"github.com/raywall/fast-mock-server/json/value"
	"github.com/raywall/fast-mock-server/pkg/apperrors"
	"github.com/raywall/fast-mock-server/pkg/query"
)

func (ge *GraphQLEngine) resolveCollections(p graphql.ResolveParams) (interface{}, error) {
	return ge.catalog.Names(), nil
}

func (ge *GraphQLEngine) resolveCollection(p graphql.ResolveParams) (interface{}, error) {
	name, _ := p.Args["name"].(string)

	params, err := filterParams(p.Args["filter"])
	if err != nil {
		return nil, err
	}
	for arg, param := range map[string]string{
		"page":  query.ParamPage,
		"limit": query.ParamLimit,
		"sort":  query.ParamSort,
		"order": query.ParamOrder,
		"q":     query.ParamQ,
		"where": query.ParamWhere,
	} {
		switch v := p.Args[arg].(type) {
		case int:
			params.Set(param, strconv.Itoa(v))
		case string:
			params.Set(param, v)
		}
	}
	relationParams(params, p.Args)

	res, err := ge.querier.List(name, params, "/"+name)
	if err != nil {
		return nil, err
	}
	items := make([]interface{}, len(res.Items))
	for i, it := range res.Items {
		items[i] = it
	}
	out := map[string]interface{}{
		"items": items,
		"total": res.Total,
	}
	if res.Page.Page > 0 {
		out["page"] = res.Page.Page
		out["limit"] = res.Page.Limit
		out["totalPages"] = res.TotalPages
	}
	return out, nil
}

func (ge *GraphQLEngine) resolveItem(p graphql.ResolveParams) (interface{}, error) {
	name, _ := p.Args["name"].(string)
	id := fmt.Sprint(p.Args["id"])

	params := url.Values{}
	relationParams(params, p.Args)
	return ge.querier.Get(name, id, params)
}

func relationParams(params url.Values, args map[string]interface{}) {
	for arg, param := range map[string]string{"embed": query.ParamEmbed, "expand": query.ParamExpand} {
		list, _ := args[arg].([]interface{})
		for _, n := range list {
			if s, ok := n.(string); ok {
				params.Add(param, s)
			}
		}
	}
}

// filterParams converte {"chave": valor | [valores]} na query string
// equivalente. Parâmetros reservados não são aceitos aqui.
func filterParams(raw interface{}) (url.Values, error) {
	params := url.Values{}
	if raw == nil {
		return params, nil
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, apperrors.BadRequestf("filter must be an object")
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == "" || k[0] == '_' {
			return nil, apperrors.BadRequestf("filter key %s is reserved", k)
		}
		switch v := obj[k].(type) {
		case []interface{}:
			for _, e := range v {
				if !value.IsPrimitive(e) {
					return nil, apperrors.BadRequestf("filter %s accepts only primitive values", k)
				}
				params.Add(k, value.Text(e))
			}
		default:
			if !value.IsPrimitive(v) {
				return nil, apperrors.BadRequestf("filter %s accepts only primitive values", k)
			}
			params.Add(k, value.Text(v))
		}
	}
	return params, nil
}
