package query

import (
	"net/url"
	"sort"
	"strings"

	"github.com/raywall/fast-mock-server/json/value"
	"github.com/raywall/fast-mock-server/pkg/apperrors"
	"github.com/raywall/fast-mock-server/pkg/rules"
	"github.com/raywall/fast-mock-server/pkg/schema"
)

// Parâmetros reservados da query string.
const (
	ParamPage   = "_page"
	ParamLimit  = "_limit"
	ParamSort   = "_sort"
	ParamOrder  = "_order"
	ParamEmbed  = "_embed"
	ParamExpand = "_expand"
	ParamQ      = "_q"
	ParamWhere  = "_where"
)

// Result é a resposta de uma listagem.
type Result struct {
	Page
	// Total é a quantidade de registros após os filtros, antes da paginação.
	Total int
}

// Orchestrator compõe filtros, busca, relacionamentos, ordenação e
// paginação para cada requisição.
type Orchestrator struct {
	src          Source
	rules        *rules.RuleManager
	defaultLimit int
}

func NewOrchestrator(src Source, rm *rules.RuleManager, defaultLimit int) *Orchestrator {
	if defaultLimit < 1 {
		defaultLimit = 10
	}
	return &Orchestrator{src: src, rules: rm, defaultLimit: defaultLimit}
}

// List executa a consulta descrita por params sobre a coleção name.
// baseURL é usado na geração dos links de paginação.
func (o *Orchestrator) List(name string, params url.Values, baseURL string) (Result, error) {
	c, err := o.src.Collection(name)
	if err != nil {
		return Result{}, err
	}
	schemas := o.src.Schemas()

	own, related, err := o.matchers(schemas, name, params)
	if err != nil {
		return Result{}, err
	}

	records, err := Apply(c.Records(), own)
	if err != nil {
		return Result{}, err
	}
	records = Search(records, params.Get(ParamQ))

	embed, expand := names(params[ParamEmbed]), names(params[ParamExpand])
	if len(embed) > 0 || len(expand) > 0 {
		records = cloneAll(records)
		if err := Embed(o.src, c, records, embed); err != nil {
			return Result{}, err
		}
		if err := Expand(o.src, records, expand); err != nil {
			return Result{}, err
		}
	}
	if records, err = Apply(records, related); err != nil {
		return Result{}, err
	}

	if where := params.Get(ParamWhere); where != "" {
		if o.rules == nil {
			return Result{}, apperrors.BadRequestf("_where expressions are disabled")
		}
		if records, err = Where(o.rules, name, records, where); err != nil {
			return Result{}, err
		}
	}

	if records, err = Sort(records, params.Get(ParamSort), params.Get(ParamOrder)); err != nil {
		return Result{}, err
	}

	page, err := Paginate(records, params.Get(ParamPage), params.Get(ParamLimit), o.defaultLimit, baseURL, params)
	if err != nil {
		return Result{}, err
	}
	return Result{Page: page, Total: len(records)}, nil
}

// Get devolve um registro com os relacionamentos pedidos em params.
func (o *Orchestrator) Get(name, id string, params url.Values) (map[string]any, error) {
	c, err := o.src.Collection(name)
	if err != nil {
		return nil, err
	}
	found, ok := c.Find(id)
	if !ok {
		return nil, apperrors.NotFoundf("item %s not found in collection %s", id, name)
	}

	item := value.CloneObject(found)
	items := []map[string]any{item}
	if err := Embed(o.src, c, items, names(params[ParamEmbed])); err != nil {
		return nil, err
	}
	if err := Expand(o.src, items, names(params[ParamExpand])); err != nil {
		return nil, err
	}
	return item, nil
}

// matchers compila os filtros, separando os que apontam para coleções
// relacionadas, avaliados depois de _embed/_expand.
func (o *Orchestrator) matchers(schemas map[string]*schema.Schema, name string, params url.Values) (own, related []*Matcher, err error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		if !strings.HasPrefix(k, "_") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		pred := ParsePredicate(k, params[k])
		typ, format, err := schema.TypeAndFormat(schemas, pred.Path, name)
		if err != nil {
			return nil, nil, err
		}
		m, err := Compile(pred, typ, format)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := schema.RelatedCollection(schemas, pred.Path, name); ok {
			m.spreadHead()
			related = append(related, m)
		} else {
			own = append(own, m)
		}
	}
	return own, related, nil
}

func cloneAll(records []map[string]any) []map[string]any {
	out := make([]map[string]any, len(records))
	for i, r := range records {
		out[i] = value.CloneObject(r)
	}
	return out
}
