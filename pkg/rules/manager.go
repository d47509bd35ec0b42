// Package rules avalia expressões CEL sobre os registros das coleções
// (parâmetro _where).
package rules

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// maxCachedPrograms limita o cache de programas compilados.
const maxCachedPrograms = 256

// RuleManager gerencia a compilação e avaliação de expressões CEL.
type RuleManager struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewRuleManager inicializa o ambiente CEL. Cada expressão enxerga o
// registro como `item` e o nome da coleção como `collection`.
func NewRuleManager() (*RuleManager, error) {
	env, err := cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("collection", cel.StringType),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("erro fatal CEL init: %w", err)
	}

	return &RuleManager{env: env, programs: map[string]cel.Program{}}, nil
}

// Compile compila expr uma única vez. Expressões cujo tipo de retorno não
// pode ser booleano são rejeitadas já na compilação.
func (rm *RuleManager) Compile(expr string) (*Predicate, error) {
	rm.mu.RLock()
	prg, ok := rm.programs[expr]
	rm.mu.RUnlock()
	if ok {
		return &Predicate{expr: expr, prg: prg}, nil
	}

	ast, issues := rm.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("erro de compilação CEL: %w", issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expressão deve ser booleana, obtido %s", out)
	}

	prg, err := rm.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar programa CEL: %w", err)
	}

	rm.mu.Lock()
	if len(rm.programs) >= maxCachedPrograms {
		rm.programs = map[string]cel.Program{}
	}
	rm.programs[expr] = prg
	rm.mu.Unlock()

	return &Predicate{expr: expr, prg: prg}, nil
}

// EvaluateBool compila e avalia expr para um único registro.
func (rm *RuleManager) EvaluateBool(expr, collection string, item map[string]interface{}) (bool, error) {
	if expr == "" {
		return true, nil // Expressão vazia = aprova
	}
	p, err := rm.Compile(expr)
	if err != nil {
		return false, err
	}
	return p.Match(collection, item)
}

// Predicate é uma expressão compilada, segura para uso concorrente.
type Predicate struct {
	expr string
	prg  cel.Program
}

func (p *Predicate) String() string { return p.expr }

// Match avalia a expressão para item.
func (p *Predicate) Match(collection string, item map[string]interface{}) (bool, error) {
	out, _, err := p.prg.Eval(map[string]interface{}{
		"item":       item,
		"collection": collection,
	})
	if err != nil {
		return false, fmt.Errorf("erro execução CEL: %w", err)
	}

	if val, ok := out.Value().(bool); ok {
		return val, nil
	}
	return false, fmt.Errorf("resultado não é booleano")
}
