package engine

import (
	"context"
	"fmt"

	"github.com/raywall/fast-mock-server/pkg/apperrors"
	"github.com/raywall/fast-mock-server/pkg/collection"
	"github.com/raywall/fast-mock-server/pkg/config"
	"github.com/raywall/fast-mock-server/pkg/store"
)

// ValidationReport contém o resultado detalhado da análise.
type ValidationReport struct {
	Valid       bool           `json:"valid"`
	Collections map[string]int `json:"collections,omitempty"`
	Errors      []string       `json:"errors,omitempty"`
	Warnings    []string       `json:"warnings,omitempty"`
}

// Analyze executa as mesmas checagens de integridade da inicialização
// (identificadores, schemas externos, inferência) sem servir requisições.
func Analyze(ctx context.Context, cfg *config.ServerConfig, docs store.DocumentStore) (*ValidationReport, error) {
	if cfg == nil || docs == nil {
		return nil, fmt.Errorf("configuração e store são obrigatórios")
	}
	report := &ValidationReport{
		Valid:       true,
		Collections: map[string]int{},
		Errors:      []string{},
		Warnings:    []string{},
	}

	// 1. Carga completa das coleções
	s := collection.NewStore(docs, collection.WithDocuments(documents(cfg.Documents)))
	if err := s.Load(ctx); err != nil {
		kind, msg, details := apperrors.Public(err)
		if kind == apperrors.Unhandled {
			// falha de infraestrutura, não da configuração
			return nil, err
		}
		report.Errors = append(report.Errors, fmt.Sprintf("%s: %s", kind, msg))
		for _, d := range details {
			report.Errors = append(report.Errors, "  "+d)
		}
		report.Valid = false
		return report, nil
	}

	// 2. Rotas auxiliares que escondem coleções
	reserved := map[string]string{"/health": "health"}
	if cfg.GraphQL.Enabled {
		reserved[cfg.GraphQL.Route] = "graphql"
	}
	if cfg.Service.Metrics.Prometheus.Enabled {
		reserved[cfg.Service.Metrics.Prometheus.Route] = "prometheus"
	}

	for _, name := range s.Names() {
		c, err := s.Collection(name)
		if err != nil {
			continue
		}
		report.Collections[name] = c.Len()

		if c.Len() == 0 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("Coleção '%s' está vazia", name))
		}
		if owner, ok := reserved["/"+name]; ok {
			report.Warnings = append(report.Warnings, fmt.Sprintf("Coleção '%s' é encoberta pela rota de %s", name, owner))
		}
	}

	return report, nil
}

func documents(d config.DocumentsConf) collection.Documents {
	return collection.Documents{
		Records:     d.Records,
		Identifiers: d.Identifiers,
		Schemas:     d.Schemas,
	}
}
