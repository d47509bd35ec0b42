package main

import (
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/raywall/fast-mock-server/pkg/collection"
	"github.com/raywall/fast-mock-server/pkg/engine"
	"github.com/raywall/fast-mock-server/pkg/schema"
	"github.com/raywall/fast-mock-server/pkg/store"
)

func NewInferCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "infer <collection>",
		Short: "Imprime o schema inferido dos registros de uma coleção",
		Long: `Infere o schema a partir dos registros atuais, ignorando um schema
externo, e o imprime em JSON. Útil como ponto de partida para schemas.json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfer(cmd, rootOpts, args[0])
		},
	}
}

func runInfer(cmd *cobra.Command, opts *RootOptions, name string) error {
	ctx := cmd.Context()

	cfg, err := engine.Load(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}
	docs, err := store.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close(docs)

	s := collection.NewStore(docs, collection.WithDocuments(collection.Documents{
		Records:     cfg.Documents.Records,
		Identifiers: cfg.Documents.Identifiers,
		Schemas:     cfg.Documents.Schemas,
	}))
	if err := s.Load(ctx); err != nil {
		return err
	}
	c, err := s.Collection(name)
	if err != nil {
		return err
	}

	inferred, err := schema.Infer(c.Records(), c.IdentifierKey())
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(inferred, "", "  ")
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(append(data, '\n'))
	return err
}
