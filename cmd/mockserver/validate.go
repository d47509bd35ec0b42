package main

import (
	"fmt"
	"io"
	"sort"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/raywall/fast-mock-server/pkg/engine"
	"github.com/raywall/fast-mock-server/pkg/store"
)

// errInvalid sinaliza falha já reportada na saída.
var errInvalid = fmt.Errorf("configuração inválida")

func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Valida a configuração e a integridade das coleções sem servir",
		Long: `Carrega a configuração e executa todas as checagens da inicialização:
identificadores, schemas externos e inferência de tipos.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts)
		},
	}
}

func runValidate(cmd *cobra.Command, opts *RootOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := engine.Load(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}
	docs, err := store.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close(docs)

	report, err := engine.Analyze(ctx, cfg, docs)
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		if err := json.NewEncoder(out).Encode(report); err != nil {
			return err
		}
	} else {
		printReport(out, report)
	}
	if !report.Valid {
		return errInvalid
	}
	return nil
}

func printReport(w io.Writer, report *engine.ValidationReport) {
	if !report.Valid {
		fmt.Fprintln(w, "❌ As coleções contêm erros:")
		for _, e := range report.Errors {
			fmt.Fprintf(w, " - %s\n", e)
		}
		return
	}

	names := make([]string, 0, len(report.Collections))
	for name := range report.Collections {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "✅ Configuração válida")
	for _, name := range names {
		fmt.Fprintf(w, " - %s: %d registro(s)\n", name, report.Collections[name])
	}
	for _, warn := range report.Warnings {
		fmt.Fprintf(w, "⚠️  %s\n", warn)
	}
}
