package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Format     string // "json" | "text"
}

var validFormats = []string{"text", "json"}

// NewRootCommand cria o comando raiz da CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mockserver",
		Short: "Servidor de mocks sobre coleções JSON",
		Long: `Serve coleções de registros JSON como uma API REST com filtros,
ordenação, paginação, relacionamentos e negociação JSON/XML/CSV.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(validFormats, opts.Format) {
				return fmt.Errorf("formato inválido %q: use um de %v", opts.Format, validFormats)
			}
			if opts.ConfigPath == "" {
				return fmt.Errorf("--config é obrigatório (ou CONFIG_FILE_PATH)")
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", os.Getenv("CONFIG_FILE_PATH"),
		"arquivo YAML, s3://bucket/key ou dynamodb://tabela/chave")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "formato da saída (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewInferCommand(opts))
	return cmd
}
