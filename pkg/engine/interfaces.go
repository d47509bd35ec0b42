package engine

import (
	"context"

	"github.com/raywall/fast-mock-server/pkg/config"
)

// Loader é responsável por carregar e decodificar a configuração do servidor.
// Ele abstrai a origem do arquivo (Sistema de arquivos, S3, DynamoDB).
type Loader interface {
	// Load lê a configuração a partir de uma origem e retorna a struct validada.
	Load(ctx context.Context, source string) (*config.ServerConfig, error)
}

var _ Loader = (*UniversalLoader)(nil)
