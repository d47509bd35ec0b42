// Package store persiste documentos JSON inteiros (registros, mapa de
// identificadores e schemas) em diferentes backends.
//
// Cada gravação sobrescreve o documento por completo (last-write-wins).
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/raywall/fast-mock-server/pkg/config"
)

// ErrDocumentNotFound indica que o documento nunca foi gravado.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore carrega e grava documentos nomeados.
type DocumentStore interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
}

// Closer é implementado pelos backends que mantêm conexões abertas.
type Closer interface {
	Close() error
}

// New cria o DocumentStore descrito em cfg.
func New(ctx context.Context, cfg config.StorageConf) (DocumentStore, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.Dir)
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStoreFromConfig(cfg.Redis), nil
	case "s3":
		return NewS3StoreFromConfig(ctx, cfg.Region, cfg.S3)
	case "dynamodb":
		return NewDynamoStoreFromConfig(ctx, cfg.Region, cfg.DynamoDB)
	case "sqlite":
		return NewSQLStore(ctx, "sqlite3", cfg.SQL.DSN, cfg.SQL.Table)
	case "postgres":
		return NewSQLStore(ctx, "postgres", cfg.SQL.DSN, cfg.SQL.Table)
	}
	return nil, fmt.Errorf("backend de armazenamento desconhecido: %s", cfg.Backend)
}

// Close libera os recursos do store, quando houver.
func Close(s DocumentStore) error {
	if c, ok := s.(Closer); ok {
		return c.Close()
	}
	return nil
}
