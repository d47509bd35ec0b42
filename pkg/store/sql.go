package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"           // Driver Postgres
	_ "github.com/mattn/go-sqlite3" // Driver SQLite
)

// SQLStore guarda os documentos em uma tabela (name PK, body).
type SQLStore struct {
	db     *sql.DB
	driver string
	table  string
}

// NewSQLStore abre a conexão e cria a tabela se necessário.
// driver: "sqlite3" ou "postgres".
func NewSQLStore(ctx context.Context, driver, dsn, table string) (*SQLStore, error) {
	if table == "" {
		table = "documents"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir conexão SQL: %w", err)
	}
	s := &SQLStore{db: db, driver: driver, table: table}

	ctxDb, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (name TEXT PRIMARY KEY, body TEXT NOT NULL)`, table)
	if _, err := db.ExecContext(ctxDb, ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("erro ao criar tabela %s: %w", table, err)
	}
	return s, nil
}

// placeholder devolve o marcador posicional do driver.
func (s *SQLStore) placeholder(n int) string {
	if s.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *SQLStore) Load(ctx context.Context, name string) ([]byte, error) {
	query := fmt.Sprintf("SELECT body FROM %s WHERE name = %s", s.table, s.placeholder(1))

	var body string
	err := s.db.QueryRowContext(ctx, query, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro na query SQL: %w", err)
	}
	return []byte(body), nil
}

func (s *SQLStore) Save(ctx context.Context, name string, data []byte) error {
	stmt := fmt.Sprintf(`INSERT INTO %s (name, body) VALUES (%s, %s)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body`,
		s.table, s.placeholder(1), s.placeholder(2))

	if _, err := s.db.ExecContext(ctx, stmt, name, string(data)); err != nil {
		return fmt.Errorf("erro ao gravar documento %s: %w", name, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
