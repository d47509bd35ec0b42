package collection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/raywall/fast-mock-server/pkg/apperrors"
	"github.com/raywall/fast-mock-server/pkg/schema"
	"github.com/raywall/fast-mock-server/pkg/store"
)

// State é o ciclo de vida do Store.
type State int32

const (
	Loading State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "failed"
	}
}

// Documents nomeia os documentos lidos do DocumentStore.
type Documents struct {
	Records     string
	Identifiers string
	Schemas     string
}

// DefaultDocuments são os nomes usados quando nada é configurado.
var DefaultDocuments = Documents{
	Records:     "db.json",
	Identifiers: "identifiers.json",
	Schemas:     "schemas.json",
}

type registry struct {
	collections map[string]*Collection
	names       []string
	schemas     map[string]*schema.Schema
}

// Store é o dono das coleções. Não há instância global: quem constrói o
// Store o repassa explicitamente aos componentes.
type Store struct {
	docs  store.DocumentStore
	names Documents
	log   zerolog.Logger

	state atomic.Int32
	// persistMu serializa a gravação do documento de registros, que contém
	// todas as coleções.
	persistMu sync.Mutex
	current   atomic.Pointer[registry]
}

type Option func(*Store)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l.With().Str("component", "collection_store").Logger() }
}

func WithDocuments(d Documents) Option {
	return func(s *Store) {
		if d.Records != "" {
			s.names.Records = d.Records
		}
		if d.Identifiers != "" {
			s.names.Identifiers = d.Identifiers
		}
		if d.Schemas != "" {
			s.names.Schemas = d.Schemas
		}
	}
}

func NewStore(docs store.DocumentStore, opts ...Option) *Store {
	s := &Store{docs: docs, names: DefaultDocuments, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(&registry{collections: map[string]*Collection{}, schemas: map[string]*schema.Schema{}})
	return s
}

// Load lê os documentos e constrói as coleções. Qualquer inconsistência
// deixa o Store em Failed e o processo não deve servir requisições.
func (s *Store) Load(ctx context.Context) error {
	s.state.Store(int32(Loading))
	reg, err := s.build(ctx)
	if err != nil {
		s.state.Store(int32(Failed))
		s.log.Error().Err(err).Msg("falha ao carregar coleções")
		return err
	}
	s.swap(reg)
	s.state.Store(int32(Ready))
	s.log.Info().Strs("collections", reg.names).Msg("coleções carregadas")
	return nil
}

// Reload reconstrói todas as coleções. Em caso de erro o estado anterior
// continua servindo e o erro é devolvido. Nenhuma escrita é persistida
// entre a leitura dos documentos e a troca do registro.
func (s *Store) Reload(ctx context.Context) error {
	s.persistMu.Lock()
	reg, err := s.build(ctx)
	if err == nil {
		s.current.Store(reg)
	}
	s.persistMu.Unlock()
	if err != nil {
		s.log.Error().Err(err).Msg("recarga ignorada, mantendo coleções atuais")
		return err
	}
	s.state.Store(int32(Ready))
	s.log.Info().Strs("collections", reg.names).Msg("coleções recarregadas")
	return nil
}

func (s *Store) swap(reg *registry) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	s.current.Store(reg)
}

func (s *Store) State() State { return State(s.state.Load()) }

// Names devolve os nomes das coleções em ordem alfabética.
func (s *Store) Names() []string {
	return append([]string(nil), s.current.Load().names...)
}

// Collection devolve a coleção pelo nome, ou NotFound.
func (s *Store) Collection(name string) (*Collection, error) {
	c, ok := s.current.Load().collections[name]
	if !ok {
		return nil, apperrors.NotFoundf("collection %s not found", name)
	}
	return c, nil
}

func (s *Store) Schema(name string) (*schema.Schema, error) {
	c, err := s.Collection(name)
	if err != nil {
		return nil, err
	}
	return c.Schema(), nil
}

// Schemas devolve o schema de todas as coleções, indexado pelo nome.
func (s *Store) Schemas() map[string]*schema.Schema {
	return s.current.Load().schemas
}

// GetItems devolve os registros da coleção (somente leitura).
func (s *Store) GetItems(name string) ([]map[string]any, error) {
	c, err := s.Collection(name)
	if err != nil {
		return nil, err
	}
	return c.Records(), nil
}

// GetItem devolve o registro com o identificador id, ou NotFound.
func (s *Store) GetItem(name, id string) (map[string]any, error) {
	c, err := s.Collection(name)
	if err != nil {
		return nil, err
	}
	item, ok := c.Find(id)
	if !ok {
		return nil, apperrors.NotFoundf("item %s not found in collection %s", id, name)
	}
	return item, nil
}

// decodeDocument interpreta um documento JSON obrigatório.
func (s *Store) decodeDocument(ctx context.Context, name string, target any) error {
	data, err := s.docs.Load(ctx, name)
	if errors.Is(err, store.ErrDocumentNotFound) {
		return apperrors.InvalidDataf("document %s not found", name)
	}
	if err != nil {
		return apperrors.Wrap(apperrors.Unhandled, err, "cannot read document %s", name)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return apperrors.Wrap(apperrors.CorruptedData, err, "document %s is not valid", name)
	}
	return nil
}

func (s *Store) build(ctx context.Context) (*registry, error) {
	var records map[string][]any
	if err := s.decodeDocument(ctx, s.names.Records, &records); err != nil {
		return nil, err
	}
	var identifiers map[string]string
	if err := s.decodeDocument(ctx, s.names.Identifiers, &identifiers); err != nil {
		return nil, err
	}

	external := map[string]*schema.Schema{}
	data, err := s.docs.Load(ctx, s.names.Schemas)
	switch {
	case errors.Is(err, store.ErrDocumentNotFound):
		s.log.Debug().Str("document", s.names.Schemas).Msg("sem schemas externos, inferindo")
	case err != nil:
		return nil, apperrors.Wrap(apperrors.Unhandled, err, "cannot read document %s", s.names.Schemas)
	default:
		if external, err = schema.DecodeDocument(data); err != nil {
			return nil, err
		}
	}

	reg := &registry{collections: map[string]*Collection{}, schemas: map[string]*schema.Schema{}}

	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	for name := range identifiers {
		if _, ok := records[name]; !ok {
			if _, hasSchema := external[name]; !hasSchema {
				return nil, apperrors.InvalidDataf("collection %s has an identifier but no records nor schema", name)
			}
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		c, err := buildCollection(name, identifiers[name], records[name], external[name])
		if err != nil {
			return nil, err
		}
		reg.collections[name] = c
		reg.schemas[name] = c.schema
		s.log.Debug().Str("collection", name).Int("records", c.Len()).Int64("next_id", c.NextID()).
			Bool("external_schema", c.external).Msg("coleção construída")
	}
	reg.names = names
	return reg, nil
}

func buildCollection(name, idKey string, raw []any, external *schema.Schema) (*Collection, error) {
	if idKey == "" {
		return nil, apperrors.InvalidDataf("collection %s has no identifier key", name)
	}

	records := make([]map[string]any, len(raw))
	seen := make(map[int64]struct{}, len(raw))
	var maxID int64
	for i, r := range raw {
		obj, ok := r.(map[string]any)
		if !ok {
			return nil, apperrors.CorruptedDataf("#/%s/%d: record is not an object", name, i)
		}
		id, ok := identifier(obj[idKey])
		if !ok {
			return nil, apperrors.InvalidDataf("#/%s/%d/%s: identifier must be an integer", name, i, idKey)
		}
		if _, dup := seen[id]; dup {
			return nil, apperrors.InvalidDataf("#/%s/%d/%s: duplicated identifier %d", name, i, idKey, id)
		}
		seen[id] = struct{}{}
		if id > maxID {
			maxID = id
		}
		records[i] = obj
	}

	s := external
	if s != nil {
		if err := schema.ValidateCollection(s, records); err != nil {
			var appErr *apperrors.Error
			details := []string(nil)
			if errors.As(err, &appErr) {
				details = appErr.Details
			}
			return nil, &apperrors.Error{
				Kind:    apperrors.InvalidData,
				Message: fmt.Sprintf("collection %s does not match its schema", name),
				Details: details,
			}
		}
	} else {
		var err error
		if s, err = schema.Infer(records, idKey); err != nil {
			return nil, fmt.Errorf("collection %s: %w", name, err)
		}
	}

	return newCollection(name, idKey, s, external != nil, records, maxID+1), nil
}
