package collection

import (
	"context"
	"errors"

	json "github.com/goccy/go-json"

	"github.com/raywall/fast-mock-server/json/value"
	"github.com/raywall/fast-mock-server/pkg/apperrors"
	"github.com/raywall/fast-mock-server/pkg/schema"
)

// errStale indica que a coleção foi substituída por uma recarga entre a
// busca e a gravação.
var errStale = errors.New("collection replaced by reload")

// mutate executa fn com a coleção name travada. Se uma recarga trocou a
// coleção no meio do caminho, fn é repetida sobre a coleção atual.
func (s *Store) mutate(name string, fn func(c *Collection) error) error {
	for {
		c, err := s.Collection(name)
		if err != nil {
			return err
		}
		c.mu.Lock()
		err = fn(c)
		c.mu.Unlock()
		if !errors.Is(err, errStale) {
			return err
		}
		s.log.Debug().Str("collection", name).Msg("coleção recarregada durante a escrita, repetindo")
	}
}

// Insert grava item com o próximo identificador da coleção. Um
// identificador enviado pelo cliente é sempre ignorado.
func (s *Store) Insert(ctx context.Context, name string, item map[string]any) (stored map[string]any, err error) {
	err = s.mutate(name, func(c *Collection) error {
		stored, err = s.insertLocked(ctx, c, item)
		return err
	})
	return stored, err
}

func (s *Store) insertLocked(ctx context.Context, c *Collection, item map[string]any) (map[string]any, error) {
	snap := c.snap.Load()

	stored := value.CloneObject(item)
	if stored == nil {
		stored = map[string]any{}
	}
	stored[c.idKey] = float64(snap.nextID)
	if err := schema.ValidateItem(c.schema, stored); err != nil {
		return nil, err
	}

	records := make([]map[string]any, len(snap.records), len(snap.records)+1)
	copy(records, snap.records)
	records = append(records, stored)

	next := &snapshot{records: records, nextID: snap.nextID + 1}
	if err := s.commit(ctx, c, next); err != nil {
		return nil, err
	}
	s.log.Debug().Str("collection", c.name).Int64("id", snap.nextID).Msg("item inserido")
	return stored, nil
}

// Update substitui o registro id por item, mantendo o identificador.
func (s *Store) Update(ctx context.Context, name, id string, item map[string]any) (map[string]any, error) {
	var stored map[string]any
	err := s.mutate(name, func(c *Collection) error {
		var found bool
		var err error
		stored, found, err = s.updateLocked(ctx, c, id, item)
		if err == nil && !found {
			return apperrors.NotFoundf("item %s not found in collection %s", id, name)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *Store) updateLocked(ctx context.Context, c *Collection, id string, item map[string]any) (map[string]any, bool, error) {
	want, ok := ParseID(id)
	if !ok {
		return nil, false, nil
	}
	snap := c.snap.Load()
	idx := indexOf(snap.records, c.idKey, want)
	if idx < 0 {
		return nil, false, nil
	}

	stored := value.CloneObject(item)
	if stored == nil {
		stored = map[string]any{}
	}
	stored[c.idKey] = snap.records[idx][c.idKey]
	if err := schema.ValidateItem(c.schema, stored); err != nil {
		return nil, true, err
	}

	records := make([]map[string]any, len(snap.records))
	copy(records, snap.records)
	records[idx] = stored

	if err := s.commit(ctx, c, &snapshot{records: records, nextID: snap.nextID}); err != nil {
		return nil, true, err
	}
	s.log.Debug().Str("collection", c.name).Str("id", id).Msg("item atualizado")
	return stored, true, nil
}

// Upsert atualiza o registro id quando ele existe; caso contrário insere
// item com um identificador escolhido pelo servidor. created informa qual
// dos dois aconteceu.
func (s *Store) Upsert(ctx context.Context, name, id string, item map[string]any) (stored map[string]any, created bool, err error) {
	err = s.mutate(name, func(c *Collection) error {
		var found bool
		var err error
		stored, found, err = s.updateLocked(ctx, c, id, item)
		if found || err != nil {
			created = false
			return err
		}
		stored, err = s.insertLocked(ctx, c, item)
		created = err == nil
		return err
	})
	return stored, created, err
}

// Delete remove o registro id. Remover um registro inexistente não é erro.
func (s *Store) Delete(ctx context.Context, name, id string) error {
	return s.mutate(name, func(c *Collection) error {
		return s.deleteLocked(ctx, c, id)
	})
}

func (s *Store) deleteLocked(ctx context.Context, c *Collection, id string) error {
	want, ok := ParseID(id)
	snap := c.snap.Load()
	idx := -1
	if ok {
		idx = indexOf(snap.records, c.idKey, want)
	}

	records := snap.records
	if idx >= 0 {
		records = make([]map[string]any, 0, len(snap.records)-1)
		records = append(records, snap.records[:idx]...)
		records = append(records, snap.records[idx+1:]...)
	}
	if err := s.commit(ctx, c, &snapshot{records: records, nextID: snap.nextID}); err != nil {
		return err
	}
	s.log.Debug().Str("collection", c.name).Str("id", id).Bool("existed", idx >= 0).Msg("item removido")
	return nil
}

// commit grava o documento de registros com o novo snapshot de c e, só
// então, o publica. Deve ser chamado com c.mu travado. Devolve errStale
// quando c já não pertence ao registro atual.
func (s *Store) commit(ctx context.Context, c *Collection, next *snapshot) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	reg := s.current.Load()
	if reg.collections[c.name] != c {
		return errStale
	}
	doc := make(map[string][]map[string]any, len(reg.collections))
	for name, other := range reg.collections {
		if other == c {
			doc[name] = next.records
			continue
		}
		doc[name] = other.Records()
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.Unhandled, err, "cannot encode collection %s", c.name)
	}
	if err := s.docs.Save(ctx, s.names.Records, data); err != nil {
		s.log.Error().Err(err).Str("collection", c.name).Msg("falha ao persistir registros")
		return apperrors.Wrap(apperrors.Unhandled, err, "cannot persist collection %s", c.name)
	}

	c.snap.Store(next)
	return nil
}
