// Package collection mantém as coleções em memória e as persiste, por
// inteiro, a cada mutação.
//
// Leituras nunca bloqueiam: cada coleção publica um snapshot imutável via
// atomic.Pointer. Escritas de uma coleção são serializadas pelo seu mutex e
// só publicam o novo snapshot depois que o documento foi gravado.
package collection

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/raywall/fast-mock-server/json/value"
	"github.com/raywall/fast-mock-server/pkg/schema"
)

type snapshot struct {
	records []map[string]any
	nextID  int64
}

// Collection é um conjunto nomeado de registros com o mesmo schema.
type Collection struct {
	name   string
	idKey  string
	schema *schema.Schema
	// external indica schema vindo do documento de schemas
	external bool

	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
}

func newCollection(name, idKey string, s *schema.Schema, external bool, records []map[string]any, nextID int64) *Collection {
	c := &Collection{name: name, idKey: idKey, schema: s, external: external}
	c.snap.Store(&snapshot{records: records, nextID: nextID})
	return c
}

func (c *Collection) Name() string { return c.name }

// IdentifierKey devolve a propriedade que identifica os registros.
func (c *Collection) IdentifierKey() string { return c.idKey }

func (c *Collection) Schema() *schema.Schema { return c.schema }

// HasExternalSchema informa se o schema foi fornecido em vez de inferido.
func (c *Collection) HasExternalSchema() bool { return c.external }

// NextID devolve o identificador que o próximo insert receberá.
func (c *Collection) NextID() int64 { return c.snap.Load().nextID }

func (c *Collection) Len() int { return len(c.snap.Load().records) }

// Records devolve os registros atuais. O slice e os mapas são compartilhados
// e não devem ser alterados; use value.CloneObject antes de modificar.
func (c *Collection) Records() []map[string]any {
	return c.snap.Load().records
}

// Find devolve o registro com o identificador informado.
func (c *Collection) Find(id string) (map[string]any, bool) {
	want, ok := ParseID(id)
	if !ok {
		return nil, false
	}
	snap := c.snap.Load()
	if i := indexOf(snap.records, c.idKey, want); i >= 0 {
		return snap.records[i], true
	}
	return nil, false
}

func indexOf(records []map[string]any, idKey string, id int64) int {
	for i, r := range records {
		if got, ok := identifier(r[idKey]); ok && got == id {
			return i
		}
	}
	return -1
}

// ParseID interpreta um identificador vindo da URL.
func ParseID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n, err == nil
}

// identifier aceita inteiros JSON e strings com inteiros.
func identifier(v any) (int64, bool) {
	switch t := v.(type) {
	case string:
		return ParseID(t)
	case bool, nil:
		return 0, false
	}
	if !value.IsInteger(v) {
		return 0, false
	}
	f, _ := value.AsNumber(v)
	return int64(f), true
}
