package metrics

import (
	"fmt"
	"strconv"
	"time"
)

// Recorder traduz os eventos do servidor em chamadas ao Provider.
type Recorder struct {
	provider Provider
}

// NewRecorder cria um Recorder. Sem provider nada é enviado.
func NewRecorder(p Provider) *Recorder {
	return &Recorder{provider: p}
}

// Request registra uma requisição HTTP atendida. route é o template da
// rota (/{collection}/{id}), não o caminho, para manter a cardinalidade baixa.
func (r *Recorder) Request(method, route string, status int, elapsed time.Duration) error {
	if r == nil || r.provider == nil {
		return nil
	}
	tags := []string{
		Tag("method", method),
		Tag("route", route),
		Tag("status", strconv.Itoa(status)),
	}
	if err := r.provider.Count(RequestsTotal, 1, tags); err != nil {
		return err
	}
	return r.provider.Histogram(RequestDurationMs, float64(elapsed.Microseconds())/1000, tags)
}

// Mutation registra uma escrita bem-sucedida numa coleção.
func (r *Recorder) Mutation(collection, op string) error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Count(MutationsTotal, 1, []string{Tag("collection", collection), Tag("operation", op)})
}

// Collection publica a quantidade atual de registros da coleção.
func (r *Recorder) Collection(collection string, items int) error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Gauge(CollectionItems, float64(items), []string{Tag("collection", collection)})
}

// Reload registra uma recarga das coleções.
func (r *Recorder) Reload(ok bool) error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Count(ReloadsTotal, 1, []string{Tag("result", result(ok))})
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// Tag monta uma tag no formato do Datadog.
func Tag(key, value string) string {
	return fmt.Sprintf("%s:%s", key, value)
}
