package metrics

// Provider define o contrato para envio de métricas.
// Isso permite trocar Datadog por Prometheus sem alterar a lógica do servidor.
// Tags seguem o formato "chave:valor".
type Provider interface {
	Count(name string, value float64, tags []string) error
	Gauge(name string, value float64, tags []string) error
	Histogram(name string, value float64, tags []string) error
}

// Nomes das métricas emitidas pelo servidor.
const (
	RequestsTotal     = "requests_total"
	RequestDurationMs = "request_duration_ms"
	MutationsTotal    = "mutations_total"
	CollectionItems   = "collection_items"
	ReloadsTotal      = "reloads_total"
)
