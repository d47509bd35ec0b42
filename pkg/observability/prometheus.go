package observability

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raywall/fast-mock-server/pkg/metrics"
)

var durationBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

// PrometheusProvider registra as métricas num registry próprio. Métricas
// desconhecidas são criadas na primeira chamada, com os rótulos das tags.
type PrometheusProvider struct {
	registry  *prometheus.Registry
	namespace string

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusProvider cria o provider. Sem registry, um novo é criado.
func NewPrometheusProvider(registry *prometheus.Registry, namespace string) *PrometheusProvider {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	p := &PrometheusProvider{
		registry:   registry,
		namespace:  sanitize(namespace),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
	p.registerDefaultMetrics()
	return p
}

func (p *PrometheusProvider) registerDefaultMetrics() {
	requestLabels := []string{"method", "route", "status"}

	p.counters[metrics.RequestsTotal] = promauto.With(p.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      metrics.RequestsTotal,
			Help:      "Total de requisições HTTP atendidas",
		},
		requestLabels,
	)
	p.histograms[metrics.RequestDurationMs] = promauto.With(p.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: p.namespace,
			Name:      metrics.RequestDurationMs,
			Help:      "Duração das requisições HTTP em milissegundos",
			Buckets:   durationBuckets,
		},
		requestLabels,
	)
	p.counters[metrics.MutationsTotal] = promauto.With(p.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      metrics.MutationsTotal,
			Help:      "Total de escritas nas coleções",
		},
		[]string{"collection", "operation"},
	)
	p.gauges[metrics.CollectionItems] = promauto.With(p.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: p.namespace,
			Name:      metrics.CollectionItems,
			Help:      "Quantidade de registros por coleção",
		},
		[]string{"collection"},
	)
	p.counters[metrics.ReloadsTotal] = promauto.With(p.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      metrics.ReloadsTotal,
			Help:      "Total de recargas das coleções",
		},
		[]string{"result"},
	)
}

func (p *PrometheusProvider) Count(name string, value float64, tags []string) error {
	keys, labels := splitTags(tags)
	p.mu.Lock()
	vec, ok := p.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      sanitize(name),
			Help:      "Contador dinâmico: " + name,
		}, keys)
		if err := p.registry.Register(vec); err != nil {
			p.mu.Unlock()
			return fmt.Errorf("falha ao registrar %s: %w", name, err)
		}
		p.counters[name] = vec
	}
	p.mu.Unlock()

	c, err := vec.GetMetricWith(labels)
	if err != nil {
		return fmt.Errorf("rótulos inválidos para %s: %w", name, err)
	}
	c.Add(value)
	return nil
}

func (p *PrometheusProvider) Gauge(name string, value float64, tags []string) error {
	keys, labels := splitTags(tags)
	p.mu.Lock()
	vec, ok := p.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Name:      sanitize(name),
			Help:      "Gauge dinâmico: " + name,
		}, keys)
		if err := p.registry.Register(vec); err != nil {
			p.mu.Unlock()
			return fmt.Errorf("falha ao registrar %s: %w", name, err)
		}
		p.gauges[name] = vec
	}
	p.mu.Unlock()

	g, err := vec.GetMetricWith(labels)
	if err != nil {
		return fmt.Errorf("rótulos inválidos para %s: %w", name, err)
	}
	g.Set(value)
	return nil
}

func (p *PrometheusProvider) Histogram(name string, value float64, tags []string) error {
	keys, labels := splitTags(tags)
	p.mu.Lock()
	vec, ok := p.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Name:      sanitize(name),
			Help:      "Histograma dinâmico: " + name,
			Buckets:   durationBuckets,
		}, keys)
		if err := p.registry.Register(vec); err != nil {
			p.mu.Unlock()
			return fmt.Errorf("falha ao registrar %s: %w", name, err)
		}
		p.histograms[name] = vec
	}
	p.mu.Unlock()

	h, err := vec.GetMetricWith(labels)
	if err != nil {
		return fmt.Errorf("rótulos inválidos para %s: %w", name, err)
	}
	h.Observe(value)
	return nil
}

// Handler expõe o registry no formato de scrape do Prometheus.
func (p *PrometheusProvider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry devolve o registry usado pelo provider.
func (p *PrometheusProvider) Registry() *prometheus.Registry {
	return p.registry
}

// splitTags converte tags "chave:valor" em rótulos.
func splitTags(tags []string) ([]string, prometheus.Labels) {
	keys := make([]string, 0, len(tags))
	labels := make(prometheus.Labels, len(tags))
	for _, t := range tags {
		k, v, _ := strings.Cut(t, ":")
		k = sanitize(k)
		keys = append(keys, k)
		labels[k] = v
	}
	return keys, labels
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, name)
}
