package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/raywall/fast-mock-server/pkg/collection"
	"github.com/raywall/fast-mock-server/pkg/graphql"
	"github.com/raywall/fast-mock-server/pkg/metrics"
	"github.com/raywall/fast-mock-server/pkg/query"
)

const (
	HeaderCorrelationID = "x-correlation-id"
	HeaderLatency       = "x-latency-ms"
	HeaderTotalCount    = "X-Total-Count"
)

type ctxKey string

const ContextKeyCorrID ctxKey = "correlation_id"

const defaultMaxBody = 10 << 20

// Options reúne as dependências do roteador.
type Options struct {
	Store        *collection.Store
	Orchestrator *query.Orchestrator
	Recorder     *metrics.Recorder
	Logger       zerolog.Logger

	// Timeout limita cada operação nas coleções. Zero desliga o limite.
	Timeout      time.Duration
	MaxBodyBytes int64

	MetricsRoute   string
	MetricsHandler http.Handler
	GraphQLRoute   string
	GraphQL        *graphql.GraphQLEngine
}

type server struct {
	Options
}

// NewRouter monta as rotas do servidor de mocks.
func NewRouter(opts Options) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBody
	}
	s := &server{Options: opts}

	router := mux.NewRouter()
	router.Use(ObservabilityMiddleware(opts.Logger, opts.Recorder))
	router.NotFoundHandler = ObservabilityMiddleware(opts.Logger, opts.Recorder)(http.HandlerFunc(s.notFound))
	router.MethodNotAllowedHandler = ObservabilityMiddleware(opts.Logger, opts.Recorder)(http.HandlerFunc(s.methodNotAllowed))

	router.HandleFunc("/", s.index).Methods(http.MethodGet)
	router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	if opts.MetricsHandler != nil && opts.MetricsRoute != "" {
		opts.Logger.Info().Msgf("Registrando métricas em %s", opts.MetricsRoute)
		router.Handle(opts.MetricsRoute, opts.MetricsHandler).Methods(http.MethodGet)
	}
	if opts.GraphQL != nil && opts.GraphQLRoute != "" {
		opts.Logger.Info().Msgf("Registrando GraphQL em %s", opts.GraphQLRoute)
		router.HandleFunc(opts.GraphQLRoute, s.graphql).Methods(http.MethodPost)
	}

	router.HandleFunc("/{collection}", s.list).Methods(http.MethodGet)
	router.HandleFunc("/{collection}", s.create).Methods(http.MethodPost)
	router.HandleFunc("/{collection}/schema", s.schema).Methods(http.MethodGet)
	router.HandleFunc("/{collection}/{id}", s.get).Methods(http.MethodGet)
	router.HandleFunc("/{collection}/{id}", s.replace).Methods(http.MethodPut)
	router.HandleFunc("/{collection}/{id}", s.remove).Methods(http.MethodDelete)

	return router
}

// StartHTTPServer atende em addr até ctx ser cancelado e então encerra
// aguardando as requisições em andamento.
func StartHTTPServer(ctx context.Context, addr string, handler http.Handler, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("Servidor HTTP ouvindo em %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Encerrando servidor HTTP")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("falha no shutdown do servidor: %w", err)
	}
	return nil
}

// --- MIDDLEWARE DE OBSERVABILIDADE ---
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	startTime   time.Time
	wroteHeader bool
}

func (rw *responseWriterWrapper) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	duration := time.Since(rw.startTime)
	rw.Header().Set(HeaderLatency, fmt.Sprintf("%d", duration.Milliseconds()))
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriterWrapper) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// ObservabilityMiddleware propaga o correlation id, registra a requisição no
// log e envia requests_total/request_duration_ms pelo recorder.
func ObservabilityMiddleware(base zerolog.Logger, rec *metrics.Recorder) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			corrID := r.Header.Get(HeaderCorrelationID)
			if corrID == "" {
				corrID = uuid.NewString()
			}
			w.Header().Set(HeaderCorrelationID, corrID)

			logger := base.With().Str("correlation_id", corrID).Logger()
			ctx := logger.WithContext(r.Context())
			ctx = context.WithValue(ctx, ContextKeyCorrID, corrID)

			wrapper := &responseWriterWrapper{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				startTime:      start,
			}

			next.ServeHTTP(wrapper, r.WithContext(ctx))

			route := "unmatched"
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			elapsed := time.Since(start)
			if err := rec.Request(r.Method, route, wrapper.statusCode, elapsed); err != nil {
				logger.Warn().Err(err).Msg("falha ao registrar métricas")
			}

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", route).
				Int("status", wrapper.statusCode).
				Int64("latency_ms", elapsed.Milliseconds()).
				Msg("request completed")
		})
	}
}
