package engine

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog"

	"github.com/raywall/fast-mock-server/pkg/cloud"
	"github.com/raywall/fast-mock-server/pkg/collection"
	"github.com/raywall/fast-mock-server/pkg/config"
	"github.com/raywall/fast-mock-server/pkg/graphql"
	"github.com/raywall/fast-mock-server/pkg/logger"
	"github.com/raywall/fast-mock-server/pkg/metrics"
	"github.com/raywall/fast-mock-server/pkg/observability"
	"github.com/raywall/fast-mock-server/pkg/query"
	"github.com/raywall/fast-mock-server/pkg/rules"
	"github.com/raywall/fast-mock-server/pkg/store"
	"github.com/raywall/fast-mock-server/pkg/transport"
)

// Variáveis injetáveis para mocking
var (
	serverStarter = transport.StartHTTPServer
	lambdaStarter = lambda.Start
	sqsFactory    = func(ctx context.Context, region string) (transport.SQSClient, error) {
		cfg, err := cloud.AWSConfig(ctx, region)
		if err != nil {
			return nil, err
		}
		return sqs.NewFromConfig(cfg), nil
	}
)

// MockServer liga as coleções, o motor de consulta e as superfícies
// (HTTP, Lambda, GraphQL, recarga via SQS) descritas na configuração.
type MockServer struct {
	Config       *config.ServerConfig
	Logger       zerolog.Logger
	Documents    store.DocumentStore
	Store        *collection.Store
	Orchestrator *query.Orchestrator
	Metrics      metrics.Provider
	Recorder     *metrics.Recorder
	GraphQL      *graphql.GraphQLEngine
	Router       http.Handler
}

type Option func(*MockServer)

// WithDocumentStore usa docs no lugar do backend descrito em storage.
func WithDocumentStore(docs store.DocumentStore) Option {
	return func(ms *MockServer) { ms.Documents = docs }
}

func WithLogger(l zerolog.Logger) Option {
	return func(ms *MockServer) { ms.Logger = l }
}

// NewMockServer carrega as coleções e monta o roteador. Qualquer falha de
// integridade dos documentos impede a criação do servidor.
func NewMockServer(ctx context.Context, cfg *config.ServerConfig, opts ...Option) (*MockServer, error) {
	ms := &MockServer{
		Config: cfg,
		Logger: logger.Configure(cfg.Service.Logging, cfg.Service.Name),
	}
	for _, opt := range opts {
		opt(ms)
	}

	if ms.Documents == nil {
		docs, err := store.New(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("falha ao iniciar storage '%s': %w", cfg.Storage.Backend, err)
		}
		ms.Documents = docs
	}

	provider, err := observability.SetupMetrics(cfg.Service.Metrics)
	if err != nil {
		return nil, fmt.Errorf("falha métricas: %w", err)
	}
	ms.Metrics = provider
	ms.Recorder = metrics.NewRecorder(provider)

	ms.Store = collection.NewStore(ms.Documents,
		collection.WithDocuments(documents(cfg.Documents)),
		collection.WithLogger(ms.Logger),
	)
	if err := ms.Store.Load(ctx); err != nil {
		return nil, fmt.Errorf("falha ao carregar coleções: %w", err)
	}
	ms.recordCollections()

	rm, err := rules.NewRuleManager()
	if err != nil {
		return nil, fmt.Errorf("falha fatal ao iniciar RuleManager: %w", err)
	}
	ms.Orchestrator = query.NewOrchestrator(ms.Store, rm, cfg.Query.DefaultLimit)

	if cfg.GraphQL.Enabled {
		ms.GraphQL, err = graphql.NewGraphQLEngine(ms.Store, ms.Orchestrator)
		if err != nil {
			return nil, fmt.Errorf("falha ao iniciar engine graphql: %w", err)
		}
	}

	routerOpts := transport.Options{
		Store:        ms.Store,
		Orchestrator: ms.Orchestrator,
		Recorder:     ms.Recorder,
		Logger:       ms.Logger,
		Timeout:      cfg.Service.GetTimeout(),
		GraphQLRoute: cfg.GraphQL.Route,
		GraphQL:      ms.GraphQL,
	}
	if cfg.Service.Metrics.Prometheus.Enabled {
		routerOpts.MetricsRoute = cfg.Service.Metrics.Prometheus.Route
		routerOpts.MetricsHandler = observability.Handler(provider)
	}
	ms.Router = transport.NewRouter(routerOpts)

	ms.Logger.Info().Strs("collections", ms.Store.Names()).Msg("Servidor de mocks pronto")
	return ms, nil
}

// Reload reconstrói as coleções a partir dos documentos. Em caso de falha
// as coleções anteriores continuam servindo.
func (ms *MockServer) Reload(ctx context.Context) error {
	ms.Logger.Info().Msg("Hot Reload iniciado")
	err := ms.Store.Reload(ctx)
	if mErr := ms.Recorder.Reload(err == nil); mErr != nil {
		ms.Logger.Warn().Err(mErr).Msg("falha ao registrar métricas")
	}
	if err != nil {
		return err
	}
	ms.recordCollections()
	ms.Logger.Info().Msg("Hot Reload concluído com sucesso")
	return nil
}

func (ms *MockServer) recordCollections() {
	for _, name := range ms.Store.Names() {
		c, err := ms.Store.Collection(name)
		if err != nil {
			continue
		}
		if err := ms.Recorder.Collection(name, c.Len()); err != nil {
			ms.Logger.Warn().Err(err).Msg("falha ao registrar métricas")
		}
	}
}

// Run atende no runtime configurado até ctx ser cancelado. Quando há fila
// de recarga, o monitoramento roda em paralelo.
func (ms *MockServer) Run(ctx context.Context) error {
	if url := ms.Config.Reload.SQSQueueURL; url != "" {
		client, err := sqsFactory(ctx, ms.Config.Storage.Region)
		if err != nil {
			return fmt.Errorf("falha ao criar cliente SQS: %w", err)
		}
		reloader := transport.NewSQSReloader(client, url, ms, int32(ms.Config.Reload.WaitSeconds), ms.Logger)
		go reloader.Start(ctx)
	}

	switch ms.Config.Service.Runtime {
	case "", "local":
		addr := ":" + strconv.Itoa(ms.Config.Service.Port)
		return serverStarter(ctx, addr, ms.Router, ms.Logger)
	case "lambda":
		lambdaStarter(transport.NewLambdaHandler(ms.Router).Handle)
		return nil
	}
	return fmt.Errorf("runtime desconhecido: %s", ms.Config.Service.Runtime)
}

// Close libera as conexões do storage.
func (ms *MockServer) Close() error {
	return store.Close(ms.Documents)
}
