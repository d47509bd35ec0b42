package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var sqlIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type ConfigValidator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do validador
func NewValidator() *ConfigValidator {
	v := validator.New()
	// nome de tabela é interpolado no SQL, então só identificadores simples
	_ = v.RegisterValidation("sqlident", func(fl validator.FieldLevel) bool {
		return sqlIdentifier.MatchString(fl.Field().String())
	})
	return &ConfigValidator{validate: v}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *ServerConfig) error {
	// 1. Validação Estrutural (Tags do struct: required, oneof, etc)
	if err := cv.validate.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("Campo '%s' falhou na regra '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("erros de validação estrutural:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("erro de validação estrutural: %w", err)
	}

	// 2. Validação Semântica (Regras de negócio da configuração)
	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("erro de validação semântica: %w", err)
	}

	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *ServerConfig) error {
	var errs []string

	// 1. Cada backend exige seus próprios parâmetros
	st := cfg.Storage
	switch st.Backend {
	case "redis":
		if st.Redis.Addr == "" {
			errs = append(errs, "storage.redis.addr é obrigatório para o backend redis")
		}
	case "s3":
		if st.S3.Bucket == "" {
			errs = append(errs, "storage.s3.bucket é obrigatório para o backend s3")
		}
	case "dynamodb":
		if st.DynamoDB.Table == "" {
			errs = append(errs, "storage.dynamodb.table é obrigatório para o backend dynamodb")
		}
	case "sqlite", "postgres":
		if st.SQL.DSN == "" {
			errs = append(errs, fmt.Sprintf("storage.sql.dsn é obrigatório para o backend %s", st.Backend))
		}
	}

	// 2. Documentos precisam de nomes distintos
	docs := cfg.Documents
	if docs.Records != "" && (docs.Records == docs.Identifiers || docs.Records == docs.Schemas) {
		errs = append(errs, fmt.Sprintf("documento '%s' usado para mais de uma finalidade", docs.Records))
	}
	if docs.Identifiers != "" && docs.Identifiers == docs.Schemas {
		errs = append(errs, fmt.Sprintf("documento '%s' usado para mais de uma finalidade", docs.Identifiers))
	}

	// 3. Rotas auxiliares não podem colidir entre si
	if cfg.GraphQL.Enabled && cfg.Service.Metrics.Prometheus.Enabled &&
		cfg.GraphQL.Route != "" && cfg.GraphQL.Route == cfg.Service.Metrics.Prometheus.Route {
		errs = append(errs, fmt.Sprintf("rota '%s' usada por graphql e prometheus", cfg.GraphQL.Route))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
