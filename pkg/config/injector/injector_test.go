package injector_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/raywall/fast-mock-server/pkg/config/injector"
)

type TestConfig struct {
	APIKey      string            `yaml:"api_key"`     // Caso 1: Interpolação String "${env.KEY}"
	Description string            `yaml:"description"` // Caso 2: Texto misto "Service running in ${env.REGION}"
	Meta        map[string]interface{}
	Headers     map[string]string
	Nested      *NestedConfig
	Hosts       []string
}

type NestedConfig struct {
	URL string
}

type MockSSM struct{ mock.Mock }

func (m *MockSSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*ssm.GetParameterOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockSecrets struct{ mock.Mock }

func (m *MockSecrets) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*secretsmanager.GetSecretValueOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestInjector_Inject_Environment(t *testing.T) {
	t.Setenv("API_KEY", "12345-abcde")
	t.Setenv("REGION", "us-east-1")
	t.Setenv("DB_HOST", "localhost")

	inj := injector.New()

	target := &TestConfig{
		APIKey:      "${env.API_KEY}",
		Description: "Service running in ${env.REGION}",
		Meta: map[string]interface{}{
			"db_host": "${env.DB_HOST}",
			"timeout": 5000, // Inteiro não deve ser tocado
			"inner":   map[string]interface{}{"region": "${env.REGION}"},
		},
		Headers: map[string]string{"X-Region": "${env.REGION}"},
		Nested: &NestedConfig{
			URL: "https://${env.REGION}.api.com",
		},
		Hosts: []string{"${env.DB_HOST}:6379"},
	}

	err := inj.Inject(context.Background(), target)
	assert.NoError(t, err)

	assert.Equal(t, "12345-abcde", target.APIKey, "Interpolação direta falhou")
	assert.Equal(t, "Service running in us-east-1", target.Description, "Interpolação mista falhou")
	assert.Equal(t, "localhost", target.Meta["db_host"], "Interpolação em mapa falhou")
	assert.Equal(t, 5000, target.Meta["timeout"])
	assert.Equal(t, "us-east-1", target.Meta["inner"].(map[string]interface{})["region"])
	assert.Equal(t, "us-east-1", target.Headers["X-Region"])
	assert.Equal(t, "https://us-east-1.api.com", target.Nested.URL, "Interpolação aninhada falhou")
	assert.Equal(t, []string{"localhost:6379"}, target.Hosts)
}

func TestInjector_Inject_AWS(t *testing.T) {
	ssmClient := new(MockSSM)
	ssmClient.On("GetParameter", mock.Anything, mock.MatchedBy(func(in *ssm.GetParameterInput) bool {
		return aws.ToString(in.Name) == "/mock/redis" && aws.ToBool(in.WithDecryption)
	})).Return(&ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String("redis:6379")}}, nil)

	secrets := new(MockSecrets)
	secrets.On("GetSecretValue", mock.Anything, mock.MatchedBy(func(in *secretsmanager.GetSecretValueInput) bool {
		return aws.ToString(in.SecretId) == "mock/db"
	})).Return(&secretsmanager.GetSecretValueOutput{SecretString: aws.String(`{"password": "s3cr3t", "port": 5432}`)}, nil)

	inj := injector.New(injector.WithSSM(ssmClient), injector.WithSecrets(secrets))

	target := &TestConfig{
		APIKey:      "${ssm./mock/redis}",
		Description: "postgres://app:${secret.mock/db#password}@db:${secret.mock/db#port}/mock",
	}

	err := inj.Inject(context.Background(), target)
	assert.NoError(t, err)
	assert.Equal(t, "redis:6379", target.APIKey)
	assert.Equal(t, "postgres://app:s3cr3t@db:5432/mock", target.Description)
	ssmClient.AssertExpectations(t)
	secrets.AssertExpectations(t)
}

func TestInjector_Inject_Errors(t *testing.T) {
	t.Run("Falha no SSM", func(t *testing.T) {
		ssmClient := new(MockSSM)
		ssmClient.On("GetParameter", mock.Anything, mock.Anything).Return(nil, errors.New("AWS down"))

		inj := injector.New(injector.WithSSM(ssmClient))
		err := inj.Inject(context.Background(), &TestConfig{APIKey: "${ssm./x}"})
		assert.ErrorContains(t, err, "AWS down")
	})

	t.Run("Campo ausente no segredo", func(t *testing.T) {
		secrets := new(MockSecrets)
		secrets.On("GetSecretValue", mock.Anything, mock.Anything).
			Return(&secretsmanager.GetSecretValueOutput{SecretString: aws.String(`{"user": "app"}`)}, nil)

		inj := injector.New(injector.WithSecrets(secrets))
		err := inj.Inject(context.Background(), &TestConfig{APIKey: "${secret.db#password}"})
		assert.ErrorContains(t, err, "campo password ausente")
	})

	t.Run("Target inválido", func(t *testing.T) {
		err := injector.New().Inject(context.Background(), TestConfig{})
		assert.Error(t, err)
	})
}
