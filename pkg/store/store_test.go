package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raywall/fast-mock-server/pkg/config"
)

// --- Fakes AWS ---

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

type fakeDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]dtypes.AttributeValue
}

func (f *fakeDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := params.Key["name"].(*dtypes.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[aws.ToString(params.TableName)+"/"+name]}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := params.Item["name"].(*dtypes.AttributeValueMemberS).Value
	f.items[aws.ToString(params.TableName)+"/"+name] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

// --- Contrato comum ---

func testDocumentStore(t *testing.T, s DocumentStore) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx, "db.json")
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	require.NoError(t, s.Save(ctx, "db.json", []byte(`{"books": []}`)))
	data, err := s.Load(ctx, "db.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"books": []}`, string(data))

	// sobrescrita integral
	require.NoError(t, s.Save(ctx, "db.json", []byte(`{"books": [{"id": 1}]}`)))
	data, err = s.Load(ctx, "db.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"books": [{"id": 1}]}`, string(data))

	_, err = s.Load(ctx, "identifiers.json")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestMemoryStore(t *testing.T) {
	testDocumentStore(t, NewMemoryStore())
}

func TestMemoryStore_CopiesBuffers(t *testing.T) {
	s := NewMemoryStore()
	buf := []byte(`{"a": 1}`)
	require.NoError(t, s.Save(context.Background(), "doc", buf))
	buf[2] = 'X'

	data, err := s.Load(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, string(data))
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	testDocumentStore(t, s)

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "arquivos temporários não devem sobrar")
}

func TestFileStore_ConfinesNamesToDir(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save(context.Background(), "../escape.json", []byte(`{}`)))
	_, err = s.Load(context.Background(), "escape.json")
	assert.NoError(t, err)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewRedisStore(client, "mock:")
	testDocumentStore(t, s)

	raw, err := mr.Get("mock:db.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"books": [{"id": 1}]}`, raw)
}

func TestRedisStore_FromConfig(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := New(context.Background(), config.StorageConf{
		Backend: "redis",
		Redis:   config.RedisConf{Addr: mr.Addr(), Prefix: "p:"},
	})
	require.NoError(t, err)
	defer Close(s)

	require.NoError(t, s.Save(context.Background(), "db.json", []byte(`{}`)))
	assert.True(t, mr.Exists("p:db.json"))
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	testDocumentStore(t, NewS3Store(fake, "mocks", "library"))

	_, ok := fake.objects["mocks/library/db.json"]
	assert.True(t, ok, "objeto deve ser gravado com o prefixo")
}

func TestDynamoStore(t *testing.T) {
	fake := &fakeDynamo{items: map[string]map[string]dtypes.AttributeValue{}}
	testDocumentStore(t, NewDynamoStore(fake, "mock-documents"))

	item := fake.items["mock-documents/db.json"]
	require.NotNil(t, item)
	body, ok := item["body"].(*dtypes.AttributeValueMemberS)
	require.True(t, ok)
	assert.JSONEq(t, `{"books": [{"id": 1}]}`, body.Value)
}

func TestSQLStore_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "mock.db")
	s, err := New(context.Background(), config.StorageConf{
		Backend: "sqlite",
		SQL:     config.SQLConf{DSN: dsn, Table: "documents"},
	})
	require.NoError(t, err)
	defer Close(s)

	testDocumentStore(t, s)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), config.StorageConf{Backend: "mongo"})
	assert.Error(t, err)
}

func TestClose_WithoutCloser(t *testing.T) {
	assert.NoError(t, Close(NewMemoryStore()))
}

func TestS3Store_PropagatesOtherErrors(t *testing.T) {
	s := NewS3Store(failingS3{}, "b", "")
	_, err := s.Load(context.Background(), "db.json")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDocumentNotFound))
}

type failingS3 struct{}

func (failingS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return nil, errors.New("AccessDenied")
}

func (failingS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return nil, errors.New("AccessDenied")
}
