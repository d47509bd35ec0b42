package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/raywall/fast-mock-server/pkg/cloud"
	"github.com/raywall/fast-mock-server/pkg/config"
)

// DynamoAPI define a interface para operações do DynamoDB (permite Mock)
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type dynamoDocument struct {
	Name string `dynamodbav:"name"`
	Body string `dynamodbav:"body"`
}

// DynamoStore guarda cada documento como um item (pk "name", atributo "body").
type DynamoStore struct {
	client DynamoAPI
	table  string
}

func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

func NewDynamoStoreFromConfig(ctx context.Context, region string, cfg config.DynamoDBConf) (*DynamoStore, error) {
	awsCfg, err := cloud.AWSConfig(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("erro config aws: %w", err)
	}
	return NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.Table), nil
}

func (s *DynamoStore) Load(ctx context.Context, name string) ([]byte, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       map[string]types.AttributeValue{"name": &types.AttributeValueMemberS{Value: name}},
	})
	if err != nil {
		return nil, fmt.Errorf("operation error DynamoDB: GetItem, %w", err)
	}
	if out.Item == nil {
		return nil, ErrDocumentNotFound
	}

	var doc dynamoDocument
	if err := attributevalue.UnmarshalMap(out.Item, &doc); err != nil {
		return nil, fmt.Errorf("item %s inválido: %w", name, err)
	}
	return []byte(doc.Body), nil
}

func (s *DynamoStore) Save(ctx context.Context, name string, data []byte) error {
	item, err := attributevalue.MarshalMap(dynamoDocument{Name: name, Body: string(data)})
	if err != nil {
		return err
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("operation error DynamoDB: PutItem, %w", err)
	}
	return nil
}
