package metastore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/sitesmithlabs/templateindex/internal/catalog"
)

// dynamoAPI is the slice of dynamodb.Client the store uses.
type dynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoStore upserts template records into a single-table layout.
type DynamoStore struct {
	client dynamoAPI
	table  string
	model  string
	logger *zap.Logger
}

// NewDynamoStore wires a DynamoDB client to the template table. model is
// stamped onto each record so readers know which embedding produced its
// vector.
func NewDynamoStore(client dynamoAPI, table, model string, logger *zap.Logger) (*DynamoStore, error) {
	if client == nil {
		return nil, errors.New("dynamodb client is required")
	}
	if table == "" {
		return nil, errors.New("table is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DynamoStore{client: client, table: table, model: model, logger: logger}, nil
}

func (s *DynamoStore) Put(ctx context.Context, t *catalog.Template) error {
	av, err := attributevalue.MarshalMap(newItem(t, s.model))
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", ErrStoreWrite, t.TemplateID, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("%w: put %s: %v", ErrStoreWrite, t.TemplateID, err)
	}

	s.logger.Debug("metadata record written",
		zap.String("template_id", t.TemplateID),
		zap.String("table", s.table))
	return nil
}
