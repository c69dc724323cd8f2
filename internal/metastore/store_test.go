package metastore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sitesmithlabs/templateindex/internal/catalog"
)

func publishedTemplate() *catalog.Template {
	return &catalog.Template{
		TemplateID:  "t1",
		Name:        "One",
		Source:      catalog.SourceCurated,
		Industry:    "finance",
		CTAIntent:   "contact",
		DesignStyle: "modern",
		Sections:    []string{"hero", "about", "contact"},
		Status:      catalog.StatusPublished,
		CreatedAt:   "2026-08-27T12:00:00Z",
		UpdatedAt:   "2026-08-27T12:00:00Z",
		Location: catalog.Location{
			Bucket: "site-templates-dev",
			Path:   "website-templates/finance/one/",
		},
	}
}

func TestNewItemKeys(t *testing.T) {
	it := newItem(publishedTemplate(), "amazon.titan-embed-text-v2:0")

	assert.Equal(t, "TEMPLATE", it.PK)
	assert.Equal(t, "TEMPLATE#t1", it.SK)
	assert.Equal(t, "INDUSTRY#finance", it.GSI1PK)
	assert.Equal(t, "STATUS#published#t1", it.GSI1SK)
	assert.Equal(t, "t1", it.VectorID)
	assert.Equal(t, "amazon.titan-embed-text-v2:0", it.EmbeddingModel)
	assert.Equal(t, "published", it.Status)
}

type fakeDynamo struct {
	items []map[string]interface{}
	err   error
}

func (f *fakeDynamo) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	var decoded map[string]interface{}
	if err := attributevalue.UnmarshalMap(params.Item, &decoded); err != nil {
		return nil, err
	}
	f.items = append(f.items, decoded)
	return &dynamodb.PutItemOutput{}, nil
}

func TestDynamoStorePut(t *testing.T) {
	fake := &fakeDynamo{}
	store, err := NewDynamoStore(fake, "rag-templates-dev", "amazon.titan-embed-text-v2:0", zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), publishedTemplate()))
	require.Len(t, fake.items, 1)
	assert.Equal(t, "TEMPLATE", fake.items[0]["PK"])
	assert.Equal(t, "TEMPLATE#t1", fake.items[0]["SK"])
	assert.Equal(t, "INDUSTRY#finance", fake.items[0]["GSI1PK"])
}

func TestDynamoStorePut_WrapsBackendError(t *testing.T) {
	fake := &fakeDynamo{err: errors.New("ProvisionedThroughputExceededException")}
	store, err := NewDynamoStore(fake, "rag-templates-dev", "m", zap.NewNop())
	require.NoError(t, err)

	err = store.Put(context.Background(), publishedTemplate())
	assert.ErrorIs(t, err, ErrStoreWrite)
}

func TestLocalStorePut(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "amazon.titan-embed-text-v2:0")
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), publishedTemplate()))

	data, err := os.ReadFile(filepath.Join(dir, "metadata", "t1.json"))
	require.NoError(t, err)

	var it item
	require.NoError(t, json.Unmarshal(data, &it))
	assert.Equal(t, "TEMPLATE#t1", it.SK)
	assert.Equal(t, "STATUS#published#t1", it.GSI1SK)
}
