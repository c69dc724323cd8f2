package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// s3API is the slice of s3.Client the store uses.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store writes vector and index documents as JSON objects under a fixed
// key prefix, encrypted at rest.
type S3Store struct {
	client s3API
	bucket string
	logger *zap.Logger
}

// NewS3Store wires an S3 client to the vector bucket.
func NewS3Store(client s3API, bucket string, logger *zap.Logger) (*S3Store, error) {
	if client == nil {
		return nil, errors.New("s3 client is required")
	}
	if bucket == "" {
		return nil, errors.New("bucket is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3Store{client: client, bucket: bucket, logger: logger}, nil
}

func (s *S3Store) PutVector(ctx context.Context, doc VectorDocument) error {
	return s.putJSON(ctx, VectorKey(doc.ID), doc)
}

func (s *S3Store) GetIndex(ctx context.Context) (IndexDocument, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(IndexKey()),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			s.logger.Info("no existing index, starting fresh",
				zap.String("key", IndexKey()))
			return IndexDocument{}, nil
		}
		return IndexDocument{}, fmt.Errorf("get index: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return IndexDocument{}, fmt.Errorf("read index: %w", err)
	}

	var doc IndexDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return IndexDocument{}, fmt.Errorf("decode index: %w", err)
	}
	return doc, nil
}

func (s *S3Store) PutIndex(ctx context.Context, doc IndexDocument) error {
	return s.putJSON(ctx, IndexKey(), doc)
}

func (s *S3Store) putJSON(ctx context.Context, key string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", ErrStoreWrite, key, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(data),
		ContentType:          aws.String("application/json"),
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return fmt.Errorf("%w: put %s: %v", ErrStoreWrite, key, err)
	}
	return nil
}
