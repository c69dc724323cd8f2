package discovery

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3GetAPI is the slice of s3.Client the getter uses.
type s3GetAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Getter adapts an S3 client to the ObjectGetter interface.
type S3Getter struct {
	client s3GetAPI
}

// NewS3Getter wraps client.
func NewS3Getter(client s3GetAPI) *S3Getter {
	return &S3Getter{client: client}
}

func (g *S3Getter) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := g.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}
