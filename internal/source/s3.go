package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"casefile/internal/catalog"
	"casefile/internal/config"
)

// S3Lister enumerates the objects of an S3 source. Only object metadata is
// fetched; content never leaves the bucket, so listed objects carry no
// fingerprint.
type S3Lister struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Lister creates a lister for the given bucket and prefix. Credentials
// come from the remote config when set, otherwise from the default AWS
// credential chain.
func NewS3Lister(ctx context.Context, cfg config.RemoteConfig, bucket, prefix string) (*S3Lister, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return &S3Lister{
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// List pages through the bucket and returns one object descriptor per key
// under the prefix. Keys are returned relative to the prefix.
func (l *S3Lister) List(ctx context.Context) ([]catalog.RemoteObject, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(l.bucket),
	}
	if l.prefix != "" {
		input.Prefix = aws.String(l.prefix)
	}

	var objects []catalog.RemoteObject
	paginator := s3.NewListObjectsV2Paginator(l.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing s3 objects: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, "/") {
				continue // folder placeholder
			}
			rel := strings.TrimPrefix(key, l.prefix)
			rel = strings.TrimPrefix(rel, "/")
			if rel == "" {
				continue
			}
			objects = append(objects, catalog.RemoteObject{
				Key:        rel,
				Size:       aws.ToInt64(obj.Size),
				ModifiedAt: aws.ToTime(obj.LastModified),
			})
		}
	}
	return objects, nil
}

// Compile-time check that S3Lister implements catalog.RemoteLister
var _ catalog.RemoteLister = (*S3Lister)(nil)
