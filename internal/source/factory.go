package source

import (
	"context"
	"fmt"
	"strings"

	"casefile/internal/catalog"
	"casefile/internal/config"
	"casefile/internal/model"
)

// NewListerFactory builds a catalog.RemoteListerFactory from the configured
// remotes. A remote source's path has the form "s3://bucket/prefix"; the
// bucket selects the matching remote config entry for region and credentials.
// Buckets without an entry fall back to the default AWS credential chain.
func NewListerFactory(remotes []config.RemoteConfig) catalog.RemoteListerFactory {
	return func(src *model.Source) (catalog.RemoteLister, error) {
		if src.Location != model.LocationS3 {
			return nil, fmt.Errorf("unsupported source location: %s", src.Location)
		}

		bucket, prefix, err := ParseS3Path(src.Path)
		if err != nil {
			return nil, err
		}

		var cfg config.RemoteConfig
		for _, rc := range remotes {
			if rc.Type == "s3" && rc.S3Bucket == bucket {
				cfg = rc
				break
			}
		}

		return NewS3Lister(context.Background(), cfg, bucket, prefix)
	}
}

// ParseS3Path splits an "s3://bucket/prefix" descriptor into bucket and
// prefix. The prefix may be empty.
func ParseS3Path(path string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(path, "s3://")
	if !ok || rest == "" {
		return "", "", fmt.Errorf("invalid s3 source path: %q", path)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("invalid s3 source path: %q", path)
	}
	return bucket, prefix, nil
}
