package share

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/diewo77/pcquote/internal/config"
	"google.golang.org/api/option"
)

// GCS shares through a Google Cloud Storage bucket with signed URLs.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
	ttl    time.Duration
}

// NewGCS uses the credentials file when configured, otherwise application
// default credentials.
func NewGCS(ctx context.Context, cfg config.ShareConfig) (*GCS, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs share: bucket is required")
	}
	var opts []option.ClientOption
	if cfg.GCSCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentials))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs share: %w", err)
	}
	return &GCS{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix, ttl: cfg.LinkTTLDuration()}, nil
}

func (g *GCS) Share(ctx context.Context, key, contentType string, body []byte) (*Link, error) {
	objectKey := ObjectKey(g.prefix, key)
	w := g.client.Bucket(g.bucket).Object(objectKey).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("gcs write %s: %w", objectKey, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gcs close %s: %w", objectKey, err)
	}
	expires := time.Now().Add(g.ttl)
	url, err := g.client.Bucket(g.bucket).SignedURL(objectKey, &storage.SignedURLOptions{
		Method:  http.MethodGet,
		Expires: expires,
	})
	if err != nil {
		return nil, fmt.Errorf("gcs sign %s: %w", objectKey, err)
	}
	return &Link{URL: url, ExpiresAt: expires, Provider: "gcs"}, nil
}

// Close releases the storage client.
func (g *GCS) Close() error { return g.client.Close() }
