// Package share publishes rendered documents to object storage and hands
// back a time-limited link.
package share

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/pcquote/internal/config"
)

// ErrUnavailable means no share target is configured.
var ErrUnavailable = errors.New("share_unavailable")

// FallbackInstruction is shown when a document cannot be shared directly.
const FallbackInstruction = "Sharing is not available. Download the PDF and share it manually."

// Link is a shareable URL for an uploaded document.
type Link struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Provider  string    `json:"provider"`
}

// Sharer uploads a document and returns a link to it.
type Sharer interface {
	Share(ctx context.Context, key, contentType string, body []byte) (*Link, error)
}

// Disabled is used when no provider is configured.
type Disabled struct{}

func (Disabled) Share(context.Context, string, string, []byte) (*Link, error) {
	return nil, ErrUnavailable
}

// New builds the configured sharer. An empty provider disables sharing.
func New(ctx context.Context, cfg config.ShareConfig) (Sharer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "none":
		return Disabled{}, nil
	case "s3":
		return NewS3(ctx, cfg)
	case "gcs":
		return NewGCS(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown share provider %q", cfg.Provider)
	}
}

// ObjectKey places a document file under the configured prefix.
func ObjectKey(prefix, filename string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return filename
	}
	return prefix + "/" + filename
}
