// Package discovery enumerates template metadata records from the catalog
// tree and the design registry.
package discovery

import (
	"context"
	"errors"

	"github.com/sitesmithlabs/templateindex/internal/catalog"
)

// ErrDiscovery wraps failures that prevent a source from enumerating at
// all. Per-template problems are skipped and counted, not returned.
var ErrDiscovery = errors.New("discovery failed")

// Source enumerates template records. Catalogs are small (hundreds of
// templates), so sources return complete slices rather than streaming.
type Source interface {
	// Name identifies the source in logs and run summaries.
	Name() string

	// Discover returns the records the source found plus the number of
	// candidates skipped for missing or unreadable metadata.
	Discover(ctx context.Context) ([]catalog.Template, int, error)
}

// ObjectGetter fetches a raw object from a bucket. It decouples the
// registry source from any particular object store client.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}
