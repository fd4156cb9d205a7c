// Package cache implementa el cache del catálogo público (redis, o noop sin redis).
package cache

import (
	"context"

	"github.com/raposo-pdv/pdv-api/internal/application/catalog"
)

var _ catalog.CatalogCache = NoopCatalogCache{}

// NoopCatalogCache nunca encuentra nada; se usa cuando REDIS_ADDR está vacío.
type NoopCatalogCache struct{}

func (NoopCatalogCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopCatalogCache) Set(_ context.Context, _ string, _ []byte) error {
	return nil
}

func (NoopCatalogCache) Invalidate(_ context.Context, _ string) error {
	return nil
}
