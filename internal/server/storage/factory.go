package storage

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	sc "github.com/dmitrijs2005/recipeshare/internal/server/config"
	"github.com/prometheus/client_golang/prometheus"
)

// New builds the configured backend once and wraps it with metrics.
func New(ctx context.Context, cfg *sc.Config, reg prometheus.Registerer) (ObjectStore, error) {
	var (
		store ObjectStore
		err   error
	)
	switch cfg.StorageBackend {
	case sc.StorageS3:
		store, err = NewS3Store(ctx, cfg)
		if err != nil {
			return nil, err
		}
	case sc.StorageMemory:
		store = NewMemoryStore(cfg.S3PublicBaseURL)
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", common.ErrorConfiguration, cfg.StorageBackend)
	}
	return NewInstrumented(store, reg)
}
