package cache

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
	"github.com/vsinha/stocktransfer/pkg/domain/repositories"
)

// StockRepository serves the last snapshot fetched from an upstream stock
// repository. The first read loads it; later reloads happen on Refresh.
type StockRepository struct {
	upstream repositories.StockRepository
	logger   *zap.Logger

	mu       sync.RWMutex
	snapshot entities.StockSnapshot
	loaded   bool
}

var _ repositories.StockRepository = (*StockRepository)(nil)

// NewStockRepository wraps upstream in a snapshot cache
func NewStockRepository(upstream repositories.StockRepository, logger *zap.Logger) *StockRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockRepository{upstream: upstream, logger: logger.Named("stock_cache")}
}

// GetSnapshot returns the cached snapshot, loading it on first use
func (r *StockRepository) GetSnapshot(ctx context.Context) (entities.StockSnapshot, error) {
	r.mu.RLock()
	snapshot, loaded := r.snapshot, r.loaded
	r.mu.RUnlock()
	if loaded {
		return snapshot, nil
	}

	if err := r.Refresh(ctx); err != nil {
		return entities.StockSnapshot{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot, nil
}

// Refresh fetches a new snapshot. On failure the cached one is kept.
func (r *StockRepository) Refresh(ctx context.Context) error {
	snapshot, err := r.upstream.GetSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("refresh stock snapshot: %w", err)
	}

	r.mu.Lock()
	r.snapshot = snapshot
	r.loaded = true
	r.mu.Unlock()

	r.logger.Info("stock snapshot refreshed",
		zap.Int("records", snapshot.Len()),
		zap.Time("taken_at", snapshot.TakenAt()))
	return nil
}

// Invalidate drops the cached snapshot so the next read reloads it
func (r *StockRepository) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = entities.StockSnapshot{}
	r.loaded = false
}
