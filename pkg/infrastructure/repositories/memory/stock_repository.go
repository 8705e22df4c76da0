package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
	"github.com/vsinha/stocktransfer/pkg/domain/repositories"
)

// StockRepository provides in-memory stock storage
type StockRepository struct {
	mu       sync.RWMutex
	snapshot entities.StockSnapshot
}

// NewStockRepository creates a new in-memory stock repository
func NewStockRepository() *StockRepository {
	return &StockRepository{}
}

// Verify interface compliance
var _ repositories.StockRepository = (*StockRepository)(nil)

// LoadStock replaces the stored stock with records, stamped with takenAt
func (r *StockRepository) LoadStock(records []*entities.StockRecord, takenAt time.Time) error {
	flat := make([]entities.StockRecord, 0, len(records))
	for _, record := range records {
		flat = append(flat, *record)
	}
	r.SetSnapshot(entities.NewStockSnapshot(flat, takenAt))
	return nil
}

// SetSnapshot replaces the stored snapshot
func (r *StockRepository) SetSnapshot(snapshot entities.StockSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = snapshot
}

// GetSnapshot returns the stored snapshot
func (r *StockRepository) GetSnapshot(ctx context.Context) (entities.StockSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot, nil
}
