package csv

import (
	"context"
	"time"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
	"github.com/vsinha/stocktransfer/pkg/domain/repositories"
)

// StockFileRepository re-reads a stock CSV file on every snapshot request.
// Wrap it in a cache to read the file on a schedule instead.
type StockFileRepository struct {
	loader *Loader
	path   string
	now    func() time.Time
}

var _ repositories.StockRepository = (*StockFileRepository)(nil)

// NewStockFileRepository serves snapshots from the stock file at path
func NewStockFileRepository(path string) *StockFileRepository {
	return &StockFileRepository{loader: NewLoader(), path: path, now: time.Now}
}

// GetSnapshot loads the file into a snapshot taken now
func (r *StockFileRepository) GetSnapshot(ctx context.Context) (entities.StockSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return entities.StockSnapshot{}, err
	}

	records, err := r.loader.LoadStock(r.path)
	if err != nil {
		return entities.StockSnapshot{}, err
	}

	flat := make([]entities.StockRecord, 0, len(records))
	for _, record := range records {
		flat = append(flat, *record)
	}
	return entities.NewStockSnapshot(flat, r.now().UTC()), nil
}
