package repositories

import (
	"context"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

// StockRepository provides point-in-time views of per-bin stock
type StockRepository interface {
	GetSnapshot(ctx context.Context) (entities.StockSnapshot, error)
}
