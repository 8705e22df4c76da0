package repositories

import (
	"context"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

// RequisitionRepository provides access to material requisitions
type RequisitionRepository interface {
	// GetRequisition returns entities.ErrNotFound when the id is unknown.
	GetRequisition(ctx context.Context, id string) (*entities.Requisition, error)
	ListRequisitions(ctx context.Context) ([]*entities.Requisition, error)
}

// WarehouseRepository provides access to the warehouse master list
type WarehouseRepository interface {
	ListWarehouses(ctx context.Context) ([]entities.Warehouse, error)
}
