package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
	"github.com/vsinha/stocktransfer/pkg/domain/repositories"
)

// RequisitionRepository provides in-memory requisition storage
type RequisitionRepository struct {
	mu           sync.RWMutex
	requisitions []entities.Requisition
	byID         map[string]int
}

// NewRequisitionRepository creates a new in-memory requisition repository
func NewRequisitionRepository() *RequisitionRepository {
	return &RequisitionRepository{
		requisitions: []entities.Requisition{},
		byID:         make(map[string]int),
	}
}

// Verify interface compliance
var _ repositories.RequisitionRepository = (*RequisitionRepository)(nil)

// LoadRequisitions adds requisitions, replacing any with the same ID
func (r *RequisitionRepository) LoadRequisitions(reqs []*entities.Requisition) error {
	for _, req := range reqs {
		r.AddRequisition(*req)
	}
	return nil
}

// AddRequisition adds or replaces one requisition
func (r *RequisitionRepository) AddRequisition(req entities.Requisition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i, exists := r.byID[req.ID]; exists {
		r.requisitions[i] = req
		return
	}
	r.byID[req.ID] = len(r.requisitions)
	r.requisitions = append(r.requisitions, req)
}

// GetRequisition returns a copy of one requisition
func (r *RequisitionRepository) GetRequisition(ctx context.Context, id string) (*entities.Requisition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, exists := r.byID[id]
	if !exists {
		return nil, fmt.Errorf("requisition %s: %w", id, entities.ErrNotFound)
	}
	req := r.requisitions[i]
	return &req, nil
}

// ListRequisitions returns copies of all requisitions in load order
func (r *RequisitionRepository) ListRequisitions(ctx context.Context) ([]*entities.Requisition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reqs := make([]*entities.Requisition, 0, len(r.requisitions))
	for i := range r.requisitions {
		req := r.requisitions[i]
		reqs = append(reqs, &req)
	}
	return reqs, nil
}

// WarehouseRepository provides in-memory warehouse master storage
type WarehouseRepository struct {
	warehouses []entities.Warehouse
}

// NewWarehouseRepository creates a warehouse repository over a fixed list
func NewWarehouseRepository(warehouses ...entities.Warehouse) *WarehouseRepository {
	return &WarehouseRepository{warehouses: append([]entities.Warehouse(nil), warehouses...)}
}

var _ repositories.WarehouseRepository = (*WarehouseRepository)(nil)

// ListWarehouses returns the warehouse list
func (r *WarehouseRepository) ListWarehouses(ctx context.Context) ([]entities.Warehouse, error) {
	return append([]entities.Warehouse(nil), r.warehouses...), nil
}
