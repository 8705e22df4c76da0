package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
	"github.com/vsinha/stocktransfer/pkg/domain/repositories"
)

// TransferRepository provides in-memory transfer storage
type TransferRepository struct {
	mu     sync.Mutex
	docs   map[string]entities.TransferDocument
	byKey  map[string]string
	perDay map[string]int
	now    func() time.Time
}

// NewTransferRepository creates a new in-memory transfer repository
func NewTransferRepository() *TransferRepository {
	return NewTransferRepositoryWithClock(time.Now)
}

// NewTransferRepositoryWithClock creates a repository numbering transfers by
// the dates now returns
func NewTransferRepositoryWithClock(now func() time.Time) *TransferRepository {
	return &TransferRepository{
		docs:   make(map[string]entities.TransferDocument),
		byKey:  make(map[string]string),
		perDay: make(map[string]int),
		now:    now,
	}
}

// Verify interface compliance
var _ repositories.TransferRepository = (*TransferRepository)(nil)

// SaveTransfer stores a copy of doc with its number and timestamps assigned
func (r *TransferRepository) SaveTransfer(ctx context.Context, doc *entities.TransferDocument) (*entities.TransferDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if doc.IdempotencyKey != "" {
		if id, exists := r.byKey[doc.IdempotencyKey]; exists {
			stored := r.docs[id]
			return &stored, entities.ErrDuplicateSubmission
		}
	}

	saved := *doc
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}
	if _, exists := r.docs[saved.ID]; exists {
		return nil, fmt.Errorf("transfer %s already exists", saved.ID)
	}

	now := r.now().UTC()
	prefix := entities.TransferNoPrefix(now)
	r.perDay[prefix]++
	saved.TransferNo = entities.FormatTransferNo(now, r.perDay[prefix])
	saved.CreatedAt = now
	saved.UpdatedAt = now
	saved.Instructions = append([]entities.TransferInstruction(nil), doc.Instructions...)
	saved.Shortages = append([]entities.LineShortage(nil), doc.Shortages...)

	r.docs[saved.ID] = saved
	if saved.IdempotencyKey != "" {
		r.byKey[saved.IdempotencyKey] = saved.ID
	}

	out := saved
	return &out, nil
}

// GetTransfer returns a copy of a stored transfer
func (r *TransferRepository) GetTransfer(ctx context.Context, id string) (*entities.TransferDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, exists := r.docs[id]
	if !exists {
		return nil, fmt.Errorf("transfer %s: %w", id, entities.ErrNotFound)
	}
	return &doc, nil
}

// TransferredRequisitionIDs lists requisitions with a stored transfer
func (r *TransferRepository) TransferredRequisitionIDs(ctx context.Context) (map[string]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make(map[string]struct{}, len(r.docs))
	for _, doc := range r.docs {
		ids[doc.RequisitionID] = struct{}{}
	}
	return ids, nil
}

// Len returns the number of stored transfers
func (r *TransferRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}
