package repositories

import (
	"context"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

// TransferRepository persists submitted transfer documents
type TransferRepository interface {
	// SaveTransfer assigns the document its ID when empty, its TransferNo and
	// its timestamps. A document whose IdempotencyKey was already stored is
	// not written again: the stored document is returned together with
	// entities.ErrDuplicateSubmission.
	SaveTransfer(ctx context.Context, doc *entities.TransferDocument) (*entities.TransferDocument, error)

	// GetTransfer returns entities.ErrNotFound when the id is unknown.
	GetTransfer(ctx context.Context, id string) (*entities.TransferDocument, error)

	TransferredRequisitionLister
}

// TransferredRequisitionLister lists requisitions with at least one stored
// transfer
type TransferredRequisitionLister interface {
	TransferredRequisitionIDs(ctx context.Context) (map[string]struct{}, error)
}
