package dto

import (
	"time"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

// SelectionRequest identifies a requisition, a source warehouse and the
// transfer quantities the user entered, keyed by SKU. SKUs left out are
// auto-filled to their cap.
type SelectionRequest struct {
	RequisitionID     string                       `json:"requisition_id"`
	SourceWarehouseID entities.WarehouseID         `json:"source_warehouse_id"`
	Quantities        map[string]entities.Quantity `json:"quantities,omitempty"`
}

// PreviewResponse is the recomputed allocation for a selection, plus the
// plan that would be submitted when the selection is READY
type PreviewResponse struct {
	State           string                     `json:"state"`
	RequisitionID   string                     `json:"requisition_id"`
	RequisitionNo   string                     `json:"requisition_no"`
	Route           entities.Route             `json:"route"`
	Allocation      entities.AllocationSummary `json:"allocation"`
	CandidateRows   []entities.StockRecord     `json:"candidate_rows"`
	Plan            *entities.TransferPlan     `json:"plan,omitempty"`
	Warnings        []*entities.Rejection      `json:"warnings,omitempty"`
	Blocker         *entities.Rejection        `json:"blocker,omitempty"`
	SnapshotTakenAt time.Time                  `json:"snapshot_taken_at"`
}

// SubmitRequest submits a selection on behalf of a user
type SubmitRequest struct {
	SelectionRequest
	SubmittedBy string `json:"submitted_by"`
}

// SubmitResponse carries the stored transfer. Duplicate is set when the same
// instruction set had already been submitted and the earlier transfer is
// returned instead.
type SubmitResponse struct {
	Transfer  *entities.TransferDocument `json:"transfer"`
	Duplicate bool                       `json:"duplicate"`
	Warnings  []*entities.Rejection      `json:"warnings,omitempty"`
}
