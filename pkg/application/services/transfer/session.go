package transfer

import (
	"errors"
	"fmt"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
	"github.com/vsinha/stocktransfer/pkg/domain/services/allocation"
)

// State is the submission state of a session
type State int

const (
	// Empty means a requisition, a source or a transfer quantity is missing
	Empty State = iota
	// Ready means the selection is complete and at least one line transfers
	Ready
	// Submitted means the plan was handed to the transfer store
	Submitted
)

func (s State) String() string {
	switch s {
	case Empty:
		return "EMPTY"
	case Ready:
		return "READY"
	case Submitted:
		return "SUBMITTED"
	default:
		return "UNKNOWN"
	}
}

// ErrAlreadySubmitted is returned when a submitted session is changed or
// built again
var ErrAlreadySubmitted = errors.New("transfer already submitted")

// Session holds one user's transfer selection and recomputes the allocation
// synchronously whenever the snapshot, the requisition or the source changes.
// A Session is not safe for concurrent use.
type Session struct {
	snapshot   entities.StockSnapshot
	warehouses []entities.Warehouse

	requisition *entities.Requisition
	demand      entities.DemandSet
	source      entities.WarehouseID
	summary     entities.AllocationSummary
	submitted   bool
}

// NewSession creates a session over a stock snapshot and the warehouse master
func NewSession(snapshot entities.StockSnapshot, warehouses []entities.Warehouse) *Session {
	return &Session{
		snapshot:   snapshot,
		warehouses: append([]entities.Warehouse(nil), warehouses...),
	}
}

// SelectRequisition makes req the requisition being fulfilled. Transfer
// quantities are auto-filled again. A source equal to the new destination is
// cleared. A requisition with nothing outstanding is rejected and the
// previous selection is kept.
func (s *Session) SelectRequisition(req *entities.Requisition) error {
	if s.submitted {
		return ErrAlreadySubmitted
	}
	if req == nil {
		return entities.Reject(entities.CodeNoSelection, "requisition_id", "select a requisition")
	}

	demand := entities.NewDemandSet(*req)
	if demand.Empty() {
		return entities.Reject(entities.CodeNoRemainingQuantity, "requisition_id",
			fmt.Sprintf("requisition %s has no remaining quantity", req.DisplayNumber()))
	}

	selected := *req
	s.requisition = &selected
	s.demand = demand
	if s.source != "" && s.source == req.DestinationWarehouseID {
		s.source = ""
	}
	s.recompute(nil)
	return nil
}

// ClearRequisition drops the requisition and its allocation. The source is
// kept.
func (s *Session) ClearRequisition() {
	s.requisition = nil
	s.demand = entities.DemandSet{}
	s.summary = entities.AllocationSummary{}
	s.submitted = false
}

// SelectSource sets the source warehouse; an empty id clears it. Entered
// quantities still within the new caps are preserved.
func (s *Session) SelectSource(id entities.WarehouseID) error {
	if s.submitted {
		return ErrAlreadySubmitted
	}
	if id != "" && s.requisition != nil && id == s.requisition.DestinationWarehouseID {
		return entities.Reject(entities.CodeNoSelection, "source_warehouse_id",
			"source warehouse must differ from the destination")
	}

	s.source = id
	s.recompute(s.entered())
	return nil
}

// UpdateSnapshot replaces the stock snapshot, re-clamping entered quantities
func (s *Session) UpdateSnapshot(snapshot entities.StockSnapshot) {
	s.snapshot = snapshot
	s.recompute(s.entered())
}

// SetTransferQty sets the transfer quantity of the lines for sku, clamped
// into [0, maxTransferQty]. It returns the stored value.
func (s *Session) SetTransferQty(sku string, qty entities.Quantity) (entities.Quantity, error) {
	if s.submitted {
		return entities.ZeroQty, ErrAlreadySubmitted
	}

	key := entities.NormalizeSKU(sku)
	stored := entities.ZeroQty
	found := false
	for i := range s.summary.Lines {
		line := &s.summary.Lines[i]
		if entities.NormalizeSKU(line.SKU) != key {
			continue
		}
		line.TransferQty = allocation.ClampTransferQty(qty, line.MaxTransferQty)
		if line.Status == entities.Short {
			line.TransferQty = entities.ZeroQty
		}
		stored = line.TransferQty
		found = true
	}
	if !found {
		return entities.ZeroQty, fmt.Errorf("%w: sku %s is not on the requisition", entities.ErrNotFound, sku)
	}
	return stored, nil
}

func (s *Session) entered() []entities.Quantity {
	entered := make([]entities.Quantity, len(s.summary.Lines))
	for i, line := range s.summary.Lines {
		entered[i] = line.TransferQty
	}
	return entered
}

func (s *Session) recompute(entered []entities.Quantity) {
	if s.requisition == nil {
		s.summary = entities.AllocationSummary{}
		return
	}
	ix := allocation.BuildIndex(s.snapshot, s.demand.SKUs(), s.source)
	s.summary = allocation.Allocate(s.demand, ix, entered)
}

// Requisition returns the selected requisition, or nil
func (s *Session) Requisition() *entities.Requisition {
	return s.requisition
}

// Demand returns the outstanding lines of the selected requisition
func (s *Session) Demand() entities.DemandSet {
	return s.demand
}

// Source returns the selected source warehouse
func (s *Session) Source() entities.WarehouseID {
	return s.source
}

// Snapshot returns the stock snapshot the allocation was computed on
func (s *Session) Snapshot() entities.StockSnapshot {
	return s.snapshot
}

// Allocation returns a copy of the current allocation
func (s *Session) Allocation() entities.AllocationSummary {
	out := s.summary
	out.Lines = append([]entities.AllocationResult(nil), s.summary.Lines...)
	return out
}

// Route returns the movement the session would submit
func (s *Session) Route() entities.Route {
	route := entities.Route{FromWarehouseID: s.source}
	if s.requisition != nil {
		route.ToWarehouseID = s.requisition.DestinationWarehouseID
		route.ToBinID = s.requisition.DestinationBinID
	}
	return route
}

// SourceOptions lists the warehouses selectable as source
func (s *Session) SourceOptions() []entities.SourceOption {
	return SourceOptions(s.warehouses, s.snapshot, s.demand, s.Route().ToWarehouseID)
}

// CandidateRows returns the stock grid of the current selection
func (s *Session) CandidateRows() []entities.StockRecord {
	return CandidateRows(s.snapshot, s.demand, s.Route().ToWarehouseID, s.source)
}

// Shortages reports every line whose available stock is below its demand.
// They are warnings and never block submission.
func (s *Session) Shortages() []*entities.Rejection {
	var out []*entities.Rejection
	for _, line := range s.summary.Lines {
		if !line.ShortageQty.IsPositive() {
			continue
		}
		out = append(out, entities.Reject(entities.CodeLineShortage, line.SKU,
			fmt.Sprintf("%s is short by %s (remaining %s, available %s)",
				line.ItemName, line.ShortageQty, line.RemainingQty, line.AvailableQty.NonNegative())))
	}
	return out
}

// Validate checks the preconditions of the READY state and returns the
// first unmet one as a Rejection
func (s *Session) Validate() error {
	switch {
	case s.requisition == nil:
		return entities.Reject(entities.CodeNoSelection, "requisition_id", "select a requisition")
	case s.requisition.DestinationWarehouseID == "":
		return entities.Reject(entities.CodeNoSelection, "destination_warehouse_id",
			"requisition has no destination warehouse")
	case s.requisition.DestinationBinID == "":
		return entities.Reject(entities.CodeNoSelection, "destination_bin_id",
			"requisition has no destination bin")
	case s.source == "":
		return entities.Reject(entities.CodeNoSelection, "source_warehouse_id", "select a source warehouse")
	case s.source == s.requisition.DestinationWarehouseID:
		return entities.Reject(entities.CodeNoSelection, "source_warehouse_id",
			"source warehouse must differ from the destination")
	case s.demand.Empty():
		return entities.Reject(entities.CodeNoRemainingQuantity, "requisition_id",
			"requisition has no remaining quantity")
	case !s.summary.AnyTransfer():
		return entities.Reject(entities.CodeNothingToTransfer, "transfer_qty",
			"enter a transfer quantity for at least one line")
	}
	return nil
}

// State returns the submission state
func (s *Session) State() State {
	if s.submitted {
		return Submitted
	}
	if s.Validate() != nil {
		return Empty
	}
	return Ready
}

// Build validates the session and turns the allocation into a transfer plan.
// A plan without instructions is rejected as nothing to transfer and the
// session stays READY.
func (s *Session) Build() (entities.TransferPlan, error) {
	if s.submitted {
		return entities.TransferPlan{}, ErrAlreadySubmitted
	}
	if err := s.Validate(); err != nil {
		return entities.TransferPlan{}, err
	}

	plan := allocation.Build(s.snapshot, s.Route(), s.demand, s.summary)
	if plan.Empty() {
		return plan, entities.Reject(entities.CodeNothingToTransfer, "",
			"no stock left to draw for any line")
	}
	return plan, nil
}

// MarkSubmitted moves the session to SUBMITTED. Only a successful hand-off
// to the transfer store should call it.
func (s *Session) MarkSubmitted() {
	s.submitted = true
}
