package events

import (
	"time"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

const (
	TransferSubmittedEvent    = "transfer.submitted"
	ShortageIdentifiedEvent   = "shortage.identified"
	AllocationRecomputedEvent = "allocation.recomputed"
)

// AllTransferEvents lists every event type the transfer service publishes
var AllTransferEvents = []string{
	TransferSubmittedEvent,
	ShortageIdentifiedEvent,
	AllocationRecomputedEvent,
}

type TransferSubmitted struct {
	TransferID       string         `json:"transfer_id"`
	TransferNo       string         `json:"transfer_no"`
	RequisitionID    string         `json:"requisition_id"`
	Route            entities.Route `json:"route"`
	InstructionCount int            `json:"instruction_count"`
	ShortageCount    int            `json:"shortage_count"`
}

type ShortageIdentified struct {
	TransferID    string                `json:"transfer_id"`
	RequisitionID string                `json:"requisition_id"`
	Shortage      entities.LineShortage `json:"shortage"`
}

type AllocationRecomputed struct {
	RequisitionID         string               `json:"requisition_id"`
	SourceWarehouseID     entities.WarehouseID `json:"source_warehouse_id"`
	LineCount             int                  `json:"line_count"`
	ShortageCount         int                  `json:"shortage_count"`
	TransferableLineCount int                  `json:"transferable_line_count"`
}

func NewTransferSubmittedEvent(doc entities.TransferDocument, at time.Time) Event {
	return NewEventAt(TransferSubmittedEvent, doc.RequisitionID, TransferSubmitted{
		TransferID:       doc.ID,
		TransferNo:       doc.TransferNo,
		RequisitionID:    doc.RequisitionID,
		Route:            doc.Route,
		InstructionCount: len(doc.Instructions),
		ShortageCount:    len(doc.Shortages),
	}, at)
}

func NewShortageIdentifiedEvent(doc entities.TransferDocument, shortage entities.LineShortage, at time.Time) Event {
	return NewEventAt(ShortageIdentifiedEvent, doc.RequisitionID, ShortageIdentified{
		TransferID:    doc.ID,
		RequisitionID: doc.RequisitionID,
		Shortage:      shortage,
	}, at)
}

func NewAllocationRecomputedEvent(
	requisitionID string,
	source entities.WarehouseID,
	summary entities.AllocationSummary,
	at time.Time,
) Event {
	return NewEventAt(AllocationRecomputedEvent, requisitionID, AllocationRecomputed{
		RequisitionID:         requisitionID,
		SourceWarehouseID:     source,
		LineCount:             len(summary.Lines),
		ShortageCount:         summary.ShortageCount,
		TransferableLineCount: summary.TransferableLineCount,
	}, at)
}
