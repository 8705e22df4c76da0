package entities

import "fmt"

// Warehouse is a warehouse (outlet) from the warehouse master
type Warehouse struct {
	ID   WarehouseID `json:"id"`
	Name string      `json:"name"`
}

// DisplayName returns the name, or a generated one when the master has none
func (w Warehouse) DisplayName() string {
	if w.Name != "" {
		return w.Name
	}
	return fmt.Sprintf("WH-%s", w.ID)
}

// SourceOption is a warehouse offered as the source of a transfer, annotated
// with the requisition's outstanding quantity and the on-hand stock of the
// requested items in that warehouse
type SourceOption struct {
	ID           WarehouseID `json:"id"`
	Name         string      `json:"name"`
	RequestedQty Quantity    `json:"requested_qty"`
	OnHand       Quantity    `json:"on_hand"`
	Label        string      `json:"label"`
}

// RequisitionSummary is a row of the open requisition list
type RequisitionSummary struct {
	ID                     string      `json:"id"`
	Number                 string      `json:"number"`
	DestinationWarehouseID WarehouseID `json:"destination_warehouse_id"`
	RemainingQty           Quantity    `json:"remaining_qty"`

	// Transferred is set when a transfer was already stored for the
	// requisition. Partially transferred requisitions stay open.
	Transferred bool `json:"transferred"`
}
