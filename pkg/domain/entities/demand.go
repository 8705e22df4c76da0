package entities

import (
	"strings"
	"time"
)

// RequisitionLine is a material requisition line as received from the
// requisition service
type RequisitionLine struct {
	ItemID      string   `json:"item_id"`
	SKU         string   `json:"sku"`
	ItemName    string   `json:"item_name"`
	UOMName     string   `json:"uom_name"`
	Qty         Quantity `json:"qty"`
	ReceivedQty Quantity `json:"received_qty"`
}

// Requisition is a material requisition (MR). The destination warehouse and
// bin are the ones the requisition was raised for.
type Requisition struct {
	ID                     string            `json:"id"`
	Number                 string            `json:"number"`
	DestinationWarehouseID WarehouseID       `json:"destination_warehouse_id"`
	DestinationBinID       BinID             `json:"destination_bin_id"`
	DestinationBinName     string            `json:"destination_bin_name"`
	Requester              string            `json:"requester"`
	Date                   time.Time         `json:"date"`
	Lines                  []RequisitionLine `json:"lines"`
}

// DisplayNumber returns the requisition number, or a generated one when the
// requisition has none
func (r Requisition) DisplayNumber() string {
	if r.Number != "" {
		return r.Number
	}
	return "MRQ-" + r.ID
}

// Completed reports whether every line has been fully received. A
// requisition without lines is never completed.
func (r Requisition) Completed() bool {
	if len(r.Lines) == 0 {
		return false
	}
	for _, l := range r.Lines {
		if !l.Qty.IsPositive() || l.ReceivedQty.LessThan(l.Qty) {
			return false
		}
	}
	return true
}

// RemainingQty returns the outstanding quantity summed over all lines
func (r Requisition) RemainingQty() Quantity {
	total := ZeroQty
	for _, l := range r.Lines {
		total = total.Add(l.Qty.Sub(l.ReceivedQty).NonNegative())
	}
	return total
}

// DemandLine is an outstanding requisition line with received quantities
// already subtracted out
type DemandLine struct {
	ItemID               string
	SKU                  string
	ItemName             string
	UOM                  string
	RequestedQtyOriginal Quantity
	ReceivedQty          Quantity
	RemainingQty         Quantity
}

// Key returns the normalized SKU of the line
func (l DemandLine) Key() SKU {
	return NormalizeSKU(l.SKU)
}

// NewDemandLine derives a DemandLine from a requisition line. The second
// result is false when the line carries no item, no SKU or nothing left to
// deliver; such lines take no part in allocation.
func NewDemandLine(line RequisitionLine) (DemandLine, bool) {
	sku := strings.TrimSpace(line.SKU)
	remaining := line.Qty.Sub(line.ReceivedQty).NonNegative()
	if strings.TrimSpace(line.ItemID) == "" || sku == "" || !remaining.IsPositive() {
		return DemandLine{}, false
	}

	name := strings.TrimSpace(line.ItemName)
	if name == "" {
		name = sku
	}

	return DemandLine{
		ItemID:               strings.TrimSpace(line.ItemID),
		SKU:                  sku,
		ItemName:             name,
		UOM:                  strings.TrimSpace(line.UOMName),
		RequestedQtyOriginal: line.Qty,
		ReceivedQty:          line.ReceivedQty,
		RemainingQty:         remaining,
	}, true
}

// DemandSet holds the outstanding lines of one requisition
type DemandSet struct {
	RequisitionID string
	Lines         []DemandLine
}

// NewDemandSet builds the demand set of a requisition, keeping only lines
// with something left to deliver
func NewDemandSet(req Requisition) DemandSet {
	set := DemandSet{RequisitionID: req.ID}
	for _, raw := range req.Lines {
		if line, ok := NewDemandLine(raw); ok {
			set.Lines = append(set.Lines, line)
		}
	}
	return set
}

// Empty reports whether nothing is outstanding
func (d DemandSet) Empty() bool {
	return len(d.Lines) == 0 || !d.TotalRemaining().IsPositive()
}

// TotalRemaining sums RemainingQty over all lines
func (d DemandSet) TotalRemaining() Quantity {
	total := ZeroQty
	for _, l := range d.Lines {
		total = total.Add(l.RemainingQty)
	}
	return total
}

// SKUs returns the set of normalized SKUs demanded
func (d DemandSet) SKUs() map[SKU]struct{} {
	skus := make(map[SKU]struct{}, len(d.Lines))
	for _, l := range d.Lines {
		skus[l.Key()] = struct{}{}
	}
	return skus
}
