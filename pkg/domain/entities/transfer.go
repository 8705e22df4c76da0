package entities

import (
	"fmt"
	"time"
)

// Route is the movement a transfer performs: out of one warehouse, into the
// destination warehouse and bin of the requisition
type Route struct {
	FromWarehouseID WarehouseID `json:"from_warehouse_id"`
	ToWarehouseID   WarehouseID `json:"to_warehouse_id"`
	ToBinID         BinID       `json:"to_bin_id"`
}

// TransferInstruction moves Qty of one item out of one specific source bin.
// Bin, supplier and stock figures come from the stock record drawn from.
type TransferInstruction struct {
	SKU             string      `json:"sku"`
	ItemID          string      `json:"item_id"`
	ItemName        string      `json:"item_name"`
	FromWarehouseID WarehouseID `json:"from_warehouse_id"`
	ToWarehouseID   WarehouseID `json:"to_warehouse_id"`
	FromBinID       BinID       `json:"from_bin_id"`
	FromBinName     string      `json:"from_bin_name"`
	ToBinID         BinID       `json:"to_bin_id"`
	Qty             Quantity    `json:"qty"`
	SupplierID      string      `json:"supplier_id,omitempty"`

	// Stock figures of the source bin at submission time
	BinOnHand    Quantity `json:"bin_on_hand"`
	BinAvailable Quantity `json:"bin_available"`

	// Figures of the demand line this instruction serves
	RequestedQty         Quantity `json:"requested_qty"`
	RequestedQtyOriginal Quantity `json:"requested_qty_original"`
	ReceivedQty          Quantity `json:"received_qty"`
}

// LineShortage records demand that could not be drawn at submission time
type LineShortage struct {
	SKU               string   `json:"sku"`
	ItemName          string   `json:"item_name"`
	Needed            Quantity `json:"needed"`
	AvailableAtSubmit Quantity `json:"available_at_submit"`
}

// TransferPlan is the output of the transfer builder
type TransferPlan struct {
	Route        Route                 `json:"route"`
	Instructions []TransferInstruction `json:"instructions"`
	Shortages    []LineShortage        `json:"shortages"`
}

// Empty reports whether the plan moves nothing
func (p TransferPlan) Empty() bool {
	return len(p.Instructions) == 0
}

// TotalQty sums instruction quantities for one SKU (case-insensitive)
func (p TransferPlan) TotalQty(sku string) Quantity {
	key := NormalizeSKU(sku)
	total := ZeroQty
	for _, in := range p.Instructions {
		if NormalizeSKU(in.SKU) == key {
			total = total.Add(in.Qty)
		}
	}
	return total
}

// TransferDocument is a submitted transfer as handed to the persistence
// collaborator. TransferNo, CreatedAt and UpdatedAt are assigned by the store.
type TransferDocument struct {
	ID             string                `json:"id"`
	TransferNo     string                `json:"transfer_no"`
	RequisitionID  string                `json:"requisition_id"`
	RequisitionNo  string                `json:"requisition_no"`
	Route          Route                 `json:"route"`
	Instructions   []TransferInstruction `json:"instructions"`
	Shortages      []LineShortage        `json:"shortages"`
	IdempotencyKey string                `json:"idempotency_key"`
	CreatedBy      string                `json:"created_by"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedBy      string                `json:"updated_by"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// FormatTransferNo formats the document number of the seq-th transfer of a
// day, as TRF-YYYYMMDD-NNNN
func FormatTransferNo(day time.Time, seq int) string {
	return fmt.Sprintf("TRF-%s-%04d", day.Format("20060102"), seq)
}

// TransferNoPrefix returns the number prefix shared by the transfers of a day
func TransferNoPrefix(day time.Time) string {
	return "TRF-" + day.Format("20060102") + "-"
}
