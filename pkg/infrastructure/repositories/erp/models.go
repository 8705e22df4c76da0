package erp

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

// envelope is the response wrapper of every ERP endpoint
type envelope[T any] struct {
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"message"`
	Data      T      `json:"data"`
}

// id accepts numeric and string identifiers. Zero and null decode as empty.
type id string

func (i *id) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(bytes.Trim(data, `"`)))
	if raw == "null" || raw == "0" {
		raw = ""
	}
	*i = id(raw)
	return nil
}

type stockRow struct {
	ID            id                 `json:"id"`
	SKU           string             `json:"sku"`
	ItemCode      string             `json:"itemCode"`
	ItemID        id                 `json:"itemId"`
	Name          string             `json:"name"`
	ItemName      string             `json:"itemName"`
	WarehouseID   id                 `json:"warehouseId"`
	WarehouseName string             `json:"warehouseName"`
	BinID         id                 `json:"binId"`
	BinName       string             `json:"binName"`
	OnHand        entities.Quantity  `json:"onHand"`
	Reserved      entities.Quantity  `json:"reserved"`
	Available     *entities.Quantity `json:"available"`
	SupplierID    id                 `json:"supplierId"`
	SupplierName  string             `json:"supplierName"`
}

func (r stockRow) entry() entities.StockEntry {
	return entities.StockEntry{
		ID:            string(r.ID),
		SKU:           firstNonBlank(r.SKU, r.ItemCode),
		ItemID:        string(r.ItemID),
		ItemName:      firstNonBlank(r.Name, r.ItemName),
		WarehouseID:   entities.WarehouseID(r.WarehouseID),
		WarehouseName: r.WarehouseName,
		BinID:         entities.BinID(r.BinID),
		BinName:       r.BinName,
		OnHand:        r.OnHand,
		Reserved:      r.Reserved,
		Available:     r.Available,
		SupplierID:    string(r.SupplierID),
		SupplierName:  r.SupplierName,
	}
}

type requisitionLine struct {
	ItemID      id                `json:"itemId"`
	ItemCode    string            `json:"itemCode"`
	SKU         string            `json:"sku"`
	ItemName    string            `json:"itemName"`
	UOMName     string            `json:"uomName"`
	Qty         entities.Quantity `json:"qty"`
	ReceivedQty entities.Quantity `json:"receivedQty"`
}

type requisition struct {
	ID            id                `json:"id"`
	MrqID         id                `json:"mrqId"`
	ReqNo         string            `json:"reqNo"`
	MrqNo         string            `json:"mrqNo"`
	OutletID      id                `json:"outletId"`
	BinID         id                `json:"binId"`
	BinName       string            `json:"binName"`
	RequesterName string            `json:"requesterName"`
	ReqDate       string            `json:"reqDate"`
	Lines         []requisitionLine `json:"lines"`
	LineItemsList []requisitionLine `json:"lineItemsList"`
}

func (r requisition) toEntity() *entities.Requisition {
	lines := r.Lines
	if len(lines) == 0 {
		lines = r.LineItemsList
	}

	req := &entities.Requisition{
		ID:                     firstNonBlank(string(r.ID), string(r.MrqID)),
		Number:                 firstNonBlank(r.ReqNo, r.MrqNo),
		DestinationWarehouseID: entities.WarehouseID(r.OutletID),
		DestinationBinID:       entities.BinID(r.BinID),
		DestinationBinName:     r.BinName,
		Requester:              r.RequesterName,
		Date:                   parseDate(r.ReqDate),
		Lines:                  make([]entities.RequisitionLine, 0, len(lines)),
	}
	for _, l := range lines {
		req.Lines = append(req.Lines, entities.RequisitionLine{
			ItemID:      string(l.ItemID),
			SKU:         firstNonBlank(l.ItemCode, l.SKU),
			ItemName:    l.ItemName,
			UOMName:     l.UOMName,
			Qty:         l.Qty,
			ReceivedQty: l.ReceivedQty,
		})
	}
	return req
}

type warehouse struct {
	ID            id     `json:"id"`
	Name          string `json:"name"`
	WarehouseName string `json:"warehouseName"`
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseDate(raw string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// decodeIDs reads the transferred requisition id list
func decodeIDs(raw json.RawMessage) (map[string]struct{}, error) {
	var ids []id
	if len(raw) == 0 || string(raw) == "null" {
		return map[string]struct{}{}, nil
	}
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(ids))
	for _, v := range ids {
		if v != "" {
			out[string(v)] = struct{}{}
		}
	}
	return out, nil
}
