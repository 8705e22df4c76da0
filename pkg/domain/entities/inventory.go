package entities

import (
	"fmt"
	"strings"
	"time"
)

// SKU is a normalized stock-keeping unit: trimmed and lower-cased so that
// requisition item codes and stock records match regardless of case.
type SKU string

// NormalizeSKU trims and lower-cases a raw item code
func NormalizeSKU(raw string) SKU {
	return SKU(strings.ToLower(strings.TrimSpace(raw)))
}

// WarehouseID identifies a warehouse (outlet)
type WarehouseID string

// BinID identifies a bin inside a warehouse
type BinID string

// StockEntry is a stock row as delivered by the stock list. Available is
// optional; when nil it is derived as OnHand - Reserved.
type StockEntry struct {
	ID            string
	SKU           string
	ItemID        string
	ItemName      string
	WarehouseID   WarehouseID
	WarehouseName string
	BinID         BinID
	BinName       string
	OnHand        Quantity
	Reserved      Quantity
	Available     *Quantity
	SupplierID    string
	SupplierName  string
}

// StockRecord is one immutable row of a stock snapshot: the quantity of one
// item held in one bin of one warehouse, optionally tied to a supplier.
type StockRecord struct {
	ID            string
	SKU           string
	ItemID        string
	ItemName      string
	WarehouseID   WarehouseID
	WarehouseName string
	BinID         BinID
	BinName       string
	OnHand        Quantity
	Reserved      Quantity
	Available     Quantity
	SupplierID    string
	SupplierName  string
}

// NewStockRecord creates a validated StockRecord from a raw stock entry
func NewStockRecord(entry StockEntry) (*StockRecord, error) {
	if strings.TrimSpace(entry.SKU) == "" {
		return nil, fmt.Errorf("%w: sku cannot be empty", ErrInvalidStockRecord)
	}
	if entry.WarehouseID == "" {
		return nil, fmt.Errorf("%w: warehouse cannot be empty for sku %s", ErrInvalidStockRecord, entry.SKU)
	}

	available := entry.OnHand.Sub(entry.Reserved)
	if entry.Available != nil {
		available = *entry.Available
	}

	return &StockRecord{
		ID:            entry.ID,
		SKU:           strings.TrimSpace(entry.SKU),
		ItemID:        entry.ItemID,
		ItemName:      strings.TrimSpace(entry.ItemName),
		WarehouseID:   entry.WarehouseID,
		WarehouseName: entry.WarehouseName,
		BinID:         entry.BinID,
		BinName:       entry.BinName,
		OnHand:        entry.OnHand,
		Reserved:      entry.Reserved,
		Available:     available,
		SupplierID:    entry.SupplierID,
		SupplierName:  entry.SupplierName,
	}, nil
}

// Key returns the normalized SKU of the record
func (r StockRecord) Key() SKU {
	return NormalizeSKU(r.SKU)
}

// StockSnapshot is a point-in-time, read-only list of stock records. The
// record order is the order the records were supplied in and is preserved by
// every accessor; greedy allocation relies on it to break ties.
type StockSnapshot struct {
	records []StockRecord
	takenAt time.Time
}

// NewStockSnapshot copies records into a new snapshot
func NewStockSnapshot(records []StockRecord, takenAt time.Time) StockSnapshot {
	copied := make([]StockRecord, len(records))
	copy(copied, records)
	return StockSnapshot{records: copied, takenAt: takenAt}
}

// Len returns the number of records
func (s StockSnapshot) Len() int {
	return len(s.records)
}

// At returns the i-th record
func (s StockSnapshot) At(i int) StockRecord {
	return s.records[i]
}

// TakenAt returns when the snapshot was captured
func (s StockSnapshot) TakenAt() time.Time {
	return s.takenAt
}

// Records returns a copy of all records
func (s StockSnapshot) Records() []StockRecord {
	out := make([]StockRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Filter returns the records for which keep returns true, in snapshot order
func (s StockSnapshot) Filter(keep func(StockRecord) bool) []StockRecord {
	var out []StockRecord
	for _, r := range s.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
