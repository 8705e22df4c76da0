package entities

import (
	"errors"
	"testing"
	"time"
)

func TestStockRecord_Validation(t *testing.T) {
	validRecord, err := NewStockRecord(StockEntry{
		SKU:         "  RICE-5KG ",
		ItemID:      "101",
		WarehouseID: "WH-1",
		BinID:       "B-1",
		OnHand:      NewQuantity(10),
		Reserved:    NewQuantity(3),
	})
	if err != nil {
		t.Fatalf("Expected valid stock record creation to succeed: %v", err)
	}
	if validRecord.SKU != "RICE-5KG" {
		t.Errorf("Expected trimmed SKU RICE-5KG, got %q", validRecord.SKU)
	}
	if validRecord.Key() != "rice-5kg" {
		t.Errorf("Expected key rice-5kg, got %q", validRecord.Key())
	}
	if validRecord.Available.String() != "7" {
		t.Errorf("Expected available to default to on hand minus reserved (7), got %s", validRecord.Available)
	}

	testCases := []struct {
		name        string
		entry       StockEntry
		expectError string
	}{
		{"empty sku", StockEntry{SKU: " ", WarehouseID: "WH-1"}, "invalid stock record: sku cannot be empty"},
		{"empty warehouse", StockEntry{SKU: "RICE"}, "invalid stock record: warehouse cannot be empty for sku RICE"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewStockRecord(tc.entry)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if !errors.Is(err, ErrInvalidStockRecord) {
				t.Errorf("Expected ErrInvalidStockRecord, got %v", err)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestStockRecord_ExplicitAvailableWins(t *testing.T) {
	available := NewQuantity(2)
	record, err := NewStockRecord(StockEntry{
		SKU:         "OIL",
		WarehouseID: "WH-1",
		OnHand:      NewQuantity(10),
		Reserved:    NewQuantity(1),
		Available:   &available,
	})
	if err != nil {
		t.Fatalf("Expected valid stock record creation to succeed: %v", err)
	}
	if record.Available.String() != "2" {
		t.Errorf("Expected explicit available 2, got %s", record.Available)
	}
}

func TestStockSnapshot_IsImmutable(t *testing.T) {
	records := []StockRecord{
		{SKU: "A", WarehouseID: "WH-1", Available: NewQuantity(5)},
		{SKU: "B", WarehouseID: "WH-2", Available: NewQuantity(7)},
	}
	snapshot := NewStockSnapshot(records, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	records[0].Available = NewQuantity(99)
	if snapshot.At(0).Available.String() != "5" {
		t.Errorf("Snapshot changed when the source slice was mutated")
	}

	out := snapshot.Records()
	out[1].Available = NewQuantity(0)
	if snapshot.At(1).Available.String() != "7" {
		t.Errorf("Snapshot changed when the returned slice was mutated")
	}

	inWH1 := snapshot.Filter(func(r StockRecord) bool { return r.WarehouseID == "WH-1" })
	if len(inWH1) != 1 || inWH1[0].SKU != "A" {
		t.Errorf("Expected one record for WH-1, got %+v", inWH1)
	}
}

func TestQuantity_Clamp(t *testing.T) {
	testCases := []struct {
		name     string
		value    string
		lo, hi   string
		expected string
	}{
		{"inside range", "5", "0", "10", "5"},
		{"above range", "15", "0", "10", "10"},
		{"below range", "-3", "0", "10", "0"},
		{"fractional", "2.75", "0", "2.5", "2.5"},
		{"inverted bounds yield lower bound", "5", "0", "-1", "0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := MustParseQuantity(tc.value).Clamp(MustParseQuantity(tc.lo), MustParseQuantity(tc.hi))
			if got.String() != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestQuantity_JSON(t *testing.T) {
	var q Quantity
	if err := q.UnmarshalJSON([]byte(`"12.5"`)); err != nil {
		t.Fatalf("Failed to unmarshal quoted quantity: %v", err)
	}
	if q.String() != "12.5" {
		t.Errorf("Expected 12.5, got %s", q)
	}
	if err := q.UnmarshalJSON([]byte(`40`)); err != nil {
		t.Fatalf("Failed to unmarshal numeric quantity: %v", err)
	}
	data, _ := q.MarshalJSON()
	if string(data) != "40" {
		t.Errorf("Expected 40, got %s", data)
	}
	if err := q.UnmarshalJSON([]byte(`"abc"`)); err == nil {
		t.Errorf("Expected error for non-numeric quantity")
	}
}
