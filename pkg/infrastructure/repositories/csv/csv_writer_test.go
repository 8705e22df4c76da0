package csv

import (
	"reflect"
	"testing"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

func TestWriter_WriteScenarioRoundTrip(t *testing.T) {
	loader := NewLoader()
	original, err := loader.LoadScenario(bakeryDir)
	if err != nil {
		t.Fatalf("Failed to load scenario: %v", err)
	}

	dir := t.TempDir()
	if err := NewWriter().WriteScenario(dir, original); err != nil {
		t.Fatalf("WriteScenario failed: %v", err)
	}

	reloaded, err := loader.LoadScenario(dir)
	if err != nil {
		t.Fatalf("Failed to reload scenario: %v", err)
	}

	if len(reloaded.Stock) != len(original.Stock) {
		t.Fatalf("Expected %d stock records, got %d", len(original.Stock), len(reloaded.Stock))
	}
	for i := range original.Stock {
		want, got := original.Stock[i], reloaded.Stock[i]
		if got.SKU != want.SKU || got.BinID != want.BinID || !got.Available.Equal(want.Available) {
			t.Errorf("Stock row %d: expected %+v, got %+v", i, want, got)
		}
	}
	if !reflect.DeepEqual(reloaded.Warehouses, original.Warehouses) {
		t.Errorf("Expected warehouses %v, got %v", original.Warehouses, reloaded.Warehouses)
	}
	if len(reloaded.Requisitions) != len(original.Requisitions) {
		t.Fatalf("Expected %d requisitions, got %d", len(original.Requisitions), len(reloaded.Requisitions))
	}
	for i, want := range original.Requisitions {
		got := reloaded.Requisitions[i]
		if got.ID != want.ID || len(got.Lines) != len(want.Lines) || !got.RemainingQty().Equal(want.RemainingQty()) {
			t.Errorf("Requisition %s did not round trip", want.ID)
		}
	}
}

func TestWriter_RequisitionWithoutLines(t *testing.T) {
	rows := requisitionRows([]*entities.Requisition{{ID: "9", DestinationWarehouseID: "2"}})
	if len(rows) != 1 || len(rows[0]) != len(requisitionHeader) {
		t.Fatalf("Expected one full-width row, got %v", rows)
	}
	if rows[0][6] != "" || rows[0][8] != "" {
		t.Errorf("Expected blank date and sku, got %v", rows[0])
	}
}
