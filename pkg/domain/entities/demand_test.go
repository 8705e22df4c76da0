package entities

import (
	"errors"
	"testing"
)

func TestNewDemandLine(t *testing.T) {
	testCases := []struct {
		name           string
		line           RequisitionLine
		expectOK       bool
		expectRemain   string
		expectItemName string
	}{
		{"open line", RequisitionLine{ItemID: "1", SKU: "SUGAR", ItemName: "Sugar", Qty: NewQuantity(50), ReceivedQty: NewQuantity(20)}, true, "30", "Sugar"},
		{"name defaults to sku", RequisitionLine{ItemID: "1", SKU: " SUGAR ", Qty: NewQuantity(5)}, true, "5", "SUGAR"},
		{"fully received", RequisitionLine{ItemID: "1", SKU: "SUGAR", Qty: NewQuantity(5), ReceivedQty: NewQuantity(5)}, false, "", ""},
		{"over received", RequisitionLine{ItemID: "1", SKU: "SUGAR", Qty: NewQuantity(5), ReceivedQty: NewQuantity(8)}, false, "", ""},
		{"missing item", RequisitionLine{SKU: "SUGAR", Qty: NewQuantity(5)}, false, "", ""},
		{"missing sku", RequisitionLine{ItemID: "1", SKU: "  ", Qty: NewQuantity(5)}, false, "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			line, ok := NewDemandLine(tc.line)
			if ok != tc.expectOK {
				t.Fatalf("Expected ok=%t, got %t", tc.expectOK, ok)
			}
			if !ok {
				return
			}
			if line.RemainingQty.String() != tc.expectRemain {
				t.Errorf("Expected remaining %s, got %s", tc.expectRemain, line.RemainingQty)
			}
			if line.ItemName != tc.expectItemName {
				t.Errorf("Expected item name %s, got %s", tc.expectItemName, line.ItemName)
			}
		})
	}
}

func TestRequisition_Completed(t *testing.T) {
	open := Requisition{ID: "1", Lines: []RequisitionLine{
		{ItemID: "1", SKU: "A", Qty: NewQuantity(10), ReceivedQty: NewQuantity(10)},
		{ItemID: "2", SKU: "B", Qty: NewQuantity(10), ReceivedQty: NewQuantity(4)},
	}}
	if open.Completed() {
		t.Errorf("Expected requisition with an open line to be incomplete")
	}
	if open.RemainingQty().String() != "6" {
		t.Errorf("Expected remaining 6, got %s", open.RemainingQty())
	}

	done := Requisition{ID: "2", Lines: []RequisitionLine{
		{ItemID: "1", SKU: "A", Qty: NewQuantity(10), ReceivedQty: NewQuantity(10)},
	}}
	if !done.Completed() {
		t.Errorf("Expected fully received requisition to be completed")
	}

	if (Requisition{ID: "3"}).Completed() {
		t.Errorf("Expected requisition without lines to be incomplete")
	}

	zeroQty := Requisition{ID: "4", Lines: []RequisitionLine{{ItemID: "1", SKU: "A"}}}
	if zeroQty.Completed() {
		t.Errorf("Expected line with zero quantity to keep requisition incomplete")
	}
}

func TestDemandSet(t *testing.T) {
	req := Requisition{ID: "MR-9", Lines: []RequisitionLine{
		{ItemID: "1", SKU: "Flour", Qty: NewQuantity(10)},
		{ItemID: "2", SKU: "salt", Qty: NewQuantity(3), ReceivedQty: NewQuantity(3)},
		{ItemID: "3", SKU: " YEAST", Qty: MustParseQuantity("0.5")},
	}}

	set := NewDemandSet(req)
	if len(set.Lines) != 2 {
		t.Fatalf("Expected 2 outstanding lines, got %d", len(set.Lines))
	}
	if set.TotalRemaining().String() != "10.5" {
		t.Errorf("Expected total remaining 10.5, got %s", set.TotalRemaining())
	}
	skus := set.SKUs()
	for _, want := range []SKU{"flour", "yeast"} {
		if _, ok := skus[want]; !ok {
			t.Errorf("Expected SKU %s in demand set", want)
		}
	}
	if set.Empty() {
		t.Errorf("Expected non-empty demand set")
	}
	if !NewDemandSet(Requisition{ID: "empty"}).Empty() {
		t.Errorf("Expected demand set without lines to be empty")
	}
}

func TestClassifyLine(t *testing.T) {
	testCases := []struct {
		remaining, available int64
		expected             LineStatus
	}{
		{50, 0, Short},
		{50, -5, Short},
		{50, 20, Partial},
		{50, 50, Ready},
		{50, 80, Ready},
	}

	for _, tc := range testCases {
		got := ClassifyLine(NewQuantity(tc.remaining), NewQuantity(tc.available))
		if got != tc.expected {
			t.Errorf("ClassifyLine(%d, %d) = %s, expected %s", tc.remaining, tc.available, got, tc.expected)
		}
	}
}

func TestRejection_Unwrap(t *testing.T) {
	var err error = Reject(CodeNothingToTransfer, "", "no transferable lines")
	if !errors.Is(err, ErrNothingToTransfer) {
		t.Errorf("Expected rejection to unwrap to ErrNothingToTransfer")
	}
	r, ok := AsRejection(err)
	if !ok || r.Code != CodeNothingToTransfer {
		t.Errorf("Expected AsRejection to find the rejection, got %v", r)
	}
	if err.Error() != "nothing_to_transfer: no transferable lines" {
		t.Errorf("Unexpected message %q", err.Error())
	}

	fielded := Reject(CodeNoSelection, "source_warehouse_id", "select a source warehouse")
	if fielded.Error() != "no_selection (source_warehouse_id): select a source warehouse" {
		t.Errorf("Unexpected message %q", fielded.Error())
	}
}
