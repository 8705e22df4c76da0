package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestStockRepository_LoadAndSnapshot(t *testing.T) {
	repo := NewStockRepository()
	takenAt := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	records := []*entities.StockRecord{
		{SKU: "FLOUR", WarehouseID: "1", BinID: "A", Available: entities.NewQuantity(10)},
		{SKU: "SALT", WarehouseID: "1", BinID: "B", Available: entities.NewQuantity(4)},
	}
	if err := repo.LoadStock(records, takenAt); err != nil {
		t.Fatalf("Failed to load stock: %v", err)
	}

	snapshot, err := repo.GetSnapshot(context.Background())
	if err != nil {
		t.Fatalf("Failed to get snapshot: %v", err)
	}
	if snapshot.Len() != 2 {
		t.Fatalf("Expected 2 records, got %d", snapshot.Len())
	}
	if !snapshot.TakenAt().Equal(takenAt) {
		t.Errorf("Expected snapshot time %v, got %v", takenAt, snapshot.TakenAt())
	}

	records[0].Available = entities.NewQuantity(99)
	if snapshot.At(0).Available.String() != "10" {
		t.Errorf("Expected snapshot to be unaffected by later edits, got %s", snapshot.At(0).Available)
	}
}

func TestRequisitionRepository_GetAndList(t *testing.T) {
	repo := NewRequisitionRepository()
	ctx := context.Background()

	err := repo.LoadRequisitions([]*entities.Requisition{
		{ID: "1", Number: "MRQ-001", DestinationWarehouseID: "2"},
		{ID: "2", Number: "MRQ-002", DestinationWarehouseID: "3"},
	})
	if err != nil {
		t.Fatalf("Failed to load requisitions: %v", err)
	}
	repo.AddRequisition(entities.Requisition{ID: "1", Number: "MRQ-001-R"})

	req, err := repo.GetRequisition(ctx, "1")
	if err != nil {
		t.Fatalf("Failed to get requisition: %v", err)
	}
	if req.Number != "MRQ-001-R" {
		t.Errorf("Expected replaced requisition, got %s", req.Number)
	}

	all, err := repo.ListRequisitions(ctx)
	if err != nil {
		t.Fatalf("Failed to list requisitions: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 requisitions, got %d", len(all))
	}

	_, err = repo.GetRequisition(ctx, "missing")
	if !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTransferRepository_NumbersPerDay(t *testing.T) {
	day := time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)
	now := day
	repo := NewTransferRepositoryWithClock(func() time.Time { return now })
	ctx := context.Background()

	first, err := repo.SaveTransfer(ctx, &entities.TransferDocument{RequisitionID: "1", IdempotencyKey: "k1"})
	if err != nil {
		t.Fatalf("Failed to save transfer: %v", err)
	}
	second, err := repo.SaveTransfer(ctx, &entities.TransferDocument{RequisitionID: "2", IdempotencyKey: "k2"})
	if err != nil {
		t.Fatalf("Failed to save transfer: %v", err)
	}
	now = day.Add(2 * time.Hour)
	third, err := repo.SaveTransfer(ctx, &entities.TransferDocument{RequisitionID: "2", IdempotencyKey: "k3"})
	if err != nil {
		t.Fatalf("Failed to save transfer: %v", err)
	}

	expected := []string{"TRF-20250301-0001", "TRF-20250301-0002", "TRF-20250302-0001"}
	for i, doc := range []*entities.TransferDocument{first, second, third} {
		if doc.TransferNo != expected[i] {
			t.Errorf("Expected transfer number %s, got %s", expected[i], doc.TransferNo)
		}
		if doc.ID == "" {
			t.Errorf("Expected transfer %d to be assigned an ID", i)
		}
	}
	if !first.CreatedAt.Equal(day) || !first.UpdatedAt.Equal(day) {
		t.Errorf("Expected audit timestamps %v, got %v/%v", day, first.CreatedAt, first.UpdatedAt)
	}

	ids, err := repo.TransferredRequisitionIDs(ctx)
	if err != nil {
		t.Fatalf("Failed to list transferred requisitions: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("Expected 2 transferred requisitions, got %d", len(ids))
	}
}

func TestTransferRepository_DuplicateKeyReturnsStored(t *testing.T) {
	repo := NewTransferRepositoryWithClock(fixedClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)))
	ctx := context.Background()

	original, err := repo.SaveTransfer(ctx, &entities.TransferDocument{ID: "t-1", RequisitionID: "1", IdempotencyKey: "same"})
	if err != nil {
		t.Fatalf("Failed to save transfer: %v", err)
	}

	again, err := repo.SaveTransfer(ctx, &entities.TransferDocument{ID: "t-2", RequisitionID: "1", IdempotencyKey: "same"})
	if !errors.Is(err, entities.ErrDuplicateSubmission) {
		t.Fatalf("Expected ErrDuplicateSubmission, got %v", err)
	}
	if again == nil || again.ID != original.ID || again.TransferNo != original.TransferNo {
		t.Errorf("Expected the stored transfer back, got %+v", again)
	}
	if repo.Len() != 1 {
		t.Errorf("Expected 1 stored transfer, got %d", repo.Len())
	}

	got, err := repo.GetTransfer(ctx, "t-1")
	if err != nil {
		t.Fatalf("Failed to get transfer: %v", err)
	}
	if got.TransferNo != "TRF-20250301-0001" {
		t.Errorf("Unexpected transfer number %s", got.TransferNo)
	}

	if _, err := repo.GetTransfer(ctx, "t-2"); !entities.IsNotFound(err) {
		t.Errorf("Expected not found for rejected duplicate, got %v", err)
	}
}
