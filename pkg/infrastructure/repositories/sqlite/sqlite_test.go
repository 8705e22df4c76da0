package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

func newTestStore(t *testing.T, now *time.Time) *Store {
	t.Helper()
	store, err := New(":memory:", WithClock(func() time.Time { return *now }))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleTransfer(key string) *entities.TransferDocument {
	route := entities.Route{FromWarehouseID: "1", ToWarehouseID: "2", ToBinID: "D-IN"}
	return &entities.TransferDocument{
		RequisitionID: "101",
		RequisitionNo: "MRQ-101",
		Route:         route,
		Instructions: []entities.TransferInstruction{
			{
				SKU: "FLOUR", ItemID: "item-FLOUR", ItemName: "Flour",
				FromWarehouseID: "1", ToWarehouseID: "2", FromBinID: "C-02", FromBinName: "Bin C-02", ToBinID: "D-IN",
				Qty: entities.MustParseQuantity("40"), SupplierID: "sup-1",
				BinOnHand: entities.NewQuantity(40), BinAvailable: entities.NewQuantity(40),
				RequestedQty: entities.NewQuantity(50), RequestedQtyOriginal: entities.NewQuantity(60), ReceivedQty: entities.NewQuantity(10),
			},
			{
				SKU: "FLOUR", ItemID: "item-FLOUR", ItemName: "Flour",
				FromWarehouseID: "1", ToWarehouseID: "2", FromBinID: "C-01", ToBinID: "D-IN",
				Qty: entities.MustParseQuantity("10.5"),
			},
		},
		Shortages: []entities.LineShortage{
			{SKU: "SALT", ItemName: "Salt", Needed: entities.NewQuantity(8), AvailableAtSubmit: entities.ZeroQty},
		},
		IdempotencyKey: key,
		CreatedBy:      "store.keeper",
		UpdatedBy:      "store.keeper",
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	store := newTestStore(t, &now)
	ctx := context.Background()

	saved, err := store.SaveTransfer(ctx, sampleTransfer("key-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "TRF-20250301-0001", saved.TransferNo)

	loaded, err := store.GetTransfer(ctx, saved.ID)
	require.NoError(t, err)

	assert.Equal(t, saved.TransferNo, loaded.TransferNo)
	assert.Equal(t, "MRQ-101", loaded.RequisitionNo)
	assert.Equal(t, entities.Route{FromWarehouseID: "1", ToWarehouseID: "2", ToBinID: "D-IN"}, loaded.Route)
	assert.Equal(t, "key-1", loaded.IdempotencyKey)
	assert.Equal(t, "store.keeper", loaded.CreatedBy)
	assert.True(t, now.Equal(loaded.CreatedAt))
	assert.True(t, now.Equal(loaded.UpdatedAt))

	require.Len(t, loaded.Instructions, 2)
	first := loaded.Instructions[0]
	assert.Equal(t, entities.BinID("C-02"), first.FromBinID)
	assert.Equal(t, "Bin C-02", first.FromBinName)
	assert.Equal(t, "40", first.Qty.String())
	assert.Equal(t, "60", first.RequestedQtyOriginal.String())
	assert.Equal(t, "10", first.ReceivedQty.String())
	assert.Equal(t, "sup-1", first.SupplierID)
	assert.Equal(t, "10.5", loaded.Instructions[1].Qty.String())

	require.Len(t, loaded.Shortages, 1)
	assert.Equal(t, "SALT", loaded.Shortages[0].SKU)
	assert.Equal(t, "8", loaded.Shortages[0].Needed.String())
	assert.Equal(t, "0", loaded.Shortages[0].AvailableAtSubmit.String())
}

func TestStore_NumbersPerDay(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store := newTestStore(t, &now)
	ctx := context.Background()

	var numbers []string
	for _, key := range []string{"a", "b"} {
		doc, err := store.SaveTransfer(ctx, sampleTransfer(key))
		require.NoError(t, err)
		numbers = append(numbers, doc.TransferNo)
	}
	now = now.AddDate(0, 0, 1)
	doc, err := store.SaveTransfer(ctx, sampleTransfer("c"))
	require.NoError(t, err)
	numbers = append(numbers, doc.TransferNo)

	assert.Equal(t, []string{"TRF-20250301-0001", "TRF-20250301-0002", "TRF-20250302-0001"}, numbers)
}

func TestStore_DuplicateIdempotencyKey(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store := newTestStore(t, &now)
	ctx := context.Background()

	first, err := store.SaveTransfer(ctx, sampleTransfer("same"))
	require.NoError(t, err)

	again, err := store.SaveTransfer(ctx, sampleTransfer("same"))
	assert.True(t, errors.Is(err, entities.ErrDuplicateSubmission))
	require.NotNil(t, again)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, again.Instructions, 2)

	// Documents without a key are never considered duplicates.
	_, err = store.SaveTransfer(ctx, sampleTransfer(""))
	require.NoError(t, err)
	_, err = store.SaveTransfer(ctx, sampleTransfer(""))
	require.NoError(t, err)

	ids, err := store.TransferredRequisitionIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"101": {}}, ids)
}

func TestStore_DuplicateIDIsRejected(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store := newTestStore(t, &now)
	ctx := context.Background()

	doc := sampleTransfer("x")
	doc.ID = "fixed"
	_, err := store.SaveTransfer(ctx, doc)
	require.NoError(t, err)

	doc.IdempotencyKey = "y"
	_, err = store.SaveTransfer(ctx, doc)
	assert.True(t, errors.Is(err, entities.ErrDuplicateSubmission))
}

func TestStore_NotFound(t *testing.T) {
	now := time.Now()
	store := newTestStore(t, &now)

	_, err := store.GetTransfer(context.Background(), "missing")
	assert.True(t, entities.IsNotFound(err))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transfers.db")
	ctx := context.Background()

	store, err := New(path)
	require.NoError(t, err)
	saved, err := store.SaveTransfer(ctx, sampleTransfer("k"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, reopened.Ping(ctx))

	loaded, err := reopened.GetTransfer(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.TransferNo, loaded.TransferNo)
}
