package mongodb

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

func sampleDocument() *entities.TransferDocument {
	return &entities.TransferDocument{
		ID:            "t-1",
		TransferNo:    "TRF-20250301-0001",
		RequisitionID: "101",
		RequisitionNo: "MRQ-101",
		Route:         entities.Route{FromWarehouseID: "1", ToWarehouseID: "2", ToBinID: "D-IN"},
		Instructions: []entities.TransferInstruction{{
			SKU: "FLOUR", ItemID: "item-FLOUR", FromWarehouseID: "1", ToWarehouseID: "2",
			FromBinID: "C-02", ToBinID: "D-IN", Qty: entities.MustParseQuantity("12.75"),
			BinOnHand: entities.NewQuantity(40), BinAvailable: entities.NewQuantity(38),
			RequestedQty: entities.NewQuantity(50), RequestedQtyOriginal: entities.NewQuantity(60),
			ReceivedQty: entities.NewQuantity(10),
		}},
		Shortages: []entities.LineShortage{
			{SKU: "SALT", Needed: entities.NewQuantity(8), AvailableAtSubmit: entities.ZeroQty},
		},
		IdempotencyKey: "key",
		CreatedAt:      time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestRecord_BSONRoundTrip(t *testing.T) {
	raw, err := bson.Marshal(toRecord(sampleDocument()))
	require.NoError(t, err)

	var fields bson.M
	require.NoError(t, bson.Unmarshal(raw, &fields))
	assert.Equal(t, "t-1", fields["_id"])
	assert.Equal(t, "MRQ-101", fields["requisition_no"])

	var rec transferRecord
	require.NoError(t, bson.Unmarshal(raw, &rec))
	doc, err := rec.toDocument()
	require.NoError(t, err)

	require.Len(t, doc.Instructions, 1)
	assert.Equal(t, "12.75", doc.Instructions[0].Qty.String())
	assert.Equal(t, "38", doc.Instructions[0].BinAvailable.String())
	assert.Equal(t, entities.BinID("C-02"), doc.Instructions[0].FromBinID)
	assert.Equal(t, "8", doc.Shortages[0].Needed.String())
	assert.Equal(t, entities.WarehouseID("2"), doc.Route.ToWarehouseID)
	assert.True(t, doc.CreatedAt.Equal(sampleDocument().CreatedAt))
}

func TestRecord_OmitsEmptyIdempotencyKey(t *testing.T) {
	doc := sampleDocument()
	doc.IdempotencyKey = ""

	raw, err := bson.Marshal(toRecord(doc))
	require.NoError(t, err)
	var fields bson.M
	require.NoError(t, bson.Unmarshal(raw, &fields))

	_, present := fields["idempotency_key"]
	assert.False(t, present, "keyless transfers must stay outside the unique index")
}

func TestRecord_CorruptQuantity(t *testing.T) {
	rec := toRecord(sampleDocument())
	rec.Lines[0].Qty = "twelve"

	_, err := rec.toDocument()
	assert.ErrorContains(t, err, "twelve")
}

// TestTransferRepository_Live runs against a real server when
// MONGODB_TEST_URI is set.
func TestTransferRepository_Live(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := NewTransferRepository(ctx, uri, "stocktransfer_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = repo.client.Database(repo.dbName).Drop(context.Background())
		_ = repo.Close(context.Background())
	})
	repo.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }

	doc := sampleDocument()
	doc.ID = ""
	saved, err := repo.SaveTransfer(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, "TRF-20250301-0001", saved.TransferNo)

	again, err := repo.SaveTransfer(ctx, doc)
	assert.True(t, errors.Is(err, entities.ErrDuplicateSubmission))
	assert.Equal(t, saved.ID, again.ID)

	loaded, err := repo.GetTransfer(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "12.75", loaded.Instructions[0].Qty.String())

	ids, err := repo.TransferredRequisitionIDs(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "101")

	_, err = repo.GetTransfer(ctx, "missing")
	assert.True(t, entities.IsNotFound(err))
}
