package allocation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

var route = entities.Route{FromWarehouseID: "WH-SRC", ToWarehouseID: "WH-DST", ToBinID: "BIN-DST"}

func qty(v int64) entities.Quantity { return entities.NewQuantity(v) }

func record(sku string, warehouse entities.WarehouseID, bin entities.BinID, available int64) entities.StockRecord {
	return entities.StockRecord{
		SKU:         sku,
		ItemID:      "item-" + sku,
		WarehouseID: warehouse,
		BinID:       bin,
		BinName:     "Bin " + string(bin),
		OnHand:      qty(available),
		Available:   qty(available),
		SupplierID:  "sup-" + string(bin),
	}
}

func snapshotOf(records ...entities.StockRecord) entities.StockSnapshot {
	return entities.NewStockSnapshot(records, time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
}

func demandOf(lines ...entities.DemandLine) entities.DemandSet {
	return entities.DemandSet{RequisitionID: "MR-1", Lines: lines}
}

func line(sku string, remaining int64) entities.DemandLine {
	return entities.DemandLine{
		ItemID:               "item-" + sku,
		SKU:                  sku,
		ItemName:             "Item " + sku,
		UOM:                  "EA",
		RequestedQtyOriginal: qty(remaining),
		RemainingQty:         qty(remaining),
	}
}

func run(snapshot entities.StockSnapshot, demand entities.DemandSet, entered []entities.Quantity) (entities.AllocationSummary, entities.TransferPlan) {
	ix := BuildIndex(snapshot, demand.SKUs(), route.FromWarehouseID)
	summary := Allocate(demand, ix, entered)
	return summary, Build(snapshot, route, demand, summary)
}

func instructionKeys(plan entities.TransferPlan) []string {
	keys := make([]string, 0, len(plan.Instructions))
	for _, in := range plan.Instructions {
		keys = append(keys, fmt.Sprintf("%s|%s|%s|%s", in.SKU, in.FromBinID, in.Qty, in.SupplierID))
	}
	return keys
}

func TestBuildIndex_FiltersWarehouseAndSKU(t *testing.T) {
	snapshot := snapshotOf(
		record("X", "WH-SRC", "B1", 30),
		record(" x ", "WH-SRC", "B2", 40),
		record("X", "WH-OTHER", "B3", 100),
		record("Y", "WH-SRC", "B4", 7),
		record("Z", "WH-SRC", "B5", 9),
	)
	skus := map[entities.SKU]struct{}{"x": {}, "y": {}}

	ix := BuildIndex(snapshot, skus, "WH-SRC")

	assert.Equal(t, "70", ix.Available("X").String())
	assert.Equal(t, "7", ix.Available("y").String())
	assert.Equal(t, "0", ix.Available("Z").String(), "SKUs outside the demand set are not indexed")
	assert.Equal(t, 2, ix.Len())
	assert.Equal(t, entities.WarehouseID("WH-SRC"), ix.Source())

	empty := BuildIndex(snapshot, skus, "")
	assert.Equal(t, 0, empty.Len(), "no source warehouse means nothing is available")
}

func TestAllocateLine_Statuses(t *testing.T) {
	tests := []struct {
		name           string
		remaining      int64
		available      int64
		current        int64
		expectMax      string
		expectTransfer string
		expectShortage string
		expectStatus   entities.LineStatus
	}{
		{"ready auto-fills to remaining", 50, 70, 0, "50", "50", "0", entities.Ready},
		{"partial auto-fills to available", 50, 20, 0, "20", "20", "30", entities.Partial},
		{"short has nothing to move", 50, 0, 10, "0", "0", "50", entities.Short},
		{"negative availability is short", 50, -4, 0, "0", "0", "54", entities.Short},
		{"manual entry below cap is kept", 50, 70, 12, "50", "12", "0", entities.Ready},
		{"manual entry above cap is re-clamped", 50, 20, 35, "20", "20", "30", entities.Partial},
		{"negative entry counts as unset", 50, 70, -3, "50", "50", "0", entities.Ready},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AllocateLine(line("X", tt.remaining), qty(tt.available), qty(tt.current))
			assert.Equal(t, tt.expectMax, result.MaxTransferQty.String(), "max transfer")
			assert.Equal(t, tt.expectTransfer, result.TransferQty.String(), "transfer")
			assert.Equal(t, tt.expectShortage, result.ShortageQty.String(), "shortage")
			assert.Equal(t, tt.expectStatus, result.Status)
		})
	}
}

func TestAllocate_Counters(t *testing.T) {
	snapshot := snapshotOf(
		record("A", "WH-SRC", "B1", 10),
		record("B", "WH-SRC", "B2", 3),
	)
	demand := demandOf(line("A", 5), line("B", 8), line("C", 4))

	summary, _ := run(snapshot, demand, nil)

	require.Len(t, summary.Lines, 3)
	assert.Equal(t, 1, summary.ShortageCount)
	assert.Equal(t, 2, summary.TransferableLineCount)
	assert.True(t, summary.AnyTransfer())
}

func TestClampTransferQty(t *testing.T) {
	assert.Equal(t, "0", ClampTransferQty(qty(-5), qty(10)).String())
	assert.Equal(t, "10", ClampTransferQty(qty(15), qty(10)).String())
	assert.Equal(t, "7", ClampTransferQty(qty(7), qty(10)).String())
	assert.Equal(t, "0", ClampTransferQty(qty(7), qty(-1)).String())
}

// Scenario A: 50 demanded, bins of 30 and 40 available.
func TestBuild_LargestBinFirst(t *testing.T) {
	snapshot := snapshotOf(
		record("X", "WH-SRC", "BIN-30", 30),
		record("X", "WH-SRC", "BIN-40", 40),
	)

	summary, plan := run(snapshot, demandOf(line("X", 50)), nil)

	require.Equal(t, "50", summary.Lines[0].TransferQty.String())
	assert.Equal(t, []string{
		"X|BIN-40|40|sup-BIN-40",
		"X|BIN-30|10|sup-BIN-30",
	}, instructionKeys(plan))
	assert.Empty(t, plan.Shortages)

	first := plan.Instructions[0]
	assert.Equal(t, entities.WarehouseID("WH-SRC"), first.FromWarehouseID)
	assert.Equal(t, entities.WarehouseID("WH-DST"), first.ToWarehouseID)
	assert.Equal(t, entities.BinID("BIN-DST"), first.ToBinID)
	assert.Equal(t, "Bin BIN-40", first.FromBinName)
	assert.Equal(t, "40", first.BinAvailable.String())
	assert.Equal(t, "50", first.RequestedQty.String())
}

// Scenario B: 50 demanded, only 20 available.
func TestBuild_PartialLineSubmitsWhatIsAvailable(t *testing.T) {
	snapshot := snapshotOf(record("X", "WH-SRC", "BIN-1", 20))

	summary, plan := run(snapshot, demandOf(line("X", 50)), nil)

	result := summary.Lines[0]
	assert.Equal(t, entities.Partial, result.Status)
	assert.Equal(t, "20", result.MaxTransferQty.String())
	assert.Equal(t, "30", result.ShortageQty.String())
	assert.Equal(t, []string{"X|BIN-1|20|sup-BIN-1"}, instructionKeys(plan))
	assert.Empty(t, plan.Shortages, "a partial line drawn in full records no shortage at build time")
}

// Scenario C: one line satisfiable, one fully short.
func TestBuild_ShortLineDoesNotBlockOthers(t *testing.T) {
	snapshot := snapshotOf(
		record("A", "WH-SRC", "BIN-A", 25),
		record("B", "WH-OTHER", "BIN-B", 25),
	)

	summary, plan := run(snapshot, demandOf(line("A", 10), line("B", 6)), nil)

	assert.Equal(t, entities.Short, summary.Lines[1].Status)
	assert.True(t, summary.Lines[1].TransferQty.IsZero())
	assert.Equal(t, []string{"A|BIN-A|10|sup-BIN-A"}, instructionKeys(plan))
	require.Len(t, plan.Shortages, 1)
	assert.Equal(t, "B", plan.Shortages[0].SKU)
	assert.Equal(t, "6", plan.Shortages[0].Needed.String())
	assert.Equal(t, "0", plan.Shortages[0].AvailableAtSubmit.String())
}

func TestBuild_SkipsLinesLeftAtZero(t *testing.T) {
	snapshot := snapshotOf(record("A", "WH-SRC", "BIN-A", 25))
	demand := demandOf(line("A", 10))
	ix := BuildIndex(snapshot, demand.SKUs(), route.FromWarehouseID)
	summary := Allocate(demand, ix, nil)
	summary.Lines[0].TransferQty = entities.ZeroQty

	plan := Build(snapshot, route, demand, summary)

	assert.True(t, plan.Empty())
	assert.Empty(t, plan.Shortages, "a line the user zeroed is not a shortage")
}

func TestBuild_RecordsShortfallWhenStockShrank(t *testing.T) {
	// Allocation computed against a richer snapshot than the one at submit.
	before := snapshotOf(record("A", "WH-SRC", "BIN-1", 30), record("A", "WH-SRC", "BIN-2", 20))
	after := snapshotOf(record("A", "WH-SRC", "BIN-1", 12), record("A", "WH-SRC", "BIN-2", 0))
	demand := demandOf(line("A", 40), line("B", 5))

	summary := Allocate(demand, BuildIndex(before, demand.SKUs(), route.FromWarehouseID), nil)
	plan := Build(after, route, demand, summary)

	assert.Equal(t, []string{"A|BIN-1|12|sup-BIN-1"}, instructionKeys(plan))
	require.Len(t, plan.Shortages, 2)
	assert.Equal(t, "40", plan.Shortages[0].Needed.String())
	assert.Equal(t, "12", plan.Shortages[0].AvailableAtSubmit.String())
	assert.Equal(t, "B", plan.Shortages[1].SKU)
}

func TestBuild_RecordsShortfallWhenBinsVanished(t *testing.T) {
	before := snapshotOf(record("A", "WH-SRC", "BIN-1", 30))
	after := snapshotOf(record("A", "WH-OTHER", "BIN-1", 30))
	demand := demandOf(line("A", 10))

	summary := Allocate(demand, BuildIndex(before, demand.SKUs(), route.FromWarehouseID), nil)
	plan := Build(after, route, demand, summary)

	assert.True(t, plan.Empty())
	require.Len(t, plan.Shortages, 1)
	assert.Equal(t, "10", plan.Shortages[0].Needed.String())
	assert.True(t, plan.Shortages[0].AvailableAtSubmit.IsZero())
}

func TestBuild_TiesKeepSnapshotOrder(t *testing.T) {
	snapshot := snapshotOf(
		record("A", "WH-SRC", "FIRST", 10),
		record("A", "WH-SRC", "SECOND", 10),
		record("A", "WH-SRC", "EMPTY", 0),
		record("A", "WH-SRC", "NEGATIVE", -2),
	)

	_, plan := run(snapshot, demandOf(line("A", 15)), nil)

	assert.Equal(t, []string{"A|FIRST|10|sup-FIRST", "A|SECOND|5|sup-SECOND"}, instructionKeys(plan))
}

func TestBuild_SameSKUOnTwoLinesDoesNotDoubleDraw(t *testing.T) {
	snapshot := snapshotOf(record("A", "WH-SRC", "BIN-1", 10))

	_, plan := run(snapshot, demandOf(line("A", 6), line("A", 6)), nil)

	assert.Equal(t, []string{"A|BIN-1|6|sup-BIN-1", "A|BIN-1|4|sup-BIN-1"}, instructionKeys(plan))
	require.Len(t, plan.Shortages, 1)
	assert.Equal(t, "6", plan.Shortages[0].Needed.String())
	assert.Equal(t, "4", plan.Shortages[0].AvailableAtSubmit.String())
	assert.Equal(t, "10", plan.TotalQty("a").String())
}

func TestBuild_FractionalQuantities(t *testing.T) {
	snapshot := snapshotOf(
		entities.StockRecord{SKU: "FLOUR", WarehouseID: "WH-SRC", BinID: "B1", Available: entities.MustParseQuantity("2.5")},
		entities.StockRecord{SKU: "FLOUR", WarehouseID: "WH-SRC", BinID: "B2", Available: entities.MustParseQuantity("1.25")},
	)
	demand := demandOf(entities.DemandLine{ItemID: "9", SKU: "flour", RemainingQty: entities.MustParseQuantity("3")})

	_, plan := run(snapshot, demand, nil)

	require.Len(t, plan.Instructions, 2)
	assert.Equal(t, "2.5", plan.Instructions[0].Qty.String())
	assert.Equal(t, "0.5", plan.Instructions[1].Qty.String())
}

// Scenario D: switching the source warehouse re-clamps entries above the new
// cap and keeps entries within it.
func TestAllocate_SourceSwitchReclamps(t *testing.T) {
	snapshot := snapshotOf(
		record("A", "WH-1", "A1", 40),
		record("B", "WH-1", "B1", 40),
		record("A", "WH-2", "A2", 10),
		record("B", "WH-2", "B2", 40),
	)
	demand := demandOf(line("A", 30), line("B", 30))

	first := Allocate(demand, BuildIndex(snapshot, demand.SKUs(), "WH-1"), nil)
	entered := []entities.Quantity{qty(25), qty(12)}
	for i := range first.Lines {
		first.Lines[i].TransferQty = ClampTransferQty(entered[i], first.Lines[i].MaxTransferQty)
	}

	second := Allocate(demand, BuildIndex(snapshot, demand.SKUs(), "WH-2"),
		[]entities.Quantity{first.Lines[0].TransferQty, first.Lines[1].TransferQty})

	assert.Equal(t, "10", second.Lines[0].TransferQty.String(), "entry above the new cap is reset to the cap")
	assert.Equal(t, "12", second.Lines[1].TransferQty.String(), "entry within the new cap is preserved")
}
