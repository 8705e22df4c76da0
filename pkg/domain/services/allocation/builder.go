package allocation

import (
	"sort"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

// binKey addresses the stock of one SKU inside one warehouse
type binKey struct {
	sku       entities.SKU
	warehouse entities.WarehouseID
}

// binIndex lists snapshot positions per SKU and warehouse, in snapshot order
type binIndex map[binKey][]int

func indexBins(snapshot entities.StockSnapshot, warehouse entities.WarehouseID) binIndex {
	bins := make(binIndex)
	for i := 0; i < snapshot.Len(); i++ {
		record := snapshot.At(i)
		if record.WarehouseID != warehouse {
			continue
		}
		key := binKey{sku: record.Key(), warehouse: warehouse}
		bins[key] = append(bins[key], i)
	}
	return bins
}

// Build turns the transfer quantity of each line into instructions against
// individual bins of the source warehouse.
//
// Lines are processed in order. For each line with a positive transfer
// quantity the source bins holding its SKU are sorted by available quantity,
// largest first with ties kept in snapshot order, and drawn from greedily
// until the quantity is covered. Stock drawn for an earlier line is not
// offered again to a later line of the same SKU. A line that cannot be
// covered is reported in Shortages and never blocks the other lines. Lines
// left at zero are skipped; those classified SHORT are reported as shortages
// of their full remaining quantity.
//
// The result depends only on the arguments, so identical inputs always yield
// identical instructions in identical order.
func Build(
	snapshot entities.StockSnapshot,
	route entities.Route,
	demand entities.DemandSet,
	allocation entities.AllocationSummary,
) entities.TransferPlan {
	plan := entities.TransferPlan{
		Route:        route,
		Instructions: []entities.TransferInstruction{},
		Shortages:    []entities.LineShortage{},
	}

	bins := indexBins(snapshot, route.FromWarehouseID)
	drawn := make(map[int]entities.Quantity)
	left := func(pos int) entities.Quantity {
		return snapshot.At(pos).Available.Sub(drawn[pos])
	}

	n := len(demand.Lines)
	if len(allocation.Lines) < n {
		n = len(allocation.Lines)
	}

	for i := 0; i < n; i++ {
		line := demand.Lines[i]
		result := allocation.Lines[i]

		want := result.TransferQty
		if !want.IsPositive() {
			if result.Status == entities.Short {
				plan.Shortages = append(plan.Shortages, entities.LineShortage{
					SKU:               line.SKU,
					ItemName:          line.ItemName,
					Needed:            line.RemainingQty,
					AvailableAtSubmit: entities.ZeroQty,
				})
			}
			continue
		}

		var candidates []int
		total := entities.ZeroQty
		for _, pos := range bins[binKey{sku: line.Key(), warehouse: route.FromWarehouseID}] {
			if qty := left(pos); qty.IsPositive() {
				candidates = append(candidates, pos)
				total = total.Add(qty)
			}
		}

		if len(candidates) == 0 {
			plan.Shortages = append(plan.Shortages, entities.LineShortage{
				SKU:               line.SKU,
				ItemName:          line.ItemName,
				Needed:            want,
				AvailableAtSubmit: entities.ZeroQty,
			})
			continue
		}

		if total.LessThan(want) {
			plan.Shortages = append(plan.Shortages, entities.LineShortage{
				SKU:               line.SKU,
				ItemName:          line.ItemName,
				Needed:            want,
				AvailableAtSubmit: total,
			})
			want = total
		}

		sort.SliceStable(candidates, func(a, b int) bool {
			return left(candidates[a]).GreaterThan(left(candidates[b]))
		})

		for _, pos := range candidates {
			if !want.IsPositive() {
				break
			}
			take := want.Min(left(pos))
			want = want.Sub(take)
			drawn[pos] = drawn[pos].Add(take)
			plan.Instructions = append(plan.Instructions, newInstruction(snapshot.At(pos), line, route, take))
		}
	}

	return plan
}

func newInstruction(
	record entities.StockRecord,
	line entities.DemandLine,
	route entities.Route,
	qty entities.Quantity,
) entities.TransferInstruction {
	name := line.ItemName
	if name == "" {
		name = record.ItemName
	}
	itemID := line.ItemID
	if itemID == "" {
		itemID = record.ItemID
	}

	return entities.TransferInstruction{
		SKU:                  line.SKU,
		ItemID:               itemID,
		ItemName:             name,
		FromWarehouseID:      route.FromWarehouseID,
		ToWarehouseID:        route.ToWarehouseID,
		FromBinID:            record.BinID,
		FromBinName:          record.BinName,
		ToBinID:              route.ToBinID,
		Qty:                  qty,
		SupplierID:           record.SupplierID,
		BinOnHand:            record.OnHand,
		BinAvailable:         record.Available,
		RequestedQty:         line.RemainingQty,
		RequestedQtyOriginal: line.RequestedQtyOriginal,
		ReceivedQty:          line.ReceivedQty,
	}
}
