package transfer

import (
	"fmt"
	"sort"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

// OpenRequisitions returns the requisitions that still have something to
// deliver, in ID order. Completed requisitions are dropped; the transferred
// set only annotates the rows.
func OpenRequisitions(reqs []*entities.Requisition, transferred map[string]struct{}) []entities.RequisitionSummary {
	open := make([]entities.RequisitionSummary, 0, len(reqs))
	for _, req := range reqs {
		if req == nil || req.Completed() {
			continue
		}
		_, done := transferred[req.ID]
		open = append(open, entities.RequisitionSummary{
			ID:                     req.ID,
			Number:                 req.DisplayNumber(),
			DestinationWarehouseID: req.DestinationWarehouseID,
			RemainingQty:           req.RemainingQty(),
			Transferred:            done,
		})
	}

	sort.SliceStable(open, func(i, j int) bool {
		return open[i].ID < open[j].ID
	})
	return open
}

// SourceOptions lists every warehouse except the destination as a possible
// transfer source. Each option carries the requisition's total remaining
// quantity and the on-hand stock of the demanded SKUs held in that warehouse.
func SourceOptions(
	warehouses []entities.Warehouse,
	snapshot entities.StockSnapshot,
	demand entities.DemandSet,
	destination entities.WarehouseID,
) []entities.SourceOption {
	requested := demand.TotalRemaining()
	skus := demand.SKUs()

	onHand := make(map[entities.WarehouseID]entities.Quantity)
	for i := 0; i < snapshot.Len(); i++ {
		record := snapshot.At(i)
		if _, ok := skus[record.Key()]; !ok {
			continue
		}
		onHand[record.WarehouseID] = onHand[record.WarehouseID].Add(record.OnHand)
	}

	options := make([]entities.SourceOption, 0, len(warehouses))
	for _, wh := range warehouses {
		if wh.ID == destination {
			continue
		}
		name := wh.DisplayName()
		options = append(options, entities.SourceOption{
			ID:           wh.ID,
			Name:         name,
			RequestedQty: requested,
			OnHand:       onHand[wh.ID],
			Label:        fmt.Sprintf("%s | Req: %s | OnHand: %s", name, requested, onHand[wh.ID]),
		})
	}
	return options
}

// CandidateRows returns the stock grid for a selection: records of demanded
// SKUs outside the destination warehouse, restricted to the source when one
// is set. An empty demand set or destination applies no filter.
func CandidateRows(
	snapshot entities.StockSnapshot,
	demand entities.DemandSet,
	destination, source entities.WarehouseID,
) []entities.StockRecord {
	skus := demand.SKUs()
	return snapshot.Filter(func(r entities.StockRecord) bool {
		if len(skus) > 0 {
			if _, ok := skus[r.Key()]; !ok {
				return false
			}
		}
		if destination != "" && r.WarehouseID == destination {
			return false
		}
		return source == "" || r.WarehouseID == source
	})
}
