// Package allocation decides how much of each outstanding requisition line can
// be transferred from a source warehouse and which bins the stock is drawn
// from. Every function here is a pure computation over its arguments: callers
// recompute whenever the snapshot, the requisition or the source changes.
package allocation

import (
	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

// Index is the availability index: the total available quantity of each
// demanded SKU in one source warehouse
type Index struct {
	source entities.WarehouseID
	totals map[entities.SKU]entities.Quantity
}

// BuildIndex aggregates the snapshot into available totals per SKU, counting
// only records held in the source warehouse whose SKU is demanded. Negative
// availability is summed as-is; the allocator clamps it.
func BuildIndex(snapshot entities.StockSnapshot, skus map[entities.SKU]struct{}, source entities.WarehouseID) Index {
	ix := Index{
		source: source,
		totals: make(map[entities.SKU]entities.Quantity, len(skus)),
	}
	if source == "" {
		return ix
	}

	for i := 0; i < snapshot.Len(); i++ {
		record := snapshot.At(i)
		if record.WarehouseID != source {
			continue
		}
		key := record.Key()
		if _, demanded := skus[key]; !demanded {
			continue
		}
		ix.totals[key] = ix.totals[key].Add(record.Available)
	}

	return ix
}

// Source returns the warehouse the index was built for
func (ix Index) Source() entities.WarehouseID {
	return ix.source
}

// Available returns the total available quantity of a SKU (case-insensitive)
func (ix Index) Available(sku string) entities.Quantity {
	return ix.totals[entities.NormalizeSKU(sku)]
}

// Len returns the number of SKUs with at least one record at the source
func (ix Index) Len() int {
	return len(ix.totals)
}
