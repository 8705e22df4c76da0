package testing

import (
	"time"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
	"github.com/vsinha/stocktransfer/pkg/infrastructure/repositories/memory"
)

// SnapshotTime is the time every scenario snapshot is taken at
var SnapshotTime = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

// Scenario bundles the in-memory collaborators of a transfer test
type Scenario struct {
	Stock        *memory.StockRepository
	Requisitions *memory.RequisitionRepository
	Warehouses   *memory.WarehouseRepository
	Transfers    *memory.TransferRepository
}

// Stock builds a stock record, panicking on invalid input
func Stock(sku string, warehouse entities.WarehouseID, bin entities.BinID, onHand, reserved int64) *entities.StockRecord {
	record, err := entities.NewStockRecord(entities.StockEntry{
		ID:          string(warehouse) + "/" + string(bin) + "/" + sku,
		SKU:         sku,
		ItemID:      "item-" + sku,
		ItemName:    sku,
		WarehouseID: warehouse,
		BinID:       bin,
		BinName:     "Bin " + string(bin),
		OnHand:      entities.NewQuantity(onHand),
		Reserved:    entities.NewQuantity(reserved),
		SupplierID:  "sup-" + sku,
	})
	if err != nil {
		panic(err)
	}
	return record
}

// Line builds a requisition line
func Line(sku string, qty, received int64) entities.RequisitionLine {
	return entities.RequisitionLine{
		ItemID:      "item-" + sku,
		SKU:         sku,
		ItemName:    sku,
		UOMName:     "KG",
		Qty:         entities.NewQuantity(qty),
		ReceivedQty: entities.NewQuantity(received),
	}
}

// BuildBakeryTestData builds a central store (1) supplying two outlets (2, 3).
//
// Requisition 101 asks outlet 2 to receive FLOUR 50, SUGAR 50 and SALT 8
// (YEAST is already received). From warehouse 1, FLOUR is READY across two
// bins, SUGAR is PARTIAL and SALT is SHORT. Requisition 102 is completed,
// 103 is destined for outlet 3 and 104 has no destination bin.
func BuildBakeryTestData(now func() time.Time) *Scenario {
	s := &Scenario{
		Stock:        memory.NewStockRepository(),
		Requisitions: memory.NewRequisitionRepository(),
		Warehouses: memory.NewWarehouseRepository(
			entities.Warehouse{ID: "1", Name: "Central Store"},
			entities.Warehouse{ID: "2", Name: "Downtown Outlet"},
			entities.Warehouse{ID: "3", Name: "Airport Outlet"},
		),
		Transfers: memory.NewTransferRepositoryWithClock(now),
	}

	stock := []*entities.StockRecord{
		Stock("FLOUR", "1", "C-01", 30, 0),
		Stock("FLOUR", "1", "C-02", 40, 0),
		Stock("FLOUR", "3", "A-01", 15, 0),
		Stock("SUGAR", "1", "C-03", 25, 5),
		Stock("SUGAR", "3", "A-02", 60, 0),
		Stock("SALT", "2", "D-01", 50, 0),
		Stock("YEAST", "1", "C-04", 12, 2),
	}
	if err := s.Stock.LoadStock(stock, SnapshotTime); err != nil {
		panic(err)
	}

	reqs := []*entities.Requisition{
		{
			ID: "101", Number: "MRQ-101", DestinationWarehouseID: "2", DestinationBinID: "D-IN",
			Requester: "outlet.manager", Date: SnapshotTime.AddDate(0, 0, -1),
			Lines: []entities.RequisitionLine{
				Line("FLOUR", 60, 10),
				Line("SUGAR", 50, 0),
				Line("SALT", 8, 0),
				Line("YEAST", 5, 5),
			},
		},
		{
			ID: "102", Number: "MRQ-102", DestinationWarehouseID: "2", DestinationBinID: "D-IN",
			Lines: []entities.RequisitionLine{Line("FLOUR", 10, 10)},
		},
		{
			ID: "103", DestinationWarehouseID: "3", DestinationBinID: "A-IN",
			Lines: []entities.RequisitionLine{Line("SUGAR", 5, 0)},
		},
		{
			ID: "104", Number: "MRQ-104", DestinationWarehouseID: "2",
			Lines: []entities.RequisitionLine{Line("FLOUR", 5, 0)},
		},
	}
	if err := s.Requisitions.LoadRequisitions(reqs); err != nil {
		panic(err)
	}

	return s
}
