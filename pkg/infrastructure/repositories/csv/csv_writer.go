package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

// Writer writes scenarios in the layout Loader reads
type Writer struct{}

// NewWriter creates a new CSV writer
func NewWriter() *Writer {
	return &Writer{}
}

// WriteScenario writes stock.csv, requisitions.csv and warehouses.csv to dir
func (w *Writer) WriteScenario(dir string, scenario *Scenario) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create scenario directory: %w", err)
	}

	if err := writeTable(filepath.Join(dir, StockFile), stockHeader, stockRows(scenario.Stock)); err != nil {
		return fmt.Errorf("failed to write stock: %w", err)
	}
	if err := writeTable(filepath.Join(dir, RequisitionsFile), requisitionHeader, requisitionRows(scenario.Requisitions)); err != nil {
		return fmt.Errorf("failed to write requisitions: %w", err)
	}
	if err := writeTable(filepath.Join(dir, WarehousesFile), warehouseHeader, warehouseRows(scenario.Warehouses)); err != nil {
		return fmt.Errorf("failed to write warehouses: %w", err)
	}
	return nil
}

func stockRows(records []*entities.StockRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.ID, r.SKU, r.ItemID, r.ItemName, string(r.WarehouseID), r.WarehouseName,
			string(r.BinID), r.BinName, r.OnHand.String(), r.Reserved.String(), r.Available.String(),
			r.SupplierID, r.SupplierName,
		})
	}
	return rows
}

// requisitionRows flattens requisitions to one row per line. A requisition
// without lines gets a single row with blank item columns.
func requisitionRows(reqs []*entities.Requisition) [][]string {
	var rows [][]string
	for _, req := range reqs {
		date := ""
		if !req.Date.IsZero() {
			date = req.Date.Format("2006-01-02")
		}
		header := []string{req.ID, req.Number, string(req.DestinationWarehouseID), string(req.DestinationBinID),
			req.DestinationBinName, req.Requester, date}

		if len(req.Lines) == 0 {
			rows = append(rows, append(header, "", "", "", "", "", ""))
			continue
		}
		for _, l := range req.Lines {
			row := append(append([]string(nil), header...),
				l.ItemID, l.SKU, l.ItemName, l.UOMName, l.Qty.String(), l.ReceivedQty.String())
			rows = append(rows, row)
		}
	}
	return rows
}

func warehouseRows(warehouses []entities.Warehouse) [][]string {
	rows := make([][]string, 0, len(warehouses))
	for _, wh := range warehouses {
		rows = append(rows, []string{string(wh.ID), wh.Name})
	}
	return rows
}

func writeTable(filename string, header []string, rows [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return file.Close()
}
