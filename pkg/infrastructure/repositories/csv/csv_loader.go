package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

// Scenario file names inside a scenario directory
const (
	StockFile        = "stock.csv"
	RequisitionsFile = "requisitions.csv"
	WarehousesFile   = "warehouses.csv"
)

var (
	stockHeader = []string{"id", "sku", "item_id", "item_name", "warehouse_id", "warehouse_name",
		"bin_id", "bin_name", "on_hand", "reserved", "available", "supplier_id", "supplier_name"}
	requisitionHeader = []string{"requisition_id", "number", "destination_warehouse_id", "destination_bin_id",
		"destination_bin_name", "requester", "date", "item_id", "sku", "item_name", "uom_name", "qty", "received_qty"}
	warehouseHeader = []string{"id", "name"}
)

// Loader handles loading stock transfer data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// Scenario is the content of a scenario directory
type Scenario struct {
	Stock        []*entities.StockRecord
	Requisitions []*entities.Requisition
	Warehouses   []entities.Warehouse
}

// LoadScenario loads stock.csv, requisitions.csv and warehouses.csv from dir
func (l *Loader) LoadScenario(dir string) (*Scenario, error) {
	stock, err := l.LoadStock(filepath.Join(dir, StockFile))
	if err != nil {
		return nil, err
	}
	reqs, err := l.LoadRequisitions(filepath.Join(dir, RequisitionsFile))
	if err != nil {
		return nil, err
	}
	warehouses, err := l.LoadWarehouses(filepath.Join(dir, WarehousesFile))
	if err != nil {
		return nil, err
	}
	return &Scenario{Stock: stock, Requisitions: reqs, Warehouses: warehouses}, nil
}

// LoadStock loads stock records from a CSV file. A blank available column is
// derived as on_hand - reserved.
func (l *Loader) LoadStock(filename string) ([]*entities.StockRecord, error) {
	rows, err := readRows(filename, "stock", stockHeader)
	if err != nil {
		return nil, err
	}

	var records []*entities.StockRecord
	for i, row := range rows {
		record, err := parseStock(row)
		if err != nil {
			return nil, fmt.Errorf("stock CSV row %d: %w", i+2, err)
		}
		records = append(records, record)
	}

	return records, nil
}

// LoadRequisitions loads requisitions from a CSV file with one row per
// requisition line. Header columns are taken from the first row of each
// requisition; requisitions keep the order they first appear in.
func (l *Loader) LoadRequisitions(filename string) ([]*entities.Requisition, error) {
	rows, err := readRows(filename, "requisitions", requisitionHeader)
	if err != nil {
		return nil, err
	}

	var reqs []*entities.Requisition
	byID := make(map[string]*entities.Requisition)
	for i, row := range rows {
		id := strings.TrimSpace(row[0])
		if id == "" {
			return nil, fmt.Errorf("requisitions CSV row %d: requisition_id cannot be empty", i+2)
		}

		req, ok := byID[id]
		if !ok {
			req, err = parseRequisitionHeader(row)
			if err != nil {
				return nil, fmt.Errorf("requisitions CSV row %d: %w", i+2, err)
			}
			byID[id] = req
			reqs = append(reqs, req)
		}

		// A row without an item only declares the requisition
		if strings.TrimSpace(row[7]) == "" && strings.TrimSpace(row[8]) == "" {
			continue
		}
		line, err := parseRequisitionLine(row)
		if err != nil {
			return nil, fmt.Errorf("requisitions CSV row %d: %w", i+2, err)
		}
		req.Lines = append(req.Lines, line)
	}

	return reqs, nil
}

// LoadWarehouses loads the warehouse master from a CSV file
func (l *Loader) LoadWarehouses(filename string) ([]entities.Warehouse, error) {
	rows, err := readRows(filename, "warehouses", warehouseHeader)
	if err != nil {
		return nil, err
	}

	var warehouses []entities.Warehouse
	for i, row := range rows {
		id := strings.TrimSpace(row[0])
		if id == "" {
			return nil, fmt.Errorf("warehouses CSV row %d: id cannot be empty", i+2)
		}
		warehouses = append(warehouses, entities.Warehouse{
			ID:   entities.WarehouseID(id),
			Name: strings.TrimSpace(row[1]),
		})
	}

	return warehouses, nil
}

// Helper functions for parsing CSV records

// readRows reads a CSV file, checks its header and returns the data rows
func readRows(filename, name string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", name, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", name, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", name)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", name, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", name, i+2, len(expectedHeader), len(record))
		}
	}

	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(strings.TrimPrefix(actual[i], "\ufeff"))) != col {
			return false
		}
	}

	return true
}

func parseStock(record []string) (*entities.StockRecord, error) {
	onHand, err := parseQuantity("on_hand", record[8])
	if err != nil {
		return nil, err
	}
	reserved, err := parseQuantity("reserved", record[9])
	if err != nil {
		return nil, err
	}

	var available *entities.Quantity
	if strings.TrimSpace(record[10]) != "" {
		parsed, err := parseQuantity("available", record[10])
		if err != nil {
			return nil, err
		}
		available = &parsed
	}

	return entities.NewStockRecord(entities.StockEntry{
		ID:            record[0],
		SKU:           record[1],
		ItemID:        record[2],
		ItemName:      record[3],
		WarehouseID:   entities.WarehouseID(strings.TrimSpace(record[4])),
		WarehouseName: record[5],
		BinID:         entities.BinID(strings.TrimSpace(record[6])),
		BinName:       record[7],
		OnHand:        onHand,
		Reserved:      reserved,
		Available:     available,
		SupplierID:    strings.TrimSpace(record[11]),
		SupplierName:  record[12],
	})
}

func parseRequisitionHeader(record []string) (*entities.Requisition, error) {
	req := &entities.Requisition{
		ID:                     strings.TrimSpace(record[0]),
		Number:                 strings.TrimSpace(record[1]),
		DestinationWarehouseID: entities.WarehouseID(strings.TrimSpace(record[2])),
		DestinationBinID:       entities.BinID(strings.TrimSpace(record[3])),
		DestinationBinName:     record[4],
		Requester:              record[5],
	}

	if date := strings.TrimSpace(record[6]); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", date)
		}
		req.Date = parsed
	}

	return req, nil
}

func parseRequisitionLine(record []string) (entities.RequisitionLine, error) {
	qty, err := parseQuantity("qty", record[11])
	if err != nil {
		return entities.RequisitionLine{}, err
	}
	received, err := parseQuantity("received_qty", record[12])
	if err != nil {
		return entities.RequisitionLine{}, err
	}

	return entities.RequisitionLine{
		ItemID:      strings.TrimSpace(record[7]),
		SKU:         strings.TrimSpace(record[8]),
		ItemName:    strings.TrimSpace(record[9]),
		UOMName:     strings.TrimSpace(record[10]),
		Qty:         qty,
		ReceivedQty: received,
	}, nil
}

// parseQuantity reads a decimal column; blank reads as zero
func parseQuantity(column, raw string) (entities.Quantity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return entities.ZeroQty, nil
	}
	q, err := entities.ParseQuantity(raw)
	if err != nil {
		return entities.ZeroQty, fmt.Errorf("invalid %s: %s", column, raw)
	}
	return q, nil
}
