package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/stocktransfer/pkg/application/dto"
	"github.com/vsinha/stocktransfer/pkg/application/services/transfer"
	"github.com/vsinha/stocktransfer/pkg/domain/entities"
	"github.com/vsinha/stocktransfer/pkg/domain/repositories"
	"github.com/vsinha/stocktransfer/pkg/infrastructure/logger"
	"github.com/vsinha/stocktransfer/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/stocktransfer/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/stocktransfer/pkg/infrastructure/repositories/sqlite"
	"github.com/vsinha/stocktransfer/pkg/interfaces/cli/output"
)

// Config holds configuration for the transfer command
type Config struct {
	ScenarioDir      string
	StockFile        string
	RequisitionsFile string
	WarehousesFile   string

	RequisitionID     string
	SourceWarehouseID string
	Quantities        QuantityFlags

	Submit      bool
	SQLitePath  string
	SubmittedBy string

	OutputDir string
	Format    string
	Verbose   bool
	Help      bool
}

// QuantityFlags collects repeated -qty SKU=n flags
type QuantityFlags map[string]entities.Quantity

// String implements flag.Value
func (q QuantityFlags) String() string {
	skus := make([]string, 0, len(q))
	for sku := range q {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	parts := make([]string, 0, len(skus))
	for _, sku := range skus {
		parts = append(parts, sku+"="+q[sku].String())
	}
	return strings.Join(parts, ",")
}

// Set implements flag.Value
func (q QuantityFlags) Set(value string) error {
	sku, raw, ok := strings.Cut(value, "=")
	sku = strings.TrimSpace(sku)
	if !ok || sku == "" {
		return fmt.Errorf("expected SKU=quantity, got %q", value)
	}
	qty, err := entities.ParseQuantity(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	q[sku] = qty
	return nil
}

// TransferCommand previews and optionally submits a stock transfer for one
// requisition loaded from CSV files
type TransferCommand struct {
	config Config
	out    io.Writer
}

// NewTransferCommand creates a new transfer command with the given configuration
func NewTransferCommand(config Config, out io.Writer) *TransferCommand {
	if out == nil {
		out = os.Stdout
	}
	return &TransferCommand{
		config: config,
		out:    out,
	}
}

// Execute runs the transfer command
func (c *TransferCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	// Validate inputs
	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	// Determine input files
	files, err := c.resolveInputFiles()
	if err != nil {
		return fmt.Errorf("failed to resolve input files: %w", err)
	}

	if c.config.Verbose {
		c.printHeader(files)
	}

	log := zap.NewNop()
	if c.config.Verbose {
		if log, err = logger.New("debug"); err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
	}

	// Load data
	csvLoader := csv.NewLoader()

	stock, err := csvLoader.LoadStock(files["Stock"])
	if err != nil {
		return fmt.Errorf("error loading stock: %w", err)
	}
	reqs, err := csvLoader.LoadRequisitions(files["Requisitions"])
	if err != nil {
		return fmt.Errorf("error loading requisitions: %w", err)
	}
	warehouses, err := csvLoader.LoadWarehouses(files["Warehouses"])
	if err != nil {
		return fmt.Errorf("error loading warehouses: %w", err)
	}

	if c.config.Verbose {
		fmt.Fprintf(c.out, "✅ Data loaded successfully:\n")
		fmt.Fprintf(c.out, "  Stock Records: %d\n", len(stock))
		fmt.Fprintf(c.out, "  Requisitions: %d\n", len(reqs))
		fmt.Fprintf(c.out, "  Warehouses: %d\n\n", len(warehouses))
	}

	// Create repositories
	stockRepo := memory.NewStockRepository()
	if err := stockRepo.LoadStock(stock, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to load stock into repository: %w", err)
	}
	reqRepo := memory.NewRequisitionRepository()
	if err := reqRepo.LoadRequisitions(reqs); err != nil {
		return fmt.Errorf("failed to load requisitions into repository: %w", err)
	}
	warehouseRepo := memory.NewWarehouseRepository(warehouses...)

	transferRepo, closeStore, err := c.openTransferStore()
	if err != nil {
		return err
	}
	defer closeStore()

	service := transfer.NewService(stockRepo, reqRepo, warehouseRepo, transferRepo, transfer.WithLogger(log))

	// Without a requisition, list what can be picked
	if c.config.RequisitionID == "" {
		open, err := service.OpenRequisitions(ctx)
		if err != nil {
			return err
		}
		output.WriteRequisitions(c.out, open)
		return nil
	}

	if c.config.SourceWarehouseID == "" {
		options, err := service.SourceOptions(ctx, c.config.RequisitionID)
		if err != nil {
			return err
		}
		output.WriteSourceOptions(c.out, options)
		return nil
	}

	selection := dto.SelectionRequest{
		RequisitionID:     c.config.RequisitionID,
		SourceWarehouseID: entities.WarehouseID(c.config.SourceWarehouseID),
		Quantities:        c.config.Quantities,
	}

	preview, err := service.Preview(ctx, selection)
	if err != nil {
		return fmt.Errorf("error computing allocation: %w", err)
	}
	report := &output.Report{Preview: preview}

	if c.config.Submit {
		if preview.Blocker != nil {
			return fmt.Errorf("cannot submit: %w", preview.Blocker)
		}
		report.Submission, err = service.Submit(ctx, dto.SubmitRequest{
			SelectionRequest: selection,
			SubmittedBy:      c.config.SubmittedBy,
		})
		if err != nil {
			return fmt.Errorf("error submitting transfer: %w", err)
		}
	}

	// Generate output
	outputConfig := output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
		Out:       c.out,
	}
	if err := output.Generate(report, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	return nil
}

// openTransferStore opens the sqlite store when submitting; previews use an
// in-memory store
func (c *TransferCommand) openTransferStore() (repositories.TransferRepository, func(), error) {
	if !c.config.Submit {
		return memory.NewTransferRepository(), func() {}, nil
	}

	store, err := sqlite.New(c.config.SQLitePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open transfer store: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}

// validateInputs validates the command configuration
func (c *TransferCommand) validateInputs() error {
	if c.config.ScenarioDir == "" &&
		(c.config.StockFile == "" || c.config.RequisitionsFile == "" || c.config.WarehousesFile == "") {
		return fmt.Errorf("must specify either -scenario directory or individual CSV files")
	}
	if !output.ValidFormat(c.config.Format) {
		return fmt.Errorf("unsupported output format: %s", c.config.Format)
	}
	if c.config.Submit && c.config.SQLitePath == "" {
		return fmt.Errorf("-submit requires -db")
	}
	if len(c.config.Quantities) > 0 && c.config.SourceWarehouseID == "" {
		return fmt.Errorf("-qty requires -source")
	}
	return nil
}

// resolveInputFiles determines the actual file paths to use
func (c *TransferCommand) resolveInputFiles() (map[string]string, error) {
	var stockPath, requisitionsPath, warehousesPath string

	if c.config.ScenarioDir != "" {
		stockPath = filepath.Join(c.config.ScenarioDir, csv.StockFile)
		requisitionsPath = filepath.Join(c.config.ScenarioDir, csv.RequisitionsFile)
		warehousesPath = filepath.Join(c.config.ScenarioDir, csv.WarehousesFile)
	} else {
		stockPath = c.config.StockFile
		requisitionsPath = c.config.RequisitionsFile
		warehousesPath = c.config.WarehousesFile
	}

	files := map[string]string{
		"Stock":        stockPath,
		"Requisitions": requisitionsPath,
		"Warehouses":   warehousesPath,
	}

	// Validate files exist
	for name, path := range files {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s file not found: %s", name, path)
		}
	}

	return files, nil
}

// printHeader prints the command header information
func (c *TransferCommand) printHeader(files map[string]string) {
	fmt.Fprintf(c.out, "🚀 Stock Transfer CLI\n")
	fmt.Fprintf(c.out, "Input files:\n")
	fmt.Fprintf(c.out, "  Stock: %s\n", files["Stock"])
	fmt.Fprintf(c.out, "  Requisitions: %s\n", files["Requisitions"])
	fmt.Fprintf(c.out, "  Warehouses: %s\n", files["Warehouses"])
	fmt.Fprintf(c.out, "Output format: %s\n", c.config.Format)
	if c.config.OutputDir != "" {
		fmt.Fprintf(c.out, "Output directory: %s\n", c.config.OutputDir)
	}
	fmt.Fprintln(c.out)
}

// showHelp displays the help message
func (c *TransferCommand) showHelp() {
	fmt.Fprintf(c.out, `Stock Transfer CLI - allocate outlet requisitions against warehouse stock

USAGE:
    transfer -scenario <directory>                       # List open requisitions
    transfer -scenario <dir> -mr <id>                    # List source warehouses
    transfer -scenario <dir> -mr <id> -source <wh>       # Preview the transfer
    transfer -scenario <dir> -mr <id> -source <wh> -submit -db transfers.db
    transfer generate -output <dir> [OPTIONS]            # Write a random scenario

OPTIONS:
    -scenario <dir>       Path to scenario directory containing CSV files
    -stock <file>         Path to stock CSV file
    -requisitions <file>  Path to requisitions CSV file
    -warehouses <file>    Path to warehouses CSV file
    -mr <id>              Requisition to fulfil
    -source <id>          Source warehouse
    -qty <SKU=n>          Transfer quantity for one SKU (repeatable)
    -submit               Store the transfer
    -db <file>            SQLite file for submitted transfers
    -user <name>          Recorded as the transfer author
    -output <dir>         Output directory for results (csv, xlsx and html)
    -format <fmt>         Output format: text, json, csv, xlsx, html (default: text)
    -verbose              Enable verbose output
    -help                 Show this help message

SCENARIO DIRECTORY STRUCTURE:
    scenario_name/
    ├── stock.csv          # Stock per warehouse and bin
    ├── requisitions.csv   # One row per requisition line
    └── warehouses.csv     # Warehouse master

CSV FILE FORMATS:

stock.csv:
    id,sku,item_id,item_name,warehouse_id,warehouse_name,bin_id,bin_name,on_hand,reserved,available,supplier_id,supplier_name
    1,FLOUR,11,Bread Flour,1,Central Store,C-01,Chiller 1,30,0,,501,Mill & Co

requisitions.csv:
    requisition_id,number,destination_warehouse_id,destination_bin_id,destination_bin_name,requester,date,item_id,sku,item_name,uom_name,qty,received_qty
    101,MRQ-101,2,D-IN,Receiving,outlet.manager,2025-02-28,11,FLOUR,Bread Flour,KG,60,10

warehouses.csv:
    id,name
    1,Central Store

EXAMPLES:
    # Preview requisition 101 from the central store
    transfer -scenario testdata/bakery -mr 101 -source 1

    # Cap flour at 25 and export a workbook
    transfer -scenario testdata/bakery -mr 101 -source 1 -qty FLOUR=25 -format xlsx -output out/

    # Submit
    transfer -scenario testdata/bakery -mr 101 -source 1 -submit -db transfers.db -user store.clerk

    # Print a transfer note
    transfer -scenario testdata/bakery -mr 101 -source 1 -format html -output out/
`)
}
