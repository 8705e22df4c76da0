package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vsinha/stocktransfer/pkg/interfaces/cli/commands"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "generate" {
		runGenerate(os.Args[2:])
		return
	}

	quantities := commands.QuantityFlags{}

	// Command line flags
	var (
		scenarioDir = flag.String(
			"scenario",
			"",
			"Path to scenario directory containing CSV files",
		)
		stockFile        = flag.String("stock", "", "Path to stock CSV file")
		requisitionsFile = flag.String("requisitions", "", "Path to requisitions CSV file")
		warehousesFile   = flag.String("warehouses", "", "Path to warehouses CSV file")
		requisitionID    = flag.String("mr", "", "Requisition to fulfil")
		source           = flag.String("source", "", "Source warehouse")
		submit           = flag.Bool("submit", false, "Store the transfer")
		dbPath           = flag.String("db", "", "SQLite file for submitted transfers")
		user             = flag.String("user", "", "Recorded as the transfer author")
		outputDir        = flag.String("output", "", "Output directory for results (optional)")
		format           = flag.String("format", "text", "Output format: text, json, csv, xlsx, html")
		verbose          = flag.Bool("verbose", false, "Enable verbose output")
		help             = flag.Bool("help", false, "Show help message")
	)
	flag.Var(quantities, "qty", "Transfer quantity as SKU=n (repeatable)")

	flag.Parse()

	// Create command configuration
	config := commands.Config{
		ScenarioDir:       *scenarioDir,
		StockFile:         *stockFile,
		RequisitionsFile:  *requisitionsFile,
		WarehousesFile:    *warehousesFile,
		RequisitionID:     *requisitionID,
		SourceWarehouseID: *source,
		Quantities:        quantities,
		Submit:            *submit,
		SQLitePath:        *dbPath,
		SubmittedBy:       *user,
		OutputDir:         *outputDir,
		Format:            *format,
		Verbose:           *verbose,
		Help:              *help,
	}

	// Create and execute command
	cmd := commands.NewTransferCommand(config, os.Stdout)
	ctx := context.Background()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var (
		items        = fs.Int("items", 50, "Number of distinct SKUs")
		warehouses   = fs.Int("warehouses", 4, "Number of warehouses")
		bins         = fs.Int("bins", 3, "Maximum bins per SKU and warehouse")
		requisitions = fs.Int("requisitions", 20, "Number of requisitions")
		lines        = fs.Int("lines", 8, "Maximum lines per requisition")
		coverage     = fs.Float64("coverage", 1.0, "Stock over outstanding demand")
		outputDir    = fs.String("output", "", "Output directory for generated files")
		seed         = fs.Int64("seed", 0, "Random seed")
		verbose      = fs.Bool("verbose", false, "Enable verbose output")
		help         = fs.Bool("help", false, "Show help message")
	)
	_ = fs.Parse(args)

	cmd := commands.NewGenerateCommand(commands.GenerateConfig{
		Items:        *items,
		Warehouses:   *warehouses,
		Bins:         *bins,
		Requisitions: *requisitions,
		Lines:        *lines,
		Coverage:     *coverage,
		OutputDir:    *outputDir,
		Seed:         *seed,
		Help:         *help,
		Verbose:      *verbose,
	}, os.Stdout)

	if err := cmd.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
