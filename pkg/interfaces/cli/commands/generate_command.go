package commands

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
	csvrepo "github.com/vsinha/stocktransfer/pkg/infrastructure/repositories/csv"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Items        int     // Number of distinct SKUs
	Warehouses   int     // Number of warehouses, the first one is the central store
	Bins         int     // Maximum bins per SKU and warehouse
	Requisitions int     // Number of requisitions
	Lines        int     // Maximum lines per requisition
	Coverage     float64 // Stock multiplier over total demand (0.5 = half coverage)
	OutputDir    string  // Output directory for generated files
	Seed         int64   // Random seed for reproducible generation
	Help         bool
	Verbose      bool
}

// GenerateCommand writes random scenarios for the transfer command
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
	out    io.Writer
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig, out io.Writer) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
		out:    out,
	}
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if cmd.config.Help {
		cmd.printHelp()
		return nil
	}
	if err := cmd.validate(); err != nil {
		return err
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out,
			"🔧 Generating scenario with %d items, %d warehouses, %d requisitions, %.1fx coverage\n",
			cmd.config.Items, cmd.config.Warehouses, cmd.config.Requisitions, cmd.config.Coverage)
		fmt.Fprintf(cmd.out, "📁 Output directory: %s\n", cmd.config.OutputDir)
	}

	scenario := cmd.Generate()
	if err := csvrepo.NewWriter().WriteScenario(cmd.config.OutputDir, scenario); err != nil {
		return err
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out, "✅ Wrote %d stock records and %d requisitions\n",
			len(scenario.Stock), len(scenario.Requisitions))
	}
	return nil
}

func (cmd *GenerateCommand) validate() error {
	switch {
	case cmd.config.OutputDir == "":
		return fmt.Errorf("-output is required")
	case cmd.config.Items < 1:
		return fmt.Errorf("-items must be at least 1")
	case cmd.config.Warehouses < 2:
		return fmt.Errorf("-warehouses must be at least 2")
	case cmd.config.Bins < 1:
		return fmt.Errorf("-bins must be at least 1")
	case cmd.config.Requisitions < 1:
		return fmt.Errorf("-requisitions must be at least 1")
	case cmd.config.Lines < 1:
		return fmt.Errorf("-lines must be at least 1")
	case cmd.config.Coverage <= 0:
		return fmt.Errorf("-coverage must be positive")
	}
	return nil
}

// Generate builds a random scenario. Requisitions are raised by every
// warehouse but the central store; stock is spread over all warehouses with
// most of it held centrally.
func (cmd *GenerateCommand) Generate() *csvrepo.Scenario {
	scenario := &csvrepo.Scenario{}

	for w := 1; w <= cmd.config.Warehouses; w++ {
		name := fmt.Sprintf("Outlet %d", w)
		if w == 1 {
			name = "Central Store"
		}
		scenario.Warehouses = append(scenario.Warehouses, entities.Warehouse{
			ID:   entities.WarehouseID(fmt.Sprint(w)),
			Name: name,
		})
	}

	demand := make([]int64, cmd.config.Items)
	baseDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for r := 0; r < cmd.config.Requisitions; r++ {
		dest := scenario.Warehouses[1+cmd.rand.Intn(len(scenario.Warehouses)-1)]
		req := &entities.Requisition{
			ID:                     fmt.Sprint(1001 + r),
			Number:                 fmt.Sprintf("MRQ-%04d", 1001+r),
			DestinationWarehouseID: dest.ID,
			DestinationBinID:       entities.BinID(fmt.Sprintf("IN-%s", dest.ID)),
			DestinationBinName:     "Receiving",
			Requester:              fmt.Sprintf("user%02d", 1+cmd.rand.Intn(20)),
			Date:                   baseDate.AddDate(0, 0, -cmd.rand.Intn(30)),
		}

		for _, item := range cmd.rand.Perm(cmd.config.Items)[:cmd.lineCount()] {
			qty := int64(1 + cmd.rand.Intn(50))
			received := int64(0)
			// A quarter of the lines are partly received, none fully
			if cmd.rand.Intn(4) == 0 {
				received = cmd.rand.Int63n(qty)
			}
			demand[item] += qty - received
			req.Lines = append(req.Lines, entities.RequisitionLine{
				ItemID:      fmt.Sprint(item + 1),
				SKU:         sku(item),
				ItemName:    fmt.Sprintf("Item %d", item+1),
				UOMName:     "EA",
				Qty:         entities.NewQuantity(qty),
				ReceivedQty: entities.NewQuantity(received),
			})
		}
		scenario.Requisitions = append(scenario.Requisitions, req)
	}

	for item, needed := range demand {
		total := int64(float64(needed) * cmd.config.Coverage)
		if total <= 0 {
			continue
		}
		scenario.Stock = append(scenario.Stock, cmd.generateStock(item, total, scenario.Warehouses, len(scenario.Stock))...)
	}

	return scenario
}

// generateStock spreads total units of an item over bins, two thirds of them
// in the central store
func (cmd *GenerateCommand) generateStock(item int, total int64, warehouses []entities.Warehouse, offset int) []*entities.StockRecord {
	var records []*entities.StockRecord
	central := total * 2 / 3
	shares := []int64{central, total - central}

	for i, share := range shares {
		if share <= 0 {
			continue
		}
		wh := warehouses[0]
		if i > 0 {
			wh = warehouses[1+cmd.rand.Intn(len(warehouses)-1)]
		}

		bins := 1 + cmd.rand.Intn(cmd.config.Bins)
		for b := 0; b < bins && share > 0; b++ {
			onHand := share
			if b < bins-1 {
				onHand = 1 + cmd.rand.Int63n(share)
			}
			share -= onHand

			reserved := int64(0)
			if cmd.rand.Intn(5) == 0 {
				reserved = cmd.rand.Int63n(onHand + 1)
			}

			record, err := entities.NewStockRecord(entities.StockEntry{
				ID:            fmt.Sprint(offset + len(records) + 1),
				SKU:           sku(item),
				ItemID:        fmt.Sprint(item + 1),
				ItemName:      fmt.Sprintf("Item %d", item+1),
				WarehouseID:   wh.ID,
				WarehouseName: wh.Name,
				BinID:         entities.BinID(fmt.Sprintf("%s-%02d", wh.ID, b+1)),
				BinName:       fmt.Sprintf("Rack %d", b+1),
				OnHand:        entities.NewQuantity(onHand),
				Reserved:      entities.NewQuantity(reserved),
				SupplierID:    fmt.Sprint(1 + cmd.rand.Intn(5)),
			})
			if err != nil {
				continue
			}
			records = append(records, record)
		}
	}
	return records
}

func (cmd *GenerateCommand) lineCount() int {
	n := 1 + cmd.rand.Intn(cmd.config.Lines)
	if n > cmd.config.Items {
		n = cmd.config.Items
	}
	return n
}

func sku(item int) string {
	return fmt.Sprintf("SKU-%04d", item+1)
}

// printHelp shows usage information
func (cmd *GenerateCommand) printHelp() {
	fmt.Fprintln(cmd.out, `Stock Transfer Scenario Generator

USAGE:
    transfer generate [OPTIONS]

OPTIONS:
    -items <N>           Number of distinct SKUs (default: 50)
    -warehouses <N>      Number of warehouses, at least 2 (default: 4)
    -bins <N>            Maximum bins per SKU and warehouse (default: 3)
    -requisitions <N>    Number of requisitions (default: 20)
    -lines <N>           Maximum lines per requisition (default: 8)
    -coverage <F>        Stock over outstanding demand (e.g., 0.5 = half coverage) (default: 1.0)
    -output <DIR>        Output directory for generated files (required)
    -seed <N>            Random seed for reproducible generation (optional)
    -verbose             Enable verbose output
    -help                Show this help message

EXAMPLES:
    # Generate a small scenario with shortages
    transfer generate -items 20 -requisitions 5 -coverage 0.5 -output ./short_scenario

    # Generate a reproducible scenario
    transfer generate -items 500 -requisitions 100 -seed 12345 -output ./large_scenario`)
}
