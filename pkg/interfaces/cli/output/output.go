package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vsinha/stocktransfer/pkg/application/dto"
	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatHTML = "html"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	Out       io.Writer
}

func (c Config) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Report is everything one CLI run produced
type Report struct {
	Preview    *dto.PreviewResponse `json:"preview"`
	Submission *dto.SubmitResponse  `json:"submission,omitempty"`
}

// Generate creates output in the specified format
func Generate(report *Report, config Config) error {
	switch config.Format {
	case FormatText:
		return generateTextOutput(report, config)
	case FormatJSON:
		return generateJSONOutput(report, config)
	case FormatCSV:
		return generateCSVOutput(report, config)
	case FormatXLSX:
		return generateXLSXOutput(report, config)
	case FormatHTML:
		return generateHTMLOutput(report, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// ValidFormat reports whether format is supported
func ValidFormat(format string) bool {
	switch format {
	case FormatText, FormatJSON, FormatCSV, FormatXLSX, FormatHTML:
		return true
	}
	return false
}

// WriteRequisitions prints the open requisition list
func WriteRequisitions(w io.Writer, reqs []entities.RequisitionSummary) {
	fmt.Fprintf(w, "📋 Open Requisitions:\n")
	fmt.Fprintf(w, "%-8s %-12s %-12s %-12s %-11s\n", "ID", "Number", "Destination", "Remaining", "Transferred")
	fmt.Fprintf(w, "%-8s %-12s %-12s %-12s %-11s\n", "--------", "------------", "------------", "------------", "-----------")
	for _, r := range reqs {
		transferred := ""
		if r.Transferred {
			transferred = "yes"
		}
		fmt.Fprintf(w, "%-8s %-12s %-12s %-12s %-11s\n",
			r.ID, r.Number, r.DestinationWarehouseID, r.RemainingQty, transferred)
	}
}

// WriteSourceOptions prints the selectable source warehouses
func WriteSourceOptions(w io.Writer, options []entities.SourceOption) {
	fmt.Fprintf(w, "🏬 Source Warehouses:\n")
	for _, o := range options {
		fmt.Fprintf(w, "  %-6s %s\n", o.ID, o.Label)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(report *Report, config Config) error {
	w := config.out()
	preview := report.Preview

	fmt.Fprintf(w, "📊 Transfer Preview\n")
	fmt.Fprintf(w, "===================\n\n")

	fmt.Fprintf(w, "Requisition: %s\n", preview.RequisitionNo)
	fmt.Fprintf(w, "Route: %s -> %s (bin %s)\n",
		preview.Route.FromWarehouseID, preview.Route.ToWarehouseID, preview.Route.ToBinID)
	fmt.Fprintf(w, "State: %s\n", preview.State)
	fmt.Fprintf(w, "Shortages: %d\n", preview.Allocation.ShortageCount)
	fmt.Fprintf(w, "Transferable Lines: %d\n\n", preview.Allocation.TransferableLineCount)

	if len(preview.Allocation.Lines) > 0 {
		fmt.Fprintf(w, "📦 Allocation:\n")
		fmt.Fprintf(w, "%-12s %-10s %-10s %-10s %-10s %-10s %-8s\n",
			"SKU", "Remaining", "Available", "Max", "Transfer", "Shortage", "Status")
		fmt.Fprintf(w, "%-12s %-10s %-10s %-10s %-10s %-10s %-8s\n",
			"------------", "----------", "----------", "----------", "----------", "----------", "--------")

		for _, line := range preview.Allocation.Lines {
			fmt.Fprintf(w, "%-12s %-10s %-10s %-10s %-10s %-10s %-8s\n",
				line.SKU,
				line.RemainingQty,
				line.AvailableQty,
				line.MaxTransferQty,
				line.TransferQty,
				line.ShortageQty,
				line.Status)
		}
		fmt.Fprintln(w)
	}

	if preview.Plan != nil && len(preview.Plan.Instructions) > 0 {
		fmt.Fprintf(w, "🚚 Transfer Instructions:\n")
		fmt.Fprintf(w, "%-12s %-10s %-10s %-10s %-10s\n", "SKU", "From Bin", "Qty", "Available", "Supplier")
		fmt.Fprintf(w, "%-12s %-10s %-10s %-10s %-10s\n",
			"------------", "----------", "----------", "----------", "----------")

		for _, in := range preview.Plan.Instructions {
			fmt.Fprintf(w, "%-12s %-10s %-10s %-10s %-10s\n",
				in.SKU, in.FromBinID, in.Qty, in.BinAvailable, in.SupplierID)
		}
		fmt.Fprintln(w)
	}

	if preview.Plan != nil && len(preview.Plan.Shortages) > 0 {
		fmt.Fprintf(w, "⚠️  Shortages at submit:\n")
		for _, s := range preview.Plan.Shortages {
			fmt.Fprintf(w, "  %-12s needed %s, available %s\n", s.SKU, s.Needed, s.AvailableAtSubmit)
		}
		fmt.Fprintln(w)
	}

	if preview.Blocker != nil {
		fmt.Fprintf(w, "⛔ Not ready: %s\n\n", preview.Blocker.Message)
	}

	if sub := report.Submission; sub != nil {
		if sub.Duplicate {
			fmt.Fprintf(w, "♻️  Already submitted as %s\n", sub.Transfer.TransferNo)
		} else {
			fmt.Fprintf(w, "✅ Submitted %s (%d instructions)\n", sub.Transfer.TransferNo, len(sub.Transfer.Instructions))
		}
	}

	return nil
}

// generateJSONOutput creates JSON output
func generateJSONOutput(report *Report, config Config) error {
	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.out(), string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, "transfer_preview.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.out(), "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}
