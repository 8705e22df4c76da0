package output

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

//go:embed templates/*.html
var templateFS embed.FS

// HTMLFile is the name of the transfer note written by the html format
const HTMLFile = "transfer_note.html"

// TransferNote is the data behind the printable transfer note
type TransferNote struct {
	RequisitionNo string
	TransferNo    string
	Duplicate     bool
	State         string
	Route         entities.Route
	Blocker       *entities.Rejection
	Lines         []entities.AllocationResult
	Instructions  []entities.TransferInstruction
	Shortages     []entities.LineShortage
	TotalQty      entities.Quantity
	GeneratedAt   string
}

func newTransferNote(report *Report, now time.Time) *TransferNote {
	preview := report.Preview
	note := &TransferNote{
		RequisitionNo: preview.RequisitionNo,
		State:         preview.State,
		Route:         preview.Route,
		Blocker:       preview.Blocker,
		Lines:         preview.Allocation.Lines,
		GeneratedAt:   now.Format("2006-01-02 15:04:05"),
	}
	if preview.Plan != nil {
		note.Instructions = preview.Plan.Instructions
		note.Shortages = preview.Plan.Shortages
		for _, in := range preview.Plan.Instructions {
			note.TotalQty = note.TotalQty.Add(in.Qty)
		}
	}
	if sub := report.Submission; sub != nil && sub.Transfer != nil {
		note.TransferNo = sub.Transfer.TransferNo
		note.Duplicate = sub.Duplicate
	}
	return note
}

// RenderHTML renders the transfer note of a report
func RenderHTML(report *Report, now time.Time) ([]byte, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/transfer_note.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newTransferNote(report, now)); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// generateHTMLOutput writes the transfer note to the output directory, or to
// the configured writer when no directory is set
func generateHTMLOutput(report *Report, config Config) error {
	html, err := RenderHTML(report, time.Now())
	if err != nil {
		return fmt.Errorf("failed to generate transfer note: %w", err)
	}

	if config.OutputDir == "" {
		_, err := config.out().Write(html)
		return err
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(config.OutputDir, HTMLFile)
	if err := os.WriteFile(filename, html, 0644); err != nil {
		return fmt.Errorf("failed to write HTML file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.out(), "🌐 Transfer note saved to: %s (%d bytes)\n", filename, len(html))
	}
	return nil
}
