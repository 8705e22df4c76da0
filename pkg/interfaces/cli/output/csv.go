package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// generateCSVOutput writes one CSV file per report table
func generateCSVOutput(report *Report, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}

	// Create output directory if it doesn't exist
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	for _, t := range reportTables(report) {
		filename := filepath.Join(config.OutputDir, t.name+".csv")
		if err := writeCSV(filename, t); err != nil {
			return fmt.Errorf("failed to write %s CSV: %w", t.name, err)
		}
		written = append(written, filename)
	}

	if config.Verbose {
		fmt.Fprintf(config.out(), "💾 CSV results saved to:\n")
		for _, f := range written {
			fmt.Fprintf(config.out(), "  %s\n", f)
		}
	}
	return nil
}

func writeCSV(filename string, t table) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(t.header); err != nil {
		return err
	}
	if err := w.WriteAll(t.rows); err != nil {
		return err
	}
	return file.Close()
}
