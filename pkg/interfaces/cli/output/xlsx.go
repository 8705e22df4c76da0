package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXFile is the workbook name written by the xlsx format
const XLSXFile = "transfer_plan.xlsx"

// generateXLSXOutput writes the report as a workbook with one sheet per table
func generateXLSXOutput(report *Report, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for XLSX format")
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := buildWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	filename := filepath.Join(config.OutputDir, XLSXFile)
	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.out(), "💾 Workbook saved to: %s\n", filename)
	}
	return nil
}

func buildWorkbook(report *Report) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, t := range reportTables(report) {
		sheet := sheetName(t.name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}

		if err := writeSheet(f, sheet, t, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to write sheet %s: %w", sheet, err)
		}
	}

	return f, nil
}

func writeSheet(f *excelize.File, sheet string, t table, headerStyle int) error {
	for i, h := range t.header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for r, row := range t.rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for i, v := range row {
			values[i] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	last, _ := excelize.ColumnNumberToName(len(t.header))
	return f.SetColWidth(sheet, "A", last, 16)
}

func sheetName(name string) string {
	return strings.ToUpper(name[:1]) + name[1:]
}
