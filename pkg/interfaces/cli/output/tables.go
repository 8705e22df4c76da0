package output

import "github.com/vsinha/stocktransfer/pkg/application/dto"

// table is one tabular section of a report, shared by the CSV and XLSX
// writers
type table struct {
	name   string
	header []string
	rows   [][]string
}

func reportTables(report *Report) []table {
	preview := report.Preview

	allocation := table{
		name:   "allocation",
		header: []string{"sku", "item_name", "uom", "remaining_qty", "available_qty", "max_transfer_qty", "transfer_qty", "shortage_qty", "status"},
	}
	for _, l := range preview.Allocation.Lines {
		allocation.rows = append(allocation.rows, []string{
			l.SKU, l.ItemName, l.UOM, l.RemainingQty.String(), l.AvailableQty.String(),
			l.MaxTransferQty.String(), l.TransferQty.String(), l.ShortageQty.String(), l.Status.String(),
		})
	}

	instructions := table{
		name: "instructions",
		header: []string{"sku", "item_name", "from_warehouse_id", "from_bin_id", "from_bin_name",
			"to_warehouse_id", "to_bin_id", "qty", "bin_on_hand", "bin_available", "supplier_id"},
	}
	shortages := table{
		name:   "shortages",
		header: []string{"sku", "item_name", "needed", "available_at_submit"},
	}
	if preview.Plan != nil {
		for _, in := range preview.Plan.Instructions {
			instructions.rows = append(instructions.rows, []string{
				in.SKU, in.ItemName, string(in.FromWarehouseID), string(in.FromBinID), in.FromBinName,
				string(in.ToWarehouseID), string(in.ToBinID), in.Qty.String(),
				in.BinOnHand.String(), in.BinAvailable.String(), in.SupplierID,
			})
		}
		for _, s := range preview.Plan.Shortages {
			shortages.rows = append(shortages.rows, []string{
				s.SKU, s.ItemName, s.Needed.String(), s.AvailableAtSubmit.String(),
			})
		}
	}

	tables := []table{allocation, instructions, shortages}
	if sub := report.Submission; sub != nil && sub.Transfer != nil {
		tables = append(tables, submissionTable(sub))
	}
	return tables
}

func submissionTable(sub *dto.SubmitResponse) table {
	duplicate := "false"
	if sub.Duplicate {
		duplicate = "true"
	}
	return table{
		name:   "transfer",
		header: []string{"id", "transfer_no", "requisition_no", "created_at", "duplicate"},
		rows: [][]string{{
			sub.Transfer.ID, sub.Transfer.TransferNo, sub.Transfer.RequisitionNo,
			sub.Transfer.CreatedAt.Format("2006-01-02T15:04:05Z07:00"), duplicate,
		}},
	}
}
