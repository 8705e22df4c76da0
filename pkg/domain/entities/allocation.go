package entities

import "fmt"

// LineStatus classifies how much of a demand line the source warehouse can cover
type LineStatus int

const (
	// Short means the source warehouse has nothing available for the line
	Short LineStatus = iota
	// Partial means some, but not all, of the remaining quantity is available
	Partial
	// Ready means the whole remaining quantity is available
	Ready
)

// String method for LineStatus enum
func (s LineStatus) String() string {
	switch s {
	case Short:
		return "SHORT"
	case Partial:
		return "PARTIAL"
	case Ready:
		return "READY"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the status by name
func (s LineStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name
func (s *LineStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "SHORT":
		*s = Short
	case "PARTIAL":
		*s = Partial
	case "READY":
		*s = Ready
	default:
		return fmt.Errorf("unknown line status %q", string(text))
	}
	return nil
}

// ClassifyLine derives the status of a line from its remaining demand and the
// quantity available at the source
func ClassifyLine(remaining, available Quantity) LineStatus {
	switch {
	case !available.IsPositive():
		return Short
	case !available.LessThan(remaining):
		return Ready
	default:
		return Partial
	}
}

// AllocationResult is the derived allocation state of one demand line
type AllocationResult struct {
	SKU            string     `json:"sku"`
	ItemID         string     `json:"item_id"`
	ItemName       string     `json:"item_name"`
	UOM            string     `json:"uom"`
	RemainingQty   Quantity   `json:"remaining_qty"`
	AvailableQty   Quantity   `json:"available_qty"`
	MaxTransferQty Quantity   `json:"max_transfer_qty"`
	TransferQty    Quantity   `json:"transfer_qty"`
	ShortageQty    Quantity   `json:"shortage_qty"`
	Status         LineStatus `json:"status"`
}

// AllocationSummary is the outcome of one allocator pass. The counters are
// derived from Lines.
type AllocationSummary struct {
	Lines                 []AllocationResult `json:"lines"`
	ShortageCount         int                `json:"shortage_count"`
	TransferableLineCount int                `json:"transferable_line_count"`
}

// AnyTransfer reports whether at least one line has a positive transfer quantity
func (s AllocationSummary) AnyTransfer() bool {
	for _, l := range s.Lines {
		if l.TransferQty.IsPositive() {
			return true
		}
	}
	return false
}
