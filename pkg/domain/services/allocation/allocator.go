package allocation

import (
	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

// Allocate computes the allocation result of every demand line against the
// index. entered holds the transfer quantities currently entered for the
// lines, aligned by position; a missing, zero or negative entry counts as
// unset and is auto-filled to the line's cap.
func Allocate(demand entities.DemandSet, ix Index, entered []entities.Quantity) entities.AllocationSummary {
	summary := entities.AllocationSummary{
		Lines: make([]entities.AllocationResult, 0, len(demand.Lines)),
	}

	for i, line := range demand.Lines {
		current := entities.ZeroQty
		if i < len(entered) {
			current = entered[i]
		}

		result := AllocateLine(line, ix.Available(line.SKU), current)
		if result.Status == entities.Short {
			summary.ShortageCount++
		} else {
			summary.TransferableLineCount++
		}
		summary.Lines = append(summary.Lines, result)
	}

	return summary
}

// AllocateLine computes the cap, shortage and status of one line.
//
// The current transfer quantity is kept when it is positive and within the
// new cap. Otherwise it is reset to the cap, so a rise in availability never
// overrides a deliberately reduced entry while a fall always re-clamps.
func AllocateLine(line entities.DemandLine, available, current entities.Quantity) entities.AllocationResult {
	remaining := line.RemainingQty.NonNegative()
	maxTransfer := remaining.Clamp(entities.ZeroQty, available)
	status := entities.ClassifyLine(remaining, available)

	transfer := current
	if !transfer.IsPositive() || transfer.GreaterThan(maxTransfer) {
		transfer = maxTransfer
	}
	if status == entities.Short {
		transfer = entities.ZeroQty
	}

	return entities.AllocationResult{
		SKU:            line.SKU,
		ItemID:         line.ItemID,
		ItemName:       line.ItemName,
		UOM:            line.UOM,
		RemainingQty:   remaining,
		AvailableQty:   available,
		MaxTransferQty: maxTransfer,
		TransferQty:    transfer,
		ShortageQty:    remaining.Sub(available).NonNegative(),
		Status:         status,
	}
}

// ClampTransferQty bounds a user-entered transfer quantity to [0, limit]
func ClampTransferQty(requested, limit entities.Quantity) entities.Quantity {
	return requested.Clamp(entities.ZeroQty, limit.NonNegative())
}
