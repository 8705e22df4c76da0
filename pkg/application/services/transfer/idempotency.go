package transfer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

var idempotencyNamespace = uuid.MustParse("6b1f0f0e-3f0c-4c64-9d4e-2a7b8d1c5e90")

// IdempotencyKey derives a stable key from a requisition and the plan built
// for it. Resubmitting the same instructions yields the same key.
func IdempotencyKey(requisitionID string, plan entities.TransferPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%s|%s\n", requisitionID,
		plan.Route.FromWarehouseID, plan.Route.ToWarehouseID, plan.Route.ToBinID)
	for _, in := range plan.Instructions {
		fmt.Fprintf(&b, "%s|%s|%s|%s\n", entities.NormalizeSKU(in.SKU), in.ItemID, in.FromBinID, in.Qty)
	}
	return uuid.NewSHA1(idempotencyNamespace, []byte(b.String())).String()
}
