package mongodb

import (
	"fmt"
	"time"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

// transferRecord is the stored shape of a transfer: one document per
// transfer with its lines embedded. Quantities are decimal strings.
type transferRecord struct {
	ID              string           `bson:"_id"`
	TransferNo      string           `bson:"transfer_no"`
	RequisitionID   string           `bson:"requisition_id"`
	RequisitionNo   string           `bson:"requisition_no"`
	FromWarehouseID string           `bson:"from_warehouse_id"`
	ToWarehouseID   string           `bson:"to_warehouse_id"`
	ToBinID         string           `bson:"to_bin_id"`
	Lines           []lineRecord     `bson:"lines"`
	Shortages       []shortageRecord `bson:"shortages"`
	IdempotencyKey  string           `bson:"idempotency_key,omitempty"`
	CreatedBy       string           `bson:"created_by"`
	CreatedAt       time.Time        `bson:"created_at"`
	UpdatedBy       string           `bson:"updated_by"`
	UpdatedAt       time.Time        `bson:"updated_at"`
}

type lineRecord struct {
	SKU                  string `bson:"sku"`
	ItemID               string `bson:"item_id"`
	ItemName             string `bson:"item_name"`
	FromWarehouseID      string `bson:"from_warehouse_id"`
	ToWarehouseID        string `bson:"to_warehouse_id"`
	FromBinID            string `bson:"from_bin_id"`
	FromBinName          string `bson:"from_bin_name"`
	ToBinID              string `bson:"to_bin_id"`
	Qty                  string `bson:"qty"`
	SupplierID           string `bson:"supplier_id,omitempty"`
	BinOnHand            string `bson:"bin_on_hand"`
	BinAvailable         string `bson:"bin_available"`
	RequestedQty         string `bson:"requested_qty"`
	RequestedQtyOriginal string `bson:"requested_qty_original"`
	ReceivedQty          string `bson:"received_qty"`
}

type shortageRecord struct {
	SKU               string `bson:"sku"`
	ItemName          string `bson:"item_name"`
	Needed            string `bson:"needed"`
	AvailableAtSubmit string `bson:"available_at_submit"`
}

func toRecord(doc *entities.TransferDocument) transferRecord {
	rec := transferRecord{
		ID:              doc.ID,
		TransferNo:      doc.TransferNo,
		RequisitionID:   doc.RequisitionID,
		RequisitionNo:   doc.RequisitionNo,
		FromWarehouseID: string(doc.Route.FromWarehouseID),
		ToWarehouseID:   string(doc.Route.ToWarehouseID),
		ToBinID:         string(doc.Route.ToBinID),
		Lines:           make([]lineRecord, 0, len(doc.Instructions)),
		Shortages:       make([]shortageRecord, 0, len(doc.Shortages)),
		IdempotencyKey:  doc.IdempotencyKey,
		CreatedBy:       doc.CreatedBy,
		CreatedAt:       doc.CreatedAt,
		UpdatedBy:       doc.UpdatedBy,
		UpdatedAt:       doc.UpdatedAt,
	}
	for _, in := range doc.Instructions {
		rec.Lines = append(rec.Lines, lineRecord{
			SKU:                  in.SKU,
			ItemID:               in.ItemID,
			ItemName:             in.ItemName,
			FromWarehouseID:      string(in.FromWarehouseID),
			ToWarehouseID:        string(in.ToWarehouseID),
			FromBinID:            string(in.FromBinID),
			FromBinName:          in.FromBinName,
			ToBinID:              string(in.ToBinID),
			Qty:                  in.Qty.String(),
			SupplierID:           in.SupplierID,
			BinOnHand:            in.BinOnHand.String(),
			BinAvailable:         in.BinAvailable.String(),
			RequestedQty:         in.RequestedQty.String(),
			RequestedQtyOriginal: in.RequestedQtyOriginal.String(),
			ReceivedQty:          in.ReceivedQty.String(),
		})
	}
	for _, sh := range doc.Shortages {
		rec.Shortages = append(rec.Shortages, shortageRecord{
			SKU:               sh.SKU,
			ItemName:          sh.ItemName,
			Needed:            sh.Needed.String(),
			AvailableAtSubmit: sh.AvailableAtSubmit.String(),
		})
	}
	return rec
}

func (rec transferRecord) toDocument() (*entities.TransferDocument, error) {
	doc := &entities.TransferDocument{
		ID:            rec.ID,
		TransferNo:    rec.TransferNo,
		RequisitionID: rec.RequisitionID,
		RequisitionNo: rec.RequisitionNo,
		Route: entities.Route{
			FromWarehouseID: entities.WarehouseID(rec.FromWarehouseID),
			ToWarehouseID:   entities.WarehouseID(rec.ToWarehouseID),
			ToBinID:         entities.BinID(rec.ToBinID),
		},
		Instructions:   make([]entities.TransferInstruction, 0, len(rec.Lines)),
		Shortages:      make([]entities.LineShortage, 0, len(rec.Shortages)),
		IdempotencyKey: rec.IdempotencyKey,
		CreatedBy:      rec.CreatedBy,
		CreatedAt:      rec.CreatedAt.UTC(),
		UpdatedBy:      rec.UpdatedBy,
		UpdatedAt:      rec.UpdatedAt.UTC(),
	}

	p := quantityParser{}
	for _, l := range rec.Lines {
		doc.Instructions = append(doc.Instructions, entities.TransferInstruction{
			SKU:                  l.SKU,
			ItemID:               l.ItemID,
			ItemName:             l.ItemName,
			FromWarehouseID:      entities.WarehouseID(l.FromWarehouseID),
			ToWarehouseID:        entities.WarehouseID(l.ToWarehouseID),
			FromBinID:            entities.BinID(l.FromBinID),
			FromBinName:          l.FromBinName,
			ToBinID:              entities.BinID(l.ToBinID),
			Qty:                  p.parse(l.Qty),
			SupplierID:           l.SupplierID,
			BinOnHand:            p.parse(l.BinOnHand),
			BinAvailable:         p.parse(l.BinAvailable),
			RequestedQty:         p.parse(l.RequestedQty),
			RequestedQtyOriginal: p.parse(l.RequestedQtyOriginal),
			ReceivedQty:          p.parse(l.ReceivedQty),
		})
	}
	for _, sh := range rec.Shortages {
		doc.Shortages = append(doc.Shortages, entities.LineShortage{
			SKU:               sh.SKU,
			ItemName:          sh.ItemName,
			Needed:            p.parse(sh.Needed),
			AvailableAtSubmit: p.parse(sh.AvailableAtSubmit),
		})
	}

	if p.err != nil {
		return nil, fmt.Errorf("transfer %s: %w", rec.ID, p.err)
	}
	return doc, nil
}

// quantityParser keeps the first parse error
type quantityParser struct {
	err error
}

func (p *quantityParser) parse(s string) entities.Quantity {
	if s == "" {
		return entities.ZeroQty
	}
	q, err := entities.ParseQuantity(s)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("corrupt quantity %q: %w", s, err)
	}
	return q
}
