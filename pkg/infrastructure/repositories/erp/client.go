// Package erp reads stock, requisitions and warehouses from the upstream ERP
// REST API.
package erp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
	"github.com/vsinha/stocktransfer/pkg/domain/repositories"
	"github.com/vsinha/stocktransfer/pkg/infrastructure/config"
)

// ERP endpoints, relative to the base URL
const (
	stockListPath      = "/Stock/list"
	transferredIDsPath = "/Stock/transferred-mr-ids"
	requisitionsPath   = "/MaterialRequest"
	requisitionPath    = "/MaterialRequest/{id}"
	warehousesPath     = "/Warehouse"
)

// Client is a resty-backed ERP client. It serves as the stock, requisition
// and warehouse repository of the transfer service.
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
	now        func() time.Time
}

var (
	_ repositories.StockRepository              = (*Client)(nil)
	_ repositories.RequisitionRepository        = (*Client)(nil)
	_ repositories.WarehouseRepository          = (*Client)(nil)
	_ repositories.TransferredRequisitionLister = (*Client)(nil)
)

// NewClient builds an ERP client from the upstream settings.
func NewClient(cfg config.ERPConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	return &Client{
		httpClient: restyClient,
		logger:     logger.Named("erp"),
		now:        time.Now,
	}
}

// GetSnapshot fetches the stock list and freezes it into a snapshot. Rows
// that cannot form a stock record are skipped.
func (c *Client) GetSnapshot(ctx context.Context) (entities.StockSnapshot, error) {
	var rows []stockRow
	if err := c.get(ctx, stockListPath, nil, &rows); err != nil {
		return entities.StockSnapshot{}, fmt.Errorf("fetch stock list: %w", err)
	}

	records := make([]entities.StockRecord, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		record, err := entities.NewStockRecord(row.entry())
		if err != nil {
			skipped++
			continue
		}
		records = append(records, *record)
	}
	if skipped > 0 {
		c.logger.Warn("skipped stock rows", zap.Int("skipped", skipped), zap.Int("kept", len(records)))
	}

	return entities.NewStockSnapshot(records, c.now().UTC()), nil
}

// GetRequisition fetches one requisition with its lines.
func (c *Client) GetRequisition(ctx context.Context, requisitionID string) (*entities.Requisition, error) {
	var dto requisition
	err := c.get(ctx, requisitionPath, map[string]string{"id": requisitionID}, &dto)
	if err != nil {
		return nil, fmt.Errorf("fetch requisition %s: %w", requisitionID, err)
	}
	req := dto.toEntity()
	if req.ID == "" {
		req.ID = requisitionID
	}
	return req, nil
}

// ListRequisitions fetches every requisition.
func (c *Client) ListRequisitions(ctx context.Context) ([]*entities.Requisition, error) {
	var dtos []requisition
	if err := c.get(ctx, requisitionsPath, nil, &dtos); err != nil {
		return nil, fmt.Errorf("fetch requisitions: %w", err)
	}

	reqs := make([]*entities.Requisition, 0, len(dtos))
	for _, dto := range dtos {
		reqs = append(reqs, dto.toEntity())
	}
	return reqs, nil
}

// ListWarehouses fetches the warehouse master.
func (c *Client) ListWarehouses(ctx context.Context) ([]entities.Warehouse, error) {
	var dtos []warehouse
	if err := c.get(ctx, warehousesPath, nil, &dtos); err != nil {
		return nil, fmt.Errorf("fetch warehouses: %w", err)
	}

	warehouses := make([]entities.Warehouse, 0, len(dtos))
	for _, w := range dtos {
		warehouses = append(warehouses, entities.Warehouse{
			ID:   entities.WarehouseID(w.ID),
			Name: firstNonBlank(w.Name, w.WarehouseName),
		})
	}
	return warehouses, nil
}

// TransferredRequisitionIDs fetches the requisitions the ERP already holds
// transfers for.
func (c *Client) TransferredRequisitionIDs(ctx context.Context) (map[string]struct{}, error) {
	var raw json.RawMessage
	if err := c.get(ctx, transferredIDsPath, nil, &raw); err != nil {
		return nil, fmt.Errorf("fetch transferred requisition ids: %w", err)
	}
	ids, err := decodeIDs(raw)
	if err != nil {
		return nil, fmt.Errorf("decode transferred requisition ids: %w", err)
	}
	return ids, nil
}

// get performs a GET and unwraps the response envelope into out
func (c *Client) get(ctx context.Context, path string, params map[string]string, out any) error {
	var body envelope[json.RawMessage]

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParams(params).
		SetResult(&body).
		SetError(&body).
		Get(path)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return entities.ErrNotFound
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("erp api error: status=%d, message=%s", resp.StatusCode(), body.Message)
	}
	if !body.IsSuccess {
		message := body.Message
		if message == "" {
			message = "request not successful"
		}
		return fmt.Errorf("erp api error: %s", message)
	}

	if raw, ok := out.(*json.RawMessage); ok {
		*raw = body.Data
		return nil
	}
	if len(body.Data) == 0 || string(body.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(body.Data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
