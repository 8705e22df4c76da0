// Package transfer drives stock transfers for material requisitions: it keeps
// a user's selection as a Session, recomputes the allocation on every change
// and hands built plans to the transfer store.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vsinha/stocktransfer/pkg/application/dto"
	"github.com/vsinha/stocktransfer/pkg/domain/entities"
	"github.com/vsinha/stocktransfer/pkg/domain/repositories"
	"github.com/vsinha/stocktransfer/pkg/infrastructure/events"
)

// Service loads the inputs of a transfer from its collaborators, runs the
// allocation and persists submitted transfers
type Service struct {
	stock        repositories.StockRepository
	requisitions repositories.RequisitionRepository
	warehouses   repositories.WarehouseRepository
	transfers    repositories.TransferRepository
	transferred  []repositories.TransferredRequisitionLister

	eventStore events.EventStore
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithEventStore publishes transfer events to store
func WithEventStore(store events.EventStore) Option {
	return func(s *Service) { s.eventStore = store }
}

// WithTransferredLister adds a source of already transferred requisitions
// next to the transfer store
func WithTransferredLister(lister repositories.TransferredRequisitionLister) Option {
	return func(s *Service) { s.transferred = append(s.transferred, lister) }
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a transfer service
func NewService(
	stock repositories.StockRepository,
	requisitions repositories.RequisitionRepository,
	warehouses repositories.WarehouseRepository,
	transfers repositories.TransferRepository,
	opts ...Option,
) *Service {
	s := &Service{
		stock:        stock,
		requisitions: requisitions,
		warehouses:   warehouses,
		transfers:    transfers,
		logger:       zap.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("transfer")
	return s
}

// OpenRequisitions lists requisitions with outstanding demand
func (s *Service) OpenRequisitions(ctx context.Context) ([]entities.RequisitionSummary, error) {
	reqs, err := s.requisitions.ListRequisitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list requisitions: %w", err)
	}

	return OpenRequisitions(reqs, s.transferredIDs(ctx)), nil
}

// transferredIDs unions every transferred lister. A failing lister only
// loses its annotation.
func (s *Service) transferredIDs(ctx context.Context) map[string]struct{} {
	ids := make(map[string]struct{})
	listers := append([]repositories.TransferredRequisitionLister{s.transfers}, s.transferred...)
	for _, lister := range listers {
		found, err := lister.TransferredRequisitionIDs(ctx)
		if err != nil {
			s.logger.Warn("failed to load transferred requisition ids", zap.Error(err))
			continue
		}
		for id := range found {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// SourceOptions lists the warehouses a requisition can be supplied from
func (s *Service) SourceOptions(ctx context.Context, requisitionID string) ([]entities.SourceOption, error) {
	session, err := s.newSession(ctx, dto.SelectionRequest{RequisitionID: requisitionID})
	if err != nil {
		return nil, err
	}
	return session.SourceOptions(), nil
}

// Preview recomputes the allocation for a selection. Incomplete selections
// are not an error: the response names the blocker instead.
func (s *Service) Preview(ctx context.Context, req dto.SelectionRequest) (*dto.PreviewResponse, error) {
	session, err := s.newSession(ctx, req)
	if err != nil {
		return nil, err
	}

	summary := session.Allocation()
	resp := &dto.PreviewResponse{
		RequisitionID:   session.Requisition().ID,
		RequisitionNo:   session.Requisition().DisplayNumber(),
		Route:           session.Route(),
		Allocation:      summary,
		CandidateRows:   session.CandidateRows(),
		Warnings:        session.Shortages(),
		SnapshotTakenAt: session.Snapshot().TakenAt(),
	}

	plan, err := session.Build()
	switch rejection, ok := entities.AsRejection(err); {
	case err == nil:
		resp.Plan = &plan
	case ok:
		resp.Blocker = rejection
	default:
		return nil, err
	}
	resp.State = session.State().String()

	s.publish(events.NewAllocationRecomputedEvent(resp.RequisitionID, session.Source(), summary, s.now()))
	return resp, nil
}

// Submit builds the transfer plan for a selection against the current stock
// snapshot and stores it. Submitting an identical instruction set again
// returns the stored transfer with Duplicate set.
func (s *Service) Submit(ctx context.Context, req dto.SubmitRequest) (*dto.SubmitResponse, error) {
	session, err := s.newSession(ctx, req.SelectionRequest)
	if err != nil {
		return nil, err
	}

	plan, err := session.Build()
	if err != nil {
		return nil, err
	}

	requisition := session.Requisition()
	doc := &entities.TransferDocument{
		ID:             uuid.NewString(),
		RequisitionID:  requisition.ID,
		RequisitionNo:  requisition.DisplayNumber(),
		Route:          plan.Route,
		Instructions:   plan.Instructions,
		Shortages:      plan.Shortages,
		IdempotencyKey: IdempotencyKey(requisition.ID, plan),
		CreatedBy:      req.SubmittedBy,
		UpdatedBy:      req.SubmittedBy,
	}

	saved, err := s.transfers.SaveTransfer(ctx, doc)
	if errors.Is(err, entities.ErrDuplicateSubmission) && saved != nil {
		s.logger.Info("duplicate transfer submission",
			zap.String("requisition_id", requisition.ID),
			zap.String("transfer_no", saved.TransferNo))
		return &dto.SubmitResponse{Transfer: saved, Duplicate: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save transfer for requisition %s: %w", requisition.ID, err)
	}
	session.MarkSubmitted()

	s.logger.Info("transfer submitted",
		zap.String("transfer_no", saved.TransferNo),
		zap.String("requisition_id", saved.RequisitionID),
		zap.String("from_warehouse_id", string(saved.Route.FromWarehouseID)),
		zap.String("to_warehouse_id", string(saved.Route.ToWarehouseID)),
		zap.Int("instructions", len(saved.Instructions)),
		zap.Int("shortages", len(saved.Shortages)))

	at := s.now()
	s.publish(events.NewTransferSubmittedEvent(*saved, at))
	for _, shortage := range saved.Shortages {
		s.publish(events.NewShortageIdentifiedEvent(*saved, shortage, at))
	}

	return &dto.SubmitResponse{Transfer: saved, Warnings: session.Shortages()}, nil
}

// GetTransfer returns a stored transfer
func (s *Service) GetTransfer(ctx context.Context, id string) (*entities.TransferDocument, error) {
	doc, err := s.transfers.GetTransfer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer %s: %w", id, err)
	}
	return doc, nil
}

// History returns the events published for a requisition, oldest first.
// Without an event store the history is empty.
func (s *Service) History(ctx context.Context, requisitionID string) ([]events.Event, error) {
	if s.eventStore == nil {
		return []events.Event{}, nil
	}
	history, err := s.eventStore.ReadEvents(requisitionID, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to read events of requisition %s: %w", requisitionID, err)
	}
	return history, nil
}

// newSession loads the current snapshot and applies a selection to a fresh
// session
func (s *Service) newSession(ctx context.Context, req dto.SelectionRequest) (*Session, error) {
	if req.RequisitionID == "" {
		return nil, entities.Reject(entities.CodeNoSelection, "requisition_id", "select a requisition")
	}

	requisition, err := s.requisitions.GetRequisition(ctx, req.RequisitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get requisition %s: %w", req.RequisitionID, err)
	}
	snapshot, err := s.stock.GetSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock snapshot: %w", err)
	}
	warehouses, err := s.warehouses.ListWarehouses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouses: %w", err)
	}

	session := NewSession(snapshot, warehouses)
	if err := session.SelectRequisition(requisition); err != nil {
		return nil, err
	}
	if err := session.SelectSource(req.SourceWarehouseID); err != nil {
		return nil, err
	}

	skus := make([]string, 0, len(req.Quantities))
	for sku := range req.Quantities {
		skus = append(skus, sku)
	}
	sort.Strings(skus)
	for _, sku := range skus {
		if _, err := session.SetTransferQty(sku, req.Quantities[sku]); err != nil {
			return nil, err
		}
	}

	return session, nil
}

func (s *Service) publish(event events.Event) {
	if s.eventStore == nil {
		return
	}
	if err := s.eventStore.AppendEvent(event.StreamID(), event); err != nil {
		s.logger.Warn("failed to publish event", zap.String("event_type", event.Type()), zap.Error(err))
	}
}
