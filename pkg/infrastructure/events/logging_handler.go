package events

import (
	"go.uber.org/zap"
)

// LoggingHandler writes every event it receives to a zap logger
type LoggingHandler struct {
	logger *zap.Logger
	types  map[string]struct{}
}

// NewLoggingHandler creates a handler for the given event types; none means
// all types
func NewLoggingHandler(logger *zap.Logger, eventTypes ...string) *LoggingHandler {
	h := &LoggingHandler{logger: logger, types: make(map[string]struct{}, len(eventTypes))}
	for _, t := range eventTypes {
		h.types[t] = struct{}{}
	}
	return h
}

var _ EventHandler = (*LoggingHandler)(nil)

func (h *LoggingHandler) CanHandle(eventType string) bool {
	if len(h.types) == 0 {
		return true
	}
	_, ok := h.types[eventType]
	return ok
}

func (h *LoggingHandler) Handle(event Event) error {
	fields := []zap.Field{
		zap.String("event_type", event.Type()),
		zap.String("stream_id", event.StreamID()),
		zap.Int("version", event.Version()),
	}

	switch data := event.Data().(type) {
	case TransferSubmitted:
		fields = append(fields,
			zap.String("transfer_no", data.TransferNo),
			zap.String("from_warehouse_id", string(data.Route.FromWarehouseID)),
			zap.String("to_warehouse_id", string(data.Route.ToWarehouseID)),
			zap.Int("instructions", data.InstructionCount),
			zap.Int("shortages", data.ShortageCount))
	case ShortageIdentified:
		fields = append(fields,
			zap.String("sku", data.Shortage.SKU),
			zap.Stringer("needed", data.Shortage.Needed),
			zap.Stringer("available_at_submit", data.Shortage.AvailableAtSubmit))
	case AllocationRecomputed:
		fields = append(fields,
			zap.String("source_warehouse_id", string(data.SourceWarehouseID)),
			zap.Int("lines", data.LineCount),
			zap.Int("short_lines", data.ShortageCount))
	}

	h.logger.Info("event", fields...)
	return nil
}
