package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vsinha/stocktransfer/pkg/application/dto"
	"github.com/vsinha/stocktransfer/pkg/application/services/transfer"
	"github.com/vsinha/stocktransfer/pkg/domain/entities"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	service *transfer.Service
	logger  *zap.Logger
}

// NewHandler creates a new handler over the transfer service.
func NewHandler(service *transfer.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger.Named("http")}
}

// ErrorResponse is the body of every error reply. Rejections carry their
// code and field.
type ErrorResponse struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListRequisitions returns the open requisitions.
func (h *Handler) ListRequisitions(w http.ResponseWriter, r *http.Request) {
	open, err := h.service.OpenRequisitions(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, open)
}

// ListSources returns the source warehouse options of a requisition.
func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	options, err := h.service.SourceOptions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, options)
}

// ListEvents returns the event history of a requisition.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// Preview recomputes the allocation of a selection.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req dto.SelectionRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.service.Preview(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SubmitTransfer stores the transfer of a selection. A repeated identical
// submission answers 200 with the stored transfer instead of 201.
func (h *Handler) SubmitTransfer(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.service.Submit(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	status := http.StatusCreated
	if resp.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

// GetTransfer returns a stored transfer.
func (h *Handler) GetTransfer(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.GetTransfer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func decode(w http.ResponseWriter, r *http.Request, into any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Code: "invalid_request", Message: err.Error()})
		return false
	}
	return true
}

// writeError maps domain errors to HTTP statuses
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if rejection, ok := entities.AsRejection(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Code:    string(rejection.Code),
			Field:   rejection.Field,
			Message: rejection.Message,
		})
		return
	}

	switch {
	case entities.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Code: "not_found", Message: err.Error()})
	case errors.Is(err, transfer.ErrAlreadySubmitted), errors.Is(err, entities.ErrDuplicateSubmission):
		writeJSON(w, http.StatusConflict, ErrorResponse{Code: "conflict", Message: err.Error()})
	default:
		h.logger.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Code: "internal", Message: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
