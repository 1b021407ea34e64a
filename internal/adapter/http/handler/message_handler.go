package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/escrowpay/ledger/internal/adapter/http/dto"
	"github.com/escrowpay/ledger/internal/adapter/http/middleware"
	"github.com/escrowpay/ledger/internal/domain"
)

// MessageService is the message surface the handler needs.
type MessageService interface {
	GetMessage(ctx context.Context, tenantID, id string) (*domain.FinancialMessage, error)
	CompleteMessage(ctx context.Context, tenantID, id string) error
	ReverseMessage(ctx context.Context, tenantID, id string) error
}

// MessageBatchService lists the batches posted for one message.
type MessageBatchService interface {
	ListMessageBatches(ctx context.Context, tenantID, messageID string) ([]*domain.PostingBatch, error)
}

// MessageHandler handles financial message endpoints.
type MessageHandler struct {
	messages MessageService
	batches  MessageBatchService
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(messages MessageService, batches MessageBatchService) *MessageHandler {
	return &MessageHandler{messages: messages, batches: batches}
}

// Get handles GET /messages/{id}.
func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	message, err := h.messages.GetMessage(r.Context(), middleware.TenantID(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageFromDomain(message))
}

// Complete handles POST /messages/{id}/complete: the settlement
// acknowledgement that moves a posted message to its final phase.
func (h *MessageHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.messages.CompleteMessage)
}

// Reverse handles POST /messages/{id}/reverse. The compensating batch is
// posted separately through the refund operation; this endpoint only
// marks the original message.
func (h *MessageHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.messages.ReverseMessage)
}

func (h *MessageHandler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, tenantID, id string) error) {
	tenantID := middleware.TenantID(r.Context())
	id := chi.URLParam(r, "id")

	if err := fn(r.Context(), tenantID, id); err != nil {
		writeDomainError(w, err)
		return
	}

	message, err := h.messages.GetMessage(r.Context(), tenantID, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageFromDomain(message))
}

// ListBatches handles GET /messages/{id}/batches.
func (h *MessageHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	batches, err := h.batches.ListMessageBatches(r.Context(), middleware.TenantID(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchesFromDomain(batches))
}
