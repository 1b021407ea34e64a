package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/escrowpay/ledger/internal/domain"
	"github.com/escrowpay/ledger/internal/infrastructure/metrics"
)

// MessageService handles financial message intake and terminal phase
// transitions. The LOCKED -> POSTED transition belongs to the posting
// engine; everything else comes through here.
type MessageService struct {
	messageRepo MessageRepository
	auditRepo   AuditRepository
	outboxRepo  OutboxRepository
	sequences   SequenceProvider
	idGen       IDGenerator
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewMessageService creates a new MessageService.
func NewMessageService(
	messageRepo MessageRepository,
	auditRepo AuditRepository,
	outboxRepo OutboxRepository,
	sequences SequenceProvider,
	idGen IDGenerator,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		auditRepo:   auditRepo,
		outboxRepo:  outboxRepo,
		sequences:   sequences,
		idGen:       idGen,
		metrics:     m,
		logger:      logger,
	}
}

// stanCounterKey scopes the STAN sequence to one tenant and one calendar
// day, the uniqueness the format promises.
func stanCounterKey(tenantID string, date time.Time) string {
	return fmt.Sprintf("stan:%s:%s", tenantID, date.UTC().Format("060102"))
}

// CreateMessage takes in a new financial message: STAN from the atomic
// per-tenant-per-day counter, freshly generated RRN, phase INITIATED.
func (uc *MessageService) CreateMessage(ctx context.Context, tenantID string, code domain.ProcessingCode) (*domain.FinancialMessage, error) {
	if !code.Valid() {
		return nil, domain.ErrNoLedgerEntry
	}

	now := time.Now().UTC()

	seq, err := uc.sequences.Next(ctx, stanCounterKey(tenantID, now), StanCounterTTL)
	if err != nil {
		return nil, fmt.Errorf("stan sequence: %w", err)
	}

	stan, err := domain.NewSTAN(now, seq)
	if err != nil {
		return nil, err
	}

	msg := &domain.FinancialMessage{
		ID:             uc.idGen.Generate(),
		TenantID:       tenantID,
		STAN:           stan,
		RRN:            domain.GenerateRRN(now),
		ProcessingCode: code,
		Phase:          domain.PhaseInitiated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		if err := uc.auditRepo.Create(ctx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			TenantID:     tenantID,
			Action:       string(domain.AuditActionMessageCreate),
			ResourceType: "financial_message",
			ResourceID:   msg.ID,
			RequestID:    RequestIDFromContext(ctx),
			AfterState:   domain.MarshalState(msg),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		}); err != nil {
			uc.logger.Error().Err(err).Str("message_id", msg.ID).Msg("failed to write audit record")
		}
	}

	if uc.metrics != nil {
		uc.metrics.MessagesCreated.Inc()
	}

	return msg, nil
}

// GetMessage retrieves a message scoped to its tenant.
func (uc *MessageService) GetMessage(ctx context.Context, tenantID, id string) (*domain.FinancialMessage, error) {
	msg, err := uc.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if msg.TenantID != tenantID {
		return nil, domain.ErrMessageNotFound
	}

	return msg, nil
}

// CompleteMessage finalizes a posted message.
func (uc *MessageService) CompleteMessage(ctx context.Context, tenantID, id string) error {
	return uc.transition(ctx, tenantID, id, domain.PhaseCompleted, domain.AuditActionMessageComplete)
}

// ReverseMessage marks a posted or completed message reversed. The
// offsetting batch itself is a separate posting; history is never edited.
func (uc *MessageService) ReverseMessage(ctx context.Context, tenantID, id string) error {
	if err := uc.transition(ctx, tenantID, id, domain.PhaseReversed, domain.AuditActionMessageReverse); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.MessagesReversed.Inc()
	}

	return nil
}

func (uc *MessageService) transition(ctx context.Context, tenantID, id string, next domain.Phase, action domain.AuditAction) error {
	msg, err := uc.GetMessage(ctx, tenantID, id)
	if err != nil {
		return err
	}

	before := domain.MarshalState(msg)

	if err := msg.TransitionTo(next); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := uc.messageRepo.UpdatePhase(ctx, id, next, msg.ResponseCode, now); err != nil {
		return err
	}

	if uc.auditRepo != nil {
		if err := uc.auditRepo.Create(ctx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			TenantID:     tenantID,
			Action:       string(action),
			ResourceType: "financial_message",
			ResourceID:   id,
			RequestID:    RequestIDFromContext(ctx),
			BeforeState:  before,
			AfterState:   domain.MarshalState(msg),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		}); err != nil {
			uc.logger.Error().Err(err).Str("message_id", id).Str("action", string(action)).Msg("failed to write audit record")
		}
	}

	if uc.metrics != nil && next.IsTerminal() {
		uc.metrics.MessageOutcomes.WithLabelValues(string(next)).Inc()
	}

	if next == domain.PhaseReversed {
		uc.publishLifecycleEvent(ctx, msg, domain.EventTypeMessageReversed, now)
	}

	return nil
}

// publishLifecycleEvent records a message lifecycle change in the outbox.
// The transition is already committed, so a failed write only loses the
// event, never the state change.
func (uc *MessageService) publishLifecycleEvent(ctx context.Context, msg *domain.FinancialMessage, eventType string, now time.Time) {
	if uc.outboxRepo == nil {
		return
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   msg.ID,
		AggregateType: domain.AggregateTypeMessage,
		EventType:     eventType,
		Payload: map[string]any{
			"message_id":      msg.ID,
			"tenant_id":       msg.TenantID,
			"stan":            string(msg.STAN),
			"rrn":             string(msg.RRN),
			"processing_code": string(msg.ProcessingCode),
			"phase":           string(msg.Phase),
			"response_code":   string(msg.ResponseCode),
		},
		CreatedAt: now,
	}

	if err := uc.outboxRepo.CreateStandalone(ctx, event); err != nil {
		uc.logger.Error().Err(err).Str("message_id", msg.ID).Str("event_type", eventType).Msg("failed to write lifecycle event")
	}
}
