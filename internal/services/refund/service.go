package refund

import (
	"context"
	"fmt"
	"time"

	"lexpay/internal/errors"
	"lexpay/internal/models"
	"lexpay/internal/repositories"
	"lexpay/internal/services/audit"
	"lexpay/internal/services/rail"

	"github.com/google/uuid"
)

// RequestInput opens a refund case against a client payment.
type RequestInput struct {
	PaymentID      string
	ConsultationID string
	UserID         uint
	Amount         float64
	Currency       string
	ReasonCode     string
	Reason         string
	ActorID        uint
	ActorIP        string
}

// Service drives the refund decision flow. Every move goes through the
// guarded transition table; deciding an already-decided refund is a
// conflict, both here and as a compare-and-set at the database.
type Service interface {
	Request(ctx context.Context, input RequestInput) (*models.Refund, error)
	Approve(ctx context.Context, refundID, actorID uint, note string) (*models.Refund, error)
	Reject(ctx context.Context, refundID, actorID uint, reason string) (*models.Refund, error)
	// Execute pushes an approved refund through the payment rail.
	Execute(ctx context.Context, refundID, actorID uint) (*models.Refund, error)
	Get(ctx context.Context, refundID uint) (*models.Refund, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Refund, error)
}

type service struct {
	refunds  repositories.RefundRepository
	rail     rail.Rail
	recorder audit.Recorder
}

// NewService creates a new refund service
func NewService(refunds repositories.RefundRepository, railSvc rail.Rail, recorder audit.Recorder) Service {
	if refunds == nil {
		panic("refund repo is required")
	}
	if railSvc == nil {
		panic("rail is required")
	}
	if recorder == nil {
		recorder = audit.NoopRecorder{}
	}
	return &service{refunds: refunds, rail: railSvc, recorder: recorder}
}

func (s *service) Request(ctx context.Context, input RequestInput) (*models.Refund, error) {
	if err := validateRequest(input); err != nil {
		s.recorder.Record(ctx, audit.Entry{
			Action:     "refund.request",
			EntityType: "refund",
			EntityID:   input.PaymentID,
			NewValue:   models.Snapshot(input),
			ActorID:    input.ActorID,
			ActorIP:    input.ActorIP,
			Outcome:    models.AuditOutcomeFailure,
			Note:       err.Error(),
		})
		return nil, err
	}

	refund := &models.Refund{
		ReferenceID: uuid.NewString(),
		PaymentID:   input.PaymentID,
		UserID:      input.UserID,
		Amount:      input.Amount,
		Currency:    input.Currency,
		Status:      models.RefundStatusPending,
		ReasonCode:  input.ReasonCode,
		Reason:      input.Reason,
	}
	if refund.Currency == "" {
		refund.Currency = "USD"
	}
	if input.ConsultationID != "" {
		refund.ConsultationID = &input.ConsultationID
	}

	if err := s.refunds.Create(ctx, refund); err != nil {
		err = fmt.Errorf("failed to create refund: %w", err)
		s.auditFailure(ctx, "refund.request", input.PaymentID, input.ActorID, err)
		return nil, err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:     "refund.request",
		EntityType: "refund",
		EntityID:   refund.ReferenceID,
		NewValue:   models.Snapshot(refund),
		ActorID:    input.ActorID,
		ActorIP:    input.ActorIP,
	})
	return refund, nil
}

func (s *service) Approve(ctx context.Context, refundID, actorID uint, note string) (*models.Refund, error) {
	return s.decide(ctx, refundID, actorID, models.RefundStatusApproved, note, "refund.approve", map[string]interface{}{})
}

func (s *service) Reject(ctx context.Context, refundID, actorID uint, reason string) (*models.Refund, error) {
	if reason == "" {
		return nil, &errors.ValidationError{Field: "reason", Reason: "rejection requires a reason"}
	}
	return s.decide(ctx, refundID, actorID, models.RefundStatusRejected, reason, "refund.reject", map[string]interface{}{
		"rejection_reason": reason,
	})
}

func (s *service) decide(ctx context.Context, refundID, actorID uint, to, note, action string, updates map[string]interface{}) (*models.Refund, error) {
	refund, err := s.refunds.FindByID(ctx, refundID)
	if err != nil {
		s.auditFailure(ctx, action, fmt.Sprintf("refund:%d", refundID), actorID, err)
		return nil, err
	}

	if refund.Decided() {
		conflict := &errors.ConflictError{
			Message: fmt.Sprintf("refund %s already %s", refund.ReferenceID, refund.Status),
		}
		s.auditFailure(ctx, action, refund.ReferenceID, actorID, conflict)
		return nil, conflict
	}
	if !CanTransition(refund.Status, to) {
		conflict := &errors.ConflictError{
			Message: fmt.Sprintf("refund %s cannot move from %s to %s", refund.ReferenceID, refund.Status, to),
		}
		s.auditFailure(ctx, action, refund.ReferenceID, actorID, conflict)
		return nil, conflict
	}

	now := time.Now()
	updates["decided_by"] = actorID
	updates["decided_at"] = now

	// The status CAS closes the race left by the read above: two
	// concurrent decisions cannot both leave pending.
	if err := s.refunds.UpdateStatus(ctx, refund.ID, models.RefundStatusPending, to, updates); err != nil {
		s.auditFailure(ctx, action, refund.ReferenceID, actorID, err)
		return nil, err
	}

	old := refund.Status
	refund.Status = to
	refund.DecidedBy = &actorID
	refund.DecidedAt = &now
	if to == models.RefundStatusRejected {
		refund.RejectionReason = note
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:     action,
		EntityType: "refund",
		EntityID:   refund.ReferenceID,
		OldValue:   models.JSON{"status": old},
		NewValue:   models.Snapshot(refund),
		ActorID:    actorID,
		Note:       note,
	})
	return refund, nil
}

func (s *service) Execute(ctx context.Context, refundID, actorID uint) (*models.Refund, error) {
	refund, err := s.refunds.FindByID(ctx, refundID)
	if err != nil {
		s.auditFailure(ctx, "refund.execute", fmt.Sprintf("refund:%d", refundID), actorID, err)
		return nil, err
	}

	if !CanTransition(refund.Status, models.RefundStatusProcessing) {
		conflict := &errors.ConflictError{
			Message: fmt.Sprintf("refund %s is %s, only approved refunds can be executed", refund.ReferenceID, refund.Status),
		}
		s.auditFailure(ctx, "refund.execute", refund.ReferenceID, actorID, conflict)
		return nil, conflict
	}

	// A concurrent execution can win the approved->processing CAS
	// between the read above and here; the loser is audited too.
	if err := s.refunds.UpdateStatus(ctx, refund.ID, models.RefundStatusApproved, models.RefundStatusProcessing, nil); err != nil {
		s.auditFailure(ctx, "refund.execute", refund.ReferenceID, actorID, err)
		return nil, err
	}
	refund.Status = models.RefundStatusProcessing

	res, railErr := s.rail.SubmitRefund(ctx, rail.Request{
		ReferenceID: refund.ReferenceID,
		Amount:      refund.Amount,
		Currency:    refund.Currency,
		Destination: refund.PaymentID,
		Description: fmt.Sprintf("refund for payment %s", refund.PaymentID),
	})

	if railErr != nil {
		if err := s.refunds.UpdateStatus(ctx, refund.ID, models.RefundStatusProcessing, models.RefundStatusFailed, map[string]interface{}{
			"failure_reason": railErr.Error(),
		}); err != nil {
			s.auditFailure(ctx, "refund.execute", refund.ReferenceID, actorID, err)
			return nil, err
		}
		refund.Status = models.RefundStatusFailed
		refund.FailureReason = railErr.Error()
		s.auditFailure(ctx, "refund.execute", refund.ReferenceID, actorID, railErr)
		return refund, railErr
	}

	if err := s.refunds.UpdateStatus(ctx, refund.ID, models.RefundStatusProcessing, models.RefundStatusCompleted, map[string]interface{}{
		"transaction_id": res.TransactionID,
	}); err != nil {
		s.auditFailure(ctx, "refund.execute", refund.ReferenceID, actorID, err)
		return nil, err
	}
	refund.Status = models.RefundStatusCompleted
	refund.TransactionID = res.TransactionID

	s.recorder.Record(ctx, audit.Entry{
		Action:     "refund.execute",
		EntityType: "refund",
		EntityID:   refund.ReferenceID,
		NewValue:   models.Snapshot(refund),
		ActorID:    actorID,
	})
	return refund, nil
}

func (s *service) Get(ctx context.Context, refundID uint) (*models.Refund, error) {
	return s.refunds.FindByID(ctx, refundID)
}

func (s *service) List(ctx context.Context, status string, limit, offset int) ([]models.Refund, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.refunds.List(ctx, status, limit, offset)
}

func (s *service) auditFailure(ctx context.Context, action, entityID string, actorID uint, cause error) {
	s.recorder.Record(ctx, audit.Entry{
		Action:     action,
		EntityType: "refund",
		EntityID:   entityID,
		ActorID:    actorID,
		Outcome:    models.AuditOutcomeFailure,
		Note:       cause.Error(),
	})
}

func validateRequest(input RequestInput) error {
	if input.PaymentID == "" {
		return &errors.ValidationError{Field: "payment_id", Reason: "required"}
	}
	if input.UserID == 0 {
		return &errors.ValidationError{Field: "user_id", Reason: "required"}
	}
	if input.Amount <= 0 {
		return &errors.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if !ValidReason(input.ReasonCode) {
		return &errors.ValidationError{Field: "reason_code", Reason: "unknown refund reason"}
	}
	return nil
}
