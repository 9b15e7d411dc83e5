package payout

import (
	"context"
	"fmt"
	"time"

	"lexpay/internal/errors"
	"lexpay/internal/models"
	"lexpay/internal/repositories"
	"lexpay/internal/services/audit"
	"lexpay/internal/services/commission"
	"lexpay/internal/services/rail"

	"github.com/google/uuid"
)

type service struct {
	payouts    repositories.PayoutRepository
	earnings   repositories.EarningRepository
	lawyers    repositories.LawyerRepository
	commission commission.Service
	rail       rail.Rail
	locks      LockFactory
	recorder   audit.Recorder
	config     Config
}

// NewService creates a new payout service
func NewService(
	payouts repositories.PayoutRepository,
	earnings repositories.EarningRepository,
	lawyers repositories.LawyerRepository,
	commissionSvc commission.Service,
	railSvc rail.Rail,
	locks LockFactory,
	recorder audit.Recorder,
	config Config,
) Service {
	if payouts == nil {
		panic("payout repo is required")
	}
	if earnings == nil {
		panic("earning repo is required")
	}
	if lawyers == nil {
		panic("lawyer repo is required")
	}
	if commissionSvc == nil {
		panic("commission service is required")
	}
	if railSvc == nil {
		panic("rail is required")
	}
	if locks == nil {
		panic("lock factory is required")
	}
	if recorder == nil {
		recorder = audit.NoopRecorder{}
	}

	// Set default configuration values if not provided
	if config.Currency == "" {
		config.Currency = "USD"
	}
	if config.RailTimeout == 0 {
		config.RailTimeout = 30 * time.Second
	}
	if config.LockRetryInterval == 0 {
		config.LockRetryInterval = 100 * time.Millisecond
	}
	if config.LockMaxRetries == 0 {
		config.LockMaxRetries = 30
	}
	if config.BulkWorkers == 0 {
		config.BulkWorkers = 4
	}
	if config.SweepThreshold == 0 {
		config.SweepThreshold = 10 * time.Minute
	}
	if config.SweepInterval == 0 {
		config.SweepInterval = time.Minute
	}
	if config.SweepBatchSize == 0 {
		config.SweepBatchSize = 100
	}

	return &service{
		payouts:    payouts,
		earnings:   earnings,
		lawyers:    lawyers,
		commission: commissionSvc,
		rail:       railSvc,
		locks:      locks,
		recorder:   recorder,
		config:     config,
	}
}

func (s *service) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	lawyer, err := s.lawyers.FindByID(ctx, req.LawyerID)
	if err != nil {
		s.auditFailure(ctx, "payout.process", fmt.Sprintf("lawyer:%d", req.LawyerID), req.ActorID, req.ActorIP, err)
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = lawyer.PayoutMethod
	}

	lock := s.locks(req.LawyerID, uuid.NewString())
	if err := lock.Acquire(ctx, s.config.LockRetryInterval, s.config.LockMaxRetries); err != nil {
		s.auditFailure(ctx, "payout.process", fmt.Sprintf("lawyer:%d", req.LawyerID), req.ActorID, req.ActorIP, ErrPayoutInFlight)
		return nil, fmt.Errorf("%w: %v", ErrPayoutInFlight, err)
	}
	defer lock.Release(ctx)

	earnings, err := s.earnings.UnsettledByLawyer(ctx, req.LawyerID)
	if err != nil {
		err = fmt.Errorf("failed to load earnings: %w", err)
		s.auditFailure(ctx, "payout.process", fmt.Sprintf("lawyer:%d", req.LawyerID), req.ActorID, req.ActorIP, err)
		return nil, err
	}

	table, err := s.commission.Current(ctx)
	if err != nil {
		err = fmt.Errorf("failed to load rate table: %w", err)
		s.auditFailure(ctx, "payout.process", fmt.Sprintf("lawyer:%d", req.LawyerID), req.ActorID, req.ActorIP, err)
		return nil, err
	}

	var gross, commissionTotal float64
	ids := make([]uint, 0, len(earnings))
	for _, e := range earnings {
		gross += e.GrossAmount
		commissionTotal += table.CommissionFor(e.GrossAmount, e.ConsultationType, lawyer.Tier, e.SubscriptionTier)
		ids = append(ids, e.ID)
	}
	net := gross - commissionTotal

	if len(earnings) == 0 || net <= 0 {
		s.auditFailure(ctx, "payout.process", fmt.Sprintf("lawyer:%d", req.LawyerID), req.ActorID, req.ActorIP, ErrNothingToSettle)
		return nil, ErrNothingToSettle
	}

	payout := &models.Payout{
		ReferenceID:      uuid.NewString(),
		LawyerID:         req.LawyerID,
		Amount:           net,
		GrossAmount:      gross,
		CommissionAmount: commissionTotal,
		Currency:         s.config.Currency,
		Status:           models.PayoutStatusPending,
		Method:           method,
		Notes:            req.Notes,
		ProcessedBy:      req.ActorID,
	}
	if err := s.payouts.Create(ctx, payout); err != nil {
		err = fmt.Errorf("failed to create payout: %w", err)
		s.auditFailure(ctx, "payout.process", fmt.Sprintf("lawyer:%d", req.LawyerID), req.ActorID, req.ActorIP, err)
		return nil, err
	}
	if err := s.earnings.MarkSettling(ctx, ids, payout.ID); err != nil {
		err = fmt.Errorf("failed to claim earnings: %w", err)
		s.auditFailure(ctx, "payout.process", payout.ReferenceID, req.ActorID, req.ActorIP, err)
		return nil, err
	}

	return s.submit(ctx, payout, lawyer.PayoutDestination, models.PayoutStatusPending, "payout.process", req.ActorID, req.ActorIP)
}

// submit drives a payout from its current status through the rail call
// to a terminal state. The from status is pending on first submission
// and failed on resubmission.
func (s *service) submit(ctx context.Context, payout *models.Payout, destination, from, action string, actorID uint, actorIP string) (*ProcessResult, error) {
	now := time.Now()
	if err := s.payouts.UpdateStatus(ctx, payout.ID, from, models.PayoutStatusProcessing, map[string]interface{}{
		"processed_by": actorID,
		"processed_at": now,
	}); err != nil {
		s.auditFailure(ctx, action, payout.ReferenceID, actorID, actorIP, err)
		return nil, err
	}
	payout.Status = models.PayoutStatusProcessing
	payout.ProcessedAt = &now

	res, railErr := s.rail.SubmitPayout(ctx, rail.Request{
		ReferenceID: payout.ReferenceID,
		Amount:      payout.Amount,
		Currency:    payout.Currency,
		Method:      payout.Method,
		Destination: destination,
		Description: fmt.Sprintf("lawyer %d settlement", payout.LawyerID),
	})

	if railErr != nil {
		if err := s.payouts.UpdateStatus(ctx, payout.ID, models.PayoutStatusProcessing, models.PayoutStatusFailed, map[string]interface{}{
			"failure_reason": railErr.Error(),
		}); err != nil {
			s.auditFailure(ctx, action, payout.ReferenceID, actorID, actorIP, err)
			return nil, err
		}
		payout.Status = models.PayoutStatusFailed
		payout.FailureReason = railErr.Error()
		// Earnings stay bound to the failed payout so they cannot be
		// double-paid; Resubmit retries them, Cancel releases them.
		s.recorder.Record(ctx, audit.Entry{
			Action:     action,
			EntityType: "payout",
			EntityID:   payout.ReferenceID,
			NewValue:   models.Snapshot(payout),
			ActorID:    actorID,
			ActorIP:    actorIP,
			Outcome:    models.AuditOutcomeFailure,
			Note:       railErr.Error(),
		})
		return &ProcessResult{
			Payout:           payout,
			Amount:           payout.Amount,
			GrossAmount:      payout.GrossAmount,
			CommissionAmount: payout.CommissionAmount,
			Status:           payout.Status,
		}, railErr
	}

	completed := time.Now()
	if err := s.payouts.UpdateStatus(ctx, payout.ID, models.PayoutStatusProcessing, models.PayoutStatusCompleted, map[string]interface{}{
		"transaction_id": res.TransactionID,
		"completed_at":   completed,
	}); err != nil {
		s.auditFailure(ctx, action, payout.ReferenceID, actorID, actorIP, err)
		return nil, err
	}
	payout.Status = models.PayoutStatusCompleted
	payout.TransactionID = res.TransactionID
	payout.CompletedAt = &completed

	if err := s.earnings.FinishSettlement(ctx, payout.ID, true); err != nil {
		err = fmt.Errorf("payout %s completed but earnings not settled: %w", payout.ReferenceID, err)
		s.auditFailure(ctx, action, payout.ReferenceID, actorID, actorIP, err)
		return nil, err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:     action,
		EntityType: "payout",
		EntityID:   payout.ReferenceID,
		NewValue:   models.Snapshot(payout),
		ActorID:    actorID,
		ActorIP:    actorIP,
	})

	return &ProcessResult{
		Payout:           payout,
		Amount:           payout.Amount,
		GrossAmount:      payout.GrossAmount,
		CommissionAmount: payout.CommissionAmount,
		Status:           payout.Status,
	}, nil
}

func (s *service) Resubmit(ctx context.Context, payoutID uint, actorID uint) (*ProcessResult, error) {
	payout, err := s.payouts.FindByID(ctx, payoutID)
	if err != nil {
		s.auditFailure(ctx, "payout.resubmit", fmt.Sprintf("payout:%d", payoutID), actorID, "", err)
		return nil, err
	}
	if payout.Status != models.PayoutStatusFailed {
		conflict := &errors.ConflictError{
			Message: fmt.Sprintf("payout %s is %s, only failed payouts can be resubmitted", payout.ReferenceID, payout.Status),
		}
		s.auditFailure(ctx, "payout.resubmit", payout.ReferenceID, actorID, "", conflict)
		return nil, conflict
	}

	lawyer, err := s.lawyers.FindByID(ctx, payout.LawyerID)
	if err != nil {
		s.auditFailure(ctx, "payout.resubmit", payout.ReferenceID, actorID, "", err)
		return nil, err
	}

	lock := s.locks(payout.LawyerID, uuid.NewString())
	if err := lock.Acquire(ctx, s.config.LockRetryInterval, s.config.LockMaxRetries); err != nil {
		s.auditFailure(ctx, "payout.resubmit", payout.ReferenceID, actorID, "", ErrPayoutInFlight)
		return nil, fmt.Errorf("%w: %v", ErrPayoutInFlight, err)
	}
	defer lock.Release(ctx)

	return s.submit(ctx, payout, lawyer.PayoutDestination, models.PayoutStatusFailed, "payout.resubmit", actorID, "")
}

func (s *service) Cancel(ctx context.Context, payoutID uint, actorID uint) error {
	payout, err := s.payouts.FindByID(ctx, payoutID)
	if err != nil {
		s.auditFailure(ctx, "payout.cancel", fmt.Sprintf("payout:%d", payoutID), actorID, "", err)
		return err
	}
	if payout.Status != models.PayoutStatusFailed {
		conflict := &errors.ConflictError{
			Message: fmt.Sprintf("payout %s is %s, only failed payouts can be cancelled", payout.ReferenceID, payout.Status),
		}
		s.auditFailure(ctx, "payout.cancel", payout.ReferenceID, actorID, "", conflict)
		return conflict
	}
	if err := s.payouts.UpdateStatus(ctx, payout.ID, models.PayoutStatusFailed, models.PayoutStatusCancelled, nil); err != nil {
		s.auditFailure(ctx, "payout.cancel", payout.ReferenceID, actorID, "", err)
		return err
	}
	if err := s.earnings.FinishSettlement(ctx, payout.ID, false); err != nil {
		err = fmt.Errorf("payout %s cancelled but earnings not released: %w", payout.ReferenceID, err)
		s.auditFailure(ctx, "payout.cancel", payout.ReferenceID, actorID, "", err)
		return err
	}
	s.recorder.Record(ctx, audit.Entry{
		Action:     "payout.cancel",
		EntityType: "payout",
		EntityID:   payout.ReferenceID,
		OldValue:   models.JSON{"status": models.PayoutStatusFailed},
		NewValue:   models.JSON{"status": models.PayoutStatusCancelled},
		ActorID:    actorID,
	})
	return nil
}

func (s *service) Get(ctx context.Context, payoutID uint) (*models.Payout, error) {
	return s.payouts.FindByID(ctx, payoutID)
}

func (s *service) GetByReference(ctx context.Context, referenceID string) (*models.Payout, error) {
	return s.payouts.FindByReference(ctx, referenceID)
}

func (s *service) List(ctx context.Context, status string, limit, offset int) ([]models.Payout, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.payouts.List(ctx, status, limit, offset)
}

func (s *service) ListByLawyer(ctx context.Context, lawyerID uint, limit, offset int) ([]models.Payout, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.payouts.ListByLawyer(ctx, lawyerID, limit, offset)
}

func (s *service) auditFailure(ctx context.Context, action, entityID string, actorID uint, actorIP string, cause error) {
	s.recorder.Record(ctx, audit.Entry{
		Action:     action,
		EntityType: "payout",
		EntityID:   entityID,
		ActorID:    actorID,
		ActorIP:    actorIP,
		Outcome:    models.AuditOutcomeFailure,
		Note:       cause.Error(),
	})
}
