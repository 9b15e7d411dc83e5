package refund

import (
	"context"
	"sync"
	"testing"
	"time"

	"lexpay/internal/errors"
	"lexpay/internal/models"
	"lexpay/internal/services/audit"
	"lexpay/internal/services/rail"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRefundRepo struct {
	mu         sync.Mutex
	nextID     uint
	refunds    map[uint]*models.Refund
	failUpdate error
}

func newFakeRefundRepo() *fakeRefundRepo {
	return &fakeRefundRepo{refunds: make(map[uint]*models.Refund)}
}

func (f *fakeRefundRepo) Create(ctx context.Context, r *models.Refund) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r.ID = f.nextID
	cp := *r
	f.refunds[r.ID] = &cp
	return nil
}

func (f *fakeRefundRepo) FindByID(ctx context.Context, id uint) (*models.Refund, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.refunds[id]
	if !ok {
		return nil, errors.ErrRefundNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRefundRepo) List(ctx context.Context, status string, limit, offset int) ([]models.Refund, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Refund
	for _, r := range f.refunds {
		if status == "" || r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRefundRepo) UpdateStatus(ctx context.Context, id uint, from, to string, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate != nil {
		err := f.failUpdate
		f.failUpdate = nil
		return err
	}
	r, ok := f.refunds[id]
	if !ok || r.Status != from {
		return &errors.ConflictError{Message: "refund is not in status " + from}
	}
	r.Status = to
	if v, ok := updates["rejection_reason"].(string); ok {
		r.RejectionReason = v
	}
	if v, ok := updates["failure_reason"].(string); ok {
		r.FailureReason = v
	}
	if v, ok := updates["transaction_id"].(string); ok {
		r.TransactionID = v
	}
	if v, ok := updates["decided_by"].(uint); ok {
		r.DecidedBy = &v
	}
	if v, ok := updates["decided_at"].(time.Time); ok {
		r.DecidedAt = &v
	}
	r.UpdatedAt = time.Now()
	return nil
}

func (f *fakeRefundRepo) StuckProcessing(ctx context.Context, olderThan time.Time, limit int) ([]models.Refund, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Refund
	for _, r := range f.refunds {
		if r.Status == models.RefundStatusProcessing && r.UpdatedAt.Before(olderThan) {
			out = append(out, *r)
		}
	}
	return out, nil
}

type fakeRail struct {
	calls    []rail.Request
	failNext error
}

func (f *fakeRail) SubmitPayout(ctx context.Context, req rail.Request) (*rail.Result, error) {
	return f.SubmitRefund(ctx, req)
}

func (f *fakeRail) SubmitRefund(ctx context.Context, req rail.Request) (*rail.Result, error) {
	f.calls = append(f.calls, req)
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return nil, err
	}
	return &rail.Result{TransactionID: "re_" + req.ReferenceID}, nil
}

func validRequest() RequestInput {
	return RequestInput{
		PaymentID:  "pay_123",
		UserID:     9,
		Amount:     250,
		ReasonCode: models.RefundReasonNoShow,
		Reason:     "lawyer missed the consultation",
		ActorID:    7,
	}
}

type capturingRecorder struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *capturingRecorder) Record(ctx context.Context, entry audit.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.Outcome == "" {
		entry.Outcome = models.AuditOutcomeSuccess
	}
	r.entries = append(r.entries, entry)
}

func newTestService() (Service, *fakeRefundRepo, *fakeRail) {
	repo := newFakeRefundRepo()
	railSvc := &fakeRail{}
	return NewService(repo, railSvc, audit.NoopRecorder{}), repo, railSvc
}

func newRecordedService() (Service, *fakeRefundRepo, *capturingRecorder) {
	repo := newFakeRefundRepo()
	rec := &capturingRecorder{}
	return NewService(repo, &fakeRail{}, rec), repo, rec
}

func TestService_Request(t *testing.T) {
	t.Run("opens a pending refund", func(t *testing.T) {
		svc, _, _ := newTestService()

		r, err := svc.Request(context.Background(), validRequest())
		require.NoError(t, err)
		assert.Equal(t, models.RefundStatusPending, r.Status)
		assert.NotEmpty(t, r.ReferenceID)
		assert.Equal(t, "USD", r.Currency)
	})

	tests := []struct {
		name   string
		mutate func(*RequestInput)
		field  string
	}{
		{"missing payment", func(i *RequestInput) { i.PaymentID = "" }, "payment_id"},
		{"missing user", func(i *RequestInput) { i.UserID = 0 }, "user_id"},
		{"non-positive amount", func(i *RequestInput) { i.Amount = 0 }, "amount"},
		{"unknown reason code", func(i *RequestInput) { i.ReasonCode = "because" }, "reason_code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService()
			input := validRequest()
			tt.mutate(&input)

			_, err := svc.Request(context.Background(), input)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestService_Decide(t *testing.T) {
	t.Run("approve a pending refund", func(t *testing.T) {
		svc, _, _ := newTestService()
		r, err := svc.Request(context.Background(), validRequest())
		require.NoError(t, err)

		approved, err := svc.Approve(context.Background(), r.ID, 7, "verified no-show")
		require.NoError(t, err)
		assert.Equal(t, models.RefundStatusApproved, approved.Status)
		require.NotNil(t, approved.DecidedBy)
		assert.Equal(t, uint(7), *approved.DecidedBy)
		assert.NotNil(t, approved.DecidedAt)
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		svc, _, _ := newTestService()
		r, err := svc.Request(context.Background(), validRequest())
		require.NoError(t, err)

		_, err = svc.Reject(context.Background(), r.ID, 7, "")
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))

		rejected, err := svc.Reject(context.Background(), r.ID, 7, "no evidence of no-show")
		require.NoError(t, err)
		assert.Equal(t, models.RefundStatusRejected, rejected.Status)
		assert.Equal(t, "no evidence of no-show", rejected.RejectionReason)
	})

	t.Run("a decided refund cannot be re-decided", func(t *testing.T) {
		svc, _, _ := newTestService()
		r, err := svc.Request(context.Background(), validRequest())
		require.NoError(t, err)

		_, err = svc.Approve(context.Background(), r.ID, 7, "")
		require.NoError(t, err)

		_, err = svc.Reject(context.Background(), r.ID, 8, "changed my mind")
		require.Error(t, err)
		assert.True(t, errors.IsConflict(err))

		_, err = svc.Approve(context.Background(), r.ID, 8, "")
		require.Error(t, err)
		assert.True(t, errors.IsConflict(err))
	})
}

func TestService_Execute(t *testing.T) {
	t.Run("pushes an approved refund through the rail", func(t *testing.T) {
		svc, _, railSvc := newTestService()
		r, err := svc.Request(context.Background(), validRequest())
		require.NoError(t, err)
		_, err = svc.Approve(context.Background(), r.ID, 7, "")
		require.NoError(t, err)

		executed, err := svc.Execute(context.Background(), r.ID, 7)
		require.NoError(t, err)
		assert.Equal(t, models.RefundStatusCompleted, executed.Status)
		assert.True(t, executed.Terminal())
		assert.NotEmpty(t, executed.TransactionID)
		require.Len(t, railSvc.calls, 1)
		assert.Equal(t, "pay_123", railSvc.calls[0].Destination)
	})

	t.Run("pending refund cannot be executed", func(t *testing.T) {
		svc, _, railSvc := newTestService()
		r, err := svc.Request(context.Background(), validRequest())
		require.NoError(t, err)

		_, err = svc.Execute(context.Background(), r.ID, 7)
		require.Error(t, err)
		assert.True(t, errors.IsConflict(err))
		assert.Empty(t, railSvc.calls)
	})

	t.Run("rail failure marks the refund failed", func(t *testing.T) {
		svc, _, railSvc := newTestService()
		r, err := svc.Request(context.Background(), validRequest())
		require.NoError(t, err)
		_, err = svc.Approve(context.Background(), r.ID, 7, "")
		require.NoError(t, err)

		railSvc.failNext = &errors.RailError{Reason: "charge already refunded"}
		failed, err := svc.Execute(context.Background(), r.ID, 7)
		require.Error(t, err)
		require.NotNil(t, failed)
		assert.Equal(t, models.RefundStatusFailed, failed.Status)
		assert.Contains(t, failed.FailureReason, "charge already refunded")
	})

	t.Run("losing the status race is audited", func(t *testing.T) {
		svc, repo, rec := newRecordedService()
		r, err := svc.Request(context.Background(), validRequest())
		require.NoError(t, err)
		_, err = svc.Approve(context.Background(), r.ID, 7, "")
		require.NoError(t, err)

		// A concurrent execution wins the approved->processing move
		// between this call's read and its compare-and-set.
		before := len(rec.entries)
		repo.failUpdate = &errors.ConflictError{Message: "refund is not in status approved"}

		_, err = svc.Execute(context.Background(), r.ID, 7)
		require.Error(t, err)
		assert.True(t, errors.IsConflict(err))

		require.Greater(t, len(rec.entries), before, "conflict from a mutating operation must append an audit entry")
		entry := rec.entries[len(rec.entries)-1]
		assert.Equal(t, "refund.execute", entry.Action)
		assert.Equal(t, r.ReferenceID, entry.EntityID)
		assert.Equal(t, models.AuditOutcomeFailure, entry.Outcome)
	})

	t.Run("completed refund cannot run again", func(t *testing.T) {
		svc, _, railSvc := newTestService()
		r, err := svc.Request(context.Background(), validRequest())
		require.NoError(t, err)
		_, err = svc.Approve(context.Background(), r.ID, 7, "")
		require.NoError(t, err)
		_, err = svc.Execute(context.Background(), r.ID, 7)
		require.NoError(t, err)

		_, err = svc.Execute(context.Background(), r.ID, 7)
		require.Error(t, err)
		assert.True(t, errors.IsConflict(err))
		assert.Len(t, railSvc.calls, 1, "a refund is never paid out twice")
	})
}

func TestSweeper_Sweep(t *testing.T) {
	repo := newFakeRefundRepo()

	stuck := &models.Refund{ReferenceID: "stuck", PaymentID: "pay_1", UserID: 1, Amount: 100, Status: models.RefundStatusProcessing, ReasonCode: models.RefundReasonOther}
	require.NoError(t, repo.Create(context.Background(), stuck))
	repo.refunds[stuck.ID].UpdatedAt = time.Now().Add(-time.Hour)

	sweeper := NewSweeper(repo, audit.NoopRecorder{}, 10*time.Minute, time.Minute)
	recovered := sweeper.Sweep(context.Background())

	assert.Equal(t, 1, recovered)
	swept, err := repo.FindByID(context.Background(), stuck.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RefundStatusFailed, swept.Status)
}
