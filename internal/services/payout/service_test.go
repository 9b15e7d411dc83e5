package payout

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"lexpay/internal/errors"
	"lexpay/internal/models"
	"lexpay/internal/repositories"
	"lexpay/internal/services/audit"
	"lexpay/internal/services/commission"
	"lexpay/internal/services/rail"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// In-memory fakes with the same compare-and-set semantics as the real
// repositories, so status races surface in tests the same way.

type fakePayoutRepo struct {
	mu      sync.Mutex
	nextID  uint
	payouts map[uint]*models.Payout
}

func newFakePayoutRepo() *fakePayoutRepo {
	return &fakePayoutRepo{payouts: make(map[uint]*models.Payout)}
}

func (f *fakePayoutRepo) Create(ctx context.Context, p *models.Payout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.payouts[p.ID] = &cp
	return nil
}

func (f *fakePayoutRepo) FindByID(ctx context.Context, id uint) (*models.Payout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payouts[id]
	if !ok {
		return nil, errors.ErrPayoutNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePayoutRepo) FindByReference(ctx context.Context, referenceID string) (*models.Payout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payouts {
		if p.ReferenceID == referenceID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errors.ErrPayoutNotFound
}

func (f *fakePayoutRepo) ListByLawyer(ctx context.Context, lawyerID uint, limit, offset int) ([]models.Payout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Payout
	for _, p := range f.payouts {
		if p.LawyerID == lawyerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePayoutRepo) List(ctx context.Context, status string, limit, offset int) ([]models.Payout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Payout
	for _, p := range f.payouts {
		if status == "" || p.Status == status {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePayoutRepo) UpdateStatus(ctx context.Context, id uint, from, to string, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payouts[id]
	if !ok || p.Status != from {
		return &errors.ConflictError{Message: "payout is not in status " + from}
	}
	p.Status = to
	if v, ok := updates["failure_reason"].(string); ok {
		p.FailureReason = v
	}
	if v, ok := updates["transaction_id"].(string); ok {
		p.TransactionID = v
	}
	if v, ok := updates["processed_by"].(uint); ok {
		p.ProcessedBy = v
	}
	if v, ok := updates["processed_at"].(time.Time); ok {
		p.ProcessedAt = &v
	}
	if v, ok := updates["completed_at"].(time.Time); ok {
		p.CompletedAt = &v
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (f *fakePayoutRepo) StuckProcessing(ctx context.Context, olderThan time.Time, limit int) ([]models.Payout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Payout
	for _, p := range f.payouts {
		if p.Status == models.PayoutStatusProcessing && p.UpdatedAt.Before(olderThan) {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeEarningRepo struct {
	mu       sync.Mutex
	nextID   uint
	earnings map[uint]*models.Earning
}

func newFakeEarningRepo() *fakeEarningRepo {
	return &fakeEarningRepo{earnings: make(map[uint]*models.Earning)}
}

func (f *fakeEarningRepo) Create(ctx context.Context, e *models.Earning) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e.ID = f.nextID
	cp := *e
	f.earnings[e.ID] = &cp
	return nil
}

func (f *fakeEarningRepo) UnsettledByLawyer(ctx context.Context, lawyerID uint) ([]models.Earning, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Earning
	for i := uint(1); i <= f.nextID; i++ {
		e, ok := f.earnings[i]
		if ok && e.LawyerID == lawyerID && e.Status == models.EarningStatusUnsettled {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEarningRepo) MarkSettling(ctx context.Context, ids []uint, payoutID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		if e, ok := f.earnings[id]; ok && e.Status == models.EarningStatusUnsettled {
			e.Status = models.EarningStatusSettling
			pid := payoutID
			e.PayoutID = &pid
		}
	}
	return nil
}

func (f *fakeEarningRepo) FinishSettlement(ctx context.Context, payoutID uint, settled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.earnings {
		if e.PayoutID != nil && *e.PayoutID == payoutID && e.Status == models.EarningStatusSettling {
			if settled {
				e.Status = models.EarningStatusSettled
			} else {
				e.Status = models.EarningStatusUnsettled
				e.PayoutID = nil
			}
		}
	}
	return nil
}

func (f *fakeEarningRepo) statuses() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int)
	for _, e := range f.earnings {
		counts[e.Status]++
	}
	return counts
}

type fakeLawyerRepo struct {
	lawyers map[uint]*models.Lawyer
}

func newFakeLawyerRepo(lawyers ...*models.Lawyer) *fakeLawyerRepo {
	m := make(map[uint]*models.Lawyer)
	for _, l := range lawyers {
		m[l.ID] = l
	}
	return &fakeLawyerRepo{lawyers: m}
}

func (f *fakeLawyerRepo) Create(ctx context.Context, l *models.Lawyer) error {
	f.lawyers[l.ID] = l
	return nil
}

func (f *fakeLawyerRepo) FindByID(ctx context.Context, id uint) (*models.Lawyer, error) {
	l, ok := f.lawyers[id]
	if !ok {
		return nil, errors.ErrLawyerNotFound
	}
	return l, nil
}

func (f *fakeLawyerRepo) List(ctx context.Context, limit, offset int) ([]models.Lawyer, error) {
	var out []models.Lawyer
	for _, l := range f.lawyers {
		out = append(out, *l)
	}
	return out, nil
}

type staticCommission struct {
	table *commission.RateTable
}

func (s *staticCommission) Current(ctx context.Context) (*commission.RateTable, error) {
	return s.table, nil
}

func (s *staticCommission) Update(ctx context.Context, input commission.UpdateInput) (*models.CommissionConfig, error) {
	return nil, errors.New("not implemented")
}

func (s *staticCommission) History(ctx context.Context, limit int) ([]models.CommissionHistory, error) {
	return nil, nil
}

type fakeRail struct {
	mu       sync.Mutex
	calls    []rail.Request
	failNext error
}

func (f *fakeRail) SubmitPayout(ctx context.Context, req rail.Request) (*rail.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return nil, err
	}
	return &rail.Result{TransactionID: "tx_" + req.ReferenceID}, nil
}

func (f *fakeRail) SubmitRefund(ctx context.Context, req rail.Request) (*rail.Result, error) {
	return f.SubmitPayout(ctx, req)
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

func (r *capturingRecorder) last(t *testing.T) audit.Entry {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.entries)
	return r.entries[len(r.entries)-1]
}

func (r *capturingRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

type fakeLock struct {
	denied bool
}

func (f *fakeLock) Acquire(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	if f.denied {
		return repositories.ErrLockNotAcquired
	}
	return nil
}

func (f *fakeLock) Release(ctx context.Context) error { return nil }

type fixture struct {
	payouts  *fakePayoutRepo
	earnings *fakeEarningRepo
	lawyers  *fakeLawyerRepo
	rail     *fakeRail
	lock     *fakeLock
	audit    *capturingRecorder
	service  Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	table := commission.NewRateTable(&models.CommissionConfig{
		Version:     1,
		DefaultRate: 15,
		MinAmount:   100,
		ByLawyerTier: models.RateMap{
			models.LawyerTierGold: 8,
		},
	})

	f := &fixture{
		payouts:  newFakePayoutRepo(),
		earnings: newFakeEarningRepo(),
		rail:     &fakeRail{},
		lock:     &fakeLock{},
		audit:    &capturingRecorder{},
	}
	f.lawyers = newFakeLawyerRepo(&models.Lawyer{
		Model:             gorm.Model{ID: 1},
		UserID:            10,
		Name:              "Ada Counsel",
		Tier:              models.LawyerTierGold,
		PayoutMethod:      models.PayoutMethodBankTransfer,
		PayoutDestination: "acct_1",
	})
	f.service = NewService(
		f.payouts,
		f.earnings,
		f.lawyers,
		&staticCommission{table: table},
		f.rail,
		func(lawyerID uint, token string) Lock { return f.lock },
		f.audit,
		Config{},
	)
	return f
}

func (f *fixture) accrue(t *testing.T, lawyerID uint, gross float64) {
	t.Helper()
	err := f.earnings.Create(context.Background(), &models.Earning{
		LawyerID:         lawyerID,
		ConsultationID:   fmt.Sprintf("c-%d-%d", lawyerID, f.earnings.nextID+1),
		ConsultationType: models.ConsultationTypeStandard,
		GrossAmount:      gross,
		Status:           models.EarningStatusUnsettled,
		EarnedAt:         time.Now(),
	})
	require.NoError(t, err)
}

func TestService_Process(t *testing.T) {
	t.Run("settles accrued earnings into a completed payout", func(t *testing.T) {
		f := newFixture(t)
		f.accrue(t, 1, 5000) // gold 8% -> 400
		f.accrue(t, 1, 500)  // 8% = 40, floored at 100

		result, err := f.service.Process(context.Background(), ProcessRequest{LawyerID: 1, ActorID: 7})
		require.NoError(t, err)

		assert.Equal(t, models.PayoutStatusCompleted, result.Status)
		assert.Equal(t, float64(5500), result.GrossAmount)
		assert.Equal(t, float64(500), result.CommissionAmount)
		assert.Equal(t, float64(5000), result.Amount)
		assert.NotEmpty(t, result.Payout.TransactionID)
		assert.True(t, result.Payout.Terminal())

		assert.Equal(t, map[string]int{models.EarningStatusSettled: 2}, f.earnings.statuses())
	})

	t.Run("nothing to settle", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Process(context.Background(), ProcessRequest{LawyerID: 1})
		assert.ErrorIs(t, err, ErrNothingToSettle)
	})

	t.Run("second process after settlement finds nothing", func(t *testing.T) {
		f := newFixture(t)
		f.accrue(t, 1, 5000)

		_, err := f.service.Process(context.Background(), ProcessRequest{LawyerID: 1})
		require.NoError(t, err)

		_, err = f.service.Process(context.Background(), ProcessRequest{LawyerID: 1})
		assert.ErrorIs(t, err, ErrNothingToSettle)
		assert.Len(t, f.rail.calls, 1, "no second rail call")
	})

	t.Run("unknown lawyer", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Process(context.Background(), ProcessRequest{LawyerID: 99})
		assert.ErrorIs(t, err, errors.ErrLawyerNotFound)
	})

	t.Run("lock contention maps to payout in flight", func(t *testing.T) {
		f := newFixture(t)
		f.accrue(t, 1, 5000)
		f.lock.denied = true

		_, err := f.service.Process(context.Background(), ProcessRequest{LawyerID: 1})
		assert.ErrorIs(t, err, ErrPayoutInFlight)
		assert.Empty(t, f.rail.calls)
	})

	t.Run("rail failure leaves a failed payout with earnings still claimed", func(t *testing.T) {
		f := newFixture(t)
		f.accrue(t, 1, 5000)
		f.rail.failNext = &errors.RailError{Reason: "rail down"}

		result, err := f.service.Process(context.Background(), ProcessRequest{LawyerID: 1})
		require.Error(t, err)
		require.NotNil(t, result)
		assert.Equal(t, models.PayoutStatusFailed, result.Status)
		assert.Contains(t, result.Payout.FailureReason, "rail down")

		// Earnings stay bound to the failed payout until resubmit or cancel.
		assert.Equal(t, map[string]int{models.EarningStatusSettling: 1}, f.earnings.statuses())
	})
}

func TestService_Resubmit(t *testing.T) {
	t.Run("retries the rail call for a failed payout", func(t *testing.T) {
		f := newFixture(t)
		f.accrue(t, 1, 5000)
		f.rail.failNext = &errors.RailError{Reason: "timeout", Timeout: true}

		result, err := f.service.Process(context.Background(), ProcessRequest{LawyerID: 1})
		require.Error(t, err)

		resubmitted, err := f.service.Resubmit(context.Background(), result.Payout.ID, 7)
		require.NoError(t, err)
		assert.Equal(t, models.PayoutStatusCompleted, resubmitted.Status)
		assert.Equal(t, map[string]int{models.EarningStatusSettled: 1}, f.earnings.statuses())
		assert.Len(t, f.rail.calls, 2)
	})

	t.Run("completed payout cannot be resubmitted", func(t *testing.T) {
		f := newFixture(t)
		f.accrue(t, 1, 5000)

		result, err := f.service.Process(context.Background(), ProcessRequest{LawyerID: 1})
		require.NoError(t, err)

		_, err = f.service.Resubmit(context.Background(), result.Payout.ID, 7)
		require.Error(t, err)
		assert.True(t, errors.IsConflict(err))
		assert.Len(t, f.rail.calls, 1, "completed payout is never paid twice")
	})

	t.Run("rejected resubmission still lands in the audit log", func(t *testing.T) {
		f := newFixture(t)
		f.accrue(t, 1, 5000)

		result, err := f.service.Process(context.Background(), ProcessRequest{LawyerID: 1, ActorID: 7})
		require.NoError(t, err)

		before := f.audit.count()
		_, err = f.service.Resubmit(context.Background(), result.Payout.ID, 7)
		require.Error(t, err)
		assert.True(t, errors.IsConflict(err))

		assert.Greater(t, f.audit.count(), before, "conflict from a mutating operation must append an audit entry")
		entry := f.audit.last(t)
		assert.Equal(t, "payout.resubmit", entry.Action)
		assert.Equal(t, result.Payout.ReferenceID, entry.EntityID)
		assert.Equal(t, models.AuditOutcomeFailure, entry.Outcome)
		assert.Contains(t, entry.Note, "only failed payouts can be resubmitted")
	})
}

func TestService_Cancel(t *testing.T) {
	t.Run("releases earnings back to the payable pool", func(t *testing.T) {
		f := newFixture(t)
		f.accrue(t, 1, 5000)
		f.rail.failNext = &errors.RailError{Reason: "rail down"}

		result, err := f.service.Process(context.Background(), ProcessRequest{LawyerID: 1})
		require.Error(t, err)

		require.NoError(t, f.service.Cancel(context.Background(), result.Payout.ID, 7))

		p, err := f.service.Get(context.Background(), result.Payout.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PayoutStatusCancelled, p.Status)
		assert.Equal(t, map[string]int{models.EarningStatusUnsettled: 1}, f.earnings.statuses())

		// The released earnings are payable again.
		result2, err := f.service.Process(context.Background(), ProcessRequest{LawyerID: 1})
		require.NoError(t, err)
		assert.Equal(t, models.PayoutStatusCompleted, result2.Status)
	})

	t.Run("completed payout cannot be cancelled", func(t *testing.T) {
		f := newFixture(t)
		p := &models.Payout{ReferenceID: "ref-1", LawyerID: 1, Status: models.PayoutStatusCompleted, Method: models.PayoutMethodCard}
		require.NoError(t, f.payouts.Create(context.Background(), p))

		err := f.service.Cancel(context.Background(), p.ID, 7)
		require.Error(t, err)
		assert.True(t, errors.IsConflict(err))

		entry := f.audit.last(t)
		assert.Equal(t, "payout.cancel", entry.Action)
		assert.Equal(t, models.AuditOutcomeFailure, entry.Outcome)
	})
}
