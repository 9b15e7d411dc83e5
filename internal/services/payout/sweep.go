package payout

import (
	"context"
	"log"
	"time"

	"lexpay/internal/models"
	"lexpay/internal/repositories"
	"lexpay/internal/services/audit"
)

// Sweeper recovers payouts stuck in processing, typically after a crash
// between the rail call and the terminal-state write. Stuck records are
// failed with a descriptive reason; a resubmission is an explicit admin
// command, never automatic.
type Sweeper struct {
	payouts   repositories.PayoutRepository
	recorder  audit.Recorder
	threshold time.Duration
	interval  time.Duration
	batchSize int
	stopCh    chan struct{}
}

func NewSweeper(payouts repositories.PayoutRepository, recorder audit.Recorder, config Config) *Sweeper {
	if config.SweepThreshold == 0 {
		config.SweepThreshold = 10 * time.Minute
	}
	if config.SweepInterval == 0 {
		config.SweepInterval = time.Minute
	}
	if config.SweepBatchSize == 0 {
		config.SweepBatchSize = 100
	}
	if recorder == nil {
		recorder = audit.NoopRecorder{}
	}
	return &Sweeper{
		payouts:   payouts,
		recorder:  recorder,
		threshold: config.SweepThreshold,
		interval:  config.SweepInterval,
		batchSize: config.SweepBatchSize,
		stopCh:    make(chan struct{}),
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	log.Println("payout sweeper started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("payout sweeper stopped:", ctx.Err())
			return
		case <-s.stopCh:
			log.Println("payout sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

func (s *Sweeper) Stop() {
	close(s.stopCh)
}

// Sweep fails every payout that has been processing longer than the
// threshold. Exported so a recovery can also be run on demand.
func (s *Sweeper) Sweep(ctx context.Context) int {
	cutoff := time.Now().Add(-s.threshold)
	stuck, err := s.payouts.StuckProcessing(ctx, cutoff, s.batchSize)
	if err != nil {
		log.Printf("payout sweep: query failed: %v", err)
		return 0
	}

	recovered := 0
	for _, p := range stuck {
		err := s.payouts.UpdateStatus(ctx, p.ID, models.PayoutStatusProcessing, models.PayoutStatusFailed, map[string]interface{}{
			"failure_reason": "recovered by sweep: processing exceeded timeout",
		})
		if err != nil {
			// Someone else moved it; leave it alone.
			continue
		}
		recovered++
		s.recorder.Record(ctx, audit.Entry{
			Action:     "payout.sweep",
			EntityType: "payout",
			EntityID:   p.ReferenceID,
			OldValue:   models.JSON{"status": models.PayoutStatusProcessing},
			NewValue:   models.JSON{"status": models.PayoutStatusFailed},
			Outcome:    models.AuditOutcomeFailure,
			Note:       "processing exceeded timeout",
		})
		log.Printf("payout sweep: failed stuck payout %s (lawyer %d)", p.ReferenceID, p.LawyerID)
	}
	return recovered
}
