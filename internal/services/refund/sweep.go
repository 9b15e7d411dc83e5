package refund

import (
	"context"
	"log"
	"time"

	"lexpay/internal/models"
	"lexpay/internal/repositories"
	"lexpay/internal/services/audit"
)

// Sweeper recovers refunds stuck in processing after a crash or rail
// hang, failing them with a descriptive reason so no record sits in
// processing indefinitely.
type Sweeper struct {
	refunds   repositories.RefundRepository
	recorder  audit.Recorder
	threshold time.Duration
	interval  time.Duration
	batchSize int
	stopCh    chan struct{}
}

func NewSweeper(refunds repositories.RefundRepository, recorder audit.Recorder, threshold, interval time.Duration) *Sweeper {
	if threshold == 0 {
		threshold = 10 * time.Minute
	}
	if interval == 0 {
		interval = time.Minute
	}
	if recorder == nil {
		recorder = audit.NoopRecorder{}
	}
	return &Sweeper{
		refunds:   refunds,
		recorder:  recorder,
		threshold: threshold,
		interval:  interval,
		batchSize: 100,
		stopCh:    make(chan struct{}),
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	log.Println("refund sweeper started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("refund sweeper stopped:", ctx.Err())
			return
		case <-s.stopCh:
			log.Println("refund sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

func (s *Sweeper) Stop() {
	close(s.stopCh)
}

// Sweep fails every refund processing longer than the threshold.
func (s *Sweeper) Sweep(ctx context.Context) int {
	cutoff := time.Now().Add(-s.threshold)
	stuck, err := s.refunds.StuckProcessing(ctx, cutoff, s.batchSize)
	if err != nil {
		log.Printf("refund sweep: query failed: %v", err)
		return 0
	}

	recovered := 0
	for _, r := range stuck {
		err := s.refunds.UpdateStatus(ctx, r.ID, models.RefundStatusProcessing, models.RefundStatusFailed, map[string]interface{}{
			"failure_reason": "recovered by sweep: processing exceeded timeout",
		})
		if err != nil {
			continue
		}
		recovered++
		s.recorder.Record(ctx, audit.Entry{
			Action:     "refund.sweep",
			EntityType: "refund",
			EntityID:   r.ReferenceID,
			OldValue:   models.JSON{"status": models.RefundStatusProcessing},
			NewValue:   models.JSON{"status": models.RefundStatusFailed},
			Outcome:    models.AuditOutcomeFailure,
			Note:       "processing exceeded timeout",
		})
		log.Printf("refund sweep: failed stuck refund %s (user %d)", r.ReferenceID, r.UserID)
	}
	return recovered
}
