package commission

import (
	"context"
	"fmt"
	"sort"

	"lexpay/internal/errors"
	"lexpay/internal/models"
	"lexpay/internal/repositories"
	"lexpay/internal/services/audit"
)

const rateTableCacheKey = "commission:ratetable:active"

// SnapshotCache caches the active rate table snapshot. Satisfied by
// repositories/cache.CacheService.
type SnapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

// Service resolves commission rates and applies admin config updates.
type Service interface {
	// Current returns the active rate table snapshot.
	Current(ctx context.Context) (*RateTable, error)
	// Update validates and persists a new config version. All-or-nothing:
	// one bad rate rejects the whole update.
	Update(ctx context.Context, input UpdateInput) (*models.CommissionConfig, error)
	History(ctx context.Context, limit int) ([]models.CommissionHistory, error)
}

type service struct {
	repo     repositories.CommissionRepository
	cache    SnapshotCache
	recorder audit.Recorder
}

// NewService creates a new commission service
func NewService(repo repositories.CommissionRepository, cache SnapshotCache, recorder audit.Recorder) Service {
	if repo == nil {
		panic("commission repo is required")
	}
	if recorder == nil {
		recorder = audit.NoopRecorder{}
	}
	return &service{repo: repo, cache: cache, recorder: recorder}
}

func (s *service) Current(ctx context.Context) (*RateTable, error) {
	if s.cache != nil {
		var table RateTable
		if found, err := s.cache.Get(ctx, rateTableCacheKey, &table); err == nil && found {
			return &table, nil
		}
	}

	cfg, err := s.repo.Active(ctx)
	if err != nil {
		return nil, err
	}

	table := NewRateTable(cfg)
	if s.cache != nil {
		// Best effort; resolution still works straight off the database.
		_ = s.cache.Set(ctx, rateTableCacheKey, table)
	}
	return table, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.CommissionConfig, error) {
	if err := validate(input); err != nil {
		s.recorder.Record(ctx, audit.Entry{
			Action:     "commission.update",
			EntityType: "commission_config",
			NewValue:   models.Snapshot(input),
			ActorID:    input.ActorID,
			ActorIP:    input.ActorIP,
			Outcome:    models.AuditOutcomeFailure,
			Note:       err.Error(),
		})
		return nil, err
	}

	old, err := s.repo.Active(ctx)
	if err != nil && !errors.Is(err, errors.ErrConfigNotFound) {
		return nil, err
	}

	cfg := &models.CommissionConfig{
		DefaultRate:        input.DefaultRate,
		MinAmount:          input.MinAmount,
		ByConsultationType: models.RateMap(input.ByConsultationType),
		ByLawyerTier:       models.RateMap(input.ByLawyerTier),
		BySubscriptionTier: models.RateMap(input.BySubscriptionTier),
		UpdatedBy:          input.ActorID,
		Note:               input.Note,
	}
	hist := &models.CommissionHistory{
		NewValue:  models.Snapshot(cfg),
		ChangedBy: input.ActorID,
		Note:      input.Note,
	}
	if old != nil {
		hist.OldValue = models.Snapshot(old)
	}

	if err := s.repo.CreateVersion(ctx, cfg, hist); err != nil {
		s.recorder.Record(ctx, audit.Entry{
			Action:     "commission.update",
			EntityType: "commission_config",
			NewValue:   models.Snapshot(input),
			ActorID:    input.ActorID,
			ActorIP:    input.ActorIP,
			Outcome:    models.AuditOutcomeFailure,
			Note:       err.Error(),
		})
		return nil, fmt.Errorf("failed to persist commission config: %w", err)
	}

	if s.cache != nil {
		s.cache.Delete(ctx, rateTableCacheKey)
	}

	entry := audit.Entry{
		Action:     "commission.update",
		EntityType: "commission_config",
		EntityID:   fmt.Sprintf("v%d", cfg.Version),
		NewValue:   models.Snapshot(cfg),
		ActorID:    input.ActorID,
		ActorIP:    input.ActorIP,
	}
	if old != nil {
		entry.OldValue = models.Snapshot(old)
	}
	s.recorder.Record(ctx, entry)

	return cfg, nil
}

func (s *service) History(ctx context.Context, limit int) ([]models.CommissionHistory, error) {
	return s.repo.History(ctx, limit)
}

func validate(input UpdateInput) error {
	if input.DefaultRate < 0 || input.DefaultRate > 100 {
		return &errors.ValidationError{Field: "default_rate", Reason: "must be between 0 and 100"}
	}
	if input.MinAmount < 0 {
		return &errors.ValidationError{Field: "min_amount", Reason: "must not be negative"}
	}
	for _, group := range []struct {
		name  string
		rates map[string]float64
	}{
		{"by_consultation_type", input.ByConsultationType},
		{"by_lawyer_tier", input.ByLawyerTier},
		{"by_subscription_tier", input.BySubscriptionTier},
	} {
		// Deterministic order so the same bad input always names the
		// same offending field.
		keys := make([]string, 0, len(group.rates))
		for k := range group.rates {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if rate := group.rates[k]; rate < 0 || rate > 100 {
				return &errors.ValidationError{
					Field:  fmt.Sprintf("%s[%s]", group.name, k),
					Reason: "must be between 0 and 100",
				}
			}
		}
	}
	return nil
}
