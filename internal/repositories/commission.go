package repositories

import (
	"context"

	"lexpay/internal/errors"
	"lexpay/internal/models"

	"gorm.io/gorm"
)

type CommissionRepository interface {
	// Active returns the highest-version config.
	Active(ctx context.Context) (*models.CommissionConfig, error)
	// CreateVersion inserts a new config version and its history entry
	// in one transaction. Superseded versions are kept.
	CreateVersion(ctx context.Context, cfg *models.CommissionConfig, hist *models.CommissionHistory) error
	History(ctx context.Context, limit int) ([]models.CommissionHistory, error)
}

type commissionRepository struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) CommissionRepository {
	return &commissionRepository{db: db}
}

func (r *commissionRepository) Active(ctx context.Context) (*models.CommissionConfig, error) {
	var cfg models.CommissionConfig
	err := r.db.WithContext(ctx).Order("version DESC").First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrConfigNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *commissionRepository) CreateVersion(ctx context.Context, cfg *models.CommissionConfig, hist *models.CommissionHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var max int
		// The unique index on version rejects a racing writer.
		if err := tx.Model(&models.CommissionConfig{}).
			Select("COALESCE(MAX(version), 0)").
			Scan(&max).Error; err != nil {
			return err
		}
		cfg.Version = max + 1
		if err := tx.Create(cfg).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &errors.ConflictError{Message: "commission config was updated concurrently, retry with the latest version"}
			}
			return err
		}
		hist.FromVersion = max
		hist.ToVersion = cfg.Version
		return tx.Create(hist).Error
	})
}

func (r *commissionRepository) History(ctx context.Context, limit int) ([]models.CommissionHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var entries []models.CommissionHistory
	err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
