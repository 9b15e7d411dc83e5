package repositories

import (
	"context"
	"time"

	"lexpay/internal/errors"
	"lexpay/internal/models"

	"gorm.io/gorm"
)

type PayoutRepository interface {
	Create(ctx context.Context, payout *models.Payout) error
	FindByID(ctx context.Context, id uint) (*models.Payout, error)
	FindByReference(ctx context.Context, referenceID string) (*models.Payout, error)
	ListByLawyer(ctx context.Context, lawyerID uint, limit, offset int) ([]models.Payout, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Payout, error)
	// UpdateStatus moves a payout from one status to another with a
	// compare-and-set on the current status. Returns a ConflictError if
	// the row was not in the expected status.
	UpdateStatus(ctx context.Context, id uint, from, to string, updates map[string]interface{}) error
	// StuckProcessing returns payouts that have been in processing
	// longer than the threshold, for the reconciliation sweep.
	StuckProcessing(ctx context.Context, olderThan time.Time, limit int) ([]models.Payout, error)
}

type payoutRepository struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) PayoutRepository {
	return &payoutRepository{db: db}
}

func (r *payoutRepository) Create(ctx context.Context, payout *models.Payout) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

func (r *payoutRepository) FindByID(ctx context.Context, id uint) (*models.Payout, error) {
	var payout models.Payout
	err := r.db.WithContext(ctx).First(&payout, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrPayoutNotFound
		}
		return nil, err
	}
	return &payout, nil
}

func (r *payoutRepository) FindByReference(ctx context.Context, referenceID string) (*models.Payout, error) {
	var payout models.Payout
	err := r.db.WithContext(ctx).Where("reference_id = ?", referenceID).First(&payout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrPayoutNotFound
		}
		return nil, err
	}
	return &payout, nil
}

func (r *payoutRepository) ListByLawyer(ctx context.Context, lawyerID uint, limit, offset int) ([]models.Payout, error) {
	var payouts []models.Payout
	err := r.db.WithContext(ctx).
		Where("lawyer_id = ?", lawyerID).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&payouts).Error
	return payouts, err
}

func (r *payoutRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Payout, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var payouts []models.Payout
	err := q.Find(&payouts).Error
	return payouts, err
}

func (r *payoutRepository) UpdateStatus(ctx context.Context, id uint, from, to string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to
	res := r.db.WithContext(ctx).Model(&models.Payout{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &errors.ConflictError{Message: "payout is not in status " + from}
	}
	return nil
}

func (r *payoutRepository) StuckProcessing(ctx context.Context, olderThan time.Time, limit int) ([]models.Payout, error) {
	var payouts []models.Payout
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", models.PayoutStatusProcessing, olderThan).
		Limit(limit).
		Find(&payouts).Error
	return payouts, err
}
