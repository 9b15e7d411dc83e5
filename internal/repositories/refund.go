package repositories

import (
	"context"
	"time"

	"lexpay/internal/errors"
	"lexpay/internal/models"

	"gorm.io/gorm"
)

type RefundRepository interface {
	Create(ctx context.Context, refund *models.Refund) error
	FindByID(ctx context.Context, id uint) (*models.Refund, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Refund, error)
	// UpdateStatus moves a refund between statuses with a compare-and-set
	// on the current status, so a decided refund cannot be re-decided.
	UpdateStatus(ctx context.Context, id uint, from, to string, updates map[string]interface{}) error
	StuckProcessing(ctx context.Context, olderThan time.Time, limit int) ([]models.Refund, error)
}

type refundRepository struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) RefundRepository {
	return &refundRepository{db: db}
}

func (r *refundRepository) Create(ctx context.Context, refund *models.Refund) error {
	return r.db.WithContext(ctx).Create(refund).Error
}

func (r *refundRepository) FindByID(ctx context.Context, id uint) (*models.Refund, error) {
	var refund models.Refund
	err := r.db.WithContext(ctx).First(&refund, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRefundNotFound
		}
		return nil, err
	}
	return &refund, nil
}

func (r *refundRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Refund, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var refunds []models.Refund
	err := q.Find(&refunds).Error
	return refunds, err
}

func (r *refundRepository) UpdateStatus(ctx context.Context, id uint, from, to string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to
	res := r.db.WithContext(ctx).Model(&models.Refund{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &errors.ConflictError{Message: "refund is not in status " + from}
	}
	return nil
}

func (r *refundRepository) StuckProcessing(ctx context.Context, olderThan time.Time, limit int) ([]models.Refund, error) {
	var refunds []models.Refund
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", models.RefundStatusProcessing, olderThan).
		Limit(limit).
		Find(&refunds).Error
	return refunds, err
}
