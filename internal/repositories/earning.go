package repositories

import (
	"context"

	"lexpay/internal/models"

	"gorm.io/gorm"
)

type EarningRepository interface {
	Create(ctx context.Context, earning *models.Earning) error
	// UnsettledByLawyer returns the lawyer's accrued, not-yet-paid earnings.
	UnsettledByLawyer(ctx context.Context, lawyerID uint) ([]models.Earning, error)
	// MarkSettling claims earnings for an in-flight payout.
	MarkSettling(ctx context.Context, ids []uint, payoutID uint) error
	// FinishSettlement marks the payout's earnings settled on success or
	// releases them back to unsettled on failure.
	FinishSettlement(ctx context.Context, payoutID uint, settled bool) error
}

type earningRepository struct {
	db *gorm.DB
}

func NewEarningRepository(db *gorm.DB) EarningRepository {
	return &earningRepository{db: db}
}

func (r *earningRepository) Create(ctx context.Context, earning *models.Earning) error {
	return r.db.WithContext(ctx).Create(earning).Error
}

func (r *earningRepository) UnsettledByLawyer(ctx context.Context, lawyerID uint) ([]models.Earning, error) {
	var earnings []models.Earning
	err := r.db.WithContext(ctx).
		Where("lawyer_id = ? AND status = ?", lawyerID, models.EarningStatusUnsettled).
		Order("earned_at ASC").
		Find(&earnings).Error
	return earnings, err
}

func (r *earningRepository) MarkSettling(ctx context.Context, ids []uint, payoutID uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Earning{}).
		Where("id IN ? AND status = ?", ids, models.EarningStatusUnsettled).
		Updates(map[string]interface{}{
			"status":    models.EarningStatusSettling,
			"payout_id": payoutID,
		}).Error
}

func (r *earningRepository) FinishSettlement(ctx context.Context, payoutID uint, settled bool) error {
	updates := map[string]interface{}{"status": models.EarningStatusSettled}
	if !settled {
		updates = map[string]interface{}{
			"status":    models.EarningStatusUnsettled,
			"payout_id": nil,
		}
	}
	return r.db.WithContext(ctx).Model(&models.Earning{}).
		Where("payout_id = ? AND status = ?", payoutID, models.EarningStatusSettling).
		Updates(updates).Error
}
