package repositories

import (
	"context"

	"lexpay/internal/errors"
	"lexpay/internal/models"

	"gorm.io/gorm"
)

type LawyerRepository interface {
	Create(ctx context.Context, lawyer *models.Lawyer) error
	FindByID(ctx context.Context, id uint) (*models.Lawyer, error)
	List(ctx context.Context, limit, offset int) ([]models.Lawyer, error)
}

type lawyerRepository struct {
	db *gorm.DB
}

func NewLawyerRepository(db *gorm.DB) LawyerRepository {
	return &lawyerRepository{db: db}
}

func (r *lawyerRepository) Create(ctx context.Context, lawyer *models.Lawyer) error {
	return r.db.WithContext(ctx).Create(lawyer).Error
}

func (r *lawyerRepository) FindByID(ctx context.Context, id uint) (*models.Lawyer, error) {
	var lawyer models.Lawyer
	err := r.db.WithContext(ctx).First(&lawyer, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrLawyerNotFound
		}
		return nil, err
	}
	return &lawyer, nil
}

func (r *lawyerRepository) List(ctx context.Context, limit, offset int) ([]models.Lawyer, error) {
	var lawyers []models.Lawyer
	err := r.db.WithContext(ctx).Order("id ASC").Limit(limit).Offset(offset).Find(&lawyers).Error
	return lawyers, err
}
