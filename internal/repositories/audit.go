package repositories

import (
	"context"

	"lexpay/internal/models"

	"gorm.io/gorm"
)

// AuditFilter narrows an audit log listing.
type AuditFilter struct {
	EntityType string
	EntityID   string
	ActorID    uint
	Limit      int
	Offset     int
}

// AuditRepository is append-only. Entries are never updated or deleted.
type AuditRepository interface {
	Append(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter AuditFilter) ([]models.AuditLog, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepository) List(ctx context.Context, filter AuditFilter) ([]models.AuditLog, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Offset(filter.Offset)
	if filter.EntityType != "" {
		q = q.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != "" {
		q = q.Where("entity_id = ?", filter.EntityID)
	}
	if filter.ActorID != 0 {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	var entries []models.AuditLog
	err := q.Find(&entries).Error
	return entries, err
}
