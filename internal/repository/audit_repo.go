package repository

import (
	"time"

	"go-restaurant-authz/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditCursor marks the last entry of a page; the next page starts strictly
// after it in newest-first order.
type AuditCursor struct {
	Timestamp time.Time
	ID        uuid.UUID
}

// AuditRepository exposes inserts and reads only. Entries are never updated
// or deleted.
type AuditRepository interface {
	WithTx(tx *gorm.DB) AuditRepository
	Create(entry *model.AuditLog) error
	FindPage(entityType *model.EntityType, after *AuditCursor, limit int) ([]model.AuditLog, error)
	FindSince(since time.Time) ([]model.AuditLog, error)
	Latest() (*model.AuditLog, error)
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db}
}

func (r *auditRepo) WithTx(tx *gorm.DB) AuditRepository {
	return &auditRepo{tx}
}

func (r *auditRepo) Create(entry *model.AuditLog) error {
	return r.db.Create(entry).Error
}

func (r *auditRepo) FindPage(entityType *model.EntityType, after *AuditCursor, limit int) ([]model.AuditLog, error) {
	q := r.db.Model(&model.AuditLog{})
	if entityType != nil {
		q = q.Where("entity_type = ?", *entityType)
	}
	if after != nil {
		q = q.Where("(occurred_at < ?) OR (occurred_at = ? AND id < ?)", after.Timestamp, after.Timestamp, after.ID)
	}

	var entries []model.AuditLog
	err := q.Order("occurred_at DESC").Order("id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

func (r *auditRepo) FindSince(since time.Time) ([]model.AuditLog, error) {
	var entries []model.AuditLog
	err := r.db.Where("occurred_at >= ?", since).Order("occurred_at DESC").Find(&entries).Error
	return entries, err
}

func (r *auditRepo) Latest() (*model.AuditLog, error) {
	var entry model.AuditLog
	if err := r.db.Order("occurred_at DESC").First(&entry).Error; err != nil {
		return nil, translate(err)
	}
	return &entry, nil
}
