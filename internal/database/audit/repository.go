package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/wordhoard/internal/entities"
)

const defaultPageSize = 50

// Repository stores the audit log in the audit_events table.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Record inserts event, stamping CreatedAt when the caller left it empty.
func (r *Repository) Record(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.Create(event).Error
}

// Find returns one page of matching events, newest first, and the number
// of matches across all pages.
func (r *Repository) Find(q entities.AuditQuery) ([]entities.AuditEvent, int64, error) {
	scope := r.db.Model(&entities.AuditEvent{})
	if q.UserID != 0 {
		scope = scope.Where("user_id = ?", q.UserID)
	}
	if q.Type != "" {
		scope = scope.Where("event_type = ?", q.Type)
	}

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	var events []entities.AuditEvent
	err := scope.Order("created_at DESC").
		Limit(limit).
		Offset(max(q.Offset, 0)).
		Find(&events).Error
	return events, total, err
}

// PruneBefore deletes events created before cutoff and reports how many went.
func (r *Repository) PruneBefore(cutoff time.Time) (int64, error) {
	res := r.db.Where("created_at < ?", cutoff).Delete(&entities.AuditEvent{})
	return res.RowsAffected, res.Error
}
