package entities

import "time"

// AuditEventType groups events for filtering in the audit log.
type AuditEventType string

const (
	AuditEventUpload     AuditEventType = "upload"
	AuditEventDelete     AuditEventType = "delete"
	AuditEventVocabulary AuditEventType = "vocabulary"
	AuditEventAuth       AuditEventType = "auth"
)

// AuditEventTypes lists every type in display order.
var AuditEventTypes = []AuditEventType{
	AuditEventUpload,
	AuditEventDelete,
	AuditEventVocabulary,
	AuditEventAuth,
}

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEvent is one line of the audit log. EntityKey identifies the
// subject: a document ID, or "language:word" for vocabulary edits.
type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index" json:"user_id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"`
	Description string         `gorm:"size:500" json:"description"`
	EntityType  string         `gorm:"size:50" json:"entity_type"`
	EntityKey   string         `gorm:"index;size:255" json:"entity_key,omitempty"`
	IPAddress   string         `gorm:"size:45" json:"ip_address,omitempty"`
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}

// AuditQuery selects a page of the audit log. Zero UserID and empty Type
// match everything.
type AuditQuery struct {
	UserID uint
	Type   AuditEventType
	Limit  int
	Offset int
}
