package audit

import (
	"time"
)

const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
)

const EntityLeaveApplications = "leave_applications"

// Entry is one row of the audit trail. EventID is unique so redelivered
// events collapse onto the first row.
type Entry struct {
	ID        int64     `gorm:"primaryKey"`
	EventID   string    `gorm:"type:uuid;not null;uniqueIndex:uq_audit_logs_event_id"`
	ActorID   int64     `gorm:"not null"`
	Action    string    `gorm:"type:varchar(20);not null"`
	Entity    string    `gorm:"type:varchar(50);not null;index:idx_audit_logs_entity"`
	EntityID  int64     `gorm:"not null;index:idx_audit_logs_entity"`
	OldValues []byte    `gorm:"type:jsonb"`
	NewValues []byte    `gorm:"type:jsonb;not null"`
	RequestID string    `gorm:"type:varchar(64)"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Entry) TableName() string {
	return "audit_logs"
}
