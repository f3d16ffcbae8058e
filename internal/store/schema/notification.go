package schema

import (
	"time"

	"gorm.io/datatypes"
)

// Notification represents the notifications table - the ordered journal of protocol state changes
type Notification struct {
	// Cursor is an auto-incrementing sequence number for efficient pagination and ordering
	Cursor int64 `gorm:"column:\"cursor\";primaryKey;autoIncrement"`
	// ID is the ULID of the notification
	ID string `gorm:"column:id;not null;uniqueIndex;type:text"`
	// Type is the notification type (e.g. NewFractionsSale)
	Type string `gorm:"column:type;not null;type:text"`
	// SubjectType identifies what kind of record changed (sale, buyout, escrow, protocol)
	SubjectType string `gorm:"column:subject_type;not null;type:text"`
	// SubjectID is the identifier of the changed record
	SubjectID string `gorm:"column:subject_id;not null;type:text"`
	// OccurredAt is the timestamp when the change occurred
	OccurredAt time.Time `gorm:"column:occurred_at;not null;default:now();type:timestamptz"`
	// Payload contains the notification body as JSON
	Payload datatypes.JSON `gorm:"column:payload;type:jsonb"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
