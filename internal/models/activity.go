package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is an append-only audit record. A nil UserID marks a system event.
type ActivityLog struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    *uint             `gorm:"index" json:"user_id"`
	Action    string            `gorm:"size:255;not null" json:"action"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	Timestamp time.Time         `gorm:"autoCreateTime;index" json:"timestamp"`
	User      *User             `gorm:"foreignKey:UserID" json:"-"`
}
