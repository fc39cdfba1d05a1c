// internal/models/notification.go
package models

import (
	"github.com/google/uuid"
)

type Notification struct {
	BaseModel
	UserID    uuid.UUID          `json:"user_id" gorm:"type:uuid;not null;index"`
	EventType string             `json:"event_type" gorm:"size:50;not null;index"`
	Title     string             `json:"title" gorm:"size:200;not null"`
	Message   string             `json:"message" gorm:"type:text"`
	Payload   JSONB              `json:"payload" gorm:"type:jsonb"`
	Status    NotificationStatus `json:"status" gorm:"type:varchar(10);default:'unread'"`
}
