package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeEmail NotificationType = "email"
	NotificationTypeSMS   NotificationType = "sms"
)

type NotificationStatus string

const (
	NotificationStatusPending   NotificationStatus = "pending"
	NotificationStatusSent      NotificationStatus = "sent"
	NotificationStatusFailed    NotificationStatus = "failed"
	NotificationStatusRead      NotificationStatus = "read"
	NotificationStatusCancelled NotificationStatus = "cancelled"
)

type Notification struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	UserID       uint               `gorm:"not null;index" json:"user_id"`
	User         User               `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	RoomID       *uint              `gorm:"index" json:"room_id"`
	Room         *Room              `gorm:"foreignKey:RoomID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"room,omitempty"`
	Type         NotificationType   `gorm:"type:varchar(10);not null" json:"type"`
	Message      string             `gorm:"type:text;not null" json:"message"`
	ScheduledFor time.Time          `gorm:"not null;index:idx_status_scheduled,priority:2" json:"scheduled_for"`
	Status       NotificationStatus `gorm:"type:varchar(20);not null;index:idx_status_scheduled,priority:1" json:"status"`
	SentAt       *time.Time         `json:"sent_at"`
	CreatedAt    time.Time          `json:"created_at"`
}

// IsDue reports whether the row is eligible for delivery at now.
func (n Notification) IsDue(now time.Time) bool {
	return n.Status == NotificationStatusPending && !n.ScheduledFor.After(now)
}
