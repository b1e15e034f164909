package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

const (
	DefaultReminderInterval   = 60 // minutes
	DefaultPhotoRetentionDays = 30
)

// RoomSettings is the JSON document stored in rooms.settings.
type RoomSettings struct {
	Interval           int `json:"interval"`
	PhotoRetentionDays int `json:"photo_retention_days"`
}

func DefaultRoomSettings() RoomSettings {
	return RoomSettings{
		Interval:           DefaultReminderInterval,
		PhotoRetentionDays: DefaultPhotoRetentionDays,
	}
}

// Normalize replaces missing or non-positive values with the defaults.
func (s RoomSettings) Normalize() RoomSettings {
	if s.Interval <= 0 {
		s.Interval = DefaultReminderInterval
	}
	if s.PhotoRetentionDays <= 0 {
		s.PhotoRetentionDays = DefaultPhotoRetentionDays
	}
	return s
}

func (s RoomSettings) ReminderInterval() time.Duration {
	return time.Duration(s.Normalize().Interval) * time.Minute
}

type Room struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	RoomCode  string         `gorm:"type:varchar(12);uniqueIndex;not null" json:"room_code"`
	RoomName  string         `gorm:"type:varchar(255);not null" json:"room_name"`
	CreatedBy uint           `gorm:"not null;index" json:"created_by"`
	Creator   User           `gorm:"foreignKey:CreatedBy;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Settings  datatypes.JSON `json:"settings"`
	IsActive  bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ParsedSettings decodes Settings. A malformed or empty document yields the defaults.
func (r Room) ParsedSettings() RoomSettings {
	if len(r.Settings) == 0 {
		return DefaultRoomSettings()
	}
	var s RoomSettings
	if err := json.Unmarshal(r.Settings, &s); err != nil {
		return DefaultRoomSettings()
	}
	return s.Normalize()
}

// EncodeRoomSettings stores normalized settings in a JSON column value.
func EncodeRoomSettings(s RoomSettings) datatypes.JSON {
	b, err := json.Marshal(s.Normalize())
	if err != nil {
		b, _ = json.Marshal(DefaultRoomSettings())
	}
	return datatypes.JSON(b)
}

type RoomParticipant struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	RoomID   uint      `gorm:"not null;uniqueIndex:idx_room_user" json:"room_id"`
	Room     Room      `gorm:"foreignKey:RoomID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_room_user" json:"user_id"`
	User     User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
	IsActive bool      `gorm:"not null" json:"is_active"`
	JoinedAt time.Time `gorm:"not null" json:"joined_at"`
}
