package models

import "time"

type Photo struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PublicID     string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"public_id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	User         User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	RoomID       *uint     `gorm:"index:idx_room_taken,priority:1" json:"room_id"`
	PhotoURL     string    `gorm:"type:text;not null" json:"photo_url"`
	ThumbnailURL string    `gorm:"type:text" json:"thumbnail_url,omitempty"`
	Caption      string    `gorm:"type:varchar(280)" json:"caption,omitempty"`
	IsPublic     bool      `gorm:"not null" json:"is_public"`
	TakenAt      time.Time `gorm:"not null;index:idx_room_taken,priority:2" json:"taken_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// PhotoLibraryEntry links a photo into a user's personal library.
type PhotoLibraryEntry struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	PhotoID uint      `gorm:"not null;uniqueIndex:idx_photo_user" json:"photo_id"`
	Photo   Photo     `gorm:"foreignKey:PhotoID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"photo"`
	UserID  uint      `gorm:"not null;uniqueIndex:idx_photo_user;index" json:"user_id"`
	AddedAt time.Time `gorm:"not null" json:"added_at"`
}

func (PhotoLibraryEntry) TableName() string {
	return "photo_library"
}
