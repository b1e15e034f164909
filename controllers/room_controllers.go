package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/photobooth-app/live"
	"github.com/yeremiapane/photobooth-app/middlewares"
	"github.com/yeremiapane/photobooth-app/models"
	"github.com/yeremiapane/photobooth-app/services"
	"github.com/yeremiapane/photobooth-app/utils"
	"gorm.io/gorm"
)

// NotificationPlanner is the part of the scheduler the room lifecycle drives.
type NotificationPlanner interface {
	PlanRoomNotifications(ctx context.Context, roomID uint) int
	CancelRoomNotifications(ctx context.Context, roomID uint) (int64, error)
}

// RoomBroadcaster pushes events to live room clients.
type RoomBroadcaster interface {
	Publish(roomID uint, event string, data interface{})
	CloseRoom(roomID uint)
}

type RoomController struct {
	DB        *gorm.DB
	Scheduler NotificationPlanner
	Events    RoomBroadcaster
}

func NewRoomController(db *gorm.DB, scheduler NotificationPlanner, events RoomBroadcaster) *RoomController {
	return &RoomController{DB: db, Scheduler: scheduler, Events: events}
}

type roomSummary struct {
	models.Room
	ParticipantCount int64 `json:"participant_count"`
	PhotoCount       int64 `json:"photo_count"`
	IsOwner          bool  `json:"is_owner"`
}

func (rc *RoomController) CreateRoom(c *gin.Context) {
	var req struct {
		RoomName string               `json:"room_name" binding:"required"`
		Settings *models.RoomSettings `json:"settings"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	name := utils.SanitizeText(req.RoomName)
	if name == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("room_name is required"))
		return
	}

	settings := models.DefaultRoomSettings()
	if req.Settings != nil {
		settings = req.Settings.Normalize()
	}

	userID := middlewares.CurrentUserID(c)
	ctx := c.Request.Context()

	var room models.Room
	err := rc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code, err := services.UniqueRoomCode(ctx, tx)
		if err != nil {
			return err
		}

		room = models.Room{
			RoomCode:  code,
			RoomName:  name,
			CreatedBy: userID,
			Settings:  models.EncodeRoomSettings(settings),
			IsActive:  true,
		}
		if err := tx.Omit("Creator").Create(&room).Error; err != nil {
			return err
		}

		// Pembuat room otomatis menjadi peserta
		return tx.Omit("Room", "User").Create(&models.RoomParticipant{
			RoomID:   room.ID,
			UserID:   userID,
			IsActive: true,
			JoinedAt: time.Now().UTC(),
		}).Error
	})
	if err != nil {
		utils.ErrorLogger.Printf("Error creating room: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to create room"))
		return
	}

	scheduled := 0
	if rc.Scheduler != nil {
		scheduled = rc.Scheduler.PlanRoomNotifications(ctx, room.ID)
	}

	utils.InfoLogger.Printf("Room %s created by user %d (%d reminders scheduled)", room.RoomCode, userID, scheduled)
	utils.RespondJSON(c, http.StatusCreated, "Room created", gin.H{
		"room":                    room,
		"invite_code":             room.RoomCode,
		"scheduled_notifications": scheduled,
	})
}

// JoinRoom bergabung lewat kode. Peserta yang pernah keluar diaktifkan kembali.
func (rc *RoomController) JoinRoom(c *gin.Context) {
	var req struct {
		RoomCode string `json:"room_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.RoomCode))
	userID := middlewares.CurrentUserID(c)

	var room models.Room
	if err := rc.DB.Where("room_code = ? AND is_active = ?", code, true).First(&room).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("room not found or inactive"))
		return
	}

	var participant models.RoomParticipant
	err := rc.DB.Where("room_id = ? AND user_id = ?", room.ID, userID).First(&participant).Error
	switch {
	case err == nil:
		if !participant.IsActive {
			participant.IsActive = true
			participant.JoinedAt = time.Now().UTC()
			if err := rc.DB.Model(&participant).Updates(map[string]interface{}{
				"is_active": true,
				"joined_at": participant.JoinedAt,
			}).Error; err != nil {
				utils.RespondError(c, http.StatusInternalServerError, err)
				return
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		participant = models.RoomParticipant{
			RoomID:   room.ID,
			UserID:   userID,
			IsActive: true,
			JoinedAt: time.Now().UTC(),
		}
		if err := rc.DB.Omit("Room", "User").Create(&participant).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("User %d joined room %s", userID, room.RoomCode)
	utils.RespondJSON(c, http.StatusOK, "Joined room", gin.H{
		"room":        room,
		"participant": participant,
	})
}

// GetUserRooms mengembalikan room yang dibuat atau diikuti user.
func (rc *RoomController) GetUserRooms(c *gin.Context) {
	userID := middlewares.CurrentUserID(c)

	var rooms []models.Room
	if err := rc.DB.
		Where("created_by = ? OR id IN (?)", userID,
			rc.DB.Model(&models.RoomParticipant{}).Select("room_id").Where("user_id = ? AND is_active = ?", userID, true)).
		Order("created_at DESC").
		Find(&rooms).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	summaries := make([]roomSummary, 0, len(rooms))
	for _, room := range rooms {
		s := roomSummary{Room: room, IsOwner: room.CreatedBy == userID}
		rc.DB.Model(&models.RoomParticipant{}).Where("room_id = ? AND is_active = ?", room.ID, true).Count(&s.ParticipantCount)
		rc.DB.Model(&models.Photo{}).Where("room_id = ?", room.ID).Count(&s.PhotoCount)
		summaries = append(summaries, s)
	}

	utils.RespondJSON(c, http.StatusOK, "User rooms", gin.H{
		"rooms": summaries,
		"count": len(summaries),
	})
}

// GetRoomDetails -> room + peserta aktif. Akses sudah dicek RoomMemberRequired.
func (rc *RoomController) GetRoomDetails(c *gin.Context) {
	room, ok := middlewares.CurrentRoom(c)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, errors.New("room not found"))
		return
	}

	var participants []models.RoomParticipant
	if err := rc.DB.Preload("User").
		Where("room_id = ? AND is_active = ?", room.ID, true).
		Order("joined_at ASC").
		Find(&participants).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Room detail", gin.H{
		"room":         room,
		"settings":     room.ParsedSettings(),
		"participants": participants,
		"is_owner":     room.CreatedBy == middlewares.CurrentUserID(c),
	})
}

func (rc *RoomController) LeaveRoom(c *gin.Context) {
	room, ok := middlewares.CurrentRoom(c)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, errors.New("room not found"))
		return
	}
	userID := middlewares.CurrentUserID(c)

	if room.CreatedBy == userID {
		utils.RespondError(c, http.StatusBadRequest, errors.New("the owner cannot leave the room, deactivate it instead"))
		return
	}

	if err := rc.DB.Model(&models.RoomParticipant{}).
		Where("room_id = ? AND user_id = ?", room.ID, userID).
		Update("is_active", false).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("User %d left room %s", userID, room.RoomCode)
	utils.RespondJSON(c, http.StatusOK, "Left room", nil)
}

// DeactivateRoom menonaktifkan room lalu membatalkan semua reminder pending.
func (rc *RoomController) DeactivateRoom(c *gin.Context) {
	room, ok := middlewares.CurrentRoom(c)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, errors.New("room not found"))
		return
	}

	if err := rc.DB.Model(&models.Room{}).
		Where("id = ?", room.ID).
		Update("is_active", false).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var cancelled int64
	if rc.Scheduler != nil {
		n, err := rc.Scheduler.CancelRoomNotifications(c.Request.Context(), room.ID)
		if err != nil {
			utils.ErrorLogger.Printf("Room %s deactivated but reminders were not cancelled: %v", room.RoomCode, err)
		}
		cancelled = n
	}
	if rc.Events != nil {
		rc.Events.CloseRoom(room.ID)
	}

	utils.InfoLogger.Printf("Room %s deactivated (%d reminders cancelled)", room.RoomCode, cancelled)
	utils.RespondJSON(c, http.StatusOK, "Room deactivated", gin.H{
		"room_id":                 room.ID,
		"cancelled_notifications": cancelled,
	})
}

// UpdateSettings hanya menyimpan settings baru; jadwal yang sudah ada tidak dibuat ulang.
func (rc *RoomController) UpdateSettings(c *gin.Context) {
	room, ok := middlewares.CurrentRoom(c)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, errors.New("room not found"))
		return
	}

	var req struct {
		Interval           *int `json:"interval"`
		PhotoRetentionDays *int `json:"photo_retention_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	settings := room.ParsedSettings()
	if req.Interval != nil {
		if *req.Interval <= 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("interval must be positive"))
			return
		}
		settings.Interval = *req.Interval
	}
	if req.PhotoRetentionDays != nil {
		if *req.PhotoRetentionDays <= 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("photo_retention_days must be positive"))
			return
		}
		settings.PhotoRetentionDays = *req.PhotoRetentionDays
	}

	if err := rc.DB.Model(&models.Room{}).
		Where("id = ?", room.ID).
		Update("settings", models.EncodeRoomSettings(settings)).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Settings of room %s updated: %+v", room.RoomCode, settings)
	utils.RespondJSON(c, http.StatusOK, "Room settings updated", settings)
}

type participantView struct {
	UserID   uint      `json:"user_id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Phone    *string   `json:"phone,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
	IsOwner  bool      `json:"is_owner"`
}

// GetParticipants -> peserta aktif, urut waktu bergabung
func (rc *RoomController) GetParticipants(c *gin.Context) {
	room, ok := middlewares.CurrentRoom(c)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, errors.New("room not found"))
		return
	}

	var participants []participantView
	if err := rc.DB.Table("room_participants AS rp").
		Select("u.id AS user_id, u.email, u.full_name, u.phone, rp.joined_at").
		Joins("JOIN users u ON u.id = rp.user_id").
		Where("rp.room_id = ? AND rp.is_active = ?", room.ID, true).
		Order("rp.joined_at ASC").
		Scan(&participants).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	for i := range participants {
		participants[i].IsOwner = participants[i].UserID == room.CreatedBy
	}
	if participants == nil {
		participants = []participantView{}
	}

	utils.RespondJSON(c, http.StatusOK, "Room participants", gin.H{
		"participants": participants,
		"count":        len(participants),
	})
}

// RemoveParticipant -> pemilik mengeluarkan peserta. Pemilik sendiri tidak bisa dikeluarkan.
func (rc *RoomController) RemoveParticipant(c *gin.Context) {
	room, ok := middlewares.CurrentRoom(c)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, errors.New("room not found"))
		return
	}
	targetID, ok := utils.ParseID(c, "userId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid user id"))
		return
	}
	if targetID == room.CreatedBy {
		utils.RespondError(c, http.StatusBadRequest, errors.New("the owner cannot be removed from the room"))
		return
	}

	res := rc.DB.Model(&models.RoomParticipant{}).
		Where("room_id = ? AND user_id = ? AND is_active = ?", room.ID, targetID, true).
		Update("is_active", false)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("participant not found"))
		return
	}

	utils.InfoLogger.Printf("User %d removed from room %s", targetID, room.RoomCode)
	utils.RespondJSON(c, http.StatusOK, "Participant removed", gin.H{
		"room_id": room.ID,
		"user_id": targetID,
	})
}

// RegenerateCode memberi room kode undangan baru; kode lama langsung tidak berlaku.
func (rc *RoomController) RegenerateCode(c *gin.Context) {
	room, ok := middlewares.CurrentRoom(c)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, errors.New("room not found"))
		return
	}
	if !room.IsActive {
		utils.RespondError(c, http.StatusBadRequest, errors.New("room is no longer active"))
		return
	}
	ctx := c.Request.Context()

	var code string
	err := rc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if code, err = services.UniqueRoomCode(ctx, tx); err != nil {
			return err
		}
		return tx.Model(&models.Room{}).Where("id = ?", room.ID).Update("room_code", code).Error
	})
	if err != nil {
		utils.ErrorLogger.Printf("Error regenerating code for room %d: %v", room.ID, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to regenerate room code"))
		return
	}

	utils.InfoLogger.Printf("Room %d code changed from %s to %s", room.ID, room.RoomCode, code)
	utils.RespondJSON(c, http.StatusOK, "Room code regenerated", gin.H{
		"room_id":  room.ID,
		"new_code": code,
	})
}

var _ RoomBroadcaster = (*live.Hub)(nil)
