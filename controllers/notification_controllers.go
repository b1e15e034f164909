package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/photobooth-app/middlewares"
	"github.com/yeremiapane/photobooth-app/models"
	"github.com/yeremiapane/photobooth-app/utils"
	"gorm.io/gorm"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

type inboxNotification struct {
	ID           uint                      `json:"id"`
	RoomID       *uint                     `json:"room_id"`
	Type         models.NotificationType   `json:"type"`
	Message      string                    `json:"message"`
	ScheduledFor time.Time                 `json:"scheduled_for"`
	Status       models.NotificationStatus `json:"status"`
	SentAt       *time.Time                `json:"sent_at"`
	RoomName     *string                   `json:"room_name"`
	RoomCode     *string                   `json:"room_code"`
}

var unreadStatuses = []models.NotificationStatus{
	models.NotificationStatusPending,
	models.NotificationStatusSent,
}

// GetUserNotifications -> inbox user, jadwal terbaru dulu
func (nc *NotificationController) GetUserNotifications(c *gin.Context) {
	userID := middlewares.CurrentUserID(c)
	limit, offset := utils.Pagination(c, 20, 100)

	var notifs []inboxNotification
	if err := nc.DB.Table("notifications AS n").
		Select("n.id, n.room_id, n.type, n.message, n.scheduled_for, n.status, n.sent_at, r.room_name, r.room_code").
		Joins("LEFT JOIN rooms r ON r.id = n.room_id").
		Where("n.user_id = ?", userID).
		Order("n.scheduled_for DESC").
		Limit(limit).
		Offset(offset).
		Scan(&notifs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var unread int64
	if err := nc.DB.Model(&models.Notification{}).
		Where("user_id = ? AND status IN ?", userID, unreadStatuses).
		Count(&unread).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if notifs == nil {
		notifs = []inboxNotification{}
	}
	utils.RespondJSON(c, http.StatusOK, "Notifications", gin.H{
		"notifications": notifs,
		"pagination": gin.H{
			"total":  unread,
			"limit":  limit,
			"offset": offset,
		},
	})
}

// MarkAsRead hanya berlaku untuk notifikasi yang sudah terkirim; sent_at tetap dipertahankan.
func (nc *NotificationController) MarkAsRead(c *gin.Context) {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid notification id"))
		return
	}
	userID := middlewares.CurrentUserID(c)

	var notif models.Notification
	if err := nc.DB.Where("id = ? AND user_id = ?", id, userID).First(&notif).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("notification not found"))
		return
	}

	switch notif.Status {
	case models.NotificationStatusRead:
		utils.RespondJSON(c, http.StatusOK, "Notification already read", notif)
		return
	case models.NotificationStatusSent:
	default:
		utils.RespondError(c, http.StatusConflict, errors.New("only delivered notifications can be marked as read"))
		return
	}

	res := nc.DB.Model(&models.Notification{}).
		Where("id = ? AND status = ?", notif.ID, models.NotificationStatusSent).
		Update("status", models.NotificationStatusRead)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	notif.Status = models.NotificationStatusRead

	utils.RespondJSON(c, http.StatusOK, "Notification marked as read", notif)
}

func (nc *NotificationController) MarkAllAsRead(c *gin.Context) {
	userID := middlewares.CurrentUserID(c)

	res := nc.DB.Model(&models.Notification{}).
		Where("user_id = ? AND status = ?", userID, models.NotificationStatusSent).
		Update("status", models.NotificationStatusRead)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "All notifications marked as read", gin.H{
		"updated_count": res.RowsAffected,
	})
}

func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid notification id"))
		return
	}
	userID := middlewares.CurrentUserID(c)

	res := nc.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("notification not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Notification deleted", nil)
}

type NotificationStats struct {
	Pending   int64 `json:"pending"`
	Sent      int64 `json:"sent"`
	Read      int64 `json:"read"`
	Failed    int64 `json:"failed"`
	Cancelled int64 `json:"cancelled"`
	Total     int64 `json:"total"`
	Unread    int64 `json:"unread"`
}

func (nc *NotificationController) GetNotificationStats(c *gin.Context) {
	userID := middlewares.CurrentUserID(c)

	var rows []struct {
		Status models.NotificationStatus
		Count  int64
	}
	if err := nc.DB.Model(&models.Notification{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var stats NotificationStats
	for _, r := range rows {
		switch r.Status {
		case models.NotificationStatusPending:
			stats.Pending = r.Count
		case models.NotificationStatusSent:
			stats.Sent = r.Count
		case models.NotificationStatusRead:
			stats.Read = r.Count
		case models.NotificationStatusFailed:
			stats.Failed = r.Count
		case models.NotificationStatusCancelled:
			stats.Cancelled = r.Count
		}
		stats.Total += r.Count
	}
	stats.Unread = stats.Pending + stats.Sent

	utils.RespondJSON(c, http.StatusOK, "Notification stats", stats)
}
