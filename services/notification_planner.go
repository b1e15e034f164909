package services

import (
	"context"
	"errors"
	"time"

	"github.com/yeremiapane/photobooth-app/models"
	"github.com/yeremiapane/photobooth-app/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlanRoomNotifications membuat jadwal reminder untuk 24 slot ke depan bagi semua
// peserta aktif. Room yang tidak aktif atau tidak ada diabaikan. Error hanya di-log,
// pembuatan room tidak boleh gagal karena planning.
func (s *Scheduler) PlanRoomNotifications(ctx context.Context, roomID uint) int {
	var room models.Room
	err := s.DB.WithContext(ctx).
		Where("id = ? AND is_active = ?", roomID, true).
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InfoLogger.Printf("Skip planning: room %d missing or inactive", roomID)
		return 0
	}
	if err != nil {
		utils.ErrorLogger.Printf("Error loading room %d for planning: %v", roomID, err)
		return 0
	}

	var participants []models.RoomParticipant
	if err := s.DB.WithContext(ctx).
		Preload("User").
		Where("room_id = ? AND is_active = ?", roomID, true).
		Find(&participants).Error; err != nil {
		utils.ErrorLogger.Printf("Error loading participants of room %d: %v", roomID, err)
		return 0
	}

	rows := buildRoomSchedule(room, participants, s.now())
	if len(rows) == 0 {
		return 0
	}

	if err := s.DB.WithContext(ctx).
		Omit(clause.Associations).
		CreateInBatches(&rows, 200).Error; err != nil {
		utils.ErrorLogger.Printf("Error scheduling notifications for room %d: %v", roomID, err)
		return 0
	}

	s.updateMetrics(func(m *SchedulerMetrics) { m.Planned += int64(len(rows)) })
	utils.InfoLogger.Printf("Scheduled %d notifications for room %s (%d participants)",
		len(rows), room.RoomCode, len(participants))
	return len(rows)
}

// buildRoomSchedule menghasilkan baris pending: satu email per peserta per slot,
// ditambah satu sms bila peserta punya nomor telepon.
func buildRoomSchedule(room models.Room, participants []models.RoomParticipant, now time.Time) []models.Notification {
	interval := room.ParsedSettings().ReminderInterval()
	roomID := room.ID
	emailText := reminderEmailMessage(room.RoomName)
	smsText := reminderSMSMessage(room.RoomName, room.RoomCode)

	rows := make([]models.Notification, 0, planningHorizon*len(participants)*2)
	for slot := 1; slot <= planningHorizon; slot++ {
		at := now.Add(time.Duration(slot) * interval)
		for _, p := range participants {
			rows = append(rows, models.Notification{
				UserID:       p.UserID,
				RoomID:       &roomID,
				Type:         models.NotificationTypeEmail,
				Message:      emailText,
				ScheduledFor: at,
				Status:       models.NotificationStatusPending,
			})
			if p.User.HasPhone() {
				rows = append(rows, models.Notification{
					UserID:       p.UserID,
					RoomID:       &roomID,
					Type:         models.NotificationTypeSMS,
					Message:      smsText,
					ScheduledFor: at,
					Status:       models.NotificationStatusPending,
				})
			}
		}
	}
	return rows
}

// CancelRoomNotifications membatalkan semua notifikasi pending milik room.
// Baris yang sudah terkirim tidak disentuh.
func (s *Scheduler) CancelRoomNotifications(ctx context.Context, roomID uint) (int64, error) {
	res := s.DB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("room_id = ? AND status = ?", roomID, models.NotificationStatusPending).
		Update("status", models.NotificationStatusCancelled)
	if res.Error != nil {
		utils.ErrorLogger.Printf("Error cancelling notifications for room %d: %v", roomID, res.Error)
		return 0, res.Error
	}

	s.updateMetrics(func(m *SchedulerMetrics) { m.Cancelled += res.RowsAffected })
	utils.InfoLogger.Printf("Cancelled %d pending notifications for room %d", res.RowsAffected, roomID)
	return res.RowsAffected, nil
}
