package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/photobooth-app/models"
	"github.com/yeremiapane/photobooth-app/utils"
)

const EventReminderSent = "reminder_sent"

// dueNotification adalah notifikasi pending digabung dengan kontak penerima dan info room.
type dueNotification struct {
	ID           uint
	UserID       uint
	RoomID       *uint
	Type         models.NotificationType
	Message      string
	ScheduledFor time.Time
	Email        string
	Phone        *string
	FullName     string
	RoomName     *string
	RoomCode     *string
}

func (n dueNotification) reminderContext() ReminderContext {
	rc := ReminderContext{
		UserName: n.FullName,
		RoomName: defaultRoomName,
		RoomCode: defaultRoomCode,
	}
	if n.RoomName != nil && *n.RoomName != "" {
		rc.RoomName = *n.RoomName
	}
	if n.RoomCode != nil && *n.RoomCode != "" {
		rc.RoomCode = *n.RoomCode
	}
	return rc
}

// DrainReport merangkum satu drain tick.
// Unrecorded menghitung baris yang sudah terkirim ke provider tetapi statusnya gagal
// ditulis (masih pending di store, atau sudah diambil alih proses lain).
type DrainReport struct {
	Selected   int `json:"selected"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
	Unrecorded int `json:"unrecorded"`
}

type deliveryOutcome int

const (
	outcomeSent deliveryOutcome = iota
	outcomeFailed
	outcomeUnrecorded
)

// ProcessPendingNotifications mengambil notifikasi jatuh tempo (paling lama dulu, maksimal
// BatchSize) lalu mengirimnya satu per satu. Kegagalan satu baris tidak menghentikan baris lain.
func (s *Scheduler) ProcessPendingNotifications(ctx context.Context) (DrainReport, error) {
	var report DrainReport
	now := s.now()

	var due []dueNotification
	if err := s.DB.WithContext(ctx).
		Table("notifications AS n").
		Select("n.id, n.user_id, n.room_id, n.type, n.message, n.scheduled_for, "+
			"u.email, u.phone, u.full_name, r.room_name, r.room_code").
		Joins("JOIN users u ON u.id = n.user_id").
		Joins("LEFT JOIN rooms r ON r.id = n.room_id").
		Where("n.status = ? AND n.scheduled_for <= ?", models.NotificationStatusPending, now).
		Order("n.scheduled_for ASC").
		Limit(s.batchSize()).
		Scan(&due).Error; err != nil {
		return report, fmt.Errorf("select due notifications: %w", err)
	}

	report.Selected = len(due)
	for _, n := range due {
		if ctx.Err() != nil {
			break
		}
		switch s.deliver(ctx, n) {
		case outcomeSent:
			report.Sent++
		case outcomeFailed:
			report.Failed++
		case outcomeUnrecorded:
			report.Unrecorded++
		}
	}

	s.updateMetrics(func(m *SchedulerMetrics) {
		m.DrainTicks++
		m.Processed += int64(report.Selected)
		m.Sent += int64(report.Sent)
		m.Failed += int64(report.Failed)
		m.Unrecorded += int64(report.Unrecorded)
		m.LastDrainAt = &now
	})

	if report.Selected > 0 {
		utils.InfoLogger.Printf("Processed %d notifications: %d sent, %d failed, %d unrecorded",
			report.Selected, report.Sent, report.Failed, report.Unrecorded)
	}
	return report, nil
}

// deliver mengirim satu notifikasi dan mencatat hasilnya.
func (s *Scheduler) deliver(ctx context.Context, n dueNotification) (outcome deliveryOutcome) {
	defer func() {
		if r := recover(); r != nil {
			utils.ErrorLogger.Printf("Panic delivering notification %d: %v", n.ID, r)
			s.markFailed(ctx, n.ID)
			outcome = outcomeFailed
		}
	}()

	result, err := s.dispatch(ctx, n)
	if err != nil || !result.Success {
		if err == nil {
			err = fmt.Errorf("provider rejected message")
		}
		fields := logrus.Fields{"notification_id": n.ID, "type": n.Type}
		if n.RoomID != nil {
			fields["room_id"] = *n.RoomID
		}
		utils.ErrorLogger.WithFields(fields).Errorf("Failed to send notification: %v", err)
		s.markFailed(ctx, n.ID)
		return outcomeFailed
	}

	sentAt := s.now()
	res := s.DB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND status = ?", n.ID, models.NotificationStatusPending).
		Updates(map[string]interface{}{
			"status":  models.NotificationStatusSent,
			"sent_at": sentAt,
		})
	if res.Error != nil {
		utils.ErrorLogger.Printf("Notification %d delivered, status not recorded: %v", n.ID, res.Error)
		return outcomeUnrecorded
	}
	if res.RowsAffected == 0 {
		utils.InfoLogger.Warnf("Notification %d delivered but no longer pending, status left untouched", n.ID)
		return outcomeUnrecorded
	}

	if s.Events != nil && n.RoomID != nil {
		s.Events.Publish(*n.RoomID, EventReminderSent, map[string]interface{}{
			"notification_id": n.ID,
			"user_id":         n.UserID,
			"type":            n.Type,
			"sent_at":         sentAt,
		})
	}
	return outcomeSent
}

func (s *Scheduler) dispatch(ctx context.Context, n dueNotification) (DeliveryResult, error) {
	rc := n.reminderContext()
	switch {
	case n.Type == models.NotificationTypeEmail && strings.TrimSpace(n.Email) != "":
		if s.Email == nil {
			return DeliveryResult{}, ErrMailDisabled
		}
		return s.Email.Send(ctx, n.Email, rc)
	case n.Type == models.NotificationTypeSMS && n.Phone != nil && strings.TrimSpace(*n.Phone) != "":
		if s.SMS == nil {
			return DeliveryResult{}, ErrNoContact
		}
		return s.SMS.Send(ctx, *n.Phone, FormatReminderSMS(rc, s.AppURL))
	default:
		return DeliveryResult{}, ErrNoContact
	}
}

func (s *Scheduler) markFailed(ctx context.Context, id uint) {
	if err := s.DB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND status = ?", id, models.NotificationStatusPending).
		Update("status", models.NotificationStatusFailed).Error; err != nil {
		utils.ErrorLogger.Printf("Error marking notification %d as failed: %v", id, err)
	}
}
