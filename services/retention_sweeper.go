package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yeremiapane/photobooth-app/models"
	"github.com/yeremiapane/photobooth-app/utils"
	"gorm.io/gorm"
)

// CleanupOldNotifications menghapus notifikasi sent > 7 hari, failed > 3 hari, dan semua yang cancelled.
func (s *Scheduler) CleanupOldNotifications(ctx context.Context) (int64, error) {
	now := s.now()
	res := s.DB.WithContext(ctx).
		Where("(status = ? AND sent_at < ?) OR (status = ? AND scheduled_for < ?) OR status = ?",
			models.NotificationStatusSent, now.Add(-sentRetention),
			models.NotificationStatusFailed, now.Add(-failedRetention),
			models.NotificationStatusCancelled).
		Delete(&models.Notification{})
	if res.Error != nil {
		return 0, fmt.Errorf("cleanup notifications: %w", res.Error)
	}

	s.updateMetrics(func(m *SchedulerMetrics) {
		m.NotificationsPurged += res.RowsAffected
		m.LastCleanupAt = &now
	})
	utils.InfoLogger.Printf("Cleaned up %d old notifications", res.RowsAffected)
	return res.RowsAffected, nil
}

// CleanupOldPhotos menghapus foto yang lebih tua dari photo_retention_days milik tiap room aktif.
// Kegagalan satu room tidak menghentikan room lain; semua error dikembalikan bersama.
func (s *Scheduler) CleanupOldPhotos(ctx context.Context) (int64, error) {
	var rooms []models.Room
	if err := s.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&rooms).Error; err != nil {
		return 0, fmt.Errorf("load active rooms: %w", err)
	}

	now := s.now()
	var total int64
	var errs []error
	for _, room := range rooms {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		cutoff := now.Add(-time.Duration(room.ParsedSettings().PhotoRetentionDays) * 24 * time.Hour)
		deleted, err := s.purgeRoomPhotos(ctx, room.ID, cutoff)
		if err != nil {
			utils.ErrorLogger.WithField("room_id", room.ID).Errorf("Error cleaning photos for room %s: %v", room.RoomCode, err)
			errs = append(errs, fmt.Errorf("room %d: %w", room.ID, err))
			continue
		}
		if deleted > 0 {
			utils.InfoLogger.Printf("Deleted %d old photos from room %s", deleted, room.RoomCode)
		}
		total += deleted
	}

	s.updateMetrics(func(m *SchedulerMetrics) { m.PhotosPurged += total })
	return total, errors.Join(errs...)
}

func (s *Scheduler) purgeRoomPhotos(ctx context.Context, roomID uint, cutoff time.Time) (int64, error) {
	var deleted int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		old := tx.Model(&models.Photo{}).
			Select("id").
			Where("room_id = ? AND taken_at < ?", roomID, cutoff)

		if err := tx.Where("photo_id IN (?)", old).
			Delete(&models.PhotoLibraryEntry{}).Error; err != nil {
			return err
		}

		res := tx.Where("room_id = ? AND taken_at < ?", roomID, cutoff).
			Delete(&models.Photo{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}
