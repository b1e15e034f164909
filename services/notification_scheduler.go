package services

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/photobooth-app/utils"
	"gorm.io/gorm"
)

const (
	defaultBatchSize     = 50
	defaultDrainInterval = time.Minute
	planningHorizon      = 24

	sentRetention   = 7 * 24 * time.Hour
	failedRetention = 3 * 24 * time.Hour
)

// SchedulerMetrics menyimpan metrik dari sweep yang sudah berjalan
type SchedulerMetrics struct {
	Running             bool       `json:"running"`
	DrainTicks          int64      `json:"drain_ticks"`
	Processed           int64      `json:"processed"`
	Sent                int64      `json:"sent"`
	Failed              int64      `json:"failed"`
	Unrecorded          int64      `json:"unrecorded"`
	Planned             int64      `json:"planned"`
	Cancelled           int64      `json:"cancelled"`
	NotificationsPurged int64      `json:"notifications_purged"`
	PhotosPurged        int64      `json:"photos_purged"`
	LastDrainAt         *time.Time `json:"last_drain_at,omitempty"`
	LastCleanupAt       *time.Time `json:"last_cleanup_at,omitempty"`
}

// Scheduler menjalankan drain notifikasi per menit dan sweep retensi harian.
// Semua sweep juga bisa dipanggil langsung (sinkron) tanpa Start.
type Scheduler struct {
	DB     *gorm.DB
	Email  EmailSender
	SMS    SmsSender
	Events EventPublisher

	// Clock mengembalikan waktu sekarang; dinormalisasi ke UTC.
	Clock         func() time.Time
	AppURL        string
	BatchSize     int
	DrainInterval time.Duration
	// Jam (UTC) untuk cleanup notifikasi dan foto.
	NotificationCleanupHour int
	PhotoCleanupHour        int

	metrics SchedulerMetrics
	mutex   sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewScheduler(db *gorm.DB, email EmailSender, sms SmsSender) *Scheduler {
	return &Scheduler{
		DB:                      db,
		Email:                   email,
		SMS:                     sms,
		Clock:                   time.Now,
		BatchSize:               defaultBatchSize,
		DrainInterval:           defaultDrainInterval,
		NotificationCleanupHour: 3,
		PhotoCleanupHour:        4,
	}
}

func (s *Scheduler) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock().UTC()
}

func (s *Scheduler) batchSize() int {
	if s.BatchSize <= 0 {
		return defaultBatchSize
	}
	return s.BatchSize
}

// Start memulai loop drain dan dua sweep harian. Memanggil Start dua kali tidak berefek.
func (s *Scheduler) Start() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.metrics.Running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.metrics.Running = true

	interval := s.DrainInterval
	if interval <= 0 {
		interval = defaultDrainInterval
	}

	s.wg.Add(3)
	go s.drainLoop(ctx, interval)
	go s.runDaily(ctx, s.NotificationCleanupHour, "notification cleanup", func(ctx context.Context) {
		if _, err := s.CleanupOldNotifications(ctx); err != nil {
			utils.ErrorLogger.Printf("Notification cleanup failed: %v", err)
		}
	})
	go s.runDaily(ctx, s.PhotoCleanupHour, "photo cleanup", func(ctx context.Context) {
		if _, err := s.CleanupOldPhotos(ctx); err != nil {
			utils.ErrorLogger.Printf("Photo cleanup finished with errors: %v", err)
		}
	})

	utils.InfoLogger.Printf("Notification scheduler started (drain every %s, batch %d)", interval, s.batchSize())
}

// Stop menghentikan semua loop dan menunggu tick yang sedang berjalan selesai.
func (s *Scheduler) Stop() {
	s.mutex.Lock()
	if !s.metrics.Running {
		s.mutex.Unlock()
		return
	}
	s.metrics.Running = false
	cancel := s.cancel
	s.cancel = nil
	s.mutex.Unlock()

	cancel()
	s.wg.Wait()
	utils.InfoLogger.Println("Notification scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.metrics.Running
}

// GetMetrics mengembalikan salinan metrik saat ini
func (s *Scheduler) GetMetrics() SchedulerMetrics {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.metrics
}

func (s *Scheduler) updateMetrics(fn func(m *SchedulerMetrics)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	fn(&s.metrics)
}

func (s *Scheduler) drainLoop(ctx context.Context, interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.ProcessPendingNotifications(ctx); err != nil {
				utils.ErrorLogger.Printf("Drain tick failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// runDaily menjalankan fn setiap hari pada jam hour:00 UTC.
func (s *Scheduler) runDaily(ctx context.Context, hour int, name string, fn func(ctx context.Context)) {
	defer s.wg.Done()

	for {
		wait := untilNextHour(s.now(), hour)
		utils.InfoLogger.Debugf("Next %s in %s", name, wait)

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			utils.InfoLogger.Printf("Running daily %s", name)
			fn(ctx)
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// untilNextHour menghitung durasi sampai hour:00 berikutnya (selalu di masa depan).
func untilNextHour(now time.Time, hour int) time.Duration {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
