package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/photobooth-app/database"
	"github.com/yeremiapane/photobooth-app/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return testNow },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// clock bisa dimajukan dari test.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeEmailSender struct {
	mu     sync.Mutex
	sent   []string
	data   []ReminderContext
	failTo map[string]error
	panics bool
}

func (f *fakeEmailSender) Send(ctx context.Context, to string, data ReminderContext) (DeliveryResult, error) {
	if f.panics {
		panic("smtp exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failTo[to]; ok {
		return DeliveryResult{}, err
	}
	f.sent = append(f.sent, to)
	f.data = append(f.data, data)
	return DeliveryResult{Success: true}, nil
}

func (f *fakeEmailSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeSmsSender struct {
	mu       sync.Mutex
	texts    map[string][]string
	rejectTo map[string]bool
}

func (f *fakeSmsSender) Send(ctx context.Context, to, text string) (DeliveryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.texts == nil {
		f.texts = make(map[string][]string)
	}
	if f.rejectTo[to] {
		return DeliveryResult{Success: false}, nil
	}
	f.texts[to] = append(f.texts[to], text)
	return DeliveryResult{Success: true, ProviderID: "SM" + to}, nil
}

type publishedEvent struct {
	RoomID uint
	Event  string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakePublisher) Publish(roomID uint, event string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{RoomID: roomID, Event: event})
}

var errSMTPDown = errors.New("smtp: connection refused")

func newTestScheduler(t *testing.T, db *gorm.DB) (*Scheduler, *fakeEmailSender, *fakeSmsSender, *clock) {
	t.Helper()
	email := &fakeEmailSender{}
	sms := &fakeSmsSender{}
	clk := &clock{now: testNow}
	s := NewScheduler(db, email, sms)
	s.Clock = clk.Now
	s.AppURL = "https://photobooth.test"
	return s, email, sms, clk
}

func createUser(t *testing.T, db *gorm.DB, email, phone string) models.User {
	t.Helper()
	u := models.User{Email: email, Password: "hash", FullName: strings.Split(email, "@")[0]}
	if phone != "" {
		u.Phone = &phone
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createRoom(t *testing.T, db *gorm.DB, owner models.User, code string, settings string) models.Room {
	t.Helper()
	r := models.Room{RoomCode: code, RoomName: "Room " + code, CreatedBy: owner.ID, IsActive: true}
	if settings != "" {
		r.Settings = []byte(settings)
	}
	require.NoError(t, db.Create(&r).Error)
	return r
}

func joinRoom(t *testing.T, db *gorm.DB, room models.Room, user models.User, active bool) {
	t.Helper()
	p := models.RoomParticipant{RoomID: room.ID, UserID: user.ID, IsActive: active, JoinedAt: testNow}
	require.NoError(t, db.Create(&p).Error)
}

func createNotification(t *testing.T, db *gorm.DB, n models.Notification) models.Notification {
	t.Helper()
	if n.Type == "" {
		n.Type = models.NotificationTypeEmail
	}
	if n.Status == "" {
		n.Status = models.NotificationStatusPending
	}
	if n.Message == "" {
		n.Message = "reminder"
	}
	require.NoError(t, db.Omit("User", "Room").Create(&n).Error)
	return n
}

func reload(t *testing.T, db *gorm.DB, id uint) models.Notification {
	t.Helper()
	var n models.Notification
	require.NoError(t, db.First(&n, id).Error)
	return n
}
