package Controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/photobooth-app/config"
	"github.com/yeremiapane/photobooth-app/database"
	"github.com/yeremiapane/photobooth-app/live"
	"github.com/yeremiapane/photobooth-app/models"
	"github.com/yeremiapane/photobooth-app/router"
	"github.com/yeremiapane/photobooth-app/services"
	"github.com/yeremiapane/photobooth-app/utils"
)

// setupTestDB menggunakan SQLite in-memory terpisah per test
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

type recordingEmail struct {
	mu      sync.Mutex
	sent    []string
	welcome []string
}

func (r *recordingEmail) SendWelcome(ctx context.Context, to, userName string) (services.DeliveryResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.welcome = append(r.welcome, to)
	return services.DeliveryResult{Success: true}, nil
}

func (r *recordingEmail) welcomed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.welcome...)
}

type recordingSMS struct {
	mu      sync.Mutex
	welcome []string
}

func (r *recordingSMS) SendWelcome(ctx context.Context, to, userName string) (services.DeliveryResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.welcome = append(r.welcome, to)
	return services.DeliveryResult{Success: true, Simulated: true}, nil
}

func (r *recordingSMS) welcomed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.welcome...)
}

func (r *recordingEmail) Send(ctx context.Context, to string, data services.ReminderContext) (services.DeliveryResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, to)
	return services.DeliveryResult{Success: true}, nil
}

type testApp struct {
	DB        *gorm.DB
	Router    *gin.Engine
	Scheduler *services.Scheduler
	Email     *recordingEmail
	SMS       *recordingSMS
	Hub       *live.Hub
}

// setupRouterForTest memakai router asli dengan scheduler yang memakai sender palsu
func setupRouterForTest(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitLogger()

	db := setupTestDB(t)
	email := &recordingEmail{}
	sms := &recordingSMS{}
	scheduler := services.NewScheduler(db, email, services.NewSMSService(config.TwilioConfig{}))
	hub := live.NewHub()
	scheduler.Events = hub

	r := router.SetupRouter(router.Dependencies{
		DB:          db,
		Scheduler:   scheduler,
		Hub:         hub,
		Mail:        email,
		SMS:         sms,
		CORSOrigins: []string{"http://localhost:3000"},
	})
	return &testApp{DB: db, Router: r, Scheduler: scheduler, Email: email, SMS: sms, Hub: hub}
}

func (a *testApp) createUser(t *testing.T, email, phone string) (models.User, string) {
	t.Helper()
	user := models.User{Email: email, Password: "x", FullName: strings.Split(email, "@")[0]}
	if phone != "" {
		user.Phone = &phone
	}
	require.NoError(t, a.DB.Create(&user).Error)
	token, err := utils.GenerateToken(user.ID, user.Email)
	require.NoError(t, err)
	return user, token
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

func (a *testApp) createRoom(t *testing.T, token, name string, settings map[string]int) uint {
	t.Helper()
	body := map[string]interface{}{"room_name": name}
	if settings != nil {
		body["settings"] = settings
	}
	w := a.do(t, http.MethodPost, "/api/rooms", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Room models.Room `json:"room"`
	}
	decode(t, w, &data)
	return data.Room.ID
}

func (a *testApp) roomCode(t *testing.T, roomID uint) string {
	t.Helper()
	var room models.Room
	require.NoError(t, a.DB.First(&room, roomID).Error)
	return room.RoomCode
}
