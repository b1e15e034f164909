package Controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/photobooth-app/models"
)

func seedInbox(t *testing.T, app *testApp, user models.User, roomID *uint) map[models.NotificationStatus]models.Notification {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	out := make(map[models.NotificationStatus]models.Notification)
	statuses := []models.NotificationStatus{
		models.NotificationStatusPending,
		models.NotificationStatusSent,
		models.NotificationStatusFailed,
		models.NotificationStatusRead,
	}
	for i, status := range statuses {
		n := models.Notification{
			UserID:       user.ID,
			RoomID:       roomID,
			Type:         models.NotificationTypeEmail,
			Message:      "reminder",
			ScheduledFor: now.Add(-time.Duration(i) * time.Hour),
			Status:       status,
		}
		if status == models.NotificationStatusSent || status == models.NotificationStatusRead {
			sentAt := n.ScheduledFor
			n.SentAt = &sentAt
		}
		require.NoError(t, app.DB.Omit("User", "Room").Create(&n).Error)
		out[status] = n
	}
	return out
}

func TestNotificationInbox(t *testing.T) {
	app := setupRouterForTest(t)
	user, token := app.createUser(t, "user@example.com", "")
	other, otherToken := app.createUser(t, "other@example.com", "")
	seeded := seedInbox(t, app, user, nil)
	seedInbox(t, app, other, nil)

	w := app.do(t, http.MethodGet, "/api/notifications?limit=2&offset=0", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page struct {
		Notifications []struct {
			ID       uint    `json:"id"`
			Status   string  `json:"status"`
			RoomName *string `json:"room_name"`
		} `json:"notifications"`
		Pagination struct {
			Total  int64 `json:"total"`
			Limit  int   `json:"limit"`
			Offset int   `json:"offset"`
		} `json:"pagination"`
	}
	decode(t, w, &page)
	require.Len(t, page.Notifications, 2)
	assert.Equal(t, seeded[models.NotificationStatusPending].ID, page.Notifications[0].ID)
	assert.Nil(t, page.Notifications[0].RoomName)
	assert.Equal(t, int64(2), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.Limit)

	// Hanya notifikasi terkirim yang bisa ditandai dibaca
	w = app.do(t, http.MethodPost, "/api/notifications/"+itoa(seeded[models.NotificationStatusPending].ID)+"/read", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	sent := seeded[models.NotificationStatusSent]
	w = app.do(t, http.MethodPost, "/api/notifications/"+itoa(sent.ID)+"/read", otherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(t, http.MethodPost, "/api/notifications/"+itoa(sent.ID)+"/read", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Notification
	require.NoError(t, app.DB.First(&reloaded, sent.ID).Error)
	assert.Equal(t, models.NotificationStatusRead, reloaded.Status)
	assert.NotNil(t, reloaded.SentAt)

	w = app.do(t, http.MethodDelete, "/api/notifications/"+itoa(seeded[models.NotificationStatusFailed].ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = app.do(t, http.MethodDelete, "/api/notifications/"+itoa(seeded[models.NotificationStatusFailed].ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(t, http.MethodGet, "/api/notifications/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		Pending int64 `json:"pending"`
		Sent    int64 `json:"sent"`
		Read    int64 `json:"read"`
		Failed  int64 `json:"failed"`
		Total   int64 `json:"total"`
		Unread  int64 `json:"unread"`
	}
	decode(t, w, &stats)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(0), stats.Sent)
	assert.Equal(t, int64(2), stats.Read)
	assert.Equal(t, int64(0), stats.Failed)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.Unread)
}

func TestMarkAllAsReadOnlyTouchesSent(t *testing.T) {
	app := setupRouterForTest(t)
	user, token := app.createUser(t, "user@example.com", "")
	other, _ := app.createUser(t, "other@example.com", "")
	seeded := seedInbox(t, app, user, nil)
	otherSeeded := seedInbox(t, app, other, nil)

	w := app.do(t, http.MethodPost, "/api/notifications/read-all", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Updated int64 `json:"updated_count"`
	}
	decode(t, w, &result)
	assert.Equal(t, int64(1), result.Updated)

	var pending models.Notification
	require.NoError(t, app.DB.First(&pending, seeded[models.NotificationStatusPending].ID).Error)
	assert.Equal(t, models.NotificationStatusPending, pending.Status)

	var othersSent models.Notification
	require.NoError(t, app.DB.First(&othersSent, otherSeeded[models.NotificationStatusSent].ID).Error)
	assert.Equal(t, models.NotificationStatusSent, othersSent.Status)
}

func TestNotificationListIncludesRoom(t *testing.T) {
	app := setupRouterForTest(t)
	_, token := app.createUser(t, "owner@example.com", "")
	roomID := app.createRoom(t, token, "Rooftop", nil)

	w := app.do(t, http.MethodGet, "/api/notifications?limit=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Notifications []struct {
			RoomID   *uint   `json:"room_id"`
			RoomName *string `json:"room_name"`
			RoomCode *string `json:"room_code"`
		} `json:"notifications"`
	}
	decode(t, w, &page)
	require.Len(t, page.Notifications, 1)
	require.NotNil(t, page.Notifications[0].RoomName)
	assert.Equal(t, "Rooftop", *page.Notifications[0].RoomName)
	assert.Equal(t, app.roomCode(t, roomID), *page.Notifications[0].RoomCode)
}
