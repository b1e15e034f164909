package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/photobooth-app/models"
)

func TestUploadAndBrowsePhotos(t *testing.T) {
	app := setupRouterForTest(t)
	owner, ownerToken := app.createUser(t, "owner@example.com", "")
	_, guestToken := app.createUser(t, "guest@example.com", "")
	_, strangerToken := app.createUser(t, "stranger@example.com", "")

	roomID := app.createRoom(t, ownerToken, "Gallery", nil)
	w := app.do(t, http.MethodPost, "/api/rooms/join", guestToken, map[string]string{"room_code": app.roomCode(t, roomID)})
	require.Equal(t, http.StatusOK, w.Code)

	path := "/api/photos/room/" + itoa(roomID)

	w = app.do(t, http.MethodPost, path, strangerToken, map[string]string{"photo_url": "https://cdn.example.com/x.jpg"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodPost, path, ownerToken, map[string]string{"photo_url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPost, path, ownerToken, map[string]interface{}{
		"photo_url": "https://cdn.example.com/public.jpg",
		"caption":   "<i>Cheese</i>",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var public models.Photo
	decode(t, w, &public)
	assert.NotEmpty(t, public.PublicID)
	assert.Equal(t, "Cheese", public.Caption)
	assert.True(t, public.IsPublic)
	assert.Equal(t, owner.ID, public.UserID)

	w = app.do(t, http.MethodPost, path, ownerToken, map[string]interface{}{
		"photo_url": "https://cdn.example.com/private.jpg",
		"is_public": false,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var private models.Photo
	decode(t, w, &private)
	assert.False(t, private.IsPublic)

	// Room hanya menampilkan foto publik
	w = app.do(t, http.MethodGet, path, guestToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var roomPhotos struct {
		Photos []models.Photo `json:"photos"`
		Count  int            `json:"count"`
	}
	decode(t, w, &roomPhotos)
	require.Equal(t, 1, roomPhotos.Count)
	assert.Equal(t, public.ID, roomPhotos.Photos[0].ID)

	// Pengunggah otomatis punya kedua foto di library
	w = app.do(t, http.MethodGet, "/api/photos/library", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var library struct {
		Count int `json:"count"`
	}
	decode(t, w, &library)
	assert.Equal(t, 2, library.Count)

	// Guest menyimpan foto publik, tidak boleh menyimpan foto privat
	w = app.do(t, http.MethodPost, "/api/photos/"+itoa(public.ID)+"/library", guestToken, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	w = app.do(t, http.MethodPost, "/api/photos/"+itoa(public.ID)+"/library", guestToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = app.do(t, http.MethodPost, "/api/photos/"+itoa(private.ID)+"/library", guestToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = app.do(t, http.MethodPost, "/api/photos/"+itoa(public.ID)+"/library", strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodDelete, "/api/photos/"+itoa(public.ID)+"/library", guestToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = app.do(t, http.MethodDelete, "/api/photos/"+itoa(public.ID)+"/library", guestToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadToInactiveRoomIsRejected(t *testing.T) {
	app := setupRouterForTest(t)
	_, ownerToken := app.createUser(t, "owner@example.com", "")

	roomID := app.createRoom(t, ownerToken, "Closed", nil)
	w := app.do(t, http.MethodPost, "/api/rooms/"+itoa(roomID)+"/deactivate", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPost, "/api/photos/room/"+itoa(roomID), ownerToken, map[string]string{
		"photo_url": "https://cdn.example.com/late.jpg",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPhotoDetailsVisibilityAndDelete(t *testing.T) {
	app := setupRouterForTest(t)
	_, ownerToken := app.createUser(t, "owner@example.com", "")
	_, guestToken := app.createUser(t, "guest@example.com", "")
	_, strangerToken := app.createUser(t, "stranger@example.com", "")

	roomID := app.createRoom(t, ownerToken, "Details", nil)
	w := app.do(t, http.MethodPost, "/api/rooms/join", guestToken, map[string]string{"room_code": app.roomCode(t, roomID)})
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPost, "/api/photos/room/"+itoa(roomID), ownerToken, map[string]string{
		"photo_url": "https://cdn.example.com/d.jpg",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var photo models.Photo
	decode(t, w, &photo)
	photoPath := "/api/photos/" + itoa(photo.ID)

	// Detail: pemilik melihat in_library=true, guest melihat false
	var detail struct {
		Photo     models.Photo `json:"photo"`
		InLibrary bool         `json:"in_library"`
	}
	w = app.do(t, http.MethodGet, photoPath, ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &detail)
	assert.Equal(t, photo.ID, detail.Photo.ID)
	assert.True(t, detail.InLibrary)

	w = app.do(t, http.MethodGet, photoPath, guestToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail.InLibrary = true
	decode(t, w, &detail)
	assert.False(t, detail.InLibrary)

	w = app.do(t, http.MethodGet, photoPath, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Visibility hanya oleh pengunggah
	w = app.do(t, http.MethodPut, photoPath+"/visibility", guestToken, map[string]bool{"is_public": false})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = app.do(t, http.MethodPut, photoPath+"/visibility", ownerToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = app.do(t, http.MethodPut, photoPath+"/visibility", ownerToken, map[string]bool{"is_public": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored models.Photo
	require.NoError(t, app.DB.First(&stored, photo.ID).Error)
	assert.False(t, stored.IsPublic)

	w = app.do(t, http.MethodGet, photoPath, guestToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Delete hanya oleh pengunggah, entri library ikut terhapus
	w = app.do(t, http.MethodDelete, photoPath, guestToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = app.do(t, http.MethodDelete, photoPath, ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var remaining int64
	app.DB.Model(&models.Photo{}).Where("id = ?", photo.ID).Count(&remaining)
	assert.Zero(t, remaining)
	app.DB.Model(&models.PhotoLibraryEntry{}).Where("photo_id = ?", photo.ID).Count(&remaining)
	assert.Zero(t, remaining)

	w = app.do(t, http.MethodGet, photoPath, ownerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
