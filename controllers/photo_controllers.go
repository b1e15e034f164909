package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yeremiapane/photobooth-app/live"
	"github.com/yeremiapane/photobooth-app/middlewares"
	"github.com/yeremiapane/photobooth-app/models"
	"github.com/yeremiapane/photobooth-app/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const roomPhotoLimit = 50

type PhotoController struct {
	DB     *gorm.DB
	Events RoomBroadcaster
}

func NewPhotoController(db *gorm.DB, events RoomBroadcaster) *PhotoController {
	return &PhotoController{DB: db, Events: events}
}

// UploadPhoto menyimpan metadata foto yang sudah diunggah ke storage eksternal,
// lalu memasukkannya ke library milik pengunggah.
func (pc *PhotoController) UploadPhoto(c *gin.Context) {
	room, ok := middlewares.CurrentRoom(c)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, errors.New("room not found"))
		return
	}
	if !room.IsActive {
		utils.RespondError(c, http.StatusBadRequest, errors.New("room is no longer active"))
		return
	}

	var req struct {
		PhotoURL     string `json:"photo_url" binding:"required,url"`
		ThumbnailURL string `json:"thumbnail_url"`
		Caption      string `json:"caption" binding:"max=280"`
		IsPublic     *bool  `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID := middlewares.CurrentUserID(c)
	roomID := room.ID
	now := time.Now().UTC()

	photo := models.Photo{
		PublicID:     uuid.NewString(),
		UserID:       userID,
		RoomID:       &roomID,
		PhotoURL:     strings.TrimSpace(req.PhotoURL),
		ThumbnailURL: strings.TrimSpace(req.ThumbnailURL),
		Caption:      utils.SanitizeText(req.Caption),
		IsPublic:     req.IsPublic == nil || *req.IsPublic,
		TakenAt:      now,
	}

	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&photo).Error; err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&models.PhotoLibraryEntry{
			PhotoID: photo.ID,
			UserID:  userID,
			AddedAt: now,
		}).Error
	})
	if err != nil {
		utils.ErrorLogger.Printf("Error saving photo for room %d: %v", room.ID, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to save photo"))
		return
	}

	if pc.Events != nil {
		pc.Events.Publish(room.ID, live.EventPhotoUploaded, photo)
	}

	utils.InfoLogger.Printf("Photo %s uploaded to room %s by user %d", photo.PublicID, room.RoomCode, userID)
	utils.RespondJSON(c, http.StatusCreated, "Photo uploaded", photo)
}

// GetRoomPhotos -> foto publik di room, terbaru dulu
func (pc *PhotoController) GetRoomPhotos(c *gin.Context) {
	room, ok := middlewares.CurrentRoom(c)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, errors.New("room not found"))
		return
	}

	var photos []models.Photo
	if err := pc.DB.
		Where("room_id = ? AND is_public = ?", room.ID, true).
		Order("taken_at DESC").
		Limit(roomPhotoLimit).
		Find(&photos).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Room photos", gin.H{
		"photos": photos,
		"count":  len(photos),
	})
}

func (pc *PhotoController) GetLibrary(c *gin.Context) {
	userID := middlewares.CurrentUserID(c)
	limit, offset := utils.Pagination(c, 50, 200)

	var entries []models.PhotoLibraryEntry
	if err := pc.DB.Preload("Photo").
		Where("user_id = ?", userID).
		Order("added_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Photo library", gin.H{
		"photos": entries,
		"count":  len(entries),
	})
}

// AddToLibrary menyimpan foto orang lain ke library user. Foto harus publik di room yang diikuti.
func (pc *PhotoController) AddToLibrary(c *gin.Context) {
	photoID, ok := utils.ParseID(c, "photoId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid photo id"))
		return
	}
	userID := middlewares.CurrentUserID(c)

	var photo models.Photo
	if err := pc.DB.First(&photo, photoID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("photo not found"))
		return
	}

	if !pc.canView(photo, userID) {
		utils.RespondError(c, http.StatusForbidden, errors.New("you cannot access this photo"))
		return
	}

	entry := models.PhotoLibraryEntry{PhotoID: photo.ID, UserID: userID, AddedAt: time.Now().UTC()}
	res := pc.DB.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entry)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondJSON(c, http.StatusOK, "Photo already in library", nil)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Photo added to library", entry)
}

func (pc *PhotoController) RemoveFromLibrary(c *gin.Context) {
	photoID, ok := utils.ParseID(c, "photoId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid photo id"))
		return
	}
	userID := middlewares.CurrentUserID(c)

	res := pc.DB.Where("photo_id = ? AND user_id = ?", photoID, userID).Delete(&models.PhotoLibraryEntry{})
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("photo not in library"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Photo removed from library", nil)
}

// canView: pemilik selalu boleh; orang lain hanya untuk foto publik di room yang mereka ikuti.
func (pc *PhotoController) canView(photo models.Photo, userID uint) bool {
	if photo.UserID == userID {
		return true
	}
	return photo.IsPublic && pc.isRoomMember(photo.RoomID, userID)
}

func (pc *PhotoController) GetPhotoDetails(c *gin.Context) {
	photoID, ok := utils.ParseID(c, "photoId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid photo id"))
		return
	}
	userID := middlewares.CurrentUserID(c)

	var photo models.Photo
	if err := pc.DB.First(&photo, photoID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("photo not found"))
		return
	}
	if !pc.canView(photo, userID) {
		utils.RespondError(c, http.StatusForbidden, errors.New("you cannot access this photo"))
		return
	}

	var inLibrary int64
	if err := pc.DB.Model(&models.PhotoLibraryEntry{}).
		Where("photo_id = ? AND user_id = ?", photo.ID, userID).
		Count(&inLibrary).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Photo detail", gin.H{
		"photo":      photo,
		"in_library": inLibrary > 0,
	})
}

// UpdateVisibility -> hanya pengunggah yang boleh mengubah is_public
func (pc *PhotoController) UpdateVisibility(c *gin.Context) {
	photoID, ok := utils.ParseID(c, "photoId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid photo id"))
		return
	}

	var req struct {
		IsPublic *bool `json:"is_public" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	photo, ok := pc.ownPhoto(c, photoID)
	if !ok {
		return
	}

	if err := pc.DB.Model(&models.Photo{}).
		Where("id = ?", photo.ID).
		Update("is_public", *req.IsPublic).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	photo.IsPublic = *req.IsPublic

	utils.RespondJSON(c, http.StatusOK, "Photo visibility updated", photo)
}

// DeletePhoto menghapus foto milik sendiri beserta semua entri library yang menunjuk ke foto itu.
func (pc *PhotoController) DeletePhoto(c *gin.Context) {
	photoID, ok := utils.ParseID(c, "photoId")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid photo id"))
		return
	}

	photo, ok := pc.ownPhoto(c, photoID)
	if !ok {
		return
	}

	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("photo_id = ?", photo.ID).Delete(&models.PhotoLibraryEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Photo{}, photo.ID).Error
	})
	if err != nil {
		utils.ErrorLogger.Printf("Error deleting photo %d: %v", photo.ID, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to delete photo"))
		return
	}

	if pc.Events != nil && photo.RoomID != nil {
		pc.Events.Publish(*photo.RoomID, live.EventPhotoDeleted, gin.H{"photo_id": photo.ID})
	}

	utils.InfoLogger.Printf("Photo %s deleted by user %d", photo.PublicID, photo.UserID)
	utils.RespondJSON(c, http.StatusOK, "Photo deleted", nil)
}

// ownPhoto memuat foto dan memastikan pemanggil adalah pengunggahnya. Response error sudah ditulis bila false.
func (pc *PhotoController) ownPhoto(c *gin.Context, photoID uint) (models.Photo, bool) {
	var photo models.Photo
	if err := pc.DB.First(&photo, photoID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("photo not found"))
		return photo, false
	}
	if photo.UserID != middlewares.CurrentUserID(c) {
		utils.RespondError(c, http.StatusForbidden, errors.New("you can only change your own photos"))
		return photo, false
	}
	return photo, true
}

func (pc *PhotoController) isRoomMember(roomID *uint, userID uint) bool {
	if roomID == nil {
		return false
	}
	var count int64
	pc.DB.Model(&models.RoomParticipant{}).
		Where("room_id = ? AND user_id = ? AND is_active = ?", *roomID, userID, true).
		Count(&count)
	return count > 0
}
