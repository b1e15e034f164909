package middlewares

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/photobooth-app/models"
	"github.com/yeremiapane/photobooth-app/utils"
	"gorm.io/gorm"
)

// RoomMemberRequired hanya meloloskan pemilik room atau peserta aktif.
// Room yang ditemukan disimpan di context dengan key ContextRoom.
func RoomMemberRequired(db *gorm.DB) gin.HandlerFunc {
	return roomAccess(db, false)
}

// RoomOwnerRequired hanya meloloskan pembuat room.
func RoomOwnerRequired(db *gorm.DB) gin.HandlerFunc {
	return roomAccess(db, true)
}

func roomAccess(db *gorm.DB, ownerOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := CurrentUserID(c)
		if userID == 0 {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		roomID, ok := utils.ParseID(c, "roomId")
		if !ok {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid room id"))
			c.Abort()
			return
		}

		var room models.Room
		if err := db.WithContext(c.Request.Context()).First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondError(c, http.StatusNotFound, fmt.Errorf("room not found"))
			} else {
				utils.ErrorLogger.Printf("Error loading room %d: %v", roomID, err)
				utils.RespondError(c, http.StatusInternalServerError, fmt.Errorf("failed to load room"))
			}
			c.Abort()
			return
		}

		isOwner := room.CreatedBy == userID
		if ownerOnly && !isOwner {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("only the room owner can do this"))
			c.Abort()
			return
		}

		if !isOwner {
			var count int64
			if err := db.WithContext(c.Request.Context()).
				Model(&models.RoomParticipant{}).
				Where("room_id = ? AND user_id = ? AND is_active = ?", room.ID, userID, true).
				Count(&count).Error; err != nil || count == 0 {
				utils.RespondError(c, http.StatusForbidden, fmt.Errorf("you are not a member of this room"))
				c.Abort()
				return
			}
		}

		c.Set(ContextRoom, room)
		c.Next()
	}
}

// CurrentRoom membaca room yang sudah divalidasi oleh middleware akses room.
func CurrentRoom(c *gin.Context) (models.Room, bool) {
	v, ok := c.Get(ContextRoom)
	if !ok {
		return models.Room{}, false
	}
	room, ok := v.(models.Room)
	return room, ok
}
