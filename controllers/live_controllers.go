package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/photobooth-app/live"
	"github.com/yeremiapane/photobooth-app/middlewares"
	"github.com/yeremiapane/photobooth-app/utils"
)

type LiveController struct {
	Hub      *live.Hub
	upgrader websocket.Upgrader
}

// NewLiveController membatasi origin websocket ke daftar yang sama dengan CORS.
func NewLiveController(hub *live.Hub, allowedOrigins []string) *LiveController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &LiveController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// RoomLive -> endpoint WebSocket untuk event room
func (lc *LiveController) RoomLive(c *gin.Context) {
	room, ok := middlewares.CurrentRoom(c)
	if !ok {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	if !room.IsActive {
		c.AbortWithStatus(http.StatusGone)
		return
	}
	userID := middlewares.CurrentUserID(c)

	ws, err := lc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("Websocket upgrade failed for room %d: %v", room.ID, err)
		return
	}

	lc.Hub.Register(room.ID, ws, userID)

	// Client tidak mengirim apa-apa; loop ini hanya mendeteksi disconnect
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	lc.Hub.Unregister(room.ID, ws)
}
