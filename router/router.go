package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/photobooth-app/controllers"
	"github.com/yeremiapane/photobooth-app/live"
	"github.com/yeremiapane/photobooth-app/middlewares"
	"github.com/yeremiapane/photobooth-app/services"
	"gorm.io/gorm"
)

type Dependencies struct {
	DB        *gorm.DB
	Scheduler *services.Scheduler
	Hub       *live.Hub
	// Mail dan SMS dipakai untuk pesan sambutan registrasi; nil berarti tidak dikirim.
	Mail        controllers.WelcomeSender
	SMS         controllers.WelcomeSender
	CORSOrigins []string
	// HSTS aktif bila aplikasi dilayani lewat HTTPS.
	HSTS bool
	// RateLimit adalah jumlah request per menit per IP untuk seluruh API. 0 mematikan limiter.
	RateLimit int
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders(deps.HSTS))
	r.Use(middlewares.CORSMiddlewares(deps.CORSOrigins))
	if deps.RateLimit > 0 {
		r.Use(middlewares.NewRateLimiter(deps.RateLimit, time.Minute).RateLimit())
	}

	userController := controllers.NewUserController(deps.DB, deps.Mail, deps.SMS)
	roomController := controllers.NewRoomController(deps.DB, deps.Scheduler, deps.Hub)
	photoController := controllers.NewPhotoController(deps.DB, deps.Hub)
	notificationController := controllers.NewNotificationController(deps.DB)
	liveController := controllers.NewLiveController(deps.Hub, deps.CORSOrigins)
	schedulerController := controllers.NewSchedulerController(deps.Scheduler)

	api := r.Group("/api")
	api.GET("/health", controllers.HealthCheck)

	// Auth
	auth := api.Group("/auth")
	{
		auth.POST("/register", middlewares.NewStrictRateLimiter(), userController.Register)
		auth.POST("/login", middlewares.NewStrictRateLimiter(), userController.Login)

		authed := auth.Group("", middlewares.AuthMiddleware())
		authed.POST("/logout", userController.Logout)
		authed.GET("/profile", userController.GetProfile)
		authed.PUT("/profile", userController.UpdateProfile)
		authed.GET("/stats", userController.GetStats)
	}

	// Websocket memakai token di query string
	api.GET("/rooms/:roomId/live",
		middlewares.WebSocketAuthMiddleware(),
		middlewares.RoomMemberRequired(deps.DB),
		liveController.RoomLive)

	protected := api.Group("", middlewares.AuthMiddleware())

	rooms := protected.Group("/rooms")
	{
		rooms.POST("", roomController.CreateRoom)
		rooms.POST("/join", roomController.JoinRoom)
		rooms.GET("", roomController.GetUserRooms)
		rooms.GET("/:roomId", middlewares.RoomMemberRequired(deps.DB), roomController.GetRoomDetails)
		rooms.GET("/:roomId/participants", middlewares.RoomMemberRequired(deps.DB), roomController.GetParticipants)
		rooms.DELETE("/:roomId/participants/:userId", middlewares.RoomOwnerRequired(deps.DB), roomController.RemoveParticipant)
		rooms.POST("/:roomId/regenerate-code", middlewares.RoomOwnerRequired(deps.DB), roomController.RegenerateCode)
		rooms.POST("/:roomId/leave", middlewares.RoomMemberRequired(deps.DB), roomController.LeaveRoom)
		rooms.POST("/:roomId/deactivate", middlewares.RoomOwnerRequired(deps.DB), roomController.DeactivateRoom)
		rooms.PUT("/:roomId/settings", middlewares.RoomOwnerRequired(deps.DB), roomController.UpdateSettings)
	}

	photos := protected.Group("/photos")
	{
		photos.POST("/room/:roomId", middlewares.RoomMemberRequired(deps.DB), photoController.UploadPhoto)
		photos.GET("/room/:roomId", middlewares.RoomMemberRequired(deps.DB), photoController.GetRoomPhotos)
		photos.GET("/library", photoController.GetLibrary)
		photos.POST("/:photoId/library", photoController.AddToLibrary)
		photos.DELETE("/:photoId/library", photoController.RemoveFromLibrary)
		photos.GET("/:photoId", photoController.GetPhotoDetails)
		photos.PUT("/:photoId/visibility", photoController.UpdateVisibility)
		photos.DELETE("/:photoId", photoController.DeletePhoto)
	}

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", notificationController.GetUserNotifications)
		notifications.GET("/stats", notificationController.GetNotificationStats)
		notifications.POST("/read-all", notificationController.MarkAllAsRead)
		notifications.POST("/:id/read", notificationController.MarkAsRead)
		notifications.DELETE("/:id", notificationController.DeleteNotification)
	}

	protected.GET("/scheduler/status", schedulerController.GetStatus)

	return r
}
