package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/photobooth-app/services"
	"github.com/yeremiapane/photobooth-app/utils"
)

type SchedulerStatusProvider interface {
	GetMetrics() services.SchedulerMetrics
}

type SchedulerController struct {
	Scheduler SchedulerStatusProvider
}

func NewSchedulerController(scheduler SchedulerStatusProvider) *SchedulerController {
	return &SchedulerController{Scheduler: scheduler}
}

func (sc *SchedulerController) GetStatus(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Scheduler status", sc.Scheduler.GetMetrics())
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"service":   "photobooth-backend",
		"timestamp": time.Now().UTC(),
	})
}
