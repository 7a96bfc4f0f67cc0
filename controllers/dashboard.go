// controllers/dashboard.go
package controllers

import (
	"net/http"
	"time"

	"telecare-backend/config"
	"telecare-backend/models"
	"telecare-backend/utils"

	"github.com/gin-gonic/gin"
)

// GetDashboardOverview summarizes scheduler and delivery state
func GetDashboardOverview(c *gin.Context) {
	now := time.Now()

	var pendingJobs int64
	if err := config.DB.Model(&models.ScheduledJob{}).
		Where("status = ?", models.JobStatusPending).
		Count(&pendingJobs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count pending jobs")
		return
	}

	var upcomingConsultations int64
	if err := config.DB.Model(&models.Consultation{}).
		Where("scheduled_at BETWEEN ? AND ?", now, now.Add(48*time.Hour)).
		Count(&upcomingConsultations).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count consultations")
		return
	}

	var failedToday int64
	if err := config.DB.Model(&models.ReminderLog{}).
		Where("status = ? AND sent_at >= ?", models.DeliveryStatusFailed, utils.BeginningOfDay(now)).
		Count(&failedToday).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count failed deliveries")
		return
	}

	var recentLogs []models.ReminderLog
	if err := config.DB.Order("sent_at desc").Limit(10).Find(&recentLogs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve delivery logs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pendingJobs":           pendingJobs,
		"consultationsNext48h":  upcomingConsultations,
		"failedDeliveriesToday": failedToday,
		"recentDeliveries":      recentLogs,
	})
}
