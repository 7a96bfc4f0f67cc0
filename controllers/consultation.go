// controllers/consultation.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"telecare-backend/config"
	"telecare-backend/models"
	"telecare-backend/services"
	"telecare-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reminders is wired from main with the running reminder service.
var Reminders *services.ReminderService

// CreateConsultationInput defines the expected JSON structure
type CreateConsultationInput struct {
	PatientID string `json:"patientId" binding:"required"`
	Date      string `json:"date" binding:"required"` // "2006-01-02", clinic timezone
	Time      string `json:"time" binding:"required"` // "15:04"
	Link      string `json:"link"`
}

// RescheduleConsultationInput defines the expected JSON structure
type RescheduleConsultationInput struct {
	Date string  `json:"date" binding:"required"`
	Time string  `json:"time" binding:"required"`
	Link *string `json:"link"`
}

func parseConsultationTime(date, clock string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", date+" "+clock, config.Location())
}

// CreateConsultation registers a consultation and schedules its reminders
func CreateConsultation(c *gin.Context) {
	var input CreateConsultationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	patientUUID, err := uuid.Parse(input.PatientID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid patient ID format")
		return
	}

	var patient models.Patient
	if err := config.DB.Where("id = ?", patientUUID).First(&patient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Patient not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	scheduledAt, err := parseConsultationTime(input.Date, input.Time)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid date/time, expected YYYY-MM-DD and HH:MM")
		return
	}

	consultation := models.Consultation{
		ID:              uuid.New(),
		PatientID:       patient.ID,
		PatientPhone:    patient.Phone,
		GuardianPhone:   patient.GuardianPhone,
		ScheduledAt:     scheduledAt,
		TeleconsultLink: input.Link,
	}

	if err := config.DB.Create(&consultation).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create consultation")
		return
	}

	scheduled, err := Reminders.ScheduleConsultation(consultation, patient.Name)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Consultation created but scheduling reminders failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"consultation":       consultation,
		"remindersScheduled": scheduled,
	})
}

// GetConsultations lists consultations, upcoming first
func GetConsultations(c *gin.Context) {
	var consultations []models.Consultation
	query := config.DB.Preload("Patient").Order("scheduled_at asc")

	if c.Query("upcoming") == "true" {
		query = query.Where("scheduled_at > ?", time.Now())
	}

	if err := query.Find(&consultations).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve consultations")
		return
	}

	c.JSON(http.StatusOK, consultations)
}

// GetConsultation retrieves one consultation with its scheduled jobs
func GetConsultation(c *gin.Context) {
	consultationUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid consultation ID format")
		return
	}

	var consultation models.Consultation
	if err := config.DB.Preload("Patient").Where("id = ?", consultationUUID).
		First(&consultation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Consultation not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var jobs []models.ScheduledJob
	if err := config.DB.Where("consultation_id = ?", consultationUUID).
		Order("fire_at asc").Find(&jobs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve scheduled jobs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"consultation": consultation,
		"jobs":         jobs,
	})
}

// RescheduleConsultation moves a consultation: the old jobs are canceled and
// a fresh plan is built from the new time. Fire times are never edited in
// place.
func RescheduleConsultation(c *gin.Context) {
	consultationUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid consultation ID format")
		return
	}

	var input RescheduleConsultationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var consultation models.Consultation
	if err := config.DB.Preload("Patient").Where("id = ?", consultationUUID).
		First(&consultation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Consultation not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	scheduledAt, err := parseConsultationTime(input.Date, input.Time)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid date/time, expected YYYY-MM-DD and HH:MM")
		return
	}

	if _, err := Reminders.CancelConsultation(consultation.ID); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel existing reminders")
		return
	}

	consultation.ScheduledAt = scheduledAt
	if input.Link != nil {
		consultation.TeleconsultLink = *input.Link
	}
	if err := config.DB.Save(&consultation).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update consultation")
		return
	}

	scheduled, err := Reminders.ScheduleConsultation(consultation, consultation.Patient.Name)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Consultation updated but scheduling reminders failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"consultation":       consultation,
		"remindersScheduled": scheduled,
	})
}

// DeleteConsultation removes a consultation and cancels its pending reminders
func DeleteConsultation(c *gin.Context) {
	consultationUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid consultation ID format")
		return
	}

	if _, err := Reminders.CancelConsultation(consultationUUID); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel reminders")
		return
	}

	result := config.DB.Where("id = ?", consultationUUID).Delete(&models.Consultation{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete consultation")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Consultation not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Consultation deleted successfully"})
}
