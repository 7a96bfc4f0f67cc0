// controllers/consent.go
package controllers

import (
	"net/http"

	"telecare-backend/config"
	"telecare-backend/models"
	"telecare-backend/services"
	"telecare-backend/utils"

	"github.com/gin-gonic/gin"
)

// Consents is wired from main with the active consent store.
var Consents services.ConsentStore

// GetConsentRecords lists every known consent record
func GetConsentRecords(c *gin.Context) {
	var records []models.ConsentRecord
	if err := config.DB.Order("recipient_phone asc").Find(&records).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve consent records")
		return
	}

	c.JSON(http.StatusOK, records)
}

// UpdateConsentInput defines the expected JSON structure
type UpdateConsentInput struct {
	NotificationsActive *bool `json:"notificationsActive" binding:"required"`
}

// UpdateConsent is the staff override for a guardian's consent flag; the
// normal path is the guardian's own PAUSAR/RETORNAR conversation.
func UpdateConsent(c *gin.Context) {
	phone := utils.NormalizePhone(c.Param("phone"))
	if !utils.ValidatePhone(phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	var input UpdateConsentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if err := Consents.SetActive(phone, *input.NotificationsActive); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update consent")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"phone":               phone,
		"notificationsActive": *input.NotificationsActive,
	})
}
