// controllers/patient.go
package controllers

import (
	"errors"
	"net/http"

	"telecare-backend/config"
	"telecare-backend/models"
	"telecare-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreatePatientInput defines the expected JSON structure for creating a patient
type CreatePatientInput struct {
	Name          string  `json:"name" binding:"required"`
	Phone         string  `json:"phone" binding:"required"`
	GuardianPhone *string `json:"guardianPhone"`
	Notes         string  `json:"notes"`
}

// UpdatePatientInput defines the expected JSON structure for updating a patient
type UpdatePatientInput struct {
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	GuardianPhone *string `json:"guardianPhone"`
	Notes         *string `json:"notes"`
	IsActive      *bool   `json:"isActive"`
}

// CreatePatient creates a new patient record
func CreatePatient(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var input CreatePatientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}
	phone := utils.NormalizePhone(input.Phone)

	guardianPhone := ""
	if input.GuardianPhone != nil && *input.GuardianPhone != "" {
		if !utils.ValidatePhone(*input.GuardianPhone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid guardian phone number format")
			return
		}
		guardianPhone = utils.NormalizePhone(*input.GuardianPhone)
	}

	var existingPatient models.Patient
	if err := config.DB.Where("phone = ?", phone).First(&existingPatient).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Patient with this phone number already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	patient := models.Patient{
		ID:              uuid.New(),
		CreatedByUserID: uuid.Must(uuid.Parse(userID.(string))),
		Name:            input.Name,
		Phone:           phone,
		GuardianPhone:   guardianPhone,
		Notes:           input.Notes,
		IsActive:        true,
	}

	if err := config.DB.Create(&patient).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create patient")
		return
	}

	c.JSON(http.StatusCreated, patient)
}

// GetPatients retrieves all patients
func GetPatients(c *gin.Context) {
	var patients []models.Patient
	if err := config.DB.Order("name asc").Find(&patients).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve patients")
		return
	}

	c.JSON(http.StatusOK, patients)
}

// GetPatient retrieves a specific patient by ID
func GetPatient(c *gin.Context) {
	patientUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid patient ID format")
		return
	}

	var patient models.Patient
	if err := config.DB.Preload("Consultations").Where("id = ?", patientUUID).
		First(&patient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Patient not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, patient)
}

// UpdatePatient updates an existing patient
func UpdatePatient(c *gin.Context) {
	patientUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid patient ID format")
		return
	}

	var input UpdatePatientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
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

	if input.Name != nil {
		patient.Name = *input.Name
	}
	if input.Phone != nil {
		if !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		patient.Phone = utils.NormalizePhone(*input.Phone)
	}
	if input.GuardianPhone != nil {
		if *input.GuardianPhone == "" {
			patient.GuardianPhone = ""
		} else {
			if !utils.ValidatePhone(*input.GuardianPhone) {
				utils.RespondWithError(c, http.StatusBadRequest, "Invalid guardian phone number format")
				return
			}
			patient.GuardianPhone = utils.NormalizePhone(*input.GuardianPhone)
		}
	}
	if input.Notes != nil {
		patient.Notes = *input.Notes
	}
	if input.IsActive != nil {
		patient.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&patient).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update patient")
		return
	}

	c.JSON(http.StatusOK, patient)
}

// DeletePatient deletes a patient
func DeletePatient(c *gin.Context) {
	patientUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid patient ID format")
		return
	}

	result := config.DB.Where("id = ?", patientUUID).Delete(&models.Patient{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete patient")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Patient not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Patient deleted successfully"})
}
