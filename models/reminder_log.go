// models/reminder_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DeliveryStatusSent    = "sent"
	DeliveryStatusFailed  = "failed"
	DeliveryStatusSkipped = "skipped"

	RecipientRolePatient  = "patient"
	RecipientRoleGuardian = "guardian"
)

type ReminderLog struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	ConsultationID uuid.UUID `gorm:"type:uuid;index"`
	JobID          string    `gorm:"index"`

	Template     string `gorm:"type:varchar(40)"`
	Recipient    string `gorm:"type:varchar(20)"`
	Role         string `gorm:"type:varchar(20)"` // patient, guardian
	Status       string `gorm:"type:varchar(20)"` // sent, failed, skipped
	ErrorMessage string `gorm:"type:text"`
	Channel      string `gorm:"type:varchar(20)"` // whatsapp, twilio
	SentAt       time.Time

	gorm.Model
}

func (r *ReminderLog) BeforeCreate(tx *gorm.DB) (err error) {
	r.ID = uuid.New()
	return
}
