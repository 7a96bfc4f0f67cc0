package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Consultation is immutable once its reminder plan is built: rescheduling
// cancels the old jobs and builds a fresh plan, it never edits fire times.
type Consultation struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	PatientID uuid.UUID `gorm:"type:uuid;index;not null"`

	PatientPhone  string `gorm:"not null"`
	GuardianPhone string

	ScheduledAt     time.Time `gorm:"not null;index"`
	TeleconsultLink string

	Patient Patient `gorm:"foreignKey:PatientID"`

	gorm.Model
}

func (c *Consultation) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
