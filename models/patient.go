package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Patient struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name string `gorm:"not null"`
	// E.164 digits only, e.g. "5511919941208"
	Phone         string `gorm:"not null;uniqueIndex"`
	GuardianPhone string
	Notes         string
	IsActive      bool `gorm:"default:true"`

	Consultations []Consultation `gorm:"foreignKey:PatientID"`

	gorm.Model
}

func (p *Patient) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
