// models/consent.go
package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConsentRecord tracks whether a guardian still wants reminder copies.
// Keyed by the guardian phone; a missing record means notifications active.
type ConsentRecord struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key"`
	RecipientPhone      string    `gorm:"uniqueIndex;not null"`
	NotificationsActive bool      `gorm:"default:true"`

	gorm.Model
}

func (r *ConsentRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
