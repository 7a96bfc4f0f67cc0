// models/scheduled_job.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	JobStatusPending  = "pending"
	JobStatusFired    = "fired"
	JobStatusCanceled = "canceled"
	JobStatusDropped  = "dropped"
)

// ScheduledJob persists one reminder occurrence so pending jobs survive a
// restart. JobID is derived from phone + consultation date/time + template
// suffix, which makes re-registering the same consultation an upsert.
type ScheduledJob struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	JobID          string    `gorm:"uniqueIndex;not null"`
	ConsultationID uuid.UUID `gorm:"type:uuid;index;not null"`

	Template       string    `gorm:"type:varchar(40);not null"`
	FireAt         time.Time `gorm:"not null"`
	RecipientPhone string    `gorm:"not null"`
	GuardianPhone  string
	Params         StringSlice `gorm:"type:text"`
	IncludeLink    bool
	Link           string

	Status  string `gorm:"type:varchar(20);default:'pending';index"` // pending, fired, canceled, dropped
	FiredAt *time.Time

	gorm.Model
}

func (j *ScheduledJob) BeforeCreate(tx *gorm.DB) (err error) {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return
}

// StringSlice stores ordered template parameters as a JSON column
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *StringSlice) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("type assertion to []byte failed")
	}
}
