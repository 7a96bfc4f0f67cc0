// services/dispatch_service.go
package services

import (
	"time"

	"telecare-backend/models"
	"telecare-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DeliveryRecorder persists one audit row per send attempt or skip.
type DeliveryRecorder interface {
	Record(entry models.ReminderLog)
}

// GormDeliveryRecorder writes reminder_logs rows.
type GormDeliveryRecorder struct {
	db *gorm.DB
}

func NewGormDeliveryRecorder(db *gorm.DB) *GormDeliveryRecorder {
	return &GormDeliveryRecorder{db: db}
}

func (r *GormDeliveryRecorder) Record(entry models.ReminderLog) {
	if err := r.db.Create(&entry).Error; err != nil {
		utils.GetLogger().Error("failed to record delivery outcome",
			zap.String("job_id", entry.JobID),
			zap.Error(err),
		)
	}
}

// DispatchService is the job callback body: send to the patient, then to the
// guardian when one exists and consent is still active. A patient failure
// aborts the occurrence; nothing here is retried and nothing escapes the
// callback boundary.
type DispatchService struct {
	gateway  DeliveryGateway
	consent  ConsentStore
	recorder DeliveryRecorder
}

func NewDispatchService(gateway DeliveryGateway, consent ConsentStore, recorder DeliveryRecorder) *DispatchService {
	return &DispatchService{gateway: gateway, consent: consent, recorder: recorder}
}

// Dispatch runs one reminder occurrence. It never panics past its boundary:
// a failure here must not reach the scheduler loop or affect other jobs.
func (s *DispatchService) Dispatch(job JobDescriptor) {
	defer func() {
		if r := recover(); r != nil {
			utils.GetLogger().Error("panic in reminder dispatch",
				zap.String("job_id", job.JobID),
				zap.String("template", job.Template),
				zap.Any("panic", r),
			)
		}
	}()

	link := ""
	if job.IncludeLink {
		link = job.Link
	}

	if err := s.gateway.SendTemplate(job.Template, job.Recipient, job.Params, link); err != nil {
		utils.GetLogger().Error("failed to send reminder to patient",
			zap.String("template", job.Template),
			zap.String("recipient", job.Recipient),
			zap.Error(err),
		)
		s.record(job, job.Recipient, models.RecipientRolePatient, models.DeliveryStatusFailed, err.Error())
		// Patient failure aborts the occurrence; the guardian is not attempted.
		return
	}
	utils.GetLogger().Info("reminder sent to patient",
		zap.String("template", job.Template),
		zap.String("recipient", job.Recipient),
	)
	s.record(job, job.Recipient, models.RecipientRolePatient, models.DeliveryStatusSent, "")

	if job.Guardian == "" {
		return
	}

	active, err := s.consent.IsActive(job.Guardian)
	if err != nil {
		// Store trouble must not silence the guardian: default stays active.
		utils.GetLogger().Error("consent lookup failed, assuming active",
			zap.String("guardian", job.Guardian),
			zap.Error(err),
		)
		active = true
	}

	if !active {
		utils.GetLogger().Info("guardian opted out, reminder not sent",
			zap.String("template", job.Template),
			zap.String("guardian", job.Guardian),
		)
		s.record(job, job.Guardian, models.RecipientRoleGuardian, models.DeliveryStatusSkipped, "")
		return
	}

	if err := s.gateway.SendTemplate(job.Template, job.Guardian, job.Params, link); err != nil {
		utils.GetLogger().Error("failed to send reminder to guardian",
			zap.String("template", job.Template),
			zap.String("guardian", job.Guardian),
			zap.Error(err),
		)
		s.record(job, job.Guardian, models.RecipientRoleGuardian, models.DeliveryStatusFailed, err.Error())
		return
	}
	utils.GetLogger().Info("reminder sent to guardian",
		zap.String("template", job.Template),
		zap.String("guardian", job.Guardian),
	)
	s.record(job, job.Guardian, models.RecipientRoleGuardian, models.DeliveryStatusSent, "")
}

func (s *DispatchService) record(job JobDescriptor, recipient, role, status, errorMsg string) {
	consultationID, _ := uuid.Parse(job.ConsultationID)
	s.recorder.Record(models.ReminderLog{
		ConsultationID: consultationID,
		JobID:          job.JobID,
		Template:       job.Template,
		Recipient:      recipient,
		Role:           role,
		Status:         status,
		ErrorMessage:   errorMsg,
		Channel:        s.gateway.Channel(),
		SentAt:         time.Now(),
	})
}
