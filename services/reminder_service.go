// services/reminder_service.go
package services

import (
	"errors"
	"time"

	"telecare-backend/models"
	"telecare-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReminderService owns the reminder lifecycle: build the plan for a
// consultation, persist one row per job, register the jobs with the
// scheduler, and restore pending jobs after a restart.
type ReminderService struct {
	db        *gorm.DB
	planner   *PlanService
	scheduler *SchedulerService
	dispatch  *DispatchService
}

func NewReminderService(db *gorm.DB, scheduler *SchedulerService, dispatch *DispatchService) *ReminderService {
	return &ReminderService{
		db:        db,
		planner:   NewPlanService(),
		scheduler: scheduler,
		dispatch:  dispatch,
	}
}

// ScheduleConsultation builds and registers the reminder plan. Calling it
// again for the same consultation date/time upserts the same job ids instead
// of duplicating them. Returns how many jobs were scheduled.
func (s *ReminderService) ScheduleConsultation(c models.Consultation, patientName string) (int, error) {
	plan := s.planner.BuildPlan(c, patientName)

	scheduled := 0
	for _, job := range plan {
		if err := s.upsertJobRow(job); err != nil {
			return scheduled, err
		}
		if err := s.register(job); err != nil {
			return scheduled, err
		}
		scheduled++
	}

	utils.GetLogger().Info("reminders scheduled",
		zap.String("patient", c.PatientPhone),
		zap.Time("consultation", c.ScheduledAt),
		zap.Int("jobs", scheduled),
	)
	return scheduled, nil
}

// CancelConsultation cancels every pending job of a consultation; used on
// reschedule and delete. A job already executing is unaffected.
func (s *ReminderService) CancelConsultation(consultationID uuid.UUID) (int, error) {
	var jobs []models.ScheduledJob
	if err := s.db.Where("consultation_id = ? AND status = ?",
		consultationID, models.JobStatusPending).Find(&jobs).Error; err != nil {
		return 0, err
	}

	for _, job := range jobs {
		s.scheduler.Cancel(job.JobID)
		s.setStatus(job.JobID, models.JobStatusCanceled)
	}
	return len(jobs), nil
}

// RestorePendingJobs re-registers persisted pending jobs on boot. The
// scheduler applies the misfire policy: a stale job fires once when still
// inside its grace window and is dropped past it.
func (s *ReminderService) RestorePendingJobs() error {
	var rows []models.ScheduledJob
	if err := s.db.Where("status = ?", models.JobStatusPending).
		Order("fire_at asc").Find(&rows).Error; err != nil {
		return err
	}

	restored, dropped := 0, 0
	for _, row := range rows {
		job := JobDescriptor{
			JobID:          row.JobID,
			ConsultationID: row.ConsultationID.String(),
			FireAt:         row.FireAt,
			Template:       row.Template,
			Params:         row.Params,
			Recipient:      row.RecipientPhone,
			Guardian:       row.GuardianPhone,
			Link:           row.Link,
			IncludeLink:    row.IncludeLink,
			Grace:          GraceFor(row.Template),
		}
		if err := s.register(job); err != nil {
			if errors.Is(err, ErrMisfireExpired) {
				dropped++
				continue
			}
			return err
		}
		restored++
	}

	utils.GetLogger().Info("pending reminders restored",
		zap.Int("restored", restored),
		zap.Int("dropped", dropped),
	)
	return nil
}

func (s *ReminderService) register(job JobDescriptor) error {
	err := s.scheduler.Schedule(job.JobID, job.FireAt, job.Grace, func() {
		// Fire-once semantics: the occurrence is spent no matter how
		// delivery turns out.
		s.markFired(job.JobID)
		s.dispatch.Dispatch(job)
	})
	if errors.Is(err, ErrMisfireExpired) {
		utils.GetLogger().Warn("job dropped, fire time past grace window",
			zap.String("job_id", job.JobID),
			zap.Time("fire_at", job.FireAt),
		)
		s.setStatus(job.JobID, models.JobStatusDropped)
	}
	return err
}

func (s *ReminderService) upsertJobRow(job JobDescriptor) error {
	consultationID, err := uuid.Parse(job.ConsultationID)
	if err != nil {
		return err
	}

	row := models.ScheduledJob{
		JobID:          job.JobID,
		ConsultationID: consultationID,
		Template:       job.Template,
		FireAt:         job.FireAt,
		RecipientPhone: job.Recipient,
		GuardianPhone:  job.Guardian,
		Params:         job.Params,
		IncludeLink:    job.IncludeLink,
		Link:           job.Link,
		Status:         models.JobStatusPending,
	}

	var existing models.ScheduledJob
	findErr := s.db.Where("job_id = ?", job.JobID).First(&existing).Error
	if errors.Is(findErr, gorm.ErrRecordNotFound) {
		return s.db.Create(&row).Error
	}
	if findErr != nil {
		return findErr
	}

	row.ID = existing.ID
	row.CreatedAt = existing.CreatedAt
	return s.db.Save(&row).Error
}

func (s *ReminderService) markFired(jobID string) {
	now := time.Now()
	if err := s.db.Model(&models.ScheduledJob{}).
		Where("job_id = ?", jobID).
		Updates(map[string]interface{}{
			"status":   models.JobStatusFired,
			"fired_at": &now,
		}).Error; err != nil {
		utils.GetLogger().Error("failed to mark job fired",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
	}
}

func (s *ReminderService) setStatus(jobID, status string) {
	if err := s.db.Model(&models.ScheduledJob{}).
		Where("job_id = ?", jobID).
		Update("status", status).Error; err != nil {
		utils.GetLogger().Error("failed to update job status",
			zap.String("job_id", jobID),
			zap.String("status", status),
			zap.Error(err),
		)
	}
}
