// services/plan_service.go
package services

import (
	"fmt"
	"strings"
	"time"

	"telecare-backend/models"
	"telecare-backend/utils"

	"go.uber.org/zap"
)

// Provider-approved template names.
const (
	TemplateReminder48h          = "lembrete_48h"
	TemplateReminder24h          = "lembrete_24h"
	TemplateReminder1h           = "lembrete_1h"
	TemplateConsultationStarting = "consulta_comecando"
)

// ReminderSpec is one entry of the fixed reminder catalog.
type ReminderSpec struct {
	Offset      time.Duration
	Template    string
	Suffix      string
	Grace       time.Duration
	IncludeLink bool
}

// reminderCatalog is ordered by descending offset; that order is the
// canonical presentation order for plans and logs.
var reminderCatalog = [4]ReminderSpec{
	{Offset: 48 * time.Hour, Template: TemplateReminder48h, Suffix: "48h", Grace: time.Hour},
	{Offset: 24 * time.Hour, Template: TemplateReminder24h, Suffix: "24h", Grace: time.Hour},
	{Offset: time.Hour, Template: TemplateReminder1h, Suffix: "1h", Grace: 30 * time.Minute},
	{Offset: 10 * time.Minute, Template: TemplateConsultationStarting, Suffix: "10min", Grace: 15 * time.Minute, IncludeLink: true},
}

// GraceFor returns the misfire grace window for a template. Used when
// restoring persisted jobs whose spec is no longer at hand.
func GraceFor(template string) time.Duration {
	for _, spec := range reminderCatalog {
		if spec.Template == template {
			return spec.Grace
		}
	}
	return 15 * time.Minute
}

// JobDescriptor is one reminder occurrence, ready to be registered with the
// scheduler. Not yet persisted or scheduled.
type JobDescriptor struct {
	JobID          string
	ConsultationID string
	FireAt         time.Time
	Template       string
	Params         []string
	Recipient      string
	Guardian       string
	Link           string
	IncludeLink    bool
	Grace          time.Duration
}

// PlanService derives reminder jobs from a consultation. Pure except for the
// injected clock.
type PlanService struct {
	now func() time.Time
}

func NewPlanService() *PlanService {
	return &PlanService{now: time.Now}
}

// JobBaseID builds the deterministic job id prefix from phone and the
// consultation's local date/time: "5511..._2025-09-15_18-00".
func JobBaseID(phone string, scheduledAt time.Time) string {
	stamp := scheduledAt.Format("2006-01-02_15:04")
	return fmt.Sprintf("%s_%s", phone, strings.ReplaceAll(stamp, ":", "-"))
}

// BuildPlan returns the consultation's reminder jobs in catalog order.
// Specs whose fire time is not in the future are skipped, not scheduled
// late: a consultation registered at the last minute must not trigger a
// flood of overdue reminders.
func (s *PlanService) BuildPlan(c models.Consultation, patientName string) []JobDescriptor {
	now := s.now()
	baseID := JobBaseID(c.PatientPhone, c.ScheduledAt)

	dateParam := utils.FriendlyDateBR(c.ScheduledAt)
	timeParam := utils.FormatTimeBR(c.ScheduledAt)

	jobs := make([]JobDescriptor, 0, len(reminderCatalog))
	for _, spec := range reminderCatalog {
		fireAt := c.ScheduledAt.Add(-spec.Offset)
		if !fireAt.After(now) {
			utils.GetLogger().Info("reminder skipped, fire time already past",
				zap.String("template", spec.Template),
				zap.String("patient", c.PatientPhone),
				zap.Time("fire_at", fireAt),
			)
			continue
		}

		var params []string
		switch spec.Template {
		case TemplateReminder48h, TemplateReminder24h:
			params = []string{patientName, dateParam, timeParam}
		default:
			params = []string{patientName, timeParam}
		}

		jobs = append(jobs, JobDescriptor{
			JobID:          fmt.Sprintf("%s_%s", baseID, spec.Suffix),
			ConsultationID: c.ID.String(),
			FireAt:         fireAt,
			Template:       spec.Template,
			Params:         params,
			Recipient:      c.PatientPhone,
			Guardian:       c.GuardianPhone,
			Link:           c.TeleconsultLink,
			IncludeLink:    spec.IncludeLink,
			Grace:          spec.Grace,
		})
	}

	return jobs
}
