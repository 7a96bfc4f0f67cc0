package services

import (
	"testing"
	"time"

	"telecare-backend/models"

	"github.com/google/uuid"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func testConsultation(t *testing.T) models.Consultation {
	t.Helper()
	return models.Consultation{
		ID:              uuid.New(),
		PatientID:       uuid.New(),
		PatientPhone:    "5511919941208",
		GuardianPhone:   "5511900000000",
		ScheduledAt:     time.Date(2025, 9, 15, 18, 0, 0, 0, saoPaulo(t)),
		TeleconsultLink: "https://hcclinicas.org/teleconsulta/demo",
	}
}

func planner(now time.Time) *PlanService {
	return &PlanService{now: func() time.Time { return now }}
}

func TestBuildPlanFullCatalog(t *testing.T) {
	loc := saoPaulo(t)
	c := testConsultation(t)
	now := time.Date(2025, 9, 10, 12, 0, 0, 0, loc)

	jobs := planner(now).BuildPlan(c, "Matheus")
	if len(jobs) != 4 {
		t.Fatalf("expected 4 jobs, got %d", len(jobs))
	}

	want := []struct {
		jobID    string
		fireAt   time.Time
		template string
		params   []string
		link     bool
	}{
		{
			jobID:    "5511919941208_2025-09-15_18-00_48h",
			fireAt:   time.Date(2025, 9, 13, 18, 0, 0, 0, loc),
			template: TemplateReminder48h,
			params:   []string{"Matheus", "15/09/2025, segunda-feira", "18:00"},
		},
		{
			jobID:    "5511919941208_2025-09-15_18-00_24h",
			fireAt:   time.Date(2025, 9, 14, 18, 0, 0, 0, loc),
			template: TemplateReminder24h,
			params:   []string{"Matheus", "15/09/2025, segunda-feira", "18:00"},
		},
		{
			jobID:    "5511919941208_2025-09-15_18-00_1h",
			fireAt:   time.Date(2025, 9, 15, 17, 0, 0, 0, loc),
			template: TemplateReminder1h,
			params:   []string{"Matheus", "18:00"},
		},
		{
			jobID:    "5511919941208_2025-09-15_18-00_10min",
			fireAt:   time.Date(2025, 9, 15, 17, 50, 0, 0, loc),
			template: TemplateConsultationStarting,
			params:   []string{"Matheus", "18:00"},
			link:     true,
		},
	}

	for i, w := range want {
		got := jobs[i]
		if got.JobID != w.jobID {
			t.Errorf("job %d: id = %q, want %q", i, got.JobID, w.jobID)
		}
		if !got.FireAt.Equal(w.fireAt) {
			t.Errorf("job %d: fireAt = %v, want %v", i, got.FireAt, w.fireAt)
		}
		if got.Template != w.template {
			t.Errorf("job %d: template = %q, want %q", i, got.Template, w.template)
		}
		if len(got.Params) != len(w.params) {
			t.Fatalf("job %d: params = %v, want %v", i, got.Params, w.params)
		}
		for j := range w.params {
			if got.Params[j] != w.params[j] {
				t.Errorf("job %d: param %d = %q, want %q", i, j, got.Params[j], w.params[j])
			}
		}
		if got.IncludeLink != w.link {
			t.Errorf("job %d: includeLink = %v, want %v", i, got.IncludeLink, w.link)
		}
		if got.Guardian != c.GuardianPhone {
			t.Errorf("job %d: guardian = %q, want %q", i, got.Guardian, c.GuardianPhone)
		}
	}
}

func TestBuildPlanSkipsPastOffsets(t *testing.T) {
	loc := saoPaulo(t)
	c := testConsultation(t)

	tests := []struct {
		name      string
		now       time.Time
		wantJobs  int
		wantFirst string
	}{
		{
			name:      "48h window already past",
			now:       time.Date(2025, 9, 14, 12, 0, 0, 0, loc),
			wantJobs:  3,
			wantFirst: TemplateReminder24h,
		},
		{
			name:      "only the starting reminder left",
			now:       time.Date(2025, 9, 15, 17, 30, 0, 0, loc),
			wantJobs:  1,
			wantFirst: TemplateConsultationStarting,
		},
		{
			name:     "consultation already started",
			now:      time.Date(2025, 9, 15, 18, 30, 0, 0, loc),
			wantJobs: 0,
		},
		{
			name:     "fire time equal to now is skipped",
			now:      time.Date(2025, 9, 15, 17, 50, 0, 0, loc),
			wantJobs: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := planner(tt.now).BuildPlan(c, "Matheus")
			if len(jobs) != tt.wantJobs {
				t.Fatalf("expected %d jobs, got %d", tt.wantJobs, len(jobs))
			}
			if tt.wantJobs > 0 && jobs[0].Template != tt.wantFirst {
				t.Errorf("first template = %q, want %q", jobs[0].Template, tt.wantFirst)
			}
		})
	}
}

func TestBuildPlanIsDeterministic(t *testing.T) {
	loc := saoPaulo(t)
	c := testConsultation(t)
	now := time.Date(2025, 9, 10, 12, 0, 0, 0, loc)

	first := planner(now).BuildPlan(c, "Matheus")
	second := planner(now).BuildPlan(c, "Matheus")

	if len(first) != len(second) {
		t.Fatalf("plan sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].JobID != second[i].JobID {
			t.Errorf("job %d: ids differ: %q vs %q", i, first[i].JobID, second[i].JobID)
		}
	}
}

func TestGraceFor(t *testing.T) {
	tests := []struct {
		template string
		want     time.Duration
	}{
		{TemplateReminder48h, time.Hour},
		{TemplateReminder24h, time.Hour},
		{TemplateReminder1h, 30 * time.Minute},
		{TemplateConsultationStarting, 15 * time.Minute},
		{"unknown", 15 * time.Minute},
	}
	for _, tt := range tests {
		if got := GraceFor(tt.template); got != tt.want {
			t.Errorf("GraceFor(%q) = %v, want %v", tt.template, got, tt.want)
		}
	}
}
