package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arnavshah/orchestrator-api-go/pkg/audit"
	"github.com/arnavshah/orchestrator-api-go/pkg/backend"
	"github.com/arnavshah/orchestrator-api-go/pkg/models"
)

// Stages builds the five pipeline stages bound to their collaborators.
type Stages struct {
	Backend *backend.Client
	Audit   *audit.Log
	Logger  *slog.Logger
}

func NewStages(client *backend.Client, log *audit.Log, logger *slog.Logger) *Stages {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stages{Backend: client, Audit: log, Logger: logger}
}

// Availability fetches per-staff availability for the context date. Ask-mode
// queries carry no date; those short-circuit to an empty list. A backend
// failure is fatal for the stage.
func (s *Stages) Availability() Stage {
	return Stage{
		Name: "availability",
		Run: func(ctx context.Context, pc Context) (Context, error) {
			date := pc.String("date")
			if date == "" {
				return Context{"availability": []models.AvailabilityEntry{}}, nil
			}
			entries, err := s.Backend.Availability(ctx, date)
			if err != nil {
				return nil, err
			}
			if entries == nil {
				entries = []models.AvailabilityEntry{}
			}
			return Context{"availability": entries}, nil
		},
	}
}

// ShiftMatch emits one proposed match per availability entry, assigning all
// available hours. The baseline policy: no targeting, no hour overrides.
func (s *Stages) ShiftMatch() Stage {
	return Stage{
		Name: "shiftMatch",
		Run: func(ctx context.Context, pc Context) (Context, error) {
			date := pc.String("date")
			matches := []models.Match{}
			for _, entry := range pc.availability() {
				matches = append(matches, models.Match{
					StaffID:       entry.StaffID,
					StaffName:     entry.StaffName,
					AssignedHours: entry.AvailableHours,
					Date:          date,
				})
			}
			return Context{"matches": matches}, nil
		},
	}
}

// ShiftMatchEnhanced honors explicit targeting parsed upstream: when the
// context names staff (directly or via a department) it emits the cross
// product of those staff with the resolved projects, applying per-project
// hour overrides over the single default. Without any staff or department
// constraint it falls back to the baseline availability-only policy.
func (s *Stages) ShiftMatchEnhanced() Stage {
	base := s.ShiftMatch()
	return Stage{
		Name: "shiftMatchEnhanced",
		Run: func(ctx context.Context, pc Context) (Context, error) {
			staff := pc.matchedStaff()
			if len(staff) == 0 {
				return base.Run(ctx, pc)
			}

			date := pc.String("date")
			projects := pc.matchedProjects()
			hours := pc.hours()
			defaultHours := 8
			if len(hours) > 0 {
				defaultHours = hours[0]
			}

			matches := []models.Match{}
			for _, st := range staff {
				for i, p := range projects {
					h := defaultHours
					if i < len(hours) {
						h = hours[i]
					}
					matches = append(matches, models.Match{
						StaffID:       st.ID,
						StaffName:     st.Name,
						ProjectID:     p.ID,
						ProjectName:   p.Name,
						AssignedHours: h,
						Date:          date,
					})
				}
			}
			return Context{"matches": matches}, nil
		},
	}
}

// ConflictResolve keeps only matches with positive assigned hours. A pure
// predicate filter: no rebalancing, no partial-hour splitting, idempotent.
func (s *Stages) ConflictResolve() Stage {
	return Stage{
		Name: "conflictResolve",
		Run: func(ctx context.Context, pc Context) (Context, error) {
			resolved := []models.Match{}
			for _, m := range pc.Matches() {
				if m.AssignedHours > 0 {
					resolved = append(resolved, m)
				}
			}
			return Context{"resolvedMatches": resolved}, nil
		},
	}
}

// Notify composes one notification per resolved match (falling back to the
// unfiltered matches when ConflictResolve has not run in this pipeline).
func (s *Stages) Notify() Stage {
	return Stage{
		Name: "notify",
		Run: func(ctx context.Context, pc Context) (Context, error) {
			matches := pc.Matches()
			if _, ok := pc["resolvedMatches"]; ok {
				matches = pc.ResolvedMatches()
			}
			date := pc.String("date")
			notifications := []models.Notification{}
			for _, m := range matches {
				name := m.StaffName
				if name == "" {
					name = m.StaffID
				}
				d := m.Date
				if d == "" {
					d = date
				}
				notifications = append(notifications, models.Notification{
					StaffID:       m.StaffID,
					StaffName:     name,
					AssignedHours: m.AssignedHours,
					Date:          d,
					Message:       fmt.Sprintf("%s assigned %d hours on %s", name, m.AssignedHours, d),
				})
			}
			return Context{"notifications": notifications}, nil
		},
	}
}

// AuditLog archives a shallow snapshot of the full context with a UTC
// timestamp and returns the whole sequence as auditLog.
func (s *Stages) AuditLog() Stage {
	return Stage{
		Name: "auditLog",
		Run: func(ctx context.Context, pc Context) (Context, error) {
			s.Audit.Append(pc.Clone())
			return Context{"auditLog": s.Audit.Entries()}, nil
		},
	}
}

// Baseline is the stage pipeline run for plain scheduling requests.
func (s *Stages) Baseline() *Sequence {
	return NewSequence("baseline", s.Logger,
		s.Availability(),
		s.ShiftMatch(),
		s.ConflictResolve(),
		s.Notify(),
		s.AuditLog(),
	)
}

// Command is the stage pipeline run for parsed free-text commands: identical
// to Baseline except ShiftMatch honors the parsed targeting constraints.
func (s *Stages) Command() *Sequence {
	return NewSequence("command", s.Logger,
		s.Availability(),
		s.ShiftMatchEnhanced(),
		s.ConflictResolve(),
		s.Notify(),
		s.AuditLog(),
	)
}
