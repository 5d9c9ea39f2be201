// Package resolver maps parsed names onto backend-confirmed entities.
// Resolution fails closed: a name that matches nothing yields nil and the
// caller skips that match rather than failing the whole request.
package resolver

import (
	"context"
	"log/slog"
	"strings"

	"github.com/arnavshah/orchestrator-api-go/pkg/backend"
	"github.com/arnavshah/orchestrator-api-go/pkg/models"
)

// Resolver resolves staff and project names against the backend service.
// Auto-creation of unmatched names is a per-deployment choice: the command
// parser's name rules overlap (a staff phrase can also look like a project
// candidate), so creating records for every miss would fabricate entities.
type Resolver struct {
	Backend            *backend.Client
	AutoCreateProjects bool
	AutoCreateStaff    bool
	Logger             *slog.Logger
}

func New(client *backend.Client, autoCreateProjects, autoCreateStaff bool, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		Backend:            client,
		AutoCreateProjects: autoCreateProjects,
		AutoCreateStaff:    autoCreateStaff,
		Logger:             logger,
	}
}

// substringMatch reports case-insensitive containment in either direction:
// the candidate contains the entity name, or the entity name contains the
// candidate.
func substringMatch(candidate, name string) bool {
	c := strings.ToLower(strings.TrimSpace(candidate))
	n := strings.ToLower(strings.TrimSpace(name))
	if c == "" || n == "" {
		return false
	}
	return strings.Contains(c, n) || strings.Contains(n, c)
}

// tokenSubsetMatch reports whether every whitespace token of the candidate
// appears somewhere in the entity name. Staff-only fallback: catches
// "Youssef Sharma" against "Youssef K. Sharma".
func tokenSubsetMatch(candidate, name string) bool {
	n := strings.ToLower(name)
	tokens := strings.Fields(strings.ToLower(candidate))
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if !strings.Contains(n, tok) {
			return false
		}
	}
	return true
}

// MatchStaff applies the staff matching ladder without side effects: exact
// match, then substring either direction, then token subset.
func MatchStaff(candidate string, staff []models.Staff) *models.Staff {
	for i := range staff {
		if strings.EqualFold(strings.TrimSpace(candidate), strings.TrimSpace(staff[i].Name)) {
			return &staff[i]
		}
	}
	for i := range staff {
		if substringMatch(candidate, staff[i].Name) {
			return &staff[i]
		}
	}
	for i := range staff {
		if tokenSubsetMatch(candidate, staff[i].Name) {
			return &staff[i]
		}
	}
	return nil
}

// MatchProject applies the project matching ladder without side effects:
// exact match, then substring either direction.
func MatchProject(candidate string, projects []models.Project) *models.Project {
	for i := range projects {
		if strings.EqualFold(strings.TrimSpace(candidate), strings.TrimSpace(projects[i].Name)) {
			return &projects[i]
		}
	}
	for i := range projects {
		if substringMatch(candidate, projects[i].Name) {
			return &projects[i]
		}
	}
	return nil
}

// Staff resolves a candidate name to a staff record, auto-creating one when
// nothing matches and the deployment allows it. Returns nil on total miss.
func (r *Resolver) Staff(ctx context.Context, candidate string, staff []models.Staff) *models.Staff {
	if found := MatchStaff(candidate, staff); found != nil {
		return found
	}

	if r.AutoCreateStaff && r.Backend != nil {
		created, err := r.Backend.CreateStaff(ctx, candidate)
		if err != nil {
			r.Logger.Error("staff auto-creation failed", "name", candidate, "error", err)
			return nil
		}
		r.Logger.Info("auto-created staff member", "name", candidate, "id", created.ID)
		return &created
	}
	return nil
}

// Project resolves a candidate name to a project record, auto-creating one
// when nothing matches and the deployment allows it. Returns nil on total
// miss.
func (r *Resolver) Project(ctx context.Context, candidate string, projects []models.Project) *models.Project {
	if found := MatchProject(candidate, projects); found != nil {
		return found
	}

	if r.AutoCreateProjects && r.Backend != nil {
		created, err := r.Backend.CreateProject(ctx, candidate)
		if err != nil {
			r.Logger.Error("project auto-creation failed", "name", candidate, "error", err)
			return nil
		}
		r.Logger.Info("auto-created project", "name", candidate, "id", created.ID)
		return &created
	}
	return nil
}
