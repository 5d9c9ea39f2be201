// Package qa answers the two fixed ask-mode question templates directly
// against the backend, bypassing the stage pipeline. Anything it does not
// recognize falls through to the configured fallback.
package qa

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/arnavshah/orchestrator-api-go/pkg/backend"
	"github.com/arnavshah/orchestrator-api-go/pkg/models"
	"github.com/arnavshah/orchestrator-api-go/pkg/parser"
	"github.com/arnavshah/orchestrator-api-go/pkg/resolver"
)

var (
	// "Is Youssef Sharma on any project on 21st May?"
	onProjectRe = regexp.MustCompile(`(?i)^\s*is\s+(.+?)\s+on\s+any\s+projects?\s+on\s+(.+?)[\s?]*$`)
	// "How many hours is Youssef Sharma working on May 21 and 22?"
	hoursRe = regexp.MustCompile(`(?i)how\s+many\s+hours\s+is\s+(.+?)\s+working(?:\s+on)?\s+(.+?)[\s?]*$`)
)

// Answerer resolves the fixed question templates.
type Answerer struct {
	Backend *backend.Client
	Logger  *slog.Logger
}

func New(client *backend.Client, logger *slog.Logger) *Answerer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Answerer{Backend: client, Logger: logger}
}

// Answer attempts the question templates in order. matched reports whether
// any template recognized the query; when false the caller should fall
// through to its generic response. A backend failure is returned as an
// error and surfaces as a 500.
func (a *Answerer) Answer(ctx context.Context, query string) (answer string, matched bool, err error) {
	if m := onProjectRe.FindStringSubmatch(query); m != nil {
		answer, err = a.answerOnProject(ctx, m[1], m[2])
		return answer, true, err
	}
	if m := hoursRe.FindStringSubmatch(query); m != nil {
		answer, err = a.answerHours(ctx, m[1], m[2])
		return answer, true, err
	}
	return "", false, nil
}

func (a *Answerer) lookupStaff(ctx context.Context, name string) (*models.Staff, error) {
	staff, err := a.Backend.Staff(ctx)
	if err != nil {
		return nil, err
	}
	return resolver.MatchStaff(name, staff), nil
}

// assignmentsFor filters the full assignment list down to one staff member
// and date. The backend exposes no narrower query for assignments.
func (a *Answerer) assignmentsFor(all []models.Assignment, staffID, date string) []models.Assignment {
	var out []models.Assignment
	for _, asgn := range all {
		if asgn.StaffID == staffID && asgn.Date == date {
			out = append(out, asgn)
		}
	}
	return out
}

func (a *Answerer) answerOnProject(ctx context.Context, name, dateExpr string) (string, error) {
	date := parser.ParseDate(dateExpr)
	if date == "" {
		return fmt.Sprintf("Sorry, I couldn't understand the date %q.", strings.TrimSpace(dateExpr)), nil
	}

	staff, err := a.lookupStaff(ctx, name)
	if err != nil {
		return "", err
	}
	if staff == nil {
		return fmt.Sprintf("Sorry, I could not find staff member %q.", strings.TrimSpace(name)), nil
	}

	assignments, err := a.Backend.Assignments(ctx)
	if err != nil {
		return "", err
	}
	matched := a.assignmentsFor(assignments, staff.ID, date)
	if len(matched) == 0 {
		return fmt.Sprintf("%s is not assigned to any project on %s.", staff.Name, date), nil
	}

	projects, err := a.Backend.Projects(ctx)
	if err != nil {
		return "", err
	}
	byID := make(map[string]string, len(projects))
	for _, p := range projects {
		byID[p.ID] = p.Name
	}

	var names []string
	total := 0
	for _, asgn := range matched {
		total += asgn.Hours
		pname := asgn.ProjectName
		if pname == "" {
			pname = byID[asgn.ProjectID]
		}
		if pname == "" {
			pname = asgn.ProjectID
		}
		names = append(names, pname)
	}
	return fmt.Sprintf("Yes, %s is assigned to %s on %s for a total of %d hours.",
		staff.Name, strings.Join(names, ", "), date, total), nil
}

func (a *Answerer) answerHours(ctx context.Context, name, dateExpr string) (string, error) {
	dates := parser.ParseDates(dateExpr)
	if len(dates) == 0 {
		return fmt.Sprintf("Sorry, I couldn't understand the date %q.", strings.TrimSpace(dateExpr)), nil
	}

	staff, err := a.lookupStaff(ctx, name)
	if err != nil {
		return "", err
	}
	if staff == nil {
		return fmt.Sprintf("Sorry, I could not find staff member %q.", strings.TrimSpace(name)), nil
	}

	assignments, err := a.Backend.Assignments(ctx)
	if err != nil {
		return "", err
	}

	var parts []string
	total := 0
	for _, date := range dates {
		sum := 0
		for _, asgn := range a.assignmentsFor(assignments, staff.ID, date) {
			sum += asgn.Hours
		}
		total += sum
		parts = append(parts, fmt.Sprintf("%d hours on %s", sum, date))
	}
	return fmt.Sprintf("%s is working %s, for a total of %d hours.",
		staff.Name, strings.Join(parts, " and "), total), nil
}
