// Package orchestrator dispatches requests by mode and drives the
// scheduling pipeline: parse, resolve, run stages, validate, and hand
// resolved matches to the background assignment writer.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arnavshah/orchestrator-api-go/pkg/audit"
	"github.com/arnavshah/orchestrator-api-go/pkg/backend"
	"github.com/arnavshah/orchestrator-api-go/pkg/memory"
	"github.com/arnavshah/orchestrator-api-go/pkg/models"
	"github.com/arnavshah/orchestrator-api-go/pkg/parser"
	"github.com/arnavshah/orchestrator-api-go/pkg/pipeline"
	"github.com/arnavshah/orchestrator-api-go/pkg/processing"
	"github.com/arnavshah/orchestrator-api-go/pkg/qa"
	"github.com/arnavshah/orchestrator-api-go/pkg/resolver"
)

// Answerer is the ask-mode fast path contract.
type Answerer interface {
	Answer(ctx context.Context, query string) (answer string, matched bool, err error)
}

// Orchestrator wires mode dispatch over the pipeline collaborators. Both
// runners satisfy pipeline.Runner, so the deterministic sequences can be
// swapped for the crew executor without touching dispatch.
type Orchestrator struct {
	Backend     *backend.Client
	Resolver    *resolver.Resolver
	QA          Answerer
	Memory      *memory.Store
	Audit       *audit.Log
	BaselineRun pipeline.Runner
	CommandRun  pipeline.Runner
	AskFallback pipeline.Runner // optional crew for unrecognized questions
	Writer      *Writer
	Logger      *slog.Logger
}

// Options carries everything New needs.
type Options struct {
	Backend     *backend.Client
	Resolver    *resolver.Resolver
	Memory      *memory.Store
	Audit       *audit.Log
	BaselineRun pipeline.Runner
	CommandRun  pipeline.Runner
	AskFallback pipeline.Runner
	Writer      *Writer
	Logger      *slog.Logger
}

func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		Backend:     opts.Backend,
		Resolver:    opts.Resolver,
		QA:          qa.New(opts.Backend, logger),
		Memory:      opts.Memory,
		Audit:       opts.Audit,
		BaselineRun: opts.BaselineRun,
		CommandRun:  opts.CommandRun,
		AskFallback: opts.AskFallback,
		Writer:      opts.Writer,
		Logger:      logger,
	}
}

// Handle classifies the request and runs the behavior for its mode. The
// returned context has already passed output validation.
func (o *Orchestrator) Handle(ctx context.Context, req models.OrchestrationRequest, sessionID string) (pipeline.Context, error) {
	switch m := Classify(req.Mode, req.Intent).(type) {
	case Ask:
		return o.handleAsk(ctx, req, sessionID)
	case Command:
		return o.handleCommand(ctx, req, m.Intent)
	case Cron:
		return o.handleCron(ctx)
	default:
		// Classify is total; this is unreachable but keeps the switch honest.
		return o.handleAsk(ctx, req, sessionID)
	}
}

func (o *Orchestrator) handleAsk(ctx context.Context, req models.OrchestrationRequest, sessionID string) (pipeline.Context, error) {
	query := strings.TrimSpace(req.Query)
	history := o.Memory.History(sessionID)

	var result pipeline.Context
	if query != "" {
		answer, matched, err := o.QA.Answer(ctx, query)
		if err != nil {
			return nil, err
		}
		if matched {
			result = pipeline.Context{"response": answer, "type": "text"}
		}
	}

	if result == nil && o.AskFallback != nil && query != "" {
		seed := pipeline.Context{"query": query, "history": history}
		out, err := o.AskFallback.Run(ctx, seed)
		if err != nil {
			return nil, err
		}
		result = out
	}

	if result == nil {
		result = pipeline.Context{
			"response": "I don't understand that question. For scheduling, use command mode with something like " +
				`"book 8 hrs for Merrin for Youssef Sharma on 21st May".`,
			"type": "text",
		}
	}

	if err := processing.ValidatePipelineOutput(result); err != nil {
		return nil, err
	}

	answer := result.String("response")
	if answer == "" {
		answer = result.String("content")
	}
	o.Memory.Append(sessionID, query, answer)
	return result, nil
}

func (o *Orchestrator) handleCommand(ctx context.Context, req models.OrchestrationRequest, intent string) (pipeline.Context, error) {
	parsed := parser.Parse(req.Query)

	date := parsed.Date
	if date == "" {
		date = req.Date
	}

	matchedStaff, unmatchedStaff, allStaff, err := o.resolveStaff(ctx, req, parsed)
	if err != nil {
		return nil, err
	}
	matchedProjects, unmatchedProjects, allProjects, err := o.resolveProjects(ctx, req, parsed)
	if err != nil {
		return nil, err
	}

	hours := parsed.Hours
	if len(hours) == 0 && req.Hours > 0 {
		hours = []int{req.Hours}
	}

	seed := pipeline.Context{
		"query":           req.Query,
		"date":            date,
		"intent":          intent,
		"parsedCommand":   parsed,
		"matchedStaff":    matchedStaff,
		"matchedProjects": matchedProjects,
		"hours":           hours,
	}

	result, err := o.CommandRun.Run(ctx, seed)
	if err != nil {
		return nil, err
	}

	// Resolution misses surface only as informational lists when the whole
	// command produced nothing, together with a sample of what exists so
	// the caller can correct the name.
	if len(result.ResolvedMatches()) == 0 {
		if len(unmatchedStaff) > 0 {
			result["unmatchedStaff"] = unmatchedStaff
			result["availableStaff"] = staffNameSample(allStaff)
		}
		if len(unmatchedProjects) > 0 {
			result["unmatchedProjects"] = unmatchedProjects
			result["availableProjects"] = projectNameSample(allProjects)
		}
	}

	if err := processing.ValidatePipelineOutput(result); err != nil {
		return nil, err
	}

	if len(result.ResolvedMatches()) > 0 && o.Writer != nil {
		o.Writer.Go(result.Clone(), req)
	}
	return result, nil
}

// handleCron runs the fixed weekly reminder sweep: the baseline pipeline
// seeded with the upcoming Monday. No user-supplied context participates.
func (o *Orchestrator) handleCron(ctx context.Context) (pipeline.Context, error) {
	seed := pipeline.Context{
		"task": "weekly_reminder",
		"date": nextMonday(time.Now().UTC()),
	}
	result, err := o.BaselineRun.Run(ctx, seed)
	if err != nil {
		return nil, err
	}
	if err := processing.ValidatePipelineOutput(result); err != nil {
		return nil, err
	}
	return result, nil
}

func nextMonday(from time.Time) string {
	days := (int(time.Monday) - int(from.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return from.AddDate(0, 0, days).Format("2006-01-02")
}

// nameSampleLimit caps how many existing names a zero-match response lists.
const nameSampleLimit = 5

func staffNameSample(staff []models.Staff) []string {
	names := make([]string, 0, nameSampleLimit)
	for _, s := range staff {
		if len(names) == nameSampleLimit {
			break
		}
		names = append(names, s.Name)
	}
	return names
}

func projectNameSample(projects []models.Project) []string {
	names := make([]string, 0, nameSampleLimit)
	for _, p := range projects {
		if len(names) == nameSampleLimit {
			break
		}
		names = append(names, p.Name)
	}
	return names
}

// resolveStaff maps explicit staff ids, a department constraint, and parsed
// staff names onto backend staff records. Misses are collected, not fatal.
func (o *Orchestrator) resolveStaff(ctx context.Context, req models.OrchestrationRequest, parsed models.ParsedCommand) ([]models.Staff, []string, []models.Staff, error) {
	if len(req.StaffIDs) == 0 && req.Department == "" && len(parsed.StaffNames) == 0 {
		return nil, nil, nil, nil
	}

	all, err := o.Backend.Staff(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolve staff: %w", err)
	}

	byID := make(map[string]models.Staff, len(all))
	for _, s := range all {
		byID[s.ID] = s
	}

	var matched []models.Staff
	var unmatched []string
	seen := make(map[string]bool)
	add := func(s models.Staff) {
		if !seen[s.ID] {
			seen[s.ID] = true
			matched = append(matched, s)
		}
	}

	for _, id := range req.StaffIDs {
		if s, ok := byID[id]; ok {
			add(s)
		} else {
			unmatched = append(unmatched, id)
		}
	}
	if req.Department != "" {
		found := false
		for _, s := range all {
			if strings.EqualFold(s.Department, req.Department) {
				add(s)
				found = true
			}
		}
		if !found {
			unmatched = append(unmatched, req.Department)
		}
	}
	for _, name := range parsed.StaffNames {
		if s := o.Resolver.Staff(ctx, name, all); s != nil {
			add(*s)
		} else {
			unmatched = append(unmatched, name)
		}
	}
	return matched, unmatched, all, nil
}

// resolveProjects maps explicit project ids and parsed project names onto
// backend project records. Misses are collected, not fatal.
func (o *Orchestrator) resolveProjects(ctx context.Context, req models.OrchestrationRequest, parsed models.ParsedCommand) ([]models.Project, []string, []models.Project, error) {
	if len(req.ProjectIDs) == 0 && len(parsed.ProjectNames) == 0 {
		return nil, nil, nil, nil
	}

	all, err := o.Backend.Projects(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolve projects: %w", err)
	}

	byID := make(map[string]models.Project, len(all))
	for _, p := range all {
		byID[p.ID] = p
	}

	var matched []models.Project
	var unmatched []string
	seen := make(map[string]bool)
	add := func(p models.Project) {
		if !seen[p.ID] {
			seen[p.ID] = true
			matched = append(matched, p)
		}
	}

	for _, id := range req.ProjectIDs {
		if p, ok := byID[id]; ok {
			add(p)
		} else {
			unmatched = append(unmatched, id)
		}
	}
	for _, name := range parsed.ProjectNames {
		if p := o.Resolver.Project(ctx, name, all); p != nil {
			add(*p)
		} else {
			unmatched = append(unmatched, name)
		}
	}
	return matched, unmatched, all, nil
}
