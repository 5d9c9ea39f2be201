package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arnavshah/orchestrator-api-go/pkg/backend"
	"github.com/arnavshah/orchestrator-api-go/pkg/models"
	"github.com/arnavshah/orchestrator-api-go/pkg/pipeline"
	"github.com/arnavshah/orchestrator-api-go/pkg/processing"
)

// Writer turns resolved matches into persisted assignments after the
// response has gone out. It is best-effort: failures are logged, never
// surfaced to the original caller, never retried. No deduplication is
// performed against previously created assignments.
type Writer struct {
	Backend *backend.Client
	Logger  *slog.Logger
	Written prometheus.Counter // optional

	wg sync.WaitGroup
}

func NewWriter(client *backend.Client, logger *slog.Logger, written prometheus.Counter) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{Backend: client, Logger: logger, Written: written}
}

// Go dispatches Process on its own goroutine. Panics are contained so a
// writer bug can never take the process down with it.
func (w *Writer) Go(result pipeline.Context, req models.OrchestrationRequest) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				w.Logger.Error("assignment writer panicked", "panic", r)
			}
		}()
		w.Process(context.Background(), result, req)
	}()
}

// Wait blocks until every dispatched batch has finished. Used by tests and
// shutdown; callers on the request path never wait.
func (w *Writer) Wait() {
	w.wg.Wait()
}

// Process creates one assignment per writable resolved match. Matches
// missing a staff id, project, date, or positive hours are skipped
// individually; a backend failure mid-batch is logged and stops the
// remaining matches.
func (w *Writer) Process(ctx context.Context, result pipeline.Context, req models.OrchestrationRequest) {
	matches := result.ResolvedMatches()
	if len(matches) == 0 {
		w.Logger.Info("assignment writer: no matches to process")
		return
	}

	fallbackProject := firstProjectID(result, req)
	fallbackDate := result.String("date")
	if fallbackDate == "" {
		fallbackDate = req.Date
	}
	if fallbackDate == "" {
		fallbackDate = time.Now().Format("2006-01-02")
	}

	created := 0
	for _, m := range matches {
		if !processing.ValidMatch(m) {
			w.Logger.Warn("assignment writer: skipping invalid match",
				"staffId", m.StaffID, "hours", m.AssignedHours)
			continue
		}
		projectID := m.ProjectID
		if projectID == "" {
			projectID = fallbackProject
		}
		if projectID == "" {
			w.Logger.Warn("assignment writer: no project id for match, skipping",
				"staffId", m.StaffID)
			continue
		}
		date := m.Date
		if date == "" {
			date = fallbackDate
		}

		_, err := w.Backend.CreateAssignment(ctx, models.Assignment{
			StaffID:   m.StaffID,
			ProjectID: projectID,
			Date:      date,
			Hours:     m.AssignedHours,
		})
		if err != nil {
			w.Logger.Error("assignment writer: create failed, stopping batch",
				"staffId", m.StaffID, "projectId", projectID, "error", err)
			return
		}
		created++
		if w.Written != nil {
			w.Written.Inc()
		}
	}
	w.Logger.Info("assignment writer: batch complete", "created", created, "total", len(matches))
}

// firstProjectID resolves the batch-level project fallback, mirroring the
// single-project booking behavior: pipeline-resolved projects win over the
// request's explicit list.
func firstProjectID(result pipeline.Context, req models.OrchestrationRequest) string {
	if projects, ok := result["matchedProjects"].([]models.Project); ok && len(projects) > 0 {
		return projects[0].ID
	}
	if ids, ok := result["projectIds"].([]string); ok && len(ids) > 0 {
		return ids[0]
	}
	if len(req.ProjectIDs) > 0 {
		return req.ProjectIDs[0]
	}
	return ""
}
