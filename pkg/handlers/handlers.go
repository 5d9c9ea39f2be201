package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/arnavshah/orchestrator-api-go/pkg/database"
	"github.com/arnavshah/orchestrator-api-go/pkg/memory"
	"github.com/arnavshah/orchestrator-api-go/pkg/metrics"
	"github.com/arnavshah/orchestrator-api-go/pkg/models"
	"github.com/arnavshah/orchestrator-api-go/pkg/orchestrator"
	"github.com/arnavshah/orchestrator-api-go/pkg/pipeline"
	"github.com/arnavshah/orchestrator-api-go/pkg/reports"
)

// SessionHeader carries the optional conversation session id. Requests
// without it share the default session history.
const SessionHeader = "X-Session-Id"

// Handler contains dependencies for the route handlers
type Handler struct {
	DB      *gorm.DB
	Orch    *orchestrator.Orchestrator
	Reports reports.Generator
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Orchestrate handles the main orchestration endpoint for every mode.
func (h *Handler) Orchestrate(c *gin.Context) {
	var req models.OrchestrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.run(c, req)
}

// Ask handles the chat aliases, forcing ask mode regardless of the body.
func (h *Handler) Ask(c *gin.Context) {
	var req models.OrchestrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Mode = "ask"
	h.run(c, req)
}

// WeeklyReminder triggers the fixed cron sub-pipeline. No body required.
func (h *Handler) WeeklyReminder(c *gin.Context) {
	h.run(c, models.OrchestrationRequest{Mode: "cron"})
}

func (h *Handler) run(c *gin.Context, req models.OrchestrationRequest) {
	sessionID := c.GetHeader(SessionHeader)
	if sessionID == "" {
		sessionID = memory.DefaultSession
	}

	result, err := h.Orch.Handle(c.Request.Context(), req, sessionID)
	mode := modeLabel(req)
	if err != nil {
		h.count(mode, "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.count(mode, "ok")
	h.recordUsage(mode, result)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) count(mode, outcome string) {
	if h.Metrics != nil {
		h.Metrics.Requests.WithLabelValues(mode, outcome).Inc()
	}
}

func (h *Handler) recordUsage(mode string, result pipeline.Context) {
	if h.DB == nil {
		return
	}
	today := time.Now().Format("2006-01-02")
	err := database.RecordUsage(h.DB, today, mode,
		len(result.Matches()), len(result.Notifications()))
	if err != nil && h.Logger != nil {
		h.Logger.Error("usage recording failed", "error", err)
	}
}

func modeLabel(req models.OrchestrationRequest) string {
	switch orchestrator.Classify(req.Mode, req.Intent).(type) {
	case orchestrator.Command:
		return "command"
	case orchestrator.Cron:
		return "cron"
	default:
		return "ask"
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Crews lists the available crews and their capabilities. Informational.
func (h *Handler) Crews(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"scheduleCrew": gin.H{
			"description": "Schedule staff to projects",
			"agents":      []string{"AvailabilityFetcher", "ShiftMatcher", "ConflictResolver", "Notifier", "AuditLogger"},
			"inputs":      []string{"date", "staffIds", "projectIds", "hours"},
		},
		"askCrew": gin.H{
			"description": "Answer questions about staff and projects",
			"agents":      []string{"RetrievalAgent", "SummarizerAgent"},
			"inputs":      []string{"query"},
		},
	})
}

// GenerateReport delegates to the external reporting collaborator.
func (h *Handler) GenerateReport(c *gin.Context) {
	var req models.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.Reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report service not configured"})
		return
	}
	result, err := h.Reports.Generate(c.Request.Context(), req.Start, req.End, req.Format)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetUsage returns the newest request-usage rows.
func (h *Handler) GetUsage(c *gin.Context) {
	usage, err := database.RecentUsage(h.DB, 30)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read usage"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": usage})
}
