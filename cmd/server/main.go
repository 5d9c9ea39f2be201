package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/arnavshah/orchestrator-api-go/pkg/audit"
	"github.com/arnavshah/orchestrator-api-go/pkg/backend"
	"github.com/arnavshah/orchestrator-api-go/pkg/crew"
	"github.com/arnavshah/orchestrator-api-go/pkg/database"
	"github.com/arnavshah/orchestrator-api-go/pkg/handlers"
	"github.com/arnavshah/orchestrator-api-go/pkg/memory"
	"github.com/arnavshah/orchestrator-api-go/pkg/metrics"
	"github.com/arnavshah/orchestrator-api-go/pkg/orchestrator"
	"github.com/arnavshah/orchestrator-api-go/pkg/pipeline"
	"github.com/arnavshah/orchestrator-api-go/pkg/reports"
	"github.com/arnavshah/orchestrator-api-go/pkg/resolver"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	client := backend.New(envOr("BACKEND_URL", "http://localhost:5001"), logger)
	auditLog := audit.NewLog()
	stages := pipeline.NewStages(client, auditLog, logger)

	var baselineRun, commandRun pipeline.Runner
	if os.Getenv("USE_CREW") == "1" {
		cfg, err := crew.LoadConfig(os.Getenv("CREW_CONFIG"))
		if err != nil {
			log.Fatalf("could not load crew config: %v", err)
		}
		registry := crew.Registry(stages)
		commandRun, err = crew.Build(cfg, "schedule", registry, logger)
		if err != nil {
			log.Fatalf("could not build schedule crew: %v", err)
		}
		baselineRun, err = crew.Build(cfg, "cron", registry, logger)
		if err != nil {
			log.Fatalf("could not build cron crew: %v", err)
		}
	} else {
		baselineRun = stages.Baseline()
		commandRun = stages.Command()
	}

	m := metrics.New()
	orch := orchestrator.New(orchestrator.Options{
		Backend: client,
		Resolver: resolver.New(client,
			os.Getenv("AUTO_CREATE_PROJECTS") == "1",
			os.Getenv("AUTO_CREATE_STAFF") == "1",
			logger),
		Memory:      memory.NewStore(),
		Audit:       auditLog,
		BaselineRun: baselineRun,
		CommandRun:  commandRun,
		Writer:      orchestrator.NewWriter(client, logger, m.AssignmentsWritten),
		Logger:      logger,
	})

	var reportGen reports.Generator
	if url := os.Getenv("REPORT_SERVICE_URL"); url != "" {
		reportGen = reports.NewHTTP(url)
	}

	h := &handlers.Handler{
		DB:      database.InitDB(),
		Orch:    orch,
		Reports: reportGen,
		Metrics: m,
		Logger:  logger,
	}

	r := gin.Default()

	// Routes
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Staff Scheduler Orchestrator (Go Version)",
			"version": "1.0.0",
		})
	})

	r.POST("/orchestrate", h.Orchestrate)
	r.POST("/api/orchestrate", h.Orchestrate)
	r.POST("/api/chat", h.Ask)
	r.POST("/api/ask", h.Ask)
	r.POST("/api/cron/weekly_reminder", h.WeeklyReminder)

	r.GET("/health", h.Health)
	r.GET("/crews", h.Crews)
	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.GET("/api/usage", h.GetUsage)

	r.POST("/generate_report", h.GenerateReport)
	r.POST("/api/report", h.GenerateReport)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
