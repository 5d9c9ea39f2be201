package pipeline

import (
	"context"
	"fmt"
	"log/slog"
)

// Stage is one transformation step: it reads the accumulated context and
// returns a partial context that the runner merges back in.
type Stage struct {
	Name string
	Run  func(ctx context.Context, pc Context) (Context, error)
}

// Runner executes some strategy that turns a seed context into a finished
// one. The deterministic Sequence below is the baseline implementation; the
// crew executor provides an alternate one behind the same interface.
type Runner interface {
	Run(ctx context.Context, seed Context) (Context, error)
}

// Sequence runs stages strictly in order, merging each stage's partial
// output before the next stage starts. A stage error aborts the run.
type Sequence struct {
	Name   string
	Stages []Stage
	Logger *slog.Logger
}

func NewSequence(name string, logger *slog.Logger, stages ...Stage) *Sequence {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sequence{Name: name, Stages: stages, Logger: logger}
}

func (s *Sequence) Run(ctx context.Context, seed Context) (Context, error) {
	pc := seed.Clone()
	for _, stage := range s.Stages {
		partial, err := stage.Run(ctx, pc)
		if err != nil {
			s.Logger.Error("pipeline stage failed",
				"pipeline", s.Name, "stage", stage.Name, "error", err)
			return nil, fmt.Errorf("stage %s: %w", stage.Name, err)
		}
		pc.Merge(partial)
	}
	return pc, nil
}
