package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSequence_MergesStageOutputs(t *testing.T) {
	seq := NewSequence("test", nil,
		Stage{Name: "first", Run: func(ctx context.Context, pc Context) (Context, error) {
			return Context{"a": 1}, nil
		}},
		Stage{Name: "second", Run: func(ctx context.Context, pc Context) (Context, error) {
			if pc["a"] != 1 {
				t.Errorf("Expected second stage to see first stage's output, got %v", pc["a"])
			}
			return Context{"b": 2}, nil
		}},
	)

	out, err := seq.Run(context.Background(), Context{"seed": "x"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out["seed"] != "x" || out["a"] != 1 || out["b"] != 2 {
		t.Errorf("Expected accumulated context, got %v", out)
	}
}

func TestSequence_DoesNotMutateSeed(t *testing.T) {
	seq := NewSequence("test", nil,
		Stage{Name: "write", Run: func(ctx context.Context, pc Context) (Context, error) {
			return Context{"written": true}, nil
		}},
	)

	seed := Context{"date": "2025-05-21"}
	if _, err := seq.Run(context.Background(), seed); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, ok := seed["written"]; ok {
		t.Error("Expected seed context to stay untouched")
	}
}

func TestSequence_StageErrorAborts(t *testing.T) {
	boom := errors.New("backend down")
	ran := false
	seq := NewSequence("test", nil,
		Stage{Name: "failing", Run: func(ctx context.Context, pc Context) (Context, error) {
			return nil, boom
		}},
		Stage{Name: "after", Run: func(ctx context.Context, pc Context) (Context, error) {
			ran = true
			return Context{}, nil
		}},
	)

	out, err := seq.Run(context.Background(), Context{})
	if err == nil {
		t.Fatal("Expected run to fail")
	}
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped stage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "failing") {
		t.Errorf("Expected error to name the stage, got %q", err)
	}
	if out != nil {
		t.Errorf("Expected nil context on failure, got %v", out)
	}
	if ran {
		t.Error("Expected later stages to be skipped after a failure")
	}
}

func TestContext_CloneIsIndependent(t *testing.T) {
	orig := Context{"query": "q"}
	clone := orig.Clone()
	clone["query"] = "changed"
	clone["extra"] = 1

	if orig["query"] != "q" {
		t.Errorf("Expected original untouched, got %v", orig["query"])
	}
	if _, ok := orig["extra"]; ok {
		t.Error("Expected clone writes to stay in the clone")
	}
}

func TestContext_TypedAccessorsOnMissingKeys(t *testing.T) {
	pc := Context{}
	if got := pc.Matches(); len(got) != 0 {
		t.Errorf("Expected empty matches, got %v", got)
	}
	if got := pc.Notifications(); len(got) != 0 {
		t.Errorf("Expected empty notifications, got %v", got)
	}
	if got := pc.String("date"); got != "" {
		t.Errorf("Expected empty string, got %q", got)
	}
}

func TestContext_StringIgnoresWrongType(t *testing.T) {
	pc := Context{"date": 42}
	if got := pc.String("date"); got != "" {
		t.Errorf("Expected empty string for non-string value, got %q", got)
	}
}
