// Package processing validates pipeline outputs against the response shape
// contract for their mode before they leave the service.
package processing

import (
	"fmt"
	"strings"

	"github.com/arnavshah/orchestrator-api-go/pkg/models"
	"github.com/arnavshah/orchestrator-api-go/pkg/pipeline"
)

// ValidationError is a shape violation; handlers surface it as a 500 naming
// what is missing.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string { return e.Detail }

// Keys every baseline stage pipeline response must carry.
var requiredPipelineKeys = []string{
	"availability", "matches", "notifications", "resolvedMatches", "auditLog",
}

// ValidatePipelineOutput enforces the response contract. Ask-style payloads
// need a "response" or "content" field; pass-through payloads (errors,
// agent-produced results carrying queryIntent/data/parsed) get minimal
// validation; everything else is a baseline pipeline result and must carry
// the full key set with well-formed resolved matches.
func ValidatePipelineOutput(result pipeline.Context) error {
	if result == nil {
		return &ValidationError{Detail: "pipeline produced no output"}
	}

	// Informational error payloads pass through unchanged.
	if _, ok := result["error"]; ok {
		return nil
	}

	// Ask-mode shape: a response or content field is the whole contract.
	if _, ok := result["response"]; ok {
		return nil
	}
	if _, ok := result["content"]; ok {
		return nil
	}

	// Agent-produced payloads are validated only minimally.
	for _, key := range []string{"queryIntent", "data", "parsed"} {
		if _, ok := result[key]; ok {
			return nil
		}
	}

	var missing []string
	for _, key := range requiredPipelineKeys {
		if _, ok := result[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{
			Detail: fmt.Sprintf("pipeline output missing keys: %s", strings.Join(missing, ", ")),
		}
	}

	for _, m := range result.ResolvedMatches() {
		if m.StaffID == "" {
			return &ValidationError{
				Detail: fmt.Sprintf("resolved match missing staffId: %+v", m),
			}
		}
	}
	return nil
}

// ValidMatch reports whether a match carries the fields the assignment
// writer needs. Exposed separately so the writer can skip bad matches
// individually instead of failing the batch.
func ValidMatch(m models.Match) bool {
	return m.StaffID != "" && m.AssignedHours > 0
}
