package orchestrator

import "strings"

// Mode is the closed set of request classifications. Dispatch switches over
// the concrete types, so adding a mode means adding a case here rather than
// extending a string comparison chain.
type Mode interface {
	mode()
}

// Ask answers informational questions against the backend.
type Ask struct{}

// Command parses a free-text scheduling command and runs the full pipeline.
// Intent optionally selects a task template within command handling.
type Command struct {
	Intent string
}

// Cron runs the fixed, parameterless weekly reminder sub-pipeline.
type Cron struct{}

func (Ask) mode()     {}
func (Command) mode() {}
func (Cron) mode()    {}

// Classify maps the wire-level mode string onto a Mode. It is total:
// unrecognized values, including empty, classify as Ask so every request
// gets at least the QA-style fallback response.
func Classify(mode, intent string) Mode {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "command", "schedule", "agent":
		return Command{Intent: intent}
	case "cron":
		return Cron{}
	default:
		return Ask{}
	}
}
