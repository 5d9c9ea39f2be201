// Package pipeline implements the ordered transformation pipeline at the
// core of the orchestrator: five stages threaded over an accumulating
// context, each consuming what earlier stages wrote and extending it.
package pipeline

import (
	"github.com/arnavshah/orchestrator-api-go/pkg/models"
)

// Context is the mutable key-value state threaded through the stages for
// one request. Keys accumulate monotonically: stages overwrite but never
// remove keys written upstream.
type Context map[string]any

// Clone returns a shallow copy. Finalized contexts are archived by value
// through Clone so later requests cannot mutate historical audit entries.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Merge overwrites c with every key of the partial result. Never removes.
func (c Context) Merge(partial Context) {
	for k, v := range partial {
		c[k] = v
	}
}

// String reads a string key; absent or differently-typed values read as "".
func (c Context) String(key string) string {
	s, _ := c[key].(string)
	return s
}

// A stage that depends on a missing upstream key treats it as an empty
// collection, never as an error; these accessors encode that rule.

func (c Context) availability() []models.AvailabilityEntry {
	v, _ := c["availability"].([]models.AvailabilityEntry)
	return v
}

// Matches reads the proposed matches written by ShiftMatch.
func (c Context) Matches() []models.Match {
	v, _ := c["matches"].([]models.Match)
	return v
}

// ResolvedMatches reads the filtered matches written by ConflictResolve.
func (c Context) ResolvedMatches() []models.Match {
	v, _ := c["resolvedMatches"].([]models.Match)
	return v
}

// Notifications reads the messages written by Notify.
func (c Context) Notifications() []models.Notification {
	v, _ := c["notifications"].([]models.Notification)
	return v
}

func (c Context) matchedStaff() []models.Staff {
	v, _ := c["matchedStaff"].([]models.Staff)
	return v
}

func (c Context) matchedProjects() []models.Project {
	v, _ := c["matchedProjects"].([]models.Project)
	return v
}

func (c Context) hours() []int {
	v, _ := c["hours"].([]int)
	return v
}
