package models

import "time"

// Staff represents a staff member record from the backend service
type Staff struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
	Role       string `json:"role,omitempty"`
}

// Project represents a project record from the backend service
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PartnerName string `json:"partner_name,omitempty"`
	TeamLead    string `json:"team_lead,omitempty"`
}

// AvailabilityEntry is one staff member's availability for a single date
type AvailabilityEntry struct {
	StaffID        string `json:"staffId"`
	StaffName      string `json:"staffName,omitempty"`
	AssignedHours  int    `json:"assignedHours"`
	AvailableHours int    `json:"availableHours"`
}

// Match is a proposed staff-to-hours assignment before validity filtering.
// AssignedHours may be zero or negative until ConflictResolve runs.
type Match struct {
	StaffID       string `json:"staffId"`
	StaffName     string `json:"staffName,omitempty"`
	ProjectID     string `json:"projectId,omitempty"`
	ProjectName   string `json:"projectName,omitempty"`
	AssignedHours int    `json:"assignedHours"`
	Date          string `json:"date,omitempty"`
}

// Notification is the human-readable result of one resolved match
type Notification struct {
	StaffID       string `json:"staffId"`
	StaffName     string `json:"staffName"`
	AssignedHours int    `json:"assignedHours"`
	Date          string `json:"date,omitempty"`
	Message       string `json:"message"`
}

// Assignment is a persisted staff-project booking in the backend service
type Assignment struct {
	ID          string `json:"id,omitempty"`
	StaffID     string `json:"staffId"`
	ProjectID   string `json:"projectId"`
	ProjectName string `json:"projectName,omitempty"`
	Date        string `json:"date"`
	Hours       int    `json:"hours"`
}

// ParsedCommand is the structured intent extracted from a free-text command.
// Empty Date means no date was recognized. Hours holds every hour figure in
// the order it appeared; the first one is the request default.
type ParsedCommand struct {
	StaffNames   []string `json:"staffNames"`
	ProjectNames []string `json:"projectNames"`
	Hours        []int    `json:"hours"`
	Date         string   `json:"date,omitempty"`
}

// DefaultHours is the hour figure used when a match has no per-project
// override. Falls back to 8 when the command carried no hour figure at all.
func (p ParsedCommand) DefaultHours() int {
	if len(p.Hours) > 0 {
		return p.Hours[0]
	}
	return 8
}

// HoursFor returns the hour override for the i-th project, or the default
// when the command listed fewer hour figures than projects.
func (p ParsedCommand) HoursFor(i int) int {
	if i >= 0 && i < len(p.Hours) {
		return p.Hours[i]
	}
	return p.DefaultHours()
}

// ConversationTurn is one query/answer exchange in a session's history
type ConversationTurn struct {
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// OrchestrationRequest is the body accepted by the orchestrate endpoints.
// Unknown fields are accepted and ignored by JSON binding.
type OrchestrationRequest struct {
	Date       string   `json:"date,omitempty"`
	Query      string   `json:"query,omitempty"`
	StaffIDs   []string `json:"staffIds,omitempty"`
	ProjectIDs []string `json:"projectIds,omitempty"`
	Department string   `json:"department,omitempty"`
	Hours      int      `json:"hours,omitempty"`
	Mode       string   `json:"mode,omitempty"`
	Intent     string   `json:"intent,omitempty"`
}

// ReportRequest is the body accepted by the report endpoints
type ReportRequest struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Format string `json:"fmt"`
}
