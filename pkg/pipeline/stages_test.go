package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/arnavshah/orchestrator-api-go/pkg/audit"
	"github.com/arnavshah/orchestrator-api-go/pkg/backend"
	"github.com/arnavshah/orchestrator-api-go/pkg/models"
)

func availabilityServer(t *testing.T, entries []models.AvailabilityEntry) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/availability" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(entries)
	}))
}

func TestAvailability_NoDateShortCircuits(t *testing.T) {
	// No backend client at all: the stage must not touch the network when
	// the context carries no date.
	s := NewStages(nil, audit.NewLog(), nil)

	out, err := s.Availability().Run(context.Background(), Context{})
	if err != nil {
		t.Fatalf("Availability failed: %v", err)
	}
	entries, ok := out["availability"].([]models.AvailabilityEntry)
	if !ok || len(entries) != 0 {
		t.Errorf("Expected empty availability list, got %v", out["availability"])
	}
}

func TestAvailability_BackendErrorIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewStages(backend.New(srv.URL, nil), audit.NewLog(), nil)
	_, err := s.Availability().Run(context.Background(), Context{"date": "2025-05-21"})
	if err == nil {
		t.Fatal("Expected availability failure to propagate")
	}
}

func TestShiftMatch_OneMatchPerEntry(t *testing.T) {
	s := NewStages(nil, audit.NewLog(), nil)
	pc := Context{
		"date": "2025-05-21",
		"availability": []models.AvailabilityEntry{
			{StaffID: "1", StaffName: "Alice", AssignedHours: 2, AvailableHours: 6},
			{StaffID: "2", StaffName: "Bob", AssignedHours: 0, AvailableHours: 0},
		},
	}

	out, err := s.ShiftMatch().Run(context.Background(), pc)
	if err != nil {
		t.Fatalf("ShiftMatch failed: %v", err)
	}
	matches := out["matches"].([]models.Match)
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	if matches[0].AssignedHours != 6 {
		t.Errorf("Expected assigned hours to equal available hours, got %d", matches[0].AssignedHours)
	}
	if matches[1].AssignedHours != 0 {
		t.Errorf("Expected zero-availability entry to emit a zero-hour match, got %d", matches[1].AssignedHours)
	}
}

func TestShiftMatchEnhanced_CrossProductWithOverrides(t *testing.T) {
	s := NewStages(nil, audit.NewLog(), nil)
	pc := Context{
		"date": "2025-05-21",
		"matchedStaff": []models.Staff{
			{ID: "1", Name: "Alice"},
			{ID: "2", Name: "Bob"},
		},
		"matchedProjects": []models.Project{
			{ID: "p1", Name: "Alpha"},
			{ID: "p2", Name: "Beta"},
		},
		"hours": []int{4, 6},
	}

	out, err := s.ShiftMatchEnhanced().Run(context.Background(), pc)
	if err != nil {
		t.Fatalf("ShiftMatchEnhanced failed: %v", err)
	}
	matches := out["matches"].([]models.Match)
	if len(matches) != 4 {
		t.Fatalf("Expected staff x project cross product of 4, got %d", len(matches))
	}
	// Hour overrides track project position.
	for _, m := range matches {
		want := 4
		if m.ProjectID == "p2" {
			want = 6
		}
		if m.AssignedHours != want {
			t.Errorf("Expected %d hours on %s, got %d", want, m.ProjectName, m.AssignedHours)
		}
	}
}

func TestShiftMatchEnhanced_SingleHourAppliesToAllProjects(t *testing.T) {
	s := NewStages(nil, audit.NewLog(), nil)
	pc := Context{
		"date":         "2025-05-21",
		"matchedStaff": []models.Staff{{ID: "1", Name: "Alice"}},
		"matchedProjects": []models.Project{
			{ID: "p1", Name: "Alpha"},
			{ID: "p2", Name: "Beta"},
		},
		"hours": []int{5},
	}

	out, err := s.ShiftMatchEnhanced().Run(context.Background(), pc)
	if err != nil {
		t.Fatalf("ShiftMatchEnhanced failed: %v", err)
	}
	for _, m := range out["matches"].([]models.Match) {
		if m.AssignedHours != 5 {
			t.Errorf("Expected the single hour figure on every project, got %d on %s", m.AssignedHours, m.ProjectName)
		}
	}
}

func TestShiftMatchEnhanced_FallsBackWithoutTargeting(t *testing.T) {
	s := NewStages(nil, audit.NewLog(), nil)
	pc := Context{
		"date": "2025-05-21",
		"availability": []models.AvailabilityEntry{
			{StaffID: "1", StaffName: "Alice", AvailableHours: 6},
		},
	}

	out, err := s.ShiftMatchEnhanced().Run(context.Background(), pc)
	if err != nil {
		t.Fatalf("ShiftMatchEnhanced failed: %v", err)
	}
	matches := out["matches"].([]models.Match)
	if len(matches) != 1 || matches[0].AssignedHours != 6 {
		t.Errorf("Expected baseline matching without staff constraints, got %v", matches)
	}
}

func TestConflictResolve_FiltersAndIsIdempotent(t *testing.T) {
	s := NewStages(nil, audit.NewLog(), nil)
	pc := Context{
		"matches": []models.Match{
			{StaffID: "1", AssignedHours: 6},
			{StaffID: "2", AssignedHours: 0},
			{StaffID: "3", AssignedHours: -1},
		},
	}

	out, err := s.ConflictResolve().Run(context.Background(), pc)
	if err != nil {
		t.Fatalf("ConflictResolve failed: %v", err)
	}
	resolved := out["resolvedMatches"].([]models.Match)
	if len(resolved) != 1 || resolved[0].StaffID != "1" {
		t.Fatalf("Expected only positive-hour matches, got %v", resolved)
	}

	// Running the filter over its own output changes nothing.
	pc["matches"] = resolved
	again, err := s.ConflictResolve().Run(context.Background(), pc)
	if err != nil {
		t.Fatalf("ConflictResolve failed on second pass: %v", err)
	}
	if !reflect.DeepEqual(again["resolvedMatches"], resolved) {
		t.Errorf("Expected idempotent filter, got %v", again["resolvedMatches"])
	}
}

func TestNotify_MessageTemplate(t *testing.T) {
	s := NewStages(nil, audit.NewLog(), nil)
	pc := Context{
		"date": "2025-05-21",
		"matches": []models.Match{
			{StaffID: "1", StaffName: "Alice", AssignedHours: 6, Date: "2025-05-21"},
		},
	}

	out, err := s.Notify().Run(context.Background(), pc)
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	notes := out["notifications"].([]models.Notification)
	if len(notes) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notes))
	}
	want := "Alice assigned 6 hours on 2025-05-21"
	if notes[0].Message != want {
		t.Errorf("Expected %q, got %q", want, notes[0].Message)
	}
}

func TestNotify_PrefersResolvedMatches(t *testing.T) {
	s := NewStages(nil, audit.NewLog(), nil)
	pc := Context{
		"date": "2025-05-21",
		"matches": []models.Match{
			{StaffID: "1", StaffName: "Alice", AssignedHours: 6},
			{StaffID: "2", StaffName: "Bob", AssignedHours: 0},
		},
		"resolvedMatches": []models.Match{
			{StaffID: "1", StaffName: "Alice", AssignedHours: 6},
		},
	}

	out, err := s.Notify().Run(context.Background(), pc)
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	notes := out["notifications"].([]models.Notification)
	if len(notes) != 1 || notes[0].StaffName != "Alice" {
		t.Errorf("Expected notifications only for resolved matches, got %v", notes)
	}
}

func TestNotify_FallsBackToStaffID(t *testing.T) {
	s := NewStages(nil, audit.NewLog(), nil)
	pc := Context{
		"matches": []models.Match{{StaffID: "42", AssignedHours: 3, Date: "2025-05-21"}},
	}

	out, err := s.Notify().Run(context.Background(), pc)
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	notes := out["notifications"].([]models.Notification)
	want := "42 assigned 3 hours on 2025-05-21"
	if notes[0].Message != want {
		t.Errorf("Expected %q, got %q", want, notes[0].Message)
	}
}

func TestAuditLog_ArchivesSnapshot(t *testing.T) {
	log := audit.NewLog()
	s := NewStages(nil, log, nil)
	pc := Context{"date": "2025-05-21", "query": "q"}

	out, err := s.AuditLog().Run(context.Background(), pc)
	if err != nil {
		t.Fatalf("AuditLog failed: %v", err)
	}
	entries, ok := out["auditLog"].([]audit.Entry)
	if !ok || len(entries) != 1 {
		t.Fatalf("Expected 1 audit entry in context, got %v", out["auditLog"])
	}
	if entries[0]["date"] != "2025-05-21" {
		t.Errorf("Expected archived snapshot to carry the context fields, got %v", entries[0])
	}
	if log.Len() != 1 {
		t.Errorf("Expected the shared log to hold the entry, got %d", log.Len())
	}
}

func TestBaseline_EndToEnd(t *testing.T) {
	srv := availabilityServer(t, []models.AvailabilityEntry{
		{StaffID: "1", StaffName: "Alice", AssignedHours: 2, AvailableHours: 6},
	})
	defer srv.Close()

	s := NewStages(backend.New(srv.URL, nil), audit.NewLog(), nil)
	out, err := s.Baseline().Run(context.Background(), Context{"date": "2025-05-21"})
	if err != nil {
		t.Fatalf("Baseline run failed: %v", err)
	}

	matches := out.Matches()
	resolved := out.ResolvedMatches()
	if len(matches) != 1 || len(resolved) != 1 {
		t.Fatalf("Expected 1 match and 1 resolved match, got %d and %d", len(matches), len(resolved))
	}
	if !reflect.DeepEqual(matches, resolved) {
		t.Errorf("Expected conflict-free matches to pass through unchanged")
	}

	notes := out.Notifications()
	if len(notes) != 1 || notes[0].Message != "Alice assigned 6 hours on 2025-05-21" {
		t.Errorf("Expected notification for Alice, got %v", notes)
	}

	entries, _ := out["auditLog"].([]audit.Entry)
	if len(entries) != 1 {
		t.Errorf("Expected 1 audit entry, got %d", len(entries))
	}
}

func TestBaseline_AskModeEmptyResults(t *testing.T) {
	s := NewStages(nil, audit.NewLog(), nil)
	out, err := s.Baseline().Run(context.Background(), Context{"query": "is Alice free?"})
	if err != nil {
		t.Fatalf("Baseline run failed: %v", err)
	}
	if len(out.Matches()) != 0 || len(out.Notifications()) != 0 {
		t.Errorf("Expected empty results without a date, got %v", out)
	}
	if _, ok := out["resolvedMatches"]; !ok {
		t.Error("Expected resolvedMatches key even when empty")
	}
}
