package parser

import (
	"fmt"
	"testing"
	"time"
)

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func TestParse_BookingCommand(t *testing.T) {
	cmd := Parse("can you book 8 hrs for Merrin for Youssef Sharma on 21st May?")

	if cmd.DefaultHours() != 8 {
		t.Errorf("Expected 8 hours, got %d", cmd.DefaultHours())
	}

	wantDate := fmt.Sprintf("%d-05-21", time.Now().Year())
	if cmd.Date != wantDate {
		t.Errorf("Expected date %s, got %q", wantDate, cmd.Date)
	}

	if !containsString(cmd.StaffNames, "Youssef Sharma") {
		t.Errorf("Expected staff candidates to include Youssef Sharma, got %v", cmd.StaffNames)
	}
	if !containsString(cmd.ProjectNames, "Merrin") {
		t.Errorf("Expected project candidates to include Merrin, got %v", cmd.ProjectNames)
	}
}

func TestParse_MonthDayOrder(t *testing.T) {
	cmd := Parse("Schedule John Smith on Project Alpha for 6 hours on May 15th")

	if cmd.DefaultHours() != 6 {
		t.Errorf("Expected 6 hours, got %d", cmd.DefaultHours())
	}
	wantDate := fmt.Sprintf("%d-05-15", time.Now().Year())
	if cmd.Date != wantDate {
		t.Errorf("Expected date %s, got %q", wantDate, cmd.Date)
	}
	if !containsString(cmd.StaffNames, "John Smith") {
		t.Errorf("Expected staff candidates to include John Smith, got %v", cmd.StaffNames)
	}
	if !containsString(cmd.ProjectNames, "Alpha") {
		t.Errorf("Expected project candidates to include Alpha, got %v", cmd.ProjectNames)
	}
}

func TestParse_ExplicitYear(t *testing.T) {
	cmd := Parse("book 4 hrs for Maria Lopez on 2nd June 2026")
	if cmd.Date != "2026-06-02" {
		t.Errorf("Expected 2026-06-02, got %q", cmd.Date)
	}
}

func TestParse_InvalidDateDropped(t *testing.T) {
	cmd := Parse("book 4 hrs for Alice Jones on 31st February")
	if cmd.Date != "" {
		t.Errorf("Expected invalid calendar date to be dropped, got %q", cmd.Date)
	}
}

func TestParse_DefaultsWhenNothingMatches(t *testing.T) {
	cmd := Parse("hello there")
	if cmd.DefaultHours() != 8 {
		t.Errorf("Expected default of 8 hours, got %d", cmd.DefaultHours())
	}
	if cmd.Date != "" {
		t.Errorf("Expected no date, got %q", cmd.Date)
	}
	if len(cmd.StaffNames) != 0 || len(cmd.ProjectNames) != 0 {
		t.Errorf("Expected no names, got staff=%v projects=%v", cmd.StaffNames, cmd.ProjectNames)
	}
}

func TestParse_MultipleHourFigures(t *testing.T) {
	cmd := Parse("book 4 hrs on Alpha and 6 hrs on Beta for Dana White on 3rd March")
	if len(cmd.Hours) != 2 || cmd.Hours[0] != 4 || cmd.Hours[1] != 6 {
		t.Fatalf("Expected hours [4 6], got %v", cmd.Hours)
	}
	if cmd.HoursFor(0) != 4 || cmd.HoursFor(1) != 6 {
		t.Errorf("Expected per-index overrides 4 and 6, got %d and %d", cmd.HoursFor(0), cmd.HoursFor(1))
	}
	if cmd.HoursFor(5) != 4 {
		t.Errorf("Expected out-of-range index to fall back to default 4, got %d", cmd.HoursFor(5))
	}
}

func TestParse_MonthNameExcludedFromProjects(t *testing.T) {
	cmd := Parse("book 8 hours for Sam Reed on 21st May")
	if containsString(cmd.ProjectNames, "May") {
		t.Errorf("Month name leaked into project candidates: %v", cmd.ProjectNames)
	}
}

func TestRuleNames_Order(t *testing.T) {
	want := []string{"hours", "date", "projectNames", "staffNames"}
	got := RuleNames()
	if len(got) != len(want) {
		t.Fatalf("Expected %d rules, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Rule %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestParseDates_Compound(t *testing.T) {
	dates := ParseDates("May 21 and 22")
	year := time.Now().Year()
	want := []string{
		fmt.Sprintf("%d-05-21", year),
		fmt.Sprintf("%d-05-22", year),
	}
	if len(dates) != 2 || dates[0] != want[0] || dates[1] != want[1] {
		t.Errorf("Expected %v, got %v", want, dates)
	}
}

func TestParseDates_SingleDate(t *testing.T) {
	dates := ParseDates("21st May 2025")
	if len(dates) != 1 || dates[0] != "2025-05-21" {
		t.Errorf("Expected [2025-05-21], got %v", dates)
	}
}

func TestParseDates_NoDate(t *testing.T) {
	if dates := ParseDates("sometime soon"); dates != nil {
		t.Errorf("Expected nil for unparsable expression, got %v", dates)
	}
}
