// Package parser extracts structured scheduling intent from free-text
// commands using an ordered list of named, deterministic extraction rules.
// Parsing never fails: fields a rule cannot extract stay empty.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/arnavshah/orchestrator-api-go/pkg/models"
)

// Rule is one named extraction step. Rules are applied independently over
// the raw text; within a field the first match wins.
type Rule struct {
	Name  string
	apply func(text string, cmd *models.ParsedCommand)
}

var (
	hoursRe = regexp.MustCompile(`(?i)\b(\d+)\s*(?:hrs?|hours?|h)\b`)

	monthAlternation = `january|february|march|april|may|june|july|august|september|october|november|december`

	// "21st May", "21 May 2025"
	dayMonthRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(` + monthAlternation + `)(?:\s+(\d{4}))?\b`)
	// "May 21st", "May 21 2025"
	monthDayRe = regexp.MustCompile(`(?i)\b(` + monthAlternation + `)\s+(\d{1,2})(?:st|nd|rd|th)?(?:\s+(\d{4}))?\b`)

	// Keywords match case-insensitively; the captured name itself must be
	// capitalized. "on Project Alpha" captures Alpha, "for Merrin" Merrin.
	projectPrepositionRe = regexp.MustCompile(`(?i:\b(?:on|for)\s+)(?i:project\s+)?([A-Z][a-zA-Z]+)`)
	projectKeywordRe     = regexp.MustCompile(`(?i:\bproject\s+)([A-Z][a-zA-Z]+)`)

	// Two-or-three capitalized tokens after a scheduling verb or "for",
	// or immediately before "on".
	staffAfterVerbRe = regexp.MustCompile(`(?i:\b(?:book|schedule|for)\s+)([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,2})`)
	staffBeforeOnRe  = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,2})(?i:\s+on\b)`)
)

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// Words a capitalized project-name candidate may never be.
var projectStopwords = map[string]bool{
	"hours": true, "hour": true, "hrs": true, "project": true,
}

func isMonthWord(w string) bool {
	_, ok := months[strings.ToLower(w)]
	return ok
}

func rules() []Rule {
	return []Rule{
		{Name: "hours", apply: extractHours},
		{Name: "date", apply: extractDate},
		{Name: "projectNames", apply: extractProjectNames},
		{Name: "staffNames", apply: extractStaffNames},
	}
}

// RuleNames lists the extraction rules in application order.
func RuleNames() []string {
	rs := rules()
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Name
	}
	return names
}

// Parse extracts a ParsedCommand from raw command text. It never returns an
// error; unparsable fields are left empty (Hours keeps the default of 8
// reachable through ParsedCommand.DefaultHours).
func Parse(text string) models.ParsedCommand {
	cmd := models.ParsedCommand{
		StaffNames:   []string{},
		ProjectNames: []string{},
		Hours:        []int{},
	}
	for _, r := range rules() {
		r.apply(text, &cmd)
	}
	return cmd
}

func extractHours(text string, cmd *models.ParsedCommand) {
	for _, m := range hoursRe.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			cmd.Hours = append(cmd.Hours, n)
		}
	}
}

func extractDate(text string, cmd *models.ParsedCommand) {
	type candidate struct {
		idx              int
		day, month, year string
	}
	var cands []candidate
	if loc := dayMonthRe.FindStringSubmatchIndex(text); loc != nil {
		m := dayMonthRe.FindStringSubmatch(text)
		cands = append(cands, candidate{idx: loc[0], day: m[1], month: m[2], year: m[3]})
	}
	if loc := monthDayRe.FindStringSubmatchIndex(text); loc != nil {
		m := monthDayRe.FindStringSubmatch(text)
		cands = append(cands, candidate{idx: loc[0], day: m[2], month: m[1], year: m[3]})
	}

	// First occurrence in the text wins, regardless of token order.
	best := candidate{idx: -1}
	for _, c := range cands {
		if best.idx < 0 || c.idx < best.idx {
			best = c
		}
	}
	if best.idx < 0 {
		return
	}

	day, err := strconv.Atoi(best.day)
	if err != nil {
		return
	}
	month, ok := months[strings.ToLower(best.month)]
	if !ok {
		return
	}
	year := time.Now().Year()
	if best.year != "" {
		if y, err := strconv.Atoi(best.year); err == nil {
			year = y
		}
	}

	// Invalid day/month combinations (e.g. February 31st) are silently
	// dropped: time.Date normalizes overflow into the next month.
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != month {
		return
	}
	cmd.Date = d.Format("2006-01-02")
}

func extractProjectNames(text string, cmd *models.ParsedCommand) {
	seen := make(map[string]bool)
	for _, re := range []*regexp.Regexp{projectPrepositionRe, projectKeywordRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := m[1]
			lower := strings.ToLower(name)
			if projectStopwords[lower] || isMonthWord(name) {
				continue
			}
			if !seen[lower] {
				seen[lower] = true
				cmd.ProjectNames = append(cmd.ProjectNames, name)
			}
		}
	}
}

func extractStaffNames(text string, cmd *models.ParsedCommand) {
	seen := make(map[string]bool)
	collect := func(matches [][]string) {
		for _, m := range matches {
			name := m[1]
			lower := strings.ToLower(name)
			if !seen[lower] {
				seen[lower] = true
				cmd.StaffNames = append(cmd.StaffNames, name)
			}
		}
	}
	collect(staffAfterVerbRe.FindAllStringSubmatch(text, -1))
	collect(staffBeforeOnRe.FindAllStringSubmatch(text, -1))
}
