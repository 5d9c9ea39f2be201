package parser

import (
	"regexp"
	"strconv"
	"time"
)

var bareDayRe = regexp.MustCompile(`(?i)\band\s+(?:the\s+)?(\d{1,2})(?:st|nd|rd|th)?\b`)

// ParseDate extracts the first valid calendar date from a free-text
// expression, returning it in ISO 8601 form, or "" when none is found.
func ParseDate(text string) string {
	return Parse(text).Date
}

// ParseDates extracts a compound date expression such as "May 21 and 22"
// or "21st and 23rd May": the first fully-specified date anchors the month
// and year, and each following bare "and <day>" reuses them. Invalid days
// are dropped. Returns the dates in order of appearance.
func ParseDates(text string) []string {
	first := ParseDate(text)
	if first == "" {
		return nil
	}
	anchor, err := time.Parse("2006-01-02", first)
	if err != nil {
		return []string{first}
	}

	dates := []string{first}
	seen := map[string]bool{first: true}
	for _, m := range bareDayRe.FindAllStringSubmatch(text, -1) {
		day, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		d := time.Date(anchor.Year(), anchor.Month(), day, 0, 0, 0, 0, time.UTC)
		if d.Day() != day || d.Month() != anchor.Month() {
			continue
		}
		iso := d.Format("2006-01-02")
		if !seen[iso] {
			seen[iso] = true
			dates = append(dates, iso)
		}
	}
	return dates
}
