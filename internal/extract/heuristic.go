package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"mailcal/internal/classify"
	"mailcal/internal/types"
)

// Deterministic extraction patterns. First match wins everywhere; no
// ranking between multiple date-like substrings.
var (
	// D/M/YYYY
	dateSlashRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	// D Month YYYY, with an optional ordinal suffix
	dateTextRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{4})\b`)
	// H:MM AM/PM (12-hour)
	timeRe = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*(AM|PM)\b`)
	// A label word, then an id token after the next ':' or '#'.
	trackingRe = regexp.MustCompile(`\b(?i:tracking|orders?|confirmation|reference)\b.*?[:#]\s*([A-Z0-9][A-Z0-9-]{2,})\b`)
	// Location text up to a sentence boundary.
	locationRe = regexp.MustCompile(`(?i)\b(?:at|location|venue|address)\b[:\s]+([^.!?\n]+)`)
	// Leading reply/forward prefixes on subjects.
	subjectPrefixRe = regexp.MustCompile(`(?i)^\s*(?:(?:re|fwd?)\s*:\s*)+`)
)

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// HeuristicExtractor is the model-free fallback: regex date, time,
// tracking id and location detection over the email body, with the
// keyword classifier for the category.
type HeuristicExtractor struct{}

// NewHeuristic creates a HeuristicExtractor.
func NewHeuristic() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

// Name implements Extractor.
func (e *HeuristicExtractor) Name() string { return "heuristic" }

// Extract never fails: every signal degrades independently and all
// partial matches (or their absence) are recorded in RawExtractions.
func (e *HeuristicExtractor) Extract(_ context.Context, email *types.Email) (*types.Candidate, error) {
	body := email.Body

	raw := map[string]any{
		"date":        "",
		"time":        "",
		"tracking_id": "",
		"location":    "",
	}

	date, dateMatch := findDate(body)
	raw["date"] = dateMatch

	timeOfDay := timeRe.FindString(body)
	raw["time"] = timeOfDay
	// When both a calendar date and a clock time are present, compose
	// them; a time with no date is diagnostic only.
	if dateMatch != "" && timeOfDay != "" {
		date = composeTime(date, timeOfDay)
	}
	if dateMatch == "" {
		date = time.Now()
	}

	trackingID := ""
	if m := trackingRe.FindStringSubmatch(body); m != nil {
		trackingID = m[1]
		raw["tracking_id"] = m[0]
	}

	location := ""
	if m := locationRe.FindStringSubmatch(body); m != nil {
		location = strings.TrimSpace(m[1])
		raw["location"] = m[0]
	}

	category := classify.Classify(email.Sender, body)
	raw["category"] = category

	return &types.Candidate{
		Title:          subjectPrefixRe.ReplaceAllString(email.Subject, ""),
		Date:           date,
		Location:       location,
		Category:       category,
		Confidence:     HeuristicConfidence,
		TrackingID:     trackingID,
		RawExtractions: raw,
	}, nil
}

// findDate returns the earliest date-like substring in text, trying
// both the D/M/YYYY and the D Month YYYY forms.
func findDate(text string) (time.Time, string) {
	slashIdx := dateSlashRe.FindStringSubmatchIndex(text)
	textIdx := dateTextRe.FindStringSubmatchIndex(text)

	switch {
	case slashIdx == nil && textIdx == nil:
		return time.Time{}, ""
	case textIdx == nil, slashIdx != nil && slashIdx[0] <= textIdx[0]:
		m := dateSlashRe.FindStringSubmatch(text[slashIdx[0]:slashIdx[1]])
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return time.Time{}, ""
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), m[0]
	default:
		m := dateTextRe.FindStringSubmatch(text[textIdx[0]:textIdx[1]])
		day, _ := strconv.Atoi(m[1])
		month := months[strings.ToLower(m[2])]
		year, _ := strconv.Atoi(m[3])
		return time.Date(year, month, day, 0, 0, 0, 0, time.Local), m[0]
	}
}

// composeTime merges a 12-hour clock match into a date.
func composeTime(date time.Time, clock string) time.Time {
	m := timeRe.FindStringSubmatch(clock)
	if m == nil {
		return date
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 12 || minute > 59 {
		return date
	}
	if hour == 12 {
		hour = 0
	}
	if strings.EqualFold(m[3], "PM") {
		hour += 12
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}
