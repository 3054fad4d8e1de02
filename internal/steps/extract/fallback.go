// internal/steps/extract/fallback.go
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/SaiffMoh/FastTravelGraph/internal/models"
)

var (
	isoDatePattern  = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	monthDayPattern = regexp.MustCompile(`\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	dayMonthPattern = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b`)
	bareDayPattern  = regexp.MustCompile(`\bon the (\d{1,2})(?:st|nd|rd|th)?\b`)
	durationPattern = regexp.MustCompile(`\b(\d+)\s*(?:days?|nights?)\b`)
	fromCityPattern = regexp.MustCompile(`\bfrom\s+([a-z][a-z .']*?)(?:\s+(?:to|on|in|for)\b|[,.!?]|$)`)
	toCityPattern   = regexp.MustCompile(`\b(?:flying to|fly to|to)\s+([a-z][a-z .']*?)(?:\s+(?:from|on|in|for)\b|[,.!?]|$)`)

	// "I want to fly to Paris": the infinitive would otherwise be captured
	// as the destination, so it is stripped before matching.
	infinitivePattern = regexp.MustCompile(`\bto\s+(?:fly|go|travel|book|head|depart|leave)\b`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ruleExtract is the deterministic fallback path. It only ever fills fields
// it can read with confidence and asks for the highest-priority missing one.
// Like the model path it reads the whole conversation, not only the latest
// message: fields supplied on earlier turns survive a model outage. Messages
// are scanned oldest-first so a later mention wins.
func (h *Handler) ruleExtract(state *models.ConversationState) *Result {
	result := &Result{}

	for _, m := range state.Conversation {
		if m.Role == "user" {
			h.ruleScan(m.Content, result)
		}
	}
	h.ruleScan(state.CurrentMessage, result)

	missing := missingAfter(state, result)
	if len(missing) > 0 {
		result.NeedsFollowup = true
		question := FollowupFor(missing[0])
		result.FollowupQuestion = &question
	} else {
		result.InfoComplete = true
	}

	return result
}

// ruleScan runs every field pattern over one message, overwriting whatever an
// earlier message produced.
func (h *Handler) ruleScan(message string, result *Result) {
	text := infinitivePattern.ReplaceAllString(strings.ToLower(message), "")

	if date := parseDate(text, h.now()); date != "" {
		result.DepartureDate = &date
	}

	if m := durationPattern.FindStringSubmatch(text); m != nil {
		if days, err := strconv.Atoi(m[1]); err == nil && days > 0 && days <= 365 {
			result.Duration = &days
		}
	}

	if cabin := parseCabin(text); cabin != "" {
		result.CabinClass = &cabin
	}

	if m := fromCityPattern.FindStringSubmatch(text); m != nil {
		origin := strings.TrimSpace(m[1])
		result.Origin = &origin
	}
	if m := toCityPattern.FindStringSubmatch(text); m != nil {
		destination := strings.TrimSpace(m[1])
		result.Destination = &destination
	}
}

// parseDate resolves a date mention to YYYY-MM-DD. A date without a year
// assumes the current year unless that month/day has passed, rolling to next
// year. A bare day assumes the current month unless the day has passed,
// rolling to next month (and across December into the next year).
func parseDate(text string, now time.Time) string {
	if m := isoDatePattern.FindStringSubmatch(text); m != nil {
		if _, err := time.Parse("2006-01-02", m[1]); err == nil {
			return m[1]
		}
	}

	if m := monthDayPattern.FindStringSubmatch(text); m != nil {
		return resolveMonthDay(monthsByPrefix[m[1]], atoi(m[2]), now)
	}
	if m := dayMonthPattern.FindStringSubmatch(text); m != nil {
		return resolveMonthDay(monthsByPrefix[m[2]], atoi(m[1]), now)
	}

	if m := bareDayPattern.FindStringSubmatch(text); m != nil {
		return resolveDay(atoi(m[1]), now)
	}

	return ""
}

func resolveMonthDay(month time.Month, day int, now time.Time) string {
	if day < 1 || day > 31 {
		return ""
	}
	year := now.Year()
	if month < now.Month() || (month == now.Month() && day < now.Day()) {
		year++
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

func resolveDay(day int, now time.Time) string {
	if day < 1 || day > 31 {
		return ""
	}
	year, month := now.Year(), now.Month()
	if day < now.Day() {
		if month == time.December {
			month = time.January
			year++
		} else {
			month++
		}
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

func parseCabin(text string) string {
	switch {
	case strings.Contains(text, "first"):
		return "first class"
	case strings.Contains(text, "business"), strings.Contains(text, "biz"):
		return "business"
	case strings.Contains(text, "economy"), strings.Contains(text, "eco"), strings.Contains(text, "coach"):
		return "economy"
	}
	return ""
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// missingAfter lists required fields still absent once the result is merged
// over the current state, in follow-up priority order.
func missingAfter(state *models.ConversationState, result *Result) []string {
	var missing []string
	if state.Fields.DepartureDate == "" && result.DepartureDate == nil {
		missing = append(missing, "departure_date")
	}
	if state.Fields.Duration == 0 && result.Duration == nil {
		missing = append(missing, "duration")
	}
	if state.Fields.Origin == "" && result.Origin == nil {
		missing = append(missing, "origin")
	}
	if state.Fields.Destination == "" && result.Destination == nil {
		missing = append(missing, "destination")
	}
	if state.Fields.CabinClass == "" && result.CabinClass == nil {
		missing = append(missing, "cabin_class")
	}
	return missing
}
