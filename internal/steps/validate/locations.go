// internal/steps/validate/locations.go
package validate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// cityAirports covers the common cities so the usual conversations never
// need a model round-trip.
var cityAirports = map[string]string{
	"new york": "JFK", "nyc": "JFK", "new york city": "JFK",
	"los angeles": "LAX", "la": "LAX",
	"chicago": "ORD", "london": "LHR", "paris": "CDG",
	"tokyo": "NRT", "dubai": "DXB", "amsterdam": "AMS",
	"frankfurt": "FRA", "madrid": "MAD", "rome": "FCO",
	"barcelona": "BCN", "milan": "MXP", "zurich": "ZRH",
	"cairo": "CAI",
}

var iataPattern = regexp.MustCompile(`\b[A-Z]{3}\b`)

// resolveLocation maps free text to a 3-letter code. Priority order: exact
// 3-alpha passthrough, static city table, model lookup, first three letters.
func (h *Handler) resolveLocation(ctx context.Context, location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return ""
	}

	if len(location) == 3 && isAlpha(location) {
		return strings.ToUpper(location)
	}

	if code, ok := cityAirports[strings.ToLower(location)]; ok {
		return code
	}

	if code := h.modelLookup(ctx, location); code != "" {
		return code
	}

	runes := []rune(location)
	return strings.ToUpper(string(runes[:min(3, len(runes))]))
}

func (h *Handler) modelLookup(ctx context.Context, location string) string {
	if h.llm == nil {
		return ""
	}

	prompt := fmt.Sprintf(`Convert this city or location to its primary IATA airport code: %q

Rules:
- Return ONLY the 3-letter IATA airport code
- For cities with multiple airports, return the main international airport
- Examples: "New York" is JFK, "Los Angeles" is LAX, "London" is LHR, "Paris" is CDG

Airport code:`, location)

	response, err := h.llm.Complete(ctx, prompt)
	if err != nil {
		h.logger.Warn("airport-code lookup failed", map[string]interface{}{
			"location": location,
			"error":    err.Error(),
		})
		return ""
	}

	response = strings.ToUpper(strings.TrimSpace(response))
	if code := iataPattern.FindString(response); code != "" {
		return code
	}
	if len(response) == 3 && isAlpha(response) {
		return response
	}
	return ""
}

// NormalizeCabin maps a free-text cabin description to the provider's
// categorical codes, defaulting to ECONOMY.
func NormalizeCabin(cabin string) string {
	lower := strings.ToLower(cabin)
	switch {
	case strings.Contains(lower, "first"):
		return "FIRST_CLASS"
	case strings.Contains(lower, "business"), strings.Contains(lower, "biz"):
		return "BUSINESS"
	default:
		return "ECONOMY"
	}
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
