// internal/steps/format/duration.go
package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?$`)

// FormatDuration converts an ISO-8601 duration (PT8H15M) to human units.
// Anything unrecognized comes back as "N/A".
func FormatDuration(iso string) string {
	m := isoDurationPattern.FindStringSubmatch(iso)
	if m == nil {
		return "N/A"
	}

	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])

	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	}
	return "N/A"
}

// formatClock renders an ISO timestamp as local clock time (HH:MM).
func formatClock(iso string) string {
	if iso == "" {
		return "N/A"
	}
	iso = strings.Replace(iso, "Z", "+00:00", 1)
	for _, layout := range []string{"2006-01-02T15:04:05-07:00", "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if ts, err := time.Parse(layout, iso); err == nil {
			return ts.Format("15:04")
		}
	}
	return iso
}
