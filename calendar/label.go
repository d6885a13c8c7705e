package calendar

import (
	"fmt"
	"regexp"
	"strings"
)

var yearToken = regexp.MustCompile(`\b\d{4}\b`)

// Label carries the two-tier name of a calendar day. Display is the
// human-readable label as fetched or generated, possibly embedding a region
// name and a year ("osterferien niedersachsen 2024"). TypeKey is Display
// with exactly one 4-digit year token and the region name stripped,
// lower-cased and trimmed, and is the unit of cross-year matching. Matching
// on the full display label would never match across years since the label
// embeds the year it was fetched for.
type Label struct {
	Display string `json:"display"`
	TypeKey string `json:"type_key"`
}

// NewLabel builds a Label for a display string resolved for the given
// region.
func NewLabel(display string, region Region) Label {
	return Label{
		Display: display,
		TypeKey: typeKey(display, region),
	}
}

func typeKey(display string, region Region) string {
	key := strings.ToLower(display)
	key = yearToken.ReplaceAllStringFunc(key, replaceOnce())
	key = strings.ReplaceAll(key, strings.ToLower(region.DisplayName()), " ")
	return strings.Join(strings.Fields(key), " ")
}

// replaceOnce returns a replacement func that blanks only the first match.
func replaceOnce() func(string) string {
	done := false
	return func(m string) string {
		if done {
			return m
		}
		done = true
		return " "
	}
}

// normalizeDisplay ensures a school-holiday display label carries both the
// region name and the year, mirroring how the upstream holiday sources name
// their periods. Labels that already embed either token are not doubled.
func normalizeDisplay(name string, region Region, year int) string {
	nameLower := strings.ToLower(strings.TrimSpace(name))
	regionName := strings.ToLower(region.DisplayName())
	yearStr := fmt.Sprintf("%d", year)

	hasRegion := strings.Contains(nameLower, regionName)
	hasYear := strings.Contains(nameLower, yearStr)

	switch {
	case !hasRegion && !hasYear:
		return fmt.Sprintf("%s %s %s", nameLower, regionName, yearStr)
	case !hasRegion:
		stripped := strings.Join(strings.Fields(strings.ReplaceAll(nameLower, yearStr, " ")), " ")
		return fmt.Sprintf("%s %s %s", stripped, regionName, yearStr)
	case !hasYear:
		return fmt.Sprintf("%s %s", nameLower, yearStr)
	default:
		return nameLower
	}
}
