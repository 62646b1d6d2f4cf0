package utils

import "time"

// Release date precisions reported by the streaming catalog.
const (
	PrecisionYear  = "year"
	PrecisionMonth = "month"
	PrecisionDay   = "day"
)

// ParseReleaseDate parses a catalog release date of year, month or day
// precision. Missing parts default to the first of the period. An empty or
// unparseable value returns nil.
func ParseReleaseDate(value, precision string) *time.Time {
	if value == "" {
		return nil
	}

	layouts := []string{"2006-01-02", "2006-01", "2006"}
	switch precision {
	case PrecisionYear:
		layouts = []string{"2006"}
	case PrecisionMonth:
		layouts = []string{"2006-01"}
	case PrecisionDay:
		layouts = []string{"2006-01-02"}
	}

	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed
		}
	}

	return nil
}
