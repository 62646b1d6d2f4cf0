package utils

import (
	"time"

	"chartintel/internal/types"
)

// NextRun returns the first firing of schedule strictly after now, in UTC.
// Hourly schedules are interval based, so now is taken as the previous run.
func NextRun(schedule types.Schedule, now time.Time) time.Time {
	now = now.UTC()

	switch schedule {
	case types.Hourly:
		return now.Add(time.Hour)
	case types.Daily:
		return nextDaily(now, 2)
	case types.DailyProcessing:
		return nextDaily(now, 3)
	case types.Weekly:
		next := atHour(now, 4)
		for next.Weekday() != time.Sunday || !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
		return next
	default:
		return time.Time{}
	}
}

func nextDaily(now time.Time, hour int) time.Time {
	next := atHour(now, hour)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func atHour(now time.Time, hour int) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
}
