package types

type Schedule int

const (
	Hourly          Schedule = iota
	Daily                    // 02:00 UTC every day
	DailyProcessing          // 03:00 UTC every day, after Daily has refreshed metrics
	Weekly                   // Sunday 04:00 UTC
)

func (s Schedule) String() string {
	switch s {
	case Hourly:
		return "hourly"
	case Daily:
		return "daily"
	case DailyProcessing:
		return "daily-processing"
	case Weekly:
		return "weekly"
	default:
		return "unknown"
	}
}
