package aggregate

import (
	"sort"

	"github.com/boshu2/vigilo/internal/event"
)

// TimelineBucket aggregates one calendar date's worth of events (spec
// §4.9).
type TimelineBucket struct {
	Date   string // YYYY-MM-DD
	Counts EventCounts
}

// BuildTimeline buckets events by the date prefix of their timestamp,
// returned sorted by date ascending.
func BuildTimeline(events []*event.Event) []TimelineBucket {
	byDate := make(map[string][]*event.Event)
	for _, e := range events {
		date := dateOf(e.Timestamp)
		byDate[date] = append(byDate[date], e)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := make([]TimelineBucket, 0, len(dates))
	for _, d := range dates {
		out = append(out, TimelineBucket{Date: d, Counts: FromEvents(byDate[d])})
	}
	return out
}

func dateOf(timestamp string) string {
	if len(timestamp) < 10 {
		return timestamp
	}
	return timestamp[:10]
}
