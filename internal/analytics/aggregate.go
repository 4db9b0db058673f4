package analytics

import (
	"sort"
	"time"

	"blog-platform/internal/models"
)

// Events may arrive out of order or duplicated, so sessions are rebuilt by
// reduction over the full event set rather than tracked statefully: per
// session id the earliest startView and the latest endView bound the
// session.
type viewSession struct {
	start    time.Time
	end      time.Time
	hasStart bool
	hasEnd   bool
}

func utcDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// dailyViews counts startView events per UTC calendar day, ascending.
// Incomplete sessions count: a view happened whether or not it ended.
func dailyViews(events []*models.ViewEvent) []models.DailyViews {
	counts := make(map[time.Time]int)
	for _, event := range events {
		if event.Action != models.ActionStartView {
			continue
		}
		counts[utcDay(event.Date)]++
	}

	days := make([]time.Time, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	result := make([]models.DailyViews, 0, len(days))
	for _, day := range days {
		result = append(result, models.DailyViews{Day: day, Views: counts[day]})
	}
	return result
}

// dailyDurations pairs events by session id, drops sessions missing either
// bound, and groups the resulting durations by the UTC day the session
// started. Sessions whose end precedes their start (clock skew between the
// two events) are excluded rather than clamped.
func dailyDurations(events []*models.ViewEvent) []models.DailyDuration {
	sessions := make(map[string]*viewSession)
	for _, event := range events {
		s, ok := sessions[event.Session]
		if !ok {
			s = &viewSession{}
			sessions[event.Session] = s
		}
		switch event.Action {
		case models.ActionStartView:
			if !s.hasStart || event.Date.Before(s.start) {
				s.start = event.Date
				s.hasStart = true
			}
		case models.ActionEndView:
			if !s.hasEnd || event.Date.After(s.end) {
				s.end = event.Date
				s.hasEnd = true
			}
		}
	}

	type bucket struct {
		total int64
		count int
	}
	buckets := make(map[time.Time]*bucket)
	for _, s := range sessions {
		if !s.hasStart || !s.hasEnd {
			continue
		}
		duration := s.end.Sub(s.start).Milliseconds()
		if duration < 0 {
			continue
		}
		day := utcDay(s.start)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.total += duration
		b.count++
	}

	days := make([]time.Time, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	result := make([]models.DailyDuration, 0, len(days))
	for _, day := range days {
		b := buckets[day]
		result = append(result, models.DailyDuration{
			Day:               day,
			AverageDurationMs: float64(b.total) / float64(b.count),
			TotalDurationMs:   b.total,
			SessionCount:      b.count,
		})
	}
	return result
}
