package weather

import (
	"sort"
	"time"
)

// AggregateDaily derives a daily timeline from fine-grained slices by grouping
// on the UTC calendar day. For each day: min/max come from each slice's own
// min/max temperature when present, otherwise its point temperature; the
// representative temperature is (min+max)/2; the representative condition is
// taken from the earliest slice of the day (an arbitrary but deterministic
// tie-break). Output slices are stamped at 12:00 UTC of their day and ordered
// ascending. Empty input yields an empty result, not an error.
func AggregateDaily(fine []ForecastSlice) []ForecastSlice {
	if len(fine) == 0 {
		return nil
	}

	byDay := make(map[string][]ForecastSlice)
	for _, s := range fine {
		day := s.Timestamp.UTC().Format("2006-01-02")
		byDay[day] = append(byDay[day], s)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	daily := make([]ForecastSlice, 0, len(days))
	for _, day := range days {
		slices := byDay[day]
		sort.Slice(slices, func(i, j int) bool {
			return slices[i].Timestamp.Before(slices[j].Timestamp)
		})

		ref := slices[0]
		min := sliceMin(ref)
		max := sliceMax(ref)
		for _, s := range slices[1:] {
			if lo := sliceMin(s); lo < min {
				min = lo
			}
			if hi := sliceMax(s); hi > max {
				max = hi
			}
		}

		noon, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		noon = noon.Add(12 * time.Hour)

		lo, hi := min, max
		daily = append(daily, ForecastSlice{
			Timestamp:       noon,
			TemperatureC:    (lo + hi) / 2,
			Condition:       ref.Condition,
			ConditionLabel:  ref.ConditionLabel,
			MinTemperatureC: &lo,
			MaxTemperatureC: &hi,
		})
	}

	return daily
}

func sliceMin(s ForecastSlice) float64 {
	if s.MinTemperatureC != nil {
		return *s.MinTemperatureC
	}
	return s.TemperatureC
}

func sliceMax(s ForecastSlice) float64 {
	if s.MaxTemperatureC != nil {
		return *s.MaxTemperatureC
	}
	return s.TemperatureC
}
