package weather

import (
	"math"
	"time"
)

const (
	// maxHourlyEntries caps the hourly series at the first eight 3-hour ticks,
	// i.e. roughly the next 24 hours.
	maxHourlyEntries = 8
	// maxDailyEntries caps the daily series. The upstream forecast spans five
	// days plus the remainder of today, so at most six calendar days appear.
	maxDailyEntries = 6
)

// roundTemp rounds a raw temperature to the nearest whole degree.
func roundTemp(t float64) int {
	return int(math.Round(t))
}

// popPercent rescales a 0-1 precipitation probability to a whole percentage.
func popPercent(p float64) int {
	return int(math.Round(p * 100))
}

// ToHourly takes the first eight samples of the raw forecast list verbatim,
// rounding temperatures and rescaling pop. No resampling: entries stay on the
// upstream 3-hour grid.
func ToHourly(samples []ForecastSample) []HourlyEntry {
	n := len(samples)
	if n > maxHourlyEntries {
		n = maxHourlyEntries
	}

	hourly := make([]HourlyEntry, 0, n)
	for _, s := range samples[:n] {
		hourly = append(hourly, HourlyEntry{
			Time:        s.Timestamp,
			Temp:        roundTemp(s.Temp),
			FeelsLike:   roundTemp(s.FeelsLike),
			Icon:        s.Icon,
			Description: s.Description,
			Humidity:    s.Humidity,
			WindSpeed:   s.WindSpeed,
			Pop:         popPercent(s.Pop),
		})
	}
	return hourly
}

// ToDaily groups samples by UTC calendar day in first-seen order and reduces
// each group to its high, low and maximum precipitation probability. The
// group's icon and description are fixed by its first sample and not
// re-evaluated for later samples of the same day. Relies on the upstream
// list's chronological order; output is truncated to six days.
func ToDaily(samples []ForecastSample) []DailyEntry {
	type dayGroup struct {
		date        int64
		high, low   float64
		icon        string
		description string
		pop         float64
	}

	groups := make(map[string]*dayGroup)
	var order []string

	for _, s := range samples {
		key := time.Unix(s.Timestamp, 0).UTC().Format("2006-01-02")
		g, ok := groups[key]
		if !ok {
			groups[key] = &dayGroup{
				date:        s.Timestamp,
				high:        s.Temp,
				low:         s.Temp,
				icon:        s.Icon,
				description: s.Description,
				pop:         s.Pop,
			}
			order = append(order, key)
			continue
		}
		g.high = math.Max(g.high, s.Temp)
		g.low = math.Min(g.low, s.Temp)
		g.pop = math.Max(g.pop, s.Pop)
	}

	if len(order) > maxDailyEntries {
		order = order[:maxDailyEntries]
	}

	daily := make([]DailyEntry, 0, len(order))
	for _, key := range order {
		g := groups[key]
		daily = append(daily, DailyEntry{
			Date:        g.date,
			High:        roundTemp(g.high),
			Low:         roundTemp(g.low),
			Icon:        g.icon,
			Description: g.description,
			Pop:         popPercent(g.pop),
		})
	}
	return daily
}
