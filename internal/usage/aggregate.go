package usage

import (
	"math"
	"sort"

	"cookstove_tracker/internal/models"
)

// Totals are raw sums over a set of records.
type Totals struct {
	Records       int
	FuelKg        float64
	Minutes       int64
	CookingEvents int64
}

func Sum(records []models.UsageRecord) Totals {
	var t Totals
	for _, r := range records {
		t.Records++
		t.FuelKg += r.FuelUsedKg
		t.Minutes += r.TotalMinutes
		t.CookingEvents += r.CookingEvents
	}
	return t
}

// RoundedRatio is round(num/den), 0 when den is 0.
func RoundedRatio(num, den int64) int64 {
	if den == 0 {
		return 0
	}
	return int64(math.Round(float64(num) / float64(den)))
}

// FuelByDate sums fuel per calendar day.
func FuelByDate(records []models.UsageRecord) map[string]float64 {
	out := make(map[string]float64)
	for _, r := range records {
		out[r.Date] += r.FuelUsedKg
	}
	return out
}

// DailySeries returns one point per date present in records, ascending.
// Dates without records are omitted.
func DailySeries(records []models.UsageRecord) []models.DailyFuel {
	byDate := FuelByDate(records)
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := make([]models.DailyFuel, 0, len(dates))
	for _, d := range dates {
		out = append(out, models.DailyFuel{Date: d, FuelUsedKg: Round2(byDate[d])})
	}
	return out
}

// Summarize builds the unbounded-history summary for one user.
func Summarize(records []models.UsageRecord) models.UsageSummary {
	t := Sum(records)
	return models.UsageSummary{
		TotalFuelUsed:      Round2(t.FuelKg),
		AverageCookingTime: RoundedRatio(t.Minutes, int64(t.Records)),
		DaysActive:         len(FuelByDate(records)),
		Graph:              DailySeries(records),
	}
}

// Chart is the 7-day view computed over a window.
type Chart struct {
	FuelChartData      []float64 // one rounded value per window day, zero-filled
	DateRange          []string
	FuelToday          float64 // rounded
	CookingEventsToday int64
	Totals             Totals // raw sums over the whole window
}

// WindowChart folds records into days. Records outside the window are ignored;
// the last day of days is "today".
func WindowChart(records []models.UsageRecord, days []Day) Chart {
	index := make(map[string]int, len(days))
	for i, d := range days {
		index[d.Date] = i
	}
	sums := make([]float64, len(days))
	var (
		inWindow    []models.UsageRecord
		eventsToday int64
	)
	last := len(days) - 1
	for _, r := range records {
		i, ok := index[r.Date]
		if !ok {
			continue
		}
		sums[i] += r.FuelUsedKg
		inWindow = append(inWindow, r)
		if i == last {
			eventsToday += r.CookingEvents
		}
	}

	chart := Chart{
		FuelChartData:      make([]float64, len(days)),
		DateRange:          Labels(days),
		CookingEventsToday: eventsToday,
		Totals:             Sum(inWindow),
	}
	for i, v := range sums {
		chart.FuelChartData[i] = Round2(v)
	}
	if last >= 0 {
		chart.FuelToday = Round2(sums[last])
	}
	return chart
}
