package analytics

import (
	"math"

	"github.com/noah-isme/cellgroup-api/internal/models"
)

const (
	excellentAbove = 90.0
	goodFrom       = 70.0
	averageFrom    = 50.0
)

// Tier classifies a health score. The Excellent test is strict, so 90 is Good.
func Tier(score float64) models.HealthTier {
	switch {
	case score > excellentAbove:
		return models.TierExcellent
	case score >= goodFrom:
		return models.TierGood
	case score >= averageFrom:
		return models.TierAverage
	default:
		return models.TierPoor
	}
}

// ClampScore bounds a score to 0–100 for display.
func ClampScore(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(100, score))
}

// SummarizeSamples turns 0–1 fractions into rounded whole-percent average, min and max.
// An empty input yields HasData=false with zero values.
func SummarizeSamples(samples []float64) models.HealthSummary {
	if len(samples) == 0 {
		return models.HealthSummary{}
	}
	sum := 0.0
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		sum += s
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	return models.HealthSummary{
		HasData: true,
		Samples: len(samples),
		Average: percent(sum / float64(len(samples))),
		Min:     percent(lo),
		Max:     percent(hi),
	}
}

// HistorySamples converts health history rows into 0–1 fractions, oldest first.
func HistorySamples(records []models.HealthHistoryRecord) []float64 {
	samples := make([]float64, 0, len(records))
	for _, r := range records {
		samples = append(samples, ClampScore(r.HealthScore)/100)
	}
	return samples
}

// AttendanceRateSamples returns attendees / (attendees + absentees) per report, oldest first.
// Headcount-only reports without absentees have no known roster size and are left out.
// Reports with an empty roster contribute no sample.
func AttendanceRateSamples(reports []models.WeeklyReport) []float64 {
	var samples []float64
	for _, r := range SortReports(reports) {
		if r.HeadcountOnly() && len(r.Absentees) == 0 {
			continue
		}
		present := r.AttendanceCount()
		total := present + len(r.Absentees)
		if total == 0 {
			continue
		}
		samples = append(samples, float64(present)/float64(total))
	}
	return samples
}

// SummarizeGroups totals groups and members and averages health to one decimal place.
func SummarizeGroups(groups []models.CellGroup) models.DashboardSummary {
	summary := models.DashboardSummary{
		Tiers: map[models.HealthTier]int{
			models.TierExcellent: 0,
			models.TierGood:      0,
			models.TierAverage:   0,
			models.TierPoor:      0,
		},
	}
	if len(groups) == 0 {
		return summary
	}
	total := 0.0
	for _, g := range groups {
		summary.TotalMembers += g.MemberCount
		total += g.HealthScore
		summary.Tiers[Tier(g.HealthScore)]++
	}
	summary.TotalGroups = len(groups)
	summary.AverageHealthScore = math.Round(total/float64(len(groups))*10) / 10
	return summary
}

func percent(fraction float64) int {
	return int(math.Round(fraction * 100))
}
