package dto

import "github.com/noah-isme/cellgroup-api/internal/models"

// WeeklyRankingResponse renders a ranking with the redundant lowest entry suppressed
// when the week holds a single report.
type WeeklyRankingResponse struct {
	Week    models.WeekBucket  `json:"week"`
	Entries []models.RankEntry `json:"entries"`
	Top     *models.RankEntry  `json:"top,omitempty"`
	Lowest  *models.RankEntry  `json:"lowest,omitempty"`
}

// NewWeeklyRankingResponse builds the response view of ranking.
func NewWeeklyRankingResponse(ranking models.WeeklyRanking) WeeklyRankingResponse {
	entries := ranking.Entries
	if entries == nil {
		entries = []models.RankEntry{}
	}
	return WeeklyRankingResponse{
		Week:    ranking.Week,
		Entries: entries,
		Top:     ranking.Top,
		Lowest:  ranking.DistinctLowest(),
	}
}
