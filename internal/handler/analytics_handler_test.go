package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cellgroup-api/internal/dto"
	"github.com/noah-isme/cellgroup-api/internal/models"
	appErrors "github.com/noah-isme/cellgroup-api/pkg/errors"
)

func TestAnalyticsHandlerWeeklyRankingSingleReport(t *testing.T) {
	only := models.RankEntry{ReportID: "r1", Attendance: 8}
	srv := &fakeAnalyticsSrv{ranking: models.WeeklyRanking{
		Week:    models.WeekBucket{Label: "Aug 4–Aug 10, 2025"},
		Entries: []models.RankEntry{only},
		Top:     &only,
		Lowest:  &only,
	}}
	c, rec := newTestContext(http.MethodGet, "/analytics/weekly-ranking?week=Aug+4%E2%80%93Aug+10%2C+2025", "")

	NewAnalyticsHandler(srv).WeeklyRanking(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Aug 4–Aug 10, 2025", srv.lastLabel)

	var ranking dto.WeeklyRankingResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &ranking))
	require.NotNil(t, ranking.Top)
	assert.Equal(t, "r1", ranking.Top.ReportID)
	assert.Nil(t, ranking.Lowest)
}

func TestAnalyticsHandlerWeeklyRankingEmptyWeek(t *testing.T) {
	srv := &fakeAnalyticsSrv{}
	c, rec := newTestContext(http.MethodGet, "/analytics/weekly-ranking", "")

	NewAnalyticsHandler(srv).WeeklyRanking(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", srv.lastLabel)
	assert.JSONEq(t, `{"week":{"label":"","start":"0001-01-01T00:00:00Z","end":"0001-01-01T00:00:00Z"},"entries":[]}`, string(decodeEnvelope(t, rec).Data))
}

func TestAnalyticsHandlerWeeklyRankingInvalidLabel(t *testing.T) {
	srv := &fakeAnalyticsSrv{err: appErrors.Validation("unrecognised week label", "field", "week")}
	c, rec := newTestContext(http.MethodGet, "/analytics/weekly-ranking?week=someday", "")

	NewAnalyticsHandler(srv).WeeklyRanking(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsHandlerWeeksAndSystem(t *testing.T) {
	srv := &fakeAnalyticsSrv{weeks: []models.WeekBucket{{Label: "Aug 4–Aug 10, 2025", Latest: true}}}
	handler := NewAnalyticsHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/analytics/weeks", "")
	handler.Weeks(c)
	require.Equal(t, http.StatusOK, rec.Code)
	var weeks []models.WeekBucket
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &weeks))
	assert.True(t, weeks[0].Latest)

	c, rec = newTestContext(http.MethodGet, "/analytics/system", "")
	handler.System(c)
	require.Equal(t, http.StatusOK, rec.Code)
	var metrics models.SystemMetrics
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &metrics))
	assert.Equal(t, uint64(7), metrics.RequestsTotal)
}
