package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cellgroup-api/internal/models"
	appErrors "github.com/noah-isme/cellgroup-api/pkg/errors"
)

type fakeDashboardSrv struct {
	resp       models.DashboardSummary
	err        error
	lastFilter models.CellGroupFilter
}

func (f *fakeDashboardSrv) Summary(_ context.Context, filter models.CellGroupFilter) (models.DashboardSummary, error) {
	f.lastFilter = filter
	return f.resp, f.err
}

func TestDashboardHandlerSummary(t *testing.T) {
	srv := &fakeDashboardSrv{resp: models.DashboardSummary{TotalGroups: 3, AverageHealthScore: 71.1}}
	c, rec := newTestContext(http.MethodGet, "/dashboard?zoneId=north&statusId=active&search=alpha", "")

	NewDashboardHandler(srv).Summary(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.CellGroupFilter{ZoneID: "north", StatusID: "active", Search: "alpha"}, srv.lastFilter)

	envelope := decodeEnvelope(t, rec)
	var summary models.DashboardSummary
	require.NoError(t, json.Unmarshal(envelope.Data, &summary))
	assert.Equal(t, 71.1, summary.AverageHealthScore)
	assert.Contains(t, envelope.Meta, "processing_time_ms")
}

func TestDashboardHandlerUpstream(t *testing.T) {
	srv := &fakeDashboardSrv{err: appErrors.Upstream(errors.New("timeout"), "list cell groups")}
	c, rec := newTestContext(http.MethodGet, "/dashboard", "")

	NewDashboardHandler(srv).Summary(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))
}

func TestDashboardHandlerWithoutService(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/dashboard", "")

	NewDashboardHandler(nil).Summary(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
