package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/cellgroup-api/internal/middleware"
	"github.com/noah-isme/cellgroup-api/pkg/middleware/requestid"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	analytics := &fakeAnalyticsSrv{}
	r := gin.New()
	r.Use(requestid.Middleware())
	r.Use(middleware.WithResponseMeta())
	Register(r.Group("/api/v1"), Handlers{
		Reports:    NewReportHandler(&fakeReportSrv{}),
		CellGroups: NewCellGroupHandler(analytics, &fakeHealthSrv{}),
		Analytics:  NewAnalyticsHandler(analytics),
		Visitors:   NewVisitorHandler(&fakeVisitorSrv{}),
		Dashboard:  NewDashboardHandler(&fakeDashboardSrv{}),
	})
	return r
}

func TestRegisterMountsEveryRoute(t *testing.T) {
	r := newTestRouter()

	cases := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/api/v1/reports", "", http.StatusOK},
		{http.MethodGet, "/api/v1/reports/r1", "", http.StatusOK},
		{http.MethodPost, "/api/v1/reports", `{"cell_group_id":"cg-1","date_of_meeting":"2025-08-06"}`, http.StatusCreated},
		{http.MethodPut, "/api/v1/reports/r1", `{"cell_group_id":"cg-1","date_of_meeting":"2025-08-06"}`, http.StatusOK},
		{http.MethodDelete, "/api/v1/reports/r1", "", http.StatusNoContent},
		{http.MethodGet, "/api/v1/cell-groups/cg-1/analytics", "", http.StatusOK},
		{http.MethodGet, "/api/v1/cell-groups/cg-1/streaks", "", http.StatusOK},
		{http.MethodGet, "/api/v1/cell-groups/cg-1/visitor-recurrence", "", http.StatusOK},
		{http.MethodGet, "/api/v1/cell-groups/cg-1/health-history", "", http.StatusOK},
		{http.MethodPost, "/api/v1/cell-groups/cg-1/health-history", `{"report_date":"2025-08-10","health_score":70}`, http.StatusCreated},
		{http.MethodGet, "/api/v1/cell-groups/cg-1/health-summary", "", http.StatusOK},
		{http.MethodGet, "/api/v1/analytics/weeks", "", http.StatusOK},
		{http.MethodGet, "/api/v1/analytics/weekly-ranking", "", http.StatusOK},
		{http.MethodGet, "/api/v1/analytics/system", "", http.StatusOK},
		{http.MethodGet, "/api/v1/visitors", "", http.StatusOK},
		{http.MethodPost, "/api/v1/visitors", `{"name":"Fay"}`, http.StatusCreated},
		{http.MethodGet, "/api/v1/visitors/v-1", "", http.StatusOK},
		{http.MethodPost, "/api/v1/visitors/v-1/follow-up/advance", "", http.StatusOK},
		{http.MethodPost, "/api/v1/visitors/v-1/convert", "", http.StatusOK},
		{http.MethodGet, "/api/v1/dashboard", "", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			if tc.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRegisterErrorCarriesRequestID(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports?dateFrom=yesterday", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "req-42", decodeEnvelope(t, rec).Meta["request_id"])
}
