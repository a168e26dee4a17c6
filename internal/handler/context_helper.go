package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cellgroup-api/internal/middleware"
	appErrors "github.com/noah-isme/cellgroup-api/pkg/errors"
	"github.com/noah-isme/cellgroup-api/pkg/response"
)

const queryDateLayout = "2006-01-02"

// respondComputed writes data with the time spent producing it recorded in meta.
func respondComputed(c *gin.Context, data interface{}, start time.Time) {
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, data, nil, meta)
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
}

// dateQuery parses an optional YYYY-MM-DD query parameter.
func dateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(queryDateLayout, raw)
	if err != nil {
		return nil, appErrors.Validation("invalid date format, expected YYYY-MM-DD", "field", name)
	}
	return &parsed, nil
}
