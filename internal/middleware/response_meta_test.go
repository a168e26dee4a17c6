package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithResponseMetaStoresProcessingTime(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var captured map[string]interface{}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		captured = ExtractMeta(c)
	})
	r.Use(WithResponseMeta())
	r.GET("/ping", func(c *gin.Context) {
		SetMeta(c, "week", "Aug 4–Aug 10, 2025")
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.NotNil(t, captured)
	assert.Equal(t, "Aug 4–Aug 10, 2025", captured["week"])
	assert.Contains(t, captured, "processing_time_ms")
}

func TestExtractMetaWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, ExtractMeta(c))
	SetMeta(c, "k", 1)
	assert.Equal(t, 1, ExtractMeta(c)["k"])
}
