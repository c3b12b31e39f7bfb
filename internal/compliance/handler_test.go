package compliance

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRouter(service *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(service, zap.NewNop()).RegisterRoutes(router.Group("/api"))
	return router
}

func TestHandlerTarget(t *testing.T) {
	service, _ := newTestService(NewStaticSource(90.5, 5_000_000), nil, nil)
	router := setupRouter(service)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/compliance/target?year=2030", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body TargetResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 85.6904, body.Target)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/compliance/target?year=soon", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerBalances(t *testing.T) {
	service, _ := newTestService(NewStaticSource(90.5, 5_000_000), nil, nil)
	router := setupRouter(service)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/compliance/cb?shipId=S1&year=2025", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var result Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.InDelta(t, -5_816_000, result.CBValue, 1e-6)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/compliance/adjusted-cb?shipId=S1&year=2025", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/compliance/penalty?shipId=S1&year=2025&consecutiveYears=2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var penalty PenaltyAssessment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &penalty))
	assert.Equal(t, 2, penalty.ConsecutiveYears)
	assert.Greater(t, penalty.PenaltyEUR, 0.0)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/compliance/cb?year=2025", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_SHIP")
}
