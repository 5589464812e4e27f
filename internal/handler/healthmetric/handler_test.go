package healthmetric

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medihelp-api/internal/handler"
	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository/memory"
	"github.com/jwalitptl/medihelp-api/internal/service/healthmetric"
)

// newRouter authenticates each request as the user named in X-Test-User.
func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("")
	api.Use(func(c *gin.Context) {
		id, err := uuid.Parse(c.GetHeader("X-Test-User"))
		require.NoError(t, err)
		c.Set(handler.ContextUserID, id)
		c.Next()
	})
	NewHandler(healthmetric.NewService(memory.NewStore().HealthMetrics())).RegisterRoutes(api)
	return r
}

func send(r http.Handler, user uuid.UUID, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", user.String())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthMetricLifecycle(t *testing.T) {
	r := newRouter(t)
	owner, stranger := uuid.New(), uuid.New()

	w := send(r, owner, http.MethodPost, "/health_metrics", `{"metric_type":"blood_pressure","value":"120/80","unit":"mmHg"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data model.HealthMetric `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Data.ID.String()
	assert.Equal(t, "120/80", created.Data.Value)

	w = send(r, stranger, http.MethodPut, "/health_metrics/"+id, `{"value":"130/85"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Not authorized to modify this health metric.")

	w = send(r, owner, http.MethodPut, "/health_metrics/"+id, `{"value":"130/85"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "130/85")

	w = send(r, stranger, http.MethodGet, "/health_metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), id)

	w = send(r, owner, http.MethodDelete, "/health_metrics/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = send(r, owner, http.MethodDelete, "/health_metrics/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthMetricRequiresValue(t *testing.T) {
	r := newRouter(t)

	w := send(r, uuid.New(), http.MethodPost, "/health_metrics", `{"metric_type":"weight"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
