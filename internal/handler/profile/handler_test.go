package profile

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
	profileService "github.com/jwalitptl/medihelp-api/internal/service/profile"
)

func newRouter(store *memory.Store, actor uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("")
	api.Use(func(c *gin.Context) {
		c.Set(handler.ContextUserID, actor)
		c.Next()
	})
	NewHandler(profileService.NewService(store.Profiles())).RegisterRoutes(api)
	return r
}

func call(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMeAndUpdate(t *testing.T) {
	store := memory.NewStore()
	alice := store.AddUser("alice@example.com", "Alice")
	r := newRouter(store, alice)

	w := call(r, http.MethodGet, "/profiles/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Data model.Profile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, alice, got.Data.ID)
	require.NotNil(t, got.Data.Name)
	assert.Equal(t, "Alice", *got.Data.Name)

	w = call(r, http.MethodPut, "/profiles/me", `{"phone":"+15550001"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotNil(t, got.Data.Phone)
	assert.Equal(t, "+15550001", *got.Data.Phone)
}

func TestUpdatePhoneCollision(t *testing.T) {
	store := memory.NewStore()
	alice := store.AddUser("alice@example.com", "Alice")
	bob := store.AddUser("bob@example.com", "Bob")

	w := call(newRouter(store, alice), http.MethodPut, "/profiles/me", `{"phone":"+15550001"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(newRouter(store, bob), http.MethodPut, "/profiles/me", `{"phone":"+15550001"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Phone number already in use")
}

func TestListPaging(t *testing.T) {
	store := memory.NewStore()
	actor := store.AddUser("a@example.com", "A")
	store.AddUser("b@example.com", "B")
	store.AddUser("c@example.com", "C")
	r := newRouter(store, actor)

	w := call(r, http.MethodGet, "/profiles?skip=1&limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data []model.Profile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Data, 1)

	w = call(r, http.MethodGet, "/profiles?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
