package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/combined-routes/internal/config"
	"github.com/jengzang/combined-routes/internal/database"
	"github.com/jengzang/combined-routes/internal/middleware"
	"github.com/jengzang/combined-routes/internal/models"
	"github.com/jengzang/combined-routes/internal/service"
	"github.com/jengzang/combined-routes/internal/timeutil"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setup(t *testing.T, secret string) (*gin.Engine, *service.CatalogService, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	db, err := database.Open(database.Config{Path: filepath.Join(dir, "runs.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	artifacts := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(artifacts, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(artifacts, "combined-routes.html"), []byte("<html></html>"), 0o644))

	cfg := &config.Config{
		JWTSecret:    secret,
		ArtifactsDir: artifacts,
		RateLimit:    100,
		RateWindow:   time.Minute,
	}
	catalog := service.NewCatalogService(db)
	clock := timeutil.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return SetupRouter(cfg, catalog, clock, nil), catalog, secret
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Runs(t *testing.T) {
	r, catalog, _ := setup(t, "")

	run, err := catalog.RecordRun(models.RunRecord{InputDir: "gpx", MapPath: "combined-routes.html", Threshold: 0.001, MinLength: 5, Theme: "dark"},
		[]models.TrackRecord{{DrawOrder: 0, Name: "a.gpx", Path: "gpx/a.gpx", Points: 5}})
	require.NoError(t, err)

	w := get(r, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(r, "/api/v1/runs", "")
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var page models.RunsResponse
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, run.ID, page.Data[0].ID)

	w = get(r, "/api/v1/runs/"+run.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(r, "/api/v1/runs/"+run.ID+"/tracks", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = get(r, "/api/v1/runs/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(r, "/api/v1/runs?page=x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(r, "/artifacts/combined-routes.html", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<html>")
}

func TestRouter_Auth(t *testing.T) {
	r, _, secret := setup(t, "topsecret")

	assert.Equal(t, http.StatusOK, get(r, "/health", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/v1/runs", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/artifacts/combined-routes.html", "").Code)

	token, err := middleware.IssueToken(secret, "viewer", time.Hour, time.Now())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/runs", token).Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r, _, _ := setup(t, "")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/runs", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
