package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-records-api/internal/config"
	bookHandler "book-records-api/internal/domains/book/handler"
	bookService "book-records-api/internal/domains/book/service"
	infraCache "book-records-api/internal/infrastructure/cache"
	"book-records-api/internal/infrastructure/database"
	"book-records-api/internal/infrastructure/storage"
	"book-records-api/internal/testutil"
	"book-records-api/pkg/container"
)

func newTestContainer(t *testing.T) *container.Container {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		App:    config.AppConfig{Version: "test"},
		Upload: config.UploadConfig{Dir: t.TempDir(), URLPrefix: "/img/", Field: "image", MaxBytes: 1 << 20},
	}

	images, err := storage.NewDiskStore(cfg.Upload.Dir)
	require.NoError(t, err)

	repo := testutil.NewMemoryBookRepo()
	svc := bookService.NewService(repo, bookService.NewValidator(repo), nil, nil, time.Minute)

	return &container.Container{
		Config:      cfg,
		DB:          database.NewPostgresDB(&database.DBConfig{}),
		Cache:       infraCache.NewRedisCache("127.0.0.1:1", "", 0),
		Images:      images,
		BookHandler: bookHandler.NewHandler(svc, images, cfg.Upload.URLPrefix),
	}
}

func TestHealth_UnhealthyWhenDatabaseDown(t *testing.T) {
	c := newTestContainer(t)
	router := SetupRouter(c)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body struct {
		Status   string                       `json:"status"`
		Services map[string]map[string]string `json:"services"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "error", body.Services["database"]["status"])
	assert.Equal(t, "error", body.Services["cache"]["status"])
	assert.Equal(t, "ok", body.Services["upload_dir"]["status"])
}

func TestEvaluateHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name   string
		checks []componentCheck
		status string
		code   int
	}{
		{"all ok", []componentCheck{{"database", true, ok}, {"cache", false, ok}}, "ok", http.StatusOK},
		{"cache down", []componentCheck{{"database", true, ok}, {"cache", false, down}}, "degraded", http.StatusOK},
		{"database down", []componentCheck{{"database", true, down}, {"cache", false, ok}}, "unhealthy", http.StatusServiceUnavailable},
		{"both down", []componentCheck{{"cache", false, down}, {"database", true, down}}, "unhealthy", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, services := evaluateHealth(context.Background(), tt.checks)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
			assert.Len(t, services, len(tt.checks))
		})
	}
}

func TestRouter_ServesUploadedImages(t *testing.T) {
	c := newTestContainer(t)
	require.NoError(t, os.WriteFile(filepath.Join(c.Images.Dir(), "abc.jpg"), []byte("img"), 0o644))
	router := SetupRouter(c)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/img/abc.jpg", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "img", w.Body.String())
}

func TestRouter_BookRoutesBothSlashVariants(t *testing.T) {
	router := SetupRouter(newTestContainer(t))

	for _, path := range []string{"/book", "/book/"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, `[]`, w.Body.String())
	}
}
