package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"chartintel/config"
	"chartintel/internal/app"
	"chartintel/internal/handlers/middleware"
	"chartintel/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	runs atomic.Int32
}

func (j *countingJob) Name() string                { return "MetricsRefresh" }
func (j *countingJob) Schedule() services.Schedule { return services.Daily }

func (j *countingJob) Execute(ctx context.Context) error {
	j.runs.Add(1)
	return nil
}

func newTestServer(t *testing.T, adminToken string) (*AppServer, *countingJob) {
	t.Helper()

	cfg := config.Config{GeneralVersion: "1.2.3", AdminToken: adminToken}
	scheduler := services.NewSchedulerService()
	job := &countingJob{}
	require.NoError(t, scheduler.AddJob(job))

	server, err := New(&app.App{
		Config:     cfg,
		Middleware: middleware.New(cfg),
		Services:   services.Service{Scheduler: scheduler},
	})
	require.NoError(t, err)

	return server, job
}

func TestServer_Health(t *testing.T) {
	server, _ := newTestServer(t, "secret")

	resp, err := server.FiberApp.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.TraceIDHeader))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
	assert.Equal(t, false, body["scheduler"])
}

func TestServer_TraceIDIsEchoed(t *testing.T) {
	server, _ := newTestServer(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(middleware.TraceIDHeader, "trace-123")

	resp, err := server.FiberApp.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "trace-123", resp.Header.Get(middleware.TraceIDHeader))
}

func TestServer_JobsRequireAdminToken(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		sent       string
		want       int
	}{
		{name: "missing header", configured: "secret", sent: "", want: http.StatusUnauthorized},
		{name: "wrong token", configured: "secret", sent: "nope", want: http.StatusForbidden},
		{name: "not configured", configured: "", sent: "secret", want: http.StatusServiceUnavailable},
		{name: "valid token", configured: "secret", sent: "secret", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newTestServer(t, tt.configured)

			req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
			if tt.sent != "" {
				req.Header.Set(middleware.AdminTokenHeader, tt.sent)
			}

			resp, err := server.FiberApp.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestServer_ListJobs(t *testing.T) {
	server, _ := newTestServer(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set(middleware.AdminTokenHeader, "secret")

	resp, err := server.FiberApp.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Running bool                 `json:"running"`
		Jobs    []services.JobStatus `json:"jobs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Running)
	require.Len(t, body.Jobs, 1)
	assert.Equal(t, "MetricsRefresh", body.Jobs[0].Name)
	assert.Equal(t, "daily", body.Jobs[0].Schedule)
}

func TestServer_TriggerJob(t *testing.T) {
	server, job := newTestServer(t, "secret")

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/MetricsRefresh/trigger", nil)
	req.Header.Set(middleware.AdminTokenHeader, "secret")

	resp, err := server.FiberApp.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	assert.Eventually(t, func() bool {
		return job.runs.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	missing := httptest.NewRequest(http.MethodPost, "/api/jobs/Unknown/trigger", nil)
	missing.Header.Set(middleware.AdminTokenHeader, "secret")

	resp, err = server.FiberApp.Test(missing)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
