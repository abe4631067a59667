package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/osint-enrich/internal/enrich"
	"github.com/sells-group/osint-enrich/internal/job"
	"github.com/sells-group/osint-enrich/internal/model"
	"github.com/sells-group/osint-enrich/internal/store"
)

type stubStore struct {
	pingErr error
}

func (s *stubStore) CreateJob(_ context.Context, params model.JobParams) (*model.Job, error) {
	return &model.Job{ID: "job-stub", Params: params, Status: model.JobStatusRunning}, nil
}
func (s *stubStore) UpdateJobStatus(_ context.Context, _ string, _ model.JobStatus) error {
	return nil
}
func (s *stubStore) SaveReport(_ context.Context, _ string, _ *model.JobReport) error { return nil }
func (s *stubStore) GetJob(_ context.Context, _ string) (*model.Job, error) {
	return nil, store.ErrNotFound
}
func (s *stubStore) ListJobs(_ context.Context, _ store.JobFilter) ([]model.Job, error) {
	return nil, nil
}
func (s *stubStore) Ping(_ context.Context) error    { return s.pingErr }
func (s *stubStore) Migrate(_ context.Context) error { return nil }
func (s *stubStore) Close() error                    { return nil }

// stubDriver completes jobs instantly unless block is held.
type stubDriver struct {
	startErr error
	block    chan struct{}

	mu        sync.Mutex
	completed []string
}

func (d *stubDriver) Start(_ context.Context, params model.JobParams) (*model.Job, error) {
	if d.startErr != nil {
		return nil, d.startErr
	}
	return &model.Job{ID: "job-stub", Params: params, Status: model.JobStatusRunning}, nil
}

func (d *stubDriver) Complete(_ context.Context, jb *model.Job, _ *enrich.Progress) (*model.JobReport, error) {
	if d.block != nil {
		<-d.block
	}
	d.mu.Lock()
	d.completed = append(d.completed, jb.ID)
	d.mu.Unlock()
	return &model.JobReport{JobID: jb.ID}, nil
}

func newTestServer(driver jobDriver, st store.Store) *jobServer {
	if st == nil {
		st = &stubStore{}
	}
	return &jobServer{
		store:    st,
		driver:   driver,
		progress: enrich.NewProgress(0),
		defaults: model.JobParams{BatchSize: 1000, MaxWorkers: 80},
	}
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Info(t *testing.T) {
	handler := buildRouter(context.Background(), newTestServer(&stubDriver{}, nil))

	rr := doRequest(t, handler, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "osint-enrich", body["service"])
}

func TestRouter_Health(t *testing.T) {
	handler := buildRouter(context.Background(), newTestServer(&stubDriver{}, nil))

	rr := doRequest(t, handler, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "healthy")
}

func TestRouter_Health_StoreDown(t *testing.T) {
	st := &stubStore{pingErr: eris.New("connection refused")}
	handler := buildRouter(context.Background(), newTestServer(&stubDriver{}, st))

	rr := doRequest(t, handler, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "unhealthy")
}

func TestRouter_Status_Idle(t *testing.T) {
	handler := buildRouter(context.Background(), newTestServer(&stubDriver{}, nil))

	rr := doRequest(t, handler, http.MethodGet, "/status", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "idle", body["status"])
}

func TestRouter_Process_Accepted(t *testing.T) {
	driver := &stubDriver{}
	handler := buildRouter(context.Background(), newTestServer(driver, nil))

	body, _ := json.Marshal(map[string]int{"batch_size": 10, "max_workers": 2})
	rr := doRequest(t, handler, http.MethodPost, "/process", body)
	assert.Equal(t, http.StatusAccepted, rr.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "accepted", resp["status"])
	assert.Equal(t, "job-stub", resp["job_id"])

	// Background completion.
	assert.Eventually(t, func() bool {
		driver.mu.Lock()
		defer driver.mu.Unlock()
		return len(driver.completed) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestRouter_Process_DefaultsApplied(t *testing.T) {
	driver := &stubDriver{}
	srv := newTestServer(driver, nil)
	handler := buildRouter(context.Background(), srv)

	rr := doRequest(t, handler, http.MethodPost, "/process", []byte("{}"))
	assert.Equal(t, http.StatusAccepted, rr.Code)

	var resp struct {
		Params model.JobParams `json:"params"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1000, resp.Params.BatchSize)
	assert.Equal(t, 80, resp.Params.MaxWorkers)
}

func TestRouter_Process_NonPositiveParams(t *testing.T) {
	handler := buildRouter(context.Background(), newTestServer(&stubDriver{}, nil))

	for _, payload := range []string{
		`{"batch_size":0}`,
		`{"batch_size":-5}`,
		`{"max_workers":0}`,
		`{"max_workers":-1}`,
	} {
		rr := doRequest(t, handler, http.MethodPost, "/process", []byte(payload))
		assert.Equal(t, http.StatusBadRequest, rr.Code, "payload %s", payload)
		assert.Contains(t, rr.Body.String(), "must be positive")
	}
}

func TestRouter_Process_InvalidBody(t *testing.T) {
	handler := buildRouter(context.Background(), newTestServer(&stubDriver{}, nil))

	rr := doRequest(t, handler, http.MethodPost, "/process", []byte("not json"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")
}

func TestRouter_Process_ConflictWhileRunning(t *testing.T) {
	driver := &stubDriver{block: make(chan struct{})}
	handler := buildRouter(context.Background(), newTestServer(driver, nil))

	body, _ := json.Marshal(map[string]int{"batch_size": 5, "max_workers": 1})
	first := doRequest(t, handler, http.MethodPost, "/process", body)
	require.Equal(t, http.StatusAccepted, first.Code)

	second := doRequest(t, handler, http.MethodPost, "/process", body)
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Contains(t, second.Body.String(), "already in progress")

	close(driver.block)

	// Once the first job finishes, the slot frees up.
	assert.Eventually(t, func() bool {
		rr := doRequest(t, handler, http.MethodPost, "/process", body)
		return rr.Code == http.StatusAccepted
	}, time.Second, 5*time.Millisecond)
}

func TestRouter_Process_StartFailure(t *testing.T) {
	driver := &stubDriver{startErr: eris.New("db down")}
	srv := newTestServer(driver, nil)
	handler := buildRouter(context.Background(), srv)

	body, _ := json.Marshal(map[string]int{"batch_size": 5, "max_workers": 1})
	rr := doRequest(t, handler, http.MethodPost, "/process", body)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	// Slot must be released so the next attempt is not stuck on 409.
	running, _ := srv.state()
	assert.False(t, running)
}

// recordingRunner captures the worker count each batch was scheduled with.
type recordingRunner struct {
	mu      sync.Mutex
	workers []int
}

func (r *recordingRunner) Run(_ context.Context, leads []model.Lead, workers int, _ *enrich.Progress) ([]model.EnrichmentResult, error) {
	r.mu.Lock()
	r.workers = append(r.workers, workers)
	r.mu.Unlock()

	results := make([]model.EnrichmentResult, len(leads))
	for i, lead := range leads {
		results[i] = model.EnrichmentResult{LeadID: lead.ID, Status: model.ResultStatusCompleted}
	}
	return results, nil
}

func TestRouter_Process_WorkerCountReachesPool(t *testing.T) {
	runner := &recordingRunner{}
	driver := job.NewDriver(&stubStore{}, runner, nil, "")
	handler := buildRouter(context.Background(), newTestServer(driver, nil))

	body, _ := json.Marshal(map[string]int{"batch_size": 3, "max_workers": 7})
	rr := doRequest(t, handler, http.MethodPost, "/process", body)
	require.Equal(t, http.StatusAccepted, rr.Code)

	assert.Eventually(t, func() bool {
		runner.mu.Lock()
		defer runner.mu.Unlock()
		return len(runner.workers) == 1 && runner.workers[0] == 7
	}, time.Second, 5*time.Millisecond)
}

func TestRouter_Status_WhileRunning(t *testing.T) {
	driver := &stubDriver{block: make(chan struct{})}
	handler := buildRouter(context.Background(), newTestServer(driver, nil))

	body, _ := json.Marshal(map[string]int{"batch_size": 5, "max_workers": 1})
	rr := doRequest(t, handler, http.MethodPost, "/process", body)
	require.Equal(t, http.StatusAccepted, rr.Code)

	status := doRequest(t, handler, http.MethodGet, "/status", nil)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(status.Body.Bytes(), &resp))
	assert.Equal(t, "running", resp["status"])
	assert.Equal(t, "job-stub", resp["current_job"])

	close(driver.block)
}
