package ingress

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/scamshield/agent/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDispatcher struct{ taskID string }

func (s stubDispatcher) Dispatch(ctx context.Context, sessionID, ocrText string) (string, error) {
	return s.taskID, nil
}

type stubWorkers struct{ active bool }

func (s stubWorkers) HealthCheck(ctx context.Context) (bool, int, error) {
	return s.active, 1, nil
}

type stubFast struct{ result FastResult }

func (s stubFast) Classify(ctx context.Context, ocrText string) (FastResult, error) {
	return s.result, nil
}

func multipartBody(fields map[string]string) (*bytes.Buffer, string) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		w.WriteField(k, v)
	}
	w.Close()
	return buf, w.FormDataContentType()
}

func TestHandleScan_NoEntities_RoutesFastPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := New(Config{EnableMCPAgent: true, DefaultRegion: "US"}, stubDispatcher{taskID: "t1"}, stubWorkers{active: true}, nil,
		stubFast{result: FastResult{RiskLevel: "low", Category: "unknown", Explanation: "nothing notable"}}, metrics.NewRecorder())

	body, contentType := multipartBody(map[string]string{"session_id": "s1", "ocr_text": "hello, just checking in"})
	req := httptest.NewRequest(http.MethodPost, "/scan", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"simple"`)
}

func TestHandleScan_EntitiesAndHealthyWorker_RoutesAgent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := New(Config{EnableMCPAgent: true, DefaultRegion: "US", WSBaseURL: "ws://localhost"}, stubDispatcher{taskID: "t2"}, stubWorkers{active: true}, nil, nil, metrics.NewRecorder())

	body, contentType := multipartBody(map[string]string{"session_id": "s2", "ocr_text": "call +1-202-555-0175 about your overdue wire transfer"})
	req := httptest.NewRequest(http.MethodPost, "/scan", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"task_id":"t2"`)
}

func TestHandleScan_NoWorkerAvailable_FallsBackToFastPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := New(Config{EnableMCPAgent: true, DefaultRegion: "US"}, stubDispatcher{taskID: "t3"}, stubWorkers{active: false}, nil, stubFast{}, metrics.NewRecorder())

	body, contentType := multipartBody(map[string]string{"session_id": "s3", "ocr_text": "call +1-202-555-0175 now"})
	req := httptest.NewRequest(http.MethodPost, "/scan", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"simple"`)
}

func TestHandleScan_AgentDisabled_AlwaysFastPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := New(Config{EnableMCPAgent: false}, stubDispatcher{taskID: "t4"}, stubWorkers{active: true}, nil, stubFast{}, metrics.NewRecorder())

	body, contentType := multipartBody(map[string]string{"session_id": "s4", "ocr_text": "call +1-202-555-0175 now"})
	req := httptest.NewRequest(http.MethodPost, "/scan", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"simple"`)
}

func TestHandleHealth_NoActiveWorkersAndAgentEnabled_Returns503(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := New(Config{EnableMCPAgent: true}, stubDispatcher{}, stubWorkers{active: false}, nil, nil, metrics.NewRecorder())

	req := httptest.NewRequest(http.MethodGet, "/health/agent", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleTaskStatus_NoStoreConfigured_Returns404(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := New(Config{}, nil, nil, nil, nil, metrics.NewRecorder())

	req := httptest.NewRequest(http.MethodGet, "/agent-task/abc/status", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
