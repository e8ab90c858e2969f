// Package ingress implements the HTTP surface and routing gate (spec
// §4.7.5, §6): a multipart scan endpoint that decides, per request,
// between dispatching an orchestrator task and running a fast-path LLM
// classification, plus task-status and health endpoints.
//
// Grounded on gin usage across the pack (rawblock's
// internal/api/routes.go: gin.Engine, route groups, gin.H responses)
// for the HTTP layer, and on the teacher's flow-definition idiom for
// the fast-path classifier.
package ingress

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/scamshield/agent/internal/entity"
	"github.com/scamshield/agent/internal/metrics"
	"github.com/scamshield/agent/internal/models"
)

const maxOCRTextChars = 5000

// TaskDispatcher enqueues an agent task and returns its id immediately;
// the orchestrator runs it asynchronously.
type TaskDispatcher interface {
	Dispatch(ctx context.Context, sessionID, ocrText string) (taskID string, err error)
}

// WorkerHealthChecker reports whether at least one orchestrator worker
// is available to accept new tasks.
type WorkerHealthChecker interface {
	HealthCheck(ctx context.Context) (active bool, activeTasks int, err error)
}

// TaskStatusStore answers status queries for dispatched tasks.
type TaskStatusStore interface {
	Status(ctx context.Context, taskID string) (TaskStatus, error)
}

// FastClassifier performs the single-call LLM text classification used
// when the agent path is unavailable or no entity warrants it.
type FastClassifier interface {
	Classify(ctx context.Context, ocrText string) (FastResult, error)
}

// TaskStatus is the task-status endpoint's response shape (spec §6).
type TaskStatus struct {
	TaskID   string              `json:"task_id"`
	Status   string              `json:"status"`
	Result   *models.AgentResult `json:"result,omitempty"`
	Error    string              `json:"error,omitempty"`
	Progress *int                `json:"progress,omitempty"`
}

// FastResult is the fast-path classification response shape (spec §6).
type FastResult struct {
	RiskLevel   string  `json:"risk_level"`
	Confidence  float64 `json:"confidence"`
	Category    string  `json:"category"`
	Explanation string  `json:"explanation"`
}

// Config toggles the routing gate's behavior.
type Config struct {
	EnableMCPAgent   bool
	WorkerHealthWait time.Duration
	DefaultRegion    string
	WSBaseURL        string
}

// Server wires the gate and the HTTP surface together.
type Server struct {
	cfg        Config
	dispatcher TaskDispatcher
	workers    WorkerHealthChecker
	statuses   TaskStatusStore
	fast       FastClassifier
	metrics    *metrics.Recorder
}

// New builds a Server. Any dependency may be nil where its feature is
// disabled (e.g. no fast classifier configured falls back to an
// "unknown" response rather than panicking).
func New(cfg Config, dispatcher TaskDispatcher, workers WorkerHealthChecker, statuses TaskStatusStore, fast FastClassifier, rec *metrics.Recorder) *Server {
	return &Server{cfg: cfg, dispatcher: dispatcher, workers: workers, statuses: statuses, fast: fast, metrics: rec}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.POST("/scan", s.handleScan)
	r.GET("/agent-task/:task_id/status", s.handleTaskStatus)
	r.GET("/health/agent", s.handleHealth)

	return r
}

func (s *Server) handleScan(c *gin.Context) {
	gateStart := time.Now()

	sessionID := c.PostForm("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	ocrText := c.PostForm("ocr_text")
	if len(ocrText) > maxOCRTextChars {
		ocrText = ocrText[:maxOCRTextChars]
	}

	decision, reason := s.decide(c.Request.Context(), ocrText)
	if s.metrics != nil {
		s.metrics.RecordGateDecision(string(decision), reason, time.Since(gateStart))
	}

	if decision == decisionAgent {
		s.dispatchAgent(c, sessionID, ocrText)
		return
	}
	s.runFastPath(c, ocrText)
}

type routingDecision string

const (
	decisionAgent routingDecision = "agent"
	decisionFast  routingDecision = "fast"
)

// decide implements the routing gate (spec §4.7.5): agent-enabled AND a
// healthy worker AND at least one entity found → agent path, else fast
// path. The entity pre-scan and worker health check are both bounded.
func (s *Server) decide(ctx context.Context, ocrText string) (routingDecision, string) {
	if !s.cfg.EnableMCPAgent {
		return decisionFast, "agent_disabled"
	}
	if s.dispatcher == nil {
		return decisionFast, "no_dispatcher"
	}

	entities := entity.Extract(ocrText, entity.Options{DefaultRegion: s.cfg.DefaultRegion})
	if !entities.HasEntities() {
		return decisionFast, "no_entities"
	}

	if s.workers == nil {
		return decisionFast, "no_worker_checker"
	}
	healthCtx, cancel := context.WithTimeout(ctx, workerHealthTimeout(s.cfg.WorkerHealthWait))
	defer cancel()
	active, _, err := s.workers.HealthCheck(healthCtx)
	if err != nil || !active {
		return decisionFast, "no_worker_available"
	}

	return decisionAgent, "entities_found"
}

func workerHealthTimeout(configured time.Duration) time.Duration {
	if configured <= 0 {
		return 500 * time.Millisecond
	}
	return configured
}

func (s *Server) dispatchAgent(c *gin.Context, sessionID, ocrText string) {
	start := time.Now()
	taskID, err := s.dispatcher.Dispatch(c.Request.Context(), sessionID, ocrText)
	if s.metrics != nil {
		s.metrics.RecordAgentPath(time.Since(start))
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to dispatch agent task"})
		return
	}

	entities := entity.Extract(ocrText, entity.Options{DefaultRegion: s.cfg.DefaultRegion})
	c.JSON(http.StatusOK, gin.H{
		"type":           "agent",
		"task_id":        taskID,
		"ws_url":         s.cfg.WSBaseURL + "/ws/agent-progress/" + taskID,
		"estimated_time": "5-30 seconds",
		"entities_found": entities.Count(),
	})
}

func (s *Server) runFastPath(c *gin.Context, ocrText string) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordFastPath(time.Since(start))
		}
	}()

	if s.fast == nil {
		c.JSON(http.StatusOK, gin.H{"type": "simple", "result": FastResult{
			RiskLevel: "low", Confidence: 0, Category: "unknown", Explanation: "fast-path classifier not configured",
		}})
		return
	}

	result, err := s.fast.Classify(c.Request.Context(), ocrText)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"type": "simple", "result": FastResult{
			RiskLevel: "low", Confidence: 0, Category: "unknown", Explanation: "classification unavailable",
		}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"type": "simple", "result": result, "ts": time.Now().Format(time.RFC3339)})
}

func (s *Server) handleTaskStatus(c *gin.Context) {
	taskID := c.Param("task_id")
	if s.statuses == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task status store not configured"})
		return
	}
	status, err := s.statuses.Status(c.Request.Context(), taskID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) handleHealth(c *gin.Context) {
	active := false
	activeTasks := 0
	if s.workers != nil {
		if ok, n, err := s.workers.HealthCheck(c.Request.Context()); err == nil {
			active, activeTasks = ok, n
		}
	}

	status := http.StatusOK
	statusText := "healthy"
	if s.cfg.EnableMCPAgent && !active {
		status = http.StatusServiceUnavailable
		statusText = "degraded"
	}

	c.JSON(status, gin.H{
		"status":         statusText,
		"agent_enabled":  s.cfg.EnableMCPAgent,
		"workers_active": active,
		"active_tasks":   activeTasks,
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}
