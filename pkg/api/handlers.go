package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/orchestrator"
)

// handleGenerate handles POST /bundle/generate: it registers a new task and
// returns its id immediately, driving the pipeline in the background.
func (s *Server) handleGenerate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task := models.NewTask(uuid.NewString(), req.Request, req.Context, req.Workspace)
	if err := s.tasks.CreateTask(task); err != nil {
		respondError(c, err)
		return
	}

	s.log.Info("accepted generate request", "task_id", task.ID)
	go s.runTaskAsync(task)

	c.JSON(http.StatusOK, GenerateResponse{TaskID: task.ID})
}

// runTaskAsync drives task through the pipeline off the request goroutine.
func (s *Server) runTaskAsync(task *models.Task) {
	if err := s.orch.RunTask(context.Background(), task); err != nil {
		s.log.Error("task run failed", "task_id", task.ID, "error", err)
	}
}

// handleStatus handles GET /bundle/status/{taskId}.
func (s *Server) handleStatus(c *gin.Context) {
	task, err := s.tasks.GetTask(c.Param("taskId"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := StatusResponse{
		Status:    string(task.Status),
		Phase:     currentPhase(task),
		StartTime: task.CreatedAt,
	}
	switch task.Status {
	case models.TaskComplete:
		completed := task.UpdatedAt
		resp.CompletedTime = &completed
		resp.Result = gin.H{"bundleId": task.BundleID}
	case models.TaskFailed:
		completed := task.UpdatedAt
		resp.CompletedTime = &completed
		resp.Result = task.Error
	}
	c.JSON(http.StatusOK, resp)
}

// currentPhase returns the name of the phase currently in progress, or ""
// if none is (task is pending, complete, or failed before any phase started).
func currentPhase(task *models.Task) string {
	for _, name := range models.PhaseOrder() {
		if p := task.Phases[name]; p != nil && p.Status == models.PhaseStatusInProgress {
			return string(name)
		}
	}
	return ""
}

// handleGetBundle handles GET /bundle/{bundleId}.
func (s *Server) handleGetBundle(c *gin.Context) {
	sb, err := s.orch.GetBundle(c.Request.Context(), c.Param("bundleId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sb)
}

// handleApproval handles POST /bundle/approval/{taskId}.
func (s *Server) handleApproval(c *gin.Context) {
	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub := orchestrator.ApprovalSubmission{
		Approved:     req.Approved,
		Reason:       req.Reason,
		ModifiedPlan: req.ModifiedPlan,
	}
	if err := s.orch.SubmitApproval(c.Param("taskId"), sub); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

// handleRetryValidation handles POST /bundle/retry-validation/{taskId}. The
// body is entirely optional, so a bind failure on an empty body is ignored.
func (s *Server) handleRetryValidation(c *gin.Context) {
	taskID := c.Param("taskId")
	var req RetryValidationRequest
	_ = c.ShouldBindJSON(&req)

	go func() {
		if err := s.orch.RetryValidation(context.Background(), taskID, req.CoverageThreshold, req.SkipChecks); err != nil {
			s.log.Error("retry-validation failed", "task_id", taskID, "error", err)
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"taskId": taskID, "status": "validating"})
}

// handleRegenerate handles POST /bundle/regenerate/{taskId}.
func (s *Server) handleRegenerate(c *gin.Context) {
	var req RegenerateRequest
	_ = c.ShouldBindJSON(&req)

	newTask, err := s.orch.Regenerate(c.Param("taskId"), req.FixInstructions)
	if err != nil {
		respondError(c, err)
		return
	}

	go s.runTaskAsync(newTask)
	c.JSON(http.StatusOK, RegenerateResponse{TaskID: newTask.ID})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "tasks": s.tasks.GetStats()})
}
