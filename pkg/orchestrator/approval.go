package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/taskstore"
)

// ApprovalSubmission is the external decision delivered via SubmitApproval
// (spec §6: POST /bundle/approval/{taskId} body).
type ApprovalSubmission struct {
	Approved     bool
	Reason       string
	ModifiedPlan *models.Plan
}

// approvalResult is what arrives on a task's single-shot approval channel:
// either a real submission, or a synthetic timeout marker.
type approvalResult struct {
	submission ApprovalSubmission
	timedOut   bool
}

// SubmitApproval resolves the pending approval checkpoint for taskID (spec
// §9: "a single-shot rendezvous slot keyed by task id, armed by the
// Orchestrator and fired by submitApproval or a timer"). Returns
// ErrNoPendingApproval if the task isn't currently awaiting one.
func (o *Orchestrator) SubmitApproval(taskID string, sub ApprovalSubmission) error {
	o.mu.Lock()
	ch, ok := o.pendingApprovals[taskID]
	o.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoPendingApproval, taskID)
	}

	select {
	case ch <- approvalResult{submission: sub}:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrNoPendingApproval, taskID)
	}
}

// armApproval registers a fresh single-shot channel for taskID and returns
// it. The caller (RunTask) is responsible for disarming it via
// disarmApproval once it has read from the channel or given up.
func (o *Orchestrator) armApproval(taskID string) chan approvalResult {
	ch := make(chan approvalResult, 1)
	o.mu.Lock()
	o.pendingApprovals[taskID] = ch
	o.mu.Unlock()
	return ch
}

func (o *Orchestrator) disarmApproval(taskID string) {
	o.mu.Lock()
	delete(o.pendingApprovals, taskID)
	o.mu.Unlock()
}

// awaitApproval arms the checkpoint, emits approval_required, and blocks
// until SubmitApproval resolves it or ApprovalTimeout elapses (spec §4.9).
// Returns approved=false (with no error) on rejection or timeout — both are
// ordinary pipeline outcomes, not Go errors — after having already failed
// the task via failApprovalCheckpoint.
func (o *Orchestrator) awaitApproval(ctx context.Context, task *models.Task, risk models.RiskLevel) (approved bool, err error) {
	ch := o.armApproval(task.ID)
	defer o.disarmApproval(task.ID)

	o.emit(task.ID, models.EventApprovalRequired, map[string]any{"riskLevel": string(risk)})

	var result approvalResult
	select {
	case result = <-ch:
	case <-time.After(o.cfg.ApprovalTimeout):
		result = approvalResult{timedOut: true}
	case <-ctx.Done():
		return false, ctx.Err()
	}

	if result.timedOut {
		o.failApprovalCheckpoint(task, "timeout")
		return false, nil
	}
	if !result.submission.Approved {
		reason := result.submission.Reason
		if reason == "" {
			reason = "rejected"
		}
		o.failApprovalCheckpoint(task, reason)
		return false, nil
	}

	o.emit(task.ID, models.EventApprovalReceived, map[string]any{"approved": true})
	if result.submission.ModifiedPlan != nil {
		task.Plan = result.submission.ModifiedPlan
		if err := o.Store.UpdateTask(task.ID, taskstore.Update{Plan: task.Plan}); err != nil {
			o.log.Error("failed to persist modified plan", "task_id", task.ID, "error", err)
		}
		o.emit(task.ID, models.EventPlanModified, map[string]any{})
	}
	return true, nil
}

// failApprovalCheckpoint fails task at the plan phase following a rejected
// or timed-out approval (spec §8 scenario 3: error.phase="plan",
// error.recoverable=true).
func (o *Orchestrator) failApprovalCheckpoint(task *models.Task, reason string) {
	taskErr := &models.TaskError{
		Message:     fmt.Sprintf("plan rejected at approval checkpoint: %s", reason),
		Phase:       string(models.PhasePlan),
		Recoverable: true,
	}
	task.Error = taskErr
	task.Status = models.TaskFailed
	if err := o.Store.UpdateTask(task.ID, taskstore.Update{Status: &task.Status, Error: taskErr}); err != nil {
		o.log.Error("failed to persist approval rejection", "task_id", task.ID, "error", err)
	}
	o.emit(task.ID, models.EventTaskError, map[string]any{
		"phase": string(models.PhasePlan), "message": taskErr.Message, "recoverable": true,
	})
}
