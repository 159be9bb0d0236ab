package api

import "github.com/codeready-toolchain/codegen-orchestrator/pkg/models"

// GenerateRequest is the POST /bundle/generate request body.
type GenerateRequest struct {
	Request   string               `json:"request" binding:"required"`
	Context   []models.ContextFile `json:"context"`
	Workspace []string             `json:"workspace"`
}

// ApprovalRequest is the POST /bundle/approval/{taskId} request body.
type ApprovalRequest struct {
	Approved     bool         `json:"approved"`
	Reason       string       `json:"reason,omitempty"`
	ModifiedPlan *models.Plan `json:"modifiedPlan,omitempty"`
}

// RetryValidationRequest is the POST /bundle/retry-validation/{taskId}
// request body. Both fields are optional: a zero CoverageThreshold falls
// back to the orchestrator's configured default.
type RetryValidationRequest struct {
	CoverageThreshold float64  `json:"coverageThreshold,omitempty"`
	SkipChecks        []string `json:"skipChecks,omitempty"`
}

// RegenerateRequest is the POST /bundle/regenerate/{taskId} request body.
type RegenerateRequest struct {
	FixInstructions string `json:"fixInstructions,omitempty"`
}
