package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/llm"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/subagent"
)

// JSONAnalyzer is the default Analyzer: one LLM call asking for a JSON
// object summarizing the request against the supplied workspace context,
// extracted the same way a sub-agent pulls a single fenced block out of a
// model response.
type JSONAnalyzer struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

func (a JSONAnalyzer) Analyze(ctx context.Context, client llm.Client, task *models.Task) (map[string]any, llm.Usage, error) {
	sys := llm.Message{
		Role: llm.RoleSystem,
		Content: "You are a codebase analysis agent. Respond with exactly one fenced JSON " +
			"object describing the relevant files, frameworks, and constraints for the request.",
	}
	user := llm.Message{Role: llm.RoleUser, Content: fmt.Sprintf("Request: %s\nWorkspace files: %v", task.Request, task.Workspace)}

	resp, err := client.Generate(ctx, llm.GenerateRequest{
		Messages: []llm.Message{sys, user}, Model: a.Model, Temperature: a.Temperature, MaxTokens: a.MaxTokens,
	})
	if err != nil {
		return nil, llm.Usage{}, err
	}

	block := subagent.ExtractCodeBlock(resp.Text)
	var analysis map[string]any
	if err := json.Unmarshal([]byte(block), &analysis); err != nil {
		return nil, llm.Usage{}, fmt.Errorf("analyze: model response was not a JSON object: %w", err)
	}
	return analysis, resp.Usage, nil
}

// JSONPlanner is the default Planner: one LLM call asking for a JSON-encoded
// Plan, parsed directly into models.Plan.
type JSONPlanner struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

func (p JSONPlanner) Plan(ctx context.Context, client llm.Client, task *models.Task, analysis map[string]any) (*models.Plan, llm.Usage, error) {
	sys := llm.Message{
		Role: llm.RoleSystem,
		Content: "You are a planning agent. Respond with exactly one fenced JSON object matching " +
			"the Plan schema: steps[], files[], proposedMigrations[], complexity, estimatedDuration, risks[].",
	}
	user := llm.Message{Role: llm.RoleUser, Content: fmt.Sprintf("Request: %s\nAnalysis: %v", task.Request, analysis)}

	resp, err := client.Generate(ctx, llm.GenerateRequest{
		Messages: []llm.Message{sys, user}, Model: p.Model, Temperature: p.Temperature, MaxTokens: p.MaxTokens,
	})
	if err != nil {
		return nil, llm.Usage{}, err
	}

	block := subagent.ExtractCodeBlock(resp.Text)
	var plan models.Plan
	if err := json.Unmarshal([]byte(block), &plan); err != nil {
		return nil, llm.Usage{}, fmt.Errorf("plan: model response was not a JSON Plan: %w", err)
	}
	return &plan, resp.Usage, nil
}
