package subagent

import (
	"context"
	"sync"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/llm"
)

// callLLM reserves MaxOutputTokens against the shared budget, makes the
// call, consumes the amount actually used, releases whatever was reserved
// but not spent, and folds the total into the caller's own usage counter
// (spec §4.8's per-agent tokensUsed, on top of the global Budget Manager's
// accounting).
func callLLM(ctx context.Context, deps *Deps, mu *sync.Mutex, tokensUsed *int, messages []llm.Message) (llm.GenerateResponse, error) {
	reservationID, err := deps.Budget.Reserve(deps.Category, deps.MaxOutputTokens)
	if err != nil {
		return llm.GenerateResponse{}, err
	}

	resp, err := deps.LLM.Generate(ctx, llm.GenerateRequest{
		Messages:    messages,
		Model:       deps.Model,
		Temperature: deps.Temperature,
		MaxTokens:   deps.MaxOutputTokens,
	})
	if err != nil {
		_ = deps.Budget.Release(reservationID)
		return llm.GenerateResponse{}, err
	}

	total := resp.Usage.TotalTokens()
	if total > deps.MaxOutputTokens {
		total = deps.MaxOutputTokens
	}
	if consumeErr := deps.Budget.Consume(reservationID, total); consumeErr != nil {
		_ = deps.Budget.Release(reservationID)
	} else if total < deps.MaxOutputTokens {
		// Consume only deletes the reservation once fully spent; release
		// the unused remainder back to available budget.
		_ = deps.Budget.Release(reservationID)
	}

	mu.Lock()
	*tokensUsed += total
	mu.Unlock()

	return resp, nil
}
