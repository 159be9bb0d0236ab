package orchestrator

import (
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/llm"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
)

// reserveAndCharge reserves o.cfg.MaxOutputTokens against category, runs
// call, consumes the actually-reported usage (clamped to the reservation),
// and releases any unused remainder. Mirrors pkg/subagent's callLLM
// reserve→consume→release-remainder discipline at the phase level, since
// Analyzer/Planner own their LLM call internally and only report back a
// Usage total.
func (o *Orchestrator) reserveAndCharge(category models.BudgetCategory, call func() (llm.Usage, error)) error {
	reservationID, err := o.Budget.Reserve(category, o.cfg.MaxOutputTokens)
	if err != nil {
		return err
	}

	usage, err := call()
	if err != nil {
		_ = o.Budget.Release(reservationID)
		return err
	}

	total := usage.TotalTokens()
	if total > o.cfg.MaxOutputTokens {
		total = o.cfg.MaxOutputTokens
	}
	if consumeErr := o.Budget.Consume(reservationID, total); consumeErr != nil {
		_ = o.Budget.Release(reservationID)
		return consumeErr
	}
	if total < o.cfg.MaxOutputTokens {
		_ = o.Budget.Release(reservationID)
	}
	return nil
}
