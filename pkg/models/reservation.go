package models

import "time"

// BudgetCategory tags which phase (or the agentic sub-agent pool) a
// reservation was made for.
type BudgetCategory string

const (
	CategoryAnalyze BudgetCategory = "analyze"
	CategoryPlan    BudgetCategory = "plan"
	CategoryGenerate BudgetCategory = "generate"
	CategoryValidate BudgetCategory = "validate"
	CategoryAgentic  BudgetCategory = "agentic"
)

// Reservation is a pre-committed slice of the token budget owned by a
// single operation until it is consumed or released.
type Reservation struct {
	ID        string         `json:"id"`
	Category  BudgetCategory `json:"category"`
	Reserved  int            `json:"reserved"`
	Consumed  int            `json:"consumed"`
	CreatedAt time.Time      `json:"createdAt"`
}
