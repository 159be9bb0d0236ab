package subagent

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/scheduler"
	"github.com/google/uuid"
)

var (
	dropTablePattern  = regexp.MustCompile(`(?i)DROP\s+TABLE`)
	dropColumnPattern = regexp.MustCompile(`(?i)DROP\s+COLUMN`)
	truncatePattern   = regexp.MustCompile(`(?i)TRUNCATE\s+TABLE`)
)

// classifyDataLossRisk grades a migration by what its reverse SQL would do
// if rolled back: a reverse that drops or truncates a table discards
// whatever data the forward migration (and anything after it) accumulated.
// Mirrors the same closed-DDL-set approach MigrationReversibilityCheck uses.
func classifyDataLossRisk(reverseSQL string) models.DataLossRisk {
	if dropTablePattern.MatchString(reverseSQL) || truncatePattern.MatchString(reverseSQL) {
		return models.DataLossHigh
	}
	if dropColumnPattern.MatchString(reverseSQL) {
		return models.DataLossMedium
	}
	return models.DataLossLow
}

// Migration generates a forward/reverse SQL pair per step.
type Migration struct {
	Deps
	Database string

	mu          sync.Mutex
	tokensUsed  int
	tokenBudget int
	log         *slog.Logger
}

func NewMigration(deps Deps, database string, ownTokenBudget int) *Migration {
	if deps.MaxOutputTokens == 0 {
		deps.MaxOutputTokens = 4096
	}
	return &Migration{
		Deps: deps, Database: database, tokenBudget: ownTokenBudget,
		log: slog.With("component", "subagent.migration"),
	}
}

func (m *Migration) Kind() scheduler.Kind { return scheduler.KindMigration }

func (m *Migration) Execute(ctx context.Context, step models.Step) scheduler.StepResult {
	resp, err := callLLM(ctx, &m.Deps, &m.mu, &m.tokensUsed, buildMigrationMessages(step))
	if err != nil {
		return scheduler.StepResult{StepID: step.ID, Kind: scheduler.KindMigration, Err: err}
	}

	forward, ok := ExtractNamedBlock(resp.Text, "forward")
	if !ok {
		return scheduler.StepResult{StepID: step.ID, Kind: scheduler.KindMigration,
			Err: fmt.Errorf("migration response missing a forward block")}
	}
	reverse, ok := ExtractNamedBlock(resp.Text, "reverse")
	if !ok {
		return scheduler.StepResult{StepID: step.ID, Kind: scheduler.KindMigration,
			Err: fmt.Errorf("migration response missing a reverse block")}
	}

	return scheduler.StepResult{
		StepID: step.ID,
		Kind:   scheduler.KindMigration,
		Migration: &models.MigrationEntry{
			ID:          uuid.NewString(),
			Description: step.Description,
			SQLForward:   forward,
			SQLReverse:   reverse,
			DataLossRisk: classifyDataLossRisk(reverse),
			Database:     m.Database,
		},
	}
}

func (m *Migration) Usage() scheduler.Usage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return scheduler.Usage{TokensUsed: m.tokensUsed, TokenBudget: m.tokenBudget}
}

func (m *Migration) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokensUsed = 0
}
