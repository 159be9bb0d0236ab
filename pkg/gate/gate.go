// Package gate implements the Release Gate: an ordered chain of six
// validator checks, each a blocker or a warning, run against a built
// Bundle before it may be signed.
package gate

import (
	"log/slog"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
)

// Level is a check's severity: blocker checks can fail the gate, warning
// checks never do.
type Level string

const (
	LevelBlocker Level = "blocker"
	LevelWarning Level = "warning"
)

// CheckResult is what every check returns, and the shared shape (spec §4.7)
// emitted in validation_check_complete events.
type CheckResult struct {
	Name    string         `json:"name"`
	Level   Level          `json:"level"`
	Passed  bool           `json:"passed"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Check is one validator in the chain.
type Check interface {
	Name() string
	Level() Level
	Run(b models.Bundle) CheckResult
}

// EventFunc receives validation_check_start / validation_check_complete /
// validation_summary notifications as the gate runs. The Release Gate
// generalizes this over a bare Event Bus publish so it has no import-time
// dependency on pkg/eventbus.
type EventFunc func(eventType models.EventType, data map[string]any)

// Summary is the gate's overall verdict.
type Summary struct {
	Passed   bool          `json:"passed"`
	Checks   []CheckResult `json:"checks"`
	Blockers []CheckResult `json:"blockers"`
	Warnings []CheckResult `json:"warnings"`
}

// Gate runs its checks sequentially in a fixed order (spec §4.7).
type Gate struct {
	checks []Check
	log    *slog.Logger
}

// New constructs a Gate with the standard six-check chain in the mandated
// order. coverageThreshold configures TestCoverageCheck (0-100, spec
// default 80). skipChecks names checks to omit (used by
// POST /bundle/retry-validation).
func New(coverageThreshold float64, skipChecks []string) *Gate {
	skip := make(map[string]bool, len(skipChecks))
	for _, s := range skipChecks {
		skip[s] = true
	}

	all := []Check{
		&SyntaxCheck{},
		&DependencyCheck{},
		&SchemaCheck{},
		&TestCoverageCheck{Threshold: coverageThreshold},
		&SecurityCheck{},
		&MigrationReversibilityCheck{},
	}

	g := &Gate{log: slog.With("component", "gate")}
	for _, c := range all {
		if !skip[c.Name()] {
			g.checks = append(g.checks, c)
		}
	}
	return g
}

// Run executes every check in order, emitting start/complete events for
// each and a final summary event, and returns the overall Summary. A
// panicking check is recovered and attributed to that check as a blocker
// (spec §4.7: "a thrown error from a check is treated as a blocker
// attributed to that check").
func (g *Gate) Run(b models.Bundle, emit EventFunc) Summary {
	var results []CheckResult
	for _, c := range g.checks {
		if emit != nil {
			emit(models.EventValidationCheckStart, map[string]any{"check": c.Name()})
		}

		result := g.runOne(c, b)
		results = append(results, result)

		if emit != nil {
			emit(models.EventValidationCheckComplete, map[string]any{
				"check":   result.Name,
				"passed":  result.Passed,
				"level":   result.Level,
				"message": result.Message,
			})
		}
	}

	summary := Summary{Passed: true, Checks: results}
	for _, r := range results {
		if r.Passed {
			continue
		}
		if r.Level == LevelBlocker {
			summary.Passed = false
			summary.Blockers = append(summary.Blockers, r)
		} else {
			summary.Warnings = append(summary.Warnings, r)
		}
	}

	if emit != nil {
		emit(models.EventValidationSummary, map[string]any{
			"passed":   summary.Passed,
			"blockers": len(summary.Blockers),
			"warnings": len(summary.Warnings),
		})
	}
	return summary
}

func (g *Gate) runOne(c Check, b models.Bundle) (result CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("check panicked, treating as blocker", "check", c.Name(), "recover", r)
			result = CheckResult{Name: c.Name(), Level: LevelBlocker, Passed: false,
				Message: "check raised an unexpected error"}
		}
	}()
	result = c.Run(b)
	result.Name = c.Name()
	result.Level = c.Level()
	return result
}
