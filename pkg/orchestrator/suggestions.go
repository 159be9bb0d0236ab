package orchestrator

import (
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/gate"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
)

// suggestionTemplates is the fixed check-name → fix-suggestion mapping from
// spec §7. Keyed by the Check.Name() each gate check reports.
var suggestionTemplates = map[string]models.Suggestion{
	"SyntaxCheck": {
		Check:       "SyntaxCheck",
		Title:       "Generated output has a syntax error",
		Description: "One or more generated files failed to parse for their file type.",
		Actions:     []string{"Re-run generation with more surrounding context", "Inspect the reported file for the unclosed or malformed construct"},
	},
	"DependencyCheck": {
		Check:       "DependencyCheck",
		Title:       "Unresolved import",
		Description: "A relative import could not be resolved against the bundle's own file list.",
		Actions:     []string{"Add the missing package to the bundle", "Fix the import's relative path"},
	},
	"SchemaCheck": {
		Check:       "SchemaCheck",
		Title:       "Bundle is missing required fields",
		Description: "The bundle does not satisfy the required top-level or step-level schema shape.",
		Actions:     []string{"Verify the required-field checklist: id, type, created_at, files", "Verify every step has id, action, and target"},
	},
	"TestCoverageCheck": {
		Check:       "TestCoverageCheck",
		Title:       "Test coverage below threshold",
		Description: "Too few source files that should be tested have a matching test.",
		Actions:     []string{"Add tests for the uncovered source files", "Lower the configured coverage threshold"},
	},
	"MigrationReversibilityCheck": {
		Check:       "MigrationReversibilityCheck",
		Title:       "Migration is not safely reversible",
		Description: "A forward migration operation has no matching inverse in the reverse SQL.",
		Actions:     []string{"Add the missing reverse SQL for the flagged operation"},
	},
}

// suggestionFor returns the fixed suggestion for checkName, or a generic
// fallback when the check has no specific mapping (spec §7 "default →
// generic").
func suggestionFor(checkName string) models.Suggestion {
	if s, ok := suggestionTemplates[checkName]; ok {
		return s
	}
	return models.Suggestion{
		Check:       checkName,
		Title:       "Validation failed",
		Description: "This check failed and has no specific fix guidance on record.",
		Actions:     []string{"Review the check's reported message for details"},
	}
}

// suggestionsForBlockers maps every blocking check result onto its fix
// suggestion, preserving the gate's own ordering.
func suggestionsForBlockers(blockers []gate.CheckResult) []models.Suggestion {
	out := make([]models.Suggestion, 0, len(blockers))
	for _, b := range blockers {
		out = append(out, suggestionFor(b.Name))
	}
	return out
}
