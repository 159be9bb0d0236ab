package orchestrator

import (
	"path/filepath"
	"strings"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
)

// criticalConfigBasenames are exact-match critical config file names (spec §7).
var criticalConfigBasenames = map[string]bool{
	"package.json":  true,
	"tsconfig.json": true,
	".env":          true,
}

// criticalConfigPrefixes are prefix-match critical config file names,
// covering webpack.config.* and vite.config.* variants.
var criticalConfigPrefixes = []string{"webpack", "vite.config"}

func isCriticalConfigFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	if criticalConfigBasenames[base] {
		return true
	}
	for _, prefix := range criticalConfigPrefixes {
		if strings.HasPrefix(base, prefix) {
			return true
		}
	}
	return false
}

// dependencyManifests are files whose presence signals a dependency change.
var dependencyManifests = map[string]bool{
	"package.json":      true,
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"go.mod":            true,
	"go.sum":            true,
	"requirements.txt":  true,
}

func isDependencyManifest(path string) bool {
	return dependencyManifests[strings.ToLower(filepath.Base(path))]
}

// AssessRisk implements the plan-risk bump-counting rule from spec §7:
// level starts low; it bumps once for migrations present, once for more
// than 10 files, once for any critical config file touched, once for
// complexity == high, once for any explicit risk in the plan, and once for
// any dependency-manifest change. Zero bumps stays low; exactly one bump
// (that isn't the complexity bump) is medium; two or more bumps, or the
// complexity bump on its own, is high.
func AssessRisk(plan *models.Plan) models.RiskLevel {
	if plan == nil {
		return models.RiskLow
	}

	bumps := 0
	highComplexityBump := false

	if len(plan.ProposedMigrations) > 0 {
		bumps++
	}
	if len(plan.Files) > 10 {
		bumps++
	}
	for _, f := range plan.Files {
		if isCriticalConfigFile(f) {
			bumps++
			break
		}
	}
	if plan.Complexity == models.ComplexityHigh {
		bumps++
		highComplexityBump = true
	}
	if len(plan.Risks) > 0 {
		bumps++
	}
	for _, f := range plan.Files {
		if isDependencyManifest(f) {
			bumps++
			break
		}
	}

	switch {
	case bumps == 0:
		return models.RiskLow
	case bumps == 1 && !highComplexityBump:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

// RequiresApproval reports whether risk gates the pipeline on an external
// approval (spec §4.9: "if medium or high and requireApproval is true").
func RequiresApproval(risk models.RiskLevel) bool {
	return risk == models.RiskMedium || risk == models.RiskHigh
}
