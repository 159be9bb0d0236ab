package orchestrator

import (
	"testing"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestAssessRiskNoBumpsIsLow(t *testing.T) {
	plan := &models.Plan{Files: []string{"src/a.ts"}, Complexity: models.ComplexityLow}
	assert.Equal(t, models.RiskLow, AssessRisk(plan))
	assert.False(t, RequiresApproval(AssessRisk(plan)))
}

func TestAssessRiskSingleBumpIsMedium(t *testing.T) {
	plan := &models.Plan{Files: []string{"src/a.ts"}, Complexity: models.ComplexityLow, Risks: []string{"touches auth"}}
	assert.Equal(t, models.RiskMedium, AssessRisk(plan))
	assert.True(t, RequiresApproval(AssessRisk(plan)))
}

func TestAssessRiskTwoBumpsIsHigh(t *testing.T) {
	plan := &models.Plan{
		Files:              []string{"src/a.ts"},
		Complexity:         models.ComplexityLow,
		Risks:              []string{"touches auth"},
		ProposedMigrations: []models.MigrationProposal{{Description: "add column"}},
	}
	assert.Equal(t, models.RiskHigh, AssessRisk(plan))
}

func TestAssessRiskHighComplexityAloneIsHigh(t *testing.T) {
	plan := &models.Plan{Files: []string{"src/a.ts"}, Complexity: models.ComplexityHigh}
	assert.Equal(t, models.RiskHigh, AssessRisk(plan))
}

func TestAssessRiskMoreThanTenFilesBumps(t *testing.T) {
	files := make([]string, 11)
	for i := range files {
		files[i] = "src/file.ts"
	}
	plan := &models.Plan{Files: files, Complexity: models.ComplexityLow}
	assert.Equal(t, models.RiskMedium, AssessRisk(plan))
}

func TestAssessRiskCriticalConfigFileBumps(t *testing.T) {
	plan := &models.Plan{Files: []string{"tsconfig.json"}, Complexity: models.ComplexityLow}
	assert.Equal(t, models.RiskMedium, AssessRisk(plan))
}

func TestAssessRiskDependencyManifestBumps(t *testing.T) {
	plan := &models.Plan{Files: []string{"go.sum"}, Complexity: models.ComplexityLow}
	assert.Equal(t, models.RiskMedium, AssessRisk(plan))
}

func TestAssessRiskNilPlanIsLow(t *testing.T) {
	assert.Equal(t, models.RiskLow, AssessRisk(nil))
}
